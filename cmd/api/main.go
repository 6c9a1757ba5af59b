package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nulln0ne/spacelp/internal/chain"
	"github.com/nulln0ne/spacelp/internal/config"
	"github.com/nulln0ne/spacelp/internal/eth"
	"github.com/nulln0ne/spacelp/internal/handler"
	"github.com/nulln0ne/spacelp/internal/logging"
	"github.com/nulln0ne/spacelp/internal/metrics"
	"github.com/nulln0ne/spacelp/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c, err := chain.New(chain.Genesis{
		Deployer:    cfg.Deployer,
		Treasury:    cfg.Treasury,
		TokenSupply: cfg.TokenSupply,
		TaxBps:      cfg.TaxBps,
		Balances:    cfg.GenesisBalances,
	}, logger, metrics.New(reg))
	if err != nil {
		return fmt.Errorf("failed to initialize chain: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ethereumClient *ethclient.Client
	if cfg.RPCEndpoint != "" {
		ethereumClient, err = eth.Dial(ctx, cfg.RPCEndpoint)
		if err != nil {
			return fmt.Errorf("failed to connect to Ethereum node: %w", err)
		}
		defer ethereumClient.Close()
	} else {
		logger.Info("ETH_RPC_URL not set; on-chain estimates disabled")
	}

	app := fiber.New()

	poolService := service.NewPoolService(logger, c, chain.TokenAddress(cfg.Deployer))
	handler.NewPoolHandler(logger, poolService).Register(app)

	estimateService := service.NewEstimateService(logger, ethereumClient)
	estimateHandler := handler.NewEstimateHandler(logger, estimateService)
	app.Get("/estimate", estimateHandler.Handle())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return app.ShutdownWithContext(shutdownCtx)
}
