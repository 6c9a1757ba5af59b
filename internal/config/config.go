package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	defaultTokenSupply = "500000000000000000000000" // 500,000 SPC
	defaultTaxBps      = 200
	maxTaxBps          = 10_000
)

type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string
	// RPCEndpoint enables on-chain estimates when set.
	RPCEndpoint string

	Deployer        common.Address
	Treasury        common.Address
	TokenSupply     *uint256.Int
	TaxBps          uint64
	GenesisBalances map[common.Address]*uint256.Int
}

func FromEnv() (*Config, error) {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":1337"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}

	deployerHex := os.Getenv("DEPLOYER_ADDRESS")
	if deployerHex == "" {
		return nil, ErrMissingDeployer
	}
	deployer, err := parseAddress(deployerHex)
	if err != nil {
		return nil, fmt.Errorf("DEPLOYER_ADDRESS: %w", err)
	}

	treasury := deployer
	if v := os.Getenv("TREASURY_ADDRESS"); v != "" {
		if treasury, err = parseAddress(v); err != nil {
			return nil, fmt.Errorf("TREASURY_ADDRESS: %w", err)
		}
	}

	supplyDec := os.Getenv("TOKEN_SUPPLY")
	if supplyDec == "" {
		supplyDec = defaultTokenSupply
	}
	supply, err := parseAmount(supplyDec)
	if err != nil {
		return nil, fmt.Errorf("TOKEN_SUPPLY: %w", err)
	}

	taxBps := uint64(defaultTaxBps)
	if v := os.Getenv("TAX_BPS"); v != "" {
		taxBps, err = strconv.ParseUint(v, 10, 64)
		if err != nil || taxBps > maxTaxBps {
			return nil, ErrInvalidTaxBps
		}
	}

	balances, err := parseBalances(os.Getenv("GENESIS_BALANCES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:            addr,
		LogLevel:        logLevel,
		LogFormat:       logFormat,
		RPCEndpoint:     os.Getenv("ETH_RPC_URL"),
		Deployer:        deployer,
		Treasury:        treasury,
		TokenSupply:     supply,
		TaxBps:          taxBps,
		GenesisBalances: balances,
	}

	return cfg, nil
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// parseBalances parses "0xaddr=amount,0xaddr=amount". Repeated addresses
// accumulate.
func parseBalances(s string) (map[common.Address]*uint256.Int, error) {
	out := make(map[common.Address]*uint256.Int)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, entry := range strings.Split(s, ",") {
		addrPart, amountPart, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBalances, entry)
		}
		addr, err := parseAddress(addrPart)
		if err != nil {
			return nil, fmt.Errorf("GENESIS_BALANCES: %w", err)
		}
		amount, err := parseAmount(amountPart)
		if err != nil {
			return nil, fmt.Errorf("GENESIS_BALANCES: %w", err)
		}
		if prev, ok := out[addr]; ok {
			amount.Add(amount, prev)
		}
		out[addr] = amount
	}
	return out, nil
}
