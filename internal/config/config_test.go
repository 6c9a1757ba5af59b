package config

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployerHex = "0x00000000000000000000000000000000000000d0"

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{"ADDR", "LOG_LEVEL", "LOG_FORMAT", "ETH_RPC_URL", "DEPLOYER_ADDRESS", "TREASURY_ADDRESS", "TOKEN_SUPPLY", "TAX_BPS", "GENESIS_BALANCES"} {
		t.Setenv(k, env[k])
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"DEPLOYER_ADDRESS": deployerHex})

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":1337", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.RPCEndpoint)
	assert.Equal(t, common.HexToAddress(deployerHex), cfg.Deployer)
	assert.Equal(t, cfg.Deployer, cfg.Treasury)
	assert.Equal(t, defaultTokenSupply, cfg.TokenSupply.Dec())
	assert.Equal(t, uint64(200), cfg.TaxBps)
	assert.Empty(t, cfg.GenesisBalances)
}

func TestFromEnv_GenesisBalances(t *testing.T) {
	setEnv(t, map[string]string{
		"DEPLOYER_ADDRESS": deployerHex,
		"GENESIS_BALANCES": "0x00000000000000000000000000000000000000aa=100, 0x00000000000000000000000000000000000000bb=7,0x00000000000000000000000000000000000000aa=1",
	})

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Len(t, cfg.GenesisBalances, 2)
	assert.Equal(t, uint64(101), cfg.GenesisBalances[common.HexToAddress("0xaa")].Uint64())
	assert.Equal(t, uint64(7), cfg.GenesisBalances[common.HexToAddress("0xbb")].Uint64())
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"missing deployer", map[string]string{}, ErrMissingDeployer},
		{"bad deployer", map[string]string{"DEPLOYER_ADDRESS": "0x123"}, ErrInvalidAddress},
		{"bad treasury", map[string]string{"DEPLOYER_ADDRESS": deployerHex, "TREASURY_ADDRESS": "nope"}, ErrInvalidAddress},
		{"bad supply", map[string]string{"DEPLOYER_ADDRESS": deployerHex, "TOKEN_SUPPLY": "-1"}, ErrInvalidAmount},
		{"tax too high", map[string]string{"DEPLOYER_ADDRESS": deployerHex, "TAX_BPS": "10001"}, ErrInvalidTaxBps},
		{"tax not a number", map[string]string{"DEPLOYER_ADDRESS": deployerHex, "TAX_BPS": "2%"}, ErrInvalidTaxBps},
		{"balance without amount", map[string]string{"DEPLOYER_ADDRESS": deployerHex, "GENESIS_BALANCES": deployerHex}, ErrInvalidBalances},
		{"balance bad amount", map[string]string{"DEPLOYER_ADDRESS": deployerHex, "GENESIS_BALANCES": deployerHex + "=1e18"}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := FromEnv()
			require.ErrorIs(t, err, tt.want)
		})
	}
}
