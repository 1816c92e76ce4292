package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelpento.lv/deltabot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRouter = "0x1000000000000000000000000000000000000001"
	testMarket = "0x1000000000000000000000000000000000000002"
	testKey    = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
)

const yamlConfig = `
network:
  rpc_endpoint: https://rpc.example.org
  chain_id: 131614895977472
wallet:
  address: "0x2000000000000000000000000000000000000001"
contracts:
  router: "0x1000000000000000000000000000000000000001"
  market: "0x1000000000000000000000000000000000000002"
  wrapped: "0x1000000000000000000000000000000000000003"
  long: "0x1000000000000000000000000000000000000004"
  short: "0x1000000000000000000000000000000000000005"
  long_pair: "0x1000000000000000000000000000000000000006"
  short_pair: "0x1000000000000000000000000000000000000007"
strategy:
  interval: 90s
  diff_threshold_pct: 3.5
  top_up_amount: 1000000000000
gas:
  approve_limit: 90000
  multi_hop_limit: 400000
  price_multiplier: 125
lock:
  redis_addr: localhost:6379
  ttl: 1m
`

const tomlConfig = `
[network]
rpc_endpoint = "https://rpc.example.org"
chain_id = 1

[strategy]
interval = "45s"
dry_run = true
min_gain = 2.5

[gas]
buy_limit = 300000
price_multiplier = 150

[metrics]
enabled = false
`

func clearEnv(t *testing.T) {
	for _, key := range []string{
		EnvPrivateKey, EnvWalletAddress, EnvRPCEndpoint, EnvChainID, EnvDryRun,
		EnvInterval, EnvMinGain, EnvRedisAddr, EnvMetricsAddr, EnvLogDebug,
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() Config {
	cfg := Defaults()
	cfg.Network.ChainID = 1
	cfg.Wallet.Address = "0x2000000000000000000000000000000000000001"
	cfg.Contracts = ContractsConfig{
		Router:    testRouter,
		Market:    testMarket,
		Wrapped:   "0x1000000000000000000000000000000000000003",
		Long:      "0x1000000000000000000000000000000000000004",
		Short:     "0x1000000000000000000000000000000000000005",
		LongPair:  "0x1000000000000000000000000000000000000006",
		ShortPair: "0x1000000000000000000000000000000000000007",
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 180*time.Second, cfg.Strategy.Interval)
	assert.Equal(t, 2.5, cfg.Strategy.DiffThresholdPct)
	assert.Equal(t, 1.0, cfg.Strategy.MinGain)
	assert.Equal(t, 12.5, cfg.Strategy.MultiHopCost)
	assert.Equal(t, 7.0, cfg.Strategy.SingleHopCost)
	assert.Equal(t, uint64(2_000_000_000_000), cfg.Strategy.TopUpAmount)
	assert.Equal(t, uint64(100_000_000_000), cfg.Strategy.MinNativeBalance)
	assert.Equal(t, uint64(1_500_000_000_000), cfg.Strategy.MinWrappedBalance)
	assert.Equal(t, uint64(1_500_000_000_000), cfg.Strategy.UnwrapAmount)
	assert.Equal(t, 1.05, cfg.Strategy.SlippageBuffer)
	assert.False(t, cfg.Strategy.DryRun)
	assert.Equal(t, ":9102", cfg.Metrics.ListenAddr)
	assert.Empty(t, cfg.Lock.RedisAddr)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example.org", cfg.Network.RPCEndpoint)
	assert.Equal(t, uint64(131614895977472), cfg.Network.ChainID)
	assert.Equal(t, testRouter, cfg.Contracts.Router)
	assert.Equal(t, 90*time.Second, cfg.Strategy.Interval)
	assert.Equal(t, 3.5, cfg.Strategy.DiffThresholdPct)
	assert.Equal(t, uint64(1_000_000_000_000), cfg.Strategy.TopUpAmount)
	assert.Equal(t, uint64(1_500_000_000_000), cfg.Strategy.UnwrapAmount, "unset fields keep defaults")
	assert.Equal(t, uint64(90_000), cfg.Gas.Approve)
	assert.Equal(t, uint64(400_000), cfg.Gas.MultiHopSwap)
	assert.Equal(t, uint64(250_000), cfg.Gas.Buy)
	assert.Equal(t, uint64(125), cfg.Gas.PriceMultiplier)
	assert.Equal(t, "localhost:6379", cfg.Lock.RedisAddr)
	assert.Equal(t, time.Minute, cfg.Lock.TTL)

	require.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.toml", tomlConfig))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), cfg.Network.ChainID)
	assert.Equal(t, 45*time.Second, cfg.Strategy.Interval)
	assert.True(t, cfg.Strategy.DryRun)
	assert.Equal(t, 2.5, cfg.Strategy.MinGain)
	assert.Equal(t, uint64(300_000), cfg.Gas.Buy)
	assert.Equal(t, uint64(80_000), cfg.Gas.Approve)
	assert.Equal(t, uint64(150), cfg.Gas.PriceMultiplier)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err, "the default path may be absent")
	assert.Equal(t, Defaults().Strategy, cfg.Strategy)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "config.yaml", "strategy: [not, a, map"))
	assert.ErrorContains(t, err, "failed to decode config file")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrivateKey, testKey)
	t.Setenv(EnvRPCEndpoint, "https://override.example.org")
	t.Setenv(EnvChainID, "5")
	t.Setenv(EnvDryRun, "true")
	t.Setenv(EnvInterval, "10s")
	t.Setenv(EnvMinGain, "not-a-number")
	t.Setenv(EnvRedisAddr, "redis:6379")

	cfg, err := Load(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, testKey, cfg.Wallet.PrivateKey)
	assert.Equal(t, "https://override.example.org", cfg.Network.RPCEndpoint)
	assert.Equal(t, uint64(5), cfg.Network.ChainID)
	assert.True(t, cfg.Strategy.DryRun)
	assert.Equal(t, 10*time.Second, cfg.Strategy.Interval)
	assert.Equal(t, 1.0, cfg.Strategy.MinGain, "unparseable values are ignored")
	assert.Equal(t, "redis:6379", cfg.Lock.RedisAddr)
}

func TestPrivateKeyNotReadFromFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.yaml", "wallet:\n  private_key: deadbeef\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Wallet.PrivateKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name: "key without address",
			mutate: func(c *Config) {
				c.Wallet.Address = ""
				c.Wallet.PrivateKey = testKey
			},
		},
		{
			name: "missing network",
			mutate: func(c *Config) {
				c.Network.RPCEndpoint = ""
				c.Network.ChainID = 0
			},
			wantErr: []string{"network.rpc_endpoint", "network.chain_id"},
		},
		{
			name: "no wallet",
			mutate: func(c *Config) {
				c.Wallet.Address = ""
			},
			wantErr: []string{"wallet.address or " + EnvPrivateKey},
		},
		{
			name: "bad contract",
			mutate: func(c *Config) {
				c.Contracts.Market = "market"
			},
			wantErr: []string{`contracts.market "market"`},
		},
		{
			name: "bad strategy",
			mutate: func(c *Config) {
				c.Strategy.SlippageBuffer = 0.9
			},
			wantErr: []string{"slippage buffer"},
		},
		{
			name: "rate limit and lock",
			mutate: func(c *Config) {
				c.RPCRateLimit.BurstSize = 0
				c.Lock.RedisAddr = "localhost:6379"
				c.Lock.TTL = 0
			},
			wantErr: []string{"burst size", "lock.ttl"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := validConfig()
	cfg.Strategy.DryRun = true
	cfg.Strategy.UnwrapAmount = 42

	contracts := cfg.ContractAddresses()
	assert.Equal(t, testRouter, contracts.Router.Hex())
	assert.Equal(t, testMarket, contracts.Market.Hex())

	params := cfg.AssetParams()
	assert.Equal(t, types.Units(2000).String(), params.TopUpAmount.String())
	assert.Equal(t, "42", params.UnwrapAmount.String())
	assert.Equal(t, 1.05, params.SlippageBuffer)

	engine := cfg.EngineConfig()
	assert.True(t, engine.DryRun)
	assert.Equal(t, 2.5, engine.DiffThreshold)
	assert.Equal(t, 12.5, engine.Gain.MultiHopCost)
	assert.Equal(t, 7.0, engine.Gain.SingleHopCost)

	assert.Equal(t, "1", cfg.ChainID().String())
}
