package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/michaelpento.lv/deltabot/executor"
	"github.com/michaelpento.lv/deltabot/gas"
	"github.com/michaelpento.lv/deltabot/strategies/arbitrage"
	"github.com/michaelpento.lv/deltabot/utils"
	"github.com/michaelpento.lv/deltabot/utils/metrics"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v2"
)

// DefaultConfigFile is read when no --config is given
const DefaultConfigFile = "config.yaml"

type Config struct {
	Network      NetworkConfig   `yaml:"network" toml:"network"`
	Wallet       WalletConfig    `yaml:"wallet" toml:"wallet"`
	Contracts    ContractsConfig `yaml:"contracts" toml:"contracts"`
	Strategy     StrategyConfig  `yaml:"strategy" toml:"strategy"`
	RPCRateLimit RateLimitConfig `yaml:"rpc_rate_limit" toml:"rpc_rate_limit"`
	Gas          GasConfig       `yaml:"gas" toml:"gas"`
	Metrics      MetricsConfig   `yaml:"metrics" toml:"metrics"`
	Lock         LockConfig      `yaml:"lock" toml:"lock"`
	Log          LogConfig       `yaml:"log" toml:"log"`
}

type NetworkConfig struct {
	RPCEndpoint string `yaml:"rpc_endpoint" toml:"rpc_endpoint"`
	ChainID     uint64 `yaml:"chain_id" toml:"chain_id"`
}

// WalletConfig identifies the trading wallet. The private key is never read
// from the config file, only from the environment.
type WalletConfig struct {
	Address    string `yaml:"address" toml:"address"`
	PrivateKey string `yaml:"-" toml:"-"`
}

type ContractsConfig struct {
	Router    string `yaml:"router" toml:"router"`
	Market    string `yaml:"market" toml:"market"`
	Wrapped   string `yaml:"wrapped" toml:"wrapped"`
	Long      string `yaml:"long" toml:"long"`
	Short     string `yaml:"short" toml:"short"`
	LongPair  string `yaml:"long_pair" toml:"long_pair"`
	ShortPair string `yaml:"short_pair" toml:"short_pair"`
}

// StrategyConfig holds the trading parameters. Amounts are in subunits.
type StrategyConfig struct {
	Interval          time.Duration `yaml:"interval" toml:"interval"`
	DryRun            bool          `yaml:"dry_run" toml:"dry_run"`
	DiffThresholdPct  float64       `yaml:"diff_threshold_pct" toml:"diff_threshold_pct"`
	MinGain           float64       `yaml:"min_gain" toml:"min_gain"`
	MultiHopCost      float64       `yaml:"multi_hop_cost" toml:"multi_hop_cost"`
	SingleHopCost     float64       `yaml:"single_hop_cost" toml:"single_hop_cost"`
	TopUpAmount       uint64        `yaml:"top_up_amount" toml:"top_up_amount"`
	MinNativeBalance  uint64        `yaml:"min_native_balance" toml:"min_native_balance"`
	MinWrappedBalance uint64        `yaml:"min_wrapped_balance" toml:"min_wrapped_balance"`
	UnwrapAmount      uint64        `yaml:"unwrap_amount" toml:"unwrap_amount"`
	SlippageBuffer    float64       `yaml:"slippage_buffer" toml:"slippage_buffer"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" toml:"burst_size"`
}

type GasConfig struct {
	gas.Limits `yaml:",inline"`
	// PriceMultiplier is the percentage applied to the node's gas price suggestion
	PriceMultiplier uint64 `yaml:"price_multiplier" toml:"price_multiplier"`
}

type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	ListenAddr string `yaml:"listen_addr" toml:"listen_addr"`
	Namespace  string `yaml:"namespace" toml:"namespace"`
}

// LockConfig enables the redis single-instance lock when RedisAddr is set
type LockConfig struct {
	RedisAddr string        `yaml:"redis_addr" toml:"redis_addr"`
	KeyPrefix string        `yaml:"key_prefix" toml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl" toml:"ttl"`
}

type LogConfig struct {
	Debug bool   `yaml:"debug" toml:"debug"`
	File  string `yaml:"file" toml:"file"`
}

// Defaults returns the configuration used for every field a file leaves unset
func Defaults() Config {
	params := arbitrage.DefaultParams()
	return Config{
		Network: NetworkConfig{
			RPCEndpoint: "http://localhost:8545",
		},
		Strategy: StrategyConfig{
			Interval:          arbitrage.DefaultInterval,
			DiffThresholdPct:  arbitrage.DefaultDiffThreshold,
			MinGain:           arbitrage.DefaultEngineConfig().MinGain,
			MultiHopCost:      arbitrage.DefaultMultiHopCost,
			SingleHopCost:     arbitrage.DefaultSingleHopCost,
			TopUpAmount:       params.TopUpAmount.Uint64(),
			MinNativeBalance:  params.MinNativeBalance.Uint64(),
			MinWrappedBalance: params.MinWrappedBalance.Uint64(),
			UnwrapAmount:      params.UnwrapAmount.Uint64(),
			SlippageBuffer:    params.SlippageBuffer,
		},
		RPCRateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstSize:         20,
		},
		Gas: GasConfig{
			Limits:          gas.DefaultLimits(),
			PriceMultiplier: 110,
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9102",
			Namespace:  metrics.DefaultNamespace,
		},
		Lock: LockConfig{
			KeyPrefix: "deltabot",
			TTL:       30 * time.Second,
		},
		Log: LogConfig{
			File: utils.DefaultLogFile,
		},
	}
}

// Load reads the file at path over Defaults, then applies .env and DELTABOT_*
// overrides. Files ending in .toml are parsed as TOML, anything else as YAML.
// A missing file at the default path is not an error. The result is not
// validated; call Validate.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	if err := decodeFile(path, &cfg); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, err
		}
	}

	_ = LoadEnv()
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}
	return nil
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var errors []string

	if c.Network.RPCEndpoint == "" {
		errors = append(errors, "network.rpc_endpoint must be specified")
	}
	if c.Network.ChainID == 0 {
		errors = append(errors, "network.chain_id must be specified")
	}

	if c.Wallet.Address != "" && !common.IsHexAddress(c.Wallet.Address) {
		errors = append(errors, fmt.Sprintf("wallet.address %q is not a valid address", c.Wallet.Address))
	}
	if c.Wallet.Address == "" && c.Wallet.PrivateKey == "" {
		errors = append(errors, "wallet.address or "+EnvPrivateKey+" must be specified")
	}

	for _, f := range c.Contracts.fields() {
		if !common.IsHexAddress(f.addr) {
			errors = append(errors, fmt.Sprintf("contracts.%s %q is not a valid address", f.name, f.addr))
		}
	}

	if err := c.Strategy.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("strategy error: %v", err))
	}
	if err := c.RPCRateLimit.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("RPC rate limit error: %v", err))
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		errors = append(errors, "metrics.listen_addr must be specified when metrics are enabled")
	}
	if c.Lock.RedisAddr != "" && c.Lock.TTL <= 0 {
		errors = append(errors, "lock.ttl must be positive when lock.redis_addr is set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

type namedAddress struct {
	name, addr string
}

func (c ContractsConfig) fields() []namedAddress {
	return []namedAddress{
		{"router", c.Router},
		{"market", c.Market},
		{"wrapped", c.Wrapped},
		{"long", c.Long},
		{"short", c.Short},
		{"long_pair", c.LongPair},
		{"short_pair", c.ShortPair},
	}
}

func (s *StrategyConfig) Validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if s.DiffThresholdPct <= 0 {
		return fmt.Errorf("diff threshold must be positive")
	}
	if s.MultiHopCost < 0 || s.SingleHopCost < 0 {
		return fmt.Errorf("hop costs must not be negative")
	}
	if s.TopUpAmount == 0 || s.UnwrapAmount == 0 {
		return fmt.Errorf("top-up and unwrap amounts must be positive")
	}
	if s.SlippageBuffer < 1 {
		return fmt.Errorf("slippage buffer must be at least 1")
	}
	return nil
}

func (r *RateLimitConfig) Validate() error {
	if r.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive")
	}
	if r.BurstSize <= 0 {
		return fmt.Errorf("burst size must be positive")
	}
	return nil
}

// ContractAddresses converts the configured contract addresses
func (c *Config) ContractAddresses() executor.Contracts {
	return executor.Contracts{
		Router:    common.HexToAddress(c.Contracts.Router),
		Market:    common.HexToAddress(c.Contracts.Market),
		Wrapped:   common.HexToAddress(c.Contracts.Wrapped),
		Long:      common.HexToAddress(c.Contracts.Long),
		Short:     common.HexToAddress(c.Contracts.Short),
		LongPair:  common.HexToAddress(c.Contracts.LongPair),
		ShortPair: common.HexToAddress(c.Contracts.ShortPair),
	}
}

// AssetParams converts the balance levels for the asset manager
func (c *Config) AssetParams() arbitrage.Params {
	return arbitrage.Params{
		TopUpAmount:       new(big.Int).SetUint64(c.Strategy.TopUpAmount),
		MinNativeBalance:  new(big.Int).SetUint64(c.Strategy.MinNativeBalance),
		MinWrappedBalance: new(big.Int).SetUint64(c.Strategy.MinWrappedBalance),
		UnwrapAmount:      new(big.Int).SetUint64(c.Strategy.UnwrapAmount),
		SlippageBuffer:    c.Strategy.SlippageBuffer,
	}
}

// EngineConfig converts the decision parameters for the engine
func (c *Config) EngineConfig() arbitrage.EngineConfig {
	return arbitrage.EngineConfig{
		DiffThreshold: c.Strategy.DiffThresholdPct,
		MinGain:       c.Strategy.MinGain,
		DryRun:        c.Strategy.DryRun,
		Gain: arbitrage.GainEstimator{
			MultiHopCost:  c.Strategy.MultiHopCost,
			SingleHopCost: c.Strategy.SingleHopCost,
		},
	}
}

// ChainID returns the configured chain id as a big.Int
func (c *Config) ChainID() *big.Int {
	return new(big.Int).SetUint64(c.Network.ChainID)
}
