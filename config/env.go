package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvPrivateKey    = "DELTABOT_PRIVATE_KEY"
	EnvWalletAddress = "DELTABOT_WALLET_ADDRESS"
	EnvRPCEndpoint   = "DELTABOT_RPC_ENDPOINT"
	EnvChainID       = "DELTABOT_CHAIN_ID"
	EnvDryRun        = "DELTABOT_DRY_RUN"
	EnvInterval      = "DELTABOT_INTERVAL"
	EnvMinGain       = "DELTABOT_MIN_GAIN"
	EnvRedisAddr     = "DELTABOT_REDIS_ADDR"
	EnvMetricsAddr   = "DELTABOT_METRICS_ADDR"
	EnvLogDebug      = "DELTABOT_LOG_DEBUG"
)

// LoadEnv loads environment variables from .env file
func LoadEnv() error {
	return godotenv.Load()
}

// GetEnvWithDefault gets an environment variable with a default value
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// applyEnvOverrides replaces fields whose variable is set and parses.
// Unparseable values are ignored and leave the file value in place.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Wallet.PrivateKey, EnvPrivateKey)
	setStr(&cfg.Wallet.Address, EnvWalletAddress)
	setStr(&cfg.Network.RPCEndpoint, EnvRPCEndpoint)
	setUint64(&cfg.Network.ChainID, EnvChainID)
	setBool(&cfg.Strategy.DryRun, EnvDryRun)
	setDuration(&cfg.Strategy.Interval, EnvInterval)
	setFloat64(&cfg.Strategy.MinGain, EnvMinGain)
	setStr(&cfg.Lock.RedisAddr, EnvRedisAddr)
	setStr(&cfg.Metrics.ListenAddr, EnvMetricsAddr)
	setBool(&cfg.Log.Debug, EnvLogDebug)
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
