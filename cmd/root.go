package cmd

import (
	"context"

	"github.com/michaelpento.lv/deltabot/config"
	"github.com/michaelpento.lv/deltabot/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "deltabot",
	Short: "An arbitrage bot for a delta-neutral position market",
	Long: `An arbitrage bot that compares the pool prices of the LONG and SHORT
position tokens against their fair value in the market contract and trades
the mispriced side through the router.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, .yaml or .toml (default is ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads and validates the config and starts the logger it asks for
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.Log.Debug = true
	}

	log := utils.InitLogger(cfg.Log.Debug, cfg.Log.File)
	if err := cfg.Validate(); err != nil {
		return nil, log, err
	}
	return cfg, log, nil
}
