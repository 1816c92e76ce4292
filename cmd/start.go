package cmd

import (
	"github.com/michaelpento.lv/deltabot/cmd/bot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dryRun bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the arbitrage loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		if dryRun {
			cfg.Strategy.DryRun = true
		}

		ctx := cmd.Context()
		b, err := bot.New(ctx, cfg, log)
		if err != nil {
			log.Error("Failed to create bot", zap.Error(err))
			return err
		}
		defer b.Close()

		if err := b.Run(ctx); err != nil {
			log.Error("Bot stopped with error", zap.Error(err))
			return err
		}
		log.Info("Bot stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log trades instead of sending them")
}
