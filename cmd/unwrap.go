package cmd

import (
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/deltabot/cmd/bot"
	"github.com/michaelpento.lv/deltabot/utils"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var unwrapAmount string

var unwrapCmd = &cobra.Command{
	Use:   "unwrap",
	Short: "Unwrap wrapped native back to native currency",
	Long: `Unwrap the whole wrapped native balance, or --amount units of it.
Nothing is sent when the amount is zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var amount *big.Int
		if unwrapAmount != "" {
			units, err := decimal.NewFromString(unwrapAmount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", unwrapAmount, err)
			}
			if units.Sign() < 0 {
				return fmt.Errorf("invalid --amount %q: must not be negative", unwrapAmount)
			}
			amount = utils.FromUnits(units)
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		b, err := bot.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()

		unwrapped, err := b.Unwrap(cmd.Context(), amount)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), unwrapSummary(unwrapped, b.DryRun()))
		return nil
	},
}

func unwrapSummary(amount *big.Int, dryRun bool) string {
	if dryRun {
		return fmt.Sprintf("dry run, nothing sent: would unwrap %s", utils.Humanize(amount))
	}
	return fmt.Sprintf("unwrapped %s", utils.Humanize(amount))
}

func init() {
	rootCmd.AddCommand(unwrapCmd)
	unwrapCmd.Flags().StringVar(&unwrapAmount, "amount", "", "amount in whole units (default is the full wrapped balance)")
}
