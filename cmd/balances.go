package cmd

import (
	"fmt"

	"github.com/michaelpento.lv/deltabot/cmd/bot"
	"github.com/michaelpento.lv/deltabot/types"
	"github.com/michaelpento.lv/deltabot/utils"

	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Print the wallet's native, wrapped, LONG and SHORT balances",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		balances, err := b.Balances(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wallet  %s\n", b.Owner().Hex())
		for _, asset := range []types.Asset{types.AssetNative, types.AssetWrapped, types.AssetLong, types.AssetShort} {
			fmt.Fprintf(out, "%-7s %s\n", asset, utils.Humanize(balances.Get(asset)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}
