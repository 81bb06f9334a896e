package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

var buyCmd = &cobra.Command{
	Use:   "buy <symbol> <shares>",
	Short: "Buy shares at the current price",
	Example: `  ledger -u alice buy AAPL 10
  ledger -u alice buy MSFT 2.5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, ledger.TradeBuy, args)
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <symbol> <shares>",
	Short: "Sell shares at the current price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, ledger.TradeSell, args)
	},
}

func init() {
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(sellCmd)
}

func runTrade(cmd *cobra.Command, side ledger.TradeType, args []string) error {
	symbol := args[0]
	shares, err := market.ParseShares(args[1])
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		trade := a.engine.Buy
		if side == ledger.TradeSell {
			trade = a.engine.Sell
		}
		res, err := trade(ctx, userID, symbol, shares)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		tx := res.Transaction
		fmt.Fprintf(out, "✓ %s %s %s @ %s = %s\n", tx.Type, tx.Shares, tx.Symbol, a.money(tx.Price), a.money(tx.Total))
		if res.Removed {
			fmt.Fprintf(out, "  position in %s closed\n", tx.Symbol)
		} else {
			fmt.Fprintf(out, "  holding %s shares, avg %s\n", res.Holding.Shares, res.Holding.AvgPrice.StringFixed(2))
		}
		fmt.Fprintf(out, "  cash %s\n", a.money(res.Account.CashBalance))
		return nil
	})
}
