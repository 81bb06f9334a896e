package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the user's balances, opening the account on first use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			acct, err := a.engine.Account(ctx, userID)
			if err != nil {
				return err
			}
			printAccount(cmd.OutOrStdout(), a, acct)
			return nil
		})
	},
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Value the user's holdings at current prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.engine.Account(ctx, userID); err != nil {
				return err
			}
			p, err := a.engine.Portfolio(ctx, userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := p.Summary
			fmt.Fprintf(out, "Portfolio %s (%s)\n", p.Account.PortfolioID, p.Account.UserID)
			fmt.Fprintf(out, "  Cash:          %s\n", a.money(s.CashBalance))
			fmt.Fprintf(out, "  Savings:       %s\n", a.money(s.SavingsBalance))
			fmt.Fprintf(out, "  Holdings:      %s (invested %s)\n", a.money(s.TotalHoldingsValue), a.money(s.TotalInvested))
			fmt.Fprintf(out, "  Fixed deposits %s\n", a.money(p.DepositsPrincipal))
			fmt.Fprintf(out, "  Total value:   %s\n", a.money(s.TotalValue))
			fmt.Fprintf(out, "  Gain/loss:     %s (%s)\n", a.money(s.TotalGainLoss), s.TotalGainLossPercent.SignedString())

			if len(s.Holdings) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%-6s %10s %12s %12s %14s %10s\n", "SYMBOL", "SHARES", "AVG", "PRICE", "VALUE", "GAIN")
			for _, h := range s.Holdings {
				fmt.Fprintf(out, "%-6s %10s %12s %12s %14s %10s\n",
					h.Symbol, h.Shares, h.AvgPrice.StringFixed(2), h.CurrentPrice.StringFixed(2),
					a.money(h.CurrentValue), h.GainLossPercent.SignedString())
			}
			return nil
		})
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the user's trades, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			txs, err := a.engine.Transactions(ctx, userID, historyLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(txs) == 0 {
				fmt.Fprintln(out, "no trades")
				return nil
			}
			for _, tx := range txs {
				fmt.Fprintf(out, "%s  %-4s %-6s %10s @ %10s = %s\n",
					tx.CreatedAt.Format("2006-01-02 15:04:05"), tx.Type, tx.Symbol,
					tx.Shares, tx.Price.StringFixed(2), a.money(tx.Total))
			}
			return nil
		})
	},
}

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List the tradable instruments and their prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			insts, err := a.engine.Instruments(ctx)
			if err != nil {
				return err
			}
			printInstruments(cmd.OutOrStdout(), a, insts)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(instrumentsCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of trades (0 for all)")
}

func printAccount(out io.Writer, a *app, acct ledger.Account) {
	fmt.Fprintf(out, "Account %s (portfolio %s)\n", acct.UserID, acct.PortfolioID)
	fmt.Fprintf(out, "  Cash:    %s\n", a.money(acct.CashBalance))
	fmt.Fprintf(out, "  Savings: %s\n", a.money(acct.SavingsBalance))
}

func printInstruments(out io.Writer, a *app, insts []market.Instrument) {
	for _, inst := range insts {
		fmt.Fprintf(out, "%-6s %-28s %12s %10s\n",
			inst.Symbol, inst.Name, a.money(inst.CurrentPrice), inst.PriceChangePercent.SignedString())
	}
}
