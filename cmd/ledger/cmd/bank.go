package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <cash-to-savings|savings-to-cash> <amount>",
	Short: "Move money between cash and savings",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := ledger.ParseDirection(args[0])
		if err != nil {
			return err
		}
		amount, err := market.ParseMoney(args[1])
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			res, err := a.engine.Transfer(ctx, userID, dir, amount)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ %s: %s\n", res.FundTransfer.Description, a.money(res.FundTransfer.Amount))
			printAccount(out, a, res.Account)
			return nil
		})
	},
}

var depositTenure int

var depositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Open a fixed deposit funded from cash",
	Example: `  ledger -u alice deposit 5000 --tenure 24`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := market.ParseMoney(args[0])
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			res, err := a.engine.CreateFixedDeposit(ctx, userID, amount, depositTenure)
			if err != nil {
				return err
			}
			d := res.Deposit
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Fixed deposit %s\n", d.ID)
			fmt.Fprintf(out, "  %s for %d months at %s\n", a.money(d.Amount), d.TenureMonths, d.InterestRate)
			fmt.Fprintf(out, "  matures %s at %s\n", d.MaturityDate.Format("2006-01-02"), a.money(d.MaturityAmount))
			fmt.Fprintf(out, "  cash %s\n", a.money(res.Account.CashBalance))
			return nil
		})
	},
}

var depositsCmd = &cobra.Command{
	Use:   "deposits",
	Short: "List the user's fixed deposits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ds, err := a.engine.FixedDeposits(ctx, userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range ds {
				fmt.Fprintf(out, "%s  %-8s %12s %3dm %7s  matures %s at %s\n",
					d.ID, d.Status, a.money(d.Amount), d.TenureMonths, d.InterestRate,
					d.MaturityDate.Format("2006-01-02"), a.money(d.MaturityAmount))
			}
			fmt.Fprintf(out, "active principal %s\n", a.money(ledger.DepositsPrincipal(ds)))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(depositsCmd)

	depositCmd.Flags().IntVarP(&depositTenure, "tenure", "t", ledger.DefaultTenureMonths, "tenure in months (6, 12, 24 or 36 earn the listed rates)")
}
