package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/investsim/ledger/replay"
	"github.com/investsim/ledger/sim"
)

var replayEventFirst bool

var replayCmd = &cobra.Command{
	Use:   "replay <session.csv>",
	Short: "Replay a scripted session of prices and account events",
	Long: `Replay a CSV session against the ledger. Each row sets a price and/or
applies an event, and records are stamped with the row's time.

Columns:
  time,symbol,price,event,user,arg1,arg2

Events: OPEN, BUY, SELL, TRANSFER, DEPOSIT, MATURE

Example:
  ledger replay examples/session.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		clock := &replay.Clock{}
		a, err := openApp(ctx, sim.WithClock(clock.Now))
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := replay.CSV(ctx, args[0], a.engine, replay.Options{
			Clock:          clock,
			EventThenPrice: replayEventFirst,
		})
		fmt.Fprintf(cmd.OutOrStdout(), "replayed %d rows: %d prices, %d events\n", st.Rows, st.Prices, st.Events)
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayEventFirst, "event-first", false, "apply each row's event before its price")
}
