package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/investsim/ledger/journal"
)

var (
	exportOut       string
	exportTransfers bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the user's trade log (or transfer log) as CSV",
	Example: `  ledger -u alice export -o trades.csv
  ledger -u alice export --transfers`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			var w io.Writer = cmd.OutOrStdout()
			if exportOut != "" && exportOut != "-" {
				f, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create %s: %w", exportOut, err)
				}
				defer f.Close()
				w = f
			}

			if exportTransfers {
				fts, err := a.engine.FundTransfers(ctx, userID, 0)
				if err != nil {
					return err
				}
				return journal.WriteFundTransfersCSV(w, fts)
			}
			txs, err := a.engine.Transactions(ctx, userID, 0)
			if err != nil {
				return err
			}
			return journal.WriteTransactionsCSV(w, txs)
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file, - for stdout")
	exportCmd.Flags().BoolVar(&exportTransfers, "transfers", false, "export fund transfers instead of trades")
}
