package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
)

var (
	walkSteps int
	walkSeed  int64
)

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Move every active instrument's price by a random step",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if walkSteps < 1 {
			return fmt.Errorf("steps must be at least 1")
		}
		seed := walkSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))

		return withApp(cmd, func(ctx context.Context, a *app) error {
			for i := 0; i < walkSteps; i++ {
				if _, err := a.engine.WalkPrices(ctx, rng); err != nil {
					return err
				}
			}
			insts, err := a.engine.Instruments(ctx)
			if err != nil {
				return err
			}
			printInstruments(cmd.OutOrStdout(), a, insts)
			return nil
		})
	},
}

var matureCmd = &cobra.Command{
	Use:   "mature",
	Short: "Mark fixed deposits past their maturity date as matured",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			n, err := a.engine.MatureDeposits(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d deposit(s) matured\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)
	rootCmd.AddCommand(matureCmd)

	walkCmd.Flags().IntVarP(&walkSteps, "steps", "n", 1, "number of walk steps")
	walkCmd.Flags().Int64Var(&walkSeed, "seed", 0, "random seed (0 picks one from the clock)")
}
