package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/investsim/ledger/config"
	"github.com/investsim/ledger/internal/logger"
	"github.com/investsim/ledger/journal"
	"github.com/investsim/ledger/market"
	"github.com/investsim/ledger/sim"
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "An investing simulator ledger",
	Long: `Ledger keeps simulated investing accounts: a cash balance, a savings
balance, stock holdings at a weighted-average cost basis and fixed deposits.

It provides tools for:
  - Buying and selling simulated stocks
  - Moving money between cash, savings and fixed deposits
  - Valuing portfolios against the current simulated prices
  - Running the price walk and the deposit maturity sweep
  - Serving the ledger over HTTP`,
	SilenceUsage: true,
}

var (
	cfgFile string
	userID  string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "demo", "user id the command acts on")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// app is everything a command needs to talk to the ledger.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  journal.Store
	engine *sim.Engine
}

func openApp(ctx context.Context, opts ...sim.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	store, err := journal.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	if cfg.Prices.SeedCatalog {
		n, err := journal.Seed(ctx, store, market.Catalog)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed instruments: %w", err)
		}
		if n > 0 {
			log.Info("seeded instruments", zap.Int("count", n))
		}
	}

	opts = append([]sim.Option{
		sim.WithLogger(log),
		sim.WithInitialFunding(cfg.Account.InitialFunding),
		sim.WithMaxStep(cfg.Prices.MaxStep()),
	}, opts...)
	engine := sim.NewEngine(store, opts...)
	return &app{cfg: cfg, log: log, store: store, engine: engine}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
}

func (a *app) money(m market.Money) string {
	return m.Format(a.cfg.Account.Currency)
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
