package journal

import (
	"context"
	"fmt"

	"github.com/investsim/ledger/config"
	"github.com/investsim/ledger/market"
)

// Open returns the Store described by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Type {
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StoreSQLite:
		s, err := NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DBPath, err)
		}
		return s, nil
	case config.StorePostgres:
		s, err := NewPostgres(cfg.DSN, cfg.MaxOpenConns)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.Type)
}

// Seed inserts instruments when the instrument table is empty and reports
// how many were written. A store that already lists instruments is left
// untouched, so prices moved by the walk survive restarts.
func Seed(ctx context.Context, s Store, instruments []market.Instrument) (int, error) {
	n := 0
	err := s.WithTx(ctx, func(tx Tx) error {
		existing, err := tx.ListInstruments(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		for _, inst := range instruments {
			if err := tx.UpsertInstrument(ctx, inst); err != nil {
				return fmt.Errorf("seed %s: %w", inst.Symbol, err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
