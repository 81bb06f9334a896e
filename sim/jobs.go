package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/investsim/ledger/config"
	"github.com/investsim/ledger/internal/cron"
	"github.com/investsim/ledger/journal"
	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// WalkPrices moves every active instrument one random-walk step and returns
// how many were updated.
func (e *Engine) WalkPrices(ctx context.Context, rng *rand.Rand) (int, error) {
	now := e.now().UTC()
	n := 0
	err := e.store.WithTx(ctx, func(tx journal.Tx) error {
		all, err := tx.ListInstruments(ctx)
		if err != nil {
			return err
		}
		for _, inst := range all {
			if !inst.IsActive {
				continue
			}
			if err := tx.UpsertInstrument(ctx, market.Walk(inst, e.maxStep, rng, now)); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		err = wrap("walk prices", err)
		e.log.Warn("price walk failed", zap.Error(err))
		return 0, err
	}
	e.log.Info("prices updated", zap.Int("instruments", n))
	return n, nil
}

// MatureDeposits marks every deposit past its maturity date as matured and
// returns how many changed. Amounts are never touched.
func (e *Engine) MatureDeposits(ctx context.Context) (int, error) {
	now := e.now().UTC()
	n := 0
	err := e.store.WithTx(ctx, func(tx journal.Tx) error {
		due, err := tx.ListDueFixedDeposits(ctx, now)
		if err != nil {
			return err
		}
		for _, d := range due {
			m, changed := ledger.Mature(d, now)
			if !changed {
				continue
			}
			if err := tx.UpdateFixedDepositStatus(ctx, m.ID, m.Status); err != nil {
				return err
			}
			e.log.Info("fixed deposit matured",
				zap.String("user_id", m.UserID),
				zap.String("deposit_id", m.ID),
				zap.Stringer("maturity_amount", m.MaturityAmount),
			)
			n++
		}
		return nil
	})
	if err != nil {
		err = wrap("mature deposits", err)
		e.log.Warn("maturity sweep failed", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// Schedule registers the price walk and the maturity sweep on r according
// to the config. Disabled or unscheduled jobs are skipped.
func (e *Engine) Schedule(r *cron.Runner, prices config.PricesConfig, deposits config.DepositsConfig, rng *rand.Rand) error {
	if prices.WalkEnabled {
		var mu sync.Mutex
		_, err := r.Add("walk prices", prices.WalkSchedule, func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			_, err := e.WalkPrices(ctx, rng)
			return err
		})
		if err != nil {
			return err
		}
	}
	if deposits.MaturitySchedule != "" {
		_, err := r.Add("mature deposits", deposits.MaturitySchedule, func(ctx context.Context) error {
			_, err := e.MatureDeposits(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SetPrice moves an active instrument to an externally supplied price.
func (e *Engine) SetPrice(ctx context.Context, symbol string, price market.Money) (market.Instrument, error) {
	if !price.IsPositive() || !price.Fits(ledger.PricePlaces) {
		return market.Instrument{}, fmt.Errorf("price %s for %s: %w", price, symbol, ledger.ErrInvalidAmount)
	}
	now := e.now().UTC()

	var out market.Instrument
	err := e.store.WithTx(ctx, func(tx journal.Tx) error {
		inst, err := activeInstrument(ctx, tx, market.NormalizeSymbol(symbol))
		if err != nil {
			return err
		}
		out = market.Reprice(inst, price, now)
		return tx.UpsertInstrument(ctx, out)
	})
	if err != nil {
		return market.Instrument{}, wrap("set price", err)
	}
	e.log.Debug("price set", zap.String("symbol", out.Symbol), zap.Stringer("price", out.CurrentPrice))
	return out, nil
}
