package sim

import (
	"context"
	"errors"

	"github.com/investsim/ledger/journal"
	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// Portfolio is a valued snapshot of one user's account.
type Portfolio struct {
	Account           ledger.Account          `json:"account"`
	Summary           ledger.PortfolioSummary `json:"summary"`
	FixedDeposits     []ledger.FixedDeposit   `json:"fixed_deposits"`
	DepositsPrincipal market.Money            `json:"fixed_deposits_principal"`
}

// Portfolio values the user's holdings at current instrument prices. All
// figures come from one store transaction.
func (e *Engine) Portfolio(ctx context.Context, userID string) (Portfolio, error) {
	var p Portfolio
	err := e.store.WithTx(ctx, func(tx journal.Tx) error {
		acct, err := tx.GetAccount(ctx, userID)
		if err != nil {
			return err
		}
		holdings, err := tx.GetHoldings(ctx, acct.PortfolioID)
		if err != nil {
			return err
		}
		for i, h := range holdings {
			inst, err := tx.GetInstrument(ctx, h.Symbol)
			switch {
			case err == nil:
				holdings[i].CurrentPrice = inst.CurrentPrice
			case errors.Is(err, ledger.ErrNotFound):
				// Keep the last traded price.
			default:
				return err
			}
		}
		deposits, err := tx.ListFixedDeposits(ctx, userID)
		if err != nil {
			return err
		}

		p = Portfolio{
			Account:           acct,
			Summary:           ledger.ComputePortfolioSummary(acct, holdings, e.funding),
			FixedDeposits:     deposits,
			DepositsPrincipal: ledger.DepositsPrincipal(deposits),
		}
		return nil
	})
	if err != nil {
		return Portfolio{}, wrap("portfolio", err)
	}
	return p, nil
}

// Transactions returns the user's trade log, newest first. limit <= 0
// returns everything.
func (e *Engine) Transactions(ctx context.Context, userID string, limit int) ([]ledger.Transaction, error) {
	acct, err := e.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, wrap("transactions", err)
	}
	txs, err := e.store.ListTransactions(ctx, acct.PortfolioID, limit)
	return txs, wrap("transactions", err)
}

// FundTransfers returns the user's transfer log, newest first.
func (e *Engine) FundTransfers(ctx context.Context, userID string, limit int) ([]ledger.FundTransfer, error) {
	if _, err := e.store.GetAccount(ctx, userID); err != nil {
		return nil, wrap("fund transfers", err)
	}
	fts, err := e.store.ListFundTransfers(ctx, userID, limit)
	return fts, wrap("fund transfers", err)
}

// FixedDeposits returns the user's deposits, newest first.
func (e *Engine) FixedDeposits(ctx context.Context, userID string) ([]ledger.FixedDeposit, error) {
	if _, err := e.store.GetAccount(ctx, userID); err != nil {
		return nil, wrap("fixed deposits", err)
	}
	ds, err := e.store.ListFixedDeposits(ctx, userID)
	return ds, wrap("fixed deposits", err)
}

// Instruments returns the active instruments ordered by symbol.
func (e *Engine) Instruments(ctx context.Context) ([]market.Instrument, error) {
	all, err := e.store.ListInstruments(ctx)
	if err != nil {
		return nil, wrap("instruments", err)
	}
	active := make([]market.Instrument, 0, len(all))
	for _, inst := range all {
		if inst.IsActive {
			active = append(active, inst)
		}
	}
	return active, nil
}

// Quote returns the current quote of an active instrument.
func (e *Engine) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	inst, err := activeInstrument(ctx, e.store, market.NormalizeSymbol(symbol))
	if err != nil {
		return market.Quote{}, wrap("quote", err)
	}
	return inst.Quote(), nil
}
