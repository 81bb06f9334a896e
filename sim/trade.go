package sim

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/investsim/ledger/journal"
	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// Buy purchases shares of symbol at its current price.
func (e *Engine) Buy(ctx context.Context, userID, symbol string, shares market.Shares) (ledger.TradeResult, error) {
	return e.trade(ctx, ledger.TradeBuy, userID, symbol, shares, nil)
}

// Sell sells shares of symbol at its current price.
func (e *Engine) Sell(ctx context.Context, userID, symbol string, shares market.Shares) (ledger.TradeResult, error) {
	return e.trade(ctx, ledger.TradeSell, userID, symbol, shares, nil)
}

// BuyQuoted purchases at the current price only while it still equals the
// quote the caller saw. A moved price is rejected with ledger.ErrStaleQuote.
func (e *Engine) BuyQuoted(ctx context.Context, userID, symbol string, shares market.Shares, quoted market.Money) (ledger.TradeResult, error) {
	return e.trade(ctx, ledger.TradeBuy, userID, symbol, shares, &quoted)
}

// SellQuoted is the sell side of BuyQuoted.
func (e *Engine) SellQuoted(ctx context.Context, userID, symbol string, shares market.Shares, quoted market.Money) (ledger.TradeResult, error) {
	return e.trade(ctx, ledger.TradeSell, userID, symbol, shares, &quoted)
}

func (e *Engine) trade(ctx context.Context, side ledger.TradeType, userID, symbol string, shares market.Shares, quoted *market.Money) (ledger.TradeResult, error) {
	symbol = market.NormalizeSymbol(symbol)
	apply := ledger.Buy
	if side == ledger.TradeSell {
		apply = ledger.Sell
	}

	var res ledger.TradeResult
	err := e.store.WithTx(ctx, func(tx journal.Tx) error {
		acct, err := tx.GetAccount(ctx, userID)
		if err != nil {
			return err
		}
		inst, err := activeInstrument(ctx, tx, symbol)
		if err != nil {
			return err
		}
		price, err := e.executionPrice(ctx, tx, inst, quoted)
		if err != nil {
			return err
		}
		holdings, err := tx.GetHoldings(ctx, acct.PortfolioID)
		if err != nil {
			return err
		}

		res, err = apply(acct, holdings, ledger.Order{
			Symbol:      inst.Symbol,
			CompanyName: inst.Name,
			Shares:      shares,
			Price:       price,
		}, e.stamp())
		if err != nil {
			return err
		}

		if err := tx.UpdateAccount(ctx, res.Account); err != nil {
			return err
		}
		if res.Removed {
			err = tx.DeleteHolding(ctx, res.Holding.PortfolioID, res.Holding.Symbol)
		} else {
			err = tx.UpsertHolding(ctx, res.Holding)
		}
		if err != nil {
			return err
		}
		return tx.AppendTransaction(ctx, res.Transaction)
	})
	err = wrap(string(side), err)

	fields := []zap.Field{
		zap.String("user_id", userID),
		zap.String("symbol", symbol),
		zap.Stringer("shares", shares),
	}
	if err == nil {
		fields = append(fields,
			zap.Stringer("price", res.Transaction.Price),
			zap.Stringer("total", res.Transaction.Total),
			zap.Stringer("cash", res.Account.CashBalance),
		)
	}
	e.logResult(string(side), err, fields...)

	if err != nil {
		return ledger.TradeResult{}, err
	}
	return res, nil
}

func activeInstrument(ctx context.Context, r journal.Reader, symbol string) (market.Instrument, error) {
	inst, err := r.GetInstrument(ctx, symbol)
	if err != nil {
		return market.Instrument{}, err
	}
	if !inst.IsActive {
		return market.Instrument{}, fmt.Errorf("instrument %s is not active: %w", inst.Symbol, ledger.ErrNotFound)
	}
	return inst, nil
}

// txPriceSource is a price source that reads the store. It is rebound to the
// open transaction so a quote never takes a second lock on the store.
type txPriceSource interface {
	InTx(r journal.Reader) market.PriceSource
}

// executionPrice is the price source's quote, or the instrument's stored
// price when there is no source. A quoted price must match it exactly.
func (e *Engine) executionPrice(ctx context.Context, r journal.Reader, inst market.Instrument, quoted *market.Money) (market.Money, error) {
	price, err := e.priceOf(ctx, r, inst)
	if err != nil {
		return market.Money{}, err
	}
	if quoted != nil && !quoted.Equal(price) {
		return market.Money{}, fmt.Errorf("%s quoted at %s, now %s: %w", inst.Symbol, *quoted, price, ledger.ErrStaleQuote)
	}
	return price, nil
}

func (e *Engine) priceOf(ctx context.Context, r journal.Reader, inst market.Instrument) (market.Money, error) {
	src := e.prices
	if src == nil {
		return inst.CurrentPrice, nil
	}
	if b, ok := src.(txPriceSource); ok {
		src = b.InTx(r)
	}
	q, err := src.GetQuote(ctx, inst.Symbol)
	if errors.Is(err, market.ErrNoQuote) {
		return market.Money{}, fmt.Errorf("quote %s: %w: %w", inst.Symbol, ledger.ErrNotFound, err)
	}
	if err != nil {
		return market.Money{}, fmt.Errorf("quote %s: %w", inst.Symbol, err)
	}
	return q.Price, nil
}
