package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// StorePriceSource quotes prices from the instrument table. The engine
// rebinds it to its open transaction through InTx.
type StorePriceSource struct {
	R Reader
}

// InTx returns a source reading through r instead of the store.
func (p StorePriceSource) InTx(r Reader) market.PriceSource { return StorePriceSource{R: r} }

func (p StorePriceSource) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	inst, err := p.R.GetInstrument(ctx, symbol)
	if errors.Is(err, ledger.ErrNotFound) {
		return market.Quote{}, fmt.Errorf("%s: %w", market.NormalizeSymbol(symbol), market.ErrNoQuote)
	}
	if err != nil {
		return market.Quote{}, err
	}
	if !inst.IsActive {
		return market.Quote{}, fmt.Errorf("%s inactive: %w", inst.Symbol, market.ErrNoQuote)
	}
	return inst.Quote(), nil
}
