package market

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoQuote is returned by a PriceSource that has no price for a symbol.
var ErrNoQuote = errors.New("price not found")

// Quote is the current price of a symbol together with its last move.
type Quote struct {
	Symbol        string
	Price         Money
	Change        Money
	ChangePercent Percent
	Time          time.Time
}

// PriceSource supplies the current quote for a symbol.
type PriceSource interface {
	GetQuote(ctx context.Context, symbol string) (Quote, error)
}

// QuoteBook is an in-memory PriceSource.
type QuoteBook struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuoteBook(quotes ...Quote) *QuoteBook {
	qb := &QuoteBook{quotes: make(map[string]Quote)}
	for _, q := range quotes {
		qb.Set(q)
	}
	return qb
}

func (qb *QuoteBook) Set(q Quote) {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	qb.quotes[NormalizeSymbol(q.Symbol)] = q
}

func (qb *QuoteBook) GetQuote(_ context.Context, symbol string) (Quote, error) {
	qb.mu.RLock()
	defer qb.mu.RUnlock()
	q, ok := qb.quotes[NormalizeSymbol(symbol)]
	if !ok {
		return Quote{}, ErrNoQuote
	}
	return q, nil
}
