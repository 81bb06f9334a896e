package ledger

import (
	"fmt"

	"github.com/investsim/ledger/market"
)

const (
	// AvgPricePlaces is the precision kept for a holding's average price. The
	// weighted average is exact whenever the quotient terminates within it.
	AvgPricePlaces = 10
	// AmountPlaces is the finest balance or transfer amount the ledger holds.
	AmountPlaces = 10
	// SharesPlaces and PricePlaces bound an order so that its total always
	// fits in AmountPlaces.
	SharesPlaces = 6
	PricePlaces  = 4
)

// Order is a single-fill trade request at one price.
type Order struct {
	Symbol      string
	CompanyName string
	Shares      market.Shares
	Price       market.Money
}

func (o Order) validate() error {
	if market.NormalizeSymbol(o.Symbol) == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidOrder)
	}
	if !o.Shares.IsPositive() {
		return fmt.Errorf("%w: shares must be positive, got %s", ErrInvalidOrder, o.Shares)
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", ErrInvalidOrder, o.Price)
	}
	if !o.Shares.Fits(SharesPlaces) {
		return fmt.Errorf("%w: shares %s has more than %d decimal places", ErrInvalidOrder, o.Shares, SharesPlaces)
	}
	if !o.Price.Fits(PricePlaces) {
		return fmt.Errorf("%w: price %s has more than %d decimal places", ErrInvalidOrder, o.Price, PricePlaces)
	}
	return nil
}

// Total is shares x price.
func (o Order) Total() market.Money { return o.Price.Mul(o.Shares) }

// TradeResult is the state after a trade. Holdings is the complete new set of
// positions; Holding is the position that was written, or removed when
// Removed is set.
type TradeResult struct {
	Account     Account
	Holdings    []Holding
	Holding     Holding
	Removed     bool
	Transaction Transaction
}

// Buy spends shares x price of cash on a symbol. An existing position's
// average price becomes the quantity-weighted mean of the old position and
// the purchase; a new position starts at the purchase price.
func Buy(acct Account, holdings []Holding, o Order, st Stamp) (TradeResult, error) {
	if err := o.validate(); err != nil {
		return TradeResult{}, err
	}
	symbol := market.NormalizeSymbol(o.Symbol)
	total := o.Total()
	if acct.CashBalance.LessThan(total) {
		return TradeResult{}, fmt.Errorf("buy %s %s: need %s, have %s: %w",
			o.Shares, symbol, total, acct.CashBalance, ErrInsufficientFunds)
	}

	next := cloneHoldings(holdings)
	var h Holding
	if i := indexOf(next, symbol); i >= 0 {
		h = next[i]
		shares := h.Shares.Add(o.Shares)
		h.AvgPrice = h.CostBasis().Add(total).DivShares(shares, AvgPricePlaces)
		h.Shares = shares
		if h.CompanyName == "" {
			h.CompanyName = o.CompanyName
		}
		h.CurrentPrice = o.Price
		h.UpdatedAt = st.Now
		next[i] = h
	} else {
		h = Holding{
			ID:           st.id(),
			PortfolioID:  acct.PortfolioID,
			Symbol:       symbol,
			CompanyName:  o.CompanyName,
			Shares:       o.Shares,
			AvgPrice:     o.Price,
			CurrentPrice: o.Price,
			CreatedAt:    st.Now,
			UpdatedAt:    st.Now,
		}
		next = append(next, h)
	}

	acct.CashBalance = acct.CashBalance.Sub(total)
	acct.UpdatedAt = st.Now

	return TradeResult{
		Account:     acct,
		Holdings:    next,
		Holding:     h,
		Transaction: newTransaction(acct, h.CompanyName, TradeBuy, symbol, o, total, st),
	}, nil
}

// Sell credits shares x price to cash. The remaining position keeps its
// average price; a position sold down to zero is removed.
func Sell(acct Account, holdings []Holding, o Order, st Stamp) (TradeResult, error) {
	if err := o.validate(); err != nil {
		return TradeResult{}, err
	}
	symbol := market.NormalizeSymbol(o.Symbol)

	next := cloneHoldings(holdings)
	i := indexOf(next, symbol)
	if i < 0 {
		return TradeResult{}, fmt.Errorf("sell %s %s: no position: %w", o.Shares, symbol, ErrInsufficientShares)
	}
	h := next[i]
	if h.Shares.LessThan(o.Shares) {
		return TradeResult{}, fmt.Errorf("sell %s %s: holding %s: %w", o.Shares, symbol, h.Shares, ErrInsufficientShares)
	}

	total := o.Total()
	h.Shares = h.Shares.Sub(o.Shares)
	h.CurrentPrice = o.Price
	h.UpdatedAt = st.Now

	removed := h.Shares.IsZero()
	if removed {
		next = append(next[:i], next[i+1:]...)
	} else {
		next[i] = h
	}

	acct.CashBalance = acct.CashBalance.Add(total)
	acct.UpdatedAt = st.Now

	company := h.CompanyName
	if company == "" {
		company = o.CompanyName
	}
	return TradeResult{
		Account:     acct,
		Holdings:    next,
		Holding:     h,
		Removed:     removed,
		Transaction: newTransaction(acct, company, TradeSell, symbol, o, total, st),
	}, nil
}

func newTransaction(acct Account, company string, typ TradeType, symbol string, o Order, total market.Money, st Stamp) Transaction {
	return Transaction{
		ID:          st.id(),
		PortfolioID: acct.PortfolioID,
		Symbol:      symbol,
		CompanyName: company,
		Type:        typ,
		Shares:      o.Shares,
		Price:       o.Price,
		Total:       total,
		CreatedAt:   st.Now,
	}
}

// FindHolding returns the position in symbol, if any.
func FindHolding(holdings []Holding, symbol string) (Holding, bool) {
	if i := indexOf(holdings, market.NormalizeSymbol(symbol)); i >= 0 {
		return holdings[i], true
	}
	return Holding{}, false
}

func indexOf(holdings []Holding, symbol string) int {
	for i, h := range holdings {
		if h.Symbol == symbol {
			return i
		}
	}
	return -1
}

func cloneHoldings(holdings []Holding) []Holding {
	out := make([]Holding, len(holdings), len(holdings)+1)
	copy(out, holdings)
	return out
}
