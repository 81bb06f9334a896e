package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/investsim/ledger/market"
)

var t0 = time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC)

func stamp() Stamp {
	n := 0
	return Stamp{Now: t0, NewID: func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}}
}

func usd(s string) market.Money { return market.MustMoney(s) }

func account(cash, savings string) Account {
	return Account{UserID: "u1", PortfolioID: "p1", CashBalance: usd(cash), SavingsBalance: usd(savings)}
}

func order(symbol string, shares float64, price string) Order {
	return Order{Symbol: symbol, CompanyName: symbol + " Corp", Shares: market.Q(shares), Price: usd(price)}
}

// worth is cash + savings + the cost basis of every position: the quantity
// that no buy, sell or transfer may change when prices do not move.
func worth(acct Account, holdings []Holding, sold market.Money) market.Money {
	w := acct.CashBalance.Add(acct.SavingsBalance)
	for _, h := range holdings {
		w = w.Add(h.CostBasis())
	}
	return w.Sub(sold)
}

func assertMoney(t *testing.T, want string, got market.Money, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(usd(want)), append([]any{"want %s, got %s", want, got}, msgAndArgs...)...)
}
