package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investsim/ledger/market"
)

func TestBuyOpensPosition(t *testing.T) {
	t.Parallel()

	res, err := Buy(account("10000", "0"), nil, order("aapl", 10, "100"), stamp())
	require.NoError(t, err)

	assertMoney(t, "9000", res.Account.CashBalance)
	require.Len(t, res.Holdings, 1)

	h := res.Holdings[0]
	assert.Equal(t, "AAPL", h.Symbol)
	assert.Equal(t, "p1", h.PortfolioID)
	assert.Equal(t, "id-1", h.ID)
	assert.True(t, h.Shares.Equal(market.Q(10)))
	assertMoney(t, "100", h.AvgPrice)

	tx := res.Transaction
	assert.Equal(t, TradeBuy, tx.Type)
	assert.Equal(t, "AAPL", tx.Symbol)
	assertMoney(t, "1000", tx.Total)
	assert.Equal(t, t0, tx.CreatedAt)
}

func TestBuyWeightedAverage(t *testing.T) {
	t.Parallel()

	st := stamp()
	first, err := Buy(account("10000", "0"), nil, order("AAPL", 10, "100"), st)
	require.NoError(t, err)

	second, err := Buy(first.Account, first.Holdings, order("AAPL", 5, "130"), st)
	require.NoError(t, err)

	require.Len(t, second.Holdings, 1)
	h := second.Holdings[0]
	assert.Equal(t, first.Holding.ID, h.ID, "existing holding is updated in place")
	assert.True(t, h.Shares.Equal(market.Q(15)))
	assertMoney(t, "110", h.AvgPrice)
	assertMoney(t, "8350", second.Account.CashBalance)
}

func TestBuyFractionalSharesDoNotDrift(t *testing.T) {
	t.Parallel()

	acct := account("10000", "0")
	var holdings []Holding
	st := stamp()
	before := worth(acct, holdings, market.Money{})

	prices := []string{"182.52", "134.85", "99.99", "250.01", "0.37"}
	for i := 0; i < 40; i++ {
		res, err := Buy(acct, holdings, order("TSLA", 0.1, prices[i%len(prices)]), st)
		require.NoError(t, err)
		acct, holdings = res.Account, res.Holdings
	}

	after := worth(acct, holdings, market.Money{})
	assert.True(t, after.Round(market.CentPlaces).Equal(before.Round(market.CentPlaces)),
		"before %s after %s", before, after)
	assert.True(t, holdings[0].Shares.Equal(market.Q(4)))
}

func TestBuyInsufficientFundsLeavesInputsUntouched(t *testing.T) {
	t.Parallel()

	acct := account("999.99", "500")
	holdings := []Holding{{ID: "h1", PortfolioID: "p1", Symbol: "AAPL", Shares: market.Q(1), AvgPrice: usd("100")}}

	_, err := Buy(acct, holdings, order("AAPL", 10, "100"), stamp())
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, IsRejection(err))

	assertMoney(t, "999.99", acct.CashBalance)
	assert.True(t, holdings[0].Shares.Equal(market.Q(1)))
}

func TestBuyDoesNotMutateInputSlice(t *testing.T) {
	t.Parallel()

	holdings := []Holding{{ID: "h1", Symbol: "AAPL", Shares: market.Q(10), AvgPrice: usd("100")}}
	_, err := Buy(account("10000", "0"), holdings, order("AAPL", 5, "130"), stamp())
	require.NoError(t, err)

	assert.True(t, holdings[0].Shares.Equal(market.Q(10)))
	assertMoney(t, "100", holdings[0].AvgPrice)
}

func TestOrderValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		o    Order
	}{
		{"zero shares", order("AAPL", 0, "100")},
		{"negative shares", order("AAPL", -1, "100")},
		{"zero price", order("AAPL", 1, "0")},
		{"negative price", order("AAPL", 1, "-5")},
		{"empty symbol", order("  ", 1, "5")},
		{"shares finer than six places", order("AAPL", 0.0000001, "100")},
		{"price finer than four places", order("AAPL", 1, "100.00001")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Buy(account("10000", "0"), nil, tt.o, stamp())
			assert.ErrorIs(t, err, ErrInvalidOrder)

			_, err = Sell(account("10000", "0"), nil, tt.o, stamp())
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}
}

func TestSellKeepsCostBasis(t *testing.T) {
	t.Parallel()

	acct := account("8350", "0")
	holdings := []Holding{{ID: "h1", PortfolioID: "p1", Symbol: "AAPL", CompanyName: "Apple Inc.", Shares: market.Q(15), AvgPrice: usd("110")}}

	res, err := Sell(acct, holdings, Order{Symbol: "AAPL", Shares: market.Q(5), Price: usd("150")}, stamp())
	require.NoError(t, err)

	require.Len(t, res.Holdings, 1)
	assert.False(t, res.Removed)
	assert.True(t, res.Holdings[0].Shares.Equal(market.Q(10)))
	assertMoney(t, "110", res.Holdings[0].AvgPrice)
	assertMoney(t, "9100", res.Account.CashBalance)

	tx := res.Transaction
	assert.Equal(t, TradeSell, tx.Type)
	assert.Equal(t, "Apple Inc.", tx.CompanyName)
	assertMoney(t, "750", tx.Total)
}

func TestSellAllRemovesHolding(t *testing.T) {
	t.Parallel()

	holdings := []Holding{
		{ID: "h1", Symbol: "AAPL", Shares: market.Q(2.5), AvgPrice: usd("100")},
		{ID: "h2", Symbol: "MSFT", Shares: market.Q(1), AvgPrice: usd("300")},
	}

	res, err := Sell(account("0", "0"), holdings, order("AAPL", 2.5, "120"), stamp())
	require.NoError(t, err)

	assert.True(t, res.Removed)
	assert.Equal(t, "h1", res.Holding.ID)
	require.Len(t, res.Holdings, 1)
	assert.Equal(t, "MSFT", res.Holdings[0].Symbol)
	assertMoney(t, "300", res.Account.CashBalance)
	assert.Len(t, holdings, 2)
}

func TestSellInsufficientShares(t *testing.T) {
	t.Parallel()

	holdings := []Holding{{ID: "h1", Symbol: "AAPL", Shares: market.Q(3), AvgPrice: usd("100")}}

	_, err := Sell(account("0", "0"), holdings, order("AAPL", 3.5, "100"), stamp())
	assert.ErrorIs(t, err, ErrInsufficientShares)

	_, err = Sell(account("0", "0"), holdings, order("GOOGL", 1, "100"), stamp())
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestTradesConserveMoney(t *testing.T) {
	t.Parallel()

	acct := account("10000", "0")
	var holdings []Holding
	var sold market.Money
	st := stamp()

	steps := []struct {
		buy    bool
		symbol string
		shares float64
		price  string
	}{
		{true, "AAPL", 10, "100"},
		{true, "AAPL", 5, "130"},
		{true, "MSFT", 2.25, "378.91"},
		{false, "AAPL", 5, "130"},
		{true, "AAPL", 3, "99.5"},
		{false, "MSFT", 2.25, "378.91"},
	}

	start := worth(acct, holdings, sold)
	for _, s := range steps {
		o := order(s.symbol, s.shares, s.price)
		var res TradeResult
		var err error
		if s.buy {
			res, err = Buy(acct, holdings, o, st)
		} else {
			// A sale converts shares at the trade price; the difference to the
			// cost basis removed is the realized gain, not created money.
			h, ok := FindHolding(holdings, s.symbol)
			require.True(t, ok)
			sold = sold.Add(o.Total().Sub(h.AvgPrice.Mul(o.Shares)))
			res, err = Sell(acct, holdings, o, st)
		}
		require.NoError(t, err)
		acct, holdings = res.Account, res.Holdings
	}

	end := worth(acct, holdings, sold)
	assert.True(t, end.Round(market.CentPlaces).Equal(start.Round(market.CentPlaces)), "start %s end %s", start, end)
}
