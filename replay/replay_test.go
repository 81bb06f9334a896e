package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investsim/ledger/journal"
	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
	"github.com/investsim/ledger/sim"
)

func newEngine(t *testing.T, clock *Clock) *sim.Engine {
	t.Helper()
	s, err := journal.NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, err = journal.Seed(context.Background(), s, market.Catalog)
	require.NoError(t, err)
	return sim.NewEngine(s, sim.WithClock(clock.Now))
}

func TestReplaySession(t *testing.T) {
	ctx := context.Background()
	clock := &Clock{}
	e := newEngine(t, clock)

	// Scripted scenario:
	// - alice buys 10 AAPL at 100, the price rises to 120, she sells 4
	// - she parks cash in savings and opens a six month deposit
	// - half a year later the maturity sweep runs
	script := `time,symbol,price,event,user,arg1,arg2
2025-01-10T09:30:00Z,,,OPEN,alice
2025-01-10T09:30:05Z,AAPL,100.00,BUY,alice,10
2025-01-10T09:31:00Z,AAPL,110.00
2025-01-10T09:32:00Z,AAPL,120.00,SELL,alice,4
2025-01-10T10:00:00Z,,,TRANSFER,alice,cash_to_savings,500
2025-01-10T10:00:00Z,,,DEPOSIT,alice,1000,6
2025-07-11T00:00:00Z,,,MATURE
`
	st, err := Run(ctx, strings.NewReader(script), e, Options{Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 7, Prices: 3, Events: 6}, st)

	acct, err := e.Account(ctx, "alice")
	require.NoError(t, err)
	// 10000 - 1000 + 480 - 500 - 1000
	assert.True(t, acct.CashBalance.Equal(market.MustMoney("7980")), acct.CashBalance.String())
	assert.True(t, acct.SavingsBalance.Equal(market.MustMoney("500")))

	txs, err := e.Transactions(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, ledger.TradeSell, txs[0].Type)
	assert.True(t, txs[0].CreatedAt.Equal(time.Date(2025, 1, 10, 9, 32, 0, 0, time.UTC)))
	assert.True(t, txs[1].Price.Equal(market.MustMoney("100")))

	p, err := e.Portfolio(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, p.Summary.Holdings, 1)
	assert.True(t, p.Summary.Holdings[0].AvgPrice.Equal(market.MustMoney("100")))
	assert.True(t, p.Summary.Holdings[0].CurrentPrice.Equal(market.MustMoney("120")))

	ds, err := e.FixedDeposits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, ledger.DepositMatured, ds[0].Status)
}

func TestReplayStopsAtFailingRow(t *testing.T) {
	ctx := context.Background()
	clock := &Clock{}
	e := newEngine(t, clock)

	script := `2025-01-10T09:30:00Z,,,OPEN,bob
2025-01-10T09:30:05Z,MSFT,,SELL,bob,1
2025-01-10T09:30:10Z,MSFT,1.00
`
	st, err := Run(ctx, strings.NewReader(script), e, Options{Clock: clock})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.ErrorIs(t, err, ledger.ErrInsufficientShares)
	assert.Equal(t, 1, st.Rows)

	q, err := e.Quote(ctx, "MSFT")
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(market.MustMoney("378.91")))
}

func TestReplayBadRows(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"short row", "2025-01-10T09:30:00Z,AAPL\n"},
		{"bad time", "yesterday,AAPL,1.00\n"},
		{"bad price", "2025-01-10T09:30:00Z,AAPL,abc\n"},
		{"unknown event", "2025-01-10T09:30:00Z,,,DANCE,alice\n"},
		{"missing user", "2025-01-10T09:30:00Z,AAPL,,BUY\n"},
		{"missing shares", "2025-01-10T09:30:00Z,,,OPEN,alice\n2025-01-10T09:30:00Z,AAPL,,BUY,alice\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, &Clock{})
			_, err := Run(context.Background(), strings.NewReader(tt.script), e, Options{})
			assert.Error(t, err)
		})
	}
}

func TestReplayEventThenPrice(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, &Clock{})

	script := "2025-01-10T09:30:00Z,,,OPEN,carol\n2025-01-10T09:30:05Z,AAPL,200.00,BUY,carol,1\n"
	_, err := Run(ctx, strings.NewReader(script), e, Options{EventThenPrice: true})
	require.NoError(t, err)

	txs, err := e.Transactions(ctx, "carol", 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Price.Equal(market.MustMoney("182.52")))
}

func TestCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.csv")
	require.NoError(t, os.WriteFile(path, []byte("time,symbol,price\n2025-01-10T09:30:00Z,TSLA,250.00\n"), 0o644))

	e := newEngine(t, &Clock{})
	st, err := CSV(context.Background(), path, e, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Prices)

	_, err = CSV(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), e, Options{})
	assert.Error(t, err)
}
