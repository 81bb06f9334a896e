package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investsim/ledger/journal"
	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
	"github.com/investsim/ledger/sim"
)

var t0 = time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := journal.NewMemory()
	_, err := journal.Seed(context.Background(), s, market.Catalog)
	require.NoError(t, err)

	e := sim.NewEngine(s, sim.WithClock(func() time.Time { return t0 }))
	return NewRouter(e, nil)
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func assertMoney(t *testing.T, want string, got market.Money) {
	t.Helper()
	assert.True(t, market.MustMoney(want).Equal(got), "want %s, got %s", want, got)
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetAccountProvisions(t *testing.T) {
	r := newRouter(t)

	code, env := do(t, r, http.MethodGet, "/api/v1/accounts/alice", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "ok", env.Message)

	var acct ledger.Account
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assert.Equal(t, "alice", acct.UserID)
	assertMoney(t, "10000.00", acct.CashBalance)
	assertMoney(t, "0", acct.SavingsBalance)
}

func TestTradeRoutes(t *testing.T) {
	r := newRouter(t)
	do(t, r, http.MethodGet, "/api/v1/accounts/alice", nil)

	code, env := do(t, r, http.MethodPost, "/api/v1/accounts/alice/buy", map[string]any{"symbol": "aapl", "shares": "10"})
	require.Equal(t, http.StatusOK, code, env.Message)

	var res struct {
		Account     ledger.Account     `json:"account"`
		Holding     ledger.Holding     `json:"holding"`
		Removed     bool               `json:"removed"`
		Transaction ledger.Transaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assertMoney(t, "8174.80", res.Account.CashBalance)
	assert.Equal(t, "AAPL", res.Holding.Symbol)
	assertMoney(t, "182.52", res.Holding.AvgPrice)
	assert.Equal(t, ledger.TradeBuy, res.Transaction.Type)
	assertMoney(t, "1825.20", res.Transaction.Total)

	// A price the instrument is not trading at is rejected, not filled.
	code, env = do(t, r, http.MethodPost, "/api/v1/accounts/alice/sell", map[string]any{"symbol": "AAPL", "shares": 10, "price": "200"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Message, "stale quote")

	code, env = do(t, r, http.MethodGet, "/api/v1/accounts/alice", nil)
	require.Equal(t, http.StatusOK, code)
	var acct ledger.Account
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assertMoney(t, "8174.80", acct.CashBalance)

	code, env = do(t, r, http.MethodPost, "/api/v1/accounts/alice/sell", map[string]any{"symbol": "AAPL", "shares": 10, "price": "182.52"})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Removed)
	assertMoney(t, "10000", res.Account.CashBalance)
	assertMoney(t, "182.52", res.Transaction.Price)

	code, env = do(t, r, http.MethodGet, "/api/v1/accounts/alice/transactions?limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	var txs []ledger.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.TradeSell, txs[0].Type)
	assert.EqualValues(t, 1, env.Meta["limit"])
}

func TestTradeErrors(t *testing.T) {
	r := newRouter(t)
	do(t, r, http.MethodGet, "/api/v1/accounts/alice", nil)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"malformed body", "/api/v1/accounts/alice/buy", "{not json", http.StatusBadRequest},
		{"missing symbol", "/api/v1/accounts/alice/buy", map[string]any{"shares": "1"}, http.StatusBadRequest},
		{"zero shares", "/api/v1/accounts/alice/buy", map[string]any{"symbol": "AAPL", "shares": "0"}, http.StatusUnprocessableEntity},
		{"shares too fine", "/api/v1/accounts/alice/buy", map[string]any{"symbol": "AAPL", "shares": "0.0000001"}, http.StatusUnprocessableEntity},
		{"stale quote", "/api/v1/accounts/alice/buy", map[string]any{"symbol": "AAPL", "shares": "1", "price": "1"}, http.StatusUnprocessableEntity},
		{"insufficient funds", "/api/v1/accounts/alice/buy", map[string]any{"symbol": "MSFT", "shares": "100"}, http.StatusUnprocessableEntity},
		{"no position", "/api/v1/accounts/alice/sell", map[string]any{"symbol": "AAPL", "shares": "1"}, http.StatusUnprocessableEntity},
		{"unknown symbol", "/api/v1/accounts/alice/buy", map[string]any{"symbol": "ZZZZ", "shares": "1"}, http.StatusNotFound},
		{"unknown account", "/api/v1/accounts/bob/buy", map[string]any{"symbol": "AAPL", "shares": "1"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.want, env.Code)
			assert.NotEmpty(t, env.Message)
		})
	}

	code, env := do(t, r, http.MethodGet, "/api/v1/accounts/alice", nil)
	require.Equal(t, http.StatusOK, code)
	var acct ledger.Account
	require.NoError(t, json.Unmarshal(env.Data, &acct))
	assertMoney(t, "10000.00", acct.CashBalance)
}

func TestTransfersAndDeposits(t *testing.T) {
	r := newRouter(t)
	do(t, r, http.MethodGet, "/api/v1/accounts/alice", nil)

	code, env := do(t, r, http.MethodPost, "/api/v1/accounts/alice/transfers", map[string]any{"direction": "cash-to-savings", "amount": "1000"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var tr struct {
		Account  ledger.Account      `json:"account"`
		Transfer ledger.FundTransfer `json:"transfer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tr))
	assertMoney(t, "9000.00", tr.Account.CashBalance)
	assertMoney(t, "1000", tr.Account.SavingsBalance)
	assert.Equal(t, ledger.CashToSavingsTransfer, tr.Transfer.Type)

	code, _ = do(t, r, http.MethodPost, "/api/v1/accounts/alice/transfers", map[string]any{"direction": "sideways", "amount": "1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/accounts/alice/transfers", map[string]any{"direction": "savings_to_cash", "amount": "5000"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = do(t, r, http.MethodPost, "/api/v1/accounts/alice/deposits", map[string]any{"amount": "2000"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var dr struct {
		Account ledger.Account      `json:"account"`
		Deposit ledger.FixedDeposit `json:"deposit"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dr))
	assertMoney(t, "7000.00", dr.Account.CashBalance)
	assert.Equal(t, ledger.DefaultTenureMonths, dr.Deposit.TenureMonths)
	assertMoney(t, "2130.00", dr.Deposit.MaturityAmount)

	code, env = do(t, r, http.MethodGet, "/api/v1/accounts/alice/deposits", nil)
	require.Equal(t, http.StatusOK, code)
	var ds []ledger.FixedDeposit
	require.NoError(t, json.Unmarshal(env.Data, &ds))
	assert.Len(t, ds, 1)
	assert.Equal(t, "2000", env.Meta["active_principal"])

	code, env = do(t, r, http.MethodGet, "/api/v1/accounts/alice/transfers", nil)
	require.Equal(t, http.StatusOK, code)
	var fts []ledger.FundTransfer
	require.NoError(t, json.Unmarshal(env.Data, &fts))
	assert.Len(t, fts, 2)
}

func TestPortfolioAndInstruments(t *testing.T) {
	r := newRouter(t)

	code, env := do(t, r, http.MethodGet, "/api/v1/accounts/carol/portfolio", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var p sim.Portfolio
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assertMoney(t, "10000.00", p.Summary.TotalValue)
	assert.Empty(t, p.Summary.Holdings)

	code, env = do(t, r, http.MethodGet, "/api/v1/instruments", nil)
	require.Equal(t, http.StatusOK, code)
	var insts []market.Instrument
	require.NoError(t, json.Unmarshal(env.Data, &insts))
	assert.Len(t, insts, len(market.Catalog))

	code, env = do(t, r, http.MethodGet, "/api/v1/instruments/msft", nil)
	require.Equal(t, http.StatusOK, code)
	var q struct {
		Symbol string       `json:"symbol"`
		Price  market.Money `json:"price"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, "MSFT", q.Symbol)
	assertMoney(t, "378.91", q.Price)

	code, _ = do(t, r, http.MethodGet, "/api/v1/instruments/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, r, http.MethodGet, "/api/v1/accounts/nobody/transactions", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
