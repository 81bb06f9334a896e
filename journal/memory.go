package journal

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// Memory is a Store held in process memory. One lock is held for the whole
// of a transaction, which runs against a copy of the state that replaces the
// live state only on commit.
type Memory struct {
	mu    sync.RWMutex
	state *memState
}

type memState struct {
	accounts     map[string]ledger.Account
	holdings     map[string][]ledger.Holding
	transactions []ledger.Transaction
	transfers    []ledger.FundTransfer
	deposits     []ledger.FixedDeposit
	instruments  map[string]market.Instrument
}

func NewMemory() *Memory {
	return &Memory{state: &memState{
		accounts:    make(map[string]ledger.Account),
		holdings:    make(map[string][]ledger.Holding),
		instruments: make(map[string]market.Instrument),
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		accounts:     make(map[string]ledger.Account, len(s.accounts)),
		holdings:     make(map[string][]ledger.Holding, len(s.holdings)),
		transactions: slices.Clone(s.transactions),
		transfers:    slices.Clone(s.transfers),
		deposits:     slices.Clone(s.deposits),
		instruments:  make(map[string]market.Instrument, len(s.instruments)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.holdings {
		c.holdings[k] = slices.Clone(v)
	}
	for k, v := range s.instruments {
		c.instruments[k] = v
	}
	return c
}

func (m *Memory) WithTx(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{s: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = tx.s
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) read() *memTx {
	return &memTx{s: m.state}
}

func (m *Memory) GetAccount(ctx context.Context, userID string) (ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetAccount(ctx, userID)
}

func (m *Memory) GetHoldings(ctx context.Context, portfolioID string) ([]ledger.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetHoldings(ctx, portfolioID)
}

func (m *Memory) ListTransactions(ctx context.Context, portfolioID string, limit int) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListTransactions(ctx, portfolioID, limit)
}

func (m *Memory) ListFundTransfers(ctx context.Context, userID string, limit int) ([]ledger.FundTransfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListFundTransfers(ctx, userID, limit)
}

func (m *Memory) ListFixedDeposits(ctx context.Context, userID string) ([]ledger.FixedDeposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListFixedDeposits(ctx, userID)
}

func (m *Memory) ListDueFixedDeposits(ctx context.Context, asOf time.Time) ([]ledger.FixedDeposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListDueFixedDeposits(ctx, asOf)
}

func (m *Memory) GetInstrument(ctx context.Context, symbol string) (market.Instrument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetInstrument(ctx, symbol)
}

func (m *Memory) ListInstruments(ctx context.Context) ([]market.Instrument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListInstruments(ctx)
}

// memTx operates directly on a memState; the caller owns the locking.
type memTx struct {
	s *memState
}

func (t *memTx) GetAccount(_ context.Context, userID string) (ledger.Account, error) {
	a, ok := t.s.accounts[userID]
	if !ok {
		return ledger.Account{}, fmt.Errorf("account %q: %w", userID, ledger.ErrNotFound)
	}
	return a, nil
}

func (t *memTx) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	if existing, ok := t.s.accounts[a.UserID]; ok {
		return existing, nil
	}
	t.s.accounts[a.UserID] = a
	return a, nil
}

func (t *memTx) UpdateAccount(_ context.Context, a ledger.Account) error {
	if _, ok := t.s.accounts[a.UserID]; !ok {
		return fmt.Errorf("account %q: %w", a.UserID, ledger.ErrNotFound)
	}
	t.s.accounts[a.UserID] = a
	return nil
}

func (t *memTx) GetHoldings(_ context.Context, portfolioID string) ([]ledger.Holding, error) {
	out := slices.Clone(t.s.holdings[portfolioID])
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	if out == nil {
		out = []ledger.Holding{}
	}
	return out, nil
}

func (t *memTx) UpsertHolding(_ context.Context, h ledger.Holding) error {
	hs := t.s.holdings[h.PortfolioID]
	for i := range hs {
		if hs[i].Symbol == h.Symbol {
			h.ID = hs[i].ID
			h.CreatedAt = hs[i].CreatedAt
			hs[i] = h
			return nil
		}
	}
	t.s.holdings[h.PortfolioID] = append(hs, h)
	return nil
}

func (t *memTx) DeleteHolding(_ context.Context, portfolioID, symbol string) error {
	hs := t.s.holdings[portfolioID]
	for i := range hs {
		if hs[i].Symbol == symbol {
			t.s.holdings[portfolioID] = slices.Delete(hs, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("holding %s/%s: %w", portfolioID, symbol, ledger.ErrNotFound)
}

func (t *memTx) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	t.s.transactions = append(t.s.transactions, tx)
	return nil
}

func (t *memTx) ListTransactions(_ context.Context, portfolioID string, limit int) ([]ledger.Transaction, error) {
	out := []ledger.Transaction{}
	for i := len(t.s.transactions) - 1; i >= 0; i-- {
		if tx := t.s.transactions[i]; tx.PortfolioID == portfolioID {
			out = append(out, tx)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (t *memTx) AppendFundTransfer(_ context.Context, ft ledger.FundTransfer) error {
	t.s.transfers = append(t.s.transfers, ft)
	return nil
}

func (t *memTx) ListFundTransfers(_ context.Context, userID string, limit int) ([]ledger.FundTransfer, error) {
	out := []ledger.FundTransfer{}
	for i := len(t.s.transfers) - 1; i >= 0; i-- {
		if ft := t.s.transfers[i]; ft.UserID == userID {
			out = append(out, ft)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (t *memTx) CreateFixedDeposit(_ context.Context, d ledger.FixedDeposit) error {
	t.s.deposits = append(t.s.deposits, d)
	return nil
}

func (t *memTx) ListFixedDeposits(_ context.Context, userID string) ([]ledger.FixedDeposit, error) {
	out := []ledger.FixedDeposit{}
	for i := len(t.s.deposits) - 1; i >= 0; i-- {
		if d := t.s.deposits[i]; d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (t *memTx) ListDueFixedDeposits(_ context.Context, asOf time.Time) ([]ledger.FixedDeposit, error) {
	out := []ledger.FixedDeposit{}
	for _, d := range t.s.deposits {
		if d.Status == ledger.DepositActive && !d.MaturityDate.After(asOf) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MaturityDate.Equal(out[j].MaturityDate) {
			return out[i].MaturityDate.Before(out[j].MaturityDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memTx) UpdateFixedDepositStatus(_ context.Context, id string, status ledger.DepositStatus) error {
	for i := range t.s.deposits {
		if t.s.deposits[i].ID == id {
			t.s.deposits[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("fixed deposit %q: %w", id, ledger.ErrNotFound)
}

func (t *memTx) GetInstrument(_ context.Context, symbol string) (market.Instrument, error) {
	inst, ok := t.s.instruments[market.NormalizeSymbol(symbol)]
	if !ok {
		return market.Instrument{}, fmt.Errorf("instrument %q: %w", symbol, ledger.ErrNotFound)
	}
	return inst, nil
}

func (t *memTx) ListInstruments(_ context.Context) ([]market.Instrument, error) {
	out := make([]market.Instrument, 0, len(t.s.instruments))
	for _, inst := range t.s.instruments {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (t *memTx) UpsertInstrument(_ context.Context, inst market.Instrument) error {
	inst.Symbol = market.NormalizeSymbol(inst.Symbol)
	t.s.instruments[inst.Symbol] = inst
	return nil
}
