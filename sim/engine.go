package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/investsim/ledger/internal/id"
	"github.com/investsim/ledger/journal"
	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// DefaultInitialFunding is the cash a newly provisioned account starts with.
var DefaultInitialFunding = market.MustMoney("10000.00")

// DefaultMaxStep bounds a single random-walk price move.
var DefaultMaxStep = market.P(2)

// Engine runs ledger operations against a store. Every mutating operation
// is one store transaction that re-reads the account and holdings, applies
// the pure ledger operation and writes all results, or nothing.
type Engine struct {
	store   journal.Store
	log     *zap.Logger
	funding market.Money
	maxStep market.Percent
	now     func() time.Time
	newID   func() string
	prices  market.PriceSource
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithInitialFunding sets the cash new accounts are provisioned with. It is
// also the baseline of the portfolio gain/loss figures.
func WithInitialFunding(m market.Money) Option {
	return func(e *Engine) { e.funding = m }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs replaces the ULID generator, mostly for tests.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithPriceSource makes trades execute at the source's quote instead of the
// instrument's stored price. The instrument must still exist and be active.
func WithPriceSource(ps market.PriceSource) Option {
	return func(e *Engine) { e.prices = ps }
}

// WithMaxStep bounds each random-walk move to +/- p.
func WithMaxStep(p market.Percent) Option {
	return func(e *Engine) { e.maxStep = p }
}

func NewEngine(store journal.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		log:     zap.NewNop(),
		funding: DefaultInitialFunding,
		maxStep: DefaultMaxStep,
		now:     time.Now,
	}
	// Ids carry the engine clock, so scripted sessions get scripted ids.
	e.newID = func() string { return id.NewAt(e.now()) }
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitialFunding returns the funding new accounts receive.
func (e *Engine) InitialFunding() market.Money { return e.funding }

func (e *Engine) stamp() ledger.Stamp {
	return ledger.Stamp{Now: e.now().UTC(), NewID: e.newID}
}

// wrap leaves rejections, missing records and cancellation as they are and
// marks everything else as a store failure.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if ledger.IsRejection(err) ||
		errors.Is(err, ledger.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *ledger.StoreError
	if errors.As(err, &se) {
		return err
	}
	return &ledger.StoreError{Op: op, Err: err}
}

// Account returns the user's account, provisioning it with the initial
// funding on first access.
func (e *Engine) Account(ctx context.Context, userID string) (ledger.Account, error) {
	if userID == "" {
		return ledger.Account{}, fmt.Errorf("empty user id: %w", ledger.ErrNotFound)
	}

	var (
		acct    ledger.Account
		created bool
	)
	err := e.store.WithTx(ctx, func(tx journal.Tx) error {
		a, err := tx.GetAccount(ctx, userID)
		if err == nil {
			acct = a
			return nil
		}
		if !errors.Is(err, ledger.ErrNotFound) {
			return err
		}

		fresh := ledger.NewAccount(userID, e.newID(), e.funding, e.now().UTC())
		acct, err = tx.CreateAccount(ctx, fresh)
		created = err == nil && acct.PortfolioID == fresh.PortfolioID
		return err
	})
	if err != nil {
		return ledger.Account{}, wrap("account", err)
	}

	if created {
		e.log.Info("account provisioned",
			zap.String("user_id", userID),
			zap.String("portfolio_id", acct.PortfolioID),
			zap.Stringer("cash", acct.CashBalance),
		)
	}
	return acct, nil
}

// logResult logs a committed operation at Info and a rejected one at Debug.
func (e *Engine) logResult(msg string, err error, fields ...zap.Field) {
	if err == nil {
		e.log.Info(msg, fields...)
		return
	}
	fields = append(fields, zap.Error(err))
	var se *ledger.StoreError
	if errors.As(err, &se) {
		e.log.Error(msg+" failed", fields...)
		return
	}
	e.log.Debug(msg+" rejected", fields...)
}
