// journal/store.go
package journal

import (
	"context"
	"time"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// Reader is the read side of the ledger store. Missing records are reported
// as ledger.ErrNotFound.
type Reader interface {
	GetAccount(ctx context.Context, userID string) (ledger.Account, error)
	// GetHoldings returns a portfolio's positions ordered by symbol.
	GetHoldings(ctx context.Context, portfolioID string) ([]ledger.Holding, error)
	// ListTransactions returns the trade log newest first; limit <= 0 means all.
	ListTransactions(ctx context.Context, portfolioID string, limit int) ([]ledger.Transaction, error)
	// ListFundTransfers returns the transfer log newest first; limit <= 0 means all.
	ListFundTransfers(ctx context.Context, userID string, limit int) ([]ledger.FundTransfer, error)
	// ListFixedDeposits returns a user's deposits newest first.
	ListFixedDeposits(ctx context.Context, userID string) ([]ledger.FixedDeposit, error)
	// ListDueFixedDeposits returns every active deposit whose maturity date is
	// not after asOf, across all users.
	ListDueFixedDeposits(ctx context.Context, asOf time.Time) ([]ledger.FixedDeposit, error)
	GetInstrument(ctx context.Context, symbol string) (market.Instrument, error)
	// ListInstruments returns all instruments ordered by symbol.
	ListInstruments(ctx context.Context) ([]market.Instrument, error)
}

// Tx is a store transaction. Reads inside a Tx see the transaction's own
// writes, and an account read through a Tx stays locked until it ends.
type Tx interface {
	Reader

	// CreateAccount inserts a unless the user already has an account, and
	// returns the stored one either way.
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, a ledger.Account) error

	// UpsertHolding writes h keyed by (PortfolioID, Symbol).
	UpsertHolding(ctx context.Context, h ledger.Holding) error
	DeleteHolding(ctx context.Context, portfolioID, symbol string) error

	AppendTransaction(ctx context.Context, t ledger.Transaction) error
	AppendFundTransfer(ctx context.Context, ft ledger.FundTransfer) error

	CreateFixedDeposit(ctx context.Context, d ledger.FixedDeposit) error
	UpdateFixedDepositStatus(ctx context.Context, id string, status ledger.DepositStatus) error

	UpsertInstrument(ctx context.Context, inst market.Instrument) error
}

// Store is a ledger store. WithTx runs fn in one transaction: it commits when
// fn returns nil and rolls back every write otherwise. Concurrent
// transactions touching the same account are serialized.
type Store interface {
	Reader
	WithTx(ctx context.Context, fn func(Tx) error) error
	Close() error
}
