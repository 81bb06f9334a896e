package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// timeLayout is the fixed-width text every timestamp is stored as, so that
// string comparison and ORDER BY on a time column follow time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func ts(t time.Time) string { return t.UTC().Format(timeLayout) }

// SQLite is a Store backed by a SQLite file. Transactions begin IMMEDIATE,
// so the write lock is held from the first read of a transaction to its end.
type SQLite struct {
	db *sql.DB
	sqliteQ
}

func NewSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=10000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// Every connection would get its own database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db, sqliteQ: sqliteQ{q: db}}, nil
}

func (s *SQLite) WithTx(ctx context.Context, fn func(Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&sqliteQ{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteQ runs the ledger queries against either the database or an open
// transaction.
type sqliteQ struct {
	q querier
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf(format+": %w", append(args, ledger.ErrNotFound)...)
	}
	return err
}

func mustAffect(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf(format+": %w", append(args, ledger.ErrNotFound)...)
	}
	return nil
}

func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

const accountCols = `user_id, portfolio_id, cash_balance, savings_balance, created_at, updated_at`

func scanAccount(r scanner) (a ledger.Account, err error) {
	err = r.Scan(&a.UserID, &a.PortfolioID, &a.CashBalance, &a.SavingsBalance, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *sqliteQ) GetAccount(ctx context.Context, userID string) (ledger.Account, error) {
	a, err := scanAccount(s.q.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE user_id = ?`, userID))
	if err != nil {
		return ledger.Account{}, notFound(err, "account %q", userID)
	}
	return a, nil
}

func (s *sqliteQ) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO accounts (`+accountCols+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		a.UserID, a.PortfolioID, a.CashBalance, a.SavingsBalance, ts(a.CreatedAt), ts(a.UpdatedAt),
	)
	if err != nil {
		return ledger.Account{}, err
	}
	return s.GetAccount(ctx, a.UserID)
}

func (s *sqliteQ) UpdateAccount(ctx context.Context, a ledger.Account) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE accounts SET cash_balance = ?, savings_balance = ?, updated_at = ?
		WHERE user_id = ?`,
		a.CashBalance, a.SavingsBalance, ts(a.UpdatedAt), a.UserID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res, "account %q", a.UserID)
}

const holdingCols = `id, portfolio_id, symbol, company_name, shares, avg_price, current_price, created_at, updated_at`

func (s *sqliteQ) GetHoldings(ctx context.Context, portfolioID string) ([]ledger.Holding, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+holdingCols+` FROM holdings WHERE portfolio_id = ? ORDER BY symbol`, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ledger.Holding{}
	for rows.Next() {
		var h ledger.Holding
		if err := rows.Scan(&h.ID, &h.PortfolioID, &h.Symbol, &h.CompanyName, &h.Shares,
			&h.AvgPrice, &h.CurrentPrice, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *sqliteQ) UpsertHolding(ctx context.Context, h ledger.Holding) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO holdings (`+holdingCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, symbol) DO UPDATE SET
			company_name = excluded.company_name,
			shares = excluded.shares,
			avg_price = excluded.avg_price,
			current_price = excluded.current_price,
			updated_at = excluded.updated_at`,
		h.ID, h.PortfolioID, h.Symbol, h.CompanyName, h.Shares, h.AvgPrice, h.CurrentPrice,
		ts(h.CreatedAt), ts(h.UpdatedAt),
	)
	return err
}

func (s *sqliteQ) DeleteHolding(ctx context.Context, portfolioID, symbol string) error {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM holdings WHERE portfolio_id = ? AND symbol = ?`, portfolioID, symbol)
	if err != nil {
		return err
	}
	return mustAffect(res, "holding %s/%s", portfolioID, symbol)
}

func (s *sqliteQ) AppendTransaction(ctx context.Context, t ledger.Transaction) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions
		(id, portfolio_id, symbol, company_name, type, shares, price, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.PortfolioID, t.Symbol, t.CompanyName, string(t.Type), t.Shares, t.Price, t.Total, ts(t.CreatedAt),
	)
	return err
}

func (s *sqliteQ) ListTransactions(ctx context.Context, portfolioID string, limit int) ([]ledger.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, portfolio_id, symbol, company_name, type, shares, price, total, created_at
		FROM transactions WHERE portfolio_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, portfolioID, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ledger.Transaction{}
	for rows.Next() {
		var t ledger.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.Symbol, &t.CompanyName, &typ,
			&t.Shares, &t.Price, &t.Total, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = ledger.TradeType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteQ) AppendFundTransfer(ctx context.Context, ft ledger.FundTransfer) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO fund_transfers
		(id, user_id, transfer_type, amount, from_account, to_account, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ft.ID, ft.UserID, string(ft.Type), ft.Amount, ft.FromAccount, ft.ToAccount, ft.Description, ts(ft.CreatedAt),
	)
	return err
}

func (s *sqliteQ) ListFundTransfers(ctx context.Context, userID string, limit int) ([]ledger.FundTransfer, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, transfer_type, amount, from_account, to_account, description, created_at
		FROM fund_transfers WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ledger.FundTransfer{}
	for rows.Next() {
		var ft ledger.FundTransfer
		var typ string
		if err := rows.Scan(&ft.ID, &ft.UserID, &typ, &ft.Amount, &ft.FromAccount,
			&ft.ToAccount, &ft.Description, &ft.CreatedAt); err != nil {
			return nil, err
		}
		ft.Type = ledger.TransferType(typ)
		out = append(out, ft)
	}
	return out, rows.Err()
}

const depositCols = `id, user_id, amount, tenure_months, interest_rate, maturity_amount, maturity_date, status, created_at`

func (s *sqliteQ) CreateFixedDeposit(ctx context.Context, d ledger.FixedDeposit) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO fixed_deposits (`+depositCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.Amount, d.TenureMonths, d.InterestRate, d.MaturityAmount,
		ts(d.MaturityDate), string(d.Status), ts(d.CreatedAt),
	)
	return err
}

func (s *sqliteQ) queryDeposits(ctx context.Context, where string, args ...any) ([]ledger.FixedDeposit, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+depositCols+` FROM fixed_deposits WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ledger.FixedDeposit{}
	for rows.Next() {
		var d ledger.FixedDeposit
		var status string
		if err := rows.Scan(&d.ID, &d.UserID, &d.Amount, &d.TenureMonths, &d.InterestRate,
			&d.MaturityAmount, &d.MaturityDate, &status, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Status = ledger.DepositStatus(status)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *sqliteQ) ListFixedDeposits(ctx context.Context, userID string) ([]ledger.FixedDeposit, error) {
	return s.queryDeposits(ctx, `user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (s *sqliteQ) ListDueFixedDeposits(ctx context.Context, asOf time.Time) ([]ledger.FixedDeposit, error) {
	return s.queryDeposits(ctx, `status = ? AND maturity_date <= ? ORDER BY maturity_date, id`,
		string(ledger.DepositActive), ts(asOf))
}

func (s *sqliteQ) UpdateFixedDepositStatus(ctx context.Context, id string, status ledger.DepositStatus) error {
	res, err := s.q.ExecContext(ctx, `UPDATE fixed_deposits SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return mustAffect(res, "fixed deposit %q", id)
}

const instrumentCols = `symbol, name, sector, current_price, price_change, price_change_percent, is_active, updated_at`

func scanInstrument(r scanner) (i market.Instrument, err error) {
	err = r.Scan(&i.Symbol, &i.Name, &i.Sector, &i.CurrentPrice, &i.PriceChange,
		&i.PriceChangePercent, &i.IsActive, &i.UpdatedAt)
	return i, err
}

func (s *sqliteQ) GetInstrument(ctx context.Context, symbol string) (market.Instrument, error) {
	inst, err := scanInstrument(s.q.QueryRowContext(ctx,
		`SELECT `+instrumentCols+` FROM instruments WHERE symbol = ?`, market.NormalizeSymbol(symbol)))
	if err != nil {
		return market.Instrument{}, notFound(err, "instrument %q", symbol)
	}
	return inst, nil
}

func (s *sqliteQ) ListInstruments(ctx context.Context) ([]market.Instrument, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+instrumentCols+` FROM instruments ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []market.Instrument{}
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (s *sqliteQ) UpsertInstrument(ctx context.Context, inst market.Instrument) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO instruments (`+instrumentCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			current_price = excluded.current_price,
			price_change = excluded.price_change,
			price_change_percent = excluded.price_change_percent,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		market.NormalizeSymbol(inst.Symbol), inst.Name, inst.Sector, inst.CurrentPrice, inst.PriceChange,
		inst.PriceChangePercent, inst.IsActive, ts(inst.UpdatedAt),
	)
	return err
}
