package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// Postgres is a Store backed by PostgreSQL through gorm. Inside a
// transaction the account row is read FOR UPDATE, which serializes
// operations on the same account.
type Postgres struct {
	db *gorm.DB
	pgQ
}

func NewPostgres(dsn string, maxOpenConns int) (*Postgres, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqldb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if maxOpenConns > 0 {
		sqldb.SetMaxOpenConns(maxOpenConns)
		sqldb.SetMaxIdleConns(maxOpenConns)
	}
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	if err := gdb.AutoMigrate(
		&accountRow{},
		&holdingRow{},
		&transactionRow{},
		&fundTransferRow{},
		&fixedDepositRow{},
		&instrumentRow{},
	); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Postgres{db: gdb, pgQ: pgQ{db: gdb}}, nil
}

func (s *Postgres) WithTx(ctx context.Context, fn func(Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgQ{db: tx, lock: true})
	})
}

func (s *Postgres) Close() error {
	sqldb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqldb.Close()
}

// pgQ runs the ledger queries against the pool or, with lock set, inside a
// transaction.
type pgQ struct {
	db   *gorm.DB
	lock bool
}

func gormNotFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ledger.ErrNotFound)...)
	}
	return err
}

func affected(res *gorm.DB, format string, args ...any) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf(format+": %w", append(args, ledger.ErrNotFound)...)
	}
	return nil
}

func (p *pgQ) GetAccount(ctx context.Context, userID string) (ledger.Account, error) {
	q := p.db.WithContext(ctx)
	if p.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row accountRow
	if err := q.Where("user_id = ?", userID).Take(&row).Error; err != nil {
		return ledger.Account{}, gormNotFound(err, "account %q", userID)
	}
	return row.record(), nil
}

func (p *pgQ) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	row := accountToRow(a)
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return ledger.Account{}, err
	}
	return p.GetAccount(ctx, a.UserID)
}

func (p *pgQ) UpdateAccount(ctx context.Context, a ledger.Account) error {
	res := p.db.WithContext(ctx).Model(&accountRow{}).
		Where("user_id = ?", a.UserID).
		Updates(map[string]any{
			"cash_balance":    a.CashBalance.Decimal(),
			"savings_balance": a.SavingsBalance.Decimal(),
			"updated_at":      a.UpdatedAt.UTC(),
		})
	return affected(res, "account %q", a.UserID)
}

func (p *pgQ) GetHoldings(ctx context.Context, portfolioID string) ([]ledger.Holding, error) {
	var rows []holdingRow
	if err := p.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Order("symbol").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Holding, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (p *pgQ) UpsertHolding(ctx context.Context, h ledger.Holding) error {
	row := holdingToRow(h)
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "portfolio_id"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company_name",
			"shares",
			"avg_price",
			"current_price",
			"updated_at",
		}),
	}).Create(&row).Error
}

func (p *pgQ) DeleteHolding(ctx context.Context, portfolioID, symbol string) error {
	res := p.db.WithContext(ctx).
		Where("portfolio_id = ? AND symbol = ?", portfolioID, symbol).
		Delete(&holdingRow{})
	return affected(res, "holding %s/%s", portfolioID, symbol)
}

func (p *pgQ) AppendTransaction(ctx context.Context, t ledger.Transaction) error {
	row := transactionToRow(t)
	return p.db.WithContext(ctx).Create(&row).Error
}

func (p *pgQ) ListTransactions(ctx context.Context, portfolioID string, limit int) ([]ledger.Transaction, error) {
	q := p.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []transactionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (p *pgQ) AppendFundTransfer(ctx context.Context, ft ledger.FundTransfer) error {
	row := fundTransferToRow(ft)
	return p.db.WithContext(ctx).Create(&row).Error
}

func (p *pgQ) ListFundTransfers(ctx context.Context, userID string, limit int) ([]ledger.FundTransfer, error) {
	q := p.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []fundTransferRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.FundTransfer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (p *pgQ) CreateFixedDeposit(ctx context.Context, d ledger.FixedDeposit) error {
	row := fixedDepositToRow(d)
	return p.db.WithContext(ctx).Create(&row).Error
}

func (p *pgQ) findDeposits(q *gorm.DB) ([]ledger.FixedDeposit, error) {
	var rows []fixedDepositRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.FixedDeposit, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (p *pgQ) ListFixedDeposits(ctx context.Context, userID string) ([]ledger.FixedDeposit, error) {
	return p.findDeposits(p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC"))
}

func (p *pgQ) ListDueFixedDeposits(ctx context.Context, asOf time.Time) ([]ledger.FixedDeposit, error) {
	return p.findDeposits(p.db.WithContext(ctx).
		Where("status = ? AND maturity_date <= ?", string(ledger.DepositActive), asOf.UTC()).
		Order("maturity_date, id"))
}

func (p *pgQ) UpdateFixedDepositStatus(ctx context.Context, id string, status ledger.DepositStatus) error {
	res := p.db.WithContext(ctx).Model(&fixedDepositRow{}).
		Where("id = ?", id).
		Update("status", string(status))
	return affected(res, "fixed deposit %q", id)
}

func (p *pgQ) GetInstrument(ctx context.Context, symbol string) (market.Instrument, error) {
	var row instrumentRow
	err := p.db.WithContext(ctx).Where("symbol = ?", market.NormalizeSymbol(symbol)).Take(&row).Error
	if err != nil {
		return market.Instrument{}, gormNotFound(err, "instrument %q", symbol)
	}
	return row.record(), nil
}

func (p *pgQ) ListInstruments(ctx context.Context) ([]market.Instrument, error) {
	var rows []instrumentRow
	if err := p.db.WithContext(ctx).Order("symbol").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]market.Instrument, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (p *pgQ) UpsertInstrument(ctx context.Context, inst market.Instrument) error {
	row := instrumentToRow(inst)
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"sector",
			"current_price",
			"price_change",
			"price_change_percent",
			"is_active",
			"updated_at",
		}),
	}).Create(&row).Error
}
