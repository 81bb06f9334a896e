package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// gorm models for the Postgres store. Amounts are numeric columns; the
// timestamps come from the ledger's clock, so gorm's auto timestamps are off.

type accountRow struct {
	UserID         string          `gorm:"primaryKey;type:varchar(128)"`
	PortfolioID    string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	CashBalance    decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	SavingsBalance decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	CreatedAt      time.Time       `gorm:"type:timestamptz;not null;autoCreateTime:false"`
	UpdatedAt      time.Time       `gorm:"type:timestamptz;not null;autoUpdateTime:false"`
}

func (accountRow) TableName() string { return "accounts" }

func accountToRow(a ledger.Account) accountRow {
	return accountRow{
		UserID:         a.UserID,
		PortfolioID:    a.PortfolioID,
		CashBalance:    a.CashBalance.Decimal(),
		SavingsBalance: a.SavingsBalance.Decimal(),
		CreatedAt:      a.CreatedAt.UTC(),
		UpdatedAt:      a.UpdatedAt.UTC(),
	}
}

func (r accountRow) record() ledger.Account {
	return ledger.Account{
		UserID:         r.UserID,
		PortfolioID:    r.PortfolioID,
		CashBalance:    market.M(r.CashBalance),
		SavingsBalance: market.M(r.SavingsBalance),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type holdingRow struct {
	ID           string          `gorm:"primaryKey;type:varchar(64)"`
	PortfolioID  string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_holdings_portfolio_symbol"`
	Symbol       string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_holdings_portfolio_symbol"`
	CompanyName  string          `gorm:"type:varchar(200);not null"`
	Shares       decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	AvgPrice     decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	CurrentPrice decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	CreatedAt    time.Time       `gorm:"type:timestamptz;not null;autoCreateTime:false"`
	UpdatedAt    time.Time       `gorm:"type:timestamptz;not null;autoUpdateTime:false"`
}

func (holdingRow) TableName() string { return "holdings" }

func holdingToRow(h ledger.Holding) holdingRow {
	return holdingRow{
		ID:           h.ID,
		PortfolioID:  h.PortfolioID,
		Symbol:       h.Symbol,
		CompanyName:  h.CompanyName,
		Shares:       h.Shares.Decimal(),
		AvgPrice:     h.AvgPrice.Decimal(),
		CurrentPrice: h.CurrentPrice.Decimal(),
		CreatedAt:    h.CreatedAt.UTC(),
		UpdatedAt:    h.UpdatedAt.UTC(),
	}
}

func (r holdingRow) record() ledger.Holding {
	return ledger.Holding{
		ID:           r.ID,
		PortfolioID:  r.PortfolioID,
		Symbol:       r.Symbol,
		CompanyName:  r.CompanyName,
		Shares:       market.Q(r.Shares),
		AvgPrice:     market.M(r.AvgPrice),
		CurrentPrice: market.M(r.CurrentPrice),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type transactionRow struct {
	ID          string          `gorm:"primaryKey;type:varchar(64)"`
	PortfolioID string          `gorm:"type:varchar(64);not null;index:idx_transactions_portfolio,priority:1"`
	Symbol      string          `gorm:"type:varchar(20);not null"`
	CompanyName string          `gorm:"type:varchar(200);not null"`
	Type        string          `gorm:"type:varchar(4);not null"`
	Shares      decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	CreatedAt   time.Time       `gorm:"type:timestamptz;not null;autoCreateTime:false;index:idx_transactions_portfolio,priority:2"`
}

func (transactionRow) TableName() string { return "transactions" }

func transactionToRow(t ledger.Transaction) transactionRow {
	return transactionRow{
		ID:          t.ID,
		PortfolioID: t.PortfolioID,
		Symbol:      t.Symbol,
		CompanyName: t.CompanyName,
		Type:        string(t.Type),
		Shares:      t.Shares.Decimal(),
		Price:       t.Price.Decimal(),
		Total:       t.Total.Decimal(),
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func (r transactionRow) record() ledger.Transaction {
	return ledger.Transaction{
		ID:          r.ID,
		PortfolioID: r.PortfolioID,
		Symbol:      r.Symbol,
		CompanyName: r.CompanyName,
		Type:        ledger.TradeType(r.Type),
		Shares:      market.Q(r.Shares),
		Price:       market.M(r.Price),
		Total:       market.M(r.Total),
		CreatedAt:   r.CreatedAt,
	}
}

type fundTransferRow struct {
	ID           string          `gorm:"primaryKey;type:varchar(64)"`
	UserID       string          `gorm:"type:varchar(128);not null;index:idx_fund_transfers_user,priority:1"`
	TransferType string          `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	FromAccount  string          `gorm:"type:varchar(20);not null"`
	ToAccount    string          `gorm:"type:varchar(20);not null"`
	Description  string          `gorm:"type:text;not null"`
	CreatedAt    time.Time       `gorm:"type:timestamptz;not null;autoCreateTime:false;index:idx_fund_transfers_user,priority:2"`
}

func (fundTransferRow) TableName() string { return "fund_transfers" }

func fundTransferToRow(ft ledger.FundTransfer) fundTransferRow {
	return fundTransferRow{
		ID:           ft.ID,
		UserID:       ft.UserID,
		TransferType: string(ft.Type),
		Amount:       ft.Amount.Decimal(),
		FromAccount:  ft.FromAccount,
		ToAccount:    ft.ToAccount,
		Description:  ft.Description,
		CreatedAt:    ft.CreatedAt.UTC(),
	}
}

func (r fundTransferRow) record() ledger.FundTransfer {
	return ledger.FundTransfer{
		ID:          r.ID,
		UserID:      r.UserID,
		Type:        ledger.TransferType(r.TransferType),
		Amount:      market.M(r.Amount),
		FromAccount: r.FromAccount,
		ToAccount:   r.ToAccount,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

type fixedDepositRow struct {
	ID             string          `gorm:"primaryKey;type:varchar(64)"`
	UserID         string          `gorm:"type:varchar(128);not null;index"`
	Amount         decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	TenureMonths   int             `gorm:"not null"`
	InterestRate   decimal.Decimal `gorm:"type:numeric(10,4);not null"`
	MaturityAmount decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	MaturityDate   time.Time       `gorm:"type:timestamptz;not null;index:idx_fixed_deposits_due,priority:2"`
	Status         string          `gorm:"type:varchar(10);not null;default:'active';index:idx_fixed_deposits_due,priority:1"`
	CreatedAt      time.Time       `gorm:"type:timestamptz;not null;autoCreateTime:false"`
}

func (fixedDepositRow) TableName() string { return "fixed_deposits" }

func fixedDepositToRow(d ledger.FixedDeposit) fixedDepositRow {
	return fixedDepositRow{
		ID:             d.ID,
		UserID:         d.UserID,
		Amount:         d.Amount.Decimal(),
		TenureMonths:   d.TenureMonths,
		InterestRate:   d.InterestRate.Decimal(),
		MaturityAmount: d.MaturityAmount.Decimal(),
		MaturityDate:   d.MaturityDate.UTC(),
		Status:         string(d.Status),
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

func (r fixedDepositRow) record() ledger.FixedDeposit {
	return ledger.FixedDeposit{
		ID:             r.ID,
		UserID:         r.UserID,
		Amount:         market.M(r.Amount),
		TenureMonths:   r.TenureMonths,
		InterestRate:   market.P(r.InterestRate),
		MaturityAmount: market.M(r.MaturityAmount),
		MaturityDate:   r.MaturityDate,
		Status:         ledger.DepositStatus(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}

type instrumentRow struct {
	Symbol             string          `gorm:"primaryKey;type:varchar(20)"`
	Name               string          `gorm:"type:varchar(200);not null"`
	Sector             string          `gorm:"type:varchar(100);not null;default:''"`
	CurrentPrice       decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	PriceChange        decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	PriceChangePercent decimal.Decimal `gorm:"type:numeric(12,6);not null;default:0"`
	IsActive           bool            `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"type:timestamptz;not null;autoUpdateTime:false"`
}

func (instrumentRow) TableName() string { return "instruments" }

func instrumentToRow(i market.Instrument) instrumentRow {
	return instrumentRow{
		Symbol:             market.NormalizeSymbol(i.Symbol),
		Name:               i.Name,
		Sector:             i.Sector,
		CurrentPrice:       i.CurrentPrice.Decimal(),
		PriceChange:        i.PriceChange.Decimal(),
		PriceChangePercent: i.PriceChangePercent.Decimal(),
		IsActive:           i.IsActive,
		UpdatedAt:          i.UpdatedAt.UTC(),
	}
}

func (r instrumentRow) record() market.Instrument {
	return market.Instrument{
		Symbol:             r.Symbol,
		Name:               r.Name,
		Sector:             r.Sector,
		CurrentPrice:       market.M(r.CurrentPrice),
		PriceChange:        market.M(r.PriceChange),
		PriceChangePercent: market.P(r.PriceChangePercent),
		IsActive:           r.IsActive,
		UpdatedAt:          r.UpdatedAt,
	}
}
