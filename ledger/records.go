package ledger

import (
	"time"

	"github.com/investsim/ledger/market"
)

// Account is a user's cash and savings balances. Both balances stay >= 0.
type Account struct {
	UserID         string       `json:"user_id"`
	PortfolioID    string       `json:"portfolio_id"`
	CashBalance    market.Money `json:"cash_balance"`
	SavingsBalance market.Money `json:"savings_balance"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewAccount returns the account a user starts with: the initial funding in
// cash and nothing in savings.
func NewAccount(userID, portfolioID string, initialFunding market.Money, now time.Time) Account {
	return Account{
		UserID:      userID,
		PortfolioID: portfolioID,
		CashBalance: initialFunding,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Holding is an open position in one symbol, unique per portfolio and symbol.
// Shares is always > 0; a position sold down to zero is removed.
type Holding struct {
	ID           string        `json:"id"`
	PortfolioID  string        `json:"portfolio_id"`
	Symbol       string        `json:"symbol"`
	CompanyName  string        `json:"company_name"`
	Shares       market.Shares `json:"shares"`
	AvgPrice     market.Money  `json:"avg_price"`
	CurrentPrice market.Money  `json:"current_price"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CostBasis is shares x average price.
func (h Holding) CostBasis() market.Money { return h.AvgPrice.Mul(h.Shares) }

type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// Transaction is an immutable entry of the trade log. Total is exactly
// Shares x Price.
type Transaction struct {
	ID          string        `json:"id"`
	PortfolioID string        `json:"portfolio_id"`
	Symbol      string        `json:"symbol"`
	CompanyName string        `json:"company_name"`
	Type        TradeType     `json:"type"`
	Shares      market.Shares `json:"shares"`
	Price       market.Money  `json:"price"`
	Total       market.Money  `json:"total"`
	CreatedAt   time.Time     `json:"created_at"`
}

type TransferType string

const (
	CashToSavingsTransfer TransferType = "cash_to_savings"
	SavingsToCashTransfer TransferType = "savings_to_cash"
	FDCreationTransfer    TransferType = "fd_creation"
)

// Account names used in FundTransfer.FromAccount / ToAccount.
const (
	CashAccount         = "cash"
	SavingsAccount      = "savings"
	FixedDepositAccount = "fixed_deposit"
)

// FundTransfer is the append-only audit record of a movement between cash,
// savings and fixed deposits.
type FundTransfer struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Type        TransferType `json:"transfer_type"`
	Amount      market.Money `json:"amount"`
	FromAccount string       `json:"from_account"`
	ToAccount   string       `json:"to_account"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
}

type DepositStatus string

const (
	DepositActive  DepositStatus = "active"
	DepositMatured DepositStatus = "matured"
)

// FixedDeposit locks an amount for a tenure at a fixed rate. Only Status
// changes after creation.
type FixedDeposit struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Amount         market.Money   `json:"amount"`
	TenureMonths   int            `json:"tenure_months"`
	InterestRate   market.Percent `json:"interest_rate"`
	MaturityAmount market.Money   `json:"maturity_amount"`
	MaturityDate   time.Time      `json:"maturity_date"`
	Status         DepositStatus  `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Stamp supplies the clock reading and identifiers for the records an
// operation creates.
type Stamp struct {
	Now   time.Time
	NewID func() string
}

func (s Stamp) id() string {
	if s.NewID == nil {
		return ""
	}
	return s.NewID()
}
