package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/investsim/ledger/market"
)

// Direction is the way money moves between cash and savings.
type Direction string

const (
	CashToSavings Direction = Direction(CashToSavingsTransfer)
	SavingsToCash Direction = Direction(SavingsToCashTransfer)
)

// ParseDirection accepts "cash_to_savings" / "savings_to_cash" and their
// dashed spellings.
func ParseDirection(s string) (Direction, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case string(CashToSavings):
		return CashToSavings, nil
	case string(SavingsToCash):
		return SavingsToCash, nil
	}
	return "", fmt.Errorf("unknown transfer direction %q", s)
}

func (d Direction) accounts() (from, to string) {
	if d == SavingsToCash {
		return SavingsAccount, CashAccount
	}
	return CashAccount, SavingsAccount
}

type TransferResult struct {
	Account      Account
	FundTransfer FundTransfer
}

// Transfer moves amount from one balance to the other. Cash plus savings is
// unchanged.
func Transfer(acct Account, dir Direction, amount market.Money, st Stamp) (TransferResult, error) {
	if dir != CashToSavings && dir != SavingsToCash {
		return TransferResult{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidAmount, dir)
	}
	if !amount.IsPositive() {
		return TransferResult{}, fmt.Errorf("%w: transfer amount must be positive, got %s", ErrInvalidAmount, amount)
	}
	if !amount.Fits(AmountPlaces) {
		return TransferResult{}, fmt.Errorf("%w: transfer amount %s has more than %d decimal places", ErrInvalidAmount, amount, AmountPlaces)
	}

	from, to := dir.accounts()
	switch dir {
	case CashToSavings:
		if acct.CashBalance.LessThan(amount) {
			return TransferResult{}, fmt.Errorf("transfer %s from cash, have %s: %w", amount, acct.CashBalance, ErrInsufficientBalance)
		}
		acct.CashBalance = acct.CashBalance.Sub(amount)
		acct.SavingsBalance = acct.SavingsBalance.Add(amount)
	case SavingsToCash:
		if acct.SavingsBalance.LessThan(amount) {
			return TransferResult{}, fmt.Errorf("transfer %s from savings, have %s: %w", amount, acct.SavingsBalance, ErrInsufficientBalance)
		}
		acct.SavingsBalance = acct.SavingsBalance.Sub(amount)
		acct.CashBalance = acct.CashBalance.Add(amount)
	}
	acct.UpdatedAt = st.Now

	return TransferResult{
		Account: acct,
		FundTransfer: FundTransfer{
			ID:          st.id(),
			UserID:      acct.UserID,
			Type:        TransferType(dir),
			Amount:      amount,
			FromAccount: from,
			ToAccount:   to,
			Description: fmt.Sprintf("Transfer from %s to %s", from, to),
			CreatedAt:   st.Now,
		},
	}, nil
}

// DefaultTenureMonths is the tenure whose rate applies to tenures missing
// from DepositRates.
const DefaultTenureMonths = 12

// DepositRates is the annual interest rate offered per tenure in months.
var DepositRates = map[int]market.Percent{
	6:  market.P(5.5),
	12: market.P(6.5),
	24: market.P(7.2),
	36: market.P(7.8),
}

// DepositRate returns the rate for a tenure, falling back to the 12-month
// rate.
func DepositRate(tenureMonths int) market.Percent {
	if r, ok := DepositRates[tenureMonths]; ok {
		return r
	}
	return DepositRates[DefaultTenureMonths]
}

// MaturityAmount compounds annually over tenureMonths/12 years:
// amount x (1 + rate/100)^(months/12), rounded to cents.
func MaturityAmount(amount market.Money, rate market.Percent, tenureMonths int) market.Money {
	base := rate.Factor()
	factor := decimal.NewFromInt(1)
	for i := 0; i < tenureMonths/12; i++ {
		factor = factor.Mul(base)
	}
	if rem := tenureMonths % 12; rem > 0 {
		partial := math.Pow(base.InexactFloat64(), float64(rem)/12)
		factor = factor.Mul(decimal.NewFromFloat(partial))
	}
	return amount.Scale(factor).Round(market.CentPlaces)
}

type DepositResult struct {
	Account      Account
	Deposit      FixedDeposit
	FundTransfer FundTransfer
}

// CreateFixedDeposit moves amount from cash into a new active deposit.
func CreateFixedDeposit(acct Account, amount market.Money, tenureMonths int, st Stamp) (DepositResult, error) {
	if !amount.IsPositive() {
		return DepositResult{}, fmt.Errorf("%w: deposit amount must be positive, got %s", ErrInvalidAmount, amount)
	}
	if !amount.Fits(AmountPlaces) {
		return DepositResult{}, fmt.Errorf("%w: deposit amount %s has more than %d decimal places", ErrInvalidAmount, amount, AmountPlaces)
	}
	if tenureMonths <= 0 {
		return DepositResult{}, fmt.Errorf("%w: tenure must be positive, got %d months", ErrInvalidAmount, tenureMonths)
	}
	if acct.CashBalance.LessThan(amount) {
		return DepositResult{}, fmt.Errorf("deposit %s, have %s: %w", amount, acct.CashBalance, ErrInsufficientFunds)
	}

	rate := DepositRate(tenureMonths)
	acct.CashBalance = acct.CashBalance.Sub(amount)
	acct.UpdatedAt = st.Now

	return DepositResult{
		Account: acct,
		Deposit: FixedDeposit{
			ID:             st.id(),
			UserID:         acct.UserID,
			Amount:         amount,
			TenureMonths:   tenureMonths,
			InterestRate:   rate,
			MaturityAmount: MaturityAmount(amount, rate, tenureMonths),
			MaturityDate:   st.Now.AddDate(0, tenureMonths, 0),
			Status:         DepositActive,
			CreatedAt:      st.Now,
		},
		FundTransfer: FundTransfer{
			ID:          st.id(),
			UserID:      acct.UserID,
			Type:        FDCreationTransfer,
			Amount:      amount,
			FromAccount: CashAccount,
			ToAccount:   FixedDepositAccount,
			Description: fmt.Sprintf("Fixed Deposit created for %d months", tenureMonths),
			CreatedAt:   st.Now,
		},
	}, nil
}

// Mature marks an active deposit matured once its maturity date has passed.
// It reports whether the status changed.
func Mature(d FixedDeposit, now time.Time) (FixedDeposit, bool) {
	if d.Status != DepositActive || now.Before(d.MaturityDate) {
		return d, false
	}
	d.Status = DepositMatured
	return d, true
}
