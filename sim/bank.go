package sim

import (
	"context"

	"go.uber.org/zap"

	"github.com/investsim/ledger/journal"
	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

// Transfer moves amount between the user's cash and savings balances.
func (e *Engine) Transfer(ctx context.Context, userID string, dir ledger.Direction, amount market.Money) (ledger.TransferResult, error) {
	var res ledger.TransferResult
	err := e.store.WithTx(ctx, func(tx journal.Tx) error {
		acct, err := tx.GetAccount(ctx, userID)
		if err != nil {
			return err
		}
		res, err = ledger.Transfer(acct, dir, amount, e.stamp())
		if err != nil {
			return err
		}
		if err := tx.UpdateAccount(ctx, res.Account); err != nil {
			return err
		}
		return tx.AppendFundTransfer(ctx, res.FundTransfer)
	})
	err = wrap("transfer", err)

	e.logResult("transfer", err,
		zap.String("user_id", userID),
		zap.String("direction", string(dir)),
		zap.Stringer("amount", amount),
	)
	if err != nil {
		return ledger.TransferResult{}, err
	}
	return res, nil
}

// CreateFixedDeposit locks amount of the user's cash in a deposit for
// tenureMonths.
func (e *Engine) CreateFixedDeposit(ctx context.Context, userID string, amount market.Money, tenureMonths int) (ledger.DepositResult, error) {
	var res ledger.DepositResult
	err := e.store.WithTx(ctx, func(tx journal.Tx) error {
		acct, err := tx.GetAccount(ctx, userID)
		if err != nil {
			return err
		}
		res, err = ledger.CreateFixedDeposit(acct, amount, tenureMonths, e.stamp())
		if err != nil {
			return err
		}
		if err := tx.UpdateAccount(ctx, res.Account); err != nil {
			return err
		}
		if err := tx.CreateFixedDeposit(ctx, res.Deposit); err != nil {
			return err
		}
		return tx.AppendFundTransfer(ctx, res.FundTransfer)
	})
	err = wrap("fixed deposit", err)

	fields := []zap.Field{
		zap.String("user_id", userID),
		zap.Stringer("amount", amount),
		zap.Int("tenure_months", tenureMonths),
	}
	if err == nil {
		fields = append(fields,
			zap.Stringer("rate", res.Deposit.InterestRate),
			zap.Stringer("maturity_amount", res.Deposit.MaturityAmount),
			zap.Time("maturity_date", res.Deposit.MaturityDate),
		)
	}
	e.logResult("fixed deposit", err, fields...)

	if err != nil {
		return ledger.DepositResult{}, err
	}
	return res, nil
}
