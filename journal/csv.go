// journal/csv.go
package journal

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
)

var transactionHeader = []string{"id", "created_at", "type", "symbol", "company_name", "shares", "price", "total"}

// WriteTransactionsCSV writes the trade log as CSV with a header row.
// Amounts are written as exact decimals.
func WriteTransactionsCSV(w io.Writer, txs []ledger.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(transactionHeader); err != nil {
		return err
	}

	for _, t := range txs {
		err := cw.Write([]string{
			t.ID,
			t.CreatedAt.UTC().Format(time.RFC3339),
			string(t.Type),
			t.Symbol,
			t.CompanyName,
			t.Shares.String(),
			f(t.Price),
			f(t.Total),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

var transferHeader = []string{"id", "created_at", "transfer_type", "from_account", "to_account", "amount", "description"}

// WriteFundTransfersCSV writes the transfer log as CSV with a header row.
func WriteFundTransfersCSV(w io.Writer, fts []ledger.FundTransfer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(transferHeader); err != nil {
		return err
	}

	for _, ft := range fts {
		err := cw.Write([]string{
			ft.ID,
			ft.CreatedAt.UTC().Format(time.RFC3339),
			string(ft.Type),
			ft.FromAccount,
			ft.ToAccount,
			f(ft.Amount),
			ft.Description,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// f renders money with at least cent precision, keeping any extra digits.
func f(m market.Money) string {
	if m.Decimal().Exponent() >= -market.CentPlaces {
		return m.StringFixed(market.CentPlaces)
	}
	return m.String()
}
