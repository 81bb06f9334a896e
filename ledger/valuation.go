package ledger

import "github.com/investsim/ledger/market"

// PercentPlaces is the precision of computed gain/loss percentages.
const PercentPlaces = 6

// HoldingMetrics is the mark-to-market view of one position.
type HoldingMetrics struct {
	CurrentValue    market.Money   `json:"current_value"`
	TotalInvested   market.Money   `json:"total_invested"`
	GainLoss        market.Money   `json:"gain_loss"`
	GainLossPercent market.Percent `json:"gain_loss_percent"`
}

// ComputeHoldingMetrics values a holding at price. GainLossPercent is zero
// when nothing was invested.
func ComputeHoldingMetrics(h Holding, price market.Money) HoldingMetrics {
	current := price.Mul(h.Shares)
	invested := h.CostBasis()
	gain := current.Sub(invested)

	var pct market.Percent
	if invested.IsPositive() {
		pct = gain.Ratio(invested, PercentPlaces)
	}
	return HoldingMetrics{
		CurrentValue:    current,
		TotalInvested:   invested,
		GainLoss:        gain,
		GainLossPercent: pct,
	}
}

// HoldingValuation is a holding together with its metrics at CurrentPrice.
type HoldingValuation struct {
	Holding
	HoldingMetrics
}

// PortfolioSummary aggregates an account and its holdings.
type PortfolioSummary struct {
	CashBalance          market.Money       `json:"cash_balance"`
	SavingsBalance       market.Money       `json:"savings_balance"`
	TotalHoldingsValue   market.Money       `json:"total_holdings_value"`
	TotalInvested        market.Money       `json:"total_invested_in_holdings"`
	TotalValue           market.Money       `json:"total_value"`
	TotalGainLoss        market.Money       `json:"total_gain_loss"`
	TotalGainLossPercent market.Percent     `json:"total_gain_loss_percent"`
	Holdings             []HoldingValuation `json:"holdings"`
}

// ComputePortfolioSummary values the account against the funding it started
// with. Each holding is valued at its CurrentPrice, which callers refresh from
// the instrument before calling. The result depends only on the arguments.
func ComputePortfolioSummary(acct Account, holdings []Holding, initialFunding market.Money) PortfolioSummary {
	s := PortfolioSummary{
		CashBalance:    acct.CashBalance,
		SavingsBalance: acct.SavingsBalance,
		Holdings:       make([]HoldingValuation, 0, len(holdings)),
	}
	for _, h := range holdings {
		m := ComputeHoldingMetrics(h, h.CurrentPrice)
		s.TotalHoldingsValue = s.TotalHoldingsValue.Add(m.CurrentValue)
		s.TotalInvested = s.TotalInvested.Add(m.TotalInvested)
		s.Holdings = append(s.Holdings, HoldingValuation{Holding: h, HoldingMetrics: m})
	}

	s.TotalValue = acct.CashBalance.Add(acct.SavingsBalance).Add(s.TotalHoldingsValue)
	s.TotalGainLoss = s.TotalValue.Sub(initialFunding)
	s.TotalGainLossPercent = s.TotalGainLoss.Ratio(initialFunding, PercentPlaces)
	return s
}

// DepositsPrincipal totals the amounts locked in active deposits.
func DepositsPrincipal(deposits []FixedDeposit) market.Money {
	var total market.Money
	for _, d := range deposits {
		if d.Status == DepositActive {
			total = total.Add(d.Amount)
		}
	}
	return total
}
