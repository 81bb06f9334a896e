package market

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// MinPrice is the floor a simulated price can fall to.
var MinPrice = MustMoney("0.01")

// Walk applies one random-walk step to an instrument: the price moves by a
// percentage drawn uniformly from [-maxStep, +maxStep], is rounded to cents
// and floored at MinPrice. PriceChange and PriceChangePercent describe the
// move relative to the previous price.
func Walk(inst Instrument, maxStep Percent, r *rand.Rand, now time.Time) Instrument {
	draw := decimal.NewFromFloat(r.Float64() - 0.5).Round(8)
	ratio := draw.Mul(decimal.NewFromInt(2)).Mul(maxStep.Decimal()).Div(hundred)

	next := inst.CurrentPrice.Scale(decimal.NewFromInt(1).Add(ratio)).Round(CentPlaces)
	if next.LessThan(MinPrice) {
		next = MinPrice
	}
	return Reprice(inst, next, now)
}

// Reprice moves an instrument to price, recording the change from its
// previous price.
func Reprice(inst Instrument, price Money, now time.Time) Instrument {
	prev := inst.CurrentPrice
	change := price.Sub(prev)
	inst.CurrentPrice = price
	inst.PriceChange = change
	inst.PriceChangePercent = change.Ratio(prev, 4)
	inst.UpdatedAt = now
	return inst
}
