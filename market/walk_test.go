package market

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkStaysWithinStep(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(42))
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	inst := Instrument{Symbol: "AAPL", CurrentPrice: MustMoney("182.52"), IsActive: true}

	for i := 0; i < 500; i++ {
		next := Walk(inst, P(2), r, now)

		lo := inst.CurrentPrice.Scale(P(-2).Factor()).Round(CentPlaces)
		hi := inst.CurrentPrice.Scale(P(2).Factor()).Round(CentPlaces)
		require.True(t, next.CurrentPrice.GreaterThanOrEqual(lo), "step %d: %s < %s", i, next.CurrentPrice, lo)
		require.True(t, next.CurrentPrice.LessThanOrEqual(hi), "step %d: %s > %s", i, next.CurrentPrice, hi)
		require.True(t, next.PriceChange.Equal(next.CurrentPrice.Sub(inst.CurrentPrice)))
		assert.Equal(t, now, next.UpdatedAt)

		inst = next
	}
}

func TestWalkFloorsPrice(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	inst := Instrument{Symbol: "PENNY", CurrentPrice: MustMoney("0.01")}

	for i := 0; i < 50; i++ {
		inst = Walk(inst, P(50), r, time.Time{})
		assert.True(t, inst.CurrentPrice.GreaterThanOrEqual(MinPrice))
	}
}

func TestReprice(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	inst := Reprice(Instrument{Symbol: "X", CurrentPrice: MustMoney("80")}, MustMoney("100"), now)

	assert.True(t, inst.CurrentPrice.Equal(MustMoney("100")))
	assert.True(t, inst.PriceChange.Equal(MustMoney("20")))
	assert.Equal(t, "25.00%", inst.PriceChangePercent.String())
	assert.Equal(t, now, inst.UpdatedAt)

	fresh := Reprice(Instrument{Symbol: "Y"}, MustMoney("5"), now)
	assert.True(t, fresh.PriceChangePercent.IsZero())
}

func TestQuoteBook(t *testing.T) {
	t.Parallel()

	qb := NewQuoteBook(Catalog[0].Quote())

	q, err := qb.GetQuote(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(MustMoney("182.52")))

	_, err = qb.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNoQuote)
}
