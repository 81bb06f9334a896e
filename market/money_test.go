package market

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmeticIsExact(t *testing.T) {
	t.Parallel()

	// 0.1 + 0.2 drifts in binary floats but not here.
	sum := MustMoney("0.1").Add(MustMoney("0.2"))
	assert.True(t, sum.Equal(MustMoney("0.3")))

	total := MustMoney("182.52").Mul(Q(0.333))
	assert.Equal(t, "60.77916", total.String())
}

func TestMoneyDivShares(t *testing.T) {
	t.Parallel()

	avg := MustMoney("1650").DivShares(Q(15), 10)
	assert.True(t, avg.Equal(M(110)))

	third := MustMoney("100").DivShares(Q(3), 4)
	assert.Equal(t, "33.3333", third.String())
}

func TestMoneyRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		num  Money
		den  Money
		want string
	}{
		{"gain", M(650), M(10000), "6.5"},
		{"loss", M(-250), M(1000), "-25"},
		{"zero denominator", M(5), Money{}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.num.Ratio(tt.den, 6)
			assert.True(t, got.Decimal().Equal(decimal.RequireFromString(tt.want)), "got %s", got.Decimal())
		})
	}
}

func TestMoneyFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$10,650.00", MustMoney("10650").Format("USD"))
	assert.Equal(t, "$0.01", MustMoney("0.005").Format("USD"))
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	t.Parallel()

	type payload struct {
		Cash   Money  `json:"cash"`
		Shares Shares `json:"shares"`
	}

	b, err := json.Marshal(payload{Cash: MustMoney("10000.50"), Shares: Q(2.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cash":"10000.5","shares":"2.5"}`, string(b))

	var got payload
	require.NoError(t, json.Unmarshal([]byte(`{"cash":"12.34","shares":3}`), &got))
	assert.True(t, got.Cash.Equal(MustMoney("12.34")))
	assert.True(t, got.Shares.Equal(Q(3)))
}

func TestMoneyScan(t *testing.T) {
	t.Parallel()

	var m Money
	require.NoError(t, m.Scan("110.0000000000"))
	assert.True(t, m.Equal(M(110)))

	v, err := MustMoney("1.50").Value()
	require.NoError(t, err)
	assert.Equal(t, "1.5", v)
}

func TestParseMoneyRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParseMoney("ten dollars")
	assert.Error(t, err)
}

func TestPercentFactor(t *testing.T) {
	t.Parallel()

	assert.True(t, P(6.5).Factor().Equal(decimal.RequireFromString("1.065")))
	assert.Equal(t, "+1.36%", P(1.36).SignedString())
	assert.Equal(t, "-0.90%", P(-0.9).SignedString())
}
