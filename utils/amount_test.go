package utils

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenflow/tokenflow/types"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
	}{
		{"one token", "1", 18, "1000000000000000000"},
		{"fractional", "1.5", 18, "1500000000000000000"},
		{"small fraction", "0.000001", 18, "1000000000000"},
		{"six decimals", "12.34", 6, "12340000"},
		{"zero decimals", "42", 0, "42"},
		{"sub-precision truncated", "0.0000000000000000001", 18, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tc.amount)
			require.NoError(t, err)

			got, err := ToMinorUnits(amount, tc.decimals)
			require.NoError(t, err)

			want, ok := new(big.Int).SetString(tc.want, 10)
			require.True(t, ok)
			assert.Equal(t, 0, got.Cmp(want), "got %s want %s", got, want)
		})
	}
}

func TestToMinorUnits_Deterministic(t *testing.T) {
	amount := decimal.NewFromFloat(3.14159)

	first, err := ToMinorUnits(amount, 18)
	require.NoError(t, err)
	second, err := ToMinorUnits(amount, 18)
	require.NoError(t, err)

	assert.Equal(t, 0, first.Cmp(second))
}

func TestToMinorUnits_Monotonic(t *testing.T) {
	amounts := []string{"0.1", "0.5", "1", "1.000000000000000001", "2", "100"}

	var prev *big.Int
	for _, s := range amounts {
		amount, err := decimal.NewFromString(s)
		require.NoError(t, err)

		got, err := ToMinorUnits(amount, 18)
		require.NoError(t, err)

		if prev != nil {
			assert.True(t, got.Cmp(prev) >= 0, "%s converted below its predecessor", s)
		}
		prev = got
	}
}

func TestToMinorUnits_RejectsNonPositive(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		_, err := ToMinorUnits(amount, 18)
		require.Error(t, err)

		var fe *types.FlowError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, types.ErrInvalidAmount, fe.Code)
	}
}

func TestFromMinorUnits(t *testing.T) {
	minor, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", FromMinorUnits(minor, 18))
}

func TestAmountFromString(t *testing.T) {
	got, err := AmountFromString("1.25")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(1.25)))

	for _, s := range []string{"", "abc", "1.2.3"} {
		_, err := AmountFromString(s)
		require.Error(t, err, "input %q", s)

		var fe *types.FlowError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, types.ErrInvalidAmount, fe.Code)
	}
}

func TestAmountFromFloat_RejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := AmountFromFloat(f)
		require.Error(t, err)

		var fe *types.FlowError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, types.ErrInvalidAmount, fe.Code)
	}

	got, err := AmountFromFloat(2.5)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(2.5)))
}
