package utils

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/tokenflow/tokenflow/types"
)

// ToMinorUnits converts a major-unit token amount to its integer minor-unit
// representation by scaling with 10^decimals and truncating. Conversion is
// deterministic; amounts representable within the token's precision convert
// losslessly.
func ToMinorUnits(amount decimal.Decimal, decimals int) (*big.Int, error) {
	if !amount.IsPositive() {
		return nil, &types.FlowError{
			Code:    types.ErrInvalidAmount,
			Message: fmt.Sprintf("amount must be greater than zero, got %s", amount),
		}
	}

	multiplier := decimal.NewFromBigInt(
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil), 0)

	return amount.Mul(multiplier).Truncate(0).BigInt(), nil
}

// FromMinorUnits formats an integer minor-unit amount as a major-unit
// decimal string.
func FromMinorUnits(amount *big.Int, decimals int) string {
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// AmountFromString parses a major-unit amount string.
func AmountFromString(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, &types.FlowError{
			Code:    types.ErrInvalidAmount,
			Message: "amount cannot be empty",
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &types.FlowError{
			Code:    types.ErrInvalidAmount,
			Message: fmt.Sprintf("invalid amount format: %v", err),
		}
	}

	return d, nil
}

// AmountFromFloat converts a float amount, rejecting non-finite values
// before they reach the decimal layer.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, &types.FlowError{
			Code:    types.ErrInvalidAmount,
			Message: "amount must be finite",
		}
	}

	return decimal.NewFromFloat(f), nil
}
