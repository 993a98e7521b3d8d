package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// ScaleUnits converts an integer amount in base units to human units.
// Example: amount=1234500000000000000, decimals=18 => 1.2345
func ScaleUnits(amount *big.Int, decimals int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, int32(-decimals))
}

// ParseRawAmount parses a base-unit amount given as a decimal or 0x-prefixed hex string.
func ParseRawAmount(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		if raw == "0x" || raw == "0X" {
			return new(big.Int), nil
		}
		trimmed := "0x" + strings.TrimLeft(raw[2:], "0")
		if trimmed == "0x" {
			return new(big.Int), nil
		}
		v, err := hexutil.DecodeBig(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid hex amount %q: %w", raw, err)
		}
		return v, nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount %q", raw)
	}
	return v, nil
}

// FormatUnits renders a base-unit amount in human units without trailing zeros.
func FormatUnits(raw string, decimals int) string {
	v, err := ParseRawAmount(raw)
	if err != nil {
		return "0"
	}
	return ScaleUnits(v, decimals).String()
}

// Round2 rounds to two decimal places for display.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
