package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEVMAddress(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"full address unchanged", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", true},
		{"short dead address padded", "0x0000000000000000000000000000000000dEaD", "0x000000000000000000000000000000000000dEaD", true},
		{"not an address", "not-an-address", "", false},
		{"empty", "", "", false},
		{"prefix only", "0x", "", false},
		{"too long", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2ff", "", false},
		{"non hex", "0xZZ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeEVMAddress(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRawAmount(t *testing.T) {
	v, err := ParseRawAmount("1500000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.String())

	v, err = ParseRawAmount("0x00000000000000000000000000000000000000000000000000000000000f4240")
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), v.Int64())

	v, err = ParseRawAmount("0x0")
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	_, err = ParseRawAmount("abc")
	assert.Error(t, err)
	_, err = ParseRawAmount("")
	assert.Error(t, err)
}

func TestScaleAndFormatUnits(t *testing.T) {
	amount, _ := new(big.Int).SetString("1234500000000000000", 10)
	assert.Equal(t, "1.2345", ScaleUnits(amount, 18).String())
	assert.Equal(t, "1.5", FormatUnits("1500000", 6))
	assert.Equal(t, "0", FormatUnits("garbage", 18))
	assert.True(t, ScaleUnits(nil, 18).IsZero())
}

func TestBatchStrings(t *testing.T) {
	batches := BatchStrings([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, batches)
	assert.Empty(t, BatchStrings(nil, 2))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"ethereum", "polygon"}, SplitCSV(" Ethereum, polygon,,ethereum "))
	assert.Empty(t, SplitCSV(""))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.24, Round2(1.2351))
}
