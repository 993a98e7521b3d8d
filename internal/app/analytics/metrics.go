// Package analytics derives dashboard metrics from normalized provider records.
package analytics

import (
	"sort"
	"time"

	"wallet_dashboard/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// TotalValue sums the USD value of tokens.
func TotalValue(tokens []entity.Token) float64 {
	sum := decimal.Zero
	for _, t := range tokens {
		sum = sum.Add(decimal.NewFromFloat(t.Value))
	}
	return sum.InexactFloat64()
}

// TotalDefiValue sums the USD value of pooled positions.
func TotalDefiValue(positions []entity.DefiPosition) float64 {
	sum := decimal.Zero
	for _, p := range positions {
		sum = sum.Add(decimal.NewFromFloat(p.Value))
	}
	return sum.InexactFloat64()
}

// CryptoAssets is total balance minus DeFi value. It is not clamped and may be
// negative when the two sources disagree.
func CryptoAssets(totalBalance, defiValue float64) float64 {
	return decimal.NewFromFloat(totalBalance).Sub(decimal.NewFromFloat(defiValue)).InexactFloat64()
}

// SortByValue orders tokens by value, highest first. Equal values keep their order.
func SortByValue(tokens []entity.Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Value > tokens[j].Value
	})
}

func percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// NetworkFeeShares returns each network's fee and its share of TotalFees, ordered by network name.
func NetworkFeeShares(fd entity.FeeData) []entity.NetworkFeeShare {
	names := make([]string, 0, len(fd.FeesByNetwork))
	for n := range fd.FeesByNetwork {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]entity.NetworkFeeShare, 0, len(names))
	for _, n := range names {
		fee := fd.FeesByNetwork[n]
		out = append(out, entity.NetworkFeeShare{Network: n, Fee: fee, Percentage: percentage(fee, fd.TotalFees)})
	}
	return out
}

// TypeFeeShares returns every fee category in display order with its share of TotalFees.
func TypeFeeShares(fd entity.FeeData) []entity.TypeFeeShare {
	out := make([]entity.TypeFeeShare, 0, len(entity.FeeCategories))
	for _, c := range entity.FeeCategories {
		fee := fd.FeesByType[c]
		out = append(out, entity.TypeFeeShare{Type: string(c), Fee: fee, Percentage: percentage(fee, fd.TotalFees)})
	}
	return out
}

// ChartDate formats a day the way chart series label it, e.g. "Feb 21".
func ChartDate(t time.Time) string {
	return t.Format("Jan 2")
}
