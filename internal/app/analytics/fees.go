package analytics

import (
	"strings"
	"sync"
	"time"

	"wallet_dashboard/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Known 4-byte method selectors. Anything not listed counts as a smart contract call.
var selectorCategories = map[string]entity.FeeCategory{
	"0x38ed1739": entity.FeeSwaps, // swapExactTokensForTokens
	"0x7ff36ab5": entity.FeeSwaps, // swapExactETHForTokens
	"0x18cbafe5": entity.FeeSwaps, // swapExactTokensForETH
	"0x5ae401dc": entity.FeeSwaps, // multicall (v3 router)
	"0x3593564c": entity.FeeSwaps, // execute (universal router)
	"0xe8e33700": entity.FeeLiquidity,
	"0xf305d719": entity.FeeLiquidity,
	"0x2e1a7d4d": entity.FeeWithdrawals,
}

// CategorizeInput maps transaction calldata to a fee category.
func CategorizeInput(input string) entity.FeeCategory {
	if len(input) < 10 {
		return entity.FeeSmartContractCalls
	}
	if c, ok := selectorCategories[strings.ToLower(input[:10])]; ok {
		return c
	}
	return entity.FeeSmartContractCalls
}

// FeeAccumulator collects paid fees. The total is incremented together with the
// per-network and per-category buckets and is the authoritative figure.
type FeeAccumulator struct {
	mu        sync.Mutex
	total     decimal.Decimal
	byNetwork map[string]decimal.Decimal
	byType    map[entity.FeeCategory]decimal.Decimal
	byDay     map[string]decimal.Decimal
}

// NewFeeAccumulator starts every category and every given network at zero.
func NewFeeAccumulator(networks []string) *FeeAccumulator {
	a := &FeeAccumulator{
		byNetwork: make(map[string]decimal.Decimal, len(networks)),
		byType:    make(map[entity.FeeCategory]decimal.Decimal, len(entity.FeeCategories)),
		byDay:     make(map[string]decimal.Decimal),
	}
	for _, n := range networks {
		a.byNetwork[n] = decimal.Zero
	}
	for _, c := range entity.FeeCategories {
		a.byType[c] = decimal.Zero
	}
	return a
}

// Add records one fee in USD. A zero at skips the daily series.
func (a *FeeAccumulator) Add(network string, category entity.FeeCategory, usd decimal.Decimal, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total = a.total.Add(usd)
	a.byNetwork[network] = a.byNetwork[network].Add(usd)
	a.byType[category] = a.byType[category].Add(usd)
	if !at.IsZero() {
		day := at.UTC().Format(time.DateOnly)
		a.byDay[day] = a.byDay[day].Add(usd)
	}
}

// Result snapshots the accumulated fees. DailyFees covers the days days ending at now,
// oldest first, with zero for days without fees.
func (a *FeeAccumulator) Result(now time.Time, days int) entity.FeeData {
	a.mu.Lock()
	defer a.mu.Unlock()

	fd := entity.FeeData{
		TotalFees:     a.total.InexactFloat64(),
		FeesByNetwork: make(map[string]float64, len(a.byNetwork)),
		FeesByType:    make(map[entity.FeeCategory]float64, len(a.byType)),
	}
	for n, v := range a.byNetwork {
		fd.FeesByNetwork[n] = v.InexactFloat64()
	}
	for c, v := range a.byType {
		fd.FeesByType[c] = v.InexactFloat64()
	}
	today := now.UTC().Truncate(24 * time.Hour)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		fd.DailyFees = append(fd.DailyFees, entity.SeriesPoint{
			Date:  ChartDate(day),
			Value: a.byDay[day.Format(time.DateOnly)].Round(2).InexactFloat64(),
		})
	}
	return fd
}
