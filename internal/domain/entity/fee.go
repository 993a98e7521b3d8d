package entity

// FeeCategory is one bucket of the fixed fee breakdown.
type FeeCategory string

const (
	FeeSwaps              FeeCategory = "Swaps"
	FeeBridges            FeeCategory = "Bridges"
	FeeSmartContractCalls FeeCategory = "Smart Contract Calls"
	FeeLiquidity          FeeCategory = "Liquidity Provision"
	FeeWithdrawals        FeeCategory = "Withdrawals"
)

// FeeCategories lists every category in display order.
var FeeCategories = []FeeCategory{
	FeeSwaps,
	FeeBridges,
	FeeSmartContractCalls,
	FeeLiquidity,
	FeeWithdrawals,
}

// FeeData aggregates paid network fees in USD. TotalFees is authoritative; the
// per-network and per-category maps are attributed alongside it.
type FeeData struct {
	TotalFees     float64                 `json:"totalFees"`
	FeesByNetwork map[string]float64      `json:"feesByNetwork"`
	FeesByType    map[FeeCategory]float64 `json:"feesByType"`
	DailyFees     []SeriesPoint           `json:"-"`
}

// NetworkFeeShare is a FeeShare keyed by network.
type NetworkFeeShare struct {
	Network    string  `json:"network"`
	Fee        float64 `json:"fee"`
	Percentage float64 `json:"percentage"`
}

// TypeFeeShare is a FeeShare keyed by category.
type TypeFeeShare struct {
	Type       string  `json:"type"`
	Fee        float64 `json:"fee"`
	Percentage float64 `json:"percentage"`
}

// DefaultFeeData is the snapshot served when fee analysis is unavailable.
func DefaultFeeData() FeeData {
	return FeeData{
		TotalFees: 25.75,
		FeesByNetwork: map[string]float64{
			"ethereum": 15.23,
			"polygon":  5.82,
			"bsc":      2.15,
			"optimism": 1.45,
			"arbitrum": 1.10,
		},
		FeesByType: map[FeeCategory]float64{
			FeeSwaps:              5.15,
			FeeBridges:            0,
			FeeSmartContractCalls: 20.60,
			FeeLiquidity:          0,
			FeeWithdrawals:        0,
		},
	}
}
