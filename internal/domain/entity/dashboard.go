package entity

// SeriesPoint is one point of a chart-ready time series.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DailyChange holds the per-field change of the overview metrics.
type DailyChange struct {
	TotalBalance  float64 `json:"totalBalance"`
	DefiPositions float64 `json:"defiPositions"`
	CryptoAssets  float64 `json:"cryptoAssets"`
	TotalFeesPaid float64 `json:"totalFeesPaid"`
	NFTCount      float64 `json:"nftCount"`
}

// Overview holds the headline metrics of a dashboard.
type Overview struct {
	TotalBalance  float64     `json:"totalBalance"`
	DefiPositions float64     `json:"defiPositions"`
	CryptoAssets  float64     `json:"cryptoAssets"`
	TotalFeesPaid float64     `json:"totalFeesPaid"`
	NFTCount      int64       `json:"nftCount"`
	DailyChange   DailyChange `json:"dailyChange"`
	DataProvider  Provider    `json:"dataProvider"`
}

// Charts holds chart-ready series derived from the dashboard data.
type Charts struct {
	PortfolioHistory []SeriesPoint     `json:"portfolioHistory"`
	FeesByNetwork    []NetworkFeeShare `json:"feesByNetwork"`
	FeesByType       []TypeFeeShare    `json:"feesByType"`
	DailyFees        []SeriesPoint     `json:"dailyFees"`
}

// DashboardResponse is the aggregated view of one wallet.
type DashboardResponse struct {
	Overview       Overview       `json:"overview"`
	WalletBalances []Token        `json:"walletBalances"`
	DefiPositions  []DefiPosition `json:"defiPositions"`
	Transactions   []Transaction  `json:"transactions"`
	FeeData        FeeData        `json:"feeData"`
	Charts         Charts         `json:"charts"`
	Networks       []NetworkInfo  `json:"networks"`
	Fallbacks      []string       `json:"fallbacks"`
}
