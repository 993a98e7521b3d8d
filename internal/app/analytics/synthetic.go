package analytics

import (
	"math/rand/v2"
	"time"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"
)

// SyntheticHistory returns a placeholder portfolio series of days+1 points ending at now,
// with values between 980 and 1280.
func SyntheticHistory(now time.Time, days int, rnd *rand.Rand) []entity.SeriesPoint {
	out := make([]entity.SeriesPoint, 0, days+1)
	for i := days; i >= 0; i-- {
		out = append(out, entity.SeriesPoint{
			Date:  ChartDate(now.AddDate(0, 0, -i)),
			Value: utils.Round2(1000 + rnd.Float64()*300 - 20),
		})
	}
	return out
}

// SyntheticDailyFees returns a placeholder fee series of days points with values between 0.1 and 0.5.
func SyntheticDailyFees(now time.Time, days int, rnd *rand.Rand) []entity.SeriesPoint {
	out := make([]entity.SeriesPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		out = append(out, entity.SeriesPoint{
			Date:  ChartDate(now.AddDate(0, 0, -i)),
			Value: utils.Round2(rnd.Float64()*0.4 + 0.1),
		})
	}
	return out
}

// SyntheticDailyChange returns placeholder percent changes in [-5, 5).
func SyntheticDailyChange(rnd *rand.Rand) entity.DailyChange {
	next := func() float64 { return utils.Round2(rnd.Float64()*10 - 5) }
	return entity.DailyChange{
		TotalBalance:  next(),
		DefiPositions: next(),
		CryptoAssets:  next(),
		TotalFeesPaid: next(),
		NFTCount:      next(),
	}
}
