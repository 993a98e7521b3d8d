package port

import "context"

// PriceService resolves USD prices. A zero price means unknown.
type PriceService interface {
	NativePriceUSD(ctx context.Context, network string) float64
	// TokenPricesUSD returns prices keyed by lowercase token address.
	TokenPricesUSD(ctx context.Context, network string, addresses []string) map[string]float64
}
