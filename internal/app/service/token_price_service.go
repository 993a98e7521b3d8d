package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/client"
	"wallet_dashboard/internal/pkg/utils"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	stablecoinUSDCSymbol = "USDC"
	stablecoinUSDTSymbol = "USDT"
	stablecoinDAISymbol  = "DAI"
)

var stablecoinSymbols = map[string]struct{}{
	stablecoinUSDCSymbol: {},
	stablecoinUSDTSymbol: {},
	stablecoinDAISymbol:  {},
}

// TokenPriceServiceOptions tunes the DEXScreener price lookups.
type TokenPriceServiceOptions struct {
	MaxTokensPerBatchRequest int
	MaxConcurrentRequests    int
	CacheTTL                 time.Duration
}

// tokenPriceServiceImpl implements port.PriceService on top of DEXScreener with a
// TTL cache. Unpriced tokens are cached as zero so they are not re-queried every request.
type tokenPriceServiceImpl struct {
	registry          port.ChainRegistry
	dexscreenerClient client.DEXScreenerClient
	logger            port.Logger
	cache             *gocache.Cache
	opts              TokenPriceServiceOptions
}

// NewTokenPriceService creates a new instance of tokenPriceServiceImpl.
func NewTokenPriceService(registry port.ChainRegistry, dsc client.DEXScreenerClient, l port.Logger, opts TokenPriceServiceOptions) port.PriceService {
	if opts.MaxTokensPerBatchRequest <= 0 {
		opts.MaxTokensPerBatchRequest = 30
	}
	if opts.MaxConcurrentRequests <= 0 {
		opts.MaxConcurrentRequests = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	l.Info("TokenPriceService initialized", "batchSize", opts.MaxTokensPerBatchRequest, "cacheTTL", opts.CacheTTL.String())
	return &tokenPriceServiceImpl{
		registry:          registry,
		dexscreenerClient: dsc,
		logger:            l,
		cache:             gocache.New(opts.CacheTTL, 2*opts.CacheTTL),
		opts:              opts,
	}
}

func cacheKey(dexID, address string) string {
	return dexID + ":" + strings.ToLower(address)
}

// NativePriceUSD implements port.PriceService. The wrapped native token's DEX price
// is used; the network's approximate price is the fallback.
func (s *tokenPriceServiceImpl) NativePriceUSD(ctx context.Context, network string) float64 {
	def, ok := s.registry.Lookup(network)
	if !ok {
		return 0
	}
	if def.WrappedNativeTokenAddress != "" && def.DEXScreenerChainID != "" {
		wrapped := strings.ToLower(def.WrappedNativeTokenAddress)
		if p := s.TokenPricesUSD(ctx, network, []string{wrapped})[wrapped]; p > 0 {
			return p
		}
	}
	s.logger.Debug("Using approximate native price", "network", def.Identifier, "price", def.ApproxNativePriceUSD)
	return def.ApproxNativePriceUSD
}

// TokenPricesUSD implements port.PriceService.
func (s *tokenPriceServiceImpl) TokenPricesUSD(ctx context.Context, network string, addresses []string) map[string]float64 {
	prices := make(map[string]float64)
	def, ok := s.registry.Lookup(network)
	if !ok || def.DEXScreenerChainID == "" {
		return prices
	}
	dexID := def.DEXScreenerChainID

	seen := make(map[string]struct{}, len(addresses))
	var missing []string
	for _, a := range addresses {
		a = strings.ToLower(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		if cached, found := s.cache.Get(cacheKey(dexID, a)); found {
			if p := cached.(float64); p > 0 {
				prices[a] = p
			}
			continue
		}
		missing = append(missing, a)
	}
	if len(missing) == 0 {
		return prices
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrentRequests)
	for _, batch := range utils.BatchStrings(missing, s.opts.MaxTokensPerBatchRequest) {
		g.Go(func() error {
			pairs, err := s.dexscreenerClient.GetTokenPairsByAddresses(ctx, dexID, batch)
			if err != nil {
				s.logger.Warn("Failed to get token pairs from DEXScreener", "dexScreenerID", dexID, "count", len(batch), "error", err)
				return nil
			}
			for _, addr := range batch {
				price := s.selectBestPriceFromPairs(pairs, addr)
				s.cache.SetDefault(cacheKey(dexID, addr), price)
				if price > 0 {
					mu.Lock()
					prices[addr] = price
					mu.Unlock()
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("Resolved token prices", "dexScreenerID", dexID, "requested", len(missing), "priced", len(prices))
	return prices
}

// selectBestPriceFromPairs prefers the deepest stablecoin-quoted pair, then the deepest pair overall.
func (s *tokenPriceServiceImpl) selectBestPriceFromPairs(pairs []client.PairData, baseTokenAddress string) float64 {
	var bestOverallPair *client.PairData
	var bestStablecoinPair *client.PairData

	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if pair.PriceUsd == "" || pair.PriceUsd == "0" {
			continue
		}

		if _, isStablecoin := stablecoinSymbols[strings.ToUpper(pair.QuoteToken.Symbol)]; isStablecoin {
			if bestStablecoinPair == nil || pair.LiquidityUSD() > bestStablecoinPair.LiquidityUSD() {
				bestStablecoinPair = pair
			}
		}
		if bestOverallPair == nil || pair.LiquidityUSD() > bestOverallPair.LiquidityUSD() {
			bestOverallPair = pair
		}
	}

	best := bestStablecoinPair
	if best == nil {
		best = bestOverallPair
	}
	if best == nil {
		s.logger.Debug("No suitable price found from pairs", "baseTokenAddress", baseTokenAddress, "evaluatedPairCount", len(pairs))
		return 0
	}

	price, err := strconv.ParseFloat(best.PriceUsd, 64)
	if err != nil {
		s.logger.Warn("Failed to parse token price from DEXScreener", "tokenAddress", baseTokenAddress, "price_string", best.PriceUsd, "error", err)
		return 0
	}
	s.logger.Debug("Selected price from pair",
		"baseTokenAddress", baseTokenAddress,
		"pairAddress", best.PairAddress,
		"priceUsd", price,
		"liquidityUsd", best.LiquidityUSD(),
		"quoteToken", best.QuoteToken.Symbol)
	return price
}
