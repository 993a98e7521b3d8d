package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"wallet_dashboard/internal/client"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

const (
	wethAddress = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	usdcAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

// fakeDEXScreener records calls and serves pairs keyed by lowercase base address.
type fakeDEXScreener struct {
	mu    sync.Mutex
	pairs map[string][]client.PairData
	err   error
	calls [][]string
}

func (f *fakeDEXScreener) GetTokenPairsByAddresses(_ context.Context, _ string, addrs []string) ([]client.PairData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), addrs...))
	if f.err != nil {
		return nil, f.err
	}
	var out []client.PairData
	for _, a := range addrs {
		out = append(out, f.pairs[strings.ToLower(a)]...)
	}
	return out, nil
}

func pair(base, quoteSymbol, price string, liquidity float64) client.PairData {
	return client.PairData{
		BaseToken:  client.DEXToken{Address: base},
		QuoteToken: client.DEXToken{Symbol: quoteSymbol},
		PriceUsd:   price,
		Liquidity:  &client.DEXLiquidity{Usd: liquidity},
	}
}

func newPriceService(dsc client.DEXScreenerClient, batch int) *tokenPriceServiceImpl {
	reg := networkdefinition.NewNetworkDefinitionProvider(logger.NewNop())
	return NewTokenPriceService(reg, dsc, logger.NewNop(), TokenPriceServiceOptions{
		MaxTokensPerBatchRequest: batch,
		CacheTTL:                 time.Minute,
	}).(*tokenPriceServiceImpl)
}

func TestSelectBestPriceFromPairs(t *testing.T) {
	svc := newPriceService(&fakeDEXScreener{}, 30)

	tests := []struct {
		name  string
		pairs []client.PairData
		want  float64
	}{
		{
			name: "stablecoin quote beats deeper non-stable pair",
			pairs: []client.PairData{
				pair(wethAddress, "WBTC", "2900", 9_000_000),
				pair(wethAddress, "USDC", "2850", 1_000_000),
				pair(wethAddress, "usdt", "2860", 2_000_000),
			},
			want: 2860,
		},
		{
			name: "highest liquidity without stablecoin",
			pairs: []client.PairData{
				pair(wethAddress, "WBTC", "2900", 100),
				pair(wethAddress, "PEPE", "2950", 500),
			},
			want: 2950,
		},
		{
			name: "other base tokens and zero prices are ignored",
			pairs: []client.PairData{
				pair(usdcAddress, "USDT", "1", 1_000_000),
				pair(wethAddress, "DAI", "0", 1_000_000),
				pair(strings.ToUpper(wethAddress[2:]), "DAI", "5", 1),
			},
			want: 0,
		},
		{
			name:  "unparseable price",
			pairs: []client.PairData{pair(wethAddress, "USDC", "n/a", 10)},
			want:  0,
		},
		{
			name:  "nil liquidity counts as zero",
			pairs: []client.PairData{{BaseToken: client.DEXToken{Address: wethAddress}, PriceUsd: "2700"}},
			want:  2700,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.selectBestPriceFromPairs(tt.pairs, wethAddress))
		})
	}
}

func TestTokenPricesUSDBatchesAndCaches(t *testing.T) {
	dsc := &fakeDEXScreener{pairs: map[string][]client.PairData{
		wethAddress: {pair(wethAddress, "USDC", "2850.5", 10)},
		usdcAddress: {pair(usdcAddress, "USDT", "1.0001", 10)},
	}}
	svc := newPriceService(dsc, 2)
	ctx := context.Background()

	unknown := "0x0000000000000000000000000000000000000bad"
	prices := svc.TokenPricesUSD(ctx, "ethereum", []string{strings.ToUpper(wethAddress[:2]) + wethAddress[2:], usdcAddress, unknown, usdcAddress, ""})

	assert.Equal(t, map[string]float64{wethAddress: 2850.5, usdcAddress: 1.0001}, prices)
	assert.Len(t, dsc.calls, 2)

	again := svc.TokenPricesUSD(ctx, "Ethereum", []string{wethAddress, unknown})
	assert.Equal(t, map[string]float64{wethAddress: 2850.5}, again)
	assert.Len(t, dsc.calls, 2, "cached prices and cached misses must not be re-queried")
}

func TestTokenPricesUSDUpstreamFailureIsNotCached(t *testing.T) {
	dsc := &fakeDEXScreener{err: errors.New("boom")}
	svc := newPriceService(dsc, 30)
	ctx := context.Background()

	assert.Empty(t, svc.TokenPricesUSD(ctx, "ethereum", []string{wethAddress}))

	dsc.err = nil
	dsc.pairs = map[string][]client.PairData{wethAddress: {pair(wethAddress, "USDC", "3000", 1)}}
	assert.Equal(t, 3000.0, svc.TokenPricesUSD(ctx, "ethereum", []string{wethAddress})[wethAddress])
	assert.Len(t, dsc.calls, 2)
}

func TestTokenPricesUSDUnknownNetwork(t *testing.T) {
	dsc := &fakeDEXScreener{}
	svc := newPriceService(dsc, 30)

	assert.Empty(t, svc.TokenPricesUSD(context.Background(), "dogechain", []string{wethAddress}))
	assert.Empty(t, dsc.calls)
}

func TestNativePriceUSD(t *testing.T) {
	dsc := &fakeDEXScreener{pairs: map[string][]client.PairData{
		wethAddress: {pair(wethAddress, "USDC", "3100", 10)},
	}}
	svc := newPriceService(dsc, 30)
	ctx := context.Background()

	assert.Equal(t, 3100.0, svc.NativePriceUSD(ctx, "ethereum"))
	assert.Equal(t, networkdefinition.Polygon.ApproxNativePriceUSD, svc.NativePriceUSD(ctx, "polygon"))
	assert.Zero(t, svc.NativePriceUSD(ctx, "dogechain"))
}
