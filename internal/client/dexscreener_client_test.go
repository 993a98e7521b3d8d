package client

import (
	"context"
	"net/http"
	"testing"

	"wallet_dashboard/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDEXScreenerPairs(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokens/v1/ethereum/0xa,0xb":
			writeJSON(w, http.StatusOK, `[{"chainId":"ethereum","pairAddress":"0xp","baseToken":{"address":"0xa","symbol":"A"},"quoteToken":{"symbol":"USDC"},"priceUsd":"1.25","liquidity":{"usd":1000}}]`)
		case "/tokens/v1/polygon/0xc":
			writeJSON(w, http.StatusOK, `{"schemaVersion":"1.0.0","pairs":[{"baseToken":{"address":"0xc"},"priceUsd":"3"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	c := NewDEXScreenerClient(newTestTransport(entity.ProviderDEXScreener), srv.URL, zap.NewNop(), 2)
	ctx := context.Background()

	pairs, err := c.GetTokenPairsByAddresses(ctx, "ethereum", []string{"0xa", "0xb"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "1.25", pairs[0].PriceUsd)
	assert.Equal(t, 1000.0, pairs[0].LiquidityUSD())

	pairs, err = c.GetTokenPairsByAddresses(ctx, "polygon", []string{"0xc"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Zero(t, pairs[0].LiquidityUSD())

	_, err = c.GetTokenPairsByAddresses(ctx, "ethereum", []string{"0x1", "0x2", "0x3"})
	assert.Error(t, err)
	_, err = c.GetTokenPairsByAddresses(ctx, "ethereum", nil)
	assert.Error(t, err)
	_, err = c.GetTokenPairsByAddresses(ctx, "bsc", []string{"0xd"})
	assert.Error(t, err)
}
