package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/httpclient"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/pkg/logger"

	"go.uber.org/zap"
)

const testWallet = "0x000000000000000000000000000000000000dEaD"

func newTestRegistry() *networkdefinition.NetworkDefinitionProvider {
	return networkdefinition.NewNetworkDefinitionProvider(logger.NewNop())
}

func newTestTransport(provider entity.Provider) *httpclient.Transport {
	return httpclient.NewTransport(provider, 2*time.Second, 0, 0, zap.NewNop())
}

func newUpstream(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// fakePrices is a static port.PriceService.
type fakePrices struct {
	native map[string]float64
	tokens map[string]float64
}

func (f fakePrices) NativePriceUSD(_ context.Context, network string) float64 {
	return f.native[network]
}

func (f fakePrices) TokenPricesUSD(_ context.Context, _ string, addresses []string) map[string]float64 {
	out := make(map[string]float64)
	for _, a := range addresses {
		if p, ok := f.tokens[strings.ToLower(a)]; ok {
			out[strings.ToLower(a)] = p
		}
	}
	return out
}

func bySymbol(tokens []entity.Token) map[string]entity.Token {
	out := make(map[string]entity.Token, len(tokens))
	for _, t := range tokens {
		out[t.Network+"/"+t.Symbol] = t
	}
	return out
}
