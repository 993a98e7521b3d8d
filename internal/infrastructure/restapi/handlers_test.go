package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testWallet      = "0x000000000000000000000000000000000000dEaD"
	testShortWallet = "0x0000000000000000000000000000000000dEaD"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDashboard struct {
	resp        *entity.DashboardResponse
	err         error
	panicWith   any
	gotAddress  string
	gotNetworks []string
	gotProvider entity.Provider
}

func (f *fakeDashboard) GetDashboardData(_ context.Context, address string, networks []string, provider entity.Provider) (*entity.DashboardResponse, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.gotAddress, f.gotNetworks, f.gotProvider = address, networks, provider
	return f.resp, f.err
}

type fakeBalances struct {
	name   entity.Provider
	tokens []entity.Token
	err    error
}

func (f fakeBalances) Name() entity.Provider { return f.name }

func (f fakeBalances) FetchBalances(context.Context, string, []string) ([]entity.Token, error) {
	return f.tokens, f.err
}

type fakeCoinbaseAPI struct {
	exchanged string
}

func (f *fakeCoinbaseAPI) AuthorizeURL(state string) string {
	return "https://coinbase.test/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeCoinbaseAPI) ExchangeCode(_ context.Context, code string) (*entity.OAuthToken, error) {
	if code == "bad" {
		return nil, errors.New("invalid_grant")
	}
	f.exchanged = code
	return &entity.OAuthToken{AccessToken: "access-" + code}, nil
}

func (f *fakeCoinbaseAPI) Refresh(context.Context, string) (*entity.OAuthToken, error) {
	return nil, errors.New("not used")
}

func (f *fakeCoinbaseAPI) Accounts(context.Context, string) ([]entity.CoinbaseAccount, error) {
	return nil, nil
}

func (f *fakeCoinbaseAPI) Transactions(context.Context, string, string, int) ([]entity.CoinbaseTransaction, error) {
	return nil, nil
}

// tokenEchoService returns the session's access token as the single account id.
type tokenEchoService struct{}

func (tokenEchoService) GetAccountData(ctx context.Context, tokens port.TokenSource) (*entity.CoinbaseData, error) {
	tok, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return &entity.CoinbaseData{
		Accounts:     []entity.CoinbaseAccount{{ID: tok.AccessToken}},
		Transactions: []entity.CoinbaseTransaction{},
	}, nil
}

type fakeNFTs struct {
	gotAddress string
	gotLimit   int
	gotChain   string
}

func (f *fakeNFTs) CountNFTs(context.Context, string, string) (int64, error) { return 0, nil }

func (f *fakeNFTs) ListNFTs(_ context.Context, address string, network string, limit int, _ string) (entity.NFTPage, error) {
	f.gotAddress, f.gotLimit, f.gotChain = address, limit, network
	return entity.NFTPage{Total: 1, NFTs: []entity.NFT{{TokenID: "1"}}}, nil
}

func (f *fakeNFTs) GetNFT(_ context.Context, contract, tokenID, network string) (entity.NFT, error) {
	if tokenID == "404" {
		return entity.NFT{}, entity.NewAPIError("NFT not found", http.StatusNotFound, entity.KindUpstream, nil)
	}
	return entity.NFT{ContractAddress: contract, TokenID: tokenID, Network: network}, nil
}

type testServer struct {
	router    *gin.Engine
	dashboard *fakeDashboard
	coinbase  *fakeCoinbaseAPI
	nfts      *fakeNFTs
}

func newTestServer(t *testing.T, mode string) *testServer {
	t.Helper()
	cfg := &configloader.Config{
		Server:  configloader.ServerConfig{Mode: mode, FrontendURL: "http://localhost:3000"},
		Moralis: configloader.ProviderConfig{APIKey: "m"},
	}
	log := logger.NewNop()
	reg := networkdefinition.NewNetworkDefinitionProvider(log)

	ts := &testServer{
		dashboard: &fakeDashboard{resp: &entity.DashboardResponse{Fallbacks: []string{}}},
		coinbase:  &fakeCoinbaseAPI{},
		nfts:      &fakeNFTs{},
	}
	balances := map[entity.Provider]port.BalanceProvider{
		entity.ProviderGoldRush: fakeBalances{name: entity.ProviderGoldRush, tokens: []entity.Token{{Symbol: "ETH", Value: 10}}},
		entity.ProviderAnkr:     fakeBalances{name: entity.ProviderAnkr},
		entity.ProviderAlchemy:  fakeBalances{name: entity.ProviderAlchemy, err: errors.New("rpc down")},
		entity.ProviderTheGraph: fakeBalances{name: entity.ProviderTheGraph, err: entity.ErrNoSupportedNetworks},
	}
	sessions := NewSessionStore(configloader.SessionConfig{Secret: "test-secret"})

	ts.router = SetupRouter(cfg, Handlers{
		Dashboard: NewDashboardHandler(ts.dashboard),
		Balances:  NewBalanceHandler(balances, reg, log),
		Coinbase:  NewCoinbaseHandler(ts.coinbase, tokenEchoService{}, sessions, cfg.Server.FrontendURL, true, log),
		NFTs:      NewNFTHandler(ts.nfts),
		Status:    NewStatusHandler(cfg, time.Now().Add(-time.Minute)),
	}, zap.NewNop())
	return ts
}

func (ts *testServer) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestDashboardHandlerPassesQuery(t *testing.T) {
	ts := newTestServer(t, "development")

	rec := ts.get("/api/dashboard?address=" + testWallet + "&networks=Ethereum,polygon&provider=goldrush")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testWallet, ts.dashboard.gotAddress)
	assert.Equal(t, []string{"ethereum", "polygon"}, ts.dashboard.gotNetworks)
	assert.Equal(t, entity.ProviderGoldRush, ts.dashboard.gotProvider)
	assert.Contains(t, decode(t, rec), "overview")
}

func TestDashboardHandlerValidationEnvelope(t *testing.T) {
	ts := newTestServer(t, "development")
	ts.dashboard.err = entity.NewValidationError("Wallet address is required", nil)

	rec := ts.get("/api/dashboard")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Wallet address is required", body["error_message"])
	details, ok := body["error_details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bad request. Please check your input parameters.", details["friendlyMessage"])
}

func TestProductionHidesDetails(t *testing.T) {
	ts := newTestServer(t, "production")
	ts.dashboard.err = errors.New("nil pointer somewhere")

	rec := ts.get("/api/dashboard?address=" + testWallet)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, unexpectedErrorMessage, body["error_message"])
	assert.NotContains(t, body, "error_details")
}

func TestProductionHidesUpstreamBodies(t *testing.T) {
	ts := newTestServer(t, "production")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"upstream 5xx", fmt.Errorf("fetch: %w", &entity.UpstreamError{Provider: entity.ProviderGoldRush, Operation: "balances", StatusCode: http.StatusBadGateway, Body: `{"secret":"internal-host"}`}), http.StatusBadGateway, unexpectedErrorMessage},
		{"upstream timeout", &entity.UpstreamError{Provider: entity.ProviderMoralis, Operation: "balances", Err: errors.New("dial tcp 10.0.0.7:443: i/o timeout")}, http.StatusInternalServerError, unexpectedErrorMessage},
		{"upstream 429", &entity.UpstreamError{Provider: entity.ProviderMoralis, StatusCode: http.StatusTooManyRequests, Body: `{"secret":"internal-host"}`}, http.StatusTooManyRequests, "Rate limit exceeded. Too many requests in a short period."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.dashboard.err = tt.err

			rec := ts.get("/api/dashboard?address=" + testWallet)

			require.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantMsg, body["error_message"])
			assert.NotContains(t, rec.Body.String(), "internal-host")
			assert.NotContains(t, rec.Body.String(), "10.0.0.7")
		})
	}
}

func TestUpstreamErrorKeepsStatus(t *testing.T) {
	ts := newTestServer(t, "development")
	ts.dashboard.err = &entity.UpstreamError{Provider: entity.ProviderMoralis, StatusCode: http.StatusTooManyRequests, Body: "slow"}

	rec := ts.get("/api/dashboard?address=" + testWallet)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	details := decode(t, rec)["error_details"].(map[string]any)
	assert.Equal(t, "slow", details["response"])
	assert.Contains(t, details["possibleSolution"], "batching")
}

func TestPanicIsRecovered(t *testing.T) {
	ts := newTestServer(t, "production")
	ts.dashboard.panicWith = "boom"

	rec := ts.get("/api/dashboard?address=" + testWallet)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, unexpectedErrorMessage, body["error_message"])
}

func TestNoRoute(t *testing.T) {
	ts := newTestServer(t, "development")

	rec := ts.get("/api/nope?x=1")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Route not found: GET /api/nope?x=1", body["error_message"])
}

func TestBalanceHandlers(t *testing.T) {
	ts := newTestServer(t, "development")

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantMsg    string
	}{
		{"goldrush ok", "/api/goldrush/balances?address=" + testWallet, http.StatusOK, ""},
		{"goldrush short address", "/api/goldrush/balances?address=" + testShortWallet, http.StatusOK, ""},
		{"goldrush bad address", "/api/goldrush/balances?address=0xZZ", http.StatusBadRequest, "Invalid wallet address. Please provide a valid Ethereum address."},
		{"goldrush missing 0x", "/api/goldrush/balances?address=dEaD", http.StatusBadRequest, "Invalid wallet address. Please provide a valid Ethereum address."},
		{"ankr missing address", "/api/ankr/balances", http.StatusBadRequest, "Invalid wallet address format."},
		{"ankr malformed 0x address", "/api/ankr/balances?address=0xZZ", http.StatusBadRequest, "Invalid wallet address format."},
		{"alchemy failure", "/api/alchemy/balances?address=" + testWallet, http.StatusInternalServerError, "Failed to fetch balances: rpc down"},
		{"thegraph unsupported", "/api/thegraph/balances?address=" + testWallet + "&networks=bsc", http.StatusBadRequest, ""},
		{"moralis not registered", "/api/moralis/balances?address=" + testWallet, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.get(tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				body := decode(t, rec)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.wantMsg, body["message"])
			}
		})
	}
}

func TestGoldRushBalanceBody(t *testing.T) {
	ts := newTestServer(t, "development")

	body := decode(t, ts.get("/api/goldrush/balances?address="+testWallet))

	assert.Equal(t, true, body["success"])
	assert.Equal(t, testWallet, body["address"])
	assert.Equal(t, []any{"ethereum"}, body["networks"])
	assert.Len(t, body["tokens"], 1)
	assert.NotContains(t, body, "supportedChains")
}

func TestBalanceHandlerNormalizesShortAddress(t *testing.T) {
	ts := newTestServer(t, "development")

	for _, target := range []string{
		"/api/goldrush/balances?address=" + testShortWallet,
		"/api/ankr/balances?address=" + testShortWallet,
	} {
		rec := ts.get(target)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, testWallet, decode(t, rec)["address"])
	}
}

func TestAnkrBalanceAcceptsNonEVMAddress(t *testing.T) {
	ts := newTestServer(t, "development")

	rec := ts.get("/api/ankr/balances?address=9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM&networks=solana")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, ankrProviderLabel, body["provider"])
	assert.Equal(t, []any{}, body["tokens"])
	chains := body["supportedChains"].(map[string]any)
	assert.Contains(t, chains["evm"], "ethereum")
	assert.Contains(t, chains["nonEvm"], "solana")
}

func TestStatusHandler(t *testing.T) {
	ts := newTestServer(t, "development")

	rec := ts.get("/api/status")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	api := body["api"].(map[string]any)
	assert.Equal(t, apiVersion, api["version"])
	assert.Greater(t, api["uptime"], 59.0)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "configured", deps["moralis"].(map[string]any)["status"])
	assert.Equal(t, "not configured", deps["coinbase"].(map[string]any)["status"])
	assert.Len(t, deps, 6)
	assert.Equal(t, "development", body["environment"].(map[string]any)["mode"])
}

func TestNFTHandlers(t *testing.T) {
	ts := newTestServer(t, "development")

	rec := ts.get("/api/nfts?address=" + testWallet + "&chain=Polygon&limit=500")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxNFTLimit, ts.nfts.gotLimit)
	assert.Equal(t, "polygon", ts.nfts.gotChain)

	assert.Equal(t, http.StatusBadRequest, ts.get("/api/nfts").Code)
	assert.Equal(t, http.StatusBadRequest, ts.get("/api/nfts?address=vitalik.eth").Code)
	assert.Equal(t, http.StatusBadRequest, ts.get("/api/nfts?address="+testWallet+"&limit=abc").Code)

	rec = ts.get("/api/nfts?address=" + testShortWallet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testWallet, ts.nfts.gotAddress)

	rec = ts.get("/api/nfts/0x0000000000000000000000000000000000dEaD/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testWallet, decode(t, rec)["contractAddress"])

	contract := "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D"
	rec = ts.get("/api/nfts/" + contract + "/1234")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ethereum", body["chain"])
	assert.Equal(t, "1234", body["tokenId"])

	assert.Equal(t, http.StatusBadRequest, ts.get("/api/nfts/0xZZ/1").Code)
	assert.Equal(t, http.StatusBadRequest, ts.get("/api/nfts/"+contract+"/abc").Code)
	assert.Equal(t, http.StatusNotFound, ts.get("/api/nfts/"+contract+"/404").Code)
}

func TestCoinbaseDataWithoutSession(t *testing.T) {
	ts := newTestServer(t, "development")

	rec := ts.get("/api/coinbase/data")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated with Coinbase", decode(t, rec)["error_message"])
}

func TestCoinbaseOAuthFlow(t *testing.T) {
	ts := newTestServer(t, "development")

	auth := ts.get("/api/coinbase/auth")
	require.Equal(t, http.StatusFound, auth.Code)
	location, err := url.Parse(auth.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	cookies := auth.Result().Cookies()
	require.NotEmpty(t, cookies)

	cb := ts.get("/api/coinbase/callback?code=abc&state="+url.QueryEscape(state), cookies...)
	require.Equal(t, http.StatusFound, cb.Code)
	assert.Equal(t, "http://localhost:3000/dashboard?coinbase=connected", cb.Header().Get("Location"))
	assert.Equal(t, "abc", ts.coinbase.exchanged)

	data := ts.get("/api/coinbase/data", cookies...)
	require.Equal(t, http.StatusOK, data.Code)
	accounts := decode(t, data)["accounts"].([]any)
	require.Len(t, accounts, 1)
	assert.Equal(t, "access-abc", accounts[0].(map[string]any)["id"])

	replay := ts.get("/api/coinbase/callback?code=abc&state="+url.QueryEscape(state), cookies...)
	assert.Equal(t, "http://localhost:3000/dashboard?error=coinbase_auth_failed", replay.Header().Get("Location"))
}

func TestCoinbaseCallbackFailures(t *testing.T) {
	ts := newTestServer(t, "development")
	failed := "http://localhost:3000/dashboard?error=coinbase_auth_failed"

	auth := ts.get("/api/coinbase/auth")
	cookies := auth.Result().Cookies()
	location, _ := url.Parse(auth.Header().Get("Location"))
	state := location.Query().Get("state")

	assert.Equal(t, failed, ts.get("/api/coinbase/callback?code=abc&state=forged", cookies...).Header().Get("Location"))
	assert.Equal(t, failed, ts.get("/api/coinbase/callback?code=abc&state="+state).Header().Get("Location"))
	assert.Equal(t, failed, ts.get("/api/coinbase/callback?error=access_denied").Header().Get("Location"))
	assert.Empty(t, ts.coinbase.exchanged)
}

func TestForgedSessionCookieIsIgnored(t *testing.T) {
	ts := newTestServer(t, "development")

	rec := ts.get("/api/coinbase/data", &http.Cookie{Name: "wallet_dashboard_session", Value: "abc.forged"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCoinbaseSessionCookie(t *testing.T) {
	ts := newTestServer(t, "development")

	auth := ts.get("/api/coinbase/auth")
	require.Equal(t, http.StatusFound, auth.Code)
	location, _ := url.Parse(auth.Header().Get("Location"))
	state := location.Query().Get("state")

	cookies := auth.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "wallet_dashboard_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.NotContains(t, cookies[0].Value, state)
}
