package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"testing"
	"time"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardWallet = "0x000000000000000000000000000000000000dEaD"

type stubBalances struct {
	name   entity.Provider
	tokens []entity.Token
	err    error
	gotCtx context.Context
}

func (s *stubBalances) Name() entity.Provider { return s.name }

func (s *stubBalances) FetchBalances(ctx context.Context, _ string, _ []string) ([]entity.Token, error) {
	s.gotCtx = ctx
	return s.tokens, s.err
}

type stubDefi struct {
	positions []entity.DefiPosition
	err       error
}

func (s stubDefi) FetchPositions(context.Context, string, []string) ([]entity.DefiPosition, error) {
	return s.positions, s.err
}

type stubTransactions struct {
	txs      []entity.Transaction
	err      error
	gotLimit int
}

func (s *stubTransactions) FetchTransactions(_ context.Context, _ string, _ []string, limit int) ([]entity.Transaction, error) {
	s.gotLimit = limit
	return s.txs, s.err
}

type stubFees struct {
	data entity.FeeData
	err  error
}

func (s stubFees) AnalyzeFees(context.Context, string, []string) (entity.FeeData, error) {
	return s.data, s.err
}

type stubNFTs struct {
	counts map[string]int64
}

func (s stubNFTs) CountNFTs(_ context.Context, _ string, network string) (int64, error) {
	n, ok := s.counts[network]
	if !ok {
		return 0, errors.New("unsupported chain")
	}
	return n, nil
}

func (stubNFTs) ListNFTs(context.Context, string, string, int, string) (entity.NFTPage, error) {
	return entity.NFTPage{}, nil
}

func (stubNFTs) GetNFT(context.Context, string, string, string) (entity.NFT, error) {
	return entity.NFT{}, nil
}

type stubHistory struct {
	points []entity.SeriesPoint
	err    error
}

func (s stubHistory) FetchHistory(context.Context, string, []string, int) ([]entity.SeriesPoint, error) {
	return s.points, s.err
}

func newDashboard(sources DashboardSources, fallbackMode bool) *DashboardServiceImpl {
	reg := networkdefinition.NewNetworkDefinitionProvider(logger.NewNop())
	svc := NewDashboardService(sources, reg, logger.NewNop(), DashboardOptions{
		FallbackMode:     fallbackMode,
		TransactionLimit: 5,
		HistoryDays:      30,
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	svc.newRand = func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }
	return svc
}

func healthySources(moralis *stubBalances) DashboardSources {
	return DashboardSources{
		Balances: map[entity.Provider]port.BalanceProvider{
			entity.ProviderMoralis: moralis,
		},
		Defi:         stubDefi{positions: []entity.DefiPosition{{Protocol: "Balancer", Value: 40}}},
		Transactions: &stubTransactions{txs: []entity.Transaction{{Hash: "0x1"}}},
		Fees: stubFees{data: entity.FeeData{
			TotalFees:     10,
			FeesByNetwork: map[string]float64{"ethereum": 7.5, "polygon": 2.5},
			FeesByType:    map[entity.FeeCategory]float64{entity.FeeSwaps: 10},
			DailyFees:     []entity.SeriesPoint{{Date: "Mar 15", Value: 1}},
		}},
		NFTs:    stubNFTs{counts: map[string]int64{"ethereum": 3, "polygon": 2}},
		History: stubHistory{points: []entity.SeriesPoint{{Date: "Mar 14", Value: 90}, {Date: "Mar 15", Value: 100}}},
	}
}

func TestGetDashboardDataAggregates(t *testing.T) {
	moralis := &stubBalances{name: entity.ProviderMoralis, tokens: []entity.Token{
		{Symbol: "USDC", Value: 60},
		{Symbol: "ETH", Value: 100},
		{Symbol: "DAI", Value: 60},
	}}
	sources := healthySources(moralis)
	svc := newDashboard(sources, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := svc.GetDashboardData(ctx, "0x0000000000000000000000000000000000dEaD", []string{"ethereum", "polygon"}, "")
	require.NoError(t, err)

	assert.NoError(t, moralis.gotCtx.Err(), "upstream calls must not see client cancellation")
	assert.Equal(t, []string{"ETH", "USDC", "DAI"}, []string{resp.WalletBalances[0].Symbol, resp.WalletBalances[1].Symbol, resp.WalletBalances[2].Symbol})

	ov := resp.Overview
	assert.Equal(t, 220.0, ov.TotalBalance)
	assert.Equal(t, 40.0, ov.DefiPositions)
	assert.Equal(t, 180.0, ov.CryptoAssets)
	assert.Equal(t, 10.0, ov.TotalFeesPaid)
	assert.Equal(t, int64(5), ov.NFTCount)
	assert.Equal(t, entity.ProviderMoralis, ov.DataProvider)
	assert.Equal(t, entity.DailyChange{}, ov.DailyChange)

	assert.Equal(t, 5, sources.Transactions.(*stubTransactions).gotLimit)
	assert.Len(t, resp.Charts.PortfolioHistory, 2)
	assert.Equal(t, []entity.SeriesPoint{{Date: "Mar 15", Value: 1}}, resp.Charts.DailyFees)
	require.Len(t, resp.Charts.FeesByNetwork, 2)
	assert.Equal(t, entity.NetworkFeeShare{Network: "ethereum", Fee: 7.5, Percentage: 75}, resp.Charts.FeesByNetwork[0])
	assert.Len(t, resp.Charts.FeesByType, len(entity.FeeCategories))

	assert.Equal(t, []entity.NetworkInfo{
		{Name: "ethereum", ChainID: 1, Icon: networkdefinition.Ethereum.Icon, NativeToken: "ETH"},
		{Name: "polygon", ChainID: 137, Icon: networkdefinition.Polygon.Icon, NativeToken: "MATIC"},
	}, resp.Networks)
	assert.Empty(t, resp.Fallbacks)
}

func TestGetDashboardDataValidation(t *testing.T) {
	svc := newDashboard(healthySources(&stubBalances{name: entity.ProviderMoralis}), false)

	tests := []struct {
		name    string
		address string
		message string
	}{
		{"missing", "", "Wallet address is required"},
		{"blank", "   ", "Wallet address is required"},
		{"malformed", "not-an-address", "Invalid wallet address format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetDashboardData(context.Background(), tt.address, nil, entity.ProviderMoralis)
			var apiErr *entity.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, entity.KindValidation, apiErr.Kind)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestGetDashboardDataAnkrAcceptsNonEVMAddress(t *testing.T) {
	ankr := &stubBalances{name: entity.ProviderAnkr, tokens: []entity.Token{{Symbol: "SOL", Value: 5}}}
	sources := healthySources(&stubBalances{name: entity.ProviderMoralis})
	sources.Balances[entity.ProviderAnkr] = ankr
	svc := newDashboard(sources, false)

	resp, err := svc.GetDashboardData(context.Background(), "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", []string{"solana"}, "ANKR")
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderAnkr, resp.Overview.DataProvider)
	assert.Equal(t, 5.0, resp.Overview.TotalBalance)

	// EVM-only sources never see a non-EVM address.
	assert.Zero(t, sources.Transactions.(*stubTransactions).gotLimit)
	assert.ElementsMatch(t, []string{SourceDefi, SourceTransactions, SourceFees, SourceNFTCount, SourceHistory}, resp.Fallbacks)
	assert.Empty(t, resp.Transactions)
	assert.Empty(t, resp.DefiPositions)
	assert.Zero(t, resp.Overview.NFTCount)
	assert.Equal(t, entity.DefaultFeeData().TotalFees, resp.Overview.TotalFeesPaid)
	assert.Empty(t, resp.Charts.PortfolioHistory)
}

func TestGetDashboardDataAnkrValidatesHexAddress(t *testing.T) {
	sources := healthySources(&stubBalances{name: entity.ProviderMoralis})
	sources.Balances[entity.ProviderAnkr] = &stubBalances{name: entity.ProviderAnkr}
	svc := newDashboard(sources, false)

	_, err := svc.GetDashboardData(context.Background(), "0x../erc20", nil, entity.ProviderAnkr)
	var apiErr *entity.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	resp, err := svc.GetDashboardData(context.Background(), "0x0000000000000000000000000000000000dEaD", nil, entity.ProviderAnkr)
	require.NoError(t, err)
	assert.Equal(t, 5, sources.Transactions.(*stubTransactions).gotLimit)
	assert.NotContains(t, resp.Fallbacks, SourceTransactions)
}

func TestGetDashboardDataUnknownProviderUsesDefault(t *testing.T) {
	moralis := &stubBalances{name: entity.ProviderMoralis, tokens: []entity.Token{{Symbol: "ETH", Value: 1}}}
	svc := newDashboard(healthySources(moralis), false)

	resp, err := svc.GetDashboardData(context.Background(), dashboardWallet, nil, "etherscan")
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderMoralis, resp.Overview.DataProvider)
	assert.Len(t, resp.Networks, 5)
}

func TestGetDashboardDataDegradesEverySource(t *testing.T) {
	boom := errors.New("upstream down")
	sources := DashboardSources{
		Balances:     map[entity.Provider]port.BalanceProvider{entity.ProviderMoralis: &stubBalances{name: entity.ProviderMoralis, err: boom}},
		Defi:         stubDefi{err: boom},
		Transactions: &stubTransactions{err: boom},
		Fees:         stubFees{err: boom},
		NFTs:         stubNFTs{},
		History:      stubHistory{err: boom},
	}
	svc := newDashboard(sources, false)

	resp, err := svc.GetDashboardData(context.Background(), dashboardWallet, []string{"ethereum"}, entity.ProviderMoralis)
	require.NoError(t, err)

	assert.NotNil(t, resp.WalletBalances)
	assert.Empty(t, resp.WalletBalances)
	assert.Empty(t, resp.DefiPositions)
	assert.Empty(t, resp.Transactions)
	assert.Equal(t, entity.DefaultFeeData(), resp.FeeData)
	assert.Equal(t, 25.75, resp.Overview.TotalFeesPaid)
	assert.Zero(t, resp.Overview.NFTCount)
	assert.Empty(t, resp.Charts.PortfolioHistory)
	assert.NotNil(t, resp.Charts.DailyFees)
	assert.Empty(t, resp.Charts.DailyFees)
	assert.ElementsMatch(t, []string{
		SourceBalances, SourceDefi, SourceTransactions, SourceFees, SourceNFTCount, SourceHistory,
	}, resp.Fallbacks)
}

func TestGetDashboardDataFallbackModeSynthesizes(t *testing.T) {
	boom := errors.New("upstream down")
	sources := healthySources(&stubBalances{name: entity.ProviderMoralis})
	sources.Fees = stubFees{err: boom}
	sources.History = stubHistory{err: boom}
	svc := newDashboard(sources, true)

	resp, err := svc.GetDashboardData(context.Background(), dashboardWallet, []string{"ethereum"}, entity.ProviderMoralis)
	require.NoError(t, err)

	require.Len(t, resp.Charts.PortfolioHistory, 31)
	assert.Equal(t, "Mar 15", resp.Charts.PortfolioHistory[30].Date)
	for _, p := range resp.Charts.PortfolioHistory {
		assert.GreaterOrEqual(t, p.Value, 980.0)
		assert.LessOrEqual(t, p.Value, 1280.0)
	}
	require.Len(t, resp.Charts.DailyFees, 7)
	for _, p := range resp.Charts.DailyFees {
		assert.GreaterOrEqual(t, p.Value, 0.1)
		assert.LessOrEqual(t, p.Value, 0.5)
	}
	assert.NotEqual(t, entity.DailyChange{}, resp.Overview.DailyChange)
	assert.InDelta(t, 0, resp.Overview.DailyChange.TotalBalance, 5)
	assert.ElementsMatch(t, []string{SourceFees, SourceHistory, SourceDailyFees}, resp.Fallbacks)
}

func TestGetDashboardDataDefiWithoutSubgraphIsNotAFallback(t *testing.T) {
	sources := healthySources(&stubBalances{name: entity.ProviderMoralis})
	sources.Defi = stubDefi{err: entity.ErrNoSupportedNetworks}
	svc := newDashboard(sources, false)

	resp, err := svc.GetDashboardData(context.Background(), dashboardWallet, []string{"bsc"}, entity.ProviderMoralis)
	require.NoError(t, err)
	assert.Empty(t, resp.DefiPositions)
	assert.NotContains(t, resp.Fallbacks, SourceDefi)
}
