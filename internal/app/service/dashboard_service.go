package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"wallet_dashboard/internal/app/analytics"
	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/metrics"
	"wallet_dashboard/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Dashboard data sources, as reported in DashboardResponse.Fallbacks.
const (
	SourceBalances     = "balances"
	SourceDefi         = "defiPositions"
	SourceTransactions = "transactions"
	SourceFees         = "fees"
	SourceNFTCount     = "nftCount"
	SourceHistory      = "portfolioHistory"
	SourceDailyFees    = "dailyFees"
)

const dailyFeeDays = 7

// DashboardOptions holds the orchestrator defaults.
type DashboardOptions struct {
	DefaultNetworks  []string
	DefaultProvider  entity.Provider
	FallbackMode     bool
	TransactionLimit int
	HistoryDays      int
}

// DashboardSources are the upstream capabilities the dashboard fans out to.
// A nil source degrades to its fallback on every request.
type DashboardSources struct {
	Balances     map[entity.Provider]port.BalanceProvider
	Defi         port.DefiProvider
	Transactions port.TransactionProvider
	Fees         port.FeeProvider
	NFTs         port.NFTProvider
	History      port.HistoryProvider
}

// DashboardServiceImpl implements port.DashboardService.
type DashboardServiceImpl struct {
	sources  DashboardSources
	registry port.ChainRegistry
	logger   port.Logger
	opts     DashboardOptions
	now      func() time.Time
	newRand  func() *rand.Rand
}

// NewDashboardService creates a new instance of DashboardServiceImpl.
func NewDashboardService(sources DashboardSources, registry port.ChainRegistry, l port.Logger, opts DashboardOptions) *DashboardServiceImpl {
	if len(opts.DefaultNetworks) == 0 {
		opts.DefaultNetworks = []string{"ethereum", "polygon", "bsc", "optimism", "arbitrum"}
	}
	if opts.DefaultProvider == "" {
		opts.DefaultProvider = entity.ProviderMoralis
	}
	if opts.TransactionLimit <= 0 {
		opts.TransactionLimit = 10
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 30
	}
	return &DashboardServiceImpl{
		sources:  sources,
		registry: registry,
		logger:   l,
		opts:     opts,
		now:      time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

var _ port.DashboardService = (*DashboardServiceImpl)(nil)

// fallbackSet collects the names of sources that degraded during one request.
type fallbackSet struct {
	mu    sync.Mutex
	names []string
}

func (f *fallbackSet) add(source string) {
	metrics.DashboardFallbacks.WithLabelValues(source).Inc()
	f.mu.Lock()
	f.names = append(f.names, source)
	f.mu.Unlock()
}

// ResolveProvider returns the balance provider for name, or the default one when
// name is empty or unknown.
func (s *DashboardServiceImpl) ResolveProvider(name entity.Provider) entity.Provider {
	p := entity.Provider(strings.ToLower(strings.TrimSpace(string(name))))
	if p == "" {
		return s.opts.DefaultProvider
	}
	if _, ok := s.sources.Balances[p]; !ok {
		s.logger.Warn("Unknown balance provider requested, using default", "provider", name, "default", s.opts.DefaultProvider)
		return s.opts.DefaultProvider
	}
	return p
}

// GetDashboardData implements port.DashboardService. Only a missing or malformed
// address fails the request; every upstream failure degrades to its fallback.
func (s *DashboardServiceImpl) GetDashboardData(ctx context.Context, address string, networks []string, provider entity.Provider) (*entity.DashboardResponse, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, entity.NewValidationError("Wallet address is required", map[string]any{"operation": "getDashboardData"})
	}
	provider = s.ResolveProvider(provider)
	// Ankr also serves non-EVM chains; anything 0x-prefixed must still be a valid EVM address.
	evm := provider != entity.ProviderAnkr || strings.HasPrefix(address, "0x")
	if evm {
		normalized, ok := utils.NormalizeEVMAddress(address)
		if !ok {
			return nil, entity.NewValidationError("Invalid wallet address format", map[string]any{
				"operation": "getDashboardData",
				"address":   address,
			})
		}
		address = normalized
	}
	if len(networks) == 0 {
		networks = s.opts.DefaultNetworks
	}

	// Upstream calls run to their own timeouts even if the client goes away.
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With("address", address, "provider", provider)
	log.Info("Building dashboard", "networks", networks)

	var (
		fallbacks    fallbackSet
		balances     []entity.Token
		positions    []entity.DefiPosition
		transactions []entity.Transaction
		feeData      entity.FeeData
		nftCount     int64
		history      []entity.SeriesPoint
	)

	var g errgroup.Group
	g.Go(func() error {
		balances = s.fetchBalances(ctx, log, address, networks, provider, &fallbacks)
		return nil
	})
	if evm {
		g.Go(func() error {
			positions = s.fetchPositions(ctx, log, address, networks, &fallbacks)
			return nil
		})
		g.Go(func() error {
			transactions = s.fetchTransactions(ctx, log, address, networks, &fallbacks)
			return nil
		})
		g.Go(func() error {
			feeData = s.fetchFees(ctx, log, address, networks, &fallbacks)
			return nil
		})
		g.Go(func() error {
			nftCount = s.countNFTs(ctx, log, address, networks, &fallbacks)
			return nil
		})
		g.Go(func() error {
			history = s.fetchHistory(ctx, log, address, networks, &fallbacks)
			return nil
		})
	} else {
		// The remaining sources only index EVM accounts.
		log.Info("Non-EVM address, skipping EVM-only sources")
		positions = []entity.DefiPosition{}
		transactions = []entity.Transaction{}
		feeData = entity.DefaultFeeData()
		for _, source := range []string{SourceDefi, SourceTransactions, SourceFees, SourceNFTCount} {
			fallbacks.add(source)
		}
		history = s.historyFallback(log, nil)
		fallbacks.add(SourceHistory)
	}
	_ = g.Wait()

	analytics.SortByValue(balances)

	rnd := s.newRand()
	now := s.now()

	dailyFees := feeData.DailyFees
	if len(dailyFees) == 0 {
		dailyFees = []entity.SeriesPoint{}
		if s.opts.FallbackMode {
			dailyFees = analytics.SyntheticDailyFees(now, dailyFeeDays, rnd)
			fallbacks.add(SourceDailyFees)
		}
	}

	totalBalance := analytics.TotalValue(balances)
	defiValue := analytics.TotalDefiValue(positions)
	overview := entity.Overview{
		TotalBalance:  totalBalance,
		DefiPositions: defiValue,
		CryptoAssets:  analytics.CryptoAssets(totalBalance, defiValue),
		TotalFeesPaid: feeData.TotalFees,
		NFTCount:      nftCount,
		DataProvider:  provider,
	}
	if s.opts.FallbackMode {
		overview.DailyChange = analytics.SyntheticDailyChange(rnd)
	}

	resp := &entity.DashboardResponse{
		Overview:       overview,
		WalletBalances: balances,
		DefiPositions:  positions,
		Transactions:   transactions,
		FeeData:        feeData,
		Charts: entity.Charts{
			PortfolioHistory: history,
			FeesByNetwork:    analytics.NetworkFeeShares(feeData),
			FeesByType:       analytics.TypeFeeShares(feeData),
			DailyFees:        dailyFees,
		},
		Networks:  s.networkInfo(networks),
		Fallbacks: fallbacks.names,
	}
	if resp.Fallbacks == nil {
		resp.Fallbacks = []string{}
	}

	log.Info("Dashboard built",
		"tokens", len(balances),
		"positions", len(positions),
		"transactions", len(transactions),
		"totalBalance", totalBalance,
		"fallbacks", resp.Fallbacks)
	return resp, nil
}

func (s *DashboardServiceImpl) fetchBalances(ctx context.Context, log port.Logger, address string, networks []string, provider entity.Provider, fb *fallbackSet) []entity.Token {
	bp, ok := s.sources.Balances[provider]
	if !ok {
		log.Warn("Balance provider not configured, continuing with empty wallet balances")
		fb.add(SourceBalances)
		return []entity.Token{}
	}
	tokens, err := bp.FetchBalances(ctx, address, networks)
	if err != nil {
		log.Warn("Continuing with empty wallet balances", "error", err)
		fb.add(SourceBalances)
		return []entity.Token{}
	}
	if tokens == nil {
		tokens = []entity.Token{}
	}
	return tokens
}

func (s *DashboardServiceImpl) fetchPositions(ctx context.Context, log port.Logger, address string, networks []string, fb *fallbackSet) []entity.DefiPosition {
	if s.sources.Defi == nil {
		fb.add(SourceDefi)
		return []entity.DefiPosition{}
	}
	positions, err := s.sources.Defi.FetchPositions(ctx, address, networks)
	if err != nil {
		// Networks without a subgraph are not a degradation.
		if !errors.Is(err, entity.ErrNoSupportedNetworks) {
			log.Warn("Continuing with empty DeFi positions", "error", err)
			fb.add(SourceDefi)
		}
		return []entity.DefiPosition{}
	}
	if positions == nil {
		positions = []entity.DefiPosition{}
	}
	return positions
}

func (s *DashboardServiceImpl) fetchTransactions(ctx context.Context, log port.Logger, address string, networks []string, fb *fallbackSet) []entity.Transaction {
	if s.sources.Transactions == nil {
		fb.add(SourceTransactions)
		return []entity.Transaction{}
	}
	txs, err := s.sources.Transactions.FetchTransactions(ctx, address, networks, s.opts.TransactionLimit)
	if err != nil {
		log.Warn("Continuing with empty transaction history", "error", err)
		fb.add(SourceTransactions)
		return []entity.Transaction{}
	}
	if txs == nil {
		txs = []entity.Transaction{}
	}
	return txs
}

func (s *DashboardServiceImpl) fetchFees(ctx context.Context, log port.Logger, address string, networks []string, fb *fallbackSet) entity.FeeData {
	if s.sources.Fees == nil {
		fb.add(SourceFees)
		return entity.DefaultFeeData()
	}
	fd, err := s.sources.Fees.AnalyzeFees(ctx, address, networks)
	if err != nil {
		log.Warn("Continuing with default fee data", "error", err)
		fb.add(SourceFees)
		return entity.DefaultFeeData()
	}
	return fd
}

// countNFTs sums the NFT count over every requested network. It degrades to zero
// only when no network could be counted.
func (s *DashboardServiceImpl) countNFTs(ctx context.Context, log port.Logger, address string, networks []string, fb *fallbackSet) int64 {
	if s.sources.NFTs == nil {
		fb.add(SourceNFTCount)
		return 0
	}
	counts := make([]int64, len(networks))
	failed := make([]bool, len(networks))

	var g errgroup.Group
	for i, network := range networks {
		g.Go(func() error {
			n, err := s.sources.NFTs.CountNFTs(ctx, address, network)
			if err != nil {
				log.Debug("Error getting NFT count", "network", network, "error", err)
				failed[i] = true
				return nil
			}
			counts[i] = n
			return nil
		})
	}
	_ = g.Wait()

	var total int64
	allFailed := len(networks) > 0
	for i := range networks {
		total += counts[i]
		allFailed = allFailed && failed[i]
	}
	if allFailed {
		log.Warn("Continuing with zero NFT count")
		fb.add(SourceNFTCount)
	}
	return total
}

func (s *DashboardServiceImpl) fetchHistory(ctx context.Context, log port.Logger, address string, networks []string, fb *fallbackSet) []entity.SeriesPoint {
	var (
		points []entity.SeriesPoint
		err    error
	)
	if s.sources.History != nil {
		points, err = s.sources.History.FetchHistory(ctx, address, networks, s.opts.HistoryDays)
		if err == nil && len(points) > 0 {
			return points
		}
	}
	fb.add(SourceHistory)
	return s.historyFallback(log, err)
}

func (s *DashboardServiceImpl) historyFallback(log port.Logger, err error) []entity.SeriesPoint {
	if !s.opts.FallbackMode {
		log.Warn("Portfolio history unavailable", "error", err)
		return []entity.SeriesPoint{}
	}
	log.Warn("Using synthetic portfolio history", "error", err)
	return analytics.SyntheticHistory(s.now(), s.opts.HistoryDays, s.newRand())
}

func (s *DashboardServiceImpl) networkInfo(networks []string) []entity.NetworkInfo {
	out := make([]entity.NetworkInfo, 0, len(networks))
	for _, n := range networks {
		def, ok := s.registry.Lookup(n)
		if !ok {
			out = append(out, entity.NetworkInfo{Name: n, NativeToken: "ETH"})
			continue
		}
		out = append(out, entity.NetworkInfo{
			Name:        def.Identifier,
			ChainID:     def.ChainID,
			Icon:        def.Icon,
			NativeToken: def.NativeSymbol,
		})
	}
	return out
}
