package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// BalanceProvider fetches normalized token balances from one upstream.
// Per-network failures are absorbed; an error means the input was unusable.
type BalanceProvider interface {
	Name() entity.Provider
	FetchBalances(ctx context.Context, address string, networks []string) ([]entity.Token, error)
}

// DefiProvider fetches pooled-asset positions.
type DefiProvider interface {
	FetchPositions(ctx context.Context, address string, networks []string) ([]entity.DefiPosition, error)
}

// TransactionProvider fetches recent native transactions, newest first.
type TransactionProvider interface {
	FetchTransactions(ctx context.Context, address string, networks []string, limit int) ([]entity.Transaction, error)
}

// FeeProvider analyzes the network fees a wallet paid.
type FeeProvider interface {
	AnalyzeFees(ctx context.Context, address string, networks []string) (entity.FeeData, error)
}

// NFTProvider looks up NFTs held by a wallet.
type NFTProvider interface {
	CountNFTs(ctx context.Context, address string, network string) (int64, error)
	ListNFTs(ctx context.Context, address string, network string, limit int, cursor string) (entity.NFTPage, error)
	GetNFT(ctx context.Context, contractAddress string, tokenID string, network string) (entity.NFT, error)
}

// HistoryProvider returns a daily portfolio value series, oldest first.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, address string, networks []string, days int) ([]entity.SeriesPoint, error)
}

// DashboardService aggregates every data source into one dashboard.
type DashboardService interface {
	GetDashboardData(ctx context.Context, address string, networks []string, provider entity.Provider) (*entity.DashboardResponse, error)
}
