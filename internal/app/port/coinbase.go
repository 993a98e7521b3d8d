package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// TokenSource supplies and persists the caller's Coinbase OAuth token.
// Token returns entity.ErrNotAuthenticated when no token is held.
type TokenSource interface {
	Token(ctx context.Context) (*entity.OAuthToken, error)
	Save(ctx context.Context, token *entity.OAuthToken) error
}

// CoinbaseAPI is the Coinbase OAuth and wallet API.
type CoinbaseAPI interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*entity.OAuthToken, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.OAuthToken, error)
	Accounts(ctx context.Context, accessToken string) ([]entity.CoinbaseAccount, error)
	Transactions(ctx context.Context, accessToken string, accountID string, limit int) ([]entity.CoinbaseTransaction, error)
}

// CoinbaseService returns a caller's Coinbase accounts and recent transactions.
type CoinbaseService interface {
	GetAccountData(ctx context.Context, tokens TokenSource) (*entity.CoinbaseData, error)
}
