package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

// CoinbaseServiceImpl implements port.CoinbaseService.
type CoinbaseServiceImpl struct {
	api              port.CoinbaseAPI
	logger           port.Logger
	transactionLimit int
	maxConcurrent    int
	now              func() time.Time
}

// NewCoinbaseService creates a new instance of CoinbaseServiceImpl.
func NewCoinbaseService(api port.CoinbaseAPI, l port.Logger, transactionLimit, maxConcurrent int) *CoinbaseServiceImpl {
	if transactionLimit <= 0 {
		transactionLimit = 25
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &CoinbaseServiceImpl{
		api:              api,
		logger:           l,
		transactionLimit: transactionLimit,
		maxConcurrent:    maxConcurrent,
		now:              time.Now,
	}
}

var _ port.CoinbaseService = (*CoinbaseServiceImpl)(nil)

// GetAccountData implements port.CoinbaseService. An expired token is refreshed and
// saved back to tokens before use.
func (s *CoinbaseServiceImpl) GetAccountData(ctx context.Context, tokens port.TokenSource) (*entity.CoinbaseData, error) {
	tok, err := s.validToken(ctx, tokens)
	if err != nil {
		return nil, err
	}

	accounts, err := s.api.Accounts(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list coinbase accounts: %w", err)
	}

	perAccount := make([][]entity.CoinbaseTransaction, len(accounts))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, acc := range accounts {
		g.Go(func() error {
			txs, err := s.api.Transactions(ctx, tok.AccessToken, acc.ID, s.transactionLimit)
			if err != nil {
				s.logger.Warn("Skipping transactions of coinbase account", "account", acc.ID, "currency", acc.Currency, "error", err)
				return nil
			}
			perAccount[i] = txs
			return nil
		})
	}
	_ = g.Wait()

	transactions := make([]entity.CoinbaseTransaction, 0)
	for _, txs := range perAccount {
		transactions = append(transactions, txs...)
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})

	if accounts == nil {
		accounts = []entity.CoinbaseAccount{}
	}
	s.logger.Debug("Coinbase account data loaded", "accounts", len(accounts), "transactions", len(transactions))
	return &entity.CoinbaseData{Accounts: accounts, Transactions: transactions}, nil
}

func (s *CoinbaseServiceImpl) validToken(ctx context.Context, tokens port.TokenSource) (*entity.OAuthToken, error) {
	tok, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, entity.ErrNotAuthenticated
	}
	if !tok.Expired(s.now()) {
		return tok, nil
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("coinbase token expired without refresh token: %w", entity.ErrNotAuthenticated)
	}

	s.logger.Info("Refreshing expired coinbase token")
	refreshed, err := s.api.Refresh(ctx, tok.RefreshToken)
	if err != nil {
		s.logger.Warn("Failed to refresh coinbase token", "error", err)
		return nil, fmt.Errorf("coinbase token refresh failed: %w", entity.ErrNotAuthenticated)
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = tok.RefreshToken
	}
	if err := tokens.Save(ctx, refreshed); err != nil {
		s.logger.Warn("Failed to store refreshed coinbase token", "error", err)
	}
	return refreshed, nil
}
