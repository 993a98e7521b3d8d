package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
	"wallet_dashboard/internal/infrastructure/httpclient"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// CoinbaseClient talks to Coinbase OAuth2 and the v2 wallet API.
type CoinbaseClient struct {
	transport  *httpclient.Transport
	cfg        configloader.CoinbaseConfig
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCoinbaseClient creates a Coinbase client. redirectURL is the OAuth callback
// registered with Coinbase.
func NewCoinbaseClient(transport *httpclient.Transport, cfg configloader.CoinbaseConfig, redirectURL string, logger *zap.Logger) *CoinbaseClient {
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return &CoinbaseClient{
		transport: transport,
		cfg:       cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: redirectURL,
			// Coinbase expects a comma separated scope list.
			Scopes: []string{strings.Join(cfg.Scopes, ",")},
		},
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond},
		logger:     logger.Named("CoinbaseClient"),
	}
}

// AuthorizeURL implements port.CoinbaseAPI.
func (c *CoinbaseClient) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

func (c *CoinbaseClient) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// ExchangeCode implements port.CoinbaseAPI.
func (c *CoinbaseClient) ExchangeCode(ctx context.Context, code string) (*entity.OAuthToken, error) {
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, c.tokenError("exchange code", err)
	}
	return toOAuthToken(tok), nil
}

// Refresh implements port.CoinbaseAPI. A response without a refresh token keeps
// the one passed in.
func (c *CoinbaseClient) Refresh(ctx context.Context, refreshToken string) (*entity.OAuthToken, error) {
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, c.tokenError("refresh token", err)
	}
	return toOAuthToken(tok), nil
}

func (c *CoinbaseClient) tokenError(operation string, err error) error {
	upstream := &entity.UpstreamError{Provider: entity.ProviderCoinbase, Operation: operation, Err: err}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		upstream.StatusCode = re.Response.StatusCode
		upstream.Body = string(re.Body)
	}
	c.logger.Warn("Coinbase token request failed", zap.String("operation", operation), zap.Error(err))
	return fmt.Errorf("coinbase %s: %w", operation, upstream)
}

func toOAuthToken(tok *oauth2.Token) *entity.OAuthToken {
	out := &entity.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}
	return out
}

func (c *CoinbaseClient) apiGet(ctx context.Context, accessToken, path string, query url.Values, operation string, out any) error {
	return c.transport.DoJSON(ctx, httpclient.Request{
		URL:   c.cfg.APIBaseURL + path,
		Query: query,
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
			"CB-VERSION":    c.cfg.APIVersion,
		},
		Operation: operation,
	}, out)
}

// Accounts implements port.CoinbaseAPI.
func (c *CoinbaseClient) Accounts(ctx context.Context, accessToken string) ([]entity.CoinbaseAccount, error) {
	var resp struct {
		Data []entity.CoinbaseAccount `json:"data"`
	}
	if err := c.apiGet(ctx, accessToken, "/v2/accounts", nil, "accounts", &resp); err != nil {
		return nil, fmt.Errorf("coinbase accounts: %w", err)
	}
	return resp.Data, nil
}

// Transactions implements port.CoinbaseAPI.
func (c *CoinbaseClient) Transactions(ctx context.Context, accessToken string, accountID string, limit int) ([]entity.CoinbaseTransaction, error) {
	var resp struct {
		Data []entity.CoinbaseTransaction `json:"data"`
	}
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if err := c.apiGet(ctx, accessToken, "/v2/accounts/"+url.PathEscape(accountID)+"/transactions", query, "transactions", &resp); err != nil {
		return nil, fmt.Errorf("coinbase transactions of %s: %w", accountID, err)
	}
	for i := range resp.Data {
		resp.Data[i].AccountID = accountID
	}
	return resp.Data, nil
}

var _ port.CoinbaseAPI = (*CoinbaseClient)(nil)
