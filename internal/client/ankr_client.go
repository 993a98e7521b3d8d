package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/httpclient"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ankrRequest is the JSON-RPC envelope of the Ankr Advanced API.
type ankrRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  ankrBalanceParams `json:"params"`
	ID      uint64            `json:"id"`
}

type ankrBalanceParams struct {
	Blockchain      []string `json:"blockchain"`
	WalletAddress   string   `json:"walletAddress"`
	OnlyWhitelisted bool     `json:"onlyWhitelisted"`
	NativeFirst     bool     `json:"nativeFirst"`
}

// AnkrClient is the Ankr multichain adapter. One batch request covers every
// requested network, including non-EVM chains.
type AnkrClient struct {
	transport *httpclient.Transport
	endpoint  string
	apiKey    string
	registry  port.ChainRegistry
	norm      TokenNormalizer
	logger    *zap.Logger
	nextID    atomic.Uint64
}

// NewAnkrClient creates an Ankr adapter.
func NewAnkrClient(transport *httpclient.Transport, endpoint, apiKey string, registry port.ChainRegistry, logger *zap.Logger) *AnkrClient {
	l := logger.Named("AnkrClient")
	return &AnkrClient{
		transport: transport,
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		registry:  registry,
		norm:      NewTokenNormalizer(entity.ProviderAnkr, l),
		logger:    l,
	}
}

// Name implements port.BalanceProvider.
func (c *AnkrClient) Name() entity.Provider { return entity.ProviderAnkr }

// SupportedNetworks lists the canonical networks Ankr serves.
func (c *AnkrClient) SupportedNetworks() []string {
	return c.registry.Supported(entity.ProviderAnkr)
}

// FetchBalances implements port.BalanceProvider. A failed batch yields no tokens and no error.
func (c *AnkrClient) FetchBalances(ctx context.Context, address string, networks []string) ([]entity.Token, error) {
	resolved := ResolveNetworks(c.registry, entity.ProviderAnkr, networks, c.logger)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("ankr balances: %w", entity.ErrNoSupportedNetworks)
	}
	blockchains := make([]string, len(resolved))
	for i, rn := range resolved {
		blockchains[i] = rn.ID
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	body, err := c.transport.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.endpoint,
		Headers: headers,
		Body: ankrRequest{
			JSONRPC: "2.0",
			Method:  "ankr_getAccountBalance",
			Params: ankrBalanceParams{
				Blockchain:    blockchains,
				WalletAddress: address,
				NativeFirst:   true,
			},
			ID: c.nextID.Add(1),
		},
		Operation: "account balance",
	})
	if err != nil {
		c.logger.Error("Ankr batch request failed", zap.Strings("blockchains", blockchains), zap.Error(err))
		return []entity.Token{}, nil
	}

	doc := gjson.ParseBytes(body)
	if rpcErr := doc.Get("error"); rpcErr.Exists() && rpcErr.Type != gjson.Null {
		c.logger.Error("Ankr returned a JSON-RPC error", zap.String("error", rpcErr.Raw))
		return []entity.Token{}, nil
	}
	assets := doc.Get("result.assets")
	if !assets.IsArray() {
		c.logger.Error("Ankr response is missing result.assets", zap.ByteString("body", body))
		return []entity.Token{}, nil
	}

	tokens := make([]entity.Token, 0, len(assets.Array()))
	assets.ForEach(func(_, row gjson.Result) bool {
		chain := row.Get("blockchain").String()
		def, ok := c.registry.FromProviderID(entity.ProviderAnkr, chain)
		if !ok {
			def = unknownNetwork(chain)
		}
		c.norm.Record(def.Identifier, MissingFields(row, "blockchain", "tokenName", "tokenSymbol", "tokenDecimals", "balance"), row)

		balance, err := decimal.NewFromString(row.Get("balance").String())
		if err != nil {
			balance = decimal.Zero
		}
		decimals, hasDecimals := DecimalsOf(row.Get("tokenDecimals"))
		usd := row.Get("balanceUsd")
		f := TokenFields{
			Name:        row.Get("tokenName").String(),
			Symbol:      row.Get("tokenSymbol").String(),
			Address:     firstNonEmpty(row.Get("contractAddress").String(), row.Get("tokenAddress").String()),
			Decimals:    decimals,
			HasDecimals: hasDecimals,
			Balance:     &balance,
			Price:       row.Get("tokenPrice").Float(),
			Value:       usd.Float(),
			HasValue:    usd.Exists() && usd.Type != gjson.Null,
			Native:      strings.EqualFold(row.Get("tokenType").String(), "NATIVE"),
			Icon:        row.Get("thumbnail").String(),
		}
		if tok, ok := c.norm.Build(def, f); ok {
			tokens = append(tokens, tok)
		}
		return true
	})
	return tokens, nil
}

var _ port.BalanceProvider = (*AnkrClient)(nil)
