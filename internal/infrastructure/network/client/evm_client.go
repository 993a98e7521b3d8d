package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"wallet_dashboard/internal/app/port"
	upstream "wallet_dashboard/internal/client"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/metrics"
	"wallet_dashboard/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type alchemyTokenBalance struct {
	ContractAddress string  `json:"contractAddress"`
	TokenBalance    *string `json:"tokenBalance"`
	Error           any     `json:"error"`
}

type alchemyTokenBalances struct {
	Address       string                `json:"address"`
	TokenBalances []alchemyTokenBalance `json:"tokenBalances"`
}

// AlchemyClient reads balances over Alchemy's JSON-RPC API: one batch per network
// for the native and ERC20 balances, then one metadata call per held token.
type AlchemyClient struct {
	clients         *rpcClientProvider
	registry        port.ChainRegistry
	prices          port.PriceService
	callTimeout     time.Duration
	metadataTimeout time.Duration
	norm            upstream.TokenNormalizer
	logger          *zap.Logger
}

// NewAlchemyClient creates an Alchemy adapter. keyFor returns the API key of a
// canonical network. prices may be nil.
func NewAlchemyClient(urlTemplate string, keyFor func(network string) string, registry port.ChainRegistry, prices port.PriceService, callTimeout, metadataTimeout time.Duration, logger *zap.Logger, portLogger port.Logger) *AlchemyClient {
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	if metadataTimeout <= 0 {
		metadataTimeout = 5 * time.Second
	}
	l := logger.Named("AlchemyClient")
	return &AlchemyClient{
		clients:         newRPCClientProvider(urlTemplate, keyFor, portLogger.With("provider", string(entity.ProviderAlchemy))),
		registry:        registry,
		prices:          prices,
		callTimeout:     callTimeout,
		metadataTimeout: metadataTimeout,
		norm:            upstream.NewTokenNormalizer(entity.ProviderAlchemy, l),
		logger:          l,
	}
}

// Name implements port.BalanceProvider.
func (c *AlchemyClient) Name() entity.Provider { return entity.ProviderAlchemy }

// Close releases the cached RPC clients.
func (c *AlchemyClient) Close() { c.clients.Close() }

// FetchBalances implements port.BalanceProvider.
func (c *AlchemyClient) FetchBalances(ctx context.Context, address string, networks []string) ([]entity.Token, error) {
	resolved := upstream.ResolveNetworks(c.registry, entity.ProviderAlchemy, networks, c.logger)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("alchemy balances: %w", entity.ErrNoSupportedNetworks)
	}

	results := make([][]entity.Token, len(resolved))
	var g errgroup.Group
	for i, rn := range resolved {
		g.Go(func() error {
			tokens, err := c.networkBalances(ctx, address, rn)
			if err != nil {
				c.logger.Warn("Failed to fetch balances", zap.String("network", rn.Def.Identifier), zap.Error(err))
				return nil
			}
			results[i] = tokens
			return nil
		})
	}
	_ = g.Wait()
	return upstream.Flatten(results), nil
}

func (c *AlchemyClient) networkBalances(ctx context.Context, address string, rn upstream.ResolvedNetwork) ([]entity.Token, error) {
	def := rn.Def
	rpcClient, err := c.clients.GetClient(ctx, def, rn.ID)
	if err != nil {
		return nil, err
	}

	wallet := common.HexToAddress(address)
	var native hexutil.Big
	var erc20 alchemyTokenBalances
	batch := []rpc.BatchElem{
		{Method: "eth_getBalance", Args: []any{wallet, "latest"}, Result: &native},
		{Method: "alchemy_getTokenBalances", Args: []any{wallet, "erc20"}, Result: &erc20},
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	started := time.Now()
	err = rpcClient.BatchCallContext(callCtx, batch)
	metrics.UpstreamLatency.WithLabelValues(string(entity.ProviderAlchemy)).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(string(entity.ProviderAlchemy), "transport_error").Inc()
		return nil, fmt.Errorf("RPC batch call failed: %w", err)
	}
	metrics.UpstreamRequests.WithLabelValues(string(entity.ProviderAlchemy), "ok").Inc()

	var tokens []entity.Token
	if batch[0].Error != nil {
		c.logger.Warn("eth_getBalance failed", zap.String("network", def.Identifier), zap.Error(batch[0].Error))
	} else if tok, ok := c.nativeToken(ctx, def, (*big.Int)(&native)); ok {
		tokens = append(tokens, tok)
	}

	if batch[1].Error != nil {
		c.logger.Warn("alchemy_getTokenBalances failed", zap.String("network", def.Identifier), zap.Error(batch[1].Error))
		return tokens, nil
	}
	return append(tokens, c.erc20Tokens(ctx, rpcClient, def, erc20.TokenBalances)...), nil
}

func (c *AlchemyClient) nativeToken(ctx context.Context, def entity.NetworkDefinition, balance *big.Int) (entity.Token, bool) {
	price := def.ApproxNativePriceUSD
	if c.prices != nil {
		price = c.prices.NativePriceUSD(ctx, def.Identifier)
	}
	return c.norm.Build(def, upstream.TokenFields{
		Name:        def.NativeName,
		Symbol:      def.NativeSymbol,
		Decimals:    int(def.Decimals),
		HasDecimals: true,
		RawBalance:  balance.String(),
		Price:       price,
		Native:      true,
	})
}

// erc20Tokens resolves metadata for every non-zero balance concurrently. A token
// whose metadata call fails is dropped.
func (c *AlchemyClient) erc20Tokens(ctx context.Context, rpcClient *rpc.Client, def entity.NetworkDefinition, balances []alchemyTokenBalance) []entity.Token {
	var held []alchemyTokenBalance
	for _, b := range balances {
		if b.Error != nil || b.TokenBalance == nil {
			continue
		}
		raw, err := utils.ParseRawAmount(*b.TokenBalance)
		if err != nil || raw.Sign() <= 0 {
			continue
		}
		held = append(held, b)
	}
	if len(held) == 0 {
		return nil
	}

	fields := make([]*upstream.TokenFields, len(held))
	var g errgroup.Group
	for i, b := range held {
		g.Go(func() error {
			f, err := c.metadata(ctx, rpcClient, def, b)
			if err != nil {
				c.logger.Warn("Dropping token after metadata failure",
					zap.String("network", def.Identifier),
					zap.String("contract", b.ContractAddress),
					zap.Error(err))
				return nil
			}
			fields[i] = f
			return nil
		})
	}
	_ = g.Wait()

	addresses := make([]string, 0, len(held))
	for _, f := range fields {
		if f != nil {
			addresses = append(addresses, f.Address)
		}
	}
	var prices map[string]float64
	if c.prices != nil && len(addresses) > 0 {
		prices = c.prices.TokenPricesUSD(ctx, def.Identifier, addresses)
	}

	tokens := make([]entity.Token, 0, len(addresses))
	for _, f := range fields {
		if f == nil {
			continue
		}
		f.Price = prices[f.Address]
		if tok, ok := c.norm.Build(def, *f); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func (c *AlchemyClient) metadata(ctx context.Context, rpcClient *rpc.Client, def entity.NetworkDefinition, b alchemyTokenBalance) (*upstream.TokenFields, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.metadataTimeout)
	defer cancel()

	var raw json.RawMessage
	if err := rpcClient.CallContext(callCtx, &raw, "alchemy_getTokenMetadata", b.ContractAddress); err != nil {
		return nil, err
	}
	row := gjson.ParseBytes(raw)
	if !row.IsObject() {
		return nil, fmt.Errorf("empty token metadata")
	}
	c.norm.Record(def.Identifier, upstream.MissingFields(row, "name", "symbol", "decimals"), row)

	decimals, hasDecimals := upstream.DecimalsOf(row.Get("decimals"))
	return &upstream.TokenFields{
		Name:        row.Get("name").String(),
		Symbol:      row.Get("symbol").String(),
		Address:     strings.ToLower(b.ContractAddress),
		Decimals:    decimals,
		HasDecimals: hasDecimals,
		RawBalance:  *b.TokenBalance,
		Icon:        row.Get("logo").String(),
	}, nil
}

var _ port.BalanceProvider = (*AlchemyClient)(nil)
