package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"wallet_dashboard/internal/app/analytics"
	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/httpclient"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const balancerPoolSharesQuery = `query GetBalancerBalances($address: String!) {
  poolShares(where: { userAddress: $address }) {
    balance
    poolId {
      id
      totalShares
      tokens { address symbol name decimals balance }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// TheGraphClient reads Balancer pool shares from per-network subgraphs and
// reports the user's part of every pooled token.
type TheGraphClient struct {
	transport *httpclient.Transport
	endpoints map[string]string
	apiKey    string
	protocol  string
	registry  port.ChainRegistry
	prices    port.PriceService
	norm      TokenNormalizer
	logger    *zap.Logger
}

// NewTheGraphClient creates a The Graph adapter. endpoints maps canonical networks to
// subgraph URLs. prices may be nil.
func NewTheGraphClient(transport *httpclient.Transport, endpoints map[string]string, apiKey, protocol string, registry port.ChainRegistry, prices port.PriceService, logger *zap.Logger) *TheGraphClient {
	l := logger.Named("TheGraphClient")
	eps := make(map[string]string, len(endpoints))
	for n, u := range endpoints {
		eps[strings.ToLower(n)] = u
	}
	if protocol == "" {
		protocol = "Balancer"
	}
	return &TheGraphClient{
		transport: transport,
		endpoints: eps,
		apiKey:    apiKey,
		protocol:  protocol,
		registry:  registry,
		prices:    prices,
		norm:      NewTokenNormalizer(entity.ProviderTheGraph, l),
		logger:    l,
	}
}

// Name implements port.BalanceProvider.
func (c *TheGraphClient) Name() entity.Provider { return entity.ProviderTheGraph }

// FetchBalances implements port.BalanceProvider.
func (c *TheGraphClient) FetchBalances(ctx context.Context, address string, networks []string) ([]entity.Token, error) {
	tokens, err := c.poolTokens(ctx, address, networks)
	if err != nil {
		return nil, err
	}
	analytics.SortByValue(tokens)
	return tokens, nil
}

// FetchPositions implements port.DefiProvider.
func (c *TheGraphClient) FetchPositions(ctx context.Context, address string, networks []string) ([]entity.DefiPosition, error) {
	tokens, err := c.poolTokens(ctx, address, networks)
	if err != nil {
		return nil, err
	}
	positions := make([]entity.DefiPosition, 0, len(tokens))
	for _, t := range tokens {
		positions = append(positions, entity.DefiPosition{
			Protocol: t.Protocol,
			PoolID:   t.PoolID,
			Name:     t.Name,
			Symbol:   t.Symbol,
			Address:  t.Address,
			Network:  t.Network,
			Balance:  t.Balance,
			Value:    t.Value,
		})
	}
	return positions, nil
}

func (c *TheGraphClient) poolTokens(ctx context.Context, address string, networks []string) ([]entity.Token, error) {
	var resolved []ResolvedNetwork
	for _, rn := range ResolveNetworks(c.registry, entity.ProviderTheGraph, networks, c.logger) {
		if _, ok := c.endpoints[rn.Def.Identifier]; ok {
			resolved = append(resolved, rn)
		}
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("thegraph: %w", entity.ErrNoSupportedNetworks)
	}

	results := make([][]entity.Token, len(resolved))
	var g errgroup.Group
	for i, rn := range resolved {
		g.Go(func() error {
			tokens, err := c.networkPoolTokens(ctx, address, rn)
			if err != nil {
				c.logger.Warn("Failed to fetch pool shares", zap.String("network", rn.Def.Identifier), zap.Error(err))
				return nil
			}
			results[i] = tokens
			return nil
		})
	}
	_ = g.Wait()
	return Flatten(results), nil
}

func (c *TheGraphClient) networkPoolTokens(ctx context.Context, address string, rn ResolvedNetwork) ([]entity.Token, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	body, err := c.transport.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.endpoints[rn.Def.Identifier],
		Headers: headers,
		Body: graphQLRequest{
			Query:     balancerPoolSharesQuery,
			Variables: map[string]any{"address": strings.ToLower(address)},
		},
		Operation: "pool shares",
	})
	if err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(body)
	if errs := doc.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		return nil, fmt.Errorf("thegraph pool shares: %s", errs.Get("0.message").String())
	}

	var rows []TokenFields
	var addresses []string
	doc.Get("data.poolShares").ForEach(func(_, share gjson.Result) bool {
		pool := share.Get("poolId")
		if !pool.Exists() || !pool.Get("tokens").IsArray() {
			return true
		}
		ratio, ok := shareRatio(share.Get("balance").String(), pool.Get("totalShares").String())
		if !ok {
			return true
		}
		poolID := pool.Get("id").String()
		pool.Get("tokens").ForEach(func(_, tok gjson.Result) bool {
			c.norm.Record(rn.Def.Identifier, MissingFields(tok, "name", "symbol", "decimals", "balance"), tok)
			reserve, err := decimal.NewFromString(tok.Get("balance").String())
			if err != nil {
				return true
			}
			userBalance := reserve.Mul(ratio)
			decimals, hasDecimals := DecimalsOf(tok.Get("decimals"))
			addr := strings.ToLower(tok.Get("address").String())
			rows = append(rows, TokenFields{
				Name:        tok.Get("name").String(),
				Symbol:      tok.Get("symbol").String(),
				Address:     addr,
				Decimals:    decimals,
				HasDecimals: hasDecimals,
				Balance:     &userBalance,
				Protocol:    c.protocol,
				PoolID:      poolID,
			})
			if addr != "" {
				addresses = append(addresses, addr)
			}
			return true
		})
		return true
	})

	var prices map[string]float64
	if c.prices != nil && len(addresses) > 0 {
		prices = c.prices.TokenPricesUSD(ctx, rn.Def.Identifier, addresses)
	}

	tokens := make([]entity.Token, 0, len(rows))
	for _, f := range rows {
		f.Price = prices[f.Address]
		if tok, ok := c.norm.Build(rn.Def, f); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

// shareRatio returns balance ÷ totalShares. Pool shares are already in human units.
func shareRatio(balance, totalShares string) (decimal.Decimal, bool) {
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return decimal.Zero, false
	}
	total, err := decimal.NewFromString(totalShares)
	if err != nil || total.Sign() <= 0 {
		return decimal.Zero, false
	}
	return b.DivRound(total, 36), true
}

var (
	_ port.BalanceProvider = (*TheGraphClient)(nil)
	_ port.DefiProvider    = (*TheGraphClient)(nil)
)
