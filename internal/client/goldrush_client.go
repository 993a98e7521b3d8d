package client

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"wallet_dashboard/internal/app/analytics"
	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/httpclient"
	"wallet_dashboard/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GoldRushClient is the Covalent GoldRush adapter for balances and portfolio history.
type GoldRushClient struct {
	transport *httpclient.Transport
	baseURL   string
	apiKey    string
	registry  port.ChainRegistry
	norm      TokenNormalizer
	logger    *zap.Logger
}

// NewGoldRushClient creates a GoldRush adapter.
func NewGoldRushClient(transport *httpclient.Transport, baseURL, apiKey string, registry port.ChainRegistry, logger *zap.Logger) *GoldRushClient {
	l := logger.Named("GoldRushClient")
	return &GoldRushClient{
		transport: transport,
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		registry:  registry,
		norm:      NewTokenNormalizer(entity.ProviderGoldRush, l),
		logger:    l,
	}
}

// Name implements port.BalanceProvider.
func (c *GoldRushClient) Name() entity.Provider { return entity.ProviderGoldRush }

// items fetches one endpoint and returns data.items, treating an error flag or a
// missing items array as a failure.
func (c *GoldRushClient) items(ctx context.Context, path string, query url.Values, operation string) (gjson.Result, error) {
	query.Set("key", c.apiKey)
	body, err := c.transport.Do(ctx, httpclient.Request{URL: c.baseURL + path, Query: query, Operation: operation})
	if err != nil {
		return gjson.Result{}, err
	}
	doc := gjson.ParseBytes(body)
	if doc.Get("error").Bool() {
		return gjson.Result{}, fmt.Errorf("goldrush %s: %s", operation, doc.Get("error_message").String())
	}
	items := doc.Get("data.items")
	if !items.IsArray() {
		return gjson.Result{}, fmt.Errorf("goldrush %s: missing data.items", operation)
	}
	return items, nil
}

// FetchBalances implements port.BalanceProvider.
func (c *GoldRushClient) FetchBalances(ctx context.Context, address string, networks []string) ([]entity.Token, error) {
	address, err := evmAddress(entity.ProviderGoldRush, address)
	if err != nil {
		return nil, err
	}
	resolved := ResolveNetworks(c.registry, entity.ProviderGoldRush, networks, c.logger)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("goldrush balances: %w", entity.ErrNoSupportedNetworks)
	}

	results := make([][]entity.Token, len(resolved))
	var g errgroup.Group
	for i, rn := range resolved {
		g.Go(func() error {
			tokens, err := c.networkBalances(ctx, address, rn)
			if err != nil {
				c.logger.Warn("Failed to fetch balances", zap.String("chainId", rn.ID), zap.Error(err))
				return nil
			}
			results[i] = tokens
			return nil
		})
	}
	_ = g.Wait()

	all := Flatten(results)
	analytics.SortByValue(all)
	return all, nil
}

func (c *GoldRushClient) networkBalances(ctx context.Context, address string, rn ResolvedNetwork) ([]entity.Token, error) {
	items, err := c.items(ctx, "/"+rn.ID+"/address/"+url.PathEscape(address)+"/balances_v2/", url.Values{
		"nft":          {"false"},
		"no-nft-fetch": {"true"},
	}, "balances")
	if err != nil {
		return nil, err
	}

	var tokens []entity.Token
	items.ForEach(func(_, row gjson.Result) bool {
		c.norm.Record(rn.Def.Identifier, MissingFields(row,
			"contract_name", "contract_ticker_symbol", "contract_address", "contract_decimals", "balance", "quote"), row)

		decimals, hasDecimals := DecimalsOf(row.Get("contract_decimals"))
		price := row.Get("quote_rate").Float()
		quote := row.Get("quote")
		f := TokenFields{
			Name:           row.Get("contract_name").String(),
			Symbol:         row.Get("contract_ticker_symbol").String(),
			Address:        row.Get("contract_address").String(),
			Decimals:       decimals,
			HasDecimals:    hasDecimals,
			RawBalance:     row.Get("balance").String(),
			Price:          price,
			Value:          quote.Float(),
			HasValue:       quote.Exists() && quote.Type != gjson.Null,
			PriceChange24h: percentChange(row.Get("quote_rate_24h").Float(), price),
			Native:         row.Get("native_token").Bool(),
			Icon:           row.Get("logo_url").String(),
		}
		if tok, ok := c.norm.Build(rn.Def, f); ok {
			tokens = append(tokens, tok)
		}
		return true
	})
	return tokens, nil
}

// percentChange is the change from then to now in percent, zero when then is unknown.
func percentChange(then, now float64) float64 {
	if then == 0 || now == 0 {
		return 0
	}
	return utils.Round2((now - then) / then * 100)
}

// FetchHistory implements port.HistoryProvider. Daily closing quotes of every
// holding are summed across networks.
func (c *GoldRushClient) FetchHistory(ctx context.Context, address string, networks []string, days int) ([]entity.SeriesPoint, error) {
	address, err := evmAddress(entity.ProviderGoldRush, address)
	if err != nil {
		return nil, err
	}
	resolved := ResolveNetworks(c.registry, entity.ProviderGoldRush, networks, c.logger)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("goldrush history: %w", entity.ErrNoSupportedNetworks)
	}
	if days <= 0 {
		days = 30
	}

	results := make([]map[time.Time]decimal.Decimal, len(resolved))
	errs := make([]error, len(resolved))
	var g errgroup.Group
	for i, rn := range resolved {
		g.Go(func() error {
			results[i], errs[i] = c.networkHistory(ctx, address, rn, days)
			if errs[i] != nil {
				c.logger.Warn("Failed to fetch portfolio history", zap.String("chainId", rn.ID), zap.Error(errs[i]))
			}
			return nil
		})
	}
	_ = g.Wait()

	totals := make(map[time.Time]decimal.Decimal)
	failed := 0
	for i, daily := range results {
		if errs[i] != nil {
			failed++
			continue
		}
		for day, v := range daily {
			totals[day] = totals[day].Add(v)
		}
	}
	if failed == len(resolved) {
		return nil, fmt.Errorf("goldrush history: all %d networks failed: %w", failed, errs[0])
	}

	dayKeys := make([]time.Time, 0, len(totals))
	for day := range totals {
		dayKeys = append(dayKeys, day)
	}
	sort.Slice(dayKeys, func(i, j int) bool { return dayKeys[i].Before(dayKeys[j]) })

	series := make([]entity.SeriesPoint, 0, len(dayKeys))
	for _, day := range dayKeys {
		series = append(series, entity.SeriesPoint{Date: analytics.ChartDate(day), Value: totals[day].Round(2).InexactFloat64()})
	}
	return series, nil
}

func (c *GoldRushClient) networkHistory(ctx context.Context, address string, rn ResolvedNetwork, days int) (map[time.Time]decimal.Decimal, error) {
	items, err := c.items(ctx, "/"+rn.ID+"/address/"+url.PathEscape(address)+"/portfolio_v2/", url.Values{"days": {strconv.Itoa(days)}}, "portfolio history")
	if err != nil {
		return nil, err
	}
	daily := make(map[time.Time]decimal.Decimal)
	items.ForEach(func(_, item gjson.Result) bool {
		item.Get("holdings").ForEach(func(_, h gjson.Result) bool {
			ts, err := time.Parse(time.RFC3339, h.Get("timestamp").String())
			if err != nil {
				return true
			}
			day := ts.UTC().Truncate(24 * time.Hour)
			daily[day] = daily[day].Add(decimal.NewFromFloat(h.Get("close.quote").Float()))
			return true
		})
		return true
	})
	return daily, nil
}

var (
	_ port.BalanceProvider = (*GoldRushClient)(nil)
	_ port.HistoryProvider = (*GoldRushClient)(nil)
)
