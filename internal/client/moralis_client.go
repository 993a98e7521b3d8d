package client

import (
	"context"
	"fmt"
	"net/http"
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

const moralisDailyFeeDays = 7

// MoralisClient is the Moralis Web3 Data API adapter. It serves balances,
// native transactions, fee analysis and NFTs.
type MoralisClient struct {
	transport *httpclient.Transport
	baseURL   string
	apiKey    string
	registry  port.ChainRegistry
	prices    port.PriceService
	feeLimit  int
	norm      TokenNormalizer
	logger    *zap.Logger
	now       func() time.Time
}

// NewMoralisClient creates a Moralis adapter. prices may be nil. feeLimit caps the
// transactions inspected per network during fee analysis.
func NewMoralisClient(transport *httpclient.Transport, baseURL, apiKey string, registry port.ChainRegistry, prices port.PriceService, feeLimit int, logger *zap.Logger) *MoralisClient {
	if feeLimit <= 0 {
		feeLimit = 20
	}
	l := logger.Named("MoralisClient")
	return &MoralisClient{
		transport: transport,
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		registry:  registry,
		prices:    prices,
		feeLimit:  feeLimit,
		norm:      NewTokenNormalizer(entity.ProviderMoralis, l),
		logger:    l,
		now:       time.Now,
	}
}

// Name implements port.BalanceProvider.
func (c *MoralisClient) Name() entity.Provider { return entity.ProviderMoralis }

func (c *MoralisClient) get(ctx context.Context, path string, query url.Values, operation string) ([]byte, error) {
	return c.transport.Do(ctx, httpclient.Request{
		URL:       c.baseURL + path,
		Query:     query,
		Headers:   map[string]string{"X-API-Key": c.apiKey},
		Operation: operation,
	})
}

// FetchBalances implements port.BalanceProvider.
func (c *MoralisClient) FetchBalances(ctx context.Context, address string, networks []string) ([]entity.Token, error) {
	address, err := evmAddress(entity.ProviderMoralis, address)
	if err != nil {
		return nil, err
	}
	resolved := ResolveNetworks(c.registry, entity.ProviderMoralis, networks, c.logger)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("moralis balances: %w", entity.ErrNoSupportedNetworks)
	}

	results := make([][]entity.Token, len(resolved))
	var g errgroup.Group
	for i, rn := range resolved {
		g.Go(func() error {
			results[i] = c.networkBalances(ctx, address, rn)
			return nil
		})
	}
	_ = g.Wait()

	return Flatten(results), nil
}

func (c *MoralisClient) networkBalances(ctx context.Context, address string, rn ResolvedNetwork) []entity.Token {
	var (
		erc20  []entity.Token
		native *entity.Token
	)
	var g errgroup.Group
	g.Go(func() error {
		tokens, err := c.erc20Balances(ctx, address, rn)
		if err != nil {
			c.logger.Warn("Failed to fetch ERC20 balances", zap.String("network", rn.Def.Identifier), zap.Error(err))
			return nil
		}
		erc20 = tokens
		return nil
	})
	g.Go(func() error {
		tok, err := c.nativeBalance(ctx, address, rn)
		if err != nil {
			c.logger.Warn("Failed to fetch native balance", zap.String("network", rn.Def.Identifier), zap.Error(err))
			return nil
		}
		native = tok
		return nil
	})
	_ = g.Wait()

	out := make([]entity.Token, 0, len(erc20)+1)
	if native != nil {
		out = append(out, *native)
	}
	return append(out, erc20...)
}

func (c *MoralisClient) erc20Balances(ctx context.Context, address string, rn ResolvedNetwork) ([]entity.Token, error) {
	body, err := c.get(ctx, "/"+url.PathEscape(address)+"/erc20", url.Values{"chain": {rn.ID}}, "erc20 balances")
	if err != nil {
		return nil, err
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("moralis erc20 balances: unexpected response shape")
	}

	type pending struct {
		fields  TokenFields
		priced  bool
		address string
	}
	var rows []pending
	var unpriced []string
	parsed.ForEach(func(_, row gjson.Result) bool {
		c.norm.Record(rn.Def.Identifier, MissingFields(row, "name", "symbol", "decimals", "balance"), row)
		decimals, hasDecimals := DecimalsOf(row.Get("decimals"))
		f := TokenFields{
			Name:        row.Get("name").String(),
			Symbol:      row.Get("symbol").String(),
			Address:     strings.ToLower(row.Get("token_address").String()),
			Decimals:    decimals,
			HasDecimals: hasDecimals,
			RawBalance:  row.Get("balance").String(),
			Icon:        row.Get("logo").String(),
		}
		price := row.Get("usd_price")
		p := pending{fields: f, address: f.Address}
		if price.Exists() && price.Type != gjson.Null {
			p.fields.Price = price.Float()
			p.priced = true
		} else if f.Address != "" {
			unpriced = append(unpriced, f.Address)
		}
		rows = append(rows, p)
		return true
	})

	var prices map[string]float64
	if len(unpriced) > 0 && c.prices != nil {
		prices = c.prices.TokenPricesUSD(ctx, rn.Def.Identifier, unpriced)
	}

	tokens := make([]entity.Token, 0, len(rows))
	for _, r := range rows {
		if !r.priced {
			r.fields.Price = prices[r.address]
		}
		if tok, ok := c.norm.Build(rn.Def, r.fields); ok {
			tokens = append(tokens, tok)
		}
	}
	c.logger.Debug("Fetched ERC20 balances", zap.String("network", rn.Def.Identifier), zap.Int("tokens", len(tokens)))
	return tokens, nil
}

func (c *MoralisClient) nativeBalance(ctx context.Context, address string, rn ResolvedNetwork) (*entity.Token, error) {
	body, err := c.get(ctx, "/"+url.PathEscape(address)+"/balance", url.Values{"chain": {rn.ID}}, "native balance")
	if err != nil {
		return nil, err
	}
	row := gjson.ParseBytes(body)
	raw := row.Get("balance")
	if !raw.Exists() || raw.String() == "" {
		c.norm.Record(rn.Def.Identifier, []string{"balance"}, row)
		return nil, nil
	}

	price, change := c.nativePrice(ctx, rn)
	tok, ok := c.norm.Build(rn.Def, TokenFields{
		Name:           rn.Def.NativeName,
		Symbol:         rn.Def.NativeSymbol,
		Decimals:       int(rn.Def.Decimals),
		HasDecimals:    true,
		RawBalance:     raw.String(),
		Price:          price,
		PriceChange24h: change,
		Native:         true,
	})
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

// nativePrice prices the wrapped native token on Moralis, falling back to the price service.
func (c *MoralisClient) nativePrice(ctx context.Context, rn ResolvedNetwork) (float64, float64) {
	if rn.Def.WrappedNativeTokenAddress != "" {
		body, err := c.get(ctx, "/erc20/"+rn.Def.WrappedNativeTokenAddress+"/price", url.Values{"chain": {rn.ID}}, "native price")
		if err == nil {
			row := gjson.ParseBytes(body)
			if p := row.Get("usdPrice").Float(); p > 0 {
				return p, row.Get("24hrPercentChange").Float()
			}
		} else {
			c.logger.Debug("Native price lookup failed, using fallback", zap.String("network", rn.Def.Identifier), zap.Error(err))
		}
	}
	if c.prices != nil {
		return c.prices.NativePriceUSD(ctx, rn.Def.Identifier), 0
	}
	return rn.Def.ApproxNativePriceUSD, 0
}

type moralisTransaction struct {
	Hash           string `json:"hash"`
	FromAddress    string `json:"from_address"`
	ToAddress      string `json:"to_address"`
	Value          string `json:"value"`
	Input          string `json:"input"`
	GasPrice       string `json:"gas_price"`
	ReceiptGasUsed string `json:"receipt_gas_used"`
	ReceiptStatus  string `json:"receipt_status"`
	BlockTimestamp string `json:"block_timestamp"`
}

type moralisTransactionPage struct {
	Result []moralisTransaction `json:"result"`
}

func (c *MoralisClient) transactions(ctx context.Context, address string, rn ResolvedNetwork, limit int) ([]moralisTransaction, error) {
	var page moralisTransactionPage
	body, err := c.get(ctx, "/"+url.PathEscape(address), url.Values{"chain": {rn.ID}, "limit": {strconv.Itoa(limit)}}, "transactions")
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode moralis transactions: %w", err)
	}
	return page.Result, nil
}

// FetchTransactions implements port.TransactionProvider.
func (c *MoralisClient) FetchTransactions(ctx context.Context, address string, networks []string, limit int) ([]entity.Transaction, error) {
	address, err := evmAddress(entity.ProviderMoralis, address)
	if err != nil {
		return nil, err
	}
	resolved := ResolveNetworks(c.registry, entity.ProviderMoralis, networks, c.logger)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("moralis transactions: %w", entity.ErrNoSupportedNetworks)
	}
	if limit <= 0 {
		limit = 10
	}

	results := make([][]entity.Transaction, len(resolved))
	var g errgroup.Group
	for i, rn := range resolved {
		g.Go(func() error {
			raw, err := c.transactions(ctx, address, rn, limit)
			if err != nil {
				c.logger.Warn("Failed to fetch transactions", zap.String("network", rn.Def.Identifier), zap.Error(err))
				return nil
			}
			txs := make([]entity.Transaction, 0, len(raw))
			for _, tx := range raw {
				txs = append(txs, toTransaction(address, rn.Def, tx))
			}
			results[i] = txs
			return nil
		})
	}
	_ = g.Wait()

	all := Flatten(results)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	return all, nil
}

func toTransaction(address string, def entity.NetworkDefinition, tx moralisTransaction) entity.Transaction {
	ts, _ := time.Parse(time.RFC3339, tx.BlockTimestamp)
	ts = ts.UTC()

	direction := entity.DirectionTransfer
	from, to := strings.ToLower(tx.FromAddress), strings.ToLower(tx.ToAddress)
	self := strings.ToLower(address)
	if from != "" && to != "" {
		switch {
		case to == self && from != self:
			direction = entity.DirectionReceive
		case from == self && to != self:
			direction = entity.DirectionSend
		}
	}

	status := "Completed"
	if tx.ReceiptStatus == "0" {
		status = "Failed"
	}

	value := tx.Value
	if value == "" {
		value = "0"
	}
	return entity.Transaction{
		Hash:      tx.Hash,
		Timestamp: ts,
		Date:      ts.Format(time.DateOnly),
		Time:      ts.Format("15:04"),
		Type:      direction,
		Amount:    utils.FormatUnits(value, int(def.Decimals)),
		Asset:     def.NativeSymbol,
		Network:   def.Name,
		Status:    status,
		TxType:    "native",
	}
}

// AnalyzeFees implements port.FeeProvider. Fees are gas_price × receipt_gas_used in
// native units, priced at the network's native USD price.
func (c *MoralisClient) AnalyzeFees(ctx context.Context, address string, networks []string) (entity.FeeData, error) {
	address, err := evmAddress(entity.ProviderMoralis, address)
	if err != nil {
		return entity.FeeData{}, err
	}
	resolved := ResolveNetworks(c.registry, entity.ProviderMoralis, networks, c.logger)
	if len(resolved) == 0 {
		return entity.FeeData{}, fmt.Errorf("moralis fees: %w", entity.ErrNoSupportedNetworks)
	}

	ids := make([]string, len(resolved))
	for i, rn := range resolved {
		ids[i] = rn.Def.Identifier
	}
	acc := analytics.NewFeeAccumulator(ids)

	var g errgroup.Group
	for _, rn := range resolved {
		g.Go(func() error {
			raw, err := c.transactions(ctx, address, rn, c.feeLimit)
			if err != nil {
				c.logger.Warn("Failed to analyze fees", zap.String("network", rn.Def.Identifier), zap.Error(err))
				return nil
			}
			nativePrice := decimal.NewFromFloat(c.nativeUSD(ctx, rn.Def))
			for _, tx := range raw {
				fee, ok := txFee(tx, int(rn.Def.Decimals))
				if !ok {
					continue
				}
				ts, _ := time.Parse(time.RFC3339, tx.BlockTimestamp)
				acc.Add(rn.Def.Identifier, analytics.CategorizeInput(tx.Input), fee.Mul(nativePrice), ts)
			}
			return nil
		})
	}
	_ = g.Wait()

	return acc.Result(c.now(), moralisDailyFeeDays), nil
}

func (c *MoralisClient) nativeUSD(ctx context.Context, def entity.NetworkDefinition) float64 {
	if c.prices != nil {
		return c.prices.NativePriceUSD(ctx, def.Identifier)
	}
	return def.ApproxNativePriceUSD
}

func txFee(tx moralisTransaction, decimals int) (decimal.Decimal, bool) {
	if tx.GasPrice == "" || tx.ReceiptGasUsed == "" {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(tx.GasPrice)
	if err != nil {
		return decimal.Zero, false
	}
	used, err := decimal.NewFromString(tx.ReceiptGasUsed)
	if err != nil {
		return decimal.Zero, false
	}
	return price.Mul(used).Shift(int32(-decimals)), true
}

// chainParam resolves a canonical network to Moralis' chain id; an unknown value
// is passed through so callers may use Moralis ids directly.
func (c *MoralisClient) chainParam(network string) string {
	if id, ok := c.registry.ResolveProviderChainID(network, entity.ProviderMoralis); ok {
		return id
	}
	return network
}

// CountNFTs implements port.NFTProvider.
func (c *MoralisClient) CountNFTs(ctx context.Context, address string, network string) (int64, error) {
	address, err := evmAddress(entity.ProviderMoralis, address)
	if err != nil {
		return 0, err
	}
	body, err := c.get(ctx, "/"+url.PathEscape(address)+"/nft", url.Values{
		"chain":  {c.chainParam(network)},
		"limit":  {"1"},
		"format": {"decimal"},
	}, "nft count")
	if err != nil {
		return 0, err
	}
	return gjson.GetBytes(body, "total").Int(), nil
}

// ListNFTs implements port.NFTProvider.
func (c *MoralisClient) ListNFTs(ctx context.Context, address string, network string, limit int, cursor string) (entity.NFTPage, error) {
	address, err := evmAddress(entity.ProviderMoralis, address)
	if err != nil {
		return entity.NFTPage{}, err
	}
	if limit <= 0 {
		limit = 20
	}
	chain := c.chainParam(network)
	query := url.Values{
		"chain":             {chain},
		"format":            {"decimal"},
		"limit":             {strconv.Itoa(limit)},
		"normalizeMetadata": {"true"},
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	body, err := c.get(ctx, "/"+url.PathEscape(address)+"/nft", query, "nft list")
	if err != nil {
		return entity.NFTPage{}, err
	}

	doc := gjson.ParseBytes(body)
	page := entity.NFTPage{
		Total:    doc.Get("total").Int(),
		Page:     doc.Get("page").Int(),
		PageSize: doc.Get("page_size").Int(),
		Cursor:   doc.Get("cursor").String(),
		NFTs:     []entity.NFT{},
	}
	doc.Get("result").ForEach(func(_, row gjson.Result) bool {
		page.NFTs = append(page.NFTs, toNFT(row, chain))
		return true
	})
	return page, nil
}

// GetNFT implements port.NFTProvider against the v2.2 NFT endpoint.
func (c *MoralisClient) GetNFT(ctx context.Context, contractAddress string, tokenID string, network string) (entity.NFT, error) {
	contractAddress, err := evmAddress(entity.ProviderMoralis, contractAddress)
	if err != nil {
		return entity.NFT{}, err
	}
	chain := c.chainParam(network)
	body, err := c.transport.Do(ctx, httpclient.Request{
		URL:       c.v22BaseURL() + "/nft/" + url.PathEscape(contractAddress) + "/" + url.PathEscape(tokenID),
		Query:     url.Values{"chain": {chain}, "format": {"decimal"}, "normalizeMetadata": {"true"}},
		Headers:   map[string]string{"X-API-Key": c.apiKey},
		Operation: "nft details",
	})
	if err != nil {
		return entity.NFT{}, err
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() || !doc.Get("token_id").Exists() {
		return entity.NFT{}, entity.NewAPIError("NFT not found", http.StatusNotFound, entity.KindUpstream, map[string]any{
			"contractAddress": contractAddress,
			"tokenId":         tokenID,
			"chain":           chain,
		})
	}
	return toNFT(doc, chain), nil
}

func (c *MoralisClient) v22BaseURL() string {
	return strings.TrimSuffix(c.baseURL, "/api/v2") + "/api/v2.2"
}

func toNFT(row gjson.Result, chain string) entity.NFT {
	tokenID := row.Get("token_id").String()
	name := row.Get("name").String()
	display := name
	if display == "" {
		display = "NFT #" + tokenID
	}
	return entity.NFT{
		TokenID:         tokenID,
		Name:            display,
		Symbol:          row.Get("symbol").String(),
		ContractAddress: row.Get("token_address").String(),
		ContractType:    row.Get("contract_type").String(),
		CollectionName:  name,
		Image:           row.Get("normalized_metadata.image").String(),
		Description:     row.Get("normalized_metadata.description").String(),
		Owner:           row.Get("owner_of").String(),
		Network:         chain,
	}
}

var (
	_ port.BalanceProvider     = (*MoralisClient)(nil)
	_ port.TransactionProvider = (*MoralisClient)(nil)
	_ port.FeeProvider         = (*MoralisClient)(nil)
	_ port.NFTProvider         = (*MoralisClient)(nil)
)
