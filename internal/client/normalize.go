package client

import (
	"strings"

	"wallet_dashboard/internal/domain/entity"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/pkg/metrics"
	"wallet_dashboard/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// TokenFields is the provider-neutral view of one upstream token row before
// defaults are applied.
type TokenFields struct {
	Name           string
	Symbol         string
	Address        string
	Decimals       int
	HasDecimals    bool
	RawBalance     string           // base units, decimal or 0x-hex
	Balance        *decimal.Decimal // human units, takes precedence over RawBalance
	Price          float64
	Value          float64
	HasValue       bool
	PriceChange24h float64
	Native         bool
	Icon           string
	Protocol       string
	PoolID         string
}

// TokenNormalizer is the shared validate-and-default step every adapter runs its rows through.
type TokenNormalizer struct {
	provider entity.Provider
	logger   *zap.Logger
}

// NewTokenNormalizer creates a normalizer reporting under provider.
func NewTokenNormalizer(provider entity.Provider, logger *zap.Logger) TokenNormalizer {
	return TokenNormalizer{provider: provider, logger: logger}
}

// MissingFields lists the paths of row that are absent, null or empty strings.
func MissingFields(row gjson.Result, paths ...string) []string {
	var missing []string
	for _, p := range paths {
		v := row.Get(p)
		if !v.Exists() || v.Type == gjson.Null || (v.Type == gjson.String && v.Str == "") {
			missing = append(missing, p)
		}
	}
	return missing
}

// Record reports substituted fields without failing the row.
func (n TokenNormalizer) Record(network string, missing []string, row gjson.Result) {
	if len(missing) == 0 {
		return
	}
	for _, field := range missing {
		metrics.MissingFields.WithLabelValues(string(n.provider), field).Inc()
	}
	n.logger.Warn("Missing fields in upstream token data",
		zap.String("network", network),
		zap.Strings("fields", missing),
		zap.String("raw", row.Raw),
	)
}

// Build applies defaults and balance scaling. ok is false when the token must be
// dropped: unparsable or non-positive balance.
func (n TokenNormalizer) Build(def entity.NetworkDefinition, f TokenFields) (entity.Token, bool) {
	if strings.TrimSpace(f.Name) == "" {
		f.Name = entity.DefaultTokenName
	}
	if strings.TrimSpace(f.Symbol) == "" {
		f.Symbol = entity.DefaultTokenSymbol
	}
	if !f.HasDecimals || f.Decimals < 0 {
		f.Decimals = entity.DefaultTokenDecimals
	}

	var balance decimal.Decimal
	if f.Balance != nil {
		balance = *f.Balance
	} else {
		raw, err := utils.ParseRawAmount(f.RawBalance)
		if err != nil {
			n.logger.Debug("Dropping token with unparsable balance",
				zap.String("network", def.Identifier),
				zap.String("symbol", f.Symbol),
				zap.String("balance", f.RawBalance),
				zap.Error(err))
			return entity.Token{}, false
		}
		balance = utils.ScaleUnits(raw, f.Decimals)
	}
	if balance.Sign() <= 0 {
		return entity.Token{}, false
	}

	value := f.Value
	if !f.HasValue {
		value = balance.Mul(decimal.NewFromFloat(f.Price)).InexactFloat64()
	}

	tokenType := entity.TokenTypeCryptocurrency
	address := f.Address
	if f.Native {
		tokenType = entity.TokenTypeNative
		address = ""
	}
	icon := f.Icon
	if icon == "" {
		icon = networkdefinition.TokenIcon(def, address)
	}

	return entity.Token{
		Name:           f.Name,
		Symbol:         f.Symbol,
		Address:        address,
		Decimals:       f.Decimals,
		Balance:        balance.InexactFloat64(),
		Price:          f.Price,
		Value:          value,
		PriceChange24h: f.PriceChange24h,
		Network:        def.Name,
		Type:           tokenType,
		Icon:           icon,
		Protocol:       f.Protocol,
		PoolID:         f.PoolID,
	}, true
}

// unknownNetwork is used when a provider reports a chain the registry does not know.
func unknownNetwork(id string) entity.NetworkDefinition {
	return entity.NetworkDefinition{Name: "Unknown", Identifier: strings.ToLower(id)}
}

// DecimalsOf reads a decimals field that upstreams send as either number or string.
func DecimalsOf(v gjson.Result) (int, bool) {
	if !v.Exists() || v.Type == gjson.Null || (v.Type == gjson.String && v.Str == "") {
		return 0, false
	}
	d := v.Int()
	if d < 0 || d > 77 {
		return 0, false
	}
	return int(d), true
}
