package entity

// TokenType distinguishes a network's native asset from contract tokens.
type TokenType string

const (
	TokenTypeNative         TokenType = "native"
	TokenTypeCryptocurrency TokenType = "cryptocurrency"
)

// Defaults substituted when an upstream omits a token field.
const (
	DefaultTokenDecimals = 18
	DefaultTokenName     = "Unknown Token"
	DefaultTokenSymbol   = "???"
)

// Token is the unified balance record produced by every balance provider.
// Balance is already in human units.
type Token struct {
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	Address        string    `json:"address"`
	Decimals       int       `json:"decimals"`
	Balance        float64   `json:"balance"`
	Price          float64   `json:"price"`
	Value          float64   `json:"value"`
	PriceChange24h float64   `json:"priceChange24h"`
	Network        string    `json:"network"`
	Type           TokenType `json:"type"`
	Icon           string    `json:"icon"`
	Protocol       string    `json:"protocol,omitempty"`
	PoolID         string    `json:"poolId,omitempty"`
}

// DefiPosition is a user's share of one token inside a liquidity pool.
type DefiPosition struct {
	Protocol string  `json:"protocol"`
	PoolID   string  `json:"poolId"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Address  string  `json:"address"`
	Network  string  `json:"network"`
	Balance  float64 `json:"balance"`
	Value    float64 `json:"value"`
}

// NFT is a single item of a wallet's NFT collection.
type NFT struct {
	TokenID         string `json:"tokenId"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	ContractAddress string `json:"contractAddress"`
	ContractType    string `json:"contractType"`
	CollectionName  string `json:"collectionName"`
	Image           string `json:"image,omitempty"`
	Description     string `json:"description,omitempty"`
	Owner           string `json:"owner,omitempty"`
	Network         string `json:"chain"`
}

// NFTPage is one page of a wallet's NFTs.
type NFTPage struct {
	Total    int64  `json:"total"`
	Page     int64  `json:"page"`
	PageSize int64  `json:"pageSize"`
	Cursor   string `json:"cursor,omitempty"`
	NFTs     []NFT  `json:"nfts"`
}
