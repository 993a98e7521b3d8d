package entity

// Provider names one upstream data source. The value doubles as the `provider`
// query parameter and the route segment of the per-provider balance endpoints.
type Provider string

const (
	ProviderMoralis     Provider = "moralis"
	ProviderGoldRush    Provider = "goldrush"
	ProviderAnkr        Provider = "ankr"
	ProviderAlchemy     Provider = "alchemy"
	ProviderTheGraph    Provider = "thegraph"
	ProviderDEXScreener Provider = "dexscreener"
	ProviderCoinbase    Provider = "coinbase"
)

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// NetworkDefinition holds the static description of one network and the identifiers
// each upstream provider uses for it.
type NetworkDefinition struct {
	ChainID                   uint64              `json:"chainId" yaml:"chainId"`
	Name                      string              `json:"name" yaml:"name"`
	Identifier                string              `json:"identifier" yaml:"identifier"`
	NativeSymbol              string              `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeName                string              `json:"nativeName" yaml:"nativeName"`
	Decimals                  int32               `json:"decimals" yaml:"decimals"`
	EVM                       bool                `json:"evm" yaml:"evm"`
	BlockExplorerURL          string              `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	DEXScreenerChainID        string              `json:"-" yaml:"dexScreenerChainId"`
	WrappedNativeTokenAddress string              `json:"-" yaml:"wrappedNativeTokenAddress"`
	Icon                      string              `json:"icon" yaml:"icon"`
	ApproxNativePriceUSD      float64             `json:"-" yaml:"approxNativePriceUsd"`
	ProviderIDs               map[Provider]string `json:"-" yaml:"providerIds"`
}

// NetworkInfo is the client-facing summary of a requested network.
type NetworkInfo struct {
	Name        string `json:"name"`
	ChainID     uint64 `json:"chainId"`
	Icon        string `json:"icon"`
	NativeToken string `json:"nativeToken"`
}
