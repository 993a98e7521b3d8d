package networkdefinition

import "wallet_dashboard/internal/domain/entity"

const trustWalletAssets = "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains"

// trustWalletChains covers networks whose TrustWallet folder differs from the identifier.
var trustWalletChains = map[string]string{
	"bsc":       "smartchain",
	"avalanche": "avalanchec",
	"gnosis":    "xdai",
}

func logo(chain string) string {
	return trustWalletAssets + "/" + chain + "/info/logo.png"
}

// TokenIcon returns the TrustWallet logo URL for a token. An empty address yields
// the chain's native logo.
func TokenIcon(def entity.NetworkDefinition, address string) string {
	chain := def.Identifier
	if alias, ok := trustWalletChains[chain]; ok {
		chain = alias
	}
	if address == "" {
		return logo(chain)
	}
	return trustWalletAssets + "/" + chain + "/assets/" + address + "/logo.png"
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:                   1,
		Name:                      "Ethereum",
		Identifier:                "ethereum",
		NativeSymbol:              "ETH",
		NativeName:                "Ethereum",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://etherscan.io",
		DEXScreenerChainID:        "ethereum",
		WrappedNativeTokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
		Icon:                      logo("ethereum"),
		ApproxNativePriceUSD:      2800,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "eth",
			entity.ProviderGoldRush: "1",
			entity.ProviderAnkr:     "eth",
			entity.ProviderAlchemy:  "eth-mainnet",
			entity.ProviderTheGraph: "ethereum",
		},
	}
	Polygon = entity.NetworkDefinition{
		ChainID:                   137,
		Name:                      "Polygon",
		Identifier:                "polygon",
		NativeSymbol:              "MATIC",
		NativeName:                "Polygon",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://polygonscan.com",
		DEXScreenerChainID:        "polygon",
		WrappedNativeTokenAddress: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", // WMATIC
		Icon:                      logo("polygon"),
		ApproxNativePriceUSD:      0.27,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "polygon",
			entity.ProviderGoldRush: "137",
			entity.ProviderAnkr:     "polygon",
			entity.ProviderAlchemy:  "polygon-mainnet",
			entity.ProviderTheGraph: "polygon",
		},
	}
	BSC = entity.NetworkDefinition{
		ChainID:                   56,
		Name:                      "BSC",
		Identifier:                "bsc",
		NativeSymbol:              "BNB",
		NativeName:                "BNB Chain",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://bscscan.com",
		DEXScreenerChainID:        "bsc",
		WrappedNativeTokenAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", // WBNB
		Icon:                      logo("smartchain"),
		ApproxNativePriceUSD:      595,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "bsc",
			entity.ProviderGoldRush: "56",
			entity.ProviderAnkr:     "bsc",
		},
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:                   43114,
		Name:                      "Avalanche",
		Identifier:                "avalanche",
		NativeSymbol:              "AVAX",
		NativeName:                "Avalanche",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://snowtrace.io",
		DEXScreenerChainID:        "avalanche",
		WrappedNativeTokenAddress: "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7", // WAVAX
		Icon:                      logo("avalanchec"),
		ApproxNativePriceUSD:      35,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "avalanche",
			entity.ProviderGoldRush: "43114",
			entity.ProviderAnkr:     "avalanche",
		},
	}
	Optimism = entity.NetworkDefinition{
		ChainID:                   10,
		Name:                      "Optimism",
		Identifier:                "optimism",
		NativeSymbol:              "ETH",
		NativeName:                "Ethereum",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://optimistic.etherscan.io",
		DEXScreenerChainID:        "optimism",
		WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006", // WETH on Optimism
		Icon:                      logo("optimism"),
		ApproxNativePriceUSD:      2800,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "optimism",
			entity.ProviderGoldRush: "10",
			entity.ProviderAnkr:     "optimism",
			entity.ProviderAlchemy:  "opt-mainnet",
		},
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:                   42161,
		Name:                      "Arbitrum",
		Identifier:                "arbitrum",
		NativeSymbol:              "ETH",
		NativeName:                "Ethereum",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://arbiscan.io",
		DEXScreenerChainID:        "arbitrum",
		WrappedNativeTokenAddress: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", // WETH on Arbitrum
		Icon:                      logo("arbitrum"),
		ApproxNativePriceUSD:      2800,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "arbitrum",
			entity.ProviderGoldRush: "42161",
			entity.ProviderAnkr:     "arbitrum",
			entity.ProviderAlchemy:  "arb-mainnet",
			entity.ProviderTheGraph: "arbitrum",
		},
	}
	Base = entity.NetworkDefinition{
		ChainID:                   8453,
		Name:                      "Base",
		Identifier:                "base",
		NativeSymbol:              "ETH",
		NativeName:                "Ethereum",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://basescan.org",
		DEXScreenerChainID:        "base",
		WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006", // WETH on Base
		Icon:                      logo("base"),
		ApproxNativePriceUSD:      2800,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "base",
			entity.ProviderGoldRush: "8453",
			entity.ProviderAnkr:     "base",
			entity.ProviderAlchemy:  "base-mainnet",
		},
	}
	Fantom = entity.NetworkDefinition{
		ChainID:                   250,
		Name:                      "Fantom",
		Identifier:                "fantom",
		NativeSymbol:              "FTM",
		NativeName:                "Fantom",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://ftmscan.com",
		DEXScreenerChainID:        "fantom",
		WrappedNativeTokenAddress: "0x21be370D5312f44cB42ce377BC9b8a0cEF1A4C83", // WFTM
		Icon:                      logo("fantom"),
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "fantom",
			entity.ProviderGoldRush: "250",
			entity.ProviderAnkr:     "fantom",
		},
	}
	Gnosis = entity.NetworkDefinition{
		ChainID:                   100,
		Name:                      "Gnosis",
		Identifier:                "gnosis",
		NativeSymbol:              "xDAI",
		NativeName:                "xDAI",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://gnosisscan.io",
		DEXScreenerChainID:        "gnosischain",
		WrappedNativeTokenAddress: "0xe91D153E0b41518A2Ce8DD3D7944Fa863463A97d", // WXDAI
		Icon:                      logo("xdai"),
		ApproxNativePriceUSD:      1,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis:  "gnosis",
			entity.ProviderGoldRush: "100",
			entity.ProviderAnkr:     "gnosis",
		},
	}
	Linea = entity.NetworkDefinition{
		ChainID:                   59144,
		Name:                      "Linea",
		Identifier:                "linea",
		NativeSymbol:              "ETH",
		NativeName:                "Ethereum",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://lineascan.build",
		DEXScreenerChainID:        "linea",
		WrappedNativeTokenAddress: "0xe5D7C2a44FfDDf6b295A15c148167daaAf5Cf34f", // WETH on Linea
		Icon:                      logo("linea"),
		ApproxNativePriceUSD:      2800,
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis: "linea",
			entity.ProviderAnkr:    "linea",
		},
	}
	Scroll = entity.NetworkDefinition{
		ChainID:                   534352,
		Name:                      "Scroll",
		Identifier:                "scroll",
		NativeSymbol:              "ETH",
		NativeName:                "Ethereum",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://scrollscan.com",
		DEXScreenerChainID:        "scroll",
		WrappedNativeTokenAddress: "0x5300000000000000000000000000000000000004", // WETH on Scroll
		Icon:                      logo("scroll"),
		ApproxNativePriceUSD:      2800,
		ProviderIDs:               map[entity.Provider]string{entity.ProviderAnkr: "scroll"},
	}
	ZkSync = entity.NetworkDefinition{
		ChainID:                   324,
		Name:                      "zkSync",
		Identifier:                "zksync",
		NativeSymbol:              "ETH",
		NativeName:                "Ethereum",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://explorer.zksync.io",
		DEXScreenerChainID:        "zksync",
		WrappedNativeTokenAddress: "0x5AEa5775959fBC2557Cc8789bC1bf90A239D9a91", // WETH on zkSync Era
		Icon:                      logo("zksync"),
		ApproxNativePriceUSD:      2800,
		ProviderIDs:               map[entity.Provider]string{entity.ProviderAnkr: "zksync"},
	}
	Mantle = entity.NetworkDefinition{
		ChainID:                   5000,
		Name:                      "Mantle",
		Identifier:                "mantle",
		NativeSymbol:              "MNT",
		NativeName:                "Mantle",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://explorer.mantle.xyz",
		DEXScreenerChainID:        "mantle",
		WrappedNativeTokenAddress: "0x78c1b0C915c4FAA5FffA6CAbf0219DA63d7f4cb8", // WMNT
		Icon:                      logo("mantle"),
		ProviderIDs:               map[entity.Provider]string{entity.ProviderAnkr: "mantle"},
	}
	Celo = entity.NetworkDefinition{
		ChainID:                   42220,
		Name:                      "Celo",
		Identifier:                "celo",
		NativeSymbol:              "CELO",
		NativeName:                "Celo",
		Decimals:                  18,
		EVM:                       true,
		BlockExplorerURL:          "https://celoscan.io",
		DEXScreenerChainID:        "celo",
		WrappedNativeTokenAddress: "0x471EcE3750Da237f93B8E339c536989b8978a438", // CELO itself
		Icon:                      logo("celo"),
		ProviderIDs:               map[entity.Provider]string{entity.ProviderAnkr: "celo"},
	}
	Metis = entity.NetworkDefinition{
		ChainID:            1088,
		Name:               "Metis",
		Identifier:         "metis",
		NativeSymbol:       "METIS",
		NativeName:         "Metis",
		Decimals:           18,
		EVM:                true,
		BlockExplorerURL:   "https://andromeda-explorer.metis.io",
		DEXScreenerChainID: "metis",
		Icon:               logo("metis"),
		ProviderIDs:        map[entity.Provider]string{entity.ProviderAnkr: "metis"},
	}
	Cronos = entity.NetworkDefinition{
		ChainID:                   25,
		Name:                      "Cronos",
		Identifier:                "cronos",
		NativeSymbol:              "CRO",
		NativeName:                "Cronos",
		Decimals:                  18,
		EVM:                       true,
		DEXScreenerChainID:        "cronos",
		WrappedNativeTokenAddress: "0x5C7F8A570d578ED84E63fdFA7b1eE72dEae1AE23", // WCRO
		Icon:                      logo("cronos"),
		ProviderIDs: map[entity.Provider]string{
			entity.ProviderMoralis: "cronos",
			entity.ProviderAnkr:    "cronos",
		},
	}
	Aurora    = evmAnkrOnly(1313161554, "Aurora", "aurora", "ETH")
	Harmony   = evmAnkrOnly(1666600000, "Harmony", "harmony", "ONE")
	Moonbeam  = evmAnkrOnly(1284, "Moonbeam", "moonbeam", "GLMR")
	Moonriver = evmAnkrOnly(1285, "Moonriver", "moonriver", "MOVR")

	Solana   = nonEVM("Solana", "solana", "SOL", 9)
	Near     = nonEVM("NEAR", "near", "NEAR", 24)
	Polkadot = nonEVM("Polkadot", "polkadot", "DOT", 10)
	Kusama   = nonEVM("Kusama", "kusama", "KSM", 12)
	Bitcoin  = nonEVM("Bitcoin", "bitcoin", "BTC", 8)
	Filecoin = nonEVM("Filecoin", "filecoin", "FIL", 18)
	Cosmos   = nonEVM("Cosmos", "cosmos", "ATOM", 6)
	Osmosis  = nonEVM("Osmosis", "osmosis", "OSMO", 6)
)

func evmAnkrOnly(chainID uint64, name, identifier, symbol string) entity.NetworkDefinition {
	return entity.NetworkDefinition{
		ChainID:      chainID,
		Name:         name,
		Identifier:   identifier,
		NativeSymbol: symbol,
		NativeName:   name,
		Decimals:     18,
		EVM:          true,
		Icon:         logo(identifier),
		ProviderIDs:  map[entity.Provider]string{entity.ProviderAnkr: identifier},
	}
}

func nonEVM(name, identifier, symbol string, decimals int32) entity.NetworkDefinition {
	return entity.NetworkDefinition{
		Name:         name,
		Identifier:   identifier,
		NativeSymbol: symbol,
		NativeName:   name,
		Decimals:     decimals,
		Icon:         logo(identifier),
		ProviderIDs:  map[entity.Provider]string{entity.ProviderAnkr: identifier},
	}
}

// allKnownDefinitions lists every network the service knows, in display order.
var allKnownDefinitions = []entity.NetworkDefinition{
	Ethereum, Polygon, BSC, Avalanche, Optimism, Arbitrum, Base, Fantom, Gnosis,
	Linea, Scroll, ZkSync, Mantle, Celo, Metis, Cronos, Aurora, Harmony, Moonbeam, Moonriver,
	Solana, Near, Polkadot, Kusama, Bitcoin, Filecoin, Cosmos, Osmosis,
}
