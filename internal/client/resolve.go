package client

import (
	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"

	"go.uber.org/zap"
)

// ResolvedNetwork pairs a canonical network with the provider's identifier for it.
type ResolvedNetwork struct {
	Def entity.NetworkDefinition
	ID  string
}

// evmAddress validates an address before it is placed in an upstream URL path.
func evmAddress(provider entity.Provider, address string) (string, error) {
	normalized, ok := utils.NormalizeEVMAddress(address)
	if !ok {
		return "", entity.NewValidationError("Invalid wallet address format", map[string]any{
			"provider": string(provider),
			"address":  address,
		})
	}
	return normalized, nil
}

// ResolveNetworks keeps the requested networks the provider serves, in request order.
func ResolveNetworks(registry port.ChainRegistry, provider entity.Provider, networks []string, logger *zap.Logger) []ResolvedNetwork {
	out := make([]ResolvedNetwork, 0, len(networks))
	for _, n := range networks {
		id, ok := registry.ResolveProviderChainID(n, provider)
		if !ok {
			logger.Debug("Network not supported by provider, skipping", zap.String("network", n))
			continue
		}
		def, _ := registry.Lookup(n)
		out = append(out, ResolvedNetwork{Def: def, ID: id})
	}
	return out
}

// Flatten concatenates per-network results in order. The result is never nil.
func Flatten[T any](parts [][]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
