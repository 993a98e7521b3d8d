package port

import "wallet_dashboard/internal/domain/entity"

// ChainRegistry maps canonical network slugs to provider-specific identifiers.
type ChainRegistry interface {
	// Lookup returns the definition of a canonical network, case-insensitively.
	Lookup(network string) (entity.NetworkDefinition, bool)
	// ResolveProviderChainID returns the identifier provider uses for network.
	// ok is false when the provider does not serve that network.
	ResolveProviderChainID(network string, provider entity.Provider) (id string, ok bool)
	// FromProviderID is the reverse of ResolveProviderChainID.
	FromProviderID(provider entity.Provider, id string) (entity.NetworkDefinition, bool)
	// Supported lists the canonical networks a provider serves.
	Supported(provider entity.Provider) []string
	All() []entity.NetworkDefinition
}
