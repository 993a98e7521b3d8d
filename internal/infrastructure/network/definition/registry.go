package networkdefinition

import (
	"strings"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// NetworkDefinitionProvider is the immutable chain registry. It is safe for
// concurrent use because nothing mutates it after construction.
type NetworkDefinitionProvider struct {
	ordered    []entity.NetworkDefinition
	byName     map[string]entity.NetworkDefinition
	byProvider map[entity.Provider]map[string]entity.NetworkDefinition
}

// NewNetworkDefinitionProvider builds a registry over defs, or over every known
// network when defs is empty.
func NewNetworkDefinitionProvider(log port.Logger, defs ...entity.NetworkDefinition) *NetworkDefinitionProvider {
	if len(defs) == 0 {
		defs = allKnownDefinitions
	}
	p := &NetworkDefinitionProvider{
		ordered:    make([]entity.NetworkDefinition, 0, len(defs)),
		byName:     make(map[string]entity.NetworkDefinition, len(defs)),
		byProvider: make(map[entity.Provider]map[string]entity.NetworkDefinition),
	}
	for _, def := range defs {
		key := strings.ToLower(def.Identifier)
		if _, dup := p.byName[key]; dup {
			log.Warn("Duplicate network definition skipped", "network", def.Identifier)
			continue
		}
		p.byName[key] = def
		p.ordered = append(p.ordered, def)
		for provider, id := range def.ProviderIDs {
			if p.byProvider[provider] == nil {
				p.byProvider[provider] = make(map[string]entity.NetworkDefinition)
			}
			p.byProvider[provider][strings.ToLower(id)] = def
		}
	}
	log.Info("Chain registry initialized", "networks", len(p.ordered), "providers", len(p.byProvider))
	return p
}

var _ port.ChainRegistry = (*NetworkDefinitionProvider)(nil)

// Lookup returns a network definition by its canonical identifier.
func (p *NetworkDefinitionProvider) Lookup(network string) (entity.NetworkDefinition, bool) {
	def, ok := p.byName[strings.ToLower(strings.TrimSpace(network))]
	return def, ok
}

// ResolveProviderChainID returns the identifier provider uses for network.
func (p *NetworkDefinitionProvider) ResolveProviderChainID(network string, provider entity.Provider) (string, bool) {
	def, ok := p.Lookup(network)
	if !ok {
		return "", false
	}
	id, ok := def.ProviderIDs[provider]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// FromProviderID maps a provider-specific chain identifier back to its network.
func (p *NetworkDefinitionProvider) FromProviderID(provider entity.Provider, id string) (entity.NetworkDefinition, bool) {
	def, ok := p.byProvider[provider][strings.ToLower(strings.TrimSpace(id))]
	return def, ok
}

// Supported lists the canonical identifiers provider serves, in registry order.
func (p *NetworkDefinitionProvider) Supported(provider entity.Provider) []string {
	out := make([]string, 0)
	for _, def := range p.ordered {
		if _, ok := def.ProviderIDs[provider]; ok {
			out = append(out, def.Identifier)
		}
	}
	return out
}

// All returns every registered definition.
func (p *NetworkDefinitionProvider) All() []entity.NetworkDefinition {
	defsCopy := make([]entity.NetworkDefinition, len(p.ordered))
	copy(defsCopy, p.ordered)
	return defsCopy
}
