package client

import (
	"context"
	"fmt"
	"sync"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"

	"github.com/ethereum/go-ethereum/rpc"
)

// rpcClientProvider dials and caches one JSON-RPC client per network.
type rpcClientProvider struct {
	clients     map[string]*rpc.Client
	mu          sync.Mutex
	urlTemplate string
	keyFor      func(network string) string
	logger      port.Logger
}

// newRPCClientProvider creates a provider. urlTemplate receives the provider
// subdomain and the network's API key.
func newRPCClientProvider(urlTemplate string, keyFor func(network string) string, logger port.Logger) *rpcClientProvider {
	return &rpcClientProvider{
		clients:     make(map[string]*rpc.Client),
		urlTemplate: urlTemplate,
		keyFor:      keyFor,
		logger:      logger,
	}
}

// GetClient returns the cached client for netDef, dialing it on first use.
func (p *rpcClientProvider) GetClient(ctx context.Context, netDef entity.NetworkDefinition, subdomain string) (*rpc.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[netDef.Identifier]; ok {
		return c, nil
	}

	key := p.keyFor(netDef.Identifier)
	if key == "" {
		return nil, fmt.Errorf("no Alchemy API key configured for %s", netDef.Identifier)
	}
	c, err := rpc.DialContext(ctx, fmt.Sprintf(p.urlTemplate, subdomain, key))
	if err != nil {
		p.logger.Error("Failed to create RPC client", "network", netDef.Identifier, "error", err)
		return nil, fmt.Errorf("failed to dial RPC for %s: %w", netDef.Identifier, err)
	}
	p.clients[netDef.Identifier] = c
	p.logger.Info("Created RPC client", "network", netDef.Identifier, "subdomain", subdomain)
	return c, nil
}

// Close closes every cached client.
func (p *rpcClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
