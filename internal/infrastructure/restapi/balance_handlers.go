package restapi

import (
	"errors"
	"net/http"
	"strings"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

const ankrProviderLabel = "Ankr Advanced API"

var defaultBalanceNetworks = []string{"ethereum"}

// BalanceResponse is the body of the per-provider balance endpoints.
type BalanceResponse struct {
	Success         bool             `json:"success"`
	Address         string           `json:"address"`
	Networks        []string         `json:"networks"`
	Tokens          []entity.Token   `json:"tokens"`
	Provider        string           `json:"provider,omitempty"`
	SupportedChains *SupportedChains `json:"supportedChains,omitempty"`
}

// SupportedChains lists the networks a multi-chain provider serves.
type SupportedChains struct {
	EVM    []string `json:"evm"`
	NonEVM []string `json:"nonEvm"`
}

type balanceFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BalanceHandler serves the raw balance list of a single provider.
type BalanceHandler struct {
	providers map[entity.Provider]port.BalanceProvider
	registry  port.ChainRegistry
	logger    port.Logger
}

// NewBalanceHandler creates a new instance of BalanceHandler.
func NewBalanceHandler(providers map[entity.Provider]port.BalanceProvider, registry port.ChainRegistry, l port.Logger) *BalanceHandler {
	return &BalanceHandler{providers: providers, registry: registry, logger: l}
}

// Providers lists the providers with a registered balance endpoint.
func (h *BalanceHandler) Providers() []entity.Provider {
	out := make([]entity.Provider, 0, len(h.providers))
	for _, p := range []entity.Provider{
		entity.ProviderMoralis,
		entity.ProviderGoldRush,
		entity.ProviderAnkr,
		entity.ProviderAlchemy,
		entity.ProviderTheGraph,
	} {
		if _, ok := h.providers[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// GetBalancesHandler returns the handler of GET /api/{provider}/balances.
func (h *BalanceHandler) GetBalancesHandler(provider entity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := strings.TrimSpace(c.Query("address"))

		// Ankr also serves non-EVM chains, so only 0x-prefixed input is held to the EVM shape.
		if provider == entity.ProviderAnkr {
			if address == "" {
				c.JSON(http.StatusBadRequest, balanceFailure{Message: "Invalid wallet address format."})
				return
			}
			if strings.HasPrefix(address, "0x") {
				normalized, ok := utils.NormalizeEVMAddress(address)
				if !ok {
					c.JSON(http.StatusBadRequest, balanceFailure{Message: "Invalid wallet address format."})
					return
				}
				address = normalized
			}
		} else {
			normalized, ok := utils.NormalizeEVMAddress(address)
			if !ok {
				c.JSON(http.StatusBadRequest, balanceFailure{Message: "Invalid wallet address. Please provide a valid Ethereum address."})
				return
			}
			address = normalized
		}

		networks := utils.SplitCSV(c.Query("networks"))
		if len(networks) == 0 {
			networks = defaultBalanceNetworks
		}

		bp, ok := h.providers[provider]
		if !ok {
			c.JSON(http.StatusServiceUnavailable, balanceFailure{Message: "Failed to fetch balances: " + string(provider) + " is not configured"})
			return
		}

		tokens, err := bp.FetchBalances(c.Request.Context(), address, networks)
		if err != nil {
			h.logger.Error("Error fetching balances", "provider", provider, "address", address, "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, entity.ErrNoSupportedNetworks) {
				status = http.StatusBadRequest
			}
			c.JSON(status, balanceFailure{Message: "Failed to fetch balances: " + err.Error()})
			return
		}
		if tokens == nil {
			tokens = []entity.Token{}
		}

		resp := BalanceResponse{
			Success:  true,
			Address:  address,
			Networks: networks,
			Tokens:   tokens,
		}
		if provider == entity.ProviderAnkr {
			resp.Provider = ankrProviderLabel
			resp.SupportedChains = h.supportedChains(provider)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *BalanceHandler) supportedChains(provider entity.Provider) *SupportedChains {
	out := &SupportedChains{EVM: []string{}, NonEVM: []string{}}
	for _, name := range h.registry.Supported(provider) {
		def, ok := h.registry.Lookup(name)
		if !ok {
			continue
		}
		if def.EVM {
			out.EVM = append(out.EVM, def.Identifier)
		} else {
			out.NonEVM = append(out.NonEVM, def.Identifier)
		}
	}
	return out
}
