package restapi

import (
	"net/http"
	"strconv"
	"strings"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultNFTChain = "ethereum"
	defaultNFTLimit = 20
	maxNFTLimit     = 100
)

// NFTHandler serves NFT listings and details.
type NFTHandler struct {
	nfts port.NFTProvider
}

// NewNFTHandler creates a new instance of NFTHandler.
func NewNFTHandler(nfts port.NFTProvider) *NFTHandler {
	return &NFTHandler{nfts: nfts}
}

func chainQuery(c *gin.Context) string {
	if chain := strings.ToLower(strings.TrimSpace(c.Query("chain"))); chain != "" {
		return chain
	}
	return defaultNFTChain
}

// ListNFTsHandler handles GET /api/nfts?address=&chain=&limit=&cursor=.
func (h *NFTHandler) ListNFTsHandler(c *gin.Context) {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		abortWithError(c, entity.NewValidationError("Wallet address is required", nil), "getNfts", nil)
		return
	}
	address, ok := utils.NormalizeEVMAddress(address)
	if !ok {
		abortWithError(c, entity.NewValidationError("Invalid wallet address format", map[string]any{"address": c.Query("address")}), "getNfts", nil)
		return
	}

	limit := defaultNFTLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			abortWithError(c, entity.NewValidationError("limit must be a positive integer", map[string]any{"limit": raw}), "getNfts", nil)
			return
		}
		limit = min(n, maxNFTLimit)
	}

	chain := chainQuery(c)
	page, err := h.nfts.ListNFTs(c.Request.Context(), address, chain, limit, c.Query("cursor"))
	if err != nil {
		abortWithError(c, err, "getNfts", map[string]any{"address": address, "chain": chain})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetNFTHandler handles GET /api/nfts/:contractAddress/:tokenId?chain=.
func (h *NFTHandler) GetNFTHandler(c *gin.Context) {
	tokenID := c.Param("tokenId")
	contract, ok := utils.NormalizeEVMAddress(c.Param("contractAddress"))
	if !ok {
		abortWithError(c, entity.NewValidationError("Invalid contract address format", map[string]any{"contractAddress": c.Param("contractAddress")}), "getNftDetails", nil)
		return
	}
	if !isDecimalDigits(tokenID) {
		abortWithError(c, entity.NewValidationError("Invalid token id", map[string]any{"tokenId": tokenID}), "getNftDetails", nil)
		return
	}

	chain := chainQuery(c)
	nft, err := h.nfts.GetNFT(c.Request.Context(), contract, tokenID, chain)
	if err != nil {
		abortWithError(c, err, "getNftDetails", map[string]any{"contractAddress": contract, "tokenId": tokenID, "chain": chain})
		return
	}
	c.JSON(http.StatusOK, nft)
}

// isDecimalDigits reports whether s is a non-empty run of decimal digits.
func isDecimalDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
