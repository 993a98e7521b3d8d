package restapi

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

const (
	coinbaseConnectedQuery = "coinbase=connected"
	coinbaseFailedQuery    = "error=coinbase_auth_failed"
)

// CoinbaseHandler serves the Coinbase OAuth flow and account data.
type CoinbaseHandler struct {
	api         port.CoinbaseAPI
	service     port.CoinbaseService
	sessions    *SessionStore
	frontendURL string
	configured  bool
	logger      port.Logger
}

// NewCoinbaseHandler creates a new instance of CoinbaseHandler. When configured is
// false every endpoint answers 503.
func NewCoinbaseHandler(api port.CoinbaseAPI, svc port.CoinbaseService, sessions *SessionStore, frontendURL string, configured bool, l port.Logger) *CoinbaseHandler {
	return &CoinbaseHandler{
		api:         api,
		service:     svc,
		sessions:    sessions,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		configured:  configured,
		logger:      l,
	}
}

func (h *CoinbaseHandler) requireConfigured(c *gin.Context) bool {
	if h.configured {
		return true
	}
	abortWithError(c, entity.NewAPIError("Coinbase OAuth credentials are not configured", http.StatusServiceUnavailable, entity.KindUpstream, nil), "coinbase", nil)
	return false
}

// AuthHandler handles GET /api/coinbase/auth by redirecting to the Coinbase consent page.
func (h *CoinbaseHandler) AuthHandler(c *gin.Context) {
	if !h.requireConfigured(c) {
		return
	}
	state := rand.Text()
	if err := h.sessions.Session(c).SetState(state); err != nil {
		abortWithError(c, fmt.Errorf("failed to store oauth state: %w", err), "coinbaseAuth", nil)
		return
	}
	c.Redirect(http.StatusFound, h.api.AuthorizeURL(state))
}

// SessionMiddleware loads the session the Coinbase routes read and write.
func (h *CoinbaseHandler) SessionMiddleware() gin.HandlerFunc {
	return h.sessions.Middleware()
}

// CallbackHandler handles GET /api/coinbase/callback and returns the browser to the frontend.
func (h *CoinbaseHandler) CallbackHandler(c *gin.Context) {
	if !h.requireConfigured(c) {
		return
	}
	session := h.sessions.Session(c)
	expected := session.ConsumeState()
	code := c.Query("code")

	switch {
	case c.Query("error") != "":
		h.logger.Warn("Coinbase authorization denied", "error", c.Query("error"), "description", c.Query("error_description"))
		h.redirectToFrontend(c, coinbaseFailedQuery)
		return
	case code == "":
		h.logger.Warn("Coinbase callback without code")
		h.redirectToFrontend(c, coinbaseFailedQuery)
		return
	case expected == "" || c.Query("state") != expected:
		h.logger.Warn("Coinbase callback state mismatch")
		h.redirectToFrontend(c, coinbaseFailedQuery)
		return
	}

	token, err := h.api.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("Coinbase token exchange failed", "error", err)
		h.redirectToFrontend(c, coinbaseFailedQuery)
		return
	}
	if err := session.Save(c.Request.Context(), token); err != nil {
		h.logger.Error("Failed to store coinbase token", "error", err)
		h.redirectToFrontend(c, coinbaseFailedQuery)
		return
	}
	h.logger.Info("Coinbase account connected")
	h.redirectToFrontend(c, coinbaseConnectedQuery)
}

func (h *CoinbaseHandler) redirectToFrontend(c *gin.Context, query string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/dashboard?"+query)
}

// DataHandler handles GET /api/coinbase/data.
func (h *CoinbaseHandler) DataHandler(c *gin.Context) {
	if !h.requireConfigured(c) {
		return
	}
	data, err := h.service.GetAccountData(c.Request.Context(), h.sessions.Session(c))
	if err != nil {
		if isNotAuthenticated(err) {
			abortWithError(c, entity.NewAPIError("Not authenticated with Coinbase", http.StatusUnauthorized, entity.KindValidation, nil), "getCoinbaseData", nil)
			return
		}
		abortWithError(c, err, "getCoinbaseData", nil)
		return
	}
	c.JSON(http.StatusOK, data)
}
