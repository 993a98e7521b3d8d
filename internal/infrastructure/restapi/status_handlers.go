package restapi

import (
	"net/http"
	"time"

	"wallet_dashboard/internal/infrastructure/configloader"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

// DependencyStatus reports whether one upstream is configured.
type DependencyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	API struct {
		Version   string    `json:"version"`
		Timestamp time.Time `json:"timestamp"`
		Uptime    float64   `json:"uptime"`
	} `json:"api"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
	Environment  struct {
		Mode string `json:"mode"`
	} `json:"environment"`
}

// StatusHandler reports API health and upstream configuration.
type StatusHandler struct {
	cfg     *configloader.Config
	started time.Time
	now     func() time.Time
}

// NewStatusHandler creates a new instance of StatusHandler.
func NewStatusHandler(cfg *configloader.Config, started time.Time) *StatusHandler {
	return &StatusHandler{cfg: cfg, started: started, now: time.Now}
}

func dependency(configured bool, name, envVar string) DependencyStatus {
	if configured {
		return DependencyStatus{Status: "configured", Message: name + " is set"}
	}
	return DependencyStatus{Status: "not configured", Message: envVar + " not set in environment variables"}
}

// GetStatusHandler handles GET /api/status.
func (h *StatusHandler) GetStatusHandler(c *gin.Context) {
	now := h.now()

	var resp StatusResponse
	resp.API.Version = apiVersion
	resp.API.Timestamp = now.UTC()
	resp.API.Uptime = now.Sub(h.started).Seconds()
	resp.Environment.Mode = h.cfg.Server.Mode
	resp.Dependencies = map[string]DependencyStatus{
		"moralis":  dependency(h.cfg.Moralis.Configured(), "Moralis API key", "MORALIS_API_KEY"),
		"goldRush": dependency(h.cfg.GoldRush.Configured(), "GoldRush API key", "GOLDRUSH_API_KEY"),
		"ankr":     dependency(h.cfg.Ankr.Configured(), "Ankr API key", "ANKR_API_KEY"),
		"alchemy":  dependency(h.cfg.Alchemy.Configured(), "Alchemy API key", "ALCHEMY_API_KEY"),
		"theGraph": dependency(len(h.cfg.TheGraph.Endpoints) > 0, "The Graph subgraph endpoint", "THEGRAPH_API_KEY"),
		"coinbase": dependency(h.cfg.Coinbase.Configured(), "Coinbase OAuth credentials", "COINBASE_CLIENT_ID/COINBASE_CLIENT_SECRET"),
	}

	c.JSON(http.StatusOK, resp)
}
