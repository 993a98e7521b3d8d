package restapi

import (
	"net/http"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the aggregated wallet dashboard.
type DashboardHandler struct {
	dashboardService port.DashboardService
}

// NewDashboardHandler creates a new instance of DashboardHandler.
func NewDashboardHandler(ds port.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

// GetDashboardHandler handles GET /api/dashboard?address=&networks=&provider=.
func (h *DashboardHandler) GetDashboardHandler(c *gin.Context) {
	address := c.Query("address")
	networks := utils.SplitCSV(c.Query("networks"))
	provider := entity.Provider(c.Query("provider"))

	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), address, networks, provider)
	if err != nil {
		abortWithError(c, err, "processing wallet data", map[string]any{
			"address":  address,
			"networks": networks,
		})
		return
	}
	c.JSON(http.StatusOK, data)
}
