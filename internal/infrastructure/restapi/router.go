package restapi

import (
	"net/http"
	"strings"
	"time"

	"wallet_dashboard/internal/infrastructure/configloader"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups every API handler. A nil handler leaves its routes unregistered.
type Handlers struct {
	Dashboard *DashboardHandler
	Balances  *BalanceHandler
	Coinbase  *CoinbaseHandler
	NFTs      *NFTHandler
	Status    *StatusHandler
}

// SetupRouter configures and returns the gin engine.
func SetupRouter(cfg *configloader.Config, h Handlers, log *zap.Logger) *gin.Engine {
	production := cfg.Server.Production()

	router := gin.New()
	router.Use(cors.New(corsConfig(cfg.Server)))
	router.Use(ZapLogger(log.Named("http")))
	router.Use(Metrics())
	router.Use(Recovery(production, log))
	router.Use(ErrorHandler(production, log))

	api := router.Group("/api")
	{
		if h.Dashboard != nil {
			api.GET("/dashboard", h.Dashboard.GetDashboardHandler)
		}
		if h.Balances != nil {
			for _, p := range h.Balances.Providers() {
				api.GET("/"+string(p)+"/balances", h.Balances.GetBalancesHandler(p))
			}
		}
		if h.Coinbase != nil {
			cb := api.Group("/coinbase", h.Coinbase.SessionMiddleware())
			cb.GET("/auth", h.Coinbase.AuthHandler)
			cb.GET("/callback", h.Coinbase.CallbackHandler)
			cb.GET("/data", h.Coinbase.DataHandler)
		}
		if h.NFTs != nil {
			api.GET("/nfts", h.NFTs.ListNFTsHandler)
			api.GET("/nfts/:contractAddress/:tokenId", h.NFTs.GetNFTHandler)
		}
		if h.Status != nil {
			api.GET("/status", h.Status.GetStatusHandler)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Swagger.Enabled {
		router.StaticFile("/docs/swagger.yaml", cfg.Swagger.SpecPath)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	router.NoRoute(NoRoute)
	return router
}

func corsConfig(server configloader.ServerConfig) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	cfg.MaxAge = 12 * time.Hour

	origins := make([]string, 0, len(server.AllowedOrigins)+1)
	for _, o := range append([]string{server.FrontendURL}, server.AllowedOrigins...) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
