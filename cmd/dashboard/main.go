package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/app/service"
	"wallet_dashboard/internal/client"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
	"wallet_dashboard/internal/infrastructure/httpclient"
	alchemyclient "wallet_dashboard/internal/infrastructure/network/client"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/infrastructure/restapi"
	"wallet_dashboard/internal/pkg/logger"
	"wallet_dashboard/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	defaultConfigPath        = "configs/config.yml"
	dexScreenerRatePerSecond = 5
	shutdownTimeout          = 10 * time.Second
)

func main() {
	started := time.Now()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := configloader.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.NewZap(cfg.Server.Production(), cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	appLogger := logger.NewSlogAdapter(logger.Init(zapLogger, cfg.Logging.Level))
	appLogger.Info("Wallet dashboard starting", "version", cfg.Version, "mode", cfg.Server.Mode, "config", configPath)

	if cfg.Server.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.MustRegisterMetrics()

	registry := networkdefinition.NewNetworkDefinitionProvider(appLogger)

	dexTransport := httpclient.NewTransport(entity.ProviderDEXScreener,
		time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond, dexScreenerRatePerSecond, dexScreenerRatePerSecond, zapLogger)
	dexScreener := client.NewDEXScreenerClient(dexTransport, cfg.DEXScreener.BaseURL,
		zapLogger.Named("DEXScreenerClient"), cfg.TokenPriceSvc.MaxTokensPerBatchRequest)
	prices := service.NewTokenPriceService(registry, dexScreener, appLogger.With("component", "TokenPriceService"), service.TokenPriceServiceOptions{
		MaxTokensPerBatchRequest: cfg.TokenPriceSvc.MaxTokensPerBatchRequest,
		MaxConcurrentRequests:    cfg.Performance.MaxConcurrentRoutines,
		CacheTTL:                 time.Duration(cfg.TokenPriceSvc.CacheTTLMinutes) * time.Minute,
	})

	moralis := client.NewMoralisClient(providerTransport(entity.ProviderMoralis, cfg.Moralis, zapLogger),
		cfg.Moralis.BaseURL, cfg.Moralis.APIKey, registry, prices, cfg.Dashboard.FeeTransactionLimit, zapLogger.Named("MoralisClient"))
	goldRush := client.NewGoldRushClient(providerTransport(entity.ProviderGoldRush, cfg.GoldRush, zapLogger),
		cfg.GoldRush.BaseURL, cfg.GoldRush.APIKey, registry, zapLogger.Named("GoldRushClient"))
	ankr := client.NewAnkrClient(providerTransport(entity.ProviderAnkr, cfg.Ankr, zapLogger),
		cfg.Ankr.BaseURL, cfg.Ankr.APIKey, registry, zapLogger.Named("AnkrClient"))
	theGraph := client.NewTheGraphClient(providerTransport(entity.ProviderTheGraph, cfg.TheGraph.ProviderConfig, zapLogger),
		cfg.TheGraph.Endpoints, cfg.TheGraph.APIKey, cfg.TheGraph.Protocol, registry, prices, zapLogger.Named("TheGraphClient"))
	alchemy := alchemyclient.NewAlchemyClient(cfg.Alchemy.URLTemplate, cfg.Alchemy.KeyFor, registry, prices,
		cfg.Alchemy.Timeout(), time.Duration(cfg.Alchemy.MetadataTimeoutMillis)*time.Millisecond,
		zapLogger.Named("AlchemyClient"), appLogger.With("component", "AlchemyClient"))
	defer alchemy.Close()

	balanceProviders := map[entity.Provider]port.BalanceProvider{
		entity.ProviderMoralis:  moralis,
		entity.ProviderGoldRush: goldRush,
		entity.ProviderAnkr:     ankr,
		entity.ProviderAlchemy:  alchemy,
		entity.ProviderTheGraph: theGraph,
	}

	dashboardService := service.NewDashboardService(service.DashboardSources{
		Balances:     balanceProviders,
		Defi:         theGraph,
		Transactions: moralis,
		Fees:         moralis,
		NFTs:         moralis,
		History:      goldRush,
	}, registry, appLogger.With("component", "DashboardService"), service.DashboardOptions{
		DefaultNetworks:  cfg.Dashboard.DefaultNetworks,
		DefaultProvider:  entity.Provider(strings.ToLower(cfg.Dashboard.DefaultProvider)),
		FallbackMode:     cfg.Dashboard.FallbackMode,
		TransactionLimit: cfg.Dashboard.TransactionLimit,
		HistoryDays:      cfg.Dashboard.HistoryDays,
	})
	if cfg.Dashboard.FallbackMode {
		appLogger.Warn("Fallback mode enabled: unavailable history, daily fees and daily change are synthetic")
	}

	coinbaseTransport := httpclient.NewTransport(entity.ProviderCoinbase,
		time.Duration(cfg.Coinbase.RequestTimeoutMillis)*time.Millisecond, 0, 0, zapLogger)
	redirectURL := strings.TrimRight(cfg.Server.BaseURL, "/") + "/api/coinbase/callback"
	coinbaseAPI := client.NewCoinbaseClient(coinbaseTransport, cfg.Coinbase, redirectURL, zapLogger)
	coinbaseService := service.NewCoinbaseService(coinbaseAPI, appLogger.With("component", "CoinbaseService"),
		cfg.Coinbase.TransactionLimit, cfg.Performance.MaxConcurrentRoutines)
	sessions := restapi.NewSessionStore(cfg.Session)

	router := restapi.SetupRouter(cfg, restapi.Handlers{
		Dashboard: restapi.NewDashboardHandler(dashboardService),
		Balances:  restapi.NewBalanceHandler(balanceProviders, registry, appLogger.With("component", "BalanceHandler")),
		Coinbase: restapi.NewCoinbaseHandler(coinbaseAPI, coinbaseService, sessions, cfg.Server.FrontendURL,
			cfg.Coinbase.Configured(), appLogger.With("component", "CoinbaseHandler")),
		NFTs:   restapi.NewNFTHandler(moralis),
		Status: restapi.NewStatusHandler(cfg, started),
	}, zapLogger)
	if cfg.Swagger.Enabled {
		appLogger.Info("Swagger UI enabled", "path", "/swagger/index.html")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutdown signal received, stopping HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
		return
	}
	appLogger.Info("Wallet dashboard stopped")
}

func providerTransport(provider entity.Provider, cfg configloader.ProviderConfig, log *zap.Logger) *httpclient.Transport {
	return httpclient.NewTransport(provider, cfg.Timeout(), cfg.RateLimit, cfg.BurstLimit, log)
}
