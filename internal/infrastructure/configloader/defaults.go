package configloader

import (
	"strings"

	"github.com/sirupsen/logrus"
)

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "3001"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "development"
	}
	cfg.Server.Mode = strings.ToLower(cfg.Server.Mode)
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:" + cfg.Server.Port
		logrus.Infof("Server.BaseURL not set, defaulting to %s", cfg.Server.BaseURL)
	}
	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = "http://localhost:3002"
		logrus.Infof("Server.FrontendURL not set, defaulting to %s", cfg.Server.FrontendURL)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 120
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	providerDefaults(&cfg.Moralis, "Moralis", "https://deep-index.moralis.io/api/v2", 10000)
	providerDefaults(&cfg.GoldRush, "GoldRush", "https://api.covalenthq.com/v1", 10000)
	providerDefaults(&cfg.Ankr, "Ankr", "https://rpc.ankr.com/multichain", 10000)
	providerDefaults(&cfg.Alchemy.ProviderConfig, "Alchemy", "https://eth-mainnet.g.alchemy.com", 10000)
	providerDefaults(&cfg.TheGraph.ProviderConfig, "TheGraph", "https://api.thegraph.com", 10000)
	if cfg.Alchemy.URLTemplate == "" {
		cfg.Alchemy.URLTemplate = "https://%s.g.alchemy.com/v2/%s"
	}
	if cfg.Alchemy.MetadataTimeoutMillis <= 0 {
		cfg.Alchemy.MetadataTimeoutMillis = 5000
	}
	if cfg.TheGraph.Protocol == "" {
		cfg.TheGraph.Protocol = "Balancer"
	}
	if len(cfg.TheGraph.Endpoints) == 0 {
		cfg.TheGraph.Endpoints = map[string]string{
			"ethereum": "https://api.thegraph.com/subgraphs/name/balancer-labs/balancer-v2",
			"polygon":  "https://api.thegraph.com/subgraphs/name/balancer-labs/balancer-polygon-v2",
			"arbitrum": "https://api.thegraph.com/subgraphs/name/balancer-labs/balancer-arbitrum-v2",
		}
		logrus.Infof("TheGraph.Endpoints not set, defaulting to Balancer subgraphs for %d networks", len(cfg.TheGraph.Endpoints))
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}
	if cfg.TokenPriceSvc.MaxTokensPerBatchRequest <= 0 {
		cfg.TokenPriceSvc.MaxTokensPerBatchRequest = 30 // DEXScreener limit
		logrus.Infof("MaxTokensPerBatchRequest for TokenPriceSvc not set, defaulting to %d", cfg.TokenPriceSvc.MaxTokensPerBatchRequest)
	}
	if cfg.TokenPriceSvc.CacheTTLMinutes <= 0 {
		cfg.TokenPriceSvc.CacheTTLMinutes = 10
	}

	if cfg.Coinbase.AuthorizeURL == "" {
		cfg.Coinbase.AuthorizeURL = "https://www.coinbase.com/oauth/authorize"
	}
	if cfg.Coinbase.TokenURL == "" {
		cfg.Coinbase.TokenURL = "https://api.coinbase.com/oauth/token"
	}
	if cfg.Coinbase.APIBaseURL == "" {
		cfg.Coinbase.APIBaseURL = "https://api.coinbase.com"
	}
	if cfg.Coinbase.APIVersion == "" {
		cfg.Coinbase.APIVersion = "2022-01-01"
	}
	if len(cfg.Coinbase.Scopes) == 0 {
		cfg.Coinbase.Scopes = []string{"wallet:accounts:read", "wallet:transactions:read", "wallet:buys:read", "wallet:sells:read"}
	}
	if cfg.Coinbase.TransactionLimit <= 0 {
		cfg.Coinbase.TransactionLimit = 10
	}
	if cfg.Coinbase.RequestTimeoutMillis <= 0 {
		cfg.Coinbase.RequestTimeoutMillis = 10000
	}

	if len(cfg.Dashboard.DefaultNetworks) == 0 {
		cfg.Dashboard.DefaultNetworks = []string{"ethereum", "polygon", "bsc", "optimism", "arbitrum"}
	}
	if cfg.Dashboard.DefaultProvider == "" {
		cfg.Dashboard.DefaultProvider = "moralis"
	}
	if cfg.Dashboard.TransactionLimit <= 0 {
		cfg.Dashboard.TransactionLimit = 10
	}
	if cfg.Dashboard.FeeTransactionLimit <= 0 {
		cfg.Dashboard.FeeTransactionLimit = 20
	}
	if cfg.Dashboard.HistoryDays <= 0 {
		cfg.Dashboard.HistoryDays = 30
	}

	if cfg.Session.Secret == "" {
		cfg.Session.Secret = "wallet-dashboard-secret"
		logrus.Warn("Session.Secret not set, using the built-in development secret")
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "wallet_dashboard_session"
	}
	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 24 * 60
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Swagger.SpecPath == "" {
		cfg.Swagger.SpecPath = "./docs/swagger.yaml"
	}
}

func providerDefaults(p *ProviderConfig, name, baseURL string, timeoutMillis int64) {
	if p.BaseURL == "" {
		p.BaseURL = baseURL
		logrus.Infof("%s.BaseURL not set, defaulting to %s", name, baseURL)
	}
	if p.RequestTimeoutMillis <= 0 {
		p.RequestTimeoutMillis = timeoutMillis
	}
	if p.BurstLimit <= 0 {
		p.BurstLimit = 5
	}
	if p.APIKey == "" {
		logrus.Warnf("%s API key not configured", name)
	}
}
