package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	Mode           string   `yaml:"mode"` // development or production
	BaseURL        string   `yaml:"baseURL"`
	FrontendURL    string   `yaml:"frontendURL"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	ReadTimeout    int      `yaml:"readTimeout"`
	WriteTimeout   int      `yaml:"writeTimeout"`
	IdleTimeout    int      `yaml:"idleTimeout"`
}

// Production reports whether error details must be hidden from clients.
func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.Mode, "production")
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProviderConfig holds the connection settings shared by every upstream provider.
type ProviderConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RateLimit            float64 `yaml:"rateLimit"` // requests per second, 0 disables limiting
	BurstLimit           int     `yaml:"burstLimit"`
}

// Timeout returns the per-call timeout.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.RequestTimeoutMillis) * time.Millisecond
}

// Configured reports whether an API key is present.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// AlchemyConfig holds Alchemy JSON-RPC settings. URLTemplate receives the network
// subdomain and the API key.
type AlchemyConfig struct {
	ProviderConfig        `yaml:",inline"`
	URLTemplate           string            `yaml:"urlTemplate"`
	APIKeys               map[string]string `yaml:"apiKeys"` // per canonical network, falls back to apiKey
	MetadataTimeoutMillis int64             `yaml:"metadataTimeoutMillis"`
}

// KeyFor returns the API key for a canonical network.
func (a AlchemyConfig) KeyFor(network string) string {
	if k := a.APIKeys[network]; k != "" {
		return k
	}
	return a.APIKey
}

// Configured reports whether any Alchemy key is present.
func (a AlchemyConfig) Configured() bool {
	if a.APIKey != "" {
		return true
	}
	for _, k := range a.APIKeys {
		if k != "" {
			return true
		}
	}
	return false
}

// TheGraphConfig holds subgraph endpoints keyed by canonical network.
type TheGraphConfig struct {
	ProviderConfig `yaml:",inline"`
	Protocol       string            `yaml:"protocol"`
	Endpoints      map[string]string `yaml:"endpoints"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// TokenPriceServiceConfig holds configuration for the TokenPriceService.
type TokenPriceServiceConfig struct {
	MaxTokensPerBatchRequest int `yaml:"maxTokensPerBatchRequest"`
	CacheTTLMinutes          int `yaml:"cacheTTLMinutes"`
}

// CoinbaseConfig holds Coinbase OAuth settings.
type CoinbaseConfig struct {
	ClientID             string   `yaml:"clientID"`
	ClientSecret         string   `yaml:"clientSecret"`
	AuthorizeURL         string   `yaml:"authorizeURL"`
	TokenURL             string   `yaml:"tokenURL"`
	APIBaseURL           string   `yaml:"apiBaseURL"`
	APIVersion           string   `yaml:"apiVersion"`
	Scopes               []string `yaml:"scopes"`
	TransactionLimit     int      `yaml:"transactionLimit"`
	RequestTimeoutMillis int64    `yaml:"requestTimeoutMillis"`
}

// Configured reports whether OAuth client credentials are present.
func (c CoinbaseConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// DashboardConfig holds orchestrator defaults.
type DashboardConfig struct {
	DefaultNetworks     []string `yaml:"defaultNetworks"`
	DefaultProvider     string   `yaml:"defaultProvider"`
	FallbackMode        bool     `yaml:"fallbackMode"`
	TransactionLimit    int      `yaml:"transactionLimit"`
	FeeTransactionLimit int      `yaml:"feeTransactionLimit"`
	HistoryDays         int      `yaml:"historyDays"`
}

// SessionConfig holds the session cookie settings.
type SessionConfig struct {
	Secret     string `yaml:"secret"`
	CookieName string `yaml:"cookieName"`
	TTLMinutes int    `yaml:"ttlMinutes"`
	Secure     bool   `yaml:"secure"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecPath string `yaml:"specPath"`
}

// Config is the top-level configuration structure.
type Config struct {
	Version       string                  `yaml:"version"`
	Server        ServerConfig            `yaml:"server"`
	Logging       LoggingConfig           `yaml:"logging"`
	Moralis       ProviderConfig          `yaml:"moralis"`
	GoldRush      ProviderConfig          `yaml:"goldrush"`
	Ankr          ProviderConfig          `yaml:"ankr"`
	Alchemy       AlchemyConfig           `yaml:"alchemy"`
	TheGraph      TheGraphConfig          `yaml:"thegraph"`
	DEXScreener   DEXScreenerConfig       `yaml:"dexScreener"`
	TokenPriceSvc TokenPriceServiceConfig `yaml:"tokenPriceService"`
	Coinbase      CoinbaseConfig          `yaml:"coinbase"`
	Dashboard     DashboardConfig         `yaml:"dashboard"`
	Session       SessionConfig           `yaml:"session"`
	Performance   PerformanceConfig       `yaml:"performance"`
	Swagger       SwaggerConfig           `yaml:"swagger"`
}

// Load reads the YAML configuration file at path, overlays environment variables and
// applies defaults. A missing file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults and environment", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	applyEnv(&cfg, os.LookupEnv)
	applyDefaults(&cfg)

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}
