package configloader

import (
	"strings"

	"github.com/sirupsen/logrus"
)

type lookupFunc func(key string) (string, bool)

// applyEnv overlays secrets and deployment settings from the environment.
func applyEnv(cfg *Config, lookup lookupFunc) {
	set := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*dst = v
				logrus.Debugf("Config value overridden from environment variable %s", key)
				return
			}
		}
	}

	set(&cfg.Server.Port, "PORT")
	set(&cfg.Server.Mode, "APP_ENV", "NODE_ENV")
	set(&cfg.Server.BaseURL, "API_BASE_URL")
	set(&cfg.Server.FrontendURL, "FRONTEND_URL")
	set(&cfg.Logging.Level, "LOG_LEVEL")
	set(&cfg.Session.Secret, "SESSION_SECRET")

	set(&cfg.Moralis.APIKey, "MORALIS_API_KEY")
	set(&cfg.GoldRush.APIKey, "GOLDRUSH_API_KEY", "COVALENT_API_KEY")
	set(&cfg.Ankr.APIKey, "ANKR_API_KEY")
	set(&cfg.TheGraph.APIKey, "THEGRAPH_API_KEY")
	set(&cfg.Coinbase.ClientID, "COINBASE_CLIENT_ID")
	set(&cfg.Coinbase.ClientSecret, "COINBASE_CLIENT_SECRET")

	set(&cfg.Alchemy.APIKey, "ALCHEMY_API_KEY")
	alchemyEnv := map[string]string{
		"ethereum": "ALCHEMY_API_KEY_ETH",
		"polygon":  "ALCHEMY_API_KEY_POLYGON",
		"optimism": "ALCHEMY_API_KEY_OPTIMISM",
		"arbitrum": "ALCHEMY_API_KEY_ARBITRUM",
		"base":     "ALCHEMY_API_KEY_BASE",
	}
	for network, key := range alchemyEnv {
		if v, ok := lookup(key); ok && v != "" {
			if cfg.Alchemy.APIKeys == nil {
				cfg.Alchemy.APIKeys = make(map[string]string)
			}
			cfg.Alchemy.APIKeys[network] = v
		}
	}

	if v, ok := lookup("FALLBACK_MODE"); ok && v != "" {
		cfg.Dashboard.FallbackMode = strings.EqualFold(v, "true") || v == "1"
	}
}
