// Package providers initializes and registers the concrete data providers
// with a provider registry.
package providers

import (
	"github.com/seenimoa/fairvalue/internal/config"
	"github.com/seenimoa/fairvalue/internal/infra"
	"github.com/seenimoa/fairvalue/internal/provider"
	"github.com/seenimoa/fairvalue/internal/providers/fmp"
	"github.com/seenimoa/fairvalue/pkg/logger"
)

// RegisterAll creates and registers all available providers with the
// global registry.
func RegisterAll(cfg config.FMPConfig, log *logger.Logger) error {
	return RegisterAllTo(provider.Global(), cfg, log)
}

// RegisterAllTo registers all available providers to the given registry.
// Providers that require an API key are skipped, with a warning, when the
// key is not configured.
func RegisterAllTo(reg *provider.Registry, cfg config.FMPConfig, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	// --- FMP (requires API key) ---
	if cfg.APIKey == "" {
		log.Warn("FMP API key not set; set FMP_API_KEY or fmp.api_key to enable the fmp provider")
		return nil
	}

	client := infra.NewClient(cfg.Timeout(), infra.RetryConfig{MaxRetries: cfg.MaxRetries}, log)
	fp := fmp.NewWithOptions(fmp.Options{
		BaseURL:   cfg.BaseURL,
		CacheTTL:  cfg.CacheTTL(),
		RateLimit: cfg.RateLimit,
		Client:    client,
	})
	if err := fp.Init(map[string]string{"api_key": cfg.APIKey}); err != nil {
		return err
	}
	if err := reg.Register(fp); err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"provider": fp.Info().Name,
		"base_url": fp.BaseURL(),
		"models":   len(fp.SupportedModels()),
	}).Debug("provider registered")
	return nil
}
