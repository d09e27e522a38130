// Package config loads process configuration from the environment. A missing
// recognition credential is not fatal: the process downgrades to mock mode so
// the pipeline stays testable end to end without backend credentials.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Provider selects the speech-recognition backend
type Provider string

const (
	ProviderDeepgram Provider = "deepgram"
	ProviderGoogle   Provider = "google"
	ProviderMock     Provider = "mock"
)

// Config is the resolved process configuration
type Config struct {
	Host string
	Port string

	Provider       Provider
	DeepgramAPIKey string

	// MockTranslation is set when no translation credential is available
	MockTranslation bool
	DeepLAPIKey     string
}

// Load reads .env (when present) and the environment, applying defaults and
// the mock-mode fallbacks.
func Load(logger *zap.Logger) Config {
	_ = godotenv.Load()

	cfg := Config{
		Host:           getenv("HOST", "0.0.0.0"),
		Port:           getenv("PORT", "5002"),
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		DeepLAPIKey:    os.Getenv("DEEPL_API_KEY"),
	}

	provider := Provider(strings.ToLower(getenv("STT_PROVIDER", string(ProviderDeepgram))))
	if strings.EqualFold(os.Getenv("USE_MOCK_SPEECH"), "true") {
		provider = ProviderMock
	}

	switch provider {
	case ProviderDeepgram:
		if cfg.DeepgramAPIKey == "" {
			logger.Warn("DEEPGRAM_API_KEY not set, falling back to mock recognition")
			provider = ProviderMock
		}
	case ProviderGoogle:
		// credentials come from application default credentials; errors
		// surface when the first stream opens
	case ProviderMock:
	default:
		logger.Warn("Unknown STT provider, falling back to mock recognition",
			zap.String("provider", string(provider)))
		provider = ProviderMock
	}
	cfg.Provider = provider

	// mock recognition implies the scripted phrase-table translator; a real
	// provider without a DeepL key also degrades to it
	if provider == ProviderMock || cfg.DeepLAPIKey == "" {
		if provider != ProviderMock && cfg.DeepLAPIKey == "" {
			logger.Warn("DEEPL_API_KEY not set, falling back to mock translation")
		}
		cfg.MockTranslation = true
	}

	return cfg
}

// Address returns the host:port the HTTP server binds to
func (c Config) Address() string {
	return c.Host + ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
