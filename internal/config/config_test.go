package config

import (
	"testing"

	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	t.Setenv("HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("STT_PROVIDER", "")
	t.Setenv("USE_MOCK_SPEECH", "")
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("DEEPL_API_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load(zap.NewNop())

	if cfg.Address() != "0.0.0.0:5002" {
		t.Errorf("Expected default address 0.0.0.0:5002, got %s", cfg.Address())
	}
	// no deepgram key means the process degrades to mock mode
	if cfg.Provider != ProviderMock {
		t.Errorf("Expected mock provider fallback, got %s", cfg.Provider)
	}
	if !cfg.MockTranslation {
		t.Error("Expected mock translation without a DeepL key")
	}
}

func TestLoadDeepgramWithKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPGRAM_API_KEY", "dg-key")
	t.Setenv("DEEPL_API_KEY", "dl-key")

	cfg := Load(zap.NewNop())

	if cfg.Provider != ProviderDeepgram {
		t.Errorf("Expected deepgram provider, got %s", cfg.Provider)
	}
	if cfg.MockTranslation {
		t.Error("Expected real translation with a DeepL key")
	}
}

func TestLoadMockOverridesProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPGRAM_API_KEY", "dg-key")
	t.Setenv("USE_MOCK_SPEECH", "true")

	cfg := Load(zap.NewNop())

	if cfg.Provider != ProviderMock {
		t.Errorf("Expected mock provider, got %s", cfg.Provider)
	}
	if !cfg.MockTranslation {
		t.Error("Expected mock translation in mock mode")
	}
}

func TestLoadGoogleProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("STT_PROVIDER", "Google")
	t.Setenv("DEEPL_API_KEY", "dl-key")

	cfg := Load(zap.NewNop())

	if cfg.Provider != ProviderGoogle {
		t.Errorf("Expected google provider, got %s", cfg.Provider)
	}
}

func TestLoadUnknownProviderFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("STT_PROVIDER", "whisper")

	cfg := Load(zap.NewNop())

	if cfg.Provider != ProviderMock {
		t.Errorf("Expected mock provider fallback, got %s", cfg.Provider)
	}
}

func TestLoadHostPortOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8080")

	cfg := Load(zap.NewNop())

	if cfg.Address() != "127.0.0.1:8080" {
		t.Errorf("Expected 127.0.0.1:8080, got %s", cfg.Address())
	}
}
