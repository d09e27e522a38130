package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/screenwhisper/server/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://api-free.deepl.com/v2"
	defaultTimeout    = 15 * time.Second
)

// DeepLConfig holds configuration for the DeepL translator.
// Required fields:
// - APIKey: Your DeepL API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the DeepL API (default: "https://api-free.deepl.com/v2")
// - Timeout: Per-request HTTP timeout (default: 15s)
type DeepLConfig struct {
	APIKey     string        // Required: Your DeepL API key
	APIBaseURL string        // Optional: The base URL for the DeepL API
	Timeout    time.Duration // Optional: Per-request HTTP timeout
}

// DeepLTranslator implements Translator using the DeepL REST API
type DeepLTranslator struct {
	apiKey     string
	apiBaseURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure DeepLTranslator implements the Translator interface
var _ repositories.Translator = (*DeepLTranslator)(nil)

// NewDeepLTranslator creates a new DeepL translator instance
func NewDeepLTranslator(config DeepLConfig, logger *zap.Logger) (*DeepLTranslator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("deepl API key is required")
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &DeepLTranslator{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// deepLResponse is the subset of the translate response we consume
type deepLResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// Translate performs a single-shot translation call. An empty result with a
// nil error means the backend returned no translation.
func (t *DeepLTranslator) Translate(ctx context.Context, text, sourceLang, targetLang, contextText string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", targetLang)
	if sourceLang != "" {
		form.Set("source_lang", sourceLang)
	}
	if contextText != "" {
		form.Set("context", contextText)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.apiBaseURL+"/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+t.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("deepl returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out deepLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}

	if len(out.Translations) == 0 || out.Translations[0].Text == "" {
		t.logger.Warn("DeepL returned empty translation",
			zap.String("sourceLang", sourceLang),
			zap.String("targetLang", targetLang))
		return "", nil
	}

	return out.Translations[0].Text, nil
}
