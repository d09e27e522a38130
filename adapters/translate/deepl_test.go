package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestNewDeepLTranslatorRequiresAPIKey(t *testing.T) {
	if _, err := NewDeepLTranslator(DeepLConfig{}, zap.NewNop()); err == nil {
		t.Error("Expected an error for a missing API key")
	}
}

func TestDeepLTranslateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "DeepL-Auth-Key test-key" {
			t.Errorf("Unexpected Authorization header %q", auth)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("text"); got != "good morning" {
			t.Errorf("Unexpected text %q", got)
		}
		if got := r.PostForm.Get("source_lang"); got != "EN" {
			t.Errorf("Unexpected source_lang %q", got)
		}
		if got := r.PostForm.Get("target_lang"); got != "FR" {
			t.Errorf("Unexpected target_lang %q", got)
		}
		if got := r.PostForm.Get("context"); got != "earlier transcript" {
			t.Errorf("Unexpected context %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translations":[{"detected_source_language":"EN","text":"bonjour"}]}`))
	}))
	defer server.Close()

	translator, err := NewDeepLTranslator(DeepLConfig{APIKey: "test-key", APIBaseURL: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDeepLTranslator: %v", err)
	}

	translated, err := translator.Translate(context.Background(), "good morning", "EN", "FR", "earlier transcript")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if translated != "bonjour" {
		t.Errorf("Expected 'bonjour', got %q", translated)
	}
}

func TestDeepLTranslateEmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translations":[]}`))
	}))
	defer server.Close()

	translator, err := NewDeepLTranslator(DeepLConfig{APIKey: "test-key", APIBaseURL: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDeepLTranslator: %v", err)
	}

	translated, err := translator.Translate(context.Background(), "good morning", "EN", "FR", "")
	if err != nil {
		t.Fatalf("Expected no error for an empty result, got %v", err)
	}
	if translated != "" {
		t.Errorf("Expected empty translation, got %q", translated)
	}
}

func TestDeepLTranslateNon200IsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	translator, err := NewDeepLTranslator(DeepLConfig{APIKey: "test-key", APIBaseURL: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDeepLTranslator: %v", err)
	}

	if _, err := translator.Translate(context.Background(), "good morning", "EN", "FR", ""); err == nil {
		t.Error("Expected an error for a non-200 response")
	}
}

func TestDeepLTranslateHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	translator, err := NewDeepLTranslator(DeepLConfig{APIKey: "test-key", APIBaseURL: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDeepLTranslator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := translator.Translate(ctx, "good morning", "EN", "FR", ""); err == nil {
		t.Error("Expected an error for a canceled context")
	}
}
