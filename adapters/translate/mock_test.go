package translate

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestMockTranslatorKnownPhrase(t *testing.T) {
	translator := NewMockTranslator(zap.NewNop())

	translated, err := translator.Translate(context.Background(),
		"Hello, this is a test...", "EN", "FR", "")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if translated != "Bonjour, ceci est un test..." {
		t.Errorf("Expected authored French phrase, got %q", translated)
	}
}

func TestMockTranslatorRegionalTargetFallsBackToBase(t *testing.T) {
	translator := NewMockTranslator(zap.NewNop())

	translated, err := translator.Translate(context.Background(),
		"Hello, this is a test...", "EN", "fr-CA", "")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if translated != "Bonjour, ceci est un test..." {
		t.Errorf("Expected base-code fallback, got %q", translated)
	}
}

func TestMockTranslatorUnknownPhraseIsEmpty(t *testing.T) {
	translator := NewMockTranslator(zap.NewNop())

	translated, err := translator.Translate(context.Background(),
		"never scripted", "EN", "FR", "")
	if err != nil {
		t.Fatalf("Expected no error for an unknown phrase, got %v", err)
	}
	if translated != "" {
		t.Errorf("Expected empty result, got %q", translated)
	}
}

func TestMockTranslatorUnknownTargetIsEmpty(t *testing.T) {
	translator := NewMockTranslator(zap.NewNop())

	translated, err := translator.Translate(context.Background(),
		"Hello, this is a test...", "EN", "JA", "")
	if err != nil {
		t.Fatalf("Expected no error for an unknown target, got %v", err)
	}
	if translated != "" {
		t.Errorf("Expected empty result, got %q", translated)
	}
}
