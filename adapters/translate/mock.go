package translate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/screenwhisper/server/domain/repositories"
)

// phraseTable holds authored translations for the mock recognizer's script,
// keyed by phrase and target base code. An unknown phrase or language yields
// an empty result, which the pipeline degrades to echoing the original.
var phraseTable = map[string]map[string]string{
	"Hello, this is a test...": {
		"FR": "Bonjour, ceci est un test...",
		"ES": "Hola, esto es una prueba...",
		"DE": "Hallo, das ist ein Test...",
	},
	"The quick brown fox jumps over the lazy dog.": {
		"FR": "Le vif renard brun saute par-dessus le chien paresseux.",
		"ES": "El rápido zorro marrón salta sobre el perro perezoso.",
		"DE": "Der schnelle braune Fuchs springt über den faulen Hund.",
	},
	"Live captions should keep up with the speaker.": {
		"FR": "Les sous-titres en direct doivent suivre l'orateur.",
		"ES": "Los subtítulos en vivo deben seguir al orador.",
		"DE": "Live-Untertitel sollten dem Sprecher folgen.",
	},
	"Thanks everyone for joining today.": {
		"FR": "Merci à tous d'être venus aujourd'hui.",
		"ES": "Gracias a todos por acompañarnos hoy.",
		"DE": "Danke an alle, die heute dabei waren.",
	},
}

// MockTranslator resolves translations from the pre-authored phrase table
// instead of calling a backend. Event shapes are identical to live mode.
type MockTranslator struct {
	logger *zap.Logger
}

// Ensure MockTranslator implements the Translator interface
var _ repositories.Translator = (*MockTranslator)(nil)

// NewMockTranslator creates a new phrase-table translator
func NewMockTranslator(logger *zap.Logger) *MockTranslator {
	return &MockTranslator{logger: logger}
}

// Translate looks the phrase up in the authored table
func (m *MockTranslator) Translate(ctx context.Context, text, sourceLang, targetLang, contextText string) (string, error) {
	byTarget, ok := phraseTable[text]
	if !ok {
		m.logger.Debug("No authored translation for phrase", zap.String("text", text))
		return "", nil
	}

	target := strings.ToUpper(targetLang)
	if translated, ok := byTarget[target]; ok {
		return translated, nil
	}
	// regional targets fall back to their base code ("PT-BR" -> "PT")
	base, _, _ := strings.Cut(target, "-")
	if translated, ok := byTarget[base]; ok {
		return translated, nil
	}

	m.logger.Debug("No authored translation for target language",
		zap.String("targetLang", targetLang))
	return "", nil
}
