// Package planner resolves client-supplied language pairs into the codes the
// recognition and translation backends actually accept. Every function here
// is pure: no I/O, total over all inputs.
package planner

import "strings"

// Recognition model identifiers, newest first
const (
	ModelNova3    = "nova-3"
	ModelNova2    = "nova-2"
	ModelEnhanced = "enhanced"
)

// nova2Languages are the base subtags served by the second-tier model.
// Anything outside this list (and English) falls back to the generic model.
var nova2Languages = map[string]bool{
	"bg": true, "ca": true, "cs": true, "da": true, "de": true, "el": true,
	"es": true, "et": true, "fi": true, "fr": true, "hi": true, "hu": true,
	"id": true, "it": true, "ja": true, "ko": true, "lt": true, "lv": true,
	"ms": true, "nl": true, "no": true, "pl": true, "pt": true, "ro": true,
	"ru": true, "sk": true, "sv": true, "th": true, "tr": true, "uk": true,
	"vi": true, "zh": true,
}

// translationSources are the source codes the translation backend accepts
var translationSources = map[string]bool{
	"BG": true, "CS": true, "DA": true, "DE": true, "EL": true, "EN": true,
	"ES": true, "ET": true, "FI": true, "FR": true, "HU": true, "ID": true,
	"IT": true, "JA": true, "KO": true, "LT": true, "LV": true, "NB": true,
	"NL": true, "PL": true, "PT": true, "RO": true, "RU": true, "SK": true,
	"SL": true, "SV": true, "TR": true, "UK": true, "ZH": true,
}

// translationTargets are the target codes the translation backend accepts,
// including the regional variants it distinguishes on output.
var translationTargets = map[string]bool{
	"BG": true, "CS": true, "DA": true, "DE": true, "EL": true,
	"EN": true, "EN-GB": true, "EN-US": true,
	"ES": true, "ET": true, "FI": true, "FR": true, "HU": true, "ID": true,
	"IT": true, "JA": true, "KO": true, "LT": true, "LV": true, "NB": true,
	"NL": true, "PL": true,
	"PT": true, "PT-BR": true, "PT-PT": true,
	"RO": true, "RU": true, "SK": true, "SL": true, "SV": true, "TR": true,
	"UK": true, "ZH": true,
}

// Plan is the resolved language configuration for one session
type Plan struct {
	RecognitionLanguage string
	RecognitionModel    string
	TranslationSource   string
	TranslationTarget   string

	// SkipTranslation is set when the target language is not supported by
	// the translation backend or the pair is a no-op after normalization.
	// The pipeline then echoes the original text instead of translating.
	SkipTranslation bool
}

// Resolve maps a raw (source, target) pair to backend language codes.
// Unsupported inputs never fail the session: an unknown source keeps its
// uppercased base subtag, an unknown target disables translation.
func Resolve(rawSource, rawTarget string) Plan {
	recognitionLanguage := rawSource
	if recognitionLanguage == "" {
		recognitionLanguage = "en-US"
	}

	source := strings.ToUpper(BaseSubtag(recognitionLanguage))
	target := strings.ToUpper(rawTarget)

	plan := Plan{
		RecognitionLanguage: recognitionLanguage,
		RecognitionModel:    RecognitionModel(recognitionLanguage),
		TranslationSource:   source,
		TranslationTarget:   target,
	}

	if !translationTargets[target] {
		plan.SkipTranslation = true
		return plan
	}
	if !translationSources[source] {
		// keep the uppercased base subtag; translation will degrade to echo
		// through the error path if the backend rejects it
		return plan
	}
	if source == strings.ToUpper(BaseSubtag(target)) {
		plan.SkipTranslation = true
	}
	return plan
}

// RecognitionModel selects the acoustic model for a language tag. English
// gets the newest model, the nova-2 allow list the second tier, everything
// else the generic fallback. Total over all inputs.
func RecognitionModel(language string) string {
	base := BaseSubtag(language)
	switch {
	case base == "en":
		return ModelNova3
	case nova2Languages[base]:
		return ModelNova2
	default:
		return ModelEnhanced
	}
}

// BaseSubtag strips the region qualifier from a locale tag ("en-US" -> "en")
func BaseSubtag(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(base)
}
