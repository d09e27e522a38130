package repositories

import "context"

// Translator abstracts a single-shot translation call. contextText carries
// recent transcripts as a hint only; an empty context must not change
// correctness. An empty translated string with a nil error means the backend
// legitimately produced no translation, which callers treat as a graceful
// degradation rather than an error.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang, contextText string) (string, error)
}
