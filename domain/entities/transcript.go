package entities

import "strings"

// UnknownSpeaker is the speaker identifier used when the recognition backend
// did not attribute the utterance to anyone.
const UnknownSpeaker = "unknown"

// TranscriptEvent is one recognition result for a session. Interim events may
// be revised by later events; final events will not.
type TranscriptEvent struct {
	SpeakerID string `json:"speaker_id"`
	Text      string `json:"text"`
	IsFinal   bool   `json:"is_final"`
}

// TranslationResult pairs a final transcript with its translation.
// TranslatedText equals OriginalText when translation failed or was a no-op.
type TranslationResult struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// ContextWindow keeps the most recent final transcripts of a session and
// joins them into a single hint string for the translation backend. The
// oldest entry is evicted once the window is full. A window belongs to
// exactly one session and is never shared.
type ContextWindow struct {
	entries []string
	limit   int
}

// NewContextWindow creates a window holding at most limit entries
func NewContextWindow(limit int) *ContextWindow {
	if limit < 1 {
		limit = 1
	}
	return &ContextWindow{limit: limit}
}

// Add appends a transcript, evicting the oldest entry when full
func (w *ContextWindow) Add(text string) {
	if len(w.entries) == w.limit {
		w.entries = w.entries[1:]
	}
	w.entries = append(w.entries, text)
}

// Joined returns the window contents as one space-separated string
func (w *ContextWindow) Joined() string {
	return strings.Join(w.entries, " ")
}

// Entries returns a copy of the buffered transcripts, oldest first
func (w *ContextWindow) Entries() []string {
	out := make([]string, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the number of buffered transcripts
func (w *ContextWindow) Len() int {
	return len(w.entries)
}

// Clear drops all buffered transcripts
func (w *ContextWindow) Clear() {
	w.entries = nil
}
