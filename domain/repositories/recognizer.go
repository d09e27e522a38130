package repositories

import (
	"context"

	"github.com/screenwhisper/server/domain/entities"
)

// RecognitionConfig carries the parameters for one live recognition stream
type RecognitionConfig struct {
	Language       string `json:"language"`
	Model          string `json:"model"`
	SampleRate     int    `json:"sample_rate"`
	Encoding       string `json:"encoding"`
	Diarize        bool   `json:"diarize"`
	Punctuate      bool   `json:"punctuate"`
	FillerWords    bool   `json:"filler_words"`
	InterimResults bool   `json:"interim_results"`
}

// Recognizer abstracts a streaming speech-recognition backend. Opening the
// stream is the only place connection and auth errors surface; callers treat
// an Open failure as fatal for the session and do not retry.
type Recognizer interface {
	Open(ctx context.Context, config RecognitionConfig) (RecognitionStream, error)
}

// RecognitionStream is one live connection to the recognition backend.
// Send forwards a single audio frame; a failed send is transient and the
// caller may keep sending. Events yields transcript events until the backend
// closes the connection or Close is called; the channel is closed when the
// stream ends. Close is idempotent and safe to call from a goroutine other
// than the one reading Events.
type RecognitionStream interface {
	Send(frame []byte) error
	Events() <-chan entities.TranscriptEvent
	Close() error
}
