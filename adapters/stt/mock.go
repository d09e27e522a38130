package stt

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/screenwhisper/server/domain/entities"
	"github.com/screenwhisper/server/domain/repositories"
)

// ScriptPhrases are the canned utterances emitted in mock mode. The mock
// translator carries authored translations for each of them, so the whole
// pipeline can run end to end without backend credentials.
var ScriptPhrases = []string{
	"Hello, this is a test...",
	"The quick brown fox jumps over the lazy dog.",
	"Live captions should keep up with the speaker.",
	"Thanks everyone for joining today.",
}

// MockRecognizer is a scripted recognizer for environments without a backend
// credential. Each audio frame probabilistically triggers one scripted
// utterance, emitted first as an interim event and then, after a short pause,
// as the identical final event.
type MockRecognizer struct {
	logger *zap.Logger

	// Probability of emitting an utterance per received frame
	Probability float64
	// Pause between the interim and the final event
	Pause time.Duration
	// Phrases cycled through by successive emissions
	Phrases []string

	rng *rand.Rand
	mu  sync.Mutex
}

// Ensure MockRecognizer implements the Recognizer interface
var _ repositories.Recognizer = (*MockRecognizer)(nil)

// NewMockRecognizer creates a mock recognizer with the default script
func NewMockRecognizer(logger *zap.Logger) *MockRecognizer {
	return &MockRecognizer{
		logger:      logger,
		Probability: 0.3,
		Pause:       300 * time.Millisecond,
		Phrases:     ScriptPhrases,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed makes the frame-to-utterance rolls reproducible
func (m *MockRecognizer) Seed(seed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rng = rand.New(rand.NewSource(seed))
}

// Open creates a scripted stream; it never fails
func (m *MockRecognizer) Open(ctx context.Context, config repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	m.logger.Info("Opening mock recognition stream",
		zap.String("language", config.Language),
		zap.String("model", config.Model))

	return &mockStream{
		parent: m,
		events: make(chan entities.TranscriptEvent, 16),
		done:   make(chan struct{}),
	}, nil
}

type mockStream struct {
	parent *MockRecognizer
	events chan entities.TranscriptEvent
	done   chan struct{}

	// mu guards next, closed and the emitter count; emitMu serializes
	// utterances so interims and finals never interleave
	mu       sync.Mutex
	next     int
	closed   bool
	emitters sync.WaitGroup
	emitMu   sync.Mutex
}

var errStreamClosed = errors.New("recognition stream closed")

// Send rolls the per-frame probability and, on a hit, schedules the next
// scripted utterance.
func (s *mockStream) Send(frame []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errStreamClosed
	}
	if len(frame) == 0 {
		s.mu.Unlock()
		return nil
	}

	s.parent.mu.Lock()
	roll := s.parent.rng.Float64()
	s.parent.mu.Unlock()

	var phrase string
	if roll < s.parent.Probability && len(s.parent.Phrases) > 0 {
		phrase = s.parent.Phrases[s.next%len(s.parent.Phrases)]
		s.next++
		// registered while the stream is provably open; Close waits for it
		s.emitters.Add(1)
	}
	s.mu.Unlock()

	if phrase == "" {
		return nil
	}
	go s.emit(phrase)
	return nil
}

// emit delivers one interim then the identical final event. emitMu keeps
// utterances from interleaving when frames arrive faster than the pause.
func (s *mockStream) emit(text string) {
	defer s.emitters.Done()

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	event := entities.TranscriptEvent{
		SpeakerID: "0",
		Text:      text,
		IsFinal:   false,
	}
	select {
	case s.events <- event:
	case <-s.done:
		return
	}

	select {
	case <-time.After(s.parent.Pause):
	case <-s.done:
		return
	}

	event.IsFinal = true
	select {
	case s.events <- event:
	case <-s.done:
	}
}

func (s *mockStream) Events() <-chan entities.TranscriptEvent {
	return s.events
}

// Close is idempotent; in-flight emissions are abandoned. The events channel
// closes only after every pending emitter has returned, so an emitter can
// never send on a closed channel.
func (s *mockStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	go func() {
		s.emitters.Wait()
		close(s.events)
	}()
	return nil
}
