package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/screenwhisper/server/domain/entities"
	"github.com/screenwhisper/server/domain/repositories"
)

const defaultListenURL = "wss://api.deepgram.com/v1/listen"

// DeepgramConfig holds configuration for the Deepgram recognizer.
// Required fields:
// - APIKey: Your Deepgram API key
// Optional fields with defaults:
// - ListenURL: The live transcription endpoint (default: "wss://api.deepgram.com/v1/listen")
type DeepgramConfig struct {
	APIKey    string // Required: Your Deepgram API key
	ListenURL string // Optional: The live transcription endpoint
}

// DeepgramRecognizer opens live transcription streams against the Deepgram
// listen API over a websocket.
type DeepgramRecognizer struct {
	apiKey    string
	listenURL string
	logger    *zap.Logger
}

// Ensure DeepgramRecognizer implements the Recognizer interface
var _ repositories.Recognizer = (*DeepgramRecognizer)(nil)

// NewDeepgramRecognizer creates a new Deepgram recognizer
func NewDeepgramRecognizer(config DeepgramConfig, logger *zap.Logger) (*DeepgramRecognizer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("deepgram API key is required")
	}

	listenURL := config.ListenURL
	if listenURL == "" {
		listenURL = defaultListenURL
	}

	return &DeepgramRecognizer{
		apiKey:    config.APIKey,
		listenURL: listenURL,
		logger:    logger,
	}, nil
}

// Open dials the live transcription endpoint and starts the reader goroutine
func (r *DeepgramRecognizer) Open(ctx context.Context, config repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	endpoint, err := listenEndpoint(r.listenURL, config)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Token "+r.apiKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial deepgram (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial deepgram: %w", err)
	}

	r.logger.Info("Deepgram connection established",
		zap.String("language", config.Language),
		zap.String("model", config.Model))

	stream := &deepgramStream{
		conn:   conn,
		events: make(chan entities.TranscriptEvent, 16),
		done:   make(chan struct{}),
		logger: r.logger,
	}
	go stream.readLoop()

	return stream, nil
}

// listenEndpoint builds the listen URL from the recognition parameters
func listenEndpoint(base string, config repositories.RecognitionConfig) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse listen URL: %w", err)
	}

	params := url.Values{}
	params.Set("diarize", strconv.FormatBool(config.Diarize))
	params.Set("punctuate", strconv.FormatBool(config.Punctuate))
	params.Set("filler_words", strconv.FormatBool(config.FillerWords))
	params.Set("interim_results", strconv.FormatBool(config.InterimResults))
	params.Set("language", config.Language)
	params.Set("model", config.Model)
	params.Set("encoding", config.Encoding)
	params.Set("sample_rate", strconv.Itoa(config.SampleRate))
	u.RawQuery = params.Encode()

	return u.String(), nil
}

type deepgramStream struct {
	conn   *websocket.Conn
	events chan entities.TranscriptEvent
	done   chan struct{}
	logger *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Send forwards one audio frame as a binary websocket message
func (s *deepgramStream) Send(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("send audio frame: %w", err)
	}
	return nil
}

func (s *deepgramStream) Events() <-chan entities.TranscriptEvent {
	return s.events
}

// Close is idempotent and unblocks the reader goroutine
func (s *deepgramStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
	return nil
}

// listenResponse is the subset of the live transcription message we consume
type listenResponse struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
			Words      []struct {
				Word    string `json:"word"`
				Speaker *int   `json:"speaker"`
			} `json:"words"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (s *deepgramStream) readLoop() {
	defer close(s.events)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Info("Deepgram connection closed", zap.Error(err))
			}
			return
		}

		var res listenResponse
		if err := json.Unmarshal(payload, &res); err != nil {
			s.logger.Warn("Skipping malformed recognition message", zap.Error(err))
			continue
		}

		event, ok := transcriptEvent(res)
		if !ok {
			continue
		}

		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}

// transcriptEvent filters metadata frames and empty transcripts, and derives
// the speaker by majority vote over the per-word speaker tags.
func transcriptEvent(res listenResponse) (entities.TranscriptEvent, bool) {
	if res.Type != "" && res.Type != "Results" {
		return entities.TranscriptEvent{}, false
	}
	if len(res.Channel.Alternatives) == 0 {
		return entities.TranscriptEvent{}, false
	}

	alt := res.Channel.Alternatives[0]
	if alt.Transcript == "" {
		return entities.TranscriptEvent{}, false
	}

	counts := make(map[int]int)
	for _, word := range alt.Words {
		if word.Speaker != nil {
			counts[*word.Speaker]++
		}
	}

	return entities.TranscriptEvent{
		SpeakerID: majoritySpeaker(counts),
		Text:      alt.Transcript,
		IsFinal:   res.IsFinal,
	}, true
}

func majoritySpeaker(counts map[int]int) string {
	best, bestCount := 0, 0
	for speaker, count := range counts {
		if count > bestCount || (count == bestCount && speaker < best) {
			best, bestCount = speaker, count
		}
	}
	if bestCount == 0 {
		return entities.UnknownSpeaker
	}
	return strconv.Itoa(best)
}
