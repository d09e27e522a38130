package stt

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/screenwhisper/server/domain/entities"
	"github.com/screenwhisper/server/domain/repositories"
)

// GoogleRecognizer implements Recognizer on Google Cloud Speech-to-Text.
// Credentials come from the ambient Google application default credentials.
type GoogleRecognizer struct {
	logger *zap.Logger
}

// Ensure GoogleRecognizer implements the Recognizer interface
var _ repositories.Recognizer = (*GoogleRecognizer)(nil)

// NewGoogleRecognizer creates a new Google Cloud Speech recognizer
func NewGoogleRecognizer(logger *zap.Logger) *GoogleRecognizer {
	return &GoogleRecognizer{logger: logger}
}

// Open creates a streaming recognize session and starts the reader goroutine
func (g *GoogleRecognizer) Open(ctx context.Context, config repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}

	// the stream outlives the start call, so it cannot run on the caller's
	// context; its lifetime ends in Close
	streamCtx, streamCancel := context.WithCancel(context.Background())

	stream, err := client.StreamingRecognize(streamCtx)
	if err != nil {
		streamCancel()
		client.Close()
		return nil, fmt.Errorf("create streaming recognize: %w", err)
	}

	encoding, err := audioEncoding(config.Encoding)
	if err != nil {
		streamCancel()
		stream.CloseSend()
		client.Close()
		return nil, err
	}

	recognitionConfig := &speechpb.RecognitionConfig{
		Encoding:                   encoding,
		SampleRateHertz:            int32(config.SampleRate),
		LanguageCode:               config.Language,
		EnableAutomaticPunctuation: config.Punctuate,
		EnableWordTimeOffsets:      false,
	}
	if config.Diarize {
		recognitionConfig.DiarizationConfig = &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
		}
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config:         recognitionConfig,
				InterimResults: config.InterimResults,
			},
		},
	}); err != nil {
		streamCancel()
		stream.CloseSend()
		client.Close()
		return nil, fmt.Errorf("send streaming config: %w", err)
	}

	g.logger.Info("Google Speech stream opened",
		zap.String("language", config.Language),
		zap.Int("sampleRate", config.SampleRate))

	gs := &googleStream{
		client: client,
		stream: stream,
		cancel: streamCancel,
		events: make(chan entities.TranscriptEvent, 16),
		done:   make(chan struct{}),
		logger: g.logger,
	}
	go gs.readLoop()

	return gs, nil
}

type googleStream struct {
	client *speech.Client
	stream speechpb.Speech_StreamingRecognizeClient
	cancel context.CancelFunc
	events chan entities.TranscriptEvent
	done   chan struct{}
	logger *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Send forwards one audio frame to the recognize stream
func (s *googleStream) Send(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: frame,
		},
	}); err != nil {
		return fmt.Errorf("send audio frame: %w", err)
	}
	return nil
}

func (s *googleStream) Events() <-chan entities.TranscriptEvent {
	return s.events
}

// Close is idempotent and unblocks the reader goroutine
func (s *googleStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
		_ = s.stream.CloseSend()
		if s.client != nil {
			_ = s.client.Close()
		}
	})
	return nil
}

func (s *googleStream) readLoop() {
	defer close(s.events)

	for {
		resp, err := s.stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Info("Google Speech stream closed", zap.Error(err))
			}
			return
		}

		for _, result := range resp.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			alt := result.Alternatives[0]
			if alt.Transcript == "" {
				continue
			}

			event := entities.TranscriptEvent{
				SpeakerID: majorityWordSpeaker(alt.Words),
				Text:      alt.Transcript,
				IsFinal:   result.IsFinal,
			}

			select {
			case s.events <- event:
			case <-s.done:
				return
			}
		}
	}
}

func majorityWordSpeaker(words []*speechpb.WordInfo) string {
	counts := make(map[int]int)
	for _, word := range words {
		if word.SpeakerTag != 0 {
			counts[int(word.SpeakerTag)]++
		}
	}
	return majoritySpeaker(counts)
}

// audioEncoding converts the wire encoding name to the Speech API enum
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
