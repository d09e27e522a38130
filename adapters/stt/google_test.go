package stt

import (
	"context"
	"io"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/screenwhisper/server/domain/entities"
)

func TestAudioEncoding(t *testing.T) {
	cases := []struct {
		name     string
		expected speechpb.RecognitionConfig_AudioEncoding
		wantErr  bool
	}{
		{"linear16", speechpb.RecognitionConfig_LINEAR16, false},
		{"WAV", speechpb.RecognitionConfig_LINEAR16, false},
		{"flac", speechpb.RecognitionConfig_FLAC, false},
		{"mulaw", speechpb.RecognitionConfig_MULAW, false},
		{"ogg_opus", speechpb.RecognitionConfig_OGG_OPUS, false},
		{"webm_opus", speechpb.RecognitionConfig_WEBM_OPUS, false},
		{"mp3", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, true},
	}

	for _, tc := range cases {
		got, err := audioEncoding(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("audioEncoding(%q) expected an error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("audioEncoding(%q): %v", tc.name, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("audioEncoding(%q) = %v, expected %v", tc.name, got, tc.expected)
		}
	}
}

// scriptedRecognizeStream stands in for the gRPC recognize stream: Recv
// blocks until a result is queued or the stream's context ends.
type scriptedRecognizeStream struct {
	grpc.ClientStream
	ctx     context.Context
	results chan *speechpb.StreamingRecognizeResponse
}

func (s *scriptedRecognizeStream) Send(*speechpb.StreamingRecognizeRequest) error { return nil }

func (s *scriptedRecognizeStream) CloseSend() error { return nil }

func (s *scriptedRecognizeStream) Recv() (*speechpb.StreamingRecognizeResponse, error) {
	select {
	case resp, ok := <-s.results:
		if !ok {
			return nil, io.EOF
		}
		return resp, nil
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	}
}

func TestGoogleStreamLifetimeIndependentOfStartContext(t *testing.T) {
	// the stream runs on its own context, canceled only by Close
	streamCtx, streamCancel := context.WithCancel(context.Background())
	fake := &scriptedRecognizeStream{
		ctx:     streamCtx,
		results: make(chan *speechpb.StreamingRecognizeResponse, 1),
	}
	gs := &googleStream{
		stream: fake,
		cancel: streamCancel,
		events: make(chan entities.TranscriptEvent, 16),
		done:   make(chan struct{}),
		logger: zap.NewNop(),
	}
	go gs.readLoop()

	fake.results <- &speechpb.StreamingRecognizeResponse{
		Results: []*speechpb.StreamingRecognitionResult{{
			IsFinal: true,
			Alternatives: []*speechpb.SpeechRecognitionAlternative{{
				Transcript: "still listening",
			}},
		}},
	}

	select {
	case event := <-gs.Events():
		if event.Text != "still listening" || !event.IsFinal {
			t.Errorf("Unexpected event %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No event after the start context was canceled")
	}

	if err := gs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if streamCtx.Err() == nil {
		t.Error("Close must cancel the stream's context")
	}

	select {
	case _, ok := <-gs.Events():
		if ok {
			t.Error("Unexpected event after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Events channel never closed; reader still blocked")
	}
}

func TestMajorityWordSpeaker(t *testing.T) {
	words := []*speechpb.WordInfo{
		{Word: "hello", SpeakerTag: 2},
		{Word: "there", SpeakerTag: 2},
		{Word: "hi", SpeakerTag: 1},
	}
	if got := majorityWordSpeaker(words); got != "2" {
		t.Errorf("Expected speaker 2, got %s", got)
	}

	untagged := []*speechpb.WordInfo{{Word: "hello"}}
	if got := majorityWordSpeaker(untagged); got != entities.UnknownSpeaker {
		t.Errorf("Expected %s for untagged words, got %s", entities.UnknownSpeaker, got)
	}
}
