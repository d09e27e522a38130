package usecase

import (
	"bytes"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/screenwhisper/server/domain/entities"
	"github.com/screenwhisper/server/domain/repositories"
	"github.com/screenwhisper/server/internal/queue"
	"github.com/screenwhisper/server/planner"
)

const (
	// ~1s of audio at one frame per 100ms; a brief consumer stall loses
	// nothing, a long one drops the stalest frames first
	audioQueueCapacity = 10

	// only the most recent unprocessed transcript matters; superseded
	// interim results are intentionally discarded
	transcriptQueueCapacity = 1

	contextWindowSize = 3

	// pause after a failed frame send before the forwarder continues
	sendRetryPause = 100 * time.Millisecond

	// a slow translation call must not pin the session; a timeout is
	// treated exactly like a translation error
	translateTimeout = 15 * time.Second
)

// EventSink receives the client-facing events of one session. The websocket
// client implements it; sinks must not block the caller indefinitely.
type EventSink interface {
	Status(message string)
	Recognition(event entities.TranscriptEvent)
	Translation(result entities.TranslationResult)
	Error(message string)
}

// Pipeline coordinates one session's three activities: the forwarder drains
// the audio queue into the recognition stream, the collector drains the
// stream's events into the transcript queue, and the translator drains the
// transcript queue, translating final utterances. All three are canceled and
// joined on stop.
type Pipeline struct {
	session    *entities.Session
	plan       planner.Plan
	translator repositories.Translator
	sink       EventSink
	logger     *zap.Logger

	audio       *queue.Queue[[]byte]
	transcripts *queue.Queue[entities.TranscriptEvent]
	window      *entities.ContextWindow

	mu     sync.Mutex
	stream repositories.RecognitionStream
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newPipeline(
	session *entities.Session,
	plan planner.Plan,
	translator repositories.Translator,
	sink EventSink,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		session:     session,
		plan:        plan,
		translator:  translator,
		sink:        sink,
		logger:      logger,
		audio:       queue.New[[]byte](audioQueueCapacity),
		transcripts: queue.New[entities.TranscriptEvent](transcriptQueueCapacity),
		window:      entities.NewContextWindow(contextWindowSize),
	}
}

// activate attaches the opened recognition stream and launches the three
// activities. Called at most once, after a successful Open. A session that
// was stopped while the channel was opening stays closed: the fresh stream
// is closed and nothing launches.
func (p *Pipeline) activate(stream repositories.RecognitionStream) bool {
	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	if p.session.State != entities.SessionStateStarting {
		p.mu.Unlock()
		cancel()
		_ = stream.Close()
		p.logger.Warn("Session stopped before the recognition channel opened",
			zap.String("sessionID", p.session.ID))
		return false
	}
	p.stream = stream
	p.cancel = cancel
	p.session.State = entities.SessionStateActive
	p.mu.Unlock()

	p.wg.Add(3)
	go p.forward(ctx, stream)
	go p.collect(ctx, stream)
	go p.translate(ctx)

	p.logger.Info("Session pipeline active",
		zap.String("sessionID", p.session.ID),
		zap.String("recognitionLanguage", p.plan.RecognitionLanguage),
		zap.String("recognitionModel", p.plan.RecognitionModel))
	return true
}

// State returns the session's current state
func (p *Pipeline) State() entities.SessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.State
}

// Ingest enqueues one audio frame. Frames for a session that is not Active
// are dropped with a log line, never an error to the client.
func (p *Pipeline) Ingest(frame []byte) {
	if p.State() != entities.SessionStateActive {
		p.logger.Debug("Dropping audio frame for inactive session",
			zap.String("sessionID", p.session.ID))
		return
	}
	if dropped := p.audio.Put(frame); dropped {
		p.logger.Debug("Audio queue full, dropped oldest frame",
			zap.String("sessionID", p.session.ID))
	}
}

// forward drains the audio queue into the recognition stream. Batches are
// coalesced into a single send: stale frames are still valid audio, and one
// larger write lets a slow backend catch up. A failed send is transient; the
// forwarder pauses briefly and keeps going.
func (p *Pipeline) forward(ctx context.Context, stream repositories.RecognitionStream) {
	defer p.wg.Done()

	for {
		frames, err := p.audio.Take(ctx)
		if err != nil {
			return
		}

		frame := frames[0]
		if len(frames) > 1 {
			frame = bytes.Join(frames, nil)
		}

		if err := stream.Send(frame); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("Audio frame send failed",
				zap.String("sessionID", p.session.ID),
				zap.Error(err))
			select {
			case <-time.After(sendRetryPause):
			case <-ctx.Done():
				return
			}
		}
	}
}

// collect drains the recognition stream's events into the transcript queue.
// The adapters already filter metadata frames and empty transcripts. A stream
// that ends outside the stop path is session-fatal: the client gets one error
// event and the session closes.
func (p *Pipeline) collect(ctx context.Context, stream repositories.RecognitionStream) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-stream.Events():
			if !ok {
				if ctx.Err() != nil {
					// stop already in progress
					return
				}
				p.logger.Error("Recognition stream ended unexpectedly",
					zap.String("sessionID", p.session.ID))
				p.sink.Error("recognition stream ended")
				// stop joins this goroutine, so it runs on its own
				go p.stop()
				return
			}
			if dropped := p.transcripts.Put(event); dropped {
				p.logger.Debug("Superseded transcript dropped",
					zap.String("sessionID", p.session.ID))
			}
		}
	}
}

// translate drains the transcript queue, emits every event as a recognition
// event, and translates final ones. A recognition event always reaches the
// client before its translation.
func (p *Pipeline) translate(ctx context.Context) {
	defer p.wg.Done()

	for {
		batch, err := p.transcripts.Take(ctx)
		if err != nil {
			return
		}
		for _, event := range batch {
			if ctx.Err() != nil {
				return
			}
			p.sink.Recognition(event)
			if event.IsFinal {
				p.processFinal(ctx, event)
			}
		}
	}
}

// processFinal translates one final transcript and emits the translation
// event. Failures and empty results degrade to echoing the original text;
// the context window only grows on successful processing.
func (p *Pipeline) processFinal(ctx context.Context, event entities.TranscriptEvent) {
	result := entities.TranslationResult{
		OriginalText:   event.Text,
		TranslatedText: event.Text,
		SourceLanguage: p.plan.TranslationSource,
		TargetLanguage: p.plan.TranslationTarget,
	}

	processed := true
	if !p.plan.SkipTranslation {
		callCtx, cancel := context.WithTimeout(ctx, translateTimeout)
		translated, err := p.translator.Translate(callCtx, event.Text,
			p.plan.TranslationSource, p.plan.TranslationTarget, p.window.Joined())
		cancel()

		switch {
		case ctx.Err() != nil:
			// canceled mid-call; no further emissions
			return
		case err != nil:
			p.logger.Error("Translation failed",
				zap.String("sessionID", p.session.ID),
				zap.Error(err))
			p.sink.Error("translation error: " + err.Error())
			processed = false
		case translated == "":
			p.logger.Warn("Translation returned empty result",
				zap.String("sessionID", p.session.ID))
			processed = false
		default:
			result.TranslatedText = translated
		}
	}

	if ctx.Err() != nil {
		return
	}
	p.sink.Translation(result)
	if processed {
		p.window.Add(event.Text)
	}
}

// stop cancels the three activities, closes the recognition stream, joins
// the goroutines and releases the session's resources. Safe to call more
// than once.
func (p *Pipeline) stop() {
	p.mu.Lock()
	if p.session.State == entities.SessionStateClosed {
		p.mu.Unlock()
		return
	}
	p.session.State = entities.SessionStateStopping
	cancel := p.cancel
	stream := p.stream
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.audio.Close()
	p.transcripts.Close()
	if stream != nil {
		_ = stream.Close()
	}
	p.wg.Wait()
	p.window.Clear()

	p.mu.Lock()
	p.session.State = entities.SessionStateClosed
	p.mu.Unlock()

	p.logger.Info("Session pipeline closed", zap.String("sessionID", p.session.ID))
}

// fail marks a pipeline that never activated as closed (setup failure path)
func (p *Pipeline) fail() {
	p.mu.Lock()
	p.session.State = entities.SessionStateClosed
	p.mu.Unlock()
}
