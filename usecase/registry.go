package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/screenwhisper/server/domain/entities"
	"github.com/screenwhisper/server/domain/repositories"
	"github.com/screenwhisper/server/planner"
)

// Fixed audio format for inbound frames: linear 16-bit mono PCM
const (
	sampleRate    = 16000
	audioEncoding = "linear16"
)

// Registry is the process-wide table of live session pipelines, keyed by
// session identifier. It is the only structure shared across sessions; all
// mutations are mutually exclusive, so two concurrent starts for the same
// identifier cannot both succeed.
type Registry struct {
	recognizer repositories.Recognizer
	translator repositories.Translator
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Pipeline
}

// NewRegistry creates a session registry backed by the given adapters
func NewRegistry(
	recognizer repositories.Recognizer,
	translator repositories.Translator,
	logger *zap.Logger,
) *Registry {
	return &Registry{
		recognizer: recognizer,
		translator: translator,
		logger:     logger,
		sessions:   make(map[string]*Pipeline),
	}
}

// Start begins a listening session. A second start while the session is
// Starting or Active is a logged no-op. An Open failure closes the session
// immediately and surfaces one fatal error event; it is never retried.
func (r *Registry) Start(ctx context.Context, sessionID, sourceLang, targetLang string, sink EventSink) error {
	plan := planner.Resolve(sourceLang, targetLang)
	session := entities.NewSession(sessionID, sourceLang, targetLang)
	pipeline := newPipeline(session, plan, r.translator, sink, r.logger)

	r.mu.Lock()
	if existing, ok := r.sessions[sessionID]; ok && existing.session.Alive() {
		r.mu.Unlock()
		r.logger.Warn("Session already has an active pipeline",
			zap.String("sessionID", sessionID))
		return nil
	}
	// reserve the slot in Starting state while the channel opens
	r.sessions[sessionID] = pipeline
	r.mu.Unlock()

	stream, err := r.recognizer.Open(ctx, repositories.RecognitionConfig{
		Language:       plan.RecognitionLanguage,
		Model:          plan.RecognitionModel,
		SampleRate:     sampleRate,
		Encoding:       audioEncoding,
		Diarize:        true,
		Punctuate:      true,
		FillerWords:    true,
		InterimResults: true,
	})
	if err != nil {
		r.logger.Error("Failed to open recognition channel",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		r.remove(sessionID, pipeline)
		pipeline.fail()
		sink.Error("failed to start recognition: " + err.Error())
		return err
	}

	if !pipeline.activate(stream) {
		// stopped while the channel was opening; activate closed the stream
		return nil
	}
	sink.Status("ready to receive audio")
	return nil
}

// Ingest routes one audio frame to the session's pipeline. Frames for
// unknown sessions are dropped with a log line.
func (r *Registry) Ingest(sessionID string, frame []byte) {
	r.mu.Lock()
	pipeline, ok := r.sessions[sessionID]
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("Dropping audio frame for unknown session",
			zap.String("sessionID", sessionID))
		return
	}
	pipeline.Ingest(frame)
}

// Stop ends a session and releases its resources. Stopping an unknown or
// already closed session is a no-op.
func (r *Registry) Stop(sessionID string) {
	r.mu.Lock()
	pipeline, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("Stop for unknown session", zap.String("sessionID", sessionID))
		return
	}
	pipeline.stop()
}

// StopAll ends every live session; used on process shutdown
func (r *Registry) StopAll() {
	r.mu.Lock()
	pipelines := make([]*Pipeline, 0, len(r.sessions))
	for id, pipeline := range r.sessions {
		pipelines = append(pipelines, pipeline)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, pipeline := range pipelines {
		pipeline.stop()
	}
}

// State reports a session's current state; unknown sessions are Closed
func (r *Registry) State(sessionID string) entities.SessionState {
	r.mu.Lock()
	pipeline, ok := r.sessions[sessionID]
	r.mu.Unlock()

	if !ok {
		return entities.SessionStateClosed
	}
	return pipeline.State()
}

// remove deletes the registry entry only if it still points at this pipeline
func (r *Registry) remove(sessionID string, pipeline *Pipeline) {
	r.mu.Lock()
	if current, ok := r.sessions[sessionID]; ok && current == pipeline {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()
}
