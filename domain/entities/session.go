package entities

import "time"

// SessionState represents the lifecycle state of a listening session
type SessionState string

const (
	SessionStateIdle     SessionState = "idle"
	SessionStateStarting SessionState = "starting"
	SessionStateActive   SessionState = "active"
	SessionStateStopping SessionState = "stopping"
	SessionStateClosed   SessionState = "closed"
)

// Session represents one client's live listening interaction, from start to stop.
// The session identifier comes from the transport layer and is unique while
// the client stays connected. Language codes are immutable for the session's
// lifetime.
type Session struct {
	ID             string       `json:"id"`
	SourceLanguage string       `json:"source_language"`
	TargetLanguage string       `json:"target_language"`
	State          SessionState `json:"state"`
	StartedAt      time.Time    `json:"started_at"`
}

// NewSession creates a session in the Starting state
func NewSession(id, sourceLanguage, targetLanguage string) *Session {
	return &Session{
		ID:             id,
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		State:          SessionStateStarting,
		StartedAt:      time.Now(),
	}
}

// Alive reports whether the session still holds (or is acquiring) a live
// pipeline. Used to reject a second start for the same identifier.
func (s *Session) Alive() bool {
	return s.State == SessionStateStarting || s.State == SessionStateActive
}
