package entities

import "testing"

func TestSessionCreation(t *testing.T) {
	session := NewSession("client-1", "en-US", "FR")

	if session.ID != "client-1" {
		t.Errorf("Expected session ID client-1, got %s", session.ID)
	}
	if session.State != SessionStateStarting {
		t.Errorf("Expected state %s, got %s", SessionStateStarting, session.State)
	}
	if session.SourceLanguage != "en-US" || session.TargetLanguage != "FR" {
		t.Errorf("Unexpected language pair: %s -> %s", session.SourceLanguage, session.TargetLanguage)
	}
}

func TestSessionAlive(t *testing.T) {
	session := NewSession("client-1", "en-US", "FR")

	tests := []struct {
		state SessionState
		alive bool
	}{
		{SessionStateIdle, false},
		{SessionStateStarting, true},
		{SessionStateActive, true},
		{SessionStateStopping, false},
		{SessionStateClosed, false},
	}
	for _, tt := range tests {
		session.State = tt.state
		if session.Alive() != tt.alive {
			t.Errorf("Alive() in state %s = %v, want %v", tt.state, session.Alive(), tt.alive)
		}
	}
}

func TestContextWindowEvictsOldest(t *testing.T) {
	window := NewContextWindow(3)

	for _, text := range []string{"a", "b", "c", "d"} {
		window.Add(text)
	}

	if window.Len() != 3 {
		t.Fatalf("Expected window length 3, got %d", window.Len())
	}
	entries := window.Entries()
	want := []string{"b", "c", "d"}
	for i, v := range want {
		if entries[i] != v {
			t.Errorf("Expected entry %q at position %d, got %q", v, i, entries[i])
		}
	}
	if joined := window.Joined(); joined != "b c d" {
		t.Errorf("Expected joined \"b c d\", got %q", joined)
	}
}

func TestContextWindowClear(t *testing.T) {
	window := NewContextWindow(3)
	window.Add("a")
	window.Clear()

	if window.Len() != 0 {
		t.Errorf("Expected empty window after Clear, got %d entries", window.Len())
	}
	if window.Joined() != "" {
		t.Errorf("Expected empty joined string, got %q", window.Joined())
	}
}
