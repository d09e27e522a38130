package websocket

import (
	"encoding/json"
	"testing"
)

func TestParseStartListeningMessage(t *testing.T) {
	raw := `{"type":"start_listening","source_lang":"en-US","target_lang":"FR"}`

	parsed, err := ParseMessage([]byte(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}

	msg, ok := parsed.(*StartListeningMessage)
	if !ok {
		t.Fatalf("Expected *StartListeningMessage, got %T", parsed)
	}
	if msg.SourceLang != "en-US" {
		t.Errorf("Expected source_lang en-US, got %s", msg.SourceLang)
	}
	if msg.TargetLang != "FR" {
		t.Errorf("Expected target_lang FR, got %s", msg.TargetLang)
	}
}

func TestParseStopListeningMessage(t *testing.T) {
	parsed, err := ParseMessage([]byte(`{"type":"stop_listening"}`))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if _, ok := parsed.(*StopListeningMessage); !ok {
		t.Fatalf("Expected *StopListeningMessage, got %T", parsed)
	}
}

func TestParseAudioChunkMessage(t *testing.T) {
	parsed, err := ParseMessage([]byte(`{"type":"audio_chunk","audio":"AAEC"}`))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	msg, ok := parsed.(*AudioChunkMessage)
	if !ok {
		t.Fatalf("Expected *AudioChunkMessage, got %T", parsed)
	}
	if msg.Audio != "AAEC" {
		t.Errorf("Unexpected audio payload %q", msg.Audio)
	}
}

func TestParseAudioChunkRequiresPayload(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":"audio_chunk"}`)); err == nil {
		t.Error("Expected an error for an audio_chunk without audio")
	}
}

func TestParseMessageRejectsUnknownType(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":"speak"}`)); err == nil {
		t.Error("Expected an error for an unknown message type")
	}
}

func TestParseMessageRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseMessage([]byte(`{not json`)); err == nil {
		t.Error("Expected an error for invalid JSON")
	}
}

func TestCreateMessages(t *testing.T) {
	status := CreateStatusMessage("ready to receive audio")
	payload, err := json.Marshal(status)
	if err != nil {
		t.Fatalf("Marshal status: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Unmarshal status: %v", err)
	}
	if decoded["type"] != "status" || decoded["message"] != "ready to receive audio" {
		t.Errorf("Unexpected status payload %v", decoded)
	}

	errMsg := CreateErrorMessage("boom")
	if errMsg.Type != MessageTypeError || errMsg.Message != "boom" {
		t.Errorf("Unexpected error message %+v", errMsg)
	}
}
