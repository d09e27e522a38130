package websocket

import (
	"encoding/json"
	"fmt"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	// inbound
	MessageTypeStartListening MessageType = "start_listening"
	MessageTypeStopListening  MessageType = "stop_listening"
	MessageTypeAudioChunk     MessageType = "audio_chunk"

	// outbound
	MessageTypeStatus      MessageType = "status"
	MessageTypeRecognition MessageType = "recognition"
	MessageTypeTranslation MessageType = "translation"
	MessageTypeError       MessageType = "error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// StartListeningMessage begins a listening session for the client
type StartListeningMessage struct {
	BaseMessage
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// StopListeningMessage ends the client's listening session
type StopListeningMessage struct {
	BaseMessage
}

// AudioChunkMessage carries one base64-encoded audio frame. Clients may also
// send raw binary websocket frames instead.
type AudioChunkMessage struct {
	BaseMessage
	Audio string `json:"audio"`
}

// StatusMessage is an informational event, e.g. "ready to receive audio"
type StatusMessage struct {
	BaseMessage
	Message string `json:"message"`
}

// RecognitionMessage is one transcript event surviving filtering
type RecognitionMessage struct {
	BaseMessage
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
	Speaker string `json:"speaker,omitempty"`
}

// TranslationMessage is emitted once per processed final transcript
type TranslationMessage struct {
	BaseMessage
	Original   string `json:"original"`
	Translated string `json:"translated"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// ErrorMessage is a non-fatal or fatal failure notice. It does not by itself
// close the session except for start-time fatal failures.
type ErrorMessage struct {
	BaseMessage
	Message string `json:"message"`
}

// ParseMessage decodes an inbound text message into its typed form
func ParseMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeStartListening:
		var msg StartListeningMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid start_listening message: %w", err)
		}
		return &msg, nil

	case MessageTypeStopListening:
		var msg StopListeningMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid stop_listening message: %w", err)
		}
		return &msg, nil

	case MessageTypeAudioChunk:
		var msg AudioChunkMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid audio_chunk message: %w", err)
		}
		if msg.Audio == "" {
			return nil, fmt.Errorf("audio_chunk message carries no audio")
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// CreateStatusMessage creates a standardized status event
func CreateStatusMessage(message string) *StatusMessage {
	return &StatusMessage{
		BaseMessage: BaseMessage{Type: MessageTypeStatus},
		Message:     message,
	}
}

// CreateErrorMessage creates a standardized error event
func CreateErrorMessage(message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeError},
		Message:     message,
	}
}
