package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/screenwhisper/server/domain/entities"
	"github.com/screenwhisper/server/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks

	// Time allowed for opening the recognition channel on start.
	startTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// captions are pushed to in-page clients on arbitrary origins
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of connected clients and routes their session
// lifecycle into the registry.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	registry *usecase.Registry

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(registry *usecase.Registry, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		registry:   registry,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			previous, replaced := h.clients[client.sessionID]
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			if replaced {
				// a reconnect with the same id evicts the previous client
				// and its session; Stop joins the pipeline before the old
				// sink's send channel closes
				h.registry.Stop(client.sessionID)
				close(previous.send)
				h.logger.Warn("Evicted previous client for session",
					zap.String("sessionID", client.sessionID))
			}
			h.logger.Info("Client connected", zap.String("sessionID", client.sessionID))

		case client := <-h.unregister:
			// only the client that currently owns the session id may end
			// the session; a disconnect of an evicted client is a no-op
			h.mu.Lock()
			current, owns := h.clients[client.sessionID]
			owns = owns && current == client
			if owns {
				delete(h.clients, client.sessionID)
			}
			h.mu.Unlock()
			if !owns {
				continue
			}

			// a disconnect ends the listening session the same way an
			// explicit stop does; Stop joins the pipeline, so no event can
			// race the close of the send channel below
			h.registry.Stop(client.sessionID)
			close(client.send)
			h.logger.Info("Client disconnected", zap.String("sessionID", client.sessionID))
		}
	}
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
// It also implements usecase.EventSink for its session.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Session identifier for this client
	sessionID string

	// Logger
	logger *zap.Logger
}

// Ensure Client delivers pipeline events
var _ usecase.EventSink = (*Client)(nil)

// HandleWebSocket handles websocket requests from the peer
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, 256),
		sessionID: sessionID,
		logger:    logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			// Control messages and base64 audio chunks
			c.processMessage(message)
		case websocket.BinaryMessage:
			// Raw audio frames
			c.processAudioFrame(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage routes an inbound text message
func (c *Client) processMessage(message []byte) {
	parsed, err := ParseMessage(message)
	if err != nil {
		c.logger.Warn("Failed to parse message",
			zap.String("sessionID", c.sessionID),
			zap.Error(err))
		return
	}

	switch msg := parsed.(type) {
	case *StartListeningMessage:
		c.handleStartListening(msg)
	case *StopListeningMessage:
		c.hub.registry.Stop(c.sessionID)
	case *AudioChunkMessage:
		frame, err := base64.StdEncoding.DecodeString(msg.Audio)
		if err != nil {
			c.logger.Warn("Failed to decode audio chunk",
				zap.String("sessionID", c.sessionID),
				zap.Error(err))
			return
		}
		c.processAudioFrame(frame)
	}
}

// handleStartListening begins a pipeline for this client
func (c *Client) handleStartListening(msg *StartListeningMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	// The registry logs and ignores duplicate starts and has already sent
	// the fatal error event on an open failure.
	_ = c.hub.registry.Start(ctx, c.sessionID, msg.SourceLang, msg.TargetLang, c)
}

// processAudioFrame forwards one audio frame into the session pipeline.
// Empty payloads are dropped with a warning, not enqueued.
func (c *Client) processAudioFrame(frame []byte) {
	if len(frame) == 0 {
		c.logger.Warn("Dropping empty audio frame", zap.String("sessionID", c.sessionID))
		return
	}
	c.hub.registry.Ingest(c.sessionID, frame)
}

// Status implements usecase.EventSink
func (c *Client) Status(message string) {
	c.sendJSON(CreateStatusMessage(message))
}

// Recognition implements usecase.EventSink
func (c *Client) Recognition(event entities.TranscriptEvent) {
	c.sendJSON(&RecognitionMessage{
		BaseMessage: BaseMessage{Type: MessageTypeRecognition},
		Text:        event.Text,
		IsFinal:     event.IsFinal,
		Speaker:     event.SpeakerID,
	})
}

// Translation implements usecase.EventSink
func (c *Client) Translation(result entities.TranslationResult) {
	c.sendJSON(&TranslationMessage{
		BaseMessage: BaseMessage{Type: MessageTypeTranslation},
		Original:    result.OriginalText,
		Translated:  result.TranslatedText,
		SourceLang:  result.SourceLanguage,
		TargetLang:  result.TargetLanguage,
	})
}

// Error implements usecase.EventSink
func (c *Client) Error(message string) {
	c.sendJSON(CreateErrorMessage(message))
}

// sendJSON queues one outbound event without ever blocking the pipeline.
// A client that cannot drain its buffer loses events rather than stalling
// the session.
func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal outbound event",
			zap.String("sessionID", c.sessionID),
			zap.Error(err))
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Client send buffer full, dropping event",
			zap.String("sessionID", c.sessionID))
	}
}
