package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketRedactRequest represents a redaction request via WebSocket.
type WebSocketRedactRequest struct {
	Type    string                 `json:"type"` // currently only "image"
	Name    string                 `json:"name,omitempty"`
	Image   []byte                 `json:"image,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketRedactResponse represents a redaction response via WebSocket.
type WebSocketRedactResponse struct {
	Type      string      `json:"type"`
	Status    string      `json:"status"` // "processing", "completed", "error"
	Progress  float64     `json:"progress,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// redactStreamHandler handles WebSocket connections for streaming redaction.
func (s *Server) redactStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleStreamConnection(r.Context(), conn)
}

// handleStreamConnection processes messages from a WebSocket connection.
func (s *Server) handleStreamConnection(ctx context.Context, conn *websocket.Conn) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep connection alive
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleStreamMessage(ctx, conn, data)
		}
	}
}

// handleStreamMessage processes a single WebSocket request message.
func (s *Server) handleStreamMessage(ctx context.Context, conn WebSocketConnWriter, data []byte) {
	var req WebSocketRedactRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendStreamError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	// Generate a request ID for tracking
	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	s.sendStreamResponse(conn, WebSocketRedactResponse{
		Type:      "redact_response",
		Status:    "processing",
		Progress:  0.0,
		RequestID: requestID,
	})

	switch req.Type {
	case "image":
		s.processStreamImage(ctx, conn, req, requestID)
	default:
		s.sendStreamError(conn, "invalid_request", "Unsupported request type: "+req.Type)
	}
}

// processStreamImage redacts an image received over WebSocket.
func (s *Server) processStreamImage(ctx context.Context, conn WebSocketConnWriter, req WebSocketRedactRequest, requestID string) {
	if len(req.Image) == 0 {
		s.sendStreamError(conn, "invalid_request", "No image data provided")
		return
	}

	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		s.sendStreamError(conn, "processing_error", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	redactor, err := s.redactorForRequest(optionsFromMap(req.Options))
	if err != nil {
		s.sendStreamError(conn, "processing_error", fmt.Sprintf("Failed to configure redactor: %v", err))
		return
	}

	s.sendStreamResponse(conn, WebSocketRedactResponse{
		Type:      "redact_response",
		Status:    "processing",
		Progress:  0.5,
		RequestID: requestID,
	})

	start := time.Now()
	_, res, err := redactor.ProcessImageContext(ctx, img)
	duration := time.Since(start)

	if err != nil {
		redactRequestsTotal.WithLabelValues("websocket_image", "error").Inc()
		s.sendStreamError(conn, "processing_error", fmt.Sprintf("Redaction failed: %v", err))
		return
	}

	recordRedactionMetrics("websocket_image", duration, res)

	s.sendStreamResponse(conn, WebSocketRedactResponse{
		Type:      "redact_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    res,
		RequestID: requestID,
	})
}

// sendStreamResponse sends a response message over WebSocket.
func (s *Server) sendStreamResponse(conn WebSocketConnWriter, response WebSocketRedactResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendStreamError sends an error message over WebSocket.
func (s *Server) sendStreamError(conn WebSocketConnWriter, errorType, message string) {
	response := WebSocketRedactResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	}

	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket error response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket error message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
