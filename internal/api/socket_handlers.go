package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
)

const (
	socketWriteWait      = 10 * time.Second
	socketMaxMessageSize = 4096
)

var (
	socketPongWait   = 60 * time.Second
	socketPingPeriod = (socketPongWait * 9) / 10
)

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin applies the CORS origin list to socket handshakes. Requests
// without an Origin header come from non-browser clients and are allowed.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.CORSOrigins) == 0 {
		return true
	}
	for _, allowed := range s.CORSOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Socket frames. Clients send {"text": "..."}; the server answers with one
// frame per turn, delayed by the turn's reveal time.
const (
	frameAttempt = "attempt"
	frameTurn    = "turn"
	frameError   = "error"
)

type socketFrame struct {
	Type    string          `json:"type"`
	Attempt *models.Attempt `json:"attempt,omitempty"`
	Turn    *turnResponse   `json:"turn,omitempty"`
	Error   *errorBody      `json:"error,omitempty"`
}

func (s *Server) handleAttemptSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	profile := profileFromContext(ctx)
	attemptID := chi.URLParam(r, "id")

	attempt, err := s.ConversationService.Get(ctx, profile.ID, attemptID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	log.Info("websocket connected: attempt=%s", attemptID)

	conn.SetReadLimit(socketMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	if err := writeFrame(conn, socketFrame{Type: frameAttempt, Attempt: attempt}); err != nil {
		log.Warn("websocket write failed: %v", err)
		return
	}

	for {
		var msg submitTurnRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed: %v", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))

		res, err := s.ConversationService.Submit(ctx, profile.ID, attemptID, msg.Text)
		if err != nil {
			body := errorPayload(toAppError(err)).Error
			if werr := writeFrame(conn, socketFrame{Type: frameError, Error: &body}); werr != nil {
				return
			}
			continue
		}

		if !sleepCtx(ctx, res.Action.RevealAfter) {
			return
		}
		turn := newTurnResponse(res)
		if err := writeFrame(conn, socketFrame{Type: frameTurn, Turn: &turn}); err != nil {
			log.Warn("websocket write failed: %v", err)
			return
		}

		if res.Action.Completed() {
			log.Info("websocket closing: attempt=%s completed", attemptID)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "attempt completed"),
				time.Now().Add(socketWriteWait))
			return
		}
	}
}

// pingLoop keeps the read deadline moving while the user is typing.
func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(socketPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteWait)); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, frame socketFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	return conn.WriteJSON(frame)
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
