package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-explorer/internal/transport/http/dto"
)

const (
	eventsWriteWait    = 10 * time.Second
	eventsPingInterval = 30 * time.Second
)

// handleSessionEvents streams the session state: the current snapshot first,
// then every change.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debug("websocket close", zap.Error(err))
		}
	}()

	views, unsubscribe := s.events.Subscribe()
	defer unsubscribe()

	// The client sends nothing; reading only detects disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventsPingInterval)
	defer ticker.Stop()

	if err := s.writeEvent(conn, dto.NewSessionResponse(s.sess.Snapshot())); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(eventsWriteWait))
			return
		case v, ok := <-views:
			if !ok {
				return
			}
			if err := s.writeEvent(conn, dto.NewSessionResponse(v)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteWait)); err != nil {
				s.logger.Debug("websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, v dto.SessionResponse) error {
	if err := conn.SetWriteDeadline(time.Now().Add(eventsWriteWait)); err != nil {
		return err
	}
	if err := conn.WriteJSON(v); err != nil {
		s.logger.Debug("websocket write failed", zap.Error(err))
		return err
	}
	return nil
}
