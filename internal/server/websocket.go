package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Local-only UI; the server binds to localhost.
		return true
	},
}

type wsMessage struct {
	Type      string `json:"type"`
	TabActive *bool  `json:"tab_active,omitempty"`
}

// handleWebSocket tracks browser tabs so the idle shutdown knows when
// someone is still looking. The read loop doubles as the disconnect
// detector.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Info("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	s.mu.Lock()
	s.activeClients++
	s.lastActivity = time.Now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.activeClients--
		s.mu.Unlock()
	}()

	s.logger.Info("websocket connected", "remote", r.RemoteAddr)

	if err := ws.WriteJSON(wsMessage{Type: "connected"}); err != nil {
		return
	}

	for {
		var msg wsMessage
		if err := ws.ReadJSON(&msg); err != nil {
			s.logger.Info("websocket disconnected", "remote", r.RemoteAddr)
			return
		}

		s.recordActivity()

		if msg.Type == "ping" {
			if err := ws.WriteJSON(wsMessage{Type: "pong"}); err != nil {
				return
			}
		}
		if msg.TabActive != nil {
			s.setTabActive(*msg.TabActive)
		}
	}
}
