package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"replymate/internal/domain"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// handleWS keeps one socket per client. Each text frame is a ReplyRequest and
// is answered with a ReplyEvent in the same order.
func (s *server) handleWS(w http.ResponseWriter, req *http.Request) {
	ws, err := wsUpgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Warn("upgrade websocket failed", "error", err)
		return
	}
	defer ws.Close()

	sessionID := uuid.NewString()
	s.logger.Info("reply websocket opened", "session_id", sessionID)
	ctx := req.Context()

	for {
		msgType, payload, err := ws.ReadMessage()
		if err != nil {
			s.logger.Info("reply websocket closed", "session_id", sessionID)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var in domain.ReplyRequest
		event := domain.ReplyEvent{RequestID: uuid.NewString()}
		if err := json.Unmarshal(payload, &in); err != nil {
			event.Error = "invalid json"
		} else {
			event.UserID = strings.TrimSpace(in.UserID)
			event.Text = in.Text
			if event.UserID == "" || strings.TrimSpace(in.Text) == "" {
				event.Error = "user_id and text are required"
			} else if reply, err := s.replier.Reply(ctx, event.UserID, in.Text); err != nil {
				s.logger.Error("websocket reply failed", "session_id", sessionID, "user_id", event.UserID, "error", err)
				event.Error = err.Error()
			} else {
				event.Reply = reply
			}
		}

		if err := ws.WriteJSON(event); err != nil {
			s.logger.Warn("write websocket event failed", "session_id", sessionID, "error", err)
			return
		}
	}
}
