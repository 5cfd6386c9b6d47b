package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/service/voice"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Voice upgrades the request to a websocket and runs a live call. At
// most one call is live per session; a new one supersedes the old.
// Voice failures stay inside the widget: a dial error closes the socket
// with a reason and leaves the app state alone.
func (h *Handler) Voice(c *gin.Context) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	clientConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session_id", s.ID, "error", err)
		return
	}

	upstream, err := h.voiceDial(c.Request.Context())
	if err != nil {
		h.logger.Warn("voice dial failed", "session_id", s.ID, "error", err)
		clientConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"closed","data":"voice service unavailable"}`))
		clientConn.Close()
		return
	}

	call := voice.NewSession(clientConn, upstream, h.logger)
	if previous := s.SwapVoice(call); previous != nil {
		previous.Close("superseded by a new call")
	}
	h.logger.Info("voice session started", "session_id", s.ID, "voice_session", call.ID())

	call.Run()
	s.DetachVoice(call)
	h.logger.Info("voice session ended", "session_id", s.ID, "voice_session", call.ID())
}
