package api

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/chat"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

// Chat appends the user message, relays the model's chunks over SSE, and
// grows the trailing model message in arrival order. A failure mid-stream
// turns into the fixed apology; it never touches the app state.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid chat request"))
		return
	}

	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	sendEvent := func(eventType string, data interface{}) {
		event := StreamEvent{Event: eventType, Data: data}
		jsonData, _ := json.Marshal(event)
		fmt.Fprintf(c.Writer, "event: %s\n", eventType)
		fmt.Fprintf(c.Writer, "data: %s\n\n", jsonData)
		c.Writer.Flush()
	}

	conv := s.Chat
	conv.AppendUser(req.Text)
	history := conv.Messages()
	conv.BeginModel()

	err = h.chatSvc.StreamChat(c.Request.Context(), history, func(chunk string) error {
		conv.AppendChunk(chunk)
		sendEvent(EventTypeChunk, chunk)
		return nil
	})
	if err != nil {
		h.logger.Warn("chat stream failed", "session_id", s.ID, "error", err)
		conv.AppendApology()
		sendEvent(EventTypeError, chat.Apology)
		return
	}

	sendEvent(EventTypeDone, conv.TrailingModelText())
}

// ChatHistory returns the conversation so a reconnecting client can
// repaint the widget.
func (h *Handler) ChatHistory(c *gin.Context) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(200, ChatHistoryResponse{Messages: s.Chat.Messages()})
}
