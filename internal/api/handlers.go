package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/chat"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/deck"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/render"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/service/export"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/service/voice"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/session"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

// ChatStreamer is the streaming side of the gemini service.
type ChatStreamer interface {
	StreamChat(ctx context.Context, history []chat.Message, onChunk func(chunk string) error) error
}

type Handler struct {
	registry  *session.Registry
	chatSvc   ChatStreamer
	exportSvc *export.Service
	voiceDial voice.Dialer
	logger    *logger.Logger
}

func NewHandler(reg *session.Registry, chatSvc ChatStreamer, exportSvc *export.Service, dial voice.Dialer, log *logger.Logger) *Handler {
	return &Handler{
		registry:  reg,
		chatSvc:   chatSvc,
		exportSvc: exportSvc,
		voiceDial: dial,
		logger:    log,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) CreateSession(c *gin.Context) {
	s := h.registry.Create()
	h.logger.Info("session created", "session_id", s.ID)
	c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID: s.ID,
		State:     string(s.App.State()),
	})
}

func (h *Handler) GetSession(c *gin.Context) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionStateResponse{
		SessionID:      s.ID,
		State:          string(s.App.State()),
		LoadingCaption: s.App.LoadingCaption(),
		ErrorMessage:   s.App.ErrorMessage(),
	})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.registry.Delete(c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Generate(c *gin.Context) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if err := s.App.Generate(); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SessionStateResponse{
		SessionID: s.ID,
		State:     string(s.App.State()),
	})
}

func (h *Handler) Retry(c *gin.Context) {
	h.transition(c, func(s *session.Session) error { return s.App.Retry() })
}

func (h *Handler) Reset(c *gin.Context) {
	h.transition(c, func(s *session.Session) error { return s.App.Reset() })
}

func (h *Handler) transition(c *gin.Context, op func(*session.Session) error) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if err := op(s); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionStateResponse{
		SessionID: s.ID,
		State:     string(s.App.State()),
	})
}

func (h *Handler) GetDeck(c *gin.Context) {
	dc, err := h.deckController(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	slides, idx, playing, fullscreen := dc.Snapshot()
	views, err := render.RenderDeck(slides, idx)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, DeckResponse{
		CurrentIndex: idx,
		SlideCount:   len(slides),
		Counter:      fmt.Sprintf("%02d / %02d", idx+1, len(slides)),
		IsPlaying:    playing,
		IsFullscreen: fullscreen,
		Slides:       views,
	})
}

func (h *Handler) NextSlide(c *gin.Context) {
	dc, err := h.deckController(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NavigateResponse{CurrentIndex: dc.Next()})
}

func (h *Handler) PreviousSlide(c *gin.Context) {
	dc, err := h.deckController(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NavigateResponse{CurrentIndex: dc.Previous()})
}

func (h *Handler) JumpToSlide(c *gin.Context) {
	var req JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid jump request"))
		return
	}
	dc, err := h.deckController(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if err := dc.JumpTo(*req.Index); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NavigateResponse{CurrentIndex: dc.CurrentIndex()})
}

func (h *Handler) TogglePlay(c *gin.Context) {
	dc, err := h.deckController(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{Enabled: dc.TogglePlay()})
}

func (h *Handler) ToggleFullscreen(c *gin.Context) {
	dc, err := h.deckController(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{Enabled: dc.ToggleFullscreen()})
}

func (h *Handler) Export(c *gin.Context) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	dc := s.App.Deck()
	if dc == nil {
		h.handleError(c, errors.New(errors.ErrCodeConflict, "no presentation to export"))
		return
	}

	url, err := h.exportSvc.ExportDeck(c.Request.Context(), s.ID, dc.Slides())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{URL: url})
}

// deckController resolves the session's deck controller; navigation is
// only meaningful in the Ready state.
func (h *Handler) deckController(c *gin.Context) (*deck.Controller, error) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return nil, err
	}
	dc := s.App.Deck()
	if dc == nil {
		return nil, errors.New(errors.ErrCodeConflict, "no presentation is ready")
	}
	return dc, nil
}

func (h *Handler) handleError(c *gin.Context, err error) {
	code := errors.ErrCodeInternal
	status := http.StatusInternalServerError

	if appErr, ok := err.(*errors.AppError); ok {
		code = appErr.Code
		switch appErr.Code {
		case errors.ErrCodeNotFound:
			status = http.StatusNotFound
		case errors.ErrCodeInvalidReq:
			status = http.StatusBadRequest
		case errors.ErrCodeConflict:
			status = http.StatusConflict
		case errors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		case errors.ErrCodeConfig:
			status = http.StatusServiceUnavailable
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}
