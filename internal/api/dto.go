package api

import (
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/chat"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/render"
)

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

type SessionStateResponse struct {
	SessionID      string `json:"session_id"`
	State          string `json:"state"`
	LoadingCaption string `json:"loading_caption,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

type DeckResponse struct {
	CurrentIndex int                `json:"current_index"`
	SlideCount   int                `json:"slide_count"`
	Counter      string             `json:"counter"`
	IsPlaying    bool               `json:"is_playing"`
	IsFullscreen bool               `json:"is_fullscreen"`
	Slides       []render.SlideView `json:"slides"`
}

type NavigateResponse struct {
	CurrentIndex int `json:"current_index"`
}

type JumpRequest struct {
	Index *int `json:"index" binding:"required"`
}

type ToggleResponse struct {
	Enabled bool `json:"enabled"`
}

type ExportResponse struct {
	URL string `json:"url"`
}

type ChatRequest struct {
	Text string `json:"text" binding:"required"`
}

type ChatHistoryResponse struct {
	Messages []chat.Message `json:"messages"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// SSE envelope for the chat stream.
type StreamEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

const (
	EventTypeChunk = "chunk"
	EventTypeDone  = "done"
	EventTypeError = "error"
)
