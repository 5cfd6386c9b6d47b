package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
)

// RouterOptions carries the static-files mount for exported documents.
type RouterOptions struct {
	FilesURL  string
	FilesPath string
}

func NewRouter(h *Handler, log *logger.Logger, opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.GET("/health", h.Health)
	if opts.FilesURL != "" && opts.FilesPath != "" {
		r.Static(opts.FilesURL, opts.FilesPath)
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/sessions", h.CreateSession)
		v1.GET("/sessions/:id", h.GetSession)
		v1.DELETE("/sessions/:id", h.DeleteSession)

		v1.POST("/sessions/:id/generate", h.Generate)
		v1.POST("/sessions/:id/retry", h.Retry)
		v1.POST("/sessions/:id/reset", h.Reset)

		v1.GET("/sessions/:id/deck", h.GetDeck)
		v1.POST("/sessions/:id/deck/next", h.NextSlide)
		v1.POST("/sessions/:id/deck/previous", h.PreviousSlide)
		v1.POST("/sessions/:id/deck/jump", h.JumpToSlide)
		v1.POST("/sessions/:id/deck/play", h.TogglePlay)
		v1.POST("/sessions/:id/deck/fullscreen", h.ToggleFullscreen)
		v1.POST("/sessions/:id/export", h.Export)

		v1.GET("/sessions/:id/chat", h.ChatHistory)
		v1.POST("/sessions/:id/chat", h.Chat)
		v1.GET("/sessions/:id/voice", h.Voice)
	}

	return r
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Info("request started",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Next()
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
