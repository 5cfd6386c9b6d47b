// Package app drives the top-level view-state machine: Idle, Generating,
// Ready, Error. One controller per client session.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/deck"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/limiter"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

// State is the single observable top-level state.
type State string

const (
	StateIdle       State = "IDLE"
	StateGenerating State = "GENERATING"
	StateReady      State = "READY"
	StateError      State = "ERROR"
)

// LoadingCaptions cycle while a generation is in flight. Cosmetic only.
var LoadingCaptions = []string{
	"Cosechando las mejores frutas colombianas...",
	"Extrayendo el realismo mágico en cada slide...",
	"Diseñando estrategia de exportación premium...",
	"Preparando la logística del sabor...",
	"Pulverizando barreras comerciales...",
	"Cargando el sol del trópico...",
}

const captionInterval = 2500 * time.Millisecond

// generationFailedMessage is what the user sees for any backend failure;
// no structured error reaches the view layer.
const generationFailedMessage = "No pudimos conectar con el consultor AI. Por favor, verifica tu conexión e intenta de nuevo."

// Generator produces a sanitized deck. Satisfied by the gemini service.
type Generator interface {
	GeneratePresentation(ctx context.Context) (deck.Deck, error)
}

// Controller owns the Idle/Generating/Ready/Error machine. Generate is
// only callable from Idle; Error and Ready both recover to Idle through
// explicit user actions.
type Controller struct {
	mu          sync.Mutex
	state       State
	deckCtrl    *deck.Controller
	errMessage  string
	captionIdx  int
	captionGen  int
	captionDone chan struct{}
	closed      bool

	generator       Generator
	limiter         *limiter.Limiter
	logger          *logger.Logger
	captionInterval time.Duration
}

func NewController(gen Generator, lim *limiter.Limiter, log *logger.Logger) *Controller {
	return &Controller{
		state:           StateIdle,
		generator:       gen,
		limiter:         lim,
		logger:          log,
		captionInterval: captionInterval,
	}
}

// State returns the current top-level state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ErrorMessage returns the display string for the Error state.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMessage
}

// LoadingCaption returns the caption currently cycling during Generating.
func (c *Controller) LoadingCaption() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateGenerating {
		return ""
	}
	return LoadingCaptions[c.captionIdx]
}

// Deck returns the deck controller, non-nil only in Ready.
func (c *Controller) Deck() *deck.Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deckCtrl
}

// Generate starts a generation. Only legal from Idle; the previous error
// message is cleared on entry to Generating. The outcome transitions to
// Ready or Error asynchronously.
func (c *Controller) Generate() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New(errors.ErrCodeConflict, "session is closed")
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return errors.New(errors.ErrCodeConflict, "generation is only available from the idle state")
	}
	c.state = StateGenerating
	c.errMessage = ""
	c.startCaptionsLocked()
	c.mu.Unlock()

	go c.runGeneration()
	return nil
}

// Retry returns from Error to Idle, discarding the message.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateError {
		return errors.New(errors.ErrCodeConflict, "retry is only available from the error state")
	}
	c.state = StateIdle
	c.errMessage = ""
	return nil
}

// Reset returns from Ready to Idle, discarding the deck wholesale.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return errors.New(errors.ErrCodeConflict, "reset is only available from the ready state")
	}
	c.teardownDeckLocked()
	c.state = StateIdle
	return nil
}

// Close tears the controller down from any state. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopCaptionsLocked()
	c.teardownDeckLocked()
	c.state = StateIdle
}

func (c *Controller) teardownDeckLocked() {
	if c.deckCtrl != nil {
		c.deckCtrl.Close()
		c.deckCtrl = nil
	}
}

// runGeneration performs the backend call off the caller's goroutine.
// Generating has no in-system timeout; the client's outcome decides.
func (c *Controller) runGeneration() {
	ctx := context.Background()

	release, err := c.limiter.Acquire(ctx)
	if err != nil {
		c.finishGeneration(nil, errors.Wrap(err, errors.ErrCodeRateLimited, "rate limit exceeded"))
		return
	}
	defer release()

	slides, err := c.generator.GeneratePresentation(ctx)
	c.finishGeneration(slides, err)
}

func (c *Controller) finishGeneration(slides deck.Deck, genErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCaptionsLocked()
	if c.closed || c.state != StateGenerating {
		// Session was torn down while the call was in flight.
		return
	}

	if genErr != nil {
		c.logger.Error("generation failed", "error", genErr)
		c.state = StateError
		c.errMessage = displayMessage(genErr)
		return
	}

	ctrl, err := deck.NewController(slides)
	if err != nil {
		c.logger.Error("generated deck rejected", "error", err)
		c.state = StateError
		c.errMessage = generationFailedMessage
		return
	}

	c.deckCtrl = ctrl
	c.state = StateReady
	c.logger.Info("presentation ready", "slides", len(slides))
}

// displayMessage collapses backend errors into one human-readable line.
// Configuration problems keep their own wording so the operator knows
// retrying will not help.
func displayMessage(err error) string {
	if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrCodeConfig {
		return appErr.Message
	}
	return generationFailedMessage
}

// startCaptionsLocked restarts the caption cycle at index 0 and arms the
// ticker goroutine. A generation counter keeps stale tickers from a
// previous Generating entry out; the done channel ends the goroutine the
// moment Generating is left, not at its next tick.
func (c *Controller) startCaptionsLocked() {
	c.captionIdx = 0
	c.captionGen++
	gen := c.captionGen
	done := make(chan struct{})
	c.captionDone = done

	go func() {
		ticker := time.NewTicker(c.captionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			c.mu.Lock()
			if c.captionGen != gen || c.state != StateGenerating {
				c.mu.Unlock()
				return
			}
			c.captionIdx = (c.captionIdx + 1) % len(LoadingCaptions)
			c.mu.Unlock()
		}
	}()
}

// stopCaptionsLocked tears the running ticker goroutine down.
func (c *Controller) stopCaptionsLocked() {
	c.captionGen++
	c.captionIdx = 0
	if c.captionDone != nil {
		close(c.captionDone)
		c.captionDone = nil
	}
}
