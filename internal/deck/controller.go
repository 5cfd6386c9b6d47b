package deck

import (
	"sync"
	"time"

	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

// DefaultAutoplayInterval matches the original viewer's advance period.
const DefaultAutoplayInterval = 5 * time.Second

// Controller owns one deck and its view state: current index, playback
// and fullscreen flags. All operations are safe for concurrent use.
//
// The autoplay timer is the controller's only concurrency concern: at
// most one timer is live at any time. Every index change while playing
// re-arms it; stopping playback or closing the controller tears it down.
type Controller struct {
	mu           sync.Mutex
	slides       Deck
	currentIndex int
	isPlaying    bool
	isFullscreen bool
	interval     time.Duration
	timer        *time.Timer
	playGen      int
	closed       bool
}

// NewController creates a controller over a non-empty deck.
func NewController(slides Deck) (*Controller, error) {
	return NewControllerWithInterval(slides, DefaultAutoplayInterval)
}

// NewControllerWithInterval is NewController with a custom autoplay period.
func NewControllerWithInterval(slides Deck, interval time.Duration) (*Controller, error) {
	if len(slides) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidReq, "deck must contain at least one slide")
	}
	return &Controller{
		slides:   slides,
		interval: interval,
	}, nil
}

// Snapshot returns the current view state. The returned deck must be
// treated as read-only.
func (c *Controller) Snapshot() (slides Deck, currentIndex int, isPlaying, isFullscreen bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slides, c.currentIndex, c.isPlaying, c.isFullscreen
}

// Slides returns the deck. Read-only for callers.
func (c *Controller) Slides() Deck {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slides
}

// CurrentIndex returns the active slide index.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex
}

// Next advances to the following slide, wrapping at the end.
func (c *Controller) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentIndex = (c.currentIndex + 1) % len(c.slides)
	c.rearmLocked()
	return c.currentIndex
}

// Previous moves to the preceding slide, wrapping at the start.
func (c *Controller) Previous() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentIndex = (c.currentIndex - 1 + len(c.slides)) % len(c.slides)
	c.rearmLocked()
	return c.currentIndex
}

// JumpTo sets the active slide. An out-of-range index is a caller
// contract violation and is reported, not clamped.
func (c *Controller) JumpTo(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.slides) {
		return errors.New(errors.ErrCodeInvalidReq, "slide index out of range")
	}
	c.currentIndex = i
	c.rearmLocked()
	return nil
}

// TogglePlay flips autoplay. Returns the new playing state.
func (c *Controller) TogglePlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.isPlaying = !c.isPlaying
	if c.isPlaying {
		c.armLocked()
	} else {
		c.disarmLocked()
	}
	return c.isPlaying
}

// ToggleFullscreen flips the fullscreen flag. The flag records intent;
// the actual viewport change is the client's best-effort platform call.
func (c *Controller) ToggleFullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isFullscreen = !c.isFullscreen
	return c.isFullscreen
}

// Close stops autoplay and rejects further timer fires. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.isPlaying = false
	c.disarmLocked()
}

// rearmLocked restarts the autoplay countdown after an index change.
func (c *Controller) rearmLocked() {
	if c.isPlaying {
		c.armLocked()
	}
}

func (c *Controller) armLocked() {
	c.disarmLocked()
	c.playGen++
	gen := c.playGen
	c.timer = time.AfterFunc(c.interval, func() {
		c.fire(gen)
	})
}

func (c *Controller) disarmLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fire advances the deck on autoplay tick. Stale generations (timer
// re-armed or stopped after this fire was scheduled) are ignored.
func (c *Controller) fire(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.isPlaying || gen != c.playGen {
		return
	}
	c.currentIndex = (c.currentIndex + 1) % len(c.slides)
	c.armLocked()
}
