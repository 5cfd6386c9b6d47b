package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/app"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/chat"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/deck"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/limiter"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/service/voice"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

type stubGenerator struct{}

func (stubGenerator) GeneratePresentation(ctx context.Context) (deck.Deck, error) {
	return deck.Deck{{ID: 1, LayoutType: deck.LayoutCover}}, nil
}

func newTestRegistry() *Registry {
	return NewRegistry(func() *app.Controller {
		return app.NewController(stubGenerator{}, limiter.New(1, 10), logger.Nop())
	})
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r := newTestRegistry()

	s := r.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, app.StateIdle, s.App.State())
	assert.Equal(t, chat.Greeting, s.Chat.Messages()[0].Text)

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	r := newTestRegistry()

	a := r.Create()
	b := r.Create()
	require.NotEqual(t, a.ID, b.ID)

	a.Chat.AppendUser("hola desde a")
	assert.Len(t, b.Chat.Messages(), 1)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Get("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestRegistry_Delete(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()

	require.NoError(t, r.Delete(s.ID))
	_, err := r.Get(s.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	err = r.Delete(s.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestRegistry_CloseAll(t *testing.T) {
	r := newTestRegistry()
	a := r.Create()
	b := r.Create()

	r.CloseAll()

	for _, s := range []*Session{a, b} {
		_, err := r.Get(s.ID)
		assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
		// Closed controllers refuse new generations.
		err = s.App.Generate()
		assert.True(t, errors.Is(err, errors.ErrCodeConflict))
	}
}

// nopConn satisfies voice.Conn for sessions that are never run.
type nopConn struct{}

func (nopConn) ReadMessage() (int, []byte, error) { return 0, nil, nil }
func (nopConn) WriteMessage(int, []byte) error    { return nil }
func (nopConn) Close() error                      { return nil }

func newVoiceCall() *voice.Session {
	return voice.NewSession(nopConn{}, nopConn{}, logger.Nop())
}

func TestSession_VoiceCallIsASingleton(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()

	first := newVoiceCall()
	require.Nil(t, s.SwapVoice(first))

	// A second call displaces the first; the caller gets it back to tear
	// it down.
	second := newVoiceCall()
	assert.Same(t, first, s.SwapVoice(second))

	// Detaching a stale call leaves the active one in place.
	s.DetachVoice(first)
	assert.Same(t, second, s.SwapVoice(nil))
}

func TestSession_DetachClearsActiveCall(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()

	call := newVoiceCall()
	require.Nil(t, s.SwapVoice(call))

	s.DetachVoice(call)
	assert.Nil(t, s.SwapVoice(nil))
}
