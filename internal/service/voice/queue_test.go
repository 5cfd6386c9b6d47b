package voice

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectingSink records frames in delivery order.
type collectingSink struct {
	mu     sync.Mutex
	frames []string
}

func (s *collectingSink) sink(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, string(frame))
}

func (s *collectingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.frames))
	copy(out, s.frames)
	return out
}

func TestPlaybackQueue_FIFO(t *testing.T) {
	sink := &collectingSink{}
	q := NewPlaybackQueue(sink.sink)

	q.Push([]byte("uno"))
	q.Push([]byte("dos"))
	q.Push([]byte("tres"))

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"uno", "dos", "tres"}, sink.snapshot())
	assert.Equal(t, 0, q.Len())
}

func TestPlaybackQueue_InterruptDiscardsQueuedFrames(t *testing.T) {
	// The sink blocks so frames pile up behind the one in flight.
	delivered := &collectingSink{}
	proceed := make(chan struct{})
	q := NewPlaybackQueue(func(frame []byte) {
		delivered.sink(frame)
		<-proceed
	})

	q.Push([]byte("playing"))
	require.Eventually(t, func() bool {
		return len(delivered.snapshot()) == 1
	}, time.Second, time.Millisecond)

	q.Push([]byte("queued-1"))
	q.Push([]byte("queued-2"))
	require.Equal(t, 2, q.Len())

	// Barge-in: everything queued disappears, the in-flight frame finishes.
	q.Interrupt()
	assert.Equal(t, 0, q.Len())
	proceed <- struct{}{}

	// A later frame starts a fresh playback.
	q.Push([]byte("resumed"))
	require.Eventually(t, func() bool {
		return len(delivered.snapshot()) == 2
	}, time.Second, time.Millisecond)
	close(proceed)

	assert.Equal(t, []string{"playing", "resumed"}, delivered.snapshot())
}

func TestPlaybackQueue_CloseRejectsFrames(t *testing.T) {
	sink := &collectingSink{}
	q := NewPlaybackQueue(sink.sink)

	q.Close()
	q.Push([]byte("late"))

	assert.Equal(t, 0, q.Len())
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, sink.snapshot())
}
