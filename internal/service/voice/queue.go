// Package voice bridges a client websocket to the backend's duplex audio
// session: capture frames flow up in arrival order, synthesized frames
// flow down through a FIFO playback queue with barge-in.
package voice

import (
	"sync"
)

// PlaybackQueue serializes synthesized audio frames to a sink. Exactly
// one drain goroutine is live while frames remain; a frame pushed during
// playback waits its turn. Interrupt discards everything queued.
type PlaybackQueue struct {
	mu       sync.Mutex
	frames   [][]byte
	draining bool
	closed   bool
	sink     func(frame []byte)
}

// NewPlaybackQueue creates a queue draining into sink. The sink is called
// from the drain goroutine, one frame at a time, and should block until
// the frame is delivered.
func NewPlaybackQueue(sink func(frame []byte)) *PlaybackQueue {
	return &PlaybackQueue{sink: sink}
}

// Push enqueues a frame and starts the drain if it is idle.
func (q *PlaybackQueue) Push(frame []byte) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.frames = append(q.frames, frame)
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	go q.drain()
}

// Interrupt empties the queue immediately. The drain goroutine exits
// after the frame already handed to the sink; the next Push starts a
// fresh playback.
func (q *PlaybackQueue) Interrupt() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = nil
}

// Close interrupts and rejects further frames.
func (q *PlaybackQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.frames = nil
}

// Len reports the number of queued, not-yet-drained frames.
func (q *PlaybackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

func (q *PlaybackQueue) drain() {
	for {
		q.mu.Lock()
		if q.closed || len(q.frames) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		frame := q.frames[0]
		q.frames = q.frames[1:]
		q.mu.Unlock()

		q.sink(frame)
	}
}
