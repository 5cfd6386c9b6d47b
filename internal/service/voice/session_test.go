package voice

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
)

// fakeConn is an in-memory Conn: reads come from the in channel, writes
// are recorded.
type fakeConn struct {
	in     chan []byte
	mu     sync.Mutex
	writes [][]byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-c.in:
		return websocket.TextMessage, msg, nil
	case <-c.closed:
		return 0, nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-c.closed:
		return io.EOF
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	c.writes = append(c.writes, cp)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) send(t *testing.T, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	c.in <- raw
}

// messagesOfType decodes recorded client writes and filters by type.
func (c *fakeConn) messagesOfType(typ string) []ClientMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []ClientMessage
	for _, raw := range c.writes {
		var msg ClientMessage
		if json.Unmarshal(raw, &msg) == nil && msg.Type == typ {
			out = append(out, msg)
		}
	}
	return out
}

func modelTurnMessage(frames ...string) map[string]interface{} {
	parts := make([]map[string]interface{}, 0, len(frames))
	for _, f := range frames {
		parts = append(parts, map[string]interface{}{
			"inlineData": map[string]interface{}{
				"mimeType": "audio/pcm;rate=24000",
				"data":     f,
			},
		})
	}
	return map[string]interface{}{
		"serverContent": map[string]interface{}{
			"modelTurn": map[string]interface{}{"parts": parts},
		},
	}
}

func startSession(t *testing.T) (*Session, *fakeConn, *fakeConn, chan struct{}) {
	t.Helper()
	client := newFakeConn()
	upstream := newFakeConn()
	s := NewSession(client, upstream, logger.Nop())

	ran := make(chan struct{})
	go func() {
		s.Run()
		close(ran)
	}()
	return s, client, upstream, ran
}

func waitForRun(t *testing.T, ran chan struct{}) {
	t.Helper()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("session did not shut down")
	}
}

func TestSession_PlaybackRelaysFramesInOrder(t *testing.T) {
	s, client, upstream, ran := startSession(t)

	upstream.send(t, modelTurnMessage("frame-1", "frame-2"))
	upstream.send(t, modelTurnMessage("frame-3"))

	require.Eventually(t, func() bool {
		return len(client.messagesOfType("audio")) == 3
	}, time.Second, time.Millisecond)

	got := client.messagesOfType("audio")
	for i, msg := range got {
		assert.Equal(t, fmt.Sprintf("frame-%d", i+1), msg.Data)
	}

	s.Close("test over")
	waitForRun(t, ran)
}

func TestSession_InterruptionFlushesAndNotifiesClient(t *testing.T) {
	s, client, upstream, ran := startSession(t)

	upstream.send(t, map[string]interface{}{
		"serverContent": map[string]interface{}{"interrupted": true},
	})

	require.Eventually(t, func() bool {
		return len(client.messagesOfType("interrupted")) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, 0, s.queue.Len())

	// Playback resumes cleanly after the barge-in.
	upstream.send(t, modelTurnMessage("after"))
	require.Eventually(t, func() bool {
		return len(client.messagesOfType("audio")) == 1
	}, time.Second, time.Millisecond)

	s.Close("test over")
	waitForRun(t, ran)
}

func TestSession_MutedCaptureIsDropped(t *testing.T) {
	s, client, upstream, ran := startSession(t)

	client.send(t, ClientMessage{Type: "mute"})
	client.send(t, ClientMessage{Type: "audio", Data: "dropped"})
	client.send(t, ClientMessage{Type: "unmute"})
	client.send(t, ClientMessage{Type: "audio", Data: "relayed"})

	// Client messages are handled strictly in order, so once the second
	// capture arrives upstream the first one was already discarded.
	require.Eventually(t, func() bool {
		upstream.mu.Lock()
		defer upstream.mu.Unlock()
		return len(upstream.writes) == 1
	}, time.Second, time.Millisecond)

	upstream.mu.Lock()
	var input realtimeInput
	require.NoError(t, json.Unmarshal(upstream.writes[0], &input))
	upstream.mu.Unlock()

	require.Len(t, input.RealtimeInput.MediaChunks, 1)
	assert.Equal(t, captureMimeType, input.RealtimeInput.MediaChunks[0].MimeType)
	assert.Equal(t, "relayed", input.RealtimeInput.MediaChunks[0].Data)

	s.Close("test over")
	waitForRun(t, ran)
}

func TestSession_ClientHangupTearsEverythingDown(t *testing.T) {
	_, client, upstream, ran := startSession(t)

	client.send(t, ClientMessage{Type: "close"})
	waitForRun(t, ran)

	assert.True(t, client.isClosed())
	assert.True(t, upstream.isClosed())
	require.Len(t, client.messagesOfType("closed"), 1)
}

// newGorillaPair upgrades a real websocket so the client leg is a
// *websocket.Conn with its single-writer contract, not a mutex-guarded
// fake.
func newGorillaPair(t *testing.T) (serverSide *websocket.Conn, peer *websocket.Conn) {
	t.Helper()
	upgraded := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		upgraded <- conn
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	select {
	case serverSide = <-upgraded:
	case <-time.After(time.Second):
		t.Fatal("upgrade did not complete")
	}
	return serverSide, peer
}

// The drain goroutine, the upstream pump's interrupted flush, and Close
// all write to the client leg. Over a real connection overlapping writes
// panic, so this floods playback frames while interruptions land between
// them.
func TestSession_BargeInDuringPlaybackOverRealConn(t *testing.T) {
	clientLeg, peer := newGorillaPair(t)
	upstream := newFakeConn()
	s := NewSession(clientLeg, upstream, logger.Nop())

	ran := make(chan struct{})
	go func() {
		s.Run()
		close(ran)
	}()

	// The peer drains slowly so frame writes stay in flight while the
	// upstream pump handles the next interruption.
	go func() {
		for {
			if _, _, err := peer.ReadMessage(); err != nil {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	frame := strings.Repeat("a", 8192)
	turn, err := json.Marshal(modelTurnMessage(frame, frame, frame))
	require.NoError(t, err)
	interrupt, err := json.Marshal(map[string]interface{}{
		"serverContent": map[string]interface{}{"interrupted": true},
	})
	require.NoError(t, err)

	go func() {
		for i := 0; i < 100; i++ {
			for _, raw := range [][]byte{turn, interrupt} {
				select {
				case upstream.in <- raw:
				case <-s.Done():
					return
				}
			}
		}
	}()

	// An unserialized write pair panics the process well within this.
	time.Sleep(300 * time.Millisecond)

	s.Close("test over")
	waitForRun(t, ran)
}

func TestSession_UpstreamFailureClosesClient(t *testing.T) {
	_, client, upstream, ran := startSession(t)

	upstream.Close()
	waitForRun(t, ran)

	assert.True(t, client.isClosed())
}
