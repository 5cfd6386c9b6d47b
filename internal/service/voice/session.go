package voice

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/util"
)

// Conn is the subset of *websocket.Conn the session needs on both legs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client-facing message envelope. Inbound types: audio, mute, unmute,
// close. Outbound types: audio, interrupted, closed.
type ClientMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

// Upstream live-session wire shapes (BidiGenerateContent).
type realtimeInput struct {
	RealtimeInput struct {
		MediaChunks []mediaChunk `json:"mediaChunks"`
	} `json:"realtimeInput"`
}

type mediaChunk struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type serverMessage struct {
	ServerContent *struct {
		ModelTurn *struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"modelTurn"`
		Interrupted bool `json:"interrupted"`
		TurnComplete bool `json:"turnComplete"`
	} `json:"serverContent"`
}

const captureMimeType = "audio/pcm;rate=16000"

// Session is one live voice call: a client websocket, an upstream duplex
// connection, and the playback queue between them. One session per app
// session; starting another tears this one down first.
type Session struct {
	id       string
	client   Conn
	upstream Conn
	queue    *PlaybackQueue
	muted    atomic.Bool
	logger   *logger.Logger

	// writeMu serializes every client-leg write; websocket connections
	// allow only one concurrent writer.
	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewSession wires the two legs together. Run must be called to start
// the pumps.
func NewSession(client, upstream Conn, log *logger.Logger) *Session {
	s := &Session{
		id:       util.RandomString(8),
		client:   client,
		upstream: upstream,
		done:     make(chan struct{}),
	}
	s.logger = log.With("voice_session", s.id)
	s.queue = NewPlaybackQueue(s.playFrame)
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Run pumps both directions until either leg fails or the client hangs
// up, then tears everything down. Blocks.
func (s *Session) Run() {
	go s.upstreamLoop()
	s.clientLoop()
	s.Close("session ended")
	<-s.done
}

// Done closes when the upstream pump has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close releases the upstream connection, the playback queue, and the
// client socket. Idempotent; every exit path of both loops lands here.
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		s.logger.Info("closing voice session", "reason", reason)
		s.queue.Close()
		s.upstream.Close()
		msg, _ := json.Marshal(ClientMessage{Type: "closed", Data: reason})
		s.writeClient(msg)
		s.client.Close()
	})
}

// writeClient is the single funnel for client-leg writes. The drain
// goroutine, the upstream pump, and Close all land here.
func (s *Session) writeClient(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.client.WriteMessage(websocket.TextMessage, data)
}

// clientLoop relays capture frames upstream in arrival order. Muted
// frames are dropped, not buffered.
func (s *Session) clientLoop() {
	for {
		_, raw, err := s.client.ReadMessage()
		if err != nil {
			s.Close("client disconnected")
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("unreadable client message", "error", err)
			continue
		}

		switch msg.Type {
		case "audio":
			if s.muted.Load() {
				continue
			}
			if err := s.sendCapture(msg.Data); err != nil {
				s.Close("upstream write failed")
				return
			}
		case "mute":
			s.muted.Store(true)
		case "unmute":
			s.muted.Store(false)
		case "close":
			s.Close("client hangup")
			return
		default:
			s.logger.Warn("unknown client message type", "type", msg.Type)
		}
	}
}

func (s *Session) sendCapture(data string) error {
	var input realtimeInput
	input.RealtimeInput.MediaChunks = []mediaChunk{{
		MimeType: captureMimeType,
		Data:     data,
	}}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return s.upstream.WriteMessage(websocket.TextMessage, payload)
}

// upstreamLoop queues synthesized frames strictly FIFO and applies
// barge-in: an interruption discards everything queued and tells the
// client to flush its own buffer.
func (s *Session) upstreamLoop() {
	defer close(s.done)
	for {
		_, raw, err := s.upstream.ReadMessage()
		if err != nil {
			s.Close("upstream closed")
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("unreadable upstream message", "error", err)
			continue
		}
		if msg.ServerContent == nil {
			continue
		}

		if msg.ServerContent.Interrupted {
			s.queue.Interrupt()
			flush, _ := json.Marshal(ClientMessage{Type: "interrupted"})
			if err := s.writeClient(flush); err != nil {
				s.Close("client write failed")
				return
			}
			continue
		}

		if msg.ServerContent.ModelTurn == nil {
			continue
		}
		for _, part := range msg.ServerContent.ModelTurn.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				s.queue.Push([]byte(part.InlineData.Data))
			}
		}
	}
}

// playFrame is the queue sink: one frame to the client at a time.
func (s *Session) playFrame(frame []byte) {
	msg, err := json.Marshal(ClientMessage{Type: "audio", Data: string(frame)})
	if err != nil {
		return
	}
	if err := s.writeClient(msg); err != nil {
		s.Close("client write failed")
	}
}
