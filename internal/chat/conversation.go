// Package chat holds the conversation model for the consultant widget.
package chat

import (
	"sync"
)

// Role identifies the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one conversation entry. The trailing model message grows
// append-only while a streaming response is in flight.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Greeting opens every conversation, matching the consultant persona.
const Greeting = "¡Hola! Soy su Consultor Senior de Prestige Foods. ¿En qué puedo asesorarle hoy respecto a su estrategia de exportación o sobre nuestras frutas exóticas?"

// Apology replaces a propagated error when streaming fails; chat failures
// never leave the widget.
const Apology = "Lo siento, he tenido un inconveniente técnico. ¿Podría repetirme la consulta?"

// Conversation is an ordered message history. Safe for concurrent use;
// chunk application order is the caller's arrival order.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

// NewConversation returns a history seeded with the greeting.
func NewConversation() *Conversation {
	return &Conversation{
		messages: []Message{{Role: RoleModel, Text: Greeting}},
	}
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// AppendUser records a user message.
func (c *Conversation) AppendUser(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: RoleUser, Text: text})
}

// BeginModel opens an empty trailing model message for streaming.
func (c *Conversation) BeginModel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: RoleModel})
}

// AppendChunk grows the trailing model message. Chunks are applied in
// the order they arrive.
func (c *Conversation) AppendChunk(chunk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 || c.messages[len(c.messages)-1].Role != RoleModel {
		c.messages = append(c.messages, Message{Role: RoleModel})
	}
	c.messages[len(c.messages)-1].Text += chunk
}

// AppendApology records the fixed in-widget failure message.
func (c *Conversation) AppendApology() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: RoleModel, Text: Apology})
}

// TrailingModelText returns the text of the trailing model message, or
// an empty string when the last entry is not a model message.
func (c *Conversation) TrailingModelText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 || c.messages[len(c.messages)-1].Role != RoleModel {
		return ""
	}
	return c.messages[len(c.messages)-1].Text
}
