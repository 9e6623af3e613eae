// Package chat implements the tutor conversations of the lesson, document
// and mind-map panels.
package chat

// Role is the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one chat bubble. Failed marks model messages that report an
// error rather than an answer; they are shown but never sent back as
// history.
type Message struct {
	Role   Role
	Text   string
	Failed bool
}

// Conversation is an append-only transcript owned by one surface.
type Conversation struct {
	msgs []Message
}

// NewConversation starts a transcript, optionally with a model greeting.
func NewConversation(greeting string) *Conversation {
	c := &Conversation{}
	if greeting != "" {
		c.Append(Message{Role: RoleModel, Text: greeting})
	}
	return c
}

// Append adds a message.
func (c *Conversation) Append(m Message) {
	c.msgs = append(c.msgs, m)
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.msgs) }

// Last returns the newest message.
func (c *Conversation) Last() (Message, bool) {
	if len(c.msgs) == 0 {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1], true
}
