package core

// Conversation is an ordered, append-only sequence of messages. A conversation
// is owned by a single front-end session and is not safe for concurrent use;
// session stores serialize access.
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation seeded with msgs.
func NewConversation(msgs ...Message) *Conversation {
	c := &Conversation{messages: make([]Message, 0, len(msgs))}
	c.messages = append(c.messages, msgs...)
	return c
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	c.messages = append(c.messages, msgs...)
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Last returns the most recent message and false if the conversation is empty.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.messages) }
