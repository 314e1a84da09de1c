package conversation

import (
	"slices"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// WelcomeText seeds every new conversation.
const WelcomeText = "Welcome to the official Federal Urdu University Academic Assistant. I am here to provide factual information regarding admissions, fees, and campus policies based on our verified institutional records.\n\nHow can I assist you today?"

// Message is one entry in the conversation log. Messages are never edited
// after they are appended. Assistant messages always carry a non-nil
// Sources slice, so an unsourced reply encodes as an empty list.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources"`
}

// State is a point-in-time copy of a conversation.
type State struct {
	Messages     []Message `json:"messages"`
	PendingInput string    `json:"pendingInput"`
	IsWaiting    bool      `json:"isWaiting"`
}

// LastAssistant returns the most recent assistant message.
func (s State) LastAssistant() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

func cloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	for i, m := range in {
		out[i] = m
		out[i].Sources = slices.Clone(m.Sources)
	}
	return out
}
