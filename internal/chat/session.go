// Package chat owns the chat session list and drives turn-taking with the
// chatbot service.
package chat

import (
	"time"

	"github.com/google/uuid"

	"medinote-gateway/pkg/api"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"

	// DefaultTitle is the placeholder title a new session carries until the
	// first real message renames it.
	DefaultTitle = "새 채팅"

	// titleRuneLimit caps the auto-generated title taken from the first user
	// message.
	titleRuneLimit = 20
)

type Attachment struct {
	Name     string `json:"name"`
	Locator  string `json:"locator"`
	MimeType string `json:"mime_type"`
}

type Message struct {
	ID          uuid.UUID    `json:"id"`
	Sender      string       `json:"sender"`
	Text        string       `json:"text"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Sources     []api.Source `json:"sources,omitempty"`
}

// Session is one conversation thread. Identity is two-phase: LocalID is the
// stable correlation id used for lookups and UI keys, RemoteID is the
// server-issued session id, 0 until the first server reply arrives. The
// LocalID never changes; only RemoteID is populated asynchronously.
type Session struct {
	LocalID   uuid.UUID `json:"local_id"`
	RemoteID  int64     `json:"remote_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// Synced reports whether the session exists server-side.
func (s *Session) Synced() bool { return s.RemoteID != 0 }

func (s *Session) append(msg Message) {
	s.Messages = append(s.Messages, msg)
}

func truncateTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleRuneLimit {
		return text
	}
	return string(runes[:titleRuneLimit])
}
