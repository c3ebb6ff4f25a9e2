package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medinote-gateway/internal/clients"
	"medinote-gateway/internal/notify"
)

var (
	ErrNoCurrentSession = errors.New("no current chat session")
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrEmptyMessage     = errors.New("message text is empty")
)

// Controller owns the ordered session list. Exactly one session is current at
// a time, or none. All mutation goes through its methods; turns within one
// controller are serialized, matching the single-active-client model of the
// product.
type Controller struct {
	mu       sync.Mutex
	client   *clients.ChatbotClient
	notifier notify.Notifier
	userName string

	sessions   []*Session
	currentID  uuid.UUID
	hasCurrent bool
	listOpen   bool
}

func NewController(client *clients.ChatbotClient, notifier notify.Notifier, userName string) *Controller {
	if notifier == nil {
		notifier = notify.SlogNotifier{}
	}
	if userName == "" {
		userName = "사용자"
	}
	return &Controller{client: client, notifier: notifier, userName: userName}
}

func (c *Controller) greeting() Message {
	return Message{
		ID:        uuid.New(),
		Sender:    SenderAssistant,
		Text:      fmt.Sprintf("안녕하세요, %s님! 무엇을 도와드릴까요?", c.userName),
		Timestamp: time.Now(),
	}
}

func (c *Controller) newPlaceholderLocked() *Session {
	session := &Session{
		LocalID:   uuid.New(),
		RemoteID:  0,
		Title:     DefaultTitle,
		CreatedAt: time.Now(),
		Messages:  []Message{c.greeting()},
	}
	c.sessions = append(c.sessions, session)
	c.currentID = session.LocalID
	c.hasCurrent = true
	return session
}

// Load replaces the local list with the server's sessions and their message
// history. When no sessions exist, or when any fetch fails, a fresh
// placeholder is synthesized so there is always a current session to type
// into.
func (c *Controller) Load(ctx context.Context) error {
	items, err := c.client.ListSessions(ctx)
	if err != nil {
		return c.loadFallback(err)
	}

	loaded := make([]*Session, 0, len(items))
	for _, item := range items {
		detail, err := c.client.GetSession(ctx, item.SessionID)
		if err != nil {
			return c.loadFallback(err)
		}

		session := &Session{
			LocalID:   uuid.New(),
			RemoteID:  item.SessionID,
			Title:     item.Title,
			CreatedAt: parseTimestamp(item.CreatedAt),
		}
		for _, msg := range detail.Messages {
			sender := SenderUser
			if msg.Role == "assistant" {
				sender = SenderAssistant
			}
			session.append(Message{
				ID:        uuid.New(),
				Sender:    sender,
				Text:      msg.Content,
				Timestamp: parseTimestamp(msg.CreatedAt),
				Sources:   msg.Sources,
			})
		}
		loaded = append(loaded, session)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = loaded
	c.hasCurrent = false
	if len(loaded) > 0 {
		c.currentID = loaded[0].LocalID
		c.hasCurrent = true
	} else {
		c.newPlaceholderLocked()
	}
	return nil
}

func (c *Controller) loadFallback(err error) error {
	slog.Error("loading chat history failed", "error", err)
	c.notifier.Error("채팅 기록을 불러오지 못했습니다.")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = nil
	c.hasCurrent = false
	c.newPlaceholderLocked()
	return err
}

// NewSession starts a local placeholder conversation. It becomes persistent
// only once the first server reply returns a real session id.
func (c *Controller) NewSession() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	session := c.newPlaceholderLocked()
	c.listOpen = false
	return *session
}

// Send runs one conversational turn against the current session. The user
// message is appended optimistically and stays appended even when the query
// fails; no automatic retry is attempted. On the first real message the
// placeholder title becomes a truncated prefix of the text. A successful
// reply appends the assistant message and records the server-issued session
// id, so later deletes target the right server session.
func (c *Controller) Send(ctx context.Context, text string, attachments []Attachment) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		c.notifier.Error("질문을 입력해 주세요.")
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.currentLocked()
	if !ok {
		return Message{}, ErrNoCurrentSession
	}

	session.append(Message{
		ID:          uuid.New(),
		Sender:      SenderUser,
		Text:        text,
		Timestamp:   time.Now(),
		Attachments: attachments,
	})
	if session.Title == DefaultTitle {
		session.Title = truncateTitle(text)
	}

	resp, err := c.client.Query(ctx, session.RemoteID, text)
	if err != nil {
		slog.Error("chatbot query failed", "local_id", session.LocalID, "error", err)
		c.notifier.Error("챗봇 호출 중 오류가 발생했어요.")
		return Message{}, err
	}

	reply := Message{
		ID:        uuid.New(),
		Sender:    SenderAssistant,
		Text:      resp.Answer,
		Timestamp: time.Now(),
		Sources:   resp.Sources,
	}
	session.append(reply)

	if resp.SessionID != session.RemoteID {
		session.RemoteID = resp.SessionID
	}
	return reply, nil
}

// Delete removes a session. A synced session is deleted server-side first and
// the local removal is aborted when that fails; an unsynced one is removed
// locally without any network call. When the deleted session was current, the
// first remaining session becomes current, or none.
func (c *Controller) Delete(ctx context.Context, localID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := -1
	for i, session := range c.sessions {
		if session.LocalID == localID {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrSessionNotFound
	}

	session := c.sessions[index]
	if session.Synced() {
		if err := c.client.DeleteSession(ctx, session.RemoteID); err != nil {
			slog.Error("deleting chat session failed", "remote_id", session.RemoteID, "error", err)
			c.notifier.Error("채팅 삭제에 실패했습니다.")
			return err
		}
	}

	c.sessions = append(c.sessions[:index], c.sessions[index+1:]...)
	if c.hasCurrent && c.currentID == localID {
		c.hasCurrent = false
		if len(c.sessions) > 0 {
			c.currentID = c.sessions[0].LocalID
			c.hasCurrent = true
		}
	}
	return nil
}

// DeleteAll clears the server-side history and the local list.
func (c *Controller) DeleteAll(ctx context.Context) error {
	if err := c.client.DeleteAllSessions(ctx); err != nil {
		c.notifier.Error("채팅 기록 삭제에 실패했습니다.")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = nil
	c.hasCurrent = false
	return nil
}

// Select makes a session current. Purely local; it also closes the session
// list overlay.
func (c *Controller) Select(localID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, session := range c.sessions {
		if session.LocalID == localID {
			c.currentID = localID
			c.hasCurrent = true
			c.listOpen = false
			return nil
		}
	}
	return ErrSessionNotFound
}

func (c *Controller) ToggleList() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listOpen = !c.listOpen
	return c.listOpen
}

func (c *Controller) ListOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listOpen
}

// Sessions returns a snapshot of the session list in its current order.
func (c *Controller) Sessions() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Session, len(c.sessions))
	for i, session := range c.sessions {
		out[i] = *session
	}
	return out
}

// Current returns a copy of the current session, if any.
func (c *Controller) Current() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, ok := c.currentLocked()
	if !ok {
		return Session{}, false
	}
	return *session, true
}

func (c *Controller) currentLocked() (*Session, bool) {
	if !c.hasCurrent {
		return nil, false
	}
	for _, session := range c.sessions {
		if session.LocalID == c.currentID {
			return session, true
		}
	}
	return nil, false
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
