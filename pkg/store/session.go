package store

import (
	"errors"
	"sync"
	"time"

	"trading-chat-be/pkg/spreadsheet"
)

var ErrTranscriptNotFound = errors.New("transcript not found")

// Message is one transcript entry exchanged with the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session represents the in-memory state of one user: the transcript that is
// replayed to the model and the rows of their latest upload.
type Session struct {
	UserID string

	mu         sync.RWMutex
	messages   []Message
	records    []spreadsheet.Record
	hasRecords bool
	updatedAt  time.Time
}

func NewSession(userID string) *Session {
	return &Session{UserID: userID, updatedAt: time.Now()}
}

// HasTranscript reports whether the session was seeded.
func (s *Session) HasTranscript() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages) > 0
}

// Seed sets the system message if the transcript is still empty. The first
// seed wins; later calls are no-ops. Returns true when this call seeded it.
func (s *Session) Seed(systemPrompt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) > 0 {
		return false
	}
	s.messages = append(s.messages, Message{Role: "system", Content: systemPrompt})
	s.updatedAt = time.Now()
	return true
}

// Append adds a message. When maxMessages > 1 the oldest non-system entries
// are dropped so that the stored transcript never exceeds it; the seed at
// index 0 is always kept. Smaller values leave the transcript unbounded.
func (s *Session) Append(role, content string, maxMessages int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ErrTranscriptNotFound
	}

	s.messages = append(s.messages, Message{Role: role, Content: content})
	if maxMessages > 1 && len(s.messages) > maxMessages {
		overflow := len(s.messages) - maxMessages
		kept := make([]Message, 0, maxMessages)
		kept = append(kept, s.messages[0])
		kept = append(kept, s.messages[1+overflow:]...)
		s.messages = kept
	}
	s.updatedAt = time.Now()
	return nil
}

// Messages returns a copy of the full transcript in order.
func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Recent returns a copy of the last n messages in order.
func (s *Session) Recent(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return []Message{}
	}
	start := 0
	if len(s.messages) > n {
		start = len(s.messages) - n
	}
	out := make([]Message, len(s.messages)-start)
	copy(out, s.messages[start:])
	return out
}

func (s *Session) SetRecords(records []spreadsheet.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if records == nil {
		records = []spreadsheet.Record{}
	}
	s.records = records
	s.hasRecords = true
	s.updatedAt = time.Now()
}

func (s *Session) Records() ([]spreadsheet.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.hasRecords
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
