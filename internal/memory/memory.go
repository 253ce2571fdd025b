package memory

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultMaxMessages bounds a session when the store is built with zero.
const DefaultMaxMessages = 40

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation.
type Message struct {
	// ID is a ULID, so IDs sort in insertion order.
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// Store keeps conversation history keyed by session id.
type Store interface {
	// Load returns the session's messages, oldest first. An unknown
	// session has no messages.
	Load(ctx context.Context, session string) ([]Message, error)

	// Append adds messages to the session and evicts the oldest beyond the
	// store's limit.
	Append(ctx context.Context, session string, msgs ...Message) error

	// Clear forgets the session.
	Clear(ctx context.Context, session string) error

	Close() error
}

// ids hands out monotonically increasing ULIDs.
type ids struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDs() *ids {
	return &ids{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ids) next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

// stamp fills in ID and Time of messages that lack them.
func stamp(g *ids, msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		now := time.Now()
		if m.Time.IsZero() {
			m.Time = now
		}
		if m.ID == "" {
			m.ID = g.next(now)
		}
		out[i] = m
	}
	return out
}

func limitOrDefault(max int) int {
	if max <= 0 {
		return DefaultMaxMessages
	}
	return max
}
