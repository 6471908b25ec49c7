package llm

import (
	"context"
	"sync"
)

const (
	DefaultHistoryTurns    = 5
	DefaultHistorySessions = 1000
)

type sessionKey struct{}

// WithSession tags ctx with a conversation id. Answers given under the same
// id see the earlier turns of that conversation.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFrom returns the conversation id of ctx, or "" when there is none
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// Turn is one answered question
type Turn struct {
	Question string
	Answer   string
}

// History keeps the last turns of each conversation. Both the turns per
// conversation and the number of conversations are bounded; the least
// recently used conversation is dropped first.
type History struct {
	mu          sync.Mutex
	maxTurns    int
	maxSessions int
	sessions    map[string]*conversation
	tick        uint64
}

type conversation struct {
	turns []Turn
	used  uint64
}

// NewHistory creates a History. Non-positive limits select the defaults.
func NewHistory(maxTurns, maxSessions int) *History {
	if maxTurns <= 0 {
		maxTurns = DefaultHistoryTurns
	}
	if maxSessions <= 0 {
		maxSessions = DefaultHistorySessions
	}
	return &History{
		maxTurns:    maxTurns,
		maxSessions: maxSessions,
		sessions:    make(map[string]*conversation),
	}
}

// Turns returns a copy of the turns recorded for id, oldest first
func (h *History) Turns(id string) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.sessions[id]
	if !ok {
		return nil
	}
	h.tick++
	c.used = h.tick

	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Add records a turn for id, dropping the oldest turn past the limit
func (h *History) Add(id string, turn Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.sessions[id]
	if !ok {
		if len(h.sessions) >= h.maxSessions {
			h.evictLocked()
		}
		c = &conversation{}
		h.sessions[id] = c
	}
	h.tick++
	c.used = h.tick

	c.turns = append(c.turns, turn)
	if over := len(c.turns) - h.maxTurns; over > 0 {
		c.turns = append([]Turn(nil), c.turns[over:]...)
	}
}

// Len returns the number of conversations held
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *History) evictLocked() {
	var (
		oldest string
		used   uint64
		found  bool
	)
	for id, c := range h.sessions {
		if !found || c.used < used {
			oldest, used, found = id, c.used, true
		}
	}
	if found {
		delete(h.sessions, oldest)
	}
}
