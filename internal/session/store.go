// Package session persists per-conversation dialogue state. Two
// drivers are provided: an in-memory map for single-node deployments
// and tests, and Redis for anything that restarts.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"turnero/internal/domain"
)

var ErrInvalidDriver = errors.New("session: unknown driver")

// State names the dialogue phase a conversation is in.
type State string

const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting"
	StateConfirming State = "awaiting_confirmation"
)

// Conversation is the stored context for one conversation id.
type Conversation struct {
	ID        string       `json:"id"`
	State     State        `json:"state"`
	Awaiting  domain.Slot  `json:"awaiting,omitempty"`
	Slots     domain.Slots `json:"slots"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewConversation(id string) *Conversation {
	now := time.Now()
	return &Conversation{ID: id, State: StateIdle, CreatedAt: now, UpdatedAt: now}
}

// HasData reports whether any slot has been collected.
func (c *Conversation) HasData() bool {
	return c.Slots != (domain.Slots{})
}

// Reset clears all collected data and returns to idle.
func (c *Conversation) Reset() {
	c.State = StateIdle
	c.Awaiting = ""
	c.Slots = domain.Slots{}
}

// Store persists conversations. Get returns nil for an unknown id,
// not an error.
type Store interface {
	Get(ctx context.Context, id string) (*Conversation, error)
	Save(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// MemoryStore keeps conversations in a map. Copies go in and out so
// callers never share the stored value.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string]Conversation)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, nil
	}
	out := conv
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, conv *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.UpdatedAt = time.Now()
	s.convs[conv.ID] = *conv
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
	return nil
}

// Close is a no-op; the map stays usable so late writers do not panic.
func (s *MemoryStore) Close() error { return nil }
