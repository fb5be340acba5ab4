// Package session holds the bearer token the API client attaches to requests.
//
// Every Holder keeps the current token in memory so Token never blocks; the
// durable implementations write through to their backing store on SetToken and
// ClearToken and load the persisted token once when constructed.
package session

import (
	"context"
	"strings"
	"sync"
)

// DefaultKey is the fixed key the token is persisted under.
const DefaultKey = "shopadmin.token"

// Holder exposes the token lifecycle consumed by the transport and the account slice.
type Holder interface {
	Token() string
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

type cached struct {
	mu    sync.RWMutex
	token string
}

func (c *cached) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *cached) set(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

// MemoryStore keeps the token for the life of the process only.
type MemoryStore struct {
	cached
}

func NewMemoryStore(token string) *MemoryStore {
	s := &MemoryStore{}
	s.set(token)
	return s
}

func (s *MemoryStore) SetToken(_ context.Context, token string) error {
	s.set(token)
	return nil
}

func (s *MemoryStore) ClearToken(context.Context) error {
	s.set("")
	return nil
}
