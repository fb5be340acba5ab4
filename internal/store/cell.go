package store

import (
	"sort"
	"sync"
)

// cell owns one state value and its listeners. Writes happen only through
// update, and every write is followed by a snapshot broadcast.
type cell[S any] struct {
	mu        sync.Mutex
	state     S
	clone     func(S) S
	listeners map[int]func(S)
	nextID    int
}

func newCell[S any](initial S, clone func(S) S) *cell[S] {
	return &cell[S]{state: initial, clone: clone, listeners: map[int]func(S){}}
}

func (c *cell[S]) snapshot() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clone(c.state)
}

func (c *cell[S]) update(mutate func(*S)) {
	c.mu.Lock()
	mutate(&c.state)
	snap := c.clone(c.state)
	fns := c.listenersLocked()
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (c *cell[S]) listenersLocked() []func(S) {
	if len(c.listeners) == 0 {
		return nil
	}
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(S), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	return fns
}

func (c *cell[S]) subscribe(fn func(S)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}
