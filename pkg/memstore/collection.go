// Package memstore is an in-process record store used for local runs and tests.
package memstore

import (
	"errors"
	"sync"
)

var (
	ErrNotFound  = errors.New("memstore: not found")
	ErrDuplicate = errors.New("memstore: duplicate id")
)

// Collection keeps records of T in insertion order, keyed by the id returned from idOf.
// clone is applied on the way in and out so callers never share memory with the store.
type Collection[T any] struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]T
	idOf  func(T) string
	clone func(T) T
}

func NewCollection[T any](idOf func(T) string, clone func(T) T) *Collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Collection[T]{
		rows:  make(map[string]T),
		idOf:  idOf,
		clone: clone,
	}
}

func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.clone(c.rows[id]))
	}
	return out
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.clone(v), true
}

func (c *Collection[T]) Insert(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.idOf(v)
	if _, ok := c.rows[id]; ok {
		return ErrDuplicate
	}
	c.rows[id] = c.clone(v)
	c.order = append(c.order, id)
	return nil
}

func (c *Collection[T]) Replace(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.idOf(v)
	if _, ok := c.rows[id]; !ok {
		return ErrNotFound
	}
	c.rows[id] = c.clone(v)
	return nil
}

func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rows[id]; !ok {
		return ErrNotFound
	}
	delete(c.rows, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Reset swaps the whole content for records in a single step.
func (c *Collection[T]) Reset(records []T) error {
	rows := make(map[string]T, len(records))
	order := make([]string, 0, len(records))
	for _, v := range records {
		id := c.idOf(v)
		if _, ok := rows[id]; ok {
			return ErrDuplicate
		}
		rows[id] = c.clone(v)
		order = append(order, id)
	}

	c.mu.Lock()
	c.rows = rows
	c.order = order
	c.mu.Unlock()
	return nil
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
