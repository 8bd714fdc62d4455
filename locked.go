package ixcoll

import (
	"context"
	"sync"
)

// Locked guards a Collection with a single reader/writer lock so it can be
// shared between goroutines. Mutations are serialized; reads, including
// calls of dynamic query functions made through Query, run under the read
// lock. Functions obtained from GetIndex or DynamicFunc run unguarded.
type Locked[ID comparable, R any] struct {
	mu sync.RWMutex
	c  *Collection[ID, R]
}

// NewLocked wraps c. c must not be used directly afterwards.
func NewLocked[ID comparable, R any](c *Collection[ID, R]) *Locked[ID, R] {
	return &Locked[ID, R]{c: c}
}

// Read runs fn with the read lock held.
func (l *Locked[ID, R]) Read(fn func(c *Collection[ID, R])) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.c)
}

// Write runs fn with the write lock held, for batches of mutations.
func (l *Locked[ID, R]) Write(fn func(c *Collection[ID, R])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.c)
}

// Add calls Collection.Add under the write lock.
func (l *Locked[ID, R]) Add(r R) R {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Add(r)
}

// AddFirst calls Collection.AddFirst under the write lock.
func (l *Locked[ID, R]) AddFirst(r R) R {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.AddFirst(r)
}

// InsertAt calls Collection.InsertAt under the write lock.
func (l *Locked[ID, R]) InsertAt(r R, i int) (R, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.InsertAt(r, i)
}

// AddMany calls Collection.AddMany under the write lock.
func (l *Locked[ID, R]) AddMany(rs []R) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.AddMany(rs)
}

// Update calls Collection.Update under the write lock.
func (l *Locked[ID, R]) Update(r R) (R, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Update(r)
}

// Remove calls Collection.Remove under the write lock.
func (l *Locked[ID, R]) Remove(id ID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Remove(id)
}

// RemoveMany calls Collection.RemoveMany under the write lock.
func (l *Locked[ID, R]) RemoveMany(ids []ID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.RemoveMany(ids)
}

// Reorder calls Collection.Reorder under the write lock.
func (l *Locked[ID, R]) Reorder(from, to int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Reorder(from, to)
}

// Clear calls Collection.Clear under the write lock.
func (l *Locked[ID, R]) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Clear()
}

// Rebuild holds the write lock for the whole rebuild.
func (l *Locked[ID, R]) Rebuild(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Rebuild(ctx)
}

// Len calls Collection.Len under the read lock.
func (l *Locked[ID, R]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Len()
}

// Get calls Collection.Get under the read lock.
func (l *Locked[ID, R]) Get(id ID) (R, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Get(id)
}

// Has calls Collection.Has under the read lock.
func (l *Locked[ID, R]) Has(id ID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Has(id)
}

// Records calls Collection.Records under the read lock.
func (l *Locked[ID, R]) Records() []R {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Records()
}

// By calls Collection.By under the read lock.
func (l *Locked[ID, R]) By(name string, key any) (R, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.By(name, key)
}

// ByOptional calls Collection.ByOptional under the read lock.
func (l *Locked[ID, R]) ByOptional(name string, key any) (R, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.ByOptional(name, key)
}

// Where calls Collection.Where under the read lock.
func (l *Locked[ID, R]) Where(name string, key any) ([]R, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Where(name, key)
}

// GetDerived calls Collection.GetDerived under the read lock.
func (l *Locked[ID, R]) GetDerived(name string) (any, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.GetDerived(name)
}

// Query calls Collection.Query under the read lock.
func (l *Locked[ID, R]) Query(name string, arg any) (any, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Query(name, arg)
}

// Related calls Collection.Related under the read lock.
func (l *Locked[ID, R]) Related(sources []any, path string) []R {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Related(sources, path)
}
