package ixcoll

import (
	"context"
	"iter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ixcoll/internal/store"
	"github.com/hupe1980/ixcoll/pathexpr"
)

// Collection is an ordered set of uniquely identified records together with
// the indexes declared at construction.
//
// Every mutating method leaves all indexes consistent before it returns. A
// Collection is not safe for concurrent use; see Locked.
type Collection[ID comparable, R any] struct {
	store  *store.Store[ID, R]
	env    *env[ID, R]
	states []indexState[ID, R]
	names  []string
	byName map[string]int

	opts     options
	diagnose DiagnosticHandler
	paths    *pathexpr.Cache
}

// New creates an empty collection. idOf returns the immutable identifier of a
// record. Index names must be unique and non-empty.
func New[ID comparable, R any](idOf func(R) ID, indexes []Index[ID, R], optFns ...Option) (*Collection[ID, R], error) {
	if idOf == nil {
		return nil, &DefinitionError{Reason: "nil id function"}
	}

	opts := applyOptions(optFns)

	paths, err := pathexpr.NewCache(opts.pathCacheSize)
	if err != nil {
		return nil, err
	}

	s := store.New(idOf)
	c := &Collection[ID, R]{
		store:  s,
		byName: make(map[string]int, len(indexes)),
		opts:   opts,
		paths:  paths,
	}
	c.env = &env[ID, R]{
		store:   s,
		view:    storeView[ID, R]{s: s},
		metrics: opts.metricsCollector,
	}

	for i, def := range indexes {
		if def == nil {
			return nil, &DefinitionError{Reason: "nil index definition"}
		}
		name := def.IndexName()
		if name == "" {
			return nil, &DefinitionError{Reason: "empty index name"}
		}
		if _, dup := c.byName[name]; dup {
			return nil, &DefinitionError{Index: name, Reason: "duplicate index name"}
		}
		st, err := def.build(c.env)
		if err != nil {
			return nil, err
		}
		c.byName[name] = i
		c.names = append(c.names, name)
		c.states = append(c.states, st)
	}

	c.diagnose = opts.diagnosticHandler
	if c.diagnose == nil {
		c.diagnose = newLogDiagnostics(opts.logger, opts.diagnosticRate, opts.diagnosticBurst).handle
	}

	c.flush()
	for _, st := range c.states {
		if fh, ok := st.(funcHolder); ok {
			if err := fh.missing(); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Len returns the number of records.
func (c *Collection[ID, R]) Len() int { return c.store.Len() }

// Get returns the record with the given id.
func (c *Collection[ID, R]) Get(id ID) (R, bool) { return c.store.Get(id) }

// Has reports whether a record with the given id exists.
func (c *Collection[ID, R]) Has(id ID) bool {
	_, ok := c.store.Lookup(id)
	return ok
}

// IndexOf returns the position of the record with the given id, or -1.
func (c *Collection[ID, R]) IndexOf(id ID) int {
	slot, ok := c.store.Lookup(id)
	if !ok {
		return -1
	}
	return c.store.Position(slot)
}

// At returns the record at position i.
func (c *Collection[ID, R]) At(i int) (R, bool) { return c.store.At(i) }

// Records returns a copy of all records in order.
func (c *Collection[ID, R]) Records() []R { return c.store.Records() }

// IDs returns the record identifiers in order.
func (c *Collection[ID, R]) IDs() []ID { return c.store.IDs() }

// All iterates positions and records in order. The collection must not be
// mutated during iteration.
func (c *Collection[ID, R]) All() iter.Seq2[int, R] { return c.store.All() }

// View returns a live read-only view of the records.
func (c *Collection[ID, R]) View() View[ID, R] { return c.env.view }

// Indexes describes the registered indexes in declaration order.
func (c *Collection[ID, R]) Indexes() []IndexInfo {
	out := make([]IndexInfo, len(c.states))
	for i, st := range c.states {
		out[i] = IndexInfo{Name: c.names[i], Kind: st.kind()}
		if kc, ok := st.(interface{ keyCount() int }); ok {
			out[i].Keys = kc.keyCount()
		}
	}
	return out
}

// Kind returns the kind of the named index.
func (c *Collection[ID, R]) Kind(name string) (Kind, bool) {
	i, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	return c.states[i].kind(), true
}

// Add appends r. A record with the same id is replaced in place instead.
func (c *Collection[ID, R]) Add(r R) R {
	start := time.Now()
	c.put(r, c.store.Len())
	c.flush()
	c.done("add", 1, start)
	return r
}

// AddFirst prepends r. A record with the same id is replaced in place instead.
func (c *Collection[ID, R]) AddFirst(r R) R {
	start := time.Now()
	c.put(r, 0)
	c.flush()
	c.done("add_first", 1, start)
	return r
}

// InsertAt inserts r at position i, which must be within [0, Len()].
// A record with the same id is replaced in place instead.
func (c *Collection[ID, R]) InsertAt(r R, i int) (R, error) {
	if n := c.store.Len(); i < 0 || i > n {
		var zero R
		return zero, &OutOfRangeError{Index: i, Len: n}
	}
	start := time.Now()
	c.put(r, i)
	c.flush()
	c.done("insert_at", 1, start)
	return r, nil
}

// AddMany appends every record and returns how many were applied. Derived
// indexes without hooks are recomputed once for the whole batch.
func (c *Collection[ID, R]) AddMany(rs []R) int {
	start := time.Now()
	for _, r := range rs {
		c.put(r, c.store.Len())
	}
	c.flush()
	c.done("add_many", len(rs), start)
	return len(rs)
}

// Update replaces the record sharing r's id, keeping its position. It reports
// false when no such record exists.
func (c *Collection[ID, R]) Update(r R) (R, bool) {
	if !c.Has(c.store.IDOf(r)) {
		var zero R
		return zero, false
	}
	start := time.Now()
	c.put(r, 0)
	c.flush()
	c.done("update", 1, start)
	return r, true
}

// Remove deletes the record with the given id and reports whether it existed.
func (c *Collection[ID, R]) Remove(id ID) bool {
	start := time.Now()
	if _, ok := c.delete(id); !ok {
		return false
	}
	c.flush()
	c.done("remove", 1, start)
	return true
}

// RemoveMany deletes every listed record and returns how many existed.
func (c *Collection[ID, R]) RemoveMany(ids []ID) int {
	start := time.Now()
	n := 0
	for _, id := range ids {
		if _, ok := c.delete(id); ok {
			n++
		}
	}
	c.flush()
	c.done("remove_many", n, start)
	return n
}

// Reorder moves the record at position from to position to. Positions out of
// range, or equal, leave the collection untouched and return false.
func (c *Collection[ID, R]) Reorder(from, to int) bool {
	n := c.store.Len()
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}
	start := time.Now()
	c.store.Move(from, to)
	for _, st := range c.states {
		st.reordered()
	}
	c.flush()
	c.done("reorder", 1, start)
	return true
}

// Clear removes every record and returns how many there were. Derived indexes
// are recomputed and dynamic factories invoked again on the empty collection.
func (c *Collection[ID, R]) Clear() int {
	start := time.Now()
	n := c.store.Len()
	c.store.Reset()
	for _, st := range c.states {
		st.reset()
	}
	c.flush()
	c.done("clear", n, start)
	return n
}

// Rebuild recomputes every derived index and re-invokes every dynamic factory
// from the current records. Up to WithRebuildConcurrency computations run in
// parallel; the records must not change until Rebuild returns. On error no
// index is changed.
func (c *Collection[ID, R]) Rebuild(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.rebuildConcurrency)

	applies := make([]func(), len(c.states))
	count := 0
	for i, st := range c.states {
		rb, ok := st.(rebuilder)
		if !ok {
			continue
		}
		count++
		logger := c.opts.logger.WithIndex(c.names[i])
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			apply, err := rb.rebuild()
			if err != nil {
				return err
			}
			logger.DebugContext(gctx, "index recomputed", "kind", st.kind().String(), "duration", time.Since(start))
			applies[i] = apply
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	c.opts.logger.LogRebuild(ctx, count, err)
	if err != nil {
		return err
	}

	for _, apply := range applies {
		if apply != nil {
			apply()
		}
	}
	return nil
}

// put stores r at pos, or in place of the record it replaces.
func (c *Collection[ID, R]) put(r R, pos int) {
	if old, ok := c.delete(c.store.IDOf(r)); ok {
		pos = old
	}
	slot := c.store.Insert(r, pos)
	for _, st := range c.states {
		st.added(slot, r)
	}
}

// delete removes id and returns the position it held.
func (c *Collection[ID, R]) delete(id ID) (int, bool) {
	slot, old, pos, ok := c.store.Delete(id)
	if !ok {
		return -1, false
	}
	for _, st := range c.states {
		st.removed(slot, old)
	}
	return pos, true
}

func (c *Collection[ID, R]) flush() {
	for _, st := range c.states {
		st.flush()
	}
}

func (c *Collection[ID, R]) done(op string, affected int, start time.Time) {
	c.opts.metricsCollector.RecordMutation(op, affected, time.Since(start))
	c.opts.logger.LogMutation(context.Background(), op, affected, c.store.Len())
}

// lookup resolves name to its state for op. strict selects whether an
// unregistered name is an error.
func (c *Collection[ID, R]) lookup(name, op string, want Kind, strict bool) (indexState[ID, R], error) {
	i, ok := c.byName[name]
	if !ok {
		if strict {
			return nil, &UnknownIndexError{Index: name, Op: op}
		}
		return nil, nil
	}
	st := c.states[i]
	if want != 0 && st.kind() != want {
		return nil, &KindMismatchError{Index: name, Kind: st.kind(), Op: op}
	}
	return st, nil
}
