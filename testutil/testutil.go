package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, larger values concentrate on the first values.
// Skewed keys make collisions in single-value indexes common.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// OpKind identifies a scripted mutation.
type OpKind uint8

const (
	OpAdd OpKind = iota
	OpAddFirst
	OpInsert
	OpUpdate
	OpRemove
	OpReorder
	OpClear
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpAddFirst:
		return "add_first"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	case OpReorder:
		return "reorder"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Op is one scripted mutation. ID and Key describe the record for add,
// insert and update; Pos is the InsertAt position; From and To are Reorder
// positions and may be out of range.
type Op struct {
	Kind     OpKind
	ID       int
	Key      int
	Pos      int
	From, To int
}

// ScriptConfig controls Script.
type ScriptConfig struct {
	// Steps is the number of operations.
	Steps int
	// IDSpace bounds record ids to [0, IDSpace).
	IDSpace int
	// KeySpace bounds record keys to [0, KeySpace).
	KeySpace int
	// Skew is the Zipf exponent for keys; 0 picks keys uniformly.
	Skew float64
	// ClearRate is the probability of a Clear step.
	ClearRate float64
}

// DefaultScriptConfig returns a small config with frequent key collisions.
func DefaultScriptConfig() ScriptConfig {
	return ScriptConfig{
		Steps:     200,
		IDSpace:   40,
		KeySpace:  8,
		Skew:      1.2,
		ClearRate: 0.01,
	}
}

// Script generates a random mutation sequence. Removes and updates mostly
// target present ids, inserts use valid positions, and about one reorder in
// ten is out of range.
func (r *RNG) Script(cfg ScriptConfig) []Op {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := NewModel()
	ops := make([]Op, 0, cfg.Steps)
	for range cfg.Steps {
		op := r.nextLocked(cfg, m)
		m.Apply(op)
		ops = append(ops, op)
	}
	return ops
}

func (r *RNG) nextLocked(cfg ScriptConfig, m *Model) Op {
	key := func() int {
		if cfg.Skew > 0 {
			return r.zipfLocked(cfg.KeySpace, cfg.Skew)
		}
		return r.rand.Intn(cfg.KeySpace)
	}
	existing := func() int {
		if m.Len() == 0 || r.rand.Intn(5) == 0 {
			return r.rand.Intn(cfg.IDSpace)
		}
		return m.order[r.rand.Intn(m.Len())]
	}

	if cfg.ClearRate > 0 && r.rand.Float64() < cfg.ClearRate {
		return Op{Kind: OpClear}
	}

	switch p := r.rand.Intn(100); {
	case p < 35:
		return Op{Kind: OpAdd, ID: r.rand.Intn(cfg.IDSpace), Key: key()}
	case p < 42:
		return Op{Kind: OpAddFirst, ID: r.rand.Intn(cfg.IDSpace), Key: key()}
	case p < 50:
		return Op{Kind: OpInsert, ID: r.rand.Intn(cfg.IDSpace), Key: key(), Pos: r.rand.Intn(m.Len() + 1)}
	case p < 60:
		return Op{Kind: OpUpdate, ID: existing(), Key: key()}
	case p < 88:
		return Op{Kind: OpRemove, ID: existing()}
	default:
		n := max(m.Len(), 1)
		op := Op{Kind: OpReorder, From: r.rand.Intn(n), To: r.rand.Intn(n)}
		if r.rand.Intn(10) == 0 {
			op.To = n + r.rand.Intn(n)
		}
		return op
	}
}

// Model is a reference implementation of an ordered id -> key collection.
// Adding a present id replaces its key without moving it.
type Model struct {
	order []int
	keys  map[int]int
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{keys: make(map[int]int)}
}

// Len returns the number of ids.
func (m *Model) Len() int { return len(m.order) }

// IDs returns the ids in order.
func (m *Model) IDs() []int { return slices.Clone(m.order) }

// Key returns the key stored for id.
func (m *Model) Key(id int) (int, bool) {
	k, ok := m.keys[id]
	return k, ok
}

// Apply performs op.
func (m *Model) Apply(op Op) {
	switch op.Kind {
	case OpAdd:
		m.put(op.ID, op.Key, len(m.order))
	case OpAddFirst:
		m.put(op.ID, op.Key, 0)
	case OpInsert:
		if op.Pos >= 0 && op.Pos <= len(m.order) {
			m.put(op.ID, op.Key, op.Pos)
		}
	case OpUpdate:
		if _, ok := m.keys[op.ID]; ok {
			m.keys[op.ID] = op.Key
		}
	case OpRemove:
		if _, ok := m.keys[op.ID]; ok {
			delete(m.keys, op.ID)
			m.order = slices.DeleteFunc(m.order, func(id int) bool { return id == op.ID })
		}
	case OpReorder:
		n := len(m.order)
		if op.From < 0 || op.From >= n || op.To < 0 || op.To >= n || op.From == op.To {
			return
		}
		id := m.order[op.From]
		m.order = slices.Delete(m.order, op.From, op.From+1)
		m.order = slices.Insert(m.order, op.To, id)
	case OpClear:
		m.order = m.order[:0]
		clear(m.keys)
	}
}

func (m *Model) put(id, key, pos int) {
	if _, ok := m.keys[id]; ok {
		m.keys[id] = key
		return
	}
	m.keys[id] = key
	m.order = slices.Insert(m.order, pos, id)
}
