package bdd

import (
	"math/big"

	"github.com/dalzilio/rudd"
)

// Node is an opaque, reference-counted handle to a BDD. Two Nodes compare
// equal (via Manager.Equal) iff they denote the same Boolean function; the
// façade never exposes the underlying node ID.
type Node = rudd.Node

// Manager owns one rudd BDD instance for the lifetime of a single
// top-level search; it is discarded once that search returns a plan. It is
// configured with twice as many variables as there are bits across all fact
// groups (pre/eff interleaved, see internal/symvars) and a cache sized by
// Config.CacheSize.
type Manager struct {
	set rudd.Set
}

// NewManager allocates a fresh BDD manager with numVars boolean variables
// (pre-bits and eff-bits for every group, interleaved by the caller) and a
// node-operation cache of the given size.
func NewManager(numVars, cacheSize int) (*Manager, error) {
	b, err := rudd.New(numVars, rudd.Cachesize(cacheSize))
	if err != nil {
		return nil, err
	}
	return &Manager{set: rudd.Set{BDD: b}}, nil
}

// True, False return the boolean constants.
func (m *Manager) True() Node  { return m.set.True() }
func (m *Manager) False() Node { return m.set.False() }

// Lit returns the positive or negative literal of variable v.
func (m *Manager) Lit(v int, positive bool) Node {
	if positive {
		return m.set.Ithvar(v)
	}
	return m.set.NIthvar(v)
}

// Not returns the negation of n.
func (m *Manager) Not(n Node) Node { return m.set.Not(n) }

// And returns the conjunction of zero or more nodes (True if empty).
func (m *Manager) And(ns ...Node) Node { return m.set.And(ns...) }

// Or returns the disjunction of zero or more nodes (False if empty).
func (m *Manager) Or(ns ...Node) Node { return m.set.Or(ns...) }

// Xnor returns the bi-implication a ↔ b, used to build per-group biimp
// constraints (internal/symvars CreateBiimp).
func (m *Manager) Xnor(a, b Node) Node { return m.set.Equiv(a, b) }

// Exists existentially quantifies n over the variables in cube (a conjunction
// of positive literals built with Makeset).
func (m *Manager) Exists(n, cube Node) Node { return m.set.Exist(n, cube) }

// Makeset builds a cube (conjunction of positive literals) over the given
// variable ids, used as the argument to Exists/AndAbstract/SwapVars.
func (m *Manager) Makeset(vars []int) Node { return m.set.Makeset(vars) }

// AndAbstract computes (a ∧ b) and existentially quantifies the result over
// cube in a single relational-product step — this is the image/pre-image
// workhorse of internal/transition.
func (m *Manager) AndAbstract(a, b, cube Node) Node {
	return m.set.AppEx(a, b, rudd.OPand, cube)
}

// AndAbstractLimit behaves like AndAbstract but aborts and reports failure if
// the limit's node-count or wall-clock budget is exceeded. On failure the
// caller must discard the attempted refinement and keep using its prior
// value.
func (m *Manager) AndAbstractLimit(a, b, cube Node, limit Limit) (Node, bool) {
	if limit.Deadline.Expired() {
		return nil, false
	}
	r := m.AndAbstract(a, b, cube)
	if limit.exceeded(m.Size(r)) {
		return nil, false
	}
	return r, true
}

// AndLimit is And bounded by limit; see AndAbstractLimit.
func (m *Manager) AndLimit(a, b Node, limit Limit) (Node, bool) {
	if limit.Deadline.Expired() {
		return nil, false
	}
	r := m.set.And(a, b)
	if limit.exceeded(m.Size(r)) {
		return nil, false
	}
	return r, true
}

// OrLimit is Or bounded by limit; see AndAbstractLimit.
func (m *Manager) OrLimit(a, b Node, limit Limit) (Node, bool) {
	if limit.Deadline.Expired() {
		return nil, false
	}
	r := m.set.Or(a, b)
	if limit.exceeded(m.Size(r)) {
		return nil, false
	}
	return r, true
}

// SwapVars renames every variable in from to the corresponding variable in
// to (both lists equally long), used to move a state BDD from the eff
// encoding back to the pre encoding (or vice versa) after an image step.
func (m *Manager) SwapVars(n Node, from, to []int) Node {
	r := m.set.NewReplacer(from, to)
	return m.set.Replace(n, r)
}

// Size returns the node count of n.
func (m *Manager) Size(n Node) int {
	size := 0
	_ = m.set.Allnodes(func(id, level, low, high int) error {
		size++
		return nil
	}, n)
	return size
}

// CountMinterm returns the number of satisfying assignments of n over nvars
// boolean variables, using arbitrary-precision arithmetic to avoid overflow
// for large state spaces.
func (m *Manager) CountMinterm(n Node, nvars int) *big.Int {
	count := m.set.Satcount(n)
	// Satcount is defined relative to Varnum(); rescale down to the
	// caller-specified number of relevant variables when it differs.
	total := m.set.Varnum()
	if nvars <= 0 || nvars >= total {
		return count
	}
	scale := new(big.Int).Lsh(big.NewInt(1), uint(total-nvars))
	if scale.Sign() == 0 {
		return count
	}
	q, _ := new(big.Int).QuoRem(count, scale, new(big.Int))
	return q
}

var errStopAllsat = &stopIteration{}

type stopIteration struct{}

func (*stopIteration) Error() string { return "stop" }

// PickOneCube returns a ternary cube (one entry per variable; -1 means
// don't-care, 0/1 a fixed value) satisfying n, or ok=false if n is the empty
// set.
func (m *Manager) PickOneCube(n Node) (cube []int, ok bool) {
	if m.Equal(n, m.False()) {
		return nil, false
	}
	err := m.set.Allsat(n, func(assignment []int) error {
		cube = append([]int(nil), assignment...)
		return errStopAllsat
	})
	if err != nil && err != errStopAllsat {
		return nil, false
	}
	return cube, cube != nil
}

// Equal tests semantic equivalence of two nodes.
func (m *Manager) Equal(a, b Node) bool { return m.set.Equal(a, b) }

// IsFalse reports whether n denotes the empty set.
func (m *Manager) IsFalse(n Node) bool { return m.Equal(n, m.False()) }

// Stats returns a human-readable summary of manager memory usage.
func (m *Manager) Stats() string { return m.set.Stats() }
