package statespace

import (
	"symplan/internal/bdd"
	"symplan/internal/fdr"
)

// States is the per-direction state space: node pool, open-by-f heap,
// open-by-g heap, closed tree, all-closed union, optional all-closed-by-g
// index, and the current bound.
type States struct {
	Mgr  *bdd.Manager
	Pool *Pool

	OpenByF *PairingHeap
	OpenByG *PairingHeap
	Closed  *ClosedTree

	ByG *ClosedByG // nil unless enabled

	AllClosed bdd.Node
	NumClosed int
	Bound     fdr.Cost
}

const unbounded = fdr.CostMax

func NewStates(mgr *bdd.Manager, useByG bool) *States {
	s := &States{
		Mgr:    mgr,
		Pool:   NewPool(),
		Closed: NewClosedTree(),
		Bound:  fdr.Cost{Value: unbounded},
	}
	s.AllClosed = mgr.False()
	s.OpenByF = NewPairingHeap(func(a, b int) bool { return s.lessF(a, b) })
	s.OpenByG = NewPairingHeap(func(a, b int) bool { return s.lessG(a, b) })
	if useByG {
		s.ByG = NewClosedByG(mgr)
	}
	return s
}

func (s *States) lessF(a, b int) bool {
	na, nb := s.Pool.Get(a), s.Pool.Get(b)
	if na.FValue != nb.FValue {
		if na.FValue.Value != nb.FValue.Value {
			return na.FValue.Value < nb.FValue.Value
		}
		return na.FValue.ZeroTag < nb.FValue.ZeroTag
	}
	if na.Cost != nb.Cost {
		if na.Cost.Value != nb.Cost.Value {
			return na.Cost.Value < nb.Cost.Value
		}
		return na.Cost.ZeroTag < nb.Cost.ZeroTag
	}
	return na.Heur < nb.Heur
}

func (s *States) lessG(a, b int) bool {
	na, nb := s.Pool.Get(a), s.Pool.Get(b)
	if na.Cost != nb.Cost {
		if na.Cost.Value != nb.Cost.Value {
			return na.Cost.Value < nb.Cost.Value
		}
		return na.Cost.ZeroTag < nb.Cost.ZeroTag
	}
	if na.FValue != nb.FValue {
		if na.FValue.Value != nb.FValue.Value {
			return na.FValue.Value < nb.FValue.Value
		}
		return na.FValue.ZeroTag < nb.FValue.ZeroTag
	}
	return na.Heur < nb.Heur
}

func fvalue(cost fdr.Cost, heur int) fdr.Cost {
	h := heur
	if h < 0 {
		h = 0
	}
	return fdr.Cost{Value: cost.Value + h, ZeroTag: cost.ZeroTag}
}

// Add allocates a new node (no BDD, zeroed costs) and returns it.
func (s *States) Add() *Node { return s.Pool.Add() }

// AddBDD sets n's BDD (the caller owns building it lazily, at most once).
func (s *States) AddBDD(n *Node, b bdd.Node) { n.BDD = b }

// AddInit initialises the root node with the given heuristic value and
// pushes it onto both heaps.
func (s *States) AddInit(b bdd.Node, heur int) *Node {
	n := s.Add()
	n.BDD = b
	n.Heur = heur
	n.Cost = fdr.Cost{}
	n.FValue = fvalue(n.Cost, heur)
	n.ParentID = -1
	n.TransID = -1
	s.OpenState(n)
	return n
}

// NewChild creates a successor node of parent via transition trans,
// pushing it onto both heaps; the caller supplies cost/heur (already
// combined with the parent's) and leaves BDD nil for lazy construction.
func (s *States) NewChild(parentID, transID int, cost fdr.Cost, heur int) *Node {
	n := s.Add()
	n.ParentID = parentID
	n.TransID = transID
	n.Cost = cost
	n.Heur = heur
	n.FValue = fvalue(cost, heur)
	s.OpenState(n)
	return n
}

// OpenState pushes n onto both open heaps.
func (s *States) OpenState(n *Node) {
	s.OpenByF.Push(n.ID)
	s.OpenByG.Push(n.ID)
}

// NextOpen pops the f-minimum open node, removing it from both heaps.
func (s *States) NextOpen() (*Node, bool) {
	id, ok := s.OpenByF.Pop()
	if !ok {
		return nil, false
	}
	s.OpenByG.Remove(id)
	return s.Pool.Get(id), true
}

// PeekOpen returns the f-minimum open node without removing it.
func (s *States) PeekOpen() (*Node, bool) {
	id, ok := s.OpenByF.Peek()
	if !ok {
		return nil, false
	}
	return s.Pool.Get(id), true
}

// MinOpenF returns the minimum f-value among open nodes, or CostMax if
// empty — used by the bi-directional termination test.
func (s *States) MinOpenF() fdr.Cost {
	n, ok := s.PeekOpen()
	if !ok {
		return fdr.Cost{Value: fdr.CostMax}
	}
	return n.FValue
}

// Close marks n closed, inserts it into the closed tree, and merges its BDD
// into AllClosed (and into ByG if enabled).
func (s *States) Close(n *Node) {
	n.IsClosed = true
	s.Closed.Insert(n.Cost, n.Heur, n.ID)
	s.NumClosed++
	s.AllClosed = s.Mgr.Or(s.AllClosed, n.BDD)
	if s.ByG != nil {
		s.ByG.Merge(n.Cost.Value, n.BDD)
	}
}

// RemoveClosedStates subtracts already-closed states from bdd, either via
// the blanket AllClosed complement or, if ByG is enabled, the bounded
// ascending-g walk.
func (s *States) RemoveClosedStates(state bdd.Node, cost fdr.Cost) bdd.Node {
	if s.ByG != nil {
		return s.ByG.RemoveUpTo(state, cost.Value)
	}
	return s.Mgr.And(state, s.Mgr.Not(s.AllClosed))
}
