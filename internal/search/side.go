package search

import (
	"symplan/internal/bdd"
	"symplan/internal/constraints"
	"symplan/internal/fdr"
	"symplan/internal/statespace"
	"symplan/internal/symvars"
	"symplan/internal/transition"
)

// Direction distinguishes forward from backward search. The engine models
// it as an enum with two callback-free branches rather than an interface
// with virtual dispatch.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Side is one direction's private search state: its own transition set,
// constraint collection, and state space.
type Side struct {
	Dir    Direction
	Vars   *symvars.Variables
	Trans  *transition.Sets
	Constr *constraints.Collection
	States *statespace.States

	Enabled       bool
	UseConstr     bool
	StepTimeLimit bdd.Limit
	Dirty         bool // set when a step aborted on a time limit
	Suspended     bool // set by the bi-directional scheduler once its open list empties

	lastStepWallNanos int64
	nextStepEstimate  float64

	// FixedBDD is the other end's seed BDD for a uni-directional search:
	// forward checks goal membership against it, backward checks initial
	// membership.
	FixedBDD bdd.Node
}

// image computes the successor (forward) or predecessor (backward) BDD for
// a transition.
func (s *Side) image(tr transition.BDDOf, state bdd.Node, limit bdd.Limit) (bdd.Node, bool) {
	if s.Dir == Forward {
		return transition.Image(s.Trans, tr, state, limit)
	}
	return transition.PreImage(s.Trans, tr, state, limit)
}

// applyConstraints conjoins the direction's constraint collection into
// state, if enabled.
func (s *Side) applyConstraints(state bdd.Node) bdd.Node {
	if !s.UseConstr || s.Constr == nil {
		return state
	}
	return s.Constr.Apply(state)
}

// buildNodeBDD lazily constructs a node's BDD from its parent, caching it on
// the node so it is built at most once.
func (s *Side) buildNodeBDD(n *statespace.Node) (bdd.Node, bool) {
	if n.BDD != nil {
		return n.BDD, true
	}
	if n.ParentID == -2 {
		// Merged node: its BDD must have been set at merge time.
		return nil, false
	}
	parent := s.States.Pool.Get(n.ParentID)
	tr := s.transitionOf(n.TransID, n.Cost)
	computed, ok := s.image(tr, parent.BDD, s.StepTimeLimit)
	if !ok {
		return nil, false
	}
	computed = s.applyConstraints(computed)
	computed = s.States.RemoveClosedStates(computed, n.Cost)
	n.BDD = computed
	return computed, true
}

// transitionOf looks up the transition BDD a child node was created from.
// TransID encodes (group index, item index) packed into one int.
func (s *Side) transitionOf(transID int, _ fdr.Cost) transition.BDDOf {
	gi, ii := unpackTransID(transID)
	return s.Trans.Groups[gi].Items[ii]
}

func packTransID(groupIdx, itemIdx int) int {
	return groupIdx<<16 | itemIdx
}

func unpackTransID(id int) (groupIdx, itemIdx int) {
	return id >> 16, id & 0xFFFF
}
