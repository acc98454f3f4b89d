package search

import (
	"symplan/internal/bdd"
	"symplan/internal/fdr"
	"symplan/internal/statespace"
	"symplan/internal/symvars"
	"symplan/internal/transition"
)

// decodeState reads a full ternary cube (as returned by Manager.PickOneCube)
// back into a complete (var -> val) assignment.
func decodeState(v *symvars.Variables, vars []fdr.Variable, cube []int) fdr.PartialState {
	out := make(fdr.PartialState, len(v.Groups))
	for _, g := range v.Groups {
		fact, ok := v.FactFromBDDCube(g, cube)
		if !ok {
			continue
		}
		for val, f := range vars[g.Var].Facts {
			if f == fact {
				out[fdr.VarID(g.Var)] = val
				break
			}
		}
	}
	return out
}

func stateBDD(v *symvars.Variables, vars []fdr.Variable, s fdr.PartialState) bdd.Node {
	return v.CreateState(s.Facts(vars))
}

// stateEqual compares two full-variable assignments.
func stateEqual(a, b fdr.PartialState) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// pickOperator returns the first operator among candidates whose
// precondition holds in from and whose effect produces exactly to. When
// several match (operators with identical projections), the first one wins;
// when none matches it falls back to candidates[0], or -1 if candidates is
// empty.
func pickOperator(task *fdr.Task, candidates []int, from, to fdr.PartialState) int {
	for _, id := range candidates {
		op := &task.Operators[id]
		if !op.IsApplicable(from) {
			continue
		}
		if stateEqual(op.Apply(from), to) {
			return id
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return -1
}

// reverseStep recovers the predecessor-in-this-tree BDD for one transition
// step: the Image/PreImage dispatch of Side.image run backwards, intersected
// with the known parent BDD to stay within that lineage.
func reverseStep(side *Side, tr transition.BDDOf, childState bdd.Node, parentBDD bdd.Node) bdd.Node {
	var raw bdd.Node
	if side.Dir == Forward {
		raw, _ = transition.PreImage(side.Trans, tr, childState, bdd.Unbounded)
	} else {
		raw, _ = transition.Image(side.Trans, tr, childState, bdd.Unbounded)
	}
	return side.Mgr().And(raw, parentBDD)
}

// pickConstituent finds which sibling among a merged node's constituents
// the concrete state belongs to.
func pickConstituent(side *Side, ids []int, stateBDD bdd.Node) int {
	for _, id := range ids {
		n := side.States.Pool.Get(id)
		if !side.Mgr().IsFalse(side.Mgr().And(n.BDD, stateBDD)) {
			return id
		}
	}
	return ids[0]
}

// walkChain follows n's ParentID links up to the root, decoding the
// concrete predecessor state at each step and recording which operator was
// taken. For a Forward side the walk produces operators in reverse
// chronological order (goal-ward first); for a Backward side it produces
// them in chronological order already, since the backward tree's "parent"
// direction points toward the goal.
func walkChain(e *Engine, side *Side, n *statespace.Node, leafState fdr.PartialState) []int {
	var ops []int
	cur := n
	curState := leafState
	curStateBDD := stateBDD(side.Vars, e.Task.Vars, curState)

	for cur.ParentID != -1 {
		if cur.ParentID == -2 {
			id := pickConstituent(side, cur.ParentIDs, curStateBDD)
			cur = side.States.Pool.Get(id)
			continue
		}
		parent := side.States.Pool.Get(cur.ParentID)
		gi, ii := unpackTransID(cur.TransID)
		item := side.Trans.Groups[gi].Items[ii]

		prevBDD := reverseStep(side, item, curStateBDD, parent.BDD)
		cube, ok := side.Mgr().PickOneCube(prevBDD)
		if !ok {
			// Lineage lost (should not happen for a node the search itself
			// produced); fall back to any state in the parent.
			cube, ok = side.Mgr().PickOneCube(parent.BDD)
			if !ok {
				break
			}
		}
		prevState := decodeState(side.Vars, e.Task.Vars, cube)

		var from, to fdr.PartialState
		if side.Dir == Forward {
			from, to = prevState, curState
		} else {
			from, to = curState, prevState
		}
		op := pickOperator(e.Task, side.Trans.Groups[gi].Operators, from, to)
		ops = append(ops, op)

		cur = parent
		curState = prevState
		curStateBDD = stateBDD(side.Vars, e.Task.Vars, curState)
	}
	return ops
}

func reverseInts(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}

func planCost(task *fdr.Task, ops []int) int {
	total := 0
	for _, id := range ops {
		total += task.Operators[id].Cost
	}
	return total
}

// reconstructUnidirectional builds the full operator sequence for a single
// active-direction search that met its fixed goal/init BDD at leafNode.
func (e *Engine) reconstructUnidirectional(active *Side, leafNode *statespace.Node, leafCube []int) Plan {
	leafState := decodeState(active.Vars, e.Task.Vars, leafCube)
	ops := walkChain(e, active, leafNode, leafState)
	if active.Dir == Backward {
		// Backward root is the goal; walkChain already produced
		// chronological order from the meeting state toward the goal, but
		// the meeting state here is itself the initial state, so the walk
		// needs no reversal — it already reads init -> ... -> goal.
		return Plan{Operators: ops, Exists: true, Cost: planCost(e.Task, ops)}
	}
	chrono := reverseInts(ops)
	return Plan{Operators: chrono, Exists: true, Cost: planCost(e.Task, chrono)}
}

// reconstructBidirectional stitches the forward half (init -> meeting) and
// backward half (meeting -> goal) of a bidirectional candidate.
func (e *Engine) reconstructBidirectional(c *candidate) Plan {
	var fwSide, bwSide *Side
	var fwNode, bwNode *statespace.Node
	if c.selfSide.Dir == Forward {
		fwSide, fwNode = c.selfSide, c.selfNode
		bwSide, bwNode = c.otherSide, c.otherNode
	} else {
		fwSide, fwNode = c.otherSide, c.otherNode
		bwSide, bwNode = c.selfSide, c.selfNode
	}

	cube, ok := fwSide.Mgr().PickOneCube(c.meet)
	if !ok {
		return Plan{}
	}
	meetingState := decodeState(fwSide.Vars, e.Task.Vars, cube)

	fwOps := reverseInts(walkChain(e, fwSide, fwNode, meetingState))
	bwOps := walkChain(e, bwSide, bwNode, meetingState)

	ops := append(fwOps, bwOps...)
	return Plan{Operators: ops, Exists: true, Cost: planCost(e.Task, ops)}
}
