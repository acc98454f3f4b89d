// Package symvars builds the BDD variable layout for an FDR task's facts,
// groups, and variables: two interleaved BDD variable blocks (pre, eff) per
// fact group, and the fact/state/biimp BDDs built over them.
package symvars

import (
	"symplan/internal/bdd"
	"symplan/internal/fdr"
)

// Group mirrors one FDR variable: an ordered list of fact ids, one per
// value, in the order the variable ordering (internal/varorder) assigned.
type Group struct {
	Var    int      // FDR variable index this group encodes
	Facts  []fdr.FactID
	Bits   int      // ceil(log2 len(Facts))
	PreVar []int    // BDD variable ids for the pre encoding, low bit first
	EffVar []int    // BDD variable ids for the eff encoding, low bit first
}

// Variables is the materialised symbolic-variable layout for one task: for
// every fact it holds a pre-BDD and an eff-BDD, plus the per-group bit
// layout needed to build cubes and swap lists.
type Variables struct {
	Mgr    *bdd.Manager
	Groups []Group

	factPre map[fdr.FactID]bdd.Node
	factEff map[fdr.FactID]bdd.Node

	allPreVars []int
	allEffVars []int

	validStates bdd.Node
}

// Build assigns two BDD variable blocks per group (pre, eff, interleaved as
// pre0,eff0,pre1,eff1,... within the group, and groups laid out back to back
// in the order they are given — callers pass groups pre-sorted by
// internal/varorder) and materialises every fact's pre/eff BDD.
func Build(mgr *bdd.Manager, groups []Group) *Variables {
	next := 0
	out := make([]Group, len(groups))
	for i, g := range groups {
		bits := bitsFor(len(g.Facts))
		g.Bits = bits
		g.PreVar = make([]int, bits)
		g.EffVar = make([]int, bits)
		for b := 0; b < bits; b++ {
			g.PreVar[b] = next
			next++
			g.EffVar[b] = next
			next++
		}
		out[i] = g
	}

	v := &Variables{
		Mgr:     mgr,
		Groups:  out,
		factPre: make(map[fdr.FactID]bdd.Node),
		factEff: make(map[fdr.FactID]bdd.Node),
	}
	for _, g := range out {
		v.allPreVars = append(v.allPreVars, g.PreVar...)
		v.allEffVars = append(v.allEffVars, g.EffVar...)
		for value, fact := range g.Facts {
			v.factPre[fact] = cubeForValue(mgr, g.PreVar, value, true)
			v.factEff[fact] = cubeForValue(mgr, g.EffVar, value, true)
		}
	}

	var perGroup []bdd.Node
	for _, g := range out {
		var facts []bdd.Node
		for _, f := range g.Facts {
			facts = append(facts, v.factPre[f])
		}
		perGroup = append(perGroup, mgr.Or(facts...))
	}
	v.validStates = mgr.And(perGroup...)
	return v
}

func bitsFor(k int) int {
	if k <= 1 {
		return 1
	}
	bits := 0
	for (1 << bits) < k {
		bits++
	}
	return bits
}

// cubeForValue builds the conjunction of literals encoding value within a
// group's bits (low bit first), in either the pre or eff variable block.
func cubeForValue(mgr *bdd.Manager, vars []int, value int, _ bool) bdd.Node {
	lits := make([]bdd.Node, len(vars))
	for i, v := range vars {
		bitSet := (value>>uint(i))&1 == 1
		lits[i] = mgr.Lit(v, bitSet)
	}
	return mgr.And(lits...)
}

// ValidStates is ∧_g (∨_{f∈g} pre(f)): every maintained BDD node must be a
// subset of this set after constraints are applied.
func (v *Variables) ValidStates() bdd.Node { return v.validStates }

// PreBDD, EffBDD return the materialised BDD of a single fact in the pre or
// eff variable block.
func (v *Variables) PreBDD(f fdr.FactID) bdd.Node { return v.factPre[f] }
func (v *Variables) EffBDD(f fdr.FactID) bdd.Node { return v.factEff[f] }

// AllPreVars, AllEffVars return every pre/eff variable id across all groups,
// in group order — used to build the global swap lists for image/pre-image.
func (v *Variables) AllPreVars() []int { return v.allPreVars }
func (v *Variables) AllEffVars() []int { return v.allEffVars }

// CreateState returns the conjunction of the pre-BDDs of the given facts.
func (v *Variables) CreateState(facts []fdr.FactID) bdd.Node {
	lits := make([]bdd.Node, len(facts))
	for i, f := range facts {
		lits[i] = v.factPre[f]
	}
	return v.Mgr.And(lits...)
}

// CreatePartialState is CreateState intersected with ValidStates, so a
// partial assignment becomes the set of *complete* states consistent with
// it.
func (v *Variables) CreatePartialState(facts []fdr.FactID) bdd.Node {
	return v.Mgr.And(v.CreateState(facts), v.validStates)
}

// CreateBiimp returns the conjunction over a group's bits of (pre_bit ↔
// eff_bit), used by the transition builder to force a non-effect group to
// keep its value across a transition.
func (v *Variables) CreateBiimp(g Group) bdd.Node {
	var terms []bdd.Node
	for i := range g.PreVar {
		terms = append(terms, v.Mgr.Xnor(v.Mgr.Lit(g.PreVar[i], true), v.Mgr.Lit(g.EffVar[i], true)))
	}
	return v.Mgr.And(terms...)
}

// CreateMutexPre returns ¬(pre(f1) ∧ pre(f2)).
func (v *Variables) CreateMutexPre(f1, f2 fdr.FactID) bdd.Node {
	return v.Mgr.Not(v.Mgr.And(v.factPre[f1], v.factPre[f2]))
}

// CreateExactlyOneMgroupPre, CreateExactlyOneMgroupEff return the disjunction
// of the pre/eff BDDs of the listed facts.
func (v *Variables) CreateExactlyOneMgroupPre(facts []fdr.FactID) bdd.Node {
	lits := make([]bdd.Node, len(facts))
	for i, f := range facts {
		lits[i] = v.factPre[f]
	}
	return v.Mgr.Or(lits...)
}

func (v *Variables) CreateExactlyOneMgroupEff(facts []fdr.FactID) bdd.Node {
	lits := make([]bdd.Node, len(facts))
	for i, f := range facts {
		lits[i] = v.factEff[f]
	}
	return v.Mgr.Or(lits...)
}

// GroupCube returns the pre-variable and eff-variable cubes of a group, used
// by the transition builder when it needs to existentially quantify one
// group's variables out of a BDD.
func (v *Variables) GroupCube(g Group) (preCube, effCube bdd.Node) {
	return v.Mgr.Makeset(g.PreVar), v.Mgr.Makeset(g.EffVar)
}

// FactFromBDDCube decodes a ternary cube (as returned by bdd.PickOneCube)
// into the fact id the group's bits encode within the pre variable block.
func (v *Variables) FactFromBDDCube(g Group, cube []int) (fdr.FactID, bool) {
	value := 0
	for i, pv := range g.PreVar {
		bitVal := cube[pv]
		if bitVal < 0 {
			bitVal = 0 // don't-care defaults to 0, matching PickOneCube semantics
		}
		value |= bitVal << uint(i)
	}
	if value < 0 || value >= len(g.Facts) {
		return 0, false
	}
	return g.Facts[value], true
}
