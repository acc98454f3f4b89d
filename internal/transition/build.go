package transition

import (
	"sort"

	"symplan/internal/bdd"
	"symplan/internal/fdr"
	"symplan/internal/symvars"
)

// BDDOf is the per-operator or per-merged-group transition BDD.
type BDDOf struct {
	Node      bdd.Node
	EffGroups []int // sorted
	PreCube   bdd.Node
	EffCube   bdd.Node
	Cost      fdr.Cost
}

// Group is a list of transition BDDs sharing the same operator cost and
// heuristic change.
type Group struct {
	Items       []BDDOf
	Cost        fdr.Cost
	HeurChange  int
	Operators   []int // covered operator ids
}

// Sets is the full per-direction partition into transition groups.
type Sets struct {
	Vars   *symvars.Variables
	Groups []Group
}

// HeurChangeFn returns the per-operator heuristic change used to bucket
// transitions; a nil function means every operator has heuristic change 0.
type HeurChangeFn func(opID int) int

// Build partitions every live (non-dead) prepared operator into transition
// groups: sorted by (cost, heur_change, name, pre, neg_pre, eff, neg_eff),
// then merged per maximal equal-key run via a balanced-tree reduction.
func Build(v *symvars.Variables, prepared []Prepared, heurChange HeurChangeFn, budget bdd.Limit) *Sets {
	type keyed struct {
		p   Prepared
		bdd BDDOf
		key string
		hc  int
	}

	var items []keyed
	for _, p := range prepared {
		if p.Dead {
			continue
		}
		hc := 0
		if heurChange != nil {
			hc = heurChange(p.Op.ID)
		}
		node := operatorBDD(v, p)
		preCube, effCube := cubesForGroups(v, p.EffGroups)
		items = append(items, keyed{
			p: p,
			bdd: BDDOf{
				Node:      node,
				EffGroups: p.EffGroups,
				PreCube:   preCube,
				EffCube:   effCube,
				Cost:      fdr.OpCost(p.Op),
			},
			key: sortKey(p),
			hc:  hc,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.bdd.Cost != b.bdd.Cost {
			if a.bdd.Cost.Value != b.bdd.Cost.Value {
				return a.bdd.Cost.Value < b.bdd.Cost.Value
			}
			return a.bdd.Cost.ZeroTag < b.bdd.Cost.ZeroTag
		}
		if a.hc != b.hc {
			return a.hc < b.hc
		}
		return a.key < b.key
	})

	var groups []Group
	i := 0
	for i < len(items) {
		j := i + 1
		for j < len(items) && items[j].bdd.Cost == items[i].bdd.Cost && items[j].hc == items[i].hc {
			j++
		}
		run := items[i:j]
		var bddItems []BDDOf
		for _, it := range run {
			bddItems = append(bddItems, it.bdd)
		}
		merged := mergeRun(v, bddItems, budget)
		var ops []int
		for _, it := range run {
			ops = append(ops, it.p.Op.ID)
		}
		groups = append(groups, Group{
			Items:      merged,
			Cost:       items[i].bdd.Cost,
			HeurChange: items[i].hc,
			Operators:  ops,
		})
		i = j
	}

	return &Sets{Vars: v, Groups: groups}
}

func operatorBDD(v *symvars.Variables, p Prepared) bdd.Node {
	mgr := v.Mgr
	var lits []bdd.Node
	for _, f := range p.Pre {
		lits = append(lits, v.PreBDD(f))
	}
	for _, f := range p.NegPre {
		lits = append(lits, mgr.Not(v.PreBDD(f)))
	}
	for _, f := range p.Eff {
		lits = append(lits, v.EffBDD(f))
	}
	for _, f := range p.NegEff {
		lits = append(lits, mgr.Not(v.EffBDD(f)))
	}
	return mgr.And(lits...)
}

func cubesForGroups(v *symvars.Variables, groupIdx []int) (pre, eff bdd.Node) {
	var preVars, effVars []int
	idx := make(map[int]bool, len(groupIdx))
	for _, g := range groupIdx {
		idx[g] = true
	}
	for gi, g := range v.Groups {
		if idx[gi] {
			preVars = append(preVars, g.PreVar...)
			effVars = append(effVars, g.EffVar...)
		}
	}
	return v.Mgr.Makeset(preVars), v.Mgr.Makeset(effVars)
}

// mergeRun performs the balanced-tree pairwise merge within one
// (cost, heur_change) run: pair items 0&1, 2&3, ..., recurse; items that
// fail the node/time budget go to an overflow list and stay standalone.
func mergeRun(v *symvars.Variables, items []BDDOf, budget bdd.Limit) []BDDOf {
	for len(items) > 1 {
		var next []BDDOf
		for i := 0; i+1 < len(items); i += 2 {
			if merged, ok := mergeTwo(v, items[i], items[i+1], budget); ok {
				next = append(next, merged)
			} else {
				next = append(next, items[i], items[i+1])
			}
		}
		if len(items)%2 == 1 {
			next = append(next, items[len(items)-1])
		}
		if len(next) == len(items) {
			return next
		}
		items = next
	}
	return items
}

// mergeTwo merges two transition BDDs sharing the same cost/heur bucket:
// groups mentioned by only one side get the other side conjoined with that
// group's bi-implication (forcing it to keep its value), then the
// normalised BDDs are Or'd under budget.
func mergeTwo(v *symvars.Variables, a, b BDDOf, budget bdd.Limit) (BDDOf, bool) {
	mgr := v.Mgr
	aGroups := toSet(a.EffGroups)
	bGroups := toSet(b.EffGroups)

	aNode, bNode := a.Node, b.Node
	for gi, g := range v.Groups {
		if aGroups[gi] && !bGroups[gi] {
			bNode = mgr.And(bNode, v.CreateBiimp(g))
		}
		if bGroups[gi] && !aGroups[gi] {
			aNode = mgr.And(aNode, v.CreateBiimp(g))
		}
	}

	merged, ok := mgr.OrLimit(aNode, bNode, budget)
	if !ok {
		return BDDOf{}, false
	}

	union := unionSorted(a.EffGroups, b.EffGroups)
	preCube, effCube := cubesForGroups(v, union)
	return BDDOf{Node: merged, EffGroups: union, PreCube: preCube, EffCube: effCube, Cost: a.Cost}, true
}

func toSet(groups []int) map[int]bool {
	out := make(map[int]bool, len(groups))
	for _, g := range groups {
		out[g] = true
	}
	return out
}

func unionSorted(a, b []int) []int {
	set := toSet(a)
	for _, g := range b {
		set[g] = true
	}
	var out []int
	for g := range set {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}

func sortKey(p Prepared) string {
	var b []byte
	b = append(b, []byte(p.Op.Name)...)
	b = append(b, 0)
	for _, f := range p.Pre {
		b = append(b, byte(f), byte(f>>8))
	}
	b = append(b, 0)
	for _, f := range p.NegPre {
		b = append(b, byte(f), byte(f>>8))
	}
	b = append(b, 0)
	for _, f := range p.Eff {
		b = append(b, byte(f), byte(f>>8))
	}
	b = append(b, 0)
	for _, f := range p.NegEff {
		b = append(b, byte(f), byte(f>>8))
	}
	return string(b)
}
