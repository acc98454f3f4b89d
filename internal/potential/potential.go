// Package potential implements the goal splitter by potential heuristic:
// it partitions the abstract goal into BDDs tagged with heuristic values
// using a linear potential function over facts.
package potential

import (
	"math"
	"sort"

	"symplan/internal/bdd"
	"symplan/internal/disambig"
	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
	"symplan/internal/symvars"
)

// PotentialFn gives the potential value of a single fact; this linear
// function is produced upstream by an LP solver — the core only consumes
// its output.
type PotentialFn func(f fdr.FactID) float64

// Piece is one (h-value, BDD) initial produced by Split.
type Piece struct {
	H   int
	BDD bdd.Node
}

const epsilon = 1e-6

// Split partitions the goal into pieces whose disjunction equals the goal
// BDD. It returns ok=false if disambiguation against the goal proves the
// task unsolvable.
func Split(v *symvars.Variables, mutex *mutexdata.PairTable, mgroups *mutexdata.MGroups, goal fdr.PartialState, vars []fdr.Variable, pot PotentialFn) ([]Piece, bool) {
	goalFacts := make(map[fdr.FactID]bool)
	for _, f := range goal.Facts(vars) {
		goalFacts[f] = true
	}
	d := disambig.New(mutex, mgroups)

	type keyedMap map[int64]bdd.Node

	var maps []keyedMap
	for _, g := range mgroups.Groups {
		if !g.IsExactlyOne {
			continue
		}
		restricted := restrictToGoal(g, goalFacts)
		if restricted == nil {
			tightened, res := disambig.Disambiguate(d, copyFactSet(goalFacts), true, nil)
			if res == disambig.Mutex {
				return nil, false
			}
			restricted = intersectFacts(g.Facts, tightened)
			if len(restricted) == 0 {
				continue
			}
		}

		km := make(keyedMap)
		for _, f := range restricted {
			key := potentialKey(pot(f))
			node := v.PreBDD(f)
			if existing, ok := km[key]; ok {
				km[key] = v.Mgr.Or(existing, node)
			} else {
				km[key] = node
			}
		}
		maps = append(maps, km)
	}

	merged := reduceMaps(v.Mgr, maps)
	goalBDD := v.CreatePartialState(goal.Facts(vars))

	var pieces []Piece
	for key, node := range merged {
		h := int(math.Ceil(-keyToFloat(key) - epsilon))
		pieces = append(pieces, Piece{H: h, BDD: v.Mgr.And(node, goalBDD)})
	}
	sort.Slice(pieces, func(i, j int) bool { return pieces[i].H < pieces[j].H })
	return pieces, true
}

func restrictToGoal(g mutexdata.MGroup, goal map[fdr.FactID]bool) []fdr.FactID {
	var out []fdr.FactID
	for _, f := range g.Facts {
		if goal[f] {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func copyFactSet(existing map[fdr.FactID]bool) map[fdr.FactID]bool {
	out := make(map[fdr.FactID]bool, len(existing))
	for f := range existing {
		out[f] = true
	}
	return out
}

func intersectFacts(group []fdr.FactID, tightened map[fdr.FactID]bool) []fdr.FactID {
	var out []fdr.FactID
	for _, f := range group {
		if tightened[f] {
			out = append(out, f)
		}
	}
	return out
}

// potentialKey/keyToFloat round potential values to a stable fixed-point key
// so floating-point facts with "equal" potential merge into one bucket.
const keyScale = 1 << 20

func potentialKey(v float64) int64 { return int64(math.Round(v * keyScale)) }
func keyToFloat(k int64) float64   { return float64(k) / keyScale }

// reduceMaps cross-products the per-mgroup maps pairwise (key1+key2,
// BDD1∧BDD2), merging entries with equal combined key, via balanced-tree
// reduction until one map remains.
func reduceMaps(mgr *bdd.Manager, maps []map[int64]bdd.Node) map[int64]bdd.Node {
	if len(maps) == 0 {
		return map[int64]bdd.Node{0: mgr.True()}
	}
	for len(maps) > 1 {
		var next []map[int64]bdd.Node
		for i := 0; i+1 < len(maps); i += 2 {
			next = append(next, crossProduct(mgr, maps[i], maps[i+1]))
		}
		if len(maps)%2 == 1 {
			next = append(next, maps[len(maps)-1])
		}
		maps = next
	}
	return maps[0]
}

func crossProduct(mgr *bdd.Manager, a, b map[int64]bdd.Node) map[int64]bdd.Node {
	out := make(map[int64]bdd.Node)
	for ka, na := range a {
		for kb, nb := range b {
			key := ka + kb
			node := mgr.And(na, nb)
			if existing, ok := out[key]; ok {
				out[key] = mgr.Or(existing, node)
			} else {
				out[key] = node
			}
		}
	}
	return out
}
