// Package transition builds the per-operator and merged transition-relation
// BDDs, partitioned into transition groups by operator cost and heuristic
// change, and implements image/pre-image.
package transition

import (
	"sort"

	"symplan/internal/disambig"
	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
)

// Prepared is one operator's disambiguation result: the tightened
// precondition plus the derived neg_pre/neg_eff fact sets, or Dead if the
// operator can never fire.
type Prepared struct {
	Op        *fdr.Operator
	Pre       []fdr.FactID
	NegPre    []fdr.FactID
	Eff       []fdr.FactID
	NegEff    []fdr.FactID
	EffGroups []int // sorted, deduplicated group (variable) indices
	Dead      bool
}

// Prepare disambiguates op's precondition and derives eff (add effects not
// already in the precondition) and neg_eff (implied deletes not mutex with
// the precondition). Only when useOpConstr is set (the per-direction
// `use_op_constr` config option) does it compute neg_pre from backward
// mutexes and extend neg_eff from forward mutexes with add effects.
func Prepare(op *fdr.Operator, vars []fdr.Variable, d *disambig.Disambiguator, mutex *mutexdata.PairTable, useOpConstr bool) Prepared {
	pre, res := disambig.DisambiguateFacts(d, vars, op.Pre)
	if res == disambig.Mutex {
		return Prepared{Op: op, Dead: true}
	}

	preSet := factSet(pre)
	addFacts := addEffectFacts(vars, op.Effect)
	delFacts := delEffectFacts(vars, op.Pre, op.Effect)

	var eff []fdr.FactID
	for _, f := range addFacts {
		if !preSet[f] {
			eff = append(eff, f)
		}
	}

	var negEff []fdr.FactID
	for _, f := range delFacts {
		mutexWithPre := false
		for p := range preSet {
			if mutex.Mutex(f, p) {
				mutexWithPre = true
				break
			}
		}
		if !mutexWithPre {
			negEff = append(negEff, f)
		}
	}

	var negPre []fdr.FactID
	if useOpConstr {
		for p := range preSet {
			for _, q := range allFacts(vars) {
				if mutex.MutexDir(p, q, mutexdata.BwMutex) {
					negPre = append(negPre, q)
				}
			}
		}
		negPre = dedupe(negPre)

		negPreSet := factSet(negPre)
		effSet := factSet(eff)
		for _, f := range addFacts {
			for _, q := range allFacts(vars) {
				if mutex.MutexDir(f, q, mutexdata.FwMutex) && !negPreSet[q] {
					negEff = append(negEff, q)
				}
			}
		}
		negEff = dedupe(negEff)
		_ = effSet
	}

	p := Prepared{Op: op, Pre: pre, NegPre: negPre, Eff: eff, NegEff: negEff}

	negPreSet := factSet(negPre)
	for _, f := range pre {
		if negPreSet[f] {
			p.Dead = true
			return p
		}
	}
	effSet := factSet(eff)
	negEffSet := factSet(negEff)
	for f := range effSet {
		if negEffSet[f] {
			p.Dead = true
			return p
		}
	}

	groupSet := make(map[int]bool)
	for _, f := range eff {
		groupSet[groupOf(vars, f)] = true
	}
	for _, f := range negEff {
		groupSet[groupOf(vars, f)] = true
	}
	var groups []int
	for g := range groupSet {
		groups = append(groups, g)
	}
	sort.Ints(groups)
	p.EffGroups = groups

	return p
}

func factSet(facts []fdr.FactID) map[fdr.FactID]bool {
	out := make(map[fdr.FactID]bool, len(facts))
	for _, f := range facts {
		out[f] = true
	}
	return out
}

func dedupe(facts []fdr.FactID) []fdr.FactID {
	seen := factSet(facts)
	out := make([]fdr.FactID, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// addEffectFacts returns, for every variable the effect assigns, the fact
// for its new value.
func addEffectFacts(vars []fdr.Variable, effect fdr.PartialState) []fdr.FactID {
	var out []fdr.FactID
	for v, val := range effect {
		out = append(out, vars[v].Facts[val])
	}
	return out
}

// delEffectFacts returns, for every variable the effect assigns that also
// appears in the precondition, the fact for the precondition's (old) value
// — the STRIPS-style delete effect implied by an FDR value change. A
// variable mentioned in the effect but not the precondition has no implied
// delete fact (transition-normal-form callers must add a precondition first
// if they need one).
func delEffectFacts(vars []fdr.Variable, pre, effect fdr.PartialState) []fdr.FactID {
	var out []fdr.FactID
	for v, newVal := range effect {
		if oldVal, ok := pre[v]; ok && oldVal != newVal {
			out = append(out, vars[v].Facts[oldVal])
		}
	}
	return out
}

func allFacts(vars []fdr.Variable) []fdr.FactID {
	var out []fdr.FactID
	for _, v := range vars {
		out = append(out, v.Facts...)
	}
	return out
}

func groupOf(vars []fdr.Variable, f fdr.FactID) int {
	for vi, v := range vars {
		for _, vf := range v.Facts {
			if vf == f {
				return vi
			}
		}
	}
	return -1
}
