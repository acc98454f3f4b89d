// Package disambig implements fix-point fact-set tightening against a mutex
// table and a collection of exactly-one mutex groups, used both during
// operator preparation (internal/transition) and goal tightening
// (internal/potential).
package disambig

import (
	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
)

// Result is the three-way outcome of Disambiguate.
type Result int

const (
	NoChange Result = 0
	Changed  Result = 1
	Mutex    Result = -1
)

// Disambiguator keeps a task's exactly-one groups and records, once per
// task, each fact's memberships in memberOf. Disambiguate does not consult
// memberOf: each pass of its fixpoint loop scans every kept group.
type Disambiguator struct {
	mutex  *mutexdata.PairTable
	groups []mutexdata.MGroup // exactly-one groups only

	// memberOf[f] lists the indices into groups that contain fact f.
	memberOf map[fdr.FactID][]int
}

func New(mutex *mutexdata.PairTable, mgroups *mutexdata.MGroups) *Disambiguator {
	d := &Disambiguator{mutex: mutex, memberOf: make(map[fdr.FactID][]int)}
	for _, g := range mgroups.Groups {
		if !g.IsExactlyOne {
			continue
		}
		idx := len(d.groups)
		d.groups = append(d.groups, g)
		for _, f := range g.Facts {
			d.memberOf[f] = append(d.memberOf[f], idx)
		}
	}
	return d
}

// Disambiguate tightens S to a fixpoint, examining every exactly-one group
// (onlyDisjointMgroups=false) or only those whose intersection with S is
// currently empty (onlyDisjointMgroups=true).
// shrinkCandidates, if non-nil, is
// called whenever a group's allowed-set narrows below its full membership,
// letting callers (internal/potential) keep a smaller candidate set per
// group across repeated calls.
func Disambiguate(d *Disambiguator, s map[fdr.FactID]bool, onlyDisjointMgroups bool, shrinkCandidates func(groupIdx int, allowed []fdr.FactID)) (map[fdr.FactID]bool, Result) {
	out := make(map[fdr.FactID]bool, len(s))
	for f := range s {
		out[f] = true
	}

	overall := NoChange
	for {
		changed := false
		for gi, g := range d.groups {
			intersects := false
			for _, f := range g.Facts {
				if out[f] {
					intersects = true
					break
				}
			}
			if onlyDisjointMgroups && intersects {
				continue
			}

			var allowed []fdr.FactID
			for _, f := range g.Facts {
				mutexWithS := false
				for existing := range out {
					if d.mutex.Mutex(f, existing) {
						mutexWithS = true
						break
					}
				}
				if !mutexWithS {
					allowed = append(allowed, f)
				}
			}

			if len(allowed) == 0 {
				return out, Mutex
			}
			if len(allowed) == 1 && !out[allowed[0]] {
				out[allowed[0]] = true
				changed = true
			}
			if shrinkCandidates != nil && len(allowed) < len(g.Facts) {
				shrinkCandidates(gi, allowed)
			}
		}
		if !changed {
			break
		}
		overall = Changed
	}
	return out, overall
}

// DisambiguateFacts tightens the fact set underlying a PartialState (via
// fdr.PartialState.Facts) and returns the enriched fact set directly; the
// transition builder (internal/transition) works with fact sets, not
// PartialStates, once a precondition has been disambiguated.
func DisambiguateFacts(d *Disambiguator, vars []fdr.Variable, p fdr.PartialState) ([]fdr.FactID, Result) {
	facts := make(map[fdr.FactID]bool)
	for _, f := range p.Facts(vars) {
		facts[f] = true
	}
	tightened, res := Disambiguate(d, facts, true, nil)
	if res == Mutex {
		return nil, Mutex
	}
	out := make([]fdr.FactID, 0, len(tightened))
	for f := range tightened {
		out = append(out, f)
	}
	return out, res
}
