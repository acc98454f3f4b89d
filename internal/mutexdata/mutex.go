// Package mutexdata holds the fact-pair mutex table and mutex-group
// collection. Both are read-only after construction and safely shared
// between the forward and backward search directions.
package mutexdata

import "symplan/internal/fdr"

// Direction flags a mutex pair or a constraint collection: fw-mutex pairs
// are unreachable by forward search, bw-mutex by backward search.
type Direction uint8

const (
	FwMutex Direction = 1 << iota
	BwMutex
)

func (d Direction) Has(flag Direction) bool { return d&flag != 0 }

type pairKey struct{ a, b fdr.FactID }

func key(a, b fdr.FactID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// PairTable is a fact × fact table keyed by unordered pair, three bits per
// pair (present, fw, bw).
type PairTable struct {
	pairs map[pairKey]Direction
}

func NewPairTable() *PairTable {
	return &PairTable{pairs: make(map[pairKey]Direction)}
}

// Add records a mutex pair with the given direction flags (OR'd into any
// existing entry).
func (t *PairTable) Add(a, b fdr.FactID, dir Direction) {
	if a == b {
		return
	}
	k := key(a, b)
	t.pairs[k] |= dir
}

// Mutex reports whether a and b are mutex in *either* direction — used as
// the generic MutexQuery (internal/fdr.MutexQuery, internal/disambig).
func (t *PairTable) Mutex(a, b fdr.FactID) bool {
	if a == b {
		return false
	}
	_, ok := t.pairs[key(a, b)]
	return ok
}

// MutexDir reports whether a and b are mutex with at least the given
// direction flags set.
func (t *PairTable) MutexDir(a, b fdr.FactID, dir Direction) bool {
	if a == b {
		return false
	}
	d, ok := t.pairs[key(a, b)]
	return ok && d.Has(dir)
}

// MutexSetAgainstSet reports whether any fact in set1 is mutex (with the
// given direction) against any fact in set2.
func (t *PairTable) MutexSetAgainstSet(set1, set2 []fdr.FactID, dir Direction) bool {
	for _, a := range set1 {
		for _, b := range set2 {
			if t.MutexDir(a, b, dir) {
				return true
			}
		}
	}
	return false
}

// Pairs iterates every distinct mutex pair with its direction flags.
func (t *PairTable) Pairs(yield func(a, b fdr.FactID, dir Direction) bool) {
	for k, d := range t.pairs {
		if !yield(k.a, k.b, d) {
			return
		}
	}
}

// MGroup is a mutex group: a set of facts known to be pairwise mutex, with
// flags marking whether it is a goal group, an exactly-one group, or a
// fact-alternating-mutex (FAM) group.
type MGroup struct {
	Facts         []fdr.FactID
	IsGoal        bool
	IsExactlyOne  bool
	IsFAMGroup    bool
}

// MGroups is an append-only collection of mutex groups.
type MGroups struct {
	Groups []MGroup
}

func (m *MGroups) Add(g MGroup) { m.Groups = append(m.Groups, g) }

// SortUniq removes duplicate groups (same fact set, ignoring order) and
// sorts the remainder by descending size, matching ExtractCover's
// largest-first strategy.
func (m *MGroups) SortUniq() {
	seen := make(map[string]bool)
	var out []MGroup
	for _, g := range m.Groups {
		k := groupKey(g.Facts)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, g)
	}
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && len(out[j-1].Facts) < len(out[j].Facts) {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	m.Groups = out
}

func groupKey(facts []fdr.FactID) string {
	sorted := append([]fdr.FactID(nil), facts...)
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && sorted[j-1] > sorted[j] {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			j--
		}
	}
	b := make([]byte, 0, len(sorted)*4)
	for _, f := range sorted {
		b = append(b, byte(f), byte(f>>8), byte(f>>16), byte(f>>24))
	}
	return string(b)
}

// ExtractCover returns a subset of exactly-one groups covering every fact
// named by facts, using either a largest-first or essential-first greedy
// strategy. An LP-based optimal cover is an external collaborator's
// responsibility; callers that need the optimum must supply it themselves.
func (m *MGroups) ExtractCover(facts []fdr.FactID, essentialFirst bool) []MGroup {
	need := make(map[fdr.FactID]bool, len(facts))
	for _, f := range facts {
		need[f] = true
	}
	var candidates []MGroup
	for _, g := range m.Groups {
		if !g.IsExactlyOne {
			continue
		}
		candidates = append(candidates, g)
	}
	order := func(i, j int) bool {
		if essentialFirst {
			return essentialScore(candidates[i], need) > essentialScore(candidates[j], need)
		}
		return len(candidates[i].Facts) > len(candidates[j].Facts)
	}
	for i := 1; i < len(candidates); i++ {
		j := i
		for j > 0 && order(j, j-1) {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
			j--
		}
	}

	var cover []MGroup
	for _, g := range candidates {
		if len(need) == 0 {
			break
		}
		covers := false
		for _, f := range g.Facts {
			if need[f] {
				covers = true
				break
			}
		}
		if !covers {
			continue
		}
		cover = append(cover, g)
		for _, f := range g.Facts {
			delete(need, f)
		}
	}
	return cover
}

func essentialScore(g MGroup, need map[fdr.FactID]bool) int {
	score := 0
	for _, f := range g.Facts {
		if need[f] {
			score++
		}
	}
	return score
}
