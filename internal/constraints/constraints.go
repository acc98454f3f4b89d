// Package constraints builds the mutex/exactly-one constraint BDDs applied
// after each image step to prune unreachable states. Naming follows the
// direction a collection prunes, not the step that builds it: bw constraints
// are enforced after a *forward* step and are built from fw-mutex pairs,
// while fw constraints are enforced after a *backward* step and are built
// from bw-mutex pairs.
package constraints

import (
	"symplan/internal/bdd"
	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
	"symplan/internal/symvars"
)

// Budget bounds the greedy pairwise merge of constraint BDDs.
type Budget = bdd.Limit

// Collection holds the merged constraint BDDs for one direction (fw or bw),
// as a list of buckets: greedy merging stops combining two operands once
// doing so would exceed budget, so a Collection may hold more than one BDD.
type Collection struct {
	Mgr     *bdd.Manager
	buckets []bdd.Node

	// groupMutex / groupMgroup cache single-group constraint BDDs for the
	// transition builder, letting it trim a single operator locally without
	// invoking the whole collection.
	groupMutex  map[int]bdd.Node
	groupMgroup map[int]bdd.Node
}

func build(v *symvars.Variables, mutex *mutexdata.PairTable, mgroups *mutexdata.MGroups, dir mutexdata.Direction, budget Budget) *Collection {
	c := &Collection{Mgr: v.Mgr, groupMutex: map[int]bdd.Node{}, groupMgroup: map[int]bdd.Node{}}

	var items []bdd.Node
	mutex.Pairs(func(a, b fdr.FactID, d mutexdata.Direction) bool {
		if !d.Has(dir) {
			return true
		}
		items = append(items, v.Mgr.Not(v.Mgr.And(v.PreBDD(a), v.PreBDD(b))))
		return true
	})

	for _, g := range mgroups.Groups {
		switch dir {
		case mutexdata.FwMutex:
			// bw collection: fam-and-goal mgroups not yet exactly-one.
			if g.IsFAMGroup && g.IsGoal && !g.IsExactlyOne {
				items = append(items, v.CreateExactlyOneMgroupPre(g.Facts))
			}
		case mutexdata.BwMutex:
			// fw collection: every exactly-one mgroup.
			if g.IsExactlyOne {
				items = append(items, v.CreateExactlyOneMgroupPre(g.Facts))
			}
		}
	}

	c.buckets = mergeAll(v.Mgr, items, budget)

	for gi, g := range v.Groups {
		c.groupMutex[gi] = groupMutexBDD(v, mutex, g, dir)
		if len(g.Facts) > 0 {
			c.groupMgroup[gi] = v.CreateExactlyOneMgroupPre(g.Facts)
		}
	}
	return c
}

// BuildBw builds the bw-direction collection (applied after a forward
// image), derived from fw-mutex pairs and fam-and-goal mgroups.
func BuildBw(v *symvars.Variables, mutex *mutexdata.PairTable, mgroups *mutexdata.MGroups, budget Budget) *Collection {
	return build(v, mutex, mgroups, mutexdata.FwMutex, budget)
}

// BuildFw builds the fw-direction collection (applied after a backward
// image), derived from bw-mutex pairs and exactly-one mgroups.
func BuildFw(v *symvars.Variables, mutex *mutexdata.PairTable, mgroups *mutexdata.MGroups, budget Budget) *Collection {
	return build(v, mutex, mgroups, mutexdata.BwMutex, budget)
}

func groupMutexBDD(v *symvars.Variables, mutex *mutexdata.PairTable, g symvars.Group, dir mutexdata.Direction) bdd.Node {
	var items []bdd.Node
	for i, a := range g.Facts {
		for _, b := range g.Facts[i+1:] {
			if mutex.MutexDir(a, b, dir) {
				items = append(items, v.Mgr.Not(v.Mgr.And(v.PreBDD(a), v.PreBDD(b))))
			}
		}
	}
	return v.Mgr.And(items...)
}

// mergeAll greedily pairs items (0&1, 2&3, ...), recursing on the merged
// results, and under And. An item whose merge would exceed budget is kept
// standalone rather than forced through.
func mergeAll(mgr *bdd.Manager, items []bdd.Node, budget Budget) []bdd.Node {
	for len(items) > 1 {
		var next []bdd.Node
		for i := 0; i+1 < len(items); i += 2 {
			if merged, ok := mgr.AndLimit(items[i], items[i+1], budget); ok {
				next = append(next, merged)
			} else {
				next = append(next, items[i], items[i+1])
			}
		}
		if len(items)%2 == 1 {
			next = append(next, items[len(items)-1])
		}
		if len(next) == len(items) {
			// No pair merged this pass; stop to avoid looping forever.
			return next
		}
		items = next
	}
	return items
}

// Apply conjoins the collection into target in bucket order.
func (c *Collection) Apply(target bdd.Node) bdd.Node {
	out := target
	for _, b := range c.buckets {
		out = c.Mgr.And(out, b)
	}
	return out
}

// ApplyLimit is the bounded variant: it aborts on the first bucket whose
// conjunction would exceed budget without corrupting target, returning the
// partially-tightened result and ok=false.
func (c *Collection) ApplyLimit(target bdd.Node, budget Budget) (bdd.Node, bool) {
	out := target
	for _, b := range c.buckets {
		merged, ok := c.Mgr.AndLimit(out, b, budget)
		if !ok {
			return out, false
		}
		out = merged
	}
	return out, true
}

// GroupMutexBDD, GroupMgroupBDD return the cached per-group constraint BDDs
// used by the transition builder to trim a single operator locally.
func (c *Collection) GroupMutexBDD(groupIdx int) bdd.Node  { return c.groupMutex[groupIdx] }
func (c *Collection) GroupMgroupBDD(groupIdx int) bdd.Node { return c.groupMgroup[groupIdx] }
