package statespace

import (
	"github.com/google/btree"

	"symplan/internal/bdd"
	"symplan/internal/fdr"
)

const btreeDegree = 32

// closedItem orders nodes by (cost, heur, id), the closed tree's key,
// implemented with github.com/google/btree rather than a hand-rolled
// red-black tree.
type closedItem struct {
	cost fdr.Cost
	heur int
	id   int
}

func (a closedItem) Less(than btree.Item) bool {
	b := than.(closedItem)
	if a.cost != b.cost {
		if a.cost.Value != b.cost.Value {
			return a.cost.Value < b.cost.Value
		}
		return a.cost.ZeroTag < b.cost.ZeroTag
	}
	if a.heur != b.heur {
		return a.heur < b.heur
	}
	return a.id < b.id
}

// ClosedTree is the red-black-equivalent ordered index of closed states.
type ClosedTree struct {
	tree *btree.BTree
}

func NewClosedTree() *ClosedTree {
	return &ClosedTree{tree: btree.New(btreeDegree)}
}

func (c *ClosedTree) Insert(cost fdr.Cost, heur, id int) {
	c.tree.ReplaceOrInsert(closedItem{cost: cost, heur: heur, id: id})
}

func (c *ClosedTree) Len() int { return c.tree.Len() }

// AscendIDs visits every (cost, heur, id) entry in ascending key order,
// stopping early if visit returns false.
func (c *ClosedTree) AscendIDs(visit func(cost fdr.Cost, heur, id int) bool) {
	c.tree.Ascend(func(it btree.Item) bool {
		ci := it.(closedItem)
		return visit(ci.cost, ci.heur, ci.id)
	})
}

// byGEntry is one bucket of closedByG, keyed purely by g-value (cost.Value).
type byGEntry struct {
	g     int
	union bdd.Node
}

func (a byGEntry) Less(than btree.Item) bool { return a.g < than.(byGEntry).g }

// ClosedByG is the optional secondary index unioning closed-state BDDs by
// g-value, enabling the bounded RemoveClosedStates walk.
type ClosedByG struct {
	mgr  *bdd.Manager
	tree *btree.BTree
}

func NewClosedByG(mgr *bdd.Manager) *ClosedByG {
	return &ClosedByG{mgr: mgr, tree: btree.New(btreeDegree)}
}

// Merge unions n into the bucket for g-value g, creating it if absent.
func (c *ClosedByG) Merge(g int, n bdd.Node) {
	existing := c.tree.Get(byGEntry{g: g})
	if existing == nil {
		c.tree.ReplaceOrInsert(byGEntry{g: g, union: n})
		return
	}
	e := existing.(byGEntry)
	c.tree.ReplaceOrInsert(byGEntry{g: g, union: c.mgr.Or(e.union, n)})
}

// RemoveUpTo subtracts every bucket whose g-value is <= maxG from s, walking
// ascending g order.
func (c *ClosedByG) RemoveUpTo(s bdd.Node, maxG int) bdd.Node {
	out := s
	c.tree.Ascend(func(it btree.Item) bool {
		e := it.(byGEntry)
		if e.g > maxG {
			return false
		}
		out = c.mgr.And(out, c.mgr.Not(e.union))
		return true
	})
	return out
}
