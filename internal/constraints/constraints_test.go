package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"symplan/internal/bdd"
	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
	"symplan/internal/symvars"
)

func buildTestVars(t *testing.T) *symvars.Variables {
	t.Helper()
	groups := []symvars.Group{
		{Var: 0, Facts: []fdr.FactID{0, 1}},
		{Var: 1, Facts: []fdr.FactID{2, 3}},
	}
	mgr, err := bdd.NewManager(8, 1000)
	require.NoError(t, err)
	return symvars.Build(mgr, groups)
}

func TestBuildBwExcludesFwMutexPair(t *testing.T) {
	v := buildTestVars(t)
	mutex := mutexdata.NewPairTable()
	mutex.Add(0, 2, mutexdata.FwMutex)
	mgroups := &mutexdata.MGroups{}

	c := BuildBw(v, mutex, mgroups, bdd.Unbounded)

	both := v.Mgr.And(v.PreBDD(0), v.PreBDD(2))
	applied := c.Apply(both)
	assert.True(t, v.Mgr.IsFalse(applied), "a fw-mutex pair must be excluded from the bw collection")
}

func TestBuildBwIgnoresBwOnlyMutexPair(t *testing.T) {
	v := buildTestVars(t)
	mutex := mutexdata.NewPairTable()
	mutex.Add(0, 2, mutexdata.BwMutex)
	mgroups := &mutexdata.MGroups{}

	c := BuildBw(v, mutex, mgroups, bdd.Unbounded)

	both := v.Mgr.And(v.PreBDD(0), v.PreBDD(2))
	applied := c.Apply(both)
	assert.False(t, v.Mgr.IsFalse(applied), "a bw-only mutex pair has no bearing on the bw collection")
}

func TestBuildFwUsesExactlyOneMgroups(t *testing.T) {
	v := buildTestVars(t)
	mutex := mutexdata.NewPairTable()
	mgroups := &mutexdata.MGroups{Groups: []mutexdata.MGroup{
		{Facts: []fdr.FactID{2, 3}, IsExactlyOne: true},
	}}

	c := BuildFw(v, mutex, mgroups, bdd.Unbounded)

	// Applying the fw collection to "neither fact 2 nor 3" must fall to false
	// since the exactly-one group requires one of them.
	neither := v.Mgr.Not(v.Mgr.Or(v.PreBDD(2), v.PreBDD(3)))
	applied := c.Apply(neither)
	assert.True(t, v.Mgr.IsFalse(applied))
}

func TestApplyLimitSucceedsWithNonPositiveNodeBudget(t *testing.T) {
	v := buildTestVars(t)
	mutex := mutexdata.NewPairTable()
	mutex.Add(0, 2, mutexdata.FwMutex)
	mgroups := &mutexdata.MGroups{}
	c := BuildBw(v, mutex, mgroups, bdd.Unbounded)

	target := v.Mgr.True()
	_, ok := c.ApplyLimit(target, bdd.Limit{MaxNodes: -1})
	// -1 is non-positive, meaning unbounded per the Limit convention: an
	// always-succeeding bound, so ok must be true here.
	assert.True(t, ok)
}

func TestGroupMutexBDDCachesPerGroup(t *testing.T) {
	v := buildTestVars(t)
	mutex := mutexdata.NewPairTable()
	mutex.Add(2, 3, mutexdata.FwMutex)
	mgroups := &mutexdata.MGroups{}

	c := BuildBw(v, mutex, mgroups, bdd.Unbounded)

	g := v.Groups[1]
	bddNode := c.GroupMutexBDD(1)
	both := v.Mgr.And(v.PreBDD(g.Facts[0]), v.PreBDD(g.Facts[1]))
	assert.True(t, v.Mgr.IsFalse(v.Mgr.And(bddNode, both)))
}

func TestGroupMgroupBDDCoversGroupFacts(t *testing.T) {
	v := buildTestVars(t)
	mutex := mutexdata.NewPairTable()
	mgroups := &mutexdata.MGroups{}
	c := BuildBw(v, mutex, mgroups, bdd.Unbounded)

	g := v.Groups[0]
	bddNode := c.GroupMgroupBDD(0)
	assert.False(t, v.Mgr.IsFalse(v.Mgr.And(bddNode, v.PreBDD(g.Facts[0]))))
}

func TestMergeAllCombinesItemsUnderBudget(t *testing.T) {
	v := buildTestVars(t)
	items := []bdd.Node{v.Mgr.True(), v.Mgr.True(), v.Mgr.True()}
	merged := mergeAll(v.Mgr, items, bdd.Unbounded)
	assert.LessOrEqual(t, len(merged), len(items))
}
