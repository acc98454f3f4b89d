package potential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"symplan/internal/bdd"
	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
	"symplan/internal/symvars"
)

func potentialTestVars(t *testing.T) (*symvars.Variables, []fdr.Variable) {
	t.Helper()
	vars := []fdr.Variable{
		{Name: "at", Values: []string{"a", "b"}, Facts: []fdr.FactID{0, 1}},
		{Name: "holding", Values: []string{"nothing", "ball"}, Facts: []fdr.FactID{2, 3}},
	}
	groups := []symvars.Group{
		{Var: 0, Facts: vars[0].Facts},
		{Var: 1, Facts: vars[1].Facts},
	}
	mgr, err := bdd.NewManager(8, 1000)
	require.NoError(t, err)
	return symvars.Build(mgr, groups), vars
}

func TestSplitDirectGoalIntersection(t *testing.T) {
	v, vars := potentialTestVars(t)
	mutex := mutexdata.NewPairTable()
	mgroups := &mutexdata.MGroups{Groups: []mutexdata.MGroup{
		{Facts: []fdr.FactID{0, 1}, IsExactlyOne: true},
	}}
	goal := fdr.PartialState{0: 0} // fact 0

	pieces, ok := Split(v, mutex, mgroups, goal, vars, func(f fdr.FactID) float64 { return float64(f) })

	require.True(t, ok)
	require.Len(t, pieces, 1)
	assert.False(t, v.Mgr.IsFalse(v.Mgr.And(pieces[0].BDD, v.PreBDD(0))))
}

func TestSplitDisambiguatesWhenGoalDoesNotIntersectGroup(t *testing.T) {
	v, vars := potentialTestVars(t)
	mutex := mutexdata.NewPairTable()
	mutex.Add(0, 2, mutexdata.FwMutex|mutexdata.BwMutex)
	mgroups := &mutexdata.MGroups{Groups: []mutexdata.MGroup{
		{Facts: []fdr.FactID{2, 3}, IsExactlyOne: true},
	}}
	goal := fdr.PartialState{0: 0} // fact 0, not a member of the {2,3} group

	pieces, ok := Split(v, mutex, mgroups, goal, vars, func(f fdr.FactID) float64 { return 0 })

	require.True(t, ok)
	require.Len(t, pieces, 1)
	// fact 2 is mutex with the goal fact 0, so disambiguation should narrow
	// the group down to fact 3 before building its piece.
	assert.False(t, v.Mgr.IsFalse(v.Mgr.And(pieces[0].BDD, v.PreBDD(3))))
}

func TestSplitReturnsFalseOnMutexContradiction(t *testing.T) {
	v, vars := potentialTestVars(t)
	mutex := mutexdata.NewPairTable()
	mutex.Add(0, 2, mutexdata.FwMutex|mutexdata.BwMutex)
	mutex.Add(0, 3, mutexdata.FwMutex|mutexdata.BwMutex)
	mgroups := &mutexdata.MGroups{Groups: []mutexdata.MGroup{
		{Facts: []fdr.FactID{2, 3}, IsExactlyOne: true},
	}}
	goal := fdr.PartialState{0: 0}

	_, ok := Split(v, mutex, mgroups, goal, vars, func(f fdr.FactID) float64 { return 0 })

	assert.False(t, ok)
}

func TestPotentialKeyRoundTrip(t *testing.T) {
	k := potentialKey(3.5)
	assert.InDelta(t, 3.5, keyToFloat(k), 1e-6)
}

func TestReduceMapsEmptyYieldsTrue(t *testing.T) {
	v, _ := potentialTestVars(t)
	merged := reduceMaps(v.Mgr, nil)
	require.Len(t, merged, 1)
	node, ok := merged[0]
	require.True(t, ok)
	assert.True(t, v.Mgr.Equal(node, v.Mgr.True()))
}

func TestReduceMapsCrossProductsPairwise(t *testing.T) {
	v, _ := potentialTestVars(t)
	m1 := map[int64]bdd.Node{0: v.PreBDD(0)}
	m2 := map[int64]bdd.Node{0: v.PreBDD(2)}

	merged := reduceMaps(v.Mgr, []map[int64]bdd.Node{m1, m2})

	require.Len(t, merged, 1)
	node, ok := merged[0]
	require.True(t, ok)
	expected := v.Mgr.And(v.PreBDD(0), v.PreBDD(2))
	assert.True(t, v.Mgr.Equal(node, expected))
}
