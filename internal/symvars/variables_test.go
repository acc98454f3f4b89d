package symvars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"symplan/internal/bdd"
	"symplan/internal/fdr"
)

func buildTestVariables(t *testing.T) (*bdd.Manager, *Variables) {
	t.Helper()
	groups := []Group{
		{Var: 0, Facts: []fdr.FactID{0, 1}},
		{Var: 1, Facts: []fdr.FactID{2, 3, 4}},
	}
	totalBits := bitsFor(2) + bitsFor(3)
	mgr, err := bdd.NewManager(totalBits*2, 1000)
	require.NoError(t, err)
	v := Build(mgr, groups)
	return mgr, v
}

func TestBuildAssignsDistinctVarsPerGroup(t *testing.T) {
	_, v := buildTestVariables(t)

	assert.Equal(t, 1, v.Groups[0].Bits, "2 facts need 1 bit")
	assert.Equal(t, 2, v.Groups[1].Bits, "3 facts need 2 bits")

	seen := make(map[int]bool)
	for _, g := range v.Groups {
		for _, id := range append(append([]int{}, g.PreVar...), g.EffVar...) {
			assert.False(t, seen[id], "every pre/eff bdd variable id must be unique across groups")
			seen[id] = true
		}
	}
}

func TestPreBDDFactsAreMutuallyExclusive(t *testing.T) {
	mgr, v := buildTestVariables(t)

	both := mgr.And(v.PreBDD(0), v.PreBDD(1))
	assert.True(t, mgr.IsFalse(both), "two values of the same group can't both hold in the pre encoding")
}

func TestValidStatesSatisfiable(t *testing.T) {
	mgr, v := buildTestVariables(t)

	assert.False(t, mgr.IsFalse(v.ValidStates()))
}

func TestCreateStateIsConjunctionOfFacts(t *testing.T) {
	mgr, v := buildTestVariables(t)

	state := v.CreateState([]fdr.FactID{0, 2})
	expected := mgr.And(v.PreBDD(0), v.PreBDD(2))
	assert.True(t, mgr.Equal(state, expected))
}

func TestCreatePartialStateIsSubsetOfValidStates(t *testing.T) {
	mgr, v := buildTestVariables(t)

	partial := v.CreatePartialState([]fdr.FactID{0})
	notValid := mgr.Not(v.ValidStates())
	assert.True(t, mgr.IsFalse(mgr.And(partial, notValid)))
}

func TestCreateMutexPreExcludesBothFacts(t *testing.T) {
	mgr, v := buildTestVariables(t)

	mutex := v.CreateMutexPre(2, 3)
	both := mgr.And(v.PreBDD(2), v.PreBDD(3))
	assert.True(t, mgr.IsFalse(mgr.And(mutex, both)))
}

func TestCreateExactlyOneMgroupPreCoversAllFacts(t *testing.T) {
	mgr, v := buildTestVariables(t)

	disj := v.CreateExactlyOneMgroupPre([]fdr.FactID{2, 3, 4})
	for _, f := range []fdr.FactID{2, 3, 4} {
		assert.False(t, mgr.IsFalse(mgr.And(disj, v.PreBDD(f))))
	}
}

func TestCreateBiimpRejectsPreEffMismatch(t *testing.T) {
	mgr, v := buildTestVariables(t)

	biimp := v.CreateBiimp(v.Groups[0])
	// Forcing pre=0 (fact 0) and eff=1 (fact 1's bit pattern) must violate
	// the bi-implication.
	preZero := mgr.Lit(v.Groups[0].PreVar[0], false)
	effOne := mgr.Lit(v.Groups[0].EffVar[0], true)
	mismatch := mgr.And(biimp, preZero, effOne)
	assert.True(t, mgr.IsFalse(mismatch))
}

func TestFactFromBDDCubeRoundTrips(t *testing.T) {
	_, v := buildTestVariables(t)
	g := v.Groups[1]

	cube := make([]int, 0)
	_ = cube
	// Build a cube directly: value index 2 (fact 4) -> bit pattern 10.
	full := make([]int, len(v.AllPreVars())+len(v.AllEffVars()))
	for i := range full {
		full[i] = -1
	}
	full[g.PreVar[0]] = 0
	full[g.PreVar[1]] = 1

	f, ok := v.FactFromBDDCube(g, full)
	assert.True(t, ok)
	assert.Equal(t, fdr.FactID(4), f)
}

func TestAllPreVarsAllEffVarsDisjoint(t *testing.T) {
	_, v := buildTestVariables(t)
	pre := make(map[int]bool)
	for _, p := range v.AllPreVars() {
		pre[p] = true
	}
	for _, e := range v.AllEffVars() {
		assert.False(t, pre[e])
	}
}
