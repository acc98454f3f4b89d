package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"symplan/internal/bdd"
	"symplan/internal/fdr"
	"symplan/internal/symvars"
	"symplan/internal/transition"
)

func TestPackUnpackTransIDRoundTrip(t *testing.T) {
	cases := []struct{ gi, ii int }{
		{0, 0},
		{1, 2},
		{5, 0xFFFF},
		{1000, 7},
	}
	for _, c := range cases {
		id := packTransID(c.gi, c.ii)
		gotGi, gotIi := unpackTransID(id)
		assert.Equal(t, c.gi, gotGi)
		assert.Equal(t, c.ii, gotIi)
	}
}

func TestDirectionConstants(t *testing.T) {
	assert.Equal(t, Direction(0), Forward)
	assert.Equal(t, Direction(1), Backward)
	assert.Equal(t, "fw", dirName(Forward))
	assert.Equal(t, "bw", dirName(Backward))
}

func TestSideApplyConstraintsNoOpWhenDisabled(t *testing.T) {
	mgr, err := bdd.NewManager(4, 100)
	require.NoError(t, err)
	s := &Side{UseConstr: false, Constr: nil}
	state := mgr.True()
	assert.True(t, mgr.Equal(state, s.applyConstraints(state)))
}

func TestSideImageDispatchesOnDirection(t *testing.T) {
	v, trans := sideTestTransition(t)

	fw := &Side{Dir: Forward, Vars: v, Trans: trans}
	bw := &Side{Dir: Backward, Vars: v, Trans: trans}

	stateA := v.CreateState([]fdr.FactID{0})
	tr := trans.Groups[0].Items[0]

	fwImg, ok := fw.image(tr, stateA, bdd.Unbounded)
	require.True(t, ok)
	assert.True(t, v.Mgr.Equal(fwImg, v.CreateState([]fdr.FactID{1})), "forward image of a under move must be b")

	stateB := v.CreateState([]fdr.FactID{1})
	bwImg, ok := bw.image(tr, stateB, bdd.Unbounded)
	require.True(t, ok)
	assert.True(t, v.Mgr.Equal(bwImg, v.CreateState([]fdr.FactID{0})), "backward pre-image of b under move must be a")
}

func TestSideTransitionOfLooksUpGroupAndItem(t *testing.T) {
	_, trans := sideTestTransition(t)
	s := &Side{Trans: trans}

	got := s.transitionOf(packTransID(0, 0), fdr.Cost{})
	assert.True(t, trans.Vars.Mgr.Equal(got.Node, trans.Groups[0].Items[0].Node))
}

// sideTestTransition builds a single-variable, two-value "at" task with one
// move operator (a -> b, cost 1) and its transition set, reused by several
// tests in this file.
func sideTestTransition(t *testing.T) (*symvars.Variables, *transition.Sets) {
	t.Helper()
	vars := []fdr.Variable{
		{Name: "at", Values: []string{"a", "b"}, Facts: []fdr.FactID{0, 1}},
	}
	groups := []symvars.Group{{Var: 0, Facts: vars[0].Facts}}
	mgr, err := bdd.NewManager(4, 100)
	require.NoError(t, err)
	v := symvars.Build(mgr, groups)

	op := fdr.Operator{ID: 0, Name: "move", Cost: 1, Pre: fdr.PartialState{0: 0}, Effect: fdr.PartialState{0: 1}}
	prepared := transition.Prepare(&op, vars, disambiguatorFor(t), mutexTableFor(t), false)
	trans := transition.Build(v, []transition.Prepared{prepared}, nil, bdd.Unbounded)
	return v, trans
}
