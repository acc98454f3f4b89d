package transition

import (
	"symplan/internal/bdd"
	"symplan/internal/symvars"
)

// Image computes image(T, s) for one transition BDD: the relational
// product of s (in the pre encoding) with the transition BDD, existentially
// quantified over the pre variables of the covered groups, then renamed from
// eff variables back to pre variables. Non-effect groups have no
// corresponding eff bit in bdd, so their value is preserved automatically
// by the final swap.
func Image(v *Sets, tr BDDOf, s bdd.Node, limit bdd.Limit) (bdd.Node, bool) {
	relProduct, ok := v.Vars.Mgr.AndAbstractLimit(s, tr.Node, tr.PreCube, limit)
	if !ok {
		return nil, false
	}
	from, to := effToPreSwapLists(v.Vars, tr.EffGroups)
	return v.Vars.Mgr.SwapVars(relProduct, from, to), true
}

// PreImage computes pre_image(T, s): symmetric to Image, starting from s
// expressed over the eff encoding's mirror (we keep the state BDD always in
// the pre encoding between steps, so PreImage renames s from pre to eff
// first, relational-products against bdd existentially quantified over eff
// variables, and the result is already in the pre encoding).
func PreImage(v *Sets, tr BDDOf, s bdd.Node, limit bdd.Limit) (bdd.Node, bool) {
	from, to := effToPreSwapLists(v.Vars, tr.EffGroups)
	sInEff := v.Vars.Mgr.SwapVars(s, to, from)
	return v.Vars.Mgr.AndAbstractLimit(sInEff, tr.Node, tr.EffCube, limit)
}

func effToPreSwapLists(v *symvars.Variables, groupIdx []int) (from, to []int) {
	idx := make(map[int]bool, len(groupIdx))
	for _, g := range groupIdx {
		idx[g] = true
	}
	for gi, g := range v.Groups {
		if idx[gi] {
			from = append(from, g.EffVar...)
			to = append(to, g.PreVar...)
		}
	}
	return
}
