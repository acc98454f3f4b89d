package varorder

import "symplan/internal/fdr"

// Apply reorders t's variables (and every reference to a VarID — operators,
// init, goal) according to order, the permutation Order produced.
func Apply(t *fdr.Task, order []fdr.VarID) *fdr.Task {
	perm := Permutation(order)
	newVars := make([]fdr.Variable, len(order))
	for newIdx, old := range order {
		newVars[newIdx] = t.Vars[old]
	}

	remap := func(p fdr.PartialState) fdr.PartialState {
		out := make(fdr.PartialState, len(p))
		for v, val := range p {
			out[perm[v]] = val
		}
		return out
	}

	newOps := make([]fdr.Operator, len(t.Operators))
	for i, op := range t.Operators {
		newOps[i] = op
		newOps[i].Pre = remap(op.Pre)
		newOps[i].Effect = remap(op.Effect)
		if len(op.CondEff) > 0 {
			ce := make([]fdr.ConditionalEffect, len(op.CondEff))
			for j, c := range op.CondEff {
				ce[j] = fdr.ConditionalEffect{Pre: remap(c.Pre), Effect: remap(c.Effect)}
			}
			newOps[i].CondEff = ce
		}
	}

	return &fdr.Task{
		Vars:       newVars,
		Init:       remap(t.Init),
		Goal:       remap(t.Goal),
		Operators:  newOps,
		HasCondEff: t.HasCondEff,
	}
}
