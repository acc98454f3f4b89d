package fdr

// TNFStrategy selects how ToTransitionNormalForm extends an operator. Each
// strategy fills in one side only (see the constants).
type TNFStrategy int

const (
	// PrevailToEff copies every precondition variable not already in the
	// effect into the effect with an unchanged value ("prevail" condition
	// made explicit as a no-op write). Effect variables missing from the
	// precondition stay missing from it.
	PrevailToEff TNFStrategy = iota
	// MultiplyOps enumerates every possible value of each effect variable
	// not already in the precondition, producing one operator copy per
	// combination; a mutex table, when given, drops the values mutex with
	// the existing precondition. Precondition variables missing from the
	// effect stay missing from it.
	MultiplyOps
)

// ToTransitionNormalForm rewrites every operator of t with the chosen
// strategy: PrevailToEff adds every precondition variable to the effect,
// MultiplyOps adds every effect variable to the precondition. Neither does
// both, so an operator with a precondition-only variable and an effect-only
// variable still has different variable sets afterwards. mutex may be nil;
// when non-nil and strategy is MultiplyOps, values mutex with the existing
// precondition are skipped.
func ToTransitionNormalForm(t *Task, strategy TNFStrategy, mutexSet MutexQuery) *Task {
	out := &Task{
		Vars:       t.Vars,
		Init:       t.Init,
		Goal:       t.Goal,
		HasCondEff: t.HasCondEff,
	}
	for _, op := range t.Operators {
		switch strategy {
		case PrevailToEff:
			out.Operators = append(out.Operators, prevailToEff(op))
		case MultiplyOps:
			out.Operators = append(out.Operators, multiplyOp(op, t, mutexSet)...)
		}
	}
	return out
}

// MutexQuery answers whether two facts are mutex; satisfied by
// internal/mutexdata.PairTable.
type MutexQuery interface {
	Mutex(a, b FactID) bool
}

func prevailToEff(op Operator) Operator {
	eff := op.Effect.Clone()
	for v, val := range op.Pre {
		if _, has := eff[v]; !has {
			eff[v] = val
		}
	}
	out := op
	out.Effect = eff
	return out
}

// multiplyOp enumerates, for every effect variable not mentioned in the
// precondition, each of its values not mutex with the existing
// precondition, producing one fully-determined operator per surviving
// combination. With no mutex table this degenerates to enumerating every
// value (sound but large).
func multiplyOp(op Operator, t *Task, mutexSet MutexQuery) []Operator {
	var missing []VarID
	for v := range op.Effect {
		if _, has := op.Pre[v]; !has {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return []Operator{op}
	}

	results := []Operator{op}
	for _, v := range missing {
		var next []Operator
		for _, partial := range results {
			for val := range t.Vars[v].Values {
				if mutexSet != nil && !consistent(partial, v, val, t, mutexSet) {
					continue
				}
				clone := partial
				clone.Pre = partial.Pre.Clone()
				clone.Pre[v] = val
				next = append(next, clone)
			}
		}
		results = next
	}
	return results
}

func consistent(op Operator, v VarID, val int, t *Task, mutexSet MutexQuery) bool {
	candidate := t.Vars[v].Facts[val]
	for pv, pval := range op.Pre {
		if pv == v {
			continue
		}
		if mutexSet.Mutex(candidate, t.Vars[pv].Facts[pval]) {
			return false
		}
	}
	return true
}

// Reduce removes the given variables, facts, and operators from t and
// returns a fresh task with ids remapped. The caller uses the returned
// VarRemap/OpRemap to translate any ids held elsewhere (e.g. previously
// built transition groups must be rebuilt, not remapped in place).
type Reduction struct {
	Task     *Task
	VarRemap map[VarID]VarID // old -> new, absent if deleted
	OpRemap  map[int]int     // old operator id -> new
}

func Reduce(t *Task, delVars map[VarID]bool, delFacts map[FactID]bool, delOps map[int]bool) Reduction {
	varRemap := make(map[VarID]VarID)
	var newVars []Variable
	for old, v := range t.Vars {
		if delVars[VarID(old)] {
			continue
		}
		varRemap[VarID(old)] = VarID(len(newVars))
		nv := Variable{Name: v.Name}
		for val, fname := range v.Values {
			f := v.Facts[val]
			if delFacts[f] {
				continue
			}
			nv.Values = append(nv.Values, fname)
			nv.Facts = append(nv.Facts, f)
		}
		newVars = append(newVars, nv)
	}

	remapState := func(p PartialState) PartialState {
		out := make(PartialState)
		for v, val := range p {
			if delVars[v] {
				continue
			}
			nv, ok := varRemap[v]
			if !ok {
				continue
			}
			out[nv] = val
		}
		return out
	}

	opRemap := make(map[int]int)
	var newOps []Operator
	for _, op := range t.Operators {
		if delOps[op.ID] {
			continue
		}
		no := op
		no.Pre = remapState(op.Pre)
		no.Effect = remapState(op.Effect)
		no.ID = len(newOps)
		opRemap[op.ID] = no.ID
		newOps = append(newOps, no)
	}

	return Reduction{
		Task: &Task{
			Vars:       newVars,
			Init:       remapState(t.Init),
			Goal:       remapState(t.Goal),
			Operators:  newOps,
			HasCondEff: t.HasCondEff,
		},
		VarRemap: varRemap,
		OpRemap:  opRemap,
	}
}
