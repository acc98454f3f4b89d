// Package fdr implements the finite-domain representation (FDR) model: state
// variables, operators, and partial-state utilities. It has no dependency on
// the BDD layer; internal/symvars builds a symbolic encoding on top of it.
package fdr

import "sort"

// FactID uniquely identifies one (variable, value) pair across the whole
// task, independent of variable ordering.
type FactID int

// VarID identifies one FDR variable (a fact group).
type VarID int

// Variable is one multi-valued state variable: a named list of mutually
// exclusive values, each already assigned a FactID.
type Variable struct {
	Name   string
	Values []string
	Facts  []FactID // Facts[value] is the fact id for that value
}

// PartialState is an order-invariant mapping {var -> val}, used for
// preconditions, effects, and the goal.
type PartialState map[VarID]int

// Clone returns an independent copy.
func (p PartialState) Clone() PartialState {
	out := make(PartialState, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Facts returns the fact ids this partial state asserts, given the task's
// variable table.
func (p PartialState) Facts(vars []Variable) []FactID {
	out := make([]FactID, 0, len(p))
	for v, val := range p {
		out = append(out, vars[v].Facts[val])
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Subset reports whether every (var, val) pair in p also holds in other.
func (p PartialState) Subset(other PartialState) bool {
	for v, val := range p {
		if ov, ok := other[v]; !ok || ov != val {
			return false
		}
	}
	return true
}

// ConditionalEffect is carried for completeness, but the symbolic search
// core does not support it: task.New rejects a task whose HasCondEff flag
// is set with an InvalidTask error.
type ConditionalEffect struct {
	Pre    PartialState
	Effect PartialState
}

// Operator is one grounded FDR action.
type Operator struct {
	ID        int
	Name      string
	Cost      int
	Pre       PartialState
	Effect    PartialState
	CondEff   []ConditionalEffect
}

// Apply produces the successor of state under o: effects are written over a
// copy of state, then every conditional effect whose precondition is
// consistent with the *original* state (not the updated copy) is written.
func (o *Operator) Apply(state PartialState) PartialState {
	out := state.Clone()
	for v, val := range o.Effect {
		out[v] = val
	}
	for _, ce := range o.CondEff {
		if ce.Pre.Subset(state) {
			for v, val := range ce.Effect {
				out[v] = val
			}
		}
	}
	return out
}

// IsApplicable reports whether o's precondition holds in state.
func (o *Operator) IsApplicable(state PartialState) bool {
	return o.Pre.Subset(state)
}

// Cost is the pair (hard cost, zero-cost tag) used to break ties among
// zero-cost transitions. Comparison is lexicographic on (Value, ZeroTag):
// among equal Value, a transition that has taken more zero-cost steps sorts
// worse, which starves zero-cost cycles of priority and keeps the open-list
// tie-break finite.
type Cost struct {
	Value   int
	ZeroTag int
}

// Add combines two costs: hard costs add, zero tags add (a zero-cost
// operator contributes ZeroTag=1, everything else ZeroTag=0).
func (c Cost) Add(o Cost) Cost {
	return Cost{Value: c.Value + o.Value, ZeroTag: c.ZeroTag + o.ZeroTag}
}

// Less is the strict lexicographic order (Value, then ZeroTag).
func (c Cost) Less(o Cost) bool {
	if c.Value != o.Value {
		return c.Value < o.Value
	}
	return c.ZeroTag < o.ZeroTag
}

// CostMax is the sentinel for an unreachable / dead-end cost; every real
// cost is clamped to non-negative and <= CostMax.
const CostMax = 1 << 30

// OpCost returns the Cost pair for operator o: ZeroTag is 1 when o.Cost==0,
// so a chain of n zero-cost operators accrues ZeroTag==n.
func OpCost(o *Operator) Cost {
	if o.Cost == 0 {
		return Cost{Value: 0, ZeroTag: 1}
	}
	return Cost{Value: o.Cost, ZeroTag: 0}
}

// Task is the finished, already-grounded FDR planning task the symbolic
// search core consumes. HasCondEff must be false for the symbolic core;
// translation from STRIPS and conditional effect compilation happen
// upstream of this package.
type Task struct {
	Vars        []Variable
	Init        PartialState
	Goal        PartialState
	Operators   []Operator
	HasCondEff  bool
}

// NumFacts returns the total number of facts across all variables.
func (t *Task) NumFacts() int {
	n := 0
	for _, v := range t.Vars {
		n += len(v.Values)
	}
	return n
}
