// Package taskio reads the JSON task-file format shared by cmd/symplan and
// cmd/symplan-repl: an FDR task plus its optional precomputed mutex table
// and mutex-group collection.
package taskio

import (
	"encoding/json"
	"fmt"
	"os"

	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
)

// taskFile is the on-disk shape. Facts are addressed by a single global
// index, assigned in variable/value order as the file is read.
type taskFile struct {
	Vars      []varFile      `json:"vars"`
	Init      map[string]int `json:"init"`
	Goal      map[string]int `json:"goal"`
	Operators []opFile       `json:"operators"`
	HasCondEff bool          `json:"has_cond_eff"`
	MutexPairs []mutexPairFile `json:"mutex_pairs"`
	MGroups    []mgroupFile    `json:"mgroups"`
}

type varFile struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type opFile struct {
	Name   string         `json:"name"`
	Cost   int            `json:"cost"`
	Pre    map[string]int `json:"pre"`
	Effect map[string]int `json:"effect"`
}

type mutexPairFile struct {
	A   int    `json:"a"`
	B   int    `json:"b"`
	Dir string `json:"dir"` // "fw", "bw", or "both"
}

type mgroupFile struct {
	Facts       []int `json:"facts"`
	Goal        bool  `json:"goal"`
	ExactlyOne  bool  `json:"exactly_one"`
	FAMGroup    bool  `json:"fam_group"`
}

// Load reads path and builds the FDR task plus mutex data it encodes.
func Load(path string) (*fdr.Task, *mutexdata.PairTable, *mutexdata.MGroups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	var tf taskFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	vars := make([]fdr.Variable, len(tf.Vars))
	next := fdr.FactID(0)
	for i, v := range tf.Vars {
		facts := make([]fdr.FactID, len(v.Values))
		for j := range v.Values {
			facts[j] = next
			next++
		}
		vars[i] = fdr.Variable{Name: v.Name, Values: v.Values, Facts: facts}
	}

	toPartial := func(m map[string]int) fdr.PartialState {
		out := make(fdr.PartialState, len(m))
		for k, v := range m {
			var varIdx int
			fmt.Sscanf(k, "%d", &varIdx)
			out[fdr.VarID(varIdx)] = v
		}
		return out
	}

	ops := make([]fdr.Operator, len(tf.Operators))
	for i, o := range tf.Operators {
		ops[i] = fdr.Operator{
			ID:     i,
			Name:   o.Name,
			Cost:   o.Cost,
			Pre:    toPartial(o.Pre),
			Effect: toPartial(o.Effect),
		}
	}

	t := &fdr.Task{
		Vars:       vars,
		Init:       toPartial(tf.Init),
		Goal:       toPartial(tf.Goal),
		Operators:  ops,
		HasCondEff: tf.HasCondEff,
	}

	mutex := mutexdata.NewPairTable()
	for _, p := range tf.MutexPairs {
		dir := mutexDirOf(p.Dir)
		mutex.Add(fdr.FactID(p.A), fdr.FactID(p.B), dir)
	}

	mgroups := &mutexdata.MGroups{}
	for _, g := range tf.MGroups {
		facts := make([]fdr.FactID, len(g.Facts))
		for i, f := range g.Facts {
			facts[i] = fdr.FactID(f)
		}
		mgroups.Add(mutexdata.MGroup{
			Facts:        facts,
			IsGoal:       g.Goal,
			IsExactlyOne: g.ExactlyOne,
			IsFAMGroup:   g.FAMGroup,
		})
	}
	mgroups.SortUniq()

	return t, mutex, mgroups, nil
}

func mutexDirOf(s string) mutexdata.Direction {
	switch s {
	case "fw":
		return mutexdata.FwMutex
	case "bw":
		return mutexdata.BwMutex
	default:
		return mutexdata.FwMutex | mutexdata.BwMutex
	}
}
