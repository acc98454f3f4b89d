// Package task wires every other internal package into the single entry
// point an embedder calls: given an FDR task, its mutex table and mutex
// groups, and a config, build the symbolic variable layout, both search
// sides, and run the engine to a terminal status.
package task

import (
	"context"
	"time"

	"symplan/internal/bdd"
	"symplan/internal/config"
	"symplan/internal/constraints"
	"symplan/internal/disambig"
	plannererrors "symplan/internal/errors"
	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
	"symplan/internal/potential"
	"symplan/internal/search"
	"symplan/internal/statespace"
	"symplan/internal/symvars"
	"symplan/internal/transition"
	"symplan/internal/varorder"
)

// orderingSeed keeps the simulated-annealing variable reorder deterministic
// across runs of the same task (varorder.RNG is not cryptographic by
// design).
const orderingSeed = 0x51de5eed

// Planner holds everything Solve needs to build and run a search for one
// FDR task.
type Planner struct {
	Task    *fdr.Task
	Mutex   *mutexdata.PairTable
	MGroups *mutexdata.MGroups
	Config  config.Config
	Log     search.Logger
}

// New validates cfg and the task's preconditions and returns a Planner, or
// a *errors.PlannerError describing the first violation.
func New(t *fdr.Task, mutex *mutexdata.PairTable, mgroups *mutexdata.MGroups, cfg config.Config) (*Planner, error) {
	if t.HasCondEff {
		return nil, plannererrors.InvalidTask("conditional effects must be compiled away before reaching the symbolic core")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return &Planner{Task: t, Mutex: mutex, MGroups: mgroups, Config: cfg}, nil
}

// WithLogger attaches an event logger (e.g. plannerlog.New(...)).
func (p *Planner) WithLogger(l search.Logger) *Planner {
	p.Log = l
	return p
}

// Solve runs the configured search to completion. potFn supplies the
// per-fact potential values the goal splitter and potential heuristics use;
// pass nil to disable both (forward/backward search then run with heur=0
// everywhere, i.e. blind symbolic BFS).
func (p *Planner) Solve(ctx context.Context, potFn potential.PotentialFn) (search.Status, search.Plan, error) {
	engine, status, plan, err := p.Prepare(ctx, potFn)
	if err != nil || engine == nil {
		return status, plan, err
	}
	return engine.Run()
}

// Prepare builds the engine for one task/config/potFn combination without
// running it, so an interactive driver (cmd/symplan-repl) can call
// Engine.StepOnce itself. If goal splitting already proves the task
// unsolvable, engine is nil and the terminal status/plan are returned
// directly.
func (p *Planner) Prepare(ctx context.Context, potFn potential.PotentialFn) (*search.Engine, search.Status, search.Plan, error) {
	order := varorder.Order(p.Task, varorder.NewRNG(orderingSeed))
	reordered := varorder.Apply(p.Task, order)

	groups := make([]symvars.Group, len(reordered.Vars))
	for i, v := range reordered.Vars {
		groups[i] = symvars.Group{Var: i, Facts: v.Facts}
	}

	mgr, err := bdd.NewManager(numBDDVars(groups), p.Config.CacheSize)
	if err != nil {
		return nil, search.Fail, search.Plan{}, err
	}
	vars := symvars.Build(mgr, groups)

	d := disambig.New(p.Mutex, p.MGroups)

	fwSide, err := p.buildSide(vars, reordered, search.Forward, p.Config.Fw, d)
	if err != nil {
		return nil, search.Fail, search.Plan{}, err
	}
	bwSide, err := p.buildSide(vars, reordered, search.Backward, p.Config.Bw, d)
	if err != nil {
		return nil, search.Fail, search.Plan{}, err
	}

	initBDD := vars.CreatePartialState(reordered.Init.Facts(reordered.Vars))
	goalBDD := vars.CreatePartialState(reordered.Goal.Facts(reordered.Vars))
	fwSide.FixedBDD = goalBDD
	bwSide.FixedBDD = initBDD

	initHeur := 0
	if potFn != nil && p.Config.Fw.UsePotHeur {
		initHeur = potentialSum(reordered.Init.Facts(reordered.Vars), potFn)
	}
	fwSide.States.AddInit(initBDD, initHeur)
	if p.Log != nil {
		p.Log.InitHeur("fw", initHeur)
	}

	if potFn != nil && p.Config.Bw.UseGoalSplitting {
		pieces, ok := potential.Split(vars, p.Mutex, p.MGroups, reordered.Goal, reordered.Vars, potFn)
		if !ok {
			return nil, search.PlanNotExist, search.Plan{}, nil
		}
		if p.Log != nil {
			p.Log.GoalSplit(len(pieces))
		}
		for _, piece := range pieces {
			bwSide.States.AddInit(piece.BDD, piece.H)
		}
	} else {
		bwSide.States.AddInit(goalBDD, 0)
	}

	deadline := bdd.Unbounded.Deadline
	if dl, ok := ctx.Deadline(); ok {
		deadline = bdd.NewDeadline(time.Until(dl))
	}

	engine := search.NewEngine(fwSide, bwSide, reordered, fdr.Cost{Value: fdr.CostMax}, search.Config{
		Deadline:     deadline,
		LogEveryStep: logEvery(p.Config.LogEveryStep),
	}, p.Log)

	return engine, search.Continue, search.Plan{}, nil
}

func logEvery(enabled bool) int {
	if enabled {
		return 1
	}
	return 0
}

// buildSide prepares one direction's transitions, constraints, and state
// space.
func (p *Planner) buildSide(vars *symvars.Variables, t *fdr.Task, dir search.Direction, dc config.Direction, d *disambig.Disambiguator) (*search.Side, error) {
	prepared := make([]transition.Prepared, len(t.Operators))
	for i := range t.Operators {
		prepared[i] = transition.Prepare(&t.Operators[i], t.Vars, d, p.Mutex, dc.UseOpConstr)
	}

	mergeBudget := bdd.Limit{MaxNodes: dc.TransMergeMaxNodes, Deadline: msDeadline(dc.TransMergeMaxTimeMs)}
	trans := transition.Build(vars, prepared, nil, mergeBudget)

	constrBudget := bdd.Limit{MaxNodes: p.Config.ConstrMaxNodes, Deadline: msDeadline(p.Config.ConstrMaxTimeMs)}
	var constr *constraints.Collection
	switch dir {
	case search.Forward:
		constr = constraints.BuildBw(vars, p.Mutex, p.MGroups, constrBudget)
	default:
		constr = constraints.BuildFw(vars, p.Mutex, p.MGroups, constrBudget)
	}

	return &search.Side{
		Dir:           dir,
		Vars:          vars,
		Trans:         trans,
		Constr:        constr,
		States:        statespace.NewStates(vars.Mgr, true),
		Enabled:       dc.Enabled,
		UseConstr:     dc.UseConstr,
		StepTimeLimit: bdd.Limit{Deadline: msDeadline(dc.StepTimeLimitMs)},
	}, nil
}

func msDeadline(ms int) bdd.Deadline {
	if ms <= 0 {
		return bdd.Deadline{}
	}
	return bdd.NewDeadline(time.Duration(ms) * time.Millisecond)
}

func numBDDVars(groups []symvars.Group) int {
	total := 0
	for _, g := range groups {
		bits := 0
		for (1 << bits) < len(g.Facts) {
			bits++
		}
		if bits == 0 {
			bits = 1
		}
		total += bits * 2
	}
	return total
}

func potentialSum(facts []fdr.FactID, pot potential.PotentialFn) int {
	total := 0.0
	for _, f := range facts {
		total += pot(f)
	}
	if total < 0 {
		return 0
	}
	return int(total)
}
