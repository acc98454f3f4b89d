package search

import (
	"symplan/internal/bdd"
	"symplan/internal/fdr"
)

// Logger receives the named search events; a nil Logger disables reporting.
// internal/plannerlog provides the concrete implementation wired to
// commonlog.
type Logger interface {
	InitHeur(dir string, h int)
	GoalSplit(pieces int)
	Step(dir string, count int, expandedNodes, openCount int, bound fdr.Cost)
	FoundPlan(cost fdr.Cost, length int)
	ExpandedBDDNodes(dir string, nodes int)
}

// Config carries the engine-wide knobs that aren't per-side (the overall
// time budget and step-logging cadence).
type Config struct {
	Deadline     bdd.Deadline
	LogEveryStep int
}

// Engine owns both directions' Side state and drives the step loop to
// termination. Exactly one of Fw, Bw is enabled for a uni-directional
// search; both are enabled for bi-directional search.
type Engine struct {
	Fw, Bw *Side
	Task   *fdr.Task
	Bound  fdr.Cost

	cfg Config
	log Logger

	bestCandidate *candidate
	stepCount     int
}

func NewEngine(fw, bw *Side, task *fdr.Task, bound fdr.Cost, cfg Config, log Logger) *Engine {
	return &Engine{Fw: fw, Bw: bw, Task: task, Bound: bound, cfg: cfg, log: log}
}

// Run drives the search to one of the terminal statuses.
func (e *Engine) Run() (Status, Plan) {
	switch {
	case e.Fw.Enabled && e.Bw.Enabled:
		return e.runBidirectional()
	case e.Fw.Enabled:
		return e.runUnidirectional(e.Fw, e.Bw)
	case e.Bw.Enabled:
		return e.runUnidirectional(e.Bw, e.Fw)
	default:
		return Fail, Plan{}
	}
}

func (e *Engine) runUnidirectional(active, fixed *Side) (Status, Plan) {
	for {
		if e.cfg.Deadline.Expired() {
			return AbortTimeLimit, Plan{}
		}
		out := e.step(active, fixed)
		e.logStep(active, out)
		if out.foundGoal {
			cube, ok := active.Mgr().PickOneCube(out.goalMeet)
			if !ok {
				return Fail, Plan{}
			}
			plan := e.reconstructUnidirectional(active, out.goalNode, cube)
			e.logPlan(plan)
			return PlanFound, plan
		}
		if out.timedOut {
			return AbortTimeLimit, Plan{}
		}
		if out.noMoreOpen {
			return PlanNotExist, Plan{}
		}
	}
}

func (e *Engine) runBidirectional() (Status, Plan) {
	for {
		if e.cfg.Deadline.Expired() {
			return AbortTimeLimit, Plan{}
		}
		if done, status, plan := e.checkBidirectionalTermination(); done {
			return status, plan
		}
		side := e.pickSide()
		if side == nil {
			return PlanNotExist, Plan{}
		}
		out := e.step(side, nil)
		e.logStep(side, out)
		e.updateEstimate(side, out)
		if out.noMoreOpen {
			side.Suspended = true
		}
		if out.timedOut {
			return AbortTimeLimit, Plan{}
		}
	}
}

// checkBidirectionalTermination implements the two halting conditions: a
// tight-enough candidate (min_open_f(fw)+min_open_f(bw) >= bound) or both
// directions exhausted with nothing found.
func (e *Engine) checkBidirectionalTermination() (bool, Status, Plan) {
	if e.bestCandidate != nil {
		sum := e.Fw.States.MinOpenF().Value + e.Bw.States.MinOpenF().Value
		if sum >= e.Bound.Value {
			plan := e.reconstructBidirectional(e.bestCandidate)
			e.logPlan(plan)
			return true, PlanFound, plan
		}
	}
	if e.Fw.Suspended && e.Bw.Suspended {
		if e.bestCandidate != nil {
			plan := e.reconstructBidirectional(e.bestCandidate)
			e.logPlan(plan)
			return true, PlanFound, plan
		}
		return true, PlanNotExist, Plan{}
	}
	return false, Continue, Plan{}
}

// pickSide chooses the cheaper-per-node direction to step next, per
// nextStepEstimate (updateEstimate); a suspended or disabled side is
// skipped.
func (e *Engine) pickSide() *Side {
	fwReady := e.Fw.Enabled && !e.Fw.Suspended
	bwReady := e.Bw.Enabled && !e.Bw.Suspended
	switch {
	case fwReady && bwReady:
		if e.Fw.nextStepEstimate <= e.Bw.nextStepEstimate {
			return e.Fw
		}
		return e.Bw
	case fwReady:
		return e.Fw
	case bwReady:
		return e.Bw
	default:
		return nil
	}
}

// updateEstimate keeps an exponentially-weighted average of wall time per
// expanded BDD node, used to favour whichever direction is currently
// cheaper to advance.
func (e *Engine) updateEstimate(s *Side, out stepOutcome) {
	nodes := out.expandedNodes
	if nodes <= 0 {
		nodes = 1
	}
	costPerNode := float64(s.lastStepWallNanos) / float64(nodes)
	if s.nextStepEstimate == 0 {
		s.nextStepEstimate = costPerNode
		return
	}
	s.nextStepEstimate = 0.5*s.nextStepEstimate + 0.5*costPerNode
}

func (e *Engine) logStep(s *Side, out stepOutcome) {
	e.stepCount++
	if e.log == nil {
		return
	}
	if e.cfg.LogEveryStep > 0 && e.stepCount%e.cfg.LogEveryStep == 0 {
		e.log.Step(dirName(s.Dir), e.stepCount, out.expandedNodes, openCount(s), e.Bound)
	}
	if out.expandedNodes > 0 {
		e.log.ExpandedBDDNodes(dirName(s.Dir), out.expandedNodes)
	}
}

func (e *Engine) logPlan(p Plan) {
	if e.log == nil || !p.Exists {
		return
	}
	e.log.FoundPlan(fdr.Cost{Value: p.Cost}, len(p.Operators))
}

func openCount(s *Side) int { return s.States.OpenByF.Len() }

func dirName(d Direction) string {
	if d == Forward {
		return "fw"
	}
	return "bw"
}

// StepCount returns the number of steps taken so far, for an interactive
// driver to report between calls to StepOnce.
func (e *Engine) StepCount() int { return e.stepCount }

// CurrentBound returns the engine's present branch-and-bound cutoff.
func (e *Engine) CurrentBound() fdr.Cost { return e.Bound }

// OpenCount reports one side's open-list size, or -1 if that side is
// disabled.
func (e *Engine) OpenCount(d Direction) int {
	s := e.sideByDir(d)
	if s == nil || !s.Enabled {
		return -1
	}
	return openCount(s)
}

// ClosedCount reports one side's closed-state count, or -1 if that side is
// disabled.
func (e *Engine) ClosedCount(d Direction) int {
	s := e.sideByDir(d)
	if s == nil || !s.Enabled {
		return -1
	}
	return s.States.NumClosed
}

func (e *Engine) sideByDir(d Direction) *Side {
	if d == Forward {
		return e.Fw
	}
	return e.Bw
}

// StepOnce drives exactly one engine step (choosing a side the same way Run
// would) and reports whether the search reached a terminal status. Intended
// for an interactive driver (cmd/symplan-repl); Run itself never calls this.
func (e *Engine) StepOnce() (done bool, status Status, plan Plan) {
	if e.cfg.Deadline.Expired() {
		return true, AbortTimeLimit, Plan{}
	}

	bidirectional := e.Fw.Enabled && e.Bw.Enabled
	if bidirectional {
		if ok, status, plan := e.checkBidirectionalTermination(); ok {
			return true, status, plan
		}
		side := e.pickSide()
		if side == nil {
			return true, PlanNotExist, Plan{}
		}
		out := e.step(side, nil)
		e.logStep(side, out)
		e.updateEstimate(side, out)
		if out.noMoreOpen {
			side.Suspended = true
		}
		if out.timedOut {
			return true, AbortTimeLimit, Plan{}
		}
		return false, Continue, Plan{}
	}

	active, fixed := e.Fw, e.Bw
	if !active.Enabled {
		active, fixed = e.Bw, e.Fw
	}
	out := e.step(active, fixed)
	e.logStep(active, out)
	if out.foundGoal {
		cube, ok := active.Mgr().PickOneCube(out.goalMeet)
		if !ok {
			return true, Fail, Plan{}
		}
		plan := e.reconstructUnidirectional(active, out.goalNode, cube)
		e.logPlan(plan)
		return true, PlanFound, plan
	}
	if out.timedOut {
		return true, AbortTimeLimit, Plan{}
	}
	if out.noMoreOpen {
		return true, PlanNotExist, Plan{}
	}
	return false, Continue, Plan{}
}
