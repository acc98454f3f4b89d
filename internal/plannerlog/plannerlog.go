// Package plannerlog emits the planner's named structured events through
// github.com/tliron/commonlog, the structured logger already used by the
// toolchain's LSP server, rather than fmt.Printf or the bare log package.
package plannerlog

import (
	"github.com/tliron/commonlog"

	"symplan/internal/fdr"
)

// Logger wraps one commonlog.Logger and satisfies internal/search.Logger.
type Logger struct {
	log commonlog.Logger
}

// New configures commonlog at the given verbosity (0 disables everything
// above Critical, higher numbers widen the threshold, mirroring
// commonlog.Configure's verbosity parameter) and returns a Logger scoped to
// the "symplan" name.
func New(verbosity int) *Logger {
	commonlog.Configure(verbosity, nil)
	return &Logger{log: commonlog.GetLogger("symplan")}
}

func (l *Logger) InitHeur(dir string, h int) {
	l.log.NewMessage(commonlog.Info, 0).
		Set("event", "init_h_value").
		Set("dir", dir).
		Set("h", h).
		Send("initial heuristic value computed")
}

func (l *Logger) GoalSplit(pieces int) {
	l.log.NewMessage(commonlog.Info, 0).
		Set("event", "goal_split").
		Set("pieces", pieces).
		Send("goal split into heuristic-tagged pieces")
}

func (l *Logger) Step(dir string, count int, expandedNodes, openCount int, bound fdr.Cost) {
	l.log.NewMessage(commonlog.Debug, 0).
		Set("event", "step").
		Set("dir", dir).
		Set("step", count).
		Set("bound", bound.Value).
		Set("cur_state_bdd_size", expandedNodes).
		Set("open", openCount).
		Send("search step")
}

func (l *Logger) FoundPlan(cost fdr.Cost, length int) {
	l.log.NewMessage(commonlog.Notice, 0).
		Set("event", "found_plan").
		Set("cost", cost.Value).
		Set("length", length).
		Send("plan found")
}

func (l *Logger) ExpandedBDDNodes(dir string, nodes int) {
	l.log.NewMessage(commonlog.Debug, 0).
		Set("event", "expanded_bdd_nodes").
		Set("dir", dir).
		Set("nodes", nodes).
		Send("bdd node count for the expanded state set")
}
