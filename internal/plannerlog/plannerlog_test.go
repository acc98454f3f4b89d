package plannerlog

import (
	"testing"

	"symplan/internal/fdr"
)

// These are smoke tests: plannerlog has no observable return values, so the
// only thing worth checking is that every Logger method is callable without
// panicking for a representative set of arguments.
func TestLoggerMethodsDoNotPanic(t *testing.T) {
	l := New(0)

	l.InitHeur("fw", 3)
	l.GoalSplit(2)
	l.Step("bw", 1, 10, 4, fdr.Cost{Value: 5})
	l.FoundPlan(fdr.Cost{Value: 7}, 3)
	l.ExpandedBDDNodes("fw", 42)
}
