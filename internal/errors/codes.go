// Package errors implements the planner's structured error taxonomy:
// PlannerError carries a Kind, a stable Code, context key/values, and
// optional suggestions, reported as friendly terminal output rather than
// Go's plain error strings.
//
// Error code ranges:
// P0001-P0099: configuration errors
// P0100-P0199: BDD / resource limit errors
// P0200-P0299: goal and constraint errors
// P0300-P0399: search outcome errors
package errors

const (
	// P0001: a config field failed validation (out of range, unknown key,
	// contradictory direction flags).
	CodeInvalidConfig = "P0001"

	// P0002: a task violates a precondition the symbolic core requires
	// (conditional effects present, empty variable domain, ...).
	CodeInvalidTask = "P0002"

	// P0100: a BDD operation the caller could not afford to skip exceeded
	// its node or time budget.
	CodeBddLimitReached = "P0100"

	// P0200: the goal constraint could not be fully tightened within its
	// time budget.
	CodeGoalConstraintFailed = "P0200"

	// P0300: disambiguation proved the task has no solution.
	CodeTaskUnsolvable = "P0300"

	// P0301: a single step exceeded its per-step time limit.
	CodeStepTimeLimit = "P0301"

	// P0302: the overall search deadline elapsed before a plan or proof of
	// unsolvability was produced.
	CodeOutOfTime = "P0302"
)

// Category returns a human label for a code's range.
func Category(code string) string {
	switch {
	case code >= "P0001" && code < "P0100":
		return "Configuration"
	case code >= "P0100" && code < "P0200":
		return "Resource Limit"
	case code >= "P0200" && code < "P0300":
		return "Goal/Constraint"
	case code >= "P0300" && code < "P0400":
		return "Search Outcome"
	default:
		return "Unknown"
	}
}
