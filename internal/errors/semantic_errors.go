package errors

import "fmt"

// InvalidConfig reports a config validation failure for one field.
func InvalidConfig(field, reason string) *PlannerError {
	return New(CodeInvalidConfig, fmt.Sprintf("invalid config field %q: %s", field, reason)).
		WithContext("field", field).
		WithSuggestion("check the option's documented range in the config reference")
}

// InvalidTask reports a task that violates a precondition the symbolic core
// requires.
func InvalidTask(reason string) *PlannerError {
	return New(CodeInvalidTask, reason).
		WithSuggestion("conditional effects and unsupported operator shapes must be compiled away before calling the planner")
}

// BddLimitReached reports a BDD operation that exceeded its node or time
// budget where the caller could not simply discard the refinement.
func BddLimitReached(operation string, nodes int) *PlannerError {
	return New(CodeBddLimitReached, fmt.Sprintf("%s exceeded its node/time budget (%d nodes)", operation, nodes)).
		WithContext("operation", operation).
		WithSuggestion("raise cache_size or the relevant *_max_nodes / *_max_time option")
}

// GoalConstraintFailed reports a goal constraint collection that could not
// finish tightening within goal_constr_max_time.
func GoalConstraintFailed() *PlannerError {
	return New(CodeGoalConstraintFailed, "goal constraint could not be fully applied within its time budget").
		WithSuggestion("raise goal_constr_max_time, or accept the partially-tightened goal set")
}

// TaskUnsolvable reports that disambiguation proved no plan exists.
func TaskUnsolvable(reason string) *PlannerError {
	return New(CodeTaskUnsolvable, fmt.Sprintf("task has no solution: %s", reason))
}

// StepTimeLimit reports a single step that exceeded step_time_limit; the
// caller is expected to mark the direction dirty and continue rather than
// abort the whole search.
func StepTimeLimit(direction string) *PlannerError {
	return New(CodeStepTimeLimit, fmt.Sprintf("%s direction exceeded its step time limit", direction)).
		WithContext("direction", direction)
}

// OutOfTime reports that the overall search deadline elapsed.
func OutOfTime() *PlannerError {
	return New(CodeOutOfTime, "search aborted: overall time limit reached").
		WithSuggestion("raise the overall time budget or accept the AbortTimeLimit status")
}
