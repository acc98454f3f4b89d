package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a PlannerError.
type Level string

const (
	Error Level = "error"
	Warn  Level = "warning"
)

// PlannerError is a structured, user-facing failure: a taxonomy Code, a
// human Message, free-form Context (the values that explain why), and
// optional Suggestions for what to try next.
type PlannerError struct {
	Level       Level
	Code        string
	Message     string
	Context     map[string]string
	Suggestions []string
}

func (e *PlannerError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// New builds a PlannerError with no context or suggestions; use With*
// methods to add them.
func New(code, message string) *PlannerError {
	return &PlannerError{Level: Error, Code: code, Message: message}
}

// WithContext records one explanatory key/value pair.
func (e *PlannerError) WithContext(key, value string) *PlannerError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion appends a suggested next step.
func (e *PlannerError) WithSuggestion(s string) *PlannerError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// Reporter formats PlannerErrors for terminal output, in the ordered
// message/context/suggestions shape the CLI and REPL both use.
type Reporter struct{ NoColor bool }

func NewReporter(noColor bool) *Reporter { return &Reporter{NoColor: noColor} }

// Format renders err as colored, multi-line text.
func (r *Reporter) Format(err *PlannerError) string {
	var b strings.Builder

	levelColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if err.Level == Warn {
		levelColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	dim := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	if r.NoColor {
		color.NoColor = true
	}

	fmt.Fprintf(&b, "%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message)
	fmt.Fprintf(&b, "  %s %s\n", dim("category:"), Category(err.Code))

	if len(err.Context) > 0 {
		fmt.Fprintf(&b, "  %s\n", dim("context:"))
		for k, v := range err.Context {
			fmt.Fprintf(&b, "    %s: %s\n", dim(k), v)
		}
	}

	for i, s := range err.Suggestions {
		if i == 0 {
			fmt.Fprintf(&b, "  %s %s\n", cyan("help:"), s)
		} else {
			fmt.Fprintf(&b, "        %s\n", s)
		}
	}

	return b.String()
}
