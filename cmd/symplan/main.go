// Command symplan runs the symbolic BDD-based optimal planner over one FDR
// task file and prints the resulting plan: a single positional argument,
// flag-based options, and fatih/color for result formatting.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"symplan/internal/config"
	plannererrors "symplan/internal/errors"
	"symplan/internal/fdr"
	"symplan/internal/plannerlog"
	"symplan/internal/potential"
	"symplan/internal/search"
	"symplan/internal/task"
	"symplan/internal/taskio"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "path to a YAML config file (defaults baked in if omitted)")
		timeout    = flag.Duration("timeout", 0, "overall search deadline, e.g. 5m (0 = unbounded)")
		verbosity  = flag.Int("v", 0, "commonlog verbosity (higher = more output)")
		noColor    = flag.Bool("no-color", false, "disable ANSI color in error/plan output")
		usePot     = flag.Bool("potential", false, "enable the zero potential heuristic / goal splitting (needs a real potential function to be useful)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <task.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	taskPath := flag.Arg(0)

	reporter := plannererrors.NewReporter(*noColor)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return reportFailure(reporter, err)
		}
		cfg = loaded
	}

	t, mutex, mgroups, err := taskio.Load(taskPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", color.RedString("error"), err)
		return 1
	}

	planner, err := task.New(t, mutex, mgroups, cfg)
	if err != nil {
		return reportFailure(reporter, err)
	}
	planner.WithLogger(plannerlog.New(*verbosity))

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	var potFn potential.PotentialFn
	if *usePot {
		potFn = func(fdr.FactID) float64 { return 0 }
	}

	status, plan, err := planner.Solve(ctx, potFn)
	if err != nil {
		return reportFailure(reporter, err)
	}

	return printResult(status, plan, t)
}

func reportFailure(r *plannererrors.Reporter, err error) int {
	if pe, ok := err.(*plannererrors.PlannerError); ok {
		fmt.Fprint(os.Stderr, r.Format(pe))
		return 1
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", color.RedString("error"), err)
	return 1
}

func printResult(status search.Status, plan search.Plan, t *fdr.Task) int {
	switch status {
	case search.PlanFound:
		color.Green("plan found: %d steps, cost %d", len(plan.Operators), plan.Cost)
		for i, opID := range plan.Operators {
			name := fmt.Sprintf("op#%d", opID)
			if opID >= 0 && opID < len(t.Operators) {
				name = t.Operators[opID].Name
			}
			fmt.Printf("%4d: %s\n", i, name)
		}
		return 0
	case search.PlanNotExist:
		color.Yellow("no plan exists for this task")
		return 1
	case search.AbortTimeLimit:
		color.Red("search aborted: time limit reached")
		return 1
	default:
		color.Red("search failed: %s", status)
		return 1
	}
}
