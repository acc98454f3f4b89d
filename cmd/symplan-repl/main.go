// Command symplan-repl is an interactive step-by-step driver over the
// symbolic search engine: a line-based loop (bufio.Scanner + a prompt) for
// inspecting open/closed sizes and the current bound between individual
// engine steps.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"symplan/internal/config"
	plannererrors "symplan/internal/errors"
	"symplan/internal/fdr"
	"symplan/internal/plannerlog"
	"symplan/internal/search"
	"symplan/internal/task"
	"symplan/internal/taskio"
)

const prompt = "symplan> "

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file")
	verbosity := flag.Int("v", 0, "commonlog verbosity")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <task.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}

	reporter := plannererrors.NewReporter(false)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return reportFailure(reporter, err)
		}
		cfg = loaded
	}

	t, mutex, mgroups, err := taskio.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	planner, err := task.New(t, mutex, mgroups, cfg)
	if err != nil {
		return reportFailure(reporter, err)
	}
	planner.WithLogger(plannerlog.New(*verbosity))

	engine, status, plan, err := planner.Prepare(context.Background(), nil)
	if err != nil {
		return reportFailure(reporter, err)
	}
	if engine == nil {
		printTerminal(status, plan, t)
		return 0
	}

	newREPL(engine, t).loop(os.Stdin)
	return 0
}

type repl struct {
	engine *search.Engine
	task   *fdr.Task
	done   bool
	status search.Status
	plan   search.Plan
}

func newREPL(e *search.Engine, t *fdr.Task) *repl {
	return &repl{engine: e, task: t}
}

func (r *repl) loop(in *os.File) {
	scanner := bufio.NewScanner(in)
	fmt.Println("symplan interactive search debugger. Commands: step [n], open, closed, bound, plan, run, quit")
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "step":
			n := 1
			if len(fields) > 1 {
				fmt.Sscanf(fields[1], "%d", &n)
			}
			r.step(n)
		case "run":
			r.step(1 << 30)
		case "open":
			fmt.Printf("open: fw=%d bw=%d\n", r.engine.OpenCount(search.Forward), r.engine.OpenCount(search.Backward))
		case "closed":
			fmt.Printf("closed: fw=%d bw=%d\n", r.engine.ClosedCount(search.Forward), r.engine.ClosedCount(search.Backward))
		case "bound":
			fmt.Printf("bound: %d (step %d)\n", r.engine.CurrentBound().Value, r.engine.StepCount())
		case "plan":
			r.printPlan()
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func (r *repl) step(n int) {
	if r.done {
		fmt.Println("search already finished; use 'plan' to see the result")
		return
	}
	for i := 0; i < n; i++ {
		done, status, plan := r.engine.StepOnce()
		if done {
			r.done, r.status, r.plan = true, status, plan
			printTerminal(status, plan, r.task)
			return
		}
	}
	fmt.Printf("stepped %d time(s); step count now %d\n", n, r.engine.StepCount())
}

func (r *repl) printPlan() {
	if !r.done {
		fmt.Println("search has not reached a terminal state yet")
		return
	}
	printTerminal(r.status, r.plan, r.task)
}

func printTerminal(status search.Status, plan search.Plan, t *fdr.Task) {
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
	case search.PlanNotExist:
		color.Yellow("no plan exists for this task")
	case search.AbortTimeLimit:
		color.Red("search aborted: time limit reached")
	default:
		color.Red("search failed: %s", status)
	}
}

func reportFailure(r *plannererrors.Reporter, err error) int {
	if pe, ok := err.(*plannererrors.PlannerError); ok {
		fmt.Fprint(os.Stderr, r.Format(pe))
		return 1
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}
