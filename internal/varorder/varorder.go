// Package varorder computes a causal-graph variable ordering: a directed
// weighted graph over FDR variables, SCC-ordered in reverse topological
// order, refined by simulated annealing.
package varorder

import "symplan/internal/fdr"

const goalBonus = 100000

// Graph is an arena-style directed graph over FDR variables: edge weights
// live in a flat map keyed by (from, to), nodes are referred to purely by
// VarID index rather than pointer-linked.
type Graph struct {
	n       int
	weight  map[[2]fdr.VarID]int
}

// Build scans every operator for precondition→effect edges (and, if
// includeEffEff, effect↔effect edges) and accumulates edge weight as the
// number of operators inducing that edge.
func Build(t *fdr.Task, includeEffEff bool) *Graph {
	g := &Graph{n: len(t.Vars), weight: make(map[[2]fdr.VarID]int)}
	for _, op := range t.Operators {
		for pv := range op.Pre {
			for ev := range op.Effect {
				if pv == ev {
					continue
				}
				g.weight[[2]fdr.VarID{pv, ev}]++
			}
		}
		if includeEffEff {
			var effVars []fdr.VarID
			for ev := range op.Effect {
				effVars = append(effVars, ev)
			}
			for i := range effVars {
				for j := range effVars {
					if i == j {
						continue
					}
					g.weight[[2]fdr.VarID{effVars[i], effVars[j]}]++
				}
			}
		}
	}
	return g
}

// tarjanSCC computes strongly connected components, returned in reverse
// topological order, the order causal-graph ordering requires them
// processed in.
func (g *Graph) tarjanSCC() [][]fdr.VarID {
	index := make([]int, g.n)
	low := make([]int, g.n)
	onStack := make([]bool, g.n)
	for i := range index {
		index[i] = -1
	}
	var stack []fdr.VarID
	counter := 0
	var out [][]fdr.VarID

	var adj = make(map[fdr.VarID][]fdr.VarID)
	for e := range g.weight {
		adj[e[0]] = append(adj[e[0]], e[1])
	}

	var strongconnect func(v fdr.VarID)
	strongconnect = func(v fdr.VarID) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if index[w] == -1 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var comp []fdr.VarID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			out = append(out, comp)
		}
	}

	for v := 0; v < g.n; v++ {
		if index[v] == -1 {
			strongconnect(fdr.VarID(v))
		}
	}
	// Tarjan yields components in reverse topological order already
	// (each component is closed before a predecessor that can reach it);
	// no further reversal needed.
	return out
}

// incomingWeight sums edge weight into v from every vertex in visited.
func (g *Graph) incomingWeight(v fdr.VarID, visited map[fdr.VarID]bool) int {
	total := 0
	for e, w := range g.weight {
		if e[1] == v && visited[e[0]] {
			total += w
		}
	}
	return total
}

// orderSCC greedily pops, from an SCC, the variable of minimum incoming
// weight from the not-yet-ordered rest of the SCC, under a goalBonus that
// inflates a goal variable's score so it is popped last, i.e. placed late /
// closer to the tail of that SCC's slice.
func orderSCC(comp []fdr.VarID, g *Graph, isGoal map[fdr.VarID]bool) []fdr.VarID {
	remaining := make(map[fdr.VarID]bool, len(comp))
	for _, v := range comp {
		remaining[v] = true
	}
	var ordered []fdr.VarID
	for len(remaining) > 0 {
		best := fdr.VarID(-1)
		bestScore := -1
		for v := range remaining {
			score := g.incomingWeight(v, remaining)
			if isGoal[v] {
				score += goalBonus
			}
			if best == -1 || score < bestScore {
				best = v
				bestScore = score
			}
		}
		ordered = append(ordered, best)
		delete(remaining, best)
	}
	return ordered
}

// Order computes the full causal-graph variable ordering for t: SCCs in
// reverse topological order, each internally ordered by orderSCC, with
// variables not backward-reachable from the goal moved to the tail, then
// refined by simulated annealing.
func Order(t *fdr.Task, rng *RNG) []fdr.VarID {
	g := Build(t, true)
	isGoal := make(map[fdr.VarID]bool)
	for v := range t.Goal {
		isGoal[v] = true
	}

	sccs := g.tarjanSCC()
	var order []fdr.VarID
	for _, comp := range sccs {
		order = append(order, orderSCC(comp, g, isGoal)...)
	}

	order = moveUnreachableToTail(order, g, isGoal)
	order = simulatedAnnealing(order, g, rng)
	return order
}

// moveUnreachableToTail moves every variable not backward-reachable (via
// any directed path) from a goal variable to the end of order, preserving
// the relative order of the rest.
func moveUnreachableToTail(order []fdr.VarID, g *Graph, isGoal map[fdr.VarID]bool) []fdr.VarID {
	rev := make(map[fdr.VarID][]fdr.VarID)
	for e := range g.weight {
		rev[e[1]] = append(rev[e[1]], e[0])
	}
	reach := make(map[fdr.VarID]bool)
	var stack []fdr.VarID
	for v := range isGoal {
		stack = append(stack, v)
		reach[v] = true
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, u := range rev[v] {
			if !reach[u] {
				reach[u] = true
				stack = append(stack, u)
			}
		}
	}

	var head, tail []fdr.VarID
	for _, v := range order {
		if reach[v] {
			head = append(head, v)
		} else {
			tail = append(tail, v)
		}
	}
	return append(head, tail...)
}

// RNG is a minimal deterministic linear-congruential generator so variable
// ordering is reproducible across runs given the same seed — the search
// core has no use for cryptographic randomness and must stay deterministic
// for plan reproducibility.
type RNG struct{ state uint64 }

func NewRNG(seed uint64) *RNG { return &RNG{state: seed | 1} }

func (r *RNG) next() uint64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}

const (
	saIterations = 50000
	saRestarts   = 20
)

// simulatedAnnealing minimises ∑_{u→v} (position(v)-position(u))^2 over a
// fixed swap budget, restarting from the causal-graph order plus
// saRestarts-1 random shuffles and keeping the best result.
func simulatedAnnealing(base []fdr.VarID, g *Graph, rng *RNG) []fdr.VarID {
	best := append([]fdr.VarID(nil), base...)
	bestCost := cost(best, g)

	for restart := 0; restart < saRestarts; restart++ {
		var cur []fdr.VarID
		if restart == 0 {
			cur = append([]fdr.VarID(nil), base...)
		} else {
			cur = shuffled(base, rng)
		}
		curCost := cost(cur, g)
		temp := 1.0
		for it := 0; it < saIterations; it++ {
			if len(cur) < 2 {
				break
			}
			i := rng.Intn(len(cur))
			j := rng.Intn(len(cur))
			if i == j {
				continue
			}
			cur[i], cur[j] = cur[j], cur[i]
			newCost := cost(cur, g)
			if newCost <= curCost || acceptWorse(rng, temp) {
				curCost = newCost
			} else {
				cur[i], cur[j] = cur[j], cur[i]
			}
			temp *= 0.9999
		}
		if curCost < bestCost {
			bestCost = curCost
			best = cur
		}
	}
	return best
}

func acceptWorse(rng *RNG, temp float64) bool {
	return float64(rng.Intn(1000))/1000.0 < temp*0.01
}

func shuffled(base []fdr.VarID, rng *RNG) []fdr.VarID {
	out := append([]fdr.VarID(nil), base...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func cost(order []fdr.VarID, g *Graph) int64 {
	pos := make(map[fdr.VarID]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	var total int64
	for e, w := range g.weight {
		d := int64(pos[e[1]] - pos[e[0]])
		total += int64(w) * d * d
	}
	return total
}

// Permutation builds the old->new VarID remap for a computed order,
// suitable for reordering operators/init/goal/mgroups.
func Permutation(order []fdr.VarID) map[fdr.VarID]fdr.VarID {
	perm := make(map[fdr.VarID]fdr.VarID, len(order))
	for newIdx, old := range order {
		perm[old] = fdr.VarID(newIdx)
	}
	return perm
}
