package search

import (
	"time"

	"symplan/internal/bdd"
	"symplan/internal/fdr"
	"symplan/internal/statespace"
)

// stepOutcome reports what happened inside one call to step, for the
// caller's logging and bi-directional scheduling.
type stepOutcome struct {
	expanded      *statespace.Node
	generated     int
	foundGoal     bool
	goalNode      *statespace.Node
	goalMeet      bdd.Node
	noMoreOpen    bool
	timedOut      bool
	expandedNodes int
}

// Mgr returns the BDD manager this side's variables were built on.
func (s *Side) Mgr() *bdd.Manager { return s.Vars.Mgr }

// step performs one expansion/merge iteration on side. When other is
// non-nil the search is uni-directional and the goal test checks membership
// in side.FixedBDD (the active side's own fixed seed — goal for a forward
// side, initial state for a backward side); when other is nil the
// bi-directional branch checks membership in the opposite side's
// closed-state union instead.
func (e *Engine) step(side *Side, other *Side) stepOutcome {
	n, ok := side.States.NextOpen()
	if !ok {
		return stepOutcome{noMoreOpen: true}
	}

	start := time.Now()
	b, ok := side.buildNodeBDD(n)
	side.lastStepWallNanos = time.Since(start).Nanoseconds()
	if !ok {
		side.Dirty = true
		return stepOutcome{timedOut: true}
	}

	if side.Mgr().IsFalse(b) {
		side.States.Close(n)
		return stepOutcome{}
	}

	out := stepOutcome{expandedNodes: side.Mgr().Size(b)}

	if other != nil {
		meet := side.Mgr().And(b, side.FixedBDD)
		if !side.Mgr().IsFalse(meet) {
			out.foundGoal = true
			out.goalNode = n
			out.goalMeet = meet
		}
	} else {
		opp := e.otherSide(side)
		meet := side.Mgr().And(b, opp.States.AllClosed)
		if !side.Mgr().IsFalse(meet) {
			e.considerBidirectionalCandidate(side, n, meet)
		}
	}

	if !out.foundGoal && n.FValue.Less(e.Bound) {
		out.generated = e.expand(side, n)
	}

	side.States.Close(n)
	out.expanded = n

	e.mergeNextOpen(side, n)
	return out
}

// expand pushes one child per transition group item whose resulting cost,
// heuristic, and f-value stay under the engine's bound.
func (e *Engine) expand(side *Side, n *statespace.Node) int {
	count := 0
	for gi, g := range side.Trans.Groups {
		cost := n.Cost.Add(g.Cost)
		heur := n.Heur + g.HeurChange
		if heur < 0 {
			continue // dead-end: heuristic change makes this unreachable
		}
		fval := fdr.Cost{Value: cost.Value + heur, ZeroTag: cost.ZeroTag}
		if !fval.Less(e.Bound) {
			continue
		}
		for ii := range g.Items {
			side.States.NewChild(n.ID, packTransID(gi, ii), cost, heur)
			count++
		}
	}
	return count
}

// mergeNextOpen collapses open-list runs that share (cost, heur) with the
// just-closed n: while the next open node matches, pop it, OR its BDD into a
// merged node, and push the merge back if more than one node was collected.
func (e *Engine) mergeNextOpen(side *Side, n *statespace.Node) {
	var mergedIDs []int
	var mergedBDD bdd.Node

	for {
		peek, ok := side.States.PeekOpen()
		if !ok {
			break
		}
		if peek.Cost != n.Cost || peek.Heur != n.Heur {
			break
		}
		next, _ := side.States.NextOpen()
		b, ok := side.buildNodeBDD(next)
		if !ok {
			// A time-limited lazy build failed: leave it closed as an
			// unexpanded node rather than corrupt the merge.
			side.States.Close(next)
			continue
		}
		if mergedBDD == nil {
			mergedBDD = b
		} else {
			mergedBDD = side.Mgr().Or(mergedBDD, b)
		}
		mergedIDs = append(mergedIDs, next.ID)
	}

	switch len(mergedIDs) {
	case 0:
		return
	case 1:
		only := side.States.Pool.Get(mergedIDs[0])
		side.States.OpenState(only)
	default:
		merged := side.States.Add()
		merged.ParentID = -2
		merged.ParentIDs = mergedIDs
		merged.Cost = n.Cost
		merged.Heur = n.Heur
		merged.FValue = fdr.Cost{Value: n.Cost.Value + maxInt(n.Heur, 0), ZeroTag: n.Cost.ZeroTag}
		merged.BDD = mergedBDD
		side.States.OpenState(merged)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// considerBidirectionalCandidate walks the other side's closed states,
// recording a tighter plan candidate for every pairing whose combined cost
// beats the current bound.
func (e *Engine) considerBidirectionalCandidate(side *Side, n *statespace.Node, meet bdd.Node) {
	opp := e.otherSide(side)
	opp.States.Closed.AscendIDs(func(cost fdr.Cost, heur, otherID int) bool {
		combined := n.Cost.Add(cost)
		if combined.Less(e.Bound) {
			otherNode := opp.States.Pool.Get(otherID)
			candidateMeet := side.Mgr().And(meet, otherNode.BDD)
			if !side.Mgr().IsFalse(candidateMeet) {
				e.Bound = combined
				e.bestCandidate = &candidate{
					selfSide:  side,
					selfNode:  n,
					otherSide: opp,
					otherNode: otherNode,
					meet:      candidateMeet,
				}
			}
		}
		return true
	})
}

type candidate struct {
	selfSide, otherSide *Side
	selfNode, otherNode *statespace.Node
	meet                bdd.Node
}

func (e *Engine) otherSide(s *Side) *Side {
	if s == e.Fw {
		return e.Bw
	}
	return e.Fw
}
