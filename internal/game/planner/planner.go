// Package planner implements the GOAP search: given a current world state,
// a partial target state, and the available action universe, it finds the
// cheapest ordered action sequence whose effects chain from here to there.
package planner

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
)

// ErrNoPlan is returned when the search space is exhausted, or the node
// budget spent, before any state satisfying the goal is reached. It is an
// expected negative outcome, not a defect; callers decide whether it is
// fatal.
var ErrNoPlan = errors.New("planner: no plan found")

// DefaultNodeBudget bounds expansions per planning call. Unreachable goals
// (a target value no action produces) exhaust the frontier long before
// this; the budget exists so a pathological action universe degrades into
// an ErrNoPlan instead of a hang.
const DefaultNodeBudget = 10000

// Planner runs deterministic forward A* over symbolic states.
//
// Planning is pure and synchronous: it never touches the network, so its
// cost is bounded by search-space size alone. A Planner is stateless across
// calls and safe to share.
type Planner struct {
	nodeBudget int
}

// New constructs a Planner; nodeBudget <= 0 selects DefaultNodeBudget.
func New(nodeBudget int) *Planner {
	if nodeBudget <= 0 {
		nodeBudget = DefaultNodeBudget
	}
	return &Planner{nodeBudget: nodeBudget}
}

// node is one search state. The parent chain reconstructs the action
// sequence on success.
type node struct {
	st     state.State
	parent *node
	via    action.Action // action that produced this node; nil at the root
	gCost  int           // cumulative action cost from the root
	hCost  int           // unsatisfied goal facts, admissible for costs >= 1
	seq    uint64        // insertion order, the final tie-break
	index  int           // heap bookkeeping
}

func (n *node) fCost() int { return n.gCost + n.hCost }

// frontier is a min-heap ordered by f-cost, then g-cost, then insertion
// sequence. The sequence tie-break makes repeated searches over identical
// inputs produce identical plans.
type frontier []*node

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].fCost() != f[j].fCost() {
		return f[i].fCost() < f[j].fCost()
	}
	if f[i].gCost != f[j].gCost {
		return f[i].gCost < f[j].gCost
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x any) {
	n := x.(*node)
	n.index = len(*f)
	*f = append(*f, n)
}

func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*f = old[:len(old)-1]
	return n
}

// Plan searches for an ordered action sequence from current to a state
// satisfying goal.
//
// Postcondition: a goal already satisfied by current returns the empty
// Plan with zero cost. Exhausting the frontier or the node budget returns
// an error wrapping ErrNoPlan; Plan never loops forever and never returns
// an empty plan for an unsatisfied goal.
func (p *Planner) Plan(current, goal state.State, available []action.Action) (*Plan, error) {
	if current.Satisfies(goal) {
		return newPlan(nil), nil
	}

	var seq uint64
	root := &node{st: current, hCost: current.UnsatisfiedCount(goal)}

	open := &frontier{}
	heap.Init(open)
	heap.Push(open, root)

	// bestCost tracks the cheapest g-cost at which each state fingerprint
	// was reached; a state re-reached at equal or worse cost is never
	// re-expanded, which both prunes and guarantees termination.
	bestCost := map[string]int{current.Fingerprint(): 0}

	expanded := 0
	for open.Len() > 0 {
		if expanded >= p.nodeBudget {
			return nil, fmt.Errorf("%w (node budget %d exhausted)", ErrNoPlan, p.nodeBudget)
		}
		cur := heap.Pop(open).(*node)
		expanded++

		if cur.st.Satisfies(goal) {
			return newPlan(reconstruct(cur)), nil
		}

		for _, a := range available {
			if !cur.st.Satisfies(a.Preconditions()) {
				continue
			}
			child := cur.st.Clone()
			child.Merge(a.Effects())

			g := cur.gCost + a.Cost()
			fp := child.Fingerprint()
			if prev, seen := bestCost[fp]; seen && prev <= g {
				continue
			}
			bestCost[fp] = g

			seq++
			heap.Push(open, &node{
				st:     child,
				parent: cur,
				via:    a,
				gCost:  g,
				hCost:  child.UnsatisfiedCount(goal),
				seq:    seq,
			})
		}
	}

	return nil, fmt.Errorf("%w (search space exhausted after %d expansions)", ErrNoPlan, expanded)
}

// reconstruct walks the parent chain from the goal node back to the root
// and returns the actions in execution order.
func reconstruct(n *node) []action.Action {
	var rev []action.Action
	for cur := n; cur.via != nil; cur = cur.parent {
		rev = append(rev, cur.via)
	}
	out := make([]action.Action, len(rev))
	for i, a := range rev {
		out[len(rev)-1-i] = a
	}
	return out
}
