package executor

import "fmt"

// MaxDepthError reports that execution was requested at or beyond the
// configured recursion bound. It is raised on entry, before any action
// runs, so runaway recursion cannot begin an extra level.
type MaxDepthError struct {
	Depth    int
	MaxDepth int
}

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("executor: depth %d reaches maximum recursion depth %d", e.Depth, e.MaxDepth)
}

// StateConsistencyError reports that a sub-plan left the world in a state
// contradicting an invariant the parent plan depends on. It is caught at
// the recursion boundary and converted into a failed attempt, never
// propagated raw past the executor.
type StateConsistencyError struct {
	Reason string
}

func (e *StateConsistencyError) Error() string {
	return "executor: state consistency violated: " + e.Reason
}
