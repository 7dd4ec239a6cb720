package plan

import (
	"fmt"
	"strings"
)

// CycleError is returned by AddEdge when the requested edge would point
// forward in chain order (the only way a cycle can arise, since every
// accepted edge points backward in time).
type CycleError struct {
	From int
	To   int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("edge %d->%d would create a cycle: %d does not precede %d in chain order", e.From, e.To, e.From, e.To)
}

// ValidationError enumerates every invariant a DAG violates. It is fatal for
// the plan that produced it but never aborts a batch.
type ValidationError struct {
	PlanID     string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan %s: invalid dag: %s", e.PlanID, strings.Join(e.Violations, "; "))
}

// ConflictWarning formats a DependencyConflict message for a node. Conflicts
// are recorded on the node, not raised: the engine always terminates with a
// valid DAG for well-ordered input.
func ConflictWarning(nodeID int, detail string) string {
	return fmt.Sprintf("dependency conflict at node %d: %s", nodeID, detail)
}
