package optimiser

import "fmt"

// Status is the outcome of a solver run
type Status string

const (
	StatusNone       Status = ""
	StatusConverged  Status = "converged"
	StatusMaxIter    Status = "max_iter"   // outer iteration limit reached
	StatusInfeasible Status = "infeasible" // constraints still violated
	StatusSingular   Status = "singular"   // equilibrium could not be evaluated
	StatusCancelled  Status = "cancelled"
	StatusBadInput   Status = "bad_input"
)

// Success reports whether a solution was found
func (s Status) Success() bool { return s == StatusConverged }

// SolverError represents non-convergence or an infeasible constraint set
type SolverError struct {
	Status     Status
	Constraint string // most violated constraint, empty if unknown
	Msg        string
}

func (e *SolverError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("solver error (%s): %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("solver error (%s) at %s: %s", e.Status, e.Constraint, e.Msg)
}
