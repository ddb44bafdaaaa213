package analysis

import (
	"encoding/json"
	"math"
	"os"

	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/alexiusacademia/gotno/internal/optimiser"
)

// Status of a completed run
type Status string

const (
	StatusConverged Status = "converged"
	StatusFailed    Status = "failed"
)

// Reaction is the force a support exerts on the structure (kN)
type Reaction struct {
	Node  int        `json:"node"`
	Force geom.Point `json:"force"`
}

// Result is the outcome of a run. It is created once per run and not
// modified afterwards.
type Result struct {
	Status    Status              `json:"status"`
	Message   string              `json:"message"`
	Objective optimiser.Objective `json:"objective"`

	// Fopt is the optimised quantity: total thrust (kN) for min and max
	// thrust, complementary energy (kNm) for displacement and the load
	// factor for max_load.
	Fopt       float64 `json:"fopt"`
	Thrust     float64 `json:"thrust"`
	LoadFactor float64 `json:"load_factor"`

	// per node
	Heights []float64 `json:"heights"`
	ZMin    []float64 `json:"zmin,omitempty"`
	ZMax    []float64 `json:"zmax,omitempty"`

	// per edge
	ForceDensities []float64 `json:"q"`
	Forces         []float64 `json:"forces"`

	Reactions []Reaction `json:"reactions"`

	Iterations     int     `json:"iterations"`
	MaxViolation   float64 `json:"max_violation"`
	CrackTolerance float64 `json:"crack_tol"`

	err error
}

// fill evaluates the equilibrium at the solution x
func (r *Result) fill(p *thrustProblem, x []float64, zmin, zmax []float64) error {
	st, lambda, err := p.solve(x)
	if err != nil {
		return err
	}
	r.Heights = append([]float64(nil), st.Z...)
	r.ForceDensities = append([]float64(nil), st.Q...)
	r.Forces = p.net.Forces(st)
	r.Reactions = p.reactionsAt(st)
	r.Thrust = p.thrust(st)
	r.Fopt = p.value(st, lambda)
	r.LoadFactor = lambda
	if zmin != nil {
		r.ZMin = append([]float64(nil), zmin...)
		r.ZMax = append([]float64(nil), zmax...)
	}
	return nil
}

// Converged reports whether the run succeeded
func (r *Result) Converged() bool { return r.Status == StatusConverged }

// Cracks returns the nodes touching the intrados and the extrados within
// tol. A negative tol uses the crack tolerance of the run.
func (r *Result) Cracks(tol float64) (intrados, extrados []int) {
	if r.ZMin == nil {
		return nil, nil
	}
	if tol < 0 {
		tol = r.CrackTolerance
	}
	for i, z := range r.Heights {
		if math.Abs(z-r.ZMin[i]) <= tol {
			intrados = append(intrados, i)
		}
		if math.Abs(z-r.ZMax[i]) <= tol {
			extrados = append(extrados, i)
		}
	}
	return intrados, extrados
}

// ThrustNetwork returns a copy of the form diagram lifted to the solved
// heights
func (r *Result) ThrustNetwork(d *form.Diagram) *form.Diagram {
	out := d.Copy()
	for i := range out.Nodes {
		if i < len(r.Heights) {
			out.Nodes[i].Position.Z = r.Heights[i]
		}
	}
	return out
}

// SaveToFile writes the result as JSON
func (r *Result) SaveToFile(filepath string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}
