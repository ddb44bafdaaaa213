package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexiusacademia/gotno/internal/equilibrium"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/shape"
	"github.com/cpmech/gosl/io"
)

// State is a step of the analysis pipeline. States only move forward.
type State int

const (
	Created State = iota
	SelfweightApplied
	EnvelopeApplied
	ReactionBoundsApplied
	OptimiserSetUp
	Converged
	Failed
)

var stateNames = [...]string{
	"created", "selfweight applied", "envelope applied",
	"reaction bounds applied", "optimiser set up", "converged", "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// SequenceError represents a pipeline step invoked out of order
type SequenceError struct {
	Step  string
	State State
	Need  State
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("sequence error: %s needs %q but the analysis is %q", e.Step, e.Need, e.State)
}

// Analysis binds a form diagram, a shape and an optimiser configuration.
// The form and the shape are read, never modified.
type Analysis struct {
	Form      *form.Diagram
	Shape     *shape.Shape
	Optimiser *optimiser.Optimiser

	state State
	net   *equilibrium.Network

	loads      []float64 // vertical load per node (kN, negative down)
	selfweight float64
	zmin, zmax []float64
	mid        []float64

	problem *thrustProblem
	x0      []float64
	scale   []float64
	result  *Result
}

// New creates an analysis. The form diagram is validated here.
func New(f *form.Diagram, s *shape.Shape, o *optimiser.Optimiser) (*Analysis, error) {
	if f == nil || s == nil || o == nil {
		return nil, fmt.Errorf("analysis needs a form diagram, a shape and an optimiser")
	}
	net, err := equilibrium.NewNetwork(f)
	if err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Analysis{Form: f, Shape: s, Optimiser: o, net: net}, nil
}

// CreateMinThrustAnalysis creates a minimum thrust analysis with the
// funicular and envelope constraints active
func CreateMinThrustAnalysis(f *form.Diagram, s *shape.Shape) (*Analysis, error) {
	return New(f, s, optimiser.CreateMinThrust())
}

// CreateMaxThrustAnalysis creates a maximum thrust analysis with the
// funicular and envelope constraints active
func CreateMaxThrustAnalysis(f *form.Diagram, s *shape.Shape) (*Analysis, error) {
	return New(f, s, optimiser.CreateMaxThrust())
}

// CreateComplementaryEnergyAnalysis creates an analysis minimising the
// complementary energy under the given support displacements, one per
// support in support order
func CreateComplementaryEnergyAnalysis(f *form.Diagram, s *shape.Shape, displacements []geom.Point) (*Analysis, error) {
	return New(f, s, optimiser.CreateComplementaryEnergy(displacements))
}

// CreateMaxLoadAnalysis creates an analysis maximising the factor of the
// vertical load direction given per node
func CreateMaxLoadAnalysis(f *form.Diagram, s *shape.Shape, maxLambda float64, direction []float64) (*Analysis, error) {
	return New(f, s, optimiser.CreateMaxLoad(maxLambda, direction))
}

// State returns the current pipeline state
func (a *Analysis) State() State { return a.state }

// Network returns the equilibrium network of the form diagram
func (a *Analysis) Network() *equilibrium.Network { return a.net }

// Selfweight returns the total selfweight applied to the nodes (kN)
func (a *Analysis) Selfweight() float64 { return a.selfweight }

// Loads returns the vertical load per node (kN, negative down)
func (a *Analysis) Loads() []float64 { return a.loads }

// Bounds returns the envelope limits per node once the envelope is applied
func (a *Analysis) Bounds() (zmin, zmax []float64) { return a.zmin, a.zmax }

func (a *Analysis) require(step string, need State) error {
	if a.state < need {
		return &SequenceError{Step: step, State: a.state, Need: need}
	}
	return nil
}

func (a *Analysis) printf(format string, args ...any) {
	if a.Optimiser.Settings.Printout {
		io.Pf(format, args...)
	}
}

// ApplySelfweight lumps the selfweight of the shape to the form nodes and
// adds the prescribed nodal loads
func (a *Analysis) ApplySelfweight() error {
	if a.state >= SelfweightApplied {
		return nil
	}
	sw, err := a.Shape.LumpSelfweight(a.Form.Positions())
	if err != nil {
		return err
	}
	a.loads = make([]float64, len(sw))
	a.selfweight = 0
	for i, w := range sw {
		a.loads[i] = -w + a.Form.Nodes[i].Load.Z
		a.selfweight += w
	}
	a.state = SelfweightApplied
	a.printf("selfweight applied: %.4f kN on %d nodes\n", a.selfweight, len(sw))
	return nil
}

// ApplyEnvelope reads the intrados and extrados heights above every node
func (a *Analysis) ApplyEnvelope() error {
	if a.state >= EnvelopeApplied {
		return nil
	}
	if err := a.require("ApplyEnvelope", SelfweightApplied); err != nil {
		return err
	}
	n := a.Form.NumNodes()
	a.zmin, a.zmax, a.mid = make([]float64, n), make([]float64, n), make([]float64, n)
	for i, node := range a.Form.Nodes {
		p := node.Position
		zmin, zmax, err := a.Shape.BoundsAt(p.X, p.Y)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		a.zmin[i], a.zmax[i] = zmin, zmax
		a.mid[i] = (zmin + zmax) / 2
	}
	a.state = EnvelopeApplied
	a.printf("envelope applied to %d nodes\n", n)
	return nil
}

// ApplyReactionBounds checks that the supports can carry reactions within
// the friction cone
func (a *Analysis) ApplyReactionBounds() error {
	if a.state >= ReactionBoundsApplied {
		return nil
	}
	if err := a.require("ApplyReactionBounds", EnvelopeApplied); err != nil {
		return err
	}
	if a.Optimiser.Settings.Friction <= 0 {
		return &optimiser.SolverError{Status: optimiser.StatusBadInput, Constraint: string(optimiser.ReacBounds), Msg: "friction coefficient must be positive"}
	}
	a.state = ReactionBoundsApplied
	a.printf("reaction bounds applied to %d supports (friction %.3f)\n", len(a.net.Fixed), a.Optimiser.Settings.Friction)
	return nil
}

// SetUpOptimiser assembles the optimisation problem and its starting point.
// It requires selfweight and every step implied by the active constraints.
func (a *Analysis) SetUpOptimiser() error {
	if a.state >= OptimiserSetUp {
		return nil
	}
	o := a.Optimiser
	need := SelfweightApplied
	if o.Has(optimiser.Envelope) {
		need = EnvelopeApplied
	}
	if o.Has(optimiser.ReacBounds) {
		need = ReactionBoundsApplied
	}
	if err := a.require("SetUpOptimiser", need); err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return err
	}

	p, err := newThrustProblem(a)
	if err != nil {
		return err
	}
	mid := a.mid
	if mid == nil {
		mid = make([]float64, a.Form.NumNodes())
		for i, node := range a.Form.Nodes {
			z, err := a.Shape.MiddleAt(node.Position.X, node.Position.Y)
			if err != nil {
				return fmt.Errorf("node %d: %w", i, err)
			}
			mid[i] = z
		}
	}
	x0, scale, err := p.start(mid)
	if err != nil {
		return err
	}
	a.problem, a.x0, a.scale = p, x0, scale
	a.state = OptimiserSetUp
	n, m := p.Dims()
	a.printf("optimiser set up: %s, %d variables (%d independents), %d constraints\n", o.Objective, n, p.k, m)
	return nil
}

// Run solves the optimisation. A failed run returns both the failed Result
// and the solver error. Once a run completed, Run returns its Result.
func (a *Analysis) Run(ctx context.Context) (*Result, error) {
	switch {
	case a.state == Converged:
		return a.result, nil
	case a.state == Failed:
		return a.result, a.result.err
	}
	if err := a.require("Run", OptimiserSetUp); err != nil {
		return nil, err
	}
	p := a.problem
	o := a.Optimiser

	sol, runErr := optimiser.Solve(ctx, p, a.x0, a.scale, o)
	res := &Result{
		Objective:      o.Objective,
		CrackTolerance: o.Settings.CrackTol,
		err:            runErr,
	}
	if sol == nil {
		res.Status = StatusFailed
		res.Message = runErr.Error()
	} else {
		res.Iterations = sol.Iterations
		res.MaxViolation = sol.MaxViolation
		res.Message = sol.Message
		res.Status = StatusConverged
		if runErr != nil {
			res.Status = StatusFailed
		}
		if err := res.fill(p, sol.X, a.zmin, a.zmax); err != nil && runErr == nil {
			res.Status, res.Message = StatusFailed, err.Error()
			runErr = &optimiser.SolverError{Status: optimiser.StatusSingular, Msg: err.Error()}
			res.err = runErr
		}
	}

	a.result = res
	if res.Status == StatusConverged {
		a.state = Converged
		o.Status = optimiser.StatusConverged
	} else {
		a.state = Failed
		o.Status = optimiser.StatusSingular
		var serr *optimiser.SolverError
		if errors.As(runErr, &serr) {
			o.Status = serr.Status
		}
	}
	o.Message, o.Fopt = res.Message, res.Fopt
	return res, runErr
}

// Result returns the result of the last run, nil before Run
func (a *Analysis) Result() *Result { return a.result }
