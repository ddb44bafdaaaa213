package optimiser

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotno/internal/geom"
)

// Objective selects the quantity driven by the solver
type Objective string

const (
	MinThrust    Objective = "min_thrust"
	MaxThrust    Objective = "max_thrust"
	Displacement Objective = "displacement"
	MaxLoad      Objective = "max_load"
)

// Constraint names a family of inequality constraints
type Constraint string

const (
	Funicular  Constraint = "funicular"
	Envelope   Constraint = "envelope"
	ReacBounds Constraint = "reac_bounds"
)

// SolverName selects the inner minimiser of the augmented Lagrangian
type SolverName string

const (
	AugLagBFGS  SolverName = "auglag-bfgs"
	AugLagLBFGS SolverName = "auglag-lbfgs"
)

// Default solver settings
const (
	DefaultMaxIter    = 60
	DefaultInnerIter  = 400
	DefaultTol        = 1e-6
	DefaultPenalty    = 10.0
	DefaultQMin       = 1e-6
	DefaultFriction   = 0.75
	DefaultCrackTol   = 1e-3
	DefaultCompliance = 1e-4
	DefaultMaxLambda  = 500.0
)

// Settings holds the numeric parameters of an optimisation
type Settings struct {
	MaxIter    int     `json:"max_iter"`   // outer iterations
	InnerIter  int     `json:"inner_iter"` // inner minimiser major iterations
	Tol        float64 `json:"tol"`        // scaled feasibility tolerance
	Penalty    float64 `json:"penalty"`    // initial penalty parameter
	QMin       float64 `json:"qmin"`       // lower force density bound
	QMax       float64 `json:"qmax"`       // upper force density bound, 0 for none
	Friction   float64 `json:"friction"`   // support friction coefficient
	CrackTol   float64 `json:"crack_tol"`
	Compliance float64 `json:"compliance"` // edge compliance of the displacement objective
	MaxLambda  float64 `json:"max_lambda"`

	// Prescribed displacement of each support, in support order
	SupportDisplacement []geom.Point `json:"support_displacement,omitempty"`

	// Vertical load per node scaled by the load factor (kN, negative down)
	LoadDirection []float64 `json:"load_direction,omitempty"`

	Printout bool `json:"printout"`
}

// DefaultSettings returns the documented defaults
func DefaultSettings() Settings {
	return Settings{
		MaxIter:    DefaultMaxIter,
		InnerIter:  DefaultInnerIter,
		Tol:        DefaultTol,
		Penalty:    DefaultPenalty,
		QMin:       DefaultQMin,
		Friction:   DefaultFriction,
		CrackTol:   DefaultCrackTol,
		Compliance: DefaultCompliance,
		MaxLambda:  DefaultMaxLambda,
	}
}

// Optimiser is the configuration of a thrust network optimisation. After a
// run it also carries the solver outcome, so it can travel back to a caller
// together with the form and shape.
type Optimiser struct {
	Objective   Objective    `json:"objective"`
	Constraints []Constraint `json:"constraints"`
	Solver      SolverName   `json:"solver"`
	Settings    Settings     `json:"settings"`

	// Outcome of the last run
	Status  Status  `json:"status,omitempty"`
	Message string  `json:"message,omitempty"`
	Fopt    float64 `json:"fopt,omitempty"`
}

func newOptimiser(obj Objective) *Optimiser {
	return &Optimiser{
		Objective:   obj,
		Constraints: []Constraint{Funicular, Envelope},
		Solver:      AugLagBFGS,
		Settings:    DefaultSettings(),
	}
}

// CreateMinThrust creates a minimum thrust optimiser
func CreateMinThrust() *Optimiser {
	return newOptimiser(MinThrust)
}

// CreateMaxThrust creates a maximum thrust optimiser
func CreateMaxThrust() *Optimiser {
	return newOptimiser(MaxThrust)
}

// CreateComplementaryEnergy creates an optimiser minimising the
// complementary energy under the given support displacements
func CreateComplementaryEnergy(displacements []geom.Point) *Optimiser {
	o := newOptimiser(Displacement)
	o.Settings.SupportDisplacement = append([]geom.Point(nil), displacements...)
	return o
}

// CreateMaxLoad creates an optimiser maximising the factor applied to the
// per-node vertical load direction
func CreateMaxLoad(maxLambda float64, direction []float64) *Optimiser {
	o := newOptimiser(MaxLoad)
	o.Settings.MaxLambda = maxLambda
	o.Settings.LoadDirection = append([]float64(nil), direction...)
	return o
}

// SetConstraints replaces the active constraint set
func (o *Optimiser) SetConstraints(cons ...Constraint) {
	o.Constraints = append([]Constraint(nil), cons...)
}

// Has reports whether constraint c is active
func (o *Optimiser) Has(c Constraint) bool {
	for _, k := range o.Constraints {
		if k == c {
			return true
		}
	}
	return false
}

// Validate checks the configuration
func (o *Optimiser) Validate() error {
	bad := func(format string, args ...any) error {
		return &SolverError{Status: StatusBadInput, Msg: fmt.Sprintf(format, args...)}
	}
	switch o.Objective {
	case MinThrust, MaxThrust, Displacement, MaxLoad:
	default:
		return bad("unknown objective %q", o.Objective)
	}
	seen := make(map[Constraint]bool)
	for _, c := range o.Constraints {
		switch c {
		case Funicular, Envelope, ReacBounds:
		default:
			return bad("unknown constraint %q", c)
		}
		if seen[c] {
			return bad("constraint %q listed twice", c)
		}
		seen[c] = true
	}
	switch o.Solver {
	case AugLagBFGS, AugLagLBFGS:
	default:
		return bad("unknown solver %q", o.Solver)
	}

	s := o.Settings
	switch {
	case s.MaxIter <= 0 || s.InnerIter <= 0:
		return bad("iteration limits must be positive")
	case s.Tol <= 0 || s.Penalty <= 0:
		return bad("tolerance and penalty must be positive")
	case s.QMin < 0:
		return bad("qmin must not be negative")
	case s.QMax != 0 && s.QMax <= s.QMin:
		return bad("qmax must exceed qmin")
	case s.Friction <= 0:
		return bad("friction coefficient must be positive")
	case s.CrackTol < 0 || s.Compliance < 0:
		return bad("crack tolerance and compliance must not be negative")
	}
	if o.Objective == MaxLoad {
		if s.MaxLambda <= 0 {
			return bad("max_load needs a positive max_lambda")
		}
		var norm float64
		for _, v := range s.LoadDirection {
			norm += math.Abs(v)
		}
		if norm == 0 {
			return bad("max_load needs a non-zero load direction")
		}
	}
	if o.Objective == Displacement && len(s.SupportDisplacement) == 0 {
		return bad("displacement objective needs support displacements")
	}
	return nil
}
