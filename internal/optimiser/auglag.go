package optimiser

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Problem is a smooth nonlinear program
//
//	min f(x)  subject to  g(x) >= 0
//
// Evaluate fills cons with g(x) and returns f(x). When grad and jac are
// not nil it also fills the objective gradient and the m × n constraint
// jacobian. An error means x cannot be evaluated (for example a singular
// equilibrium) and is treated as an infeasible point.
type Problem interface {
	Dims() (n, m int)
	Evaluate(x, grad, cons []float64, jac *mat.Dense) (float64, error)
	ConstraintName(i int) string
}

// Solution is the outcome of Solve
type Solution struct {
	X            []float64
	F            float64
	Status       Status
	Message      string
	Iterations   int // outer iterations
	Inner        int // inner major iterations summed over outer iterations
	MaxViolation float64
	Worst        int // most violated constraint, -1 when feasible
}

const (
	maxPenalty   = 1e8
	penaltyGrow  = 10.0
	stallRatio   = 0.25
	barrierValue = 1e20 // merit value at points that cannot be evaluated
)

// evaluation caches the last full evaluation of the problem
type evaluation struct {
	x     []float64
	f     float64
	grad  []float64
	cons  []float64
	jac   *mat.Dense
	valid bool
	full  bool
	err   error
}

// Solve minimises the problem with an augmented Lagrangian (PHR) method.
// Variables are scaled by scale (x = scale ⊙ y) for the inner minimiser.
func Solve(ctx context.Context, p Problem, x0, scale []float64, o *Optimiser) (*Solution, error) {
	n, m := p.Dims()
	if len(x0) != n || len(scale) != n {
		return nil, &SolverError{Status: StatusBadInput, Msg: fmt.Sprintf("expected %d variables, got %d (scale %d)", n, len(x0), len(scale))}
	}
	s := o.Settings
	printout := s.Printout

	ev := &evaluation{
		x:    make([]float64, n),
		grad: make([]float64, n),
		cons: make([]float64, m),
	}
	if m > 0 {
		ev.jac = mat.NewDense(m, n, nil)
	}
	xs := make([]float64, n)
	evaluate := func(y []float64, full bool) *evaluation {
		floats.MulTo(xs, y, scale)
		if ev.valid && floats.Equal(xs, ev.x) && (ev.full || !full) {
			return ev
		}
		copy(ev.x, xs)
		ev.full = full
		if full {
			ev.f, ev.err = p.Evaluate(xs, ev.grad, ev.cons, ev.jac)
		} else {
			ev.f, ev.err = p.Evaluate(xs, nil, ev.cons, nil)
		}
		ev.valid = ev.err == nil
		return ev
	}

	lambda := make([]float64, m)
	rho := s.Penalty
	shifted := func(e *evaluation, i int) float64 {
		return math.Max(0, lambda[i]-rho*e.cons[i])
	}
	merit := func(y []float64) float64 {
		e := evaluate(y, false)
		if e.err != nil {
			return barrierValue
		}
		L := e.f
		for i := range lambda {
			t := shifted(e, i)
			L += (t*t - lambda[i]*lambda[i]) / (2 * rho)
		}
		return L
	}
	meritGrad := func(grad, y []float64) {
		e := evaluate(y, true)
		if e.err != nil {
			for j := range grad {
				grad[j] = 0
			}
			return
		}
		copy(grad, e.grad)
		for i := range lambda {
			if t := shifted(e, i); t != 0 {
				floats.AddScaled(grad, -t, e.jac.RawRowView(i))
			}
		}
		floats.Mul(grad, scale)
	}

	var method optimize.Method = &optimize.BFGS{}
	if o.Solver == AugLagLBFGS {
		method = &optimize.LBFGS{}
	}
	inner := optimize.Problem{
		Func: merit,
		Grad: meritGrad,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   s.InnerIter,
		GradientThreshold: 1e-9,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-12,
			Iterations: 30,
		},
	}

	y := make([]float64, n)
	for j := range y {
		if scale[j] == 0 {
			return nil, &SolverError{Status: StatusBadInput, Msg: fmt.Sprintf("zero scale for variable %d", j)}
		}
		y[j] = x0[j] / scale[j]
	}
	if e := evaluate(y, true); e.err != nil {
		return nil, &SolverError{Status: StatusSingular, Msg: "starting point cannot be evaluated: " + e.err.Error()}
	}

	sol := &Solution{Worst: -1}
	violation := func(e *evaluation) (float64, int) {
		worst, at := 0.0, -1
		for i, c := range e.cons {
			if -c > worst {
				worst, at = -c, i
			}
		}
		return worst, at
	}
	prevViol, _ := violation(ev)
	prevF := ev.f

	if printout {
		io.Pf("%5s %14s %12s %10s %6s\n", "iter", "f", "violation", "penalty", "inner")
	}
	sol.Status = StatusMaxIter
	for k := 1; k <= s.MaxIter; k++ {
		if ctx.Err() != nil {
			sol.Status = StatusCancelled
			break
		}
		res, err := optimize.Minimize(inner, y, settings, method)
		if res != nil {
			copy(y, res.X)
			sol.Inner += res.MajorIterations
		}
		if err != nil && printout {
			io.Pforan("  inner: %v\n", err)
		}
		if ctx.Err() != nil {
			sol.Status = StatusCancelled
			sol.Iterations = k
			break
		}

		e := evaluate(y, true)
		sol.Iterations = k
		if e.err != nil {
			sol.Status = StatusSingular
			sol.Message = e.err.Error()
			break
		}
		viol, worst := violation(e)
		sol.MaxViolation, sol.Worst = viol, worst
		for i := range lambda {
			lambda[i] = shifted(e, i)
		}
		if printout {
			io.Pf("%5d %14.6e %12.4e %10.1e %6d\n", k, e.f, viol, rho, sol.Inner)
		}

		change := math.Abs(e.f - prevF)
		if viol <= s.Tol && k >= 2 && change <= 1e2*s.Tol*math.Max(1, math.Abs(e.f)) {
			sol.Status = StatusConverged
			break
		}
		if viol > s.Tol && viol > stallRatio*prevViol {
			rho = math.Min(rho*penaltyGrow, maxPenalty)
		}
		prevViol, prevF = viol, e.f
	}

	if e := evaluate(y, false); e.err == nil {
		sol.F = e.f
	}
	floats.MulTo(xs, y, scale)
	sol.X = append([]float64(nil), xs...)
	if sol.Status == StatusMaxIter && sol.MaxViolation > s.Tol {
		sol.Status = StatusInfeasible
	}

	switch sol.Status {
	case StatusConverged:
		sol.Message = fmt.Sprintf("converged in %d iterations, f = %.6g", sol.Iterations, sol.F)
		if printout {
			io.Pfgreen("%s\n", sol.Message)
		}
		return sol, nil
	case StatusCancelled:
		sol.Message = "cancelled: " + ctx.Err().Error()
	case StatusSingular:
		sol.Message = "equilibrium became singular: " + sol.Message
	case StatusInfeasible:
		sol.Message = fmt.Sprintf("no feasible point after %d iterations, violation %.3e", sol.Iterations, sol.MaxViolation)
	default:
		sol.Message = fmt.Sprintf("not converged after %d iterations", sol.Iterations)
	}
	if printout {
		io.Pfred("%s\n", sol.Message)
	}
	serr := &SolverError{Status: sol.Status, Msg: sol.Message}
	if sol.Worst >= 0 {
		serr.Constraint = p.ConstraintName(sol.Worst)
	}
	if sol.Status == StatusCancelled {
		return sol, fmt.Errorf("%w: %w", serr, context.Cause(ctx))
	}
	return sol, serr
}

// IsCancelled reports whether err stems from context cancellation
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
