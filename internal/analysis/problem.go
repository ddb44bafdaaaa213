package analysis

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotno/internal/equilibrium"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// thrustProblem is the nonlinear program of a thrust network analysis.
// Variables are [q_ind, z_b (envelope active), λ (max_load)].
type thrustProblem struct {
	net   *equilibrium.Network
	basis *mat.Dense

	k     int  // independent force densities
	nzb   int  // support height variables
	load  bool // load factor variable
	n, m  int
	names []string

	obj       optimiser.Objective
	set       optimiser.Settings
	funicular bool
	envelope  bool
	reactions bool

	sw      []float64 // vertical selfweight and nodal loads per node
	dir     []float64 // load direction per node, max_load only
	zbFixed []float64 // support heights when they are not variables
	zmin    []float64
	zmax    []float64
	lengths []float64 // plan edge lengths

	thk    float64 // envelope constraint scale
	weight float64 // total vertical load, reaction scale
	qs     float64 // force density scale
	ls     float64 // load factor scale
	fscale float64
	eps    float64

	// derivatives of q, z_b and p_z with respect to the variables
	dq, dzb, dpz *mat.Dense
}

func newThrustProblem(a *Analysis) (*thrustProblem, error) {
	o := a.Optimiser
	p := &thrustProblem{
		net:       a.net,
		basis:     a.net.Basis(),
		k:         len(a.net.Independents()),
		obj:       o.Objective,
		set:       o.Settings,
		funicular: o.Has(optimiser.Funicular),
		envelope:  o.Has(optimiser.Envelope),
		reactions: o.Has(optimiser.ReacBounds),
		sw:        a.loads,
		zmin:      a.zmin,
		zmax:      a.zmax,
		thk:       a.Shape.Thickness,
	}
	if p.k == 0 {
		return nil, &optimiser.SolverError{Status: optimiser.StatusBadInput, Msg: "form diagram has no independent force densities"}
	}
	d := a.Form
	nn, nb, ne := d.NumNodes(), len(a.net.Fixed), d.NumEdges()

	if p.envelope {
		p.nzb = nb
	} else {
		p.zbFixed = make([]float64, nb)
		for k, i := range a.net.Fixed {
			p.zbFixed[k] = d.Nodes[i].Position.Z
		}
	}
	p.load = p.obj == optimiser.MaxLoad
	if p.load {
		if len(p.set.LoadDirection) != nn {
			return nil, &optimiser.SolverError{Status: optimiser.StatusBadInput, Msg: fmt.Sprintf("load direction has %d entries for %d nodes", len(p.set.LoadDirection), nn)}
		}
		p.dir = p.set.LoadDirection
	}
	if p.obj == optimiser.Displacement && len(p.set.SupportDisplacement) != nb {
		return nil, &optimiser.SolverError{Status: optimiser.StatusBadInput, Msg: fmt.Sprintf("%d support displacements for %d supports", len(p.set.SupportDisplacement), nb)}
	}
	p.n = p.k + p.nzb
	if p.load {
		p.n++
	}

	for _, v := range p.sw {
		p.weight -= v
	}
	if p.weight <= 0 {
		p.weight = 1
	}
	if p.thk <= 0 {
		p.thk = 1
	}
	p.eps = 1e-8 * p.weight
	p.ls = 1
	if p.load {
		p.ls = p.weight / math.Max(floats.Norm(p.dir, 1), 1e-12)
	}
	p.fscale = p.weight
	if p.obj == optimiser.Displacement {
		var dmax float64
		for _, v := range p.set.SupportDisplacement {
			dmax = math.Max(dmax, v.Norm())
		}
		if dmax > 0 {
			p.fscale *= dmax
		}
	}
	if p.obj == optimiser.MaxLoad {
		p.fscale = 1
	}

	p.lengths = make([]float64, ne)
	for e := range p.lengths {
		p.lengths[e] = d.EdgeLengthXY(e)
	}

	p.dq = mat.NewDense(ne, p.n, nil)
	for e := 0; e < ne; e++ {
		for j := 0; j < p.k; j++ {
			p.dq.Set(e, j, p.basis.At(e, j))
		}
	}
	if p.nzb > 0 {
		p.dzb = mat.NewDense(nb, p.n, nil)
		for k := 0; k < nb; k++ {
			p.dzb.Set(k, p.k+k, 1)
		}
	}
	if p.load {
		p.dpz = mat.NewDense(nn, p.n, nil)
		for i, v := range p.dir {
			p.dpz.Set(i, p.n-1, v)
		}
	}

	if p.funicular {
		for e := 0; e < ne; e++ {
			p.names = append(p.names, fmt.Sprintf("funicular: edge %d q >= qmin", e))
			if p.set.QMax > 0 {
				p.names = append(p.names, fmt.Sprintf("funicular: edge %d q <= qmax", e))
			}
		}
	}
	if p.envelope {
		for i := 0; i < nn; i++ {
			p.names = append(p.names,
				fmt.Sprintf("envelope: node %d above intrados", i),
				fmt.Sprintf("envelope: node %d below extrados", i))
		}
	}
	if p.reactions {
		for _, i := range a.net.Fixed {
			p.names = append(p.names,
				fmt.Sprintf("reac_bounds: support %d no uplift", i),
				fmt.Sprintf("reac_bounds: support %d friction cone", i))
		}
	}
	if p.load {
		p.names = append(p.names, "max_load: lambda >= 0", "max_load: lambda <= max_lambda")
	}
	p.m = len(p.names)
	return p, nil
}

func (p *thrustProblem) Dims() (int, int) { return p.n, p.m }

func (p *thrustProblem) ConstraintName(i int) string { return p.names[i] }

// solve maps variables to an equilibrium state
func (p *thrustProblem) solve(x []float64) (*equilibrium.State, float64, error) {
	q := p.net.ForceDensities(x[:p.k])
	zb := p.zbFixed
	if p.nzb > 0 {
		zb = x[p.k : p.k+p.nzb]
	}
	pz := p.sw
	var lambda float64
	if p.load {
		lambda = x[p.n-1]
		pz = make([]float64, len(p.sw))
		for i := range pz {
			pz[i] = p.sw[i] + lambda*p.dir[i]
		}
	}
	st, err := p.net.Solve(q, pz, zb)
	return st, lambda, err
}

// thrust returns Σ |R_h| over the supports
func (p *thrustProblem) thrust(st *equilibrium.State) float64 {
	var t float64
	for _, r := range st.Reactions {
		t += math.Hypot(r.X, r.Y)
	}
	return t
}

// value returns the unscaled objective as reported to users
func (p *thrustProblem) value(st *equilibrium.State, lambda float64) float64 {
	switch p.obj {
	case optimiser.Displacement:
		return p.energy(st)
	case optimiser.MaxLoad:
		return lambda
	default:
		return p.thrust(st)
	}
}

// energy returns the complementary energy of the network
func (p *thrustProblem) energy(st *equilibrium.State) float64 {
	c := p.set.Compliance
	var f float64
	for k, r := range st.Reactions {
		f -= r.Dot(p.set.SupportDisplacement[k])
	}
	for e, q := range st.Q {
		l := p.lengths[e]
		f += 0.5 * c * q * q * l * l * l
	}
	return f
}

func (p *thrustProblem) Evaluate(x, grad, cons []float64, jac *mat.Dense) (float64, error) {
	st, lambda, err := p.solve(x)
	if err != nil {
		return 0, err
	}
	var sens *equilibrium.Sensitivity
	if grad != nil {
		sens, err = p.net.Sensitivity(st, p.n, p.dq, p.dzb, p.dpz)
		if err != nil {
			return 0, err
		}
		for j := range grad {
			grad[j] = 0
		}
		if jac != nil {
			jac.Zero()
		}
	}
	f := p.objective(st, lambda, sens, grad)
	p.constraints(st, lambda, sens, cons, jac)
	return f, nil
}

func (p *thrustProblem) objective(st *equilibrium.State, lambda float64, sens *equilibrium.Sensitivity, grad []float64) float64 {
	var f float64
	switch p.obj {
	case optimiser.MinThrust, optimiser.MaxThrust:
		sign := 1.0
		if p.obj == optimiser.MaxThrust {
			sign = -1
		}
		for k, r := range st.Reactions {
			h := math.Sqrt(r.X*r.X + r.Y*r.Y + p.eps*p.eps)
			f += sign * h
			if sens != nil {
				floats.AddScaled(grad, sign*r.X/h, sens.Rx.RawRowView(k))
				floats.AddScaled(grad, sign*r.Y/h, sens.Ry.RawRowView(k))
			}
		}
	case optimiser.Displacement:
		f = p.energy(st)
		if sens != nil {
			for k, d := range p.set.SupportDisplacement {
				floats.AddScaled(grad, -d.X, sens.Rx.RawRowView(k))
				floats.AddScaled(grad, -d.Y, sens.Ry.RawRowView(k))
				floats.AddScaled(grad, -d.Z, sens.Rz.RawRowView(k))
			}
			c := p.set.Compliance
			for e, q := range st.Q {
				l := p.lengths[e]
				floats.AddScaled(grad, c*q*l*l*l, p.dq.RawRowView(e))
			}
		}
	case optimiser.MaxLoad:
		f = -lambda / p.ls
		if sens != nil {
			grad[p.n-1] = -1 / p.ls
		}
	}
	if sens != nil {
		floats.Scale(1/p.fscale, grad)
	}
	return f / p.fscale
}

func (p *thrustProblem) constraints(st *equilibrium.State, lambda float64, sens *equilibrium.Sensitivity, cons []float64, jac *mat.Dense) {
	i := 0
	row := func(scale float64, src []float64) {
		if sens != nil {
			floats.AddScaled(jac.RawRowView(i), scale, src)
		}
		i++
	}

	if p.funicular {
		for e, q := range st.Q {
			cons[i] = (q - p.set.QMin) / p.qs
			row(1/p.qs, p.dq.RawRowView(e))
			if p.set.QMax > 0 {
				cons[i] = (p.set.QMax - q) / p.qs
				row(-1/p.qs, p.dq.RawRowView(e))
			}
		}
	}
	if p.envelope {
		for v, z := range st.Z {
			var dz []float64
			if sens != nil {
				dz = sens.Z.RawRowView(v)
			}
			cons[i] = (z - p.zmin[v]) / p.thk
			row(1/p.thk, dz)
			cons[i] = (p.zmax[v] - z) / p.thk
			row(-1/p.thk, dz)
		}
	}
	if p.reactions {
		mu := p.set.Friction
		for k, r := range st.Reactions {
			h := math.Sqrt(r.X*r.X + r.Y*r.Y + p.eps*p.eps)
			cons[i] = r.Z / p.weight
			if sens != nil {
				floats.AddScaled(jac.RawRowView(i), 1/p.weight, sens.Rz.RawRowView(k))
			}
			i++
			cons[i] = (mu*r.Z - h) / p.weight
			if sens != nil {
				ji := jac.RawRowView(i)
				floats.AddScaled(ji, mu/p.weight, sens.Rz.RawRowView(k))
				floats.AddScaled(ji, -r.X/(h*p.weight), sens.Rx.RawRowView(k))
				floats.AddScaled(ji, -r.Y/(h*p.weight), sens.Ry.RawRowView(k))
			}
			i++
		}
	}
	if p.load {
		cons[i] = lambda / p.ls
		if sens != nil {
			jac.Set(i, p.n-1, 1/p.ls)
		}
		i++
		cons[i] = (p.set.MaxLambda - lambda) / p.ls
		if sens != nil {
			jac.Set(i, p.n-1, -1/p.ls)
		}
		i++
	}
}

// start returns the initial point and variable scales: force densities
// near uniform in horizontal equilibrium, scaled so the network rises as
// high as the middle of the envelope, support heights halfway through
// their bounds and a zero load factor.
func (p *thrustProblem) start(mid []float64) ([]float64, []float64, error) {
	ne := p.net.NumEdges()
	ones := mat.NewVecDense(ne, nil)
	for e := 0; e < ne; e++ {
		ones.SetVec(e, 1)
	}
	var qv mat.VecDense
	if err := qv.SolveVec(p.basis.Slice(0, ne, 0, p.k), ones); err != nil {
		return nil, nil, &optimiser.SolverError{Status: optimiser.StatusBadInput, Msg: "cannot build starting force densities: " + err.Error()}
	}
	qind := make([]float64, p.k)
	for j := range qind {
		qind[j] = qv.AtVec(j)
	}

	x0 := make([]float64, p.n)
	copy(x0, qind)
	nb := len(p.net.Fixed)
	zb := p.zbFixed
	if p.nzb > 0 {
		zb = make([]float64, nb)
		for k, i := range p.net.Fixed {
			zb[k] = (p.zmin[i] + p.zmax[i]) / 2
		}
		copy(x0[p.k:], zb)
	}

	// rise of the load-only network against the target rise
	st, err := p.net.Solve(p.net.ForceDensities(qind), p.sw, make([]float64, nb))
	if err != nil {
		return nil, nil, &optimiser.SolverError{Status: optimiser.StatusSingular, Msg: "starting point is singular: " + err.Error()}
	}
	rise := floats.Max(st.Z)
	var target float64
	for _, i := range p.net.Free {
		target = math.Max(target, mid[i]-floats.Sum(zb)/float64(nb))
	}
	if s := rise / target; rise > 0 && target > 0 && !math.IsInf(s, 0) {
		floats.Scale(s, x0[:p.k])
	}

	var qs float64
	for _, q := range p.net.ForceDensities(x0[:p.k]) {
		qs += math.Abs(q)
	}
	p.qs = math.Max(qs/float64(ne), 1e-9)

	scale := make([]float64, p.n)
	for j := 0; j < p.k; j++ {
		scale[j] = p.qs
	}
	for j := p.k; j < p.k+p.nzb; j++ {
		scale[j] = p.thk
	}
	if p.load {
		scale[p.n-1] = p.ls
	}
	return x0, scale, nil
}

// reactionsAt pairs reaction vectors with their support nodes
func (p *thrustProblem) reactionsAt(st *equilibrium.State) []Reaction {
	out := make([]Reaction, len(st.Reactions))
	for k, r := range st.Reactions {
		out[k] = Reaction{Node: p.net.Fixed[k], Force: r}
	}
	return out
}
