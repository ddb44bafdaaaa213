package equilibrium

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"gonum.org/v1/gonum/mat"
)

// condLimit is the condition number above which the vertical system is
// treated as singular
const condLimit = 1e13

// State is the outcome of one vertical equilibrium solve
type State struct {
	Q         []float64    // force densities per edge
	Z         []float64    // node heights
	Pz        []float64    // vertical nodal loads
	Reactions []geom.Point // support reactions in support order

	lu mat.LU
}

// Solve computes the free node heights for force densities q, vertical
// loads pz (one per node, negative downwards) and support heights zb (one
// per support), then the support reactions.
func (n *Network) Solve(q, pz, zb []float64) (*State, error) {
	d := n.Form
	if len(q) != d.NumEdges() || len(pz) != d.NumNodes() || len(zb) != len(n.Fixed) {
		return nil, &EquilibriumError{Node: -1, Msg: fmt.Sprintf(
			"size mismatch: %d densities for %d edges, %d loads for %d nodes, %d heights for %d supports",
			len(q), d.NumEdges(), len(pz), d.NumNodes(), len(zb), len(n.Fixed))}
	}

	st := &State{
		Q:  append([]float64(nil), q...),
		Z:  make([]float64, d.NumNodes()),
		Pz: append([]float64(nil), pz...),
	}
	for k, i := range n.Fixed {
		st.Z[i] = zb[k]
	}

	nf := len(n.Free)
	if nf > 0 {
		a := mat.NewDense(nf, nf, nil)
		rhs := mat.NewVecDense(nf, nil)
		for k, i := range n.Free {
			rhs.SetVec(k, -pz[i])
		}
		for e, edge := range d.Edges {
			qe := q[e]
			uFree, vFree := !d.Nodes[edge.U].Fixed, !d.Nodes[edge.V].Fixed
			fu, fv := n.pos[edge.U], n.pos[edge.V]
			switch {
			case uFree && vFree:
				a.Set(fu, fu, a.At(fu, fu)+qe)
				a.Set(fv, fv, a.At(fv, fv)+qe)
				a.Set(fu, fv, a.At(fu, fv)-qe)
				a.Set(fv, fu, a.At(fv, fu)-qe)
			case uFree:
				a.Set(fu, fu, a.At(fu, fu)+qe)
				rhs.SetVec(fu, rhs.AtVec(fu)+qe*st.Z[edge.V])
			case vFree:
				a.Set(fv, fv, a.At(fv, fv)+qe)
				rhs.SetVec(fv, rhs.AtVec(fv)+qe*st.Z[edge.U])
			}
		}

		st.lu.Factorize(a)
		if c := st.lu.Cond(); math.IsInf(c, 0) || math.IsNaN(c) || c > condLimit {
			return nil, &EquilibriumError{Node: n.unanchored(q), Msg: fmt.Sprintf("singular force density system (condition %.3g)", c)}
		}
		var zf mat.VecDense
		if err := st.lu.SolveVecTo(&zf, false, rhs); err != nil {
			return nil, &EquilibriumError{Node: n.unanchored(q), Msg: err.Error()}
		}
		for k, i := range n.Free {
			st.Z[i] = zf.AtVec(k)
		}
	}

	st.Reactions = n.reactions(st)
	return st, nil
}

// reactions returns the force exerted by each support on the network
func (n *Network) reactions(st *State) []geom.Point {
	d := n.Form
	out := make([]geom.Point, len(n.Fixed))
	for k, b := range n.Fixed {
		pb := d.Nodes[b].Position
		var r geom.Point
		for _, e := range d.EdgesAt(b) {
			o := d.Other(e, b)
			po := d.Nodes[o].Position
			r.X -= st.Q[e] * (pb.X - po.X)
			r.Y -= st.Q[e] * (pb.Y - po.Y)
			r.Z -= st.Q[e] * (st.Z[b] - st.Z[o])
		}
		r.Z -= st.Pz[b]
		out[k] = r
	}
	return out
}

// unanchored returns the first free node not tied to a support through
// edges of non-zero force density, or -1
func (n *Network) unanchored(q []float64) int {
	d := n.Form
	seen := make([]bool, d.NumNodes())
	stack := append([]int(nil), n.Fixed...)
	for _, i := range stack {
		seen[i] = true
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range d.EdgesAt(i) {
			o := d.Other(e, i)
			if seen[o] || math.Abs(q[e]) < 1e-12 {
				continue
			}
			seen[o] = true
			stack = append(stack, o)
		}
	}
	for _, i := range n.Free {
		if !seen[i] {
			return i
		}
	}
	return -1
}

// Forces returns the axial force q·L of every edge using the solved heights
func (n *Network) Forces(st *State) []float64 {
	d := n.Form
	out := make([]float64, d.NumEdges())
	for e, edge := range d.Edges {
		pu, pv := d.Nodes[edge.U].Position, d.Nodes[edge.V].Position
		pu.Z, pv.Z = st.Z[edge.U], st.Z[edge.V]
		out[e] = st.Q[e] * pu.Distance(pv)
	}
	return out
}

// SolveEquilibrium solves the vertical equilibrium of a form diagram for
// the given force densities using the nodal loads of the diagram and the
// current heights of its supports.
func SolveEquilibrium(d *form.Diagram, q []float64) ([]float64, []geom.Point, error) {
	n, err := NewNetwork(d)
	if err != nil {
		return nil, nil, err
	}
	pz := make([]float64, d.NumNodes())
	for i, node := range d.Nodes {
		pz[i] = node.Load.Z
	}
	zb := make([]float64, len(n.Fixed))
	for k, i := range n.Fixed {
		zb[k] = d.Nodes[i].Position.Z
	}
	st, err := n.Solve(q, pz, zb)
	if err != nil {
		return nil, nil, err
	}
	return st.Z, st.Reactions, nil
}
