package equilibrium

import (
	"gonum.org/v1/gonum/mat"
)

// Sensitivity holds the derivatives of heights and reactions with respect
// to nv design variables
type Sensitivity struct {
	Z          *mat.Dense // nodes × nv
	Rx, Ry, Rz *mat.Dense // supports × nv
}

// Sensitivity differentiates a solved state. dq (edges × nv), dzb
// (supports × nv) and dpz (nodes × nv) give the derivatives of the force
// densities, support heights and vertical loads; nil means zero.
func (n *Network) Sensitivity(st *State, nv int, dq, dzb, dpz *mat.Dense) (*Sensitivity, error) {
	d := n.Form
	nn, nb, nf := d.NumNodes(), len(n.Fixed), len(n.Free)
	rowOf := func(m *mat.Dense, i int) []float64 {
		if m == nil {
			return nil
		}
		return m.RawRowView(i)
	}
	axpy := func(dst []float64, a float64, x []float64) {
		if x == nil || a == 0 {
			return
		}
		for j := range dst {
			dst[j] += a * x[j]
		}
	}

	dz := mat.NewDense(nn, nv, nil)
	for k, i := range n.Fixed {
		if r := rowOf(dzb, k); r != nil {
			copy(dz.RawRowView(i), r)
		}
	}

	if nf > 0 {
		// G = C_fᵀ diag(u) dq + C_fᵀ Q C_b dzb + dP_f
		g := mat.NewDense(nf, nv, nil)
		for k, i := range n.Free {
			axpy(g.RawRowView(k), 1, rowOf(dpz, i))
		}
		for e, edge := range d.Edges {
			u := st.Z[edge.U] - st.Z[edge.V]
			uFree, vFree := !d.Nodes[edge.U].Fixed, !d.Nodes[edge.V].Fixed
			fu, fv := n.pos[edge.U], n.pos[edge.V]
			if uFree {
				axpy(g.RawRowView(fu), u, rowOf(dq, e))
				if !vFree {
					axpy(g.RawRowView(fu), -st.Q[e], rowOf(dzb, fv))
				}
			}
			if vFree {
				axpy(g.RawRowView(fv), -u, rowOf(dq, e))
				if !uFree {
					axpy(g.RawRowView(fv), -st.Q[e], rowOf(dzb, fu))
				}
			}
		}
		var x mat.Dense
		if err := st.lu.SolveTo(&x, false, g); err != nil {
			return nil, &EquilibriumError{Node: -1, Msg: err.Error()}
		}
		for k, i := range n.Free {
			axpy(dz.RawRowView(i), -1, x.RawRowView(k))
		}
	}

	s := &Sensitivity{
		Z:  dz,
		Rx: mat.NewDense(nb, nv, nil),
		Ry: mat.NewDense(nb, nv, nil),
		Rz: mat.NewDense(nb, nv, nil),
	}
	for k, b := range n.Fixed {
		pb := d.Nodes[b].Position
		rx, ry, rz := s.Rx.RawRowView(k), s.Ry.RawRowView(k), s.Rz.RawRowView(k)
		for _, e := range d.EdgesAt(b) {
			o := d.Other(e, b)
			po := d.Nodes[o].Position
			dqe := rowOf(dq, e)
			axpy(rx, -(pb.X - po.X), dqe)
			axpy(ry, -(pb.Y - po.Y), dqe)
			axpy(rz, -(st.Z[b] - st.Z[o]), dqe)
			axpy(rz, -st.Q[e], dz.RawRowView(b))
			axpy(rz, st.Q[e], dz.RawRowView(o))
		}
		axpy(rz, -1, rowOf(dpz, b))
	}
	return s, nil
}
