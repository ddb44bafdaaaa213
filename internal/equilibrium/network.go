package equilibrium

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotno/internal/form"
	"gonum.org/v1/gonum/mat"
)

// EquilibriumError represents a singular force-density system
type EquilibriumError struct {
	Node int // offending node, -1 when not node specific
	Msg  string
}

func (e *EquilibriumError) Error() string {
	if e.Node < 0 {
		return "equilibrium error: " + e.Msg
	}
	return fmt.Sprintf("equilibrium error at node %d: %s", e.Node, e.Msg)
}

// Network holds the index bookkeeping of a form diagram for repeated
// equilibrium solves. The diagram must not change while in use.
type Network struct {
	Form  *form.Diagram
	Free  []int // free node indices
	Fixed []int // support node indices

	pos []int // node -> position in Free or Fixed

	independents []int
	basis        *mat.Dense // m × k, q = basis · q_ind
}

// NewNetwork validates the diagram and prepares it for equilibrium solves
func NewNetwork(d *form.Diagram) (*Network, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	n := &Network{
		Form:  d,
		Free:  d.FreeNodes(),
		Fixed: d.Supports(),
		pos:   make([]int, d.NumNodes()),
	}
	for k, i := range n.Free {
		n.pos[i] = k
		load := d.Nodes[i].Load
		if load.X != 0 || load.Y != 0 {
			return nil, &EquilibriumError{Node: i, Msg: "horizontal nodal loads are not supported"}
		}
	}
	for k, i := range n.Fixed {
		n.pos[i] = k
	}
	return n, nil
}

// NumEdges returns the number of force densities
func (n *Network) NumEdges() int { return n.Form.NumEdges() }

// SupportIndex returns the position of node i among the supports, or -1
func (n *Network) SupportIndex(i int) int {
	if !n.Form.Nodes[i].Fixed {
		return -1
	}
	return n.pos[i]
}

// horizontalMatrix assembles the plan equilibrium matrix of the free
// nodes: two rows (x, y) per free node, one column per edge
func (n *Network) horizontalMatrix() [][]float64 {
	d := n.Form
	rows := make([][]float64, 2*len(n.Free))
	for r := range rows {
		rows[r] = make([]float64, d.NumEdges())
	}
	for e, edge := range d.Edges {
		pu, pv := d.Nodes[edge.U].Position, d.Nodes[edge.V].Position
		if !d.Nodes[edge.U].Fixed {
			k := n.pos[edge.U]
			rows[2*k][e] += pu.X - pv.X
			rows[2*k+1][e] += pu.Y - pv.Y
		}
		if !d.Nodes[edge.V].Fixed {
			k := n.pos[edge.V]
			rows[2*k][e] += pv.X - pu.X
			rows[2*k+1][e] += pv.Y - pu.Y
		}
	}
	return rows
}

// Independents returns the edges whose force densities can be chosen
// freely; all others follow from horizontal equilibrium
func (n *Network) Independents() []int {
	n.findIndependents()
	return n.independents
}

// Basis returns the m × k matrix mapping independent force densities to
// all force densities
func (n *Network) Basis() *mat.Dense {
	n.findIndependents()
	return n.basis
}

func (n *Network) findIndependents() {
	if n.basis != nil {
		return
	}
	m := n.NumEdges()
	a := n.horizontalMatrix()
	var scale float64
	for _, row := range a {
		for _, v := range row {
			scale = math.Max(scale, math.Abs(v))
		}
	}
	pivots := rref(a, 1e-9*math.Max(scale, 1))

	isPivot := make([]bool, m)
	for _, c := range pivots {
		isPivot[c] = true
	}
	n.independents = n.independents[:0]
	for c := 0; c < m; c++ {
		if !isPivot[c] {
			n.independents = append(n.independents, c)
		}
	}
	k := len(n.independents)
	n.basis = mat.NewDense(m, max(k, 1), nil)
	for j, c := range n.independents {
		n.basis.Set(c, j, 1)
		for r, p := range pivots {
			n.basis.Set(p, j, -a[r][c])
		}
	}
}

// rref reduces a to reduced row echelon form in place with partial
// pivoting and returns the pivot columns
func rref(a [][]float64, tol float64) []int {
	if len(a) == 0 {
		return nil
	}
	rows, cols := len(a), len(a[0])
	var pivots []int
	r := 0
	for c := 0; c < cols && r < rows; c++ {
		p, best := r, math.Abs(a[r][c])
		for i := r + 1; i < rows; i++ {
			if v := math.Abs(a[i][c]); v > best {
				p, best = i, v
			}
		}
		if best <= tol {
			continue
		}
		a[r], a[p] = a[p], a[r]
		inv := 1 / a[r][c]
		for j := c; j < cols; j++ {
			a[r][j] *= inv
		}
		for i := 0; i < rows; i++ {
			if i == r || a[i][c] == 0 {
				continue
			}
			f := a[i][c]
			for j := c; j < cols; j++ {
				a[i][j] -= f * a[r][j]
			}
		}
		pivots = append(pivots, c)
		r++
	}
	return pivots
}

// ForceDensities expands independent force densities to all edges
func (n *Network) ForceDensities(qind []float64) []float64 {
	b := n.Basis()
	q := make([]float64, n.NumEdges())
	for e := range q {
		for j, v := range qind {
			q[e] += b.At(e, j) * v
		}
	}
	return q
}

// HorizontalResidual returns the largest out-of-balance plan force at a
// free node for the force densities q
func (n *Network) HorizontalResidual(q []float64) float64 {
	var worst float64
	for _, row := range n.horizontalMatrix() {
		var s float64
		for e, v := range row {
			s += v * q[e]
		}
		worst = math.Max(worst, math.Abs(s))
	}
	return worst
}
