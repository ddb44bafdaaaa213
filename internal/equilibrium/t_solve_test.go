package equilibrium

import (
	"errors"
	"math"
	"testing"

	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"
)

// threeNodes returns a two bar chain supported at both ends
//
//	▽0 ----- 1 ----- 2▽
//	         ↓ 10 kN
func threeNodes() *form.Diagram {
	d := form.New("chain")
	d.AddNode(geom.Point{X: 0})
	d.AddNode(geom.Point{X: 1})
	d.AddNode(geom.Point{X: 2})
	d.AddEdge(0, 1)
	d.AddEdge(1, 2)
	d.SetFixed(0, true)
	d.SetFixed(2, true)
	d.SetLoad(1, geom.Point{Z: -10})
	return d
}

func Test_solve01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve01. two bar chain")

	z, reac, err := SolveEquilibrium(threeNodes(), []float64{5, 5})
	if err != nil {
		tst.Errorf("SolveEquilibrium failed:\n%v", err)
		return
	}
	chk.Array(tst, "z", 1e-12, z, []float64{0, 1, 0})
	chk.IntAssert(len(reac), 2)
	chk.Array(tst, "R left", 1e-12, []float64{reac[0].X, reac[0].Y, reac[0].Z}, []float64{5, 0, 5})
	chk.Array(tst, "R right", 1e-12, []float64{reac[1].X, reac[1].Y, reac[1].Z}, []float64{-5, 0, 5})
}

func Test_solve02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve02. singular system")

	_, _, err := SolveEquilibrium(threeNodes(), []float64{0, 0})
	var eqErr *EquilibriumError
	if !errors.As(err, &eqErr) {
		tst.Errorf("expected an equilibrium error, got %v", err)
		return
	}
	chk.IntAssert(eqErr.Node, 1)
	io.Pforan("%v\n", err)
}

func Test_solve03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve03. horizontal loads are rejected")

	d := threeNodes()
	d.SetLoad(1, geom.Point{X: 1, Z: -10})
	_, err := NewNetwork(d)
	var eqErr *EquilibriumError
	if !errors.As(err, &eqErr) {
		tst.Errorf("expected an equilibrium error, got %v", err)
		return
	}
	chk.IntAssert(eqErr.Node, 1)
}

func Test_independents01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("independents01. chain and grid")

	n, err := NewNetwork(threeNodes())
	if err != nil {
		tst.Errorf("NewNetwork failed:\n%v", err)
		return
	}
	chk.Ints(tst, "independents", n.Independents(), []int{1})
	chk.Array(tst, "q", 1e-15, n.ForceDensities([]float64{3}), []float64{3, 3})

	d, err := form.CreateOrthogonal(0, 0, 10, 4)
	if err != nil {
		tst.Errorf("CreateOrthogonal failed:\n%v", err)
		return
	}
	n, err = NewNetwork(d)
	if err != nil {
		tst.Errorf("NewNetwork failed:\n%v", err)
		return
	}
	k := len(n.Independents())
	io.Pforan("edges = %d  independents = %d\n", n.NumEdges(), k)
	if k < 1 || k >= n.NumEdges() {
		tst.Errorf("unexpected number of independents: %d of %d", k, n.NumEdges())
		return
	}
	qind := make([]float64, k)
	for j := range qind {
		qind[j] = 1 + 0.1*float64(j%5)
	}
	q := n.ForceDensities(qind)
	chk.Float64(tst, "horizontal residual", 1e-10, n.HorizontalResidual(q), 0)
}

func radialNetwork(tst *testing.T) (*Network, []float64, []float64, []float64) {
	d, err := form.CreateCircularRadial(geom.Point{X: 5, Y: 5}, 5, 3, 6)
	if err != nil {
		tst.Fatalf("CreateCircularRadial failed:\n%v", err)
	}
	n, err := NewNetwork(d)
	if err != nil {
		tst.Fatalf("NewNetwork failed:\n%v", err)
	}
	q := make([]float64, n.NumEdges())
	for e := range q {
		q[e] = 1 + 0.05*float64(e%7)
	}
	pz := make([]float64, d.NumNodes())
	for i := range pz {
		pz[i] = -1 - 0.1*float64(i%3)
	}
	zb := make([]float64, len(n.Fixed))
	for k := range zb {
		zb[k] = 0.2 * float64(k%2)
	}
	return n, q, pz, zb
}

func Test_sensitivity01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sensitivity01. derivatives against finite differences")

	n, q, pz, zb := radialNetwork(tst)
	st, err := n.Solve(q, pz, zb)
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}

	m, nb, nn := n.NumEdges(), len(n.Fixed), n.Form.NumNodes()
	nv := m + nb + nn
	dq := mat.NewDense(m, nv, nil)
	dzb := mat.NewDense(nb, nv, nil)
	dpz := mat.NewDense(nn, nv, nil)
	for e := 0; e < m; e++ {
		dq.Set(e, e, 1)
	}
	for k := 0; k < nb; k++ {
		dzb.Set(k, m+k, 1)
	}
	for i := 0; i < nn; i++ {
		dpz.Set(i, m+nb+i, 1)
	}
	sens, err := n.Sensitivity(st, nv, dq, dzb, dpz)
	if err != nil {
		tst.Errorf("Sensitivity failed:\n%v", err)
		return
	}

	h := 1e-5
	perturbed := func(j int, h float64) *State {
		q2 := append([]float64(nil), q...)
		zb2 := append([]float64(nil), zb...)
		pz2 := append([]float64(nil), pz...)
		switch {
		case j < m:
			q2[j] += h
		case j < m+nb:
			zb2[j-m] += h
		default:
			pz2[j-m-nb] += h
		}
		s, err := n.Solve(q2, pz2, zb2)
		if err != nil {
			tst.Fatalf("Solve failed:\n%v", err)
		}
		return s
	}
	for j := 0; j < nv; j++ {
		s, r := perturbed(j, h/2), perturbed(j, -h/2)
		for i := 0; i < nn; i++ {
			num := (s.Z[i] - r.Z[i]) / h
			chk.AnaNum(tst, io.Sf("dz%d/dv%d", i, j), 1e-6, sens.Z.At(i, j), num, chk.Verbose)
		}
		for k := 0; k < nb; k++ {
			numX := (s.Reactions[k].X - r.Reactions[k].X) / h
			numZ := (s.Reactions[k].Z - r.Reactions[k].Z) / h
			chk.AnaNum(tst, io.Sf("dRx%d/dv%d", k, j), 1e-6, sens.Rx.At(k, j), numX, chk.Verbose)
			chk.AnaNum(tst, io.Sf("dRz%d/dv%d", k, j), 1e-6, sens.Rz.At(k, j), numZ, chk.Verbose)
		}
	}
}

func Test_reactions01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("reactions01. global vertical balance")

	n, q, pz, zb := radialNetwork(tst)
	st, err := n.Solve(q, pz, zb)
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	var load, rz float64
	for _, p := range pz {
		load -= p
	}
	for _, r := range st.Reactions {
		rz += r.Z
	}
	chk.Float64(tst, "ΣRz", 1e-9, rz, load)

	forces := n.Forces(st)
	for e, f := range forces {
		if math.Signbit(f) != math.Signbit(q[e]) {
			tst.Errorf("force %d has the wrong sign: %g", e, f)
		}
	}
}

func Test_repeat01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("repeat01. re-solving gives identical states")

	n, q, pz, zb := radialNetwork(tst)
	a, err := n.Solve(q, pz, zb)
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	b, err := n.Solve(q, pz, zb)
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.Array(tst, "z", 0, b.Z, a.Z)
	chk.IntAssert(len(b.Reactions), len(a.Reactions))
	for k := range a.Reactions {
		ra, rb := a.Reactions[k], b.Reactions[k]
		chk.Array(tst, io.Sf("R%d", k), 0, []float64{rb.X, rb.Y, rb.Z}, []float64{ra.X, ra.Y, ra.Z})
	}

	d := n.Form
	for _, i := range d.FreeNodes() {
		d.SetLoad(i, geom.Point{Z: pz[i]})
	}
	z1, r1, err := SolveEquilibrium(d, q)
	if err != nil {
		tst.Errorf("SolveEquilibrium failed:\n%v", err)
		return
	}
	z2, r2, err := SolveEquilibrium(d, q)
	if err != nil {
		tst.Errorf("SolveEquilibrium failed:\n%v", err)
		return
	}
	chk.Array(tst, "z one-shot", 0, z2, z1)
	for k := range r1 {
		chk.Array(tst, io.Sf("R%d one-shot", k), 0, []float64{r2[k].X, r2[k].Y, r2[k].Z}, []float64{r1[k].X, r1[k].Y, r1[k].Z})
	}
	if z1[0] <= 0 {
		tst.Errorf("compressed network should rise above the supports: z = %g", z1[0])
	}
}
