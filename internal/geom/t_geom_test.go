package geom

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_point01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("point01. vector helpers")

	p := Point{1, 2, 2}
	q := Point{4, 6, 2}
	chk.Float64(tst, "norm", 1e-15, p.Norm(), 3)
	chk.Float64(tst, "norm xy", 1e-15, p.NormXY(), math.Sqrt(5))
	chk.Float64(tst, "distance", 1e-15, p.Distance(q), 5)
	chk.Float64(tst, "distance xy", 1e-15, p.DistanceXY(q), 5)
	chk.Float64(tst, "dot", 1e-15, p.Dot(q), 20)
	d := q.Sub(p).Add(p).Scale(0.5)
	chk.Array(tst, "sub add scale", 1e-15, []float64{d.X, d.Y, d.Z}, []float64{2, 3, 1})

	l := Line{Start: p, End: q}
	chk.Float64(tst, "line length", 1e-15, l.Length(), 5)
	m := l.Midpoint()
	chk.Array(tst, "midpoint", 1e-15, []float64{m.X, m.Y, m.Z}, []float64{2.5, 4, 2})
}

func Test_generators01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("generators01. linspace and merge")

	chk.Array(tst, "linspace", 1e-15, Linspace(0, 1, 5), []float64{0, 0.25, 0.5, 0.75, 1})
	chk.Array(tst, "linspace single", 1e-15, Linspace(3, 4, 1), []float64{3})
	chk.Array(tst, "merge", 1e-15, MergeSorted(1e-9, []float64{0, 0.5, 1}, []float64{0.25, 0.5 + 1e-12, 1}), []float64{0, 0.25, 0.5, 1})
}

func Test_mesh01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh01. grid mesh of a plane")

	plane := func(x, y float64) float64 { return 1 + 0.5*x - 0.25*y }
	m := GridMesh(Linspace(0, 2, 5), Linspace(0, 1, 3), plane)
	if err := m.Validate(); err != nil {
		tst.Errorf("Validate failed:\n%v", err)
		return
	}
	chk.IntAssert(len(m.Vertices), 15)
	chk.IntAssert(len(m.Faces), 16)
	chk.Float64(tst, "plan area", 1e-14, m.PlanArea(), 2)

	// exact for linear surfaces: area × height at the centroid
	chk.Float64(tst, "volume", 1e-14, m.Volume(), 2*plane(1, 0.5))

	for _, p := range [][2]float64{{0, 0}, {0.3, 0.7}, {1.99, 0.01}, {2, 1}, {1.234, 0.5}} {
		z, ok := m.HeightAt(p[0], p[1])
		if !ok {
			tst.Errorf("(%g, %g) should be inside", p[0], p[1])
			continue
		}
		chk.Float64(tst, io.Sf("z(%g,%g)", p[0], p[1]), 1e-13, z, plane(p[0], p[1]))
	}
	if _, ok := m.HeightAt(2.1, 0.5); ok {
		tst.Errorf("point outside the footprint was located")
	}

	up := m.Offset(0.5)
	z, _ := up.HeightAt(1, 0.5)
	chk.Float64(tst, "offset", 1e-13, z, plane(1, 0.5)+0.5)
	z, _ = m.HeightAt(1, 0.5)
	chk.Float64(tst, "original untouched", 1e-13, z, plane(1, 0.5))

	minX, minY, maxX, maxY := m.BoundingBox()
	chk.Array(tst, "bounding box", 1e-15, []float64{minX, minY, maxX, maxY}, []float64{0, 0, 2, 1})
}

func Test_mesh02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh02. polar mesh and validation")

	cone := func(x, y float64) float64 { return 2 - math.Hypot(x-1, y-1) }
	m := PolarMesh(1, 1, Linspace(0, 2, 9), 64, cone)
	if err := m.Validate(); err != nil {
		tst.Errorf("Validate failed:\n%v", err)
		return
	}
	chk.IntAssert(len(m.Vertices), 1+8*64)
	z, ok := m.HeightAt(1, 1)
	if !ok {
		tst.Errorf("centre should be inside")
		return
	}
	chk.Float64(tst, "apex", 1e-13, z, 2)

	// inscribed polygon of the base circle
	area := 0.5 * 64 * 4 * math.Sin(2*math.Pi/64)
	chk.Float64(tst, "plan area", 1e-12, m.PlanArea(), area)

	bad := NewMesh([]Point{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, [][3]int{{0, 1, 2}})
	if err := bad.Validate(); err == nil {
		tst.Errorf("collinear face should fail")
	}
	bad = NewMesh([]Point{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, [][3]int{{0, 1, 3}})
	if err := bad.Validate(); err == nil {
		tst.Errorf("face out of range should fail")
	}
}
