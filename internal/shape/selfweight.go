package shape

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotno/internal/geom"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// lumpSamples is the minimum number of footprint cells used for lumping
const lumpSamples = 40000

// LumpSelfweight distributes the selfweight of the shape to the given
// plan points by nearest-point tributary areas. The returned loads are
// positive (kN) and sum to ComputeSelfweight.
func (s *Shape) LumpSelfweight(points []geom.Point) ([]float64, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no points to lump selfweight to")
	}

	pts := make(kdtree.Points, len(points))
	index := make(map[[2]float64]int, len(points))
	for i, p := range points {
		key := [2]float64{p.X, p.Y}
		if j, dup := index[key]; dup {
			return nil, &GeometryError{X: p.X, Y: p.Y, Msg: fmt.Sprintf("points %d and %d share the same plan position", j, i)}
		}
		index[key] = i
		pts[i] = kdtree.Point{p.X, p.Y}
	}
	tree := kdtree.New(pts, false)

	minX, minY, maxX, maxY := s.Footprint()
	w, h := maxX-minX, maxY-minY
	n := math.Max(lumpSamples, 60*float64(len(points)))
	step := math.Sqrt(w * h / n)
	nx := int(math.Ceil(w / step))
	ny := int(math.Ceil(h / step))
	dx, dy := w/float64(nx), h/float64(ny)

	loads := make([]float64, len(points))
	var total float64
	for j := 0; j < ny; j++ {
		y := minY + (float64(j)+0.5)*dy
		for i := 0; i < nx; i++ {
			x := minX + (float64(i)+0.5)*dx
			zmin, zmax, err := s.BoundsAt(x, y)
			if err != nil || zmax <= zmin {
				continue
			}
			wt := s.Density * (zmax - zmin) * dx * dy
			near, _ := tree.Nearest(kdtree.Point{x, y})
			np := near.(kdtree.Point)
			loads[index[[2]float64{np[0], np[1]}]] += wt
			total += wt
		}
	}
	if total <= 0 {
		return nil, &GeometryError{Msg: "shape has no volume over its footprint"}
	}

	// rescale so the lumped loads match the exact selfweight
	scale := s.ComputeSelfweight() / total
	for i := range loads {
		loads[i] *= scale
	}
	return loads, nil
}
