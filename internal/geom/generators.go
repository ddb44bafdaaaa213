package geom

import (
	"math"
	"sort"
)

// HeightFunc returns the height of a surface at (x, y)
type HeightFunc func(x, y float64) float64

// GridMesh triangulates the rectangular grid xs × ys and lifts it with fz.
// xs and ys must be strictly increasing.
func GridMesh(xs, ys []float64, fz HeightFunc) *Mesh {
	nx, ny := len(xs), len(ys)
	vertices := make([]Point, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			vertices = append(vertices, Point{xs[i], ys[j], fz(xs[i], ys[j])})
		}
	}
	faces := make([][3]int, 0, 2*(nx-1)*(ny-1))
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			a := j*nx + i
			b := a + 1
			c := a + nx + 1
			d := a + nx
			// alternate the diagonal to keep the grid symmetric
			if (i+j)%2 == 0 {
				faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
			} else {
				faces = append(faces, [3]int{a, b, d}, [3]int{b, c, d})
			}
		}
	}
	return NewMesh(vertices, faces)
}

// PolarMesh triangulates concentric rings around (cx, cy) and lifts them
// with fz. radii must start at 0 and be strictly increasing.
func PolarMesh(cx, cy float64, radii []float64, nTheta int, fz HeightFunc) *Mesh {
	vertices := []Point{{cx, cy, fz(cx, cy)}}
	for _, r := range radii[1:] {
		for j := 0; j < nTheta; j++ {
			t := 2 * math.Pi * float64(j) / float64(nTheta)
			x, y := cx+r*math.Cos(t), cy+r*math.Sin(t)
			vertices = append(vertices, Point{x, y, fz(x, y)})
		}
	}
	ring := func(k, j int) int {
		return 1 + (k-1)*nTheta + j%nTheta
	}
	var faces [][3]int
	for j := 0; j < nTheta; j++ {
		faces = append(faces, [3]int{0, ring(1, j), ring(1, j+1)})
	}
	for k := 1; k < len(radii)-1; k++ {
		for j := 0; j < nTheta; j++ {
			a, b := ring(k, j), ring(k, j+1)
			c, d := ring(k+1, j+1), ring(k+1, j)
			faces = append(faces, [3]int{a, d, c}, [3]int{a, c, b})
		}
	}
	return NewMesh(vertices, faces)
}

// Linspace returns n evenly spaced values from a to b inclusive
func Linspace(a, b float64, n int) []float64 {
	if n < 2 {
		return []float64{a}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}

// MergeSorted merges value lists into one sorted list without near duplicates
func MergeSorted(tol float64, lists ...[]float64) []float64 {
	var all []float64
	for _, l := range lists {
		all = append(all, l...)
	}
	sort.Float64s(all)
	var out []float64
	for _, v := range all {
		if len(out) > 0 && v-out[len(out)-1] <= tol {
			continue
		}
		out = append(out, v)
	}
	return out
}
