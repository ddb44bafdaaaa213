package geom

import (
	"fmt"
	"math"
	"sync"
)

// Mesh is a triangulated height field: every face projects onto the XY
// plane without overlapping any other face.
type Mesh struct {
	Vertices []Point  `json:"vertices"`
	Faces    [][3]int `json:"faces"`

	once sync.Once
	loc  *locator
}

// NewMesh creates a mesh from vertices and triangular faces
func NewMesh(vertices []Point, faces [][3]int) *Mesh {
	return &Mesh{Vertices: vertices, Faces: faces}
}

// Validate checks face indices and rejects faces with no plan area
func (m *Mesh) Validate() error {
	if len(m.Vertices) < 3 || len(m.Faces) == 0 {
		return fmt.Errorf("mesh must have at least 3 vertices and one face")
	}
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("face %d references vertex %d out of range", i, v)
			}
		}
		if math.Abs(m.faceArea(i)) < 1e-14 {
			return fmt.Errorf("face %d has zero plan area", i)
		}
	}
	return nil
}

// faceArea returns the signed plan area of face i
func (m *Mesh) faceArea(i int) float64 {
	a, b, c := m.Vertices[m.Faces[i][0]], m.Vertices[m.Faces[i][1]], m.Vertices[m.Faces[i][2]]
	return 0.5 * ((b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y))
}

// BoundingBox returns the plan extents of the mesh
func (m *Mesh) BoundingBox() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, v := range m.Vertices {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return
}

// PlanArea returns the projected area of the mesh
func (m *Mesh) PlanArea() float64 {
	var area float64
	for i := range m.Faces {
		area += math.Abs(m.faceArea(i))
	}
	return area
}

// Volume returns the volume between the mesh and the plane z = 0.
// The integral is exact for the piecewise-linear surface.
func (m *Mesh) Volume() float64 {
	var vol float64
	for i, f := range m.Faces {
		zm := (m.Vertices[f[0]].Z + m.Vertices[f[1]].Z + m.Vertices[f[2]].Z) / 3
		vol += math.Abs(m.faceArea(i)) * zm
	}
	return vol
}

// Offset returns a copy of the mesh shifted vertically by dz
func (m *Mesh) Offset(dz float64) *Mesh {
	vertices := make([]Point, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = Point{v.X, v.Y, v.Z + dz}
	}
	faces := make([][3]int, len(m.Faces))
	copy(faces, m.Faces)
	return NewMesh(vertices, faces)
}

// HeightAt interpolates the surface height at (x, y).
// Returns false when the point lies outside the mesh footprint.
func (m *Mesh) HeightAt(x, y float64) (float64, bool) {
	m.once.Do(func() { m.loc = newLocator(m) })
	return m.loc.heightAt(x, y)
}

// locator is a uniform bucket grid over the plan of a mesh
type locator struct {
	mesh       *Mesh
	minX, minY float64
	dx, dy     float64
	nx, ny     int
	buckets    [][]int
	eps        float64
}

func newLocator(m *Mesh) *locator {
	minX, minY, maxX, maxY := m.BoundingBox()
	n := int(math.Ceil(math.Sqrt(float64(len(m.Faces)))))
	if n < 1 {
		n = 1
	}
	l := &locator{
		mesh: m,
		minX: minX,
		minY: minY,
		nx:   n,
		ny:   n,
		eps:  1e-9,
	}
	l.dx = math.Max((maxX-minX)/float64(n), 1e-12)
	l.dy = math.Max((maxY-minY)/float64(n), 1e-12)
	l.buckets = make([][]int, n*n)

	for i, f := range m.Faces {
		fx0, fy0 := math.Inf(1), math.Inf(1)
		fx1, fy1 := math.Inf(-1), math.Inf(-1)
		for _, v := range f {
			p := m.Vertices[v]
			fx0, fy0 = math.Min(fx0, p.X), math.Min(fy0, p.Y)
			fx1, fy1 = math.Max(fx1, p.X), math.Max(fy1, p.Y)
		}
		i0, j0 := l.cell(fx0, fy0)
		i1, j1 := l.cell(fx1, fy1)
		for a := i0; a <= i1; a++ {
			for b := j0; b <= j1; b++ {
				l.buckets[b*l.nx+a] = append(l.buckets[b*l.nx+a], i)
			}
		}
	}
	return l
}

func (l *locator) cell(x, y float64) (int, int) {
	i := int(math.Floor((x - l.minX) / l.dx))
	j := int(math.Floor((y - l.minY) / l.dy))
	return clampIndex(i, l.nx), clampIndex(j, l.ny)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (l *locator) heightAt(x, y float64) (float64, bool) {
	tol := l.eps * (1 + math.Max(l.dx*float64(l.nx), l.dy*float64(l.ny)))
	if x < l.minX-tol || y < l.minY-tol || x > l.minX+l.dx*float64(l.nx)+tol || y > l.minY+l.dy*float64(l.ny)+tol {
		return 0, false
	}
	i, j := l.cell(x, y)
	for _, fi := range l.buckets[j*l.nx+i] {
		f := l.mesh.Faces[fi]
		a, b, c := l.mesh.Vertices[f[0]], l.mesh.Vertices[f[1]], l.mesh.Vertices[f[2]]
		det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if det == 0 {
			continue
		}
		w1 := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
		w2 := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
		w3 := 1 - w1 - w2
		if w1 >= -l.eps && w2 >= -l.eps && w3 >= -l.eps {
			return w1*a.Z + w2*b.Z + w3*c.Z, true
		}
	}
	return 0, false
}
