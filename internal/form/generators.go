package form

import (
	"math"

	"github.com/alexiusacademia/gotno/internal/geom"
)

// CreateArch creates a linear form diagram along x from x0 to x0 + L with
// supports at both ends. Node heights follow the circular arch of rise H.
func CreateArch(H, L, x0 float64, discretisation int) (*Diagram, error) {
	if H <= 0 || L <= 0 || discretisation < 2 {
		return nil, &TopologyError{Node: -1, Msg: "arch form needs H > 0, L > 0 and discretisation >= 2"}
	}
	R := (H*H + L*L/4) / (2 * H)
	zc := H - R
	d := New("arch")
	d.Params = map[string]float64{"H": H, "L": L, "x0": x0, "discretisation": float64(discretisation)}
	for i := 0; i <= discretisation; i++ {
		x := x0 + L*float64(i)/float64(discretisation)
		dx := x - x0 - L/2
		z := math.Max(0, zc+math.Sqrt(math.Max(0, R*R-dx*dx)))
		d.AddNode(geom.Point{X: x, Z: z})
		if i > 0 {
			if _, err := d.AddEdge(i-1, i); err != nil {
				return nil, err
			}
		}
	}
	d.SetFixed(0, true)
	d.SetFixed(discretisation, true)
	return d, nil
}

// CreateCircularRadial creates a radial form diagram with nRadial rings
// and nSpokes meridians around center. The outer ring is supported; it
// carries no hoop edges.
func CreateCircularRadial(center geom.Point, radius float64, nRadial, nSpokes int) (*Diagram, error) {
	if radius <= 0 || nRadial < 1 || nSpokes < 3 {
		return nil, &TopologyError{Node: -1, Msg: "radial form needs radius > 0, at least 1 ring and 3 spokes"}
	}
	d := New("radial")
	d.Params = map[string]float64{
		"radius": radius, "xc": center.X, "yc": center.Y,
		"n_radial": float64(nRadial), "n_spokes": float64(nSpokes),
	}
	d.AddNode(geom.Point{X: center.X, Y: center.Y, Z: center.Z})
	node := func(k, j int) int {
		return 1 + (k-1)*nSpokes + (j % nSpokes)
	}
	for k := 1; k <= nRadial; k++ {
		r := radius * float64(k) / float64(nRadial)
		for j := 0; j < nSpokes; j++ {
			t := 2 * math.Pi * float64(j) / float64(nSpokes)
			i := d.AddNode(geom.Point{X: center.X + r*math.Cos(t), Y: center.Y + r*math.Sin(t), Z: center.Z})
			d.SetFixed(i, k == nRadial)
		}
	}

	edges := make([][2]int, 0, 2*nRadial*nSpokes)
	for j := 0; j < nSpokes; j++ {
		edges = append(edges, [2]int{0, node(1, j)})
		for k := 1; k < nRadial; k++ {
			edges = append(edges, [2]int{node(k, j), node(k+1, j)})
		}
	}
	for k := 1; k < nRadial; k++ {
		for j := 0; j < nSpokes; j++ {
			edges = append(edges, [2]int{node(k, j), node(k, j+1)})
		}
	}
	for _, e := range edges {
		if _, err := d.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// CreateOrthogonal creates an n × n grid over the square [x0, x0+L] ×
// [y0, y0+L] supported along its boundary. Edges between two supports are
// left out.
func CreateOrthogonal(x0, y0, L float64, n int) (*Diagram, error) {
	if L <= 0 || n < 2 {
		return nil, &TopologyError{Node: -1, Msg: "orthogonal form needs L > 0 and n >= 2"}
	}
	d := New("orthogonal")
	d.Params = map[string]float64{"x0": x0, "y0": y0, "L": L, "discretisation": float64(n)}
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			k := d.AddNode(geom.Point{X: x0 + L*float64(i)/float64(n), Y: y0 + L*float64(j)/float64(n)})
			d.SetFixed(k, i == 0 || j == 0 || i == n || j == n)
		}
	}
	id := func(i, j int) int { return j*(n+1) + i }
	connect := func(a, b int) error {
		if d.Nodes[a].Fixed && d.Nodes[b].Fixed {
			return nil
		}
		_, err := d.AddEdge(a, b)
		return err
	}
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			if i < n {
				if err := connect(id(i, j), id(i+1, j)); err != nil {
					return nil, err
				}
			}
			if j < n {
				if err := connect(id(i, j), id(i, j+1)); err != nil {
					return nil, err
				}
			}
		}
	}
	// corner supports have no edges left
	return dropIsolated(d)
}

// dropIsolated removes nodes without edges, keeping construction order
func dropIsolated(d *Diagram) (*Diagram, error) {
	out := New(d.Name)
	out.Params = d.Params
	remap := make([]int, len(d.Nodes))
	for i, n := range d.Nodes {
		remap[i] = -1
		if len(d.EdgesAt(i)) == 0 {
			continue
		}
		remap[i] = out.AddNode(n.Position)
		out.Nodes[remap[i]].Fixed = n.Fixed
		out.Nodes[remap[i]].Load = n.Load
	}
	for _, e := range d.Edges {
		if _, err := out.AddEdge(remap[e.U], remap[e.V]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FromLines builds a form diagram from line segments, merging endpoints
// closer than tol in plan
func FromLines(lines []geom.Line, tol float64) (*Diagram, error) {
	d := New("lines")
	find := func(p geom.Point) int {
		for i, n := range d.Nodes {
			if n.Position.DistanceXY(p) < tol {
				return i
			}
		}
		return d.AddNode(p)
	}
	for _, l := range lines {
		u, v := find(l.Start), find(l.End)
		if u == v || d.edgeBetween(u, v) >= 0 {
			continue
		}
		if _, err := d.AddEdge(u, v); err != nil {
			return nil, err
		}
	}
	if len(d.Edges) == 0 {
		return nil, &TopologyError{Node: -1, Msg: "no usable lines"}
	}
	return d, nil
}

// SetSupportsAt fixes every node closer than tol in plan to one of the
// points and returns the number of supports detected
func (d *Diagram) SetSupportsAt(points []geom.Point, tol float64) int {
	count := 0
	for i, n := range d.Nodes {
		for _, p := range points {
			if n.Position.DistanceXY(p) < tol {
				d.Nodes[i].Fixed = true
				count++
				break
			}
		}
	}
	return count
}
