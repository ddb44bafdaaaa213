package form

import (
	"fmt"
	"sync"

	"github.com/alexiusacademia/gotno/internal/geom"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Node is a vertex of the form diagram
type Node struct {
	Position geom.Point `json:"xyz"`
	Fixed    bool       `json:"is_fixed"`
	Load     geom.Point `json:"load"` // prescribed nodal load (kN), z negative downwards
}

// Edge connects two nodes by index. Forces are solved, not stored.
type Edge struct {
	U int `json:"u"`
	V int `json:"v"`
}

// Diagram is a network of admissible force paths. Nodes and edges are
// indexed in construction order.
type Diagram struct {
	Name   string             `json:"name,omitempty"`
	Nodes  []Node             `json:"nodes"`
	Edges  []Edge             `json:"edges"`
	Params map[string]float64 `json:"params,omitempty"`

	// edge lists per node, rebuilt when Nodes or Edges change length;
	// guarded so that analyses may share one diagram
	mu       sync.Mutex
	adj      [][]int
	adjEdges int
}

// TopologyError represents a disconnected or supportless form diagram
type TopologyError struct {
	Node int // offending node, -1 when not node specific
	Msg  string
}

func (e *TopologyError) Error() string {
	if e.Node < 0 {
		return "topology error: " + e.Msg
	}
	return fmt.Sprintf("topology error at node %d: %s", e.Node, e.Msg)
}

// New creates an empty form diagram
func New(name string) *Diagram {
	return &Diagram{Name: name}
}

// AddNode appends a node and returns its index
func (d *Diagram) AddNode(p geom.Point) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buildAdjacency()
	d.Nodes = append(d.Nodes, Node{Position: p})
	d.adj = append(d.adj, nil)
	return len(d.Nodes) - 1
}

// AddEdge connects u and v and returns the edge index
func (d *Diagram) AddEdge(u, v int) (int, error) {
	if u < 0 || v < 0 || u >= len(d.Nodes) || v >= len(d.Nodes) {
		return -1, &TopologyError{Node: -1, Msg: fmt.Sprintf("edge (%d, %d) references a missing node", u, v)}
	}
	if u == v {
		return -1, &TopologyError{Node: u, Msg: "self loop"}
	}
	if d.edgeBetween(u, v) >= 0 {
		return -1, &TopologyError{Node: u, Msg: fmt.Sprintf("duplicate edge (%d, %d)", u, v)}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buildAdjacency()
	d.Edges = append(d.Edges, Edge{U: u, V: v})
	e := len(d.Edges) - 1
	d.adj[u] = append(d.adj[u], e)
	d.adj[v] = append(d.adj[v], e)
	d.adjEdges = len(d.Edges)
	return e, nil
}

func (d *Diagram) edgeBetween(u, v int) int {
	for _, e := range d.EdgesAt(u) {
		if d.Other(e, u) == v {
			return e
		}
	}
	return -1
}

// adjacency returns the edge lists, rebuilding them when the diagram was
// decoded or its Nodes or Edges were appended to directly. Edges edited in
// place are not detected.
func (d *Diagram) adjacency() [][]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buildAdjacency()
}

// buildAdjacency requires d.mu
func (d *Diagram) buildAdjacency() [][]int {
	if d.adj != nil && len(d.adj) == len(d.Nodes) && d.adjEdges == len(d.Edges) {
		return d.adj
	}
	d.adj = make([][]int, len(d.Nodes))
	for e, edge := range d.Edges {
		if edge.U < 0 || edge.V < 0 || edge.U >= len(d.Nodes) || edge.V >= len(d.Nodes) {
			continue
		}
		d.adj[edge.U] = append(d.adj[edge.U], e)
		d.adj[edge.V] = append(d.adj[edge.V], e)
	}
	d.adjEdges = len(d.Edges)
	return d.adj
}

// NumNodes returns the number of nodes
func (d *Diagram) NumNodes() int { return len(d.Nodes) }

// NumEdges returns the number of edges
func (d *Diagram) NumEdges() int { return len(d.Edges) }

// Node returns node i
func (d *Diagram) Node(i int) Node { return d.Nodes[i] }

// SetFixed marks node i as a support
func (d *Diagram) SetFixed(i int, fixed bool) { d.Nodes[i].Fixed = fixed }

// SetLoad sets the prescribed load of node i
func (d *Diagram) SetLoad(i int, load geom.Point) { d.Nodes[i].Load = load }

// EdgesAt returns the indices of the edges incident to node i
func (d *Diagram) EdgesAt(i int) []int {
	return d.adjacency()[i]
}

// Other returns the node at the other end of edge e from node i
func (d *Diagram) Other(e, i int) int {
	if d.Edges[e].U == i {
		return d.Edges[e].V
	}
	return d.Edges[e].U
}

// Neighbors returns the nodes adjacent to node i in edge order
func (d *Diagram) Neighbors(i int) []int {
	edges := d.EdgesAt(i)
	nbrs := make([]int, len(edges))
	for k, e := range edges {
		nbrs[k] = d.Other(e, i)
	}
	return nbrs
}

// Supports returns the fixed nodes in construction order
func (d *Diagram) Supports() []int {
	var out []int
	for i, n := range d.Nodes {
		if n.Fixed {
			out = append(out, i)
		}
	}
	return out
}

// FreeNodes returns the unsupported nodes in construction order
func (d *Diagram) FreeNodes() []int {
	var out []int
	for i, n := range d.Nodes {
		if !n.Fixed {
			out = append(out, i)
		}
	}
	return out
}

// Positions returns the coordinates of all nodes
func (d *Diagram) Positions() []geom.Point {
	out := make([]geom.Point, len(d.Nodes))
	for i, n := range d.Nodes {
		out[i] = n.Position
	}
	return out
}

// EdgeLengthXY returns the plan length of edge e
func (d *Diagram) EdgeLengthXY(e int) float64 {
	return d.Nodes[d.Edges[e].U].Position.DistanceXY(d.Nodes[d.Edges[e].V].Position)
}

// Validate checks that the diagram is a single connected network with at
// least one support and no coincident nodes in plan
func (d *Diagram) Validate() error {
	if len(d.Nodes) == 0 || len(d.Edges) == 0 {
		return &TopologyError{Node: -1, Msg: "form diagram has no edges"}
	}
	if len(d.Supports()) == 0 {
		return &TopologyError{Node: -1, Msg: "form diagram has no supports"}
	}

	g := simple.NewUndirectedGraph()
	for i := range d.Nodes {
		g.AddNode(simple.Node(i))
	}
	for e, edge := range d.Edges {
		if edge.U < 0 || edge.V < 0 || edge.U >= len(d.Nodes) || edge.V >= len(d.Nodes) {
			return &TopologyError{Node: -1, Msg: fmt.Sprintf("edge %d references a missing node", e)}
		}
		if edge.U == edge.V {
			return &TopologyError{Node: edge.U, Msg: fmt.Sprintf("edge %d is a self loop", e)}
		}
		if d.EdgeLengthXY(e) == 0 {
			return &TopologyError{Node: edge.U, Msg: fmt.Sprintf("edge %d has zero plan length", e)}
		}
		g.SetEdge(g.NewEdge(simple.Node(edge.U), simple.Node(edge.V)))
	}

	comps := topo.ConnectedComponents(g)
	if len(comps) > 1 {
		// report the lowest node of the first component without a support
		for _, comp := range comps {
			supported := false
			lowest := len(d.Nodes)
			for _, n := range comp {
				id := int(n.ID())
				supported = supported || d.Nodes[id].Fixed
				lowest = min(lowest, id)
			}
			if !supported {
				return &TopologyError{Node: lowest, Msg: "node is not reachable from any support"}
			}
		}
		return &TopologyError{Node: -1, Msg: fmt.Sprintf("form diagram has %d disconnected parts", len(comps))}
	}

	seen := make(map[[2]float64]int, len(d.Nodes))
	for i, n := range d.Nodes {
		key := [2]float64{n.Position.X, n.Position.Y}
		if j, ok := seen[key]; ok {
			return &TopologyError{Node: i, Msg: fmt.Sprintf("node coincides in plan with node %d", j)}
		}
		seen[key] = i
	}
	return nil
}
