package form

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_topology01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("topology01. validation errors")

	d := New("test")
	for _, x := range []float64{0, 1, 2, 3} {
		d.AddNode(geom.Point{X: x})
	}
	d.AddEdge(0, 1)
	d.AddEdge(2, 3)

	var terr *TopologyError
	if err := d.Validate(); !errors.As(err, &terr) || terr.Node != -1 {
		tst.Errorf("diagram without supports should fail, got %v", err)
	}

	d.SetFixed(0, true)
	err := d.Validate()
	if !errors.As(err, &terr) {
		tst.Errorf("disconnected diagram should fail, got %v", err)
		return
	}
	chk.IntAssert(terr.Node, 2)

	if _, err := d.AddEdge(1, 1); !errors.As(err, &terr) {
		tst.Errorf("self loop should fail, got %v", err)
	}
	if _, err := d.AddEdge(1, 0); !errors.As(err, &terr) {
		tst.Errorf("duplicate edge should fail, got %v", err)
	}
	if _, err := d.AddEdge(1, 9); err == nil {
		tst.Errorf("missing node should fail")
	}

	e, err := d.AddEdge(1, 2)
	if err != nil {
		tst.Errorf("AddEdge failed:\n%v", err)
		return
	}
	chk.IntAssert(e, 2)
	if err := d.Validate(); err != nil {
		tst.Errorf("Validate failed:\n%v", err)
		return
	}
	chk.Ints(tst, "neighbours of 1", d.Neighbors(1), []int{0, 2})
	chk.Ints(tst, "supports", d.Supports(), []int{0})
	chk.Ints(tst, "free", d.FreeNodes(), []int{1, 2, 3})
	chk.Float64(tst, "plan length", 1e-15, d.EdgeLengthXY(2), 1)

	// same plan position, different height
	i := d.AddNode(geom.Point{X: 1, Z: 1})
	d.AddEdge(3, i)
	err = d.Validate()
	if !errors.As(err, &terr) {
		tst.Errorf("coincident nodes should fail, got %v", err)
		return
	}
	chk.IntAssert(terr.Node, i)
}

func Test_generators01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("generators01. parametric form diagrams")

	arch, err := CreateArch(1, 2, 0, 4)
	if err != nil {
		tst.Errorf("CreateArch failed:\n%v", err)
		return
	}
	chk.IntAssert(arch.NumNodes(), 5)
	chk.IntAssert(arch.NumEdges(), 4)
	chk.Ints(tst, "arch supports", arch.Supports(), []int{0, 4})
	chk.Float64(tst, "arch crown", 1e-15, arch.Node(2).Position.Z, 1)
	if err := arch.Validate(); err != nil {
		tst.Errorf("arch Validate failed:\n%v", err)
	}

	radial, err := CreateCircularRadial(geom.Point{X: 5, Y: 5}, 5, 2, 8)
	if err != nil {
		tst.Errorf("CreateCircularRadial failed:\n%v", err)
		return
	}
	chk.IntAssert(radial.NumNodes(), 17)
	chk.IntAssert(radial.NumEdges(), 24)
	chk.IntAssert(len(radial.Supports()), 8)
	chk.IntAssert(len(radial.EdgesAt(0)), 8)
	if err := radial.Validate(); err != nil {
		tst.Errorf("radial Validate failed:\n%v", err)
	}

	// corners dropped, boundary edges left out
	ortho, err := CreateOrthogonal(0, 0, 10, 4)
	if err != nil {
		tst.Errorf("CreateOrthogonal failed:\n%v", err)
		return
	}
	chk.IntAssert(ortho.NumNodes(), 21)
	chk.IntAssert(ortho.NumEdges(), 24)
	chk.IntAssert(len(ortho.Supports()), 12)
	for _, i := range ortho.Supports() {
		chk.IntAssert(len(ortho.EdgesAt(i)), 1)
	}
	if err := ortho.Validate(); err != nil {
		tst.Errorf("orthogonal Validate failed:\n%v", err)
	}

	if _, err := CreateArch(1, 2, 0, 1); err == nil {
		tst.Errorf("discretisation 1 should fail")
	}
	if _, err := CreateCircularRadial(geom.Point{}, 5, 1, 2); err == nil {
		tst.Errorf("2 spokes should fail")
	}
	if _, err := CreateOrthogonal(0, 0, -1, 4); err == nil {
		tst.Errorf("negative span should fail")
	}
}

func Test_lines01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("lines01. form diagram from line segments")

	lines := []geom.Line{
		{Start: geom.Point{X: 0}, End: geom.Point{X: 1, Z: 0.5}},
		{Start: geom.Point{X: 1 + 1e-4}, End: geom.Point{X: 2}},
		{Start: geom.Point{X: 2}, End: geom.Point{X: 1}},
		{Start: geom.Point{X: 0}, End: geom.Point{X: 0}},
	}
	d, err := FromLines(lines, 1e-3)
	if err != nil {
		tst.Errorf("FromLines failed:\n%v", err)
		return
	}
	chk.IntAssert(d.NumNodes(), 3)
	chk.IntAssert(d.NumEdges(), 2)

	n := d.SetSupportsAt([]geom.Point{{X: 0}, {X: 2, Y: 5e-4}, {X: 7}}, 1e-3)
	chk.IntAssert(n, 2)
	chk.Ints(tst, "supports", d.Supports(), []int{0, 2})
	if err := d.Validate(); err != nil {
		tst.Errorf("Validate failed:\n%v", err)
	}

	if _, err := FromLines([]geom.Line{{}}, 1e-3); err == nil {
		tst.Errorf("degenerate lines should fail")
	}
}

func Test_io01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("io01. save, load and copy")

	d, err := CreateCircularRadial(geom.Point{X: 5, Y: 5}, 5, 2, 6)
	if err != nil {
		tst.Errorf("CreateCircularRadial failed:\n%v", err)
		return
	}
	d.SetLoad(0, geom.Point{Z: -3})

	path := filepath.Join(tst.TempDir(), "form.json")
	if err := d.SaveToFile(path); err != nil {
		tst.Errorf("SaveToFile failed:\n%v", err)
		return
	}
	back, err := LoadFromFile(path)
	if err != nil {
		tst.Errorf("LoadFromFile failed:\n%v", err)
		return
	}
	chk.IntAssert(back.NumNodes(), d.NumNodes())
	chk.IntAssert(back.NumEdges(), d.NumEdges())
	chk.Ints(tst, "supports", back.Supports(), d.Supports())
	chk.Ints(tst, "neighbours of the centre", back.Neighbors(0), d.Neighbors(0))
	chk.Float64(tst, "load", 1e-15, back.Node(0).Load.Z, -3)
	chk.Float64(tst, "radius", 1e-15, back.Params["radius"], 5)

	if _, err := FromData([]byte(`{"nodes": [{"xyz": {"x": 0}}], "edges": []}`)); err == nil {
		tst.Errorf("diagram without edges should fail")
	}

	c := d.Copy()
	c.SetFixed(0, true)
	c.Params["radius"] = 1
	if _, err := c.AddEdge(1, 3); err != nil {
		tst.Errorf("AddEdge on the copy failed:\n%v", err)
		return
	}
	if d.Node(0).Fixed || d.Params["radius"] != 5 || d.NumEdges() != c.NumEdges()-1 {
		tst.Errorf("copy is not independent of the original")
	}
	chk.IntAssert(len(d.EdgesAt(1)), len(c.EdgesAt(1))-1)
}

func Test_adjacency01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("adjacency01. shared decoded diagram")

	arch, err := CreateArch(1, 2, 0, 20)
	if err != nil {
		tst.Errorf("CreateArch failed:\n%v", err)
		return
	}
	data, err := json.Marshal(arch)
	if err != nil {
		tst.Errorf("Marshal failed:\n%v", err)
		return
	}
	d, err := FromData(data)
	if err != nil {
		tst.Errorf("FromData failed:\n%v", err)
		return
	}

	// concurrent readers of one diagram, run with -race
	var wg sync.WaitGroup
	edges := make([][]int, 8)
	for k := range edges {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			edges[k] = d.EdgesAt(3)
		}(k)
	}
	wg.Wait()
	for k := range edges {
		chk.Ints(tst, io.Sf("edges at 3 (reader %d)", k), edges[k], []int{2, 3})
	}

	// edges appended to the exported field are picked up
	d.Edges = append(d.Edges, Edge{U: 1, V: 3})
	chk.Ints(tst, "edges at 1", d.EdgesAt(1), []int{0, 1, 20})
	chk.Ints(tst, "neighbours of 3", d.Neighbors(3), []int{2, 4, 1})
	if _, err := d.AddEdge(3, 1); err == nil {
		tst.Errorf("duplicate of an appended edge should fail")
	}
	e, err := d.AddEdge(1, 4)
	if err != nil {
		tst.Errorf("AddEdge failed:\n%v", err)
		return
	}
	chk.IntAssert(e, 21)
	chk.Ints(tst, "edges at 4", d.EdgesAt(4), []int{3, 4, 21})
}

func Test_dropIsolated01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dropIsolated01. errors are returned")

	d := New("test")
	for _, x := range []float64{0, 1, 2} {
		d.AddNode(geom.Point{X: x})
	}
	d.Edges = []Edge{{U: 0, V: 1}, {U: 1, V: 0}}
	if _, err := dropIsolated(d); err == nil {
		tst.Errorf("duplicate edges should fail")
	}

	d.Edges = d.Edges[:1]
	out, err := dropIsolated(d)
	if err != nil {
		tst.Errorf("dropIsolated failed:\n%v", err)
		return
	}
	chk.IntAssert(out.NumNodes(), 2)
	chk.IntAssert(out.NumEdges(), 1)
}
