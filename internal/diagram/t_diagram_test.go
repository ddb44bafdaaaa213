package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexiusacademia/gotno/internal/analysis"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func archData(tst *testing.T) NetworkData {
	f, err := form.CreateArch(1, 2, 0, 4)
	if err != nil {
		tst.Fatalf("CreateArch failed:\n%v", err)
	}
	res := &analysis.Result{
		Status:         analysis.StatusConverged,
		Heights:        []float64{0, 0.7, 0.9, 0.7, 0},
		ZMin:           []float64{0, 0.6, 0.9, 0.6, 0},
		ZMax:           []float64{0.46, 0.8, 1.1, 0.8, 0.46},
		ForceDensities: []float64{2.5, 2.5, 2.5, 2.5},
		Forces:         []float64{3, 2.6, 2.6, 3},
		Reactions: []analysis.Reaction{
			{Node: 0, Force: geom.Point{X: 1.25, Z: 3}},
			{Node: 4, Force: geom.Point{X: -1.25, Z: 3}},
		},
		Thrust:         1.25,
		CrackTolerance: 1e-3,
	}
	return NewNetworkData("arch", f, res)
}

func Test_ascii01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ascii01. section, profile and bars")

	d := archData(tst)
	chk.Ints(tst, "section", d.Section(), []int{0, 1, 2, 3, 4})
	chk.Ints(tst, "intrados", d.Intrados, []int{0, 2, 4})
	chk.Float64(tst, "crown", 1e-15, d.Nodes[2].Z, 0.9)

	prof := DrawProfile(d, 40, 8)
	if !strings.Contains(prof, "thrust line") {
		tst.Errorf("profile caption missing:\n%s", prof)
	}
	io.Pf("%s\n", prof)

	bars := DrawForceBars(d, 20, 2)
	chk.IntAssert(strings.Count(bars, "kN"), 2)
	if !strings.Contains(bars, strings.Repeat("█", 20)+" 3.000 kN") {
		tst.Errorf("largest force should fill the bar:\n%s", bars)
	}

	box := DrawSummaryBox("RESULT", []string{"H = 1.250 kN", "λ ≥ 0"})
	lines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	chk.IntAssert(len(lines), 6)
	for _, l := range lines[1:] {
		if len([]rune(l)) != len([]rune(lines[0])) {
			tst.Errorf("box lines have different widths:\n%s", box)
			break
		}
	}
}

func Test_ascii02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ascii02. radial section")

	f, err := form.CreateCircularRadial(geom.Point{X: 5, Y: 5}, 5, 2, 8)
	if err != nil {
		tst.Errorf("CreateCircularRadial failed:\n%v", err)
		return
	}
	res := &analysis.Result{Heights: make([]float64, f.NumNodes())}
	d := NewNetworkData("dome", f, res)
	idx := d.Section()
	chk.IntAssert(len(idx), 5)
	for k := 1; k < len(idx); k++ {
		if d.Nodes[idx[k]].X <= d.Nodes[idx[k-1]].X {
			tst.Errorf("section is not ordered by x")
		}
		chk.Float64(tst, "y on section", 1e-12, d.Nodes[idx[k]].Y, 5)
	}
}

func Test_image01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("image01. elevation and plan export")

	d := archData(tst)
	dir := tst.TempDir()
	elev := filepath.Join(dir, "out", "elevation.png")
	if err := ExportElevation(d, elev); err != nil {
		tst.Errorf("ExportElevation failed:\n%v", err)
		return
	}
	if err := ExportPlan(d, filepath.Join(dir, "plan")); err != nil {
		tst.Errorf("ExportPlan failed:\n%v", err)
		return
	}
	for _, name := range []string{elev, filepath.Join(dir, "plan.png")} {
		info, err := os.Stat(name)
		if err != nil || info.Size() == 0 {
			tst.Errorf("%s was not written: %v", name, err)
		}
	}
	if err := ExportPlan(NetworkData{}, filepath.Join(dir, "empty.png")); err == nil {
		tst.Errorf("empty network should fail")
	}
}
