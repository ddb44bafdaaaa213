package cmd

import (
	"testing"

	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_flags01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("flags01. defaults of every subcommand")

	// each subcommand binds its own geometry
	chk.Float64(tst, "shape arch L", 1e-15, shapeGeo["arch"].L, 2)
	chk.Float64(tst, "shape pavillion L", 1e-15, shapeGeo["pavillion"].L, 10)
	chk.Float64(tst, "analyze arch thk", 1e-15, analyzeGeo["arch"].Thk, 0.2)
	chk.Float64(tst, "analyze dome thk", 1e-15, analyzeGeo["dome"].Thk, 0.5)
	chk.IntAssert(analyzeGeo["arch"].N, 20)
	chk.IntAssert(analyzeGeo["pavillion"].N, 10)
	chk.IntAssert(analyzeGeo["dome"].Rings, 6)
	chk.IntAssert(analyzeGeo["dome"].Spokes, 12)

	for _, kind := range []string{"arch", "dome", "pavillion"} {
		f, s, err := buildStructure(kind, analyzeGeo[kind])
		if err != nil {
			tst.Errorf("buildStructure(%s) failed:\n%v", kind, err)
			return
		}
		if err := f.Validate(); err != nil {
			tst.Errorf("%s form is invalid:\n%v", kind, err)
		}
		if err := s.Validate(f.Positions()); err != nil {
			tst.Errorf("%s form lies outside the shape:\n%v", kind, err)
		}
		io.Pforan("%-10s nodes = %d  selfweight = %.3f kN\n", kind, f.NumNodes(), s.ComputeSelfweight())
	}
	if _, err := buildShape("tower", &geometry{}); err == nil {
		tst.Errorf("unknown shape should fail")
	}
}

func Test_objectives01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("objectives01. analyses built from flags")

	defer func(obj string, cons []string) {
		analyzeObjective, analyzeConstraints = obj, cons
	}(analyzeObjective, analyzeConstraints)

	f, s, err := buildStructure("arch", analyzeGeo["arch"])
	if err != nil {
		tst.Errorf("buildStructure failed:\n%v", err)
		return
	}
	c := footprintCentre(s)
	chk.Float64(tst, "centre x", 1e-12, c.X, 1)

	analyzeObjective = string(optimiser.Displacement)
	a, err := newAnalysis(f, s)
	if err != nil {
		tst.Errorf("newAnalysis failed:\n%v", err)
		return
	}
	d := a.Optimiser.Settings.SupportDisplacement
	chk.IntAssert(len(d), 2)
	chk.Array(tst, "spread", 1e-15, []float64{d[0].X, d[1].X}, []float64{-analyzeSpread, analyzeSpread})

	analyzeObjective = string(optimiser.MaxLoad)
	a, err = newAnalysis(f, s)
	if err != nil {
		tst.Errorf("newAnalysis failed:\n%v", err)
		return
	}
	dir := a.Optimiser.Settings.LoadDirection
	chk.IntAssert(len(dir), f.NumNodes())
	chk.Float64(tst, "load at the crown", 1e-15, dir[10], -1)

	analyzeObjective = string(optimiser.MinThrust)
	analyzeConstraints = []string{"funicular", "envelope", "reac_bounds"}
	a, err = newAnalysis(f, s)
	if err != nil {
		tst.Errorf("newAnalysis failed:\n%v", err)
		return
	}
	if !a.Optimiser.Has(optimiser.ReacBounds) {
		tst.Errorf("reaction bounds should be active")
	}

	analyzeObjective = "min_weight"
	if _, err := newAnalysis(f, s); err == nil {
		tst.Errorf("unknown objective should fail")
	}
}
