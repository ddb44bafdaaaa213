package optimiser

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_optimiser01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("optimiser01. factories and defaults")

	o := CreateMinThrust()
	chk.IntAssert(o.Settings.MaxIter, DefaultMaxIter)
	chk.IntAssert(o.Settings.InnerIter, DefaultInnerIter)
	chk.Float64(tst, "tol", 1e-17, o.Settings.Tol, 1e-6)
	chk.Float64(tst, "qmin", 1e-17, o.Settings.QMin, 1e-6)
	chk.Float64(tst, "friction", 1e-17, o.Settings.Friction, 0.75)
	chk.Float64(tst, "crack tol", 1e-17, o.Settings.CrackTol, 1e-3)
	if o.Solver != AugLagBFGS {
		tst.Errorf("default solver should be %s, got %s", AugLagBFGS, o.Solver)
	}

	o.SetConstraints(Funicular, Envelope, ReacBounds)
	if !o.Has(ReacBounds) || !o.Has(Envelope) {
		tst.Errorf("constraints were not set")
	}
	if err := o.Validate(); err != nil {
		tst.Errorf("Validate failed:\n%v", err)
	}

	if err := CreateMaxLoad(500, nil).Validate(); err == nil {
		tst.Errorf("max load without a load direction should be rejected")
	}
	if err := CreateMaxLoad(500, []float64{0, -1, 0}).Validate(); err != nil {
		tst.Errorf("Validate failed:\n%v", err)
	}
	if err := CreateComplementaryEnergy(nil).Validate(); err == nil {
		tst.Errorf("displacement objective without displacements should be rejected")
	}

	bad := CreateMaxThrust()
	bad.SetConstraints(Funicular, "gravity")
	if err := bad.Validate(); err == nil {
		tst.Errorf("unknown constraint should be rejected")
	}
	bad = CreateMaxThrust()
	bad.Settings.QMax = bad.Settings.QMin / 2
	if err := bad.Validate(); err == nil {
		tst.Errorf("qmax below qmin should be rejected")
	}
}

func Test_optimiser02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("optimiser02. JSON round trip")

	o := CreateComplementaryEnergy([]geom.Point{{X: 0.01}, {}, {X: -0.01, Z: -0.002}})
	o.SetConstraints(Funicular, Envelope, ReacBounds)
	o.Settings.Compliance = 2e-4

	path := filepath.Join(tst.TempDir(), "optimiser.json")
	if err := o.SaveToFile(path); err != nil {
		tst.Errorf("SaveToFile failed:\n%v", err)
		return
	}
	back, err := LoadFromFile(path)
	if err != nil {
		tst.Errorf("LoadFromFile failed:\n%v", err)
		return
	}
	if back.Objective != Displacement || !back.Has(ReacBounds) {
		tst.Errorf("objective or constraints lost: %+v", back)
	}
	chk.Float64(tst, "compliance", 1e-17, back.Settings.Compliance, 2e-4)
	chk.IntAssert(len(back.Settings.SupportDisplacement), 3)
	chk.Float64(tst, "dz", 1e-17, back.Settings.SupportDisplacement[2].Z, -0.002)

	// partial settings keep their defaults
	partial, err := FromData([]byte(`{"objective":"max_thrust","constraints":["funicular"],"settings":{"tol":1e-5}}`))
	if err != nil {
		tst.Errorf("FromData failed:\n%v", err)
		return
	}
	chk.Float64(tst, "tol", 1e-17, partial.Settings.Tol, 1e-5)
	chk.IntAssert(partial.Settings.MaxIter, DefaultMaxIter)
	if partial.Solver != AugLagBFGS {
		tst.Errorf("solver should default to %s", AugLagBFGS)
	}

	data, _ := json.Marshal(partial)
	io.Pforan("%s\n", data)
}
