package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/cpmech/gosl/chk"
	"github.com/spf13/pflag"
)

func Test_config01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("config01. defaults")

	s, err := Load("", nil)
	if err != nil {
		tst.Errorf("Load failed:\n%v", err)
		return
	}
	chk.IntAssert(s.MaxIter, optimiser.DefaultMaxIter)
	chk.IntAssert(s.InnerIter, optimiser.DefaultInnerIter)
	chk.Float64(tst, "tol", 1e-17, s.Tol, optimiser.DefaultTol)
	chk.Float64(tst, "friction", 1e-17, s.Friction, optimiser.DefaultFriction)
	chk.Float64(tst, "crack tol", 1e-17, s.CrackTol, optimiser.DefaultCrackTol)
	chk.Float64(tst, "density", 1e-17, s.Density, 20)
	if s.Solver != string(optimiser.AugLagBFGS) || s.Format != "yaml" {
		tst.Errorf("unexpected defaults: %+v", s)
	}
}

func Test_config02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("config02. file, environment and flags")

	path := filepath.Join(tst.TempDir(), "gotno.yaml")
	yaml := "max_iter: 25\ntol: 1.0e-5\nsolver: auglag-lbfgs\nformat: json\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		tst.Fatalf("WriteFile failed:\n%v", err)
	}
	tst.Setenv("GOTNO_FRICTION", "0.6")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("crack-tol", 1e-3, "")
	flags.Int("max-iter", 60, "")
	flags.Bool("verbose", false, "")
	if err := flags.Parse([]string{"--crack-tol", "0.005", "--verbose"}); err != nil {
		tst.Fatalf("Parse failed:\n%v", err)
	}

	s, err := Load(path, flags)
	if err != nil {
		tst.Errorf("Load failed:\n%v", err)
		return
	}
	chk.IntAssert(s.MaxIter, 25) // unchanged flag keeps the file value
	chk.Float64(tst, "tol", 1e-17, s.Tol, 1e-5)
	chk.Float64(tst, "friction", 1e-17, s.Friction, 0.6)
	chk.Float64(tst, "crack tol", 1e-17, s.CrackTol, 0.005)

	o := optimiser.CreateMinThrust()
	s.Apply(o)
	if o.Solver != optimiser.AugLagLBFGS {
		tst.Errorf("solver not applied: %s", o.Solver)
	}
	chk.Float64(tst, "applied friction", 1e-17, o.Settings.Friction, 0.6)
	if err := o.Validate(); err != nil {
		tst.Errorf("applied optimiser is invalid:\n%v", err)
	}
}

func Test_config03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("config03. invalid settings")

	if _, err := Load(filepath.Join(tst.TempDir(), "missing.yaml"), nil); err == nil {
		tst.Errorf("missing config file should fail")
	}
	tst.Setenv("GOTNO_FORMAT", "xml")
	if _, err := Load("", nil); err == nil {
		tst.Errorf("unknown format should fail")
	}
}
