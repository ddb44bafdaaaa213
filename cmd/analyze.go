package cmd

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotno/internal/analysis"
	"github.com/alexiusacademia/gotno/internal/diagram"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/shape"
	"github.com/spf13/cobra"
)

var (
	analyzeGeo = map[string]*geometry{"arch": {}, "dome": {}, "pavillion": {}}

	// Optimisation inputs
	analyzeObjective   string
	analyzeConstraints []string
	analyzeMaxLambda   float64
	analyzeLoadNode    int
	analyzeLoad        float64
	analyzeSpread      float64

	analyzeShowDiagram bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Limit analysis of parametric masonry structures",
	Long: `Run a thrust network analysis on a parametric structure.

Objectives (--objective):
  min_thrust    - Minimum horizontal thrust
  max_thrust    - Maximum horizontal thrust
  displacement  - Thrust network compatible with the supports spreading
                  outwards by --spread (complementary energy)
  max_load      - Largest factor of a vertical point load of --load kN
                  on node --load-node (the node nearest the centre when -1)

Constraints (--constraints): funicular, envelope, reac_bounds.

Subcommands:
  arch, dome, pavillion`,
}

var analyzeArchCmd = &cobra.Command{
	Use:   "arch",
	Short: "Analyse a circular arch",
	Long: `Analyse a circular arch on a linear form diagram.

Examples:
  gotno analyze arch --H 1 --L 2 --thk 0.2 --objective min_thrust
  gotno analyze arch --thk 0.2 --objective max_load --load-node 5 --diagram
  gotno analyze arch --objective displacement --spread 0.01 --output out`,
	Run: runAnalyze,
}

var analyzeDomeCmd = &cobra.Command{
	Use:   "dome",
	Short: "Analyse a hemispherical dome",
	Long: `Analyse a hemispherical dome on a radial form diagram.

Examples:
  gotno analyze dome --radius 5 --thk 0.5 --rings 6 --spokes 12
  gotno analyze dome --constraints funicular,envelope,reac_bounds`,
	Run: runAnalyze,
}

var analyzePavillionCmd = &cobra.Command{
	Use:   "pavillion",
	Short: "Analyse a pavillion vault",
	Long: `Analyse a pavillion vault on an orthogonal form diagram.

Examples:
  gotno analyze pavillion --L 10 --thk 0.5 --n 8 --objective max_thrust`,
	Run: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeArchCmd, analyzeDomeCmd, analyzePavillionCmd)

	addArchFlags(analyzeArchCmd, analyzeGeo["arch"])
	addDomeFlags(analyzeDomeCmd, analyzeGeo["dome"])
	addRadialFlags(analyzeDomeCmd, analyzeGeo["dome"])
	addPavillionFlags(analyzePavillionCmd, analyzeGeo["pavillion"])

	pf := analyzeCmd.PersistentFlags()
	pf.StringVar(&analyzeObjective, "objective", string(optimiser.MinThrust), "Objective: min_thrust, max_thrust, displacement, max_load")
	pf.StringSliceVar(&analyzeConstraints, "constraints", []string{string(optimiser.Funicular), string(optimiser.Envelope)}, "Active constraints")
	pf.Float64Var(&analyzeMaxLambda, "max-lambda", optimiser.DefaultMaxLambda, "Upper bound of the load factor (max_load)")
	pf.IntVar(&analyzeLoadNode, "load-node", -1, "Loaded node (max_load)")
	pf.Float64Var(&analyzeLoad, "load", 1, "Reference point load (kN, max_load)")
	pf.Float64Var(&analyzeSpread, "spread", 0.01, "Outward support displacement (m, displacement)")
	pf.BoolVar(&analyzeShowDiagram, "diagram", false, "Show ASCII thrust line profile and edge forces")
}

// buildStructure creates the shape and its matching form diagram
func buildStructure(kind string, g *geometry) (*form.Diagram, *shape.Shape, error) {
	s, err := buildShape(kind, g)
	if err != nil {
		return nil, nil, err
	}
	var f *form.Diagram
	switch kind {
	case "arch":
		f, err = form.CreateArch(g.H, g.L, 0, g.N)
	case "dome":
		f, err = form.CreateCircularRadial(geom.Point{X: g.Cx, Y: g.Cy}, g.Radius, g.Rings, g.Spokes)
	case "pavillion":
		f, err = form.CreateOrthogonal(0, 0, g.L, g.N)
	}
	if err != nil {
		return nil, nil, err
	}
	return f, s, nil
}

// footprintCentre returns the plan centre of the shape
func footprintCentre(s *shape.Shape) geom.Point {
	minX, minY, maxX, maxY := s.Footprint()
	return geom.Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
}

// newAnalysis creates the analysis of the objective flag
func newAnalysis(f *form.Diagram, s *shape.Shape) (*analysis.Analysis, error) {
	c := footprintCentre(s)
	var a *analysis.Analysis
	var err error
	switch optimiser.Objective(analyzeObjective) {
	case optimiser.MinThrust:
		a, err = analysis.CreateMinThrustAnalysis(f, s)
	case optimiser.MaxThrust:
		a, err = analysis.CreateMaxThrustAnalysis(f, s)
	case optimiser.Displacement:
		var disp []geom.Point
		for _, i := range f.Supports() {
			d := f.Nodes[i].Position.Sub(c)
			d.Z = 0
			if r := d.NormXY(); r > 0 {
				d = d.Scale(analyzeSpread / r)
			}
			disp = append(disp, d)
		}
		a, err = analysis.CreateComplementaryEnergyAnalysis(f, s, disp)
	case optimiser.MaxLoad:
		node := analyzeLoadNode
		if node < 0 {
			best := math.Inf(1)
			for _, i := range f.FreeNodes() {
				if d := f.Nodes[i].Position.DistanceXY(c); d < best {
					node, best = i, d
				}
			}
		}
		if node < 0 || node >= f.NumNodes() {
			return nil, fmt.Errorf("load node %d out of range", node)
		}
		dir := make([]float64, f.NumNodes())
		dir[node] = -math.Abs(analyzeLoad)
		a, err = analysis.CreateMaxLoadAnalysis(f, s, analyzeMaxLambda, dir)
	default:
		return nil, fmt.Errorf("unknown objective %q", analyzeObjective)
	}
	if err != nil {
		return nil, err
	}

	var cons []optimiser.Constraint
	for _, name := range analyzeConstraints {
		cons = append(cons, optimiser.Constraint(name))
	}
	a.Optimiser.SetConstraints(cons...)
	applySettings(a.Optimiser)
	return a, nil
}

func runAnalyze(cmd *cobra.Command, args []string) {
	kind := cmd.Name()
	f, s, err := buildStructure(kind, analyzeGeo[kind])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	a, err := newAnalysis(f, s)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	o := a.Optimiser

	steps := []func() error{a.ApplySelfweight}
	if o.Has(optimiser.Envelope) || o.Has(optimiser.ReacBounds) {
		steps = append(steps, a.ApplyEnvelope)
	}
	if o.Has(optimiser.ReacBounds) {
		steps = append(steps, a.ApplyReactionBounds)
	}
	steps = append(steps, a.SetUpOptimiser)
	for _, step := range steps {
		if err := step(); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}

	ctx, stop := interruptible()
	defer stop()
	res, runErr := a.Run(ctx)
	if res == nil {
		fmt.Printf("Error: %v\n", runErr)
		return
	}

	printHeader(fmt.Sprintf("THRUST NETWORK ANALYSIS - %s", kind))
	printShape(s)
	printForm(f, len(a.Network().Independents()))
	printResult(f, o, res)

	if analyzeShowDiagram && res.Heights != nil {
		data := diagram.NewNetworkData(kind, f, res)
		fmt.Println(diagram.DrawProfile(data, 60, 12))
		fmt.Println(diagram.DrawForceBars(data, 30, 15))
	}
	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
	}
	if err := saveOutputs(kind, f, s, o, res); err != nil {
		fmt.Printf("Error writing outputs: %v\n", err)
	}
}
