package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/alexiusacademia/gotno/internal/analysis"
	"github.com/alexiusacademia/gotno/internal/diagram"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/report"
	"github.com/alexiusacademia/gotno/internal/shape"
)

const (
	rule   = "═══════════════════════════════════════════════════════════════"
	hrule  = "───────────────────────────────────────────────────────────────"
	maxRow = 40 // larger tables are left to the report file
)

// interruptible returns a context cancelled by Ctrl-C
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// applySettings copies the loaded settings into o
func applySettings(o *optimiser.Optimiser) {
	if settings != nil {
		settings.Apply(o)
	}
}

func density() float64 {
	if settings == nil {
		return shape.DefaultDensity
	}
	return settings.Density
}

func printHeader(title string) {
	fmt.Println()
	fmt.Println(rule)
	fmt.Printf("     %s\n", title)
	fmt.Println(rule)
	fmt.Println()
}

func printSection(title string) {
	fmt.Printf("%s:\n", title)
	fmt.Println(hrule)
}

func printShape(s *shape.Shape) {
	printSection("SHAPE")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	minX, minY, maxX, maxY := s.Footprint()
	fmt.Fprintf(w, "  Type:\t%s\n", s.Kind)
	fmt.Fprintf(w, "  Thickness:\t%.3f m\n", s.Thickness)
	fmt.Fprintf(w, "  Density:\t%.2f kN/m³\n", s.Density)
	fmt.Fprintf(w, "  Footprint:\t[%.3f, %.3f] × [%.3f, %.3f] m\n", minX, maxX, minY, maxY)
	fmt.Fprintf(w, "  Volume:\t%.4f m³\n", s.Volume())
	fmt.Fprintf(w, "  Selfweight:\t%.3f kN\n", s.ComputeSelfweight())
	w.Flush()
	fmt.Println()
}

func printForm(f *form.Diagram, independents int) {
	printSection("FORM DIAGRAM")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Name:\t%s\n", f.Name)
	fmt.Fprintf(w, "  Nodes:\t%d\n", f.NumNodes())
	fmt.Fprintf(w, "  Edges:\t%d\n", f.NumEdges())
	fmt.Fprintf(w, "  Supports:\t%d\n", len(f.Supports()))
	if independents >= 0 {
		fmt.Fprintf(w, "  Independent edges:\t%d\n", independents)
	}
	w.Flush()
	fmt.Println()
}

// printResult prints the outcome of an analysis in the tabular style of the
// other commands
func printResult(f *form.Diagram, o *optimiser.Optimiser, res *analysis.Result) {
	printSection("OPTIMISER")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	var cons []string
	for _, c := range o.Constraints {
		cons = append(cons, string(c))
	}
	fmt.Fprintf(w, "  Objective:\t%s\n", o.Objective)
	fmt.Fprintf(w, "  Constraints:\t%s\n", strings.Join(cons, ", "))
	fmt.Fprintf(w, "  Solver:\t%s\n", o.Solver)
	fmt.Fprintf(w, "  Iterations:\t%d\n", res.Iterations)
	fmt.Fprintf(w, "  Max violation:\t%.2e\n", res.MaxViolation)
	w.Flush()
	fmt.Println()

	n := len(res.Heights)
	if n > 0 && n <= maxRow {
		printSection("NODES")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  node\tx (m)\ty (m)\tz (m)\tzmin (m)\tzmax (m)\t")
		for i, z := range res.Heights {
			p := f.Nodes[i].Position
			lo, hi := "-", "-"
			if res.ZMin != nil {
				lo, hi = fmt.Sprintf("%.4f", res.ZMin[i]), fmt.Sprintf("%.4f", res.ZMax[i])
			}
			fixed := ""
			if f.Nodes[i].Fixed {
				fixed = "support"
			}
			fmt.Fprintf(w, "  %d\t%.4f\t%.4f\t%.4f\t%s\t%s\t%s\n", i, p.X, p.Y, z, lo, hi, fixed)
		}
		w.Flush()
		fmt.Println()
	}

	if len(res.Reactions) > 0 && len(res.Reactions) <= maxRow {
		printSection("REACTIONS")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  node\tRx (kN)\tRy (kN)\tRz (kN)\t")
		for _, r := range res.Reactions {
			fmt.Fprintf(w, "  %d\t%.4f\t%.4f\t%.4f\t\n", r.Node, r.Force.X, r.Force.Y, r.Force.Z)
		}
		w.Flush()
		fmt.Println()
	}

	intra, extra := res.Cracks(-1)
	printSection("CRACKS")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Intrados:\t%v\n", intra)
	fmt.Fprintf(w, "  Extrados:\t%v\n", extra)
	fmt.Fprintf(w, "  Tolerance:\t%.1e m\n", res.CrackTolerance)
	w.Flush()
	fmt.Println()

	lines := []string{
		fmt.Sprintf("Status: %s", res.Status),
		fmt.Sprintf("Thrust: %.4f kN", res.Thrust),
		fmt.Sprintf("fopt:   %.4f", res.Fopt),
	}
	if o.Objective == optimiser.MaxLoad {
		lines = append(lines, fmt.Sprintf("λ:      %.4f", res.LoadFactor))
	}
	if res.Message != "" {
		lines = append(lines, res.Message)
	}
	fmt.Print(diagram.DrawSummaryBox(strings.ToUpper(string(o.Objective))+" RESULT", lines))
	fmt.Println()
}

// saveOutputs writes the report and the drawings of an analysis into the
// configured output directory
func saveOutputs(name string, f *form.Diagram, s *shape.Shape, o *optimiser.Optimiser, res *analysis.Result) error {
	if settings == nil || settings.Output == "" {
		return nil
	}
	if err := os.MkdirAll(settings.Output, 0755); err != nil {
		return err
	}
	base := filepath.Join(settings.Output, name)

	r := report.New(name, f, s, o, res)
	if err := r.SaveToFile(base + "_report." + settings.Format); err != nil {
		return err
	}
	if err := res.ThrustNetwork(f).SaveToFile(base + "_network.json"); err != nil {
		return err
	}
	data := diagram.NewNetworkData(name, f, res)
	if err := diagram.ExportElevation(data, base+"_elevation.png"); err != nil {
		return err
	}
	if err := diagram.ExportPlan(data, base+"_plan.png"); err != nil {
		return err
	}
	fmt.Printf("Outputs written to: %s\n", settings.Output)
	return nil
}
