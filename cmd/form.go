package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gotno/internal/equilibrium"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/spf13/cobra"
)

var (
	formGeo      = map[string]*geometry{"arch": {}, "radial": {}, "orthogonal": {}}
	formSaveFile string
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Generate form diagrams",
	Long: `Generate the form diagram: the network of admissible force paths.

Subcommands:
  arch        - Linear form diagram along an arch
  radial      - Rings and meridians, for domes
  orthogonal  - Square grid supported on its boundary, for vaults

The number of independent edges is the number of degrees of freedom of
the horizontal equilibrium.`,
}

var formArchCmd = &cobra.Command{
	Use:   "arch",
	Short: "Linear form diagram",
	Long: `Generate a linear form diagram from x = 0 to x = L.

Examples:
  gotno form arch --H 1 --L 2 --n 20 --save form.json`,
	Run: runForm,
}

var formRadialCmd = &cobra.Command{
	Use:   "radial",
	Short: "Radial form diagram",
	Long: `Generate a radial form diagram supported on its outer ring.

Examples:
  gotno form radial --radius 5 --xc 5 --yc 5 --rings 6 --spokes 12`,
	Run: runForm,
}

var formOrthogonalCmd = &cobra.Command{
	Use:   "orthogonal",
	Short: "Orthogonal form diagram",
	Long: `Generate an orthogonal grid over [0, L]² supported on its boundary.

Examples:
  gotno form orthogonal --L 10 --n 10`,
	Run: runForm,
}

func init() {
	rootCmd.AddCommand(formCmd)
	formCmd.AddCommand(formArchCmd, formRadialCmd, formOrthogonalCmd)

	for _, c := range []*cobra.Command{formArchCmd, formRadialCmd, formOrthogonalCmd} {
		c.Flags().StringVar(&formSaveFile, "save", "", "Save the form diagram as JSON")
	}

	g := formGeo["arch"]
	formArchCmd.Flags().Float64Var(&g.H, "H", 1, "Rise (m)")
	formArchCmd.Flags().Float64Var(&g.L, "L", 2, "Span (m)")
	formArchCmd.Flags().IntVar(&g.N, "n", 20, "Number of segments")

	g = formGeo["radial"]
	formRadialCmd.Flags().Float64Var(&g.Radius, "radius", 5, "Radius (m)")
	formRadialCmd.Flags().Float64Var(&g.Cx, "xc", 5, "Centre x (m)")
	formRadialCmd.Flags().Float64Var(&g.Cy, "yc", 5, "Centre y (m)")
	addRadialFlags(formRadialCmd, g)

	g = formGeo["orthogonal"]
	formOrthogonalCmd.Flags().Float64Var(&g.L, "L", 10, "Side of the square (m)")
	formOrthogonalCmd.Flags().IntVar(&g.N, "n", 10, "Divisions per side")
}

// buildForm creates the form diagram named kind
func buildForm(kind string, g *geometry) (*form.Diagram, error) {
	switch kind {
	case "arch":
		return form.CreateArch(g.H, g.L, 0, g.N)
	case "radial":
		return form.CreateCircularRadial(geom.Point{X: g.Cx, Y: g.Cy}, g.Radius, g.Rings, g.Spokes)
	case "orthogonal":
		return form.CreateOrthogonal(0, 0, g.L, g.N)
	}
	return nil, fmt.Errorf("unknown form diagram %q", kind)
}

func runForm(cmd *cobra.Command, args []string) {
	f, err := buildForm(cmd.Name(), formGeo[cmd.Name()])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	net, err := equilibrium.NewNetwork(f)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	printHeader(fmt.Sprintf("FORM DIAGRAM - %s", cmd.Name()))
	printForm(f, len(net.Independents()))

	if formSaveFile != "" {
		if err := f.SaveToFile(formSaveFile); err != nil {
			fmt.Printf("Error saving form diagram: %v\n", err)
			return
		}
		fmt.Printf("Form diagram saved to: %s\n", formSaveFile)
	}
}
