package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/alexiusacademia/gotno/internal/shape"
	"github.com/spf13/cobra"
)

// geometry holds the parametric inputs of one command
type geometry struct {
	H, L, B, Thk   float64
	Radius, Cx, Cy float64
	N              int // arch segments or vault divisions
	Rings, Spokes  int // radial form of domes
}

var (
	shapeGeo      = map[string]*geometry{"arch": {}, "dome": {}, "pavillion": {}}
	shapeSaveFile string
)

var shapeCmd = &cobra.Command{
	Use:   "shape",
	Short: "Generate masonry envelopes",
	Long: `Generate the intrados and extrados of a masonry structure.

Subcommands:
  arch       - Circular arch of rise H and span L
  dome       - Hemispherical dome
  pavillion  - Cloister vault over a square

The shape can be saved as JSON with --save and used by 'gotno run'.`,
}

var shapeArchCmd = &cobra.Command{
	Use:   "arch",
	Short: "Circular arch",
	Long: `Generate a circular arch spanning x from 0 to L.

Examples:
  gotno shape arch --H 1 --L 2 --thk 0.2
  gotno shape arch --H 1 --L 2 --thk 0.2 --save arch.json`,
	Run: runShape,
}

var shapeDomeCmd = &cobra.Command{
	Use:   "dome",
	Short: "Hemispherical dome",
	Long: `Generate a hemispherical dome of middle radius --radius.

Examples:
  gotno shape dome --radius 5 --thk 0.5 --xc 5 --yc 5`,
	Run: runShape,
}

var shapePavillionCmd = &cobra.Command{
	Use:   "pavillion",
	Short: "Pavillion (cloister) vault",
	Long: `Generate a pavillion vault over the square [0, L]².

Examples:
  gotno shape pavillion --L 10 --thk 0.5 --n 10`,
	Run: runShape,
}

func init() {
	rootCmd.AddCommand(shapeCmd)
	shapeCmd.AddCommand(shapeArchCmd, shapeDomeCmd, shapePavillionCmd)

	for _, c := range []*cobra.Command{shapeArchCmd, shapeDomeCmd, shapePavillionCmd} {
		c.Flags().StringVar(&shapeSaveFile, "save", "", "Save the shape as JSON")
	}
	addArchFlags(shapeArchCmd, shapeGeo["arch"])
	addDomeFlags(shapeDomeCmd, shapeGeo["dome"])
	addPavillionFlags(shapePavillionCmd, shapeGeo["pavillion"])
}

func addArchFlags(c *cobra.Command, g *geometry) {
	c.Flags().Float64Var(&g.H, "H", 1, "Rise (m)")
	c.Flags().Float64Var(&g.L, "L", 2, "Span (m)")
	c.Flags().Float64Var(&g.B, "b", 0.5, "Out-of-plane width (m)")
	c.Flags().Float64Var(&g.Thk, "thk", 0.2, "Thickness (m)")
	c.Flags().IntVar(&g.N, "n", 20, "Number of segments")
}

func addDomeFlags(c *cobra.Command, g *geometry) {
	c.Flags().Float64Var(&g.Radius, "radius", 5, "Middle radius (m)")
	c.Flags().Float64Var(&g.Thk, "thk", 0.5, "Thickness (m)")
	c.Flags().Float64Var(&g.Cx, "xc", 5, "Centre x (m)")
	c.Flags().Float64Var(&g.Cy, "yc", 5, "Centre y (m)")
}

func addRadialFlags(c *cobra.Command, g *geometry) {
	c.Flags().IntVar(&g.Rings, "rings", 6, "Rings of the radial form diagram")
	c.Flags().IntVar(&g.Spokes, "spokes", 12, "Meridians of the radial form diagram")
}

func addPavillionFlags(c *cobra.Command, g *geometry) {
	c.Flags().Float64Var(&g.L, "L", 10, "Side of the square (m)")
	c.Flags().Float64Var(&g.Thk, "thk", 0.5, "Thickness (m)")
	c.Flags().IntVar(&g.N, "n", 10, "Divisions per side")
}

// buildShape creates the envelope named kind
func buildShape(kind string, g *geometry) (*shape.Shape, error) {
	var s *shape.Shape
	var err error
	switch kind {
	case "arch":
		s, err = shape.CreateArch(g.H, g.L, g.B, g.Thk, g.N)
	case "dome":
		s, err = shape.CreateDome(g.Radius, g.Thk, geom.Point{X: g.Cx, Y: g.Cy})
	case "pavillion":
		s, err = shape.CreatePavillionVault(g.L, g.Thk, g.N)
	default:
		return nil, fmt.Errorf("unknown shape %q", kind)
	}
	if err != nil {
		return nil, err
	}
	s.Density = density()
	return s, nil
}

func runShape(cmd *cobra.Command, args []string) {
	s, err := buildShape(cmd.Name(), shapeGeo[cmd.Name()])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	printHeader(fmt.Sprintf("MASONRY ENVELOPE - %s", cmd.Name()))
	printShape(s)

	if shapeSaveFile != "" {
		if err := s.SaveToFile(shapeSaveFile); err != nil {
			fmt.Printf("Error saving shape: %v\n", err)
			return
		}
		fmt.Printf("Shape saved to: %s\n", shapeSaveFile)
	}
}
