package diagram

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	thrustColor   = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	envelopeColor = color.Gray{Y: 128}
	intraColor    = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	extraColor    = color.RGBA{R: 30, G: 144, B: 255, A: 255}
	reactionColor = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	supportColor  = color.RGBA{R: 139, G: 69, B: 19, A: 255}
)

// ExportElevation exports the XZ elevation of the thrust network with the
// envelope of its middle section, cracks and reactions
func ExportElevation(d NetworkData, filename string) error {
	if len(d.Nodes) == 0 {
		return fmt.Errorf("nothing to draw")
	}
	p := plot.New()
	p.Title.Text = d.Title + " - elevation"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "z (m)"

	for _, e := range d.Edges {
		a, b := d.Nodes[e.U], d.Nodes[e.V]
		l, err := plotter.NewLine(plotter.XYs{{X: a.X, Y: a.Z}, {X: b.X, Y: b.Z}})
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Color = thrustColor
		p.Add(l)
	}

	if idx := d.Section(); d.ZMin != nil && len(idx) > 1 {
		lo := make(plotter.XYs, len(idx))
		hi := make(plotter.XYs, len(idx))
		for k, i := range idx {
			lo[k] = plotter.XY{X: d.Nodes[i].X, Y: d.ZMin[i]}
			hi[k] = plotter.XY{X: d.Nodes[i].X, Y: d.ZMax[i]}
		}
		for _, xys := range []plotter.XYs{lo, hi} {
			l, err := plotter.NewLine(xys)
			if err != nil {
				return err
			}
			l.LineStyle.Color = envelopeColor
			l.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
			p.Add(l)
		}
	}

	if err := addCracks(p, d, func(i int) plotter.XY { return plotter.XY{X: d.Nodes[i].X, Y: d.Nodes[i].Z} }); err != nil {
		return err
	}

	// reactions drawn as arrows ending at the support
	scale := reactionScale(d, func(i int) float64 { return d.Nodes[i].X })
	for _, r := range d.Reactions {
		n := d.Nodes[r.Node]
		l, err := plotter.NewLine(plotter.XYs{
			{X: n.X - scale*r.Force.X, Y: n.Z - scale*r.Force.Z},
			{X: n.X, Y: n.Z},
		})
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(2)
		l.LineStyle.Color = reactionColor
		p.Add(l)
	}

	p.Legend.Add("thrust network", lineThumb(thrustColor))
	if d.ZMin != nil {
		p.Legend.Add("envelope", lineThumb(envelopeColor))
	}
	p.Legend.Add("reactions", lineThumb(reactionColor))
	p.Legend.Top = true

	return savePlot(p, 8*vg.Inch, 5*vg.Inch, filename)
}

// ExportPlan exports the XY plan of the thrust network. Edge widths are
// proportional to the axial forces.
func ExportPlan(d NetworkData, filename string) error {
	if len(d.Nodes) == 0 {
		return fmt.Errorf("nothing to draw")
	}
	p := plot.New()
	p.Title.Text = d.Title + " - plan"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	fmax := 0.0
	for _, f := range d.Forces {
		fmax = math.Max(fmax, f)
	}
	for e, edge := range d.Edges {
		a, b := d.Nodes[edge.U], d.Nodes[edge.V]
		l, err := plotter.NewLine(plotter.XYs{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}})
		if err != nil {
			return err
		}
		w := 1.0
		if fmax > 0 && e < len(d.Forces) {
			w = 0.5 + 4*d.Forces[e]/fmax
		}
		l.LineStyle.Width = vg.Points(w)
		l.LineStyle.Color = thrustColor
		p.Add(l)
	}

	var sup plotter.XYs
	for i, fixed := range d.Fixed {
		if fixed {
			sup = append(sup, plotter.XY{X: d.Nodes[i].X, Y: d.Nodes[i].Y})
		}
	}
	if len(sup) > 0 {
		s, err := plotter.NewScatter(sup)
		if err != nil {
			return err
		}
		s.GlyphStyle.Shape = draw.BoxGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		s.GlyphStyle.Color = supportColor
		p.Add(s)
	}

	if err := addCracks(p, d, func(i int) plotter.XY { return plotter.XY{X: d.Nodes[i].X, Y: d.Nodes[i].Y} }); err != nil {
		return err
	}

	scale := reactionScale(d, func(i int) float64 { return d.Nodes[i].X })
	for _, r := range d.Reactions {
		if math.Hypot(r.Force.X, r.Force.Y) == 0 {
			continue
		}
		n := d.Nodes[r.Node]
		l, err := plotter.NewLine(plotter.XYs{
			{X: n.X - scale*r.Force.X, Y: n.Y - scale*r.Force.Y},
			{X: n.X, Y: n.Y},
		})
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(2)
		l.LineStyle.Color = reactionColor
		p.Add(l)
	}

	return savePlot(p, 7*vg.Inch, 7*vg.Inch, filename)
}

// addCracks marks the nodes touching the intrados and the extrados
func addCracks(p *plot.Plot, d NetworkData, at func(i int) plotter.XY) error {
	marks := []struct {
		nodes []int
		col   color.Color
		name  string
	}{
		{d.Intrados, intraColor, "intrados contact"},
		{d.Extrados, extraColor, "extrados contact"},
	}
	for _, m := range marks {
		if len(m.nodes) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(m.nodes))
		for k, i := range m.nodes {
			xys[k] = at(i)
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		s.GlyphStyle.Color = m.col
		p.Add(s)
		p.Legend.Add(m.name, s)
	}
	return nil
}

// reactionScale maps the largest reaction to a fifth of the span
func reactionScale(d NetworkData, coord func(i int) float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range d.Nodes {
		lo = math.Min(lo, coord(i))
		hi = math.Max(hi, coord(i))
	}
	rmax := 0.0
	for _, r := range d.Reactions {
		rmax = math.Max(rmax, r.Force.Norm())
	}
	if rmax == 0 || hi <= lo {
		return 0
	}
	return 0.2 * (hi - lo) / rmax
}

func lineThumb(c color.Color) plot.Thumbnailer {
	l, _ := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 0}})
	l.LineStyle.Color = c
	return l
}

// savePlot writes the plot; the format follows the extension and
// defaults to png
func savePlot(p *plot.Plot, width, height vg.Length, filename string) error {
	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf", ".eps", ".jpg", ".jpeg", ".tif", ".tiff":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}
