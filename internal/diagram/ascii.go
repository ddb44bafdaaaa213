package diagram

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alexiusacademia/gotno/internal/analysis"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/guptarohit/asciigraph"
)

// NetworkData holds what is drawn of a solved thrust network
type NetworkData struct {
	Title string

	// Thrust network at the solved heights
	Nodes  []geom.Point
	Fixed  []bool
	Edges  []form.Edge
	Forces []float64 // axial force per edge (kN)

	// Envelope bounds per node, nil when no envelope was applied
	ZMin []float64
	ZMax []float64

	// Diagnostics
	Reactions []analysis.Reaction
	Intrados  []int // nodes touching the intrados
	Extrados  []int // nodes touching the extrados

	Status  string
	Message string
	Thrust  float64 // kN
}

// NewNetworkData collects the drawing data of a result on its form diagram
func NewNetworkData(title string, f *form.Diagram, res *analysis.Result) NetworkData {
	net := res.ThrustNetwork(f)
	d := NetworkData{
		Title:     title,
		Edges:     append([]form.Edge(nil), net.Edges...),
		Forces:    res.Forces,
		ZMin:      res.ZMin,
		ZMax:      res.ZMax,
		Reactions: res.Reactions,
		Status:    string(res.Status),
		Message:   res.Message,
		Thrust:    res.Thrust,
	}
	for _, n := range net.Nodes {
		d.Nodes = append(d.Nodes, n.Position)
		d.Fixed = append(d.Fixed, n.Fixed)
	}
	d.Intrados, d.Extrados = res.Cracks(-1)
	return d
}

// Section returns the nodes lying on the plan line parallel to x that
// passes closest to the middle of the footprint, ordered by x
func (d NetworkData) Section() []int {
	if len(d.Nodes) == 0 {
		return nil
	}
	minY, maxY := d.Nodes[0].Y, d.Nodes[0].Y
	for _, p := range d.Nodes {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	yc := (minY + maxY) / 2
	yline, best := d.Nodes[0].Y, math.Inf(1)
	for _, p := range d.Nodes {
		if dy := math.Abs(p.Y - yc); dy < best {
			yline, best = p.Y, dy
		}
	}
	tol := 1e-6 * math.Max(1, maxY-minY)
	var idx []int
	for i, p := range d.Nodes {
		if math.Abs(p.Y-yline) <= tol {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return d.Nodes[idx[a]].X < d.Nodes[idx[b]].X })
	return idx
}

// DrawProfile plots the thrust line of the middle section against the
// envelope bounds on the terminal
func DrawProfile(d NetworkData, width, height int) string {
	idx := d.Section()
	if len(idx) < 2 {
		return ""
	}
	z := make([]float64, len(idx))
	for k, i := range idx {
		z[k] = d.Nodes[i].Z
	}
	series := [][]float64{z}
	colors := []asciigraph.AnsiColor{asciigraph.Blue}
	caption := "thrust line"
	if d.ZMin != nil {
		lo := make([]float64, len(idx))
		hi := make([]float64, len(idx))
		for k, i := range idx {
			lo[k], hi[k] = d.ZMin[i], d.ZMax[i]
		}
		series = append(series, lo, hi)
		colors = append(colors, asciigraph.Red, asciigraph.Green)
		caption = "thrust line (blue), intrados (red), extrados (green)"
	}
	caption = fmt.Sprintf("%s: %s, y = %.3f m", d.Title, caption, d.Nodes[idx[0]].Y)

	return asciigraph.PlotMany(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
}

// DrawForceBars lists the largest edge forces as horizontal bars. At most
// limit edges are shown; limit <= 0 shows all of them.
func DrawForceBars(d NetworkData, width, limit int) string {
	if len(d.Forces) == 0 {
		return ""
	}
	order := make([]int, len(d.Forces))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return d.Forces[order[a]] > d.Forces[order[b]] })
	if limit > 0 && limit < len(order) {
		order = order[:limit]
	}
	fmax := d.Forces[order[0]]
	if fmax <= 0 {
		fmax = 1
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("  EDGE FORCES\n")
	sb.WriteString("  ───────────\n\n")
	for _, e := range order {
		bar := int(math.Round(d.Forces[e] / fmax * float64(width)))
		if bar < 0 {
			bar = 0
		}
		edge := d.Edges[e]
		sb.WriteString(fmt.Sprintf("  %4d (%3d-%3d) │%s %.3f kN\n", e, edge.U, edge.V, strings.Repeat("█", bar), d.Forces[e]))
	}
	return sb.String()
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := utf8.RuneCountInString(title)
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxLen {
			maxLen = n
		}
	}
	maxLen += 4

	pad := func(s string) string {
		return s + strings.Repeat(" ", maxLen-4-utf8.RuneCountInString(s))
	}
	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(title)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(line)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}
