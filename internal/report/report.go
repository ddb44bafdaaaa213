package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexiusacademia/gotno/internal/analysis"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/shape"
	"gopkg.in/yaml.v3"
)

// Report is a flat, human readable summary of an analysis
type Report struct {
	Name      string           `yaml:"name" json:"name"`
	Shape     ShapeInfo        `yaml:"shape" json:"shape"`
	Optimiser OptimiserInfo    `yaml:"optimiser" json:"optimiser"`
	Outcome   Outcome          `yaml:"outcome" json:"outcome"`
	Nodes     []NodeRow        `yaml:"nodes" json:"nodes"`
	Edges     []EdgeRow        `yaml:"edges" json:"edges"`
	Reactions []ReactionRow    `yaml:"reactions" json:"reactions"`
	Cracks    map[string][]int `yaml:"cracks" json:"cracks"`
}

type ShapeInfo struct {
	Type       string  `yaml:"type" json:"type"`
	Thickness  float64 `yaml:"thk" json:"thk"`
	Density    float64 `yaml:"density" json:"density"`
	Selfweight float64 `yaml:"selfweight" json:"selfweight"`
}

type OptimiserInfo struct {
	Objective   string   `yaml:"objective" json:"objective"`
	Constraints []string `yaml:"constraints" json:"constraints"`
	Solver      string   `yaml:"solver" json:"solver"`
}

type Outcome struct {
	Status       string  `yaml:"status" json:"status"`
	Message      string  `yaml:"message" json:"message"`
	Fopt         float64 `yaml:"fopt" json:"fopt"`
	Thrust       float64 `yaml:"thrust" json:"thrust"`
	LoadFactor   float64 `yaml:"load_factor,omitempty" json:"load_factor,omitempty"`
	Iterations   int     `yaml:"iterations" json:"iterations"`
	MaxViolation float64 `yaml:"max_violation" json:"max_violation"`
}

type NodeRow struct {
	Node  int     `yaml:"node" json:"node"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Z     float64 `yaml:"z" json:"z"`
	ZMin  float64 `yaml:"zmin,omitempty" json:"zmin,omitempty"`
	ZMax  float64 `yaml:"zmax,omitempty" json:"zmax,omitempty"`
	Fixed bool    `yaml:"fixed,omitempty" json:"fixed,omitempty"`
}

type EdgeRow struct {
	Edge  int     `yaml:"edge" json:"edge"`
	U     int     `yaml:"u" json:"u"`
	V     int     `yaml:"v" json:"v"`
	Q     float64 `yaml:"q" json:"q"`
	Force float64 `yaml:"force" json:"force"`
}

type ReactionRow struct {
	Node int     `yaml:"node" json:"node"`
	Rx   float64 `yaml:"rx" json:"rx"`
	Ry   float64 `yaml:"ry" json:"ry"`
	Rz   float64 `yaml:"rz" json:"rz"`
}

// New builds a report from the inputs and the result of an analysis
func New(name string, f *form.Diagram, s *shape.Shape, o *optimiser.Optimiser, res *analysis.Result) *Report {
	r := &Report{
		Name: name,
		Shape: ShapeInfo{
			Type:       string(s.Kind),
			Thickness:  s.Thickness,
			Density:    s.Density,
			Selfweight: s.ComputeSelfweight(),
		},
		Optimiser: OptimiserInfo{
			Objective: string(o.Objective),
			Solver:    string(o.Solver),
		},
		Outcome: Outcome{
			Status:       string(res.Status),
			Message:      res.Message,
			Fopt:         res.Fopt,
			Thrust:       res.Thrust,
			LoadFactor:   res.LoadFactor,
			Iterations:   res.Iterations,
			MaxViolation: res.MaxViolation,
		},
	}
	for _, c := range o.Constraints {
		r.Optimiser.Constraints = append(r.Optimiser.Constraints, string(c))
	}
	for i, n := range f.Nodes {
		row := NodeRow{Node: i, X: n.Position.X, Y: n.Position.Y, Z: n.Position.Z, Fixed: n.Fixed}
		if i < len(res.Heights) {
			row.Z = res.Heights[i]
		}
		if res.ZMin != nil {
			row.ZMin, row.ZMax = res.ZMin[i], res.ZMax[i]
		}
		r.Nodes = append(r.Nodes, row)
	}
	for e, edge := range f.Edges {
		row := EdgeRow{Edge: e, U: edge.U, V: edge.V}
		if e < len(res.ForceDensities) {
			row.Q, row.Force = res.ForceDensities[e], res.Forces[e]
		}
		r.Edges = append(r.Edges, row)
	}
	for _, rc := range res.Reactions {
		r.Reactions = append(r.Reactions, ReactionRow{Node: rc.Node, Rx: rc.Force.X, Ry: rc.Force.Y, Rz: rc.Force.Z})
	}
	intra, extra := res.Cracks(-1)
	r.Cracks = map[string][]int{"intrados": intra, "extrados": extra}
	return r
}

// Write encodes the report as yaml or json
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// SaveToFile writes the report, choosing the format from the extension
func (r *Report) SaveToFile(path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Write(file, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load reads a report written by SaveToFile
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &r)
	} else {
		err = yaml.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
