package host

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/service"
	"github.com/alexiusacademia/gotno/internal/shape"
)

// Vault names the selections that describe a digitised vault
type Vault struct {
	Name string

	Lines         string // form diagram lines
	Supports      string // support points
	Intrados      string // intrados mesh
	Extrados      string // extrados mesh
	Displacements string // support displacement vectors, displacement objective only
	Loads         string // load vectors, max_load objective only

	Thickness float64 // average thickness (m)
	Density   float64 // kN/m³

	MergeTol   float64 // plan distance merging line ends (m)
	SupportTol float64 // plan distance matching supports and displacement vectors (m)
	LoadTol    float64 // plan distance matching load vectors (m)
}

// DefaultVault returns the conventional selection names and tolerances
func DefaultVault() Vault {
	return Vault{
		Name:          "vault",
		Lines:         "form",
		Supports:      "supports",
		Intrados:      "intrados",
		Extrados:      "extrados",
		Displacements: "displacements",
		Loads:         "loads",
		Thickness:     0.25,
		Density:       shape.DefaultDensity,
		MergeTol:      1e-3,
		SupportTol:    1e-3,
		LoadTol:       1e-2,
	}
}

// Build assembles the form diagram and the shape from the host selections
func (v Vault) Build(ctx context.Context, h Host) (*form.Diagram, *shape.Shape, error) {
	lines, err := h.SelectLines(ctx, v.Lines)
	if err != nil {
		return nil, nil, err
	}
	f, err := form.FromLines(lines, v.MergeTol)
	if err != nil {
		return nil, nil, err
	}
	f.Name = v.Name

	supports, err := h.SelectPoints(ctx, v.Supports)
	if err != nil {
		return nil, nil, err
	}
	if f.SetSupportsAt(supports, v.SupportTol) == 0 {
		return nil, nil, &SelectionError{Name: v.Supports, Err: errors.New("no support matches a form diagram node")}
	}
	if err := f.Validate(); err != nil {
		return nil, nil, err
	}

	intra, err := firstMesh(ctx, h, v.Intrados)
	if err != nil {
		return nil, nil, err
	}
	extra, err := firstMesh(ctx, h, v.Extrados)
	if err != nil {
		return nil, nil, err
	}
	s, err := shape.FromMeshes(intra, extra, v.Thickness, v.Density)
	if err != nil {
		return nil, nil, err
	}
	return f, s, nil
}

// firstMesh returns the first mesh of a selection
func firstMesh(ctx context.Context, h Host, name string) (*geom.Mesh, error) {
	meshes, err := h.SelectMeshes(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(meshes) == 0 || meshes[0] == nil {
		return nil, &SelectionError{Name: name, Err: ErrNoSelection}
	}
	return meshes[0], nil
}

// SupportDisplacement returns the displacement of every support of f, in
// support order, from vectors starting at the supports. Supports without
// a vector do not move.
func (v Vault) SupportDisplacement(ctx context.Context, h Host, f *form.Diagram) ([]geom.Point, error) {
	vecs, err := h.SelectLines(ctx, v.Displacements)
	if err != nil {
		return nil, err
	}
	sup := f.Supports()
	out := make([]geom.Point, len(sup))
	matched := 0
	for _, l := range vecs {
		for k, i := range sup {
			if f.Nodes[i].Position.DistanceXY(l.Start) < v.SupportTol {
				out[k] = l.Vector()
				matched++
				break
			}
		}
	}
	if matched == 0 {
		return nil, &SelectionError{Name: v.Displacements, Err: errors.New("no vector starts at a support")}
	}
	return out, nil
}

// LoadDirection returns the vertical load direction per node from vectors
// starting at the loaded nodes. Each matched node gets minus the vertical
// extent of its vector.
func (v Vault) LoadDirection(ctx context.Context, h Host, f *form.Diagram) ([]float64, error) {
	vecs, err := h.SelectLines(ctx, v.Loads)
	if err != nil {
		return nil, err
	}
	out := make([]float64, f.NumNodes())
	matched := 0
	for _, l := range vecs {
		for i, n := range f.Nodes {
			if n.Position.DistanceXY(l.Start) < v.LoadTol {
				out[i] = -math.Abs(l.End.Z - l.Start.Z)
				matched++
			}
		}
	}
	if matched == 0 {
		return nil, &SelectionError{Name: v.Loads, Err: errors.New("no vector starts at a node")}
	}
	return out, nil
}

// Optimiser creates the optimiser of objective, reading the displacement
// or load vectors when the objective needs them
func (v Vault) Optimiser(ctx context.Context, h Host, f *form.Diagram, objective optimiser.Objective, maxLambda float64) (*optimiser.Optimiser, error) {
	switch objective {
	case optimiser.MinThrust:
		return optimiser.CreateMinThrust(), nil
	case optimiser.MaxThrust:
		return optimiser.CreateMaxThrust(), nil
	case optimiser.Displacement:
		disp, err := v.SupportDisplacement(ctx, h, f)
		if err != nil {
			return nil, err
		}
		return optimiser.CreateComplementaryEnergy(disp), nil
	case optimiser.MaxLoad:
		dir, err := v.LoadDirection(ctx, h, f)
		if err != nil {
			return nil, err
		}
		return optimiser.CreateMaxLoad(maxLambda, dir), nil
	}
	return nil, fmt.Errorf("unknown objective %q", objective)
}

// Analyse builds the vault from the host, solves it and draws the result
// back. configure, when not nil, adjusts the optimiser before the run. A
// failed run is drawn as well and its error returned with the response.
func Analyse(ctx context.Context, h Host, v Vault, objective optimiser.Objective, maxLambda float64, configure func(*optimiser.Optimiser)) (*service.Response, error) {
	f, s, err := v.Build(ctx, h)
	if err != nil {
		return nil, err
	}
	o, err := v.Optimiser(ctx, h, f, objective, maxLambda)
	if err != nil {
		return nil, err
	}
	if configure != nil {
		configure(o)
	}

	resp, runErr := service.Run(ctx, service.Request{Form: f, Shape: s, Optimiser: o})
	if resp == nil {
		return nil, runErr
	}
	scene := Scene{Name: v.Name, Form: resp.Form, Shape: resp.Shape, Optimiser: resp.Optimiser, Result: resp.Result}
	if err := h.Draw(ctx, scene); err != nil {
		return resp, errors.Join(runErr, err)
	}
	return resp, runErr
}
