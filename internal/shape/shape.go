package shape

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gotno/internal/geom"
)

// DefaultDensity is the masonry unit weight used when none is given (kN/m³)
const DefaultDensity = 20.0

// Kind identifies how a shape was generated
type Kind string

const (
	KindArch      Kind = "arch"
	KindDome      Kind = "dome"
	KindPavillion Kind = "pavillion"
	KindGeneral   Kind = "general"
)

// Shape represents the masonry envelope between intrados and extrados
type Shape struct {
	Kind Kind `json:"type"`

	// Envelope surfaces (m)
	Intrados *geom.Mesh `json:"intrados"`
	Extrados *geom.Mesh `json:"extrados"`
	Middle   *geom.Mesh `json:"middle,omitempty"`

	Thickness float64 `json:"thk"`     // nominal thickness (m)
	Density   float64 `json:"density"` // unit weight (kN/m³)

	// Generator parameters (H, L, b, radius, center...)
	Params map[string]float64 `json:"params,omitempty"`
}

// GeometryError represents an invalid or self-intersecting envelope
type GeometryError struct {
	X, Y float64
	Msg  string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry error at (%.4f, %.4f): %s", e.X, e.Y, e.Msg)
}

// crossTol is the overlap allowed between intrados and extrados before
// they are considered crossing (m)
const crossTol = 1e-9

// FromMeshes creates a shape from explicit intrados and extrados surfaces
func FromMeshes(intrados, extrados *geom.Mesh, thk, density float64) (*Shape, error) {
	s := &Shape{
		Kind:      KindGeneral,
		Intrados:  intrados,
		Extrados:  extrados,
		Thickness: thk,
		Density:   density,
	}
	if s.Density <= 0 {
		s.Density = DefaultDensity
	}
	if err := s.Validate(nil); err != nil {
		return nil, err
	}
	return s, nil
}

// FromMiddle creates a shape by offsetting a middle surface by half the
// thickness up and down
func FromMiddle(middle *geom.Mesh, thk, density float64) (*Shape, error) {
	if thk <= 0 {
		return nil, &GeometryError{Msg: "thickness must be positive"}
	}
	s, err := FromMeshes(middle.Offset(-thk/2), middle.Offset(thk/2), thk, density)
	if err != nil {
		return nil, err
	}
	s.Middle = middle
	return s, nil
}

// Validate checks that both surfaces are present and never cross.
// Crossing is checked at every vertex and edge midpoint of both meshes and
// at each sample. Meshes on different triangulations can still cross
// between those points, where their edges intersect away from a midpoint.
func (s *Shape) Validate(samples []geom.Point) error {
	if s.Intrados == nil || s.Extrados == nil {
		return &GeometryError{Msg: "shape needs both intrados and extrados"}
	}
	if err := s.Intrados.Validate(); err != nil {
		return &GeometryError{Msg: "intrados: " + err.Error()}
	}
	if err := s.Extrados.Validate(); err != nil {
		return &GeometryError{Msg: "extrados: " + err.Error()}
	}

	check := func(x, y float64) error {
		zi, okI := s.Intrados.HeightAt(x, y)
		ze, okE := s.Extrados.HeightAt(x, y)
		if okI && okE && ze < zi-crossTol {
			return &GeometryError{X: x, Y: y, Msg: fmt.Sprintf("extrados %.4f below intrados %.4f", ze, zi)}
		}
		return nil
	}
	for _, m := range []*geom.Mesh{s.Intrados, s.Extrados} {
		for _, v := range m.Vertices {
			if err := check(v.X, v.Y); err != nil {
				return err
			}
		}
		seen := make(map[[2]int]bool, 3*len(m.Faces)/2)
		for _, f := range m.Faces {
			for k := 0; k < 3; k++ {
				a, b := f[k], f[(k+1)%3]
				if a > b {
					a, b = b, a
				}
				if seen[[2]int{a, b}] {
					continue
				}
				seen[[2]int{a, b}] = true
				pa, pb := m.Vertices[a], m.Vertices[b]
				if err := check((pa.X+pb.X)/2, (pa.Y+pb.Y)/2); err != nil {
					return err
				}
			}
		}
	}
	for _, p := range samples {
		if _, _, err := s.BoundsAt(p.X, p.Y); err != nil {
			return err
		}
	}
	return nil
}

// BoundsAt returns the envelope limits (zmin, zmax) above (x, y).
// Where the intrados is missing the envelope starts at the ground (z = 0).
func (s *Shape) BoundsAt(x, y float64) (zmin, zmax float64, err error) {
	zmax, ok := s.Extrados.HeightAt(x, y)
	if !ok {
		return 0, 0, &GeometryError{X: x, Y: y, Msg: "point outside the extrados footprint"}
	}
	if zi, ok := s.Intrados.HeightAt(x, y); ok {
		zmin = zi
	}
	if zmax < zmin-crossTol {
		return zmin, zmax, &GeometryError{X: x, Y: y, Msg: fmt.Sprintf("extrados %.4f below intrados %.4f", zmax, zmin)}
	}
	return zmin, math.Max(zmax, zmin), nil
}

// MiddleAt returns the height halfway between intrados and extrados
func (s *Shape) MiddleAt(x, y float64) (float64, error) {
	if s.Middle != nil {
		if z, ok := s.Middle.HeightAt(x, y); ok {
			return z, nil
		}
	}
	zmin, zmax, err := s.BoundsAt(x, y)
	if err != nil {
		return 0, err
	}
	return (zmin + zmax) / 2, nil
}

// ComputeSelfweight integrates density × thickness over the footprint (kN)
func (s *Shape) ComputeSelfweight() float64 {
	return s.Density * s.Volume()
}

// Volume returns the masonry volume between the two surfaces (m³)
func (s *Shape) Volume() float64 {
	return s.Extrados.Volume() - s.Intrados.Volume()
}

// Footprint returns the plan extents of the envelope
func (s *Shape) Footprint() (minX, minY, maxX, maxY float64) {
	return s.Extrados.BoundingBox()
}
