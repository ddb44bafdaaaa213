package shape

import (
	"math"

	"github.com/alexiusacademia/gotno/internal/geom"
)

// Mesh resolution of the parametric generators
const (
	archRefinement  = 8  // envelope samples per form segment
	domeRings       = 32 // rings per hemisphere
	domeSectors     = 80 // divisions around the dome
	vaultRefinement = 4
)

// circle returns the height of a circle of radius r centred at zc above
// a horizontal offset d, clipped to the ground
func circle(r, zc, d float64) float64 {
	if math.Abs(d) >= r {
		return 0
	}
	return math.Max(0, zc+math.Sqrt(r*r-d*d))
}

// CreateArch creates a circular arch of rise H and span L, spanning x from
// 0 to L, with out-of-plane width b centred on y = 0.
func CreateArch(H, L, b, thk float64, discretisation int) (*Shape, error) {
	if H <= 0 || L <= 0 || b <= 0 {
		return nil, &GeometryError{Msg: "arch height, span and width must be positive"}
	}
	if discretisation < 2 {
		return nil, &GeometryError{Msg: "arch discretisation must be at least 2"}
	}
	R := (H*H + L*L/4) / (2 * H)
	zc := H - R
	if thk <= 0 || thk >= 2*R {
		return nil, &GeometryError{Msg: "arch thickness must be positive and smaller than the diameter"}
	}
	ri, re := R-thk/2, R+thk/2
	xm := L / 2
	xe := math.Sqrt(re*re - zc*zc)

	xs := []float64{xm}
	if ri > math.Abs(zc) {
		xi := math.Sqrt(ri*ri - zc*zc)
		xs = append(xs, xm-xi, xm+xi)
	}
	xs = geom.MergeSorted(1e-9,
		xs,
		geom.Linspace(xm-xe, xm+xe, archRefinement*discretisation+1),
		geom.Linspace(0, L, discretisation+1),
	)
	ys := []float64{-b / 2, 0, b / 2}

	s := &Shape{
		Kind:      KindArch,
		Intrados:  geom.GridMesh(xs, ys, func(x, y float64) float64 { return circle(ri, zc, x-xm) }),
		Extrados:  geom.GridMesh(xs, ys, func(x, y float64) float64 { return circle(re, zc, x-xm) }),
		Middle:    geom.GridMesh(xs, ys, func(x, y float64) float64 { return circle(R, zc, x-xm) }),
		Thickness: thk,
		Density:   DefaultDensity,
		Params: map[string]float64{
			"H": H, "L": L, "b": b, "R": R, "discretisation": float64(discretisation),
		},
	}
	if err := s.Validate(nil); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateDome creates a hemispherical dome of middle radius radius
func CreateDome(radius, thk float64, center geom.Point) (*Shape, error) {
	if radius <= 0 || thk <= 0 || thk >= 2*radius {
		return nil, &GeometryError{Msg: "dome radius and thickness must be positive with thk < 2 radius"}
	}
	ri, re := radius-thk/2, radius+thk/2

	rings := func(r float64) []float64 {
		radii := make([]float64, domeRings+1)
		for k := range radii {
			radii[k] = r * math.Sin(math.Pi/2*float64(k)/domeRings)
		}
		return radii
	}
	sphere := func(r float64) geom.HeightFunc {
		return func(x, y float64) float64 {
			return center.Z + circle(r, 0, math.Hypot(x-center.X, y-center.Y))
		}
	}

	s := &Shape{
		Kind:      KindDome,
		Intrados:  geom.PolarMesh(center.X, center.Y, append(rings(ri), re), domeSectors, sphere(ri)),
		Extrados:  geom.PolarMesh(center.X, center.Y, rings(re), domeSectors, sphere(re)),
		Middle:    geom.PolarMesh(center.X, center.Y, rings(radius), domeSectors, sphere(radius)),
		Thickness: thk,
		Density:   DefaultDensity,
		Params: map[string]float64{
			"radius": radius, "xc": center.X, "yc": center.Y, "zc": center.Z,
		},
	}
	if err := s.Validate(nil); err != nil {
		return nil, err
	}
	return s, nil
}

// CreatePavillionVault creates a cloister vault over the square [0, L]²
// as the lower envelope of two semicircular barrels
func CreatePavillionVault(L, thk float64, discretisation int) (*Shape, error) {
	if L <= 0 || thk <= 0 || thk >= L {
		return nil, &GeometryError{Msg: "vault span and thickness must be positive with thk < L"}
	}
	if discretisation < 2 {
		return nil, &GeometryError{Msg: "vault discretisation must be at least 2"}
	}
	R := L / 2
	ri, re := R-thk/2, R+thk/2
	c := L / 2

	ticks := geom.MergeSorted(1e-9,
		[]float64{c - ri, c, c + ri},
		geom.Linspace(c-re, c+re, vaultRefinement*discretisation+1),
		geom.Linspace(0, L, discretisation+1),
	)
	barrels := func(r float64) geom.HeightFunc {
		return func(x, y float64) float64 {
			return math.Min(circle(r, 0, x-c), circle(r, 0, y-c))
		}
	}

	s := &Shape{
		Kind:      KindPavillion,
		Intrados:  geom.GridMesh(ticks, ticks, barrels(ri)),
		Extrados:  geom.GridMesh(ticks, ticks, barrels(re)),
		Middle:    geom.GridMesh(ticks, ticks, barrels(R)),
		Thickness: thk,
		Density:   DefaultDensity,
		Params: map[string]float64{
			"L": L, "discretisation": float64(discretisation),
		},
	}
	if err := s.Validate(nil); err != nil {
		return nil, err
	}
	return s, nil
}
