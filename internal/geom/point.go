package geom

import "math"

// Point represents a 3D coordinate (m)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Line represents a straight segment between two points
type Line struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Add returns p + q
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns s * p
func (p Point) Scale(s float64) Point {
	return Point{s * p.X, s * p.Y, s * p.Z}
}

// Dot returns the scalar product of p and q
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Norm returns the euclidean length of p
func (p Point) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// NormXY returns the length of the horizontal projection of p
func (p Point) NormXY() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the 3D distance between p and q
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Norm()
}

// DistanceXY returns the distance between the plan projections of p and q
func (p Point) DistanceXY(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Vector returns End - Start
func (l Line) Vector() Point {
	return l.End.Sub(l.Start)
}

// Length returns the 3D length of the segment
func (l Line) Length() float64 {
	return l.Vector().Norm()
}

// Midpoint returns the point halfway along the segment
func (l Line) Midpoint() Point {
	return l.Start.Add(l.End).Scale(0.5)
}
