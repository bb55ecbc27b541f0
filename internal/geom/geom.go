// Package geom holds the 2D geometry used to flatten drawing entities into
// polylines: points, affine matrices, bounding boxes and curve tessellation.
package geom

import "math"

type Point struct {
	X float64
	Y float64
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func (p Point) Dot(o Point) float64 {
	return p.X*o.X + p.Y*o.Y
}

func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Angle returns the direction of p in degrees, counter-clockwise from +X.
func (p Point) Angle() float64 {
	return math.Atan2(p.Y, p.X) * 180 / math.Pi
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Polar returns the point at distance r from p in direction deg.
func Polar(p Point, r, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: p.X + r*math.Cos(rad), Y: p.Y + r*math.Sin(rad)}
}

// Box is an axis aligned bounding box. The zero value is empty.
type Box struct {
	Min   Point
	Max   Point
	valid bool
}

func BoxOf(pts ...Point) Box {
	var b Box
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

func (b Box) Extend(p Point) Box {
	if !p.IsFinite() {
		return b
	}
	if !b.valid {
		return Box{Min: p, Max: p, valid: true}
	}
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	return b
}

func (b Box) Union(o Box) Box {
	if !o.valid {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

func (b Box) IsEmpty() bool {
	return !b.valid
}

func (b Box) Width() float64 {
	if !b.valid {
		return 0
	}
	return b.Max.X - b.Min.X
}

func (b Box) Height() float64 {
	if !b.valid {
		return 0
	}
	return b.Max.Y - b.Min.Y
}

func (b Box) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}
