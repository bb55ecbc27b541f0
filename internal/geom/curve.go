package geom

import "math"

// FullCircleSegments is the number of chords used for a full 360° sweep.
const FullCircleSegments = 128

func segmentsFor(sweepRad float64) int {
	n := int(math.Ceil(math.Abs(sweepRad) / (2 * math.Pi) * FullCircleSegments))
	if n < 2 {
		n = 2
	}
	return n
}

// Circle returns a closed ring approximating a circle. The first point is not
// repeated at the end.
func Circle(center Point, r float64) []Point {
	rsl := make([]Point, FullCircleSegments)
	for i := range rsl {
		a := 2 * math.Pi * float64(i) / FullCircleSegments
		rsl[i] = Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return rsl
}

// Arc tessellates a circular arc running counter-clockwise from startDeg to
// endDeg. Equal angles mean a full circle.
func Arc(center Point, r, startDeg, endDeg float64) []Point {
	start := normalizeDeg(startDeg)
	end := normalizeDeg(endDeg)
	if end <= start {
		end += 360
	}
	sweep := (end - start) * math.Pi / 180
	n := segmentsFor(sweep)
	rsl := make([]Point, n+1)
	a0 := start * math.Pi / 180
	for i := 0; i <= n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		rsl[i] = Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return rsl
}

func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// BulgeArc returns the points of the polyline segment from p0 to p1 with the
// given bulge (tan of a quarter of the included angle, positive is
// counter-clockwise). p0 is not included, p1 is always the last point.
func BulgeArc(p0, p1 Point, bulge float64) []Point {
	chord := p1.Sub(p0)
	if bulge == 0 || chord.Len() == 0 {
		return []Point{p1}
	}
	perp := Point{X: -chord.Y, Y: chord.X}
	center := p0.Add(chord.Scale(0.5)).Add(perp.Scale((1 - bulge*bulge) / (4 * bulge)))
	sweep := 4 * math.Atan(bulge)
	r := p0.Sub(center).Len()
	a0 := math.Atan2(p0.Y-center.Y, p0.X-center.X)
	n := segmentsFor(sweep)
	rsl := make([]Point, n)
	for i := 1; i < n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		rsl[i-1] = Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	rsl[n-1] = p1
	return rsl
}

// Ellipse tessellates an elliptical arc. major is the major axis vector
// relative to center, ratio the minor/major length ratio, and the params are
// in radians. A zero or full sweep yields the whole ellipse.
func Ellipse(center, major Point, ratio, startParam, endParam float64) []Point {
	minor := Point{X: -major.Y * ratio, Y: major.X * ratio}
	sweep := endParam - startParam
	for sweep <= 0 {
		sweep += 2 * math.Pi
	}
	if sweep > 2*math.Pi {
		sweep = 2 * math.Pi
	}
	n := segmentsFor(sweep)
	rsl := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		t := startParam + sweep*float64(i)/float64(n)
		rsl[i] = center.Add(major.Scale(math.Cos(t))).Add(minor.Scale(math.Sin(t)))
	}
	return rsl
}

// ClampedKnots builds an open uniform knot vector for count control points.
func ClampedKnots(count, degree int) []float64 {
	n := count + degree + 1
	rsl := make([]float64, n)
	inner := count - degree
	for i := range rsl {
		switch {
		case i <= degree:
			rsl[i] = 0
		case i >= count:
			rsl[i] = float64(inner)
		default:
			rsl[i] = float64(i - degree)
		}
	}
	return rsl
}

// BSpline evaluates a (rational) B-spline with de Boor's algorithm. Missing or
// inconsistent knots fall back to a clamped uniform vector, missing weights
// to 1.
func BSpline(degree int, control []Point, knots, weights []float64) []Point {
	count := len(control)
	if count == 0 {
		return nil
	}
	if degree < 1 || count <= degree {
		return append([]Point(nil), control...)
	}
	if len(knots) != count+degree+1 {
		knots = ClampedKnots(count, degree)
	}
	if len(weights) != count {
		weights = nil
	}
	u0, u1 := knots[degree], knots[count]
	if u1 <= u0 {
		return append([]Point(nil), control...)
	}
	segments := count * 8
	if segments < 32 {
		segments = 32
	}
	rsl := make([]Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		u := u0 + (u1-u0)*float64(i)/float64(segments)
		rsl = append(rsl, deBoor(degree, control, knots, weights, u))
	}
	return rsl
}

type homogeneous struct {
	x, y, w float64
}

func deBoor(p int, control []Point, knots, weights []float64, u float64) Point {
	n := len(control) - 1
	k := p
	for k < n && u >= knots[k+1] {
		k++
	}
	d := make([]homogeneous, p+1)
	for j := 0; j <= p; j++ {
		pt := control[j+k-p]
		w := 1.0
		if weights != nil {
			w = weights[j+k-p]
		}
		d[j] = homogeneous{x: pt.X * w, y: pt.Y * w, w: w}
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			denom := knots[j+1+k-r] - knots[j+k-p]
			alpha := 0.0
			if denom != 0 {
				alpha = (u - knots[j+k-p]) / denom
			}
			d[j] = homogeneous{
				x: (1-alpha)*d[j-1].x + alpha*d[j].x,
				y: (1-alpha)*d[j-1].y + alpha*d[j].y,
				w: (1-alpha)*d[j-1].w + alpha*d[j].w,
			}
		}
	}
	if d[p].w == 0 {
		return Point{X: d[p].x, Y: d[p].y}
	}
	return Point{X: d[p].x / d[p].w, Y: d[p].y / d[p].w}
}
