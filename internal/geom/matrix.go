package geom

import "math"

// Matrix is a 2D affine transform:
//
//	⎡ A  C  E ⎤
//	⎢ B  D  F ⎥
//	⎣ 0  0  1 ⎦
type Matrix struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

var Identity = Matrix{A: 1, D: 1}

func Translate(x, y float64) Matrix {
	return Matrix{A: 1, D: 1, E: x, F: y}
}

func Scale(x, y float64) Matrix {
	return Matrix{A: x, D: y}
}

// Rotate rotates counter-clockwise around the origin by deg degrees.
func Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Multiply returns m·other, i.e. other is applied first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyVector transforms a direction, ignoring the translation part.
func (m Matrix) ApplyVector(v Point) Point {
	return Point{
		X: m.A*v.X + m.C*v.Y,
		Y: m.B*v.X + m.D*v.Y,
	}
}

func (m Matrix) ApplyAll(pts []Point) []Point {
	rsl := make([]Point, len(pts))
	for i, p := range pts {
		rsl[i] = m.Apply(p)
	}
	return rsl
}

func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// IsMirror reports whether the transform flips orientation.
func (m Matrix) IsMirror() bool {
	return m.Determinant() < 0
}
