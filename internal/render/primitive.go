package render

import (
	"math"

	"github.com/investit/dwg2pdf/internal/dxf"
	"github.com/investit/dwg2pdf/internal/geom"
)

// Style is the resolved appearance of a primitive.
type Style struct {
	Color dxf.RGB
	// Width is the stroke width in mm on paper.
	Width float64
}

// Primitive is a drawable shape in drawing units.
type Primitive interface {
	Bounds() geom.Box
}

type Path struct {
	Style
	Points []geom.Point
	Closed bool
	// WorldWidth is a stroke width in drawing units (wide polylines). It
	// wins over Style.Width when it maps to a wider stroke.
	WorldWidth float64
}

func (p *Path) Bounds() geom.Box {
	b := geom.BoxOf(p.Points...)
	if p.WorldWidth > 0 && !b.IsEmpty() {
		half := geom.Point{X: p.WorldWidth / 2, Y: p.WorldWidth / 2}
		b = b.Extend(b.Min.Sub(half)).Extend(b.Max.Add(half))
	}
	return b
}

// Fill is an even-odd filled area.
type Fill struct {
	Style
	Rings [][]geom.Point
}

func (f *Fill) Bounds() geom.Box {
	var b geom.Box
	for _, r := range f.Rings {
		b = b.Union(geom.BoxOf(r...))
	}
	return b
}

type Dot struct {
	Style
	At geom.Point
}

func (d *Dot) Bounds() geom.Box {
	return geom.BoxOf(d.At)
}

// Label is a single line of text. At is the left end of the baseline,
// Height the cap height and Width the advance, all in drawing units.
type Label struct {
	Style
	Text        string
	At          geom.Point
	Height      float64
	Width       float64
	Rotation    float64
	WidthFactor float64
}

func (l *Label) Bounds() geom.Box {
	rad := l.Rotation * math.Pi / 180
	dir := geom.Point{X: math.Cos(rad), Y: math.Sin(rad)}
	up := geom.Point{X: -dir.Y, Y: dir.X}
	descent := up.Scale(-0.3 * l.Height)
	return geom.BoxOf(
		l.At.Add(descent),
		l.At.Add(dir.Scale(l.Width)).Add(descent),
		l.At.Add(up.Scale(l.Height)),
		l.At.Add(dir.Scale(l.Width)).Add(up.Scale(l.Height)),
	)
}

// Scene is a rendered layout.
type Scene struct {
	Layout     string
	Primitives []Primitive
	Extents    geom.Box
}

func (s *Scene) add(p Primitive) {
	s.Primitives = append(s.Primitives, p)
	s.Extents = s.Extents.Union(p.Bounds())
}
