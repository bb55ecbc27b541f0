package dxf

import "github.com/investit/dwg2pdf/internal/geom"

const (
	LineWeightByLayer = -1
	LineWeightByBlock = -2
	LineWeightDefault = -3
)

// Attrs are the attributes shared by all graphical entities.
type Attrs struct {
	Type       string
	Handle     string
	Layer      string
	Color      int
	TrueColor  int // -1 when unset
	LineWeight int // 1/100 mm or one of the LineWeight* constants
	Invisible  bool
	PaperSpace bool
	// Extrusion Z below zero mirrors the entity's OCS along X.
	Extrusion float64
}

func defaultAttrs(typ string) Attrs {
	return Attrs{
		Type:       typ,
		Layer:      "0",
		Color:      ColorByLayer,
		TrueColor:  -1,
		LineWeight: LineWeightByLayer,
		Extrusion:  1,
	}
}

// Entity is a graphical DXF entity.
type Entity interface {
	Common() *Attrs
}

func (a *Attrs) Common() *Attrs { return a }

type Line struct {
	Attrs
	Start geom.Point
	End   geom.Point
}

type Point struct {
	Attrs
	At geom.Point
}

type Circle struct {
	Attrs
	Center geom.Point
	Radius float64
}

// Arc angles are in degrees, counter-clockwise.
type Arc struct {
	Attrs
	Center     geom.Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

// Ellipse params are in radians. MajorAxis is relative to Center.
type Ellipse struct {
	Attrs
	Center     geom.Point
	MajorAxis  geom.Point
	Ratio      float64
	StartParam float64
	EndParam   float64
}

type Vertex struct {
	geom.Point
	Bulge      float64
	StartWidth float64
	EndWidth   float64
}

// Polyline covers LWPOLYLINE and 2D POLYLINE entities.
type Polyline struct {
	Attrs
	Vertices   []Vertex
	Closed     bool
	ConstWidth float64
}

type Spline struct {
	Attrs
	Degree    int
	Closed    bool
	Knots     []float64
	Weights   []float64
	Control   []geom.Point
	FitPoints []geom.Point
}

// Text alignment codes of TEXT/ATTRIB (groups 72 and 73).
const (
	AlignLeft    = 0
	AlignCenter  = 1
	AlignRight   = 2
	AlignAligned = 3
	AlignMiddle  = 4
	AlignFit     = 5

	VAlignBaseline = 0
	VAlignBottom   = 1
	VAlignMiddle   = 2
	VAlignTop      = 3
)

// Text covers TEXT and ATTRIB.
type Text struct {
	Attrs
	Insert      geom.Point
	Align       geom.Point
	HasAlign    bool
	Height      float64
	Rotation    float64
	WidthFactor float64
	Value       string
	HAlign      int
	VAlign      int
}

// MText attachment points (group 71), 1 = top left ... 9 = bottom right.
const (
	AttachTopLeft      = 1
	AttachBottomRight  = 9
	defaultMTextAttach = AttachTopLeft
)

type MText struct {
	Attrs
	Insert      geom.Point
	Height      float64
	Width       float64
	Rotation    float64
	Direction   geom.Point
	HasDir      bool
	Attachment  int
	LineSpacing float64
	Value       string
}

// Solid covers SOLID, TRACE and 3DFACE. Corners are in drawing order, i.e.
// the SOLID "bow tie" quirk is already resolved.
type Solid struct {
	Attrs
	Corners []geom.Point
	Filled  bool
}

type Insert struct {
	Attrs
	Block      string
	At         geom.Point
	ScaleX     float64
	ScaleY     float64
	Rotation   float64
	Columns    int
	Rows       int
	ColSpacing float64
	RowSpacing float64
	Attribs    []*Text
}

// Dimension is rendered through the anonymous block holding its geometry.
type Dimension struct {
	Attrs
	Block string
}

type Leader struct {
	Attrs
	Vertices []geom.Point
}

// HatchEdge is one boundary edge: a line, circular or elliptic arc or spline.
type HatchEdge interface {
	Points() []geom.Point
}

type Hatch struct {
	Attrs
	Pattern   string
	Solid     bool
	Paths     [][]HatchEdge
	Scale     float64
	Angle     float64
	Families  []PatternLine
	Elevation float64
}

// PatternLine is one line family of a hatch pattern.
type PatternLine struct {
	Angle  float64
	Base   geom.Point
	Offset geom.Point
	Dashes []float64
}
