package dxf

import (
	"math"
	"strings"

	"github.com/investit/dwg2pdf/internal/geom"
)

type LineEdge struct {
	From geom.Point
	To   geom.Point
}

func (e LineEdge) Points() []geom.Point {
	return []geom.Point{e.From, e.To}
}

type ArcEdge struct {
	Center     geom.Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
	CCW        bool
}

func (e ArcEdge) Points() []geom.Point {
	if e.CCW {
		return geom.Arc(e.Center, e.Radius, e.StartAngle, e.EndAngle)
	}
	// Clockwise edges store angles mirrored about the X axis.
	pts := geom.Arc(e.Center, e.Radius, -e.EndAngle, -e.StartAngle)
	reverse(pts)
	return pts
}

type EllipseEdge struct {
	Center     geom.Point
	MajorAxis  geom.Point
	Ratio      float64
	StartAngle float64
	EndAngle   float64
	CCW        bool
}

func (e EllipseEdge) Points() []geom.Point {
	start := e.StartAngle * math.Pi / 180
	end := e.EndAngle * math.Pi / 180
	if !e.CCW {
		start, end = -end, -start
	}
	pts := geom.Ellipse(e.Center, e.MajorAxis, e.Ratio, start, end)
	if !e.CCW {
		reverse(pts)
	}
	return pts
}

type SplineEdge struct {
	Degree  int
	Knots   []float64
	Weights []float64
	Control []geom.Point
	Fit     []geom.Point
}

func (e SplineEdge) Points() []geom.Point {
	if len(e.Control) == 0 {
		return e.Fit
	}
	return geom.BSpline(e.Degree, e.Control, e.Knots, e.Weights)
}

// PolylineEdge is a whole polyline boundary path.
type PolylineEdge struct {
	Vertices []Vertex
	Closed   bool
}

func (e PolylineEdge) Points() []geom.Point {
	return FlattenVertices(e.Vertices, e.Closed)
}

// FlattenVertices resolves bulges into arc points.
func FlattenVertices(vs []Vertex, closed bool) []geom.Point {
	if len(vs) == 0 {
		return nil
	}
	rsl := []geom.Point{vs[0].Point}
	n := len(vs)
	segments := n - 1
	if closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		next := vs[(i+1)%n].Point
		rsl = append(rsl, geom.BulgeArc(vs[i].Point, next, vs[i].Bulge)...)
	}
	return rsl
}

func reverse(pts []geom.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// hatchCursor walks the strictly ordered tags of a HATCH entity.
type hatchCursor struct {
	tags tagList
	pos  int
}

func (c *hatchCursor) done() bool {
	return c.pos >= len(c.tags)
}

// next returns the tag if it carries code, advancing past it.
func (c *hatchCursor) next(code int) (Tag, bool) {
	if c.done() || c.tags[c.pos].Code != code {
		return Tag{}, false
	}
	tag := c.tags[c.pos]
	c.pos++
	return tag, true
}

func (c *hatchCursor) float(code int, def float64) float64 {
	if tag, ok := c.next(code); ok {
		return tag.Float()
	}
	return def
}

func (c *hatchCursor) int(code int, def int) int {
	if tag, ok := c.next(code); ok {
		return tag.Int()
	}
	return def
}

func (c *hatchCursor) point(code int) geom.Point {
	x := c.float(code, 0)
	y := c.float(code+10, 0)
	return geom.Point{X: x, Y: y}
}

// seek advances to the next tag with code, returning false at the end.
func (c *hatchCursor) seek(code int) bool {
	for !c.done() {
		if c.tags[c.pos].Code == code {
			return true
		}
		c.pos++
	}
	return false
}

func buildHatch(a Attrs, t tagList) *Hatch {
	h := &Hatch{
		Attrs:   a,
		Pattern: strings.TrimSpace(t.str(2, "")),
		Solid:   t.int(70, 0)&1 == 1,
		Scale:   1,
	}
	c := &hatchCursor{tags: t}
	if !c.seek(91) {
		return h
	}
	count := c.int(91, 0)
	for i := 0; i < count && !c.done(); i++ {
		if !c.seek(92) {
			break
		}
		flags := c.int(92, 0)
		var path []HatchEdge
		if flags&2 != 0 {
			path = parsePolylinePath(c)
		} else {
			path = parseEdgePath(c)
		}
		if len(path) > 0 {
			h.Paths = append(h.Paths, path)
		}
	}

	// pattern definition follows the boundary data
	rest := tagList(c.tags[c.pos:])
	h.Angle = rest.float(52, 0)
	h.Scale = rest.float(41, 1)
	if !h.Solid {
		h.Families = parsePatternLines(rest)
	}
	return h
}

func parsePolylinePath(c *hatchCursor) []HatchEdge {
	hasBulge := c.int(72, 0) != 0
	closed := c.int(73, 1) != 0
	n := c.int(93, 0)
	e := PolylineEdge{Closed: closed}
	for i := 0; i < n && !c.done(); i++ {
		v := Vertex{Point: c.point(10)}
		if hasBulge {
			v.Bulge = c.float(42, 0)
		}
		e.Vertices = append(e.Vertices, v)
	}
	if len(e.Vertices) < 2 {
		return nil
	}
	return []HatchEdge{e}
}

func parseEdgePath(c *hatchCursor) []HatchEdge {
	n := c.int(93, 0)
	var rsl []HatchEdge
	for i := 0; i < n && !c.done(); i++ {
		switch c.int(72, 0) {
		case 1:
			rsl = append(rsl, LineEdge{From: c.point(10), To: c.point(11)})
		case 2:
			rsl = append(rsl, ArcEdge{
				Center:     c.point(10),
				Radius:     c.float(40, 0),
				StartAngle: c.float(50, 0),
				EndAngle:   c.float(51, 360),
				CCW:        c.int(73, 1) != 0,
			})
		case 3:
			rsl = append(rsl, EllipseEdge{
				Center:     c.point(10),
				MajorAxis:  c.point(11),
				Ratio:      c.float(40, 1),
				StartAngle: c.float(50, 0),
				EndAngle:   c.float(51, 360),
				CCW:        c.int(73, 1) != 0,
			})
		case 4:
			rsl = append(rsl, parseSplineEdge(c))
		default:
			// unknown edge type, the rest of this path cannot be trusted
			return rsl
		}
	}
	return rsl
}

func parseSplineEdge(c *hatchCursor) SplineEdge {
	e := SplineEdge{Degree: c.int(94, 3)}
	rational := c.int(73, 0) != 0
	c.int(74, 0)
	knots := c.int(95, 0)
	controls := c.int(96, 0)
	for i := 0; i < knots; i++ {
		e.Knots = append(e.Knots, c.float(40, 0))
	}
	for i := 0; i < controls; i++ {
		e.Control = append(e.Control, c.point(10))
		if rational {
			e.Weights = append(e.Weights, c.float(42, 1))
		}
	}
	if fit := c.int(97, 0); fit > 0 {
		for i := 0; i < fit; i++ {
			e.Fit = append(e.Fit, c.point(11))
		}
		// start and end tangents
		c.point(12)
		c.point(13)
	}
	return e
}

// parsePatternLines reads the line families (group 53 starts each family).
func parsePatternLines(t tagList) []PatternLine {
	var rsl []PatternLine
	var cur *PatternLine
	for _, tag := range t {
		switch tag.Code {
		case 53:
			rsl = append(rsl, PatternLine{Angle: tag.Float()})
			cur = &rsl[len(rsl)-1]
		case 43:
			if cur != nil {
				cur.Base.X = tag.Float()
			}
		case 44:
			if cur != nil {
				cur.Base.Y = tag.Float()
			}
		case 45:
			if cur != nil {
				cur.Offset.X = tag.Float()
			}
		case 46:
			if cur != nil {
				cur.Offset.Y = tag.Float()
			}
		case 49:
			if cur != nil {
				cur.Dashes = append(cur.Dashes, tag.Float())
			}
		case 98:
			// seed points close the pattern data
			return rsl
		}
	}
	return rsl
}
