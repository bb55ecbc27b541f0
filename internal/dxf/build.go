package dxf

import (
	"math"
	"strings"

	"github.com/investit/dwg2pdf/internal/geom"
)

func parseAttrs(t tagList) Attrs {
	a := defaultAttrs(strings.ToUpper(strings.TrimSpace(t[0].Value)))
	a.Handle = t.str(5, "")
	a.Layer = strings.TrimSpace(t.str(8, "0"))
	a.Color = t.int(62, ColorByLayer)
	a.TrueColor = t.int(420, -1)
	a.LineWeight = t.int(370, LineWeightByLayer)
	a.Invisible = t.int(60, 0) == 1
	a.PaperSpace = t.int(67, 0) == 1
	a.Extrusion = t.float(230, 1)
	return a
}

// buildEntity converts the tags of one entity. ok is false for entity types
// that are not drawn.
func buildEntity(t tagList) (e Entity, ok bool) {
	t = t.stripped()
	a := parseAttrs(t)
	switch a.Type {
	case "LINE":
		return &Line{Attrs: a, Start: t.point(10), End: t.point(11)}, true
	case "POINT":
		return &Point{Attrs: a, At: t.point(10)}, true
	case "CIRCLE":
		return &Circle{Attrs: a, Center: t.point(10), Radius: t.float(40, 0)}, true
	case "ARC":
		return &Arc{
			Attrs:      a,
			Center:     t.point(10),
			Radius:     t.float(40, 0),
			StartAngle: t.float(50, 0),
			EndAngle:   t.float(51, 360),
		}, true
	case "ELLIPSE":
		return &Ellipse{
			Attrs:      a,
			Center:     t.point(10),
			MajorAxis:  t.point(11),
			Ratio:      t.float(40, 1),
			StartParam: t.float(41, 0),
			EndParam:   t.float(42, 2*math.Pi),
		}, true
	case "LWPOLYLINE":
		return buildLWPolyline(a, t), true
	case "SPLINE":
		return buildSpline(a, t), true
	case "TEXT":
		return buildText(a, t, 73), true
	case "ATTRIB":
		if t.int(70, 0)&1 == 1 {
			a.Invisible = true
		}
		return buildText(a, t, 74), true
	case "MTEXT":
		return buildMText(a, t), true
	case "SOLID", "TRACE":
		c := [4]geom.Point{t.point(10), t.point(11), t.point(12), t.point(12)}
		if t.has(13) {
			c[3] = t.point(13)
		}
		return &Solid{Attrs: a, Corners: []geom.Point{c[0], c[1], c[3], c[2]}, Filled: true}, true
	case "3DFACE":
		c := []geom.Point{t.point(10), t.point(11), t.point(12)}
		if t.has(13) {
			c = append(c, t.point(13))
		}
		return &Solid{Attrs: a, Corners: c}, true
	case "INSERT":
		return &Insert{
			Attrs:      a,
			Block:      strings.TrimSpace(t.str(2, "")),
			At:         t.point(10),
			ScaleX:     t.float(41, 1),
			ScaleY:     t.float(42, 1),
			Rotation:   t.float(50, 0),
			Columns:    max(1, t.int(70, 1)),
			Rows:       max(1, t.int(71, 1)),
			ColSpacing: t.float(44, 0),
			RowSpacing: t.float(45, 0),
		}, true
	case "DIMENSION", "ARC_DIMENSION", "LARGE_RADIAL_DIMENSION":
		return &Dimension{Attrs: a, Block: strings.TrimSpace(t.str(2, ""))}, true
	case "LEADER":
		return &Leader{Attrs: a, Vertices: t.points(10)}, true
	case "HATCH":
		return buildHatch(a, t), true
	}
	return nil, false
}

func buildLWPolyline(a Attrs, t tagList) *Polyline {
	p := &Polyline{
		Attrs:      a,
		Closed:     t.int(70, 0)&1 == 1,
		ConstWidth: t.float(43, 0),
	}
	for _, tag := range t {
		n := len(p.Vertices)
		switch tag.Code {
		case 10:
			p.Vertices = append(p.Vertices, Vertex{Point: geom.Point{X: tag.Float()}})
		case 20:
			if n > 0 {
				p.Vertices[n-1].Y = tag.Float()
			}
		case 40:
			if n > 0 {
				p.Vertices[n-1].StartWidth = tag.Float()
			}
		case 41:
			if n > 0 {
				p.Vertices[n-1].EndWidth = tag.Float()
			}
		case 42:
			if n > 0 {
				p.Vertices[n-1].Bulge = tag.Float()
			}
		}
	}
	return p
}

// buildPolyline joins a POLYLINE header with its VERTEX entities. Polyface
// and polygon meshes are not supported.
func buildPolyline(header tagList, vertices []tagList) (*Polyline, bool) {
	header = header.stripped()
	flags := header.int(70, 0)
	if flags&(16|64) != 0 {
		return nil, false
	}
	p := &Polyline{
		Attrs:      parseAttrs(header),
		Closed:     flags&1 == 1,
		ConstWidth: header.float(40, 0),
	}
	for _, v := range vertices {
		v = v.stripped()
		vflags := v.int(70, 0)
		// spline frame control points
		if vflags&16 != 0 {
			continue
		}
		p.Vertices = append(p.Vertices, Vertex{
			Point:      v.point(10),
			Bulge:      v.float(42, 0),
			StartWidth: v.float(40, 0),
			EndWidth:   v.float(41, 0),
		})
	}
	return p, true
}

func buildSpline(a Attrs, t tagList) *Spline {
	s := &Spline{
		Attrs:     a,
		Degree:    t.int(71, 3),
		Closed:    t.int(70, 0)&1 == 1,
		Control:   t.points(10),
		FitPoints: t.points(11),
	}
	for _, k := range t.all(40) {
		s.Knots = append(s.Knots, k.Float())
	}
	for _, w := range t.all(41) {
		s.Weights = append(s.Weights, w.Float())
	}
	return s
}

func buildText(a Attrs, t tagList, valignCode int) *Text {
	return &Text{
		Attrs:       a,
		Insert:      t.point(10),
		Align:       t.point(11),
		HasAlign:    t.has(11),
		Height:      t.float(40, 1),
		Rotation:    t.float(50, 0),
		WidthFactor: t.float(41, 1),
		Value:       t.str(1, ""),
		HAlign:      t.int(72, AlignLeft),
		VAlign:      t.int(valignCode, VAlignBaseline),
	}
}

func buildMText(a Attrs, t tagList) *MText {
	var value strings.Builder
	for _, chunk := range t.all(3) {
		value.WriteString(chunk.Value)
	}
	value.WriteString(t.str(1, ""))
	attach := t.int(71, defaultMTextAttach)
	if attach < AttachTopLeft || attach > AttachBottomRight {
		attach = defaultMTextAttach
	}
	return &MText{
		Attrs:       a,
		Insert:      t.point(10),
		Height:      t.float(40, 1),
		Width:       t.float(41, 0),
		Rotation:    t.float(50, 0),
		Direction:   t.point(11),
		HasDir:      t.has(11),
		Attachment:  attach,
		LineSpacing: t.float(44, 1),
		Value:       value.String(),
	}
}
