package dxf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investit/dwg2pdf/internal/geom"
)

const hatchEntity = `
	0 HATCH
	5 30
	100 AcDbEntity
	8 0
	62 5
	100 AcDbHatch
	10 0
	20 0
	30 0
	210 0
	220 0
	230 1
	2 ANSI31
	70 0
	71 0
	91 2
	92 3
	72 0
	73 1
	93 4
	10 0
	20 0
	10 10
	20 0
	10 10
	20 10
	10 0
	20 10
	97 0
	92 0
	93 2
	72 1
	10 2
	20 2
	11 4
	21 2
	72 2
	10 3
	20 3
	40 1
	50 0
	51 180
	73 1
	97 0
	75 1
	76 1
	52 0
	41 1
	77 0
	78 1
	53 45
	43 0
	44 0
	45 -2.5
	46 2.5
	79 0
	98 1
	10 5
	20 5`

func buildFrom(t *testing.T, src string) Entity {
	t.Helper()
	tags, _, err := ReadTags(dxfSource(src))
	require.NoError(t, err)
	e, ok := buildEntity(tagList(tags))
	require.True(t, ok)
	return e
}

func TestBuildHatch(t *testing.T) {
	h := buildFrom(t, hatchEntity).(*Hatch)
	assert.Equal(t, "ANSI31", h.Pattern)
	assert.False(t, h.Solid)
	assert.Equal(t, 5, h.Color)
	assert.Equal(t, 1.0, h.Scale)
	require.Len(t, h.Paths, 2)

	outer := h.Paths[0]
	require.Len(t, outer, 1)
	poly := outer[0].(PolylineEdge)
	assert.True(t, poly.Closed)
	assert.Len(t, poly.Vertices, 4)
	pts := poly.Points()
	assert.Len(t, pts, 5)
	assert.Equal(t, pts[0], pts[4])

	inner := h.Paths[1]
	require.Len(t, inner, 2)
	assert.Equal(t, LineEdge{From: geom.Point{X: 2, Y: 2}, To: geom.Point{X: 4, Y: 2}}, inner[0])
	arc := inner[1].(ArcEdge)
	assert.Equal(t, 1.0, arc.Radius)
	assert.True(t, arc.CCW)

	require.Len(t, h.Families, 1)
	assert.Equal(t, 45.0, h.Families[0].Angle)
	assert.Equal(t, geom.Point{X: -2.5, Y: 2.5}, h.Families[0].Offset)
	assert.Empty(t, h.Families[0].Dashes)
}

func TestBuildSolidHatch(t *testing.T) {
	h := buildFrom(t, `
		0 HATCH
		8 0
		2 SOLID
		70 1
		91 1
		92 1
		93 3
		72 1
		10 0
		20 0
		11 1
		21 0
		72 1
		10 1
		20 0
		11 0
		21 1
		72 1
		10 0
		20 1
		11 0
		21 0
		97 0
		75 0
		76 1
		98 0`).(*Hatch)
	assert.True(t, h.Solid)
	require.Len(t, h.Paths, 1)
	assert.Len(t, h.Paths[0], 3)
	assert.Empty(t, h.Families)
}

func TestClockwiseArcEdge(t *testing.T) {
	e := ArcEdge{Center: geom.Point{}, Radius: 1, StartAngle: 0, EndAngle: 90, CCW: false}
	pts := e.Points()
	// runs clockwise from 0° to -90°
	assert.InDelta(t, 1, pts[0].X, 1e-9)
	assert.InDelta(t, 0, pts[0].Y, 1e-9)
	last := pts[len(pts)-1]
	assert.InDelta(t, 0, last.X, 1e-9)
	assert.InDelta(t, -1, last.Y, 1e-9)
}

func TestFlattenVertices(t *testing.T) {
	vs := []Vertex{{Point: geom.Point{}}, {Point: geom.Point{X: 2}}}
	assert.Equal(t, []geom.Point{{}, {X: 2}}, FlattenVertices(vs, false))

	vs[0].Bulge = 1
	pts := FlattenVertices(vs, false)
	assert.Greater(t, len(pts), 3)
	assert.Equal(t, geom.Point{X: 2}, pts[len(pts)-1])
	assert.Nil(t, FlattenVertices(nil, true))
}

func TestBuildSolidCornerOrder(t *testing.T) {
	s := buildFrom(t, `
		0 SOLID
		8 0
		10 0
		20 0
		11 1
		21 0
		12 0
		22 1
		13 1
		23 1`).(*Solid)
	assert.Equal(t, []geom.Point{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}, s.Corners)
	assert.True(t, s.Filled)
}

func TestBuildMTextAndText(t *testing.T) {
	m := buildFrom(t, `
		0 MTEXT
		8 Notes
		10 1
		20 2
		40 3
		71 12
		3 first \P
		1 second`).(*MText)
	assert.Equal(t, `first \Psecond`, m.Value)
	assert.Equal(t, AttachTopLeft, m.Attachment)
	assert.Equal(t, "Notes", m.Layer)

	txt := buildFrom(t, `
		0 TEXT
		8 0
		10 1
		20 1
		40 2
		1 label
		72 1
		11 5
		21 1
		73 2`).(*Text)
	assert.Equal(t, AlignCenter, txt.HAlign)
	assert.Equal(t, VAlignMiddle, txt.VAlign)
	assert.True(t, txt.HasAlign)
	assert.Equal(t, geom.Point{X: 5, Y: 1}, txt.Align)
}
