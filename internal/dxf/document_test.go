package dxf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investit/dwg2pdf/internal/geom"
)

const headerSection = `
	0 SECTION
	2 HEADER
	9 $ACADVER
	1 AC1027
	9 $DWGCODEPAGE
	3 ANSI_1251
	9 $INSUNITS
	70 4
	9 $EXTMIN
	10 -1
	20 -2
	30 0
	0 ENDSEC`

const tablesSection = `
	0 SECTION
	2 TABLES
	0 TABLE
	2 LAYER
	0 LAYER
	2 Walls
	70 0
	62 3
	370 50
	0 LAYER
	2 Hidden
	70 0
	62 -5
	0 LAYER
	2 Frozen
	70 1
	62 1
	0 LAYER
	2 Defpoints
	70 0
	62 7
	290 0
	0 ENDTAB
	0 TABLE
	2 BLOCK_RECORD
	0 BLOCK_RECORD
	5 1F
	102 {ACAD_XDICTIONARY
	360 99
	102 }
	2 *Model_Space
	0 BLOCK_RECORD
	5 1E
	2 *Paper_Space
	0 BLOCK_RECORD
	5 2A
	2 *Paper_Space0
	0 ENDTAB
	0 ENDSEC`

const blocksSection = `
	0 SECTION
	2 BLOCKS
	0 BLOCK
	8 0
	2 DOOR
	70 0
	10 1
	20 2
	0 LINE
	8 0
	10 0
	20 0
	11 1
	21 1
	0 ENDBLK
	0 BLOCK
	2 *Paper_Space0
	10 0
	20 0
	0 CIRCLE
	8 0
	10 5
	20 5
	40 2
	0 ENDBLK
	0 ENDSEC`

const entitiesSection = `
	0 SECTION
	2 ENTITIES
	0 LINE
	5 100
	8 Walls
	10 0
	20 0
	11 10
	21 0
	0 LWPOLYLINE
	8 Walls
	90 3
	70 1
	10 0
	20 0
	10 10
	20 0
	42 1
	10 10
	20 10
	0 POLYLINE
	8 0
	66 1
	70 0
	0 VERTEX
	10 1
	20 1
	0 VERTEX
	10 2
	20 2
	42 0.5
	0 SEQEND
	0 INSERT
	8 0
	66 1
	2 DOOR
	10 3
	20 4
	41 2
	50 90
	0 ATTRIB
	8 0
	1 D-01
	2 TAG
	40 0.5
	10 3
	20 4
	0 SEQEND
	0 VIEWPORT
	8 0
	0 LINE
	8 0
	67 1
	10 0
	20 0
	11 1
	21 1
	0 ENDSEC`

const objectsSection = `
	0 SECTION
	2 OBJECTS
	0 LAYOUT
	5 22
	100 AcDbPlotSettings
	1 Setup
	100 AcDbLayout
	1 Model
	70 1
	71 0
	330 1F
	0 LAYOUT
	5 23
	100 AcDbPlotSettings
	1 Setup
	100 AcDbLayout
	1 Sheet B
	71 2
	330 2A
	0 LAYOUT
	5 24
	100 AcDbPlotSettings
	100 AcDbLayout
	1 Sheet A
	71 1
	330 1E
	0 ENDSEC`

func sampleDrawing() []byte {
	return dxfSource(headerSection + tablesSection + blocksSection + entitiesSection + objectsSection + "\n0 EOF")
}

func TestReadHeader(t *testing.T) {
	doc, err := Read(sampleDrawing())
	require.NoError(t, err)
	assert.Equal(t, Header{
		Version:  "AC1027",
		CodePage: "ANSI_1251",
		InsUnits: 4,
		ExtMin:   geom.Point{X: -1, Y: -2},
	}, doc.Header)
}

func TestReadLayers(t *testing.T) {
	doc, err := Read(sampleDrawing())
	require.NoError(t, err)

	walls := doc.Layer("WALLS")
	assert.Equal(t, "Walls", walls.Name)
	assert.Equal(t, 3, walls.Color)
	assert.Equal(t, 50, walls.LineWeight)
	assert.True(t, walls.Visible())

	hidden := doc.Layer("Hidden")
	assert.True(t, hidden.Off)
	assert.Equal(t, 5, hidden.Color)
	assert.False(t, hidden.Visible())

	assert.True(t, doc.Layer("Frozen").Frozen)
	assert.False(t, doc.Layer("Defpoints").Visible())

	missing := doc.Layer("Nope")
	assert.Equal(t, "Nope", missing.Name)
	assert.Equal(t, ColorForeground, missing.Color)
	assert.True(t, missing.Visible())
}

func TestReadBlocks(t *testing.T) {
	doc, err := Read(sampleDrawing())
	require.NoError(t, err)

	door, ok := doc.Block("door")
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 1, Y: 2}, door.Base)
	require.Len(t, door.Entities, 1)
	assert.IsType(t, &Line{}, door.Entities[0])

	_, ok = doc.Block("WINDOW")
	assert.False(t, ok)
}

func TestReadModelspace(t *testing.T) {
	doc, err := Read(sampleDrawing())
	require.NoError(t, err)

	model := doc.Modelspace()
	assert.Equal(t, ModelLayoutName, model.Name)
	require.Len(t, model.Entities, 4)

	line := model.Entities[0].(*Line)
	assert.Equal(t, "100", line.Handle)
	assert.Equal(t, "Walls", line.Layer)
	assert.Equal(t, ColorByLayer, line.Color)

	lw := model.Entities[1].(*Polyline)
	assert.True(t, lw.Closed)
	want := []Vertex{
		{Point: geom.Point{}},
		{Point: geom.Point{X: 10}, Bulge: 1},
		{Point: geom.Point{X: 10, Y: 10}},
	}
	if diff := cmp.Diff(want, lw.Vertices); diff != "" {
		t.Errorf("LWPOLYLINE vertices mismatch (-want +got):\n%s", diff)
	}

	pl := model.Entities[2].(*Polyline)
	require.Len(t, pl.Vertices, 2)
	assert.Equal(t, 0.5, pl.Vertices[1].Bulge)

	ins := model.Entities[3].(*Insert)
	assert.Equal(t, "DOOR", ins.Block)
	assert.Equal(t, 2.0, ins.ScaleX)
	assert.Equal(t, 1.0, ins.ScaleY)
	assert.Equal(t, 90.0, ins.Rotation)
	assert.Equal(t, 1, ins.Columns)
	require.Len(t, ins.Attribs, 1)
	assert.Equal(t, "D-01", ins.Attribs[0].Value)

	assert.Contains(t, doc.Warnings, "skipped 1 unsupported VIEWPORT entities")
}

func TestReadLayoutsInTabOrder(t *testing.T) {
	doc, err := Read(sampleDrawing())
	require.NoError(t, err)

	names := make([]string, len(doc.Layouts))
	for i, l := range doc.Layouts {
		names[i] = l.Name
	}
	assert.Equal(t, []string{"Model", "Sheet A", "Sheet B"}, names)

	paper := doc.PaperspaceLayouts()
	require.Len(t, paper, 2)
	require.Len(t, paper[0].Entities, 1)
	assert.True(t, paper[0].Entities[0].Common().PaperSpace)
	require.Len(t, paper[1].Entities, 1)
	assert.IsType(t, &Circle{}, paper[1].Entities[0])
}

func TestReadWithoutLayoutObjects(t *testing.T) {
	doc, err := Read(dxfSource(entitiesSection + "\n0 EOF"))
	require.NoError(t, err)
	require.Len(t, doc.Layouts, 2)
	assert.Equal(t, "Layout1", doc.Layouts[1].Name)
	assert.Len(t, doc.Layouts[1].Entities, 1)
	// INSERT of an undefined block is still loaded
	assert.Len(t, doc.Modelspace().Entities, 4)
}

func TestReadDecodesCodepage(t *testing.T) {
	src := headerSection + `
		0 SECTION
		2 ENTITIES
		0 TEXT
		8 0
		10 0
		20 0
		40 2.5
		1 ` + "\xcf\xf0\xe8" + `
		0 ENDSEC
		0 EOF`
	doc, err := Read(dxfSource(src))
	require.NoError(t, err)
	require.Len(t, doc.Modelspace().Entities, 1)
	text := doc.Modelspace().Entities[0].(*Text)
	assert.Equal(t, "При", text.Value)
	assert.Equal(t, 2.5, text.Height)
}

func TestReadToleratesMissingEOF(t *testing.T) {
	src := `
		0 SECTION
		2 ENTITIES
		0 CIRCLE
		8 0
		10 1
		20 1
		40 3`
	doc, err := Read(dxfSource(src))
	require.NoError(t, err)
	require.Len(t, doc.Modelspace().Entities, 1)
	assert.Equal(t, 3.0, doc.Modelspace().Entities[0].(*Circle).Radius)
	assert.Contains(t, doc.Warnings, "section ENTITIES not closed")
	assert.Contains(t, doc.Warnings, "missing EOF marker, file may be truncated")
}

func TestReadRejectsNonDXF(t *testing.T) {
	_, err := Read([]byte("  0\nLINE\n  8\n0\n"))
	assert.Error(t, err)
	_, err = Read([]byte("not a drawing"))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	require.NoError(t, os.WriteFile(path, sampleDrawing(), 0o644))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Layouts, 3)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.dxf"))
	assert.Error(t, err)
}
