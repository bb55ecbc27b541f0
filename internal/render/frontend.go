package render

import (
	"fmt"
	"math"

	"github.com/flanksource/commons/logger"

	"github.com/investit/dwg2pdf/internal/dxf"
	"github.com/investit/dwg2pdf/internal/geom"
)

// TextMeasurer returns the advance of s set at the given cap height, in the
// unit of height.
type TextMeasurer interface {
	TextWidth(s string, height float64) float64
}

const (
	maxInsertDepth = 32
	// maxInsertCopies bounds the instances of a single MINSERT.
	maxInsertCopies = 10000
	// defaultLineWeight is in 1/100 mm.
	defaultLineWeight = 25
	hatchLineLimit    = 10000
	// lineSpacingFactor converts cap height to MTEXT baseline distance.
	lineSpacingFactor = 5.0 / 3.0
	// descentFactor approximates the descender depth relative to cap height.
	descentFactor = 0.3
)

// Frontend turns the entities of a layout into a Scene.
type Frontend struct {
	doc      *dxf.Document
	opts     Options
	measure  TextMeasurer
	scene    *Scene
	warned   map[string]bool
	Warnings []string
}

// drawContext carries what an INSERT passes on to its block's entities.
type drawContext struct {
	m geom.Matrix
	// layer replaces layer "0" inside blocks, nil at the top level.
	layer      *dxf.Layer
	blockColor dxf.RGB
	blockWidth float64
	depth      int
}

func NewFrontend(doc *dxf.Document, opts Options, measure TextMeasurer) *Frontend {
	return &Frontend{
		doc:     doc,
		opts:    opts,
		measure: measure,
		warned:  map[string]bool{},
	}
}

func (f *Frontend) DrawLayout(layout *dxf.Layout) *Scene {
	f.scene = &Scene{Layout: layout.Name}
	ctx := drawContext{
		m:          geom.Identity,
		blockColor: dxf.Black,
		blockWidth: lineWeightMM(defaultLineWeight),
	}
	for _, e := range layout.Entities {
		f.drawEntity(ctx, e)
	}
	logger.Debugf("layout %s: %d primitives", layout.Name, len(f.scene.Primitives))
	return f.scene
}

func (f *Frontend) warnOnce(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if f.warned[msg] {
		return
	}
	f.warned[msg] = true
	f.Warnings = append(f.Warnings, msg)
	logger.Debugf("%s", msg)
}

// resolve applies layer inheritance and returns the entity's effective layer
// and style. ok is false for hidden entities.
func (f *Frontend) resolve(ctx drawContext, a *dxf.Attrs) (layer *dxf.Layer, style Style, ok bool) {
	layer = f.doc.Layer(a.Layer)
	if a.Layer == "0" && ctx.layer != nil {
		layer = ctx.layer
	}
	if a.Invisible || !layer.Visible() {
		return layer, Style{}, false
	}
	return layer, Style{Color: f.color(ctx, a, layer), Width: lineWidth(ctx, a, layer)}, true
}

func (f *Frontend) color(ctx drawContext, a *dxf.Attrs, layer *dxf.Layer) dxf.RGB {
	if f.opts.Color == ColorBlack {
		return dxf.Black
	}
	switch a.Color {
	case dxf.ColorByLayer:
		if layer.TrueColor >= 0 {
			return dxf.TrueColor(layer.TrueColor)
		}
		return paperACI(layer.Color)
	case dxf.ColorByBlock:
		return ctx.blockColor
	}
	if a.TrueColor >= 0 {
		return dxf.TrueColor(a.TrueColor)
	}
	return paperACI(a.Color)
}

// paperACI prints the foreground color black.
func paperACI(index int) dxf.RGB {
	if index < 1 || index > 255 || index == dxf.ColorForeground {
		return dxf.Black
	}
	return dxf.ACI(index)
}

func lineWidth(ctx drawContext, a *dxf.Attrs, layer *dxf.Layer) float64 {
	lw := a.LineWeight
	switch lw {
	case dxf.LineWeightByBlock:
		return ctx.blockWidth
	case dxf.LineWeightByLayer:
		lw = layer.LineWeight
	}
	if lw < 0 {
		lw = defaultLineWeight
	}
	return lineWeightMM(lw)
}

func lineWeightMM(lw int) float64 {
	if lw == 0 {
		return 0.05
	}
	return float64(lw) / 100
}

// ocs applies the mirroring of entities whose extrusion points down.
func ocs(m geom.Matrix, a *dxf.Attrs) geom.Matrix {
	if a.Extrusion < 0 {
		return m.Multiply(geom.Scale(-1, 1))
	}
	return m
}

func (f *Frontend) drawEntity(ctx drawContext, e dxf.Entity) {
	a := e.Common()
	layer, style, ok := f.resolve(ctx, a)
	if !ok {
		return
	}
	m := ctx.m
	switch e := e.(type) {
	case *dxf.Line:
		f.path(style, m.ApplyAll([]geom.Point{e.Start, e.End}), false, 0)
	case *dxf.Point:
		f.scene.add(&Dot{Style: style, At: m.Apply(e.At)})
	case *dxf.Circle:
		if e.Radius > 0 {
			f.path(style, ocs(m, a).ApplyAll(geom.Circle(e.Center, e.Radius)), true, 0)
		}
	case *dxf.Arc:
		if e.Radius > 0 {
			f.path(style, ocs(m, a).ApplyAll(geom.Arc(e.Center, e.Radius, e.StartAngle, e.EndAngle)), false, 0)
		}
	case *dxf.Ellipse:
		pts := geom.Ellipse(e.Center, e.MajorAxis, e.Ratio, e.StartParam, e.EndParam)
		f.path(style, m.ApplyAll(pts), false, 0)
	case *dxf.Polyline:
		f.drawPolyline(ocs(m, a), style, e)
	case *dxf.Spline:
		pts := e.FitPoints
		if len(e.Control) >= 2 {
			pts = geom.BSpline(e.Degree, e.Control, e.Knots, e.Weights)
		}
		f.path(style, m.ApplyAll(pts), false, 0)
	case *dxf.Text:
		f.drawText(ocs(m, a), style, e)
	case *dxf.MText:
		f.drawMText(m, style, e)
	case *dxf.Solid:
		pts := ocs(m, a).ApplyAll(e.Corners)
		if e.Filled {
			f.scene.add(&Fill{Style: style, Rings: [][]geom.Point{pts}})
		} else {
			f.path(style, pts, true, 0)
		}
	case *dxf.Insert:
		f.drawInsert(ctx, layer, style, e)
	case *dxf.Dimension:
		// dimension blocks hold their geometry in world coordinates
		if block, ok := f.doc.Block(e.Block); ok {
			f.drawBlock(ctx, layer, style, block, m)
		}
	case *dxf.Leader:
		f.path(style, m.ApplyAll(e.Vertices), false, 0)
	case *dxf.Hatch:
		f.drawHatch(ocs(m, a), style, e)
	}
}

func (f *Frontend) path(style Style, pts []geom.Point, closed bool, worldWidth float64) {
	if len(pts) < 2 {
		return
	}
	f.scene.add(&Path{Style: style, Points: pts, Closed: closed, WorldWidth: worldWidth})
}

func (f *Frontend) drawPolyline(m geom.Matrix, style Style, p *dxf.Polyline) {
	pts := dxf.FlattenVertices(p.Vertices, p.Closed)
	if len(pts) == 1 {
		f.scene.add(&Dot{Style: style, At: m.Apply(pts[0])})
		return
	}
	width := p.ConstWidth
	if width == 0 {
		for _, v := range p.Vertices {
			width = max(width, v.StartWidth, v.EndWidth)
		}
	}
	if width > 0 {
		width *= math.Sqrt(math.Abs(m.Determinant()))
	}
	f.path(style, m.ApplyAll(pts), p.Closed, width)
}

func (f *Frontend) drawInsert(ctx drawContext, layer *dxf.Layer, style Style, ins *dxf.Insert) {
	defer func() {
		// attributes are placed in the insert's own coordinate system
		for _, attrib := range ins.Attribs {
			f.drawEntity(ctx, attrib)
		}
	}()
	block, ok := f.doc.Block(ins.Block)
	if !ok {
		f.warnOnce("INSERT of undefined block %q skipped", ins.Block)
		return
	}
	// each count is bounded before multiplying so the product cannot wrap
	if ins.Columns > maxInsertCopies || ins.Rows > maxInsertCopies || ins.Columns*ins.Rows > maxInsertCopies {
		f.warnOnce("INSERT of %q with %d x %d copies skipped", ins.Block, ins.Columns, ins.Rows)
		return
	}
	base := ocs(ctx.m, &ins.Attrs).
		Multiply(geom.Translate(ins.At.X, ins.At.Y)).
		Multiply(geom.Rotate(ins.Rotation))
	for r := 0; r < ins.Rows; r++ {
		for c := 0; c < ins.Columns; c++ {
			m := base.
				Multiply(geom.Translate(float64(c)*ins.ColSpacing, float64(r)*ins.RowSpacing)).
				Multiply(geom.Scale(ins.ScaleX, ins.ScaleY)).
				Multiply(geom.Translate(-block.Base.X, -block.Base.Y))
			f.drawBlock(ctx, layer, style, block, m)
		}
	}
}

func (f *Frontend) drawBlock(ctx drawContext, layer *dxf.Layer, style Style, block *dxf.Block, m geom.Matrix) {
	if ctx.depth >= maxInsertDepth {
		f.warnOnce("block %q nested deeper than %d levels skipped", block.Name, maxInsertDepth)
		return
	}
	child := drawContext{
		m:          m,
		layer:      layer,
		blockColor: style.Color,
		blockWidth: style.Width,
		depth:      ctx.depth + 1,
	}
	for _, e := range block.Entities {
		f.drawEntity(child, e)
	}
}

func (f *Frontend) drawHatch(m geom.Matrix, style Style, h *dxf.Hatch) {
	var rings [][]geom.Point
	for _, path := range h.Paths {
		var ring []geom.Point
		for _, edge := range path {
			pts := edge.Points()
			if len(ring) > 0 && len(pts) > 0 && ring[len(ring)-1] == pts[0] {
				pts = pts[1:]
			}
			ring = append(ring, pts...)
		}
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	if len(rings) == 0 {
		return
	}
	if h.Solid {
		world := make([][]geom.Point, len(rings))
		for i, r := range rings {
			world[i] = m.ApplyAll(r)
		}
		f.scene.add(&Fill{Style: style, Rings: world})
		return
	}

	var segments []geom.Segment
	complete := len(h.Families) > 0
	for _, family := range h.Families {
		budget := hatchLineLimit - len(segments)
		s, ok := geom.HatchLines(rings, family.Base, family.Angle, family.Offset, budget)
		if !ok || budget <= 0 {
			f.warnOnce("hatch pattern %s too dense, drawing its outline", h.Pattern)
			complete = false
			break
		}
		segments = append(segments, s...)
	}
	if !complete {
		for _, r := range rings {
			f.path(style, m.ApplyAll(r), true, 0)
		}
		return
	}
	for _, s := range segments {
		f.path(style, []geom.Point{m.Apply(s.From), m.Apply(s.To)}, false, 0)
	}
}
