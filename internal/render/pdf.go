package render

import (
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/investit/dwg2pdf/internal/dxf"
	"github.com/investit/dwg2pdf/internal/geom"
)

// capHeightRatio is the cap height of Go Regular relative to its em size.
// DXF text heights are cap heights.
const capHeightRatio = 0.7

type DebugColor int

const (
	ColorMagenta DebugColor = iota
	ColorTeal
)

func (c DebugColor) GetValues() (r, g, b int) {
	// Defaults to magenta.
	switch c {
	case ColorTeal:
		return 0x43, 0x95, 0xb7
	default:
		return 0xB4, 0x25, 0x7A
	}
}

// PDF is the fpdf backend. It also measures text for the frontend, so
// layout and output agree on glyph widths.
type PDF struct {
	*fpdf.Fpdf
	opts       Options
	FontFamily string
}

func NewPDF(opts Options) *PDF {
	fontName := "GoRegular"
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddUTF8FontFromBytes(fontName, "", goregular.TTF)
	pdf.SetFont(fontName, "", 10)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	pdf.SetCreator("dwg2pdf", true)
	pdf.SetCreationDate(opts.now())
	if opts.Source != "" {
		pdf.SetTitle(opts.Source, true)
	}
	return &PDF{
		Fpdf:       pdf,
		opts:       opts,
		FontFamily: fontName,
	}
}

func (pdf *PDF) TextWidth(s string, height float64) float64 {
	const ref = 10.0
	pdf.SetFontUnitSize(ref / capHeightRatio)
	return pdf.GetStringWidth(s) * height / ref
}

// AddScene adds one page holding scene laid out by page.
func (pdf *PDF) AddScene(scene *Scene, page Page) {
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
	pdf.Bookmark(scene.Layout, 0, 0)
	if pdf.opts.Background == BackgroundWhite {
		pdf.SetFillColor(255, 255, 255)
		pdf.Rect(0, 0, page.Width, page.Height, "F")
	}
	for _, p := range scene.Primitives {
		pdf.draw(p, page)
	}
	if pdf.opts.Debug {
		pdf.drawDebug(scene, page)
	}
	if pdf.opts.Stamp {
		pdf.addStamp(scene, page)
	}
}

func (pdf *PDF) draw(p Primitive, page Page) {
	switch p := p.(type) {
	case *Path:
		pdf.setDrawColor(p.Color)
		pdf.SetLineWidth(max(p.Width, p.WorldWidth*page.Scale))
		pdf.trace(p.Points, page)
		if p.Closed {
			pdf.ClosePath()
		}
		pdf.DrawPath("D")
	case *Fill:
		pdf.setFillColor(p.Color)
		for _, ring := range p.Rings {
			pdf.trace(ring, page)
			pdf.ClosePath()
		}
		pdf.DrawPath("F*")
	case *Dot:
		pdf.setFillColor(p.Color)
		x, y := page.Map(p.At)
		pdf.Circle(x, y, max(p.Width, 0.1)/2, "F")
	case *Label:
		pdf.drawLabel(p, page)
	}
}

func (pdf *PDF) trace(pts []geom.Point, page Page) {
	for i, pt := range pts {
		x, y := page.Map(pt)
		if i == 0 {
			pdf.MoveTo(x, y)
		} else {
			pdf.LineTo(x, y)
		}
	}
}

func (pdf *PDF) drawLabel(l *Label, page Page) {
	size := l.Height * page.Scale / capHeightRatio
	if size < 0.01 {
		return
	}
	x, y := page.Map(l.At)
	pdf.SetFontUnitSize(size)
	pdf.SetTextColor(int(l.Color.R), int(l.Color.G), int(l.Color.B))
	pdf.TransformBegin()
	pdf.TransformRotate(l.Rotation, x, y)
	if l.WidthFactor > 0 && l.WidthFactor != 1 {
		pdf.TransformScale(l.WidthFactor*100, 100, x, y)
	}
	pdf.Text(x, y, l.Text)
	pdf.TransformEnd()
}

func (pdf *PDF) setDrawColor(c dxf.RGB) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func (pdf *PDF) setFillColor(c dxf.RGB) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

// drawDebug outlines the content area and the drawing extents.
func (pdf *PDF) drawDebug(scene *Scene, page Page) {
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(ColorTeal.GetValues())
	pdf.Rect(page.Content.X, page.Content.Y, page.Content.W, page.Content.H, "D")
	if scene.Extents.IsEmpty() {
		return
	}
	pdf.SetDrawColor(ColorMagenta.GetValues())
	x0, y0 := page.Map(scene.Extents.Min)
	x1, y1 := page.Map(scene.Extents.Max)
	pdf.Rect(x0, y1, x1-x0, y0-y1, "D")
}

// Save outputs the document and closes it.
func (pdf *PDF) Save(w io.Writer) error {
	return pdf.Output(w)
}
