package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/investit/dwg2pdf/internal/geom"
)

// MaxPageSize is the largest page side PDF viewers accept (200 in).
const MaxPageSize = 5080.0

// StampHeight is the height of the plot stamp strip in mm.
const StampHeight = 12.0

// stampMinWidth keeps auto sized pages wide enough for the stamp.
const stampMinWidth = 120.0

// sheetSizes holds portrait sizes in mm.
var sheetSizes = map[string][2]float64{
	"a0":      {841, 1189},
	"a1":      {594, 841},
	"a2":      {420, 594},
	"a3":      {297, 420},
	"a4":      {210, 297},
	"letter":  {215.9, 279.4},
	"legal":   {215.9, 355.6},
	"tabloid": {279.4, 431.8},
}

// blankPage is used for layouts without content.
var blankPage = [2]float64{297, 210}

func SheetNames() []string {
	names := lo.Keys(sheetSizes)
	sort.Strings(names)
	return names
}

// Page maps drawing coordinates onto a page in mm with the origin at the
// top left.
type Page struct {
	Width  float64
	Height float64
	// Scale is mm per drawing unit.
	Scale float64
	// Content is the drawing area on the page, margins excluded.
	Content Rect
	extents geom.Box
	originX float64
	originY float64
}

type Rect struct {
	X, Y, W, H float64
}

// Map converts a drawing point to page coordinates.
func (p Page) Map(pt geom.Point) (x, y float64) {
	return p.originX + (pt.X-p.extents.Min.X)*p.Scale, p.originY + (p.extents.Max.Y-pt.Y)*p.Scale
}

// Fit lays out content with the given extents on a page. footer mm are
// reserved below the content area.
func Fit(extents geom.Box, size string, margin, footer float64) (Page, error) {
	if margin < 0 {
		return Page{}, fmt.Errorf("margin must be >= 0, got %g", margin)
	}
	size = strings.ToLower(size)
	if size == "" {
		size = PageAuto
	}
	if extents.IsEmpty() {
		w, h := blankPage[0], blankPage[1]
		if sheet, ok := sheetSizes[size]; ok {
			w, h = sheet[1], sheet[0]
		}
		return Page{
			Width:   w,
			Height:  h,
			Scale:   1,
			Content: Rect{X: margin, Y: margin, W: w - 2*margin, H: h - 2*margin - footer},
		}, nil
	}

	cw, ch := extents.Width(), extents.Height()
	if size == PageAuto {
		return fitAuto(extents, margin, footer)
	}
	sheet, ok := sheetSizes[size]
	if !ok {
		return Page{}, fmt.Errorf("unknown page size %q", size)
	}
	w, h := sheet[0], sheet[1]
	if cw > ch {
		w, h = h, w
	}
	availW, availH := w-2*margin, h-2*margin-footer
	if availW <= 0 || availH <= 0 {
		return Page{}, fmt.Errorf("margin %g mm leaves no room on %s", margin, size)
	}
	scale := fitScale(cw, ch, availW, availH)
	return place(extents, w, h, margin, footer, scale), nil
}

func fitAuto(extents geom.Box, margin, footer float64) (Page, error) {
	limit := MaxPageSize - 2*margin
	if limit-footer <= 0 {
		return Page{}, fmt.Errorf("margin %g mm exceeds the maximum page size", margin)
	}
	cw, ch := extents.Width(), extents.Height()
	scale := math.Min(1, fitScale(cw, ch, limit, limit-footer))
	// keep degenerate drawings (a single line) printable
	w := math.Max(cw*scale+2*margin, 1)
	h := math.Max(ch*scale+2*margin+footer, 1)
	if footer > 0 {
		w = math.Max(w, stampMinWidth)
	}
	return place(extents, w, h, margin, footer, scale), nil
}

func fitScale(cw, ch, availW, availH float64) float64 {
	switch {
	case cw <= 0 && ch <= 0:
		return 1
	case cw <= 0:
		return availH / ch
	case ch <= 0:
		return availW / cw
	}
	return math.Min(availW/cw, availH/ch)
}

// place centers the scaled content inside the margins.
func place(extents geom.Box, w, h, margin, footer, scale float64) Page {
	content := Rect{X: margin, Y: margin, W: w - 2*margin, H: h - 2*margin - footer}
	return Page{
		Width:   w,
		Height:  h,
		Scale:   scale,
		Content: content,
		extents: extents,
		originX: content.X + (content.W-extents.Width()*scale)/2,
		originY: content.Y + (content.H-extents.Height()*scale)/2,
	}
}
