package render

import (
	"errors"
	"io"

	"github.com/flanksource/commons/logger"

	"github.com/investit/dwg2pdf/internal/dxf"
)

var ErrEmptyModelspace = errors.New("DXF file contains no entities in modelspace.")

// Result summarizes a rendered document.
type Result struct {
	Pages    int
	Layouts  []string
	Warnings []string
}

// Layouts returns the layouts rendered for sel: modelspace first, followed by
// the paperspace layouts in tab order for LayoutsAll.
func Layouts(doc *dxf.Document, sel LayoutSelection) []*dxf.Layout {
	rsl := []*dxf.Layout{doc.Modelspace()}
	if sel == LayoutsAll {
		rsl = append(rsl, doc.PaperspaceLayouts()...)
	}
	return rsl
}

// Render draws doc as PDF to w, one page per rendered layout.
func Render(doc *dxf.Document, opts Options, w io.Writer) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(doc.Modelspace().Entities) == 0 {
		return nil, ErrEmptyModelspace
	}

	footer := 0.0
	if opts.Stamp {
		footer = StampHeight
	}
	pdf := NewPDF(opts)
	frontend := NewFrontend(doc, opts, pdf)
	rsl := &Result{}
	for _, layout := range Layouts(doc, opts.Layouts) {
		scene := frontend.DrawLayout(layout)
		page, err := Fit(scene.Extents, opts.Page, opts.Margin, footer)
		if err != nil {
			return nil, err
		}
		logger.Debugf("layout %s: page %.1f x %.1f mm, scale %g", layout.Name, page.Width, page.Height, page.Scale)
		pdf.AddScene(scene, page)
		rsl.Pages++
		rsl.Layouts = append(rsl.Layouts, layout.Name)
	}
	rsl.Warnings = frontend.Warnings
	if err := pdf.Save(w); err != nil {
		return nil, err
	}
	return rsl, nil
}
