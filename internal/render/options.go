// Package render draws DXF layouts to PDF. The frontend resolves entity
// properties and geometry into primitives in drawing units, the backend maps
// those onto fpdf pages.
package render

import (
	"fmt"
	"strings"
	"time"
)

type ColorPolicy string

const (
	// ColorSource keeps the drawing's colors, ACI 7 printed black.
	ColorSource ColorPolicy = "source"
	// ColorBlack prints everything black.
	ColorBlack ColorPolicy = "black"
)

type BackgroundPolicy string

const (
	BackgroundWhite BackgroundPolicy = "white"
	BackgroundNone  BackgroundPolicy = "none"
)

type LayoutSelection string

const (
	LayoutsModel LayoutSelection = "model"
	LayoutsAll   LayoutSelection = "all"
)

// PageAuto sizes each page to its content at 1 drawing unit = 1 mm.
const PageAuto = "auto"

type Options struct {
	// Margin around the content in mm.
	Margin     float64
	Color      ColorPolicy
	Background BackgroundPolicy
	Page       string
	Layouts    LayoutSelection
	// Stamp adds a strip with source name, layout, date and a QR code.
	Stamp bool
	// Debug outlines the content extents and margins.
	Debug bool
	// Source is the name of the converted file, used for the PDF title and
	// the stamp.
	Source string
	// Now is used for the creation date and stamp, time.Now when nil.
	Now func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Margin:     5,
		Color:      ColorBlack,
		Background: BackgroundWhite,
		Page:       PageAuto,
		Layouts:    LayoutsModel,
	}
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Validate checks enum values and the margin.
func (o Options) Validate() error {
	if o.Margin < 0 {
		return fmt.Errorf("margin must be >= 0, got %g", o.Margin)
	}
	switch o.Color {
	case ColorSource, ColorBlack:
	default:
		return fmt.Errorf("invalid color policy %q (expected source or black)", o.Color)
	}
	switch o.Background {
	case BackgroundWhite, BackgroundNone:
	default:
		return fmt.Errorf("invalid background %q (expected white or none)", o.Background)
	}
	switch o.Layouts {
	case LayoutsModel, LayoutsAll:
	default:
		return fmt.Errorf("invalid layouts %q (expected model or all)", o.Layouts)
	}
	if _, ok := sheetSizes[strings.ToLower(o.Page)]; !ok && !strings.EqualFold(o.Page, PageAuto) {
		return fmt.Errorf("invalid page size %q (expected auto, %s)", o.Page, strings.Join(SheetNames(), ", "))
	}
	return nil
}
