package render

import (
	"fmt"
	"strconv"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/flanksource/commons/logger"
	cbarcode "github.com/go-pdf/fpdf/contrib/barcode"
)

const (
	stampDateFormat  = "2006-01-02 15:04"
	minStampFontSize = 3
)

// addStamp fills the strip reserved below the content with the source name,
// layout, scale, plot date and a QR code of the source name.
func (pdf *PDF) addStamp(scene *Scene, page Page) {
	margin := pdf.opts.Margin
	top := page.Content.Y + page.Content.H
	qrSize := StampHeight - 2

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Line(margin, top, page.Width-margin, top)

	pdf.SetTextColor(0, 0, 0)
	textWidth := page.Width - 2*margin - qrSize
	title := pdf.opts.Source
	if title == "" {
		title = scene.Layout
	}
	pdf.fitTextToWidth(title, textWidth, 1, 9)
	pdf.Text(margin, top+4.5, title)
	details := fmt.Sprintf("Layout: %s  ·  Scale %s  ·  Plotted %s",
		scene.Layout, scaleLabel(page.Scale), pdf.opts.now().Format(stampDateFormat))
	pdf.fitTextToWidth(details, textWidth, 1, 7)
	pdf.Text(margin, top+9, details)

	qrCode, err := qr.Encode(title, qr.L, qr.Unicode)
	if err != nil {
		logger.Warnf("stamp QR code: %v", err)
		return
	}
	qrCode, err = barcode.Scale(qrCode, 256, 256)
	if err != nil {
		logger.Warnf("stamp QR code: %v", err)
		return
	}
	qrKey := cbarcode.Register(qrCode)
	cbarcode.Barcode(pdf.Fpdf, qrKey, page.Width-margin-qrSize, top+1, qrSize, qrSize, false)
}

// fitTextToWidth sets the largest font size up to maxSize at which txt fits
// into width and returns it.
func (pdf *PDF) fitTextToWidth(txt string, width, margin, maxSize float64) float64 {
	rsl := maxSize
	maxTextWidth := width - 2*margin
	pdf.SetFont(pdf.FontFamily, "", maxSize)
	for pdf.GetStringWidth(txt) > maxTextWidth && rsl > minStampFontSize {
		rsl -= .5
		pdf.SetFont(pdf.FontFamily, "", rsl)
	}
	return rsl
}

// scaleLabel renders mm per drawing unit as a plot scale.
func scaleLabel(scale float64) string {
	switch {
	case scale <= 0:
		return "-"
	case scale < 1:
		return "1:" + strconv.FormatFloat(1/scale, 'g', 4, 64)
	}
	return strconv.FormatFloat(scale, 'g', 4, 64) + ":1"
}
