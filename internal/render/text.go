package render

import (
	"strings"

	"github.com/investit/dwg2pdf/internal/dxf"
	"github.com/investit/dwg2pdf/internal/geom"
)

func (f *Frontend) drawText(m geom.Matrix, style Style, t *dxf.Text) {
	s := strings.TrimRight(dxf.PlainText(t.Value), " ")
	if strings.TrimSpace(s) == "" || t.Height <= 0 {
		return
	}
	h := t.Height
	wf := t.WidthFactor
	if wf <= 0 {
		wf = 1
	}
	width := f.measure.TextWidth(s, h) * wf
	ref, rot := t.Insert, t.Rotation
	var offset geom.Point

	switch {
	case (t.HAlign == dxf.AlignAligned || t.HAlign == dxf.AlignFit) && t.HasAlign:
		// stretched between the two points
		v := t.Align.Sub(t.Insert)
		if length := v.Len(); length > 0 && width > 0 {
			rot = v.Angle()
			if t.HAlign == dxf.AlignAligned {
				h *= length / width
			} else {
				wf *= length / width
			}
			width = length
		}
	case t.HAlign != dxf.AlignLeft || t.VAlign != dxf.VAlignBaseline:
		if t.HasAlign {
			ref = t.Align
		}
		switch t.HAlign {
		case dxf.AlignCenter, dxf.AlignMiddle:
			offset.X = -width / 2
		case dxf.AlignRight:
			offset.X = -width
		}
		switch t.VAlign {
		case dxf.VAlignBottom:
			offset.Y = descentFactor * h
		case dxf.VAlignMiddle:
			offset.Y = -h / 2
		case dxf.VAlignTop:
			offset.Y = -h
		}
		if t.HAlign == dxf.AlignMiddle && t.VAlign == dxf.VAlignBaseline {
			offset.Y = -h / 2
		}
	}

	local := m.Multiply(geom.Translate(ref.X, ref.Y)).Multiply(geom.Rotate(rot))
	f.label(local, style, s, offset, h, width, wf)
}

func (f *Frontend) drawMText(m geom.Matrix, style Style, t *dxf.MText) {
	if t.Height <= 0 {
		return
	}
	h := t.Height
	lines := f.wrap(dxf.PlainMText(t.Value), h, t.Width)
	if len(lines) == 0 {
		return
	}
	factor := t.LineSpacing
	if factor <= 0 {
		factor = 1
	}
	spacing := h * lineSpacingFactor * factor
	rot := t.Rotation
	if t.HasDir && t.Direction.Len() > 0 {
		rot = t.Direction.Angle()
	}

	// attachment 1..9: rows top/middle/bottom, columns left/center/right
	col, row := (t.Attachment-1)%3, (t.Attachment-1)/3
	total := h + float64(len(lines)-1)*spacing
	var first float64
	switch row {
	case 0:
		first = -h
	case 1:
		first = total/2 - h
	default:
		first = total - h
	}

	local := m.Multiply(geom.Translate(t.Insert.X, t.Insert.Y)).Multiply(geom.Rotate(rot))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		w := f.measure.TextWidth(line, h)
		offset := geom.Point{Y: first - float64(i)*spacing}
		switch col {
		case 1:
			offset.X = -w / 2
		case 2:
			offset.X = -w
		}
		f.label(local, style, line, offset, h, w, 1)
	}
}

// wrap splits text into paragraphs and breaks them at spaces to fit width.
// A width of zero disables wrapping. Trailing empty lines are dropped.
func (f *Frontend) wrap(text string, h, width float64) []string {
	var rsl []string
	for _, para := range strings.Split(text, "\n") {
		if width <= 0 {
			rsl = append(rsl, para)
			continue
		}
		line := ""
		for i, word := range strings.Split(para, " ") {
			if i == 0 {
				line = word
				continue
			}
			candidate := line + " " + word
			if line != "" && f.measure.TextWidth(candidate, h) > width {
				rsl = append(rsl, line)
				line = word
				continue
			}
			line = candidate
		}
		rsl = append(rsl, line)
	}
	for len(rsl) > 0 && strings.TrimSpace(rsl[len(rsl)-1]) == "" {
		rsl = rsl[:len(rsl)-1]
	}
	return rsl
}

// label places one text line whose baseline starts at offset in the local
// frame. Mirrored frames are flipped so text stays readable.
func (f *Frontend) label(local geom.Matrix, style Style, s string, offset geom.Point, h, width, wf float64) {
	xv := local.ApplyVector(geom.Point{X: 1})
	yv := local.ApplyVector(geom.Point{Y: 1})
	sx, sy := xv.Len(), yv.Len()
	if sx == 0 || sy == 0 {
		return
	}
	at := local.Apply(offset)
	rot := xv.Angle()
	if local.IsMirror() {
		at = local.Apply(offset.Add(geom.Point{X: width}))
		rot = xv.Scale(-1).Angle()
	}
	f.scene.add(&Label{
		Style:       style,
		Text:        s,
		At:          at,
		Height:      h * sy,
		Width:       width * sx,
		Rotation:    rot,
		WidthFactor: wf * sx / sy,
	})
}
