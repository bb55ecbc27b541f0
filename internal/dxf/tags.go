package dxf

import (
	"strings"

	"github.com/investit/dwg2pdf/internal/geom"
)

// tagList is the tag sequence of a single entity or table entry, starting
// with its (0, TYPE) tag.
type tagList []Tag

func (t tagList) first(code int) (Tag, bool) {
	for _, tag := range t {
		if tag.Code == code {
			return tag, true
		}
	}
	return Tag{}, false
}

func (t tagList) has(code int) bool {
	_, ok := t.first(code)
	return ok
}

func (t tagList) str(code int, def string) string {
	if tag, ok := t.first(code); ok {
		return tag.Value
	}
	return def
}

func (t tagList) float(code int, def float64) float64 {
	if tag, ok := t.first(code); ok {
		return tag.Float()
	}
	return def
}

func (t tagList) int(code int, def int) int {
	if tag, ok := t.first(code); ok {
		return tag.Int()
	}
	return def
}

// point reads the x/y pair stored under code and code+10.
func (t tagList) point(code int) geom.Point {
	return geom.Point{X: t.float(code, 0), Y: t.float(code+10, 0)}
}

func (t tagList) all(code int) []Tag {
	var rsl []Tag
	for _, tag := range t {
		if tag.Code == code {
			rsl = append(rsl, tag)
		}
	}
	return rsl
}

// points collects the sequence of x/y pairs stored under code and code+10.
func (t tagList) points(code int) []geom.Point {
	var rsl []geom.Point
	for _, tag := range t {
		switch tag.Code {
		case code:
			rsl = append(rsl, geom.Point{X: tag.Float()})
		case code + 10:
			if len(rsl) > 0 {
				rsl[len(rsl)-1].Y = tag.Float()
			}
		}
	}
	return rsl
}

// stripped drops application defined groups ({ACAD_REACTORS ...}), embedded
// objects and extended data, which reuse regular group codes.
func (t tagList) stripped() tagList {
	rsl := make(tagList, 0, len(t))
	depth := 0
	for i, tag := range t {
		if i > 0 && (tag.Code == 1001 || tag.Code == 101) {
			break
		}
		if tag.Code == 102 {
			v := strings.TrimSpace(tag.Value)
			switch {
			case strings.HasPrefix(v, "{"):
				depth++
			case v == "}" && depth > 0:
				depth--
			}
			continue
		}
		if depth > 0 {
			continue
		}
		rsl = append(rsl, tag)
	}
	return rsl
}
