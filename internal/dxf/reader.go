package dxf

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// binarySentinel starts every binary DXF file.
var binarySentinel = []byte("AutoCAD Binary DXF\r\n\x1a\x00")

// Tag is one group code / value pair.
type Tag struct {
	Code  int
	Value string
}

func (t Tag) String() string {
	return fmt.Sprintf("(%d, %q)", t.Code, t.Value)
}

func (t Tag) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil {
		return 0
	}
	return v
}

func (t Tag) Int() int {
	s := strings.TrimSpace(t.Value)
	v, err := strconv.Atoi(s)
	if err == nil {
		return v
	}
	// Some writers emit integral groups as floats.
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0
	}
	return int(f)
}

func (t Tag) Is(code int, value string) bool {
	return t.Code == code && strings.EqualFold(strings.TrimSpace(t.Value), value)
}

// IsBinary reports whether data holds a binary DXF file.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, binarySentinel)
}

// ReadTags splits a DXF file into its tags. Malformed group codes are skipped
// and reported as warnings instead of failing the whole file.
func ReadTags(data []byte) (tags []Tag, warnings []string, err error) {
	if IsBinary(data) {
		return readBinaryTags(data[len(binarySentinel):])
	}
	return readASCIITags(data)
}

func readASCIITags(data []byte) ([]Tag, []string, error) {
	// UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	lines := bytes.Split(data, []byte("\n"))
	tags := make([]Tag, 0, len(lines)/2)
	var warnings []string
	for i := 0; i+1 < len(lines); {
		raw := strings.TrimSpace(string(lines[i]))
		code, err := strconv.Atoi(raw)
		if err != nil {
			if raw != "" {
				warnings = append(warnings, fmt.Sprintf("line %d: invalid group code %q", i+1, truncate(raw, 32)))
			}
			i++
			continue
		}
		value := strings.TrimRight(string(lines[i+1]), "\r")
		tags = append(tags, Tag{Code: code, Value: value})
		i += 2
	}
	if len(tags) == 0 {
		return nil, warnings, errors.New("no DXF tags found")
	}
	return tags, warnings, nil
}

type valueKind int

const (
	kindString valueKind = iota
	kindFloat
	kindInt16
	kindInt32
	kindInt64
	kindBool
	kindBinary
)

func groupKind(code int) valueKind {
	switch {
	case code >= 0 && code <= 9:
		return kindString
	case code >= 10 && code <= 59:
		return kindFloat
	case code >= 60 && code <= 79:
		return kindInt16
	case code >= 90 && code <= 99:
		return kindInt32
	case code >= 110 && code <= 149:
		return kindFloat
	case code >= 160 && code <= 169:
		return kindInt64
	case code >= 170 && code <= 179:
		return kindInt16
	case code >= 210 && code <= 239:
		return kindFloat
	case code >= 270 && code <= 289:
		return kindInt16
	case code >= 290 && code <= 299:
		return kindBool
	case code >= 310 && code <= 319:
		return kindBinary
	case code >= 370 && code <= 389:
		return kindInt16
	case code >= 400 && code <= 409:
		return kindInt16
	case code >= 420 && code <= 429:
		return kindInt32
	case code >= 440 && code <= 459:
		return kindInt32
	case code >= 460 && code <= 469:
		return kindFloat
	case code == 1004:
		return kindBinary
	case code >= 1010 && code <= 1059:
		return kindFloat
	case code >= 1060 && code <= 1070:
		return kindInt16
	case code == 1071:
		return kindInt32
	}
	return kindString
}

var errTruncated = errors.New("unexpected end of binary DXF")

func readBinaryTags(data []byte) ([]Tag, []string, error) {
	// R13+ writes 2 byte group codes; older files use a single byte with 255
	// as escape for an extended code. The first tag is always (0, SECTION).
	wide := len(data) >= 2 && data[0] == 0 && data[1] == 0
	var tags []Tag
	pos := 0
	for pos < len(data) {
		var code int
		if wide {
			if pos+2 > len(data) {
				return truncatedTags(tags)
			}
			code = int(int16(binary.LittleEndian.Uint16(data[pos:])))
			pos += 2
		} else {
			code = int(data[pos])
			pos++
			if code == 255 {
				if pos+2 > len(data) {
					return truncatedTags(tags)
				}
				code = int(int16(binary.LittleEndian.Uint16(data[pos:])))
				pos += 2
			}
		}

		var value string
		switch groupKind(code) {
		case kindString:
			end := bytes.IndexByte(data[pos:], 0)
			if end < 0 {
				return truncatedTags(tags)
			}
			value = string(data[pos : pos+end])
			pos += end + 1
		case kindFloat:
			if pos+8 > len(data) {
				return truncatedTags(tags)
			}
			f := math.Float64frombits(binary.LittleEndian.Uint64(data[pos:]))
			value = strconv.FormatFloat(f, 'g', -1, 64)
			pos += 8
		case kindInt16:
			if pos+2 > len(data) {
				return truncatedTags(tags)
			}
			value = strconv.Itoa(int(int16(binary.LittleEndian.Uint16(data[pos:]))))
			pos += 2
		case kindInt32:
			if pos+4 > len(data) {
				return truncatedTags(tags)
			}
			value = strconv.Itoa(int(int32(binary.LittleEndian.Uint32(data[pos:]))))
			pos += 4
		case kindInt64:
			if pos+8 > len(data) {
				return truncatedTags(tags)
			}
			value = strconv.FormatInt(int64(binary.LittleEndian.Uint64(data[pos:])), 10)
			pos += 8
		case kindBool:
			if pos+1 > len(data) {
				return truncatedTags(tags)
			}
			value = strconv.Itoa(int(data[pos]))
			pos++
		case kindBinary:
			if pos+1 > len(data) {
				return truncatedTags(tags)
			}
			n := int(data[pos])
			pos++
			if pos+n > len(data) {
				return truncatedTags(tags)
			}
			value = strings.ToUpper(hex.EncodeToString(data[pos : pos+n]))
			pos += n
		}
		tags = append(tags, Tag{Code: code, Value: value})
		if code == 0 && value == "EOF" {
			break
		}
	}
	if len(tags) == 0 {
		return nil, nil, errors.New("no DXF tags found")
	}
	return tags, nil, nil
}

// truncatedTags keeps what was decoded before the data ran out, leaving it to
// the loader to close open sections.
func truncatedTags(tags []Tag) ([]Tag, []string, error) {
	if len(tags) == 0 {
		return nil, nil, errTruncated
	}
	return tags, []string{errTruncated.Error()}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
