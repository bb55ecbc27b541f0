package dxf

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

var codepages = map[string]encoding.Encoding{
	"ANSI_874":  charmap.Windows874,
	"ANSI_1250": charmap.Windows1250,
	"ANSI_1251": charmap.Windows1251,
	"ANSI_1252": charmap.Windows1252,
	"ANSI_1253": charmap.Windows1253,
	"ANSI_1254": charmap.Windows1254,
	"ANSI_1255": charmap.Windows1255,
	"ANSI_1256": charmap.Windows1256,
	"ANSI_1257": charmap.Windows1257,
	"ANSI_1258": charmap.Windows1258,
	"ANSI_932":  japanese.ShiftJIS,
	"ANSI_936":  simplifiedchinese.GBK,
	"ANSI_949":  korean.EUCKR,
	"ANSI_950":  traditionalchinese.Big5,
	"DOS437":    charmap.CodePage437,
	"DOS850":    charmap.CodePage850,
	"DOS852":    charmap.CodePage852,
	"DOS866":    charmap.CodePage866,
}

// codepageDecoder returns a function turning raw bytes of the given
// $DWGCODEPAGE into UTF-8. Unknown codepages fall back to ANSI_1252.
func codepageDecoder(name string) func(string) string {
	enc, ok := codepages[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		enc = charmap.Windows1252
	}
	return func(s string) string {
		if utf8.ValidString(s) {
			return s
		}
		rsl, err := enc.NewDecoder().String(s)
		if err != nil {
			return strings.ToValidUTF8(s, "�")
		}
		return rsl
	}
}

// DecodeUnicodeEscapes replaces \U+XXXX sequences with their runes. LibreDWG
// sometimes splits such a sequence across groups; incomplete escapes are kept
// as they are.
func DecodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\U+`) && !strings.Contains(s, `\u+`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if i+7 <= len(s) && s[i] == '\\' && (s[i+1] == 'U' || s[i+1] == 'u') && s[i+2] == '+' {
			if v, err := strconv.ParseUint(s[i+3:i+7], 16, 32); err == nil {
				b.WriteRune(rune(v))
				i += 7
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// PlainText expands the %% control codes of single line TEXT entities.
func PlainText(s string) string {
	s = DecodeUnicodeEscapes(s)
	if !strings.Contains(s, "%%") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if i+2 < len(s) && s[i] == '%' && s[i+1] == '%' {
			c := s[i+2]
			switch c {
			case 'c', 'C':
				b.WriteString("Ø")
				i += 3
				continue
			case 'd', 'D':
				b.WriteString("°")
				i += 3
				continue
			case 'p', 'P':
				b.WriteString("±")
				i += 3
				continue
			case 'u', 'U', 'o', 'O', 'k', 'K':
				i += 3
				continue
			case '%':
				b.WriteByte('%')
				i += 3
				continue
			}
			if c >= '0' && c <= '9' {
				j := i + 2
				for j < len(s) && j < i+5 && s[j] >= '0' && s[j] <= '9' {
					j++
				}
				if v, err := strconv.Atoi(s[i+2 : j]); err == nil {
					b.WriteRune(rune(v))
					i = j
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// PlainMText strips MTEXT inline formatting and returns the text with
// paragraph breaks as '\n'.
func PlainMText(s string) string {
	s = DecodeUnicodeEscapes(s)
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch r {
		case '{', '}':
			continue
		case '^':
			if i+1 < len(rs) {
				switch rs[i+1] {
				case 'I':
					b.WriteRune(' ')
					i++
					continue
				case 'J', 'M':
					b.WriteRune('\n')
					i++
					continue
				}
			}
			b.WriteRune(r)
			continue
		case '\\':
		default:
			b.WriteRune(r)
			continue
		}
		if i+1 >= len(rs) {
			break
		}
		i++
		switch rs[i] {
		case 'P', 'N', 'X':
			b.WriteRune('\n')
		case '~':
			b.WriteRune(' ')
		case '\\', '{', '}':
			b.WriteRune(rs[i])
		case 'L', 'l', 'O', 'o', 'K', 'k':
		case 'S':
			end := indexRune(rs, ';', i+1)
			stack := string(rs[i+1 : end])
			stack = strings.NewReplacer("^", "/", "#", "/").Replace(stack)
			b.WriteString(strings.TrimSpace(stack))
			i = end
		default:
			// \f, \H, \W, \Q, \T, \A, \C, \c, \p ... run up to ';'
			i = indexRune(rs, ';', i+1)
		}
	}
	return b.String()
}

// indexRune returns the index of r at or after start, or len(rs).
func indexRune(rs []rune, r rune, start int) int {
	for j := start; j < len(rs); j++ {
		if rs[j] == r {
			return j
		}
	}
	return len(rs)
}
