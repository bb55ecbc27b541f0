package dxf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"%%c50", "Ø50"},
		{"90%%d", "90°"},
		{"%%p0.5", "±0.5"},
		{"%%uunder%%u", "under"},
		{"100%%%", "100%"},
		{"%%176C", "°C"},
		{`\U+00B0x`, "°x"},
		{"50%", "50%"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestDecodeUnicodeEscapesKeepsBrokenSequences(t *testing.T) {
	assert.Equal(t, "Grüße", DecodeUnicodeEscapes(`Gr\U+00FC\U+00DFe`))
	assert.Equal(t, `end \U+00`, DecodeUnicodeEscapes(`end \U+00`))
	assert.Equal(t, `\U+ZZZZ`, DecodeUnicodeEscapes(`\U+ZZZZ`))
}

func TestPlainMText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", `line one\Pline two`, "line one\nline two"},
		{"font", `{\fArial|b1|i0;Hello}\PWorld`, "Hello\nWorld"},
		{"height", `\H2.5;big`, "big"},
		{"stacked", `1\S1^2;"`, `11/2"`},
		{"nbsp", `a\~b`, "a b"},
		{"escapes", `\\ \{x\}`, `\ {x}`},
		{"underline", `\Lunder\l`, "under"},
		{"color", `{\C1;red} text`, "red text"},
		{"unterminated", `\H2.5`, ""},
		{"caret", "a^Ib^Jc", "a b\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainMText(tt.in))
		})
	}
}

func TestCodepageDecoder(t *testing.T) {
	assert.Equal(t, "При", codepageDecoder("ANSI_1251")("\xcf\xf0\xe8"))
	assert.Equal(t, "café", codepageDecoder("ansi_1252")("caf\xe9"))
	// valid UTF-8 passes unchanged
	assert.Equal(t, "café", codepageDecoder("ANSI_1251")("café"))
	// unknown codepages fall back to 1252
	assert.Equal(t, "café", codepageDecoder("ANSI_9999")("caf\xe9"))
}

func TestACI(t *testing.T) {
	assert.Equal(t, RGB{R: 255}, ACI(1))
	assert.Equal(t, White, ACI(7))
	assert.Equal(t, White, ACI(0))
	assert.Equal(t, White, ACI(300))
	assert.Equal(t, RGB{R: 255}, ACI(10))
	assert.Equal(t, RGB{R: 51, G: 51, B: 51}, ACI(250))

	palette := []struct {
		index int
		want  RGB
	}{
		{11, RGB{R: 255, G: 127, B: 127}},
		{12, RGB{R: 204}},
		{13, RGB{R: 204, G: 102, B: 102}},
		{15, RGB{R: 153, G: 76, B: 76}},
		{17, RGB{R: 127, G: 63, B: 63}},
		{19, RGB{R: 76, G: 38, B: 38}},
		{20, RGB{R: 255, G: 63}},
		{30, RGB{R: 255, G: 127}},
		{140, RGB{G: 191, B: 255}},
		{150, RGB{G: 127, B: 255}},
	}
	for _, tt := range palette {
		assert.Equal(t, tt.want, ACI(tt.index), "ACI %d", tt.index)
	}
	assert.Equal(t, "#123456", TrueColor(0x123456).String())
}
