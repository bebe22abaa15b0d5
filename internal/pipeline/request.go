package pipeline

import (
	"errors"
	"gochef/internal/model"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput means standard input was not valid UTF-8 text.
var ErrInvalidInput = errors.New("invalid input")

const hex = "0123456789abcdef"

// TrimLineEnding removes exactly one trailing "\n" or "\r\n".
func TrimLineEnding(s string) string {
	if strings.HasSuffix(s, "\n") {
		s = s[:len(s)-1]
		s = strings.TrimSuffix(s, "\r")
	}
	return s
}

// EscapeString returns s encoded as the body of a JSON string literal,
// without the surrounding quotes. HTML characters are left as-is.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				b.WriteString(`\u00`)
				b.WriteByte(hex[c>>4])
				b.WriteByte(hex[c&0xf])
				continue
			}
			// multi-byte UTF-8 sequences pass through unchanged
			b.WriteByte(c)
		}
	}
	return b.String()
}

// BuildRequest assembles the JSON body for recipe from raw stdin bytes.
// The recipe pipeline is spliced in as raw JSON and is not validated.
func BuildRequest(input []byte, recipe *model.Recipe) (string, error) {
	if !utf8.Valid(input) {
		return "", ErrInvalidInput
	}

	text := TrimLineEnding(string(input))

	var b strings.Builder
	b.WriteString(`{"input":"`)
	b.WriteString(EscapeString(text))
	b.WriteString(`","recipe":`)
	b.WriteString(recipe.Pipeline)
	b.WriteString(`,"outputType":"`)
	b.WriteString(EscapeString(recipe.OutputType))
	b.WriteString(`"}`)
	return b.String(), nil
}
