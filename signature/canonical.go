// signature/canonical.go
package signature

import (
	"errors"
	"io"
	"strings"
	"unicode/utf16"

	jsoniter "github.com/json-iterator/go"
)

// queryJSON lays out the query structure with map keys in sorted order.
// String literals are re-escaped afterwards by quote.
var queryJSON = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

var errUnterminatedString = errors.New("unterminated string in encoded query")

// CanonicalQuery returns the stable JSON text of a query value. A nil query
// encodes as "{}".
func CanonicalQuery(query interface{}) (string, error) {
	if query == nil {
		return "{}", nil
	}
	s, err := queryJSON.MarshalToString(query)
	if err != nil {
		return "", err
	}
	if s == "null" {
		return "{}", nil
	}
	return reescapeStrings(s)
}

// CanonicalBody returns the raw body text. The body is rewound before
// reading; a nil, non-seekable, unreadable or whitespace-only body yields "".
func CanonicalBody(body io.Reader) string {
	if body == nil {
		return ""
	}
	seeker, ok := body.(io.Seeker)
	if !ok {
		return ""
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return ""
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return ""
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}

// SigningPayload builds "{publicKey}|{json(query)}|{json(body)}". query and
// body are already canonical strings; each is encoded once more as a JSON
// string.
func SigningPayload(query, body, publicKey string) string {
	return publicKey + "|" + quote(query) + "|" + quote(body)
}

// reescapeStrings rewrites every string literal of the valid JSON text s
// with quote, leaving the structure untouched.
func reescapeStrings(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '"' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := i + 1
		for end < len(s) && s[end] != '"' {
			if s[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(s) {
			return "", errUnterminatedString
		}
		var text string
		if err := queryJSON.UnmarshalFromString(s[i:end+1], &text); err != nil {
			return "", err
		}
		b.WriteString(quote(text))
		i = end + 1
	}
	return b.String(), nil
}

const hexDigits = "0123456789ABCDEF"

// quote encodes s as a JSON string the way System.Text.Json does with its
// default encoder: only printable ASCII outside "&'+<>` is written as is,
// everything else becomes a short escape or an uppercase \uXXXX sequence
// (UTF-16 code units, so astral runes take two). Invalid UTF-8 is written
// as \uFFFD.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
			continue
		case '\b':
			b.WriteString(`\b`)
			continue
		case '\f':
			b.WriteString(`\f`)
			continue
		case '\n':
			b.WriteString(`\n`)
			continue
		case '\r':
			b.WriteString(`\r`)
			continue
		case '\t':
			b.WriteString(`\t`)
			continue
		}
		switch {
		case r >= 0x20 && r < 0x7F && !strings.ContainsRune("\"&'+<>`", r):
			b.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			writeUnicodeEscape(&b, hi)
			writeUnicodeEscape(&b, lo)
		default:
			writeUnicodeEscape(&b, r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(hexDigits[(r>>12)&0xF])
	b.WriteByte(hexDigits[(r>>8)&0xF])
	b.WriteByte(hexDigits[(r>>4)&0xF])
	b.WriteByte(hexDigits[r&0xF])
}
