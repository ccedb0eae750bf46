package encoding

import (
	"encoding/hex"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeStepString expands the control directives of STEP exchange strings:
// \X\hh (ISO 8859-1 byte), \S\c (upper half of ISO 8859-1), \X2\...\X0\
// (UTF-16BE) and the escaped backslash. Malformed directives are kept as is.
func DecodeStepString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, `\\`):
			b.WriteByte('\\')
			i += 2

		case strings.HasPrefix(rest, `\X2\`):
			end := strings.Index(rest[4:], `\X0\`)
			if end < 0 {
				b.WriteString(rest)
				return b.String()
			}
			hexText := rest[4 : 4+end]
			if decoded, ok := decodeUTF16Hex(hexText); ok {
				b.WriteString(decoded)
			} else {
				b.WriteString(rest[:4+end+4])
			}
			i += 4 + end + 4

		case strings.HasPrefix(rest, `\X\`) && len(rest) >= 5:
			raw, err := hex.DecodeString(rest[3:5])
			if err != nil {
				b.WriteString(rest[:3])
				i += 3
				continue
			}
			b.WriteString(latin1(raw))
			i += 5

		case strings.HasPrefix(rest, `\S\`) && len(rest) >= 4:
			b.WriteString(latin1([]byte{rest[3] + 0x80}))
			i += 4

		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

func latin1(raw []byte) string {
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func decodeUTF16Hex(hexText string) (string, bool) {
	raw, err := hex.DecodeString(hexText)
	if err != nil || len(raw)%2 != 0 {
		return "", false
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", false
	}
	return string(out), true
}
