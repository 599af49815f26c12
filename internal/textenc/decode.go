package textenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// byteOrderMark is U+FEFF as it appears after decoding.
const byteOrderMark = "\uFEFF"

// detectorAliases maps charset names produced by the detector that are not
// WHATWG labels to a label that is.
var detectorAliases = map[string]string{
	"gb-18030": "gb18030",
}

// lookup resolves a charset name to an encoding and its canonical name.
func lookup(name string) (encoding.Encoding, string) {
	label := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := detectorAliases[label]; ok {
		label = alias
	}

	// UTF-32 is not part of the WHATWG table.
	switch label {
	case "utf-32le", "utf32le":
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), "utf-32le"
	case "utf-32be", "utf32be":
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), "utf-32be"
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), "utf-16le"
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), "utf-16be"
	}

	return charset.Lookup(label)
}

// IsKnown reports whether name can be decoded.
func IsKnown(name string) bool {
	e, _ := lookup(name)
	return e != nil
}

// CanonicalName returns the canonical lower-case name for a charset, so that
// aliases such as "cp1251" and "windows-1251" compare equal.
// Unknown names are returned lower-cased.
func CanonicalName(name string) string {
	if e, canonical := lookup(name); e != nil && canonical != "" {
		return canonical
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Decode converts data in the named charset to a UTF-8 string.
// A leading byte order mark is removed.
func Decode(data []byte, name string) (string, error) {
	e, canonical := lookup(name)
	if e == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}

	if canonical == "utf-8" {
		if !utf8.Valid(data) {
			return "", ErrInvalidUTF8
		}
		return strings.TrimPrefix(string(data), byteOrderMark), nil
	}

	decoded, _, err := transform.Bytes(e.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode input as %s: %w", name, err)
	}

	return strings.TrimPrefix(string(decoded), byteOrderMark), nil
}
