package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"

	"github.com/nao1215/histsheet/internal/model"
)

// Charset names returned for byte order marks.
const (
	CharsetUTF8    = "UTF-8"
	CharsetUTF16LE = "UTF-16LE"
	CharsetUTF16BE = "UTF-16BE"
	CharsetUTF32LE = "UTF-32LE"
	CharsetUTF32BE = "UTF-32BE"
)

// bomConfidence is reported when a byte order mark identified the charset.
const bomConfidence = 100

// boms lists byte order marks, longest first so UTF-32LE is not taken for UTF-16LE.
var boms = []struct {
	mark    []byte
	charset string
}{
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, CharsetUTF32LE},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, CharsetUTF32BE},
	{[]byte{0xEF, 0xBB, 0xBF}, CharsetUTF8},
	{[]byte{0xFF, 0xFE}, CharsetUTF16LE},
	{[]byte{0xFE, 0xFF}, CharsetUTF16BE},
}

// Detector chooses the charset of an input.
type Detector struct {
	// forced skips detection when non-empty.
	forced string

	// allowed holds canonical names of acceptable detected charsets.
	// Empty means any charset is accepted.
	allowed map[string]bool

	// minConfidence is the lowest accepted detection confidence (0-100).
	minConfidence int

	// detector is the statistical text detector.
	detector *chardet.Detector
}

// Option configures a Detector.
type Option func(*Detector)

// WithForcedEncoding makes the detector return the given charset without
// looking at the input.
func WithForcedEncoding(name string) Option {
	return func(d *Detector) {
		d.forced = strings.TrimSpace(name)
	}
}

// WithAllowedEncodings restricts detected charsets to the given names.
// Aliases are resolved, so "cp1251" also allows "windows-1251".
func WithAllowedEncodings(names ...string) Option {
	return func(d *Detector) {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if d.allowed == nil {
				d.allowed = make(map[string]bool)
			}
			d.allowed[CanonicalName(name)] = true
		}
	}
}

// WithMinConfidence rejects detections below the given confidence.
func WithMinConfidence(confidence int) Option {
	return func(d *Detector) {
		d.minConfidence = confidence
	}
}

// NewDetector creates a Detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		detector: chardet.NewTextDetector(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Detect returns the encoding of data.
func (d *Detector) Detect(data []byte) (model.Encoding, error) {
	if d.forced != "" {
		if !IsKnown(d.forced) {
			return model.Encoding{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, d.forced)
		}
		return model.Encoding{
			Charset:    d.forced,
			Confidence: bomConfidence,
			Source:     model.EncodingSourceConfigured,
		}, nil
	}

	if charset, ok := DetectBOM(data); ok {
		return model.Encoding{
			Charset:    charset,
			Confidence: bomConfidence,
			Source:     model.EncodingSourceBOM,
		}, nil
	}

	// Nothing to analyse; UTF-8 decodes an empty file as well as anything.
	if len(data) == 0 {
		return model.Encoding{
			Charset:    CharsetUTF8,
			Confidence: bomConfidence,
			Source:     model.EncodingSourceDetected,
		}, nil
	}

	results, err := d.detector.DetectAll(data)
	if err != nil {
		if errors.Is(err, chardet.NotDetectedError) {
			return model.Encoding{}, ErrNotDetected
		}
		return model.Encoding{}, fmt.Errorf("failed to detect encoding: %w", err)
	}

	return d.choose(rankCandidates(results, data))
}

// choose returns the first candidate that meets the minimum confidence and
// the allow-list. Candidates must be ordered best first.
func (d *Detector) choose(candidates []chardet.Result) (model.Encoding, error) {
	confident := 0
	for _, c := range candidates {
		if c.Confidence < d.minConfidence {
			continue
		}
		confident++
		if len(d.allowed) > 0 && !d.allowed[CanonicalName(c.Charset)] {
			continue
		}
		return model.Encoding{
			Charset:    c.Charset,
			Language:   c.Language,
			Confidence: c.Confidence,
			Source:     model.EncodingSourceDetected,
		}, nil
	}

	top := candidates[0]
	if confident == 0 {
		return model.Encoding{}, fmt.Errorf("%w: %s detected with confidence %d (minimum %d)",
			ErrLowConfidence, top.Charset, top.Confidence, d.minConfidence)
	}
	return model.Encoding{}, fmt.Errorf("%w: %s (use --encoding to force a charset)",
		ErrEncodingNotAllowed, candidateNames(candidates))
}

// cyrillicCharsets are the canonical names of single-byte Cyrillic code pages.
var cyrillicCharsets = map[string]bool{
	"windows-1251": true,
	"koi8-r":       true,
	"iso-8859-5":   true,
	"ibm866":       true,
}

const (
	// cyrillicMargin is how far below the top guess a Cyrillic code page may
	// score and still be preferred for input that looks Cyrillic.
	cyrillicMargin = 10

	// minHighBytes is the number of non-ASCII bytes needed before the byte
	// layout is trusted to tell scripts apart.
	minHighBytes = 16

	// cyrillicRunRatio is the share of non-ASCII bytes that must sit next to
	// another non-ASCII byte for input to look like a single-byte Cyrillic
	// code page. Cyrillic words are made entirely of such bytes, while
	// accented Latin letters are mostly isolated between ASCII letters.
	cyrillicRunRatio = 0.6
)

// rankCandidates orders detector results best first.
//
// chardet scores ISO-8859-1 at or above windows-1251 on Cyrillic text, so a
// Cyrillic code page close to the top is moved to the front when the bytes
// form Cyrillic-looking runs. Valid UTF-8 with non-ASCII characters is
// almost never a legacy code page, so only UTF-8 is kept for it.
func rankCandidates(results []chardet.Result, data []byte) []chardet.Result {
	if utf8.Valid(data) && hasNonASCII(data) {
		for _, r := range results {
			if CanonicalName(r.Charset) == "utf-8" {
				return []chardet.Result{r}
			}
		}
		return results
	}

	if !looksSingleByteCyrillic(data) {
		return results
	}

	for i, r := range results {
		if !cyrillicCharsets[CanonicalName(r.Charset)] {
			continue
		}
		if i == 0 || r.Confidence < results[0].Confidence-cyrillicMargin {
			return results
		}
		ranked := make([]chardet.Result, 0, len(results))
		ranked = append(ranked, r)
		ranked = append(ranked, results[:i]...)
		return append(ranked, results[i+1:]...)
	}
	return results
}

// hasNonASCII reports whether data contains a byte above 0x7F.
func hasNonASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// looksSingleByteCyrillic reports whether most non-ASCII bytes in data come
// in runs, the way letters of a Cyrillic word do in a single-byte code page.
func looksSingleByteCyrillic(data []byte) bool {
	high, inRun := 0, 0
	for i, b := range data {
		if b < utf8.RuneSelf {
			continue
		}
		high++
		if (i > 0 && data[i-1] >= utf8.RuneSelf) || (i+1 < len(data) && data[i+1] >= utf8.RuneSelf) {
			inRun++
		}
	}
	if high < minHighBytes {
		return false
	}
	return float64(inRun)/float64(high) >= cyrillicRunRatio
}

// candidateNames lists detected charsets for error messages.
func candidateNames(candidates []chardet.Result) string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Charset)
	}
	return strings.Join(names, ", ")
}

// DetectBOM reports the charset identified by a leading byte order mark.
func DetectBOM(data []byte) (string, bool) {
	for _, b := range boms {
		if bytes.HasPrefix(data, b.mark) {
			return b.charset, true
		}
	}
	return "", false
}
