package extract

import (
	"fmt"
	"time"

	"github.com/nao1215/histsheet/internal/model"
)

// SourceTimeLayout is the layout of "Visited On" values in exports.
const SourceTimeLayout = "02.01.2006 15:04:05"

// ParseVisitedOn parses a raw "Visited On" value.
// Only the exact DD.MM.YYYY HH:MM:SS layout is accepted.
func ParseVisitedOn(raw string) (time.Time, error) {
	t, err := time.Parse(SourceTimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: expected DD.MM.YYYY HH:MM:SS", ErrMalformedTimestamp, raw)
	}
	return t, nil
}

// NormalizeTimestamp rewrites a raw "Visited On" value into the canonical
// YYYY-MM-DD HH:MM:SS form.
func NormalizeTimestamp(raw string) (string, error) {
	t, err := ParseVisitedOn(raw)
	if err != nil {
		return "", err
	}
	return t.Format(model.CanonicalTimeLayout), nil
}
