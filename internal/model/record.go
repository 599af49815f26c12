package model

import "time"

// CanonicalTimeLayout is the layout of visit timestamps written to the workbook.
const CanonicalTimeLayout = "2006-01-02 15:04:05"

// HistoryRecord is a single browsing-history visit entry.
// A record is only produced when the URL, the page title and the visit
// timestamp were all found for the same entry in the export.
type HistoryRecord struct {
	// URL is the visited address, passed through as an opaque string.
	URL string `json:"url"`

	// Title is the page title, passed through as an opaque string.
	Title string `json:"title"`

	// VisitedAt is the visit time. Exports carry no zone information,
	// so the value is stored in UTC with the wall clock unchanged.
	VisitedAt time.Time `json:"visited_at"`
}

// VisitedOn returns the visit time in canonical "YYYY-MM-DD HH:MM:SS" form.
func (r HistoryRecord) VisitedOn() string {
	return r.VisitedAt.Format(CanonicalTimeLayout)
}

// Row returns the record as the three spreadsheet cell values.
func (r HistoryRecord) Row() []string {
	return []string{r.URL, r.Title, r.VisitedOn()}
}
