package model

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// PreviewSize is the number of records included in a Summary preview.
const PreviewSize = 5

// TopHostsSize is the number of most visited hosts included in a Summary.
const TopHostsSize = 5

// HostCount is the number of visits to one host.
type HostCount struct {
	Host   string `json:"host"`
	Visits int    `json:"visits"`
}

// Summary is a flat view of a Conversion for report output.
type Summary struct {
	RunID       string          `json:"run_id"`
	InputPath   string          `json:"input_path"`
	OutputPath  string          `json:"output_path"`
	SheetName   string          `json:"sheet_name"`
	InputSize   int64           `json:"input_size"`
	Encoding    Encoding        `json:"encoding"`
	RecordCount int             `json:"record_count"`
	Incomplete  int             `json:"incomplete"`
	FirstVisit  *time.Time      `json:"first_visit,omitempty"`
	LastVisit   *time.Time      `json:"last_visit,omitempty"`
	Preview     []HistoryRecord `json:"preview,omitempty"`
	TopHosts    []HostCount     `json:"top_hosts,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	Duration    time.Duration   `json:"duration"`
	Error       string          `json:"error,omitempty"`
}

// NewSummary builds a Summary from a Conversion.
func NewSummary(c *Conversion) *Summary {
	s := &Summary{
		RunID:       c.RunID,
		InputPath:   c.InputPath,
		OutputPath:  c.OutputPath,
		SheetName:   c.SheetName,
		InputSize:   c.InputSize,
		Encoding:    c.Encoding,
		RecordCount: len(c.Records),
		Incomplete:  c.Incomplete,
		StartedAt:   c.StartedAt,
		Duration:    c.Duration,
		Error:       c.ErrorMessage,
	}

	hosts := make(map[string]int)
	for i, r := range c.Records {
		hosts[hostOf(r.URL)]++
		visited := r.VisitedAt
		if s.FirstVisit == nil || visited.Before(*s.FirstVisit) {
			s.FirstVisit = &visited
		}
		if s.LastVisit == nil || visited.After(*s.LastVisit) {
			s.LastVisit = &visited
		}
		if i < PreviewSize {
			s.Preview = append(s.Preview, r)
		}
	}

	s.TopHosts = topHosts(hosts, TopHostsSize)

	return s
}

// hostOf returns the lower-cased host of raw, or raw itself when it has none.
// URLs are opaque strings in exports, so anything unparsable is counted as is.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.ToLower(u.Hostname())
}

// topHosts returns the n hosts with the most visits, ties broken by name.
func topHosts(counts map[string]int, n int) []HostCount {
	if len(counts) == 0 {
		return nil
	}

	all := make([]HostCount, 0, len(counts))
	for host, visits := range counts {
		all = append(all, HostCount{Host: host, Visits: visits})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Visits != all[j].Visits {
			return all[i].Visits > all[j].Visits
		}
		return all[i].Host < all[j].Host
	})

	if len(all) > n {
		all = all[:n]
	}
	return all
}

// HasRecords reports whether any record was converted.
func (s *Summary) HasRecords() bool {
	return s.RecordCount > 0
}

// Succeeded reports whether the conversion completed without error.
func (s *Summary) Succeeded() bool {
	return s.Error == ""
}
