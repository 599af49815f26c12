package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// newTestExtractor returns an Extractor whose log output goes to buf.
func newTestExtractor(buf *bytes.Buffer, opts ...Option) *Extractor {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewExtractor(append([]Option{WithLogger(logger)}, opts...)...)
}

// TestExtract_EndToEnd tests the single-entry example export.
func TestExtract_EndToEnd(t *testing.T) {
	t.Parallel()

	text := "URL: https://example.com\nTitle: Example Domain\nVisited On: 01.01.2023 10:00:00\n"

	var buf bytes.Buffer
	res, err := newTestExtractor(&buf).Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}

	got := res.Records[0].Row()
	want := []string{"https://example.com", "Example Domain", "2023-01-01 10:00:00"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if res.Incomplete != 0 {
		t.Errorf("expected no incomplete entries, got %d", res.Incomplete)
	}
}

// TestExtract tests extraction over various export layouts.
func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		text           string
		wantURLs       []string
		wantIncomplete int
	}{
		{
			name:     "empty input",
			text:     "",
			wantURLs: nil,
		},
		{
			name: "N complete triples yield N records",
			text: "URL: https://a.example\nTitle: A\nVisited On: 01.01.2023 10:00:00\n" +
				"URL: https://b.example\nTitle: B\nVisited On: 02.01.2023 10:00:00\n" +
				"URL: https://c.example\nTitle: C\nVisited On: 03.01.2023 10:00:00\n",
			wantURLs: []string{"https://a.example", "https://b.example", "https://c.example"},
		},
		{
			name: "three URLs and titles but two timestamps yield two records",
			text: "URL: https://a.example\nTitle: A\nVisited On: 01.01.2023 10:00:00\n" +
				"URL: https://b.example\nTitle: B\nVisited On: 02.01.2023 10:00:00\n" +
				"URL: https://c.example\nTitle: C\n",
			wantURLs:       []string{"https://a.example", "https://b.example"},
			wantIncomplete: 1,
		},
		{
			name: "missing field in the middle does not shift later entries",
			text: "URL: https://a.example\nTitle: A\nVisited On: 01.01.2023 10:00:00\n" +
				"URL: https://b.example\nTitle: B\n" +
				"URL: https://c.example\nTitle: C\nVisited On: 03.01.2023 10:00:00\n",
			wantURLs:       []string{"https://a.example", "https://c.example"},
			wantIncomplete: 1,
		},
		{
			name: "padded labels and extra fields of a full export",
			text: "==================================================\n" +
				"URL               : https://example.com/?q=1\n" +
				"Title             : Example Domain\n" +
				"Visited On        : 05.03.2024 13:45:10\n" +
				"Visit Count       : 3\n" +
				"URL Length        : 24\n" +
				"Web Browser       : Chrome\n" +
				"==================================================\n",
			wantURLs: []string{"https://example.com/?q=1"},
		},
		{
			name: "separator closes an entry missing a field",
			text: "URL: https://a.example\nVisited On: 01.01.2023 10:00:00\n" +
				"=====\n" +
				"Title: B\nURL: https://b.example\nVisited On: 02.01.2023 10:00:00\n",
			wantURLs:       []string{"https://b.example"},
			wantIncomplete: 1,
		},
		{
			name:     "field order within an entry is free",
			text:     "Visited On: 01.01.2023 10:00:00\nTitle: A\nURL: https://a.example\n",
			wantURLs: []string{"https://a.example"},
		},
		{
			name:     "CRLF line endings",
			text:     "URL: https://a.example\r\nTitle: A\r\nVisited On: 01.01.2023 10:00:00\r\n",
			wantURLs: []string{"https://a.example"},
		},
		{
			name:     "last line without trailing newline",
			text:     "URL: https://a.example\nTitle: A\nVisited On: 01.01.2023 10:00:00",
			wantURLs: []string{"https://a.example"},
		},
		{
			name:     "unrelated text around entries is ignored",
			text:     "Browsing history export\n\nURL: https://a.example\nsome note\nTitle: A\nVisited On: 01.01.2023 10:00:00\n\nEnd\n",
			wantURLs: []string{"https://a.example"},
		},
		{
			name:     "labels are case sensitive",
			text:     "url: https://a.example\ntitle: A\nvisited on: 01.01.2023 10:00:00\n",
			wantURLs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			res, err := newTestExtractor(&buf).Extract(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(res.Records) != len(tt.wantURLs) {
				t.Fatalf("expected %d records, got %d", len(tt.wantURLs), len(res.Records))
			}
			for i, u := range tt.wantURLs {
				if res.Records[i].URL != u {
					t.Errorf("record %d: expected URL %q, got %q", i, u, res.Records[i].URL)
				}
			}
			if res.Incomplete != tt.wantIncomplete {
				t.Errorf("expected %d incomplete, got %d", tt.wantIncomplete, res.Incomplete)
			}
		})
	}
}

// TestExtract_TitleKeepsInnerText tests that titles are passed through untouched.
func TestExtract_TitleKeepsInnerText(t *testing.T) {
	t.Parallel()

	text := "URL: https://новини.example/статті\nTitle: Назва: сторінки | URL: не поле\nVisited On: 01.01.2023 10:00:00\n"

	var buf bytes.Buffer
	res, err := newTestExtractor(&buf).Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if res.Records[0].Title != "Назва: сторінки | URL: не поле" {
		t.Errorf("unexpected title %q", res.Records[0].Title)
	}
	if res.Records[0].URL != "https://новини.example/статті" {
		t.Errorf("unexpected URL %q", res.Records[0].URL)
	}
}

// TestExtract_MalformedTimestamp tests that a bad timestamp aborts extraction.
func TestExtract_MalformedTimestamp(t *testing.T) {
	t.Parallel()

	text := "URL: https://a.example\nTitle: A\nVisited On: 01.01.2023 10:00:00\n" +
		"URL: https://b.example\nTitle: B\nVisited On: 2024-03-05\n"

	var buf bytes.Buffer
	res, err := newTestExtractor(&buf).Extract(context.Background(), text)
	if !errors.Is(err, ErrMalformedTimestamp) {
		t.Fatalf("expected ErrMalformedTimestamp, got %v", err)
	}
	if res != nil {
		t.Error("expected nil result on error")
	}
	if !strings.Contains(err.Error(), "line 6") {
		t.Errorf("expected error to name line 6, got %v", err)
	}
}

// TestExtract_Strict tests strict mode.
func TestExtract_Strict(t *testing.T) {
	t.Parallel()

	text := "URL: https://a.example\nTitle: A\n"

	var buf bytes.Buffer
	_, err := newTestExtractor(&buf, WithStrict(true)).Extract(context.Background(), text)
	if !errors.Is(err, ErrIncompleteEntry) {
		t.Fatalf("expected ErrIncompleteEntry, got %v", err)
	}
	if !strings.Contains(err.Error(), "Visited On") {
		t.Errorf("expected error to name the missing field, got %v", err)
	}
}

// TestExtract_LogsDroppedEntries tests that dropped entries are not silent.
func TestExtract_LogsDroppedEntries(t *testing.T) {
	t.Parallel()

	text := "URL: https://a.example\nTitle: A\n"

	var buf bytes.Buffer
	res, err := newTestExtractor(&buf).Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Incomplete != 1 {
		t.Errorf("expected 1 incomplete, got %d", res.Incomplete)
	}
	if !strings.Contains(buf.String(), "dropping incomplete history entry") {
		t.Errorf("expected warning in log, got %q", buf.String())
	}
}

// TestExtract_Idempotent tests that repeated extraction gives identical rows.
func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()

	text := "URL: https://a.example\nTitle: A\nVisited On: 01.01.2023 10:00:00\n" +
		"URL: https://b.example\nTitle: B\nVisited On: 02.01.2023 11:30:00\n"

	var buf bytes.Buffer
	x := newTestExtractor(&buf)

	first, err := x.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := x.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Records) != len(second.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		if strings.Join(first.Records[i].Row(), "|") != strings.Join(second.Records[i].Row(), "|") {
			t.Errorf("row %d differs between runs", i)
		}
	}
}

// TestExtract_Cancelled tests that a cancelled context stops long inputs.
func TestExtract_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text := strings.Repeat("noise\n", cancelCheckInterval+1)

	var buf bytes.Buffer
	_, err := newTestExtractor(&buf).Extract(ctx, text)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
