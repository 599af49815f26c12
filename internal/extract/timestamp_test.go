package extract

import (
	"errors"
	"testing"
)

// TestNormalizeTimestamp tests conversion to the canonical layout.
func TestNormalizeTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "day and month are swapped into ISO order", raw: "05.03.2024 13:45:10", want: "2024-03-05 13:45:10"},
		{name: "new year morning", raw: "01.01.2023 10:00:00", want: "2023-01-01 10:00:00"},
		{name: "end of leap day", raw: "29.02.2024 23:59:59", want: "2024-02-29 23:59:59"},
		{name: "ISO date is rejected", raw: "2024-03-05", wantErr: true},
		{name: "ISO date time is rejected", raw: "2024-03-05 13:45:10", wantErr: true},
		{name: "missing seconds", raw: "05.03.2024 13:45", wantErr: true},
		{name: "single digit day", raw: "5.03.2024 13:45:10", wantErr: true},
		{name: "impossible date", raw: "31.02.2024 10:00:00", wantErr: true},
		{name: "twelve hour clock", raw: "05.03.2024 1:45:10 PM", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeTimestamp(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTimestamp) {
					t.Errorf("expected ErrMalformedTimestamp, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeTimestamp(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// TestParseVisitedOn_UTC tests that parsed times keep their wall clock in UTC.
func TestParseVisitedOn_UTC(t *testing.T) {
	t.Parallel()

	got, err := ParseVisitedOn("05.03.2024 13:45:10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location().String() != "UTC" {
		t.Errorf("expected UTC, got %s", got.Location())
	}
	if got.Hour() != 13 || got.Minute() != 45 || got.Second() != 10 {
		t.Errorf("unexpected wall clock: %v", got)
	}
}
