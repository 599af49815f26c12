package sheet

import (
	"path/filepath"
	"strings"
	"testing"
)

// TestSheetName tests worksheet name derivation.
func TestSheetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple file", input: "history.txt", want: "history"},
		{name: "only text before the first dot is kept", input: "history.export.txt", want: "history"},
		{name: "directories are ignored", input: filepath.Join("exports", "2024", "chrome.history.txt"), want: "chrome"},
		{name: "relative path with dot directory", input: filepath.Join(".", "data", "visits.txt"), want: "visits"},
		{name: "no extension", input: "visits", want: "visits"},
		{name: "Cyrillic name", input: "історія.txt", want: "історія"},
		{name: "dot file falls back to default", input: ".history", want: DefaultSheetName},
		{name: "invalid characters are replaced", input: "a[1]*b?.txt", want: "a_1__b_"},
		{name: "leading apostrophe is trimmed", input: "'quoted'.txt", want: "quoted"},
		{name: "long names are truncated to 31 characters", input: strings.Repeat("щ", 40) + ".txt", want: strings.Repeat("щ", 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SheetName(tt.input); got != tt.want {
				t.Errorf("SheetName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
