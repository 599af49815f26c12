package sheet

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultSheetName is used when no usable name can be derived from the input.
const DefaultSheetName = "Sheet1"

// maxSheetNameLength is the longest worksheet name spreadsheet apps accept.
const maxSheetNameLength = 31

// invalidSheetNameChars are not allowed anywhere in a worksheet name.
var invalidSheetNameChars = strings.NewReplacer(
	`\`, "_", "/", "_", "?", "_", "*", "_", ":", "_", "[", "_", "]", "_",
)

// SheetName derives the worksheet name from the input path: the file's base
// name up to its first dot. "history.export.txt" becomes "history".
func SheetName(inputPath string) string {
	base := filepath.Base(inputPath)
	name, _, _ := strings.Cut(base, ".")

	name = invalidSheetNameChars.Replace(name)
	name = strings.Trim(name, "'")

	if utf8.RuneCountInString(name) > maxSheetNameLength {
		name = string([]rune(name)[:maxSheetNameLength])
	}

	if strings.TrimSpace(name) == "" {
		return DefaultSheetName
	}
	return name
}
