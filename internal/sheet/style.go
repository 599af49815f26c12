package sheet

import "github.com/xuri/excelize/v2"

// Header labels of the three columns: address, page title, date and time.
var Headers = []string{"Адреса", "Назва сторінки", "Дата та час"}

// Column widths in characters.
const (
	URLColumnWidth   = 90
	TitleColumnWidth = 60
	DateColumnWidth  = 30
)

// Font sizes and colors.
const (
	HeaderFontSize  = 16
	DataFontSize    = 14
	HeaderFillColor = "C9C9C9"
	BorderColor     = "000000"
)

// excelize pattern and border style codes.
const (
	fillPatternSolid = 1
	borderStyleThin  = 1
)

// thinBorder returns a thin border on all four sides.
func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: BorderColor, Style: borderStyleThin}
	}
	return borders
}

// headerStyle is bold, larger, grey-filled and centered.
func headerStyle() *excelize.Style {
	return &excelize.Style{
		Border: thinBorder(),
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: fillPatternSolid,
			Color:   []string{HeaderFillColor},
		},
		Font: &excelize.Font{
			Bold: true,
			Size: HeaderFontSize,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	}
}

// dataStyle is smaller, centered and wrapped.
func dataStyle() *excelize.Style {
	return &excelize.Style{
		Border: thinBorder(),
		Font: &excelize.Font{
			Size: DataFontSize,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			WrapText:   true,
		},
	}
}
