package xlsexport

import (
	"github.com/xuri/excelize/v2"
)

const fontFamily = "Calibri"

type column struct {
	title string
	width float64
}

func titles(columns []column) []string {
	result := make([]string, 0, len(columns))
	for _, c := range columns {
		result = append(result, c.title)
	}
	return result
}

func cellName(col, row int) string {
	// col and row are always positive here
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// writeHeader first row, frozen and filterable
func writeHeader(f *excelize.File, sheet string, columns []column) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Font:      &excelize.Font{Bold: true, Family: fontFamily, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#8EA9DB", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	for idx, c := range columns {
		colName, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return err
		}
		if err = f.SetColWidth(sheet, colName, colName, c.width); err != nil {
			return err
		}
		if err = f.SetCellValue(sheet, cellName(idx+1, 1), c.title); err != nil {
			return err
		}
	}
	if err = f.SetCellStyle(sheet, cellName(1, 1), cellName(len(columns), 1), style); err != nil {
		return err
	}
	if err = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.AutoFilter(sheet, cellName(1, 1)+":"+cellName(len(columns), 1), nil)
}

// newFillStyles data cell style per fill color, "" is an unfilled cell
func newFillStyles(f *excelize.File, colors ...string) (map[string]int, error) {
	result := map[string]int{}
	for _, color := range append([]string{""}, colors...) {
		style := &excelize.Style{
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
			Font:      &excelize.Font{Family: fontFamily, Size: 11},
		}
		if color != "" {
			style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
		}
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, err
		}
		result[color] = id
	}
	return result, nil
}
