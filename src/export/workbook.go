package export

import (
	"fmt"
	"io"
	"strings"

	"tariff-observer/src/models"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of an exported workbook.
type Sheet struct {
	Name  string
	Table Table
}

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer("[", "(", "]", ")", ":", "-", "*", "-", "?", "", "/", "-", "\\", "-")

// SheetName makes a valid, unique worksheet name.
func SheetName(name string, used map[string]bool) string {
	base := sheetNameReplacer.Replace(strings.TrimSpace(name))
	if base == "" {
		base = "Sheet"
	}
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	candidate := base
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		candidate = trimmed + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// -----------------------------------------------------------------------------

// WorkbookXLSX writes every sheet into one workbook. Numbers stay numeric,
// undefined values are written as "undefined".
func WorkbookXLSX(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	used := make(map[string]bool)
	defaultSheet := f.GetSheetName(0)
	for i, s := range sheets {
		name := SheetName(s.Name, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		header := make([]interface{}, len(s.Table.Header))
		for c, h := range s.Table.Header {
			header[c] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		if len(header) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(header), 1)
			if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
				return err
			}
		}

		for r, row := range s.Table.Rows {
			cells := make([]interface{}, len(row))
			for c, v := range row {
				cells[c] = xlsxValue(v)
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return err
			}
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func xlsxValue(v interface{}) interface{} {
	switch c := v.(type) {
	case models.MNullFloat:
		if !c.Valid {
			return models.UndefinedText
		}
		return c.Float64
	case models.YearMonth:
		return c.String()
	}
	return v
}

// -----------------------------------------------------------------------------

// DashboardSheets lays out every table of a dashboard, panel by panel, then
// the sentiment tables.
func DashboardSheets(d *models.MDashboard) []Sheet {
	var sheets []Sheet
	for _, name := range d.PanelOrder {
		view := d.Panels[name]
		if view == nil {
			continue
		}
		if view.Panel != nil {
			sheets = append(sheets, Sheet{Name: name, Table: PanelTable(view.Panel)})
		}
		if view.Comparison != nil {
			sheets = append(sheets, Sheet{Name: name + " comparison", Table: ComparisonTable(*view.Comparison)})
		}
		if view.Correlation != nil {
			sheets = append(sheets, Sheet{Name: name + " correlation", Table: CorrelationTable(*view.Correlation)})
		}
	}
	if d.Sentiment != nil {
		sheets = append(sheets,
			Sheet{Name: "sentiment stats", Table: SentimentStatsTable(d.Sentiment.CountryStats)},
			Sheet{Name: "sentiment timeline", Table: SentimentTimelineTable(d.Sentiment.Timeline)},
		)
	}
	return sheets
}
