package normalizer

import (
	"sort"
	"time"

	"tariff-observer/src/helpers"
	"tariff-observer/src/models"
	"tariff-observer/src/utils"
)

// -----------------------------------------------------------------------------

// normalizeTariff sorts the irregular rate changes by date and keeps the last
// valid rate per month and direction. Gap filling is left to the aligner.
func normalizeTariff(table models.MRawTable, opts Options) (models.MNormalizeResult, error) {
	dateCol, err := requireColumn(table, opts.Source, DateColumn)
	if err != nil {
		return models.MNormalizeResult{}, err
	}

	columns := opts.Columns
	if len(columns) == 0 {
		columns = utils.DefaultTariffColumns
	}

	diags := &diagnostics{source: opts.Source}

	type directionColumn struct {
		index int
		raw   string
		key   string
	}
	var present []directionColumn
	var firstMissing string
	for i, h := range table.Header {
		if key, ok := columns[h]; ok {
			present = append(present, directionColumn{index: i, raw: h, key: opts.key(key)})
		}
	}
	raws := make([]string, 0, len(columns))
	for raw := range columns {
		raws = append(raws, raw)
	}
	sort.Strings(raws)
	for _, raw := range raws {
		if table.ColumnIndex(raw) < 0 {
			if firstMissing == "" {
				firstMissing = raw
			}
			diags.add(models.DiagHeader, raw, 0, "tariff column %q not found", raw)
		}
	}
	if len(present) == 0 {
		return models.MNormalizeResult{}, helpers.NewSchemaError(opts.Source, firstMissing)
	}
	type tariffRow struct {
		row  int
		date time.Time
	}
	rows := make([]tariffRow, 0, len(table.Rows))
	for r := range table.Rows {
		raw := table.Cell(r, dateCol)
		date, ok := parseDayFirst(raw)
		if !ok {
			diags.parse(helpers.NewParseError(DateColumn, r+1, raw, nil))
			continue
		}
		rows = append(rows, tariffRow{row: r, date: date})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	b := newSeriesBuilder(opts.Source, models.KindTariff, diags)
	for _, c := range present {
		b.series(c.key)
	}
	for _, tr := range rows {
		month := models.YearMonthOf(tr.date)
		for _, c := range present {
			v, perr := parseNumber(table.Cell(tr.row, c.index), c.raw, tr.row+1)
			if perr != nil {
				diags.parse(perr)
			}
			pts := b.series(c.key)
			if _, seen := pts[month.Ordinal()]; !seen || v.Valid {
				b.replace(c.key, month, v)
			}
		}
	}

	return models.MNormalizeResult{Series: b.build(), Diagnostics: diags.items}, nil
}
