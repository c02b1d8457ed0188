package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tariff-observer/src/models"
)

// PartnersColumn identifies the trading partner in wide trade tables.
const PartnersColumn = "Partners"

// matches "Balance in value in 2020-M06" and product-file headers carrying "2020-M06"
var tradeHeaderPattern = regexp.MustCompile(`(\d{4})-M(\d{2})`)

// -----------------------------------------------------------------------------

// ParseTradeHeader extracts the month a wide trade-balance column refers to.
func ParseTradeHeader(header string) (models.YearMonth, bool) {
	if m := tradeHeaderPattern.FindStringSubmatch(header); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return models.YearMonth{}, false
		}
		return models.YearMonth{Year: year, Month: time.Month(month)}, true
	}
	ym, err := models.ParseYearMonth(header)
	if err != nil {
		return models.YearMonth{}, false
	}
	return ym, true
}

// RenameTradeHeader relabels "Balance in value in 2020-M06" as "2020 June".
// Headers that carry no month are returned unchanged.
func RenameTradeHeader(header string) string {
	if header == PartnersColumn {
		return header
	}
	if ym, ok := ParseTradeHeader(header); ok {
		return ym.Label()
	}
	return header
}

// -----------------------------------------------------------------------------

func normalizeTradeBalance(table models.MRawTable, opts Options) (models.MNormalizeResult, error) {
	partnerCol, err := requireColumn(table, opts.Source, PartnersColumn)
	if err != nil {
		return models.MNormalizeResult{}, err
	}

	diags := &diagnostics{source: opts.Source}

	type monthColumn struct {
		index int
		month models.YearMonth
	}
	var columns []monthColumn
	for i, h := range table.Header {
		if i == partnerCol {
			continue
		}
		ym, ok := ParseTradeHeader(h)
		if !ok {
			diags.add(models.DiagHeader, h, 0, "column %q has no recognisable year-month and was dropped", h)
			continue
		}
		columns = append(columns, monthColumn{index: i, month: ym})
	}

	b := newSeriesBuilder(opts.Source, models.KindTradeBalance, diags)
	for r := range table.Rows {
		row := r + 1
		partner := strings.TrimSpace(table.Cell(r, partnerCol))
		if partner == "" {
			diags.add(models.DiagParse, PartnersColumn, row, "row %d has no partner name and was skipped", row)
			continue
		}
		key := opts.key(partner)
		for _, c := range columns {
			v, perr := parseNumber(table.Cell(r, c.index), table.Header[c.index], row)
			if perr != nil {
				diags.parse(perr)
			}
			b.set(key, c.month, v, row)
		}
	}

	return models.MNormalizeResult{Series: b.build(), Diagnostics: diags.items}, nil
}
