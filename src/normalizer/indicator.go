package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tariff-observer/src/models"
)

// CountryNameColumn identifies the economy in World Bank style tables.
const CountryNameColumn = "Country Name"

var yearHeaderPattern = regexp.MustCompile(`^(\d{4})(?:\s*\[YR\d{4}\])?$`)

// IndicatorKey namespaces an indicator series away from bare partner keys,
// e.g. "Korea, Rep." + "GDP" -> "Korea,_Rep._GDP".
func IndicatorKey(country, indicator string) string {
	return strings.ReplaceAll(strings.TrimSpace(country), " ", "_") + "_" + indicator
}

// -----------------------------------------------------------------------------

// normalizeYearlyIndicator expands each yearly value into twelve identical
// monthly points. No interpolation happens between years.
func normalizeYearlyIndicator(table models.MRawTable, opts Options) (models.MNormalizeResult, error) {
	countryCol, err := requireColumn(table, opts.Source, CountryNameColumn)
	if err != nil {
		return models.MNormalizeResult{}, err
	}

	indicator := opts.Indicator
	if indicator == "" {
		indicator = opts.Source
	}

	wanted := make(map[string]bool, len(opts.Countries))
	for _, c := range opts.Countries {
		wanted[c] = true
	}

	type yearColumn struct {
		index int
		year  int
	}
	var years []yearColumn
	for i, h := range table.Header {
		m := yearHeaderPattern.FindStringSubmatch(h)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		if opts.StartYear != 0 && year < opts.StartYear {
			continue
		}
		if opts.EndYear != 0 && year > opts.EndYear {
			continue
		}
		years = append(years, yearColumn{index: i, year: year})
	}

	diags := &diagnostics{source: opts.Source}
	if len(years) == 0 {
		diags.add(models.DiagHeader, "", 0, "no year columns between %d and %d", opts.StartYear, opts.EndYear)
	}

	b := newSeriesBuilder(opts.Source, models.KindYearlyIndicator, diags)
	for r := range table.Rows {
		row := r + 1
		country := strings.TrimSpace(table.Cell(r, countryCol))
		if country == "" || (len(wanted) > 0 && !wanted[country]) {
			continue
		}
		key := opts.key(IndicatorKey(country, indicator))
		for _, y := range years {
			v, perr := parseNumber(table.Cell(r, y.index), table.Header[y.index], row)
			if perr != nil {
				diags.parse(perr)
			}
			for m := time.January; m <= time.December; m++ {
				b.set(key, models.NewYearMonth(y.year, m), v, row)
			}
		}
	}

	for _, c := range opts.Countries {
		if _, ok := b.points[opts.key(IndicatorKey(c, indicator))]; !ok {
			diags.info(models.DiagCoverage, CountryNameColumn, "country %q not present in %s", c, opts.Source)
		}
	}

	return models.MNormalizeResult{Series: b.build(), Diagnostics: diags.items}, nil
}
