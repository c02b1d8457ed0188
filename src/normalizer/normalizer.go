package normalizer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"tariff-observer/src/helpers"
	"tariff-observer/src/models"
	"tariff-observer/src/utils"
)

// Options carries the per-source settings a normalizer needs.
type Options struct {
	Source    string // name used in diagnostics; defaults to the table name
	EntityKey string // daily_price series key
	KeyPrefix string
	KeySuffix string

	Indicator string // yearly_indicator key suffix, e.g. "GDP"
	Countries []string
	StartYear int
	EndYear   int

	Columns     map[string]string // tariff raw header -> entity key
	CalendarMIC string            // daily_price coverage check; empty disables it
}

// OptionsFromSource maps a configured source onto normalizer options.
func OptionsFromSource(src models.MSourceConfig, analysis models.MAnalysisConfig) Options {
	opts := Options{
		Source:      src.Name,
		EntityKey:   src.EntityKey,
		KeyPrefix:   src.KeyPrefix,
		KeySuffix:   src.KeySuffix,
		Indicator:   src.Indicator,
		Countries:   src.Countries,
		StartYear:   src.StartYear,
		EndYear:     src.EndYear,
		Columns:     src.Columns,
		CalendarMIC: src.Calendar,
	}
	if src.Kind == models.KindYearlyIndicator {
		if opts.StartYear == 0 {
			opts.StartYear = analysis.IndicatorStartYear
		}
		if opts.EndYear == 0 {
			opts.EndYear = analysis.IndicatorEndYear
		}
		if len(opts.Countries) == 0 {
			opts.Countries = utils.DefaultIndicatorCountries
		}
	}
	if src.Kind == models.KindTariff && len(opts.Columns) == 0 {
		opts.Columns = utils.DefaultTariffColumns
	}
	return opts
}

// -----------------------------------------------------------------------------

// Normalize converts a raw table into monthly series. A missing required
// column fails the whole source with a *helpers.SchemaError; every other
// problem is reported as a diagnostic in the result.
func Normalize(table models.MRawTable, kind models.SourceKind, opts Options) (models.MNormalizeResult, error) {
	if opts.Source == "" {
		opts.Source = table.Name
	}

	switch kind {
	case models.KindTradeBalance:
		return normalizeTradeBalance(table, opts)
	case models.KindDailyPrice:
		return normalizeDailyPrice(table, opts)
	case models.KindYearlyIndicator:
		return normalizeYearlyIndicator(table, opts)
	case models.KindTariff:
		return normalizeTariff(table, opts)
	case models.KindNews:
		return normalizeNews(table, opts)
	}
	return models.MNormalizeResult{}, fmt.Errorf("source %s: unknown kind %q", opts.Source, kind)
}

// -----------------------------------------------------------------------------

func requireColumn(table models.MRawTable, source, column string) (int, error) {
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return -1, helpers.NewSchemaError(source, column)
	}
	return idx, nil
}

func (o Options) key(base string) string {
	return o.KeyPrefix + base + o.KeySuffix
}

// -----------------------------------------------------------------------------
// diagnostics
// -----------------------------------------------------------------------------

type diagnostics struct {
	source string
	items  []models.MDiagnostic
}

func (d *diagnostics) add(kind models.DiagnosticKind, column string, row int, format string, args ...interface{}) {
	d.items = append(d.items, models.MDiagnostic{
		Source:   d.source,
		Kind:     kind,
		Severity: models.SeverityWarning,
		Column:   column,
		Row:      row,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (d *diagnostics) info(kind models.DiagnosticKind, column string, format string, args ...interface{}) {
	d.items = append(d.items, models.MDiagnostic{
		Source:   d.source,
		Kind:     kind,
		Severity: models.SeverityInfo,
		Column:   column,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (d *diagnostics) parse(err *helpers.ParseError) {
	d.add(models.DiagParse, err.Column, err.Row, "%s", err.Error())
}

// -----------------------------------------------------------------------------
// series builder
// -----------------------------------------------------------------------------

// seriesBuilder collects points per entity key in first-seen key order.
type seriesBuilder struct {
	source string
	kind   models.SourceKind
	order  []string
	points map[string]map[int]models.MNullFloat
	diags  *diagnostics
}

func newSeriesBuilder(source string, kind models.SourceKind, diags *diagnostics) *seriesBuilder {
	return &seriesBuilder{
		source: source,
		kind:   kind,
		points: make(map[string]map[int]models.MNullFloat),
		diags:  diags,
	}
}

func (b *seriesBuilder) series(key string) map[int]models.MNullFloat {
	pts, ok := b.points[key]
	if !ok {
		pts = make(map[int]models.MNullFloat)
		b.points[key] = pts
		b.order = append(b.order, key)
	}
	return pts
}

// set records a value; a second value for the same month replaces the
// first and is reported as a duplicate.
func (b *seriesBuilder) set(key string, month models.YearMonth, value models.MNullFloat, row int) {
	pts := b.series(key)
	if _, dup := pts[month.Ordinal()]; dup {
		b.diags.add(models.DiagDuplicate, key, row, "duplicate value for %s in %s, last value wins", key, month)
	}
	pts[month.Ordinal()] = value
}

// replace overwrites silently. Callers feed rows in chronological order.
func (b *seriesBuilder) replace(key string, month models.YearMonth, value models.MNullFloat) {
	b.series(key)[month.Ordinal()] = value
}

func (b *seriesBuilder) build() []models.MNormalizedSeries {
	out := make([]models.MNormalizedSeries, 0, len(b.order))
	for _, key := range b.order {
		pts := b.points[key]
		ords := make([]int, 0, len(pts))
		for ord := range pts {
			ords = append(ords, ord)
		}
		sort.Ints(ords)

		s := models.MNormalizedSeries{
			EntityKey: key,
			Source:    b.source,
			Kind:      b.kind,
			Points:    make([]models.MTimeSeriesPoint, 0, len(ords)),
		}
		for _, ord := range ords {
			s.Points = append(s.Points, models.MTimeSeriesPoint{
				EntityKey: key,
				Month:     models.YearMonthFromOrdinal(ord),
				Value:     pts[ord],
			})
		}
		out = append(out, s)
	}
	return out
}

// -----------------------------------------------------------------------------
// cell parsing
// -----------------------------------------------------------------------------

var missingTokens = map[string]bool{
	"": true, "-": true, "..": true, "nan": true, "na": true, "n/a": true, "null": true, "none": true,
}

// parseNumber strips thousands separators. Blank and placeholder cells are
// missing without error.
func parseNumber(raw, column string, row int) (models.MNullFloat, *helpers.ParseError) {
	s := strings.TrimSpace(raw)
	if missingTokens[strings.ToLower(s)] {
		return models.Undefined(), nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Undefined(), helpers.NewParseError(column, row, raw, err)
	}
	return models.Float(v), nil
}

// dayFirstLayouts are tried in order for free-form dates.
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/06",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"2006-01",
}

func parseDayFirst(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return parseDayFirst(s)
}
