package normalizer

import (
	"sort"
	"time"

	"tariff-observer/src/helpers"
	"tariff-observer/src/models"
	"tariff-observer/src/utils"
)

const (
	DateColumn  = "Date"
	PriceColumn = "Price"
)

type dailyObservation struct {
	row   int
	date  time.Time
	value models.MNullFloat
}

// -----------------------------------------------------------------------------

// normalizeDailyPrice keeps, per month, the last chronological valid price.
// Prices are never averaged.
func normalizeDailyPrice(table models.MRawTable, opts Options) (models.MNormalizeResult, error) {
	dateCol, err := requireColumn(table, opts.Source, DateColumn)
	if err != nil {
		return models.MNormalizeResult{}, err
	}
	priceCol, err := requireColumn(table, opts.Source, PriceColumn)
	if err != nil {
		return models.MNormalizeResult{}, err
	}

	key := opts.EntityKey
	if key == "" {
		key = opts.Source
	}
	key = opts.key(key)

	diags := &diagnostics{source: opts.Source}

	obs := make([]dailyObservation, 0, len(table.Rows))
	for r := range table.Rows {
		row := r + 1
		raw := table.Cell(r, dateCol)
		date, ok := parseDayFirst(raw)
		if !ok {
			diags.parse(helpers.NewParseError(DateColumn, row, raw, nil))
			continue
		}
		v, perr := parseNumber(table.Cell(r, priceCol), PriceColumn, row)
		if perr != nil {
			diags.parse(perr)
		}
		obs = append(obs, dailyObservation{row: row, date: date, value: v})
	}

	// ties on the same date keep file order, so the later row wins
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].date.Before(obs[j].date) })

	b := newSeriesBuilder(opts.Source, models.KindDailyPrice, diags)
	lastValid := make(map[int]time.Time)
	for _, o := range obs {
		month := models.YearMonthOf(o.date)
		pts := b.series(key)
		if _, seen := pts[month.Ordinal()]; !seen {
			b.replace(key, month, models.Undefined())
		}
		if o.value.Valid {
			b.replace(key, month, o.value)
			lastValid[month.Ordinal()] = o.date
		}
	}

	if opts.CalendarMIC != "" && len(lastValid) > 1 {
		checkCoverage(diags, key, opts.CalendarMIC, lastValid)
	}

	return models.MNormalizeResult{Series: b.build(), Diagnostics: diags.items}, nil
}

// -----------------------------------------------------------------------------

// checkCoverage flags months whose last price precedes the exchange's last
// trading day. The final month is usually partial and is not checked.
func checkCoverage(diags *diagnostics, key, mic string, lastValid map[int]time.Time) {
	cal := utils.GetCalendar(mic)

	ords := make([]int, 0, len(lastValid))
	for ord := range lastValid {
		ords = append(ords, ord)
	}
	sort.Ints(ords)

	for _, ord := range ords[:len(ords)-1] {
		last := lastValid[ord]
		if !cal.CoversMonth(last) {
			diags.info(models.DiagCoverage, key, "%s: last %s price on %s precedes the final trading day",
				models.YearMonthFromOrdinal(ord), key, last.Format("2006-01-02"))
		}
	}
}
