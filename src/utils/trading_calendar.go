package utils

import (
	"strings"
	"time"

	"tariff-observer/src/models"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers business-day questions for one exchange using scmhub/calendar.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar loads the calendar for an ISO 10383 MIC (xnys, xnas, xshg, xhkg ...).
// Unknown MICs fall back to a plain Mon-Fri calendar in UTC.
func GetCalendar(mic string) *TradingCalendar {
	mic = strings.ToLower(strings.TrimSpace(mic))

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		return &TradingCalendar{MIC: mic, Fallback: true, Timezone: time.UTC}
	}

	return &TradingCalendar{MIC: mic, Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// LastTradingDay returns the last business day of the month, or the zero
// time if the exchange was closed for the whole month.
func (tc *TradingCalendar) LastTradingDay(month models.YearMonth) time.Time {
	day := month.AddMonths(1).Time().AddDate(0, 0, -1)
	for day.Month() == month.Month {
		if tc.IsTradingDay(day) {
			return day
		}
		day = day.AddDate(0, 0, -1)
	}
	return time.Time{}
}

// -----------------------------------------------------------------------------

// CoversMonth reports whether an observation dated last reaches the final
// trading day of its month.
func (tc *TradingCalendar) CoversMonth(last time.Time) bool {
	expected := tc.LastTradingDay(models.YearMonthOf(last))
	if expected.IsZero() {
		return true
	}
	y1, m1, d1 := last.Date()
	y2, m2, d2 := expected.Date()
	if y1 != y2 || m1 != m2 {
		return false
	}
	return d1 >= d2
}
