package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// YearMonth is a calendar month with no day component.
type YearMonth struct {
	Year  int
	Month time.Month
}

var (
	ymNumeric   = regexp.MustCompile(`^(\d{4})-M?(\d{1,2})$`)
	ymYearFirst = regexp.MustCompile(`^(\d{4})\s+([A-Za-z]+)\.?$`)
	ymNameFirst = regexp.MustCompile(`^([A-Za-z]+)\.?[\s-]+(\d{4})$`)
)

var monthNames = func() map[string]time.Month {
	m := make(map[string]time.Month, 24)
	for mo := time.January; mo <= time.December; mo++ {
		full := strings.ToLower(mo.String())
		m[full] = mo
		m[full[:3]] = mo
	}
	m["sept"] = time.September
	return m
}()

// -----------------------------------------------------------------------------

// NewYearMonth builds a YearMonth, normalising out-of-range months.
func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonthFromOrdinal(year*12 + int(month) - 1)
}

// YearMonthOf truncates a timestamp to its containing month.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// YearMonthFromOrdinal is the inverse of Ordinal.
func YearMonthFromOrdinal(ord int) YearMonth {
	year := ord / 12
	month := ord % 12
	if month < 0 {
		month += 12
		year--
	}
	return YearMonth{Year: year, Month: time.Month(month + 1)}
}

// -----------------------------------------------------------------------------

// ParseMonthName resolves full or three-letter English month names.
func ParseMonthName(s string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// ParseYearMonth accepts "2020-06", "2020-M06", "2020 June", "2020 Jun" and "Jun 2020".
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)

	if m := ymNumeric.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return YearMonth{}, fmt.Errorf("invalid month %q in %q", m[2], s)
		}
		return YearMonth{Year: year, Month: time.Month(month)}, nil
	}

	if m := ymYearFirst.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		if month, ok := ParseMonthName(m[2]); ok {
			return YearMonth{Year: year, Month: month}, nil
		}
	}

	if m := ymNameFirst.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[2])
		if month, ok := ParseMonthName(m[1]); ok {
			return YearMonth{Year: year, Month: month}, nil
		}
	}

	return YearMonth{}, fmt.Errorf("unrecognised year-month %q", s)
}

// MustParseYearMonth panics on malformed input. Intended for constants and tests.
func MustParseYearMonth(s string) YearMonth {
	ym, err := ParseYearMonth(s)
	if err != nil {
		panic(err)
	}
	return ym
}

// -----------------------------------------------------------------------------

// Ordinal maps the month onto a contiguous integer axis.
func (ym YearMonth) Ordinal() int {
	return ym.Year*12 + int(ym.Month) - 1
}

func (ym YearMonth) AddMonths(n int) YearMonth {
	return YearMonthFromOrdinal(ym.Ordinal() + n)
}

// Compare returns -1, 0 or +1.
func (ym YearMonth) Compare(other YearMonth) int {
	a, b := ym.Ordinal(), other.Ordinal()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (ym YearMonth) Before(other YearMonth) bool { return ym.Ordinal() < other.Ordinal() }
func (ym YearMonth) After(other YearMonth) bool  { return ym.Ordinal() > other.Ordinal() }

func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

// Time returns midnight UTC on the first day of the month.
func (ym YearMonth) Time() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Quarter returns 1..4.
func (ym YearMonth) Quarter() int {
	return (int(ym.Month)-1)/3 + 1
}

func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Label renders the "2020 June" form used by the trade-balance tables.
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%04d %s", ym.Year, ym.Month.String())
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*ym = YearMonth{}
		return nil
	}
	parsed, err := ParseYearMonth(string(text))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// -----------------------------------------------------------------------------

// MonthRange lists every month from start to end inclusive. It is empty when end precedes start.
func MonthRange(start, end YearMonth) []YearMonth {
	if end.Before(start) {
		return nil
	}
	n := end.Ordinal() - start.Ordinal() + 1
	months := make([]YearMonth, n)
	for i := range months {
		months[i] = start.AddMonths(i)
	}
	return months
}
