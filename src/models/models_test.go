package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearMonth(t *testing.T) {
	cases := []struct {
		in   string
		want YearMonth
	}{
		{"2020-06", YearMonth{2020, time.June}},
		{"2020-6", YearMonth{2020, time.June}},
		{"2020-M06", YearMonth{2020, time.June}},
		{" 2025-M03 ", YearMonth{2025, time.March}},
		{"2020 June", YearMonth{2020, time.June}},
		{"2020 Jun", YearMonth{2020, time.June}},
		{"2020 sept.", YearMonth{2020, time.September}},
		{"Jun 2020", YearMonth{2020, time.June}},
		{"Sept 2021", YearMonth{2021, time.September}},
		{"sept-2021", YearMonth{2021, time.September}},
		{"DECEMBER 2019", YearMonth{2019, time.December}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseYearMonth(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "2020", "2020-13", "2020-M00", "2020 Smarch", "June", "06-2020"} {
		_, err := ParseYearMonth(bad)
		assert.Error(t, err, bad)
	}
}

func TestYearMonthOrdinalRoundTrip(t *testing.T) {
	for ord := -30; ord <= 30; ord++ {
		ym := YearMonthFromOrdinal(ord)
		assert.Equal(t, ord, ym.Ordinal(), "ordinal %d", ord)
		assert.True(t, ym.Month >= time.January && ym.Month <= time.December, "ordinal %d", ord)
	}

	assert.Equal(t, YearMonth{-1, time.December}, YearMonthFromOrdinal(-1))
	assert.Equal(t, YearMonth{-1, time.January}, YearMonthFromOrdinal(-12))
	assert.Equal(t, YearMonth{-2, time.December}, YearMonthFromOrdinal(-13))

	assert.Equal(t, YearMonth{2021, time.January}, NewYearMonth(2020, 13))
	assert.Equal(t, YearMonth{2019, time.December}, NewYearMonth(2020, 0))
	assert.Equal(t, YearMonth{2019, time.November}, YearMonth{2020, time.February}.AddMonths(-3))
}

func TestYearMonthText(t *testing.T) {
	var ym YearMonth
	require.NoError(t, ym.UnmarshalText([]byte("2024 March")))
	assert.Equal(t, "2024-03", ym.String())
	assert.Equal(t, "2024 March", ym.Label())
	assert.Equal(t, 1, ym.Quarter())

	require.NoError(t, ym.UnmarshalText([]byte("  ")))
	assert.True(t, ym.IsZero())
	assert.Equal(t, "", ym.String())
	assert.Error(t, ym.UnmarshalText([]byte("soon")))

	assert.Nil(t, MonthRange(NewYearMonth(2020, 3), NewYearMonth(2020, 1)))
	assert.Len(t, MonthRange(NewYearMonth(2019, 11), NewYearMonth(2020, 2)), 4)
}

func TestNullFloatJSON(t *testing.T) {
	cases := []struct {
		name string
		in   MNullFloat
		json string
	}{
		{"defined", Float(1.5), "1.5"},
		{"negative", Float(-40), "-40"},
		{"undefined", Undefined(), "null"},
		{"nan collapses to undefined", Float(math.NaN()), "null"},
		{"infinity collapses to undefined", Float(math.Inf(1)), "null"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.in)
			require.NoError(t, err)
			assert.JSONEq(t, tc.json, string(data))

			var back MNullFloat
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tc.in, back)
		})
	}

	var n MNullFloat
	require.NoError(t, json.Unmarshal([]byte(`"undefined"`), &n))
	assert.False(t, n.Valid)
	require.NoError(t, json.Unmarshal([]byte(" 2.25 "), &n))
	assert.Equal(t, Float(2.25), n)
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &n))

	assert.Equal(t, "undefined", Undefined().String())
	assert.Equal(t, "12.30", Float(12.3).Format(2))
}
