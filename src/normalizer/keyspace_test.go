package normalizer

import (
	"testing"

	"tariff-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceKeySpace(t *testing.T) {
	analysis := models.MAnalysisConfig{IndicatorStartYear: 2020, IndicatorEndYear: 2024}

	trade := SourceKeySpace(models.MSourceConfig{Name: "t", Kind: models.KindTradeBalance, KeyPrefix: "US "}, analysis)
	assert.Equal(t, KeySpace{Open: true, Prefix: "US "}, trade)

	price := SourceKeySpace(models.MSourceConfig{Name: "spx", Kind: models.KindDailyPrice}, analysis)
	assert.Equal(t, []string{"spx"}, price.Keys, "entity key defaults to the source name")

	gdp := SourceKeySpace(models.MSourceConfig{Name: "g", Kind: models.KindYearlyIndicator, Indicator: "GDP",
		Countries: []string{"Korea, Rep.", "China"}}, analysis)
	assert.Equal(t, []string{"Korea,_Rep._GDP", "China_GDP"}, gdp.Keys)

	tariff := SourceKeySpace(models.MSourceConfig{Name: "tariffs", Kind: models.KindTariff}, analysis)
	assert.Equal(t, []string{"CN_to_ROW", "CN_to_US", "US_to_CN", "US_to_ROW"}, tariff.Keys)

	news := SourceKeySpace(models.MSourceConfig{Name: "n", Kind: models.KindNews}, analysis)
	assert.Equal(t, "_Sentiment", news.Suffix)
}

func TestKeySpaceOverlap(t *testing.T) {
	cases := []struct {
		name string
		a, b KeySpace
		want string
		ok   bool
	}{
		{"same fixed key", KeySpace{Keys: []string{"A", "B"}}, KeySpace{Keys: []string{"C", "B"}}, "B", true},
		{"disjoint fixed keys", KeySpace{Keys: []string{"A"}}, KeySpace{Keys: []string{"B"}}, "", false},
		{"two bare open spaces", KeySpace{Open: true}, KeySpace{Open: true}, "*", true},
		{"nested prefixes", KeySpace{Open: true, Prefix: "US"}, KeySpace{Open: true, Prefix: "US HS12 "}, "US HS12 *", true},
		{"diverging prefixes", KeySpace{Open: true, Prefix: "HS12 "}, KeySpace{Open: true, Prefix: "HS39 "}, "", false},
		{"diverging suffixes", KeySpace{Open: true, Suffix: "_Sentiment"}, KeySpace{Open: true, Suffix: " (trade)"}, "", false},
		{"open space covers fixed key", KeySpace{Open: true}, KeySpace{Keys: []string{"World"}}, "World", true},
		{"fixed key equal to the affixes only", KeySpace{Keys: []string{"_Sentiment"}}, KeySpace{Open: true, Suffix: "_Sentiment"}, "", false},
		{"suffix keeps indicators apart", KeySpace{Open: true, Suffix: "_Sentiment"}, KeySpace{Keys: []string{"China_GDP"}}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.a.Overlap(tc.b)
			require.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
