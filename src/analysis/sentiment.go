package analysis

import (
	"fmt"
	"sort"

	"tariff-observer/src/analysis/core"
	"tariff-observer/src/models"
)

// -----------------------------------------------------------------------------

// CountLabels counts articles per sentiment label. Unknown labels are ignored.
func CountLabels(articles []models.MNewsArticle) models.MLabelCounts {
	var c models.MLabelCounts
	for _, a := range articles {
		switch a.Label {
		case models.LabelPositive:
			c.Positive++
		case models.LabelNegative:
			c.Negative++
		case models.LabelNeutral:
			c.Neutral++
		}
	}
	return c
}

// -----------------------------------------------------------------------------

// PeriodLabel names the bucket of a month: "2024-03", "2024Q1" or "2024".
func PeriodLabel(month models.YearMonth, g models.Granularity) string {
	switch g {
	case models.GranularityQuarterly:
		return fmt.Sprintf("%04dQ%d", month.Year, month.Quarter())
	case models.GranularityYearly:
		return fmt.Sprintf("%04d", month.Year)
	}
	return month.String()
}

// validScores returns the defined sentiment scores.
func validScores(articles []models.MNewsArticle) []float64 {
	out := make([]float64, 0, len(articles))
	for _, a := range articles {
		if a.Score.Valid {
			out = append(out, a.Score.Float64)
		}
	}
	return out
}

// filterCountries keeps articles of the given countries; an empty list keeps all.
func filterCountries(articles []models.MNewsArticle, countries []string) []models.MNewsArticle {
	if len(countries) == 0 {
		return articles
	}
	wanted := make(map[string]bool, len(countries))
	for _, c := range countries {
		wanted[c] = true
	}
	out := make([]models.MNewsArticle, 0, len(articles))
	for _, a := range articles {
		if wanted[a.Country] {
			out = append(out, a)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// BuildTimeline aggregates articles per (country, period), sorted by country
// then period. ArticleCount counts scored articles, label counts count every
// article, and percentages are relative to ArticleCount.
func BuildTimeline(articles []models.MNewsArticle, g models.Granularity, countries []string) []models.MSentimentPeriod {
	type bucket struct {
		country string
		period  string
	}
	groups := make(map[bucket][]models.MNewsArticle)
	for _, a := range filterCountries(articles, countries) {
		if a.PublishedAt.IsZero() {
			continue
		}
		k := bucket{country: a.Country, period: PeriodLabel(models.YearMonthOf(a.PublishedAt), g)}
		groups[k] = append(groups[k], a)
	}

	keys := make([]bucket, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].period < keys[j].period
	})

	out := make([]models.MSentimentPeriod, 0, len(keys))
	for _, k := range keys {
		group := groups[k]
		scores := validScores(group)
		mean, std := core.CalculateMeanStd(scores)
		labels := CountLabels(group)
		out = append(out, models.MSentimentPeriod{
			Country:       k.country,
			Period:        k.period,
			AvgSentiment:  mean,
			SentimentStd:  std,
			ArticleCount:  len(scores),
			PositiveCount: labels.Positive,
			NegativeCount: labels.Negative,
			NeutralCount:  labels.Neutral,
			PositivePct:   core.Percentage(labels.Positive, len(scores)),
			NegativePct:   core.Percentage(labels.Negative, len(scores)),
		})
	}
	return out
}

// -----------------------------------------------------------------------------

// CountryStatistics summarises each country, sorted by mean sentiment
// descending with undefined means last.
func CountryStatistics(articles []models.MNewsArticle, countries []string) []models.MCountrySentiment {
	var order []string
	groups := make(map[string][]models.MNewsArticle)
	for _, a := range filterCountries(articles, countries) {
		if _, ok := groups[a.Country]; !ok {
			order = append(order, a.Country)
		}
		groups[a.Country] = append(groups[a.Country], a)
	}
	sort.Strings(order)

	out := make([]models.MCountrySentiment, 0, len(order))
	for _, country := range order {
		out = append(out, countryRow(country, groups[country]))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].AvgSentiment, out[j].AvgSentiment
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Float64 > b.Float64
	})
	return out
}

func countryRow(country string, group []models.MNewsArticle) models.MCountrySentiment {
	scores := validScores(group)
	mean, std := core.CalculateMeanStd(scores)
	lo, hi := core.MinMax(scores)
	labels := CountLabels(group)
	total := len(scores)

	row := models.MCountrySentiment{
		Country:         country,
		AvgSentiment:    core.RoundNull(mean, 4),
		SentimentStdDev: core.RoundNull(std, 4),
		MinSentiment:    core.RoundNull(lo, 4),
		MaxSentiment:    core.RoundNull(hi, 4),
		TotalArticles:   total,
		PositiveCount:   labels.Positive,
		NegativeCount:   labels.Negative,
		NeutralCount:    labels.Neutral,
		PositivePct:     core.Percentage(labels.Positive, total),
		NegativePct:     core.Percentage(labels.Negative, total),
		NeutralPct:      core.Percentage(labels.Neutral, total),
		SentimentRange:  models.Undefined(),
		VolatilityScore: models.Undefined(),
	}
	if row.MinSentiment.Valid && row.MaxSentiment.Valid {
		row.SentimentRange = models.Float(core.RoundHalfEven(row.MaxSentiment.Float64-row.MinSentiment.Float64, 4))
	}
	if row.SentimentStdDev.Valid && total > 0 {
		row.VolatilityScore = models.Float(core.RoundHalfEven(row.SentimentStdDev.Float64/float64(total)*1000, 2))
	}
	row.DominantSentiment = DominantLabel(labels)
	return row
}

// DominantLabel picks the most frequent label, preferring positive, then
// negative, then neutral on ties.
func DominantLabel(c models.MLabelCounts) string {
	label, best := models.LabelPositive, c.Positive
	if c.Negative > best {
		label, best = models.LabelNegative, c.Negative
	}
	if c.Neutral > best {
		label = models.LabelNeutral
	}
	return label
}

// -----------------------------------------------------------------------------

// RankCountries orders countries by article count, ties by name. n <= 0
// returns every country.
func RankCountries(articles []models.MNewsArticle, n int) []models.MCountryCount {
	counts := make(map[string]int)
	for _, a := range articles {
		counts[a.Country]++
	}
	out := make([]models.MCountryCount, 0, len(counts))
	for c, k := range counts {
		out = append(out, models.MCountryCount{Country: c, Articles: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Articles != out[j].Articles {
			return out[i].Articles > out[j].Articles
		}
		return out[i].Country < out[j].Country
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// -----------------------------------------------------------------------------

// TopArticles returns the n highest scored articles, or the n lowest when
// positive is false. Unscored articles are skipped; ties keep file order.
func TopArticles(articles []models.MNewsArticle, n int, positive bool) []models.MNewsArticle {
	scored := make([]models.MNewsArticle, 0, len(articles))
	for _, a := range articles {
		if a.Score.Valid {
			scored = append(scored, a)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if positive {
			return scored[i].Score.Float64 > scored[j].Score.Float64
		}
		return scored[i].Score.Float64 < scored[j].Score.Float64
	})
	if n >= 0 && n < len(scored) {
		scored = scored[:n]
	}
	return scored
}

// -----------------------------------------------------------------------------

// LanguageBreakdown counts articles and averages scores per language,
// highest average first.
func LanguageBreakdown(articles []models.MNewsArticle) []models.MLanguageSentiment {
	var order []string
	groups := make(map[string][]models.MNewsArticle)
	for _, a := range articles {
		if a.Lang == "" {
			continue
		}
		if _, ok := groups[a.Lang]; !ok {
			order = append(order, a.Lang)
		}
		groups[a.Lang] = append(groups[a.Lang], a)
	}

	out := make([]models.MLanguageSentiment, 0, len(order))
	for _, lang := range order {
		mean, _ := core.CalculateMeanStd(validScores(groups[lang]))
		out = append(out, models.MLanguageSentiment{Lang: lang, Articles: len(groups[lang]), AvgSentiment: mean})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].AvgSentiment, out[j].AvgSentiment
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Float64 > b.Float64
	})
	return out
}

// -----------------------------------------------------------------------------

// BuildSentimentReport assembles the sentiment page. With no explicit
// selection the topCountries most covered countries are used.
func BuildSentimentReport(articles []models.MNewsArticle, g models.Granularity, selected []string, topCountries, topArticles int) models.MSentimentReport {
	ranked := RankCountries(articles, 0)
	if len(selected) == 0 {
		for i, c := range ranked {
			if topCountries > 0 && i >= topCountries {
				break
			}
			selected = append(selected, c.Country)
		}
	}

	months := make(map[int]bool)
	for _, a := range articles {
		if !a.PublishedAt.IsZero() {
			months[models.YearMonthOf(a.PublishedAt).Ordinal()] = true
		}
	}

	return models.MSentimentReport{
		Granularity:   g,
		TotalArticles: len(articles),
		TotalMonths:   len(months),
		Countries:     ranked,
		Selected:      selected,
		Timeline:      BuildTimeline(articles, g, selected),
		CountryStats:  CountryStatistics(articles, selected),
		TopPositive:   TopArticles(articles, topArticles, true),
		TopNegative:   TopArticles(articles, topArticles, false),
		Languages:     LanguageBreakdown(articles),
	}
}
