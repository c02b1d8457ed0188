package normalizer

import (
	"strings"

	"tariff-observer/src/analysis/core"
	"tariff-observer/src/helpers"
	"tariff-observer/src/models"
)

const (
	PublishedAtColumn    = "publishedAt"
	CountryColumn        = "country"
	SentimentScoreColumn = "sentiment_score"
	SentimentLabelColumn = "sentiment_label"
	TitleColumn          = "title"
	LangColumn           = "lang"

	// SentimentIndicator suffixes the per-country monthly mean score series.
	SentimentIndicator = "Sentiment"
)

// -----------------------------------------------------------------------------

// normalizeNews parses sentiment-scored articles and derives one monthly mean
// score series per country.
func normalizeNews(table models.MRawTable, opts Options) (models.MNormalizeResult, error) {
	publishedCol, err := requireColumn(table, opts.Source, PublishedAtColumn)
	if err != nil {
		return models.MNormalizeResult{}, err
	}
	countryCol, err := requireColumn(table, opts.Source, CountryColumn)
	if err != nil {
		return models.MNormalizeResult{}, err
	}
	scoreCol, err := requireColumn(table, opts.Source, SentimentScoreColumn)
	if err != nil {
		return models.MNormalizeResult{}, err
	}
	labelCol := table.ColumnIndex(SentimentLabelColumn)
	titleCol := table.ColumnIndex(TitleColumn)
	langCol := table.ColumnIndex(LangColumn)

	diags := &diagnostics{source: opts.Source}
	articles := make([]models.MNewsArticle, 0, len(table.Rows))

	for r := range table.Rows {
		row := r + 1
		country := strings.TrimSpace(table.Cell(r, countryCol))
		if country == "" {
			diags.add(models.DiagParse, CountryColumn, row, "row %d has no country and was skipped", row)
			continue
		}

		a := models.MNewsArticle{
			Country: country,
			Label:   strings.ToLower(strings.TrimSpace(table.Cell(r, labelCol))),
			Title:   strings.TrimSpace(table.Cell(r, titleCol)),
			Lang:    strings.TrimSpace(table.Cell(r, langCol)),
		}

		rawDate := table.Cell(r, publishedCol)
		if t, ok := parseTimestamp(rawDate); ok {
			a.PublishedAt = t
		} else {
			diags.parse(helpers.NewParseError(PublishedAtColumn, row, rawDate, nil))
		}

		score, perr := parseNumber(table.Cell(r, scoreCol), SentimentScoreColumn, row)
		if perr != nil {
			diags.parse(perr)
		}
		a.Score = score

		articles = append(articles, a)
	}

	return models.MNormalizeResult{
		Series:      sentimentSeries(articles, opts),
		Articles:    articles,
		Diagnostics: diags.items,
	}, nil
}

// -----------------------------------------------------------------------------

// sentimentSeries averages valid scores per country and month. Articles
// without a date or score do not contribute.
func sentimentSeries(articles []models.MNewsArticle, opts Options) []models.MNormalizedSeries {
	type bucket struct {
		key   string
		month models.YearMonth
	}
	scores := make(map[bucket][]float64)
	diags := &diagnostics{source: opts.Source}
	b := newSeriesBuilder(opts.Source, models.KindNews, diags)

	for _, a := range articles {
		if a.PublishedAt.IsZero() || !a.Score.Valid {
			continue
		}
		key := opts.key(IndicatorKey(a.Country, SentimentIndicator))
		b.series(key)
		k := bucket{key: key, month: models.YearMonthOf(a.PublishedAt)}
		scores[k] = append(scores[k], a.Score.Float64)
	}
	for k, values := range scores {
		b.replace(k.key, k.month, models.Float(core.Mean(values)))
	}
	return b.build()
}
