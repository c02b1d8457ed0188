package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"tariff-observer/src/models"
)

// Table is a rectangular export. Cells are string, int or models.MNullFloat.
type Table struct {
	Header []string
	Rows   [][]interface{}
}

// -----------------------------------------------------------------------------

// File names carry the export date.

func ComparisonFileName(panel string, now time.Time) string {
	return fmt.Sprintf("trade_balance_comparison_%s_%s.csv", panel, now.Format("20060102"))
}

func SentimentStatsFileName(now time.Time) string {
	return fmt.Sprintf("country_sentiment_stats_%s.csv", now.Format("20060102"))
}

func SentimentTimelineFileName(now time.Time) string {
	return fmt.Sprintf("country_sentiment_timeline_%s.csv", now.Format("20060102"))
}

func WorkbookFileName(now time.Time) string {
	return fmt.Sprintf("tariff_observer_%s.xlsx", now.Format("20060102"))
}

// -----------------------------------------------------------------------------

func formatCell(v interface{}) string {
	switch c := v.(type) {
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case models.MNullFloat:
		return c.String()
	case models.YearMonth:
		return c.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// WriteCSV writes the header and rows. Undefined values render as "undefined".
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, formatCell(cell))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// -----------------------------------------------------------------------------

func ComparisonTable(result models.MComparisonResult) Table {
	t := Table{Header: []string{"entity", "value_a", "value_b", "absolute_change", "percent_change"}}
	for _, e := range result.Entries {
		t.Rows = append(t.Rows, []interface{}{e.Entity, e.ValueA, e.ValueB, e.AbsoluteChange, e.PercentChange})
	}
	return t
}

func SentimentStatsTable(stats []models.MCountrySentiment) Table {
	t := Table{Header: []string{
		"Country", "Avg_Sentiment", "Sentiment_StdDev", "Min_Sentiment", "Max_Sentiment", "Total_Articles",
		"Positive_Count", "Negative_Count", "Neutral_Count", "Positive_Pct", "Negative_Pct", "Neutral_Pct",
		"Sentiment_Range", "Volatility_Score", "Dominant_Sentiment",
	}}
	for _, s := range stats {
		t.Rows = append(t.Rows, []interface{}{
			s.Country, s.AvgSentiment, s.SentimentStdDev, s.MinSentiment, s.MaxSentiment, s.TotalArticles,
			s.PositiveCount, s.NegativeCount, s.NeutralCount, s.PositivePct, s.NegativePct, s.NeutralPct,
			s.SentimentRange, s.VolatilityScore, s.DominantSentiment,
		})
	}
	return t
}

func SentimentTimelineTable(periods []models.MSentimentPeriod) Table {
	t := Table{Header: []string{
		"country", "time_period", "avg_sentiment", "sentiment_std", "article_count",
		"positive_count", "negative_count", "neutral_count", "positive_pct", "negative_pct",
	}}
	for _, p := range periods {
		t.Rows = append(t.Rows, []interface{}{
			p.Country, p.Period, p.AvgSentiment, p.SentimentStd, p.ArticleCount,
			p.PositiveCount, p.NegativeCount, p.NeutralCount, p.PositivePct, p.NegativePct,
		})
	}
	return t
}

// PanelTable lays a panel out with one row per month.
func PanelTable(panel *models.MMonthlyPanel) Table {
	keys := panel.Keys()
	t := Table{Header: append([]string{"month"}, keys...)}
	columns := make([][]models.MNullFloat, len(keys))
	for i := range keys {
		columns[i] = panel.ColumnAt(i)
	}
	for r, m := range panel.Months() {
		row := make([]interface{}, 0, len(keys)+1)
		row = append(row, m)
		for _, col := range columns {
			row = append(row, col[r])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func CorrelationTable(m models.MCorrelationMatrix) Table {
	t := Table{Header: append([]string{""}, m.Keys...)}
	for i, key := range m.Keys {
		row := make([]interface{}, 0, len(m.Keys)+1)
		row = append(row, key)
		for _, c := range m.Cells[i] {
			row = append(row, c)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// -----------------------------------------------------------------------------

func ComparisonCSV(w io.Writer, result models.MComparisonResult) error {
	return WriteCSV(w, ComparisonTable(result))
}

func SentimentStatsCSV(w io.Writer, stats []models.MCountrySentiment) error {
	return WriteCSV(w, SentimentStatsTable(stats))
}

func SentimentTimelineCSV(w io.Writer, periods []models.MSentimentPeriod) error {
	return WriteCSV(w, SentimentTimelineTable(periods))
}
