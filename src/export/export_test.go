package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tariff-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleComparison() models.MComparisonResult {
	return models.MComparisonResult{
		Panel:  "trade_us",
		MonthA: models.NewYearMonth(2020, 6),
		MonthB: models.NewYearMonth(2025, 3),
		Entries: []models.MComparisonEntry{
			{Entity: "X", Defined: true, ValueA: models.Float(100), ValueB: models.Float(150), AbsoluteChange: models.Float(50), PercentChange: models.Float(50)},
			{Entity: "Zero", Defined: true, ValueA: models.Float(0), ValueB: models.Float(3.5), AbsoluteChange: models.Float(3.5), PercentChange: models.Undefined()},
			{Entity: "Korea, Rep."},
		},
	}
}

func TestFileNamesCarryDate(t *testing.T) {
	now := time.Date(2025, 4, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "trade_balance_comparison_trade_us_20250409.csv", ComparisonFileName("trade_us", now))
	assert.Equal(t, "country_sentiment_stats_20250409.csv", SentimentStatsFileName(now))
	assert.Equal(t, "country_sentiment_timeline_20250409.csv", SentimentTimelineFileName(now))
	assert.Equal(t, "tariff_observer_20250409.xlsx", WorkbookFileName(now))
}

func TestComparisonCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ComparisonCSV(&buf, sampleComparison()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "entity,value_a,value_b,absolute_change,percent_change", lines[0])
	assert.Equal(t, "X,100,150,50,50", lines[1])
	assert.Equal(t, "Zero,0,3.5,3.5,undefined", lines[2])
	assert.Equal(t, `"Korea, Rep.",undefined,undefined,undefined,undefined`, lines[3])
}

func TestSentimentCSVs(t *testing.T) {
	stats := []models.MCountrySentiment{{
		Country: "China", AvgSentiment: models.Float(0.1), SentimentStdDev: models.Float(0.5),
		MinSentiment: models.Float(-0.4), MaxSentiment: models.Float(0.6), TotalArticles: 3,
		PositiveCount: 1, NegativeCount: 2, PositivePct: models.Float(33.3), NegativePct: models.Float(66.7),
		NeutralPct: models.Float(0), SentimentRange: models.Float(1), VolatilityScore: models.Float(166.67),
		DominantSentiment: "negative",
	}}
	var buf bytes.Buffer
	require.NoError(t, SentimentStatsCSV(&buf, stats))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Country,Avg_Sentiment,"))
	assert.Equal(t, "China,0.1,0.5,-0.4,0.6,3,1,2,0,33.3,66.7,0,1,166.67,negative", lines[1])

	buf.Reset()
	require.NoError(t, SentimentTimelineCSV(&buf, []models.MSentimentPeriod{{
		Country: "China", Period: "2024Q1", AvgSentiment: models.Float(0.2), SentimentStd: models.Undefined(), ArticleCount: 1,
		PositiveCount: 1, PositivePct: models.Float(100), NegativePct: models.Float(0),
	}}))
	assert.Contains(t, buf.String(), "China,2024Q1,0.2,undefined,1,1,0,0,100,0")
}

func TestPanelAndCorrelationTables(t *testing.T) {
	panel := models.NewMonthlyPanel("p",
		models.MonthRange(models.NewYearMonth(2020, 1), models.NewYearMonth(2020, 2)),
		[]string{"A", "B"},
		[][]models.MNullFloat{{models.Float(1), models.Float(2)}, {models.Undefined(), models.Float(4)}})
	pt := PanelTable(panel)
	assert.Equal(t, []string{"month", "A", "B"}, pt.Header)
	require.Len(t, pt.Rows, 2)
	assert.Equal(t, "2020-01", formatCell(pt.Rows[0][0]))
	assert.Equal(t, "undefined", formatCell(pt.Rows[0][2]))

	ct := CorrelationTable(models.MCorrelationMatrix{
		Keys:  []string{"A", "B"},
		Cells: [][]models.MNullFloat{{models.Float(1), models.Undefined()}, {models.Undefined(), models.Float(1)}},
	})
	assert.Equal(t, []string{"", "A", "B"}, ct.Header)
	assert.Equal(t, "A", ct.Rows[0][0])
}

func TestWorkbookXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sheets := []Sheet{
		{Name: "trade_us comparison", Table: ComparisonTable(sampleComparison())},
		{Name: "trade/us: comparison [dup]", Table: ComparisonTable(sampleComparison())},
	}
	require.NoError(t, WorkbookXLSX(&buf, sheets))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	list := f.GetSheetList()
	require.Len(t, list, 2)
	assert.Equal(t, "trade_us comparison", list[0])
	assert.Equal(t, "trade-us- comparison (dup)", list[1])

	rows, err := f.GetRows(list[0])
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"entity", "value_a", "value_b", "absolute_change", "percent_change"}, rows[0])
	assert.Equal(t, "X", rows[1][0])
	assert.Equal(t, "150", rows[1][2])
	assert.Equal(t, "undefined", rows[2][4])
}

func TestSheetNameUniqueAndBounded(t *testing.T) {
	used := map[string]bool{}
	long := strings.Repeat("x", 40)
	a := SheetName(long, used)
	b := SheetName(long, used)
	assert.Len(t, a, 31)
	assert.Len(t, b, 31)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "Sheet", SheetName("  ", used))
}

func TestDashboardSheets(t *testing.T) {
	cmp := sampleComparison()
	d := &models.MDashboard{
		PanelOrder: []string{"trade_us", "missing"},
		Panels: map[string]*models.MPanelView{
			"trade_us": {Name: "trade_us", Comparison: &cmp},
		},
		Sentiment: &models.MSentimentReport{},
	}
	sheets := DashboardSheets(d)
	var names []string
	for _, s := range sheets {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"trade_us comparison", "sentiment stats", "sentiment timeline"}, names)
}
