package models

import "time"

// Sentiment labels produced by the upstream classifier.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// Granularity is the time bucket for sentiment timelines.
type Granularity string

const (
	GranularityMonthly   Granularity = "monthly"
	GranularityQuarterly Granularity = "quarterly"
	GranularityYearly    Granularity = "yearly"
)

// MNewsArticle is one sentiment-scored headline.
type MNewsArticle struct {
	PublishedAt time.Time  `json:"published_at"`
	Country     string     `json:"country"`
	Score       MNullFloat `json:"sentiment_score"`
	Label       string     `json:"sentiment_label"`
	Title       string     `json:"title"`
	Lang        string     `json:"lang,omitempty"`
}

type MLabelCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// MSentimentPeriod aggregates one country over one timeline bucket.
type MSentimentPeriod struct {
	Country       string     `json:"country"`
	Period        string     `json:"time_period"`
	AvgSentiment  MNullFloat `json:"avg_sentiment"`
	SentimentStd  MNullFloat `json:"sentiment_std"`
	ArticleCount  int        `json:"article_count"`
	PositiveCount int        `json:"positive_count"`
	NegativeCount int        `json:"negative_count"`
	NeutralCount  int        `json:"neutral_count"`
	PositivePct   MNullFloat `json:"positive_pct"`
	NegativePct   MNullFloat `json:"negative_pct"`
}

// MCountrySentiment is the per-country statistics row.
type MCountrySentiment struct {
	Country           string     `json:"country"`
	AvgSentiment      MNullFloat `json:"avg_sentiment"`
	SentimentStdDev   MNullFloat `json:"sentiment_stddev"`
	MinSentiment      MNullFloat `json:"min_sentiment"`
	MaxSentiment      MNullFloat `json:"max_sentiment"`
	TotalArticles     int        `json:"total_articles"`
	PositiveCount     int        `json:"positive_count"`
	NegativeCount     int        `json:"negative_count"`
	NeutralCount      int        `json:"neutral_count"`
	PositivePct       MNullFloat `json:"positive_pct"`
	NegativePct       MNullFloat `json:"negative_pct"`
	NeutralPct        MNullFloat `json:"neutral_pct"`
	SentimentRange    MNullFloat `json:"sentiment_range"`
	VolatilityScore   MNullFloat `json:"volatility_score"`
	DominantSentiment string     `json:"dominant_sentiment"`
}

type MLanguageSentiment struct {
	Lang         string     `json:"lang"`
	Articles     int        `json:"articles"`
	AvgSentiment MNullFloat `json:"avg_sentiment"`
}

type MCountryCount struct {
	Country  string `json:"country"`
	Articles int    `json:"articles"`
}

// MSentimentReport backs the sentiment timeline page.
type MSentimentReport struct {
	Granularity   Granularity          `json:"granularity"`
	TotalArticles int                  `json:"total_articles"`
	TotalMonths   int                  `json:"total_months"`
	Countries     []MCountryCount      `json:"countries"`
	Selected      []string             `json:"selected"`
	Timeline      []MSentimentPeriod   `json:"timeline"`
	CountryStats  []MCountrySentiment  `json:"country_stats"`
	TopPositive   []MNewsArticle       `json:"top_positive"`
	TopNegative   []MNewsArticle       `json:"top_negative"`
	Languages     []MLanguageSentiment `json:"languages,omitempty"`
}
