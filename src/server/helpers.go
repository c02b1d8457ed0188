package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"tariff-observer/src/analysis"
	"tariff-observer/src/dashboard"
	"tariff-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

// requestID tags every request, reusing the caller's id when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *APIServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s %d %s id=%s", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start), c.GetString("request_id"))
	}
}

// -----------------------------------------------------------------------------
// Handler helpers
// -----------------------------------------------------------------------------

func (s *APIServer) fail(c *gin.Context, status int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("%s %s: %s", c.Request.Method, c.Request.URL.Path, msg)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "request_id": c.GetString("request_id")})
}

func (s *APIServer) current(c *gin.Context) (*models.MDashboard, bool) {
	d, err := s.Dashboard.Current(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusServiceUnavailable, "dashboard unavailable: %v", err)
		return nil, false
	}
	return d, true
}

func (s *APIServer) panel(c *gin.Context) (*models.MPanelView, string, bool) {
	d, ok := s.current(c)
	if !ok {
		return nil, "", false
	}
	name := c.Param("name")
	view := d.Panels[name]
	if view == nil || view.Panel == nil {
		s.fail(c, http.StatusNotFound, "unknown panel %s", name)
		return nil, name, false
	}
	return view, name, true
}

// comparison recomputes the month comparison for the "from"/"to" query.
func (s *APIServer) comparison(c *gin.Context, view *models.MPanelView) (models.MComparisonResult, bool) {
	var from, to models.YearMonth
	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = models.ParseYearMonth(raw); err != nil {
			s.fail(c, http.StatusBadRequest, "invalid from: %v", err)
			return models.MComparisonResult{}, false
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = models.ParseYearMonth(raw); err != nil {
			s.fail(c, http.StatusBadRequest, "invalid to: %v", err)
			return models.MComparisonResult{}, false
		}
	}

	result, err := dashboard.CompareView(s.Config.Analysis, view, from, to)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "%v", err)
		return models.MComparisonResult{}, false
	}
	return result, true
}

// -----------------------------------------------------------------------------

func (s *APIServer) sentiment(c *gin.Context) (*models.MDashboard, bool) {
	d, ok := s.current(c)
	if !ok {
		return nil, false
	}
	if d.Sentiment == nil {
		s.fail(c, http.StatusNotFound, "no news source configured")
		return nil, false
	}
	return d, true
}

// sentimentQuery reads "granularity" and "countries", defaulting to the
// dashboard's own selection.
func (s *APIServer) sentimentQuery(c *gin.Context, d *models.MDashboard) (models.Granularity, []string, bool) {
	g := d.Sentiment.Granularity
	if raw := c.Query("granularity"); raw != "" {
		g = models.Granularity(strings.ToLower(raw))
		switch g {
		case models.GranularityMonthly, models.GranularityQuarterly, models.GranularityYearly:
		default:
			s.fail(c, http.StatusBadRequest, "unknown granularity %q", raw)
			return "", nil, false
		}
	}
	countries := d.Sentiment.Selected
	if raw := c.Query("countries"); raw != "" {
		countries = splitList(raw)
	}
	return g, countries, true
}

func (s *APIServer) timeline(c *gin.Context) ([]models.MSentimentPeriod, bool) {
	d, ok := s.sentiment(c)
	if !ok {
		return nil, false
	}
	g, countries, ok := s.sentimentQuery(c, d)
	if !ok {
		return nil, false
	}
	return analysis.BuildTimeline(d.Articles, g, countries), true
}

func (s *APIServer) countryStats(c *gin.Context) ([]models.MCountrySentiment, bool) {
	d, ok := s.sentiment(c)
	if !ok {
		return nil, false
	}
	_, countries, ok := s.sentimentQuery(c, d)
	if !ok {
		return nil, false
	}
	return analysis.CountryStatistics(d.Articles, countries), true
}

// -----------------------------------------------------------------------------
// Payload filtering
// -----------------------------------------------------------------------------

// filterPanels copies state keeping only the named panels.
func filterPanels(state *models.MLatestData, panels []string) *models.MLatestData {
	out := *state
	if len(panels) == 0 {
		return &out
	}
	out.Panels = make([]models.MPanelSummary, 0, len(panels))
	for _, p := range state.Panels {
		if contains(panels, p.Name) {
			out.Panels = append(out.Panels, p)
		}
	}
	return &out
}

// -----------------------------------------------------------------------------

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
