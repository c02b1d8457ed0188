package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"tariff-observer/src/analysis"
	"tariff-observer/src/dashboard"
	"tariff-observer/src/export"
	"tariff-observer/src/models"

	"github.com/gin-gonic/gin"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes(metricsHandler http.Handler) {
	api := s.engine.Group("/api")

	// REST API endpoints
	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)
	api.GET("/metrics", s.getMetrics)
	api.GET("/sources", s.getSources)
	api.GET("/diagnostics", s.getDiagnostics)
	api.GET("/panels", s.listPanels)
	api.GET("/panels/:name", s.getPanel)
	api.GET("/panels/:name/comparison", s.getComparison)
	api.GET("/panels/:name/correlation", s.getCorrelation)
	api.GET("/sentiment", s.getSentiment)
	api.GET("/sentiment/timeline", s.getSentimentTimeline)
	api.GET("/sentiment/countries", s.getSentimentCountries)
	api.POST("/refresh", s.postRefresh)

	exp := api.Group("/export")
	exp.GET("/comparison/:name", s.exportComparison)
	exp.GET("/sentiment/stats", s.exportSentimentStats)
	exp.GET("/sentiment/timeline", s.exportSentimentTimeline)
	exp.GET("/workbook", s.exportWorkbook)

	if metricsHandler != nil {
		s.engine.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := s.connections
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":     s.Config.Name,
		"analysis": s.Config.Analysis,
		"panels":   s.Config.Panels,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getMetrics(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, s.latestState.ProcessingMetrics)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSources(c *gin.Context) {
	d, ok := s.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.Sources)
}

func (s *APIServer) getDiagnostics(c *gin.Context) {
	d, ok := s.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.Diagnostics)
}

// -----------------------------------------------------------------------------

func (s *APIServer) listPanels(c *gin.Context) {
	d, ok := s.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dashboard.Summarize(d, "INITIAL").Panels)
}

func (s *APIServer) getPanel(c *gin.Context) {
	view, _, ok := s.panel(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// -----------------------------------------------------------------------------

// getComparison compares two months of a panel. "from" and "to" default to
// the configured comparison; "top" bounds the movers lists.
func (s *APIServer) getComparison(c *gin.Context) {
	view, _, ok := s.panel(c)
	if !ok {
		return
	}
	result, ok := s.comparison(c, view)
	if !ok {
		return
	}

	n := s.Config.Analysis.TopN
	if raw := c.Query("top"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			s.fail(c, http.StatusBadRequest, "invalid top %q", raw)
			return
		}
		n = v
	}

	summary := analysis.SummarizeChanges(result)
	c.JSON(http.StatusOK, gin.H{
		"comparison": result,
		"movers": gin.H{
			string(models.MetricAbsolute): analysis.TopMovers(result, models.MetricAbsolute, n),
			string(models.MetricPercent):  analysis.TopMovers(result, models.MetricPercent, n),
		},
		"summary": summary,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getCorrelation(c *gin.Context) {
	view, name, ok := s.panel(c)
	if !ok {
		return
	}
	if view.Correlation == nil {
		s.fail(c, http.StatusNotFound, "panel %s has no correlation matrix", name)
		return
	}
	c.JSON(http.StatusOK, view.Correlation)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSentiment(c *gin.Context) {
	d, ok := s.sentiment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.Sentiment)
}

// getSentimentTimeline accepts "granularity" and a comma separated "countries".
func (s *APIServer) getSentimentTimeline(c *gin.Context) {
	timeline, ok := s.timeline(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, timeline)
}

func (s *APIServer) getSentimentCountries(c *gin.Context) {
	stats, ok := s.countryStats(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats)
}

// -----------------------------------------------------------------------------

func (s *APIServer) postRefresh(c *gin.Context) {
	d, err := s.Dashboard.Build(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "refresh failed: %v", err)
		return
	}
	summary := s.Publish(d)
	c.JSON(http.StatusOK, summary)
}

// -----------------------------------------------------------------------------
// Exports
// -----------------------------------------------------------------------------

func (s *APIServer) exportComparison(c *gin.Context) {
	view, name, ok := s.panel(c)
	if !ok {
		return
	}
	result, ok := s.comparison(c, view)
	if !ok {
		return
	}
	s.attachment(c, export.ComparisonFileName(name, time.Now()), csvContentType, func(w io.Writer) error {
		return export.ComparisonCSV(w, result)
	})
}

func (s *APIServer) exportSentimentStats(c *gin.Context) {
	stats, ok := s.countryStats(c)
	if !ok {
		return
	}
	s.attachment(c, export.SentimentStatsFileName(time.Now()), csvContentType, func(w io.Writer) error {
		return export.SentimentStatsCSV(w, stats)
	})
}

func (s *APIServer) exportSentimentTimeline(c *gin.Context) {
	timeline, ok := s.timeline(c)
	if !ok {
		return
	}
	s.attachment(c, export.SentimentTimelineFileName(time.Now()), csvContentType, func(w io.Writer) error {
		return export.SentimentTimelineCSV(w, timeline)
	})
}

func (s *APIServer) exportWorkbook(c *gin.Context) {
	d, ok := s.current(c)
	if !ok {
		return
	}
	s.attachment(c, export.WorkbookFileName(time.Now()), xlsxContentType, func(w io.Writer) error {
		return export.WorkbookXLSX(w, export.DashboardSheets(d))
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) attachment(c *gin.Context, filename, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		s.fail(c, http.StatusInternalServerError, "export failed: %v", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
