package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tariff-observer/src/analysis"
	datasource "tariff-observer/src/data_source"
	"tariff-observer/src/interfaces"
	"tariff-observer/src/logger"
	"tariff-observer/src/metrics"
	"tariff-observer/src/models"
	"tariff-observer/src/network"
	"tariff-observer/src/storage"
)

// TopArticles is the number of most positive and most negative headlines kept.
const TopArticles = 5

// Service loads every source and assembles the dashboard. The last
// successful build is kept for the transports.
type Service struct {
	Config  *models.MConfig
	Sources *datasource.MultiSourceManager
	Cache   interfaces.IFetchCache
	Facade  *analysis.AnalysisFacade
	Metrics *metrics.Metrics
	Logger  *logger.Logger
	Now     func() time.Time

	buildMu sync.Mutex
	mu      sync.RWMutex
	latest  *models.MDashboard
}

// -----------------------------------------------------------------------------

// NewService wires a service from already built parts. cache may be nil.
func NewService(cfg *models.MConfig, sources *datasource.MultiSourceManager, cache interfaces.IFetchCache, m *metrics.Metrics, log *logger.Logger) *Service {
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		Config:  cfg,
		Sources: sources,
		Cache:   cache,
		Facade:  analysis.NewAnalysisFacade(cfg, log),
		Metrics: m,
		Logger:  log,
		Now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

// New builds the full stack from configuration: network manager, fetch
// cache and one source per declaration. A cache that cannot be initialized
// is replaced by no cache.
func New(ctx context.Context, cfg *models.MConfig, log *logger.Logger) (*Service, error) {
	cache, err := storage.NewFetchCache(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := cache.Initialize(ctx); err != nil {
		log.Warning("Fetch cache %s unavailable, continuing without it: %v", cfg.Cache.Type, err)
		cache = storage.NoCache{}
	}
	if reg, ok := cache.(storage.ISourceRegistry); ok {
		if err := reg.RegisterSources(ctx, cfg.Sources); err != nil {
			log.Warning("Failed to register sources in cache: %v", err)
		}
	}

	netMgr := network.NewAsyncNetworkManager(cfg, log)
	sources := datasource.NewMultiSourceManager(
		datasource.NewSourcesFromConfig(cfg, netMgr, cache),
		cfg.Network.ConcurrentRequests,
		logger.NewLogger(nil, "MultiSourceManager"),
	)
	return NewService(cfg, sources, cache, nil, log), nil
}

// -----------------------------------------------------------------------------

// Build loads every source and derives every panel. Source failures are
// diagnostics; an alignment failure aborts the build.
func (s *Service) Build(ctx context.Context) (*models.MDashboard, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	report, err := s.Sources.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	d := &models.MDashboard{
		GeneratedAt: s.Now().UTC(),
		Panels:      make(map[string]*models.MPanelView),
		Sources:     report.Statuses,
		Diagnostics: report.Diagnostics,
	}

	for _, pc := range s.Config.Panels {
		series := report.Series[pc.Name]
		if len(series) == 0 {
			s.Logger.Debug("Panel %s has no loaded series, skipped", pc.Name)
			continue
		}
		view, err := s.Facade.BuildView(pc.Name, series, report.Backward[pc.Name])
		if err != nil {
			return nil, fmt.Errorf("panel %s: %w", pc.Name, err)
		}
		d.PanelOrder = append(d.PanelOrder, pc.Name)
		d.Panels[pc.Name] = view
	}

	if len(report.Articles) > 0 {
		g := models.Granularity(s.Config.Analysis.SentimentGranularity)
		sentiment := analysis.BuildSentimentReport(report.Articles, g, nil, s.Config.Analysis.SentimentTopCountries, TopArticles)
		d.Sentiment = &sentiment
		d.Articles = report.Articles
	}

	if d.Diagnostics == nil {
		d.Diagnostics = []models.MDiagnostic{}
	}

	took := time.Since(start)
	d.Metrics = models.MProcessingMetrics{
		BuildTimeSeconds: took.Seconds(),
		SourcesLoaded:    report.Loaded,
		SourcesFailed:    report.Failed,
		CacheHits:        report.CacheHits,
		PanelsBuilt:      len(d.Panels),
	}
	s.Metrics.ObserveBuild(d, took)
	s.cleanupCache(ctx)

	s.mu.Lock()
	s.latest = d
	s.mu.Unlock()

	s.Logger.Info("Dashboard built in %.2fs: %d panels, %d diagnostics", took.Seconds(), len(d.Panels), len(d.Diagnostics))
	return d, nil
}

// -----------------------------------------------------------------------------

func (s *Service) cleanupCache(ctx context.Context) {
	if s.Cache == nil || s.Config.Cache.BucketSeconds <= 0 {
		return
	}
	current := s.Now().Unix() / int64(s.Config.Cache.BucketSeconds)
	if err := s.Cache.CleanupOldData(ctx, current-int64(s.Config.Cache.RetentionBuckets)); err != nil {
		s.Logger.Warning("Fetch cache cleanup failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

// Latest returns the last successful build, or nil before the first one.
func (s *Service) Latest() *models.MDashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Current returns the last build, building once when there is none yet.
func (s *Service) Current(ctx context.Context) (*models.MDashboard, error) {
	if d := s.Latest(); d != nil {
		return d, nil
	}
	return s.Build(ctx)
}

// -----------------------------------------------------------------------------

// Run rebuilds every interval until ctx is done, handing each build to onBuild.
func (s *Service) Run(ctx context.Context, interval time.Duration, onBuild func(*models.MDashboard)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d, err := s.Build(ctx)
			if err != nil {
				s.Logger.Error("Refresh failed: %v", err)
				continue
			}
			if onBuild != nil {
				onBuild(d)
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *Service) Close() error {
	if s.Cache != nil {
		return s.Cache.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

// Summarize turns a dashboard into the lightweight push payload.
func Summarize(d *models.MDashboard, kind string) models.MLatestData {
	out := models.MLatestData{
		Type:              kind,
		Panels:            make([]models.MPanelSummary, 0, len(d.PanelOrder)),
		Diagnostics:       d.Diagnostics,
		Timestamp:         d.GeneratedAt.Unix(),
		ProcessingMetrics: d.Metrics,
	}
	for _, name := range d.PanelOrder {
		view := d.Panels[name]
		if view == nil {
			continue
		}
		summary := models.MPanelSummary{Name: name, Title: view.Title, Latest: view.Latest, Comparison: view.Summary}
		if view.Panel != nil {
			summary.Months = view.Panel.Len()
			summary.Series = view.Panel.Width()
		}
		out.Panels = append(out.Panels, summary)
	}
	return out
}

// -----------------------------------------------------------------------------

// CompareView compares two months of a built panel. A zero month falls back
// to the one the build compared, then to the configured default.
func CompareView(cfg models.MAnalysisConfig, view *models.MPanelView, from, to models.YearMonth) (models.MComparisonResult, error) {
	if view == nil || view.Panel == nil {
		return models.MComparisonResult{}, fmt.Errorf("panel has no data")
	}
	defFrom, defTo := cfg.CompareFrom, cfg.CompareTo
	if view.Comparison != nil {
		defFrom, defTo = view.Comparison.MonthA, view.Comparison.MonthB
	}
	if from.IsZero() {
		from = defFrom
	}
	if to.IsZero() {
		to = defTo
	}
	return analysis.Compare(view.Panel, from, to)
}
