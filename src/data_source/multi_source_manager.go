package datasource

import (
	"context"
	"fmt"
	"sync"

	"tariff-observer/src/data_source/tabular"
	"tariff-observer/src/helpers"
	"tariff-observer/src/interfaces"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	"golang.org/x/sync/errgroup"
)

// LoadReport collects everything one load pass produced, in declaration order.
type LoadReport struct {
	// Series grouped by target panel.
	Series map[string][]models.MNormalizedSeries
	// Entities whose leading gap may be back-filled, per panel.
	Backward    map[string]map[string]bool
	Articles    []models.MNewsArticle
	Statuses    []models.MSourceStatus
	Diagnostics []models.MDiagnostic
	Loaded      int
	Failed      int
	CacheHits   int

	// panel -> entity key -> source that produced it
	owners map[string]map[string]string
}

// -----------------------------------------------------------------------------

// MultiSourceManager loads every registered IDataSource with bounded concurrency.
type MultiSourceManager struct {
	Sources      map[string]interfaces.IDataSource
	order        []string
	Concurrency  int
	Logger       *logger.Logger
	ErrorHandler *helpers.ErrorHandler
	mu           sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMultiSourceManager(sources []interfaces.IDataSource, concurrency int, log *logger.Logger) *MultiSourceManager {
	m := &MultiSourceManager{
		Sources:      make(map[string]interfaces.IDataSource),
		Concurrency:  concurrency,
		Logger:       log,
		ErrorHandler: helpers.NewErrorHandler(log),
	}

	for _, s := range sources {
		if _, exists := m.Sources[s.Name()]; exists {
			continue
		}
		m.Sources[s.Name()] = s
		m.order = append(m.order, s.Name())
	}

	return m
}

// -----------------------------------------------------------------------------

// NewSourcesFromConfig builds one tabular source per declared source.
func NewSourcesFromConfig(cfg *models.MConfig, netMgr interfaces.INetworkManager, cache interfaces.IFetchCache) []interfaces.IDataSource {
	sources := make([]interfaces.IDataSource, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		sources = append(sources, tabular.NewTabularSource(cfg, src, netMgr, cache))
	}
	return sources
}

// -----------------------------------------------------------------------------

// AddSource registers a new source at the end of the load order.
func (m *MultiSourceManager) AddSource(source interfaces.IDataSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := source.Name()
	if _, exists := m.Sources[name]; exists {
		return fmt.Errorf("source %s already exists", name)
	}

	m.Sources[name] = source
	m.order = append(m.order, name)
	m.Logger.Info("Added source: %s", name)
	return nil
}

// -----------------------------------------------------------------------------

// RemoveSource removes a source
func (m *MultiSourceManager) RemoveSource(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Sources[name]; !exists {
		return fmt.Errorf("source %s not found", name)
	}

	delete(m.Sources, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.Logger.Info("Removed source: %s", name)
	return nil
}

// -----------------------------------------------------------------------------

// GetSource retrieves a source by name
func (m *MultiSourceManager) GetSource(name string) (interfaces.IDataSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	source, exists := m.Sources[name]
	if !exists {
		return nil, fmt.Errorf("source %s not found", name)
	}
	return source, nil
}

// -----------------------------------------------------------------------------

// GetAllSources returns every source in registration order
func (m *MultiSourceManager) GetAllSources() []interfaces.IDataSource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]interfaces.IDataSource, 0, len(m.order))
	for _, name := range m.order {
		list = append(list, m.Sources[name])
	}
	return list
}

// -----------------------------------------------------------------------------

// Name returns "MultiSourceManager"
func (m *MultiSourceManager) Name() string {
	return "MultiSourceManager"
}

// -----------------------------------------------------------------------------

type loadOutcome struct {
	result    models.MNormalizeResult
	fromCache bool
	err       error
}

// LoadAll fans out to all sources. A failing source becomes a diagnostic and
// never aborts the others; only cancellation of ctx returns an error.
func (m *MultiSourceManager) LoadAll(ctx context.Context) (*LoadReport, error) {
	sources := m.GetAllSources()
	outcomes := make([]loadOutcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if m.Concurrency > 0 {
		g.SetLimit(m.Concurrency)
	}
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, fromCache, err := src.Load(gctx)
			outcomes[i] = loadOutcome{result: res, fromCache: fromCache, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &LoadReport{
		Series:   make(map[string][]models.MNormalizedSeries),
		Backward: make(map[string]map[string]bool),
		owners:   make(map[string]map[string]string),
	}
	m.ErrorHandler.ResetErrorCount()
	for i, src := range sources {
		m.collect(report, src.SourceConfig(), outcomes[i])
	}

	m.Logger.Info("Loaded %d/%d sources (%d from cache, %d diagnostics)",
		report.Loaded, len(sources), report.CacheHits, len(report.Diagnostics))
	return report, nil
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) collect(report *LoadReport, cfg models.MSourceConfig, out loadOutcome) {
	status := models.MSourceStatus{
		Name:     cfg.Name,
		Kind:     cfg.Kind,
		Panel:    cfg.Panel,
		Location: cfg.Location,
	}

	if out.err != nil {
		report.Failed++
		status.Error = out.err.Error()
		if d, ok := m.ErrorHandler.Diagnose(cfg.Name, out.err); ok {
			report.Diagnostics = append(report.Diagnostics, d)
		}
		report.Statuses = append(report.Statuses, status)
		return
	}

	if key, owner, ok := report.collision(cfg, out.result.Series); ok {
		report.Failed++
		status.Error = fmt.Sprintf("entity key %q already produced by %s in panel %s", key, owner, cfg.Panel)
		report.Diagnostics = append(report.Diagnostics, models.MDiagnostic{
			Source:   cfg.Name,
			Kind:     models.DiagDuplicate,
			Severity: models.SeverityWarning,
			Column:   key,
			Message:  status.Error + ", source excluded",
		})
		report.Statuses = append(report.Statuses, status)
		m.Logger.Warning("Source %s skipped: %s", cfg.Name, status.Error)
		return
	}

	report.Loaded++
	if out.fromCache {
		report.CacheHits++
	}
	status.Loaded = true
	status.FromCache = out.fromCache
	status.SeriesCount = len(out.result.Series)
	report.Statuses = append(report.Statuses, status)
	report.Diagnostics = append(report.Diagnostics, out.result.Diagnostics...)
	report.Articles = append(report.Articles, out.result.Articles...)

	if cfg.Panel == "" || len(out.result.Series) == 0 {
		return
	}
	report.Series[cfg.Panel] = append(report.Series[cfg.Panel], out.result.Series...)
	if report.owners[cfg.Panel] == nil {
		report.owners[cfg.Panel] = make(map[string]string)
	}
	for _, s := range out.result.Series {
		report.owners[cfg.Panel][s.EntityKey] = cfg.Name
	}
	if cfg.BackwardFill {
		if report.Backward[cfg.Panel] == nil {
			report.Backward[cfg.Panel] = make(map[string]bool)
		}
		for _, s := range out.result.Series {
			report.Backward[cfg.Panel][s.EntityKey] = true
		}
	}
}

// collision reports the first key of series that an earlier source already
// put into the same panel.
func (r *LoadReport) collision(cfg models.MSourceConfig, series []models.MNormalizedSeries) (string, string, bool) {
	owned := r.owners[cfg.Panel]
	if cfg.Panel == "" || owned == nil {
		return "", "", false
	}
	for _, s := range series {
		if owner, ok := owned[s.EntityKey]; ok {
			return s.EntityKey, owner, true
		}
	}
	return "", "", false
}
