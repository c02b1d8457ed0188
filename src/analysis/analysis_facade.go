package analysis

import (
	"tariff-observer/src/logger"
	"tariff-observer/src/models"
	"tariff-observer/src/utils"
)

// AnalysisFacade applies the configured panel settings on top of the pure
// pipeline functions.
type AnalysisFacade struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	if cfg == nil {
		cfg = &models.MConfig{}
	}
	if log == nil {
		log = logger.NewNopLogger("AnalysisFacade")
	}
	return &AnalysisFacade{Config: cfg, Logger: log}
}

// -----------------------------------------------------------------------------

// PanelConfig returns the named panel settings, or defaults for an
// undeclared panel.
func (a *AnalysisFacade) PanelConfig(name string) models.MPanelConfig {
	for _, p := range a.Config.Panels {
		if p.Name == name {
			return p
		}
	}
	return models.MPanelConfig{Name: name, Compare: true}
}

// -----------------------------------------------------------------------------

// AlignOptionsFor resolves the calendar, fill and cutoff for a panel. The
// calendar runs from the earliest observation (or calendar_start) through
// the later of calendar_end and the last observation. Correlation panels
// drop incomplete rows before the strict cutoff.
func (a *AnalysisFacade) AlignOptionsFor(name string, series []models.MNormalizedSeries, backward map[string]bool) AlignOptions {
	pc := a.PanelConfig(name)
	first, last, _ := CalendarBounds(series)

	start := pc.CalendarStart
	if start.IsZero() {
		start = first
	}
	end := pc.CalendarEnd
	if end.IsZero() {
		end = a.Config.Analysis.CalendarEnd
		if end.IsZero() {
			end = utils.DefaultCalendarEnd
		}
		if last.After(end) {
			end = last
		}
	}

	opts := AlignOptions{Name: name, Start: start, End: end}
	if pc.FillForward() {
		opts.Fill |= FillForward
	}
	if pc.BackwardFill {
		opts.Fill |= FillBackward
	}
	if len(backward) > 0 {
		opts.SeriesFill = make(map[string]FillPolicy, len(backward))
		for key, on := range backward {
			if on {
				opts.SeriesFill[key] = opts.Fill | FillBackward
			}
		}
	}

	cutoff := pc.StrictCutoff
	if cutoff.IsZero() && pc.Correlate {
		cutoff = a.Config.Analysis.StrictCutoff
		if cutoff.IsZero() {
			cutoff = utils.DefaultStrictCutoff
		}
	}
	if !cutoff.IsZero() {
		opts.StrictCutoff = &cutoff
	}
	return opts
}

// -----------------------------------------------------------------------------

// BuildPanel aligns the series of one panel. backward lists entity keys that
// also get their leading gaps filled.
func (a *AnalysisFacade) BuildPanel(name string, series []models.MNormalizedSeries, backward map[string]bool) (*models.MMonthlyPanel, error) {
	opts := a.AlignOptionsFor(name, series, backward)
	panel, err := Align(series, opts)
	if err != nil {
		a.Logger.Error("Panel %s could not be aligned: %v", name, err)
		return nil, err
	}
	a.Logger.Debug("Panel %s aligned: %d months x %d series (%s..%s)", name, panel.Len(), panel.Width(), opts.Start, opts.End)
	return panel, nil
}

// -----------------------------------------------------------------------------

// CompareMonths returns the configured reference months for a panel.
func (a *AnalysisFacade) CompareMonths(name string) (models.YearMonth, models.YearMonth) {
	pc := a.PanelConfig(name)
	from, to := pc.CompareFrom, pc.CompareTo
	if from.IsZero() {
		from = a.Config.Analysis.CompareFrom
	}
	if to.IsZero() {
		to = a.Config.Analysis.CompareTo
	}
	if from.IsZero() {
		from = utils.DefaultCompareFrom
	}
	if to.IsZero() {
		to = utils.DefaultCompareTo
	}
	return from, to
}

// TopN is the annotation count for movers.
func (a *AnalysisFacade) TopN() int {
	if a.Config.Analysis.TopN > 0 {
		return a.Config.Analysis.TopN
	}
	return utils.DefaultTopN
}

// -----------------------------------------------------------------------------

// ComparePanel runs the configured comparison with movers for both metrics
// and the summary statistics.
func (a *AnalysisFacade) ComparePanel(name string, panel *models.MMonthlyPanel) (models.MComparisonResult, map[models.ChangeMetric]models.MTopMovers, models.MChangeSummary, error) {
	from, to := a.CompareMonths(name)
	result, err := Compare(panel, from, to)
	if err != nil {
		return models.MComparisonResult{}, nil, models.MChangeSummary{}, err
	}

	movers := map[models.ChangeMetric]models.MTopMovers{
		models.MetricAbsolute: TopMovers(result, models.MetricAbsolute, a.TopN()),
		models.MetricPercent:  TopMovers(result, models.MetricPercent, a.TopN()),
	}
	summary := SummarizeChanges(result)
	if summary.Count == 0 {
		a.Logger.Warning("Panel %s: no entity has values in both %s and %s", name, from, to)
	}
	return result, movers, summary, nil
}

// -----------------------------------------------------------------------------

// BuildView aligns a panel and derives every table its configuration asks for.
func (a *AnalysisFacade) BuildView(name string, series []models.MNormalizedSeries, backward map[string]bool) (*models.MPanelView, error) {
	pc := a.PanelConfig(name)
	panel, err := a.BuildPanel(name, series, backward)
	if err != nil {
		return nil, err
	}

	latest := LatestValues(panel)
	view := &models.MPanelView{Name: name, Title: pc.Title, Panel: panel, Latest: &latest}

	if pc.Compare {
		result, movers, summary, err := a.ComparePanel(name, panel)
		if err != nil {
			return nil, err
		}
		view.Comparison, view.Movers, view.Summary = &result, movers, &summary
	}

	if pc.Correlate {
		matrix, err := Correlate(panel)
		if err != nil {
			return nil, err
		}
		view.Correlation = &matrix
	}
	return view, nil
}
