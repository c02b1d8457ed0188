package tabular

import (
	"context"
	"time"

	"tariff-observer/src/interfaces"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"
	"tariff-observer/src/network"
	"tariff-observer/src/normalizer"
)

// TabularSource loads one delimited table and normalizes it by its declared kind.
type TabularSource struct {
	Config  *models.MConfig
	Source  models.MSourceConfig
	Network interfaces.INetworkManager
	Cache   interfaces.IFetchCache
	Logger  *logger.Logger
	Now     func() time.Time
}

// -----------------------------------------------------------------------------

func NewTabularSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, cache interfaces.IFetchCache) *TabularSource {
	return &TabularSource{
		Config:  cfg,
		Source:  sourceCfg,
		Network: netMgr,
		Cache:   cache,
		Logger:  logger.NewLogger(nil, "TabularSource-"+sourceCfg.Name),
		Now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *TabularSource) Name() string {
	return s.Source.Name
}

func (s *TabularSource) SourceConfig() models.MSourceConfig {
	return s.Source
}

// -----------------------------------------------------------------------------

// Bucket is the cache bucket of t: whole multiples of cache.bucket_seconds.
func (s *TabularSource) Bucket(t time.Time) int64 {
	size := int64(s.Config.Cache.BucketSeconds)
	if size <= 0 {
		size = 1
	}
	return t.Unix() / size
}

// -----------------------------------------------------------------------------

// Load fetches the table and normalizes it. Cache failures never fail the
// load; they surface as info diagnostics.
func (s *TabularSource) Load(ctx context.Context) (models.MNormalizeResult, bool, error) {
	data, fromCache, cacheDiags, err := s.fetch(ctx)
	if err != nil {
		return models.MNormalizeResult{}, false, err
	}

	table, err := normalizer.ReadTableBytes(s.Source.Name, data, s.Source.Encoding)
	if err != nil {
		return models.MNormalizeResult{}, fromCache, err
	}

	opts := normalizer.OptionsFromSource(s.Source, s.Config.Analysis)
	result, err := normalizer.Normalize(table, s.Source.Kind, opts)
	if err != nil {
		return models.MNormalizeResult{}, fromCache, err
	}
	result.Diagnostics = append(cacheDiags, result.Diagnostics...)

	s.Logger.Info("Loaded %d series, %d articles (cache: %t)", len(result.Series), len(result.Articles), fromCache)
	return result, fromCache, nil
}

// -----------------------------------------------------------------------------

func (s *TabularSource) fetch(ctx context.Context) ([]byte, bool, []models.MDiagnostic, error) {
	location := s.Source.Location
	if s.Cache == nil || !network.IsRemote(location) {
		data, err := s.Network.Fetch(ctx, location)
		return data, false, nil, err
	}

	var diags []models.MDiagnostic
	cacheDiag := func(format string, err error) {
		s.Logger.Warning(format, err)
		diags = append(diags, models.MDiagnostic{
			Source:   s.Source.Name,
			Kind:     models.DiagCache,
			Severity: models.SeverityInfo,
			Message:  err.Error(),
		})
	}

	bucket := s.Bucket(s.Now())
	cached, ok, err := s.Cache.Get(ctx, location, bucket)
	if err != nil {
		cacheDiag("Cache read failed: %v", err)
	} else if ok {
		return cached, true, diags, nil
	}

	data, err := s.Network.Fetch(ctx, location)
	if err != nil {
		return nil, false, diags, err
	}

	if err := s.Cache.Put(ctx, location, bucket, data); err != nil {
		cacheDiag("Cache write failed: %v", err)
	}
	return data, false, diags, nil
}
