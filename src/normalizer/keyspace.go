package normalizer

import (
	"sort"
	"strings"

	"tariff-observer/src/models"
)

// KeySpace is the set of entity keys one source can produce. Row driven
// kinds (trade partners, news countries) are Open: any non-empty name
// between Prefix and Suffix.
type KeySpace struct {
	Keys   []string
	Open   bool
	Prefix string
	Suffix string
}

// SourceKeySpace derives the key space of a configured source from the same
// options Normalize uses.
func SourceKeySpace(src models.MSourceConfig, analysis models.MAnalysisConfig) KeySpace {
	opts := OptionsFromSource(src, analysis)

	switch src.Kind {
	case models.KindTradeBalance:
		return KeySpace{Open: true, Prefix: opts.KeyPrefix, Suffix: opts.KeySuffix}

	case models.KindNews:
		return KeySpace{Open: true, Prefix: opts.KeyPrefix, Suffix: "_" + SentimentIndicator + opts.KeySuffix}

	case models.KindDailyPrice:
		key := opts.EntityKey
		if key == "" {
			key = opts.Source
		}
		return KeySpace{Keys: []string{opts.key(key)}}

	case models.KindYearlyIndicator:
		indicator := opts.Indicator
		if indicator == "" {
			indicator = opts.Source
		}
		if len(opts.Countries) == 0 {
			return KeySpace{Open: true, Prefix: opts.KeyPrefix, Suffix: "_" + indicator + opts.KeySuffix}
		}
		keys := make([]string, 0, len(opts.Countries))
		for _, c := range opts.Countries {
			keys = append(keys, opts.key(IndicatorKey(c, indicator)))
		}
		return KeySpace{Keys: keys}

	case models.KindTariff:
		keys := make([]string, 0, len(opts.Columns))
		for _, k := range opts.Columns {
			keys = append(keys, opts.key(k))
		}
		sort.Strings(keys)
		return KeySpace{Keys: keys}
	}
	return KeySpace{}
}

// -----------------------------------------------------------------------------

// Overlap returns a key both spaces can produce. Open spaces are shown with
// "*" standing for the row name.
func (k KeySpace) Overlap(o KeySpace) (string, bool) {
	switch {
	case k.Open && o.Open:
		prefix, ok := longer(k.Prefix, o.Prefix, strings.HasPrefix)
		if !ok {
			return "", false
		}
		suffix, ok := longer(k.Suffix, o.Suffix, strings.HasSuffix)
		if !ok {
			return "", false
		}
		return prefix + "*" + suffix, true

	case k.Open:
		return k.firstMatch(o.Keys)

	case o.Open:
		return o.firstMatch(k.Keys)
	}

	seen := make(map[string]bool, len(k.Keys))
	for _, key := range k.Keys {
		seen[key] = true
	}
	for _, key := range o.Keys {
		if seen[key] {
			return key, true
		}
	}
	return "", false
}

func (k KeySpace) firstMatch(keys []string) (string, bool) {
	for _, key := range keys {
		if len(key) > len(k.Prefix)+len(k.Suffix) &&
			strings.HasPrefix(key, k.Prefix) && strings.HasSuffix(key, k.Suffix) {
			return key, true
		}
	}
	return "", false
}

// longer returns the longer of a and b when one extends the other.
func longer(a, b string, extends func(s, part string) bool) (string, bool) {
	if len(a) < len(b) {
		a, b = b, a
	}
	if !extends(a, b) {
		return "", false
	}
	return a, true
}
