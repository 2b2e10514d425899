package soar

import (
	"context"

	"go.uber.org/zap"

	"aegis/core"
	"aegis/metrics"
)

// whitelistCategories are the indicator categories checked against the
// whitelist. Country, registry and other indicators are never whitelisted.
var whitelistCategories = []core.IndicatorCategory{
	core.IndicatorIP,
	core.IndicatorDomain,
	core.IndicatorHash,
	core.IndicatorURL,
	core.IndicatorEmail,
}

// WhitelistStore serves whitelist entry lists per indicator category. The
// store must be safe for concurrent use; entries are expected to be
// deduplicated and free of empty strings.
type WhitelistStore interface {
	Entries(ctx context.Context, category core.IndicatorCategory) ([]string, error)
}

// Whitelist answers whether case indicators touch known-good values. It is
// strictly read-only: checks never mutate the case or the store.
type Whitelist struct {
	store  WhitelistStore
	logger *zap.SugaredLogger
}

// NewWhitelist creates a whitelist filter over the given store
func NewWhitelist(store WhitelistStore, logger *zap.SugaredLogger) *Whitelist {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Whitelist{store: store, logger: logger}
}

// IsWhitelisted reports whether any indicator of the set matches its
// category whitelist. The first match wins; the matching category is
// returned for logging.
func (w *Whitelist) IsWhitelisted(ctx context.Context, set *core.IndicatorSet) (bool, core.IndicatorCategory, error) {
	if set == nil || set.Len() == 0 {
		return false, "", nil
	}

	for _, category := range whitelistCategories {
		values := set.Values(category)
		if len(values) == 0 {
			continue
		}

		entries, err := w.store.Entries(ctx, category)
		if err != nil {
			return false, "", err
		}
		if len(entries) == 0 {
			continue
		}

		allowed := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			allowed[e] = struct{}{}
		}

		for _, v := range values {
			if _, ok := allowed[v]; ok {
				w.logger.Debugf("Indicator %q matched %s whitelist", v, category)
				metrics.WhitelistHits.WithLabelValues(string(category)).Inc()
				return true, category, nil
			}
		}
	}
	return false, "", nil
}

// IsCaseWhitelisted checks the aggregated indicators of a case file
func (w *Whitelist) IsCaseWhitelisted(ctx context.Context, cf *core.CaseFile) (bool, core.IndicatorCategory, error) {
	if cf == nil {
		return false, "", nil
	}
	return w.IsWhitelisted(ctx, cf.IndicatorsSet)
}
