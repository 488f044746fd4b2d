package pipeline

import (
	"context"
	"log/slog"
	"time"

	"olist-dashboard/internal/cache"
	"olist-dashboard/internal/dataset"
	"olist-dashboard/internal/enrich"
	"olist-dashboard/internal/filter"
	"olist-dashboard/internal/models"
)

// Meta carries the data-dependent filter defaults: the purchase-date bounds
// presets are computed against, and the price extent of the dataset.
type Meta struct {
	Bounds   filter.Bounds `json:"bounds"`
	PriceMin float64       `json:"price_min"`
	PriceMax float64       `json:"price_max"`
}

// Pipeline is the request-facing façade over loader and enricher. Both
// stages are memoized for the process lifetime: the loader keyed by the
// source configuration, the enrichment keyed by the identity of the loaded
// tables. Filtered views are computed per request and never cached.
type Pipeline struct {
	loader  *dataset.Loader
	sources dataset.Sources
	facts   *cache.Memo[[]models.OrderItemFact]
	meta    *cache.Memo[Meta]
	logger  *slog.Logger
}

func New(logger *slog.Logger, sources dataset.Sources) *Pipeline {
	return &Pipeline{
		loader:  dataset.NewLoader(logger),
		sources: sources,
		facts:   cache.NewMemo[[]models.OrderItemFact](),
		meta:    cache.NewMemo[Meta](),
		logger:  logger,
	}
}

// Warm loads and enriches eagerly so the first request never pays for it.
func (p *Pipeline) Warm(ctx context.Context) error {
	_, err := p.Facts(ctx)
	return err
}

// Facts returns the enriched table: one row per order item, times the
// payments fan-out. The returned slice is shared immutable state; callers
// must not modify it.
func (p *Pipeline) Facts(ctx context.Context) ([]models.OrderItemFact, error) {
	tables, err := p.loader.Load(ctx, p.sources)
	if err != nil {
		return nil, err
	}

	return p.facts.Do(tables.Key(), func() ([]models.OrderItemFact, error) {
		start := time.Now()
		facts := enrich.Enrich(tables)
		p.logger.Info("enrichment complete",
			"rows", len(facts),
			"order_items", len(tables.OrderItems),
			"duration", time.Since(start),
		)
		return facts, nil
	})
}

// Meta returns the filter defaults derived from the enriched table.
func (p *Pipeline) Meta(ctx context.Context) (Meta, error) {
	facts, err := p.Facts(ctx)
	if err != nil {
		return Meta{}, err
	}

	return p.meta.Do(p.sources.Key(), func() (Meta, error) {
		m := Meta{Bounds: filter.BoundsOf(facts)}
		for i, f := range facts {
			if i == 0 || f.Price < m.PriceMin {
				m.PriceMin = f.Price
			}
			if i == 0 || f.Price > m.PriceMax {
				m.PriceMax = f.Price
			}
		}
		return m, nil
	})
}

// Stats reports cache and table sizes for the admin endpoint.
func (p *Pipeline) Stats(ctx context.Context) (map[string]any, error) {
	facts, err := p.Facts(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := p.Meta(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"rows":           len(facts),
		"min_date":       meta.Bounds.Min.Format(time.DateOnly),
		"max_date":       meta.Bounds.Max.Format(time.DateOnly),
		"cached_tables":  p.facts.Len(),
		"join_plan_size": len(enrich.Plan()),
	}, nil
}
