package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/filter"
	"olist-dashboard/internal/models"
	"olist-dashboard/internal/observability"
	"olist-dashboard/internal/pipeline"
	"olist-dashboard/internal/summary"
)

const (
	cacheControl    = "public, max-age=300"
	defaultMinScore = 1
	maxOrderRows    = 1000
	topProductLimit = 10
)

type APIHandlers struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

func NewAPIHandlers(p *pipeline.Pipeline, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		pipeline: p,
		logger:   logger,
	}
}

// filterParams builds filter parameters from query values, falling back to
// the all-permissive defaults derived from the data itself: full date range,
// score floor 1, full price extent, no state or category restriction.
func (h *APIHandlers) filterParams(r *http.Request) (filter.Params, error) {
	meta, err := h.pipeline.Meta(r.Context())
	if err != nil {
		return filter.Params{}, err
	}

	q := r.URL.Query()

	preset := filter.Preset(q.Get("period"))
	var start, end time.Time
	if preset == filter.PresetCustom {
		if start, err = parseDate(q.Get("start")); err != nil {
			return filter.Params{}, err
		}
		if end, err = parseDate(q.Get("end")); err != nil {
			return filter.Params{}, err
		}
	}
	dateRange, err := filter.Resolve(preset, start, end, meta.Bounds)
	if err != nil {
		return filter.Params{}, err
	}

	minScore, err := intParam(q.Get("min_score"), defaultMinScore)
	if err != nil {
		return filter.Params{}, err
	}
	priceMin, err := floatParam(q.Get("price_min"), meta.PriceMin)
	if err != nil {
		return filter.Params{}, err
	}
	priceMax, err := floatParam(q.Get("price_max"), meta.PriceMax)
	if err != nil {
		return filter.Params{}, err
	}

	return filter.Params{
		Range:          dateRange,
		MinReviewScore: minScore,
		PriceMin:       priceMin,
		PriceMax:       priceMax,
		States:         listParam(q.Get("states")),
		Categories:     listParam(q.Get("categories")),
	}, nil
}

// filteredFacts evaluates the request's predicates against the cached
// enriched table. An empty result is normal and flows through as-is.
func (h *APIHandlers) filteredFacts(r *http.Request) ([]models.OrderItemFact, error) {
	facts, err := h.pipeline.Facts(r.Context())
	if err != nil {
		return nil, err
	}
	params, err := h.filterParams(r)
	if err != nil {
		return nil, err
	}
	return filter.Apply(facts, params), nil
}

func (h *APIHandlers) respond(w http.ResponseWriter, r *http.Request, compute func([]models.OrderItemFact) any) {
	facts, err := h.filteredFacts(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, compute(facts), map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(facts []models.OrderItemFact) any {
		return summary.ComputeOverview(facts)
	})
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(facts []models.OrderItemFact) any {
		return summary.MonthlySales(facts)
	})
}

func (h *APIHandlers) HandleSalesByState(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(facts []models.OrderItemFact) any {
		return summary.SalesByState(facts)
	})
}

func (h *APIHandlers) HandleSalesByCategory(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(facts []models.OrderItemFact) any {
		return summary.SalesByCategory(facts)
	})
}

func (h *APIHandlers) HandleLogistics(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(facts []models.OrderItemFact) any {
		return summary.ComputeLogistics(facts)
	})
}

func (h *APIHandlers) HandlePayments(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(facts []models.OrderItemFact) any {
		return summary.PaymentTypes(facts)
	})
}

func (h *APIHandlers) HandleReviews(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(facts []models.OrderItemFact) any {
		return summary.ComputeReviews(facts)
	})
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(facts []models.OrderItemFact) any {
		return summary.TopProducts(facts, topProductLimit)
	})
}

// HandleOrders returns the filtered rows themselves, capped so a permissive
// filter cannot stream the entire table.
func (h *APIHandlers) HandleOrders(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), 100)
	if err != nil || limit < 1 || limit > maxOrderRows {
		errors.WriteError(w, h.logger,
			errors.Validation("limit must be between 1 and 1000"),
			observability.GetRequestID(r.Context()))
		return
	}

	h.respond(w, r, func(facts []models.OrderItemFact) any {
		if len(facts) > limit {
			facts = facts[:limit]
		}
		return facts
	})
}

// HandleMeta exposes the filter defaults so the UI can initialize its
// controls from the data bounds.
func (h *APIHandlers) HandleMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.pipeline.Meta(r.Context())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccess(w, meta)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.pipeline.Stats(r.Context())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccess(w, stats)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.Validation("custom period requires start and end dates")
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.ValidationWrap(err, "dates must use the YYYY-MM-DD format")
	}
	return t, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ValidationWrap(err, "expected an integer parameter")
	}
	return v, nil
}

func floatParam(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.ValidationWrap(err, "expected a numeric parameter")
	}
	return v, nil
}

func listParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
