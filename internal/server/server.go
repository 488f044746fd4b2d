package server

import (
	"log/slog"
	"net/http"

	"olist-dashboard/internal/handlers"
	"olist-dashboard/internal/pipeline"
)

type Server struct {
	pipeline    *pipeline.Pipeline
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(p *pipeline.Pipeline, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		pipeline:    p,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(p, logger),
		sseHandlers: handlers.NewSSEHandlers(p, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/meta", s.apiHandlers.HandleMeta)
	s.mux.HandleFunc("GET /api/overview", s.apiHandlers.HandleOverview)
	s.mux.HandleFunc("GET /api/sales/monthly", s.apiHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /api/sales/by-state", s.apiHandlers.HandleSalesByState)
	s.mux.HandleFunc("GET /api/sales/by-category", s.apiHandlers.HandleSalesByCategory)
	s.mux.HandleFunc("GET /api/logistics", s.apiHandlers.HandleLogistics)
	s.mux.HandleFunc("GET /api/payments", s.apiHandlers.HandlePayments)
	s.mux.HandleFunc("GET /api/reviews", s.apiHandlers.HandleReviews)
	s.mux.HandleFunc("GET /api/products/top", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/orders", s.apiHandlers.HandleOrders)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/overview", s.sseHandlers.HandleOverview)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
