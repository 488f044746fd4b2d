package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/starfederation/datastar-go/datastar"

	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/pipeline"
	"olist-dashboard/internal/summary"
)

const maxStateRows = 27 // Brazil has 26 states plus the federal district

var stateTableTemplate = template.Must(template.New("stateTable").Parse(`
<div id="states-content">
<table class="modern-table">
<thead><tr><th>State</th><th>Sales</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.State}}</td>
<td><strong>R$ {{printf "%.2f" .Sales}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	api    *APIHandlers
	logger *slog.Logger
}

func NewSSEHandlers(p *pipeline.Pipeline, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		api:    NewAPIHandlers(p, logger),
		logger: logger,
	}
}

func (h *SSEHandlers) renderStateTable(data []summary.StateSales) (string, error) {
	if len(data) > maxStateRows {
		data = data[:maxStateRows]
	}

	var buf strings.Builder
	err := stateTableTemplate.Execute(&buf, data)
	return buf.String(), err
}

func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	facts, err := h.api.filteredFacts(r)
	if err != nil {
		h.patchError(sse, err)
		return
	}

	signals, err := json.Marshal(map[string]any{
		"overview": summary.ComputeOverview(facts),
	})
	if err != nil {
		h.logger.Error("marshal overview signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	facts, err := h.api.filteredFacts(r)
	if err != nil {
		h.patchError(sse, err)
		return
	}

	states := summary.SalesByState(facts)
	html, err := h.renderStateTable(states)
	if err != nil {
		h.logger.Error("render state table", "error", err)
		return
	}
	sse.PatchElements(html)

	signals, err := json.Marshal(map[string]any{
		"overview":   summary.ComputeOverview(facts),
		"monthly":    summary.MonthlySales(facts),
		"states":     states,
		"categories": summary.SalesByCategory(facts),
		"logistics":  summary.ComputeLogistics(facts),
		"payments":   summary.PaymentTypes(facts),
		"reviews":    summary.ComputeReviews(facts),
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if len(facts) == 0 {
		sse.PatchElements(`<div id="states-content">No data matches the selected filters.</div>`)
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// patchError surfaces a filter error (such as an inverted custom date range)
// in the page instead of silently dropping the update.
func (h *SSEHandlers) patchError(sse *datastar.ServerSentEventGenerator, err error) {
	h.logger.Warn("sse update rejected", "error", err)

	message := "Could not refresh the dashboard."
	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
	}
	sse.PatchElements(`<div id="states-content">` + template.HTMLEscapeString(message) + `</div>`)
}
