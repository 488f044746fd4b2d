package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"olist-dashboard/internal/dataset"
	"olist-dashboard/internal/pipeline"
)

var testCSVs = map[string]string{
	"customers.csv": `customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state
c1,u1,01310,sao paulo,SP
c2,u2,20040,rio de janeiro,RJ
c3,u3,30110,belo horizonte,MG`,
	"order_items.csv": `order_id,order_item_id,product_id,price,freight_value
o1,1,p1,100.00,10.00
o2,1,p2,50.00,5.00
o3,1,p1,75.00,7.50`,
	"payments.csv": `order_id,payment_sequential,payment_type,payment_installments,payment_value
o1,1,credit_card,2,110.00
o2,1,boleto,1,55.00
o3,1,credit_card,1,82.50`,
	"reviews.csv": `review_id,order_id,review_score,review_comment_title,review_comment_message
r1,o1,5,,"muito bom"
r2,o2,4,,
r3,o3,2,,`,
	"orders.csv": `order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2024-01-01 09:00:00,2024-01-01 10:00:00,2024-01-02 08:00:00,2024-01-10 00:00:00,2024-01-05 00:00:00
o2,c2,delivered,2024-01-15 11:00:00,2024-01-15 12:00:00,2024-01-16 08:00:00,2024-01-20 00:00:00,2024-01-25 00:00:00
o3,c3,delivered,2024-02-01 14:00:00,2024-02-01 15:00:00,2024-02-02 08:00:00,2024-02-08 00:00:00,2024-02-10 00:00:00`,
	"products.csv": `product_id,product_category_name
p1,informatica_acessorios
p2,cama_mesa_banho`,
	"translation.csv": `product_category_name,product_category_name_english
informatica_acessorios,computers_accessories
cama_mesa_banho,bed_bath_table`,
}

func createTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	dir := t.TempDir()
	for name, content := range testCSVs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	src := dataset.Sources{
		Customers:   filepath.Join(dir, "customers.csv"),
		OrderItems:  filepath.Join(dir, "order_items.csv"),
		Payments:    filepath.Join(dir, "payments.csv"),
		Reviews:     filepath.Join(dir, "reviews.csv"),
		Orders:      filepath.Join(dir, "orders.csv"),
		Products:    filepath.Join(dir, "products.csv"),
		Translation: filepath.Join(dir, "translation.csv"),
	}
	return pipeline.New(slog.New(slog.DiscardHandler), src)
}

func decodeSuccess(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}
	return response
}

func TestNewAPIHandlers(t *testing.T) {
	p := createTestPipeline(t)
	logger := slog.Default()
	handlers := NewAPIHandlers(p, logger)

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}

	if handlers.pipeline != p {
		t.Error("NewAPIHandlers() should set pipeline field")
	}
}

func TestAPIHandlers_HandleOverview(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	w := httptest.NewRecorder()

	handlers.HandleOverview(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}

	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
	}

	response := decodeSuccess(t, w)

	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected overview object in response")
	}
	// Three order items at 100, 50, 75.
	if sales, ok := data["total_sales"].(float64); !ok || sales != 225 {
		t.Errorf("total_sales = %v, want 225", data["total_sales"])
	}
	if orders, ok := data["order_count"].(float64); !ok || orders != 3 {
		t.Errorf("order_count = %v, want 3", data["order_count"])
	}
}

func TestAPIHandlers_FilterQueryParams(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	tests := []struct {
		name      string
		query     string
		wantSales float64
	}{
		{"min score excludes low reviews", "?min_score=4", 150},
		{"state restriction", "?states=SP", 100},
		{"price range", "?price_min=60&price_max=90", 75},
		{"category restriction", "?categories=bed_bath_table", 50},
		{"custom period", "?period=custom&start=2024-01-10&end=2024-02-28", 125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/overview"+tt.query, nil)
			w := httptest.NewRecorder()

			handlers.HandleOverview(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			response := decodeSuccess(t, w)
			data := response["data"].(map[string]interface{})
			if sales := data["total_sales"].(float64); sales != tt.wantSales {
				t.Errorf("total_sales = %v, want %v", sales, tt.wantSales)
			}
		})
	}
}

func TestAPIHandlers_InvalidParams(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"inverted custom range", "?period=custom&start=2024-02-01&end=2024-01-01", "INVALID_DATE_RANGE"},
		{"custom without dates", "?period=custom", "VALIDATION_ERROR"},
		{"malformed date", "?period=custom&start=01/02/2024&end=2024-02-28", "VALIDATION_ERROR"},
		{"non-numeric score", "?min_score=high", "VALIDATION_ERROR"},
		{"non-numeric price", "?price_min=cheap", "VALIDATION_ERROR"},
		{"unknown preset", "?period=fortnight", "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/overview"+tt.query, nil)
			w := httptest.NewRecorder()

			handlers.HandleOverview(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}

			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			if success, ok := response["success"].(bool); !ok || success {
				t.Error("expected success=false in error response")
			}
			errObj, ok := response["error"].(map[string]interface{})
			if !ok {
				t.Fatal("expected error object in response")
			}
			if code := errObj["code"]; code != tt.wantCode {
				t.Errorf("error code = %v, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestAPIHandlers_HandleOrders(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/orders?limit=2", nil)
	w := httptest.NewRecorder()

	handlers.HandleOrders(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	response := decodeSuccess(t, w)
	rows, ok := response["data"].([]interface{})
	if !ok {
		t.Fatal("expected data array in response")
	}
	if len(rows) != 2 {
		t.Errorf("len(rows) = %d, want 2 (limit applied)", len(rows))
	}
}

func TestAPIHandlers_HandleOrders_LimitValidation(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	for _, limit := range []string{"0", "-5", "1001", "many"} {
		t.Run("limit="+limit, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders?limit="+limit, nil)
			w := httptest.NewRecorder()

			handlers.HandleOrders(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestAPIHandlers_HandleMeta(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/meta", nil)
	w := httptest.NewRecorder()

	handlers.HandleMeta(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected meta object in response")
	}
	if data["price_min"].(float64) != 50 || data["price_max"].(float64) != 100 {
		t.Errorf("price extent = [%v, %v], want [50, 100]", data["price_min"], data["price_max"])
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Health endpoint should NOT have cache-control header
	if cc := w.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("health endpoint should not set cache-control, got %q", cc)
	}

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected health data in response")
	}
	if status, ok := data["status"].(string); !ok || status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", status)
	}
	if timestamp, ok := data["timestamp"].(string); !ok || timestamp == "" {
		t.Error("expected non-empty timestamp")
	} else if _, err := time.Parse(time.RFC3339, timestamp); err != nil {
		t.Errorf("invalid timestamp format: %v", err)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected stats object in response")
	}
	if rows := data["rows"].(float64); rows != 3 {
		t.Errorf("rows = %v, want 3", rows)
	}
}

func TestAPIHandlers_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := dataset.Sources{
		Customers:   filepath.Join(dir, "missing.csv"),
		OrderItems:  filepath.Join(dir, "missing.csv"),
		Payments:    filepath.Join(dir, "missing.csv"),
		Reviews:     filepath.Join(dir, "missing.csv"),
		Orders:      filepath.Join(dir, "missing.csv"),
		Products:    filepath.Join(dir, "missing.csv"),
		Translation: filepath.Join(dir, "missing.csv"),
	}
	handlers := NewAPIHandlers(pipeline.New(slog.New(slog.DiscardHandler), src), slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	w := httptest.NewRecorder()

	handlers.HandleOverview(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if code := errObj["code"]; code != "SOURCE_UNAVAILABLE" {
		t.Errorf("error code = %v, want SOURCE_UNAVAILABLE", code)
	}
}

// Test that handlers set correct headers consistently
func TestAPIHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewAPIHandlers(createTestPipeline(t), slog.Default())

	apiEndpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"overview", handlers.HandleOverview},
		{"monthly-sales", handlers.HandleMonthlySales},
		{"sales-by-state", handlers.HandleSalesByState},
		{"sales-by-category", handlers.HandleSalesByCategory},
		{"logistics", handlers.HandleLogistics},
		{"payments", handlers.HandlePayments},
		{"reviews", handlers.HandleReviews},
		{"top-products", handlers.HandleTopProducts},
	}

	for _, endpoint := range apiEndpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			endpoint.handler(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}

			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected content-type 'application/json', got %q", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
				t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
			}

			body := w.Body.String()
			if !strings.HasPrefix(body, "{") || !strings.HasSuffix(strings.TrimSpace(body), "}") {
				t.Errorf("expected JSON object response, got: %s", body)
			}

			var response map[string]interface{}
			if err := json.NewDecoder(strings.NewReader(body)).Decode(&response); err != nil {
				t.Errorf("response should be valid JSON: %v", err)
			}
			if success, ok := response["success"].(bool); !ok || !success {
				t.Error("expected success=true in response")
			}
			if _, ok := response["data"]; !ok {
				t.Error("expected data field in response")
			}
		})
	}
}
