package dataset

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"olist-dashboard/internal/errors"
)

const (
	customersCSV = `customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state
c1,u1,01310,sao paulo,SP
c2,u2,20040,rio de janeiro,RJ`

	orderItemsCSV = `order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value
o1,1,p1,s1,2024-01-02 10:00:00,100.50,10.00
o1,2,p2,s1,2024-01-02 10:00:00,50.00,5.00
o2,1,p1,s2,2024-01-03 10:00:00,,8.00`

	paymentsCSV = `order_id,payment_sequential,payment_type,payment_installments,payment_value
o1,1,credit_card,3,165.50
o2,1,boleto,1,108.00`

	reviewsCSV = `review_id,order_id,review_score,review_comment_title,review_comment_message
r1,o1,5,,"great product, arrived early"
r2,o2,2,,`

	ordersCSV = `order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2024-01-01 09:30:00,2024-01-01 10:00:00,2024-01-03 08:00:00,2024-01-10 14:00:00,2024-01-05 00:00:00
o2,c2,shipped,2024-01-02 11:00:00,2024-01-02 12:00:00,2024-01-04 08:00:00,,2024-01-09 00:00:00`

	productsCSV = `product_id,product_category_name
p1,informatica_acessorios
p2,cama_mesa_banho`

	translationCSV = `product_category_name,product_category_name_english
informatica_acessorios,computers_accessories
cama_mesa_banho,bed_bath_table`
)

func writeSources(t *testing.T, overrides map[string]string) Sources {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"customers.csv":   customersCSV,
		"order_items.csv": orderItemsCSV,
		"payments.csv":    paymentsCSV,
		"reviews.csv":     reviewsCSV,
		"orders.csv":      ordersCSV,
		"products.csv":    productsCSV,
		"translation.csv": translationCSV,
	}
	for name, content := range overrides {
		files[name] = content
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return Sources{
		Customers:   filepath.Join(dir, "customers.csv"),
		OrderItems:  filepath.Join(dir, "order_items.csv"),
		Payments:    filepath.Join(dir, "payments.csv"),
		Reviews:     filepath.Join(dir, "reviews.csv"),
		Orders:      filepath.Join(dir, "orders.csv"),
		Products:    filepath.Join(dir, "products.csv"),
		Translation: filepath.Join(dir, "translation.csv"),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestLoader_Load(t *testing.T) {
	src := writeSources(t, nil)
	l := NewLoader(testLogger())

	tables, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := len(tables.OrderItems); got != 3 {
		t.Errorf("len(OrderItems) = %d, want 3", got)
	}
	if got := len(tables.Customers); got != 2 {
		t.Errorf("len(Customers) = %d, want 2", got)
	}
	if got := len(tables.Orders); got != 2 {
		t.Errorf("len(Orders) = %d, want 2", got)
	}

	// Quoted review comments with embedded commas must survive parsing.
	if got := tables.Reviews[0].Comment; got != "great product, arrived early" {
		t.Errorf("review comment = %q", got)
	}

	// Timestamps stay raw strings at this stage.
	if got := tables.Orders[0].PurchasedAt; got != "2024-01-01 09:30:00" {
		t.Errorf("raw purchase timestamp = %q", got)
	}
	if got := tables.Orders[1].DeliveredAt; got != "" {
		t.Errorf("missing delivery timestamp = %q, want empty", got)
	}

	// Empty numeric cells become NaN, not zero; null-fill belongs to enrichment.
	if got := tables.OrderItems[2].Price; !math.IsNaN(got) {
		t.Errorf("empty price = %v, want NaN", got)
	}
}

func TestLoader_Memoized(t *testing.T) {
	src := writeSources(t, nil)
	l := NewLoader(testLogger())

	first, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Rewrite a source on disk; the cached tables must be returned untouched
	// because the cache key is the source configuration, not file contents.
	if err := os.WriteFile(src.Customers, []byte("customer_id,customer_unique_id,customer_city,customer_state\n"), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if second != first {
		t.Error("second Load() should return the cached tables value")
	}
	if len(second.Customers) != 2 {
		t.Errorf("len(Customers) after rewrite = %d, want cached 2", len(second.Customers))
	}
}

func TestLoader_SourceUnavailable(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		remove    string
	}{
		{
			name:   "missing file",
			remove: "orders.csv",
		},
		{
			name: "missing required column",
			overrides: map[string]string{
				"customers.csv": "customer_id,customer_city\nc1,sao paulo",
			},
		},
		{
			name: "malformed numeric",
			overrides: map[string]string{
				"order_items.csv": "order_id,order_item_id,product_id,price,freight_value\no1,1,p1,not-a-number,1.0",
			},
		},
		{
			name: "ragged record",
			overrides: map[string]string{
				"payments.csv": "order_id,payment_sequential,payment_type,payment_installments,payment_value\no1,1,credit_card",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := writeSources(t, tt.overrides)
			if tt.remove != "" {
				if err := os.Remove(filepath.Join(filepath.Dir(src.Orders), tt.remove)); err != nil {
					t.Fatal(err)
				}
			}

			l := NewLoader(testLogger())
			_, err := l.Load(context.Background(), src)
			if err == nil {
				t.Fatal("Load() should fail")
			}

			appErr, ok := err.(*errors.AppError)
			if !ok {
				t.Fatalf("Load() error type = %T, want *errors.AppError", err)
			}
			if appErr.Code != errors.CodeSourceUnavailable {
				t.Errorf("error code = %s, want %s", appErr.Code, errors.CodeSourceUnavailable)
			}
		})
	}
}
