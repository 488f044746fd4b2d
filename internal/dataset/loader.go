package dataset

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"olist-dashboard/internal/cache"
	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/models"
)

// Tables holds the seven source tables of one dataset, loaded verbatim.
// Once returned by the loader a Tables value is immutable shared state.
type Tables struct {
	Customers   []models.Customer
	OrderItems  []models.OrderItem
	Payments    []models.Payment
	Reviews     []models.Review
	Orders      []models.Order
	Products    []models.Product
	Translation []models.CategoryTranslation

	key string
}

// Key identifies the source configuration these tables were loaded from.
func (t *Tables) Key() string {
	return t.key
}

// Loader reads the seven CSV sources into typed tables. Results are memoized
// per source set for the process lifetime; repeated loads of the same
// configuration never touch storage again.
type Loader struct {
	memo   *cache.Memo[*Tables]
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{
		memo:   cache.NewMemo[*Tables](),
		logger: logger,
	}
}

func (l *Loader) Load(ctx context.Context, src Sources) (*Tables, error) {
	return l.memo.Do(src.Key(), func() (*Tables, error) {
		start := time.Now()
		tables, err := l.read(ctx, src)
		if err != nil {
			return nil, errors.SourceUnavailableWrap(err, "dataset cannot be loaded")
		}

		l.logger.Info("dataset loaded",
			"order_items", len(tables.OrderItems),
			"orders", len(tables.Orders),
			"customers", len(tables.Customers),
			"duration", time.Since(start),
		)
		return tables, nil
	})
}

// read pulls all seven files concurrently. Any failure aborts the whole load.
func (l *Loader) read(ctx context.Context, src Sources) (*Tables, error) {
	tables := &Tables{key: src.Key()}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		tables.Customers, err = readCustomers(ctx, src.Customers)
		return err
	})
	g.Go(func() error {
		var err error
		tables.OrderItems, err = readOrderItems(ctx, src.OrderItems)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Payments, err = readPayments(ctx, src.Payments)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Reviews, err = readReviews(ctx, src.Reviews)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Orders, err = readOrders(ctx, src.Orders)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Products, err = readProducts(ctx, src.Products)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Translation, err = readTranslation(ctx, src.Translation)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func readCustomers(ctx context.Context, path string) ([]models.Customer, error) {
	var out []models.Customer
	cols := []string{"customer_id", "customer_unique_id", "customer_city", "customer_state"}

	err := readTable(path, cols, func(r row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out = append(out, models.Customer{
			ID:        r.get("customer_id"),
			UniqueID:  r.get("customer_unique_id"),
			ZipPrefix: r.get("customer_zip_code_prefix"),
			City:      r.get("customer_city"),
			State:     r.get("customer_state"),
		})
		return nil
	})
	return out, err
}

func readOrderItems(ctx context.Context, path string) ([]models.OrderItem, error) {
	var out []models.OrderItem
	cols := []string{"order_id", "order_item_id", "product_id", "price", "freight_value"}

	err := readTable(path, cols, func(r row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seq, err := r.int("order_item_id")
		if err != nil {
			return err
		}
		price, err := r.float("price")
		if err != nil {
			return err
		}
		freight, err := r.float("freight_value")
		if err != nil {
			return err
		}
		out = append(out, models.OrderItem{
			OrderID:      r.get("order_id"),
			ItemSeq:      seq,
			ProductID:    r.get("product_id"),
			Price:        price,
			FreightValue: freight,
		})
		return nil
	})
	return out, err
}

func readPayments(ctx context.Context, path string) ([]models.Payment, error) {
	var out []models.Payment
	cols := []string{"order_id", "payment_type", "payment_installments", "payment_value"}

	err := readTable(path, cols, func(r row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seq, err := r.int("payment_sequential")
		if err != nil {
			return err
		}
		installments, err := r.int("payment_installments")
		if err != nil {
			return err
		}
		value, err := r.float("payment_value")
		if err != nil {
			return err
		}
		out = append(out, models.Payment{
			OrderID:      r.get("order_id"),
			Sequential:   seq,
			Type:         r.get("payment_type"),
			Installments: installments,
			Value:        value,
		})
		return nil
	})
	return out, err
}

func readReviews(ctx context.Context, path string) ([]models.Review, error) {
	var out []models.Review
	cols := []string{"order_id", "review_score"}

	err := readTable(path, cols, func(r row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		score, err := r.int("review_score")
		if err != nil {
			return err
		}
		out = append(out, models.Review{
			OrderID: r.get("order_id"),
			Score:   score,
			Comment: r.get("review_comment_message"),
		})
		return nil
	})
	return out, err
}

func readOrders(ctx context.Context, path string) ([]models.Order, error) {
	var out []models.Order
	cols := []string{
		"order_id", "customer_id",
		"order_purchase_timestamp", "order_approved_at",
		"order_delivered_customer_date", "order_estimated_delivery_date",
	}

	err := readTable(path, cols, func(r row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out = append(out, models.Order{
			ID:                  r.get("order_id"),
			CustomerID:          r.get("customer_id"),
			Status:              r.get("order_status"),
			PurchasedAt:         r.get("order_purchase_timestamp"),
			ApprovedAt:          r.get("order_approved_at"),
			DeliveredAt:         r.get("order_delivered_customer_date"),
			EstimatedDeliveryAt: r.get("order_estimated_delivery_date"),
		})
		return nil
	})
	return out, err
}

func readProducts(ctx context.Context, path string) ([]models.Product, error) {
	var out []models.Product
	cols := []string{"product_id", "product_category_name"}

	err := readTable(path, cols, func(r row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out = append(out, models.Product{
			ID:       r.get("product_id"),
			Category: r.get("product_category_name"),
		})
		return nil
	})
	return out, err
}

func readTranslation(ctx context.Context, path string) ([]models.CategoryTranslation, error) {
	var out []models.CategoryTranslation
	cols := []string{"product_category_name", "product_category_name_english"}

	err := readTable(path, cols, func(r row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out = append(out, models.CategoryTranslation{
			Category:        r.get("product_category_name"),
			CategoryEnglish: r.get("product_category_name_english"),
		})
		return nil
	})
	return out, err
}
