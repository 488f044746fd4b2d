package dataset

import (
	"strings"

	"olist-dashboard/internal/config"
)

// Sources is the fixed set of seven file locations making up one dataset.
// Its Key identifies the source configuration for caching purposes; file
// modification times deliberately play no part in it.
type Sources struct {
	Customers   string
	OrderItems  string
	Payments    string
	Reviews     string
	Orders      string
	Products    string
	Translation string
}

func SourcesFromConfig(d config.DataConfig) Sources {
	return Sources{
		Customers:   d.Path(d.CustomersFile),
		OrderItems:  d.Path(d.OrderItemsFile),
		Payments:    d.Path(d.PaymentsFile),
		Reviews:     d.Path(d.ReviewsFile),
		Orders:      d.Path(d.OrdersFile),
		Products:    d.Path(d.ProductsFile),
		Translation: d.Path(d.TranslationFile),
	}
}

func (s Sources) Key() string {
	return strings.Join([]string{
		s.Customers, s.OrderItems, s.Payments, s.Reviews,
		s.Orders, s.Products, s.Translation,
	}, "|")
}
