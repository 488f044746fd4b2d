package models

import "time"

// LateStatus classifies an order item's delivery against the estimate.
// Undelivered orders carry no delay, so they are reported as unknown rather
// than silently counted as on time.
type LateStatus string

const (
	LateYes     LateStatus = "yes"
	LateNo      LateStatus = "no"
	LateUnknown LateStatus = "unknown"
)

// OrderItemFact is one row of the enriched table: an order item joined with
// its product, category translation, order, customer, payment and review.
// Every join is left-outer, so unmatched sides leave zero values behind and
// optional fields are pointers that marshal to JSON null.
type OrderItemFact struct {
	OrderID      string  `json:"order_id"`
	ItemSeq      int     `json:"order_item_id"`
	ProductID    string  `json:"product_id"`
	Price        float64 `json:"price"`
	FreightValue float64 `json:"freight_value"`

	Category        string `json:"product_category_name,omitempty"`
	CategoryEnglish string `json:"product_category_name_english,omitempty"`

	CustomerID       string `json:"customer_id,omitempty"`
	CustomerUniqueID string `json:"customer_unique_id,omitempty"`
	CustomerCity     string `json:"customer_city,omitempty"`
	CustomerState    string `json:"customer_state,omitempty"`

	OrderStatus string `json:"order_status,omitempty"`

	// Timezone-naive instants; the zero time means the source value was
	// missing or unparseable.
	PurchasedAt         time.Time `json:"order_purchase_timestamp"`
	ApprovedAt          time.Time `json:"order_approved_at"`
	DeliveredAt         time.Time `json:"order_delivered_customer_date"`
	EstimatedDeliveryAt time.Time `json:"order_estimated_delivery_date"`

	PaymentType         string  `json:"payment_type,omitempty"`
	PaymentInstallments int     `json:"payment_installments"`
	PaymentValue        float64 `json:"payment_value"`

	ReviewScore   *int   `json:"review_score"`
	ReviewComment string `json:"review_comment_message,omitempty"`

	// Derived during enrichment.
	DeliveryDelayDays *int       `json:"delivery_delay"`
	DeliveryTimeDays  *int       `json:"delivery_time"`
	Late              LateStatus `json:"is_late"`
}
