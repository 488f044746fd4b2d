package models

// Source records mirror the seven Olist CSV tables. Column names in the CSV
// headers are the external contract; the loader maps them onto these fields
// verbatim, leaving timestamps as raw strings until enrichment parses them.

type Customer struct {
	ID        string // customer_id
	UniqueID  string // customer_unique_id
	ZipPrefix string // customer_zip_code_prefix
	City      string // customer_city
	State     string // customer_state
}

type OrderItem struct {
	OrderID      string  // order_id
	ItemSeq      int     // order_item_id
	ProductID    string  // product_id
	Price        float64 // price, NaN when the cell is empty
	FreightValue float64 // freight_value, NaN when the cell is empty
}

type Payment struct {
	OrderID      string  // order_id
	Sequential   int     // payment_sequential
	Type         string  // payment_type
	Installments int     // payment_installments
	Value        float64 // payment_value, NaN when the cell is empty
}

type Review struct {
	OrderID string // order_id
	Score   int    // review_score, 1-5
	Comment string // review_comment_message, may be empty
}

type Order struct {
	ID         string // order_id
	CustomerID string // customer_id
	Status     string // order_status

	// Raw timestamp strings, "2006-01-02 15:04:05" when present.
	PurchasedAt         string // order_purchase_timestamp
	ApprovedAt          string // order_approved_at
	DeliveredAt         string // order_delivered_customer_date
	EstimatedDeliveryAt string // order_estimated_delivery_date
}

type Product struct {
	ID       string // product_id
	Category string // product_category_name (local language)
}

type CategoryTranslation struct {
	Category        string // product_category_name
	CategoryEnglish string // product_category_name_english
}
