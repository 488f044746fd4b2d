package summary

import (
	"cmp"
	"slices"

	"olist-dashboard/internal/models"
)

// Summaries are plain reductions over a filtered view of the enriched table.
// They exist for the presentation layer; nothing here feeds back into the
// pipeline. Every function takes the filtered rows and returns fresh slices.

type Overview struct {
	TotalSales      float64 `json:"total_sales"`
	OrderCount      int     `json:"order_count"`
	UniqueCustomers int     `json:"unique_customers"`
	AvgReviewScore  float64 `json:"avg_review_score"`
	RowCount        int     `json:"row_count"`
}

type StateSales struct {
	State string  `json:"state"`
	Sales float64 `json:"sales"`
}

type CategorySales struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
}

type MonthlyPoint struct {
	Month           string  `json:"month"`
	Sales           float64 `json:"sales"`
	Orders          int     `json:"orders"`
	AvgPayment      float64 `json:"avg_payment"`
	AvgReviewScore  float64 `json:"avg_review_score"`
	AvgDeliveryDays float64 `json:"avg_delivery_days"`
}

type StateLogistics struct {
	State           string  `json:"state"`
	LatePct         float64 `json:"late_pct"`
	AvgDeliveryDays float64 `json:"avg_delivery_days"`
}

type Logistics struct {
	AvgDelayDays    float64          `json:"avg_delay_days"`
	AvgDeliveryDays float64          `json:"avg_delivery_days"`
	LatePct         float64          `json:"late_pct"`
	UnknownCount    int              `json:"unknown_count"`
	States          []StateLogistics `json:"states"`
}

type PaymentTypeStats struct {
	Type  string  `json:"type"`
	Total float64 `json:"total"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

type ScoreBucket struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

type CategoryScore struct {
	Category string  `json:"category"`
	AvgScore float64 `json:"avg_score"`
}

type Reviews struct {
	Distribution []ScoreBucket   `json:"distribution"`
	ByCategory   []CategoryScore `json:"by_category"`
}

type ProductStats struct {
	ProductID string  `json:"product_id"`
	Category  string  `json:"category"`
	AvgPrice  float64 `json:"avg_price"`
	SaleCount int     `json:"sale_count"`
}

func ComputeOverview(facts []models.OrderItemFact) Overview {
	orders := make(map[string]struct{})
	customers := make(map[string]struct{})

	var total float64
	var scoreSum, scoreCount int
	for _, f := range facts {
		total += f.Price
		orders[f.OrderID] = struct{}{}
		if f.CustomerUniqueID != "" {
			customers[f.CustomerUniqueID] = struct{}{}
		}
		if f.ReviewScore != nil {
			scoreSum += *f.ReviewScore
			scoreCount++
		}
	}

	o := Overview{
		TotalSales:      total,
		OrderCount:      len(orders),
		UniqueCustomers: len(customers),
		RowCount:        len(facts),
	}
	if scoreCount > 0 {
		o.AvgReviewScore = float64(scoreSum) / float64(scoreCount)
	}
	return o
}

func SalesByState(facts []models.OrderItemFact) []StateSales {
	groups := make(map[string]float64)
	for _, f := range facts {
		if f.CustomerState == "" {
			continue
		}
		groups[f.CustomerState] += f.Price
	}

	result := make([]StateSales, 0, len(groups))
	for state, sales := range groups {
		result = append(result, StateSales{State: state, Sales: sales})
	}
	slices.SortFunc(result, func(a, b StateSales) int {
		if c := cmp.Compare(b.Sales, a.Sales); c != 0 {
			return c
		}
		return cmp.Compare(a.State, b.State)
	})
	return result
}

func SalesByCategory(facts []models.OrderItemFact) []CategorySales {
	groups := make(map[string]float64)
	for _, f := range facts {
		if f.CategoryEnglish == "" {
			continue
		}
		groups[f.CategoryEnglish] += f.Price
	}

	result := make([]CategorySales, 0, len(groups))
	for category, sales := range groups {
		result = append(result, CategorySales{Category: category, Sales: sales})
	}
	slices.SortFunc(result, func(a, b CategorySales) int {
		if c := cmp.Compare(b.Sales, a.Sales); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return result
}

func MonthlySales(facts []models.OrderItemFact) []MonthlyPoint {
	type bucket struct {
		sales       float64
		orders      map[string]struct{}
		paySum      float64
		payCount    int
		scoreSum    int
		scoreCount  int
		deliverySum int
		deliveryN   int
	}

	groups := make(map[string]*bucket)
	for _, f := range facts {
		if f.PurchasedAt.IsZero() {
			continue
		}
		month := f.PurchasedAt.Format("2006-01")
		b := groups[month]
		if b == nil {
			b = &bucket{orders: make(map[string]struct{})}
			groups[month] = b
		}
		b.sales += f.Price
		b.orders[f.OrderID] = struct{}{}
		b.paySum += f.PaymentValue
		b.payCount++
		if f.ReviewScore != nil {
			b.scoreSum += *f.ReviewScore
			b.scoreCount++
		}
		if f.DeliveryTimeDays != nil {
			b.deliverySum += *f.DeliveryTimeDays
			b.deliveryN++
		}
	}

	result := make([]MonthlyPoint, 0, len(groups))
	for month, b := range groups {
		p := MonthlyPoint{
			Month:  month,
			Sales:  b.sales,
			Orders: len(b.orders),
		}
		if b.payCount > 0 {
			p.AvgPayment = b.paySum / float64(b.payCount)
		}
		if b.scoreCount > 0 {
			p.AvgReviewScore = float64(b.scoreSum) / float64(b.scoreCount)
		}
		if b.deliveryN > 0 {
			p.AvgDeliveryDays = float64(b.deliverySum) / float64(b.deliveryN)
		}
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b MonthlyPoint) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return result
}

func ComputeLogistics(facts []models.OrderItemFact) Logistics {
	type stateBucket struct {
		late        int
		total       int
		deliverySum int
		deliveryN   int
	}

	var delaySum, delayN, deliverySum, deliveryN, late, unknown int
	states := make(map[string]*stateBucket)

	for _, f := range facts {
		if f.DeliveryDelayDays != nil {
			delaySum += *f.DeliveryDelayDays
			delayN++
		}
		if f.DeliveryTimeDays != nil {
			deliverySum += *f.DeliveryTimeDays
			deliveryN++
		}
		switch f.Late {
		case models.LateYes:
			late++
		case models.LateUnknown:
			unknown++
		}

		if f.CustomerState == "" {
			continue
		}
		b := states[f.CustomerState]
		if b == nil {
			b = &stateBucket{}
			states[f.CustomerState] = b
		}
		b.total++
		if f.Late == models.LateYes {
			b.late++
		}
		if f.DeliveryTimeDays != nil {
			b.deliverySum += *f.DeliveryTimeDays
			b.deliveryN++
		}
	}

	l := Logistics{UnknownCount: unknown, States: make([]StateLogistics, 0, len(states))}
	if delayN > 0 {
		l.AvgDelayDays = float64(delaySum) / float64(delayN)
	}
	if deliveryN > 0 {
		l.AvgDeliveryDays = float64(deliverySum) / float64(deliveryN)
	}
	if len(facts) > 0 {
		l.LatePct = float64(late) / float64(len(facts)) * 100
	}

	for state, b := range states {
		s := StateLogistics{State: state}
		if b.total > 0 {
			s.LatePct = float64(b.late) / float64(b.total) * 100
		}
		if b.deliveryN > 0 {
			s.AvgDeliveryDays = float64(b.deliverySum) / float64(b.deliveryN)
		}
		l.States = append(l.States, s)
	}
	slices.SortFunc(l.States, func(a, b StateLogistics) int {
		if c := cmp.Compare(b.LatePct, a.LatePct); c != 0 {
			return c
		}
		return cmp.Compare(a.State, b.State)
	})
	return l
}

func PaymentTypes(facts []models.OrderItemFact) []PaymentTypeStats {
	type bucket struct {
		total float64
		count int
	}

	groups := make(map[string]*bucket)
	for _, f := range facts {
		if f.PaymentType == "" {
			continue
		}
		b := groups[f.PaymentType]
		if b == nil {
			b = &bucket{}
			groups[f.PaymentType] = b
		}
		b.total += f.PaymentValue
		b.count++
	}

	result := make([]PaymentTypeStats, 0, len(groups))
	for paymentType, b := range groups {
		s := PaymentTypeStats{Type: paymentType, Total: b.total, Count: b.count}
		if b.count > 0 {
			s.Avg = b.total / float64(b.count)
		}
		result = append(result, s)
	}
	slices.SortFunc(result, func(a, b PaymentTypeStats) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return result
}

func ComputeReviews(facts []models.OrderItemFact) Reviews {
	counts := make(map[int]int)
	type catBucket struct {
		sum   int
		count int
	}
	categories := make(map[string]*catBucket)

	for _, f := range facts {
		if f.ReviewScore == nil {
			continue
		}
		counts[*f.ReviewScore]++
		if f.CategoryEnglish == "" {
			continue
		}
		b := categories[f.CategoryEnglish]
		if b == nil {
			b = &catBucket{}
			categories[f.CategoryEnglish] = b
		}
		b.sum += *f.ReviewScore
		b.count++
	}

	r := Reviews{Distribution: make([]ScoreBucket, 0, 5)}
	for s := 1; s <= 5; s++ {
		r.Distribution = append(r.Distribution, ScoreBucket{Score: s, Count: counts[s]})
	}

	r.ByCategory = make([]CategoryScore, 0, len(categories))
	for category, b := range categories {
		r.ByCategory = append(r.ByCategory, CategoryScore{
			Category: category,
			AvgScore: float64(b.sum) / float64(b.count),
		})
	}
	slices.SortFunc(r.ByCategory, func(a, b CategoryScore) int {
		if c := cmp.Compare(b.AvgScore, a.AvgScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return r
}

func TopProducts(facts []models.OrderItemFact, limit int) []ProductStats {
	type bucket struct {
		category string
		priceSum float64
		count    int
	}

	groups := make(map[string]*bucket)
	for _, f := range facts {
		b := groups[f.ProductID]
		if b == nil {
			b = &bucket{category: f.CategoryEnglish}
			groups[f.ProductID] = b
		}
		b.priceSum += f.Price
		b.count++
	}

	result := make([]ProductStats, 0, len(groups))
	for productID, b := range groups {
		result = append(result, ProductStats{
			ProductID: productID,
			Category:  b.category,
			AvgPrice:  b.priceSum / float64(b.count),
			SaleCount: b.count,
		})
	}
	slices.SortFunc(result, func(a, b ProductStats) int {
		if c := cmp.Compare(b.SaleCount, a.SaleCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
