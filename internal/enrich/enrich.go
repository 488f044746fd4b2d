package enrich

import (
	"math"
	"time"

	"olist-dashboard/internal/dataset"
	"olist-dashboard/internal/models"
)

// timestampLayout is the raw form of the four order timestamp columns.
const timestampLayout = "2006-01-02 15:04:05"

// Enrich joins the seven source tables into the denormalized analytical
// table, one row per order item (times the payments fan-out), following the
// declared join plan. It is a pure function: the same tables produce an
// identical slice every run, and no input is mutated.
func Enrich(t *dataset.Tables) []models.OrderItemFact {
	// Step 1: products gain their English category name.
	translationIdx := indexBy(t.Translation, func(tr models.CategoryTranslation) string { return tr.Category })
	productDims := leftJoin(t.Products, translationIdx,
		func(p models.Product) string { return p.Category },
		func(p models.Product, tr models.CategoryTranslation, ok bool) productDim {
			d := productDim{id: p.ID, category: p.Category}
			if ok {
				d.categoryEnglish = tr.CategoryEnglish
			}
			return d
		})
	productIdx := indexBy(productDims, func(d productDim) string { return d.id })

	// Step 2: order items pick up product and category fields.
	facts := leftJoin(t.OrderItems, productIdx,
		func(i models.OrderItem) string { return i.ProductID },
		func(i models.OrderItem, d productDim, ok bool) models.OrderItemFact {
			f := models.OrderItemFact{
				OrderID:      i.OrderID,
				ItemSeq:      i.ItemSeq,
				ProductID:    i.ProductID,
				Price:        i.Price,
				FreightValue: i.FreightValue,
			}
			if ok {
				f.Category = d.category
				f.CategoryEnglish = d.categoryEnglish
			}
			return f
		})

	// Step 3: orders gain their customer.
	customerIdx := indexBy(t.Customers, func(c models.Customer) string { return c.ID })
	orderDims := leftJoin(t.Orders, customerIdx,
		func(o models.Order) string { return o.CustomerID },
		func(o models.Order, c models.Customer, ok bool) orderDim {
			d := orderDim{order: o}
			if ok {
				d.customer = c
			}
			return d
		})
	orderIdx := indexBy(orderDims, func(d orderDim) string { return d.order.ID })

	// Step 4: items pick up order and customer fields; the raw timestamp
	// strings are parsed to naive instants here, unparseable values staying
	// at the zero time.
	facts = leftJoin(facts, orderIdx,
		func(f models.OrderItemFact) string { return f.OrderID },
		func(f models.OrderItemFact, d orderDim, ok bool) models.OrderItemFact {
			if !ok {
				return f
			}
			f.OrderStatus = d.order.Status
			f.PurchasedAt = parseInstant(d.order.PurchasedAt)
			f.ApprovedAt = parseInstant(d.order.ApprovedAt)
			f.DeliveredAt = parseInstant(d.order.DeliveredAt)
			f.EstimatedDeliveryAt = parseInstant(d.order.EstimatedDeliveryAt)
			f.CustomerID = d.customer.ID
			f.CustomerUniqueID = d.customer.UniqueID
			f.CustomerCity = d.customer.City
			f.CustomerState = d.customer.State
			return f
		})

	// Step 5: payments, the only one-to-many step. An order with several
	// payment records multiplies its item rows, exactly as a sequential
	// merge of the source tables would.
	paymentsByOrder := groupBy(t.Payments, func(p models.Payment) string { return p.OrderID })
	facts = leftJoinMany(facts, paymentsByOrder,
		func(f models.OrderItemFact) string { return f.OrderID },
		func(f models.OrderItemFact, p models.Payment, ok bool) models.OrderItemFact {
			if !ok {
				f.PaymentValue = math.NaN()
				return f
			}
			f.PaymentType = p.Type
			f.PaymentInstallments = p.Installments
			f.PaymentValue = p.Value
			return f
		})

	// Step 6: reviews, score and comment only. Deduplicated to the first
	// review per order so the step stays many-to-one.
	reviewIdx := indexBy(t.Reviews, func(r models.Review) string { return r.OrderID })
	facts = leftJoin(facts, reviewIdx,
		func(f models.OrderItemFact) string { return f.OrderID },
		func(f models.OrderItemFact, r models.Review, ok bool) models.OrderItemFact {
			if ok {
				score := r.Score
				f.ReviewScore = &score
				f.ReviewComment = r.Comment
			}
			return f
		})

	for i := range facts {
		derive(&facts[i])
	}
	return facts
}

type productDim struct {
	id              string
	category        string
	categoryEnglish string
}

type orderDim struct {
	order    models.Order
	customer models.Customer
}

// derive computes the delay columns and fills missing numerics with 0 so
// downstream sums are not skewed. The fill runs only now, after all joins,
// so join behavior never depends on filled-in values.
func derive(f *models.OrderItemFact) {
	if days, ok := wholeDays(f.EstimatedDeliveryAt, f.DeliveredAt); ok {
		d := days
		f.DeliveryDelayDays = &d
		if days > 0 {
			f.Late = models.LateYes
		} else {
			f.Late = models.LateNo
		}
	} else {
		f.Late = models.LateUnknown
	}

	if days, ok := wholeDays(f.PurchasedAt, f.DeliveredAt); ok {
		d := days
		f.DeliveryTimeDays = &d
	}

	f.Price = fillZero(f.Price)
	f.FreightValue = fillZero(f.FreightValue)
	f.PaymentValue = fillZero(f.PaymentValue)
}

// wholeDays reports the signed whole-day difference to - from, truncated
// toward negative infinity (floor), so a delivery 12 hours early counts as
// -1 day and never flips a boundary row to late. Returns ok=false when
// either instant is missing.
func wholeDays(from, to time.Time) (int, bool) {
	if from.IsZero() || to.IsZero() {
		return 0, false
	}
	return int(math.Floor(to.Sub(from).Hours() / 24)), true
}

func parseInstant(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func fillZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
