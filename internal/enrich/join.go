package enrich

import "slices"

type JoinKind string

const LeftOuter JoinKind = "left_outer"

// Cardinality states the expected match multiplicity of a join step. Every
// step in the plan is many-to-one except payments, which legitimately carries
// several records per order (installment rows) and therefore fans out the
// driving table.
type Cardinality string

const (
	ManyToOne Cardinality = "many_to_one"
	OneToMany Cardinality = "one_to_many"
)

// JoinStep describes one step of the enrichment join plan.
type JoinStep struct {
	Left        string
	LeftKey     string
	Right       string
	RightKey    string
	Kind        JoinKind
	Cardinality Cardinality
}

var plan = []JoinStep{
	{"products", "product_category_name", "category_translation", "product_category_name", LeftOuter, ManyToOne},
	{"order_items", "product_id", "products+translation", "product_id", LeftOuter, ManyToOne},
	{"orders", "customer_id", "customers", "customer_id", LeftOuter, ManyToOne},
	{"order_items", "order_id", "orders+customers", "order_id", LeftOuter, ManyToOne},
	{"order_items", "order_id", "payments", "order_id", LeftOuter, OneToMany},
	{"order_items", "order_id", "reviews", "order_id", LeftOuter, ManyToOne},
}

// Plan returns the join plan Enrich executes, in execution order. It is part
// of the enrichment contract: tests pin join order and cardinality against it.
func Plan() []JoinStep {
	return slices.Clone(plan)
}

// indexBy builds a single-match lookup for a many-to-one join. When the right
// table holds duplicate keys the first record wins, which keeps the join from
// fanning out and keeps the output order-independent of map iteration.
func indexBy[R any, K comparable](rows []R, key func(R) K) map[K]R {
	index := make(map[K]R, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := index[k]; !ok {
			index[k] = r
		}
	}
	return index
}

// groupBy builds a multi-match lookup for a one-to-many join, preserving the
// right table's record order within each key.
func groupBy[R any, K comparable](rows []R, key func(R) K) map[K][]R {
	groups := make(map[K][]R)
	for _, r := range rows {
		groups[key(r)] = append(groups[key(r)], r)
	}
	return groups
}

// leftJoin is the general left-outer primitive for many-to-one steps: every
// left row produces exactly one output row; merge receives ok=false when the
// right side has no match.
func leftJoin[L, R, O any, K comparable](left []L, right map[K]R, key func(L) K, merge func(L, R, bool) O) []O {
	out := make([]O, 0, len(left))
	for _, l := range left {
		r, ok := right[key(l)]
		out = append(out, merge(l, r, ok))
	}
	return out
}

// leftJoinMany is the left-outer primitive for one-to-many steps: a left row
// produces one output row per match, or a single unmatched row when the right
// side is empty. This is where the payments fan-out happens.
func leftJoinMany[L, R, O any, K comparable](left []L, right map[K][]R, key func(L) K, merge func(L, R, bool) O) []O {
	out := make([]O, 0, len(left))
	for _, l := range left {
		matches := right[key(l)]
		if len(matches) == 0 {
			var zero R
			out = append(out, merge(l, zero, false))
			continue
		}
		for _, r := range matches {
			out = append(out, merge(l, r, true))
		}
	}
	return out
}
