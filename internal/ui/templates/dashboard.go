package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Olist Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6fa; color: #1f2430; }
header { background: #2d3250; color: #fff; padding: 1rem 2rem; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
.filters { display: flex; flex-wrap: wrap; gap: 1rem; align-items: flex-end; background: #fff; padding: 1rem; border-radius: 8px; }
.filters label { display: flex; flex-direction: column; font-size: 0.8rem; gap: 0.25rem; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 1rem; }
.card { background: #fff; border-radius: 8px; padding: 1rem; }
.card .value { font-size: 1.5rem; font-weight: 700; }
.modern-table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 8px; overflow: hidden; }
.modern-table th, .modern-table td { padding: 0.5rem 0.75rem; text-align: left; border-bottom: 1px solid #eceef3; }
.modern-table thead { background: #2d3250; color: #fff; }
</style>
</head>
<body data-signals="{period: 'all', start: '', end: '', minScore: 1, states: '', categories: '', overview: {}}">
<header><h1>Olist Sales Dashboard</h1></header>
<main>
<section class="filters">
<label>Period
<select data-bind-period>
<option value="all">All time</option>
<option value="last_week">Last week</option>
<option value="last_month">Last month</option>
<option value="last_quarter">Last quarter</option>
<option value="last_year">Last year</option>
<option value="custom">Custom</option>
</select>
</label>
<label>Start<input type="date" data-bind-start></label>
<label>End<input type="date" data-bind-end></label>
<label>Min review score<input type="number" min="1" max="5" data-bind-min-score></label>
<label>States<input type="text" placeholder="SP,RJ" data-bind-states></label>
<label>Categories<input type="text" placeholder="toys,auto" data-bind-categories></label>
<button data-on-click="@get('/sse/refresh-all?period='+$period+'&start='+$start+'&end='+$end+'&min_score='+$minScore+'&states='+$states+'&categories='+$categories)">Apply</button>
</section>
<section class="cards">
<div class="card"><div>Total sales</div><div class="value" data-text="'R$ ' + ($overview.total_sales ?? 0).toFixed(2)"></div></div>
<div class="card"><div>Orders</div><div class="value" data-text="$overview.order_count ?? 0"></div></div>
<div class="card"><div>Customers</div><div class="value" data-text="$overview.unique_customers ?? 0"></div></div>
<div class="card"><div>Avg review</div><div class="value" data-text="($overview.avg_review_score ?? 0).toFixed(2)"></div></div>
</section>
<section id="states-content" data-on-load="@get('/sse/refresh-all')">Loading sales by state...</section>
</main>
</body>
</html>`

// Dashboard renders the single-page shell. All data arrives through the
// datastar SSE endpoints after load, so the page itself is static.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}
