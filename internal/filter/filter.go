package filter

import (
	"fmt"
	"time"

	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/models"
)

// Preset names a derived date range computed relative to the newest purchase
// timestamp in the data, not the caller's wall clock: the dataset is static,
// so "last week" means the last week of recorded activity.
type Preset string

const (
	PresetAll         Preset = "all"
	PresetLastWeek    Preset = "last_week"
	PresetLastMonth   Preset = "last_month"
	PresetLastQuarter Preset = "last_quarter"
	PresetLastYear    Preset = "last_year"
	PresetCustom      Preset = "custom"
)

var presetDays = map[Preset]int{
	PresetLastWeek:    7,
	PresetLastMonth:   30,
	PresetLastQuarter: 90,
	PresetLastYear:    365,
}

// DateRange is an inclusive calendar-date interval. Only the date portion of
// purchase timestamps is compared against it.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Bounds are the minimum and maximum purchase dates present in the data.
type Bounds struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// BoundsOf scans the enriched table for its purchase-date extent. Rows with
// a null purchase timestamp are ignored.
func BoundsOf(facts []models.OrderItemFact) Bounds {
	var b Bounds
	for _, f := range facts {
		if f.PurchasedAt.IsZero() {
			continue
		}
		d := dateOf(f.PurchasedAt)
		if b.Min.IsZero() || d.Before(b.Min) {
			b.Min = d
		}
		if b.Max.IsZero() || d.After(b.Max) {
			b.Max = d
		}
	}
	return b
}

// Resolve turns a preset (or a custom start/end pair) into a concrete range.
// Custom ranges are clamped to the data bounds; a custom range whose start
// is after its end is rejected as INVALID_DATE_RANGE, never reordered.
func Resolve(preset Preset, start, end time.Time, b Bounds) (DateRange, error) {
	switch preset {
	case PresetAll, "":
		return DateRange{Start: b.Min, End: b.Max}, nil

	case PresetLastWeek, PresetLastMonth, PresetLastQuarter, PresetLastYear:
		days := presetDays[preset]
		return DateRange{Start: b.Max.AddDate(0, 0, -days), End: b.Max}, nil

	case PresetCustom:
		start, end = dateOf(start), dateOf(end)
		if start.After(end) {
			return DateRange{}, errors.InvalidDateRange(
				fmt.Sprintf("start date %s is after end date %s",
					start.Format(time.DateOnly), end.Format(time.DateOnly)))
		}
		if !b.Min.IsZero() && start.Before(b.Min) {
			start = b.Min
		}
		if !b.Max.IsZero() && end.After(b.Max) {
			end = b.Max
		}
		return DateRange{Start: start, End: end}, nil

	default:
		return DateRange{}, errors.Validation(fmt.Sprintf("unknown period %q", preset))
	}
}

// Params is one full set of filter predicates. All active predicates are
// conjunctive. Empty state or category sets mean "no restriction", not
// "match nothing".
type Params struct {
	Range          DateRange
	MinReviewScore int
	PriceMin       float64
	PriceMax       float64
	States         []string
	Categories     []string
}

// Apply evaluates the predicates against the enriched table, producing a new
// filtered view. The input is never mutated; zero surviving rows is a normal
// empty result.
func Apply(facts []models.OrderItemFact, p Params) []models.OrderItemFact {
	states := toSet(p.States)
	categories := toSet(p.Categories)

	out := make([]models.OrderItemFact, 0, len(facts))
	for _, f := range facts {
		if !matchesDate(f, p.Range) {
			continue
		}
		// A null score fails every floor, even the permissive minimum of 1.
		if f.ReviewScore == nil || *f.ReviewScore < p.MinReviewScore {
			continue
		}
		if f.Price < p.PriceMin || f.Price > p.PriceMax {
			continue
		}
		if states != nil && !states[f.CustomerState] {
			continue
		}
		if categories != nil && !categories[f.CategoryEnglish] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// matchesDate compares only the calendar date of the purchase timestamp,
// inclusively on both ends. A null purchase timestamp matches no range.
func matchesDate(f models.OrderItemFact, r DateRange) bool {
	if f.PurchasedAt.IsZero() {
		return false
	}
	d := dateOf(f.PurchasedAt)
	return !d.Before(r.Start) && !d.After(r.End)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
