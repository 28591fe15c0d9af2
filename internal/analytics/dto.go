package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinesync/backend/pkg/enums"
)

// Metric selects which report sections to compute.
type Metric string

const (
	MetricAll     Metric = "all"
	MetricRevenue Metric = "revenue"
	MetricOrders  Metric = "orders"
	MetricItems   Metric = "items"
	MetricHours   Metric = "hours"
	MetricGrowth  Metric = "growth"
)

var validMetrics = []Metric{MetricAll, MetricRevenue, MetricOrders, MetricItems, MetricHours, MetricGrowth}

// ParseMetric validates a raw metric selector, defaulting empty to all.
func ParseMetric(value string) (Metric, bool) {
	if value == "" {
		return MetricAll, true
	}
	for _, candidate := range validMetrics {
		if string(candidate) == value {
			return candidate, true
		}
	}
	return "", false
}

// ValidPeriods are the supported lookback windows in days.
var ValidPeriods = []int{1, 7, 30, 90}

// RevenueSummary aggregates money over the window. Pending is always
// total minus paid.
type RevenueSummary struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
	Average decimal.Decimal `json:"average"`
}

// DailyBucket is one day's orders and revenue.
type DailyBucket struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// OrdersSummary counts orders over the window.
type OrdersSummary struct {
	Count    int                       `json:"count"`
	ByStatus map[enums.OrderStatus]int `json:"by_status"`
	Daily    []DailyBucket             `json:"daily"`
}

// ItemRanking is one menu item's popularity and revenue over the window.
type ItemRanking struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// HourBucket is one hour-of-day histogram cell. The histogram always has 24
// cells, zero-filled.
type HourBucket struct {
	Hour    int             `json:"hour"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// GrowthSummary compares the window against the immediately preceding window
// of equal length. Percentages are rounded to two decimals.
type GrowthSummary struct {
	RevenuePct decimal.Decimal `json:"revenue_pct"`
	OrdersPct  decimal.Decimal `json:"orders_pct"`
}

// Report is the aggregated analytics object. Sections not requested by the
// metric selector stay nil.
type Report struct {
	PeriodDays int             `json:"period_days"`
	Revenue    *RevenueSummary `json:"revenue,omitempty"`
	Orders     *OrdersSummary  `json:"orders,omitempty"`
	Items      []ItemRanking   `json:"items,omitempty"`
	Hours      []HourBucket    `json:"hours,omitempty"`
	Growth     *GrowthSummary  `json:"growth,omitempty"`
}
