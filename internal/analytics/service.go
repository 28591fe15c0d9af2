package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Service computes the analytics report. Every request recomputes from the
// rows in the window; nothing is cached.
type Service interface {
	Report(ctx context.Context, periodDays int, metric Metric) (*Report, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds an analytics service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Report(ctx context.Context, periodDays int, metric Metric) (*Report, error) {
	if !validPeriod(periodDays) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period must be one of 1, 7, 30, 90")
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -periodDays)

	rows, err := s.repo.OrdersInWindow(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders for window")
	}
	// Cancelled orders are excluded from every aggregate.
	rows = dropCancelled(rows)

	report := &Report{PeriodDays: periodDays}

	if metric == MetricAll || metric == MetricRevenue {
		report.Revenue = revenueSummary(rows)
	}
	if metric == MetricAll || metric == MetricOrders {
		report.Orders = ordersSummary(rows, from, periodDays)
	}
	if metric == MetricAll || metric == MetricItems {
		report.Items = itemRanking(rows)
	}
	if metric == MetricAll || metric == MetricHours {
		report.Hours = hourHistogram(rows)
	}
	if metric == MetricAll || metric == MetricGrowth {
		prevRows, err := s.repo.OrdersInWindow(ctx, from.AddDate(0, 0, -periodDays), from)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders for preceding window")
		}
		report.Growth = growthSummary(rows, dropCancelled(prevRows))
	}

	return report, nil
}

func validPeriod(days int) bool {
	for _, valid := range ValidPeriods {
		if days == valid {
			return true
		}
	}
	return false
}

func dropCancelled(rows []models.Order) []models.Order {
	out := rows[:0]
	for _, row := range rows {
		if row.Status != enums.OrderStatusCancelled {
			out = append(out, row)
		}
	}
	return out
}

func revenueSummary(rows []models.Order) *RevenueSummary {
	total := decimal.Zero
	paid := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.TotalAmount)
		if row.PaymentStatus == enums.PaymentStatusPaid {
			paid = paid.Add(row.TotalAmount)
		}
	}

	average := decimal.Zero
	if len(rows) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
	}

	return &RevenueSummary{
		Total:   total,
		Paid:    paid,
		Pending: total.Sub(paid),
		Average: average,
	}
}

func ordersSummary(rows []models.Order, from time.Time, periodDays int) *OrdersSummary {
	byStatus := make(map[enums.OrderStatus]int)
	byDay := make(map[string]*DailyBucket)

	// Zero-fill every day in the window.
	for i := 0; i < periodDays; i++ {
		date := from.AddDate(0, 0, i).Format("2006-01-02")
		byDay[date] = &DailyBucket{Date: date, Revenue: decimal.Zero}
	}

	for _, row := range rows {
		byStatus[row.Status]++
		date := row.CreatedAt.UTC().Format("2006-01-02")
		bucket, ok := byDay[date]
		if !ok {
			bucket = &DailyBucket{Date: date, Revenue: decimal.Zero}
			byDay[date] = bucket
		}
		bucket.Orders++
		bucket.Revenue = bucket.Revenue.Add(row.TotalAmount)
	}

	daily := make([]DailyBucket, 0, len(byDay))
	for _, bucket := range byDay {
		daily = append(daily, *bucket)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })

	return &OrdersSummary{Count: len(rows), ByStatus: byStatus, Daily: daily}
}

func itemRanking(rows []models.Order) []ItemRanking {
	byItem := make(map[uuid.UUID]*ItemRanking)
	for _, row := range rows {
		for _, item := range row.Items {
			entry, ok := byItem[item.MenuItemID]
			if !ok {
				entry = &ItemRanking{MenuItemID: item.MenuItemID, Name: item.Name, Revenue: decimal.Zero}
				byItem[item.MenuItemID] = entry
			}
			entry.Quantity += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.TotalPrice)
		}
	}

	ranking := make([]ItemRanking, 0, len(byItem))
	for _, entry := range byItem {
		ranking = append(ranking, *entry)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Quantity != ranking[j].Quantity {
			return ranking[i].Quantity > ranking[j].Quantity
		}
		return ranking[i].Revenue.GreaterThan(ranking[j].Revenue)
	})
	return ranking
}

func hourHistogram(rows []models.Order) []HourBucket {
	buckets := make([]HourBucket, 24)
	for hour := range buckets {
		buckets[hour] = HourBucket{Hour: hour, Revenue: decimal.Zero}
	}
	for _, row := range rows {
		hour := row.CreatedAt.UTC().Hour()
		buckets[hour].Orders++
		buckets[hour].Revenue = buckets[hour].Revenue.Add(row.TotalAmount)
	}
	return buckets
}

func growthSummary(current, previous []models.Order) *GrowthSummary {
	currentRevenue := sumRevenue(current)
	previousRevenue := sumRevenue(previous)

	return &GrowthSummary{
		RevenuePct: growthPct(currentRevenue, previousRevenue),
		OrdersPct: growthPct(
			decimal.NewFromInt(int64(len(current))),
			decimal.NewFromInt(int64(len(previous))),
		),
	}
}

func sumRevenue(rows []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.TotalAmount)
	}
	return total
}

// growthPct returns (current-previous)/previous as a percentage. An empty
// preceding window reports 100% growth when anything happened, 0% otherwise.
func growthPct(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}
