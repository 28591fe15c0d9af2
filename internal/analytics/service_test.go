package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
)

type stubAnalyticsRepo struct {
	current  []models.Order
	previous []models.Order
	calls    int
}

func (s *stubAnalyticsRepo) OrdersInWindow(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	s.calls++
	if s.calls == 1 {
		return s.current, nil
	}
	return s.previous, nil
}

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func paidOrder(total string, createdAt time.Time) models.Order {
	return models.Order{
		ID:            uuid.New(),
		Status:        enums.OrderStatusCompleted,
		PaymentStatus: enums.PaymentStatusPaid,
		TotalAmount:   amount(total),
		CreatedAt:     createdAt,
	}
}

func pendingOrder(total string, createdAt time.Time) models.Order {
	return models.Order{
		ID:            uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		TotalAmount:   amount(total),
		CreatedAt:     createdAt,
	}
}

func newAnalyticsService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestRevenueSummaryFormula(t *testing.T) {
	now := time.Now().UTC().Add(-time.Hour)
	repo := &stubAnalyticsRepo{current: []models.Order{
		paidOrder("200.00", now),
		paidOrder("200.00", now),
		pendingOrder("100.00", now),
	}}

	svc := newAnalyticsService(t, repo)
	report, err := svc.Report(context.Background(), 7, MetricRevenue)
	require.NoError(t, err)
	require.NotNil(t, report.Revenue)

	assert.True(t, report.Revenue.Total.Equal(amount("500.00")), "total %s", report.Revenue.Total)
	assert.True(t, report.Revenue.Paid.Equal(amount("400.00")))
	assert.True(t, report.Revenue.Pending.Equal(amount("100.00")))
	assert.True(t, report.Revenue.Average.Equal(amount("166.67")), "average %s", report.Revenue.Average)
}

func TestReportRejectsUnknownPeriod(t *testing.T) {
	svc := newAnalyticsService(t, &stubAnalyticsRepo{})
	_, err := svc.Report(context.Background(), 14, MetricAll)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCancelledOrdersExcluded(t *testing.T) {
	now := time.Now().UTC().Add(-time.Hour)
	cancelled := models.Order{
		ID:          uuid.New(),
		Status:      enums.OrderStatusCancelled,
		TotalAmount: amount("999.00"),
		CreatedAt:   now,
	}
	repo := &stubAnalyticsRepo{current: []models.Order{paidOrder("100.00", now), cancelled}}

	svc := newAnalyticsService(t, repo)
	report, err := svc.Report(context.Background(), 1, MetricAll)
	require.NoError(t, err)

	assert.True(t, report.Revenue.Total.Equal(amount("100.00")))
	assert.Equal(t, 1, report.Orders.Count)
}

func TestHourHistogramIsZeroFilled(t *testing.T) {
	now := time.Date(2026, 8, 31, 13, 30, 0, 0, time.UTC)
	repo := &stubAnalyticsRepo{current: []models.Order{paidOrder("50.00", now)}}

	svc := newAnalyticsService(t, repo)
	report, err := svc.Report(context.Background(), 7, MetricHours)
	require.NoError(t, err)

	require.Len(t, report.Hours, 24)
	for hour, bucket := range report.Hours {
		assert.Equal(t, hour, bucket.Hour)
		if hour == 13 {
			assert.Equal(t, 1, bucket.Orders)
			assert.True(t, bucket.Revenue.Equal(amount("50.00")))
		} else {
			assert.Zero(t, bucket.Orders)
			assert.True(t, bucket.Revenue.IsZero())
		}
	}
}

func TestItemRankingSortsByQuantity(t *testing.T) {
	now := time.Now().UTC().Add(-time.Hour)
	burgerID := uuid.New()
	friesID := uuid.New()

	order := models.Order{
		ID:            uuid.New(),
		Status:        enums.OrderStatusCompleted,
		PaymentStatus: enums.PaymentStatusPaid,
		TotalAmount:   amount("500.00"),
		CreatedAt:     now,
		Items: []models.OrderItem{
			{MenuItemID: burgerID, Name: "Burger", Quantity: 2, TotalPrice: amount("240.00")},
			{MenuItemID: friesID, Name: "Fries", Quantity: 5, TotalPrice: amount("260.00")},
		},
	}
	second := models.Order{
		ID:            uuid.New(),
		Status:        enums.OrderStatusCompleted,
		PaymentStatus: enums.PaymentStatusPaid,
		TotalAmount:   amount("120.00"),
		CreatedAt:     now,
		Items: []models.OrderItem{
			{MenuItemID: burgerID, Name: "Burger", Quantity: 1, TotalPrice: amount("120.00")},
		},
	}
	repo := &stubAnalyticsRepo{current: []models.Order{order, second}}

	svc := newAnalyticsService(t, repo)
	report, err := svc.Report(context.Background(), 7, MetricItems)
	require.NoError(t, err)

	require.Len(t, report.Items, 2)
	assert.Equal(t, friesID, report.Items[0].MenuItemID)
	assert.Equal(t, 5, report.Items[0].Quantity)
	assert.Equal(t, burgerID, report.Items[1].MenuItemID)
	assert.Equal(t, 3, report.Items[1].Quantity, "quantities aggregate across orders")
	assert.True(t, report.Items[1].Revenue.Equal(amount("360.00")))
}

func TestGrowthAgainstPrecedingWindow(t *testing.T) {
	now := time.Now().UTC().Add(-time.Hour)
	repo := &stubAnalyticsRepo{
		current:  []models.Order{paidOrder("300.00", now)},
		previous: []models.Order{paidOrder("200.00", now.AddDate(0, 0, -7))},
	}

	svc := newAnalyticsService(t, repo)
	report, err := svc.Report(context.Background(), 7, MetricGrowth)
	require.NoError(t, err)
	require.NotNil(t, report.Growth)

	assert.True(t, report.Growth.RevenuePct.Equal(amount("50.00")), "got %s", report.Growth.RevenuePct)
	assert.True(t, report.Growth.OrdersPct.IsZero())
}

func TestGrowthWithEmptyPrecedingWindow(t *testing.T) {
	now := time.Now().UTC().Add(-time.Hour)
	repo := &stubAnalyticsRepo{current: []models.Order{paidOrder("300.00", now)}}

	svc := newAnalyticsService(t, repo)
	report, err := svc.Report(context.Background(), 7, MetricGrowth)
	require.NoError(t, err)

	assert.True(t, report.Growth.RevenuePct.Equal(amount("100")))
	assert.True(t, report.Growth.OrdersPct.Equal(amount("100")))
}

func TestDailyBucketsZeroFilled(t *testing.T) {
	repo := &stubAnalyticsRepo{}
	svc := newAnalyticsService(t, repo)

	report, err := svc.Report(context.Background(), 7, MetricOrders)
	require.NoError(t, err)
	require.NotNil(t, report.Orders)
	assert.Len(t, report.Orders.Daily, 7)
	for _, bucket := range report.Orders.Daily {
		assert.Zero(t, bucket.Orders)
	}
}
