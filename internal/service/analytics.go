package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"mers/internal/domain"
)

const topProductsLimit = 5

type AnalyticsService struct {
	orders OrderStore
	runs   SyncRunStore
	now    func() time.Time
}

func NewAnalyticsService(orders OrderStore, runs SyncRunStore) *AnalyticsService {
	return &AnalyticsService{
		orders: orders,
		runs:   runs,
		now:    time.Now,
	}
}

// Revenue rolls up paid orders created in the trailing window of days.
func (s *AnalyticsService) Revenue(ctx context.Context, storeID string, days int) (*domain.RevenueReport, error) {
	since := s.now().AddDate(0, 0, -days)

	orders, err := s.orders.ListPaidSince(ctx, storeID, since)
	if err != nil {
		return nil, fmt.Errorf("list paid orders: %w", err)
	}

	lastSync, err := s.runs.LastCompletedAt(ctx, storeID, domain.SyncOrders)
	if err != nil {
		return nil, fmt.Errorf("last orders sync: %w", err)
	}

	report := &domain.RevenueReport{
		Days:        days,
		Revenue:     decimal.Zero,
		AOV:         decimal.Zero,
		TopProducts: TopProducts(orders, topProductsLimit),
		LastSync:    lastSync,
	}

	for i := range orders {
		if !orders[i].IsPaid() {
			continue
		}
		report.Revenue = report.Revenue.Add(orders[i].TotalPrice)
		report.Orders++
	}
	if report.Orders > 0 {
		report.AOV = report.Revenue.Div(decimal.NewFromInt(int64(report.Orders)))
	}

	return report, nil
}

// TopProducts sums price*quantity per line-item title and returns the top n by
// revenue. Ties keep first-seen order.
func TopProducts(orders []domain.Order, n int) []domain.ProductRevenue {
	index := make(map[string]int)
	var totals []domain.ProductRevenue

	for i := range orders {
		if !orders[i].IsPaid() {
			continue
		}
		for _, li := range orders[i].LineItems {
			title := li.Title
			if title == "" {
				title = li.Name
			}
			if title == "" {
				title = "Unknown"
			}
			qty := li.Quantity
			if qty == 0 {
				qty = 1
			}
			amount := li.Price.Mul(decimal.NewFromInt(int64(qty)))

			if j, ok := index[title]; ok {
				totals[j].Revenue = totals[j].Revenue.Add(amount)
				continue
			}
			index[title] = len(totals)
			totals = append(totals, domain.ProductRevenue{Title: title, Revenue: amount})
		}
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Revenue.GreaterThan(totals[b].Revenue)
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	if totals == nil {
		totals = []domain.ProductRevenue{}
	}
	return totals
}

// Summary compares today with yesterday and totals the month to date. Days
// are calendar days in the server's local time zone.
func (s *AnalyticsService) Summary(ctx context.Context, storeID string) (*domain.DaySummary, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	since := monthStart
	if yesterday.Before(since) {
		since = yesterday
	}

	orders, err := s.orders.ListSince(ctx, storeID, since)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	sum := &domain.DaySummary{
		TodayRevenue:     decimal.Zero,
		YesterdayRevenue: decimal.Zero,
		MonthRevenue:     decimal.Zero,
	}
	for i := range orders {
		o := &orders[i]
		switch {
		case !o.CreatedAt.Before(today):
			sum.TodayRevenue = sum.TodayRevenue.Add(o.TotalPrice)
			sum.TodayOrders++
		case !o.CreatedAt.Before(yesterday):
			sum.YesterdayRevenue = sum.YesterdayRevenue.Add(o.TotalPrice)
			sum.YesterdayOrders++
		}
		if !o.CreatedAt.Before(monthStart) {
			sum.MonthRevenue = sum.MonthRevenue.Add(o.TotalPrice)
		}
	}

	sum.RevenueChange = percentChange(sum.TodayRevenue, sum.YesterdayRevenue)
	sum.OrdersChange = percentChange(decimal.NewFromInt(int64(sum.TodayOrders)), decimal.NewFromInt(int64(sum.YesterdayOrders)))
	return sum, nil
}

// percentChange is 0 when the baseline is 0.
func percentChange(current, baseline decimal.Decimal) decimal.Decimal {
	if baseline.IsZero() {
		return decimal.Zero
	}
	return current.Sub(baseline).Div(baseline).Mul(decimal.NewFromInt(100)).Round(0)
}
