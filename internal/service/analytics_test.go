package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mers/internal/domain"
	"mers/internal/service/mocks"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	orders *mocks.MockOrderStore
	runs   *mocks.MockSyncRunStore

	service *AnalyticsService
	now     time.Time
}

func (s *AnalyticsServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.orders = mocks.NewMockOrderStore(s.ctrl)
	s.runs = mocks.NewMockSyncRunStore(s.ctrl)

	s.now = time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)
	s.service = NewAnalyticsService(s.orders, s.runs)
	s.service.now = func() time.Time { return s.now }
}

func (s *AnalyticsServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}

func paidOrder(total string, items ...domain.LineItem) domain.Order {
	return domain.Order{
		FinancialStatus: domain.FinancialStatusPaid,
		TotalPrice:      decimal.RequireFromString(total),
		LineItems:       items,
	}
}

func item(title, price string, qty int) domain.LineItem {
	return domain.LineItem{Title: title, Price: decimal.RequireFromString(price), Quantity: qty}
}

func (s *AnalyticsServiceTestSuite) TestRevenue_NoOrders() {
	ctx := context.Background()

	s.orders.EXPECT().ListPaidSince(ctx, "store-1", s.now.AddDate(0, 0, -7)).Return(nil, nil)
	s.runs.EXPECT().LastCompletedAt(ctx, "store-1", domain.SyncOrders).Return(nil, nil)

	report, err := s.service.Revenue(ctx, "store-1", 7)

	s.Require().NoError(err)
	s.Equal(7, report.Days)
	s.True(report.Revenue.IsZero())
	s.True(report.AOV.IsZero())
	s.Zero(report.Orders)
	s.NotNil(report.TopProducts)
	s.Empty(report.TopProducts)
	s.Nil(report.LastSync)
}

func (s *AnalyticsServiceTestSuite) TestRevenue_TotalsAndAOV() {
	ctx := context.Background()
	synced := s.now.Add(-time.Hour)

	s.orders.EXPECT().ListPaidSince(ctx, "store-1", s.now.AddDate(0, 0, -30)).Return([]domain.Order{
		paidOrder("100.00", item("Serum", "50.00", 2)),
		paidOrder("50.50", item("Cream", "50.50", 1)),
		paidOrder("0.50"),
	}, nil)
	s.runs.EXPECT().LastCompletedAt(ctx, "store-1", domain.SyncOrders).Return(&synced, nil)

	report, err := s.service.Revenue(ctx, "store-1", 30)

	s.Require().NoError(err)
	s.Equal(3, report.Orders)
	s.Equal("151", report.Revenue.String())
	s.True(decimal.RequireFromString("50.333333").Equal(report.AOV.Round(6)))
	s.Equal(&synced, report.LastSync)
	s.Require().Len(report.TopProducts, 2)
	s.Equal("Serum", report.TopProducts[0].Title)
}

func (s *AnalyticsServiceTestSuite) TestRevenue_StoreError() {
	ctx := context.Background()
	dbErr := errors.New("db down")

	s.orders.EXPECT().ListPaidSince(ctx, "store-1", gomock.Any()).Return(nil, dbErr)

	_, err := s.service.Revenue(ctx, "store-1", 7)
	s.ErrorIs(err, dbErr)
}

func (s *AnalyticsServiceTestSuite) TestTopProducts_RanksAndCaps() {
	orders := []domain.Order{
		paidOrder("0", item("A", "10", 1), item("B", "30", 1), item("C", "5", 2)),
		paidOrder("0", item("D", "40", 1), item("E", "1", 1), item("F", "2", 1)),
		paidOrder("0", item("A", "25", 1)),
		{FinancialStatus: "refunded", LineItems: []domain.LineItem{item("Z", "1000", 1)}},
	}

	top := TopProducts(orders, 5)

	s.Require().Len(top, 5)
	titles := make([]string, len(top))
	for i, p := range top {
		titles[i] = p.Title
	}
	s.Equal([]string{"D", "A", "B", "C", "F"}, titles)
	s.Equal("35", top[1].Revenue.String())
}

func (s *AnalyticsServiceTestSuite) TestTopProducts_TitleFallbacksAndQuantity() {
	orders := []domain.Order{
		paidOrder("0",
			domain.LineItem{Name: "Named", Price: decimal.NewFromInt(3)},
			domain.LineItem{Price: decimal.NewFromInt(2), Quantity: 2},
		),
	}

	top := TopProducts(orders, 5)

	s.Require().Len(top, 2)
	s.Equal("Unknown", top[0].Title)
	s.Equal("4", top[0].Revenue.String())
	s.Equal("Named", top[1].Title)
	s.Equal("3", top[1].Revenue.String())
}

func (s *AnalyticsServiceTestSuite) TestTopProducts_TiesKeepFirstSeen() {
	orders := []domain.Order{paidOrder("0", item("First", "5", 1), item("Second", "5", 1))}

	top := TopProducts(orders, 5)

	s.Equal("First", top[0].Title)
	s.Equal("Second", top[1].Title)
}

func (s *AnalyticsServiceTestSuite) TestSummary() {
	ctx := context.Background()
	loc := s.now.Location()
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, loc)
	monthStart := time.Date(2026, 10, 1, 0, 0, 0, 0, loc)

	order := func(total string, at time.Time) domain.Order {
		return domain.Order{TotalPrice: decimal.RequireFromString(total), CreatedAt: at, FinancialStatus: "pending"}
	}

	s.orders.EXPECT().ListSince(ctx, "store-1", monthStart).Return([]domain.Order{
		order("30", today.Add(time.Hour)),
		order("30", today.Add(2*time.Hour)),
		order("40", today.Add(-time.Hour)),
		order("100", monthStart.Add(time.Hour)),
	}, nil)

	sum, err := s.service.Summary(ctx, "store-1")

	s.Require().NoError(err)
	s.Equal("60", sum.TodayRevenue.String())
	s.Equal(2, sum.TodayOrders)
	s.Equal("40", sum.YesterdayRevenue.String())
	s.Equal(1, sum.YesterdayOrders)
	s.Equal("50", sum.RevenueChange.String())
	s.Equal("100", sum.OrdersChange.String())
	s.Equal("200", sum.MonthRevenue.String())
}

func (s *AnalyticsServiceTestSuite) TestSummary_FirstOfMonthReachesIntoPreviousMonth() {
	ctx := context.Background()
	s.now = time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	s.orders.EXPECT().ListSince(ctx, "store-1", yesterday).Return([]domain.Order{
		{TotalPrice: decimal.NewFromInt(10), CreatedAt: yesterday.Add(time.Hour)},
	}, nil)

	sum, err := s.service.Summary(ctx, "store-1")

	s.Require().NoError(err)
	s.True(sum.TodayRevenue.IsZero())
	s.Equal("10", sum.YesterdayRevenue.String())
	s.True(sum.MonthRevenue.IsZero())
	s.Equal("-100", sum.RevenueChange.String())
}

func (s *AnalyticsServiceTestSuite) TestPercentChange_ZeroBaseline() {
	s.True(percentChange(decimal.NewFromInt(10), decimal.Zero).IsZero())
	s.Equal("-33", percentChange(decimal.NewFromInt(2), decimal.NewFromInt(3)).String())
}
