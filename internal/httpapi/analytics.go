package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mers/internal/domain"
)

const (
	defaultRevenueDays = 7
	maxRevenueDays     = 365
)

type productRevenueView struct {
	Title   string  `json:"title"`
	Revenue float64 `json:"revenue"`
}

type revenueView struct {
	Revenue     float64              `json:"revenue"`
	Orders      int                  `json:"orders"`
	AOV         float64              `json:"aov"`
	TopProducts []productRevenueView `json:"topProducts"`
	LastSync    *time.Time           `json:"lastSync"`
	Period      string               `json:"period"`
}

func parseDays(raw string) (int, error) {
	if raw == "" {
		return defaultRevenueDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxRevenueDays {
		return 0, fmt.Errorf("%w: days must be an integer between 1 and %d", domain.ErrInvalidPayload, maxRevenueDays)
	}
	return days, nil
}

func (s *Server) revenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days, err := parseDays(r.URL.Query().Get("days"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	store, err := s.Setup.CallerStore(ctx)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	report, err := s.Analytics.Revenue(ctx, store.ID, days)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	top := make([]productRevenueView, 0, len(report.TopProducts))
	for _, p := range report.TopProducts {
		top = append(top, productRevenueView{Title: p.Title, Revenue: money(p.Revenue)})
	}

	writeData(w, http.StatusOK, revenueView{
		Revenue:     money(report.Revenue),
		Orders:      report.Orders,
		AOV:         money(report.AOV),
		TopProducts: top,
		LastSync:    report.LastSync,
		Period:      fmt.Sprintf("%dd", report.Days),
	})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := s.Setup.CallerStore(ctx)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	sum, err := s.Analytics.Summary(ctx, store.ID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"todayRevenue":     money(sum.TodayRevenue),
		"yesterdayRevenue": money(sum.YesterdayRevenue),
		"revenueChange":    sum.RevenueChange.InexactFloat64(),
		"todayOrders":      sum.TodayOrders,
		"yesterdayOrders":  sum.YesterdayOrders,
		"ordersChange":     sum.OrdersChange.InexactFloat64(),
		"monthRevenue":     money(sum.MonthRevenue),
		"currency":         store.Currency,
	})
}
