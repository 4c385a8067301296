package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductRevenue struct {
	Title   string
	Revenue decimal.Decimal
}

type RevenueReport struct {
	Days        int
	Revenue     decimal.Decimal
	Orders      int
	AOV         decimal.Decimal
	TopProducts []ProductRevenue
	LastSync    *time.Time
}

type DaySummary struct {
	TodayRevenue     decimal.Decimal
	YesterdayRevenue decimal.Decimal
	RevenueChange    decimal.Decimal
	TodayOrders      int
	YesterdayOrders  int
	OrdersChange     decimal.Decimal
	MonthRevenue     decimal.Decimal
}

type StoreStatus struct {
	Store        *Store
	Orders       int
	Products     int
	LastOrders   *time.Time
	LastProducts *time.Time
	Integrations []Integration
}
