package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalesWindow struct {
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DailySales struct {
	Date         time.Time       `json:"date"`
	Orders       int             `json:"orders"`
	Revenue      decimal.Decimal `json:"revenue"`
	AverageOrder decimal.Decimal `json:"average_order_value"`
}

type SalesSummary struct {
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Last7Days    SalesWindow     `json:"last_7_days"`
	Last30Days   SalesWindow     `json:"last_30_days"`
	Daily        []DailySales    `json:"daily"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
