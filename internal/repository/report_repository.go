package repository

import (
	"context"
	"fmt"
	"time"

	"retailshop/internal/models"
)

type reportRepo struct {
	db DB
}

func NewReportRepository(db DB) ReportRepository {
	return &reportRepo{db: db}
}

// SalesSummary aggregates completed orders only. Daily rows cover the last
// days days ending at now, newest first, and omit days without sales.
func (r *reportRepo) SalesSummary(ctx context.Context, now time.Time, days int) (*models.SalesSummary, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}

	summary := &models.SalesSummary{GeneratedAt: now, Daily: []models.DailySales{}}

	totals := `SELECT
		COUNT(*),
		COALESCE(SUM(total_amount), 0),
		COUNT(*) FILTER (WHERE created_at >= $1),
		COALESCE(SUM(total_amount) FILTER (WHERE created_at >= $1), 0),
		COUNT(*) FILTER (WHERE created_at >= $2),
		COALESCE(SUM(total_amount) FILTER (WHERE created_at >= $2), 0)
		FROM orders
		WHERE status = 'complete'
	`

	err := r.db.QueryRow(ctx, totals, now.AddDate(0, 0, -7), now.AddDate(0, 0, -30)).Scan(
		&summary.TotalOrders,
		&summary.TotalRevenue,
		&summary.Last7Days.Orders,
		&summary.Last7Days.Revenue,
		&summary.Last30Days.Orders,
		&summary.Last30Days.Revenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales totals: %w", err)
	}

	daily := `SELECT
		date_trunc('day', created_at)::date AS day,
		COUNT(*),
		SUM(total_amount),
		ROUND(AVG(total_amount), 2)
		FROM orders
		WHERE status = 'complete' AND created_at >= $1
		GROUP BY day
		ORDER BY day DESC
	`

	rows, err := r.db.Query(ctx, daily, now.AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("failed to get daily sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.DailySales
		if err := rows.Scan(&d.Date, &d.Orders, &d.Revenue, &d.AverageOrder); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		summary.Daily = append(summary.Daily, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return summary, nil
}
