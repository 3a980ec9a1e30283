package service

import (
	"context"
	"time"

	"retailshop/internal/models"
	"retailshop/internal/repository"
)

const (
	DefaultReportDays = 30
	maxReportDays     = 366
)

type ReportService struct {
	reports repository.ReportRepository
	now     func() time.Time
}

func NewReportService(reports repository.ReportRepository) *ReportService {
	return &ReportService{reports: reports, now: time.Now}
}

// Sales summarises completed orders. days bounds the daily history and
// falls back to DefaultReportDays when out of range.
func (s *ReportService) Sales(ctx context.Context, days int) (*models.SalesSummary, error) {
	if days <= 0 || days > maxReportDays {
		days = DefaultReportDays
	}
	return s.reports.SalesSummary(ctx, s.now(), days)
}
