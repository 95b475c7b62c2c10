package service

import (
	"context"
	"time"

	"github.com/yudhap12/go-sipp-backend/internal/model"
)

type StatisticsStore interface {
	CountCases(ctx context.Context, year int) (int64, error)
	CountCasesByType(ctx context.Context, year int) ([]model.CaseTypeCount, error)
	CountCasesByStatus(ctx context.Context, year int) ([]model.CaseStatusCount, error)
	CountCasesByMonth(ctx context.Context, year int) ([]model.MonthlyCaseCount, error)
}

// StatisticsService aggregates synced case rows for the public case
// statistics page.
type StatisticsService struct {
	store StatisticsStore
}

func NewStatisticsService(store StatisticsStore) *StatisticsService {
	return &StatisticsService{store: store}
}

func (s *StatisticsService) CaseStatistics(ctx context.Context, year int) (*model.CaseStatistics, error) {
	if year <= 0 {
		year = time.Now().Year()
	}

	total, err := s.store.CountCases(ctx, year)
	if err != nil {
		return nil, err
	}
	byType, err := s.store.CountCasesByType(ctx, year)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.store.CountCasesByStatus(ctx, year)
	if err != nil {
		return nil, err
	}
	byMonth, err := s.store.CountCasesByMonth(ctx, year)
	if err != nil {
		return nil, err
	}

	return &model.CaseStatistics{
		Year:     year,
		Total:    total,
		ByType:   byType,
		ByStatus: byStatus,
		ByMonth:  byMonth,
	}, nil
}
