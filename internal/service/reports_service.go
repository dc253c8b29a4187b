package service

import (
	"context"

	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// ReportsService exposes the dashboard aggregates.
type ReportsService struct {
	reports repository.ReportsRepository
}

// NewReportsService constructs the service.
func NewReportsService(reports repository.ReportsRepository) *ReportsService {
	return &ReportsService{reports: reports}
}

// Overview is the combined dashboard payload.
type Overview struct {
	ByStatus   []repository.StatusCount
	ByPriority []repository.PriorityCount
	Workloads  []repository.DepartmentWorkload
}

// DepartmentWorkloads returns per-department open/resolved counts.
func (s *ReportsService) DepartmentWorkloads(ctx context.Context) ([]repository.DepartmentWorkload, error) {
	workloads, err := s.reports.DepartmentWorkloads(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return workloads, nil
}

// Overview gathers all aggregates in one call.
func (s *ReportsService) Overview(ctx context.Context) (*Overview, error) {
	byStatus, err := s.reports.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := s.reports.CountByPriority(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	workloads, err := s.reports.DepartmentWorkloads(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Overview{ByStatus: byStatus, ByPriority: byPriority, Workloads: workloads}, nil
}
