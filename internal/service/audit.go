package service

import (
	"context"
	"fmt"

	"github.com/classfund/treasury-server/internal/models"
)

func (s *DefaultService) ListAuditLogs(ctx context.Context, filters models.AuditFilters) (*models.PaginatedAuditLogs, error) {
	filters.Normalize()

	logs, total, err := s.repo.ListAuditLogs(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("error listing audit logs: %w", err)
	}

	return &models.PaginatedAuditLogs{
		Items:   logs,
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
		Pages:   models.PageCount(total, filters.PerPage),
	}, nil
}

func (s *DefaultService) GetAuditLog(ctx context.Context, id int64) (*models.AuditLog, error) {
	entry, err := s.repo.GetAuditLog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting audit log: %w", err)
	}

	if entry == nil {
		return nil, ErrNotFound
	}

	return entry, nil
}
