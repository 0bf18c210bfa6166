package service

import (
	"context"
	"fmt"

	"github.com/classfund/treasury-server/internal/models"
)

// PublicTransactions serves the unauthenticated read-only listing. It reuses
// the transaction read path but projects records down to the public shape.
func (s *DefaultService) PublicTransactions(ctx context.Context, filters models.RecordFilters) (*models.PaginatedPublicRecords, error) {
	filters.Normalize()

	records, total, err := s.repo.ListRecords(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("error listing public transactions: %w", err)
	}

	items := make([]models.PublicRecord, 0, len(records))
	for i := range records {
		items = append(items, publicRecord(&records[i]))
	}

	return &models.PaginatedPublicRecords{
		Items:   items,
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
		Pages:   models.PageCount(total, filters.PerPage),
	}, nil
}

// PublicBalance serves the unauthenticated aggregate balance
func (s *DefaultService) PublicBalance(ctx context.Context) (*models.BalanceResponse, error) {
	return s.Balance(ctx, nil, nil)
}

func publicRecord(record *models.FinancialRecord) models.PublicRecord {
	return models.PublicRecord{
		ID:              record.ID,
		Amount:          record.Amount,
		Description:     record.Description,
		TransactionType: record.TransactionType,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
		CreatedByUser:   record.CreatedByUser,
	}
}
