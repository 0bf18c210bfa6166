package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/classfund/treasury-server/internal/models"
)

func (s *DefaultService) ListTransactions(ctx context.Context, filters models.RecordFilters) (*models.PaginatedRecords, error) {
	filters.Normalize()

	records, total, err := s.repo.ListRecords(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	return &models.PaginatedRecords{
		Items:   records,
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
		Pages:   models.PageCount(total, filters.PerPage),
	}, nil
}

func (s *DefaultService) GetTransaction(ctx context.Context, id int64) (*models.FinancialRecord, error) {
	record, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}

	if record == nil {
		return nil, ErrNotFound
	}

	return record, nil
}

// CreateTransaction records a credit or debit. Viewers cannot mutate.
func (s *DefaultService) CreateTransaction(ctx context.Context, actor *models.User, req models.CreateTransactionRequest, client ClientInfo) (*models.FinancialRecord, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if !req.Amount.IsPositive() {
		return nil, validationErr("amount", "must be greater than zero")
	}

	if strings.TrimSpace(req.Description) == "" {
		return nil, validationErr("description", "must not be empty")
	}

	record := &models.FinancialRecord{
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionType: req.TransactionType,
		CreatedBy:       actor.ID,
	}

	audit := &models.AuditLog{
		UserID:     actor.ID,
		ActionType: models.ActionCreate,
		TableName:  "financial_records",
		NewValues:  recordSnapshot(record),
	}
	setClient(audit, client)

	if err := s.repo.CreateRecord(ctx, record, audit); err != nil {
		return nil, fmt.Errorf("error creating transaction: %w", err)
	}

	record.CreatedByUser = &models.UserSummary{
		ID:       actor.ID,
		Username: actor.Username,
		FullName: actor.FullName,
	}

	return record, nil
}

// UpdateTransaction applies a partial update to a non-deleted record
func (s *DefaultService) UpdateTransaction(ctx context.Context, actor *models.User, id int64, req models.UpdateTransactionRequest, client ClientInfo) (*models.FinancialRecord, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	record, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if record == nil {
		return nil, ErrNotFound
	}

	oldValues := recordSnapshot(record)

	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, validationErr("amount", "must be greater than zero")
		}
		record.Amount = *req.Amount
	}

	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, validationErr("description", "must not be empty")
		}
		record.Description = *req.Description
	}

	if req.TransactionType != nil {
		record.TransactionType = *req.TransactionType
	}

	audit := &models.AuditLog{
		UserID:     actor.ID,
		ActionType: models.ActionUpdate,
		TableName:  "financial_records",
		RecordID:   &record.ID,
		OldValues:  oldValues,
		NewValues:  recordSnapshot(record),
	}
	setClient(audit, client)

	updated, err := s.repo.UpdateRecord(ctx, record, audit)
	if err != nil {
		return nil, fmt.Errorf("error updating transaction: %w", err)
	}
	if !updated {
		// Deleted between the read and the write
		return nil, ErrNotFound
	}

	return record, nil
}

// DeleteTransaction soft-deletes a record. A second delete of the same id
// fails with ErrNotFound.
func (s *DefaultService) DeleteTransaction(ctx context.Context, actor *models.User, id int64, client ClientInfo) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	record, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting transaction: %w", err)
	}
	if record == nil {
		return ErrNotFound
	}

	oldValues := recordSnapshot(record)
	oldValues["is_deleted"] = false

	audit := &models.AuditLog{
		UserID:     actor.ID,
		ActionType: models.ActionDelete,
		TableName:  "financial_records",
		RecordID:   &record.ID,
		OldValues:  oldValues,
		NewValues:  models.Snapshot{"is_deleted": true},
	}
	setClient(audit, client)

	deleted, err := s.repo.SoftDeleteRecord(ctx, id, audit)
	if err != nil {
		return fmt.Errorf("error deleting transaction: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	return nil
}

// Balance returns the server-computed aggregate over non-deleted records,
// optionally scoped to a date range.
func (s *DefaultService) Balance(ctx context.Context, startDate, endDate *time.Time) (*models.BalanceResponse, error) {
	credits, debits, err := s.repo.Balance(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("error computing balance: %w", err)
	}

	return &models.BalanceResponse{
		Balance:      credits.Sub(debits),
		TotalCredits: credits,
		TotalDebits:  debits,
	}, nil
}

// recordSnapshot captures the audited fields of a record. Amounts are stored
// as strings to keep the decimal value exact across serializations.
func recordSnapshot(record *models.FinancialRecord) models.Snapshot {
	return models.Snapshot{
		"amount":           record.Amount.String(),
		"description":      record.Description,
		"transaction_type": string(record.TransactionType),
	}
}
