package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/classfund/treasury-server/internal/models"
)

// recordSortColumns is the allow-list of sortable fields for record listings
var recordSortColumns = map[string]string{
	"date":             "r.created_at",
	"created_at":       "r.created_at",
	"amount":           "r.amount",
	"description":      "r.description",
	"type":             "r.transaction_type",
	"transaction_type": "r.transaction_type",
	"created_by":       "r.created_by",
}

// recordRow carries a financial record plus its creator projection
type recordRow struct {
	models.FinancialRecord
	CreatorID       int64  `db:"creator_id"`
	CreatorUsername string `db:"creator_username"`
	CreatorFullName string `db:"creator_full_name"`
}

func (row *recordRow) toRecord() models.FinancialRecord {
	record := row.FinancialRecord
	record.CreatedByUser = &models.UserSummary{
		ID:       row.CreatorID,
		Username: row.CreatorUsername,
		FullName: row.CreatorFullName,
	}
	return record
}

const recordSelect = `
	SELECT r.id, r.amount, r.description, r.transaction_type, r.created_by,
	       r.created_at, r.updated_at, r.is_deleted,
	       u.id AS creator_id, u.username AS creator_username, u.full_name AS creator_full_name
	FROM financial_records r
	JOIN users u ON u.id = r.created_by
`

// CreateRecord inserts a financial record and its CREATE audit entry in one
// transaction.
func (r *PostgresRepository) CreateRecord(ctx context.Context, record *models.FinancialRecord, audit *models.AuditLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	query := `
		INSERT INTO financial_records (amount, description, transaction_type, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		record.Amount, record.Description, record.TransactionType, record.CreatedBy,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return err
	}

	if audit != nil {
		audit.RecordID = &record.ID
		if err = insertAuditTx(ctx, tx, audit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRecord returns a non-deleted record with its creator projection.
// Soft-deleted and missing records both return nil.
func (r *PostgresRepository) GetRecord(ctx context.Context, id int64) (*models.FinancialRecord, error) {
	query := recordSelect + ` WHERE r.id = $1 AND NOT r.is_deleted`

	var row recordRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Record not found
		}
		return nil, err
	}

	record := row.toRecord()
	return &record, nil
}

func (r *PostgresRepository) ListRecords(ctx context.Context, filters models.RecordFilters) ([]models.FinancialRecord, int, error) {
	conditions := []string{"NOT r.is_deleted"}
	args := []interface{}{}

	if filters.TransactionType != "" {
		args = append(args, filters.TransactionType)
		conditions = append(conditions, fmt.Sprintf("r.transaction_type = $%d", len(args)))
	}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		conditions = append(conditions, fmt.Sprintf("r.description ILIKE $%d", len(args)))
	}

	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		conditions = append(conditions, fmt.Sprintf("r.created_at >= $%d", len(args)))
	}

	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		conditions = append(conditions, fmt.Sprintf("r.created_at <= $%d", len(args)))
	}

	where := ""
	for i, cond := range conditions {
		if i == 0 {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	countQuery := `SELECT COUNT(*) FROM financial_records r` + where

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := recordSelect + where +
		" ORDER BY " + sortClause(recordSortColumns, filters.SortBy, filters.SortDirection, "r.created_at") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)

	rows := []recordRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	records := make([]models.FinancialRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}

	return records, total, nil
}

// UpdateRecord persists the mutable fields of a record and its UPDATE audit
// entry in one transaction. Returns false when the record is missing or
// soft-deleted, with nothing written.
func (r *PostgresRepository) UpdateRecord(ctx context.Context, record *models.FinancialRecord, audit *models.AuditLog) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	query := `
		UPDATE financial_records
		SET amount = $1, description = $2, transaction_type = $3
		WHERE id = $4 AND NOT is_deleted
		RETURNING updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		record.Amount, record.Description, record.TransactionType, record.ID,
	).Scan(&record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			tx.Rollback()
			return false, nil
		}
		return false, err
	}

	if audit != nil {
		if err = insertAuditTx(ctx, tx, audit); err != nil {
			return false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

// SoftDeleteRecord marks a record deleted and writes the DELETE audit entry
// in one transaction. Returns false when the record is missing or already
// deleted, with nothing written.
func (r *PostgresRepository) SoftDeleteRecord(ctx context.Context, id int64, audit *models.AuditLog) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE financial_records SET is_deleted = TRUE WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		tx.Rollback()
		return false, nil
	}

	if audit != nil {
		if err = insertAuditTx(ctx, tx, audit); err != nil {
			return false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

// Balance sums credits and debits over non-deleted records, optionally
// scoped to a date range. Sums are computed server-side in SQL so the result
// never depends on pagination.
func (r *PostgresRepository) Balance(ctx context.Context, startDate, endDate *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	conditions := "NOT is_deleted AND transaction_type = $1"
	args := []interface{}{""}

	if startDate != nil {
		args = append(args, *startDate)
		conditions += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	if endDate != nil {
		args = append(args, *endDate)
		conditions += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query := `SELECT COALESCE(SUM(amount), 0) FROM financial_records WHERE ` + conditions

	var credits decimal.Decimal
	args[0] = models.TransactionCredit
	if err := r.db.GetContext(ctx, &credits, query, args...); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	var debits decimal.Decimal
	args[0] = models.TransactionDebit
	if err := r.db.GetContext(ctx, &debits, query, args...); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return credits, debits, nil
}
