package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classfund/treasury-server/internal/models"
)

// auditSortColumns is the allow-list of sortable fields for audit listings
var auditSortColumns = map[string]string{
	"created_at":  "a.created_at",
	"action_type": "a.action_type",
	"table_name":  "a.table_name",
}

// auditRow carries an audit entry plus its actor projection
type auditRow struct {
	models.AuditLog
	ActorID       int64  `db:"actor_id"`
	ActorUsername string `db:"actor_username"`
	ActorFullName string `db:"actor_full_name"`
}

func (row *auditRow) toLog() models.AuditLog {
	entry := row.AuditLog
	entry.User = &models.UserSummary{
		ID:       row.ActorID,
		Username: row.ActorUsername,
		FullName: row.ActorFullName,
	}
	return entry
}

const auditSelect = `
	SELECT a.id, a.user_id, a.action_type, a.table_name, a.record_id,
	       a.old_values, a.new_values, a.ip_address, a.user_agent, a.created_at,
	       u.id AS actor_id, u.username AS actor_username, u.full_name AS actor_full_name
	FROM audit_logs a
	JOIN users u ON u.id = a.user_id
`

// insertAuditTx appends an audit entry within an existing transaction.
// Audit rows are insert-only; no update or delete path exists.
func insertAuditTx(ctx context.Context, tx *sqlx.Tx, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, action_type, table_name, record_id, old_values, new_values, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	return tx.QueryRowContext(ctx, query,
		entry.UserID, entry.ActionType, entry.TableName, entry.RecordID,
		entry.OldValues, entry.NewValues, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// AppendAudit writes a standalone audit entry (LOGIN/LOGOUT, which have no
// accompanying row mutation).
func (r *PostgresRepository) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
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

	if err = insertAuditTx(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) ListAuditLogs(ctx context.Context, filters models.AuditFilters) ([]models.AuditLog, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filters.ActionType != "" {
		args = append(args, filters.ActionType)
		conditions = append(conditions, fmt.Sprintf("a.action_type = $%d", len(args)))
	}

	if filters.TableName != "" {
		args = append(args, filters.TableName)
		conditions = append(conditions, fmt.Sprintf("a.table_name = $%d", len(args)))
	}

	if filters.UserID != 0 {
		args = append(args, filters.UserID)
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", len(args)))
	}

	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		conditions = append(conditions, fmt.Sprintf("a.created_at >= $%d", len(args)))
	}

	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		conditions = append(conditions, fmt.Sprintf("a.created_at <= $%d", len(args)))
	}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(a.action_type ILIKE $%d OR a.table_name ILIKE $%d OR a.ip_address ILIKE $%d OR u.username ILIKE $%d)",
			n, n, n, n))
	}

	where := ""
	for i, cond := range conditions {
		if i == 0 {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	countQuery := `SELECT COUNT(*) FROM audit_logs a JOIN users u ON u.id = a.user_id` + where

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := auditSelect + where +
		" ORDER BY " + sortClause(auditSortColumns, filters.SortBy, filters.SortDirection, "a.created_at") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)

	rows := []auditRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	logs := make([]models.AuditLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].toLog())
	}

	return logs, total, nil
}

func (r *PostgresRepository) GetAuditLog(ctx context.Context, id int64) (*models.AuditLog, error) {
	query := auditSelect + ` WHERE a.id = $1`

	var row auditRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Audit log not found
		}
		return nil, err
	}

	entry := row.toLog()
	return &entry, nil
}
