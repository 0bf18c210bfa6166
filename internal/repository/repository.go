package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/classfund/treasury-server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy.
// Mutating methods that take an audit entry write the primary row and the audit
// row in a single transaction: either both persist or neither does.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User, audit *models.AuditLog) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filters models.UserFilters) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User, audit *models.AuditLog) error
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)

	// Financial record operations
	CreateRecord(ctx context.Context, record *models.FinancialRecord, audit *models.AuditLog) error
	GetRecord(ctx context.Context, id int64) (*models.FinancialRecord, error)
	ListRecords(ctx context.Context, filters models.RecordFilters) ([]models.FinancialRecord, int, error)
	UpdateRecord(ctx context.Context, record *models.FinancialRecord, audit *models.AuditLog) (bool, error)
	SoftDeleteRecord(ctx context.Context, id int64, audit *models.AuditLog) (bool, error)
	Balance(ctx context.Context, startDate, endDate *time.Time) (credits, debits decimal.Decimal, err error)

	// Audit log operations (append-only)
	AppendAudit(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, filters models.AuditFilters) ([]models.AuditLog, int, error)
	GetAuditLog(ctx context.Context, id int64) (*models.AuditLog, error)
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// sortClause maps a requested sort field through an allow-list, falling back
// to the default column for unknown fields. Requested values never reach the
// SQL text directly.
func sortClause(allowed map[string]string, sortBy, direction, fallback string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = fallback
	}
	if direction == "asc" {
		return column + " ASC"
	}
	return column + " DESC"
}
