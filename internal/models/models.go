package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Role is the authorization role of a user
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// TransactionType classifies a financial record
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// ActionType classifies an audit log entry
type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
	ActionLogin  ActionType = "LOGIN"
	ActionLogout ActionType = "LOGOUT"
)

// User represents a user account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the projection of a user attached to records and audit
// entries. It is the only user shape the public endpoints ever return.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	FullName string `db:"full_name" json:"full_name"`
}

// FinancialRecord represents a single credit or debit transaction
type FinancialRecord struct {
	ID              int64           `db:"id" json:"id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Description     string          `db:"description" json:"description"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	CreatedBy       int64           `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	IsDeleted       bool            `db:"is_deleted" json:"is_deleted"`

	CreatedByUser *UserSummary `db:"-" json:"created_by_user,omitempty"`
}

// AuditLog is an append-only record of a mutating action. Rows are never
// updated or deleted after insertion.
type AuditLog struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	ActionType ActionType `db:"action_type" json:"action_type"`
	TableName  string     `db:"table_name" json:"table_name"`
	RecordID   *int64     `db:"record_id" json:"record_id"`
	OldValues  Snapshot   `db:"old_values" json:"old_values"`
	NewValues  Snapshot   `db:"new_values" json:"new_values"`
	IPAddress  *string    `db:"ip_address" json:"ip_address"`
	UserAgent  *string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`

	User *UserSummary `db:"-" json:"user,omitempty"`
}

// Snapshot is the before/after state stored on an audit entry. Values are
// restricted to JSON scalars (string, number, boolean, null). A nil
// Snapshot is stored as SQL NULL.
type Snapshot map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *Snapshot) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported snapshot type %T", src)
	}
}
