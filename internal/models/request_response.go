package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request models
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=100"`
}

type CreateTransactionRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"required,max=500"`
	TransactionType TransactionType `json:"transaction_type" binding:"required,oneof=credit debit"`
}

type UpdateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	Description     *string          `json:"description" binding:"omitempty,min=1,max=500"`
	TransactionType *TransactionType `json:"transaction_type" binding:"omitempty,oneof=credit debit"`
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"omitempty,oneof=admin viewer"`
	IsActive *bool  `json:"is_active"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=100"`
	Role     *Role   `json:"role" binding:"omitempty,oneof=admin viewer"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// Response models
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type BalanceResponse struct {
	Balance      decimal.Decimal `json:"balance"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
}

type PaginatedRecords struct {
	Items   []FinancialRecord `json:"items"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
	Pages   int               `json:"pages"`
}

// PublicRecord is the unauthenticated projection of a financial record:
// no soft-delete flag and only the minimal creator summary.
type PublicRecord struct {
	ID              int64           `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionType TransactionType `json:"transaction_type"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CreatedByUser   *UserSummary    `json:"created_by_user,omitempty"`
}

type PaginatedPublicRecords struct {
	Items   []PublicRecord `json:"items"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}

type PaginatedAuditLogs struct {
	Items   []AuditLog `json:"items"`
	Total   int        `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Pages   int        `json:"pages"`
}

// Filter models. Filters are normalized before reaching the query layer;
// sort fields are mapped through per-listing allow-lists there.
type RecordFilters struct {
	TransactionType string
	Search          string
	StartDate       *time.Time
	EndDate         *time.Time
	SortBy          string
	SortDirection   string
	Page            int
	PerPage         int
}

type AuditFilters struct {
	ActionType    string
	TableName     string
	UserID        int64
	Search        string
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string
	SortDirection string
	Page          int
	PerPage       int
}

type UserFilters struct {
	Role     string
	IsActive *bool
	Search   string
}

// Normalize clamps pagination to sane bounds
func (f *RecordFilters) Normalize() {
	f.Page, f.PerPage = normalizePage(f.Page, f.PerPage)
}

// Normalize clamps pagination to sane bounds
func (f *AuditFilters) Normalize() {
	f.Page, f.PerPage = normalizePage(f.Page, f.PerPage)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

// PageCount returns the number of pages needed for total items
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
