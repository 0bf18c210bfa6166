package service

import (
	"context"
	"time"

	"github.com/classfund/treasury-server/internal/config"
	"github.com/classfund/treasury-server/internal/models"
	"github.com/classfund/treasury-server/internal/repository"
)

// ClientInfo carries the request metadata recorded on audit entries
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Login(ctx context.Context, req models.LoginRequest, client ClientInfo) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	Logout(ctx context.Context, actor *models.User, client ClientInfo) error
	ChangePassword(ctx context.Context, actor *models.User, req models.ChangePasswordRequest, client ClientInfo) error
	UpdateProfile(ctx context.Context, actor *models.User, req models.UpdateProfileRequest, client ClientInfo) (*models.User, error)

	// Transactions
	ListTransactions(ctx context.Context, filters models.RecordFilters) (*models.PaginatedRecords, error)
	GetTransaction(ctx context.Context, id int64) (*models.FinancialRecord, error)
	CreateTransaction(ctx context.Context, actor *models.User, req models.CreateTransactionRequest, client ClientInfo) (*models.FinancialRecord, error)
	UpdateTransaction(ctx context.Context, actor *models.User, id int64, req models.UpdateTransactionRequest, client ClientInfo) (*models.FinancialRecord, error)
	DeleteTransaction(ctx context.Context, actor *models.User, id int64, client ClientInfo) error
	Balance(ctx context.Context, startDate, endDate *time.Time) (*models.BalanceResponse, error)

	// User management (admin only)
	ListUsers(ctx context.Context, filters models.UserFilters) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, actor *models.User, req models.CreateUserRequest, client ClientInfo) (*models.User, error)
	UpdateUser(ctx context.Context, actor *models.User, id int64, req models.UpdateUserRequest, client ClientInfo) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.User, id int64, client ClientInfo) error

	// Audit trail (admin only, read-only)
	ListAuditLogs(ctx context.Context, filters models.AuditFilters) (*models.PaginatedAuditLogs, error)
	GetAuditLog(ctx context.Context, id int64) (*models.AuditLog, error)

	// Public read-only surface
	PublicTransactions(ctx context.Context, filters models.RecordFilters) (*models.PaginatedPublicRecords, error)
	PublicBalance(ctx context.Context) (*models.BalanceResponse, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo repository.Repository
	auth config.AuthConfig
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, auth config.AuthConfig) Service {
	return &DefaultService{
		repo: repo,
		auth: auth,
	}
}
