package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/classfund/treasury-server/internal/models"
)

func (s *DefaultService) ListUsers(ctx context.Context, filters models.UserFilters) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

func (s *DefaultService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrNotFound
	}

	return user, nil
}

// CreateUser creates an account. Username and email must be unique and the
// password must satisfy the configured policy.
func (s *DefaultService) CreateUser(ctx context.Context, actor *models.User, req models.CreateUserRequest, client ClientInfo) (*models.User, error) {
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	taken, err := s.repo.UsernameTaken(ctx, req.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if taken {
		return nil, conflictErr("username already exists")
	}

	taken, err = s.repo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, conflictErr("email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleViewer
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		IsActive:     isActive,
	}

	audit := &models.AuditLog{
		UserID:     actor.ID,
		ActionType: models.ActionCreate,
		TableName:  "users",
		NewValues:  userSnapshot(user),
	}
	setClient(audit, client)

	if err := s.repo.CreateUser(ctx, user, audit); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// UpdateUser applies a partial update to an account. An admin cannot
// deactivate their own account through this path.
func (s *DefaultService) UpdateUser(ctx context.Context, actor *models.User, id int64, req models.UpdateUserRequest, client ClientInfo) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if id == actor.ID && req.IsActive != nil && !*req.IsActive {
		return nil, ErrSelfModification
	}

	oldValues := userSnapshot(user)

	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.repo.UsernameTaken(ctx, *req.Username, user.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking username: %w", err)
		}
		if taken {
			return nil, conflictErr("username already exists")
		}
		user.Username = *req.Username
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.EmailTaken(ctx, *req.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if taken {
			return nil, conflictErr("email already exists")
		}
		user.Email = *req.Email
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if err := s.validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	audit := &models.AuditLog{
		UserID:     actor.ID,
		ActionType: models.ActionUpdate,
		TableName:  "users",
		RecordID:   &user.ID,
		OldValues:  oldValues,
		NewValues:  userSnapshot(user),
	}
	setClient(audit, client)

	if err := s.repo.UpdateUser(ctx, user, audit); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return user, nil
}

// DeleteUser deactivates an account. Audit rows keep referencing the user,
// so accounts are never hard-deleted. Self-deletion is rejected.
func (s *DefaultService) DeleteUser(ctx context.Context, actor *models.User, id int64, client ClientInfo) error {
	if id == actor.ID {
		return ErrSelfModification
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	oldValues := userSnapshot(user)
	user.IsActive = false

	audit := &models.AuditLog{
		UserID:     actor.ID,
		ActionType: models.ActionDelete,
		TableName:  "users",
		RecordID:   &user.ID,
		OldValues:  oldValues,
		NewValues:  models.Snapshot{"is_active": false},
	}
	setClient(audit, client)

	if err := s.repo.UpdateUser(ctx, user, audit); err != nil {
		return fmt.Errorf("error deactivating user: %w", err)
	}

	return nil
}

func userSnapshot(user *models.User) models.Snapshot {
	return models.Snapshot{
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      string(user.Role),
		"is_active": user.IsActive,
	}
}
