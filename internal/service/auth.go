package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/classfund/treasury-server/internal/models"
)

// Login authenticates a user and returns a token pair. The identifier is a
// username, or an email address when it contains "@". Unknown accounts,
// wrong passwords and deactivated accounts are indistinguishable to the
// caller. A successful login appends a LOGIN audit entry.
func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest, client ClientInfo) (*models.TokenResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil && strings.Contains(req.Username, "@") {
		user, err = s.repo.GetUserByEmail(ctx, req.Username)
		if err != nil {
			return nil, fmt.Errorf("error getting user: %w", err)
		}
	}

	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.repo.AppendAudit(ctx, s.authAudit(user, models.ActionLogin, client)); err != nil {
		return nil, fmt.Errorf("error recording login: %w", err)
	}

	return tokens, nil
}

// Refresh rotates an access/refresh pair. The refresh token must carry the
// refresh type claim and the user must still be active.
func (s *DefaultService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	userID, err := s.verifyToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	return tokens, nil
}

// CurrentUser resolves an access token to its active user
func (s *DefaultService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.verifyToken(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// Logout appends a LOGOUT audit entry. Tokens are stateless; discarding them
// is the client's responsibility.
func (s *DefaultService) Logout(ctx context.Context, actor *models.User, client ClientInfo) error {
	if err := s.repo.AppendAudit(ctx, s.authAudit(actor, models.ActionLogout, client)); err != nil {
		return fmt.Errorf("error recording logout: %w", err)
	}
	return nil
}

// ChangePassword verifies the current password, applies the password policy
// and re-hashes.
func (s *DefaultService) ChangePassword(ctx context.Context, actor *models.User, req models.ChangePasswordRequest, client ClientInfo) error {
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.validatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	actor.PasswordHash = string(hash)

	audit := &models.AuditLog{
		UserID:     actor.ID,
		ActionType: models.ActionUpdate,
		TableName:  "users",
		RecordID:   &actor.ID,
		NewValues:  models.Snapshot{"password_changed": true},
	}
	setClient(audit, client)

	if err := s.repo.UpdateUser(ctx, actor, audit); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	return nil
}

// UpdateProfile lets a user change their own username, email and full name
func (s *DefaultService) UpdateProfile(ctx context.Context, actor *models.User, req models.UpdateProfileRequest, client ClientInfo) (*models.User, error) {
	oldValues := profileSnapshot(actor)

	if req.Username != nil && *req.Username != actor.Username {
		taken, err := s.repo.UsernameTaken(ctx, *req.Username, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking username: %w", err)
		}
		if taken {
			return nil, conflictErr("username already exists")
		}
		actor.Username = *req.Username
	}

	if req.Email != nil && *req.Email != actor.Email {
		taken, err := s.repo.EmailTaken(ctx, *req.Email, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if taken {
			return nil, conflictErr("email already exists")
		}
		actor.Email = *req.Email
	}

	if req.FullName != nil {
		actor.FullName = *req.FullName
	}

	audit := &models.AuditLog{
		UserID:     actor.ID,
		ActionType: models.ActionUpdate,
		TableName:  "users",
		RecordID:   &actor.ID,
		OldValues:  oldValues,
		NewValues:  profileSnapshot(actor),
	}
	setClient(audit, client)

	if err := s.repo.UpdateUser(ctx, actor, audit); err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	return actor, nil
}

// validatePassword applies the configured password policy
func (s *DefaultService) validatePassword(password string) error {
	policy := s.auth.Password

	if len(password) < policy.MinLength {
		return validationErr("password", fmt.Sprintf("must be at least %d characters long", policy.MinLength))
	}

	var hasLower, hasUpper, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}

	if policy.RequireLower && !hasLower {
		return validationErr("password", "must contain at least one lowercase letter")
	}
	if policy.RequireUpper && !hasUpper {
		return validationErr("password", "must contain at least one uppercase letter")
	}
	if policy.RequireDigit && !hasDigit {
		return validationErr("password", "must contain at least one digit")
	}

	return nil
}

func (s *DefaultService) authAudit(user *models.User, action models.ActionType, client ClientInfo) *models.AuditLog {
	entry := &models.AuditLog{
		UserID:     user.ID,
		ActionType: action,
		TableName:  "users",
		RecordID:   &user.ID,
	}
	setClient(entry, client)
	return entry
}

func setClient(entry *models.AuditLog, client ClientInfo) {
	if client.IPAddress != "" {
		ip := client.IPAddress
		entry.IPAddress = &ip
	}
	if client.UserAgent != "" {
		ua := client.UserAgent
		entry.UserAgent = &ua
	}
}

func profileSnapshot(user *models.User) models.Snapshot {
	return models.Snapshot{
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
	}
}
