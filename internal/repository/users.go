package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/classfund/treasury-server/internal/models"
)

// CreateUser inserts a user and its audit entry in one transaction.
// A nil audit entry skips the audit write (used by the seed command, which
// has no acting user).
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User, audit *models.AuditLog) error {
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
		INSERT INTO users (username, email, password_hash, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.FullName, user.Role, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return err
	}

	if audit != nil {
		audit.RecordID = &user.ID
		if err = insertAuditTx(ctx, tx, audit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT * FROM users WHERE username = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context, filters models.UserFilters) ([]models.User, error) {
	query := `SELECT * FROM users`
	conditions := []string{}
	args := []interface{}{}

	if filters.Role != "" {
		args = append(args, filters.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}

	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(username ILIKE $%d OR full_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY id ASC"

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateUser persists all mutable user fields and the audit entry in one
// transaction. updated_at is advanced by the touch trigger.
func (r *PostgresRepository) UpdateUser(ctx context.Context, user *models.User, audit *models.AuditLog) error {
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
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, full_name = $4, role = $5, is_active = $6
		WHERE id = $7
		RETURNING updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.FullName, user.Role, user.IsActive, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return err
	}

	if audit != nil {
		if err = insertAuditTx(ctx, tx, audit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.GetContext(ctx, &taken,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`,
		username, excludeID)
	return taken, err
}

func (r *PostgresRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.GetContext(ctx, &taken,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeID)
	return taken, err
}
