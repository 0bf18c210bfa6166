package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/classfund/treasury-server/internal/logger"
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'viewer',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}

	// Create financial_records table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS financial_records (
			id SERIAL PRIMARY KEY,
			amount DECIMAL(10,2) NOT NULL CHECK (amount > 0),
			description TEXT NOT NULL,
			transaction_type VARCHAR(20) NOT NULL CHECK (transaction_type IN ('credit', 'debit')),
			created_by INTEGER NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	if err != nil {
		return err
	}

	// Create audit_logs table (append-only, no updated_at)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			action_type VARCHAR(20) NOT NULL,
			table_name VARCHAR(50) NOT NULL,
			record_id INTEGER,
			old_values JSONB,
			new_values JSONB,
			ip_address VARCHAR(45),
			user_agent TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}

	// Keep updated_at current on row updates
	_, err = db.Exec(`
		CREATE OR REPLACE FUNCTION touch_updated_at() RETURNS trigger AS $$
		BEGIN
			NEW.updated_at = now();
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql
	`)
	if err != nil {
		return err
	}

	for _, table := range []string{"users", "financial_records"} {
		_, err = db.Exec(fmt.Sprintf(
			`DROP TRIGGER IF EXISTS %[1]s_touch_updated_at ON %[1]s`, table))
		if err != nil {
			return err
		}
		_, err = db.Exec(fmt.Sprintf(
			`CREATE TRIGGER %[1]s_touch_updated_at
			BEFORE UPDATE ON %[1]s
			FOR EACH ROW EXECUTE FUNCTION touch_updated_at()`, table))
		if err != nil {
			return err
		}
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_financial_records_created_at ON financial_records(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_financial_records_type ON financial_records(transaction_type)",
		"CREATE INDEX IF NOT EXISTS idx_financial_records_active ON financial_records(id) WHERE NOT is_deleted",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_table_record ON audit_logs(table_name, record_id)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			// Indexes are not critical, keep going
			logger.L().Warnw("failed to create index", "error", err)
		}
	}

	return nil
}
