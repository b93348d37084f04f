package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// settingsRowID is the primary key of the single active settings row
const settingsRowID = 1

// SQLiteStorage handles persistent storage of payment settings
type SQLiteStorage struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStorage) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				// 10ms, 20ms, 40ms ...
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	storage := &SQLiteStorage{
		db:   db,
		path: dbPath,
	}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("SQLite settings storage initialized at: %s", dbPath)
	return storage, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS payment_settings (
		id INTEGER PRIMARY KEY,
		provider TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 0,
		api_key TEXT NOT NULL DEFAULT '',
		secret_key TEXT NOT NULL DEFAULT '',
		merchant_id TEXT NOT NULL DEFAULT '',
		merchant_salt TEXT NOT NULL DEFAULT '',
		base_url TEXT NOT NULL DEFAULT '',
		test_mode INTEGER NOT NULL DEFAULT 1,
		site_url TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(query)
	return err
}

// SavePaymentSettings inserts or replaces the active settings row
func (s *SQLiteStorage) SavePaymentSettings(ctx context.Context, settings PaymentSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		query := `
		INSERT INTO payment_settings (id, provider, is_active, api_key, secret_key, merchant_id, merchant_salt, base_url, test_mode, site_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id)
		DO UPDATE SET
			provider = excluded.provider,
			is_active = excluded.is_active,
			api_key = excluded.api_key,
			secret_key = excluded.secret_key,
			merchant_id = excluded.merchant_id,
			merchant_salt = excluded.merchant_salt,
			base_url = excluded.base_url,
			test_mode = excluded.test_mode,
			site_url = excluded.site_url,
			updated_at = CURRENT_TIMESTAMP
		`

		_, err := s.db.ExecContext(ctx, query, settingsRowID,
			settings.Provider, settings.IsActive, settings.APIKey, settings.SecretKey,
			settings.MerchantID, settings.MerchantSalt, settings.BaseURL, settings.TestMode, settings.SiteURL)
		if err != nil {
			return fmt.Errorf("failed to save payment settings: %w", err)
		}
		return nil
	}, 3)
}

// LoadPaymentSettings reads the latest persisted settings row
func (s *SQLiteStorage) LoadPaymentSettings(ctx context.Context) (*PaymentSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings PaymentSettings
	err := s.retryOperation(func() error {
		query := `
		SELECT provider, is_active, api_key, secret_key, merchant_id, merchant_salt, base_url, test_mode, site_url, updated_at
		FROM payment_settings
		WHERE id = ?
		`

		err := s.db.QueryRowContext(ctx, query, settingsRowID).Scan(
			&settings.Provider, &settings.IsActive, &settings.APIKey, &settings.SecretKey,
			&settings.MerchantID, &settings.MerchantSalt, &settings.BaseURL, &settings.TestMode,
			&settings.SiteURL, &settings.UpdatedAt,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSettingsNotFound
			}
			return fmt.Errorf("failed to load payment settings: %w", err)
		}
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}

	return &settings, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
