package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStorage handles persistent storage of payment settings in PostgreSQL
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(dbURL string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	storage := &PostgresStorage{
		db: db,
	}

	if err := storage.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("PostgreSQL settings storage initialized")

	return storage, nil
}

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS payment_settings (
		id INTEGER PRIMARY KEY,
		provider VARCHAR(32) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		api_key TEXT NOT NULL DEFAULT '',
		secret_key TEXT NOT NULL DEFAULT '',
		merchant_id TEXT NOT NULL DEFAULT '',
		merchant_salt TEXT NOT NULL DEFAULT '',
		base_url TEXT NOT NULL DEFAULT '',
		test_mode BOOLEAN NOT NULL DEFAULT TRUE,
		site_url TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// SavePaymentSettings inserts or replaces the active settings row
func (s *PostgresStorage) SavePaymentSettings(ctx context.Context, settings PaymentSettings) error {
	query := `
		INSERT INTO payment_settings (id, provider, is_active, api_key, secret_key, merchant_id, merchant_salt, base_url, test_mode, site_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			provider = EXCLUDED.provider,
			is_active = EXCLUDED.is_active,
			api_key = EXCLUDED.api_key,
			secret_key = EXCLUDED.secret_key,
			merchant_id = EXCLUDED.merchant_id,
			merchant_salt = EXCLUDED.merchant_salt,
			base_url = EXCLUDED.base_url,
			test_mode = EXCLUDED.test_mode,
			site_url = EXCLUDED.site_url,
			updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, settingsRowID,
		settings.Provider, settings.IsActive, settings.APIKey, settings.SecretKey,
		settings.MerchantID, settings.MerchantSalt, settings.BaseURL, settings.TestMode, settings.SiteURL)
	if err != nil {
		return fmt.Errorf("failed to save payment settings: %w", err)
	}

	return nil
}

// LoadPaymentSettings reads the latest persisted settings row
func (s *PostgresStorage) LoadPaymentSettings(ctx context.Context) (*PaymentSettings, error) {
	query := `
		SELECT provider, is_active, api_key, secret_key, merchant_id, merchant_salt, base_url, test_mode, site_url, updated_at
		FROM payment_settings
		WHERE id = $1
	`

	var settings PaymentSettings
	err := s.db.QueryRowContext(ctx, query, settingsRowID).Scan(
		&settings.Provider, &settings.IsActive, &settings.APIKey, &settings.SecretKey,
		&settings.MerchantID, &settings.MerchantSalt, &settings.BaseURL, &settings.TestMode,
		&settings.SiteURL, &settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load payment settings: %w", err)
	}

	return &settings, nil
}

// Close closes the database connection
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
