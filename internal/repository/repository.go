package repository

import (
	"context"
	"fmt"

	"referral-contest-bot/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyAttributed = errors.New("referral already attributed")
	ErrDrawCompleted     = errors.New("winners already selected")
)

type Repository struct {
	db *sqlx.DB
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Transaction(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	err = t(tx)
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil {
			return errors.Wrapf(err, "rollback error: %v", txErr)
		}
		return err
	}
	return tx.Commit()
}

type Config struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func New(cfg Config) (*Repository, error) {
	url := cfg.GetDatabaseURL()
	db, err := sqlx.Connect("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger().Info("Connected to database successfully")

	return &Repository{db: db}, nil
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id BIGINT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		phone TEXT,
		referral_code TEXT UNIQUE NOT NULL,
		referral_count INT NOT NULL DEFAULT 0,
		eligible BOOLEAN NOT NULL DEFAULT FALSE,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS referrals (
		id BIGSERIAL PRIMARY KEY,
		referrer_id BIGINT NOT NULL REFERENCES users (telegram_id),
		referred_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (referrer_id, referred_id)
	)`,
	`CREATE TABLE IF NOT EXISTS pending_referrals (
		id BIGSERIAL PRIMARY KEY,
		referral_code TEXT NOT NULL,
		referrer_id BIGINT NOT NULL REFERENCES users (telegram_id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (referral_code, referrer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS contest_settings (
		id INT PRIMARY KEY,
		contest_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		winners_selected BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		admin_id BIGINT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		permissions TEXT NOT NULL DEFAULT 'full',
		added_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS winners (
		id BIGSERIAL PRIMARY KEY,
		draw_id UUID NOT NULL,
		user_id BIGINT NOT NULL REFERENCES users (telegram_id),
		prize TEXT NOT NULL,
		selected_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate bootstraps the schema. Every statement is idempotent, so it is
// safe to run on every start.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
