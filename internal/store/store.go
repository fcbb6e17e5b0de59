// Package store owns all persisted state: users, shops, products, orders,
// weekly plans, notifications and the delivery audit log.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/models"
)

// Auditor mirrors delivery audit rows into a secondary sink. Best effort:
// the store never fails a write because the mirror is down.
type Auditor interface {
	Index(ctx context.Context, row *models.NotificationLog) error
}

type Store struct {
	db     *sql.DB
	logger logger.Logger
	audit  Auditor
}

type Option func(*Store)

// WithAuditor attaches a best-effort audit mirror for notification logs.
func WithAuditor(a Auditor) Option {
	return func(s *Store) { s.audit = a }
}

func New(db *sql.DB, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// RunMigrations applies pending schema migrations.
func RunMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		databaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
