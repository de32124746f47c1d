// Package postgres persists the operator-facing activity log: every significant
// pipeline step, warning and error, reviewable after the fact.
package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

type ActivityLogStore struct {
	db *sqlx.DB
}

func NewActivityLogStore(db *sqlx.DB) *ActivityLogStore {
	return &ActivityLogStore{db: db}
}

func (s *ActivityLogStore) Append(ctx context.Context, entry domain.ActivityEntry) error {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	query := `
		INSERT INTO activity_log (at, level, component, message)
		VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query, entry.At, entry.Level, entry.Component, entry.Message)
	return err
}

// Recent returns the newest entries, newest first.
func (s *ActivityLogStore) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	query := `
		SELECT id, at, level, component, message
		FROM activity_log
		ORDER BY at DESC, id DESC
		LIMIT $1`

	var entries []domain.ActivityEntry
	if err := s.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
