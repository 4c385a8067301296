package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"mers/internal/domain"
)

type SyncRunStore struct {
	db *sqlx.DB
}

func NewSyncRunStore(db *sqlx.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

func (s *SyncRunStore) Create(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO sync_runs (id, store_id, sync_type, status, record_count, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		run.ID, run.StoreID, run.SyncType, run.Status, run.RecordCount, run.StartedAt,
	)
	return err
}

// Finish records the terminal state. Only a running row is updated, so a
// run can leave running at most once.
func (s *SyncRunStore) Finish(ctx context.Context, run *domain.SyncRun) error {
	query := `
		UPDATE sync_runs
		SET status = $2, record_count = $3, error_msg = $4, completed_at = $5
		WHERE id = $1 AND status = 'running'`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		run.ID, run.Status, run.RecordCount, run.ErrorMsg, run.CompletedAt,
	)
	return err
}

// LastCompletedAt returns the completion time of the latest completed run of
// the given type, or nil when there is none.
func (s *SyncRunStore) LastCompletedAt(ctx context.Context, storeID string, syncType domain.SyncType) (*time.Time, error) {
	query := `
		SELECT completed_at
		FROM sync_runs
		WHERE store_id = $1 AND sync_type = $2 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT 1`

	var at time.Time
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &at, query, storeID, syncType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

func (s *SyncRunStore) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	var run domain.SyncRun
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &run, `
		SELECT id, store_id, sync_type, status, record_count, error_msg, started_at, completed_at
		FROM sync_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
