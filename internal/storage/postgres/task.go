package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"mers/internal/domain"
)

const taskColumns = `id, user_id, title, description, priority, owner, board_column, impact, created_at, updated_at`

type TaskStore struct {
	db *sqlx.DB
}

func NewTaskStore(db *sqlx.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) List(ctx context.Context, userID string) ([]domain.Task, error) {
	out := []domain.Task{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &out,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TaskStore) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, description, priority, owner, board_column, impact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Priority, t.Owner, t.Column, t.Impact,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// Update applies the non-nil fields of patch to the user's task.
func (s *TaskStore) Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	query := `
		UPDATE tasks SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			priority = COALESCE($5, priority),
			owner = COALESCE($6, owner),
			board_column = COALESCE($7, board_column),
			impact = COALESCE($8, impact),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns

	var t domain.Task
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &t, query,
		id, userID, patch.Title, patch.Description, patch.Priority, patch.Owner, patch.Column, patch.Impact,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TaskStore) Delete(ctx context.Context, userID, id string) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
