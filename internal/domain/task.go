package domain

import "time"

type Task struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Priority    *string   `db:"priority" json:"priority"`
	Owner       *string   `db:"owner" json:"owner"`
	Column      string    `db:"board_column" json:"column"`
	Impact      *string   `db:"impact" json:"impact"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// TaskPatch carries a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Owner       *string `json:"owner"`
	Column      *string `json:"column"`
	Impact      *string `json:"impact"`
}

const DefaultTaskColumn = "backlog"
