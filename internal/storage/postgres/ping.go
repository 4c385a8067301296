package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Pinger struct {
	db *sqlx.DB
}

func NewPinger(db *sqlx.DB) *Pinger {
	return &Pinger{db: db}
}

// Ping performs a SELECT 1 round trip.
func (p *Pinger) Ping(ctx context.Context) error {
	var one int
	return p.db.GetContext(ctx, &one, `SELECT 1`)
}
