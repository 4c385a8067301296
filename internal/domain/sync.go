package domain

import "time"

type SyncType string

const (
	SyncOrders   SyncType = "orders"
	SyncProducts SyncType = "products"
)

type SyncStatus string

const (
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
)

// SyncRun is the audit record of one pull sync. It moves from running to
// completed or failed exactly once; a new sync creates a new run.
type SyncRun struct {
	ID          string     `db:"id" json:"id"`
	StoreID     string     `db:"store_id" json:"storeId"`
	SyncType    SyncType   `db:"sync_type" json:"syncType"`
	Status      SyncStatus `db:"status" json:"status"`
	RecordCount int        `db:"record_count" json:"recordCount"`
	ErrorMsg    *string    `db:"error_msg" json:"errorMsg"`
	StartedAt   time.Time  `db:"started_at" json:"startedAt"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt"`
}

// Complete moves a running run to completed.
func (r *SyncRun) Complete(count int, at time.Time) {
	r.Status = SyncCompleted
	r.RecordCount = count
	r.CompletedAt = &at
}

// Fail moves a running run to failed. count keeps the upserts already committed.
func (r *SyncRun) Fail(count int, err error, at time.Time) {
	msg := err.Error()
	r.Status = SyncFailed
	r.RecordCount = count
	r.ErrorMsg = &msg
	r.CompletedAt = &at
}

// StoreSyncResult is the outcome of syncing orders and products together.
type StoreSyncResult struct {
	Orders      int      `json:"orders"`
	Products    int      `json:"products"`
	OrdersRun   *SyncRun `json:"-"`
	ProductsRun *SyncRun `json:"-"`
}
