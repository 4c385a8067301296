package domain

import "time"

type ChangeAction string

const (
	ChangeUpsert  ChangeAction = "upsert"
	ChangeArchive ChangeAction = "archive"
)

// ChangeEvent describes one record change applied from a webhook delivery.
type ChangeEvent struct {
	Action    ChangeAction `json:"action"`
	Entity    string       `json:"entity"`
	ID        string       `json:"id"`
	StoreID   string       `json:"storeId"`
	Topic     string       `json:"topic"`
	Timestamp time.Time    `json:"timestamp"`
}
