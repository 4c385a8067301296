package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRun_Transitions(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	run := &SyncRun{Status: SyncRunning}
	run.Complete(42, at)
	assert.Equal(t, SyncCompleted, run.Status)
	assert.Equal(t, 42, run.RecordCount)
	require.NotNil(t, run.CompletedAt)
	assert.Equal(t, at, *run.CompletedAt)
	assert.Nil(t, run.ErrorMsg)

	failed := &SyncRun{Status: SyncRunning}
	failed.Fail(3, errors.New("boom"), at)
	assert.Equal(t, SyncFailed, failed.Status)
	assert.Equal(t, 3, failed.RecordCount)
	require.NotNil(t, failed.ErrorMsg)
	assert.Equal(t, "boom", *failed.ErrorMsg)
}

func TestLineItems_ValueScan(t *testing.T) {
	pid := int64(7)
	items := LineItems{{Title: "Serum", Price: decimal.RequireFromString("19.99"), Quantity: 2, ProductID: &pid}}

	v, err := items.Value()
	require.NoError(t, err)

	var back LineItems
	require.NoError(t, back.Scan([]byte(v.(string))))
	require.Len(t, back, 1)
	assert.Equal(t, "Serum", back[0].Title)
	assert.True(t, back[0].Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(7), *back[0].ProductID)

	var empty LineItems
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestJSON_NullHandling(t *testing.T) {
	var j JSON
	v, err := j.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	out, err := json.Marshal(struct {
		Addr JSON `json:"addr"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"addr":null}`, string(out))

	require.NoError(t, j.Scan([]byte(`{"city":"Austin"}`)))
	v, err = j.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"city":"Austin"}`, v)
}

func TestStore_CredentialsNotSerialized(t *testing.T) {
	s := Store{ID: "s1", ShopifyDomain: "a.myshopify.com", ShopifyToken: "shpat_secret"}
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "shpat_secret")
	assert.Equal(t, ShopifyCredentials{Domain: "a.myshopify.com", AccessToken: "shpat_secret"}, s.Credentials())
}
