package serv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgqlgate/pgqlgate/cdc"
)

func TestHubAdapterTranslatesEventFields(t *testing.T) {
	hub := cdc.NewHub()
	adapter := newHubAdapter(hub)

	out, unsubscribe := adapter.Subscribe("users")
	defer unsubscribe()

	ts := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	hub.Publish(cdc.Event{
		Operation: cdc.OpUpdate,
		Schema:    "public",
		Table:     "users",
		Timestamp: ts,
		LSN:       "0/1A2B",
		Data:      map[string]interface{}{"id": 1},
		Old:       map[string]interface{}{"email": "old@example.com"},
		New:       map[string]interface{}{"email": "new@example.com"},
	})

	select {
	case ev := <-out:
		assert.Equal(t, "UPDATE", ev.Operation)
		assert.Equal(t, "public", ev.Schema)
		assert.Equal(t, "users", ev.Table)
		assert.Equal(t, ts, ev.Timestamp)
		assert.Equal(t, "0/1A2B", ev.LSN)
		assert.Equal(t, map[string]interface{}{"id": 1}, ev.Data)
		assert.Equal(t, map[string]interface{}{"email": "old@example.com"}, ev.Old)
		assert.Equal(t, map[string]interface{}{"email": "new@example.com"}, ev.New)
		assert.NoError(t, ev.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for translated event")
	}
}

func TestHubAdapterIgnoresOtherTables(t *testing.T) {
	hub := cdc.NewHub()
	adapter := newHubAdapter(hub)

	out, unsubscribe := adapter.Subscribe("users")
	defer unsubscribe()

	hub.Publish(cdc.Event{Operation: cdc.OpInsert, Table: "posts"})

	select {
	case ev := <-out:
		t.Fatalf("unexpected event delivered for unsubscribed table: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubAdapterUnsubscribeClosesChannel(t *testing.T) {
	hub := cdc.NewHub()
	adapter := newHubAdapter(hub)

	out, unsubscribe := adapter.Subscribe("users")
	unsubscribe()

	_, ok := <-out
	require.False(t, ok, "channel should be closed after unsubscribe")
}
