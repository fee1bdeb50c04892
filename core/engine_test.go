package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgqlgate/pgqlgate/core/qlang"
)

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"app_user"`, quoteIdent("app_user"))
	assert.Equal(t, `"weird""role"`, quoteIdent(`weird"role`))
}

func TestLeafColumns(t *testing.T) {
	fields := []qlang.Field{
		{Name: "id"},
		{Name: "email"},
		{Name: "posts", Fields: []qlang.Field{{Name: "title"}}},
	}
	assert.Equal(t, []string{"id", "email"}, leafColumns(fields))
}

func TestLeafColumnsNoneSelected(t *testing.T) {
	assert.Empty(t, leafColumns(nil))
}

func TestConnectionColumnsExtractsNodeFields(t *testing.T) {
	fields := []qlang.Field{
		{Name: "edges", Fields: []qlang.Field{
			{Name: "node", Fields: []qlang.Field{{Name: "id"}, {Name: "email"}}},
			{Name: "cursor"},
		}},
		{Name: "pageInfo"},
	}
	assert.Equal(t, []string{"id", "email"}, connectionColumns(fields))
}

func TestConnectionColumnsMissingEdges(t *testing.T) {
	assert.Nil(t, connectionColumns([]qlang.Field{{Name: "pageInfo"}}))
}

func TestNodeFields(t *testing.T) {
	nodeSel := []qlang.Field{{Name: "id"}, {Name: "posts", Fields: []qlang.Field{{Name: "title"}}}}
	fields := []qlang.Field{
		{Name: "edges", Fields: []qlang.Field{
			{Name: "node", Fields: nodeSel},
		}},
	}
	assert.Equal(t, nodeSel, nodeFields(fields))
}

func TestDistinctColumnValuesDedupsAndDropsNil(t *testing.T) {
	rows := []map[string]interface{}{
		{"user_id": 1},
		{"user_id": 2},
		{"user_id": 1},
		{"user_id": nil},
		{"other": 9},
	}
	assert.Equal(t, []interface{}{1, 2}, distinctColumnValues(rows, "user_id"))
}

func TestContains(t *testing.T) {
	assert.True(t, contains([]string{"a", "b"}, "b"))
	assert.False(t, contains([]string{"a", "b"}, "c"))
	assert.False(t, contains(nil, "c"))
}

func TestConnectionLimitPrecedence(t *testing.T) {
	limit, ok := connectionLimit(map[string]interface{}{"first": 10, "last": 5})
	require.True(t, ok)
	assert.Equal(t, 10, limit)

	limit, ok = connectionLimit(map[string]interface{}{"limit": 25})
	require.True(t, ok)
	assert.Equal(t, 25, limit)

	_, ok = connectionLimit(map[string]interface{}{})
	assert.False(t, ok)
}

func TestConnectionLimitNumericKinds(t *testing.T) {
	limit, ok := connectionLimit(map[string]interface{}{"first": int64(7)})
	require.True(t, ok)
	assert.Equal(t, 7, limit)

	limit, ok = connectionLimit(map[string]interface{}{"first": float64(3)})
	require.True(t, ok)
	assert.Equal(t, 3, limit)
}

func TestChangeEventPayloadShape(t *testing.T) {
	ts := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	ev := ChangeEvent{
		Operation: "UPDATE",
		Table:     "users",
		Schema:    "public",
		Timestamp: ts,
		LSN:       "0/1",
		Data:      map[string]interface{}{"id": 1, "email": "new@example.com"},
		Old:       map[string]interface{}{"email": "old@example.com"},
		New:       map[string]interface{}{"email": "new@example.com"},
	}

	payload := changeEventPayload("users_changes", ev)
	body, ok := payload["users_changes"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "UPDATE", body["operation"])
	assert.Equal(t, "users", body["table"])
	assert.Equal(t, "public", body["schema"])
	assert.Equal(t, "0/1", body["lsn"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1, data["id"])
	assert.Equal(t, map[string]interface{}{"email": "old@example.com"}, data["old"])
	assert.Equal(t, map[string]interface{}{"email": "new@example.com"}, data["new"])
	assert.Nil(t, body["error"])
}

func TestChangeEventPayloadCarriesError(t *testing.T) {
	ev := ChangeEvent{Operation: "INSERT", Table: "users", Err: errors.New("decode failed")}
	payload := changeEventPayload("users_changes", ev)
	body := payload["users_changes"].(map[string]interface{})
	assert.Equal(t, "decode failed", body["error"])
}
