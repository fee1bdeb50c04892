package cdc

import (
	"testing"

	"github.com/jackc/pglogrepl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationCacheSetAndGet(t *testing.T) {
	rc := newRelationCache()
	rc.set(&pglogrepl.RelationMessage{
		RelationID:   5,
		Namespace:    "public",
		RelationName: "orders",
		Columns: []*pglogrepl.RelationMessageColumn{
			{Name: "id"}, {Name: "total"},
		},
	})

	r, ok := rc.get(5)
	require.True(t, ok)
	assert.Equal(t, "public", r.Namespace)
	assert.Equal(t, "orders", r.Name)
	assert.Equal(t, []string{"id", "total"}, r.Columns)
}

func TestRelationCacheMiss(t *testing.T) {
	rc := newRelationCache()
	_, ok := rc.get(404)
	assert.False(t, ok)
}

func TestRelationCacheOverwrite(t *testing.T) {
	rc := newRelationCache()
	rc.set(&pglogrepl.RelationMessage{RelationID: 1, RelationName: "old"})
	rc.set(&pglogrepl.RelationMessage{RelationID: 1, RelationName: "new"})

	r, ok := rc.get(1)
	require.True(t, ok)
	assert.Equal(t, "new", r.Name)
}
