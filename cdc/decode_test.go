package cdc

import (
	"testing"
	"time"

	"github.com/jackc/pglogrepl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRelation(rel *relationCache, id uint32, namespace, name string, columns ...string) {
	cols := make([]*pglogrepl.RelationMessageColumn, len(columns))
	for i, c := range columns {
		cols[i] = &pglogrepl.RelationMessageColumn{Name: c}
	}
	rel.set(&pglogrepl.RelationMessage{
		RelationID:   id,
		Namespace:    namespace,
		RelationName: name,
		Columns:      cols,
	})
}

func textCol(s string) *pglogrepl.TupleDataColumn {
	return &pglogrepl.TupleDataColumn{DataType: 't', Data: []byte(s)}
}

func nullCol() *pglogrepl.TupleDataColumn {
	return &pglogrepl.TupleDataColumn{DataType: 'n'}
}

func unchangedCol() *pglogrepl.TupleDataColumn {
	return &pglogrepl.TupleDataColumn{DataType: 'u'}
}

func TestDecodeMessageRelationUpdatesCache(t *testing.T) {
	rel := newRelationCache()
	ev, err := decodeMessage(rel, &pglogrepl.RelationMessage{
		RelationID:   1,
		Namespace:    "public",
		RelationName: "users",
		Columns:      []*pglogrepl.RelationMessageColumn{{Name: "id"}},
	}, "", time.Time{})
	require.NoError(t, err)
	assert.Nil(t, ev)

	r, ok := rel.get(1)
	require.True(t, ok)
	assert.Equal(t, "users", r.Name)
}

func TestDecodeMessageBeginCommitProduceNoEvent(t *testing.T) {
	rel := newRelationCache()

	ev, err := decodeMessage(rel, &pglogrepl.BeginMessage{}, "", time.Time{})
	require.NoError(t, err)
	assert.Nil(t, ev)

	ev, err = decodeMessage(rel, &pglogrepl.CommitMessage{}, "", time.Time{})
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestDecodeMessageInsert(t *testing.T) {
	rel := newRelationCache()
	seedRelation(rel, 1, "public", "users", "id", "email")

	commitTime := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	ev, err := decodeMessage(rel, &pglogrepl.InsertMessage{
		RelationID: 1,
		Tuple: &pglogrepl.TupleData{
			Columns: []*pglogrepl.TupleDataColumn{textCol("7"), textCol("a@example.com")},
		},
	}, "0/ABC", commitTime)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, OpInsert, ev.Operation)
	assert.Equal(t, "public", ev.Schema)
	assert.Equal(t, "users", ev.Table)
	assert.Equal(t, "0/ABC", ev.LSN)
	assert.Equal(t, commitTime, ev.Timestamp)
	assert.Equal(t, "7", ev.Data["id"])
	assert.Equal(t, "a@example.com", ev.Data["email"])
}

func TestDecodeMessageInsertUnknownRelation(t *testing.T) {
	rel := newRelationCache()
	_, err := decodeMessage(rel, &pglogrepl.InsertMessage{RelationID: 99}, "", time.Time{})
	assert.Error(t, err)
}

func TestDecodeMessageUpdateWithOldTuple(t *testing.T) {
	rel := newRelationCache()
	seedRelation(rel, 2, "public", "users", "id", "email")

	ev, err := decodeMessage(rel, &pglogrepl.UpdateMessage{
		RelationID: 2,
		OldTuple: &pglogrepl.TupleData{
			Columns: []*pglogrepl.TupleDataColumn{textCol("7"), textCol("old@example.com")},
		},
		NewTuple: &pglogrepl.TupleData{
			Columns: []*pglogrepl.TupleDataColumn{textCol("7"), textCol("new@example.com")},
		},
	}, "", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, OpUpdate, ev.Operation)
	assert.Equal(t, "new@example.com", ev.Data["email"])
	assert.Equal(t, "new@example.com", ev.New["email"])
	assert.Equal(t, "old@example.com", ev.Old["email"])
}

func TestDecodeMessageUpdateWithoutOldTuple(t *testing.T) {
	rel := newRelationCache()
	seedRelation(rel, 2, "public", "users", "id", "email")

	ev, err := decodeMessage(rel, &pglogrepl.UpdateMessage{
		RelationID: 2,
		NewTuple: &pglogrepl.TupleData{
			Columns: []*pglogrepl.TupleDataColumn{textCol("7"), textCol("new@example.com")},
		},
	}, "", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Nil(t, ev.Old)
}

func TestDecodeMessageDelete(t *testing.T) {
	rel := newRelationCache()
	seedRelation(rel, 3, "public", "users", "id")

	ev, err := decodeMessage(rel, &pglogrepl.DeleteMessage{
		RelationID: 3,
		OldTuple: &pglogrepl.TupleData{
			Columns: []*pglogrepl.TupleDataColumn{textCol("7")},
		},
	}, "", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, OpDelete, ev.Operation)
	assert.Equal(t, "7", ev.Data["id"])
	assert.Equal(t, "7", ev.Old["id"])
}

func TestDecodeTupleNullAndUnchanged(t *testing.T) {
	r := relation{Columns: []string{"id", "email", "deleted_at"}}
	out := decodeTuple(r, &pglogrepl.TupleData{
		Columns: []*pglogrepl.TupleDataColumn{textCol("1"), nullCol(), unchangedCol()},
	})
	assert.Equal(t, "1", out["id"])
	val, isNullSet := out["email"]
	assert.True(t, isNullSet)
	assert.Nil(t, val)
	_, unchangedPresent := out["deleted_at"]
	assert.False(t, unchangedPresent)
}

func TestDecodeTupleNilTuple(t *testing.T) {
	r := relation{Columns: []string{"id"}}
	assert.Nil(t, decodeTuple(r, nil))
}
