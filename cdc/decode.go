package cdc

import (
	"fmt"
	"time"

	"github.com/jackc/pglogrepl"
)

// decodeTuple turns a pgoutput TupleData into a name-keyed map using rel's
// column order. Tag rules per spec.md §4.6: 'n' = null, 't' = text
// (length-prefixed UTF-8), 'u' = unchanged (UPDATE only, old-tuple side) —
// an unchanged column is simply omitted from the result since its value
// wasn't transmitted.
func decodeTuple(rel relation, tuple *pglogrepl.TupleData) map[string]interface{} {
	if tuple == nil {
		return nil
	}
	out := make(map[string]interface{}, len(tuple.Columns))
	for i, col := range tuple.Columns {
		if i >= len(rel.Columns) {
			break
		}
		name := rel.Columns[i]
		switch col.DataType {
		case 'n':
			out[name] = nil
		case 'u':
			// unchanged: value not transmitted, leave unset.
		case 't':
			out[name] = string(col.Data)
		}
	}
	return out
}

// decodeMessage turns one pgoutput logical message into zero or one Event.
// BEGIN/RELATION/COMMIT produce no event themselves; RELATION updates rel
// for subsequent tuples.
func decodeMessage(rel *relationCache, msg pglogrepl.Message, commitLSN string, commitTime time.Time) (*Event, error) {
	switch m := msg.(type) {
	case *pglogrepl.RelationMessage:
		rel.set(m)
		return nil, nil

	case *pglogrepl.BeginMessage:
		return nil, nil

	case *pglogrepl.CommitMessage:
		return nil, nil

	case *pglogrepl.InsertMessage:
		r, ok := rel.get(m.RelationID)
		if !ok {
			return nil, fmt.Errorf("cdc: insert for unknown relation %d", m.RelationID)
		}
		return &Event{
			Operation: OpInsert,
			Schema:    r.Namespace,
			Table:     r.Name,
			Timestamp: commitTime,
			LSN:       commitLSN,
			Data:      decodeTuple(r, m.Tuple),
		}, nil

	case *pglogrepl.UpdateMessage:
		r, ok := rel.get(m.RelationID)
		if !ok {
			return nil, fmt.Errorf("cdc: update for unknown relation %d", m.RelationID)
		}
		newData := decodeTuple(r, m.NewTuple)
		var oldData map[string]interface{}
		if m.OldTuple != nil {
			oldData = decodeTuple(r, m.OldTuple)
		}
		return &Event{
			Operation: OpUpdate,
			Schema:    r.Namespace,
			Table:     r.Name,
			Timestamp: commitTime,
			LSN:       commitLSN,
			Data:      newData,
			Old:       oldData,
			New:       newData,
		}, nil

	case *pglogrepl.DeleteMessage:
		r, ok := rel.get(m.RelationID)
		if !ok {
			return nil, fmt.Errorf("cdc: delete for unknown relation %d", m.RelationID)
		}
		var oldData map[string]interface{}
		if m.OldTuple != nil {
			oldData = decodeTuple(r, m.OldTuple)
		}
		return &Event{
			Operation: OpDelete,
			Schema:    r.Namespace,
			Table:     r.Name,
			Timestamp: commitTime,
			LSN:       commitLSN,
			Data:      oldData,
			Old:       oldData,
		}, nil

	default:
		return nil, nil
	}
}
