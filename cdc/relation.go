package cdc

import "github.com/jackc/pglogrepl"

// relation is the decoder's cache entry for one RELATION message: enough to
// turn subsequent tuple data into name-keyed column values.
type relation struct {
	Namespace string
	Name      string
	Columns   []string
}

// relationCache maps a pgoutput relation ID to its decoded shape. RELATION
// messages arrive before any INSERT/UPDATE/DELETE that references them;
// decoding a tuple for an unknown relation ID is logged and skipped rather
// than emitted, per spec.md §4.6.
type relationCache struct {
	byID map[uint32]relation
}

func newRelationCache() *relationCache {
	return &relationCache{byID: map[uint32]relation{}}
}

func (c *relationCache) set(msg *pglogrepl.RelationMessage) {
	cols := make([]string, len(msg.Columns))
	for i, col := range msg.Columns {
		cols[i] = col.Name
	}
	c.byID[msg.RelationID] = relation{
		Namespace: msg.Namespace,
		Name:      msg.RelationName,
		Columns:   cols,
	}
}

func (c *relationCache) get(id uint32) (relation, bool) {
	r, ok := c.byID[id]
	return r, ok
}
