package sqlgen

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pgqlgate/pgqlgate/core/catalog"
	"github.com/pgqlgate/pgqlgate/core/errs"
)

// Queryer is the pgx connection-like surface the executor needs.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgx.CommandTag, error)
}

// Connection is the Relay-style result shape for a connection field:
// edges, pageInfo, and a separately-queried totalCount.
type Connection struct {
	Edges      []Edge                 `json:"edges"`
	PageInfo   PageInfo               `json:"pageInfo"`
	TotalCount int                    `json:"totalCount"`
}

type Edge struct {
	Node   map[string]interface{} `json:"node"`
	Cursor string                 `json:"cursor"`
}

type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor,omitempty"`
	EndCursor       string `json:"endCursor,omitempty"`
}

// ExecuteSelect runs plan and returns either a flat []map[string]interface{}
// (when plan.Connection is false) or a *Connection.
func ExecuteSelect(ctx context.Context, db Queryer, t *catalog.Table, columns []string, plan *SelectPlan, requestedLimit int) (interface{}, error) {
	rows, err := db.Query(ctx, plan.Data.SQL, plan.Data.Params...)
	if err != nil {
		return nil, errs.Mutation(err)
	}
	defer rows.Close()

	var projected []map[string]interface{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row, err := ProjectRow(t, columns, vals)
		if err != nil {
			return nil, err
		}
		projected = append(projected, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !plan.Connection {
		return projected, nil
	}

	hasExtra := requestedLimit > 0 && len(projected) > requestedLimit
	if hasExtra {
		projected = projected[:requestedLimit]
	}
	if plan.Reverse {
		reverseRows(projected)
	}

	var total int
	if err := db.QueryRow(ctx, plan.Count.SQL, plan.Count.Params...).Scan(&total); err != nil {
		return nil, err
	}

	edges := make([]Edge, len(projected))
	for i, row := range projected {
		edges[i] = Edge{Node: row, Cursor: encodeCursor(plan.OrderTerms, row)}
	}

	info := PageInfo{}
	if plan.Reverse {
		info.HasPreviousPage = hasExtra
	} else {
		info.HasNextPage = hasExtra
	}
	if len(edges) > 0 {
		info.StartCursor = edges[0].Cursor
		info.EndCursor = edges[len(edges)-1].Cursor
	}

	return &Connection{Edges: edges, PageInfo: info, TotalCount: total}, nil
}

func reverseRows(rows []map[string]interface{}) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
