package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

// SelectPlan is the rendered pair of statements (data + count) needed to
// answer one read-contract field resolution.
type SelectPlan struct {
	Data       Compiled
	Count      Compiled
	OrderTerms []OrderTerm
	Reverse    bool // `last`/`before` pagination walks the ordering backwards
	Connection bool
}

// CompileSelect renders the SELECT (and, for connections, the paired COUNT)
// for one table-rooted read, per the read contract in spec.md §4.4. columns
// is the flat set of scalar columns the caller actually requested.
func CompileSelect(cat *catalog.Catalog, table string, args map[string]interface{}, columns []string, connection bool) (*SelectPlan, error) {
	t, ok := cat.Table(table)
	if !ok {
		return nil, fmt.Errorf("sqlgen: unknown table %q", table)
	}

	terms, err := parseOrderBy(args["orderBy"])
	if err != nil {
		return nil, err
	}

	reverse, limit, err := paginationParams(args)
	if err != nil {
		return nil, err
	}

	ctx := newContext(cat, table)
	where, err := ctx.RenderWhere(t, asMap(args["where"]), asList(args["or"]))
	if err != nil {
		return nil, err
	}

	cursorClause := "TRUE"
	if after, ok := args["after"].(string); ok && after != "" {
		tuple, err := decodeCursor(after)
		if err != nil {
			return nil, err
		}
		cursorClause = ctx.renderCursorPredicate(tuple, !reverse)
	} else if before, ok := args["before"].(string); ok && before != "" {
		tuple, err := decodeCursor(before)
		if err != nil {
			return nil, err
		}
		cursorClause = ctx.renderCursorPredicate(tuple, reverse)
	}

	cols := columns
	if len(cols) == 0 {
		for _, c := range t.Columns {
			cols = append(cols, c.Name)
		}
	}
	var quoted []string
	for _, c := range cols {
		quoted = append(quoted, ctx.quoteIdent(c))
	}

	ctx.w.WriteString("SELECT ")
	ctx.w.WriteString(strings.Join(quoted, ", "))
	ctx.w.WriteString(" FROM ")
	ctx.w.WriteString(ctx.quoteIdent(t.Name))
	ctx.w.WriteString(" WHERE (")
	ctx.w.WriteString(where)
	ctx.w.WriteString(") AND (")
	ctx.w.WriteString(cursorClause)
	ctx.w.WriteString(")")

	orderClause := ctx.renderOrderBy(t, terms, reverse)
	if orderClause != "" {
		ctx.w.WriteString(" ORDER BY ")
		ctx.w.WriteString(orderClause)
	}

	fetchLimit := limit
	if connection && limit > 0 {
		fetchLimit = limit + 1 // one extra row to compute hasNextPage/hasPreviousPage
	}
	if fetchLimit > 0 {
		fmt.Fprintf(ctx.w, " LIMIT %d", fetchLimit)
	}
	if off, ok := args["offset"].(int); ok && off > 0 {
		fmt.Fprintf(ctx.w, " OFFSET %d", off)
	}

	plan := &SelectPlan{
		Data:       ctx.result(),
		OrderTerms: terms,
		Reverse:    reverse,
		Connection: connection,
	}

	if connection {
		cctx := newContext(cat, table)
		cwhere, err := cctx.RenderWhere(t, asMap(args["where"]), asList(args["or"]))
		if err != nil {
			return nil, err
		}
		cctx.w.WriteString("SELECT COUNT(*) FROM ")
		cctx.w.WriteString(cctx.quoteIdent(t.Name))
		cctx.w.WriteString(" WHERE ")
		cctx.w.WriteString(cwhere)
		plan.Count = cctx.result()
	}

	return plan, nil
}

func paginationParams(args map[string]interface{}) (reverse bool, limit int, err error) {
	if v, ok := intArg(args["first"]); ok {
		return false, v, nil
	}
	if v, ok := intArg(args["last"]); ok {
		return true, v, nil
	}
	if v, ok := intArg(args["limit"]); ok {
		return false, v, nil
	}
	return false, 0, nil
}

func intArg(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asList(v interface{}) []interface{} {
	l, _ := v.([]interface{})
	return l
}
