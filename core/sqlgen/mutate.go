package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pgqlgate/pgqlgate/core/catalog"
	"github.com/pgqlgate/pgqlgate/core/errs"
)

// CompileCreate renders an INSERT ... RETURNING * for table from a
// T_CreateInput-shaped map, per spec.md §4.5's create contract: required
// NOT-NULL timestamp columns with no value supplied are auto-filled with
// requestStart; columns absent from input are omitted (never sent as NULL).
func CompileCreate(cat *catalog.Catalog, table string, input map[string]interface{}, requestStart time.Time) (Compiled, error) {
	t, ok := cat.Table(table)
	if !ok {
		return Compiled{}, fmt.Errorf("sqlgen: unknown table %q", table)
	}

	ctx := newContext(cat, table)

	values := map[string]interface{}{}
	for k, v := range input {
		if v != nil {
			values[k] = v
		}
	}

	hasNonPK := false
	for _, c := range t.Columns {
		if _, present := values[c.Name]; present && !c.PrimaryKey {
			hasNonPK = true
		}
	}

	for _, c := range t.Columns {
		if _, present := values[c.Name]; present {
			continue
		}
		if !c.Nullable && isTimestamp(c.Type.Scalar) {
			values[c.Name] = requestStart
		}
	}

	if !hasNonPK {
		return Compiled{}, errs.Argument("create %s: at least one non-null, non-primary-key field is required", table)
	}

	var cols, placeholders []string
	for _, c := range t.Columns {
		v, present := values[c.Name]
		if !present {
			continue
		}
		cols = append(cols, ctx.quoteIdent(c.Name))
		placeholders = append(placeholders, ctx.bind(v))
	}

	ctx.w.WriteString("INSERT INTO ")
	ctx.w.WriteString(ctx.quoteIdent(t.Name))
	ctx.w.WriteString(" (")
	ctx.w.WriteString(strings.Join(cols, ", "))
	ctx.w.WriteString(") VALUES (")
	ctx.w.WriteString(strings.Join(placeholders, ", "))
	ctx.w.WriteString(") RETURNING *")

	return ctx.result(), nil
}

// CompileUpdate renders an UPDATE ... WHERE <full PK> RETURNING * from a
// T_UpdateInput-shaped map. Every primary-key column must be present in
// input; at least one non-PK column must also be set.
func CompileUpdate(cat *catalog.Catalog, table string, input map[string]interface{}) (Compiled, error) {
	t, ok := cat.Table(table)
	if !ok {
		return Compiled{}, fmt.Errorf("sqlgen: unknown table %q", table)
	}

	pks := t.PrimaryKey()
	for _, pk := range pks {
		if input[pk.Name] == nil {
			return Compiled{}, errs.Argument("update %s: primary key column %q is required", table, pk.Name)
		}
	}

	ctx := newContext(cat, table)

	var sets []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			continue
		}
		v, present := input[c.Name]
		if !present {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", ctx.quoteIdent(c.Name), ctx.bind(v)))
	}
	if len(sets) == 0 {
		return Compiled{}, errs.Argument("update %s: at least one non-primary-key field must be set", table)
	}

	var wheres []string
	for _, pk := range pks {
		wheres = append(wheres, fmt.Sprintf("%s = %s", ctx.quoteIdent(pk.Name), ctx.bind(input[pk.Name])))
	}

	ctx.w.WriteString("UPDATE ")
	ctx.w.WriteString(ctx.quoteIdent(t.Name))
	ctx.w.WriteString(" SET ")
	ctx.w.WriteString(strings.Join(sets, ", "))
	ctx.w.WriteString(" WHERE ")
	ctx.w.WriteString(strings.Join(wheres, " AND "))
	ctx.w.WriteString(" RETURNING *")

	return ctx.result(), nil
}

// CompileDelete renders a DELETE ... WHERE <PK or synthesized id>
// RETURNING * from a T_DeleteInput-shaped map.
func CompileDelete(cat *catalog.Catalog, table string, input map[string]interface{}) (Compiled, error) {
	t, ok := cat.Table(table)
	if !ok {
		return Compiled{}, fmt.Errorf("sqlgen: unknown table %q", table)
	}

	ctx := newContext(cat, table)
	pks := t.PrimaryKey()

	var wheres []string
	if len(pks) == 0 {
		id, ok := input["id"]
		if !ok {
			return Compiled{}, errs.Argument("delete %s: id is required", table)
		}
		wheres = append(wheres, fmt.Sprintf("%s = %s", ctx.quoteIdent("id"), ctx.bind(id)))
	} else {
		for _, pk := range pks {
			v, ok := input[pk.Name]
			if !ok {
				return Compiled{}, errs.Argument("delete %s: primary key column %q is required", table, pk.Name)
			}
			wheres = append(wheres, fmt.Sprintf("%s = %s", ctx.quoteIdent(pk.Name), ctx.bind(v)))
		}
	}

	ctx.w.WriteString("DELETE FROM ")
	ctx.w.WriteString(ctx.quoteIdent(t.Name))
	ctx.w.WriteString(" WHERE ")
	ctx.w.WriteString(strings.Join(wheres, " AND "))
	ctx.w.WriteString(" RETURNING *")

	return ctx.result(), nil
}

func isTimestamp(s catalog.ScalarType) bool {
	switch s {
	case catalog.TDate, catalog.TTime, catalog.TTimeTz, catalog.TTimestamp, catalog.TTimestampTz:
		return true
	default:
		return false
	}
}

// ExecuteMutation runs a compiled create/update/delete statement and
// returns the single returned row, translating constraint violations and
// zero-row results into the domain error taxonomy from spec.md §7.
func ExecuteMutation(ctx context.Context, db Queryer, t *catalog.Table, compiled Compiled, notFoundOnZeroRows bool) (map[string]interface{}, error) {
	classify := func(err error) error {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return errs.Conflict(pgErr.ConstraintName, err)
			case "23503":
				return errs.Conflict(pgErr.ConstraintName, err)
			}
		}
		return errs.Mutation(err)
	}

	rows, err := db.Query(ctx, compiled.SQL, compiled.Params...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var columns []string
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, classify(err)
		}
		if notFoundOnZeroRows {
			return nil, errs.NotFound(t.Name)
		}
		return nil, errs.Mutation(fmt.Errorf("no rows returned"))
	}

	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, string(fd.Name))
	}
	vals, err := rows.Values()
	if err != nil {
		return nil, err
	}

	return ProjectRow(t, columns, vals)
}
