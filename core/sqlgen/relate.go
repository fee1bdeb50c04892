package sqlgen

import (
	"context"
	"time"

	"github.com/pgqlgate/pgqlgate/core/catalog"
	"github.com/pgqlgate/pgqlgate/core/errs"
)

// CreateWithRelations executes the relationship-create mutation: the base
// row, any `<table>_connect` foreign-key references resolved against an
// already-existing row, any nested `ref_create` rows created first so their
// generated keys can be wired into the base row's FK columns, and any
// `child_createMany` rows created afterward with their FK pointed back at
// the base row. All of it runs inside the caller-supplied transaction so a
// failure at any step rolls the whole mutation back.
func CreateWithRelations(ctx context.Context, db Queryer, cat *catalog.Catalog, table string, input map[string]interface{}, requestStart time.Time) (map[string]interface{}, error) {
	t, ok := cat.Table(table)
	if !ok {
		return nil, errs.Argument("unknown table %q", table)
	}

	base := map[string]interface{}{}
	for k, v := range input {
		base[k] = v
	}

	for _, fk := range t.ForeignKeys {
		connectKey := fk.RefTable + "_connect"
		if connect, ok := input[connectKey].(map[string]interface{}); ok {
			base[fk.Column] = connect[fk.RefColumn]
			delete(base, connectKey)
			continue
		}
		if nested, ok := input[fk.RefTable+"_create"].(map[string]interface{}); ok {
			created, err := createNested(ctx, db, cat, fk.RefTable, nested, requestStart)
			if err != nil {
				return nil, err
			}
			base[fk.Column] = created[fk.RefColumn]
			delete(base, fk.RefTable+"_create")
		}
	}

	compiled, err := CompileCreate(cat, table, base, requestStart)
	if err != nil {
		return nil, err
	}
	row, err := ExecuteMutation(ctx, db, t, compiled, false)
	if err != nil {
		return nil, err
	}

	for _, rev := range cat.ReverseForeignKeys(table) {
		raw, ok := input[reverseFieldInputKey(rev.Table.Name)].([]interface{})
		if !ok {
			continue
		}
		for _, item := range raw {
			child, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			child[rev.FK.Column] = row[rev.FK.RefColumn]
			if _, err := createNested(ctx, db, cat, rev.Table.Name, child, requestStart); err != nil {
				return nil, err
			}
		}
	}

	return row, nil
}

func createNested(ctx context.Context, db Queryer, cat *catalog.Catalog, table string, input map[string]interface{}, requestStart time.Time) (map[string]interface{}, error) {
	t, ok := cat.Table(table)
	if !ok {
		return nil, errs.Argument("unknown table %q", table)
	}
	compiled, err := CompileCreate(cat, table, input, requestStart)
	if err != nil {
		return nil, err
	}
	return ExecuteMutation(ctx, db, t, compiled, false)
}

func reverseFieldInputKey(referencingTable string) string {
	return "child_" + referencingTable
}
