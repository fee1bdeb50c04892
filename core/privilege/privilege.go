// Package privilege computes what a database role may see and do, and
// trims a reflected catalog down to that role's visible surface. It never
// substitutes for PostgreSQL's own grant/RLS enforcement: every query C4/C6
// eventually issue still runs under a session-scoped role switch, so a bug
// here can only ever under-expose the schema, never over-grant access to
// the database itself.
package privilege

import (
	_ "embed"
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

//go:embed sql/table_grants.sql
var tableGrantsStmt string

//go:embed sql/column_grants.sql
var columnGrantsStmt string

//go:embed sql/role_policies.sql
var rolePoliciesStmt string

//go:embed sql/role_super.sql
var roleSuperStmt string

// Op is a single CRUD privilege.
type Op string

const (
	OpSelect Op = "SELECT"
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// TablePrivileges is the set of operations a role holds on a table, plus
// the subset of columns readable under SELECT (nil means "not restricted
// at the column level", i.e. the grant was table-wide).
type TablePrivileges struct {
	Ops            map[Op]bool
	SelectColumns  map[string]bool
	HasRLS         bool
}

func (t TablePrivileges) can(op Op) bool { return t.Ops != nil && t.Ops[op] }

func (t TablePrivileges) columnVisible(col string) bool {
	if t.SelectColumns == nil {
		return true
	}
	return t.SelectColumns[col]
}

// RolePrivileges is the full per-table privilege set computed for one role
// against one schema. Superuser is true when the role should see the
// catalog unfiltered.
type RolePrivileges struct {
	Role       string
	Superuser  bool
	Tables     map[string]TablePrivileges
}

// Queryer is the connection-like subset of pgx needed to run the bulk
// privilege queries.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Reflect computes RolePrivileges for role against schema using a fixed,
// small number of bulk queries — never one query per table.
func Reflect(ctx context.Context, db Queryer, schema, role string) (*RolePrivileges, error) {
	rp := &RolePrivileges{Role: role, Tables: map[string]TablePrivileges{}}

	var super bool
	err := db.QueryRow(ctx, roleSuperStmt, role).Scan(&super)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	rp.Superuser = super
	if rp.Superuser {
		return rp, nil
	}

	rows, err := db.Query(ctx, tableGrantsStmt, schema, role)
	if err != nil {
		return nil, err
	}
	func() {
		defer rows.Close()
		for rows.Next() {
			var table, privType string
			if err = rows.Scan(&table, &privType); err != nil {
				return
			}
			tp := rp.Tables[table]
			if tp.Ops == nil {
				tp.Ops = map[Op]bool{}
			}
			tp.Ops[Op(privType)] = true
			rp.Tables[table] = tp
		}
		if e := rows.Err(); e != nil {
			err = e
		}
	}()
	if err != nil {
		return nil, err
	}

	rows, err = db.Query(ctx, columnGrantsStmt, schema, role)
	if err != nil {
		return nil, err
	}
	func() {
		defer rows.Close()
		for rows.Next() {
			var table, column, privType string
			if err = rows.Scan(&table, &column, &privType); err != nil {
				return
			}
			if privType != string(OpSelect) {
				continue
			}
			tp := rp.Tables[table]
			if tp.SelectColumns == nil {
				tp.SelectColumns = map[string]bool{}
			}
			tp.SelectColumns[column] = true
			rp.Tables[table] = tp
		}
		if e := rows.Err(); e != nil {
			err = e
		}
	}()
	if err != nil {
		return nil, err
	}

	rows, err = db.Query(ctx, rolePoliciesStmt, schema)
	if err != nil {
		return nil, err
	}
	func() {
		defer rows.Close()
		for rows.Next() {
			var table, policy string
			if err = rows.Scan(&table, &policy); err != nil {
				return
			}
			tp := rp.Tables[table]
			tp.HasRLS = true
			rp.Tables[table] = tp
		}
		if e := rows.Err(); e != nil {
			err = e
		}
	}()
	if err != nil {
		return nil, err
	}

	return rp, nil
}

// Filter trims cat down to what role may see. Tables with no SELECT grant
// are dropped entirely; on the tables kept, columns outside a column-scoped
// grant are dropped too. An unknown role (no grants found
// anywhere, not superuser) yields a catalog with zero tables.
func Filter(cat *catalog.Catalog, rp *RolePrivileges) *catalog.Catalog {
	if rp.Superuser {
		return cat
	}

	out := &catalog.Catalog{
		Schema:     cat.Schema,
		Enums:      cat.Enums,
		Composites: cat.Composites,
		Domains:    cat.Domains,
	}

	for _, t := range cat.Tables {
		tp, ok := rp.Tables[t.Name]
		if !ok || !tp.can(OpSelect) {
			continue
		}

		filtered := t
		var cols []catalog.Column
		for _, c := range t.Columns {
			if tp.columnVisible(c.Name) {
				cols = append(cols, c)
			}
		}
		filtered.Columns = cols
		out.Tables = append(out.Tables, filtered)
	}

	out.Index()
	return out
}

// Writable reports whether role may perform op on table, for use by the
// schema generator when deciding whether to emit a mutation field.
func (rp *RolePrivileges) Writable(table string, op Op) bool {
	if rp.Superuser {
		return true
	}
	tp, ok := rp.Tables[table]
	return ok && tp.can(op)
}
