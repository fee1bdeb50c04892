// Package core wires the reflector, privilege filter, schema generator,
// and SQL compiler/executor into the single public entrypoint the ambient
// HTTP/WebSocket layer calls.
package core

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"github.com/pgqlgate/pgqlgate/core/catalog"
	"github.com/pgqlgate/pgqlgate/core/errs"
	"github.com/pgqlgate/pgqlgate/core/gqlschema"
	"github.com/pgqlgate/pgqlgate/core/privilege"
	"github.com/pgqlgate/pgqlgate/core/qlang"
	"github.com/pgqlgate/pgqlgate/core/sqlgen"
	"github.com/pgqlgate/pgqlgate/ws"
)

// schemaCacheSize bounds how many (schema, role) generated-schema pairs
// stay resident; a 2Q cache resists thrashing from a one-off role probing
// many tables in a burst.
const schemaCacheSize = 256

// Hub is the CDC fan-out surface the engine subscribes against; a narrow
// interface (rather than a direct dependency on package cdc) so the engine
// can be built and tested without a live replication connection.
type Hub interface {
	Subscribe(table string) (<-chan ChangeEvent, func())
}

// ChangeEvent mirrors cdc.Event without creating an import cycle between
// core and cdc (cdc has no dependency on core).
type ChangeEvent struct {
	Operation string
	Table     string
	Schema    string
	Timestamp time.Time
	LSN       string
	Data      map[string]interface{}
	Old       map[string]interface{}
	New       map[string]interface{}
	Err       error
}

// Engine is the gateway's public facade: one Engine serves every request
// against one database.
type Engine struct {
	pool *pgxpool.Pool
	cfg  Config
	log  *zap.SugaredLogger

	catalogCache *catalog.Cache
	privCache    *privilege.Cache
	schemaCache  *lru.TwoQueueCache[string, *ast.Schema]

	hub Hub
}

// New builds an Engine against pool. cfg.AllowedSchema must already be set.
// hub may be nil when subscriptions are disabled.
func New(pool *pgxpool.Pool, cfg Config, log *zap.SugaredLogger, hub Hub) (*Engine, error) {
	catCache, err := catalog.NewCache(pool, cfg.schemaTTL())
	if err != nil {
		return nil, err
	}
	privCache, err := privilege.NewCache(pool, cfg.rolePrivilegesTTL())
	if err != nil {
		return nil, err
	}
	schemaCache, err := lru.New2Q[string, *ast.Schema](schemaCacheSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		pool:         pool,
		cfg:          cfg,
		log:          log,
		catalogCache: catCache,
		privCache:    privCache,
		schemaCache:  schemaCache,
		hub:          hub,
	}, nil
}

// Execute resolves one GraphQL request. role is the value of the
// X-Database-Role header, if any; when role-based security is enabled the
// generated schema and every SQL statement issued are scoped to it.
func (e *Engine) Execute(ctx context.Context, query string, variables map[string]interface{}, opName, role string) Result {
	requestStart := time.Now()

	cat, err := e.catalogCache.Get(ctx, e.cfg.AllowedSchema)
	if err != nil {
		return errorResult(errs.Schema(err))
	}

	var priv *privilege.RolePrivileges
	if e.cfg.Security.RoleBasedEnabled && role != "" {
		priv, err = e.privCache.Get(ctx, e.cfg.AllowedSchema, role)
		if err != nil {
			return errorResult(errs.Schema(err))
		}
	}

	schema, filtered, err := e.schemaFor(cat, priv, role)
	if err != nil {
		return errorResult(errs.Schema(err))
	}

	op, err := qlang.Parse(schema, query, opName, variables)
	if err != nil {
		return errorResult(errs.Argument("%s", err))
	}

	route, ok := gqlschema.Routes(filtered)[op.Field]
	if !ok {
		return errorResult(errs.NotFound(op.Field))
	}

	conn, err := e.acquire(ctx, role)
	if err != nil {
		return errorResult(errs.Mutation(err))
	}
	defer conn.release(ctx)

	data, err := e.dispatch(ctx, conn.tx, filtered, route, op, requestStart)
	if err != nil {
		conn.rollback = true
		return errorResult(err)
	}
	return Result{Data: map[string]interface{}{op.Alias: data}}
}

// schemaFor returns the (possibly filtered) catalog and its generated
// schema for role, generating and caching it on first use. The privilege
// filter runs on every call; a schema cache hit skips only the GraphQL
// builder — the (schema, role) pair is the cache key.
func (e *Engine) schemaFor(cat *catalog.Catalog, priv *privilege.RolePrivileges, role string) (*ast.Schema, *catalog.Catalog, error) {
	key := fmt.Sprintf("%s\x00%s", cat.Schema, role)

	filtered := cat
	if priv != nil {
		filtered = privilege.Filter(cat, priv)
	}

	if s, ok := e.schemaCache.Get(key); ok {
		return s, filtered, nil
	}

	schema, err := gqlschema.Generate(filtered, priv)
	if err != nil {
		return nil, nil, err
	}
	e.schemaCache.Add(key, schema)
	return schema, filtered, nil
}

// dispatch compiles and executes op against tx according to route.Kind,
// returning the value to place under the operation's response alias.
func (e *Engine) dispatch(ctx context.Context, tx pgx.Tx, cat *catalog.Catalog, route gqlschema.Route, op *qlang.Operation, requestStart time.Time) (interface{}, error) {
	t, ok := cat.Table(route.Table)
	if !ok {
		return nil, errs.NotFound(route.Table)
	}

	switch route.Kind {
	case gqlschema.RouteList:
		cols := leafColumns(op.Fields)
		plan, err := sqlgen.CompileSelect(cat, route.Table, op.Args, cols, false)
		if err != nil {
			return nil, errs.Argument("%s", err)
		}
		result, err := sqlgen.ExecuteSelect(ctx, tx, t, cols, plan, 0)
		if err != nil {
			return nil, err
		}
		rows, _ := result.([]map[string]interface{})
		if err := e.resolveRelations(ctx, tx, cat, route.Table, rows, op.Fields); err != nil {
			return nil, err
		}
		return rows, nil

	case gqlschema.RouteConnection:
		limit, _ := connectionLimit(op.Args)
		cols := connectionColumns(op.Fields)
		plan, err := sqlgen.CompileSelect(cat, route.Table, op.Args, cols, true)
		if err != nil {
			return nil, errs.Argument("%s", err)
		}
		result, err := sqlgen.ExecuteSelect(ctx, tx, t, cols, plan, limit)
		if err != nil {
			return nil, err
		}
		conn, ok := result.(*sqlgen.Connection)
		if ok {
			nodes := make([]map[string]interface{}, len(conn.Edges))
			for i := range conn.Edges {
				nodes[i] = conn.Edges[i].Node
			}
			if err := e.resolveRelations(ctx, tx, cat, route.Table, nodes, nodeFields(op.Fields)); err != nil {
				return nil, err
			}
		}
		return result, nil

	case gqlschema.RouteCreate:
		input, _ := op.Args["input"].(map[string]interface{})
		compiled, err := sqlgen.CompileCreate(cat, route.Table, input, requestStart)
		if err != nil {
			return nil, err
		}
		return sqlgen.ExecuteMutation(ctx, tx, t, compiled, false)

	case gqlschema.RouteCreateMany:
		items, _ := op.Args["input"].([]interface{})
		out := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			input, _ := item.(map[string]interface{})
			compiled, err := sqlgen.CompileCreate(cat, route.Table, input, requestStart)
			if err != nil {
				return nil, err
			}
			row, err := sqlgen.ExecuteMutation(ctx, tx, t, compiled, false)
			if err != nil {
				return nil, err
			}
			out = append(out, row)
		}
		return out, nil

	case gqlschema.RouteCreateWithRelations:
		input, _ := op.Args["input"].(map[string]interface{})
		return sqlgen.CreateWithRelations(ctx, tx, cat, route.Table, input, requestStart)

	case gqlschema.RouteUpdate:
		input, _ := op.Args["input"].(map[string]interface{})
		compiled, err := sqlgen.CompileUpdate(cat, route.Table, input)
		if err != nil {
			return nil, err
		}
		return sqlgen.ExecuteMutation(ctx, tx, t, compiled, true)

	case gqlschema.RouteDelete:
		input, _ := op.Args["input"].(map[string]interface{})
		compiled, err := sqlgen.CompileDelete(cat, route.Table, input)
		if err != nil {
			return nil, err
		}
		return sqlgen.ExecuteMutation(ctx, tx, t, compiled, true)

	default:
		return nil, fmt.Errorf("core: unsupported route kind %q for %q", route.Kind, op.Field)
	}
}

// leafColumns returns the scalar (non-relationship) field names requested
// directly under the root selection.
func leafColumns(fields []qlang.Field) []string {
	var out []string
	for _, f := range fields {
		if len(f.Fields) == 0 {
			out = append(out, f.Name)
		}
	}
	return out
}

// connectionColumns extracts the scalar fields requested under a Relay
// `edges { node { ... } }` selection.
func connectionColumns(fields []qlang.Field) []string {
	for _, f := range fields {
		if f.Name == "edges" {
			for _, ef := range f.Fields {
				if ef.Name == "node" {
					return leafColumns(ef.Fields)
				}
			}
		}
	}
	return nil
}

// nodeFields returns the selection under `edges { node { ... } }`, the
// scope resolveRelations walks for a connection field.
func nodeFields(fields []qlang.Field) []qlang.Field {
	for _, f := range fields {
		if f.Name == "edges" {
			for _, ef := range f.Fields {
				if ef.Name == "node" {
					return ef.Fields
				}
			}
		}
	}
	return nil
}

// resolveRelations fills in one level of forward/reverse relation fields
// requested alongside a table's scalar columns. Each relation field costs
// exactly one additional batched query (an `IN` lookup keyed by the values
// already present in rows), never one query per row.
func (e *Engine) resolveRelations(ctx context.Context, tx pgx.Tx, cat *catalog.Catalog, table string, rows []map[string]interface{}, fields []qlang.Field) error {
	if len(rows) == 0 {
		return nil
	}

	byName := map[string]gqlschema.RelationField{}
	for _, rf := range gqlschema.RelationFields(cat, table) {
		byName[rf.FieldName] = rf
	}

	for _, f := range fields {
		if len(f.Fields) == 0 {
			continue
		}
		rf, ok := byName[f.Name]
		if !ok {
			continue
		}

		values := distinctColumnValues(rows, rf.OwnColumn)
		if len(values) == 0 {
			continue
		}

		related, ok := cat.Table(rf.RelatedTable)
		if !ok {
			continue
		}
		cols := leafColumns(f.Fields)
		if len(cols) == 0 {
			for _, c := range related.Columns {
				cols = append(cols, c.Name)
			}
		}
		if !contains(cols, rf.RelatedColumn) {
			cols = append(cols, rf.RelatedColumn)
		}

		args := map[string]interface{}{
			"where": map[string]interface{}{
				rf.RelatedColumn: map[string]interface{}{"in": values},
			},
		}
		plan, err := sqlgen.CompileSelect(cat, rf.RelatedTable, args, cols, false)
		if err != nil {
			return errs.Argument("%s", err)
		}
		result, err := sqlgen.ExecuteSelect(ctx, tx, related, cols, plan, 0)
		if err != nil {
			return err
		}
		relatedRows, _ := result.([]map[string]interface{})

		switch rf.Kind {
		case gqlschema.RelationForward:
			byKey := map[interface{}]map[string]interface{}{}
			for _, rr := range relatedRows {
				byKey[rr[rf.RelatedColumn]] = rr
			}
			for _, row := range rows {
				row[f.Name] = byKey[row[rf.OwnColumn]]
			}
		case gqlschema.RelationReverse:
			byKey := map[interface{}][]map[string]interface{}{}
			for _, rr := range relatedRows {
				k := rr[rf.RelatedColumn]
				byKey[k] = append(byKey[k], rr)
			}
			for _, row := range rows {
				row[f.Name] = byKey[row[rf.OwnColumn]]
			}
		}
	}
	return nil
}

func distinctColumnValues(rows []map[string]interface{}, column string) []interface{} {
	seen := map[interface{}]bool{}
	var out []interface{}
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func connectionLimit(args map[string]interface{}) (int, bool) {
	for _, k := range []string{"first", "last", "limit"} {
		switch v := args[k].(type) {
		case int:
			return v, true
		case int64:
			return int(v), true
		case float64:
			return int(v), true
		}
	}
	return 0, false
}

// Subscribe adapts a table-rooted subscription operation into the ws
// package's Executor contract, bridging cdc fan-out events into the
// client's stream.
func (e *Engine) Subscribe(ctx context.Context, query string, variables map[string]interface{}, opName string) (<-chan ws.Payload, error) {
	if e.hub == nil {
		return nil, fmt.Errorf("core: subscriptions are disabled")
	}

	cat, err := e.catalogCache.Get(ctx, e.cfg.AllowedSchema)
	if err != nil {
		return nil, err
	}
	schema, filtered, err := e.schemaFor(cat, nil, "")
	if err != nil {
		return nil, err
	}
	op, err := qlang.Parse(schema, query, opName, variables)
	if err != nil {
		return nil, err
	}
	route, ok := gqlschema.Routes(filtered)[op.Field]
	if !ok || route.Kind != gqlschema.RouteSubscription {
		return nil, fmt.Errorf("core: %q is not a subscribable field", op.Field)
	}

	evs, unsubscribe := e.hub.Subscribe(route.Table)
	out := make(chan ws.Payload, 16)
	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evs:
				if !ok {
					return
				}
				out <- ws.Payload{Data: changeEventPayload(op.Alias, ev)}
			}
		}
	}()
	return out, nil
}

// changeEventPayload builds a T_ChangeEvent value per spec.md §4.3: `data`
// mirrors the row, carrying `old`/`new` self-references for UPDATE payloads.
func changeEventPayload(alias string, ev ChangeEvent) map[string]interface{} {
	data := map[string]interface{}{}
	for k, v := range ev.Data {
		data[k] = v
	}
	if ev.Old != nil {
		data["old"] = ev.Old
	}
	if ev.New != nil {
		data["new"] = ev.New
	}

	var errMsg interface{}
	if ev.Err != nil {
		errMsg = ev.Err.Error()
	}

	return map[string]interface{}{
		alias: map[string]interface{}{
			"operation": ev.Operation,
			"table":     ev.Table,
			"schema":    ev.Schema,
			"timestamp": ev.Timestamp,
			"lsn":       ev.LSN,
			"data":      data,
			"error":     errMsg,
		},
	}
}

// txConn scopes one request to a single pooled connection and transaction,
// issuing the session-scoped role switch spec.md §4.2 requires so pooled
// connections never leak an elevated role to the next request.
type txConn struct {
	conn     *pgxpool.Conn
	tx       pgx.Tx
	role     string
	rollback bool
}

func (e *Engine) acquire(ctx context.Context, role string) (*txConn, error) {
	pc, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	if role != "" {
		if _, err := pc.Exec(ctx, fmt.Sprintf("SET ROLE %s", quoteIdent(role))); err != nil {
			pc.Release()
			return nil, err
		}
	}

	tx, err := pc.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		if role != "" {
			_, _ = pc.Exec(ctx, "RESET ROLE")
		}
		pc.Release()
		return nil, err
	}

	return &txConn{conn: pc, tx: tx, role: role}, nil
}

func (c *txConn) release(ctx context.Context) {
	if c.rollback {
		_ = c.tx.Rollback(ctx)
	} else if err := c.tx.Commit(ctx); err != nil {
		_ = c.tx.Rollback(ctx)
	}
	if c.role != "" {
		_, _ = c.conn.Exec(ctx, "RESET ROLE")
	}
	c.conn.Release()
}

// quoteIdent double-quotes role for use in SET ROLE, which does not accept
// a bind parameter.
func quoteIdent(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for _, r := range s {
		if r == '"' {
			out = append(out, '"', '"')
			continue
		}
		out = append(out, string(r)...)
	}
	out = append(out, '"')
	return string(out)
}
