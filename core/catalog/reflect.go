package catalog

import (
	_ "embed"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

//go:embed sql/tables.sql
var tablesStmt string

//go:embed sql/columns.sql
var columnsStmt string

//go:embed sql/primary_keys.sql
var primaryKeysStmt string

//go:embed sql/foreign_keys.sql
var foreignKeysStmt string

//go:embed sql/enums.sql
var enumsStmt string

//go:embed sql/composites.sql
var compositesStmt string

//go:embed sql/domains.sql
var domainsStmt string

// Queryer is the slice of pgx's connection-like types the reflector needs.
// A *pgxpool.Pool, *pgx.Conn, and pgx.Tx all satisfy it, so reflection can
// run against the pool directly or inside a caller's transaction.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Reflect runs the fixed set of bulk metadata queries against schema and
// assembles a Catalog. N tables cost O(1) round trips — never one query per
// table, per spec.md §4.1's hard requirement.
func Reflect(ctx context.Context, db Queryer, schema string) (*Catalog, error) {
	tables, err := reflectTables(ctx, db, schema)
	if err != nil {
		return nil, fmt.Errorf("reflect tables: %w", err)
	}

	enums, err := reflectEnums(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reflect enums: %w", err)
	}

	composites, err := reflectComposites(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reflect composites: %w", err)
	}

	domains, err := reflectDomains(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reflect domains: %w", err)
	}

	cat := &Catalog{Schema: schema, Tables: tables, Enums: enums, Composites: composites, Domains: domains}

	if err := reflectColumns(ctx, db, schema, cat); err != nil {
		return nil, fmt.Errorf("reflect columns: %w", err)
	}
	if err := reflectPrimaryKeys(ctx, db, schema, cat); err != nil {
		return nil, fmt.Errorf("reflect primary keys: %w", err)
	}
	if err := reflectForeignKeys(ctx, db, schema, cat); err != nil {
		return nil, fmt.Errorf("reflect foreign keys: %w", err)
	}

	cat.Index()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func reflectTables(ctx context.Context, db Queryer, schema string) ([]Table, error) {
	rows, err := db.Query(ctx, tablesStmt, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Name, &t.IsView); err != nil {
			return nil, err
		}
		t.Schema = schema
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func reflectColumns(ctx context.Context, db Queryer, schema string, cat *Catalog) error {
	rows, err := db.Query(ctx, columnsStmt, schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	byTable := make(map[string][]Column, len(cat.Tables))
	for rows.Next() {
		var (
			tableName, colName, typeCategory, formatted, baseName, baseSchema, domainName string
			nullable, isArray                                                             bool
			ordinal                                                                        int
			arrayElemType, arrayElemSchema                                                *string
			arrayElemCategory                                                             string
		)
		if err := rows.Scan(&tableName, &colName, &ordinal, &nullable, &typeCategory,
			&formatted, &baseName, &baseSchema, &domainName, &isArray,
			&arrayElemType, &arrayElemSchema, &arrayElemCategory); err != nil {
			return err
		}

		col := Column{Name: colName, Nullable: nullable}
		elemName, elemSchema := baseName, baseSchema
		if isArray && arrayElemType != nil {
			elemName, elemSchema = *arrayElemType, *arrayElemSchema
		}

		// An array's own type_category is always 'b' (base) or 'A'; the
		// element's enum/composite-ness lives on the element type itself.
		category := typeCategory
		if isArray && arrayElemCategory != "" {
			category = arrayElemCategory
		}

		switch category {
		case "e":
			if ct, kind, ok := cat.ResolveCustomType(elemSchema, elemName); ok {
				ct.IsArray = isArray
				col.Type = ct
				col.OriginalType = kind
			}
		case "c":
			if ct, kind, ok := cat.ResolveCustomType(elemSchema, elemName); ok {
				ct.IsArray = isArray
				col.Type = ct
				col.OriginalType = kind
			}
		case "d":
			col.OriginalType = KindDomain
			col.DomainName = domainName
			base := resolveDomainBase(cat.Domains, baseSchema, domainName)
			col.Type = ColumnType{Scalar: base, IsArray: isArray}
		default:
			col.OriginalType = KindPlain
			col.Type = ColumnType{Scalar: pgScalar(elemName), IsArray: isArray}
		}

		byTable[tableName] = append(byTable[tableName], col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range cat.Tables {
		cat.Tables[i].Columns = byTable[cat.Tables[i].Name]
	}
	return nil
}

func resolveDomainBase(domains []DomainType, schema, name string) ScalarType {
	for _, d := range domains {
		if d.Name == name && (schema == "" || d.Schema == schema) {
			return d.Base
		}
	}
	return TUnknown
}

func reflectPrimaryKeys(ctx context.Context, db Queryer, schema string, cat *Catalog) error {
	rows, err := db.Query(ctx, primaryKeysStmt, schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	pks := make(map[string]map[string]bool)
	for rows.Next() {
		var table, col string
		if err := rows.Scan(&table, &col); err != nil {
			return err
		}
		if pks[table] == nil {
			pks[table] = make(map[string]bool)
		}
		pks[table][col] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for ti := range cat.Tables {
		t := &cat.Tables[ti]
		set := pks[t.Name]
		for ci := range t.Columns {
			if set[t.Columns[ci].Name] {
				t.Columns[ci].PrimaryKey = true
				t.Columns[ci].Nullable = false // a PK column is never nullable
			}
		}
	}
	return nil
}

func reflectForeignKeys(ctx context.Context, db Queryer, schema string, cat *Catalog) error {
	rows, err := db.Query(ctx, foreignKeysStmt, schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	byTable := make(map[string][]ForeignKey)
	for rows.Next() {
		var conName, table, col, refSchema, refTable, refCol string
		if err := rows.Scan(&conName, &table, &col, &refSchema, &refTable, &refCol); err != nil {
			return err
		}
		byTable[table] = append(byTable[table], ForeignKey{
			Column: col, RefSchema: refSchema, RefTable: refTable, RefColumn: refCol,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range cat.Tables {
		cat.Tables[i].ForeignKeys = byTable[cat.Tables[i].Name]
	}
	return nil
}

func reflectEnums(ctx context.Context, db Queryer) ([]EnumType, error) {
	rows, err := db.Query(ctx, enumsStmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enums []EnumType
	byName := map[string]*EnumType{}
	for rows.Next() {
		var schema, name, label string
		if err := rows.Scan(&schema, &name, &label); err != nil {
			return nil, err
		}
		key := schema + "." + name
		e, ok := byName[key]
		if !ok {
			enums = append(enums, EnumType{Schema: schema, Name: name})
			e = &enums[len(enums)-1]
			byName[key] = e
		}
		e.Labels = append(e.Labels, label)
	}
	return enums, rows.Err()
}

func reflectComposites(ctx context.Context, db Queryer) ([]CompositeType, error) {
	rows, err := db.Query(ctx, compositesStmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var composites []CompositeType
	byName := map[string]*CompositeType{}
	for rows.Next() {
		var schema, name, attrName, attrTypeName, attrTypeSchema string
		var ordinal int
		var nullable, isArray bool
		if err := rows.Scan(&schema, &name, &attrName, &ordinal, &nullable, &attrTypeName, &attrTypeSchema, &isArray); err != nil {
			return nil, err
		}
		key := schema + "." + name
		c, ok := byName[key]
		if !ok {
			composites = append(composites, CompositeType{Schema: schema, Name: name})
			c = &composites[len(composites)-1]
			byName[key] = c
		}
		c.Attributes = append(c.Attributes, CompositeAttr{
			Name:     attrName,
			Nullable: nullable,
			Type:     ColumnType{Scalar: pgScalar(attrTypeName), IsArray: isArray},
		})
	}
	return composites, rows.Err()
}

func reflectDomains(ctx context.Context, db Queryer) ([]DomainType, error) {
	rows, err := db.Query(ctx, domainsStmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []DomainType
	for rows.Next() {
		var schema, name, baseName string
		if err := rows.Scan(&schema, &name, &baseName); err != nil {
			return nil, err
		}
		domains = append(domains, DomainType{Schema: schema, Name: name, Base: pgScalar(baseName)})
	}
	return domains, rows.Err()
}
