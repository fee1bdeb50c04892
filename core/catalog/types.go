// Package catalog reflects a live PostgreSQL schema into an in-memory model:
// tables, views, columns, keys, and the user-defined enum/composite/domain
// type catalog. It is the gateway's only source of truth about the shape of
// the database — there is no independent data model layered on top of it.
package catalog

import "fmt"

// ColumnKind distinguishes the handful of ways a column's declared type maps
// back to a user-defined catalog entry.
type ColumnKind string

const (
	KindPlain     ColumnKind = "plain"
	KindEnum      ColumnKind = "enum"
	KindComposite ColumnKind = "composite"
	KindDomain    ColumnKind = "domain"
)

// ScalarType is the logical (non-array) base type of a column.
type ScalarType string

const (
	TInt2        ScalarType = "int2"
	TInt4        ScalarType = "int4"
	TInt8        ScalarType = "int8"
	TSerial      ScalarType = "serial"
	TReal        ScalarType = "real"
	TDouble      ScalarType = "double"
	TNumeric     ScalarType = "numeric"
	TBoolean     ScalarType = "boolean"
	TUUID        ScalarType = "uuid"
	TText        ScalarType = "text"
	TDate        ScalarType = "date"
	TTime        ScalarType = "time"
	TTimeTz      ScalarType = "timetz"
	TTimestamp   ScalarType = "timestamp"
	TTimestampTz ScalarType = "timestamptz"
	TInterval    ScalarType = "interval"
	TJSON        ScalarType = "json"
	TJSONB       ScalarType = "jsonb"
	TBytea       ScalarType = "bytea"
	TXML         ScalarType = "xml"
	TInet        ScalarType = "inet"
	TCidr        ScalarType = "cidr"
	TMacaddr     ScalarType = "macaddr"
	TMacaddr8    ScalarType = "macaddr8"
	TBit         ScalarType = "bit"
	TVarbit      ScalarType = "varbit"
	TEnum        ScalarType = "enum"
	TComposite   ScalarType = "composite"
	TUnknown     ScalarType = "unknown"
)

// ColumnType is the full logical type of a column: a scalar or an array of
// one, plus (for enum/composite) the name of the custom type it resolves to.
type ColumnType struct {
	Scalar     ScalarType
	IsArray    bool
	CustomName string // schema-qualified name, set when Scalar is TEnum/TComposite
}

func (t ColumnType) String() string {
	s := string(t.Scalar)
	if t.CustomName != "" {
		s = t.CustomName
	}
	if t.IsArray {
		return s + "[]"
	}
	return s
}

// Column describes one column of a Table.
type Column struct {
	Name         string
	Type         ColumnType
	Nullable     bool
	PrimaryKey   bool
	OriginalType ColumnKind // enum/composite/domain/plain, per the domain-resolution rule
	DomainName   string     // set when OriginalType == KindDomain
}

// ForeignKey is a single-column reference. Composite foreign keys are
// represented as parallel ForeignKey entries sharing RefTable.
type ForeignKey struct {
	Column    string
	RefSchema string
	RefTable  string
	RefColumn string
}

// Table is a relation: a base table or a view. Views participate in reads
// only — the generator never emits mutation fields for them.
type Table struct {
	Schema      string
	Name        string
	IsView      bool
	Columns     []Column
	ForeignKeys []ForeignKey
}

// PrimaryKey returns the ordered primary-key columns of the table.
func (t Table) PrimaryKey() []Column {
	var pk []Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// EnumType is a user-defined PostgreSQL enum.
type EnumType struct {
	Schema string
	Name   string
	Labels []string
}

// QualifiedName returns "schema.name".
func (e EnumType) QualifiedName() string { return e.Schema + "." + e.Name }

// CompositeAttr is one attribute of a CompositeType, in declaration order.
type CompositeAttr struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// CompositeType is a user-defined PostgreSQL composite (row) type.
type CompositeType struct {
	Schema     string
	Name       string
	Attributes []CompositeAttr
}

func (c CompositeType) QualifiedName() string { return c.Schema + "." + c.Name }

// DomainType is an alias from a user-defined name to a base scalar type,
// resolved transparently while typing columns; the domain name survives in
// Column.DomainName for callers that care.
type DomainType struct {
	Schema string
	Name   string
	Base   ScalarType
}

// Catalog is an immutable snapshot of the reflected relational model plus
// the custom-type catalog. Two Catalog values built from the same database
// state at the same moment are expected to compare equal field-by-field;
// nothing here is ever mutated in place once built.
type Catalog struct {
	Schema     string
	Tables     []Table
	Enums      []EnumType
	Composites []CompositeType
	Domains    []DomainType

	byName map[string]*Table
}

// Index builds lookup acceleration structures. Called once after the
// bulk-query results are assembled; the returned Catalog is safe to share
// across goroutines without further synchronization since nothing mutates it
// afterwards.
func (c *Catalog) Index() {
	c.byName = make(map[string]*Table, len(c.Tables))
	for i := range c.Tables {
		c.byName[c.Tables[i].Name] = &c.Tables[i]
	}
}

// Table looks up a table (or view) by unqualified name.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// ReverseForeignKeys returns every (table, foreign key) pair across the
// whole catalog whose ForeignKey.RefTable equals name — the input to the
// generator's reverse-relationship fields. The result is sorted by
// referencing-table name so it is independent of map/slice iteration order,
// satisfying the determinism invariant in spec.md §3.
func (c *Catalog) ReverseForeignKeys(name string) []ReverseRef {
	var out []ReverseRef
	for _, t := range c.Tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == name {
				out = append(out, ReverseRef{Table: t, FK: fk})
			}
		}
	}
	sortReverseRefs(out)
	return out
}

// ReverseRef pairs a referencing table with the FK that points at the
// table under consideration.
type ReverseRef struct {
	Table Table
	FK    ForeignKey
}

func sortReverseRefs(refs []ReverseRef) {
	// insertion sort: reverse-FK lists are small (rarely more than a
	// handful of referencing tables), and this keeps the dependency on
	// sort.Slice's closure allocation out of every ReverseForeignKeys call.
	for i := 1; i < len(refs); i++ {
		j := i
		for j > 0 && less(refs[j], refs[j-1]) {
			refs[j], refs[j-1] = refs[j-1], refs[j]
			j--
		}
	}
}

func less(a, b ReverseRef) bool {
	if a.Table.Name != b.Table.Name {
		return a.Table.Name < b.Table.Name
	}
	return a.FK.Column < b.FK.Column
}

// ResolveCustomType matches a type name against the enum/composite catalog,
// first by schema-qualified name, then by unqualified name, per spec.md
// §4.1's custom-type detection rule.
func (c *Catalog) ResolveCustomType(schema, name string) (ColumnType, ColumnKind, bool) {
	qualified := schema + "." + name
	for _, e := range c.Enums {
		if e.QualifiedName() == qualified {
			return ColumnType{Scalar: TEnum, CustomName: e.QualifiedName()}, KindEnum, true
		}
	}
	for _, co := range c.Composites {
		if co.QualifiedName() == qualified {
			return ColumnType{Scalar: TComposite, CustomName: co.QualifiedName()}, KindComposite, true
		}
	}
	for _, e := range c.Enums {
		if e.Name == name {
			return ColumnType{Scalar: TEnum, CustomName: e.QualifiedName()}, KindEnum, true
		}
	}
	for _, co := range c.Composites {
		if co.Name == name {
			return ColumnType{Scalar: TComposite, CustomName: co.QualifiedName()}, KindComposite, true
		}
	}
	return ColumnType{}, "", false
}

// Enum looks up an enum type by schema-qualified or unqualified name.
func (c *Catalog) Enum(name string) (EnumType, bool) {
	for _, e := range c.Enums {
		if e.QualifiedName() == name || e.Name == name {
			return e, true
		}
	}
	return EnumType{}, false
}

// Composite looks up a composite type by schema-qualified or unqualified name.
func (c *Catalog) Composite(name string) (CompositeType, bool) {
	for _, co := range c.Composites {
		if co.QualifiedName() == name || co.Name == name {
			return co, true
		}
	}
	return CompositeType{}, false
}

// Validate reports name collisions between a table and a custom type, which
// spec.md §4.3 requires the generator to treat as an error rather than
// silently shadow one or the other.
func (c *Catalog) Validate() error {
	names := make(map[string]string, len(c.Tables))
	for _, t := range c.Tables {
		names[t.Name] = "table"
	}
	for _, e := range c.Enums {
		if kind, ok := names[e.Name]; ok {
			return fmt.Errorf("name collision: enum %q collides with %s %q", e.Name, kind, e.Name)
		}
	}
	for _, co := range c.Composites {
		if kind, ok := names[co.Name]; ok {
			return fmt.Errorf("name collision: composite %q collides with %s %q", co.Name, kind, co.Name)
		}
	}
	return nil
}
