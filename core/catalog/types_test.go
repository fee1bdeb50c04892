package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	cat := &Catalog{
		Schema: "public",
		Tables: []Table{
			{
				Schema: "public",
				Name:   "users",
				Columns: []Column{
					{Name: "id", Type: ColumnType{Scalar: TInt8}, PrimaryKey: true},
					{Name: "name", Type: ColumnType{Scalar: TText}},
				},
			},
			{
				Schema: "public",
				Name:   "posts",
				Columns: []Column{
					{Name: "id", Type: ColumnType{Scalar: TInt8}, PrimaryKey: true},
					{Name: "user_id", Type: ColumnType{Scalar: TInt8}},
					{Name: "title", Type: ColumnType{Scalar: TText}},
				},
				ForeignKeys: []ForeignKey{
					{Column: "user_id", RefSchema: "public", RefTable: "users", RefColumn: "id"},
				},
			},
			{
				Schema: "public",
				Name:   "comments",
				Columns: []Column{
					{Name: "id", Type: ColumnType{Scalar: TInt8}, PrimaryKey: true},
					{Name: "post_id", Type: ColumnType{Scalar: TInt8}},
				},
				ForeignKeys: []ForeignKey{
					{Column: "post_id", RefSchema: "public", RefTable: "posts", RefColumn: "id"},
				},
			},
		},
		Enums: []EnumType{
			{Schema: "public", Name: "status", Labels: []string{"active", "inactive"}},
		},
	}
	cat.Index()
	return cat
}

func TestTablePrimaryKey(t *testing.T) {
	cat := testCatalog()
	tbl, ok := cat.Table("posts")
	require.True(t, ok)
	pk := tbl.PrimaryKey()
	require.Len(t, pk, 1)
	assert.Equal(t, "id", pk[0].Name)
}

func TestTableColumn(t *testing.T) {
	cat := testCatalog()
	tbl, _ := cat.Table("users")
	col, ok := tbl.Column("name")
	require.True(t, ok)
	assert.Equal(t, TText, col.Type.Scalar)

	_, ok = tbl.Column("nope")
	assert.False(t, ok)
}

func TestCatalogTableLookup(t *testing.T) {
	cat := testCatalog()
	_, ok := cat.Table("missing")
	assert.False(t, ok)
}

func TestReverseForeignKeys(t *testing.T) {
	cat := testCatalog()

	refs := cat.ReverseForeignKeys("users")
	require.Len(t, refs, 1)
	assert.Equal(t, "posts", refs[0].Table.Name)
	assert.Equal(t, "user_id", refs[0].FK.Column)

	// A table referenced by nothing has no reverse keys.
	assert.Empty(t, cat.ReverseForeignKeys("comments"))
}

func TestReverseForeignKeysSortedDeterministically(t *testing.T) {
	cat := &Catalog{
		Tables: []Table{
			{Name: "orgs"},
			{Name: "zeta", ForeignKeys: []ForeignKey{{Column: "org_id", RefTable: "orgs", RefColumn: "id"}}},
			{Name: "alpha", ForeignKeys: []ForeignKey{{Column: "org_id", RefTable: "orgs", RefColumn: "id"}}},
		},
	}
	cat.Index()

	refs := cat.ReverseForeignKeys("orgs")
	require.Len(t, refs, 2)
	assert.Equal(t, "alpha", refs[0].Table.Name)
	assert.Equal(t, "zeta", refs[1].Table.Name)
}

func TestResolveCustomTypeEnum(t *testing.T) {
	cat := testCatalog()

	ct, kind, ok := cat.ResolveCustomType("public", "status")
	require.True(t, ok)
	assert.Equal(t, KindEnum, kind)
	assert.Equal(t, TEnum, ct.Scalar)
	assert.Equal(t, "public.status", ct.CustomName)

	_, _, ok = cat.ResolveCustomType("public", "nonexistent")
	assert.False(t, ok)
}

func TestValidateDetectsCollision(t *testing.T) {
	cat := &Catalog{
		Tables: []Table{{Name: "widgets"}},
		Enums:  []EnumType{{Schema: "public", Name: "widgets", Labels: []string{"a"}}},
	}
	cat.Index()

	err := cat.Validate()
	assert.Error(t, err)
}

func TestValidateNoCollision(t *testing.T) {
	cat := testCatalog()
	assert.NoError(t, cat.Validate())
}

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "int8", ColumnType{Scalar: TInt8}.String())
	assert.Equal(t, "int8[]", ColumnType{Scalar: TInt8, IsArray: true}.String())
	assert.Equal(t, "public.status", ColumnType{Scalar: TEnum, CustomName: "public.status"}.String())
}
