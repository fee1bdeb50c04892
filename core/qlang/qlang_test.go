package qlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/pgqlgate/pgqlgate/core/catalog"
	"github.com/pgqlgate/pgqlgate/core/gqlschema"
)

func buildTestSchema(t *testing.T) *ast.Schema {
	t.Helper()
	cat := &catalog.Catalog{
		Tables: []catalog.Table{
			{
				Schema: "public",
				Name:   "users",
				Columns: []catalog.Column{
					{Name: "id", Type: catalog.ColumnType{Scalar: catalog.TInt8}, PrimaryKey: true},
					{Name: "email", Type: catalog.ColumnType{Scalar: catalog.TText}},
				},
			},
			{
				Schema: "public",
				Name:   "posts",
				Columns: []catalog.Column{
					{Name: "id", Type: catalog.ColumnType{Scalar: catalog.TInt8}, PrimaryKey: true},
					{Name: "user_id", Type: catalog.ColumnType{Scalar: catalog.TInt8}},
					{Name: "title", Type: catalog.ColumnType{Scalar: catalog.TText}},
				},
				ForeignKeys: []catalog.ForeignKey{
					{Column: "user_id", RefSchema: "public", RefTable: "users", RefColumn: "id"},
				},
			},
		},
	}
	cat.Index()

	schema, err := gqlschema.Generate(cat, nil)
	require.NoError(t, err)
	return schema
}

func TestParseSimpleQuery(t *testing.T) {
	schema := buildTestSchema(t)

	op, err := Parse(schema, `{ users { id email } }`, "", nil)
	require.NoError(t, err)
	assert.Equal(t, OpQuery, op.Type)
	assert.Equal(t, "users", op.Field)
	assert.Equal(t, "users", op.Alias)
	require.Len(t, op.Fields, 2)
	assert.Equal(t, "id", op.Fields[0].Name)
	assert.Equal(t, "email", op.Fields[1].Name)
}

func TestParseAlias(t *testing.T) {
	schema := buildTestSchema(t)

	op, err := Parse(schema, `{ u: users { id } }`, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "u", op.Alias)
	assert.Equal(t, "users", op.Field)
}

func TestParseWithVariables(t *testing.T) {
	schema := buildTestSchema(t)

	op, err := Parse(schema, `query ($email: String) { users(where: {email: {eq: $email}}) { id } }`, "",
		map[string]interface{}{"email": "a@example.com"})
	require.NoError(t, err)
	where, ok := op.Args["where"].(map[string]interface{})
	require.True(t, ok)
	emailOps, ok := where["email"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a@example.com", emailOps["eq"])
}

func TestParseMissingVariableErrors(t *testing.T) {
	schema := buildTestSchema(t)

	_, err := Parse(schema, `query ($email: String) { users(where: {email: {eq: $email}}) { id } }`, "", nil)
	assert.Error(t, err)
}

func TestParseNestedRelationFields(t *testing.T) {
	schema := buildTestSchema(t)

	op, err := Parse(schema, `{ posts { id title users { email } } }`, "", nil)
	require.NoError(t, err)
	require.Len(t, op.Fields, 3)
	relField := op.Fields[2]
	assert.Equal(t, "users", relField.Name)
	require.Len(t, relField.Fields, 1)
	assert.Equal(t, "email", relField.Fields[0].Name)
}

func TestParseRejectsMultipleRootFields(t *testing.T) {
	schema := buildTestSchema(t)

	_, err := Parse(schema, `{ users { id } posts { id } }`, "", nil)
	assert.Error(t, err)
}

func TestParseNamedOperationSelection(t *testing.T) {
	schema := buildTestSchema(t)

	op, err := Parse(schema, `
		query GetUsers { users { id } }
		query GetPosts { posts { id } }
	`, "GetPosts", nil)
	require.NoError(t, err)
	assert.Equal(t, "posts", op.Field)
}
