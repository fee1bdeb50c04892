package gqlschema

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

// buildObject emits the object type for a table: one field per visible
// column, a forward field per outgoing foreign key, and a plural field per
// incoming (reverse) foreign key.
func (b *builder) buildObject(t catalog.Table) *ast.Definition {
	var fields []*ast.FieldDefinition

	fkByColumn := map[string]catalog.ForeignKey{}
	for _, fk := range t.ForeignKeys {
		fkByColumn[fk.Column] = fk
	}

	for _, c := range t.Columns {
		fields = append(fields, field(c.Name, b.columnType(c)))
		if fk, ok := fkByColumn[c.Name]; ok {
			fields = append(fields, field(fk.RefTable, named(fk.RefTable, false)))
		}
	}

	for _, rev := range b.cat.ReverseForeignKeys(t.Name) {
		f := field(reverseFieldName(rev.Table.Name), list(named(rev.Table.Name, false), false))
		fields = append(fields, f)
	}

	return object(t.Name, fields...)
}
