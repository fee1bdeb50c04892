package gqlschema

import "github.com/pgqlgate/pgqlgate/core/catalog"

// RelationFieldKind distinguishes the two relation field shapes buildObject
// emits: a single forward reference following an outgoing foreign key, or a
// plural reverse reference following every foreign key that points back.
type RelationFieldKind string

const (
	RelationForward RelationFieldKind = "forward"
	RelationReverse RelationFieldKind = "reverse"
)

// RelationField is one non-scalar field on a table's object type, naming the
// batched query needed to resolve it: match RelatedColumn on RelatedTable
// against OwnColumn's value(s) from the requesting table's rows.
type RelationField struct {
	FieldName     string
	Kind          RelationFieldKind
	RelatedTable  string
	OwnColumn     string
	RelatedColumn string
}

// RelationFields returns table's relation fields: one forward field per
// foreign key in the table's ForeignKeys order, then one reverse field per
// referencing foreign key. Field names match the ones buildObject emits, so
// engine-side resolution never drifts from the schema the client was
// actually given.
func RelationFields(cat *catalog.Catalog, table string) []RelationField {
	t, ok := cat.Table(table)
	if !ok {
		return nil
	}

	var out []RelationField
	for _, fk := range t.ForeignKeys {
		out = append(out, RelationField{
			FieldName:     fk.RefTable,
			Kind:          RelationForward,
			RelatedTable:  fk.RefTable,
			OwnColumn:     fk.Column,
			RelatedColumn: fk.RefColumn,
		})
	}
	for _, rev := range cat.ReverseForeignKeys(table) {
		out = append(out, RelationField{
			FieldName:     reverseFieldName(rev.Table.Name),
			Kind:          RelationReverse,
			RelatedTable:  rev.Table.Name,
			OwnColumn:     rev.FK.RefColumn,
			RelatedColumn: rev.FK.Column,
		})
	}
	return out
}
