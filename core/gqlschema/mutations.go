package gqlschema

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

func isPK(t catalog.Table, c catalog.Column) bool { return c.PrimaryKey }

// buildCreateInput emits T_CreateInput: every column, primary keys
// included, as an optional field (the executor decides defaulting; the
// schema simply never forces a PK on create).
func (b *builder) buildCreateInput(t catalog.Table) *ast.Definition {
	var fields []*ast.FieldDefinition
	for _, c := range t.Columns {
		fields = append(fields, field(c.Name, b.optionalInputColumnType(c)))
	}
	return input(createInputName(t.Name), fields...)
}

// buildUpdateInput emits T_UpdateInput: primary-key fields required,
// everything else optional.
func (b *builder) buildUpdateInput(t catalog.Table) *ast.Definition {
	var fields []*ast.FieldDefinition
	for _, c := range t.Columns {
		if isPK(t, c) {
			fields = append(fields, field(c.Name, named(gqlScalar(c.Type.Scalar), true)))
			continue
		}
		fields = append(fields, field(c.Name, b.optionalInputColumnType(c)))
	}
	return input(updateInputName(t.Name), fields...)
}

// buildDeleteInput emits T_DeleteInput: primary-key fields required; a
// table with no primary key gets a synthesized required `id` field.
func (b *builder) buildDeleteInput(t catalog.Table) *ast.Definition {
	pks := t.PrimaryKey()
	var fields []*ast.FieldDefinition
	if len(pks) == 0 {
		fields = append(fields, field("id", named("ID", true)))
	} else {
		for _, c := range pks {
			fields = append(fields, field(c.Name, named(gqlScalar(c.Type.Scalar), true)))
		}
	}
	return input(deleteInputName(t.Name), fields...)
}

// buildConnectInput emits a `ref_connect`-style input carrying just the
// referenced row's primary key.
func (b *builder) buildConnectInput(t catalog.Table) *ast.Definition {
	pks := t.PrimaryKey()
	var fields []*ast.FieldDefinition
	if len(pks) == 0 {
		fields = append(fields, field("id", named("ID", true)))
	} else {
		for _, c := range pks {
			fields = append(fields, field(c.Name, named(gqlScalar(c.Type.Scalar), true)))
		}
	}
	return input(connectInputName(t.Name), fields...)
}

// buildRefCreateInput emits the nested create input used by
// ref_create/child_createMany relationship fields: structurally identical
// to T_CreateInput but named distinctly so the relationship executor can
// dispatch on it without ambiguity. Per outgoing FK it adds `ref_connect`
// (bind to an existing row) and `ref_create` (create the referenced row
// first); per incoming FK it adds `child_<table>`, a list of this same
// input type, so CreateWithRelations can create dependents afterward with
// the new row's PK injected.
func (b *builder) buildRefCreateInput(t catalog.Table) *ast.Definition {
	var fields []*ast.FieldDefinition
	for _, c := range t.Columns {
		fields = append(fields, field(c.Name, b.optionalInputColumnType(c)))
	}
	for _, fk := range t.ForeignKeys {
		fields = append(fields,
			field(fk.RefTable+"_connect", named(connectInputName(fk.RefTable), false)),
			field(fk.RefTable+"_create", named(refCreateInputName(fk.RefTable), false)),
		)
	}
	for _, rev := range b.cat.ReverseForeignKeys(t.Name) {
		fields = append(fields, field(childCreateManyFieldName(rev.Table.Name), list(named(refCreateInputName(rev.Table.Name), false), false)))
	}
	return input(refCreateInputName(t.Name), fields...)
}

// optionalInputColumnType strips the NonNull wrapper applied by
// inputColumnType: create/update inputs never force a field regardless of
// the column's own nullability, since the executor fills required
// defaults at write time.
func (b *builder) optionalInputColumnType(c catalog.Column) *ast.Type {
	t := b.inputColumnType(c)
	cp := *t
	cp.NonNull = false
	return &cp
}

// optionalColumnType is optionalInputColumnType's output-position
// counterpart, used by T_SubscriptionData so a composite column still
// resolves to its object type rather than its input type.
func (b *builder) optionalColumnType(c catalog.Column) *ast.Type {
	t := b.columnType(c)
	cp := *t
	cp.NonNull = false
	return &cp
}
