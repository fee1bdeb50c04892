package gqlschema

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

// buildFilter emits T_Filter with one field per column named after the
// filter kind its type resolves to (StringFilter, IntFilter, ...), plus a
// recursive `or` field accepting a list of the same filter input.
func (b *builder) buildFilter(t catalog.Table) *ast.Definition {
	name := filterName(t.Name)
	var fields []*ast.FieldDefinition

	for _, c := range t.Columns {
		kind := filterKindFor(c)
		b.ensureScalarFilter(kind)
		fields = append(fields, field(c.Name, named(kind, false)))
	}

	fields = append(fields, field("or", list(named(name, false), false)))

	return input(name, fields...)
}

func filterKindFor(c catalog.Column) string {
	if c.OriginalType == catalog.KindEnum || c.OriginalType == catalog.KindComposite {
		return "StringFilter"
	}
	return filterKind(c.Type.Scalar)
}

// ensureScalarFilter lazily declares one of the shared *Filter input types
// the first time a column needs it.
func (b *builder) ensureScalarFilter(kind string) {
	if _, ok := b.schema.Types[kind]; ok {
		return
	}
	ops := scalarOperators[kind]
	scalarName := "String"
	switch kind {
	case "IntFilter":
		scalarName = "Int"
	case "FloatFilter":
		scalarName = "Float"
	case "BooleanFilter":
		scalarName = "Boolean"
	case "DateTimeFilter":
		scalarName = "DateTime"
	case "JSONFilter":
		scalarName = "JSON"
	}

	var fields []*ast.FieldDefinition
	for _, op := range ops {
		switch op {
		case "in", "notIn":
			fields = append(fields, field(op, list(named(scalarName, false), false)))
		case "isNull", "isNotNull":
			fields = append(fields, field(op, named("Boolean", false)))
		case "hasKeys", "hasAnyKeys":
			fields = append(fields, field(op, list(named("String", false), false)))
		default:
			fields = append(fields, field(op, named(scalarName, false)))
		}
	}
	b.addType(input(kind, fields...))
}

// buildOrderBy emits T_OrderByInput: every column paired with OrderDirection.
func (b *builder) buildOrderBy(t catalog.Table) *ast.Definition {
	name := orderByName(t.Name)
	var fields []*ast.FieldDefinition
	for _, c := range t.Columns {
		fields = append(fields, field(c.Name, named("OrderDirection", false)))
	}
	return input(name, fields...)
}
