package gqlschema

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

func (b *builder) buildSubscriptionData(t catalog.Table) *ast.Definition {
	name := subscriptionDataName(t.Name)
	var fields []*ast.FieldDefinition
	for _, c := range t.Columns {
		fields = append(fields, field(c.Name, b.optionalColumnType(c)))
	}
	fields = append(fields,
		field("old", named(name, false)),
		field("new", named(name, false)),
	)
	return object(name, fields...)
}

func (b *builder) buildChangeEvent(t catalog.Table) *ast.Definition {
	b.addType(enum("ChangeOperation", []string{"INSERT", "UPDATE", "DELETE"}))
	return object(changeEventName(t.Name),
		field("operation", named("ChangeOperation", true)),
		field("table", named("String", true)),
		field("schema", named("String", true)),
		field("timestamp", named("DateTime", true)),
		field("lsn", named("String", true)),
		field("data", named(subscriptionDataName(t.Name), false)),
		field("error", named("String", false)),
	)
}
