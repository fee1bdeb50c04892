package gqlschema

import (
	"github.com/gobuffalo/flect"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/pgqlgate/pgqlgate/core/privilege"
)

func (b *builder) writable(table string, op privilege.Op) bool {
	if b.priv == nil {
		return true
	}
	return b.priv.Writable(table, op)
}

// addRoots builds Query/Mutation/Subscription. A catalog with no tables
// still gets a minimal schema — health fields on Query and Subscription —
// rather than an error.
func (b *builder) addRoots() {
	query := &ast.Definition{Kind: ast.Object, Name: "Query"}
	mutation := &ast.Definition{Kind: ast.Object, Name: "Mutation"}
	subscription := &ast.Definition{Kind: ast.Object, Name: "Subscription"}

	query.Fields = append(query.Fields, field("health", named("String", true)))
	subscription.Fields = append(subscription.Fields, field("health", named("String", true)))

	for _, t := range b.cat.Tables {
		objName := pascal(t.Name)
		plural := flect.Pluralize(t.Name)

		query.Fields = append(query.Fields, queryFieldArgs(field(t.Name, list(named(t.Name, true), false)), t.Name))
		query.Fields = append(query.Fields, queryFieldArgs(field(plural+"Connection", named(connectionName(t.Name), true)), t.Name))

		subscription.Fields = append(subscription.Fields, field(t.Name+"_changes", named(changeEventName(t.Name), true)))

		if t.IsView {
			continue
		}

		if b.writable(t.Name, privilege.OpInsert) {
			mutation.Fields = append(mutation.Fields,
				&ast.FieldDefinition{
					Name:      "create" + objName,
					Arguments: ast.ArgumentDefinitionList{arg("input", named(createInputName(t.Name), true))},
					Type:      named(t.Name, true),
				},
				&ast.FieldDefinition{
					Name:      "createMany" + flect.Pluralize(objName),
					Arguments: ast.ArgumentDefinitionList{arg("input", list(named(createInputName(t.Name), true), true))},
					Type:      list(named(t.Name, true), true),
				},
				&ast.FieldDefinition{
					Name:      "create" + objName + "WithRelations",
					Arguments: ast.ArgumentDefinitionList{arg("input", named(refCreateInputName(t.Name), true))},
					Type:      named(t.Name, true),
				},
			)
		}

		if b.writable(t.Name, privilege.OpUpdate) {
			mutation.Fields = append(mutation.Fields, &ast.FieldDefinition{
				Name:      "update" + objName,
				Arguments: ast.ArgumentDefinitionList{arg("input", named(updateInputName(t.Name), true))},
				Type:      named(t.Name, true),
			})
		}

		if b.writable(t.Name, privilege.OpDelete) {
			mutation.Fields = append(mutation.Fields, &ast.FieldDefinition{
				Name:      "delete" + objName,
				Arguments: ast.ArgumentDefinitionList{arg("input", named(deleteInputName(t.Name), true))},
				Type:      named(t.Name, true),
			})
		}
	}

	b.addType(query)
	b.addType(mutation)
	b.addType(subscription)

	b.schema.Query = query
	if len(mutation.Fields) > 0 {
		b.schema.Mutation = mutation
	}
	b.schema.Subscription = subscription
}

// queryFieldArgs attaches the read-contract arguments common to every
// table query field: where/or/orderBy plus offset and Relay-style
// pagination.
func queryFieldArgs(f *ast.FieldDefinition, table string) *ast.FieldDefinition {
	f.Arguments = ast.ArgumentDefinitionList{
		arg("where", named(filterName(table), false)),
		arg("or", list(named(filterName(table), false), false)),
		arg("orderBy", list(named(orderByName(table), false), false)),
		arg("limit", named("Int", false)),
		arg("offset", named("Int", false)),
		arg("first", named("Int", false)),
		arg("after", named("String", false)),
		arg("last", named("Int", false)),
		arg("before", named("String", false)),
	}
	return f
}
