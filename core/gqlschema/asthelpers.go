package gqlschema

import "github.com/vektah/gqlparser/v2/ast"

func named(name string, nonNull bool) *ast.Type {
	return &ast.Type{NamedType: name, NonNull: nonNull}
}

func list(elem *ast.Type, nonNull bool) *ast.Type {
	return &ast.Type{Elem: elem, NonNull: nonNull}
}

func field(name string, typ *ast.Type) *ast.FieldDefinition {
	return &ast.FieldDefinition{Name: name, Type: typ}
}

func arg(name string, typ *ast.Type) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{Name: name, Type: typ}
}

func object(name string, fields ...*ast.FieldDefinition) *ast.Definition {
	return &ast.Definition{Kind: ast.Object, Name: name, Fields: fields}
}

func input(name string, fields ...*ast.FieldDefinition) *ast.Definition {
	return &ast.Definition{Kind: ast.InputObject, Name: name, Fields: fields}
}

func enum(name string, labels []string) *ast.Definition {
	d := &ast.Definition{Kind: ast.Enum, Name: name}
	for _, l := range labels {
		d.EnumValues = append(d.EnumValues, &ast.EnumValueDefinition{Name: l})
	}
	return d
}
