// Package gqlschema turns a (possibly privilege-filtered) catalog into a
// complete GraphQL schema document. Generation is pure and deterministic:
// the same catalog always produces byte-identical SDL.
package gqlschema

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/pgqlgate/pgqlgate/core/catalog"
	"github.com/pgqlgate/pgqlgate/core/privilege"
)

// builder assembles a *ast.Schema one table/type at a time, memoizing
// composite object/input types so each is emitted exactly once regardless
// of how many columns reference it.
type builder struct {
	cat  *catalog.Catalog
	priv *privilege.RolePrivileges

	schema         *ast.Schema
	compositeObj   map[string]*ast.Definition
	compositeInput map[string]*ast.Definition
}

// Generate builds the full schema for cat, restricted to the mutation
// surface priv permits. priv may be nil, meaning unrestricted (used for
// superusers and for the unfiltered introspection snapshot). An empty
// catalog still yields a minimal but valid schema (Query.health,
// Subscription.health) rather than an error, per spec.md §4.3.
func Generate(cat *catalog.Catalog, priv *privilege.RolePrivileges) (*ast.Schema, error) {
	b := &builder{
		cat:  cat,
		priv: priv,
		schema: &ast.Schema{
			Types: map[string]*ast.Definition{},
		},
		compositeObj:   map[string]*ast.Definition{},
		compositeInput: map[string]*ast.Definition{},
	}

	b.addScalars()
	b.addDirectionEnum()

	for _, e := range cat.Enums {
		b.addType(enum(pascal(e.Name), upper(e.Labels)))
	}

	for _, t := range cat.Tables {
		if err := b.addTable(t); err != nil {
			return nil, err
		}
	}

	b.addRoots()

	return b.schema, nil
}

func upper(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = toUpperSnake(l)
	}
	return out
}

func (b *builder) addType(d *ast.Definition) {
	if _, exists := b.schema.Types[d.Name]; exists {
		return
	}
	b.schema.Types[d.Name] = d
}

func (b *builder) addScalars() {
	for _, name := range []string{"DateTime", "JSON", "BigInt"} {
		b.addType(&ast.Definition{Kind: ast.Scalar, Name: name})
	}
}

func (b *builder) addDirectionEnum() {
	b.addType(enum("OrderDirection", []string{"ASC", "DESC"}))
}

func (b *builder) addTable(t catalog.Table) error {
	if _, collide := b.schema.Types[t.Name]; collide {
		return fmt.Errorf("gqlschema: table %q collides with an existing custom type name", t.Name)
	}

	b.addType(b.buildObject(t))
	b.addType(b.buildFilter(t))
	b.addType(b.buildOrderBy(t))
	b.addType(b.buildEdge(t))
	b.addType(b.buildConnection(t))
	b.addType(b.buildChangeEvent(t))
	b.addType(b.buildSubscriptionData(t))

	if !t.IsView {
		b.addType(b.buildCreateInput(t))
		b.addType(b.buildUpdateInput(t))
		b.addType(b.buildDeleteInput(t))
		b.addType(b.buildRefCreateInput(t))
		b.addType(b.buildConnectInput(t))
	}

	return nil
}

// columnType resolves a catalog column into its GraphQL field type for
// object/output position, lazily declaring any composite object type it
// first references.
func (b *builder) columnType(c catalog.Column) *ast.Type {
	return b.columnTypeFor(c, false)
}

// inputColumnType is columnType's input-position counterpart: a composite
// column references the composite's paired `…Input` type rather than its
// object type, since GraphQL forbids an object type in input position.
func (b *builder) inputColumnType(c catalog.Column) *ast.Type {
	return b.columnTypeFor(c, true)
}

func (b *builder) columnTypeFor(c catalog.Column, input bool) *ast.Type {
	var base *ast.Type

	switch c.OriginalType {
	case catalog.KindEnum:
		base = named(pascal(bareName(c.Type.CustomName)), false)
	case catalog.KindComposite:
		if input {
			base = named(b.compositeInputType(c.Type.CustomName), false)
		} else {
			base = named(b.compositeObjectType(c.Type.CustomName), false)
		}
	default:
		base = named(gqlScalar(c.Type.Scalar), false)
	}

	if c.Type.IsArray {
		base = list(base, false)
	}
	if !c.Nullable {
		base.NonNull = true
	}
	return base
}

// compositeInputType returns the paired input-type name for a composite
// type, declaring both the object and input types (via compositeObjectType)
// on first reference.
func (b *builder) compositeInputType(qualifiedOrBare string) string {
	return b.compositeObjectType(qualifiedOrBare) + "Input"
}

// compositeObjectType returns the object-type name for a composite type,
// declaring it (and its paired input type) on first reference.
func (b *builder) compositeObjectType(qualifiedOrBare string) string {
	name := pascal(bareName(qualifiedOrBare))
	if _, ok := b.compositeObj[name]; ok {
		return name
	}

	ct, found := b.cat.Composite(bareName(qualifiedOrBare))
	if !found {
		// Unresolvable composite degrades to an object type and an input
		// type with no fields rather than failing generation.
		obj := object(name)
		b.compositeObj[name] = obj
		b.addType(obj)
		in := input(name + "Input")
		b.compositeInput[name] = in
		b.addType(in)
		return name
	}

	var fields []*ast.FieldDefinition
	var inputFields []*ast.FieldDefinition
	for _, a := range ct.Attributes {
		ft := named(gqlScalar(a.Type.Scalar), !a.Nullable)
		if a.Type.IsArray {
			ft = list(named(gqlScalar(a.Type.Scalar), false), !a.Nullable)
		}
		fields = append(fields, field(a.Name, ft))
		inputFields = append(inputFields, field(a.Name, named(gqlScalar(a.Type.Scalar), false)))
	}

	obj := object(name, fields...)
	b.compositeObj[name] = obj
	b.addType(obj)

	in := input(name+"Input", inputFields...)
	b.compositeInput[name] = in
	b.addType(in)

	return name
}

func bareName(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

func toUpperSnake(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
