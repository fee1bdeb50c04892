// Package qlang parses an incoming GraphQL request (query text + variables)
// against a generated schema into the small intermediate representation
// core/sqlgen compiles to SQL. It owns no SQL knowledge of its own — only
// GraphQL shape.
package qlang

import (
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// OpType mirrors the three GraphQL operation kinds this gateway serves.
type OpType string

const (
	OpQuery        OpType = "query"
	OpMutation     OpType = "mutation"
	OpSubscription OpType = "subscription"
)

// Operation is a single executable selection: one table-rooted field from
// the request's query/mutation/subscription root.
type Operation struct {
	Type     OpType
	Field    string // root field name, e.g. "users" or "createUser"
	Alias    string
	Args     map[string]interface{}
	Fields   []Field
	Document *ast.QueryDocument
}

// Field is a leaf or nested (relation) selection under an Operation.
type Field struct {
	Name     string
	Alias    string
	Fields   []Field // non-empty when this field is a relationship
}

// Parse validates queryText against schema, resolves variables, and returns
// the Operation for the single top-level selection; an operation with more
// than one root field is an error (a request may carry several named
// operations but the gateway executes exactly the one `opName` names, or
// the sole operation when opName is empty).
func Parse(schema *ast.Schema, queryText, opName string, variables map[string]interface{}) (*Operation, error) {
	doc, err := gqlparser.LoadQuery(schema, queryText)
	if err != nil {
		return nil, fmt.Errorf("qlang: parse: %w", err)
	}

	op := pickOperation(doc, opName)
	if op == nil {
		return nil, fmt.Errorf("qlang: no operation named %q", opName)
	}
	if len(op.SelectionSet) != 1 {
		return nil, fmt.Errorf("qlang: exactly one root field is supported per request")
	}

	root, ok := op.SelectionSet[0].(*ast.Field)
	if !ok {
		return nil, fmt.Errorf("qlang: root selection must be a field")
	}

	args, err := resolveArgs(root.Arguments, variables)
	if err != nil {
		return nil, err
	}

	return &Operation{
		Type:     OpType(op.Operation),
		Field:    root.Name,
		Alias:    aliasOrName(root),
		Args:     args,
		Fields:   collectFields(root.SelectionSet),
		Document: doc,
	}, nil
}

func pickOperation(doc *ast.QueryDocument, name string) *ast.OperationDefinition {
	if name == "" && len(doc.Operations) == 1 {
		return doc.Operations[0]
	}
	for _, op := range doc.Operations {
		if op.Name == name {
			return op
		}
	}
	return nil
}

func collectFields(sel ast.SelectionSet) []Field {
	var out []Field
	for _, s := range sel {
		f, ok := s.(*ast.Field)
		if !ok {
			continue
		}
		out = append(out, Field{
			Name:   f.Name,
			Alias:  aliasOrName(f),
			Fields: collectFields(f.SelectionSet),
		})
	}
	return out
}

func aliasOrName(f *ast.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func resolveArgs(args ast.ArgumentList, variables map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(args))
	for _, a := range args {
		v, err := resolveValue(a.Value, variables)
		if err != nil {
			return nil, err
		}
		out[a.Name] = v
	}
	return out, nil
}

// resolveValue walks an ast.Value, substituting variables, into a plain Go
// value the compiler's parameter binder can consume.
func resolveValue(v *ast.Value, variables map[string]interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Kind {
	case ast.Variable:
		val, ok := variables[v.Raw]
		if !ok {
			return nil, fmt.Errorf("qlang: missing variable $%s", v.Raw)
		}
		return val, nil
	case ast.IntValue, ast.FloatValue, ast.StringValue, ast.BlockValue, ast.EnumValue, ast.BooleanValue:
		return v.Raw, nil
	case ast.NullValue:
		return nil, nil
	case ast.ListValue:
		var list []interface{}
		for _, c := range v.Children {
			cv, err := resolveValue(c.Value, variables)
			if err != nil {
				return nil, err
			}
			list = append(list, cv)
		}
		return list, nil
	case ast.ObjectValue:
		obj := map[string]interface{}{}
		for _, c := range v.Children {
			cv, err := resolveValue(c.Value, variables)
			if err != nil {
				return nil, err
			}
			obj[c.Name] = cv
		}
		return obj, nil
	default:
		return v.Raw, nil
	}
}
