package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

// RenderWhere lowers a GraphQL-level `where` filter plus an optional
// top-level `or` list of filters into a single boolean SQL expression,
// per spec.md §4.4. An empty filter renders as "TRUE" so callers can always
// splice the result after "WHERE " unconditionally.
func (c *compilerContext) RenderWhere(t *catalog.Table, where map[string]interface{}, or []interface{}) (string, error) {
	var clauses []string

	if len(where) > 0 {
		clause, err := c.renderFilter(t, where)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}

	for _, raw := range or {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("sqlgen: top-level or entry must be a filter object")
		}
		clause, err := c.renderFilter(t, m)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}

	if len(clauses) == 0 {
		return "TRUE", nil
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, " OR ") + ")", nil
}

// renderFilter lowers one T_Filter value: a conjunction of per-column
// predicates, recursively ORed with any nested `or` list.
func (c *compilerContext) renderFilter(t *catalog.Table, filter map[string]interface{}) (string, error) {
	var ands []string

	for col, raw := range filter {
		if col == "or" {
			continue
		}
		column, ok := t.Column(col)
		if !ok {
			return "", fmt.Errorf("sqlgen: unknown column %q on %q", col, t.Name)
		}
		ops, ok := raw.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("sqlgen: filter value for %q must be an operator object", col)
		}
		clause, err := c.renderColumnOps(t, column, ops)
		if err != nil {
			return "", err
		}
		if clause != "" {
			ands = append(ands, clause)
		}
	}

	var conj string
	switch len(ands) {
	case 0:
		conj = "TRUE"
	case 1:
		conj = ands[0]
	default:
		conj = "(" + strings.Join(ands, " AND ") + ")"
	}

	if rawOr, ok := filter["or"]; ok {
		list, ok := rawOr.([]interface{})
		if !ok {
			return "", fmt.Errorf("sqlgen: `or` must be a list of filters")
		}
		var orClauses []string
		orClauses = append(orClauses, conj)
		for _, item := range list {
			m, ok := item.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("sqlgen: `or` entries must be filter objects")
			}
			sub, err := c.renderFilter(t, m)
			if err != nil {
				return "", err
			}
			orClauses = append(orClauses, sub)
		}
		return "(" + strings.Join(orClauses, " OR ") + ")", nil
	}

	return conj, nil
}

func (c *compilerContext) renderColumnOps(t *catalog.Table, col catalog.Column, ops map[string]interface{}) (string, error) {
	ident := c.quoteIdent(col.Name)
	var clauses []string

	for op, val := range ops {
		switch op {
		case "eq":
			clauses = append(clauses, fmt.Sprintf("%s = %s", ident, c.bind(val)))
		case "neq":
			clauses = append(clauses, fmt.Sprintf("%s != %s", ident, c.bind(val)))
		case "gt":
			clauses = append(clauses, fmt.Sprintf("%s > %s", ident, c.bind(val)))
		case "gte":
			clauses = append(clauses, fmt.Sprintf("%s >= %s", ident, c.bind(val)))
		case "lt":
			clauses = append(clauses, fmt.Sprintf("%s < %s", ident, c.bind(val)))
		case "lte":
			clauses = append(clauses, fmt.Sprintf("%s <= %s", ident, c.bind(val)))
		case "like":
			clauses = append(clauses, fmt.Sprintf("%s LIKE %s", ident, c.bind(val)))
		case "ilike":
			clauses = append(clauses, fmt.Sprintf("%s ILIKE %s", ident, c.bind(val)))
		case "in":
			clauses = append(clauses, fmt.Sprintf("%s = ANY(%s)", ident, c.bind(val)))
		case "notIn":
			clauses = append(clauses, fmt.Sprintf("%s != ALL(%s)", ident, c.bind(val)))
		case "isNull":
			if truthy(val) {
				clauses = append(clauses, fmt.Sprintf("%s IS NULL", ident))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s IS NOT NULL", ident))
			}
		case "isNotNull":
			if truthy(val) {
				clauses = append(clauses, fmt.Sprintf("%s IS NOT NULL", ident))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s IS NULL", ident))
			}
		case "contains":
			if col.Type.Scalar == catalog.TJSON || col.Type.Scalar == catalog.TJSONB {
				clauses = append(clauses, fmt.Sprintf("%s @> %s", ident, c.bind(val)))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s LIKE '%%' || %s || '%%'", ident, c.bind(val)))
			}
		case "startsWith":
			clauses = append(clauses, fmt.Sprintf("%s LIKE %s || '%%'", ident, c.bind(val)))
		case "endsWith":
			clauses = append(clauses, fmt.Sprintf("%s LIKE '%%' || %s", ident, c.bind(val)))
		case "hasKey":
			clauses = append(clauses, fmt.Sprintf("%s ? %s", ident, c.bind(val)))
		case "hasKeys":
			clauses = append(clauses, fmt.Sprintf("%s ?& %s", ident, c.bind(val)))
		case "hasAnyKeys":
			clauses = append(clauses, fmt.Sprintf("%s ?| %s", ident, c.bind(val)))
		case "containedBy":
			clauses = append(clauses, fmt.Sprintf("%s <@ %s", ident, c.bind(val)))
		case "path":
			clauses = append(clauses, fmt.Sprintf("%s #> %s", ident, c.bind(val)))
		case "pathText":
			clauses = append(clauses, fmt.Sprintf("%s #>> %s", ident, c.bind(val)))
		default:
			return "", fmt.Errorf("sqlgen: unknown filter operator %q on %q", op, col.Name)
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, " AND ") + ")", nil
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return v != nil
	}
}
