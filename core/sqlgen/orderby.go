package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

// OrderTerm is one (column, direction) pair from an orderBy argument.
type OrderTerm struct {
	Column    string
	Direction string // "ASC" or "DESC"
}

// parseOrderBy converts the GraphQL orderBy argument (a list of single-key
// maps, or a single map) into an ordered []OrderTerm.
func parseOrderBy(raw interface{}) ([]OrderTerm, error) {
	var maps []map[string]interface{}
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		maps = []map[string]interface{}{v}
	case []interface{}:
		for _, e := range v {
			m, ok := e.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("sqlgen: orderBy entries must be objects")
			}
			maps = append(maps, m)
		}
	default:
		return nil, fmt.Errorf("sqlgen: unsupported orderBy shape")
	}

	var terms []OrderTerm
	for _, m := range maps {
		for col, dir := range m {
			d := fmt.Sprintf("%v", dir)
			if d != "ASC" && d != "DESC" {
				d = "ASC"
			}
			terms = append(terms, OrderTerm{Column: col, Direction: d})
		}
	}
	return terms, nil
}

// renderOrderBy renders the ORDER BY term list (without the ORDER BY
// keyword itself, which the caller writes),
// appending primary-key columns as a stable tiebreaker for any column not
// already present, per spec.md §4.4.
func (c *compilerContext) renderOrderBy(t *catalog.Table, terms []OrderTerm, reverse bool) string {
	seen := map[string]bool{}
	var parts []string

	dir := func(d string) string {
		if reverse {
			if d == "ASC" {
				return "DESC"
			}
			return "ASC"
		}
		return d
	}

	for _, term := range terms {
		if seen[term.Column] {
			continue
		}
		seen[term.Column] = true
		parts = append(parts, fmt.Sprintf("%s %s", c.quoteIdent(term.Column), dir(term.Direction)))
	}

	for _, pk := range t.PrimaryKey() {
		if seen[pk.Name] {
			continue
		}
		seen[pk.Name] = true
		parts = append(parts, fmt.Sprintf("%s %s", c.quoteIdent(pk.Name), dir("ASC")))
	}

	return strings.Join(parts, ", ")
}
