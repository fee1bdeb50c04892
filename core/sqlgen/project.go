package sqlgen

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

// ProjectRow turns one raw driver row (as returned by pgx's rows.Values(),
// keyed back up against the requested column list) into a GraphQL-shaped
// map, per the per-type rules in spec.md §4.4's row-projection contract.
func ProjectRow(t *catalog.Table, columns []string, values []interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(columns))
	for i, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			out[name] = values[i]
			continue
		}
		v, err := projectValue(col.Type, values[i])
		if err != nil {
			return nil, fmt.Errorf("sqlgen: project column %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func projectValue(t catalog.ColumnType, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	if t.IsArray {
		elemType := t
		elemType.IsArray = false
		switch arr := v.(type) {
		case []interface{}:
			out := make([]interface{}, len(arr))
			for i, e := range arr {
				pv, err := projectValue(elemType, e)
				if err != nil {
					return nil, err
				}
				out[i] = pv
			}
			return out, nil
		case string:
			return projectValue(t, parseTextArray(arr))
		default:
			return v, nil
		}
	}

	switch t.Scalar {
	case catalog.TComposite:
		return projectComposite(v)
	case catalog.TJSON, catalog.TJSONB:
		return projectJSON(v)
	case catalog.TBytea:
		return projectBytea(v)
	case catalog.TInterval, catalog.TTimeTz, catalog.TTimestampTz, catalog.TXML, catalog.TEnum:
		return projectCanonicalString(v)
	default:
		return v, nil
	}
}

func projectJSON(v interface{}) (interface{}, error) {
	var raw []byte
	switch b := v.(type) {
	case []byte:
		raw = b
	case string:
		raw = []byte(b)
	default:
		return v, nil
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func projectBytea(v interface{}) (interface{}, error) {
	switch b := v.(type) {
	case []byte:
		return hex.EncodeToString(b), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func projectCanonicalString(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return x.String(), nil
	case []byte:
		return string(x), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// projectComposite parses PostgreSQL's textual composite form
// "(f1,f2,...)" into a slice of raw field strings. Unquoting and respecting
// embedded commas inside nested parentheses/quotes is handled here. The
// result is a positional list: fields are not mapped to attribute names,
// and neither this function nor ProjectRow has catalog access to do so.
func projectComposite(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	fields, err := parseCompositeText(s)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out, nil
}

// parseCompositeText splits PostgreSQL's "(a,b,"c,d",(e,f))" form into its
// top-level fields, honoring double-quote escaping and nested parens.
func parseCompositeText(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("sqlgen: malformed composite literal %q", s)
	}
	inner := s[1 : len(s)-1]

	var fields []string
	var cur strings.Builder
	depth := 0
	inQuote := false

	flush := func() {
		fields = append(fields, cur.String())
		cur.Reset()
	}

	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case inQuote:
			if c == '"' {
				if i+1 < len(inner) && inner[i+1] == '"' {
					cur.WriteByte('"')
					i++
					continue
				}
				inQuote = false
				continue
			}
			cur.WriteByte(c)
		case c == '"':
			inQuote = true
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == ')':
			depth--
			cur.WriteByte(c)
		case c == ',' && depth == 0:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	for i, f := range fields {
		if f == "NULL" {
			fields[i] = ""
		}
	}
	return fields, nil
}

// parseTextArray splits PostgreSQL's "{a,b,c}" array literal form into its
// elements. Nested braces (multi-dimensional/composite-element arrays) are
// kept intact as single elements for a further projectValue pass.
func parseTextArray(s string) []interface{} {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return []interface{}{}
	}

	var out []interface{}
	var cur strings.Builder
	depth := 0
	inQuote := false

	flush := func() {
		out = append(out, strings.Trim(cur.String(), `"`))
		cur.Reset()
	}

	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
				continue
			}
			cur.WriteByte(c)
		case c == '"':
			inQuote = true
		case c == '{':
			depth++
			cur.WriteByte(c)
		case c == '}':
			depth--
			cur.WriteByte(c)
		case c == ',' && depth == 0:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}
