package sqlgen

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// cursorTuple is the ordered list of ordering-key values (including the PK
// tiebreaker) a Relay cursor encodes, keyed by column name so decoding
// doesn't depend on the ordering list being identical between requests.
type cursorTuple []cursorValue

type cursorValue struct {
	Column string `json:"c"`
	Value  string `json:"v"`
}

// encodeCursor renders the tuple of values the current ordering is
// positioned at into an opaque, base64-encoded cursor string.
func encodeCursor(terms []OrderTerm, row map[string]interface{}) string {
	tuple := make(cursorTuple, 0, len(terms))
	for _, t := range terms {
		tuple = append(tuple, cursorValue{Column: t.Column, Value: fmt.Sprintf("%v", row[t.Column])})
	}
	b, _ := json.Marshal(tuple)
	return base64.URLEncoding.EncodeToString(b)
}

// decodeCursor reverses encodeCursor.
func decodeCursor(cursor string) (cursorTuple, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("sqlgen: invalid cursor: %w", err)
	}
	var tuple cursorTuple
	if err := json.Unmarshal(raw, &tuple); err != nil {
		return nil, fmt.Errorf("sqlgen: invalid cursor: %w", err)
	}
	return tuple, nil
}

// renderCursorPredicate renders the strictly-greater (after) or
// strictly-less (before) tuple comparison used for cursor pagination: the
// PostgreSQL row-comparison form `(a, b) > ($1, $2)`, which respects
// lexicographic ordering across multiple columns the same way `ORDER BY`
// does.
func (c *compilerContext) renderCursorPredicate(tuple cursorTuple, strictlyGreater bool) string {
	if len(tuple) == 0 {
		return "TRUE"
	}

	idents := make([]string, len(tuple))
	placeholders := make([]string, len(tuple))
	for i, cv := range tuple {
		idents[i] = c.quoteIdent(cv.Column)
		placeholders[i] = c.bind(cv.Value)
	}

	op := ">"
	if !strictlyGreater {
		op = "<"
	}

	return fmt.Sprintf("(%s) %s (%s)", join(idents), op, join(placeholders))
}

func join(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
