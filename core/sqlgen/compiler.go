// Package sqlgen translates a parsed GraphQL operation into parameterized
// SQL, executes it, and projects the rows back into GraphQL-shaped values.
// It renders through a context-writer (a *bytes.Buffer plus a running
// parameter list), never by concatenating user values into SQL text.
package sqlgen

import (
	"bytes"
	"fmt"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

// Param is one bound value in a rendered statement's positional parameter
// list, in the order it will be passed to the driver.
type Param struct {
	Value interface{}
}

// Metadata accumulates everything produced alongside the SQL text during
// compilation: the parameter list and the table the statement targets.
type Metadata struct {
	Table  string
	Params []Param
}

// compilerContext is the render-time state threaded through every render*
// method: the output buffer, the accumulating Metadata, and the catalog
// used to resolve column types and relationships.
type compilerContext struct {
	w   *bytes.Buffer
	md  *Metadata
	cat *catalog.Catalog
}

func newContext(cat *catalog.Catalog, table string) *compilerContext {
	return &compilerContext{
		w:   &bytes.Buffer{},
		md:  &Metadata{Table: table},
		cat: cat,
	}
}

// bind appends value to the parameter list and returns its positional
// placeholder ("$3" etc) for inline use while rendering.
func (c *compilerContext) bind(value interface{}) string {
	c.md.Params = append(c.md.Params, Param{Value: value})
	return fmt.Sprintf("$%d", len(c.md.Params))
}

func (c *compilerContext) quoteIdent(name string) string {
	return `"` + name + `"`
}

// Compiled is the output of a compile pass: rendered SQL plus its bound
// parameters, ready to hand to a pgx connection.
type Compiled struct {
	SQL    string
	Params []interface{}
	Table  string
}

func (c *compilerContext) result() Compiled {
	params := make([]interface{}, len(c.md.Params))
	for i, p := range c.md.Params {
		params[i] = p.Value
	}
	return Compiled{SQL: c.w.String(), Params: params, Table: c.md.Table}
}
