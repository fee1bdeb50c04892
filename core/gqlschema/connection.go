package gqlschema

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

func (b *builder) buildEdge(t catalog.Table) *ast.Definition {
	return object(edgeName(t.Name),
		field("node", named(t.Name, true)),
		field("cursor", named("String", true)),
	)
}

func (b *builder) buildConnection(t catalog.Table) *ast.Definition {
	b.addType(b.pageInfoType())
	return object(connectionName(t.Name),
		field("edges", list(named(edgeName(t.Name), true), true)),
		field("pageInfo", named("PageInfo", true)),
		field("totalCount", named("Int", true)),
	)
}

func (b *builder) pageInfoType() *ast.Definition {
	if d, ok := b.schema.Types["PageInfo"]; ok {
		return d
	}
	return object("PageInfo",
		field("hasNextPage", named("Boolean", true)),
		field("hasPreviousPage", named("Boolean", true)),
		field("startCursor", named("String", false)),
		field("endCursor", named("String", false)),
	)
}
