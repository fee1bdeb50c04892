package gqlschema

import (
	"github.com/gobuffalo/flect"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

// RouteKind names which sqlgen operation a root field dispatches to.
type RouteKind string

const (
	RouteList                 RouteKind = "list"
	RouteConnection            RouteKind = "connection"
	RouteCreate                RouteKind = "create"
	RouteUpdate                RouteKind = "update"
	RouteDelete                RouteKind = "delete"
	RouteCreateMany            RouteKind = "createMany"
	RouteCreateWithRelations   RouteKind = "createWithRelations"
	RouteSubscription          RouteKind = "subscription"
)

// Route is one root field's dispatch target.
type Route struct {
	Table string
	Kind  RouteKind
}

// Routes builds the field-name -> Route map for every Query/Mutation/
// Subscription field addRoots would emit for cat, so the engine's
// dispatcher and the schema generator can never drift out of sync on
// naming — both derive field names from this single function.
func Routes(cat *catalog.Catalog) map[string]Route {
	out := map[string]Route{}
	for _, t := range cat.Tables {
		objName := pascal(t.Name)
		plural := flect.Pluralize(t.Name)

		out[t.Name] = Route{Table: t.Name, Kind: RouteList}
		out[plural+"Connection"] = Route{Table: t.Name, Kind: RouteConnection}
		out[t.Name+"_changes"] = Route{Table: t.Name, Kind: RouteSubscription}

		if t.IsView {
			continue
		}
		out["create"+objName] = Route{Table: t.Name, Kind: RouteCreate}
		out["update"+objName] = Route{Table: t.Name, Kind: RouteUpdate}
		out["delete"+objName] = Route{Table: t.Name, Kind: RouteDelete}
		out["createMany"+flect.Pluralize(objName)] = Route{Table: t.Name, Kind: RouteCreateMany}
		out["create"+objName+"WithRelations"] = Route{Table: t.Name, Kind: RouteCreateWithRelations}
	}
	return out
}
