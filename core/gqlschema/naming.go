package gqlschema

import (
	"strings"

	"github.com/gobuffalo/flect"
)

func filterName(table string) string    { return table + "_Filter" }
func orderByName(table string) string   { return table + "_OrderByInput" }
func edgeName(table string) string      { return table + "_Edge" }
func connectionName(table string) string { return table + "_Connection" }
func createInputName(table string) string { return table + "_CreateInput" }
func updateInputName(table string) string { return table + "_UpdateInput" }
func deleteInputName(table string) string { return table + "_DeleteInput" }
func changeEventName(table string) string { return table + "_ChangeEvent" }
func subscriptionDataName(table string) string { return table + "_SubscriptionData" }
func createManyInputName(table string) string  { return table + "_CreateManyInput" }
func refCreateInputName(table string) string   { return table + "_RefCreateInput" }
func connectInputName(table string) string     { return table + "_ConnectInput" }

// childCreateManyFieldName names the nested-create field a relationship
// input gets for each incoming FK, matching sqlgen's reverseFieldInputKey.
func childCreateManyFieldName(referencingTable string) string { return "child_" + referencingTable }

// pascal converts a PostgreSQL identifier (snake_case) to PascalCase, used
// for custom-type (enum/composite) names per spec.md §4.3's naming rule.
func pascal(name string) string {
	return flect.Pascalize(strings.ReplaceAll(name, "-", "_"))
}

// reverseFieldName derives the plural field name a reverse relationship
// gets on its referenced table's object type.
func reverseFieldName(referencingTable string) string {
	return flect.Pluralize(referencingTable)
}
