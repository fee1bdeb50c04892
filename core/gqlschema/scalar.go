package gqlschema

import "github.com/pgqlgate/pgqlgate/core/catalog"

// gqlScalar returns the GraphQL scalar name used for a column's underlying
// PostgreSQL scalar type. Custom scalars (DateTime, JSON, BigInt) are
// declared once per schema by addScalars.
func gqlScalar(s catalog.ScalarType) string {
	switch s {
	case catalog.TInt2, catalog.TInt4:
		return "Int"
	case catalog.TInt8, catalog.TSerial:
		return "BigInt"
	case catalog.TReal, catalog.TDouble, catalog.TNumeric:
		return "Float"
	case catalog.TBoolean:
		return "Boolean"
	case catalog.TJSON, catalog.TJSONB:
		return "JSON"
	case catalog.TDate, catalog.TTime, catalog.TTimeTz, catalog.TTimestamp, catalog.TTimestampTz:
		return "DateTime"
	default:
		return "String"
	}
}

// filterKind groups a scalar into one of the filter-input families spec.md
// §4.3 names: StringFilter, IntFilter, FloatFilter, BooleanFilter,
// DateTimeFilter, JSONFilter.
func filterKind(s catalog.ScalarType) string {
	switch gqlScalar(s) {
	case "Int", "BigInt":
		return "IntFilter"
	case "Float":
		return "FloatFilter"
	case "Boolean":
		return "BooleanFilter"
	case "JSON":
		return "JSONFilter"
	case "DateTime":
		return "DateTimeFilter"
	default:
		return "StringFilter"
	}
}

var scalarOperators = map[string][]string{
	"StringFilter":   {"eq", "neq", "gt", "gte", "lt", "lte", "like", "ilike", "in", "notIn", "isNull", "isNotNull", "contains", "startsWith", "endsWith"},
	"IntFilter":      {"eq", "neq", "gt", "gte", "lt", "lte", "in", "notIn", "isNull", "isNotNull"},
	"FloatFilter":    {"eq", "neq", "gt", "gte", "lt", "lte", "in", "notIn", "isNull", "isNotNull"},
	"BooleanFilter":  {"eq", "neq", "isNull", "isNotNull"},
	"DateTimeFilter": {"eq", "neq", "gt", "gte", "lt", "lte", "isNull", "isNotNull"},
	"JSONFilter":     {"eq", "neq", "isNull", "isNotNull", "hasKey", "hasKeys", "hasAnyKeys", "contains", "containedBy", "path", "pathText"},
}
