package catalog

// pgScalar maps a PostgreSQL base type name to our logical ScalarType.
// Unknown types degrade to TUnknown (opaque strings) rather than erroring —
// spec.md's Non-goals explicitly rule out static validation of unrecognized
// types.
func pgScalar(name string) ScalarType {
	switch name {
	case "int2", "smallint", "smallserial":
		return TInt2
	case "int4", "integer", "serial":
		return TInt4
	case "int8", "bigint", "bigserial":
		return TInt8
	case "float4", "real":
		return TReal
	case "float8", "double precision":
		return TDouble
	case "numeric", "decimal", "money":
		return TNumeric
	case "bool", "boolean":
		return TBoolean
	case "uuid":
		return TUUID
	case "text", "varchar", "bpchar", "char", "character", "character varying", "name", "citext":
		return TText
	case "date":
		return TDate
	case "time":
		return TTime
	case "timetz":
		return TTimeTz
	case "timestamp":
		return TTimestamp
	case "timestamptz":
		return TTimestampTz
	case "interval":
		return TInterval
	case "json":
		return TJSON
	case "jsonb":
		return TJSONB
	case "bytea":
		return TBytea
	case "xml":
		return TXML
	case "inet":
		return TInet
	case "cidr":
		return TCidr
	case "macaddr":
		return TMacaddr
	case "macaddr8":
		return TMacaddr8
	case "bit":
		return TBit
	case "varbit", "bit varying":
		return TVarbit
	default:
		return TUnknown
	}
}
