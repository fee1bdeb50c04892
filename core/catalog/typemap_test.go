package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgScalar(t *testing.T) {
	cases := map[string]ScalarType{
		"int2":             TInt2,
		"smallserial":      TInt2,
		"integer":          TInt4,
		"bigint":           TInt8,
		"bigserial":        TInt8,
		"real":             TReal,
		"double precision": TDouble,
		"numeric":          TNumeric,
		"money":            TNumeric,
		"boolean":          TBoolean,
		"uuid":             TUUID,
		"varchar":          TText,
		"citext":           TText,
		"timestamptz":      TTimestampTz,
		"jsonb":            TJSONB,
		"bytea":            TBytea,
		"inet":             TInet,
		"bit varying":      TVarbit,
		"some_made_up_type": TUnknown,
	}

	for name, want := range cases {
		assert.Equalf(t, want, pgScalar(name), "pgScalar(%q)", name)
	}
}
