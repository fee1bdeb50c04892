package sqlgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgqlgate/pgqlgate/core/catalog"
)

func projectTestTable() *catalog.Table {
	return &catalog.Table{
		Name: "widgets",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.ColumnType{Scalar: catalog.TInt8}},
			{Name: "label", Type: catalog.ColumnType{Scalar: catalog.TText}},
			{Name: "created_at", Type: catalog.ColumnType{Scalar: catalog.TTimestampTz}},
			{Name: "attrs", Type: catalog.ColumnType{Scalar: catalog.TJSONB}},
			{Name: "raw", Type: catalog.ColumnType{Scalar: catalog.TBytea}},
			{Name: "scores", Type: catalog.ColumnType{Scalar: catalog.TInt4, IsArray: true}},
		},
	}
}

func TestProjectRowPassesThroughPlainScalars(t *testing.T) {
	row, err := ProjectRow(projectTestTable(), []string{"id", "label"}, []interface{}{int64(1), "widget"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
	assert.Equal(t, "widget", row["label"])
}

func TestProjectRowTimestampTzCanonicalString(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	row, err := ProjectRow(projectTestTable(), []string{"created_at"}, []interface{}{now})
	require.NoError(t, err)
	assert.Equal(t, now.Format(time.RFC3339Nano), row["created_at"])
}

func TestProjectRowJSONB(t *testing.T) {
	row, err := ProjectRow(projectTestTable(), []string{"attrs"}, []interface{}{[]byte(`{"a":1}`)})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, row["attrs"])
}

func TestProjectRowBytea(t *testing.T) {
	row, err := ProjectRow(projectTestTable(), []string{"raw"}, []interface{}{[]byte{0xde, 0xad}})
	require.NoError(t, err)
	assert.Equal(t, "dead", row["raw"])
}

func TestProjectRowNullsPassThrough(t *testing.T) {
	row, err := ProjectRow(projectTestTable(), []string{"attrs"}, []interface{}{nil})
	require.NoError(t, err)
	assert.Nil(t, row["attrs"])
}

func TestProjectRowArrayOfInts(t *testing.T) {
	row, err := ProjectRow(projectTestTable(), []string{"scores"}, []interface{}{[]interface{}{int64(1), int64(2)}})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), int64(2)}, row["scores"])
}

func TestProjectRowUnknownColumnPassesRaw(t *testing.T) {
	row, err := ProjectRow(projectTestTable(), []string{"computed"}, []interface{}{"anything"})
	require.NoError(t, err)
	assert.Equal(t, "anything", row["computed"])
}

func TestParseCompositeText(t *testing.T) {
	fields, err := parseCompositeText(`(1,"hello, world",NULL)`)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "hello, world", ""}, fields)
}

func TestParseCompositeTextMalformed(t *testing.T) {
	_, err := parseCompositeText("not-a-composite")
	assert.Error(t, err)
}

func TestParseTextArray(t *testing.T) {
	out := parseTextArray(`{1,2,3}`)
	assert.Equal(t, []interface{}{"1", "2", "3"}, out)
}

func TestParseTextArrayEmpty(t *testing.T) {
	out := parseTextArray(`{}`)
	assert.Equal(t, []interface{}{}, out)
}

func TestParseTextArrayQuotedElements(t *testing.T) {
	out := parseTextArray(`{"a,b",c}`)
	assert.Equal(t, []interface{}{"a,b", "c"}, out)
}
