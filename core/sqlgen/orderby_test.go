package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderBySingleMap(t *testing.T) {
	terms, err := parseOrderBy(map[string]interface{}{"age": "DESC"})
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "age", terms[0].Column)
	assert.Equal(t, "DESC", terms[0].Direction)
}

func TestParseOrderByList(t *testing.T) {
	terms, err := parseOrderBy([]interface{}{
		map[string]interface{}{"age": "DESC"},
		map[string]interface{}{"email": "ASC"},
	})
	require.NoError(t, err)
	require.Len(t, terms, 2)
}

func TestParseOrderByInvalidDirectionDefaultsAsc(t *testing.T) {
	terms, err := parseOrderBy(map[string]interface{}{"age": "sideways"})
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "ASC", terms[0].Direction)
}

func TestParseOrderByNil(t *testing.T) {
	terms, err := parseOrderBy(nil)
	require.NoError(t, err)
	assert.Nil(t, terms)
}

func TestParseOrderByRejectsBadShape(t *testing.T) {
	_, err := parseOrderBy("not-a-map")
	assert.Error(t, err)

	_, err = parseOrderBy([]interface{}{"not-a-map"})
	assert.Error(t, err)
}

func TestRenderOrderByAppendsPKTiebreaker(t *testing.T) {
	c := newContext(nil, "users")
	clause := c.renderOrderBy(usersTable(), []OrderTerm{{Column: "age", Direction: "DESC"}}, false)
	assert.Equal(t, `"age" DESC, "id" ASC`, clause)
}

func TestRenderOrderByDedupesExplicitPK(t *testing.T) {
	c := newContext(nil, "users")
	clause := c.renderOrderBy(usersTable(), []OrderTerm{{Column: "id", Direction: "DESC"}}, false)
	assert.Equal(t, `"id" DESC`, clause)
}

func TestRenderOrderByReverseFlipsDirection(t *testing.T) {
	c := newContext(nil, "users")
	clause := c.renderOrderBy(usersTable(), []OrderTerm{{Column: "age", Direction: "DESC"}}, true)
	assert.Equal(t, `"age" ASC, "id" DESC`, clause)
}
