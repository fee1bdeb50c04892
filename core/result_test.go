package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgqlgate/pgqlgate/core/errs"
)

func TestErrorResultCarriesCode(t *testing.T) {
	r := errorResult(errs.NotFound("users"))
	require.Len(t, r.Errors, 1)
	assert.Equal(t, string(errs.CodeNotFound), r.Errors[0].Code)
	assert.Contains(t, r.Errors[0].Message, "users")
	assert.Nil(t, r.Data)
}

func TestErrorResultDefaultsCodeForPlainError(t *testing.T) {
	r := errorResult(errors.New("boom"))
	require.Len(t, r.Errors, 1)
	assert.Equal(t, string(errs.CodeMutation), r.Errors[0].Code)
}

func TestResultMarshalJSONOmitsEmptyFields(t *testing.T) {
	r := Result{Data: map[string]interface{}{"users": []interface{}{}}}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"users":[]}}`, string(b))
}

func TestResultSQLAccessor(t *testing.T) {
	r := Result{sql: []string{"SELECT 1", "SELECT 2"}}
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, r.SQL())
}
