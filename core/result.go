package core

import (
	"encoding/json"

	"github.com/pgqlgate/pgqlgate/core/errs"
)

// Result is the GraphQL-JSON response shape spec.md §6 requires: `data`
// plus an optional `errors` array. SQL() exposes the statements recorded on
// the Result, mirroring the teacher's Result.SQL() convention.
type Result struct {
	Data   interface{}    `json:"data,omitempty"`
	Errors []ResultError  `json:"errors,omitempty"`

	sql []string
}

type ResultError struct {
	Message string `json:"message"`
	Code    string `json:"extensions,omitempty"`
}

// SQL returns the statements recorded on the Result. Engine.Execute does
// not record the statements it issues, so for its results this is empty.
func (r Result) SQL() []string { return r.sql }

func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(alias(r))
}

func errorResult(err error) Result {
	return Result{Errors: []ResultError{{Message: err.Error(), Code: string(errs.CodeOf(err))}}}
}
