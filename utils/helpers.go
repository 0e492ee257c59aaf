// Package utils holds small helpers shared by the server and endpoints
// packages: JSON response writing and the evaluator error -> HTTP response
// translation.
package utils

import (
	"encoding/json"
	"net/http"

	"delegator/constants"
	"delegator/evaluator"
)

// WriteJSON encodes v as the response body with a 200 status and JSON
// content type.
func WriteJSON(w http.ResponseWriter, v any) error {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	return json.NewEncoder(w).Encode(v)
}

// WriteEvalError renders an *evaluator.Error as the error response
// contract, with HTTP 500. A NetworkError's body is the upstream
// context verbatim, not the {"err":"<kind>",...} wrapper — the original
// evaluator returns context.clone() for this case, so callers see
// exactly what the upstream sent. Every other kind gets the
// {"err":"<kind>", ...} shape, with structural errors carrying the
// breadcrumb that failed as "history".
func WriteEvalError(w http.ResponseWriter, err *evaluator.Error) error {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(http.StatusInternalServerError)

	if err.Kind == evaluator.KindNetwork {
		return json.NewEncoder(w).Encode(err.NetworkCtx)
	}

	body := map[string]any{"err": string(err.Kind)}
	if err.Service != "" {
		body["service"] = err.Service
	}
	if err.Method != "" {
		body["method"] = err.Method
	}
	if err.StepError != nil {
		body["history"] = err.StepError.History
	}
	return json.NewEncoder(w).Encode(body)
}
