package server

import (
	"encoding/json"
	"net/http"

	"delegator/cryptogram"
	"delegator/evaluator"
	"delegator/transform"
	"delegator/utils"
)

// NewEvaluateHandler serves POST /evaluate: the caller supplies the whole
// cryptogram as JSON; the response is the final value on success or the
// {"err":"<kind>",...} shape on failure.
func NewEvaluateHandler(deps RouteDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"err":"client"}`, http.StatusMethodNotAllowed)
			return
		}

		var c cryptogram.Cryptogram
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, `{"err":"invalid_structure"}`, http.StatusBadRequest)
			return
		}

		final, _, err := evaluator.Evaluate(r.Context(), &c, deps.Cache, deps.Invoker, deps.Services, deps.Sink, transform.NewScratchpad())
		if err != nil {
			if everr, ok := err.(*evaluator.Error); ok {
				utils.WriteEvalError(w, everr)
				return
			}
			http.Error(w, `{"err":"client"}`, http.StatusInternalServerError)
			return
		}
		utils.WriteJSON(w, final)
	}
}
