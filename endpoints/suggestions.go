package endpoints

import (
	"encoding/json"
	"net/http"

	"delegator/cryptogram"
	"delegator/evaluator"
	"delegator/transform"
	"delegator/utils"
)

type suggestionsRequest struct {
	Q string `json:"q"`
}

// NewSuggestionsHandler serves POST /explore/suggestions: autocomplete
// against the catalog service, no postflight reshaping.
func NewSuggestionsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req suggestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"err":"payload"}`, http.StatusBadRequest)
			return
		}

		c := cryptogram.New().Append(cryptogram.Step{
			Service: "catalog",
			Method:  "autocomplete",
			Payload: map[string]any{"q": req.Q},
		})

		final, _, evalErr := evaluator.Evaluate(r.Context(), c, deps.Cache, deps.Invoker, deps.Services, deps.Sink, transform.NewScratchpad())
		if evalErr != nil {
			writeEvalErr(w, evalErr)
			return
		}
		utils.WriteJSON(w, final)
	}
}
