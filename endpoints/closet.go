package endpoints

import (
	"net/http"

	"delegator/cryptogram"
	"delegator/evaluator"
	"delegator/transform"
	"delegator/utils"
)

// NewClosetHandler serves POST /closet: an inert, service-less
// cryptogram with no backend calls, returning {}. Kept for parity with
// clients still calling this route.
func NewClosetHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := cryptogram.New().Append(cryptogram.Step{Payload: map[string]any{}})

		final, _, evalErr := evaluator.Evaluate(r.Context(), c, deps.Cache, deps.Invoker, deps.Services, deps.Sink, transform.NewScratchpad())
		if evalErr != nil {
			writeEvalErr(w, evalErr)
			return
		}
		utils.WriteJSON(w, final)
	}
}
