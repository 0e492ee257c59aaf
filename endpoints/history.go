package endpoints

import (
	"net/http"

	"delegator/auth"
	"delegator/cryptogram"
	"delegator/evaluator"
	"delegator/transform"
	"delegator/utils"
)

// historyFallback is served whenever the evaluator fails, per the error
// response contract's allowance for a hardcoded fallback on search-history.
var historyFallback = map[string]any{
	"results": []map[string]string{
		{"id": "80A1B395-986A-4140-9C78-56D26EB6E25E", "q": "Alison Lou"},
		{"id": "D283ECDA-BA2D-4C38-875A-366E0A80AE85", "q": "Louis Vuitton"},
		{"id": "81A4999D-54B2-4D78-8E3F-91C9645CBEB7", "q": "Christian Louboutin"},
		{"id": "CB87611D-AD9B-4CCA-9DBE-10D44369AC6C", "q": "Jean Louis Scherrer"},
	},
}

// NewHistoryHandler serves POST /explore/history. Unlike the other routes,
// any evaluator error is swallowed and a hardcoded fallback returned with
// 200 rather than propagated as a 500.
func NewHistoryHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ownerID *string
		if fields, ok := auth.ExtractBearer(r.Header.Get("Authorization")); ok {
			id := fields.OwnerID
			ownerID = &id
		}

		c := cryptogram.New().Append(cryptogram.Step{
			Service: "apex",
			Method:  "search_history",
			Payload: map[string]any{"owner_id": ownerID},
		})

		final, _, evalErr := evaluator.Evaluate(r.Context(), c, deps.Cache, deps.Invoker, deps.Services, deps.Sink, transform.NewScratchpad())
		if evalErr != nil {
			utils.WriteJSON(w, historyFallback)
			return
		}
		utils.WriteJSON(w, final)
	}
}
