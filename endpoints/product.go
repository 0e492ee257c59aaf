package endpoints

import (
	"net/http"
	"strings"

	"delegator/cryptogram"
	"delegator/evaluator"
	"delegator/transform"
	"delegator/utils"
)

// NewProductVariantsHandler serves GET /product_variants: a batch lookup
// by one or more repeated "id" query params.
func NewProductVariantsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["id"]

		c := cryptogram.New().Append(cryptogram.Step{
			Service: "catalog",
			Method:  "lookup",
			Payload: map[string]any{"product_variant_ids": ids},
			Postflight: transform.Object{Entries: []transform.ObjectEntry{
				{Key: "results", Sub: transform.At{Key: "product_variants"}},
			}},
		})

		final, _, evalErr := evaluator.Evaluate(r.Context(), c, deps.Cache, deps.Invoker, deps.Services, deps.Sink, transform.NewScratchpad())
		if evalErr != nil {
			writeEvalErr(w, evalErr)
			return
		}
		utils.WriteJSON(w, final)
	}
}

// NewProductVariantImageHandler serves GET /product_variants/{pvid}.jpg:
// looks up a single variant and redirects to its primary image, or 404 if
// it has none. pvid is extracted by the caller from the URL path.
func NewProductVariantImageHandler(deps Deps) func(w http.ResponseWriter, r *http.Request, pvid string) {
	return func(w http.ResponseWriter, r *http.Request, pvid string) {
		pvid = strings.TrimSuffix(pvid, ".jpg")

		c := cryptogram.New().Append(cryptogram.Step{
			Service: "catalog",
			Method:  "lookup",
			Payload: map[string]any{"product_variant_ids": []string{pvid}},
			Postflight: transform.Object{Entries: []transform.ObjectEntry{
				{Key: "results", Sub: transform.At{Key: "product_variants"}},
			}},
		})

		final, _, evalErr := evaluator.Evaluate(r.Context(), c, deps.Cache, deps.Invoker, deps.Services, deps.Sink, transform.NewScratchpad())
		if evalErr != nil {
			writeEvalErr(w, evalErr)
			return
		}

		image, ok := firstPrimaryImage(final)
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, image, http.StatusTemporaryRedirect)
	}
}

func firstPrimaryImage(final any) (string, bool) {
	obj, ok := final.(map[string]any)
	if !ok {
		return "", false
	}
	results, ok := obj["results"].([]any)
	if !ok || len(results) == 0 {
		return "", false
	}
	first, ok := results[0].(map[string]any)
	if !ok {
		return "", false
	}
	image, ok := first["primary_image"].(string)
	if !ok {
		return "", false
	}
	return image, true
}
