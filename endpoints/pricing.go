package endpoints

import (
	"encoding/json"
	"net/http"

	"delegator/cryptogram"
	"delegator/evaluator"
	"delegator/transform"
	"delegator/utils"
)

type resalePriceRequest struct {
	Brand            string  `json:"brand"`
	ImageURL         string  `json:"image_url"`
	Q                string  `json:"q"`
	ProductVariantID *string `json:"product_variant_id,omitempty"`
}

// NewPricingHandler serves POST /resale-price: a single pricing lookup,
// no postflight reshaping.
func NewPricingHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resalePriceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"err":"payload"}`, http.StatusBadRequest)
			return
		}

		c := cryptogram.New().Append(cryptogram.Step{
			Service: "pricing",
			Method:  "lookup",
			Payload: map[string]any{
				"brand":              req.Brand,
				"image_url":          req.ImageURL,
				"q":                  req.Q,
				"product_variant_id": req.ProductVariantID,
			},
		})

		final, _, evalErr := evaluator.Evaluate(r.Context(), c, deps.Cache, deps.Invoker, deps.Services, deps.Sink, transform.NewScratchpad())
		if evalErr != nil {
			writeEvalErr(w, evalErr)
			return
		}
		utils.WriteJSON(w, final)
	}
}
