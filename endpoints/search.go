package endpoints

import (
	"net/http"
	"strconv"
	"strings"

	"delegator/auth"
	"delegator/cryptogram"
	"delegator/evaluator"
	"delegator/transform"
	"delegator/utils"

	"github.com/google/uuid"
)

const (
	eventSearch       = "search"
	eventSearchResult = "search_result"
)

// parseCursor decodes the "start" query parameter. It accepts either a
// legacy 1-based integer offset, or a "catalog:<n>" / "catalog:<n>:<bucket>"
// cursor produced by a previous search's next_start.
func parseCursor(start string) (idx int, bucket *string, err error) {
	if start == "" {
		return 0, nil, nil
	}
	parts := strings.SplitN(start, ":", 3)
	switch len(parts) {
	case 1:
		legacy, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, nil, err
		}
		return legacy - 1, nil, nil
	case 2:
		if parts[0] != "catalog" {
			return 0, nil, nil
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, nil, err
		}
		return n, nil, nil
	default:
		if parts[0] != "catalog" {
			return 0, nil, nil
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, nil, err
		}
		b := parts[2]
		return n, &b, nil
	}
}

// NewSearchHandler serves GET /explore: a keyword search against the
// catalog service with cursor-style pagination, emitting search/
// search_result events keyed to the caller's bearer owner id (if any).
func NewSearchHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := q.Get("q")
		size := 10
		if s := q.Get("size"); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				size = n
			}
		}
		startIdx, bucket, err := parseCursor(q.Get("start"))
		if err != nil {
			http.Error(w, `{"err":"invalid_page"}`, http.StatusBadRequest)
			return
		}

		var ownerID *string
		if fields, ok := auth.ExtractBearer(r.Header.Get("Authorization")); ok {
			id := fields.OwnerID
			ownerID = &id
		}

		searchID := uuid.New().String()
		pageContext := map[string]any{"owner_id": ownerID}

		payload := map[string]any{"q": query, "start": startIdx, "size": size}
		if bucket != nil {
			payload["bucket_info"] = *bucket
		}

		c := cryptogram.New().
			Append(cryptogram.Step{
				Service: "catalog",
				Method:  "explore",
				Payload: payload,
				Preflight: transform.Splat{Subs: []transform.Expr{
					transform.Map{
						First: transform.Object{Entries: []transform.ObjectEntry{
							{Key: "query", Sub: transform.At{Key: "q"}},
							{Key: "page_size", Sub: transform.At{Key: "size"}},
						}},
						Second: transform.EmitEvent{
							OwnerID: ownerID, Topic: deps.UserActionTopic,
							EventType: eventSearch, ContextID: searchID, PageContext: pageContext,
						},
					},
					transform.Identity{},
				}},
				Postflight: transform.Splat{Subs: []transform.Expr{
					transform.Map{First: transform.At{Key: "next_start"}, Second: transform.Set{Name: "next_start"}},
					transform.Map{First: transform.At{Key: "has_more"}, Second: transform.Set{Name: "has_more"}},
					transform.Map{
						First: transform.Object{Entries: []transform.ObjectEntry{
							{Key: "product_variant_ids", Sub: transform.At{Key: "product_variant_ids"}},
							{Key: "length", Sub: transform.Map{First: transform.At{Key: "product_variant_ids"}, Second: transform.Length{}}},
						}},
						Second: transform.EmitEvent{
							OwnerID: ownerID, Topic: deps.UserActionTopic,
							EventType: eventSearchResult, ContextID: searchID, PageContext: pageContext,
						},
					},
					transform.Object{Entries: []transform.ObjectEntry{
						{Key: "product_variant_ids", Sub: transform.At{Key: "product_variant_ids"}},
					}},
				}},
			}).
			Append(cryptogram.Step{
				Service: "catalog",
				Method:  "lookup",
				Postflight: transform.Object{Entries: []transform.ObjectEntry{
					{Key: "results", Sub: transform.At{Key: "product_variants"}},
					{Key: "next_start", Sub: transform.Get{Name: "next_start"}},
					{Key: "has_more", Sub: transform.Get{Name: "has_more"}},
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

func writeEvalErr(w http.ResponseWriter, err error) {
	if everr, ok := err.(*evaluator.Error); ok {
		utils.WriteEvalError(w, everr)
		return
	}
	http.Error(w, `{"err":"client"}`, http.StatusInternalServerError)
}
