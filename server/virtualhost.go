package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"delegator/config"
	"delegator/cryptogram"
	"delegator/endpoints"
	"delegator/evaluator"
	"delegator/transform"
	"delegator/utils"
)

// NewVirtualhostRouter dispatches by the inbound Host header to a
// virtualhost's configured edge routes (spec.md §6.1: "each edge route is
// bound to a virtualhost; the front-end routes by Host header"). It tries
// the host's config-declared cryptogram routes first, then falls back to
// the built-in named endpoints (search, suggestions, product lookup,
// pricing, history, closet) supplemented from original_source.
func NewVirtualhostRouter(cfg *config.Config, deps RouteDeps) http.Handler {
	eDeps := deps.endpointDeps(userActionTopic(cfg))
	builtins := builtinRoutes(eDeps)
	imageHandler := endpoints.NewProductVariantImageHandler(eDeps)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := hostOnly(r.Host)

		cg, ok, err := cfg.Route(host, r.URL.Path)
		if err != nil {
			http.Error(w, `{"err":"invalid_structure"}`, http.StatusInternalServerError)
			return
		}
		if ok {
			serveConfiguredRoute(w, r, cg, deps)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/product_variants/") && strings.HasSuffix(r.URL.Path, ".jpg") && r.Method == http.MethodGet {
			pvid := strings.TrimPrefix(r.URL.Path, "/product_variants/")
			imageHandler(w, r, pvid)
			return
		}

		if h, ok := matchBuiltin(builtins, r); ok {
			h(w, r)
			return
		}

		http.NotFound(w, r)
	})
}

func userActionTopic(cfg *config.Config) string {
	if ev, ok := cfg.Events["user_action"]; ok {
		return ev.QueueURL
	}
	return ""
}

func hostOnly(hostport string) string {
	if i := strings.IndexByte(hostport, ':'); i >= 0 {
		return hostport[:i]
	}
	return hostport
}

func serveConfiguredRoute(w http.ResponseWriter, r *http.Request, cg *cryptogram.Cryptogram, deps RouteDeps) {
	var body any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	final, _, err := evaluator.EvaluateEdge(r.Context(), cg, body, deps.Cache, deps.Invoker, deps.Services, deps.Sink, transform.NewScratchpad())
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

type builtinRoute struct {
	path   string
	method string
	handle http.HandlerFunc
}

func builtinRoutes(deps endpoints.Deps) []builtinRoute {
	return []builtinRoute{
		{"/explore", http.MethodGet, endpoints.NewSearchHandler(deps)},
		{"/explore/suggestions", http.MethodPost, endpoints.NewSuggestionsHandler(deps)},
		{"/explore/history", http.MethodPost, endpoints.NewHistoryHandler(deps)},
		{"/product_variants", http.MethodGet, endpoints.NewProductVariantsHandler(deps)},
		{"/resale-price", http.MethodPost, endpoints.NewPricingHandler(deps)},
		{"/closet", http.MethodPost, endpoints.NewClosetHandler(deps)},
	}
}

func matchBuiltin(routes []builtinRoute, r *http.Request) (http.HandlerFunc, bool) {
	for _, rt := range routes {
		if rt.path == r.URL.Path && rt.method == r.Method {
			return rt.handle, true
		}
	}
	return nil, false
}
