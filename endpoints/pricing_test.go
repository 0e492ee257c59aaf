package endpoints

import (
	"net/http/httptest"
	"strings"
	"testing"

	"delegator/cache"
	"delegator/cryptogram"
	"delegator/eventsink"
	"delegator/invoker"

	"github.com/stretchr/testify/assert"
)

func pricingRegistry() cryptogram.ServiceRegistry {
	return cryptogram.ServiceRegistry{
		"pricing": cryptogram.ServiceDefinition{
			Scheme:    "https",
			Authority: "pricing.internal",
			Methods: map[string]cryptogram.MethodDef{
				"lookup": {HTTPMethod: "POST", PathAndQuery: "/resale-price/"},
			},
		},
	}
}

func TestPricingHandler(t *testing.T) {
	deps := Deps{Cache: cache.New(), Invoker: &invoker.TestInvoker{}, Services: pricingRegistry(), Sink: eventsink.NoopSink{}}
	h := NewPricingHandler(deps)

	req := httptest.NewRequest("POST", "/resale-price", strings.NewReader(`{"brand":"Gucci","image_url":"https://x","q":"bag"}`))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"brand":"Gucci","image_url":"https://x","q":"bag","product_variant_id":null}`, rec.Body.String())
}

func TestPricingHandlerBadBody(t *testing.T) {
	deps := Deps{Cache: cache.New(), Invoker: &invoker.TestInvoker{}, Services: pricingRegistry(), Sink: eventsink.NoopSink{}}
	h := NewPricingHandler(deps)

	req := httptest.NewRequest("POST", "/resale-price", strings.NewReader(`nope`))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, 400, rec.Code)
}
