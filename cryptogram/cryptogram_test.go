package cryptogram

import (
	"testing"

	"delegator/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepJSONRoundTrip(t *testing.T) {
	c, err := Parse(`{
		"current": 0,
		"steps": [
			{
				"service": "catalog",
				"method": "search",
				"payload": {"q": "Foo"},
				"postflight": ".results | map(.id)",
				"memoizationPrefix": "u1-",
				"headers": [{"name": "X-Trace", "value": "abc"}]
			}
		]
	}`)
	require.NoError(t, err)
	require.Len(t, c.Steps, 1)

	s := c.Steps[0]
	assert.Equal(t, "catalog", s.Service)
	assert.Equal(t, "search", s.Method)
	assert.Equal(t, map[string]any{"q": "Foo"}, s.Payload)
	assert.Equal(t, "u1-", s.MemoizationPrefix)
	require.Len(t, s.Headers, 1)
	assert.Equal(t, "X-Trace", s.Headers[0].Name)
	assert.Equal(t, transform.Map{First: transform.At{Key: "results"}, Second: transform.Array{Sub: transform.At{Key: "id"}}}, s.Postflight)
}

func TestStepHeadersPreserveOrderThroughRoundTrip(t *testing.T) {
	s := Step{
		Service: "catalog",
		Method:  "search",
		Headers: []Header{
			{Name: "X-First", Value: "1"},
			{Name: "X-Second", Value: "2"},
			{Name: "X-Third", Value: "3"},
		},
	}

	raw, err := s.MarshalJSON()
	require.NoError(t, err)

	var got Step
	require.NoError(t, got.UnmarshalJSON(raw))

	require.Len(t, got.Headers, 3)
	assert.Equal(t, []Header{
		{Name: "X-First", Value: "1"},
		{Name: "X-Second", Value: "2"},
		{Name: "X-Third", Value: "3"},
	}, got.Headers)
}

func TestInertStep(t *testing.T) {
	c, err := Parse(`{"current": 0, "steps": [{"postflight": "."}]}`)
	require.NoError(t, err)
	assert.True(t, c.Steps[0].Inert())
}

func TestStepWithServiceIsNotInert(t *testing.T) {
	c, err := Parse(`{"current": 0, "steps": [{"service": "catalog", "method": "search"}]}`)
	require.NoError(t, err)
	assert.False(t, c.Steps[0].Inert())
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	c := New().Append(Step{
		Service:           "catalog",
		Method:            "lookup",
		Payload:           map[string]any{"id": "x"},
		Postflight:        transform.At{Key: "results"},
		MemoizationPrefix: "p-",
	})
	data, err := c.MarshalJSON()
	require.NoError(t, err)

	var round Cryptogram
	require.NoError(t, round.UnmarshalJSON(data))
	require.Len(t, round.Steps, 1)
	assert.Equal(t, c.Steps[0].Service, round.Steps[0].Service)
	assert.Equal(t, c.Steps[0].Postflight, round.Steps[0].Postflight)
}

func TestServiceRegistryLookup(t *testing.T) {
	reg := ServiceRegistry{
		"catalog": ServiceDefinition{
			Scheme:    "https",
			Authority: "catalog.internal",
			Methods: map[string]MethodDef{
				"search": {HTTPMethod: "POST", PathAndQuery: "/search/"},
			},
		},
	}
	svc, ok := reg.Service("catalog")
	require.True(t, ok)
	meth, ok := svc.Method("search")
	require.True(t, ok)
	assert.Equal(t, "POST", meth.HTTPMethod)

	_, ok = reg.Service("missing")
	assert.False(t, ok)

	_, ok = svc.Method("missing")
	assert.False(t, ok)
}
