package parse

import (
	"testing"

	"delegator/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAt(t *testing.T) {
	e, err := Parse(".foo")
	require.NoError(t, err)
	assert.Equal(t, transform.At{Key: "foo"}, e)
}

func TestParseIdentity(t *testing.T) {
	e, err := Parse(".")
	require.NoError(t, err)
	assert.Equal(t, transform.Identity{}, e)
}

func TestParsePipe(t *testing.T) {
	e, err := Parse(".foo | .bar")
	require.NoError(t, err)
	assert.Equal(t, transform.Map{First: transform.At{Key: "foo"}, Second: transform.At{Key: "bar"}}, e)
}

func TestParseMapArray(t *testing.T) {
	e, err := Parse("map(.id)")
	require.NoError(t, err)
	assert.Equal(t, transform.Array{Sub: transform.At{Key: "id"}}, e)
}

func TestParseObject(t *testing.T) {
	e, err := Parse(`{ "a": .x, "b": .y }`)
	require.NoError(t, err)
	obj, ok := e.(transform.Object)
	require.True(t, ok)
	require.Len(t, obj.Entries, 2)
	assert.Equal(t, "a", obj.Entries[0].Key)
	assert.Equal(t, transform.At{Key: "x"}, obj.Entries[0].Sub)
	assert.Equal(t, "b", obj.Entries[1].Key)
	assert.Equal(t, transform.At{Key: "y"}, obj.Entries[1].Sub)
}

func TestParseGetSet(t *testing.T) {
	e, err := Parse(`get("x")`)
	require.NoError(t, err)
	assert.Equal(t, transform.Get{Name: "x"}, e)

	e, err = Parse(`set("x")`)
	require.NoError(t, err)
	assert.Equal(t, transform.Set{Name: "x"}, e)
}

func TestParseConstObject(t *testing.T) {
	e, err := Parse(`const({"status": "ok", "n": 3})`)
	require.NoError(t, err)
	c, ok := e.(transform.Const)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"status": "ok", "n": float64(3)}, c.Value)
}

func TestParseConstString(t *testing.T) {
	e, err := Parse(`const("hi")`)
	require.NoError(t, err)
	assert.Equal(t, transform.Const{Value: "hi"}, e)
}

func TestParseFlattenLength(t *testing.T) {
	e, err := Parse("flatten")
	require.NoError(t, err)
	assert.Equal(t, transform.Flatten{}, e)

	e, err = Parse("length")
	require.NoError(t, err)
	assert.Equal(t, transform.Length{}, e)
}

func TestParseJoin(t *testing.T) {
	e, err := Parse(`join(",")`)
	require.NoError(t, err)
	assert.Equal(t, transform.Join{Sep: ","}, e)
}

func TestParseDefault(t *testing.T) {
	e, err := Parse(`default(const("x"))`)
	require.NoError(t, err)
	assert.Equal(t, transform.Default{Sub: transform.Const{Value: "x"}}, e)
}

func TestParseSplat(t *testing.T) {
	e, err := Parse(`.a, .b`)
	require.NoError(t, err)
	assert.Equal(t, transform.Splat{Subs: []transform.Expr{transform.At{Key: "a"}, transform.At{Key: "b"}}}, e)
}

func TestParseErrorHasPosition(t *testing.T) {
	_, err := Parse(".foo | ???")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Greater(t, perr.Pos, 0)
}

// Property 9: round-trip law — Parse(Print(e)) == e for every variant the
// grammar can produce.
func TestRoundTrip(t *testing.T) {
	exprs := []transform.Expr{
		transform.Identity{},
		transform.At{Key: "id"},
		transform.Map{First: transform.At{Key: "a"}, Second: transform.At{Key: "b"}},
		transform.Array{Sub: transform.At{Key: "id"}},
		transform.Object{Entries: []transform.ObjectEntry{{Key: "a", Sub: transform.At{Key: "x"}}}},
		transform.Get{Name: "x"},
		transform.Set{Name: "x"},
		transform.Join{Sep: ","},
		transform.Default{Sub: transform.Const{Value: "z"}},
		transform.Flatten{},
		transform.Length{},
		transform.Const{Value: map[string]any{"a": float64(1)}},
		transform.Splat{Subs: []transform.Expr{transform.At{Key: "a"}, transform.At{Key: "b"}}},
		transform.EmitEvent{Topic: "user_action", EventType: "click", ContextID: "ctx1"},
	}
	for _, e := range exprs {
		printed := Print(e)
		parsed, err := Parse(printed)
		require.NoError(t, err, "printed: %s", printed)
		assert.Equal(t, e, parsed, "printed: %s", printed)
	}
}

func TestEmitEventRoundTripWithOwnerAndPageContext(t *testing.T) {
	owner := "user-42"
	e := transform.EmitEvent{
		OwnerID:     &owner,
		Topic:       "checkout",
		EventType:   "purchase",
		ContextID:   "ctx-9",
		PageContext: map[string]any{"cart_id": "c-1"},
	}
	printed := Print(e)
	parsed, err := Parse(printed)
	require.NoError(t, err)
	got, ok := parsed.(transform.EmitEvent)
	require.True(t, ok)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, owner, *got.OwnerID)
	assert.Equal(t, e.Topic, got.Topic)
	assert.Equal(t, e.EventType, got.EventType)
	assert.Equal(t, e.ContextID, got.ContextID)
	assert.Equal(t, e.PageContext, got.PageContext)
}
