package transform

import (
	"fmt"

	"delegator/logger"
)

// EventSink is the capability EmitEvent needs. It is defined here (rather
// than imported from package eventsink) so that transform has no
// dependency on the concrete sink implementations; package eventsink's
// Sink type satisfies this interface structurally.
type EventSink interface {
	Emit(topic string, ownerID *string, eventType, contextID string, payload any, pageContext any) error
}

// Context carries the ambient state an expression evaluation needs beyond
// its input value: the scratchpad it reads/writes and an optional event
// sink for EmitEvent. Sink may be nil, in which case EmitEvent is a no-op
// passthrough.
type Context struct {
	Scratchpad *Scratchpad
	Sink       EventSink
}

// Eval evaluates expr against input under ctx. It is pure except for
// scratchpad writes and EmitEvent's side effect. On success it returns
// (value, nil); on failure it returns (nil, *StepError) with no partial
// result.
func Eval(expr Expr, input any, ctx *Context) (any, *StepError) {
	switch e := expr.(type) {
	case At:
		return evalAt(e, input)
	case Array:
		return evalArray(e, input, ctx)
	case Object:
		return evalObject(e, input, ctx)
	case Splat:
		return evalSplat(e, input, ctx)
	case Set:
		ctx.Scratchpad.Set(e.Name, input)
		return input, nil
	case Get:
		v, ok := ctx.Scratchpad.Get(e.Name)
		if !ok {
			return nil, fail(fmt.Sprintf("get(%q)", e.Name), nil)
		}
		return v, nil
	case Const:
		return e.Value, nil
	case Identity:
		return input, nil
	case Map:
		first, err := Eval(e.First, input, ctx)
		if err != nil {
			return nil, err
		}
		return Eval(e.Second, first, ctx)
	case Length:
		return evalLength(input), nil
	case Join:
		return evalJoin(e, input)
	case Default:
		if input == nil {
			return Eval(e.Sub, nil, ctx)
		}
		return input, nil
	case Flatten:
		return evalFlatten(input)
	case EmitEvent:
		return evalEmitEvent(e, input, ctx)
	default:
		return nil, fail(fmt.Sprintf("unknown expr %T", expr), nil)
	}
}

func evalAt(e At, input any) (any, *StepError) {
	obj, ok := input.(map[string]any)
	if !ok {
		return nil, fail(e.Key, nil)
	}
	v, ok := obj[e.Key]
	if !ok {
		return nil, fail(e.Key, objectKeys(obj))
	}
	return v, nil
}

func evalArray(e Array, input any, ctx *Context) (any, *StepError) {
	arr, ok := input.([]any)
	if !ok {
		return nil, fail("map(...)", nil)
	}
	out := make([]any, len(arr))
	for i, elem := range arr {
		v, err := Eval(e.Sub, elem, ctx)
		if err != nil {
			return nil, prepend(err, fmt.Sprintf("[%d]", i))
		}
		out[i] = v
	}
	return out, nil
}

func evalObject(e Object, input any, ctx *Context) (any, *StepError) {
	out := make(map[string]any, len(e.Entries))
	for _, entry := range e.Entries {
		v, err := Eval(entry.Sub, input, ctx)
		if err != nil {
			return nil, prepend(err, entry.Key)
		}
		out[entry.Key] = v // repeated keys: last one wins
	}
	return out, nil
}

func evalSplat(e Splat, input any, ctx *Context) (any, *StepError) {
	var last any
	for i, sub := range e.Subs {
		v, err := Eval(sub, input, ctx)
		if err != nil {
			return nil, prepend(err, fmt.Sprintf("splat[%d]", i))
		}
		last = v
	}
	return last, nil
}

func evalLength(input any) any {
	switch v := input.(type) {
	case []any:
		return float64(len(v))
	case map[string]any:
		return float64(len(v))
	default:
		logger.Warn("transform: length of non-sized value %T, returning null", input)
		return nil
	}
}

func evalJoin(e Join, input any) (any, *StepError) {
	arr, ok := input.([]any)
	if !ok {
		return nil, &StepError{}
	}
	strs := make([]string, 0, len(arr))
	for _, elem := range arr {
		s, ok := elem.(string)
		if !ok {
			logger.Warn("transform: join skipping non-string element %T", elem)
			continue
		}
		strs = append(strs, s)
	}
	out := ""
	for i, s := range strs {
		if i > 0 {
			out += e.Sep
		}
		out += s
	}
	return out, nil
}

func evalFlatten(input any) (any, *StepError) {
	arr, ok := input.([]any)
	if !ok {
		return nil, fail("flatten", nil)
	}
	out := make([]any, 0, len(arr))
	for i, elem := range arr {
		inner, ok := elem.([]any)
		if !ok {
			return nil, fail(fmt.Sprintf("flatten[%d]", i), nil)
		}
		out = append(out, inner...)
	}
	return out, nil
}

func evalEmitEvent(e EmitEvent, input any, ctx *Context) (any, *StepError) {
	if ctx.Sink != nil {
		if err := ctx.Sink.Emit(e.Topic, e.OwnerID, e.EventType, e.ContextID, input, e.PageContext); err != nil {
			logger.Warn("transform: event sink emit failed for topic %s: %v", e.Topic, err)
		}
	}
	return input, nil
}

func objectKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	return keys
}
