package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"delegator/transform"
)

// Print renders expr back to jq-lite surface syntax such that
// Parse(Print(e)) == e for any e in the parser's grammar image (the
// supported variants: At, Array, Object, Splat, Set, Get, Const,
// Identity, Map, Length, Join, Default, Flatten, EmitEvent).
func Print(expr transform.Expr) string {
	switch e := expr.(type) {
	case transform.Identity:
		return "."
	case transform.At:
		return "." + e.Key
	case transform.Map:
		return Print(e.First) + " | " + Print(e.Second)
	case transform.Array:
		return "map(" + Print(e.Sub) + ")"
	case transform.Object:
		parts := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			parts[i] = fmt.Sprintf("%q: %s", entry.Key, Print(entry.Sub))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case transform.Splat:
		parts := make([]string, len(e.Subs))
		for i, sub := range e.Subs {
			parts[i] = Print(sub)
		}
		return strings.Join(parts, ", ")
	case transform.Get:
		return fmt.Sprintf("get(%q)", e.Name)
	case transform.Set:
		return fmt.Sprintf("set(%q)", e.Name)
	case transform.Join:
		return fmt.Sprintf("join(%q)", e.Sep)
	case transform.Default:
		return "default(" + Print(e.Sub) + ")"
	case transform.Flatten:
		return "flatten"
	case transform.Length:
		return "length"
	case transform.Const:
		b, err := json.Marshal(e.Value)
		if err != nil {
			panic(fmt.Sprintf("parse.Print: const value not marshalable: %v", err))
		}
		return "const(" + string(b) + ")"
	case transform.EmitEvent:
		wire := emitEventJSON{
			OwnerID:     e.OwnerID,
			Topic:       e.Topic,
			EventType:   e.EventType,
			ContextID:   e.ContextID,
			PageContext: e.PageContext,
		}
		b, err := json.Marshal(wire)
		if err != nil {
			panic(fmt.Sprintf("parse.Print: emit_event value not marshalable: %v", err))
		}
		return "emit_event(" + string(b) + ")"
	default:
		panic(fmt.Sprintf("parse.Print: %T has no surface syntax", expr))
	}
}

// emitEventJSON is the JSON shape embedded inside an emit_event(...) call,
// shared by Print and the parser so the two stay in lockstep.
type emitEventJSON struct {
	OwnerID     *string `json:"owner_id,omitempty"`
	Topic       string  `json:"topic"`
	EventType   string  `json:"event_type"`
	ContextID   string  `json:"context_id"`
	PageContext any     `json:"page_context,omitempty"`
}
