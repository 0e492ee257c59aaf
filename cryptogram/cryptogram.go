// Package cryptogram holds the wire data model for a cryptogram: an
// ordered sequence of backend-call steps with interleaved JSON transforms,
// plus the service registry a step's service/method fields resolve against.
package cryptogram

import (
	"encoding/json"
	"fmt"

	"delegator/transform"
	"delegator/transform/parse"
)

// Header is a single outbound HTTP header to attach to a step's request.
// Headers is an ordered slice, not a map, because header order is
// significant to some upstreams and must survive a round trip through JSON.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Step is one element of a Cryptogram. A Step with both Service and Method
// empty is inert: its Postflight (if any) runs directly on Payload, useful
// for final result shaping with no backend call.
type Step struct {
	Service           string
	Method            string
	Payload           any
	Preflight         transform.Expr
	Postflight        transform.Expr
	MemoizationPrefix string
	Headers           []Header
}

// Inert reports whether the step has no backend call bound to it.
func (s Step) Inert() bool {
	return s.Service == "" && s.Method == ""
}

// Memoized reports whether the step's outbound payload should be looked up
// in, and written back to, the memoization cache.
func (s Step) Memoized() bool {
	return s.MemoizationPrefix != ""
}

// Cryptogram is an ordered list of steps plus the index of the step the
// evaluator is currently on. Current is part of the cryptogram's own state,
// not a loop-local variable, so a partially evaluated cryptogram can be
// inspected or resumed by a caller that holds onto it.
type Cryptogram struct {
	Current int
	Steps   []Step
}

// New builds an empty cryptogram ready to receive steps via Append.
func New() *Cryptogram {
	return &Cryptogram{}
}

// Append adds a step to the end of the cryptogram and returns the
// cryptogram for chaining.
func (c *Cryptogram) Append(s Step) *Cryptogram {
	c.Steps = append(c.Steps, s)
	return c
}

// --- JSON wire format ---
//
// A Step is encoded with preflight/postflight as jq-lite source strings
// (package transform/parse), matching the configuration format's
// JSON-encoded cryptogram sub-field.

type stepJSON struct {
	Service           string          `json:"service,omitempty"`
	Method            string          `json:"method,omitempty"`
	Payload           json.RawMessage `json:"payload,omitempty"`
	Preflight         *string         `json:"preflight,omitempty"`
	Postflight        *string         `json:"postflight,omitempty"`
	MemoizationPrefix string          `json:"memoizationPrefix,omitempty"`
	Headers           []Header        `json:"headers,omitempty"`
}

func (s Step) MarshalJSON() ([]byte, error) {
	var wire stepJSON
	wire.Service = s.Service
	wire.Method = s.Method
	wire.MemoizationPrefix = s.MemoizationPrefix
	if s.Payload != nil {
		b, err := json.Marshal(s.Payload)
		if err != nil {
			return nil, err
		}
		wire.Payload = b
	}
	if s.Preflight != nil {
		src := parse.Print(s.Preflight)
		wire.Preflight = &src
	}
	if s.Postflight != nil {
		src := parse.Print(s.Postflight)
		wire.Postflight = &src
	}
	if len(s.Headers) > 0 {
		wire.Headers = s.Headers
	}
	return json.Marshal(wire)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var wire stepJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s.Service = wire.Service
	s.Method = wire.Method
	s.MemoizationPrefix = wire.MemoizationPrefix
	if len(wire.Payload) > 0 {
		var v any
		if err := json.Unmarshal(wire.Payload, &v); err != nil {
			return fmt.Errorf("cryptogram: step payload: %w", err)
		}
		s.Payload = v
	}
	if wire.Preflight != nil {
		expr, err := parse.Parse(*wire.Preflight)
		if err != nil {
			return fmt.Errorf("cryptogram: step preflight: %w", err)
		}
		s.Preflight = expr
	}
	if wire.Postflight != nil {
		expr, err := parse.Parse(*wire.Postflight)
		if err != nil {
			return fmt.Errorf("cryptogram: step postflight: %w", err)
		}
		s.Postflight = expr
	}
	s.Headers = wire.Headers
	return nil
}

type cryptogramJSON struct {
	Current int    `json:"current"`
	Steps   []Step `json:"steps"`
}

func (c Cryptogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(cryptogramJSON{Current: c.Current, Steps: c.Steps})
}

func (c *Cryptogram) UnmarshalJSON(data []byte) error {
	var wire cryptogramJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.Current = wire.Current
	c.Steps = wire.Steps
	return nil
}

// Parse decodes a JSON-encoded cryptogram, as found in a virtualhost
// route's configured "cryptogram" field.
func Parse(src string) (*Cryptogram, error) {
	var c Cryptogram
	if err := json.Unmarshal([]byte(src), &c); err != nil {
		return nil, fmt.Errorf("cryptogram: %w", err)
	}
	return &c, nil
}
