// Package evaluator implements the cryptogram step loop: the linear sweep
// that turns an inbound cryptogram into a final JSON value by threading
// each step's payload through preflight, the backend call (or inert
// postflight), and postflight.
package evaluator

import (
	"context"
	"fmt"

	"delegator/cache"
	"delegator/cryptogram"
	"delegator/invoker"
	"delegator/logger"
	"delegator/transform"
)

// ErrorKind enumerates the evaluator's failure modes, matching the error
// response's "err" field.
type ErrorKind string

const (
	KindNoStepsSpecified  ErrorKind = "no_steps_specified"
	KindInvalidStructure  ErrorKind = "invalid_structure"
	KindUnknownService    ErrorKind = "unknown_service"
	KindUnknownMethod     ErrorKind = "unknown_method"
	KindUnknownStep       ErrorKind = "unknown_step"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindSend              ErrorKind = "client"
	KindJSON              ErrorKind = "protocol"
	KindPayload           ErrorKind = "payload"
	KindNetwork           ErrorKind = "network"
	KindURIBuilder        ErrorKind = "uri_builder_error"
	KindUTF8              ErrorKind = "utf8_error"
)

// Error is the evaluator's typed failure.
type Error struct {
	Kind ErrorKind
	// Step identifies the offending step index for kinds that have one.
	Step int
	// Service/Method/StepError/Network carry kind-specific context.
	Service    string
	Method     string
	StepError  *transform.StepError
	NetworkCtx any
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("evaluator: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("evaluator: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// Evaluate runs the full step loop over c and returns the final payload
// plus the mutated cryptogram (whose Current field reflects how far the
// sweep got). On any failure, the returned cryptogram still reflects
// progress made before the failing step.
func Evaluate(
	ctx context.Context,
	c *cryptogram.Cryptogram,
	cch *cache.Cache,
	inv invoker.Invoker,
	services cryptogram.ServiceRegistry,
	sink transform.EventSink,
	sp *transform.Scratchpad,
) (any, *cryptogram.Cryptogram, error) {
	if len(c.Steps) == 0 {
		return nil, c, &Error{Kind: KindNoStepsSpecified}
	}

	tctx := &transform.Context{Scratchpad: sp, Sink: sink}

	var final any
	for c.Current < len(c.Steps) {
		i := c.Current
		step := c.Steps[i]

		outbound, err := preflight(step, tctx)
		if err != nil {
			return nil, c, &Error{Kind: KindInvalidStructure, Step: i, StepError: err}
		}

		var memoKey string
		if step.Memoized() {
			memoKey = cache.HashKey(step.MemoizationPrefix, outbound)
		}

		newPayload, evalErr := runStep(ctx, step, outbound, cch, inv, services, tctx, memoKey, i)
		if evalErr != nil {
			return nil, c, evalErr
		}

		if i+1 < len(c.Steps) {
			if c.Steps[i+1].Payload != nil {
				logger.Warn("evaluator: discarding payload for step %d", i+1)
			}
			c.Steps[i+1].Payload = newPayload
		} else {
			final = newPayload
		}
		c.Current++
	}

	return final, c, nil
}

func preflight(step cryptogram.Step, tctx *transform.Context) (any, *transform.StepError) {
	outbound := step.Payload
	if step.Preflight == nil {
		return outbound, nil
	}
	return transform.Eval(step.Preflight, outbound, tctx)
}

func runStep(
	ctx context.Context,
	step cryptogram.Step,
	outbound any,
	cch *cache.Cache,
	inv invoker.Invoker,
	services cryptogram.ServiceRegistry,
	tctx *transform.Context,
	memoKey string,
	idx int,
) (any, *Error) {
	if memoKey != "" {
		if cached, hit := cch.Get(memoKey); hit {
			return cached, nil
		}
	}

	if !step.Inert() {
		return runBackendStep(ctx, step, outbound, cch, inv, services, tctx, memoKey, idx)
	}

	if step.Postflight != nil {
		newPayload, err := transform.Eval(step.Postflight, outbound, tctx)
		if err != nil {
			return nil, &Error{Kind: KindInvalidStructure, Step: idx, StepError: err}
		}
		return newPayload, nil
	}
	return outbound, nil
}

func runBackendStep(
	ctx context.Context,
	step cryptogram.Step,
	outbound any,
	cch *cache.Cache,
	inv invoker.Invoker,
	services cryptogram.ServiceRegistry,
	tctx *transform.Context,
	memoKey string,
	idx int,
) (any, *Error) {
	svc, ok := services.Service(step.Service)
	if !ok {
		return nil, &Error{Kind: KindUnknownService, Step: idx, Service: step.Service}
	}
	meth, ok := svc.Method(step.Method)
	if !ok {
		return nil, &Error{Kind: KindUnknownMethod, Step: idx, Service: step.Service, Method: step.Method}
	}

	uri := buildURI(svc.Scheme, svc.Authority, meth.PathAndQuery)
	resp, err := inv.IssueRequest(ctx, meth.HTTPMethod, uri, outbound, toInvokerHeaders(step.Headers))
	if err != nil {
		return nil, translateInvokerError(err, idx)
	}

	newPayload := resp
	if step.Postflight != nil {
		v, perr := transform.Eval(step.Postflight, resp, tctx)
		if perr != nil {
			return nil, &Error{Kind: KindInvalidStructure, Step: idx, StepError: perr}
		}
		newPayload = v
	}

	if memoKey != "" {
		cch.Insert(memoKey, newPayload, cache.DefaultTTL)
	}
	return newPayload, nil
}

func buildURI(scheme, authority, pathAndQuery string) string {
	return fmt.Sprintf("%s://%s%s", scheme, authority, pathAndQuery)
}

func toInvokerHeaders(headers []cryptogram.Header) []invoker.Header {
	if len(headers) == 0 {
		return nil
	}
	out := make([]invoker.Header, len(headers))
	for i, h := range headers {
		out[i] = invoker.Header{Name: h.Name, Value: h.Value}
	}
	return out
}

func translateInvokerError(err error, idx int) *Error {
	ierr, ok := err.(*invoker.Error)
	if !ok {
		return &Error{Kind: KindSend, Step: idx, cause: err}
	}
	switch ierr.Kind {
	case invoker.KindSend:
		return &Error{Kind: KindSend, Step: idx, cause: err}
	case invoker.KindJSON:
		return &Error{Kind: KindJSON, Step: idx, cause: err}
	case invoker.KindPayload:
		return &Error{Kind: KindPayload, Step: idx, cause: err}
	case invoker.KindNetwork:
		return &Error{Kind: KindNetwork, Step: idx, NetworkCtx: ierr.Context, cause: err}
	case invoker.KindURIBuilder:
		return &Error{Kind: KindURIBuilder, Step: idx, cause: err}
	case invoker.KindUTF8:
		return &Error{Kind: KindUTF8, Step: idx, cause: err}
	default:
		return &Error{Kind: KindSend, Step: idx, cause: err}
	}
}

// EvaluateEdge runs Evaluate after first applying the first step's
// preflight (if any) against the inbound request body, then clearing it so
// the ordinary sweep never re-runs it. This is how a preconfigured edge
// route binds an inbound JSON body to a cryptogram template. Without a
// preflight, a non-null inbound body replaces the first step's payload; a
// null body leaves the configured payload in place.
func EvaluateEdge(
	ctx context.Context,
	c *cryptogram.Cryptogram,
	inboundBody any,
	cch *cache.Cache,
	inv invoker.Invoker,
	services cryptogram.ServiceRegistry,
	sink transform.EventSink,
	sp *transform.Scratchpad,
) (any, *cryptogram.Cryptogram, error) {
	if len(c.Steps) == 0 {
		return nil, c, &Error{Kind: KindNoStepsSpecified}
	}
	first := &c.Steps[0]
	if first.Preflight != nil {
		tctx := &transform.Context{Scratchpad: sp, Sink: sink}
		v, err := transform.Eval(first.Preflight, inboundBody, tctx)
		if err != nil {
			return nil, c, &Error{Kind: KindInvalidStructure, Step: 0, StepError: err}
		}
		first.Payload = v
		first.Preflight = nil
	} else if inboundBody != nil {
		first.Payload = inboundBody
	}
	return Evaluate(ctx, c, cch, inv, services, sink, sp)
}
