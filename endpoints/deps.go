// Package endpoints implements the preconfigured edge routes: convenience
// HTTP handlers that build a specific cryptogram internally and hand it to
// the evaluator, rather than accepting one from the caller (that's
// POST /evaluate, in package server).
package endpoints

import (
	"delegator/cache"
	"delegator/cryptogram"
	"delegator/eventsink"
	"delegator/invoker"
)

// Deps are the shared collaborators every edge route evaluates against.
type Deps struct {
	Cache           *cache.Cache
	Invoker         invoker.Invoker
	Services        cryptogram.ServiceRegistry
	Sink            eventsink.Sink
	UserActionTopic string // events.user_action.queue_url from config
}
