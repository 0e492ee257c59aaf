package server

import (
	"delegator/cache"
	"delegator/cryptogram"
	"delegator/endpoints"
	"delegator/eventsink"
	"delegator/invoker"
)

// RouteDeps are the collaborators every handler in this package needs.
type RouteDeps struct {
	Cache    *cache.Cache
	Invoker  invoker.Invoker
	Services cryptogram.ServiceRegistry
	Sink     eventsink.Sink
}

func (d RouteDeps) endpointDeps(userActionTopic string) endpoints.Deps {
	return endpoints.Deps{
		Cache:           d.Cache,
		Invoker:         d.Invoker,
		Services:        d.Services,
		Sink:            d.Sink,
		UserActionTopic: userActionTopic,
	}
}
