// Package kit carries the transport-agnostic endpoint plumbing: an endpoint
// is a function from a decoded request to a response, and transports (HTTP,
// MCP) adapt their wire formats onto it.
package kit

import "context"

// Endpoint is a single operation exposed over one or more transports.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first argument is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
