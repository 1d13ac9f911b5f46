// Package kit provides the transport-agnostic endpoint model and the MCP
// registration glue shared by all testweave services.
package kit

import "context"

// Endpoint is the fundamental unit of a service: one request in, one
// response out. Transports (MCP, HTTP) adapt to and from this shape.
type Endpoint func(ctx context.Context, request any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first middleware is the
// outermost wrapper.
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}
