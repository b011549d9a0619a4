// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package contract holds the narrow interfaces the router core exchanges
// with its external collaborators: the incoming event, the dependency
// resolver, and the event emitter. Keeping them in their own leaf package
// lets every other package (uri, match, dispatch, route, collection,
// mapper) depend on the vocabulary without depending on each other, the
// same reasoning the teacher used when it copied HandlerFunc into the
// compiler package "to avoid import cycles".
package contract

import "net/url"

// Event is the incoming request contract the core consumes. A concrete
// implementation (net/http, Gin, Echo, ...) lives outside this module; see
// the adapter package for examples.
type Event interface {
	// URL returns the parsed request URL.
	URL() *url.URL
	// Pathname returns the raw (still-escaped) request path.
	Pathname() string
	// DecodedPathname returns the percent-decoded request path, when the
	// event knows how to decode it. Implementations that cannot decode
	// should return the same value as Pathname.
	DecodedPathname() string
	// Method returns the HTTP method, upper-case ASCII.
	Method() string
	// Protocol returns "http" or "https".
	Protocol() string
	// Host returns the request host, without port, lower-case.
	Host() string
	// GetURI returns the full URI string. bind fails with RouterError if
	// this is unset; the route regex itself is matched against
	// DecodedPathname (or Pathname when that is empty).
	GetURI() string
	// Query returns the parsed query string.
	Query() url.Values
	// IsMethod reports whether the event's method equals m, case-insensitive.
	IsMethod(m string) bool
	// PreferredType returns the negotiated response media shape
	// ("json", "html", "text", "xml", ...), used by RouterErrorHandler.
	PreferredType() string
	// SetRouteResolver installs a closure the event can call later to
	// retrieve the route that is currently being dispatched. Treat it as a
	// weak back-reference, never as ownership (spec.md §9).
	SetRouteResolver(fn func() any)
	// GetMetadataValue returns an out-of-band value the embedding framework
	// attached to the event (request id, trace context, ...).
	GetMetadataValue(key string) (any, bool)
}

// Resolver is the optional external dependency container used to
// instantiate class handlers and string-bound ("Alias@method") binders.
type Resolver interface {
	// Resolve returns the instance registered for id. If singleton is true
	// the same instance must be returned on every call.
	Resolve(id any, singleton bool) (any, error)
	// Has reports whether id is registered.
	Has(id any) bool
	// Alias registers id under one or more alternate names.
	Alias(id any, aliases []string)
	// Instance registers a pre-built value under id.
	Instance(id any, value any)
}

// EventEmitter is the optional external event bus the router publishes
// "routing"/"routed" lifecycle events to, and client code subscribes to via
// Router.On.
type EventEmitter interface {
	Emit(name string, payload any)
	On(name string, listener func(any))
}

// RouteBinder is the "class with a static resolveRouteBinding method" shape
// from spec.md §3/§4.4. A value registered as a bindings[name] entry that
// implements this interface has ResolveRouteBinding invoked with the
// binding's alias (or the parameter name if no alias is set).
type RouteBinder interface {
	ResolveRouteBinding(key string, raw any, event Event) (any, error)
}

// BinderFunc is the "plain function" binder shape from spec.md §3/§4.4.
type BinderFunc func(key string, raw any, event Event) (any, error)

// ResolveRouteBinding lets BinderFunc satisfy RouteBinder, so bind() can
// treat both shapes uniformly.
func (f BinderFunc) ResolveRouteBinding(key string, raw any, event Event) (any, error) {
	return f(key, raw, event)
}
