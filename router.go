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

// Package wayfarer is the C7 Router façade: it owns the route definition
// tree, compiles it into a RouteCollection through the mapper, and exposes
// the registration, dispatch, and introspection surface described by
// spec.md §4.7. It performs no I/O of its own; an embedding application
// supplies a contract.Event (see the adapter package) and calls Dispatch.
package wayfarer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/wayfarer-dev/wayfarer/collection"
	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/dispatch"
	"github.com/wayfarer-dev/wayfarer/mapper"
	"github.com/wayfarer-dev/wayfarer/match"
	"github.com/wayfarer-dev/wayfarer/observability"
	"github.com/wayfarer-dev/wayfarer/route"
)

// highParamCountThreshold is the number of path parameters above which
// register emits a DiagHighParamCount diagnostic.
const highParamCountThreshold = 5

// MiddlewareFunc wraps a dispatch in a before/after step around next.
// Calling next invokes the remainder of the pipeline, eventually the
// matched route's Run; not calling it short-circuits the dispatch.
type MiddlewareFunc func(event contract.Event, next func() (any, error)) (any, error)

type middlewareEntry struct {
	name string
	fn   MiddlewareFunc
}

// Option configures a Router at construction time, mirroring the
// teacher's own functional-options convention (router.Option).
type Option func(*Router)

// Router is the C7 façade described by spec.md §4.7.
type Router struct {
	mu sync.RWMutex

	definitions []mapper.Definition
	groupStack  []*mapper.Definition

	table *collection.Collection

	matchers    []route.Matcher
	dispatchers map[route.DispatcherKind]route.Dispatcher
	resolver    contract.Resolver
	maxDepth    int

	globalMiddleware []middlewareEntry
	middlewareByName map[string]MiddlewareFunc
	skipMiddleware   bool

	pendingRouteMiddleware map[string][]string

	emitter contract.EventEmitter

	diagnostics observability.DiagnosticHandler
	recorder    *observability.Recorder

	logger *slog.Logger

	currentRoute *route.Route
}

var noopLogger = slog.New(slog.NewTextHandler(discardWriter{}, nil))

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// WithMatchers overrides the matcher list every compiled Route uses
// (defaults to match.Default()).
func WithMatchers(matchers []route.Matcher) Option {
	return func(r *Router) { r.matchers = matchers }
}

// WithDispatchers overrides the dispatcher table every compiled Route
// uses (defaults to dispatch.Default()).
func WithDispatchers(table map[route.DispatcherKind]route.Dispatcher) Option {
	return func(r *Router) { r.dispatchers = table }
}

// WithResolver installs the dependency resolver used for class handlers
// and alias bindings.
func WithResolver(resolver contract.Resolver) Option {
	return func(r *Router) { r.resolver = resolver }
}

// WithMaxDepth bounds definition-tree nesting (mapper.Options.MaxDepth).
// Defaults to 32.
func WithMaxDepth(depth int) Option {
	return func(r *Router) { r.maxDepth = depth }
}

// WithEventEmitter installs the external event bus "routing"/"routed" are
// published to.
func WithEventEmitter(emitter contract.EventEmitter) Option {
	return func(r *Router) { r.emitter = emitter }
}

// WithLogger installs the logger RouterErrorHandler-style callers forward
// dispatch errors to. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDiagnostics installs a handler for the router's informational
// DiagnosticEvents (registration and dispatch anomalies). Unset by
// default: the router behaves identically with or without one.
func WithDiagnostics(handler observability.DiagnosticHandler) Option {
	return func(r *Router) { r.diagnostics = handler }
}

// WithObservability installs the Recorder Dispatch starts a span on for
// "routing" and finishes (with duration/outcome metrics) after run,
// implementing spec.md §5/§11's "'routing'/'routed' events become span
// events; match/dispatch counters". Unset by default: the router behaves
// identically, just silently, without one.
func WithObservability(recorder *observability.Recorder) Option {
	return func(r *Router) { r.recorder = recorder }
}

// WithSkipMiddleware disables middleware gathering entirely; Dispatch
// runs only currentRoute.Run. Useful for tests that want to isolate
// matching/binding from handler-chain concerns.
func WithSkipMiddleware(skip bool) Option {
	return func(r *Router) { r.skipMiddleware = skip }
}

// New builds a Router and compiles an (initially empty) RouteCollection.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		matchers:               match.Default(),
		dispatchers:            dispatch.Default(),
		maxDepth:                32,
		middlewareByName:       map[string]MiddlewareFunc{},
		pendingRouteMiddleware: map[string][]string{},
		logger:                 noopLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxDepth <= 0 {
		return nil, contract.NewRouterError("new", "maxDepth must be > 0", nil)
	}
	r.table = collection.New()
	return r, nil
}

// MustNew panics if New fails.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("wayfarer.MustNew: %v", err))
	}
	return r
}

// newDispatchID produces a per-dispatch correlation id for log
// correlation, following the teacher's own request-id conventions.
func newDispatchID() string {
	return uuid.NewString()
}

func (r *Router) mapperOptions() mapper.Options {
	return mapper.Options{
		MaxDepth:    r.maxDepth,
		Matchers:    r.matchers,
		Dispatchers: r.dispatchers,
		Resolver:    r.resolver,
	}
}

// rebuild recompiles the RouteCollection from the current definition tree.
// Must be called with r.mu held for writing.
func (r *Router) rebuild() error {
	m, err := mapper.New(r.mapperOptions())
	if err != nil {
		return err
	}
	routes, err := m.ToRoutes(r.definitions)
	if err != nil {
		return err
	}

	table := collection.New()
	for _, rt := range routes {
		if names, ok := r.pendingRouteMiddleware[rt.Name()]; ok {
			rt.AddMiddleware(names...)
		}
		table.Add(rt)
	}
	r.table = table
	return nil
}

// Configure merges apply into the Router's options and recompiles the
// RouteCollection (spec.md §4.7 "configure(partialOptions)").
func (r *Router) Configure(opts ...Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, opt := range opts {
		opt(r)
	}
	if r.maxDepth <= 0 {
		return contract.NewRouterError("configure", "maxDepth must be > 0", nil)
	}
	return r.rebuild()
}

// SetRoutes replaces the compiled RouteCollection directly, bypassing the
// mapper (spec.md §4.7 "setRoutes(collection)"). table must be non-nil.
func (r *Router) SetRoutes(table *collection.Collection) error {
	if table == nil {
		return contract.NewRouterError("setRoutes", "collection must not be nil", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = table
	return nil
}

// Routes returns the compiled RouteCollection backing this Router.
func (r *Router) Routes() *collection.Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// observabilityRecorder returns the installed Recorder, if any.
func (r *Router) observabilityRecorder() *observability.Recorder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recorder
}

// emitDiagnostic forwards e to the installed DiagnosticHandler, if any.
func (r *Router) emitDiagnostic(kind observability.DiagnosticKind, msg string, fields map[string]any) {
	r.mu.RLock()
	handler := r.diagnostics
	r.mu.RUnlock()
	if handler != nil {
		handler.OnDiagnostic(observability.DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
	}
}
