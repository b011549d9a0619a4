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

// Package route implements the compiled Route (spec.md §4.4): a single
// method+path+handler unit holding its compiled constraints and regex,
// its event binding state, and the logic to bind, generate, and run.
package route

import (
	"sync"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/uri"
)

// Redirect is the object form of the redirect field: spec.md §3's
// `{location, status}`.
type Redirect struct {
	Location string
	Status   int
}

// RedirectFunc is the function form of the redirect field: it receives the
// route and event and returns a string, a Redirect, or another RedirectFunc
// to recurse on (spec.md §4.3).
type RedirectFunc func(r *Route, event contract.Event) (any, error)

// AliasBinding is the reified "Alias@method" binder DSL (spec.md §9):
// parsed once at mapper time from the string form, resolved against the
// external Resolver at bind time.
type AliasBinding struct {
	Alias  string
	Method string
}

// HandlerSpec is the Go realization of spec.md §3's handler meta record. A
// Route's handler shape is exactly one of Callable, Class, Component, or
// (via Options.Redirect) a redirect; Route.SelectDispatcher inspects these
// fields to pick a Dispatcher, per spec.md §4.3.
type HandlerSpec struct {
	// Callable is a plain function handler.
	Callable func(event contract.Event) (any, error)
	// Factory, when IsFactory is true, is invoked once with the resolver
	// to obtain the real Callable.
	Factory func(resolver contract.Resolver) (func(event contract.Event) (any, error), error)
	// Class is either a constructed instance or a zero-arg constructor
	// func() any, dispatched by calling its Action method (default
	// "Handle") via reflection.
	Class any
	// Action names the method to call on Class. Defaults to "Handle".
	Action string
	// Component is the UI component value (or, if Lazy, unset until the
	// Loader has run once).
	Component any
	// Loader lazily produces Component. Cleared after first successful load.
	Loader func() (any, error)

	IsClass     bool
	IsFactory   bool
	IsComponent bool
	Lazy        bool

	// Module carries the raw handler value as originally declared, used by
	// dispatcher Name() implementations (e.g. to report a class name).
	Module any

	mu sync.Mutex
}

// Lock/Unlock expose the spec's "mutate itself to eager once resolved"
// lazy-component cell (spec.md §9) to the dispatch package without leaking
// the mutex itself.
func (h *HandlerSpec) Lock()   { h.mu.Lock() }
func (h *HandlerSpec) Unlock() { h.mu.Unlock() }

// Matcher is one of the four independent predicates from spec.md §4.2.
// Kind distinguishes the method matcher so RouteCollection.match can skip
// it when probing for a method-not-allowed fallback.
type Matcher struct {
	Kind string
	Fn   func(event contract.Event, r *Route) bool
}

// Dispatcher is the strategy object from spec.md §4.3.
type Dispatcher interface {
	Name(r *Route) string
	Dispatch(event contract.Event, r *Route) (any, error)
}

// DispatcherKind tags which of the four dispatch shapes a Dispatcher
// handles, used as the key into a Route's dispatcher table.
type DispatcherKind string

const (
	KindCallable  DispatcherKind = "callable"
	KindClass     DispatcherKind = "class"
	KindComponent DispatcherKind = "component"
	KindRedirect  DispatcherKind = "redirect"
)

// Options is the compiled configuration a Route is constructed from: the
// union of the user-facing definition fields that survive mapper expansion
// (spec.md §3), already resolved to a single method.
type Options struct {
	Path     string
	Method   string
	Domain   string
	Protocol string // "http", "https", or "" (either)
	Strict   bool
	Fallback bool

	Name        string
	Description string
	Tags        []string

	Handler  *HandlerSpec
	Redirect any // string | Redirect | RedirectFunc, or nil

	Rules    map[string]string
	Defaults map[string]any
	Bindings map[string]any // contract.RouteBinder | contract.BinderFunc | AliasBinding

	Middleware        []string
	ExcludeMiddleware []string

	PageLayout     any
	CustomOptions  map[string]any
	IsInternalHead bool
}

// Route is the compiled, matchable unit described by spec.md §4.4.
// Mutated only by bind() and the fluent setters; lifetime is bound to the
// owning RouteCollection.
type Route struct {
	opts        Options
	compiled    *uri.Compiled
	matchers    []Matcher
	dispatchers map[DispatcherKind]Dispatcher
	resolver    contract.Resolver

	mu          sync.RWMutex
	event       contract.Event
	routeParams map[string]any
	query       map[string][]string
	bound       bool
}

// New compiles opts.Domain/opts.Path and returns a Route ready to be
// matched once matchers/dispatchers are attached. See spec.md §4.4
// "Construction".
func New(opts Options) (*Route, error) {
	compiled, err := uri.Compile(opts.Domain, opts.Path, uri.Options{
		Rules:    opts.Rules,
		Defaults: opts.Defaults,
		Aliases:  aliasesOf(opts.Bindings),
		Strict:   opts.Strict,
	})
	if err != nil {
		return nil, contract.NewRouterError("compile", "failed to compile route "+opts.Path, err)
	}
	return &Route{opts: opts, compiled: compiled, dispatchers: map[DispatcherKind]Dispatcher{}}, nil
}

func aliasesOf(bindings map[string]any) map[string]string {
	aliases := make(map[string]string, len(bindings))
	for name, b := range bindings {
		if ab, ok := b.(AliasBinding); ok {
			aliases[name] = ab.Alias
		}
	}
	return aliases
}

// SetMatchers installs the ordered matcher list evaluated by Matches.
func (r *Route) SetMatchers(matchers []Matcher) { r.matchers = matchers }

// SetDispatchers installs the dispatcher table consulted by Run.
func (r *Route) SetDispatchers(table map[DispatcherKind]Dispatcher) { r.dispatchers = table }

// SetResolver installs the external dependency resolver used for class
// instantiation and string-bound binders.
func (r *Route) SetResolver(resolver contract.Resolver) { r.resolver = resolver }

// AddMiddleware appends to the route's own middleware list.
func (r *Route) AddMiddleware(names ...string) {
	r.opts.Middleware = append(r.opts.Middleware, names...)
}

// Options returns a copy of the route's compiled options.
func (r *Route) Options() Options { return r.opts }

// Compiled returns the compiled constraints/regexes.
func (r *Route) Compiled() *uri.Compiled { return r.compiled }

// Resolver returns the installed resolver, or nil.
func (r *Route) Resolver() contract.Resolver { return r.resolver }

// --- accessors: spec.md §4.4 "Accessors" ---

// GetOption returns a named option value, or fallback if unset/zero.
// The keys "path", "method", "domain", "protocol", "name", "middleware"
// and "fallback" read Options' fields ("fallback" returns the flag even
// when false); any other key is looked up in CustomOptions.
func (r *Route) GetOption(key string, fallback any) any {
	switch key {
	case "path":
		return nonEmpty(r.opts.Path, fallback)
	case "method":
		return nonEmpty(r.opts.Method, fallback)
	case "domain":
		return nonEmpty(r.opts.Domain, fallback)
	case "protocol":
		return nonEmpty(r.opts.Protocol, fallback)
	case "name":
		return nonEmpty(r.opts.Name, fallback)
	case "middleware":
		if r.opts.Middleware == nil {
			return fallback
		}
		return r.opts.Middleware
	case "fallback":
		return r.opts.Fallback
	}
	if r.opts.CustomOptions != nil {
		if v, ok := r.opts.CustomOptions[key]; ok {
			return v
		}
	}
	return fallback
}

func nonEmpty(s string, fallback any) any {
	if s == "" {
		return fallback
	}
	return s
}

// GetOptions returns the named subset of options as a map.
func (r *Route) GetOptions(keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = r.GetOption(k, nil)
	}
	return out
}

func (r *Route) IsHTTPOnly() bool  { return r.opts.Protocol == "http" }
func (r *Route) IsHTTPSOnly() bool { return r.opts.Protocol == "https" }
func (r *Route) IsStrict() bool    { return r.opts.Strict }
func (r *Route) IsSecure() bool    { return r.opts.Protocol == "https" }
func (r *Route) IsFallback() bool  { return r.opts.Fallback }

// IsInternalHead reports whether this route is the synthesized HEAD twin of
// a user-defined GET route (spec.md §3 invariants, §4.6 step 5).
func (r *Route) IsInternalHead() bool { return r.opts.IsInternalHead }

func (r *Route) Method() string { return r.opts.Method }
func (r *Route) Path() string   { return r.opts.Path }
func (r *Route) Domain() string { return r.opts.Domain }
func (r *Route) Name() string   { return r.opts.Name }

// IsMiddlewareExcluded reports whether name appears in excludeMiddleware.
func (r *Route) IsMiddlewareExcluded(name string) bool {
	for _, ex := range r.opts.ExcludeMiddleware {
		if ex == name {
			return true
		}
	}
	return false
}

// --- URL accessors: delegate to the bound event's URL, spec.md §4.4 ---

func (r *Route) boundEvent() contract.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.event
}

// URI returns the bound event's URI, or "/" if unbound.
func (r *Route) URI() string {
	if e := r.boundEvent(); e != nil {
		return e.GetURI()
	}
	return "/"
}

// Protocol returns the bound event's protocol, falling back to the route's
// declared protocol or "http".
func (r *Route) Protocol() string {
	if e := r.boundEvent(); e != nil && e.Protocol() != "" {
		return e.Protocol()
	}
	if r.opts.Protocol != "" {
		return r.opts.Protocol
	}
	return "http"
}
