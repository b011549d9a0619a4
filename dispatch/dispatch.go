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

// Package dispatch implements the four Dispatcher strategies from
// spec.md §4.3: callable, class, component, redirect.
package dispatch

import (
	"fmt"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/route"
)

const defaultAction = "Handle"

// Callable dispatches to a plain function handler, resolving a lazy
// Factory through the route's resolver on first use.
type Callable struct{}

func (Callable) Name(r *route.Route) string {
	opts := r.Options()
	if opts.Handler != nil && opts.Handler.IsFactory {
		return "factory"
	}
	return "callable"
}

func (Callable) Dispatch(event contract.Event, r *route.Route) (any, error) {
	h := r.Options().Handler
	if h == nil {
		return nil, contract.NewRouterError("dispatch", "route has no callable handler", nil)
	}

	fn := h.Callable
	if h.IsFactory {
		h.Lock()
		if h.Callable == nil {
			built, err := h.Factory(r.Resolver())
			if err != nil {
				h.Unlock()
				return nil, contract.NewRouterError("dispatch", "factory handler failed", err)
			}
			h.Callable = built
		}
		fn = h.Callable
		h.Unlock()
	}

	if fn == nil {
		return nil, contract.NewRouterError("dispatch", "callable handler resolved to nil", nil)
	}
	return fn(event)
}

// Class dispatches by resolving (or reusing) a class instance and invoking
// its action method by reflection (spec.md §4.3, §9).
type Class struct{}

func (Class) Name(r *route.Route) string {
	h := r.Options().Handler
	if h == nil || h.Module == nil {
		return "class"
	}
	return fmt.Sprintf("%T", h.Module)
}

func (Class) Dispatch(event contract.Event, r *route.Route) (any, error) {
	h := r.Options().Handler
	if h == nil {
		return nil, contract.NewRouterError("dispatch", "route has no class handler", nil)
	}

	instance, err := instantiate(h.Class, r.Resolver())
	if err != nil {
		return nil, contract.NewRouterError("dispatch", "failed to instantiate class handler", err)
	}

	action := h.Action
	if action == "" {
		action = defaultAction
	}
	return route.CallAction(instance, action, event)
}

// instantiate calls class when it is a zero-arg constructor func() any (on
// every dispatch); otherwise it resolves class through resolver when one is
// set and has it registered, and else returns class as-is.
func instantiate(class any, resolver contract.Resolver) (any, error) {
	if ctor, ok := class.(func() any); ok {
		return ctor(), nil
	}
	if resolver != nil {
		if resolver.Has(class) {
			return resolver.Resolve(class, false)
		}
	}
	return class, nil
}

// Component dispatches UI component handlers, lazily resolving Loader on
// first use and caching the result on the HandlerSpec (spec.md §9).
type Component struct{}

func (Component) Name(r *route.Route) string { return "component" }

func (Component) Dispatch(event contract.Event, r *route.Route) (any, error) {
	h := r.Options().Handler
	if h == nil {
		return nil, contract.NewRouterError("dispatch", "route has no component handler", nil)
	}

	if !h.Lazy {
		return h.Component, nil
	}

	h.Lock()
	defer h.Unlock()
	if h.Component == nil {
		loaded, err := h.Loader()
		if err != nil {
			return nil, contract.NewRouterError("dispatch", "component loader failed", err)
		}
		h.Component = loaded
		h.Loader = nil
		h.Lazy = false
	}
	return h.Component, nil
}

// Redirect dispatches the redirect field, recursively resolving string,
// route.Redirect, and route.RedirectFunc shapes (spec.md §4.3).
type Redirect struct{}

func (Redirect) Name(r *route.Route) string { return "redirect" }

func (Redirect) Dispatch(event contract.Event, r *route.Route) (any, error) {
	return resolveRedirect(r.Options().Redirect, r, event, 0)
}

const maxRedirectDepth = 8

func resolveRedirect(target any, r *route.Route, event contract.Event, depth int) (any, error) {
	if depth > maxRedirectDepth {
		return nil, contract.NewRouterError("dispatch", "redirect chain exceeded maximum depth", nil)
	}
	switch v := target.(type) {
	case nil:
		return nil, contract.NewRouterError("dispatch", "route has no redirect target", nil)
	case string:
		return route.Redirect{Location: v, Status: 302}, nil
	case route.Redirect:
		if v.Status == 0 {
			v.Status = 302
		}
		return v, nil
	case route.RedirectFunc:
		next, err := v(r, event)
		if err != nil {
			return nil, err
		}
		return resolveRedirect(next, r, event, depth+1)
	default:
		return nil, contract.NewRouterError("dispatch", fmt.Sprintf("unsupported redirect shape %T", v), nil)
	}
}

// Default returns the dispatcher table keyed by the four kinds SelectDispatcher
// chooses from, ready to be installed on every Route.
func Default() map[route.DispatcherKind]route.Dispatcher {
	return map[route.DispatcherKind]route.Dispatcher{
		route.KindCallable:  Callable{},
		route.KindClass:     Class{},
		route.KindComponent: Component{},
		route.KindRedirect:  Redirect{},
	}
}
