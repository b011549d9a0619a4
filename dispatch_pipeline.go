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

package wayfarer

import (
	"context"
	"time"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/observability"
	"github.com/wayfarer-dev/wayfarer/route"
)

// Dispatch runs the full pipeline of spec.md §4.7/§5: emit "routing",
// install the route resolver, match, bind, gather middleware, emit
// "routed", then run the matched route through the gathered middleware
// chain. Errors from any step (RouteNotFoundError, MethodNotAllowedError,
// RouterError) propagate unwrapped; Dispatch never retries or recovers. If
// an observability.Recorder is installed (WithObservability), the call is
// wrapped in a span started at "routing" and finished, with duration and
// outcome metrics, once the dispatch concludes.
func (r *Router) Dispatch(event contract.Event) (result any, err error) {
	dispatchID := newDispatchID()
	log := r.logger.With("dispatch_id", dispatchID, "method", event.Method(), "path", event.Pathname())

	var routeName string
	if recorder := r.observabilityRecorder(); recorder != nil {
		ctx, span := recorder.StartDispatch(context.Background(), event.Method(), event.Pathname())
		start := time.Now()
		defer func() {
			recorder.FinishDispatch(ctx, span, start, routeName, err)
		}()
	}

	r.emit("routing", event)

	event.SetRouteResolver(func() any { return r.GetCurrentRoute() })

	table := r.Routes()
	matched, err := table.Match(event)
	if err != nil {
		r.setCurrentRoute(nil)
		log.Warn("dispatch failed to match", "error", err)
		r.emitMatchDiagnostic(err, event)
		return nil, err
	}
	routeName = matched.Name()

	// The route synthesized by Collection.Match for an OPTIONS fallback
	// carries a placeholder path ("*") that was never meant to be bound
	// against the real request; it already knows its own answer.
	if isSynthesizedOptions(matched) {
		r.setCurrentRoute(matched)
		r.emit("routed", event)
		return matched.Run(event)
	}

	if bindErr := matched.Bind(event); bindErr != nil {
		r.setCurrentRoute(nil)
		log.Warn("dispatch failed to bind", "error", bindErr, "route", matched.Path())
		r.emitDiagnostic(observability.DiagBindingFailed, "route binding failed", map[string]any{
			"path":  matched.Path(),
			"error": bindErr.Error(),
		})
		return nil, bindErr
	}
	r.setCurrentRoute(matched)

	chain := r.gatherRouteMiddleware(matched)
	r.emit("routed", event)

	result, err = r.runChain(chain, event, matched)
	if err != nil {
		log.Error("dispatch handler failed", "error", err, "route", matched.Name())
	}
	return result, err
}

// emitMatchDiagnostic reports the reason table.Match failed to the
// installed DiagnosticHandler, if any.
func (r *Router) emitMatchDiagnostic(err error, event contract.Event) {
	switch e := err.(type) {
	case *contract.MethodNotAllowedError:
		r.emitDiagnostic(observability.DiagMethodNotAllowed, "method not allowed", map[string]any{
			"path":    e.Path,
			"allowed": e.Allowed,
			"method":  event.Method(),
		})
	case *contract.RouteNotFoundError:
		r.emitDiagnostic(observability.DiagRouteNotFound, "route not found", map[string]any{
			"path":   event.Pathname(),
			"detail": e.Detail,
		})
	}
}

// isSynthesizedOptions reports whether rt is the throwaway probe route
// collection.Match builds on a method mismatch for an OPTIONS request
// (see collection.go); such a route has no compiled constraints worth
// binding.
func isSynthesizedOptions(rt *route.Route) bool {
	return rt.Path() == "*" && rt.Method() == "OPTIONS" && rt.Name() == ""
}

func (r *Router) runChain(names []string, event contract.Event, matched *route.Route) (any, error) {
	r.mu.RLock()
	registry := r.middlewareByName
	r.mu.RUnlock()

	var run func(i int) (any, error)
	run = func(i int) (any, error) {
		if i >= len(names) {
			return matched.Run(event)
		}
		mw, ok := registry[names[i]]
		if !ok {
			return run(i + 1)
		}
		return mw(event, func() (any, error) { return run(i + 1) })
	}
	return run(0)
}

// gatherRouteMiddleware implements spec.md §4.7: global middleware ∪ the
// route's own declared middleware, insertion-order-preserving, deduped,
// filtered by the route's excludeMiddleware list and by Router.skipMiddleware.
func (r *Router) gatherRouteMiddleware(rt *route.Route) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.skipMiddleware {
		return nil
	}

	seen := map[string]bool{}
	var out []string

	add := func(name string) {
		if seen[name] || rt.IsMiddlewareExcluded(name) {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, entry := range r.globalMiddleware {
		add(entry.name)
	}
	if mw, ok := rt.GetOption("middleware", nil).([]string); ok {
		for _, name := range mw {
			add(name)
		}
	}
	return out
}

func (r *Router) emit(name string, payload any) {
	r.mu.RLock()
	emitter := r.emitter
	r.mu.RUnlock()
	if emitter != nil {
		emitter.Emit(name, payload)
	}
}

// On subscribes listener to name, delegating to the installed
// contract.EventEmitter. A no-op if none was configured.
func (r *Router) On(name string, listener func(any)) {
	r.mu.RLock()
	emitter := r.emitter
	r.mu.RUnlock()
	if emitter != nil {
		emitter.On(name, listener)
	}
}

func (r *Router) setCurrentRoute(rt *route.Route) {
	r.mu.Lock()
	r.currentRoute = rt
	r.mu.Unlock()
}

// GetCurrentRoute returns the route bound by the most recent Dispatch
// call, or nil if none has run yet or the last dispatch failed to match.
func (r *Router) GetCurrentRoute() *route.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentRoute
}

// respondWithRouteName resolves name via the collection, binds and runs
// it directly, bypassing Match (spec.md §4.7 "respondWithRouteName").
func (r *Router) RespondWithRouteName(event contract.Event, name string) (any, error) {
	table := r.Routes()
	rt := table.GetByName(name)
	if rt == nil {
		return nil, contract.NewRouteNotFoundError("no route named " + name)
	}
	if err := rt.Bind(event); err != nil {
		return nil, err
	}
	r.setCurrentRoute(rt)
	chain := r.gatherRouteMiddleware(rt)
	return r.runChain(chain, event, rt)
}
