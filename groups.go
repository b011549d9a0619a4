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
	"strings"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/mapper"
	"github.com/wayfarer-dev/wayfarer/observability"
	"github.com/wayfarer-dev/wayfarer/route"
)

// Def is the public spelling of a registration payload: everything about
// a route except its path and method(s), which the verb method or Match
// supplies separately. It is a thin alias of mapper.Definition's
// attribute fields so callers never import the mapper package directly
// for simple registrations.
type Def struct {
	Handler  *route.HandlerSpec
	Redirect any

	Name        string
	Description string
	Tags        []string

	Domain   string
	Protocol string
	Strict   *bool
	Fallback *bool

	Rules    map[string]string
	Defaults map[string]any
	Bindings map[string]any

	Middleware        []string
	ExcludeMiddleware []string

	PageLayout    any
	CustomOptions map[string]any
}

func (d Def) toDefinition(path string) mapper.Definition {
	return mapper.Definition{
		Path:              path,
		Handler:           d.Handler,
		Redirect:          d.Redirect,
		Name:              d.Name,
		Description:       d.Description,
		Tags:              d.Tags,
		Domain:            d.Domain,
		Protocol:          d.Protocol,
		Strict:            d.Strict,
		Fallback:          d.Fallback,
		Rules:             d.Rules,
		Defaults:          d.Defaults,
		Bindings:          d.Bindings,
		Middleware:        d.Middleware,
		ExcludeMiddleware: d.ExcludeMiddleware,
		PageLayout:        d.PageLayout,
		CustomOptions:     d.CustomOptions,
	}
}

// register appends def (with method or methods set) either as a child of
// the currently open group or as a new top-level definition, then
// recompiles the collection.
func (r *Router) register(def mapper.Definition) error {
	r.mu.Lock()
	if len(r.groupStack) > 0 {
		parent := r.groupStack[len(r.groupStack)-1]
		parent.Children = append(parent.Children, def)
	} else {
		r.definitions = append(r.definitions, def)
	}
	err := r.rebuild()
	r.mu.Unlock()

	if err != nil {
		if routerErr, ok := err.(*contract.RouterError); ok && routerErr.Op == "mapper" && strings.HasPrefix(routerErr.Msg, "definition depth exceeds") {
			r.emitDiagnostic(observability.DiagDepthLimitReached, "definition depth exceeds maxDepth", map[string]any{
				"path":  def.Path,
				"error": routerErr.Error(),
			})
		}
		return err
	}
	r.emitRegistrationDiagnostics(def)
	return nil
}

// emitRegistrationDiagnostics reports DiagRouteRegistered for def, plus
// DiagHighParamCount when its path declares more than
// highParamCountThreshold parameters, mirroring the diagnostics the
// teacher's own router emits from its registration path.
func (r *Router) emitRegistrationDiagnostics(def mapper.Definition) {
	methods := def.Methods
	if len(methods) == 0 && def.Method != "" {
		methods = []string{def.Method}
	}
	r.emitDiagnostic(observability.DiagRouteRegistered, "route registered", map[string]any{
		"path":    def.Path,
		"methods": methods,
		"name":    def.Name,
	})

	if paramCount := strings.Count(def.Path, ":"); paramCount > highParamCountThreshold {
		r.emitDiagnostic(observability.DiagHighParamCount, "route declares a high parameter count", map[string]any{
			"path":  def.Path,
			"count": paramCount,
		})
	}
}

func oneMethod(path, method string, def Def) mapper.Definition {
	d := def.toDefinition(path)
	d.Method = method
	return d
}

// Get registers a GET route (and its synthesized HEAD twin).
func (r *Router) Get(path string, def Def) error { return r.register(oneMethod(path, "GET", def)) }

// Post registers a POST route.
func (r *Router) Post(path string, def Def) error { return r.register(oneMethod(path, "POST", def)) }

// Put registers a PUT route.
func (r *Router) Put(path string, def Def) error { return r.register(oneMethod(path, "PUT", def)) }

// Patch registers a PATCH route.
func (r *Router) Patch(path string, def Def) error {
	return r.register(oneMethod(path, "PATCH", def))
}

// Delete registers a DELETE route.
func (r *Router) Delete(path string, def Def) error {
	return r.register(oneMethod(path, "DELETE", def))
}

// Options registers an explicit OPTIONS route, overriding the
// collection's synthesized fallback for this path (spec.md §4.5).
func (r *Router) Options(path string, def Def) error {
	return r.register(oneMethod(path, "OPTIONS", def))
}

// Page registers a GET route; an alias kept for parity with spec.md §4.7
// ("page = GET alias"), typically used for routes returning a Component
// handler.
func (r *Router) Page(path string, def Def) error { return r.Get(path, def) }

// Add is a GET alias, matching spec.md §4.7's registration surface.
func (r *Router) Add(path string, def Def) error { return r.Get(path, def) }

// anyMethods is every verb but HEAD; HEAD is synthesized from GET only
// (spec.md §6 "Verb set").
var anyMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

// Any registers def under every verb except HEAD.
func (r *Router) Any(path string, def Def) error {
	d := def.toDefinition(path)
	d.Methods = append([]string{}, anyMethods...)
	return r.register(d)
}

// Match registers def under an explicit method set.
func (r *Router) Match(path string, methods []string, def Def) error {
	d := def.toDefinition(path)
	d.Methods = methods
	return r.register(d)
}

// fallbackPath is the conventional catch-all template (spec.md §9): a
// single optional-repeating capture that matches any remaining segments.
const fallbackPath = "/:__fallback__(.*)*"

// Fallback registers a catch-all route (def.Fallback is forced true).
func (r *Router) Fallback(def Def) error {
	t := true
	def.Fallback = &t
	d := def.toDefinition(fallbackPath)
	d.Methods = append([]string{}, anyMethods...)
	return r.register(d)
}

// Define appends a batch of already-built mapper.Definition trees,
// bypassing the verb-method sugar (spec.md §4.7 "define(definitions[])").
func (r *Router) Define(defs []mapper.Definition) error {
	r.mu.Lock()
	if len(r.groupStack) > 0 {
		parent := r.groupStack[len(r.groupStack)-1]
		parent.Children = append(parent.Children, defs...)
	} else {
		r.definitions = append(r.definitions, defs...)
	}
	err := r.rebuild()
	r.mu.Unlock()

	if err != nil {
		return err
	}
	for _, def := range defs {
		r.emitRegistrationDiagnostics(def)
	}
	return nil
}

// Group opens a nested definition scope under prefix: every registration
// made before the matching NoGroup becomes a child of this group
// definition, inheriting attrs the way mapper.ToRoutes already merges
// parent into child (spec.md §4.7 "group(prefix, def) / noGroup()").
func (r *Router) Group(prefix string, def Def) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group := def.toDefinition(prefix)
	group.Handler = nil // a pure group has no handler of its own (mapper's "group only" rule)

	if len(r.groupStack) > 0 {
		parent := r.groupStack[len(r.groupStack)-1]
		parent.Children = append(parent.Children, group)
		r.groupStack = append(r.groupStack, &parent.Children[len(parent.Children)-1])
	} else {
		r.definitions = append(r.definitions, group)
		r.groupStack = append(r.groupStack, &r.definitions[len(r.definitions)-1])
	}
	return nil
}

// NoGroup closes the most recently opened Group scope.
func (r *Router) NoGroup() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.groupStack) == 0 {
		return contract.NewRouterError("noGroup", "no group is currently open", nil)
	}
	r.groupStack = r.groupStack[:len(r.groupStack)-1]
	return nil
}
