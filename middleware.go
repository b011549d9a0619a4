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

import "github.com/wayfarer-dev/wayfarer/route"

// Use registers fn under name and appends it to the global middleware
// chain applied to every route (spec.md §4.7 "use(mw | mw[])"). Calling
// Use again with the same name replaces the registered function but does
// not duplicate its slot in the global order.
func (r *Router) Use(name string, fn MiddlewareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.middlewareByName[name] = fn
	for _, entry := range r.globalMiddleware {
		if entry.name == name {
			return
		}
	}
	r.globalMiddleware = append(r.globalMiddleware, middlewareEntry{name: name, fn: fn})
}

// UseOn registers fn under name and attaches it to the named routes only
// (spec.md §4.7 "useOn(name | name[], mw)"): it is appended to the
// pending definition so future recompiles keep it, and directly onto every
// already-compiled Route carrying that name (including an internal HEAD
// twin) via route.AddMiddleware.
func (r *Router) UseOn(routeNames []string, name string, fn MiddlewareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.middlewareByName[name] = fn
	for _, routeName := range routeNames {
		r.pendingRouteMiddleware[routeName] = append(r.pendingRouteMiddleware[routeName], name)
		r.table.Each(func(rt *route.Route) {
			if rt.Name() == routeName {
				rt.AddMiddleware(name)
			}
		})
	}
}
