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

// GetCurrentRouteName returns the name of the currently dispatched route,
// or "" if unnamed or no dispatch has run.
func (r *Router) GetCurrentRouteName() string {
	if rt := r.GetCurrentRoute(); rt != nil {
		return rt.Name()
	}
	return ""
}

// IsCurrentRouteNamed reports whether the currently dispatched route's
// name equals name.
func (r *Router) IsCurrentRouteNamed(name string) bool {
	return r.GetCurrentRouteName() == name
}

// GetParams returns every bound parameter on the currently dispatched
// route, or an empty map if none has run or it failed to bind.
func (r *Router) GetParams() map[string]any {
	rt := r.GetCurrentRoute()
	if rt == nil {
		return map[string]any{}
	}
	params, err := rt.Params()
	if err != nil {
		return map[string]any{}
	}
	return params
}

// GetParam returns the bound value of name on the currently dispatched
// route, or fallback if absent/unbound.
func (r *Router) GetParam(name string, fallback any) any {
	rt := r.GetCurrentRoute()
	if rt == nil {
		return fallback
	}
	return rt.GetParam(name, fallback)
}

// HasRoute reports whether every name in names resolves via the
// collection's name index.
func (r *Router) HasRoute(names ...string) bool {
	table := r.Routes()
	for _, name := range names {
		if !table.HasNamedRoute(name) {
			return false
		}
	}
	return true
}

// DumpRoutes returns the sorted, internal-HEAD-excluded route table
// (spec.md §4.5 "dump()").
func (r *Router) DumpRoutes() []route.JSON {
	return r.Routes().Dump()
}
