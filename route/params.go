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

package route

import "github.com/wayfarer-dev/wayfarer/contract"

// Params returns all bound route parameters. Fails unless the route has
// been bound. See spec.md §4.4 "Parameter API".
func (r *Route) Params() (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.bound {
		return nil, contract.NewRouterError("params", "route is not bound to an event", nil)
	}
	out := make(map[string]any, len(r.routeParams))
	for k, v := range r.routeParams {
		out[k] = v
	}
	return out, nil
}

// HasParam reports whether name was bound.
func (r *Route) HasParam(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routeParams[name]
	return ok
}

// GetParam returns the bound value for name, or fallback if absent/unbound.
func (r *Route) GetParam(name string, fallback any) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.routeParams[name]; ok {
		return v
	}
	return fallback
}

// GetParamNames returns every parameter name declared by the compiled
// constraints, in template order, deduplicated.
func (r *Route) GetParamNames() []string {
	var names []string
	seen := map[string]bool{}
	for _, c := range r.compiled.Constraints {
		if c.IsParam() && !seen[c.Param] {
			seen[c.Param] = true
			names = append(names, c.Param)
		}
	}
	return names
}

// GetDefinedParams returns the bound parameters currently known to the
// route, equivalent to Params but never failing (returns nil if unbound).
func (r *Route) GetDefinedParams() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.routeParams) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.routeParams))
	for k, v := range r.routeParams {
		out[k] = v
	}
	return out
}

// GetOptionalParamNames returns the names of every declared parameter for
// which IsParamNameOptional is true.
func (r *Route) GetOptionalParamNames() []string {
	var names []string
	for _, name := range r.GetParamNames() {
		if r.IsParamNameOptional(name) {
			names = append(names, name)
		}
	}
	return names
}

// IsParamNameOptional reports whether name is optional: its constraint has
// Optional=true, a Quantifier of '?' or '*', or a Default set. See spec.md
// §8 testable property 5.
func (r *Route) IsParamNameOptional(name string) bool {
	for _, c := range r.compiled.Constraints {
		if c.Param == name {
			return c.Optional
		}
	}
	return false
}

// Query returns the bound event's query parameters, or nil if unbound.
func (r *Route) Query() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.query
}
