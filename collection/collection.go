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

// Package collection implements RouteCollection (spec.md §4.5): an
// ordered route store with by-method and by-name indices, and the three
// phase match() resolution algorithm.
package collection

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/dispatch"
	"github.com/wayfarer-dev/wayfarer/route"
)

// OptionsContent is the synthesized body spec.md §4.5 step 2 describes for
// a same-path OPTIONS probe: `{statusCode, content: {Allow: ...}}`.
type OptionsContent struct {
	Allow string `json:"Allow"`
}

// OptionsResponse is the synthesized response for an OPTIONS probe against
// a path that other methods serve.
type OptionsResponse struct {
	StatusCode int            `json:"statusCode"`
	Content    OptionsContent `json:"content"`
}

// Collection is the C5 RouteCollection: ordered storage plus the indices
// match() and the other lookups use.
type Collection struct {
	mu       sync.RWMutex
	routes   []*route.Route
	byMethod map[string][]*route.Route
	byName   map[string]*route.Route
}

// New returns an empty Collection.
func New() *Collection {
	return &Collection{byMethod: map[string][]*route.Route{}, byName: map[string]*route.Route{}}
}

// Add appends r, updates the by-method index, and overwrites the by-name
// index entry if r declares a name (spec.md §4.5 "add").
func (c *Collection) Add(r *route.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, r)
	c.byMethod[strings.ToUpper(r.Method())] = append(c.byMethod[strings.ToUpper(r.Method())], r)
	if name := r.Name(); name != "" {
		c.byName[name] = r
	}
}

// GetRoutesByMethod returns the by-method bucket for m, or nil.
func (c *Collection) GetRoutesByMethod(m string) []*route.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*route.Route(nil), c.byMethod[strings.ToUpper(m)]...)
}

// GetByName returns the route registered under name, or nil.
func (c *Collection) GetByName(name string) *route.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byName[name]
}

// HasNamedRoute reports whether name is registered.
func (c *Collection) HasNamedRoute(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byName[name]
	return ok
}

// Len returns the number of stored routes, including internal-HEAD twins.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.routes)
}

// Each calls fn for every route in insertion order.
func (c *Collection) Each(fn func(r *route.Route)) {
	c.mu.RLock()
	routes := append([]*route.Route(nil), c.routes...)
	c.mu.RUnlock()
	for _, r := range routes {
		fn(r)
	}
}

// Match implements spec.md §4.5 "match(event)": a three-phase resolution
// that tries the method bucket first, falls back to a full scan with the
// method matcher skipped (synthesizing an OPTIONS response or failing with
// MethodNotAllowedError), and finally fails with RouteNotFoundError.
func (c *Collection) Match(event contract.Event) (*route.Route, error) {
	c.mu.RLock()
	bucket := append([]*route.Route(nil), c.byMethod[strings.ToUpper(event.Method())]...)
	all := append([]*route.Route(nil), c.routes...)
	c.mu.RUnlock()

	for _, r := range bucket {
		if r.Matches(event, route.MatchOptions{SkipMethod: true}) {
			return r, nil
		}
	}

	var allowed []string
	seen := map[string]bool{}
	for _, r := range all {
		if r.IsInternalHead() {
			continue
		}
		if !r.Matches(event, route.MatchOptions{SkipMethod: true}) {
			continue
		}
		m := r.Method()
		if !seen[m] {
			seen[m] = true
			allowed = append(allowed, m)
		}
	}

	if len(allowed) > 0 {
		sort.Strings(allowed)
		if event.IsMethod("OPTIONS") {
			return synthesizeOptions(allowed)
		}
		return nil, contract.NewMethodNotAllowedError(event.Pathname(), allowed)
	}

	return nil, contract.NewRouteNotFoundError("no route matches " + event.Pathname())
}

// synthesizeOptions builds a throwaway Route dispatching the Allow-header
// payload spec.md §4.5 describes, reusing the ordinary callable dispatch
// path rather than inventing a second response shape.
func synthesizeOptions(allowed []string) (*route.Route, error) {
	body := OptionsResponse{StatusCode: 200, Content: OptionsContent{Allow: strings.Join(allowed, ",")}}
	r, err := route.New(route.Options{
		Path:   "*",
		Method: "OPTIONS",
		Handler: &route.HandlerSpec{
			Callable: func(event contract.Event) (any, error) { return body, nil },
		},
	})
	if err != nil {
		return nil, err
	}
	r.SetDispatchers(dispatch.Default())
	return r, nil
}

// Dump returns the JSON dump shape of every non-internal-HEAD route,
// sorted by path ascending (spec.md §4.5 "dump").
func (c *Collection) Dump() []route.JSON {
	c.mu.RLock()
	routes := append([]*route.Route(nil), c.routes...)
	c.mu.RUnlock()

	var visible []*route.Route
	for _, r := range routes {
		if !r.IsInternalHead() {
			visible = append(visible, r)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Path() < visible[j].Path() })

	out := make([]route.JSON, 0, len(visible))
	for _, r := range visible {
		out = append(out, r.ToJSON())
	}
	return out
}

// String returns the JSON-stringified dump (spec.md §4.5 "toString").
func (c *Collection) String() string {
	b, err := json.Marshal(c.Dump())
	if err != nil {
		return "[]"
	}
	return string(b)
}
