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
	"net/url"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/route"
)

// GenerateOptions mirrors route.GenerateOptions plus the Name used to
// look the route up (spec.md §4.7 "generate({name, params, query, hash,
// withDomain, protocol})").
type GenerateOptions struct {
	Name       string
	Params     map[string]any
	Query      url.Values
	Hash       string
	WithDomain bool
	Protocol   string
}

// Generate resolves Name through the collection and delegates to
// route.Generate.
func (r *Router) Generate(opts GenerateOptions) (string, error) {
	rt := r.Routes().GetByName(opts.Name)
	if rt == nil {
		return "", contract.NewRouteNotFoundError("no route named " + opts.Name)
	}
	return rt.Generate(route.GenerateOptions{
		Params:     opts.Params,
		Query:      opts.Query,
		Hash:       opts.Hash,
		WithDomain: opts.WithDomain,
		Protocol:   opts.Protocol,
	})
}

// Navigate implements spec.md §4.7's "navigate(target, replace)", which
// the spec itself describes as browser-only (history.pushState /
// replaceState). No such global exists outside a browser, so Navigate
// always fails with a RouterError; an embedding web frontend is expected
// to perform the actual navigation and call Dispatch on the resulting
// event instead.
func (r *Router) Navigate(target string, replace bool) error {
	return contract.NewRouterError("navigate", "navigate is not available outside a browser environment", nil)
}
