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

// Package match implements the four independent matcher predicates from
// spec.md §4.2: uri, host, method, protocol.
package match

import (
	"strings"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/route"
)

// URI matches the route's compiled path regex against the event's decoded
// pathname (falling back to the raw pathname).
func URI() route.Matcher {
	return route.Matcher{Kind: "uri", Fn: func(event contract.Event, r *route.Route) bool {
		path := event.DecodedPathname()
		if path == "" {
			path = event.Pathname()
		}
		return r.Compiled().PathRegex.MatchString(path)
	}}
}

// Host matches the route's compiled host regex against the event's host.
// Passes automatically when the route declares no domain constraint.
func Host() route.Matcher {
	return route.Matcher{Kind: "host", Fn: func(event contract.Event, r *route.Route) bool {
		if r.Compiled().HostRegex == nil {
			return true
		}
		return r.Compiled().HostRegex.MatchString(event.Host())
	}}
}

// Method matches the event's method against the route's declared method,
// with the rule that an internal-HEAD route also matches a HEAD event
// (spec.md §4.2).
func Method() route.Matcher {
	return route.Matcher{Kind: "method", Fn: func(event contract.Event, r *route.Route) bool {
		if strings.EqualFold(event.Method(), r.Method()) {
			return true
		}
		return r.IsInternalHead() && event.IsMethod("HEAD")
	}}
}

// Protocol matches the event's protocol against the route's declared
// protocol restriction, passing when the route declares none.
func Protocol() route.Matcher {
	return route.Matcher{Kind: "protocol", Fn: func(event contract.Event, r *route.Route) bool {
		if r.IsHTTPOnly() {
			return strings.EqualFold(event.Protocol(), "http")
		}
		if r.IsHTTPSOnly() {
			return strings.EqualFold(event.Protocol(), "https")
		}
		return true
	}}
}

// Default returns the standard matcher list in the registration order used
// throughout this module: uri, host, method, protocol.
func Default() []route.Matcher {
	return []route.Matcher{URI(), Host(), Method(), Protocol()}
}
