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

// MatchOptions controls which matchers Matches evaluates.
type MatchOptions struct {
	// SkipMethod omits matchers of Kind "method" — used by
	// RouteCollection when probing for a method-not-allowed fallback
	// (spec.md §4.2 "Skippable by a flag").
	SkipMethod bool
}

// Matches runs the route's matcher list in registration order against
// event, short-circuiting on the first false (spec.md §4.2, §5, §8
// testable property 6).
func (r *Route) Matches(event contract.Event, opts MatchOptions) bool {
	for _, m := range r.matchers {
		if opts.SkipMethod && m.Kind == "method" {
			continue
		}
		if !m.Fn(event, r) {
			return false
		}
	}
	return true
}
