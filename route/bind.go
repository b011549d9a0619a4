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

import (
	"regexp"
	"strconv"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/uri"
)

// Bind implements spec.md §4.4 "bind(event)": extracts capture groups,
// resolves defaults and binders, coerces numeric-looking raw strings, and
// persists routeParams/query/eventUrl. A failure leaves any previously
// bound state untouched beyond those three fields (spec.md §5).
func (r *Route) Bind(event contract.Event) error {
	if event == nil {
		return contract.NewRouterError("bind", "event is nil", nil)
	}
	if event.GetURI() == "" {
		return contract.NewRouterError("bind", "event has no GetUri()", nil)
	}

	captures, err := r.extractCaptures(event)
	if err != nil {
		return err
	}

	params := make(map[string]any)
	for _, c := range r.compiled.Constraints {
		if !c.IsParam() {
			continue
		}

		raw, hasCapture := captures[c.Param]
		var value any
		if hasCapture {
			value = raw
		} else if c.Default != nil {
			value = c.Default
		}

		// A binder always receives the raw captured string; numeric
		// coercion (spec.md §4.4 step 4) only applies when no binding is
		// declared for the parameter, per step 4's "with no binding"
		// wording. A binder that wants a number performs its own
		// conversion (spec.md §4.4 scenario E passes one in already typed).
		if binder, hasBinding := r.opts.Bindings[c.Param]; hasBinding && value != nil {
			resolved, err := r.resolveBinding(binder, bindingKey(c), value, event)
			if err != nil {
				return contract.NewRouterError("bind", "binding for "+c.Param+" failed", err)
			}
			value = resolved
		} else if s, ok := value.(string); ok {
			value = coerceNumeric(s)
		}

		if value == nil && !c.Optional {
			return contract.NewRouteNotFoundError("missing required parameter " + c.Param)
		}

		if value != nil {
			params[c.Param] = value
			if c.Alias != "" {
				params[c.Alias] = value
			}
		}
	}

	r.mu.Lock()
	r.event = event
	r.routeParams = params
	r.query = event.Query()
	r.bound = true
	r.mu.Unlock()

	return nil
}

// extractCaptures matches the path regex (and, if the route declares a
// domain, the host regex) and returns all named captures keyed by
// parameter name.
func (r *Route) extractCaptures(event contract.Event) (map[string]string, error) {
	captures := make(map[string]string)

	path := event.DecodedPathname()
	if path == "" {
		path = event.Pathname()
	}
	if !matchNamed(r.compiled.PathRegex, path, captures) {
		return nil, contract.NewRouteNotFoundError("path " + path + " does not match " + r.opts.Path)
	}

	if r.compiled.HostRegex != nil {
		if !matchNamed(r.compiled.HostRegex, event.Host(), captures) {
			return nil, contract.NewRouteNotFoundError("host " + event.Host() + " does not match " + r.opts.Domain)
		}
	}

	return captures, nil
}

// matchNamed runs re against s and, on success, copies every non-empty
// named capture group into into, returning whether re matched at all.
func matchNamed(re *regexp.Regexp, s string, into map[string]string) bool {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	for i, name := range re.SubexpNames() {
		if name == "" || m[i] == "" {
			continue
		}
		into[trimGroupSuffix(name)] = m[i]
	}
	return true
}

// trimGroupSuffix strips the "_N" disambiguator emit() appends to repeated
// parameter names (see uri.emit), so captures key by the original
// parameter name regardless of which occurrence matched.
func trimGroupSuffix(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '_' {
			allDigits := i < len(name)-1
			for j := i + 1; j < len(name) && allDigits; j++ {
				if name[j] < '0' || name[j] > '9' {
					allDigits = false
				}
			}
			if allDigits {
				return name[:i]
			}
		}
	}
	return name
}

func bindingKey(c uri.Constraint) string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Param
}

func (r *Route) resolveBinding(binder any, key string, raw any, event contract.Event) (any, error) {
	switch b := binder.(type) {
	case contract.RouteBinder:
		return b.ResolveRouteBinding(key, raw, event)
	case contract.BinderFunc:
		return b(key, raw, event)
	case AliasBinding:
		if r.resolver == nil {
			return nil, contract.NewRouterError("bind", "no resolver configured for alias binding "+b.Alias, nil)
		}
		target, err := r.resolver.Resolve(b.Alias, false)
		if err != nil {
			return nil, err
		}
		method, ok := methodByName(target, b.Method)
		if !ok {
			return nil, contract.NewRouterError("bind", "resolver target "+b.Alias+" has no method "+b.Method, nil)
		}
		return method(key, raw)
	default:
		return nil, contract.NewRouterError("bind", "unsupported binder shape", nil)
	}
}

// coerceNumeric converts a numeric-looking raw string to int64 or float64;
// any other value is left as a string. See spec.md §4.4 bind step 4.
func coerceNumeric(s string) any {
	if s == "" {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
