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
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/uri"
)

var duplicateSlashes = regexp.MustCompile(`/+`)

// GenerateOptions configures Route.Generate; see spec.md §4.4 "generate".
type GenerateOptions struct {
	Params     map[string]any
	Query      url.Values
	Hash       string
	WithDomain bool
	Protocol   string
}

// Generate builds a URL for this route by walking its compiled
// constraints in order, substituting supplied parameter values for
// captures and omitting optional segments with no value. Unknown
// parameters become query-string entries. Fails if a required parameter
// has no value. See spec.md §4.4.
func (r *Route) Generate(opts GenerateOptions) (string, error) {
	used := make(map[string]bool, len(opts.Params))

	path, err := renderSegment(r.pathConstraints(), opts.Params, used)
	if err != nil {
		return "", err
	}
	path = duplicateSlashes.ReplaceAllString(path, "/")
	if path == "" {
		path = "/"
	}

	var domain string
	if opts.WithDomain && r.opts.Domain != "" {
		domain, err = renderSegment(r.domainConstraints(), opts.Params, used)
		if err != nil {
			return "", err
		}
	}

	query := url.Values{}
	for k, v := range opts.Query {
		query[k] = v
	}
	for k, v := range opts.Params {
		if used[k] {
			continue
		}
		query.Add(k, fmt.Sprint(v))
	}

	var b strings.Builder
	if opts.WithDomain && r.opts.Domain != "" {
		proto := opts.Protocol
		if proto == "" {
			proto = r.opts.Protocol
		}
		if proto == "" {
			proto = "http"
		}
		b.WriteString(proto)
		b.WriteString("://")
		b.WriteString(domain)
	}
	b.WriteString(path)

	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	if opts.Hash != "" {
		b.WriteByte('#')
		b.WriteString(opts.Hash)
	}

	return b.String(), nil
}

func (r *Route) pathConstraints() []uri.Constraint {
	var out []uri.Constraint
	for _, c := range r.compiled.Constraints {
		if !c.Host {
			out = append(out, c)
		}
	}
	return out
}

func (r *Route) domainConstraints() []uri.Constraint {
	var out []uri.Constraint
	for _, c := range r.compiled.Constraints {
		if c.Host {
			out = append(out, c)
		}
	}
	return out
}

// trimTrailingDelimiter strips a single trailing segment delimiter ("/"
// for a path prefix, "." for a domain prefix) from prefix, so omitting an
// optional parameter drops only the delimiter that introduced it rather
// than the literal segment before it.
func trimTrailingDelimiter(prefix string, host bool) string {
	delim := byte('/')
	if host {
		delim = '.'
	}
	if len(prefix) > 0 && prefix[len(prefix)-1] == delim {
		return prefix[:len(prefix)-1]
	}
	return prefix
}

func renderSegment(constraints []uri.Constraint, params map[string]any, used map[string]bool) (string, error) {
	var b strings.Builder
	for _, c := range constraints {
		if c.Param == "" {
			b.WriteString(c.Match)
			continue
		}

		value, ok := params[c.Param]
		if !ok && c.Alias != "" {
			value, ok = params[c.Alias]
		}
		if !ok {
			if c.Optional {
				// The literal segment before the parameter is its own
				// Match constraint; of the Prefix, only what follows
				// the introducing delimiter is still emitted (nothing
				// for a bare "/" or ".").
				b.WriteString(trimTrailingDelimiter(c.Prefix, c.Host))
				continue
			}
			return "", contract.NewRouterError("generate", "missing required parameter "+c.Param, nil)
		}

		used[c.Param] = true
		if c.Alias != "" {
			used[c.Alias] = true
		}

		b.WriteString(c.Prefix)
		b.WriteString(url.PathEscape(fmt.Sprint(value)))
		b.WriteString(c.Suffix)
	}
	return b.String(), nil
}
