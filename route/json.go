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

// JSON is the shape returned by toJSON(), spec.md §4.4: "{path, method,
// handler: dispatcher.name(route), name: name ?? 'N/A', domain: domain ??
// 'N/A', fallback}".
type JSON struct {
	Path     string `json:"path"`
	Method   string `json:"method"`
	Handler  string `json:"handler"`
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	Fallback bool   `json:"fallback"`
}

// ToJSON builds the dump representation of this route.
func (r *Route) ToJSON() JSON {
	handler, err := r.DispatcherName()
	if err != nil {
		handler = "N/A"
	}
	name := r.opts.Name
	if name == "" {
		name = "N/A"
	}
	domain := r.opts.Domain
	if domain == "" {
		domain = "N/A"
	}
	return JSON{
		Path:     r.opts.Path,
		Method:   r.opts.Method,
		Handler:  handler,
		Name:     name,
		Domain:   domain,
		Fallback: r.opts.Fallback,
	}
}

// Info mirrors the teacher's route/constraint.go Info struct, extended
// with the spec's description/tags passthrough fields (SPEC_FULL.md §12
// supplement), used for introspection; Dump and the CLI use JSON instead.
type Info struct {
	Method      string
	Path        string
	Name        string
	Description string
	Tags        []string
	HandlerName string
	Middleware  []string
	IsStatic    bool
	ParamCount  int
}

// Info returns introspection metadata for this route.
func (r *Route) Info() Info {
	handler, err := r.DispatcherName()
	if err != nil {
		handler = "N/A"
	}
	names := r.GetParamNames()
	return Info{
		Method:      r.opts.Method,
		Path:        r.opts.Path,
		Name:        r.opts.Name,
		Description: r.opts.Description,
		Tags:        r.opts.Tags,
		HandlerName: handler,
		Middleware:  r.opts.Middleware,
		IsStatic:    len(names) == 0,
		ParamCount:  len(names),
	}
}
