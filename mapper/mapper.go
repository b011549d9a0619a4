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

// Package mapper implements RouteMapper (spec.md §4.6): it expands a tree
// of nested Definitions into a flat list of compiled route.Route values,
// concatenating prefixes and names, merging inherited attributes, fanning
// out multi-method definitions, and synthesizing HEAD twins for GET.
package mapper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/route"
)

var allowedMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true,
	"PATCH": true, "DELETE": true, "OPTIONS": true,
}

// Definition is the user-facing, recursive route definition (spec.md §3).
// Empty/nil fields on a non-root definition inherit from the parent per
// the rules in mergeAttrs; Strict and Fallback use pointers so
// "unset" (inherit) is distinguishable from an explicit false.
type Definition struct {
	Path    string
	Method  string
	Methods []string

	Handler  *route.HandlerSpec
	Redirect any

	Name        string
	Description string
	Tags        []string

	Domain   string
	Protocol string
	Strict   *bool
	Fallback *bool

	Rules    map[string]string
	Defaults map[string]any
	Bindings map[string]any

	Middleware        []string
	ExcludeMiddleware []string

	PageLayout    any
	CustomOptions map[string]any

	Children []Definition
}

// Options configures a Mapper. MaxDepth bounds recursion (spec.md §4.6
// step 1); Matchers/Dispatchers/Resolver are injected into every
// constructed Route.
type Options struct {
	MaxDepth    int
	Matchers    []route.Matcher
	Dispatchers map[route.DispatcherKind]route.Dispatcher
	Resolver    contract.Resolver
}

// Mapper is the C6 RouteMapper.
type Mapper struct {
	opts Options
}

// New returns a Mapper, failing if MaxDepth <= 0 (spec.md §4.6).
func New(opts Options) (*Mapper, error) {
	if opts.MaxDepth <= 0 {
		return nil, contract.NewRouterError("mapper", "maxDepth must be > 0", nil)
	}
	return &Mapper{opts: opts}, nil
}

// inherited carries the attributes a child definition inherits from its
// ancestors while toRoutes walks the tree.
type inherited struct {
	pathPrefix string
	namePrefix string
	middleware []string
	exclude    []string
	rules      map[string]string
	defaults   map[string]any
	bindings   map[string]any
	domain     string
	protocol   string
	strict     bool
	fallback   bool
	pageLayout any
	custom     map[string]any
}

// ToRoutes expands definitions into flat, compiled routes (spec.md §4.6).
func (m *Mapper) ToRoutes(definitions []Definition) ([]*route.Route, error) {
	var out []*route.Route
	root := inherited{rules: map[string]string{}, defaults: map[string]any{}, bindings: map[string]any{}, custom: map[string]any{}}
	for _, def := range definitions {
		if err := m.walk(def, root, 0, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *Mapper) walk(def Definition, parent inherited, depth int, out *[]*route.Route) error {
	if depth > m.opts.MaxDepth {
		return contract.NewRouterError("mapper", fmt.Sprintf("definition depth exceeds maxDepth %d", m.opts.MaxDepth), nil)
	}
	if def.Path == "" {
		return contract.NewRouterError("mapper", "definition has no path", nil)
	}

	merged := mergeAttrs(def, parent)

	hasHandler := def.Handler != nil || def.Redirect != nil
	if !hasHandler {
		if len(def.Children) == 0 {
			return contract.NewRouterError("mapper", "definition "+merged.pathPrefix+" has no handler, no redirect, and no children", nil)
		}
		for _, child := range def.Children {
			if err := m.walk(child, merged, depth+1, out); err != nil {
				return err
			}
		}
		return nil
	}

	methods, err := resolveMethods(def)
	if err != nil {
		return err
	}

	explicitHead := false
	for _, meth := range methods {
		if meth == "HEAD" {
			explicitHead = true
		}
	}

	var getRoute *route.Route
	for _, meth := range methods {
		r, err := m.build(def, merged, meth, false)
		if err != nil {
			return err
		}
		*out = append(*out, r)
		if meth == "GET" {
			getRoute = r
		}
	}

	if getRoute != nil && !explicitHead {
		head, err := m.build(def, merged, "HEAD", true)
		if err != nil {
			return err
		}
		*out = append(*out, head)
	}

	for _, child := range def.Children {
		if err := m.walk(child, merged, depth+1, out); err != nil {
			return err
		}
	}

	return nil
}

func resolveMethods(def Definition) ([]string, error) {
	var methods []string
	switch {
	case len(def.Methods) > 0:
		methods = def.Methods
	case def.Method != "":
		methods = []string{def.Method}
	case def.Redirect != nil:
		methods = []string{"GET"}
	default:
		return nil, contract.NewRouterError("mapper", "definition "+def.Path+" declares no method", nil)
	}
	for _, meth := range methods {
		if !allowedMethods[strings.ToUpper(meth)] {
			return nil, contract.NewRouterError("mapper", "unknown method "+meth, nil)
		}
	}
	return methods, nil
}

func (m *Mapper) build(def Definition, merged inherited, method string, internalHead bool) (*route.Route, error) {
	bindings := make(map[string]any, len(merged.bindings))
	for param, b := range merged.bindings {
		if s, ok := b.(string); ok {
			if alias, action, found := strings.Cut(s, "@"); found {
				b = route.AliasBinding{Alias: alias, Method: action}
			}
		}
		bindings[param] = b
	}
	r, err := route.New(route.Options{
		Path:              merged.pathPrefix,
		Method:            strings.ToUpper(method),
		Domain:            merged.domain,
		Protocol:          merged.protocol,
		Strict:            merged.strict,
		Fallback:          merged.fallback,
		Name:              merged.namePrefix,
		Description:       def.Description,
		Tags:              def.Tags,
		Handler:           def.Handler,
		Redirect:          def.Redirect,
		Rules:             merged.rules,
		Defaults:          merged.defaults,
		Bindings:          bindings,
		Middleware:        merged.middleware,
		ExcludeMiddleware: merged.exclude,
		PageLayout:        merged.pageLayout,
		CustomOptions:     merged.custom,
		IsInternalHead:    internalHead,
	})
	if err != nil {
		return nil, err
	}
	r.SetMatchers(m.opts.Matchers)
	r.SetDispatchers(m.opts.Dispatchers)
	r.SetResolver(m.opts.Resolver)
	return r, nil
}

var repeatedSlashes = regexp.MustCompile(`/+`)
var repeatedDots = regexp.MustCompile(`\.+`)

func mergeAttrs(def Definition, parent inherited) inherited {
	out := inherited{
		pathPrefix: joinPath(parent.pathPrefix, def.Path),
		namePrefix: joinName(parent.namePrefix, def.Name),
		middleware: append(append([]string(nil), parent.middleware...), def.Middleware...),
		exclude:    append(append([]string(nil), parent.exclude...), def.ExcludeMiddleware...),
		rules:      mergeStringMap(parent.rules, def.Rules),
		defaults:   mergeAnyMap(parent.defaults, def.Defaults),
		bindings:   mergeAnyMap(parent.bindings, def.Bindings),
		domain:     orElse(def.Domain, parent.domain),
		protocol:   orElse(def.Protocol, parent.protocol),
		strict:     boolOrElse(def.Strict, parent.strict),
		fallback:   boolOrElse(def.Fallback, parent.fallback),
		pageLayout: anyOrElse(def.PageLayout, parent.pageLayout),
		custom:     mergeAnyMap(parent.custom, def.CustomOptions),
	}
	return out
}

func joinPath(prefix, path string) string {
	joined := repeatedSlashes.ReplaceAllString(prefix+"/"+path, "/")
	if joined != "/" {
		joined = strings.TrimSuffix(joined, "/")
	}
	if joined == "" {
		joined = "/"
	}
	return joined
}

func joinName(prefix, name string) string {
	joined := repeatedDots.ReplaceAllString(prefix+"."+name, ".")
	return strings.Trim(joined, ".")
}

func mergeStringMap(parent, child map[string]string) map[string]string {
	out := make(map[string]string, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

func mergeAnyMap(parent, child map[string]any) map[string]any {
	out := make(map[string]any, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

func orElse(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func anyOrElse(v, fallback any) any {
	if v != nil {
		return v
	}
	return fallback
}

func boolOrElse(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}
