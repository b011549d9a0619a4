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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-dev/wayfarer/collection"
	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/mapper"
	"github.com/wayfarer-dev/wayfarer/observability"
	"github.com/wayfarer-dev/wayfarer/route"
)

type stubEvent struct {
	pathname string
	method   string
	resolver func() any
	meta     map[string]any
}

func (s *stubEvent) URL() *url.URL                 { u, _ := url.Parse(s.pathname); return u }
func (s *stubEvent) Pathname() string               { return s.pathname }
func (s *stubEvent) DecodedPathname() string        { return s.pathname }
func (s *stubEvent) Method() string                 { return s.method }
func (s *stubEvent) Protocol() string               { return "http" }
func (s *stubEvent) Host() string                   { return "example.com" }
func (s *stubEvent) GetURI() string                 { return s.pathname }
func (s *stubEvent) Query() url.Values              { return nil }
func (s *stubEvent) IsMethod(m string) bool         { return s.method == m }
func (s *stubEvent) PreferredType() string          { return "json" }
func (s *stubEvent) SetRouteResolver(fn func() any) { s.resolver = fn }
func (s *stubEvent) GetMetadataValue(k string) (any, bool) {
	v, ok := s.meta[k]
	return v, ok
}

func ok(event contract.Event) (any, error) { return "ok", nil }

func TestNew_DefaultsAreUsable(t *testing.T) {
	t.Parallel()
	r, err := New()
	require.NoError(t, err)
	assert.NotNil(t, r.Routes())
	assert.Equal(t, 0, r.Routes().Len())
}

func TestNew_RejectsNonPositiveMaxDepth(t *testing.T) {
	t.Parallel()
	_, err := New(WithMaxDepth(0))
	require.Error(t, err)
}

func TestMustNew_PanicsOnError(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { MustNew(WithMaxDepth(-1)) })
}

func TestGet_RegistersRouteAndSynthesizesHead(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/users/:id", Def{
		Name:    "users.show",
		Handler: &route.HandlerSpec{Callable: ok},
	}))

	assert.True(t, r.HasRoute("users.show"))
	out, err := r.Dispatch(&stubEvent{pathname: "/users/42", method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestPost_RegistersRoute(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Post("/users", Def{
		Name:    "users.create",
		Handler: &route.HandlerSpec{Callable: ok},
	}))

	out, err := r.Dispatch(&stubEvent{pathname: "/users", method: "POST"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestAny_RegistersEveryVerbButHead(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Any("/ping", Def{
		Name:    "ping",
		Handler: &route.HandlerSpec{Callable: ok},
	}))

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		_, err := r.Dispatch(&stubEvent{pathname: "/ping", method: method})
		require.NoError(t, err, method)
	}
}

func TestFallback_MatchesAnyUnregisteredPath(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Fallback(Def{
		Name:    "fallback",
		Handler: &route.HandlerSpec{Callable: ok},
	}))

	out, err := r.Dispatch(&stubEvent{pathname: "/anything/goes/here", method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestDispatch_RouteNotFound(t *testing.T) {
	t.Parallel()
	r := MustNew()
	_, err := r.Dispatch(&stubEvent{pathname: "/missing", method: "GET"})
	require.Error(t, err)
}

func TestDispatch_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/users", Def{Name: "users.index", Handler: &route.HandlerSpec{Callable: ok}}))

	_, err := r.Dispatch(&stubEvent{pathname: "/users", method: "DELETE"})
	require.Error(t, err)
}

func TestDispatch_OptionsSynthesisRunsWithoutBind(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/users", Def{Name: "users.index", Handler: &route.HandlerSpec{Callable: ok}}))
	require.NoError(t, r.Post("/users", Def{Name: "users.create", Handler: &route.HandlerSpec{Callable: ok}}))

	out, err := r.Dispatch(&stubEvent{pathname: "/users", method: "OPTIONS"})
	require.NoError(t, err)
	resp, ok := out.(collection.OptionsResponse)
	require.True(t, ok)
	assert.Equal(t, "GET,POST", resp.Content.Allow)
}

func TestGroupNoGroup_NestsPrefixAndName(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Group("/admin", Def{Name: "admin"}))
	require.NoError(t, r.Get("/users", Def{Name: "users.index", Handler: &route.HandlerSpec{Callable: ok}}))
	require.NoError(t, r.NoGroup())

	assert.True(t, r.HasRoute("admin.users.index"))
	out, err := r.Dispatch(&stubEvent{pathname: "/admin/users", method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestNoGroup_ErrorsWhenNoGroupOpen(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.Error(t, r.NoGroup())
}

func TestGroup_NestedGroupsComposePrefixes(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Group("/api", Def{Name: "api"}))
	require.NoError(t, r.Group("/v1", Def{Name: "v1"}))
	require.NoError(t, r.Get("/ping", Def{Name: "ping", Handler: &route.HandlerSpec{Callable: ok}}))
	require.NoError(t, r.NoGroup())
	require.NoError(t, r.NoGroup())

	assert.True(t, r.HasRoute("api.v1.ping"))
	_, err := r.Dispatch(&stubEvent{pathname: "/api/v1/ping", method: "GET"})
	require.NoError(t, err)
}

func TestUse_AppliesGlobalMiddlewareInOrder(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/ping", Def{Name: "ping", Handler: &route.HandlerSpec{Callable: ok}}))

	var order []string
	r.Use("first", func(event contract.Event, next func() (any, error)) (any, error) {
		order = append(order, "first")
		return next()
	})
	r.Use("second", func(event contract.Event, next func() (any, error)) (any, error) {
		order = append(order, "second")
		return next()
	})

	out, err := r.Dispatch(&stubEvent{pathname: "/ping", method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestUse_ReplacingSameNameDoesNotDuplicateOrder(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/ping", Def{Name: "ping", Handler: &route.HandlerSpec{Callable: ok}}))

	calls := 0
	r.Use("mw", func(event contract.Event, next func() (any, error)) (any, error) {
		calls++
		return next()
	})
	r.Use("mw", func(event contract.Event, next func() (any, error)) (any, error) {
		calls += 10
		return next()
	})

	_, err := r.Dispatch(&stubEvent{pathname: "/ping", method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
}

func TestUseOn_AppliesOnlyToNamedRoutes(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/a", Def{Name: "a", Handler: &route.HandlerSpec{Callable: ok}}))
	require.NoError(t, r.Get("/b", Def{Name: "b", Handler: &route.HandlerSpec{Callable: ok}}))

	hit := false
	r.UseOn([]string{"a"}, "only-a", func(event contract.Event, next func() (any, error)) (any, error) {
		hit = true
		return next()
	})

	_, err := r.Dispatch(&stubEvent{pathname: "/b", method: "GET"})
	require.NoError(t, err)
	assert.False(t, hit)

	_, err = r.Dispatch(&stubEvent{pathname: "/a", method: "GET"})
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestSkipMiddleware_BypassesGlobalMiddleware(t *testing.T) {
	t.Parallel()
	r := MustNew(WithSkipMiddleware(true))
	require.NoError(t, r.Get("/ping", Def{Name: "ping", Handler: &route.HandlerSpec{Callable: ok}}))

	hit := false
	r.Use("mw", func(event contract.Event, next func() (any, error)) (any, error) {
		hit = true
		return next()
	})

	_, err := r.Dispatch(&stubEvent{pathname: "/ping", method: "GET"})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestExcludeMiddleware_SkipsNamedMiddlewareOnRoute(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/ping", Def{
		Name:              "ping",
		Handler:           &route.HandlerSpec{Callable: ok},
		ExcludeMiddleware: []string{"logger"},
	}))

	hit := false
	r.Use("logger", func(event contract.Event, next func() (any, error)) (any, error) {
		hit = true
		return next()
	})

	_, err := r.Dispatch(&stubEvent{pathname: "/ping", method: "GET"})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRespondWithRouteName_BypassesMatch(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/users/:id", Def{Name: "users.show", Handler: &route.HandlerSpec{Callable: ok}}))

	out, err := r.RespondWithRouteName(&stubEvent{pathname: "/users/7", method: "GET"}, "users.show")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestRespondWithRouteName_ErrorsOnUnknownName(t *testing.T) {
	t.Parallel()
	r := MustNew()
	_, err := r.RespondWithRouteName(&stubEvent{pathname: "/x", method: "GET"}, "nope")
	require.Error(t, err)
}

func TestGenerate_BuildsURLFromNamedRoute(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/users/:id", Def{Name: "users.show", Handler: &route.HandlerSpec{Callable: ok}}))

	u, err := r.Generate(GenerateOptions{Name: "users.show", Params: map[string]any{"id": "42"}})
	require.NoError(t, err)
	assert.Equal(t, "/users/42", u)
}

func TestGenerate_ErrorsOnUnknownName(t *testing.T) {
	t.Parallel()
	r := MustNew()
	_, err := r.Generate(GenerateOptions{Name: "nope"})
	require.Error(t, err)
}

func TestNavigate_AlwaysErrors(t *testing.T) {
	t.Parallel()
	r := MustNew()
	err := r.Navigate("/somewhere", false)
	require.Error(t, err)
}

func TestIntrospection_ReflectsCurrentRoute(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/users/:id", Def{Name: "users.show", Handler: &route.HandlerSpec{Callable: ok}}))

	assert.Equal(t, "", r.GetCurrentRouteName())
	_, err := r.Dispatch(&stubEvent{pathname: "/users/42", method: "GET"})
	require.NoError(t, err)

	assert.Equal(t, "users.show", r.GetCurrentRouteName())
	assert.True(t, r.IsCurrentRouteNamed("users.show"))
	assert.Equal(t, int64(42), r.GetParam("id", nil)) // unbound numeric capture is coerced, spec.md §4.4 step 4
	assert.Equal(t, "fallback", r.GetParam("missing", "fallback"))
	assert.Contains(t, r.GetParams(), "id")
}

func TestDiagnostics_EmitsRouteRegistered(t *testing.T) {
	t.Parallel()
	var events []observability.DiagnosticEvent
	r := MustNew(WithDiagnostics(observability.DiagnosticHandlerFunc(func(e observability.DiagnosticEvent) {
		events = append(events, e)
	})))

	require.NoError(t, r.Get("/users/:id", Def{Name: "users.show", Handler: &route.HandlerSpec{Callable: ok}}))

	require.Len(t, events, 1)
	assert.Equal(t, observability.DiagRouteRegistered, events[0].Kind)
	assert.Equal(t, "/users/:id", events[0].Fields["path"])
}

func TestDiagnostics_EmitsRouteNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()
	var kinds []observability.DiagnosticKind
	r := MustNew(WithDiagnostics(observability.DiagnosticHandlerFunc(func(e observability.DiagnosticEvent) {
		kinds = append(kinds, e.Kind)
	})))
	require.NoError(t, r.Get("/users", Def{Name: "users.index", Handler: &route.HandlerSpec{Callable: ok}}))

	_, err := r.Dispatch(&stubEvent{pathname: "/missing", method: "GET"})
	require.Error(t, err)

	_, err = r.Dispatch(&stubEvent{pathname: "/users", method: "DELETE"})
	require.Error(t, err)

	assert.Contains(t, kinds, observability.DiagRouteNotFound)
	assert.Contains(t, kinds, observability.DiagMethodNotAllowed)
}

func TestDiagnostics_EmitsBindingFailed(t *testing.T) {
	t.Parallel()
	var kinds []observability.DiagnosticKind
	r := MustNew(WithDiagnostics(observability.DiagnosticHandlerFunc(func(e observability.DiagnosticEvent) {
		kinds = append(kinds, e.Kind)
	})))
	require.NoError(t, r.Get("/users/:id", Def{
		Name:    "users.show",
		Handler: &route.HandlerSpec{Callable: ok},
		Bindings: map[string]any{
			"id": contract.BinderFunc(func(key string, raw any, event contract.Event) (any, error) {
				return nil, contract.NewRouterError("binding", "boom", nil)
			}),
		},
	}))

	_, err := r.Dispatch(&stubEvent{pathname: "/users/42", method: "GET"})
	require.Error(t, err)
	assert.Contains(t, kinds, observability.DiagBindingFailed)
}

func TestWithObservability_WrapsDispatchInASpan(t *testing.T) {
	t.Parallel()
	recorder, err := observability.New(observability.Config{})
	require.NoError(t, err)

	r := MustNew(WithObservability(recorder))
	require.NoError(t, r.Get("/ping", Def{Name: "ping", Handler: &route.HandlerSpec{Callable: ok}}))

	out, err := r.Dispatch(&stubEvent{pathname: "/ping", method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestWithObservability_RecordsDispatchFailure(t *testing.T) {
	t.Parallel()
	recorder, err := observability.New(observability.Config{})
	require.NoError(t, err)

	r := MustNew(WithObservability(recorder))
	_, err = r.Dispatch(&stubEvent{pathname: "/missing", method: "GET"})
	require.Error(t, err)
}

func TestDumpRoutes_ListsCompiledRoutes(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Get("/users", Def{Name: "users.index", Handler: &route.HandlerSpec{Callable: ok}}))

	dump := r.DumpRoutes()
	require.Len(t, dump, 1) // synthesized HEAD twin is internal and excluded from Dump
	var names []string
	for _, d := range dump {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "users.index")
}

func TestSetRoutes_RejectsNil(t *testing.T) {
	t.Parallel()
	r := MustNew()
	err := r.SetRoutes(nil)
	require.Error(t, err)
}

func TestConfigure_RejectsNonPositiveMaxDepth(t *testing.T) {
	t.Parallel()
	r := MustNew()
	err := r.Configure(WithMaxDepth(0))
	require.Error(t, err)
}

func TestDefine_RegistersBatchOfDefinitions(t *testing.T) {
	t.Parallel()
	r := MustNew()
	require.NoError(t, r.Define([]mapper.Definition{
		{Path: "/ping", Method: "GET", Name: "ping", Handler: &route.HandlerSpec{Callable: ok}},
	}))
	assert.True(t, r.HasRoute("ping"))
}
