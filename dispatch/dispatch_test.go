package dispatch

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/route"
)

type stubEvent struct{ uri string }

func (s *stubEvent) URL() *url.URL                           { u, _ := url.Parse(s.uri); return u }
func (s *stubEvent) Pathname() string                        { return "/" }
func (s *stubEvent) DecodedPathname() string                 { return "/" }
func (s *stubEvent) Method() string                          { return "GET" }
func (s *stubEvent) Protocol() string                        { return "http" }
func (s *stubEvent) Host() string                            { return "example.com" }
func (s *stubEvent) GetURI() string                          { return s.uri }
func (s *stubEvent) Query() url.Values                       { return nil }
func (s *stubEvent) IsMethod(m string) bool                  { return m == "GET" }
func (s *stubEvent) PreferredType() string                   { return "json" }
func (s *stubEvent) SetRouteResolver(fn func() any)           {}
func (s *stubEvent) GetMetadataValue(k string) (any, bool)   { return nil, false }

func newRoute(t *testing.T, h *route.HandlerSpec, redirect any) *route.Route {
	t.Helper()
	r, err := route.New(route.Options{Path: "/x", Method: "GET", Handler: h, Redirect: redirect})
	require.NoError(t, err)
	r.SetDispatchers(Default())
	return r
}

func TestCallable_InvokesFunctionDirectly(t *testing.T) {
	t.Parallel()
	called := false
	h := &route.HandlerSpec{Callable: func(event contract.Event) (any, error) {
		called = true
		return "ok", nil
	}}
	r := newRoute(t, h, nil)
	out, err := Callable{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.True(t, called)
}

func TestCallable_FactoryResolvesOnce(t *testing.T) {
	t.Parallel()
	builds := 0
	h := &route.HandlerSpec{
		IsFactory: true,
		Factory: func(resolver contract.Resolver) (func(event contract.Event) (any, error), error) {
			builds++
			return func(event contract.Event) (any, error) { return "built", nil }, nil
		},
	}
	r := newRoute(t, h, nil)
	out1, err := Callable{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	out2, err := Callable{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, "built", out1)
	assert.Equal(t, "built", out2)
	assert.Equal(t, 1, builds)
}

type greeter struct{}

func (greeter) Handle(event contract.Event) (any, error) { return "hello", nil }

func TestClass_DispatchesViaReflection(t *testing.T) {
	t.Parallel()
	h := &route.HandlerSpec{IsClass: true, Class: greeter{}, Module: greeter{}}
	r := newRoute(t, h, nil)
	out, err := Class{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "dispatch.greeter", Class{}.Name(r))
}

func TestClass_CustomAction(t *testing.T) {
	t.Parallel()
	h := &route.HandlerSpec{IsClass: true, Class: greeter{}, Action: "Handle"}
	r := newRoute(t, h, nil)
	out, err := Class{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestComponent_EagerReturnsAsIs(t *testing.T) {
	t.Parallel()
	h := &route.HandlerSpec{Component: "<div/>"}
	r := newRoute(t, h, nil)
	out, err := Component{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, "<div/>", out)
}

func TestComponent_LazyLoadsOnceAndCaches(t *testing.T) {
	t.Parallel()
	loads := 0
	h := &route.HandlerSpec{Lazy: true, Loader: func() (any, error) {
		loads++
		return "<lazy/>", nil
	}}
	r := newRoute(t, h, nil)
	out1, err := Component{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	out2, err := Component{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, "<lazy/>", out1)
	assert.Equal(t, "<lazy/>", out2)
	assert.Equal(t, 1, loads)
}

func TestRedirect_StringBecomesRedirectWithDefaultStatus(t *testing.T) {
	t.Parallel()
	r := newRoute(t, nil, "/login")
	out, err := Redirect{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, route.Redirect{Location: "/login", Status: 302}, out)
}

func TestRedirect_ObjectPreservesStatus(t *testing.T) {
	t.Parallel()
	r := newRoute(t, nil, route.Redirect{Location: "/login", Status: 301})
	out, err := Redirect{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, route.Redirect{Location: "/login", Status: 301}, out)
}

func TestRedirect_FuncRecursesToTerminal(t *testing.T) {
	t.Parallel()
	var target any = route.RedirectFunc(func(rt *route.Route, event contract.Event) (any, error) {
		return "/final", nil
	})
	r := newRoute(t, nil, target)
	out, err := Redirect{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.NoError(t, err)
	assert.Equal(t, route.Redirect{Location: "/final", Status: 302}, out)
}

func TestRedirect_FuncErrorPropagates(t *testing.T) {
	t.Parallel()
	var target any = route.RedirectFunc(func(rt *route.Route, event contract.Event) (any, error) {
		return nil, errors.New("boom")
	})
	r := newRoute(t, nil, target)
	_, err := Redirect{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.Error(t, err)
}

func TestRedirect_NilTargetErrors(t *testing.T) {
	t.Parallel()
	r := newRoute(t, nil, nil)
	_, err := Redirect{}.Dispatch(&stubEvent{uri: "/x"}, r)
	require.Error(t, err)
}

func TestDefault_HasAllFourKinds(t *testing.T) {
	t.Parallel()
	table := Default()
	assert.Len(t, table, 4)
	for _, k := range []route.DispatcherKind{route.KindCallable, route.KindClass, route.KindComponent, route.KindRedirect} {
		_, ok := table[k]
		assert.True(t, ok, "missing dispatcher for %s", k)
	}
}
