package collection

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/dispatch"
	"github.com/wayfarer-dev/wayfarer/match"
	"github.com/wayfarer-dev/wayfarer/route"
)

type stubEvent struct {
	pathname string
	method   string
}

func (s *stubEvent) URL() *url.URL                          { u, _ := url.Parse(s.pathname); return u }
func (s *stubEvent) Pathname() string                       { return s.pathname }
func (s *stubEvent) DecodedPathname() string                { return s.pathname }
func (s *stubEvent) Method() string                         { return s.method }
func (s *stubEvent) Protocol() string                       { return "http" }
func (s *stubEvent) Host() string                           { return "example.com" }
func (s *stubEvent) GetURI() string                         { return s.pathname }
func (s *stubEvent) Query() url.Values                      { return nil }
func (s *stubEvent) IsMethod(m string) bool                 { return s.method == m }
func (s *stubEvent) PreferredType() string                  { return "json" }
func (s *stubEvent) SetRouteResolver(fn func() any)          {}
func (s *stubEvent) GetMetadataValue(k string) (any, bool)  { return nil, false }

func newWiredRoute(t *testing.T, method, path, name string) *route.Route {
	t.Helper()
	r, err := route.New(route.Options{
		Path:   path,
		Method: method,
		Name:   name,
		Handler: &route.HandlerSpec{
			Callable: func(event contract.Event) (any, error) { return "ok", nil },
		},
	})
	require.NoError(t, err)
	r.SetMatchers(match.Default())
	r.SetDispatchers(dispatch.Default())
	return r
}

func TestAdd_PopulatesIndices(t *testing.T) {
	t.Parallel()
	c := New()
	r := newWiredRoute(t, "GET", "/users", "users.index")
	c.Add(r)

	assert.Equal(t, 1, c.Len())
	assert.Same(t, r, c.GetByName("users.index"))
	assert.True(t, c.HasNamedRoute("users.index"))
	assert.Equal(t, []*route.Route{r}, c.GetRoutesByMethod("get"))
}

func TestMatch_ResolvesFromMethodBucket(t *testing.T) {
	t.Parallel()
	c := New()
	c.Add(newWiredRoute(t, "GET", "/users/:id", "users.show"))

	r, err := c.Match(&stubEvent{pathname: "/users/42", method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "users.show", r.Name())
}

func TestMatch_SynthesizesOptionsWhenMethodMismatched(t *testing.T) {
	t.Parallel()
	c := New()
	c.Add(newWiredRoute(t, "GET", "/users", "users.index"))
	c.Add(newWiredRoute(t, "POST", "/users", "users.create"))

	r, err := c.Match(&stubEvent{pathname: "/users", method: "OPTIONS"})
	require.NoError(t, err)

	out, err := r.Run(&stubEvent{pathname: "/users", method: "OPTIONS"})
	require.NoError(t, err)
	resp, ok := out.(OptionsResponse)
	require.True(t, ok)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "GET,POST", resp.Content.Allow)
}

func TestMatch_FailsWithMethodNotAllowed(t *testing.T) {
	t.Parallel()
	c := New()
	c.Add(newWiredRoute(t, "GET", "/users", "users.index"))

	_, err := c.Match(&stubEvent{pathname: "/users", method: "DELETE"})
	require.Error(t, err)
	var notAllowed *contract.MethodNotAllowedError
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, []string{"GET"}, notAllowed.Allowed)
}

func TestMatch_FailsWithRouteNotFound(t *testing.T) {
	t.Parallel()
	c := New()
	c.Add(newWiredRoute(t, "GET", "/users", "users.index"))

	_, err := c.Match(&stubEvent{pathname: "/accounts", method: "GET"})
	require.Error(t, err)
	var notFound *contract.RouteNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDump_SortsAndExcludesInternalHead(t *testing.T) {
	t.Parallel()
	c := New()
	c.Add(newWiredRoute(t, "GET", "/zebra", "zebra"))
	c.Add(newWiredRoute(t, "GET", "/apple", "apple"))

	head, err := route.New(route.Options{Path: "/apple", Method: "HEAD", IsInternalHead: true})
	require.NoError(t, err)
	c.Add(head)

	dump := c.Dump()
	require.Len(t, dump, 2)
	assert.Equal(t, "/apple", dump[0].Path)
	assert.Equal(t, "/zebra", dump[1].Path)
}

func TestString_ReturnsJSONArray(t *testing.T) {
	t.Parallel()
	c := New()
	c.Add(newWiredRoute(t, "GET", "/users", "users.index"))
	assert.Contains(t, c.String(), `"path":"/users"`)
}
