package adapter

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoEvent_DelegatesToUnderlyingRequest(t *testing.T) {
	t.Parallel()
	e := echo.New()
	req := httptest.NewRequest("DELETE", "http://example.com/orders/1", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	event := NewEchoEvent(c)
	assert.Equal(t, "DELETE", event.Method())
	assert.Equal(t, "/orders/1", event.Pathname())
}

func TestEchoEvent_SetRouteResolverAlsoStoresOnContext(t *testing.T) {
	t.Parallel()
	e := echo.New()
	req := httptest.NewRequest("GET", "http://example.com/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	event := NewEchoEvent(c)
	event.SetRouteResolver(func() any { return "resolved" })

	v := c.Get("wayfarer.route")
	require.NotNil(t, v)
	fn, ok := v.(func() any)
	require.True(t, ok)
	assert.Equal(t, "resolved", fn())
}

func TestEchoEvent_GetMetadataValuePrefersContextSet(t *testing.T) {
	t.Parallel()
	e := echo.New()
	req := httptest.NewRequest("GET", "http://example.com/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("tenant", "acme")

	event := NewEchoEvent(c)
	v, ok := event.GetMetadataValue("tenant")
	require.True(t, ok)
	assert.Equal(t, "acme", v)
}
