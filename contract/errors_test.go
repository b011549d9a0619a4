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

package contract

import (
	"bytes"
	"errors"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct {
	preferredType string
}

func (s *stubEvent) URL() *url.URL                      { return &url.URL{} }
func (s *stubEvent) Pathname() string                   { return "/" }
func (s *stubEvent) DecodedPathname() string            { return "/" }
func (s *stubEvent) Method() string                     { return "GET" }
func (s *stubEvent) Protocol() string                   { return "http" }
func (s *stubEvent) Host() string                       { return "example.com" }
func (s *stubEvent) GetURI() string                     { return "/" }
func (s *stubEvent) Query() url.Values                  { return nil }
func (s *stubEvent) IsMethod(m string) bool             { return m == "GET" }
func (s *stubEvent) PreferredType() string              { return s.preferredType }
func (s *stubEvent) SetRouteResolver(fn func() any)     {}
func (s *stubEvent) GetMetadataValue(k string) (any, bool) { return nil, false }

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestRouterErrorHandler_MapsRouteNotFoundTo404(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	handler := RouterErrorHandler(newTestLogger(&buf))

	resp := handler(NewRouteNotFoundError("no match"), &stubEvent{preferredType: "json"})

	assert.Equal(t, 404, resp.StatusCode)
	assert.Contains(t, buf.String(), "status=404")
}

func TestRouterErrorHandler_MapsMethodNotAllowedTo405(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	handler := RouterErrorHandler(newTestLogger(&buf))

	resp := handler(NewMethodNotAllowedError("/users", []string{"GET", "POST"}), &stubEvent{preferredType: "json"})

	assert.Equal(t, 405, resp.StatusCode)
}

func TestRouterErrorHandler_MapsOtherErrorsTo500(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	handler := RouterErrorHandler(newTestLogger(&buf))

	resp := handler(errors.New("boom"), &stubEvent{preferredType: "json"})

	assert.Equal(t, 500, resp.StatusCode)
}

func TestRouterErrorHandler_WrappedErrorsStillClassify(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	handler := RouterErrorHandler(newTestLogger(&buf))

	wrapped := NewRouterError("dispatch", "failed", NewRouteNotFoundError("no match"))
	resp := handler(wrapped, &stubEvent{preferredType: "json"})

	assert.Equal(t, 404, resp.StatusCode)
}

func TestRouterErrorHandler_ShapesBodyByPreferredType(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	handler := RouterErrorHandler(newTestLogger(&buf))

	cases := []struct {
		preferredType string
		check         func(t *testing.T, body any)
	}{
		{"json", func(t *testing.T, body any) {
			m, ok := body.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, 404, m["status"])
		}},
		{"html", func(t *testing.T, body any) {
			s, ok := body.(string)
			require.True(t, ok)
			assert.Contains(t, s, "<!doctype html>")
		}},
		{"xml", func(t *testing.T, body any) {
			x, ok := body.(errorXML)
			require.True(t, ok)
			assert.Equal(t, 404, x.Status)
		}},
		{"text", func(t *testing.T, body any) {
			s, ok := body.(string)
			require.True(t, ok)
			assert.NotEmpty(t, s)
		}},
	}

	for _, c := range cases {
		resp := handler(NewRouteNotFoundError("no match"), &stubEvent{preferredType: c.preferredType})
		c.check(t, resp.Body)
	}
}

func TestRouterErrorHandler_ForwardsEveryErrorToLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	handler := RouterErrorHandler(newTestLogger(&buf))

	handler(errors.New("boom"), &stubEvent{preferredType: "text"})

	assert.Contains(t, buf.String(), "router dispatch error")
	assert.Contains(t, buf.String(), "boom")
}
