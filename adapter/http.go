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

// Package adapter bridges concrete web frameworks to contract.Event, so a
// wayfarer Router can dispatch requests it never had to know the shape of.
// None of these adapters are required: any type satisfying contract.Event
// works, these are just the ones the pack's own dependency surface
// (net/http, Gin, Echo) already gives us for free.
package adapter

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// HTTPEvent adapts *http.Request to contract.Event.
type HTTPEvent struct {
	Req      *http.Request
	resolver func() any
}

// NewHTTPEvent wraps req.
func NewHTTPEvent(req *http.Request) *HTTPEvent {
	return &HTTPEvent{Req: req}
}

func (e *HTTPEvent) URL() *url.URL          { return e.Req.URL }
func (e *HTTPEvent) Pathname() string       { return e.Req.URL.EscapedPath() }
func (e *HTTPEvent) DecodedPathname() string { return e.Req.URL.Path }
func (e *HTTPEvent) Method() string         { return strings.ToUpper(e.Req.Method) }

func (e *HTTPEvent) Protocol() string {
	if e.Req.TLS != nil {
		return "https"
	}
	if proto := e.Req.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(proto)
	}
	return "http"
}

func (e *HTTPEvent) Host() string {
	host := e.Req.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}

func (e *HTTPEvent) GetURI() string    { return e.Req.URL.String() }
func (e *HTTPEvent) Query() url.Values { return e.Req.URL.Query() }

func (e *HTTPEvent) IsMethod(m string) bool {
	return strings.EqualFold(e.Req.Method, m)
}

func (e *HTTPEvent) PreferredType() string {
	accept := e.Req.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "application/json"):
		return "json"
	case strings.Contains(accept, "text/html"):
		return "html"
	case strings.Contains(accept, "application/xml"):
		return "xml"
	default:
		return "text"
	}
}

func (e *HTTPEvent) SetRouteResolver(fn func() any) { e.resolver = fn }

func (e *HTTPEvent) GetMetadataValue(key string) (any, bool) {
	ctx := e.Req.Context()
	v := ctx.Value(metadataKey(key))
	if v == nil {
		return nil, false
	}
	return v, true
}

// metadataKey namespaces context values set via WithMetadata so adapter
// keys never collide with an embedding application's own context keys.
type metadataKey string

// WithMetadata attaches a value retrievable later through
// HTTPEvent.GetMetadataValue(key).
func WithMetadata(req *http.Request, key string, value any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), metadataKey(key), value))
}
