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

package adapter

import (
	"github.com/labstack/echo/v4"
)

// EchoEvent adapts echo.Context to contract.Event.
type EchoEvent struct {
	*HTTPEvent
	C echo.Context
}

// NewEchoEvent wraps c.Request() in an HTTPEvent and keeps c around so the
// resolved route can be stashed on echo's own request-scoped store.
func NewEchoEvent(c echo.Context) *EchoEvent {
	return &EchoEvent{HTTPEvent: NewHTTPEvent(c.Request()), C: c}
}

// SetRouteResolver stashes fn both on the embedded HTTPEvent and on the
// echo.Context, so handlers downstream of dispatch can read it back via
// c.Get("wayfarer.route") without importing this package.
func (e *EchoEvent) SetRouteResolver(fn func() any) {
	e.HTTPEvent.SetRouteResolver(fn)
	e.C.Set("wayfarer.route", fn)
}

// GetMetadataValue reads echo.Context values set via c.Set before falling
// back to the underlying request's context values.
func (e *EchoEvent) GetMetadataValue(key string) (any, bool) {
	if v := e.C.Get(key); v != nil {
		return v, true
	}
	return e.HTTPEvent.GetMetadataValue(key)
}
