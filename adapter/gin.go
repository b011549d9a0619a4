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
	"github.com/gin-gonic/gin"
)

// GinEvent adapts *gin.Context to contract.Event, for embedding wayfarer
// inside a Gin middleware chain instead of serving net/http directly.
type GinEvent struct {
	*HTTPEvent
	C *gin.Context
}

// NewGinEvent wraps c.Request in an HTTPEvent and keeps c around so
// SetRouteResolver results can later be read back via c.Get.
func NewGinEvent(c *gin.Context) *GinEvent {
	return &GinEvent{HTTPEvent: NewHTTPEvent(c.Request), C: c}
}

// SetRouteResolver stashes fn both on the embedded HTTPEvent and on the
// gin.Context, so gin handlers downstream of the route dispatch can read
// it back through c.Get("wayfarer.route") without importing this package.
func (e *GinEvent) SetRouteResolver(fn func() any) {
	e.HTTPEvent.SetRouteResolver(fn)
	e.C.Set("wayfarer.route", fn)
}

// GetMetadataValue reads gin.Context key/value pairs set via c.Set before
// falling back to the underlying request's context values.
func (e *GinEvent) GetMetadataValue(key string) (any, bool) {
	if v, ok := e.C.Get(key); ok {
		return v, true
	}
	return e.HTTPEvent.GetMetadataValue(key)
}

