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
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
)

// RouterError covers configuration and programmer errors: missing options,
// invalid handler shape, unknown dispatcher, unresolvable binding, depth
// exceeded, a generate() call missing a required parameter, navigate()
// outside a browser, an invalid RouteCollection, a missing GetUri on the
// event. See spec.md §7.
type RouterError struct {
	Op  string // the operation that failed, e.g. "bind", "generate", "dispatch"
	Msg string
	Err error // optional wrapped cause
}

func (e *RouterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("router: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("router: %s: %s", e.Op, e.Msg)
}

func (e *RouterError) Unwrap() error { return e.Err }

// NewRouterError builds a RouterError for operation op.
func NewRouterError(op, msg string, cause error) *RouterError {
	return &RouterError{Op: op, Msg: msg, Err: cause}
}

// RouteNotFoundError means no route matched the event, a required
// parameter resolved to undefined during bind, or a named route lookup
// found nothing. See spec.md §7.
type RouteNotFoundError struct {
	Detail string
}

func (e *RouteNotFoundError) Error() string {
	if e.Detail == "" {
		return "route not found"
	}
	return "route not found: " + e.Detail
}

// NewRouteNotFoundError builds a RouteNotFoundError with a human-readable
// detail string.
func NewRouteNotFoundError(detail string) *RouteNotFoundError {
	return &RouteNotFoundError{Detail: detail}
}

// MethodNotAllowedError means the path (and host/protocol) matched a route
// but the event's method did not, and the event's method was not OPTIONS.
// Allowed carries the set of methods that would have matched. See spec.md §7.
type MethodNotAllowedError struct {
	Path    string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method not allowed for %s (allowed: %v)", e.Path, e.Allowed)
}

// NewMethodNotAllowedError builds a MethodNotAllowedError for path with the
// given allowed method set.
func NewMethodNotAllowedError(path string, allowed []string) *MethodNotAllowedError {
	return &MethodNotAllowedError{Path: path, Allowed: allowed}
}

// ErrorResponse is the status code and body RouterErrorHandler produces
// for a dispatch error. Body's concrete shape depends on the event's
// PreferredType: a map for "json", a string for "html"/"text", an
// encoding/xml-taggable struct for "xml".
type ErrorResponse struct {
	StatusCode int
	Body       any
}

// RouterErrorHandler returns a handler mapping RouteNotFoundError (404),
// MethodNotAllowedError (405), and any other error (500, treated as a
// RouterError) to an ErrorResponse shaped by event.PreferredType(), and
// forwarding every error it handles to logger (spec.md §7's AMBIENT
// supplement, the teacher's own slog-based error logging convention).
func RouterErrorHandler(logger *slog.Logger) func(err error, event Event) ErrorResponse {
	return func(err error, event Event) ErrorResponse {
		status, message := classifyError(err)
		logger.Error("router dispatch error", "status", status, "error", err)
		return ErrorResponse{StatusCode: status, Body: renderErrorBody(status, message, event.PreferredType())}
	}
}

func classifyError(err error) (status int, message string) {
	var notFound *RouteNotFoundError
	var methodNotAllowed *MethodNotAllowedError
	switch {
	case errors.As(err, &notFound):
		return 404, notFound.Error()
	case errors.As(err, &methodNotAllowed):
		return 405, methodNotAllowed.Error()
	default:
		return 500, err.Error()
	}
}

func renderErrorBody(status int, message, preferredType string) any {
	switch preferredType {
	case "json":
		return map[string]any{"status": status, "error": message}
	case "html":
		return fmt.Sprintf("<!doctype html><title>%d</title><p>%s</p>", status, message)
	case "xml":
		return errorXML{Status: status, Message: message}
	default:
		return message
	}
}

type errorXML struct {
	XMLName xml.Name `xml:"error"`
	Status  int      `xml:"status"`
	Message string   `xml:"message"`
}
