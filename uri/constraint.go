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

// Package uri implements the path/domain template compiler (spec.md §4.1):
// it tokenizes a template into an ordered list of Constraints and emits the
// regular expression used to match an incoming URI.
package uri

import "regexp"

// Quantifier marks how a parameter constraint may repeat in the template.
type Quantifier byte

const (
	// QuantifierNone means the parameter is required and appears exactly once.
	QuantifierNone Quantifier = 0
	// QuantifierOptional is the "?" suffix: zero or one.
	QuantifierOptional Quantifier = '?'
	// QuantifierOneOrMore is the "+" suffix: one or more path segments.
	QuantifierOneOrMore Quantifier = '+'
	// QuantifierZeroOrMore is the "*" suffix: zero or more path segments.
	QuantifierZeroOrMore Quantifier = '*'
)

// Constraint is one element of a compiled template, in left-to-right
// template order. A literal run sets only Match; a parameter sets Param
// (and, optionally, Prefix/Suffix/Quantifier/Default/Alias/Rule).
type Constraint struct {
	// Match is the literal text this constraint contributes, for
	// non-parameter constraints.
	Match string
	// Param is the parameter name, empty for literal constraints.
	Param string
	// Prefix is literal text immediately preceding the parameter capture
	// and inside any optional group, starting at the delimiter before it
	// (e.g. the "/" in "/users/:id", or the "/user-" in "/user-:id").
	Prefix string
	// Suffix is literal text immediately following the parameter capture,
	// up to the next delimiter.
	Suffix string
	// Quantifier records the "?"/"+"/"*" suffix, if any.
	Quantifier Quantifier
	// Optional is true when the parameter may be absent: Quantifier is "?"
	// or "*", or a Default is set.
	Optional bool
	// Default is the value substituted when the parameter is absent.
	Default any
	// Alias is the binder alias declared via bindings[name], if any.
	Alias string
	// Rule is the effective validation/capture regex for the parameter:
	// an inline (regex), else rules[name] from the route options, else
	// "[^/]+" (or the wildcard equivalent for + and *).
	Rule *regexp.Regexp
	// Host is true when this constraint came from the domain template
	// rather than the path template.
	Host bool
}

// IsParam reports whether this constraint represents a path/domain
// parameter (as opposed to a literal run).
func (c Constraint) IsParam() bool { return c.Param != "" }
