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

package uri

import (
	"fmt"
	"regexp"
	"strings"
)

// Compiled is the output of Compile: the ordered constraint list plus the
// anchored regular expressions used to match an event.
type Compiled struct {
	// Constraints is the full ordered list, domain constraints (if any)
	// first, then path constraints, mirroring template concatenation order
	// per spec.md §4.1.
	Constraints []Constraint
	// PathRegex matches the path portion only.
	PathRegex *regexp.Regexp
	// HostRegex matches the domain portion only; nil when no domain
	// template was supplied.
	HostRegex *regexp.Regexp
}

// Options configures compilation of a single route's templates.
type Options struct {
	// Rules maps parameter name to a regex fragment (route.rules).
	Rules map[string]string
	// Defaults maps parameter name to a default value (route.defaults).
	Defaults map[string]any
	// Aliases maps parameter name to a binder alias (route.bindings[name].alias).
	Aliases map[string]string
	// Strict disables trailing-slash tolerance on the path regex.
	Strict bool
}

// Compile tokenizes domainTemplate (optional) and pathTemplate, and emits
// the matching regexes. See spec.md §4.1.
func Compile(domainTemplate, pathTemplate string, opts Options) (*Compiled, error) {
	var constraints []Constraint

	var hostRe *regexp.Regexp
	if domainTemplate != "" {
		hostConstraints, err := tokenize(domainTemplate, true, opts)
		if err != nil {
			return nil, fmt.Errorf("uri: compile domain %q: %w", domainTemplate, err)
		}
		constraints = append(constraints, hostConstraints...)
		hostRe, err = emit(hostConstraints, emitOptions{caseInsensitive: true, strict: true})
		if err != nil {
			return nil, fmt.Errorf("uri: emit domain regex %q: %w", domainTemplate, err)
		}
	}

	pathConstraints, err := tokenize(pathTemplate, false, opts)
	if err != nil {
		return nil, fmt.Errorf("uri: compile path %q: %w", pathTemplate, err)
	}
	constraints = append(constraints, pathConstraints...)

	pathRe, err := emit(pathConstraints, emitOptions{caseInsensitive: false, strict: opts.Strict})
	if err != nil {
		return nil, fmt.Errorf("uri: emit path regex %q: %w", pathTemplate, err)
	}

	return &Compiled{Constraints: constraints, PathRegex: pathRe, HostRegex: hostRe}, nil
}

func isNameChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// tokenize walks template left to right, splitting it into literal and
// parameter constraints, per spec.md §4.1's tokenization rules.
func tokenize(template string, host bool, opts Options) ([]Constraint, error) {
	var constraints []Constraint
	var literal strings.Builder
	delim := byte('/')
	if host {
		delim = '.'
	}

	n := len(template)
	i := 0
	for i < n {
		c := template[i]
		if c != ':' {
			literal.WriteByte(c)
			i++
			continue
		}

		// The literal run up to its last delimiter becomes its own Match
		// constraint; the delimiter and any text after it form the Prefix.
		prefix := literal.String()
		literal.Reset()
		if cut := strings.LastIndexByte(prefix, delim); cut > 0 {
			constraints = append(constraints, Constraint{Match: prefix[:cut], Host: host})
			prefix = prefix[cut:]
		}

		i++ // skip ':'
		start := i
		for i < n && isNameChar(template[i]) {
			i++
		}
		name := template[start:i]
		if name == "" {
			return nil, fmt.Errorf("uri: empty parameter name at offset %d in %q", start, template)
		}

		var ruleText string
		hasInlineRule := false
		if i < n && template[i] == '(' {
			depth := 1
			j := i + 1
			for j < n && depth > 0 {
				switch template[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			if depth != 0 {
				return nil, fmt.Errorf("uri: unbalanced parentheses in rule for %q", name)
			}
			ruleText = template[i+1 : j-1]
			hasInlineRule = true
			i = j
		}

		var quant Quantifier
		if i < n {
			switch template[i] {
			case '?', '+', '*':
				quant = Quantifier(template[i])
				i++
			}
		}

		sufStart := i
		for i < n && template[i] != ':' && template[i] != delim {
			i++
		}
		suffix := template[sufStart:i]

		effectiveRule := ruleText
		if !hasInlineRule {
			if r, ok := opts.Rules[name]; ok {
				effectiveRule = r
			} else {
				switch quant {
				case QuantifierOneOrMore:
					effectiveRule = ".+"
				case QuantifierZeroOrMore:
					effectiveRule = ".*"
				default:
					effectiveRule = "[^/]+"
				}
			}
		}

		re, err := regexp.Compile(effectiveRule)
		if err != nil {
			return nil, fmt.Errorf("uri: invalid rule for %q: %w", name, err)
		}

		def, hasDefault := opts.Defaults[name]
		optional := quant == QuantifierOptional || quant == QuantifierZeroOrMore || hasDefault

		constraints = append(constraints, Constraint{
			Param:      name,
			Prefix:     prefix,
			Suffix:     suffix,
			Quantifier: quant,
			Optional:   optional,
			Default:    def,
			Alias:      opts.Aliases[name],
			Rule:       re,
			Host:       host,
		})
	}

	if literal.Len() > 0 {
		constraints = append(constraints, Constraint{Match: literal.String(), Host: host})
	}

	return constraints, nil
}

type emitOptions struct {
	caseInsensitive bool
	strict          bool
}

// emit builds the anchored regular expression matching constraints, using
// named capture groups so bind() can extract parameters by name rather than
// by fragile positional group counting.
func emit(constraints []Constraint, opts emitOptions) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	if opts.caseInsensitive {
		b.WriteString("(?i)")
	}

	seen := make(map[string]int)
	for _, c := range constraints {
		if !c.IsParam() {
			b.WriteString(regexp.QuoteMeta(c.Match))
			continue
		}

		groupName := c.Param
		if n := seen[c.Param]; n > 0 {
			groupName = fmt.Sprintf("%s_%d", c.Param, n)
		}
		seen[c.Param]++

		fragment := regexp.QuoteMeta(c.Prefix) +
			"(?P<" + groupName + ">" + c.Rule.String() + ")" +
			regexp.QuoteMeta(c.Suffix)

		if c.Quantifier == QuantifierOptional || c.Quantifier == QuantifierZeroOrMore {
			b.WriteString("(?:")
			b.WriteString(fragment)
			b.WriteString(")?")
		} else {
			b.WriteString(fragment)
		}
	}

	if !opts.strict {
		b.WriteString("/?")
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("uri: invalid generated regex %q: %w", b.String(), err)
	}
	return re, nil
}
