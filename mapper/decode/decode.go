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

// Package decode turns a declarative, data-only route definition tree
// (YAML or a generic map[string]any, the shape a config file or a CLI
// loader hands the router) into a DTO ready for validation and, once a
// handler is attached by name, conversion into a mapper.Definition. The
// handler/redirect/bindings fields of mapper.Definition are code, not
// data, so they are intentionally absent here (spec.md §6 treats
// declarative decorators as "only the metadata shape they must emit").
package decode

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/mapper"
	"github.com/wayfarer-dev/wayfarer/route"
)

// HandlerEntry is what a HandlerResolver returns for a Definition.HandlerRef:
// exactly one of Handler or Redirect, the two code-shaped fields
// mapper.Definition carries that a data source cannot express directly.
type HandlerEntry struct {
	Handler  *route.HandlerSpec
	Redirect any
}

// Definition is the data-only counterpart of mapper.Definition: every
// field a config source can express without embedding code.
type Definition struct {
	Path    string   `yaml:"path" mapstructure:"path" validate:"required"`
	Method  string   `yaml:"method,omitempty" mapstructure:"method" validate:"omitempty,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	Methods []string `yaml:"methods,omitempty" mapstructure:"methods" validate:"omitempty,dive,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`

	HandlerRef string `yaml:"handler,omitempty" mapstructure:"handler"`

	Name        string `yaml:"name,omitempty" mapstructure:"name" validate:"omitempty,excludesall= "`
	Description string `yaml:"description,omitempty" mapstructure:"description"`
	Tags        []string `yaml:"tags,omitempty" mapstructure:"tags"`

	Domain   string `yaml:"domain,omitempty" mapstructure:"domain"`
	Protocol string `yaml:"protocol,omitempty" mapstructure:"protocol" validate:"omitempty,oneof=http https"`
	Strict   *bool  `yaml:"strict,omitempty" mapstructure:"strict"`
	Fallback *bool  `yaml:"fallback,omitempty" mapstructure:"fallback"`

	Rules    map[string]string `yaml:"rules,omitempty" mapstructure:"rules"`
	Defaults map[string]any    `yaml:"defaults,omitempty" mapstructure:"defaults"`

	Middleware        []string `yaml:"middleware,omitempty" mapstructure:"middleware"`
	ExcludeMiddleware []string `yaml:"excludeMiddleware,omitempty" mapstructure:"excludeMiddleware"`

	CustomOptions map[string]any `yaml:"customOptions,omitempty" mapstructure:"customOptions"`

	Children []Definition `yaml:"children,omitempty" mapstructure:"children" validate:"omitempty,dive"`
}

// YAML decodes a tree of Definitions from YAML source, using goccy/go-yaml
// (the teacher's own indirect dependency, promoted to direct here).
func YAML(data []byte) ([]Definition, error) {
	var defs []Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, contract.NewRouterError("decode", "invalid YAML route definitions", err)
	}
	return defs, nil
}

// Map decodes a tree of Definitions from a generic map/slice value (e.g.
// already-parsed JSON), using mapstructure for the lenient, tag-aware
// conversion a hand-written decoder would otherwise duplicate.
func Map(raw any) ([]Definition, error) {
	var defs []Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &defs,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, contract.NewRouterError("decode", "failed to build decoder", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, contract.NewRouterError("decode", "invalid route definition map", err)
	}
	return defs, nil
}

// HandlerResolver looks up the *route.HandlerSpec (or a redirect target)
// registered under a Definition.HandlerRef name. Config-driven routing
// always resolves handlers by name through a registry the embedding
// application owns; the router core never executes arbitrary strings.
type HandlerResolver interface {
	ResolveHandlerRef(ref string) (*HandlerEntry, error)
}

// ToDefinitions converts decoded DTOs into mapper.Definition values,
// resolving each HandlerRef through resolver. A Definition with children
// and no handler ref is a group node, matching mapper's own "group only"
// rule.
func ToDefinitions(dtos []Definition, resolver HandlerResolver) ([]mapper.Definition, error) {
	out := make([]mapper.Definition, 0, len(dtos))
	for _, dto := range dtos {
		def, err := toDefinition(dto, resolver)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

func toDefinition(dto Definition, resolver HandlerResolver) (mapper.Definition, error) {
	def := mapper.Definition{
		Path:              dto.Path,
		Method:            dto.Method,
		Methods:           dto.Methods,
		Name:              dto.Name,
		Description:       dto.Description,
		Tags:              dto.Tags,
		Domain:            dto.Domain,
		Protocol:          dto.Protocol,
		Strict:            dto.Strict,
		Fallback:          dto.Fallback,
		Rules:             dto.Rules,
		Defaults:          dto.Defaults,
		Middleware:        dto.Middleware,
		ExcludeMiddleware: dto.ExcludeMiddleware,
		CustomOptions:     dto.CustomOptions,
	}

	if dto.HandlerRef != "" {
		if resolver == nil {
			return mapper.Definition{}, contract.NewRouterError("decode", fmt.Sprintf("definition %q references handler %q but no HandlerResolver was supplied", dto.Path, dto.HandlerRef), nil)
		}
		entry, err := resolver.ResolveHandlerRef(dto.HandlerRef)
		if err != nil {
			return mapper.Definition{}, contract.NewRouterError("decode", "failed to resolve handler "+dto.HandlerRef, err)
		}
		def.Handler = entry.Handler
		def.Redirect = entry.Redirect
	}

	for _, child := range dto.Children {
		childDef, err := toDefinition(child, resolver)
		if err != nil {
			return mapper.Definition{}, err
		}
		def.Children = append(def.Children, childDef)
	}

	return def, nil
}
