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

// Package validate struct-tag validates a decoded route definition tree
// before it reaches mapper.ToRoutes, catching malformed config (unknown
// method, missing path, stray whitespace in a route name) earlier than a
// mapper construction error would.
package validate

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wayfarer-dev/wayfarer/contract"
	"github.com/wayfarer-dev/wayfarer/mapper/decode"
)

var (
	instance *validator.Validate
	once     sync.Once
)

func instanceOf() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// Definitions validates every definition in the tree, recursing into
// children via the "dive" tag on decode.Definition.Children, and returns
// a single RouterError aggregating every field violation found.
func Definitions(defs []decode.Definition) error {
	v := instanceOf()
	var problems []string
	for i, def := range defs {
		if err := v.Struct(def); err != nil {
			problems = append(problems, describe(fmt.Sprintf("[%d]", i), err))
		}
	}
	if len(problems) > 0 {
		return contract.NewRouterError("validate", fmt.Sprintf("invalid route definitions: %v", problems), nil)
	}
	return nil
}

func describe(path string, err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return path + ": " + err.Error()
	}
	var out string
	for i, fe := range verrs {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s.%s failed %q", path, fe.Namespace(), fe.Tag())
	}
	return out
}
