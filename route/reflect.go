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

package route

import (
	"fmt"
	"reflect"
)

// methodByName looks up a (key string, raw any) (any, error) shaped method
// on target by name, used to invoke the "@method" half of a string-bound
// binder (spec.md §4.4 step 3). Returns ok=false if target has no such
// method or its signature does not match.
func methodByName(target any, name string) (func(key string, raw any) (any, error), bool) {
	v := reflect.ValueOf(target)
	m := v.MethodByName(name)
	if !m.IsValid() {
		return nil, false
	}
	fn := func(key string, raw any) (any, error) {
		out := m.Call([]reflect.Value{reflect.ValueOf(key), reflect.ValueOf(raw)})
		var result any
		if len(out) > 0 {
			result = out[0].Interface()
		}
		if len(out) > 1 && !out[1].IsNil() {
			if err, ok := out[1].Interface().(error); ok {
				return result, err
			}
		}
		return result, nil
	}
	return fn, true
}

// CallAction invokes the named action method on a class instance with the
// event as its sole argument, used by the class dispatcher (spec.md
// §4.3). Returns an error if the method is missing or its signature is
// incompatible.
func CallAction(instance any, action string, arg any) (any, error) {
	v := reflect.ValueOf(instance)
	m := v.MethodByName(action)
	if !m.IsValid() {
		return nil, fmt.Errorf("route: %T has no method %q", instance, action)
	}
	t := m.Type()
	if t.NumIn() != 1 {
		return nil, fmt.Errorf("route: %T.%s must take exactly one argument", instance, action)
	}
	out := m.Call([]reflect.Value{reflect.ValueOf(arg)})
	var result any
	if len(out) > 0 {
		result = out[0].Interface()
	}
	if len(out) > 1 && !out[1].IsNil() {
		if err, ok := out[1].Interface().(error); ok {
			return result, err
		}
	}
	return result, nil
}
