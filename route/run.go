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

import "github.com/wayfarer-dev/wayfarer/contract"

// SelectDispatcher implements the selection rules of spec.md §4.3: redirect
// wins if declared, then component, then class, then callable.
func (r *Route) SelectDispatcher() (DispatcherKind, error) {
	switch {
	case r.opts.Redirect != nil:
		return KindRedirect, nil
	case r.opts.Handler != nil && r.opts.Handler.IsComponent:
		return KindComponent, nil
	case r.opts.Handler != nil && r.opts.Handler.IsClass:
		return KindClass, nil
	case r.opts.Handler != nil && (r.opts.Handler.Callable != nil || r.opts.Handler.IsFactory):
		return KindCallable, nil
	default:
		return "", contract.NewRouterError("run", "route "+r.opts.Path+" has no recognizable handler shape", nil)
	}
}

// Run selects the dispatcher for this route's handler shape and invokes
// it. See spec.md §4.4 "run(event)".
func (r *Route) Run(event contract.Event) (any, error) {
	kind, err := r.SelectDispatcher()
	if err != nil {
		return nil, err
	}
	d, ok := r.dispatchers[kind]
	if !ok {
		return nil, contract.NewRouterError("run", "no dispatcher registered for kind "+string(kind), nil)
	}
	return d.Dispatch(event, r)
}

// DispatcherName returns the selected dispatcher's Name(route), or an
// error if the handler shape cannot be resolved. Used by toJSON.
func (r *Route) DispatcherName() (string, error) {
	kind, err := r.SelectDispatcher()
	if err != nil {
		return "", err
	}
	d, ok := r.dispatchers[kind]
	if !ok {
		return "", contract.NewRouterError("toJSON", "no dispatcher registered for kind "+string(kind), nil)
	}
	return d.Name(r), nil
}
