// Copyright 2025 Nguyen Nhat Nguyen
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

package internal

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// RegisterActivityOptions customises how an activity function is registered.
type RegisterActivityOptions struct {
	// Name overrides the activity type name. Defaults to the function's full
	// package-qualified name.
	Name string
}

type registeredActivity struct {
	name string
	fn   reflect.Value
	typ  reflect.Type
}

type activityRegistry struct {
	mu      sync.RWMutex
	entries map[string]registeredActivity
}

func newActivityRegistry() *activityRegistry {
	return &activityRegistry{entries: make(map[string]registeredActivity)}
}

func (r *activityRegistry) register(fn any, opts RegisterActivityOptions) (string, error) {
	name := opts.Name
	if name == "" {
		var err error
		name, err = extractFullFunctionName(fn)
		if err != nil {
			return "", NewRegistrationError(fmt.Sprintf("%T", fn), fmt.Errorf("%w: %w", ErrInvalidFunction, err))
		}
	}
	if err := validateActivitySignature(reflect.TypeOf(fn)); err != nil {
		return "", NewRegistrationError(name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return "", NewRegistrationError(name, ErrDuplicateRegistration)
	}
	r.entries[name] = registeredActivity{name: name, fn: reflect.ValueOf(fn), typ: reflect.TypeOf(fn)}
	return name, nil
}

func (r *activityRegistry) get(name string) (registeredActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return registeredActivity{}, fmt.Errorf("%w: %s", ErrActivityNotRegistered, name)
	}
	return entry, nil
}

func (r *activityRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *activityRegistry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// validateActivitySignature accepts func(context.Context, ...) error and
// func(context.Context, ...) (T, error).
func validateActivitySignature(t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Func {
		return ErrInvalidFunction
	}
	if t.NumIn() == 0 || t.In(0) != contextType {
		return fmt.Errorf("activity function must accept context.Context as its first argument")
	}
	if t.IsVariadic() {
		return fmt.Errorf("activity function must not be variadic")
	}
	switch t.NumOut() {
	case 1:
		if t.Out(0) != errorType {
			return fmt.Errorf("single return value must be error, got %v", t.Out(0))
		}
	case 2:
		if t.Out(1) != errorType {
			return fmt.Errorf("second return value must be error, got %v", t.Out(1))
		}
	default:
		return fmt.Errorf("activity function must return error or (T, error), got %d results", t.NumOut())
	}
	return nil
}
