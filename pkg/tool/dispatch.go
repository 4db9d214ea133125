// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
)

// Result is the tagged outcome of one tool invocation. Exactly one of the
// two variants holds: a success carries Value, a failure carries Message.
type Result struct {
	ok      bool
	value   any
	message string
}

// Success creates a success result carrying the implementation's return value.
func Success(value any) Result {
	return Result{ok: true, value: value}
}

// Failure creates a failure result carrying a human-readable message.
func Failure(message string) Result {
	return Result{message: message}
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.ok }

// Value returns the success value. It is nil for failures.
func (r Result) Value() any { return r.value }

// Message returns the failure message. It is empty for successes.
func (r Result) Message() string { return r.message }

// Dispatch looks up name in the registry, normalizes args, and invokes the
// bound implementation inside a failure boundary. Dispatch never returns an
// error and never panics: every outcome is reported as a Result so callers
// can distinguish "no such tool" from "tool crashed" from "tool succeeded".
//
// Argument normalization: a []any is passed through positionally; any other
// value (including nil) is wrapped as a single-element sequence, so callers
// may pass one value or a pre-built argument list uniformly.
func Dispatch(ctx context.Context, reg *Registry, name string, args any) Result {
	t, ok := reg.Get(name)
	if !ok {
		return Failure(fmt.Sprintf("Tool '%s' not found in agent's registry.", name))
	}
	impl, ok := t.Implementation()
	if !ok {
		return Failure(fmt.Sprintf("Tool '%s' has no implementation.", name))
	}

	positional, ok := args.([]any)
	if !ok {
		positional = []any{args}
	}

	return invoke(ctx, name, impl, positional)
}

// invoke is the failure boundary: a panicking or erroring implementation is
// converted to a Failure and must never crash the dispatcher's caller.
func invoke(ctx context.Context, name string, impl Func, args []any) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Failure(fmt.Sprintf("Error executing tool '%s': %v", name, r))
		}
	}()

	value, err := impl(ctx, args)
	if err != nil {
		return Failure(fmt.Sprintf("Error executing tool '%s': %v", name, err))
	}
	// No validation of the implementation's return shape.
	return Success(value)
}
