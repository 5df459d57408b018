// Copyright 2023-2024 Oliver Eikemeier. All Rights Reserved.
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
//
// SPDX-License-Identifier: Apache-2.0

// Package async provides the core primitives for representing pending
// single values (Future) and pending sequences (Stream), together with the
// combinator algebra that composes them while preserving cancellation,
// backpressure and failure propagation.
package async

import (
	"context"
	"time"

	"eventual.dev/async/result"
)

// Async is the capability shared by every carrier of an eventual value:
// Future, Stream (via its head cell), and any immediately-available value.
type Async[T, E any] interface {
	// IsReady reports whether the computation completed, successfully or not.
	IsReady() bool

	// IsErr reports whether the computation completed with an AsyncError.
	IsErr() bool

	// Poll extracts the result if the computation has completed, without
	// blocking. The returned bool is false if no result is available yet.
	Poll() (result.Result[T, E], bool)

	// Ready registers cb to run once the computation completes, and returns
	// a Receipt that can attempt to retract the registration.
	Ready(cb func(result.Result[T, E])) Receipt[T, E]

	// Receive is Ready without the ability to retract the registration.
	Receive(cb func(result.Result[T, E]))

	// Await blocks the calling goroutine until the computation completes or
	// ctx is done.
	Await(ctx context.Context) (T, error)

	// Fire triggers the computation and discards its result.
	Fire()
}

// Executor accepts a one-shot function and runs it to completion on some
// goroutine, eventually. It is the only capability the core requires from
// a caller-supplied worker-thread facility; see package executor for
// ready-made implementations.
type Executor interface {
	Submit(fn func())
}

// DeadlineSource invokes cb no earlier than d has elapsed, returning a
// cancel function that prevents cb from firing if it has not already. It is
// the only capability the core requires from a caller-supplied timer
// facility; see package timer for a ready-made implementation.
type DeadlineSource interface {
	After(d time.Duration, cb func()) (cancel func())
}

// instant wraps an already-resolved result.Result as an Async whose
// readiness is permanent — the Go analogue of the source specification's
// "an immediately-available value is itself an Async".
type instant[T, E any] struct {
	v result.Result[T, E]
}

// Instant lifts an already-resolved Result into an Async with permanent
// readiness, matching the specification's treatment of pre-resolved values.
func Instant[T, E any](v result.Result[T, E]) Async[T, E] {
	return instant[T, E]{v: v}
}

func (i instant[T, E]) IsReady() bool { return true }
func (i instant[T, E]) IsErr() bool   { return i.v.IsErr() }

func (i instant[T, E]) Poll() (result.Result[T, E], bool) {
	return i.v, true
}

func (i instant[T, E]) Ready(cb func(result.Result[T, E])) Receipt[T, E] {
	cb(i.v)

	return Receipt[T, E]{}
}

func (i instant[T, E]) Receive(cb func(result.Result[T, E])) {
	cb(i.v)
}

func (i instant[T, E]) Await(context.Context) (T, error) {
	return i.v.V()
}

func (i instant[T, E]) Fire() {}

// Unit is the Go analogue of the specification's unit-type Async, useful for
// side-effecting computations whose only observable outcome is completion.
func Unit() Async[struct{}, struct{}] {
	return Instant[struct{}, struct{}](result.Ok[struct{}, struct{}](struct{}{}))
}
