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

package async

import "eventual.dev/async/result"

// AndThen chains fn onto a successful upstream result: once f resolves Ok(v),
// fn(v) runs and its Async is awaited, with that result piped into the
// returned Future. A Failed upstream is forwarded unchanged; fn never runs.
// An Aborted upstream aborts the returned Future without running fn.
//
// The adapter never touches upstream until the returned Future's first
// consumer shows interest: if that Future is cancelled before anyone
// subscribes, f is itself cancelled and fn never runs, the same
// interest-gating Lazy uses.
func AndThen[T, S, E any](f Future[T, E], fn func(T) Async[S, E]) Future[S, E] {
	complete, future := Pair[S, E]()

	complete.c.registerInterest(func(subscribed bool) {
		if !subscribed {
			f.Cancel()

			return
		}

		f.Receive(func(r result.Result[T, E]) {
			chainResult(complete, r, fn)
		})
	})

	return future
}

func chainResult[T, S, E any](complete Complete[S, E], r result.Result[T, E], fn func(T) Async[S, E]) {
	if r.IsOK() {
		v, _ := r.V()
		fn(v).Receive(func(r2 result.Result[S, E]) {
			complete.c.setValue(r2)
		})

		return
	}

	ae, _ := r.AsyncErr()
	if ae.IsAborted() {
		complete.Abort()

		return
	}

	e, _ := ae.Take()
	complete.Fail(e)
}

// And is AndThen with a constant continuation, ignoring the upstream value.
func And[T, S, E any](f Future[T, E], next Future[S, E]) Future[S, E] {
	return AndThen[T, S, E](f, func(T) Async[S, E] { return asAsync[S, E](next) })
}

// OrElse intercepts a Failed upstream: fn(e) runs and its Async is awaited,
// piping that result into the returned Future. An Ok or Aborted upstream is
// forwarded unchanged; fn never runs on those paths.
func OrElse[T, E any](f Future[T, E], fn func(E) Async[T, E]) Future[T, E] {
	complete, future := Pair[T, E]()

	complete.c.registerInterest(func(subscribed bool) {
		if !subscribed {
			f.Cancel()

			return
		}

		f.Receive(func(r result.Result[T, E]) {
			if r.IsOK() {
				complete.c.setValue(r)

				return
			}

			ae, _ := r.AsyncErr()
			if ae.IsAborted() {
				complete.Abort()

				return
			}

			e, _ := ae.Take()
			fn(e).Receive(func(r2 result.Result[T, E]) {
				complete.c.setValue(r2)
			})
		})
	})

	return future
}

// Or is OrElse with a constant alternative, ignoring the upstream error.
func Or[T, E any](f Future[T, E], alt Future[T, E]) Future[T, E] {
	return OrElse[T, E](f, func(E) Async[T, E] { return asAsync[T, E](alt) })
}

// Map transforms a successful upstream value synchronously; Failed/Aborted
// pass through unchanged.
func Map[T, S, E any](f Future[T, E], fn func(T) S) Future[S, E] {
	return AndThen[T, S, E](f, func(v T) Async[S, E] {
		return Instant[S, E](result.Ok[S, E](fn(v)))
	})
}

// asAsync adapts a Future to the Async interface it already satisfies; it
// exists only to make the constant-continuation combinators (And, Or) read
// as plainly as their *_then counterparts.
func asAsync[T, E any](f Future[T, E]) Async[T, E] { return f }
