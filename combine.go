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

import (
	"sync"

	"github.com/samber/lo"

	"eventual.dev/async/result"
)

// canceller is the subset of Future that join/select need to abandon a
// still-pending input, independent of that input's value type.
type canceller interface {
	Cancel()
}

// joiner is the shared bookkeeping behind Join2/Join3/JoinAll: a
// remaining-count and a finish-once guard around the output cell, plus a
// per-position cancelled flag. build is called exactly once, with the lock
// released, once every input has produced Ok.
type joiner[T, E any] struct {
	complete  Complete[T, E]
	items     []canceller
	mu        sync.Mutex
	remaining int
	done      bool
	cancelled []bool
	build     func() T
}

func newJoiner[T, E any](complete Complete[T, E], items []canceller, build func() T) *joiner[T, E] {
	return &joiner[T, E]{
		complete:  complete,
		items:     items,
		remaining: len(items),
		cancelled: make([]bool, len(items)),
		build:     build,
	}
}

// shouldSkip reports whether position i was already cancelled by a sibling
// that resolved during this same registration pass, before i itself was
// ever subscribed to. Callers must skip registering a consumer on it: doing
// so on an already-cancelled cell would panic.
func (j *joiner[T, E]) shouldSkip(i int) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.cancelled[i]
}

// cancelOthers marks every position but i as cancelled, skipping any
// already marked, and cancels the newly-marked ones. Call with the lock
// released.
func (j *joiner[T, E]) cancelOthers(i int) {
	j.mu.Lock()
	toCancel := make([]canceller, 0, len(j.items)-1)

	for k, it := range j.items {
		if k != i && !j.cancelled[k] {
			j.cancelled[k] = true
			toCancel = append(toCancel, it)
		}
	}
	j.mu.Unlock()

	for _, c := range toCancel {
		c.Cancel()
	}
}

// joinArrive records position i's outcome. On Ok it runs store (capturing
// the value into the output's positional slot) and, if this was the last
// outstanding input, completes the output. On Failed it fails the output
// with that error and cancels siblings. On Aborted it aborts the output.
// Only the first terminal outcome among the inputs has any effect; later
// arrivals are no-ops, matching "fails/aborts the output" firing once.
func joinArrive[V, T, E any](j *joiner[T, E], i int, r result.Result[V, E], store func(V)) {
	if r.IsOK() {
		v, _ := r.V()

		j.mu.Lock()
		if j.done {
			j.mu.Unlock()

			return
		}
		store(v)
		j.remaining--
		finished := j.remaining == 0
		if finished {
			j.done = true
		}
		build := j.build
		j.mu.Unlock()

		if finished {
			j.complete.Complete(build())
		}

		return
	}

	j.mu.Lock()
	if j.done {
		j.mu.Unlock()

		return
	}
	j.done = true
	j.mu.Unlock()

	j.cancelOthers(i)

	ae, _ := r.AsyncErr()
	if ae.IsAborted() {
		j.complete.Abort()

		return
	}

	e, _ := ae.Take()
	j.complete.Fail(e)
}

// Join2 produces a Future whose value is the pair of both successes. On any
// Failed input the output fails with that error and the other input is
// cancelled; on any Aborted input the output aborts. Completion fires only
// after both inputs produce Ok; the result preserves positional order.
func Join2[A, B, E any](fa Future[A, E], fb Future[B, E]) Future[lo.Tuple2[A, B], E] {
	complete, future := Pair[lo.Tuple2[A, B], E]()

	var a A
	var b B
	j := newJoiner[lo.Tuple2[A, B], E](complete, []canceller{fa, fb}, func() lo.Tuple2[A, B] {
		return lo.Tuple2[A, B]{A: a, B: b}
	})

	if !j.shouldSkip(0) {
		fa.Receive(func(r result.Result[A, E]) {
			joinArrive(j, 0, r, func(v A) { a = v })
		})
	}

	if !j.shouldSkip(1) {
		fb.Receive(func(r result.Result[B, E]) {
			joinArrive(j, 1, r, func(v B) { b = v })
		})
	}

	return future
}

// Join3 is Join2 for three inputs.
func Join3[A, B, C, E any](fa Future[A, E], fb Future[B, E], fc Future[C, E]) Future[lo.Tuple3[A, B, C], E] {
	complete, future := Pair[lo.Tuple3[A, B, C], E]()

	var a A
	var b B
	var c C
	j := newJoiner[lo.Tuple3[A, B, C], E](complete, []canceller{fa, fb, fc}, func() lo.Tuple3[A, B, C] {
		return lo.Tuple3[A, B, C]{A: a, B: b, C: c}
	})

	if !j.shouldSkip(0) {
		fa.Receive(func(r result.Result[A, E]) {
			joinArrive(j, 0, r, func(v A) { a = v })
		})
	}

	if !j.shouldSkip(1) {
		fb.Receive(func(r result.Result[B, E]) {
			joinArrive(j, 1, r, func(v B) { b = v })
		})
	}

	if !j.shouldSkip(2) {
		fc.Receive(func(r result.Result[C, E]) {
			joinArrive(j, 2, r, func(v C) { c = v })
		})
	}

	return future
}

// JoinAll is Join2/Join3 generalized over a homogeneous slice: the output is
// the slice of every input's value, in positional order. On any Failed
// input the output fails with that error and the remaining inputs are
// cancelled; on any Aborted input the output aborts. An empty slice
// resolves immediately to an empty slice.
func JoinAll[T, E any](futures []Future[T, E]) Future[[]T, E] {
	complete, future := Pair[[]T, E]()

	if len(futures) == 0 {
		complete.c.setValue(result.Ok[[]T, E](nil))

		return future
	}

	values := make([]T, len(futures))

	items := make([]canceller, len(futures))
	for i, f := range futures {
		items[i] = f
	}

	j := newJoiner[[]T, E](complete, items, func() []T { return values })

	for i, f := range futures {
		i := i

		if j.shouldSkip(i) {
			continue
		}

		f.Receive(func(r result.Result[T, E]) {
			joinArrive(j, i, r, func(v T) { values[i] = v })
		})
	}

	return future
}
