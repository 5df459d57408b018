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

	"eventual.dev/async/result"
)

// Selection is the value produced by Select: the winning input's position
// and value, plus the other inputs, which have already been cancelled.
type Selection[T, E any] struct {
	Index     int
	Value     T
	Remaining []Future[T, E]
}

// Select produces a Future for the first input to become ready with Ok,
// cancelling the rest. On the first Failed input (with no prior Ok), Select
// fails with that error and cancels the rest. Aborted inputs are treated as
// removed from the race rather than winners; if every input aborts, the
// output aborts. An empty slice resolves immediately to Aborted.
func Select[T, E any](futures []Future[T, E]) Future[Selection[T, E], E] {
	complete, future := Pair[Selection[T, E], E]()

	if len(futures) == 0 {
		complete.c.setValue(result.Abortedf[Selection[T, E], E]())

		return future
	}

	var (
		mu        sync.Mutex
		remaining = len(futures)
		resolved  bool
		cancelled = make([]bool, len(futures))
	)

	// cancelOthers marks every index but i as cancelled and returns the
	// futures newly marked this call. A future already marked — whether by
	// an earlier winner or because this same call raced another index — is
	// skipped, since Cancel is a no-op on an already-consumed cell but the
	// registration loop below must never try to subscribe to one.
	cancelOthers := func(i int) []Future[T, E] {
		mu.Lock()
		newly := make([]Future[T, E], 0, len(futures)-1)
		for k, f := range futures {
			if k != i && !cancelled[k] {
				cancelled[k] = true
				newly = append(newly, f)
			}
		}
		mu.Unlock()

		return newly
	}

	othersOf := func(i int) []Future[T, E] {
		others := make([]Future[T, E], 0, len(futures)-1)
		for k, f := range futures {
			if k != i {
				others = append(others, f)
			}
		}

		return others
	}

	for i, f := range futures {
		i := i

		mu.Lock()
		skip := cancelled[i]
		mu.Unlock()

		if skip {
			// A sibling resolved synchronously during an earlier iteration
			// of this loop and already cancelled this index before we ever
			// subscribed to it; subscribing now would panic on a cell that
			// is already Consumed.
			continue
		}

		f.Receive(func(r result.Result[T, E]) {
			if r.IsOK() {
				mu.Lock()
				if resolved {
					mu.Unlock()

					return
				}
				resolved = true
				mu.Unlock()

				for _, o := range cancelOthers(i) {
					o.Cancel()
				}

				v, _ := r.V()
				complete.Complete(Selection[T, E]{Index: i, Value: v, Remaining: othersOf(i)})

				return
			}

			ae, _ := r.AsyncErr()
			if ae.IsAborted() {
				mu.Lock()
				remaining--
				allGone := remaining == 0 && !resolved
				if allGone {
					resolved = true
				}
				mu.Unlock()

				if allGone {
					complete.Abort()
				}

				return
			}

			mu.Lock()
			if resolved {
				mu.Unlock()

				return
			}
			resolved = true
			mu.Unlock()

			for _, o := range cancelOthers(i) {
				o.Cancel()
			}

			e, _ := ae.Take()
			complete.Fail(e)
		})
	}

	return future
}
