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
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"eventual.dev/async/result"
)

// Memoizer fans a single-shot Future out to any number of independent
// readers. A bare Future panics on a second Ready/Receive/Await; Memoizer
// instead subscribes exactly once and replays the cached result to every
// caller of Wait, however many there are and whatever context each brings.
type Memoizer[T, E any] struct {
	future Future[T, E]
	group  singleflight.Group

	mu         sync.Mutex
	subscribed bool
	value      result.Result[T, E]
	done       chan struct{}
}

// Memoize wraps f for multi-reader replay, consuming it lazily: the
// underlying Future is not subscribed until the first call to Wait or
// TryWait.
func Memoize[T, E any](f Future[T, E]) *Memoizer[T, E] {
	return &Memoizer[T, E]{future: f, done: make(chan struct{})}
}

// ensureSubscribed registers the single permitted consumer callback exactly
// once. Concurrent first callers race into singleflight.Do, which collapses
// them into a single execution; the subscribed flag then makes every call
// after that a no-op, including ones that arrive after the Do call that
// performed the registration has already returned.
func (m *Memoizer[T, E]) ensureSubscribed() {
	_, _, _ = m.group.Do("subscribe", func() (any, error) {
		m.mu.Lock()
		if m.subscribed {
			m.mu.Unlock()

			return nil, nil
		}
		m.subscribed = true
		m.mu.Unlock()

		m.future.Receive(func(r result.Result[T, E]) {
			m.mu.Lock()
			m.value = r
			m.mu.Unlock()
			close(m.done)
		})

		return nil, nil
	})
}

// Wait blocks until the underlying Future resolves or ctx is done, returning
// the same value/error to every caller regardless of how many goroutines
// call Wait concurrently or in sequence.
func (m *Memoizer[T, E]) Wait(ctx context.Context) (T, error) {
	m.ensureSubscribed()

	select {
	case <-m.done:
		m.mu.Lock()
		v := m.value
		m.mu.Unlock()

		return v.V()

	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// TryWait returns the cached result without blocking. The second return
// value is false if the underlying Future has not resolved yet, in which
// case TryWait also arms the subscription so that a resolution reaching the
// cell while no one is waiting is not missed.
func (m *Memoizer[T, E]) TryWait() (result.Result[T, E], bool) {
	select {
	case <-m.done:
		m.mu.Lock()
		defer m.mu.Unlock()

		return m.value, true

	default:
		m.ensureSubscribed()

		var zero result.Result[T, E]

		return zero, false
	}
}
