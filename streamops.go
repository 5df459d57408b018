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

// onStreamErr forwards a Failed or Aborted head result to a terminal
// Sender action, the shared tail of every stream combinator below.
func onStreamErr[T, S, E any](r result.Result[T, E], sender Sender[S, E]) {
	ae, _ := r.AsyncErr()
	if ae.IsAborted() {
		sender.Abort()

		return
	}

	e, _ := ae.Take()
	sender.Fail(e)
}

// StreamMap transforms every element of in synchronously. Ordering and
// backpressure are preserved: the output's N-th BusySender only resolves
// once the consumer has taken the N-th mapped element, and only then is the
// (N+1)-th upstream element pulled.
func StreamMap[T, S, E any](in Stream[T, E], fn func(T) S) Stream[S, E] {
	sender, out := StreamPair[S, E]()
	pumpMap(in, sender, fn)

	return out
}

func pumpMap[T, S, E any](in Stream[T, E], sender Sender[S, E], fn func(T) S) {
	in.Receive(func(r result.Result[StreamItem[T, E], E]) {
		if !r.IsOK() {
			onStreamErr[StreamItem[T, E], S, E](r, sender)

			return
		}

		item, _ := r.V()
		if item.End {
			sender.Done()

			return
		}

		next, busy := sender.Send(fn(item.Value))
		busy.Receive(func(r2 result.Result[struct{}, struct{}]) {
			if r2.IsErr() {
				item.Tail.Cancel()

				return
			}

			pumpMap(item.Tail, next, fn)
		})
	})
}

// StreamFilter keeps only elements satisfying pred, preserving order:
// the k-th delivered upstream element that passes pred is the k-th
// downstream element.
func StreamFilter[T, E any](in Stream[T, E], pred func(T) bool) Stream[T, E] {
	sender, out := StreamPair[T, E]()
	pumpFilter(in, sender, pred)

	return out
}

func pumpFilter[T, E any](in Stream[T, E], sender Sender[T, E], pred func(T) bool) {
	in.Receive(func(r result.Result[StreamItem[T, E], E]) {
		if !r.IsOK() {
			onStreamErr[StreamItem[T, E], T, E](r, sender)

			return
		}

		item, _ := r.V()
		if item.End {
			sender.Done()

			return
		}

		if !pred(item.Value) {
			pumpFilter(item.Tail, sender, pred)

			return
		}

		next, busy := sender.Send(item.Value)
		busy.Receive(func(r2 result.Result[struct{}, struct{}]) {
			if r2.IsErr() {
				item.Tail.Cancel()

				return
			}

			pumpFilter(item.Tail, next, pred)
		})
	})
}

// StreamEach invokes fn for every element of in, in order, returning a
// Future that resolves once the stream ends or fails.
func StreamEach[T, E any](in Stream[T, E], fn func(T)) Future[struct{}, E] {
	complete, future := Pair[struct{}, E]()
	pumpEach(in, complete, fn)

	return future
}

func pumpEach[T, E any](in Stream[T, E], complete Complete[struct{}, E], fn func(T)) {
	in.Receive(func(r result.Result[StreamItem[T, E], E]) {
		if !r.IsOK() {
			ae, _ := r.AsyncErr()
			if ae.IsAborted() {
				complete.Abort()

				return
			}

			e, _ := ae.Take()
			complete.Fail(e)

			return
		}

		item, _ := r.V()
		if item.End {
			complete.Complete(struct{}{})

			return
		}

		fn(item.Value)
		pumpEach(item.Tail, complete, fn)
	})
}

// StreamTake yields at most n elements, then ends, cancelling whatever
// remains of the upstream.
func StreamTake[T, E any](in Stream[T, E], n int) Stream[T, E] {
	sender, out := StreamPair[T, E]()

	if n <= 0 {
		sender.Done()
		in.Cancel()

		return out
	}

	pumpTake(in, sender, n)

	return out
}

func pumpTake[T, E any](in Stream[T, E], sender Sender[T, E], remaining int) {
	in.Receive(func(r result.Result[StreamItem[T, E], E]) {
		if !r.IsOK() {
			onStreamErr[StreamItem[T, E], T, E](r, sender)

			return
		}

		item, _ := r.V()
		if item.End {
			sender.Done()

			return
		}

		next, busy := sender.Send(item.Value)

		left := remaining - 1
		if left == 0 {
			next.Done()
			item.Tail.Cancel()

			return
		}

		busy.Receive(func(r2 result.Result[struct{}, struct{}]) {
			if r2.IsErr() {
				item.Tail.Cancel()

				return
			}

			pumpTake(item.Tail, next, left)
		})
	})
}

// StreamTakeWhile yields elements while pred holds, then ends as soon as it
// first fails, cancelling the remaining upstream.
func StreamTakeWhile[T, E any](in Stream[T, E], pred func(T) bool) Stream[T, E] {
	sender, out := StreamPair[T, E]()
	pumpTakeWhile(in, sender, pred)

	return out
}

func pumpTakeWhile[T, E any](in Stream[T, E], sender Sender[T, E], pred func(T) bool) {
	in.Receive(func(r result.Result[StreamItem[T, E], E]) {
		if !r.IsOK() {
			onStreamErr[StreamItem[T, E], T, E](r, sender)

			return
		}

		item, _ := r.V()
		if item.End {
			sender.Done()

			return
		}

		if !pred(item.Value) {
			sender.Done()
			item.Tail.Cancel()

			return
		}

		next, busy := sender.Send(item.Value)
		busy.Receive(func(r2 result.Result[struct{}, struct{}]) {
			if r2.IsErr() {
				item.Tail.Cancel()

				return
			}

			pumpTakeWhile(item.Tail, next, pred)
		})
	})
}

// StreamReduce folds in's elements left to right into a single Future.
func StreamReduce[T, S, E any](in Stream[T, E], init S, fn func(S, T) S) Future[S, E] {
	complete, future := Pair[S, E]()
	pumpReduce(in, complete, init, fn)

	return future
}

func pumpReduce[T, S, E any](in Stream[T, E], complete Complete[S, E], acc S, fn func(S, T) S) {
	in.Receive(func(r result.Result[StreamItem[T, E], E]) {
		if !r.IsOK() {
			ae, _ := r.AsyncErr()
			if ae.IsAborted() {
				complete.Abort()

				return
			}

			e, _ := ae.Take()
			complete.Fail(e)

			return
		}

		item, _ := r.V()
		if item.End {
			complete.Complete(acc)

			return
		}

		pumpReduce(item.Tail, complete, fn(acc, item.Value), fn)
	})
}

// StreamCollect gathers every element of in into a slice, preserving order.
func StreamCollect[T, E any](in Stream[T, E]) Future[[]T, E] {
	return StreamReduce[T, []T, E](in, nil, func(acc []T, v T) []T {
		return append(acc, v)
	})
}

// Sequence produces a Stream that yields each input Future's success value
// in submission order, not completion order: an input that resolves early
// is buffered until every earlier input has been emitted. The first Failed
// input terminates the stream with that error and cancels every
// not-yet-completed later input; an Aborted input does the same via Abort.
func Sequence[T, E any](futures []Future[T, E]) Stream[T, E] {
	sender, out := StreamPair[T, E]()

	if len(futures) == 0 {
		sender.Done()

		return out
	}

	seq := &sequencer[T, E]{
		futures:   futures,
		results:   make([]*result.Result[T, E], len(futures)),
		sender:    sender,
		cancelled: make([]bool, len(futures)),
	}

	for i, f := range futures {
		i := i

		if seq.shouldSkip(i) {
			// An earlier input resolved synchronously during this same loop
			// and already cancelled this one before we ever subscribed;
			// subscribing now would panic on an already-consumed cell.
			continue
		}

		f.Receive(func(r result.Result[T, E]) {
			seq.arrive(i, r)
		})
	}

	return out
}

type sequencer[T, E any] struct {
	futures []Future[T, E]

	mu        sync.Mutex
	results   []*result.Result[T, E]
	next      int
	sender    Sender[T, E]
	closed    bool
	cancelled []bool
}

func (s *sequencer[T, E]) shouldSkip(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelled[i]
}

func (s *sequencer[T, E]) arrive(i int, r result.Result[T, E]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.results[i] = &r
	s.drain()
}

// drain must be called with s.mu held. It emits every contiguous,
// already-arrived result starting at s.next, stopping at the first gap or
// the first terminal (Failed/Aborted) result.
func (s *sequencer[T, E]) drain() {
	for s.next < len(s.results) {
		r := s.results[s.next]
		if r == nil {
			return
		}

		if !r.IsOK() {
			s.closed = true

			ae, _ := r.AsyncErr()
			if ae.IsAborted() {
				s.sender.Abort()
			} else {
				e, _ := ae.Take()
				s.sender.Fail(e)
			}

			for k := s.next + 1; k < len(s.futures); k++ {
				if !s.cancelled[k] {
					s.cancelled[k] = true
					s.futures[k].Cancel()
				}
			}

			return
		}

		v, _ := r.V()
		next, _ := s.sender.Send(v)
		s.sender = next
		s.next++
	}

	s.closed = true
	s.sender.Done()
}
