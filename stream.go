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

	"eventual.dev/async/result"
)

// StreamItem is the value carried by a Stream's head cell: either the next
// element together with the rest of the stream, or the end-of-stream
// marker. It is the Go rendering of the source specification's
// Option<(T, next_stream)>.
type StreamItem[T, E any] struct {
	Value T
	Tail  Stream[T, E]
	End   bool
}

// Stream is a consumer-side handle on the head of a linked chain of cells.
// Consuming the head yields a StreamItem: either the next value plus the
// tail stream, or the end-of-stream marker, or a failure.
type Stream[T, E any] struct {
	head Future[StreamItem[T, E], E]
}

// Sender is the producer-side handle matching a Stream. Send allocates the
// next cell and returns the Sender for it, paired with a BusySender that
// signals once the downstream consumer is ready for that next element.
type Sender[T, E any] struct {
	complete Complete[StreamItem[T, E], E]
}

// BusySender is the transient Async returned by Send: its readiness means
// the downstream consumer has moved on to the element just sent and is
// ready for the next one. It is itself Async[struct{}, struct{}], the same
// contract Complete satisfies, since it is backed by the same interest
// slot on the next cell in the chain.
type BusySender[T, E any] struct {
	complete Complete[StreamItem[T, E], E]
}

// IsReady, IsErr, Receive and Await forward to the Sender's own interest
// slot, letting a producer check whether the consumer is still around
// before attempting the very first Send — the same check BusySender offers
// for every Send after that.
func (s Sender[T, E]) IsReady() bool { return s.complete.IsReady() }
func (s Sender[T, E]) IsErr() bool   { return s.complete.IsErr() }

func (s Sender[T, E]) Receive(cb func(result.Result[struct{}, struct{}])) {
	s.complete.Receive(cb)
}

func (s Sender[T, E]) Await(ctx context.Context) (struct{}, error) {
	return s.complete.Await(ctx)
}

// StreamPair allocates a fresh head cell and returns its two handles.
func StreamPair[T, E any](opts ...Option) (Sender[T, E], Stream[T, E]) {
	complete, future := Pair[StreamItem[T, E], E](opts...)

	return Sender[T, E]{complete: complete}, Stream[T, E]{head: future}
}

// Send offers v as the next element. It returns the Sender for the
// following position and a BusySender that becomes ready once the
// consumer has taken v and asked for what comes next.
func (s Sender[T, E]) Send(v T) (Sender[T, E], BusySender[T, E]) {
	next, tail := Pair[StreamItem[T, E], E](WithMetrics(s.complete.c.col))
	s.complete.Complete(StreamItem[T, E]{Value: v, Tail: Stream[T, E]{head: tail}})

	return Sender[T, E]{complete: next}, BusySender[T, E]{complete: next}
}

// Done terminates the stream successfully: the consumer observes End.
func (s Sender[T, E]) Done() {
	s.complete.Complete(StreamItem[T, E]{End: true})
}

// Fail terminates the stream with a Failed error.
func (s Sender[T, E]) Fail(e E) {
	s.complete.Fail(e)
}

// Abort marks the stream as abandoned by its producer.
func (s Sender[T, E]) Abort() {
	s.complete.Abort()
}

func (b BusySender[T, E]) IsReady() bool { return b.complete.IsReady() }
func (b BusySender[T, E]) IsErr() bool   { return b.complete.IsErr() }

func (b BusySender[T, E]) Poll() (result.Result[struct{}, struct{}], bool) {
	return b.complete.Poll()
}

func (b BusySender[T, E]) Ready(cb func(result.Result[struct{}, struct{}])) Receipt[struct{}, struct{}] {
	return b.complete.Ready(cb)
}

func (b BusySender[T, E]) Receive(cb func(result.Result[struct{}, struct{}])) {
	b.complete.Receive(cb)
}

func (b BusySender[T, E]) Await(ctx context.Context) (struct{}, error) {
	return b.complete.Await(ctx)
}

func (b BusySender[T, E]) Fire() { b.complete.Fire() }

func (s Stream[T, E]) IsReady() bool { return s.head.IsReady() }
func (s Stream[T, E]) IsErr() bool   { return s.head.IsErr() }

func (s Stream[T, E]) Poll() (result.Result[StreamItem[T, E], E], bool) {
	return s.head.Poll()
}

func (s Stream[T, E]) Ready(cb func(result.Result[StreamItem[T, E], E])) Receipt[StreamItem[T, E], E] {
	return s.head.Ready(cb)
}

func (s Stream[T, E]) Receive(cb func(result.Result[StreamItem[T, E], E])) {
	s.head.Receive(cb)
}

func (s Stream[T, E]) Await(ctx context.Context) (StreamItem[T, E], error) {
	return s.head.Await(ctx)
}

func (s Stream[T, E]) Fire() { s.head.Fire() }

// Cancel marks the Stream as abandoned by its consumer, which the producer
// observes as Aborted interest on its current Sender.
func (s Stream[T, E]) Cancel() { s.head.Cancel() }

// StreamIter is the blocking iterator over a Stream's elements.
type StreamIter[T, E any] struct {
	current Stream[T, E]
	ctx     context.Context //nolint:containedctx
}

// Iter returns a StreamIter that pulls elements from s, blocking on ctx.
func (s Stream[T, E]) Iter(ctx context.Context) *StreamIter[T, E] {
	return &StreamIter[T, E]{current: s, ctx: ctx}
}

// Next blocks for the next element. ok is false only at end-of-stream; a
// failure (including ctx expiry) is reported via err with ok true, mirroring
// the source's Some(Err(e))/None distinction.
func (it *StreamIter[T, E]) Next() (v T, err error, ok bool) {
	item, cerr := it.current.Await(it.ctx)
	if cerr != nil {
		return v, cerr, true
	}

	if item.End {
		return v, nil, false
	}

	it.current = item.Tail

	return item.Value, nil, true
}
