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
	"fmt"

	"eventual.dev/async/result"
)

// Future is a consumer-side handle on a single-shot cell: the read side of
// an asynchronous computation that will complete exactly once.
type Future[T, E any] struct {
	c *cell[T, E]
}

// Complete is the producer-side handle on the cell shared with a Future.
// It is itself an Async[struct{}, struct{}]: its readiness signals that the
// consumer has shown interest (called Ready/Receive/Await at least once on
// the paired Future), and its Value is a license to complete.
type Complete[T, E any] struct {
	c *cell[T, E]
}

// Pair allocates a fresh cell and returns its two handles.
func Pair[T, E any](opts ...Option) (Complete[T, E], Future[T, E]) {
	o := resolveOptions(opts)
	c := newCell[T, E](o.col)

	return Complete[T, E]{c: c}, Future[T, E]{c: c}
}

// Of returns a Future that is already successfully completed with v.
func Of[T, E any](v T, opts ...Option) Future[T, E] {
	o := resolveOptions(opts)
	c := newCell[T, E](o.col)
	c.setValue(result.Ok[T, E](v))

	return Future[T, E]{c: c}
}

// Errorf returns a Future that is already failed with e.
func Errorf[T, E any](e E, opts ...Option) Future[T, E] {
	o := resolveOptions(opts)
	c := newCell[T, E](o.col)
	c.setValue(result.Failedf[T, E](e))

	return Future[T, E]{c: c}
}

// Lazy returns a Future whose fn only runs once the first consumer shows
// interest (registers via Ready/Receive/Await), submitted to exec. If the
// Future is cancelled before any consumer ever subscribes, fn never runs.
// fn reports success via the trailing bool, the way a two-armed Rust Result
// is rendered without requiring E to implement error.
func Lazy[T, E any](exec Executor, fn func() (T, E, bool), opts ...Option) Future[T, E] {
	complete, future := Pair[T, E](opts...)

	complete.c.registerInterest(func(subscribed bool) {
		if !subscribed {
			return
		}

		exec.Submit(func() { runSpawned(complete, fn) })
	})

	return future
}

// Spawn submits fn to exec immediately, returning a Future for its result.
func Spawn[T, E any](exec Executor, fn func() (T, E, bool), opts ...Option) Future[T, E] {
	complete, future := Pair[T, E](opts...)

	exec.Submit(func() { runSpawned(complete, fn) })

	return future
}

// runSpawned runs fn and delivers its outcome to complete. A panicking fn
// would otherwise leave complete's cell Pending forever, since an Executor
// has no channel back to report anything but normal return: there is no
// value of an arbitrary E to construct from a recovered panic, so the
// cell is Aborted instead of Failed. SpawnErr/LazyErr recover closer to
// the panic, where E is known to be error, and report a proper Failed.
func runSpawned[T, E any](complete Complete[T, E], fn func() (T, E, bool)) {
	defer func() {
		if r := recover(); r != nil {
			complete.Abort()
		}
	}()

	v, e, ok := fn()
	if ok {
		complete.Complete(v)
	} else {
		complete.Fail(e)
	}
}

// SpawnErr is Spawn specialized for the common case of a plain error type,
// mirroring the teacher library's NewAsync. Unlike the generic Spawn, a
// panicking fn here resolves the Future Failed with the recovered value
// wrapped as an error, since error is always constructible.
func SpawnErr[T any](exec Executor, fn func() (T, error), opts ...Option) Future[T, error] {
	return Spawn[T, error](exec, recoverToError(fn), opts...)
}

// LazyErr is Lazy specialized for the common case of a plain error type.
func LazyErr[T any](exec Executor, fn func() (T, error), opts ...Option) Future[T, error] {
	return Lazy[T, error](exec, recoverToError(fn), opts...)
}

func recoverToError[T any](fn func() (T, error)) func() (v T, err error, ok bool) {
	return func() (v T, err error, ok bool) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in spawned task: %v", r)
				ok = false
			}
		}()

		v, err = fn()

		return v, err, err == nil
	}
}

// IsReady reports whether the Future has resolved: a result is waiting for
// Poll, or the cell was already consumed or cancelled.
func (f Future[T, E]) IsReady() bool {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()

	return f.c.state == stateReady || f.c.state == stateConsumed
}

// IsErr reports whether a ready Future's result is an AsyncError. It does
// not block and does not consume the value.
func (f Future[T, E]) IsErr() bool {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()

	return f.c.state == stateReady && f.c.value.IsErr()
}

// Poll extracts the result if ready, consuming the Future; otherwise it
// returns false and the Future is untouched and may be polled again later.
func (f Future[T, E]) Poll() (result.Result[T, E], bool) {
	return f.c.poll()
}

// Expect polls the Future and panics if it is not yet ready.
func (f Future[T, E]) Expect() result.Result[T, E] {
	v, ok := f.c.poll()
	if !ok {
		panic("async: future not ready")
	}

	return v
}

// Ready registers cb to run once the Future completes.
func (f Future[T, E]) Ready(cb func(result.Result[T, E])) Receipt[T, E] {
	f.c.setConsumer(cb)

	return Receipt[T, E]{c: f.c}
}

// Receive is Ready without a retractable Receipt.
func (f Future[T, E]) Receive(cb func(result.Result[T, E])) {
	f.c.setConsumer(cb)
}

// Await blocks until the Future completes or ctx is done. If ctx is done
// first, the Future is cancelled. Await has registered a consumer by then,
// so the paired Complete has already observed interest, not Aborted.
func (f Future[T, E]) Await(ctx context.Context) (T, error) {
	ch := make(chan result.Result[T, E], 1)
	f.c.setConsumer(func(r result.Result[T, E]) { ch <- r })

	select {
	case r := <-ch:
		return r.V()

	case <-ctx.Done():
		f.Cancel()

		var zero T

		return zero, ctx.Err()
	}
}

// Fire triggers the Future and discards its result.
func (f Future[T, E]) Fire() {
	f.c.setConsumer(func(result.Result[T, E]) {})
}

// Cancel marks the Future as abandoned by its consumer. The paired
// Complete, if waiting for interest, observes AsyncError Aborted.
func (f Future[T, E]) Cancel() {
	f.c.abortConsumerSide()
}

// Complete fulfills the paired Future with v.
func (p Complete[T, E]) Complete(v T) {
	p.c.setValue(result.Ok[T, E](v))
}

// Fail fulfills the paired Future with a Failed(e) AsyncError.
func (p Complete[T, E]) Fail(e E) {
	p.c.setValue(result.Failedf[T, E](e))
}

// Abort marks the Complete as abandoned by its producer. The paired Future,
// if a consumer is waiting, observes AsyncError Aborted.
func (p Complete[T, E]) Abort() {
	p.c.abortProducerSide()
}

// IsReady reports whether the consumer has shown interest (or aborted) yet.
func (p Complete[T, E]) IsReady() bool {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()

	return p.c.interest != interestPending
}

// IsErr reports whether interest resolved via consumer abort.
func (p Complete[T, E]) IsErr() bool {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()

	return p.c.interest == interestAborted
}

// Poll extracts the interest signal if it has resolved.
func (p Complete[T, E]) Poll() (result.Result[struct{}, struct{}], bool) {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()

	switch p.c.interest {
	case interestSubscribed:
		return result.Ok[struct{}, struct{}](struct{}{}), true

	case interestAborted:
		return result.Abortedf[struct{}, struct{}](), true

	default:
		var zero result.Result[struct{}, struct{}]

		return zero, false
	}
}

// Ready registers cb to run once a consumer subscribes or the Future is
// cancelled. Interest listeners are not retractable, so the returned
// Receipt always fails to cancel.
func (p Complete[T, E]) Ready(cb func(result.Result[struct{}, struct{}])) Receipt[struct{}, struct{}] {
	p.c.registerInterest(func(subscribed bool) {
		if subscribed {
			cb(result.Ok[struct{}, struct{}](struct{}{}))
		} else {
			cb(result.Abortedf[struct{}, struct{}]())
		}
	})

	return Receipt[struct{}, struct{}]{}
}

// Receive is Ready without a Receipt.
func (p Complete[T, E]) Receive(cb func(result.Result[struct{}, struct{}])) {
	p.Ready(cb)
}

// Await blocks until a consumer subscribes, the Future is cancelled, or ctx
// is done.
func (p Complete[T, E]) Await(ctx context.Context) (struct{}, error) {
	ch := make(chan result.Result[struct{}, struct{}], 1)
	p.Receive(func(r result.Result[struct{}, struct{}]) { ch <- r })

	select {
	case r := <-ch:
		return r.V()

	case <-ctx.Done():
		return struct{}{}, ctx.Err()
	}
}

// Fire registers an interest listener that discards the signal.
func (p Complete[T, E]) Fire() {
	p.Receive(func(result.Result[struct{}, struct{}]) {})
}
