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

// Package timer provides the default DeadlineSource the core treats as an
// external collaborator, together with a convenience constructor for
// turning a plain duration into a Future that resolves once it elapses.
package timer

import (
	"context"
	"sync"
	"time"

	"eventual.dev/async"
	"eventual.dev/async/result"
)

// SystemClock is a DeadlineSource backed by the runtime's monotonic timers.
type SystemClock struct{}

// New returns a SystemClock.
func New() SystemClock { return SystemClock{} }

// After invokes cb no earlier than d has elapsed. The returned cancel
// function prevents cb from firing if it has not already, mirroring
// time.Timer.Stop.
func (SystemClock) After(d time.Duration, cb func()) (cancel func()) {
	t := time.AfterFunc(d, cb)

	return func() { t.Stop() }
}

// After returns a Future that resolves to struct{} once d has elapsed. The
// timer is armed at once; if the Future is cancelled before any consumer
// ever subscribes, the timer is stopped and never fires.
func After(src async.DeadlineSource, d time.Duration) async.Future[struct{}, struct{}] {
	complete, future := async.Pair[struct{}, struct{}]()

	var cancel func()
	cancel = src.After(d, func() { complete.Complete(struct{}{}) })

	complete.Receive(func(r result.Result[struct{}, struct{}]) {
		if r.IsErr() {
			cancel()
		}
	})

	return future
}

// Periodic returns a Stream that emits the current time on every period,
// ending (Aborted) once ctx is cancelled. It is this module's Stream
// rendering of elastic-go-concert/timed.Periodic's tick-and-check loop:
// that function blocks a single goroutine in a select between a
// time.Ticker and ctx.Done, always checking cancellation first so a
// pending tick can't sneak in after shutdown has already been requested.
// This version has no loop to block in — each tick schedules the next one
// via src.After once the previous element has been consumed — but keeps
// the same "check ctx before scheduling" ordering.
func Periodic(ctx context.Context, src async.DeadlineSource, period time.Duration) async.Stream[time.Time, struct{}] {
	sender, stream := async.StreamPair[time.Time, struct{}]()
	pumpPeriodic(ctx, src, period, sender)

	return stream
}

func pumpPeriodic(ctx context.Context, src async.DeadlineSource, period time.Duration, sender async.Sender[time.Time, struct{}]) {
	if ctx.Err() != nil {
		sender.Abort()

		return
	}

	// settle guards against the tick firing and the context being
	// cancelled at nearly the same moment: whichever of the two reaches
	// it first decides this turn's outcome, so a cancellation can never
	// clobber a value that has already been sent.
	var settle sync.Once

	cancelTick := func() {}

	stopWatch := context.AfterFunc(ctx, func() {
		cancelTick()
		settle.Do(sender.Abort)
	})

	cancelTick = src.After(period, func() {
		// The tick fired, so the context watch registered above is no
		// longer needed; drop it now instead of letting registrations pile
		// up on ctx across a long-running periodic stream.
		stopWatch()

		if ctx.Err() != nil {
			settle.Do(sender.Abort)

			return
		}

		settle.Do(func() {
			next, busy := sender.Send(time.Now())
			busy.Receive(func(r result.Result[struct{}, struct{}]) {
				if r.IsErr() {
					return
				}

				pumpPeriodic(ctx, src, period, next)
			})
		})
	})
}
