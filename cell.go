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

	"github.com/google/uuid"

	"eventual.dev/async/internal/obs"
	"eventual.dev/async/metrics"
	"eventual.dev/async/result"
)

// cellState is the value-side state of a cell, matching the table in the
// specification: Pending, ConsumerWaiting, Ready, Consumed.
type cellState uint8

const (
	statePending cellState = iota
	stateConsumerWaiting
	stateReady
	stateConsumed
)

// interestState tracks whether the consumer side has shown interest (i.e.
// registered a callback at least once) yet, independent of whether the
// value itself has arrived. It is what makes Complete an Async in its own
// right: and_then/or_else only subscribe upstream once interest fires.
type interestState uint8

const (
	interestPending interestState = iota
	interestSubscribed
	interestAborted
)

// cell is the shared, lock-protected slot underlying every Future/Complete
// and every Stream/Sender node. Exactly two handles ever reference a given
// cell: one consumer-side, one producer-side.
type cell[T, E any] struct {
	_ noCopy

	mu sync.Mutex

	id uuid.UUID

	state      cellState
	value      result.Result[T, E]
	consumerCB func(result.Result[T, E])

	interest   interestState
	producerCB func(bool) // invoked with true if subscribed, false if aborted

	col *metrics.Collector
}

func newCell[T, E any](col *metrics.Collector) *cell[T, E] {
	c := &cell[T, E]{id: uuid.New(), col: col}
	if col != nil {
		col.CellCreated()
	}

	return c
}

// setConsumer registers cb as the value-side callback. It is a programmer
// error to register twice on the same cell.
func (c *cell[T, E]) setConsumer(cb func(result.Result[T, E])) {
	c.mu.Lock()

	switch c.state {
	case statePending:
		c.state = stateConsumerWaiting
		c.consumerCB = cb

		fire, pcb := c.markInterest(true)
		c.mu.Unlock()
		obs.Debugf("cell %s: consumer subscribed", c.id)

		if fire && pcb != nil {
			pcb(true)
		}

		return

	case stateReady:
		v := c.value
		c.state = stateConsumed

		fire, pcb := c.markInterest(true)
		c.mu.Unlock()

		if fire && pcb != nil {
			pcb(true)
		}

		cb(v)

	case stateConsumerWaiting, stateConsumed:
		c.mu.Unlock()

		panic("async: cell already has a registered consumer")

	default:
		c.mu.Unlock()
	}
}

// clearConsumer retracts a previously registered callback, succeeding only
// if the cell has not yet delivered a value.
func (c *cell[T, E]) clearConsumer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateConsumerWaiting {
		return false
	}

	c.state = statePending
	c.consumerCB = nil

	return true
}

// setValue completes the cell with v, delivering to any waiting consumer.
// Completing an already-consumed cell is a programmer error.
func (c *cell[T, E]) setValue(v result.Result[T, E]) {
	c.mu.Lock()

	switch c.state {
	case statePending:
		c.state = stateReady
		c.value = v
		c.mu.Unlock()

	case stateConsumerWaiting:
		cb := c.consumerCB
		c.consumerCB = nil
		c.state = stateConsumed
		c.mu.Unlock()

		if c.col != nil {
			c.col.CellCompleted()
		}

		cb(v)

	default:
		c.mu.Unlock()

		panic("async: cell already completed")
	}
}

// abortConsumerSide marks the cell as abandoned by its consumer and moves it
// to Consumed, discarding any registered consumer callback. If interest had
// not resolved yet and a producer-interest listener is registered, that
// listener fires with false (aborted).
func (c *cell[T, E]) abortConsumerSide() {
	c.mu.Lock()

	if c.state == stateConsumed {
		c.mu.Unlock()

		return
	}

	c.state = stateConsumed
	c.consumerCB = nil

	fire, pcb := c.markInterest(false)
	c.mu.Unlock()

	if c.col != nil {
		c.col.CellAborted()
	}

	if fire && pcb != nil {
		pcb(false)
	}
}

// abortProducerSide marks the cell as abandoned by its producer: any
// waiting consumer callback fires with AsyncError Aborted.
func (c *cell[T, E]) abortProducerSide() {
	c.mu.Lock()

	switch c.state {
	case stateConsumerWaiting:
		cb := c.consumerCB
		c.consumerCB = nil
		c.state = stateConsumed
		c.mu.Unlock()

		if c.col != nil {
			c.col.CellAborted()
		}

		cb(result.Abortedf[T, E]())

	case stateConsumed:
		c.mu.Unlock()

	default:
		// No consumer is registered yet, but the Future handle is still
		// live and may register one later (unlike the Rust source, a Go
		// value has no destructor to foreclose that). Park the Aborted
		// result in Ready rather than jumping straight to Consumed, so a
		// later setConsumer still delivers it instead of panicking on an
		// apparently-duplicate registration.
		c.state = stateReady
		c.value = result.Abortedf[T, E]()
		c.mu.Unlock()

		if c.col != nil {
			c.col.CellAborted()
		}
	}
}

// markInterest must be called with c.mu held. It resolves the interest
// signal exactly once and reports whether the caller should fire the
// producer-side callback (outside the lock) plus that callback, extracted
// while still holding the lock.
func (c *cell[T, E]) markInterest(subscribed bool) (fire bool, pcb func(bool)) {
	if c.interest != interestPending {
		return false, nil
	}

	if subscribed {
		c.interest = interestSubscribed
	} else {
		c.interest = interestAborted
	}

	pcb = c.producerCB
	c.producerCB = nil

	return pcb != nil, pcb
}

// registerInterest installs cb as the producer-side interest listener. If
// interest has already resolved, cb fires immediately (outside the lock).
func (c *cell[T, E]) registerInterest(cb func(bool)) {
	c.mu.Lock()

	switch c.interest {
	case interestPending:
		c.producerCB = cb
		c.mu.Unlock()

	case interestSubscribed:
		c.mu.Unlock()
		cb(true)

	case interestAborted:
		c.mu.Unlock()
		cb(false)
	}
}

// poll is the non-blocking, non-destructive-on-failure extraction described
// in the specification: a ready cell yields its value and transitions to
// Consumed; otherwise ok is false and the cell is untouched.
func (c *cell[T, E]) poll() (result.Result[T, E], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateReady {
		var zero result.Result[T, E]

		return zero, false
	}

	v := c.value
	c.state = stateConsumed

	return v, true
}
