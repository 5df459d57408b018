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

// Package executor provides default implementations of the worker-thread
// facility the core treats as an external collaborator: anything that can
// accept a one-shot function and run it to completion on some goroutine,
// eventually. Neither implementation here is required by the core — callers
// are free to supply their own — but a Go library with no usable default
// executor is not idiomatic, so both a goroutine-per-task and a
// bounded-pool variant ship alongside the combinators.
package executor

import (
	"eventual.dev/async/internal/obs"
	"eventual.dev/async/metrics"
)

// GoExecutor runs every submitted function on its own goroutine. It never
// blocks Submit and never bounds concurrency; use PoolExecutor when a
// caller must cap the number of simultaneously running tasks.
type GoExecutor struct {
	col *metrics.Collector
}

// NewGoExecutor builds a GoExecutor. col may be nil to disable metrics.
func NewGoExecutor(col ...*metrics.Collector) *GoExecutor {
	g := &GoExecutor{}
	if len(col) > 0 {
		g.col = col[0]
	}

	return g
}

// Submit runs fn on a new goroutine.
func (g *GoExecutor) Submit(fn func()) {
	g.col.TaskSubmitted()

	go func() {
		defer recoverPanic()

		fn()
	}()
}

// PoolExecutor bounds concurrency with a buffered channel semaphore, the
// same technique the rest of the corpus's hand-rolled semaphores use:
// Submit blocks only long enough to acquire a slot, never for the task's
// own duration, and tasks that run concurrently never exceed the pool's
// capacity.
type PoolExecutor struct {
	sem chan struct{}
	col *metrics.Collector
}

// NewPoolExecutor builds a PoolExecutor with room for at most n concurrent
// tasks. n <= 0 is treated as 1. col may be nil to disable metrics.
func NewPoolExecutor(n int, col ...*metrics.Collector) *PoolExecutor {
	if n <= 0 {
		n = 1
	}

	p := &PoolExecutor{sem: make(chan struct{}, n)}
	if len(col) > 0 {
		p.col = col[0]
	}

	return p
}

// Submit acquires a slot (blocking the caller's goroutine, not fn's
// execution, if the pool is saturated) and then runs fn on a new goroutine.
func (p *PoolExecutor) Submit(fn func()) {
	p.col.TaskSubmitted()
	p.col.QueueDepth(1)
	p.sem <- struct{}{}
	p.col.QueueDepth(-1)

	go func() {
		defer func() { <-p.sem }()
		defer recoverPanic()

		fn()
	}()
}

func recoverPanic() {
	if r := recover(); r != nil {
		obs.Debugf("executor: recovered panic from submitted task: %v", r)
	}
}
