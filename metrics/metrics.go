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

// Package metrics exposes optional Prometheus instrumentation for cell and
// executor lifecycles. A *Collector is nil-safe: every method tolerates a
// nil receiver so call sites never need to branch on whether metrics were
// configured.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Config configures the metric namespace/subsystem, mirroring the registry
// pattern used elsewhere in the corpus for Prometheus-backed collectors.
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig returns the library's default metric naming.
func DefaultConfig() Config {
	return Config{Namespace: "eventual", Subsystem: "async"}
}

// Collector holds the Prometheus collectors for cell and executor
// lifecycles.
type Collector struct {
	cellsCreated   prometheus.Counter
	cellsCompleted prometheus.Counter
	cellsAborted   prometheus.Counter
	cellsInFlight  prometheus.Gauge

	tasksSubmitted prometheus.Counter
	tasksRejected  prometheus.Counter
	queueDepth     prometheus.Gauge
}

// NewCollector builds a Collector and registers it with reg. Passing a nil
// Registerer (or calling this function not at all, and passing a nil
// *Collector around) is a valid, zero-overhead configuration.
func NewCollector(reg prometheus.Registerer, cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg = DefaultConfig()
	}

	c := &Collector{
		cellsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "cells_created_total", Help: "Cells allocated by Future/Stream pairs.",
		}),
		cellsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "cells_completed_total", Help: "Cells that delivered a value to a waiting consumer.",
		}),
		cellsAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "cells_aborted_total", Help: "Cells that resolved via structural cancellation.",
		}),
		cellsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "cells_in_flight", Help: "Cells created but not yet completed or aborted.",
		}),
		tasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "executor_tasks_submitted_total", Help: "Tasks submitted to an Executor.",
		}),
		tasksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "executor_tasks_rejected_total", Help: "Tasks an Executor refused to run.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "executor_queue_depth", Help: "Tasks currently queued by a bounded Executor.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.cellsCreated, c.cellsCompleted, c.cellsAborted, c.cellsInFlight,
			c.tasksSubmitted, c.tasksRejected, c.queueDepth,
		)
	}

	return c
}

func (c *Collector) CellCreated() {
	if c == nil {
		return
	}

	c.cellsCreated.Inc()
	c.cellsInFlight.Inc()
}

func (c *Collector) CellCompleted() {
	if c == nil {
		return
	}

	c.cellsCompleted.Inc()
	c.cellsInFlight.Dec()
}

func (c *Collector) CellAborted() {
	if c == nil {
		return
	}

	c.cellsAborted.Inc()
	c.cellsInFlight.Dec()
}

func (c *Collector) TaskSubmitted() {
	if c == nil {
		return
	}

	c.tasksSubmitted.Inc()
}

func (c *Collector) TaskRejected() {
	if c == nil {
		return
	}

	c.tasksRejected.Inc()
}

func (c *Collector) QueueDepth(delta float64) {
	if c == nil {
		return
	}

	c.queueDepth.Add(delta)
}
