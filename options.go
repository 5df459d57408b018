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

import "eventual.dev/async/metrics"

// Option configures a newly created Future/Complete or Stream/Sender pair.
type Option func(*cellOpts)

type cellOpts struct {
	col *metrics.Collector
}

// WithMetrics attaches a metrics.Collector to the cells backing the pair.
// A nil Collector (the default, when WithMetrics is omitted) disables
// instrumentation entirely.
func WithMetrics(col *metrics.Collector) Option {
	return func(o *cellOpts) { o.col = col }
}

func resolveOptions(opts []Option) cellOpts {
	var o cellOpts
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
