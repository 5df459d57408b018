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

// Receipt is a retractable handle to a callback registered via Ready. The
// zero Receipt always fails to cancel, which is what Ready on an
// already-resolved Async returns.
type Receipt[T, E any] struct {
	c *cell[T, E]
}

// Cancel attempts to atomically remove the registered callback. If the cell
// had not yet delivered a value, Cancel succeeds, returning the original
// Future so the caller may reuse or discard it. Otherwise Cancel returns
// false: the callback already ran, or is about to.
func (r Receipt[T, E]) Cancel() (Future[T, E], bool) {
	if r.c == nil || !r.c.clearConsumer() {
		return Future[T, E]{}, false
	}

	return Future[T, E]{c: r.c}, true
}
