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

package async_test

import (
	"context"
	"testing"

	"eventual.dev/async"
	"eventual.dev/async/result"
	"github.com/stretchr/testify/assert"
)

func TestInstantIsAlwaysReady(t *testing.T) {
	t.Parallel()

	i := async.Instant[int, error](result.Ok[int, error](5))

	assert.True(t, i.IsReady())
	assert.False(t, i.IsErr())

	r, ok := i.Poll()
	if assert.True(t, ok) {
		v, err := r.V()
		if assert.NoError(t, err) {
			assert.Equal(t, 5, v)
		}
	}

	value, err := i.Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, 5, value)
	}
}

func TestUnitCompletesImmediately(t *testing.T) {
	t.Parallel()

	_, err := async.Unit().Await(context.Background())
	assert.NoError(t, err)
}
