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
	"github.com/stretchr/testify/assert"
)

func TestSelectReturnsFirstReadyAndCancelsRest(t *testing.T) {
	t.Parallel()

	_, pending := async.Pair[int, error]()
	ready := async.Of[int, error](1)

	selection, err := async.Select([]async.Future[int, error]{ready, pending}).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, 0, selection.Index)
		assert.Equal(t, 1, selection.Value)
		assert.Len(t, selection.Remaining, 1)
	}
}

func TestSelectEmptyAborts(t *testing.T) {
	t.Parallel()

	_, err := async.Select[int, error](nil).Await(context.Background())
	assert.Error(t, err)
}

func TestSelectAllAbortedAborts(t *testing.T) {
	t.Parallel()

	c1, f1 := async.Pair[int, error]()
	c2, f2 := async.Pair[int, error]()
	c1.Abort()
	c2.Abort()

	_, err := async.Select([]async.Future[int, error]{f1, f2}).Await(context.Background())
	assert.Error(t, err)
}

func TestSelectFirstFailureWinsAndCancelsRest(t *testing.T) {
	t.Parallel()

	_, pending := async.Pair[int, error]()
	failed := async.Errorf[int](errTest)

	_, err := async.Select([]async.Future[int, error]{failed, pending}).Await(context.Background())
	assert.ErrorIs(t, err, errTest)
}
