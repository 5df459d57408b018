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

func TestMapTransformsSuccess(t *testing.T) {
	t.Parallel()

	f := async.Of[int, error](42)
	doubled := async.Map(f, func(v int) int { return v * 2 })

	value, err := doubled.Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, 84, value)
	}
}

func TestMapPassesThroughFailure(t *testing.T) {
	t.Parallel()

	f := async.Errorf[int](errTest)
	mapped := async.Map(f, func(v int) int { return v * 2 })

	_, err := mapped.Await(context.Background())
	assert.ErrorIs(t, err, errTest)
}

func TestAndThenChainsOnSuccess(t *testing.T) {
	t.Parallel()

	f := async.Of[int, error](1)
	chained := async.AndThen(f, func(v int) async.Async[int, error] {
		return async.Of[int, error](v + 1)
	})

	value, err := chained.Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, 2, value)
	}
}

func TestAndThenSkipsContinuationOnFailure(t *testing.T) {
	t.Parallel()

	f := async.Errorf[int](errTest)
	ran := false
	chained := async.AndThen(f, func(int) async.Async[int, error] {
		ran = true

		return async.Of[int, error](0)
	})

	_, err := chained.Await(context.Background())
	assert.ErrorIs(t, err, errTest)
	assert.False(t, ran)
}

func TestAndThenCancelsUpstreamWhenNeverSubscribed(t *testing.T) {
	t.Parallel()

	complete, f := async.Pair[int, error]()
	chained := async.AndThen(f, func(v int) async.Async[int, error] {
		return async.Of[int, error](v)
	})

	chained.Cancel()

	_, err := complete.Await(context.Background())
	assert.Error(t, err, "an uninterested AndThen cancels its upstream")
}

func TestOrElseRecoversFromFailure(t *testing.T) {
	t.Parallel()

	f := async.Errorf[int](errTest)
	recovered := async.OrElse(f, func(error) async.Async[int, error] {
		return async.Of[int, error](7)
	})

	value, err := recovered.Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, 7, value)
	}
}

func TestOrSubstitutesAlternativeOnFailure(t *testing.T) {
	t.Parallel()

	f := async.Errorf[int](errTest)
	alt := async.Of[int, error](7)

	value, err := async.Or(f, alt).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, 7, value)
	}
}

func TestAndRunsSecondOnSuccess(t *testing.T) {
	t.Parallel()

	first := async.Of[int, error](1)
	second := async.Of[string, error]("second")

	value, err := async.And(first, second).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, "second", value)
	}
}

func TestOrElseIgnoresAbortedUpstream(t *testing.T) {
	t.Parallel()

	complete, f := async.Pair[int, error]()
	complete.Abort()

	recovered := async.OrElse(f, func(error) async.Async[int, error] {
		t.Fatal("or_else must not run its continuation on an aborted upstream")

		return async.Of[int, error](0)
	})

	_, err := recovered.Await(context.Background())
	assert.Error(t, err)
}
