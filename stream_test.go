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

func TestStreamIterYieldsElementsThenEnds(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()

	go func() {
		next, _ := sender.Send(1)
		next, _ = next.Send(2)
		next.Done()
	}()

	it := stream.Iter(context.Background())

	v1, err, ok := it.Next()
	if assert.True(t, ok) && assert.NoError(t, err) {
		assert.Equal(t, 1, v1)
	}

	v2, err, ok := it.Next()
	if assert.True(t, ok) && assert.NoError(t, err) {
		assert.Equal(t, 2, v2)
	}

	_, err, ok = it.Next()
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestStreamIterReportsFailure(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()

	go func() {
		next, _ := sender.Send(1)
		next.Fail(errTest)
	}()

	it := stream.Iter(context.Background())

	_, err, ok := it.Next()
	assert.True(t, ok)
	assert.NoError(t, err)

	_, err, ok = it.Next()
	assert.True(t, ok)
	assert.ErrorIs(t, err, errTest)
}

func TestStreamCancelAbortsSender(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	stream.Cancel()

	_, err := sender.Await(context.Background())
	assert.Error(t, err, "a consumer that cancels before ever subscribing is observed by the Sender as aborted interest")
}

func TestBusySenderResolvesOnceConsumerAdvances(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	next, busy := sender.Send(1)

	assert.False(t, busy.IsReady(), "no consumer has taken the first element yet")

	it := stream.Iter(context.Background())
	_, _, _ = it.Next()

	assert.False(t, busy.IsReady(), "the consumer took the first element but hasn't asked for what follows")

	done := make(chan struct{})
	go func() {
		defer close(done)

		_, _, ok := it.Next()
		assert.False(t, ok)
	}()

	_, cerr := busy.Await(context.Background())
	assert.NoError(t, cerr, "busy resolves once the consumer subscribes to the tail")

	next.Done()
	<-done
}
