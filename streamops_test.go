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

func sendAll[T any](sender async.Sender[T, error], values ...T) {
	for _, v := range values {
		var busy async.BusySender[T, error]
		sender, busy = sender.Send(v)

		// Wait until the consumer asks for the next element; stop if it
		// cancelled the rest of the stream instead.
		if _, err := busy.Await(context.Background()); err != nil {
			return
		}
	}

	sender.Done()
}

func TestStreamCollectGathersInOrder(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	go sendAll(sender, 1, 2, 3)

	values, err := async.StreamCollect(stream).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, []int{1, 2, 3}, values)
	}
}

func TestStreamMapAndCollect(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	go sendAll(sender, 1, 2, 3)

	mapped := async.StreamMap[int, int, error](stream, func(v int) int { return v * 10 })

	values, err := async.StreamCollect(mapped).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, []int{10, 20, 30}, values)
	}
}

func TestStreamFilterKeepsMatchingElements(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	go sendAll(sender, 1, 2, 3, 4, 5)

	even := async.StreamFilter(stream, func(v int) bool { return v%2 == 0 })

	values, err := async.StreamCollect(even).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, []int{2, 4}, values)
	}
}

func TestStreamTakeStopsEarlyAndCancelsRest(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	go sendAll(sender, 1, 2, 3, 4, 5)

	taken := async.StreamTake(stream, 2)

	values, err := async.StreamCollect(taken).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, []int{1, 2}, values)
	}
}

func TestStreamTakeZeroYieldsNothing(t *testing.T) {
	t.Parallel()

	_, stream := async.StreamPair[int, error]()
	taken := async.StreamTake(stream, 0)

	values, err := async.StreamCollect(taken).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Empty(t, values)
	}
}

func TestStreamTakeWhileStopsAtFirstFailingPredicate(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	go sendAll(sender, 1, 2, 3, 1)

	taken := async.StreamTakeWhile(stream, func(v int) bool { return v < 3 })

	values, err := async.StreamCollect(taken).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, []int{1, 2}, values)
	}
}

func TestStreamReduceFoldsLeftToRight(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	go sendAll(sender, 1, 2, 3, 4)

	sum, err := async.StreamReduce(stream, 0, func(acc, v int) int { return acc + v }).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, 10, sum)
	}
}

func TestStreamEachInvokesCallbackInOrder(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	go sendAll(sender, 1, 2, 3)

	var seen []int
	_, err := async.StreamEach(stream, func(v int) { seen = append(seen, v) }).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, []int{1, 2, 3}, seen)
	}
}

func TestStreamPropagatesFailure(t *testing.T) {
	t.Parallel()

	sender, stream := async.StreamPair[int, error]()
	go func() {
		next, _ := sender.Send(1)
		next.Fail(errTest)
	}()

	_, err := async.StreamCollect(stream).Await(context.Background())
	assert.ErrorIs(t, err, errTest)
}

func TestSequenceEmitsInSubmissionOrderNotCompletionOrder(t *testing.T) {
	t.Parallel()

	c1, f1 := async.Pair[int, error]()
	f2 := async.Of[int, error](2)
	c3, f3 := async.Pair[int, error]()

	seq := async.Sequence([]async.Future[int, error]{f1, f2, f3})

	done := make(chan struct{})
	var values []int
	var err error

	go func() {
		values, err = async.StreamCollect(seq).Await(context.Background())
		close(done)
	}()

	// f2 already resolved before Sequence was even called; f3 is completed
	// ahead of f1 here. The output must still preserve submission order.
	c3.Complete(3)
	c1.Complete(1)

	<-done
	if assert.NoError(t, err) {
		assert.Equal(t, []int{1, 2, 3}, values)
	}
}

func TestSequenceFailsOnFirstInOrderFailureAndCancelsRest(t *testing.T) {
	t.Parallel()

	f1 := async.Errorf[int](errTest)
	_, f2 := async.Pair[int, error]()

	seq := async.Sequence([]async.Future[int, error]{f1, f2})

	_, err := async.StreamCollect(seq).Await(context.Background())
	assert.ErrorIs(t, err, errTest)
}

func TestSequenceEmptyEndsImmediately(t *testing.T) {
	t.Parallel()

	seq := async.Sequence[int, error](nil)

	values, err := async.StreamCollect(seq).Await(context.Background())
	if assert.NoError(t, err) {
		assert.Empty(t, values)
	}
}
