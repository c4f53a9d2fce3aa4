// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conc

import (
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

func TestPool(t *testing.T) {
	pool := NewPool[any](4, WithName("test"))
	defer pool.Release()
	assert.Equal(t, 4, pool.Cap())

	taskNum := pool.Cap() * 2
	futures := make([]*Future[any], 0, taskNum)
	for i := 0; i < taskNum; i++ {
		res := i
		future := pool.Submit(func() (any, error) {
			return res, nil
		})
		futures = append(futures, future)
	}

	assert.NoError(t, AwaitAll(futures...))
	for i, future := range futures {
		res, err := future.Await()
		assert.NoError(t, err)
		assert.Equal(t, err, future.Err())
		assert.Equal(t, i, res.(int))
	}
}

func TestPoolAwaitAllReturnsFirstError(t *testing.T) {
	pool := NewPool[int](2)
	defer pool.Release()

	errFirst := errors.New("first")
	var finished atomic.Int32
	futures := []*Future[int]{
		pool.Submit(func() (int, error) { finished.Add(1); return 0, nil }),
		pool.Submit(func() (int, error) { finished.Add(1); return 0, errFirst }),
		pool.Submit(func() (int, error) { finished.Add(1); return 0, errors.New("second") }),
	}

	err := AwaitAll(futures...)
	assert.ErrorIs(t, err, errFirst)
	assert.EqualValues(t, 3, finished.Load())

	v, err := futures[0].Await()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestPoolConcealPanic(t *testing.T) {
	pool := NewPool[int](1, WithConcealPanic(true))
	defer pool.Release()

	future := pool.Submit(func() (int, error) {
		panic("boom")
	})
	assert.Error(t, future.Err())
	assert.Contains(t, future.Err().Error(), "boom")
}

func TestPoolReleased(t *testing.T) {
	pool := NewPool[int](1)
	pool.Release()

	future := pool.Submit(func() (int, error) { return 1, nil })
	assert.ErrorIs(t, future.Err(), merr.ErrPoolClosed)
}
