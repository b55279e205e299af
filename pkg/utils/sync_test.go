// Copyright 2019 The xyrange Authors
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

package utils

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleep(t *testing.T) {
	assert.True(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, Sleep(ctx, time.Minute))
}

func TestWait(t *testing.T) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	assert.True(t, Wait(context.Background(), ticker))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := time.NewTicker(time.Hour)
	defer slow.Stop()
	assert.False(t, Wait(ctx, slow))
}

func TestWaitWaitGroup(t *testing.T) {
	var wg sync.WaitGroup
	assert.True(t, WaitWaitGroup(&wg, time.Millisecond))

	wg.Add(1)
	assert.False(t, WaitWaitGroup(&wg, 10*time.Millisecond))
	wg.Done()
	assert.True(t, WaitWaitGroup(&wg, time.Second))
}

func TestNotifierStop(t *testing.T) {
	stop := NewNotifierOnIntTermSignal(func(os.Signal) {})
	stop()
	stop()
}
