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
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Wait blocks until the ticker fires or ctx is closed. Returns false if ctx
// is closed.
func Wait(ctx context.Context, ticker *time.Ticker) bool {
	select {
	case <-ctx.Done():
		return false
	case <-ticker.C:
		return true
	}
}

// Sleep pauses the current go-routine for t, or less if ctx is closed. It
// returns false when ctx was closed before t expired.
func Sleep(ctx context.Context, t time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(t):
		return true
	}
}

// WaitWaitGroup waits for wg for no more than t. Returns true if wg is done
// in time.
func WaitWaitGroup(wg *sync.WaitGroup, t time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(t):
		return false
	}
}

// NewNotifierOnIntTermSignal calls f once SIGINT or SIGTERM is received. The
// returned function stops listening for the signals.
func NewNotifierOnIntTermSignal(f func(s os.Signal)) func() {
	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case s := <-sigChan:
			f(s)
		case <-done:
		}
		signal.Stop(sigChan)
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
