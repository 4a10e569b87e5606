// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package thread provides a dedicated, OS-pinned worker thread.
//
// The facade uses one to serialise command-list submission: all submits
// funnel through the same OS thread in FIFO order, which native drivers
// require for their direct queue and which keeps submission order
// deterministic under concurrent recorders.
package thread

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Thread is a dedicated OS thread. All function calls are serialized and
// executed on the same thread in submission order.
type Thread struct {
	funcs   chan func()
	done    chan struct{}
	running atomic.Bool
}

// New creates a thread and starts it. The backing goroutine is locked to
// an OS thread.
func New() *Thread {
	t := &Thread{
		funcs: make(chan func(), 16),
		done:  make(chan struct{}),
	}
	t.running.Store(true)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		wg.Done()

		for {
			select {
			case f := <-t.funcs:
				f()
			case <-t.done:
				return
			}
		}
	}()

	wg.Wait()
	return t
}

// Call executes f on the thread and returns its result.
// When the thread is stopped, f runs on the caller instead so that
// teardown paths cannot deadlock.
func (t *Thread) Call(f func() any) any {
	if !t.running.Load() {
		return f()
	}

	done := make(chan any, 1)
	t.funcs <- func() {
		done <- f()
	}
	return <-done
}

// CallVoid executes f on the thread and waits for completion.
func (t *Thread) CallVoid(f func()) {
	t.Call(func() any {
		f()
		return nil
	})
}

// Stop stops the thread. Pending calls already queued are abandoned.
func (t *Thread) Stop() {
	if t.running.Swap(false) {
		close(t.done)
	}
}

// IsRunning reports whether the thread accepts calls.
func (t *Thread) IsRunning() bool {
	return t.running.Load()
}
