// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package software

import (
	"sync"

	"github.com/gogpu/gal/command"
)

// fenceState is the shared completion state of a fence: a monotonically
// increasing completed value plus an event waiters block on.
type fenceState struct {
	mu        sync.Mutex
	cond      *sync.Cond
	completed uint64
}

func newFenceState(initial uint64) *fenceState {
	s := &fenceState{completed: initial}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Completed returns the last completed value.
func (s *fenceState) Completed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// signal completes the fence up to value and wakes waiters.
func (s *fenceState) signal(value uint64) {
	s.mu.Lock()
	if value > s.completed {
		s.completed = value
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// wait blocks until the completed value reaches value.
func (s *fenceState) wait(value uint64) {
	s.mu.Lock()
	for s.completed < value {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// timelineOp is one unit of simulated GPU progress: either an executable
// batch or a fence signal.
type timelineOp struct {
	execute func(d *Device)
	signal  *fenceState
	value   uint64
}

// timeline models the GPU's execution of submitted work. Work does not
// progress spontaneously: it is drained when the CPU blocks on a fence or
// on the frame window. This keeps execution deterministic and makes the
// frame-fencing behaviour observable.
type timeline struct {
	mu      sync.Mutex
	device  *Device
	pending []timelineOp

	// stalls counts forced drains caused by a full frame window.
	stalls int64
}

// submit appends a batch of execution thunks in FIFO order.
func (t *timeline) submit(ops []func(d *Device)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, op := range ops {
		t.pending = append(t.pending, timelineOp{execute: op})
	}
}

// signal appends a fence signal behind all previously submitted work.
func (t *timeline) signal(f *fenceState, value uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, timelineOp{signal: f, value: value})
}

// drain executes all pending work in order.
func (t *timeline) drain() {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, op := range pending {
		if op.execute != nil {
			op.execute(t.device)
		}
		if op.signal != nil {
			op.signal.signal(op.value)
		}
	}
}

// waitFence drives the timeline until the fence reaches value, then blocks
// until any remaining signaller (another goroutine) completes it.
func (t *timeline) waitFence(f *fenceState, value uint64) {
	if f.Completed() >= value {
		return
	}
	t.drain()
	f.wait(value)
}

// queue is one of the device's command queues. All queues share the device
// timeline, so work from every queue runs in submission order.
type queue struct {
	class    command.QueueType
	timeline *timeline
}

// accepts reports whether the queue can execute a command list of the given
// queue type.
func (q *queue) accepts(listType command.QueueType) bool {
	return q.class.Accepts(listType)
}
