// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import "errors"

// Backend-level errors. The shared error kinds (invalid argument, invalid
// state, device lost, ...) live in the types package; these cover the
// registry and submission surface.
var (
	// ErrBackendNotFound indicates the requested backend is not
	// registered.
	ErrBackendNotFound = errors.New("hal: backend not found")

	// ErrNotInitialized indicates the backend has not been bound to an
	// adapter yet.
	ErrNotInitialized = errors.New("hal: backend not initialized")

	// ErrQueueClass indicates a command list was submitted to a queue of
	// a lower class than it requires.
	ErrQueueClass = errors.New("hal: command list requires a higher queue class")
)
