// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

import "errors"

// Error kinds shared by the facade, the recorder, and all backends.
// Fallible operations return one of these (possibly wrapped); success is a
// nil error.
var (
	// ErrFail indicates a generic unrecoverable failure.
	ErrFail = errors.New("gal: operation failed")

	// ErrUnimplemented indicates the operation is not implemented by the
	// selected backend.
	ErrUnimplemented = errors.New("gal: unimplemented")

	// ErrUnsupported indicates an unsupported format or capability.
	ErrUnsupported = errors.New("gal: unsupported")

	// ErrInvalidArgument indicates a malformed input: an invalid handle,
	// a zero size, an out-of-range index.
	ErrInvalidArgument = errors.New("gal: invalid argument")

	// ErrInvalidState indicates a state-machine violation, such as a
	// resource transition to a state outside its supported set or a
	// submit of a non-closed command list.
	ErrInvalidState = errors.New("gal: invalid state")

	// ErrNotReady indicates an asynchronous result is not yet available.
	ErrNotReady = errors.New("gal: not ready")

	// ErrOutOfMemory indicates an allocation failure, CPU or GPU side.
	ErrOutOfMemory = errors.New("gal: out of memory")

	// ErrDeviceLost indicates the GPU device has been lost. The error is
	// sticky on the facade until teardown.
	ErrDeviceLost = errors.New("gal: device lost")
)
