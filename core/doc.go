// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package core provides generation-safe resource handles, the per-kind
// handle allocator, and the sharded rw-locked resource pool used by the
// facade and by backends to store resource records.
package core
