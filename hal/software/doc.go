// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package software is the in-tree reference backend: resources are backed
// by CPU memory, the command-list compiler runs the full resource-state
// transition machinery, and GPU progress is modelled by a deterministic
// timeline that advances when the CPU blocks on a fence or on the frame
// window.
//
// The backend exists to exercise the gal contract end to end — uploads,
// copies, clears, readbacks, barrier coalescing, frame fencing — without a
// native driver, and doubles as the baseline other backends are tested
// against.
package software
