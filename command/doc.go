// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package command implements the software-side command list: an append-only
// payload arena plus an index of typed commands, validated at record time
// against the handle allocator. Backends walk the recorded stream with a
// type switch when compiling to native commands.
package command
