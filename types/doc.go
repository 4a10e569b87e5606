// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package types defines the descriptor types, enums, and format metadata
// shared by the gal facade and its backends.
//
// Fixed-function and sampler vocabulary shared with the wider gogpu
// ecosystem (filter modes, compare functions, blend factors, topologies)
// comes from github.com/gogpu/gputypes; concepts specific to the explicit
// resource-state model (formats with block metadata, bind flags, resource
// states) are defined here.
package types
