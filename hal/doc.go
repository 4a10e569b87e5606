// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hal defines the backend contract of gal: the Backend interface a
// GPU driver implements, the registry backends register themselves with,
// and the shared logger.
//
// Backends live in subpackages (hal/software is the in-tree reference
// implementation); native driver backends are replaceable plugins that
// implement the same contract.
package hal
