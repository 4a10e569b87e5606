// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package software

import (
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/types"
)

// API is the backend's registered API name.
const API = "software"

func init() {
	hal.RegisterBackend(hal.BackendDescriptor{
		API: API,
		CreateBackend: func(params *types.SetupParams) (hal.Backend, error) {
			return New(params), nil
		},
	})
}
