// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import (
	"sync"

	"github.com/gogpu/gal/types"
)

// BackendFactory creates a backend instance from setup parameters.
// Factories allow lazy initialization of backends that may fail when
// drivers are unavailable.
type BackendFactory func(params *types.SetupParams) (Backend, error)

// BackendDescriptor is the registration record a backend plugin exports:
// an API name plus a create entry point. Teardown goes through the created
// backend's Destroy method.
type BackendDescriptor struct {
	// API names the backend ("software", "d3d12", "vulkan", ...).
	API string
	// CreateBackend constructs the backend.
	CreateBackend BackendFactory
}

var (
	// backendsMu protects the descriptor registry.
	backendsMu sync.RWMutex

	// backends maps API name to registered descriptor.
	backends = make(map[string]BackendDescriptor)

	// backendOrder preserves registration order for default selection.
	backendOrder []string
)

// RegisterBackend registers a backend descriptor. Typically called from
// init functions in backend packages. Registering the same API name again
// replaces the previous registration.
func RegisterBackend(desc BackendDescriptor) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, ok := backends[desc.API]; !ok {
		backendOrder = append(backendOrder, desc.API)
	}
	backends[desc.API] = desc
}

// CreateBackend creates a backend for the API named in params. An empty API
// selects the first registered backend.
func CreateBackend(params *types.SetupParams) (Backend, error) {
	backendsMu.RLock()
	api := params.API
	if api == "" && len(backendOrder) > 0 {
		api = backendOrder[0]
	}
	desc, ok := backends[api]
	backendsMu.RUnlock()

	if !ok {
		return nil, ErrBackendNotFound
	}
	return desc.CreateBackend(params)
}

// AvailableBackends returns the registered API names in registration order.
func AvailableBackends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	out := make([]string, len(backendOrder))
	copy(out, backendOrder)
	return out
}
