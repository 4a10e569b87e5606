// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package gal is a low-level, multi-backend GPU abstraction layer modelled
// on explicit graphics APIs (D3D12/Vulkan style).
//
// Resources are identified by generation-safe handles, GPU work is recorded
// into reusable command lists, and a command-list compiler emits native
// commands while tracking resource-state transitions automatically: every
// touched resource starts and ends a command list in its default state.
//
// Basic usage:
//
//	mgr, err := gal.New(types.SetupParams{API: software.API})
//	if err != nil { ... }
//	defer mgr.Destroy()
//
//	adapters, _ := mgr.EnumerateAdapters()
//	_ = mgr.Initialize(0)
//
//	buf, _ := mgr.CreateBuffer(types.BufferDesc{Size: 1024}, nil, "scratch")
//
//	rec := mgr.NewRecorder(0)
//	_ = rec.UpdateBuffer(buf, 0, payload)
//
//	cl, _ := mgr.CreateCommandList("frame")
//	_ = mgr.CompileCommandList(cl, rec)
//	_ = mgr.SubmitCommandList(cl)
package gal
