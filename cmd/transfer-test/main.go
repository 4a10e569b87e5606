// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command transfer-test drives the software backend through an
// update → copy → readback round trip and prints the result. It is a
// smoke test for the facade surface; run it after changing the compiler
// or the allocators.
package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gal"
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/hal/software"
	"github.com/gogpu/gal/types"
)

func main() {
	hal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "transfer-test:", err)
		os.Exit(1)
	}
	fmt.Println("transfer-test: OK")
}

func run() error {
	mgr, err := gal.New(types.SetupParams{API: software.API, DebugFlags: types.DebugRuntime})
	if err != nil {
		return err
	}
	defer mgr.Destroy()

	adapters, err := mgr.EnumerateAdapters()
	if err != nil {
		return err
	}
	for i, a := range adapters {
		fmt.Printf("adapter %d: %s\n", i, a.Name)
	}
	if err := mgr.Initialize(0); err != nil {
		return err
	}

	src, err := mgr.CreateBuffer(types.BufferDesc{Size: 1 << 20, BindFlags: types.BindShaderResource}, nil, "src")
	if err != nil {
		return err
	}
	dst, err := mgr.CreateBuffer(types.BufferDesc{Size: 1 << 20}, nil, "readback")
	if err != nil {
		return err
	}
	fence, err := mgr.CreateFence(0, "frame fence")
	if err != nil {
		return err
	}
	cl, err := mgr.CreateCommandList("transfer")
	if err != nil {
		return err
	}

	payload := make([]byte, 32)
	for i, f := range []float32{1, 2, 3, 4, 0.1, 0.2, 0.3, 0.4} {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(f))
	}

	rec := mgr.NewRecorder(0)
	ev := rec.Event(0, "upload and copy")
	if err := rec.UpdateBuffer(src, 0, payload); err != nil {
		return err
	}
	if err := rec.CopyBuffer(dst, 0, src, 0, 1<<20); err != nil {
		return err
	}
	ev.End()

	if err := mgr.CompileCommandList(cl, rec); err != nil {
		return err
	}
	if err := mgr.SubmitCommandList(cl); err != nil {
		return err
	}
	if err := mgr.SignalFence(fence, 1); err != nil {
		return err
	}
	if err := mgr.WaitFence(fence, 1); err != nil {
		return err
	}

	got := make([]byte, 32)
	if err := mgr.ReadbackBuffer(dst, 0, got); err != nil {
		return err
	}
	if !bytes.Equal(got, payload) {
		return fmt.Errorf("readback mismatch: got %x want %x", got, payload)
	}

	return mgr.NextFrame()
}
