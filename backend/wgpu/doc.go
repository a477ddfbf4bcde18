// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides a GPU device provider and texture allocator for
// xrhost backed by gogpu/wgpu HAL.
//
// Open selects a HAL backend, enumerates adapters (preferring discrete
// and integrated GPUs), and opens a logical device. The resulting
// Provider implements both resources.DeviceHandle and
// resources.TextureAllocator, so it plugs straight into Host.Initialize:
//
//	provider, err := wgpu.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	host := xrhost.New(scene)
//	if err := host.Initialize(provider, provider); err != nil {
//	    log.Fatal(err)
//	}
package wgpu
