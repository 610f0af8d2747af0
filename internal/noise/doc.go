// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package noise holds the scalar math shared by the CPU kernels: lattice
// hashing, the four noise families in 2D and 3D, FBM summation, ordered
// dithering, quantization and the packed storage encodings.
//
// All arithmetic is float32 so the CPU device tracks the WGSL programs in
// shaders/ as closely as the hardware allows. Results on one device are
// bit-reproducible; results across devices are not.
package noise
