// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package export turns the normalized output of a pipeline into files.
//
// The target is validated before anything is read back, so a rejected
// export never touches the device or the file system. A readback is
// pixel-packed from the device storage layout into an Image holding
// OutputSpec-sized texels, which is then written as raw little-endian
// binary or as PNG.
//
// Runner executes exports asynchronously with a bounded number of
// concurrent encoders. The readback itself stays on the caller's goroutine.
package export
