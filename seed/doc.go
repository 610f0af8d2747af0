// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package seed turns human-readable layer seeds into the block of
// pseudo-random words consumed by the noise programs.
//
// A base seed string is hashed with SHA-512 and the digest seeds a
// xoroshiro1024++ generator. The same string always yields the same words,
// independent of every other layer.
package seed
