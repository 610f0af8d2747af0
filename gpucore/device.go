// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucore

import "context"

// Device abstracts over the compute backends.
//
// Implementations must be safe for use by one submitting goroutine at a
// time; SourceValidator implementations must additionally be safe to call
// concurrently with submission.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying a resource while a batch using it is in flight is undefined
//   - IDs become invalid after destruction and are never reused
type Device interface {
	// Name returns the backend identifier (e.g. "cpu", "wgpu").
	Name() string

	// CreateProgram compiles a compute program. A source that fails to
	// compile returns an error wrapping ErrShaderCompile.
	CreateProgram(src ProgramSource) (ProgramID, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// CreateBuffer allocates a zero-filled buffer.
	CreateBuffer(desc BufferDesc) (BufferID, error)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// WriteBuffer uploads data at the given byte offset.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// ReadBuffer copies size bytes at offset back to the host. The buffer
	// must have BufferUsageMapRead. It blocks until prior batches are done.
	ReadBuffer(ctx context.Context, id BufferID, offset, size uint64) ([]byte, error)

	// BeginCommands starts a command batch.
	BeginCommands(label string) (CommandEncoder, error)

	// Destroy releases the device. Resources still alive are released too.
	Destroy()
}

// CommandEncoder records one batch of commands.
//
// Usage:
//  1. Obtain an encoder from Device.BeginCommands()
//  2. Record dispatches, copies and barriers
//  3. Call Finish() to submit and wait, or Discard() to drop the batch
//
// The encoder is single-use.
type CommandEncoder interface {
	// Dispatch records a compute dispatch.
	Dispatch(d DispatchDesc) error

	// CopyBuffer records a copy of size bytes from the start of src to the
	// start of dst.
	CopyBuffer(src, dst BufferID, size uint64) error

	// Barrier records a barrier between the preceding and following commands.
	Barrier(kind BarrierKind)

	// Finish submits the batch and waits for it to complete.
	Finish(ctx context.Context) error

	// Discard drops the batch without executing it.
	Discard()
}

// SourceValidator is implemented by devices that can check a program source
// without creating GPU objects. It may be called from any goroutine.
type SourceValidator interface {
	ValidateSource(src ProgramSource) error
}
