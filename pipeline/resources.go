// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"github.com/gogpu/strepitus/gpucore"
)

type resourceKind uint8

const (
	kindBuffer resourceKind = iota
	kindProgram
)

type resource struct {
	kind resourceKind
	id   uint64
}

// resources tracks every object a Pipeline created, in creation order.
type resources struct {
	dev  gpucore.Device
	list []resource
}

func (r *resources) buffer(desc gpucore.BufferDesc) (gpucore.BufferID, error) {
	id, err := r.dev.CreateBuffer(desc)
	if err != nil {
		return gpucore.InvalidID, err
	}
	r.list = append(r.list, resource{kind: kindBuffer, id: uint64(id)})
	return id, nil
}

func (r *resources) program(src gpucore.ProgramSource) (gpucore.ProgramID, error) {
	id, err := r.dev.CreateProgram(src)
	if err != nil {
		return gpucore.InvalidID, err
	}
	r.list = append(r.list, resource{kind: kindProgram, id: uint64(id)})
	return id, nil
}

func (r *resources) destroy(res resource) {
	switch res.kind {
	case kindBuffer:
		r.dev.DestroyBuffer(gpucore.BufferID(res.id))
	case kindProgram:
		r.dev.DestroyProgram(gpucore.ProgramID(res.id))
	}
}

// release destroys one object now. Unknown or invalid IDs are ignored.
func (r *resources) release(kind resourceKind, id uint64) {
	if id == gpucore.InvalidID {
		return
	}
	for i, res := range r.list {
		if res.kind == kind && res.id == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			r.destroy(res)
			return
		}
	}
}

func (r *resources) releaseBuffer(id gpucore.BufferID)   { r.release(kindBuffer, uint64(id)) }
func (r *resources) releaseProgram(id gpucore.ProgramID) { r.release(kindProgram, uint64(id)) }

// releaseAll destroys everything in reverse creation order.
func (r *resources) releaseAll() {
	for i := len(r.list) - 1; i >= 0; i-- {
		r.destroy(r.list[i])
	}
	r.list = nil
}

func (r *resources) len() int { return len(r.list) }
