// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucore

import "testing"

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		n, size, want uint32
	}{
		{0, 16, 0},
		{1, 16, 1},
		{16, 16, 1},
		{17, 16, 2},
		{4, 32, 1},
		{512, 32, 16},
		{7, 0, 0},
	}
	for _, tt := range tests {
		if got := WorkgroupCount(tt.n, tt.size); got != tt.want {
			t.Errorf("WorkgroupCount(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestBufferUsageHas(t *testing.T) {
	u := BufferUsageStorage | BufferUsageCopySrc
	if !u.Has(BufferUsageStorage) || !u.Has(BufferUsageStorage|BufferUsageCopySrc) {
		t.Error("Has should report set flags")
	}
	if u.Has(BufferUsageMapRead) {
		t.Error("Has reported an unset flag")
	}
}

func TestProgramSourceEntry(t *testing.T) {
	src := ProgramSource{Name: "reset"}
	if src.Entry() != "main" {
		t.Errorf("default entry = %q", src.Entry())
	}
	src.EntryPoint = "cs"
	if src.Entry() != "cs" {
		t.Errorf("entry = %q", src.Entry())
	}
}

func TestKindStrings(t *testing.T) {
	if BarrierStorage.String() != "storage" || BarrierImageAccess.String() != "image-access" {
		t.Error("barrier names")
	}
	if BindingReadOnlyStorage.String() != "read-only-storage" || BindingType(0).String() != "unknown" {
		t.Error("binding names")
	}
}
