// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package reload hot-reloads shader programs from an override directory.
//
// A Watcher runs on its own goroutine and only reads files. The goroutine
// that owns the device drains it between frames:
//
//	w, _ := reload.New(lib, reload.WithValidator(validator))
//	go w.Run(ctx)
//
//	for {
//	    if _, err := w.Apply(p, sched); err != nil {
//	        log.Print(err) // previous programs stay active
//	    }
//	    sched.Frame(ctx)
//	}
package reload
