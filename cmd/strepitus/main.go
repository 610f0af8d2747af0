// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command strepitus renders layered noise textures from a project file.
//
// Usage:
//
//	strepitus <command> [flags]
//
// Commands:
//
//	init      write a default config and project
//	generate  render a project and print a summary
//	export    render a project and write it to one or more files
//	preview   render the viewer blit of a project into a PNG
//	watch     re-render on project or shader edits
//	formats   list output formats and the containers that accept them
//	seed      print default layer seeds and derived seed words
//	version   print the version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/gogpu/strepitus"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"init", "write a default config and project", runInit},
	{"generate", "render a project and print a summary", runGenerate},
	{"export", "render a project and write it to one or more files", runExport},
	{"preview", "render the viewer blit of a project into a PNG", runPreview},
	{"watch", "re-render on project or shader edits", runWatch},
	{"formats", "list output formats and the containers that accept them", runFormats},
	{"seed", "print default layer seeds and derived seed words", runSeed},
	{"version", "print the version", runVersion},
}

// env is what every command writes to.
type env struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	lookup func(string) (string, bool)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin, lookup: os.LookupEnv}
	if err := run(ctx, e, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			color.New(color.FgRed, color.Bold).Fprintf(e.stderr, "strepitus: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" || args[0] == "--help" {
		usage(e.stderr)
		if len(args) == 0 {
			return flag.ErrHelp
		}
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, e, args[1:])
		}
	}
	usage(e.stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: strepitus <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'strepitus <command> -h' for the flags of a command.")
}

func runVersion(_ context.Context, e *env, _ []string) error {
	fmt.Fprintf(e.stdout, "strepitus %s\n", strepitus.Version)
	return nil
}
