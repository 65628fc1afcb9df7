// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

// worsefirejail builds a firejail profile by watching a program run.
//
// Usage:
//
//	worsefirejail [flags] [--] <program> [args...]
//
// The program is run once inside firejail with syscall tracing
// attached; the observed syscalls, socket families, and file accesses
// become a profile written to stdout or, with --output, to a new file.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/sploinkster/worsefirejail/builder"
	"github.com/sploinkster/worsefirejail/config"
	"github.com/sploinkster/worsefirejail/profile"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("worsefirejail", pflag.ContinueOnError)
	fs.SetInterspersed(false)

	output := fs.String("output", "", "write the profile to this file instead of stdout (the file must not exist)")
	capsKeep := fs.String("caps.keep", "", "capabilities to retain, forwarded to firejail and recorded in the profile")
	timeout := fs.Int("build-timeout", 0, "kill the traced program after this many seconds (0 waits forever)")
	appimage := fs.Bool("appimage", false, "build a reduced profile for a self-contained AppImage bundle")
	debug := fs.Bool("debug", false, "echo the traced command and keep the scratch trace files")
	configPath := fs.String("config", "", "settings file (default: standard search paths)")
	showVersion := fs.Bool("version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `worsefirejail - build a firejail profile from one traced run

USAGE
    worsefirejail [flags] [--] <program> [args...]

FLAGS
%s
EXAMPLES
    # Print a profile for transmission-gtk to stdout
    worsefirejail transmission-gtk

    # Write it to a file, give the run at most 60 seconds
    worsefirejail --output=transmission-gtk.profile --build-timeout=60 transmission-gtk

    # Keep two capabilities and trace an AppImage
    worsefirejail --caps.keep=net_bind_service,net_raw --appimage ./app.AppImage
`, fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println("worsefirejail " + version)
		return nil
	}

	command := fs.Args()
	if len(command) == 0 {
		fs.Usage()
		return fmt.Errorf("program to trace is required")
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var settings *config.Settings
	var err error
	if *configPath != "" {
		settings, err = config.LoadFile(*configPath)
	} else {
		settings, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Open the sink before anything is spawned: a bad output path must
	// fail the run with nothing half-done.
	sink, err := profile.OpenSink(*output)
	if err != nil {
		return err
	}
	defer sink.Close()

	b, err := builder.New(builder.Options{
		Command:  command,
		CapsKeep: *capsKeep,
		AppImage: *appimage,
		Timeout:  time.Duration(*timeout) * time.Second,
		Debug:    *debug,
		Logger:   logger,
		Settings: settings,
	})
	if err != nil {
		return err
	}
	return b.Build(sink)
}
