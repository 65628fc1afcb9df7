// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/sploinkster/worsefirejail/config"
	"github.com/sploinkster/worsefirejail/fswhitelist"
	"github.com/sploinkster/worsefirejail/profile"
	"github.com/sploinkster/worsefirejail/trace"
)

// Builder runs one supervised trace of a target program and writes the
// synthesized profile.
type Builder struct {
	opts     Options
	settings *config.Settings
	logger   *slog.Logger
}

// New creates a Builder.
func New(opts Options) (*Builder, error) {
	if len(opts.Command) == 0 {
		return nil, fmt.Errorf("command is required")
	}
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}
	settings := opts.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{opts: opts, settings: settings, logger: logger}, nil
}

// Build performs the whole synthesis run and writes the profile to
// sink. An error here is the fatal tier: scratch allocation, spawn
// failure, or an unreadable isolation-event log, and nothing has been
// written to sink when one is returned. Everything else degrades into
// a smaller profile.
func (b *Builder) Build(sink io.Writer) error {
	arts, err := NewArtifacts(b.settings.TempDir)
	if err != nil {
		return err
	}
	if b.opts.Debug {
		b.logger.Info("debug mode, keeping trace artifacts",
			"trace", arts.Trace, "syscalls", arts.Syscalls)
	} else {
		defer arts.Remove()
	}

	argv, err := NewCommandBuilder().Build(b.settings, arts, &b.opts)
	if err != nil {
		return err
	}

	if b.opts.Debug {
		for i, tok := range argv {
			if i == 0 {
				fmt.Println(tok)
			} else {
				fmt.Printf("\t%s\n", tok)
			}
		}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	res, err := Supervise(cmd, b.opts.Timeout, b.logger)
	if err != nil {
		return err
	}
	switch {
	case res.TimedOut:
		b.logger.Warn("target terminated by timeout, building profile from partial trace")
	case res.State != nil:
		b.logger.Debug("target finished", "status", res.State.String())
	}

	// Detect protocols before writing anything. The isolation-event
	// log is produced unconditionally by firejail, so failing to read
	// it means the run itself went wrong; aborting here keeps the
	// no-partial-output guarantee.
	obs, err := trace.DetectProtocols(arts.Trace)
	if err != nil {
		return err
	}

	set := trace.ExtractSyscalls(arts.Syscalls)
	b.logger.Debug("trace extracted",
		"syscalls", set.Len(), "families", obs.Families())

	// The run is over and nothing can fail fatally anymore; a sink that
	// shares the terminal with the target separates itself now, so the
	// target's output ends up above the line and the profile below it.
	if s, ok := sink.(interface{ Banner() }); ok {
		s.Banner()
	}

	p := profile.NewWriter(sink)
	b.writeProfile(p, arts, obs, set)
	return p.Err()
}

// writeProfile emits the document sections in their fixed order.
func (b *Builder) writeProfile(p *profile.Writer, arts *Artifacts, obs trace.ProtocolObservation, set *trace.SyscallSet) {
	profile.WriteHeader(p, b.opts.Command[0])
	profile.WriteBlacklistIncludes(p)

	p.Line("### Home Directory Whitelisting ###")
	p.Line("### If something goes wrong, this section is the first one to comment out.")
	p.Line("### Instead, you'll have to relay on the basic blacklisting above.")
	fswhitelist.Home(arts.Trace, p)
	p.Blank()

	p.Line("### Filesystem Whitelisting ###")
	fswhitelist.Run(arts.Trace, p)
	fswhitelist.RunUser(arts.Trace, p)
	if !b.opts.AppImage {
		fswhitelist.Share(arts.Trace, p)
	}
	fswhitelist.Var(arts.Trace, p)
	p.Blank()

	p.Line("#apparmor\t# if you have AppArmor running, try this one!")
	if b.opts.CapsKeep != "" {
		p.Line("caps.keep %s", b.opts.CapsKeep)
	}
	p.Line("ipc-namespace")
	p.Line("#no3d\t# disable 3D acceleration")
	p.Line("#nodvd\t# disable DVD and CD devices")
	p.Line("#nogroups\t# disable supplementary user groups")
	p.Line("#noinput\t# disable input devices")
	p.Line("nonewprivs")
	p.Line("noroot")
	p.Line("#notv\t# disable DVB TV devices")
	p.Line("#nou2f\t# disable U2F devices")
	p.Line("#novideo\t# disable video capture devices")
	_ = obs.WriteDirectives(p)
	_ = set.WriteDirective(p)
	p.Line("#tracelog\t# send blacklist violations to syslog")
	p.Blank()

	p.Line("#disable-mnt\t# no access to /mnt, /media, /run/mount and /run/media")
	if !b.opts.AppImage {
		fswhitelist.Bin(arts.Trace, p)
	}
	p.Line("#private-cache\t# run with an empty ~/.cache directory")
	fswhitelist.Dev(arts.Trace, p)
	fswhitelist.Etc(arts.Trace, p)
	p.Line("#private-lib")
	fswhitelist.Tmp(arts.Trace, p)
	p.Blank()

	p.Line("#dbus-user none")
	p.Line("#dbus-system none")
	p.Blank()
	p.Line("#memory-deny-write-execute")
}
