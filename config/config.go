// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings configures the profile builder's environment.
type Settings struct {
	// FirejailPath is the sandbox binary that wraps the traced run.
	FirejailPath string `yaml:"firejail_path"`

	// StracePath is the syscall tracer run inside the sandbox.
	StracePath string `yaml:"strace_path"`

	// TempDir is where trace scratch files are allocated. Empty
	// selects the system temporary directory.
	TempDir string `yaml:"temp_dir,omitempty"`
}

// Default returns the stock settings.
func Default() *Settings {
	return &Settings{
		FirejailPath: "/usr/bin/firejail",
		StracePath:   "/usr/bin/strace",
	}
}

// SearchPaths returns the config file locations in load order: the
// system file first, then the user's, so the user file wins.
func SearchPaths() []string {
	paths := []string{"/etc/worsefirejail/config.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "worsefirejail", "config.yaml"))
	}
	return paths
}

// Load overlays every config file found on the search paths onto the
// defaults. Missing files are skipped; a file that exists but cannot
// be parsed is an error.
func Load() (*Settings, error) {
	s := Default()
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := loadInto(path, s); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads settings from one YAML file, overlaid onto the
// defaults.
func LoadFile(path string) (*Settings, error) {
	s := Default()
	if err := loadInto(path, s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadInto(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the builder cannot work with.
func (s *Settings) Validate() error {
	if s.FirejailPath == "" {
		return fmt.Errorf("firejail_path must not be empty")
	}
	if s.StracePath == "" {
		return fmt.Errorf("strace_path must not be empty")
	}
	return nil
}
