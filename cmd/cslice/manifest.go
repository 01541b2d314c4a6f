package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const noCsliceTomlMessage = "no cslice.toml found\nplease specify the snapshot explicitly, e.g.:\n  cslice export path/to/program.mp"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Program programConfig `toml:"program"`
	Export  exportConfig  `toml:"export"`
}

type programConfig struct {
	Snapshot string `toml:"snapshot"`
}

type exportConfig struct {
	Out string `toml:"out"`
}

func findCsliceToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "cslice.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findCsliceToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("program") {
		return projectConfig{}, fmt.Errorf("%s: missing [program]", path)
	}
	if !meta.IsDefined("program", "snapshot") || strings.TrimSpace(cfg.Program.Snapshot) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [program].snapshot", path)
	}
	return cfg, nil
}

// resolveSnapshotPath picks the snapshot from the command line, or falls back
// to the manifest discovered by walking up from the working directory.
func resolveSnapshotPath(args []string) (string, *projectManifest, error) {
	if len(args) > 0 {
		return args[0], nil, nil
	}
	manifest, ok, err := loadProjectManifest(".")
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, errors.New(noCsliceTomlMessage)
	}
	snap := filepath.Join(manifest.Root, filepath.FromSlash(manifest.Config.Program.Snapshot))
	return snap, manifest, nil
}
