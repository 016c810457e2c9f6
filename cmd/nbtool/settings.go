package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/fs"
	"github.com/akeil/notebook/pkg/sqlite"
)

const appName = "nbtool"

// settings are read from a YAML file and can be overridden with
// command line flags or NBTOOL_* environment variables.
type settings struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	LogLevel string `yaml:"loglevel"`
	Listen   string `yaml:"listen"`
}

func defaultSettings() settings {
	return settings{
		Backend:  "fs",
		Path:     filepath.Join(dataDir(), appName, "notebook"),
		LogLevel: "warning",
		Listen:   "localhost:8640",
	}
}

func configDir() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

// loadSettings reads settings from the given file.
// If path is empty, the default location is used and a missing file is
// not an error.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()
	explicit := path != ""
	if !explicit {
		path = filepath.Join(configDir(), appName, "config.yaml")
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return s, nil
		}
		return s, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(&s)
	if err != nil {
		return s, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return s, nil
}

// override replaces settings with non-empty values.
func (s settings) override(backend, path, logLevel, listen string) settings {
	if backend != "" {
		s.Backend = backend
	}
	if path != "" {
		s.Path = path
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	if listen != "" {
		s.Listen = listen
	}
	return s
}

// openStorage opens the configured backend.
// The returned function releases the storage.
func openStorage(s settings) (nb.Storage, func(), error) {
	switch s.Backend {
	case "fs", "":
		st, err := fs.New(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	case "sqlite":
		err := os.MkdirAll(filepath.Dir(s.Path), 0755)
		if err != nil {
			return nil, nil, err
		}
		st, err := sqlite.Open(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend %q, choose one of 'fs', 'sqlite'", s.Backend)
	}
}

// openNotebook opens the configured storage and reads the notebook.
// The returned function releases the storage.
func openNotebook(s settings) (*nb.Notebook, func(), error) {
	st, closer, err := openStorage(s)
	if err != nil {
		return nil, nil, err
	}
	book, err := nb.Open(st)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return book, closer, nil
}
