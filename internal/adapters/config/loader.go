// Package config provides the static configuration loader for lode.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"go.trai.ch/lode/internal/core/domain"
	"go.trai.ch/lode/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Filename is the configuration file looked up in the working directory.
const Filename = "lode.yaml"

const (
	defaultRegistry        = "https://registry.npmjs.org"
	defaultHTTPTimeout     = 30 * time.Second
	defaultMetaCacheMaxAge = 15 * time.Minute
)

// Loader implements ports.ConfigLoader using a YAML file. A missing file is
// not an error; every field falls back to a default.
type Loader struct {
	Filename string
}

// NewLoader creates a Loader reading the default filename.
func NewLoader() *Loader {
	return &Loader{Filename: Filename}
}

type fileConfig struct {
	StoreDir        string     `yaml:"storeDir"`
	MetaCacheDir    string     `yaml:"metaCacheDir"`
	Registry        string     `yaml:"registry"`
	MetaCacheMaxAge string     `yaml:"metaCacheMaxAge"`
	HTTP            httpConfig `yaml:"http"`
}

type httpConfig struct {
	Timeout string            `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// Load reads the configuration from the given working directory.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	var file fileConfig

	path := filepath.Join(cwd, l.Filename)
	data, err := os.ReadFile(path) //nolint:gosec // Path is the conventional config file in cwd
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, zerr.Wrap(err, "failed to read config file")
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, zerr.Wrap(err, "failed to parse config file")
		}
	}

	settings := &domain.Settings{
		StoreDir:        file.StoreDir,
		MetaCacheDir:    file.MetaCacheDir,
		RegistryURL:     file.Registry,
		MetaCacheMaxAge: defaultMetaCacheMaxAge,
		HTTPTimeout:     defaultHTTPTimeout,
		HTTPHeaders:     file.HTTP.Headers,
	}

	if settings.StoreDir == "" {
		settings.StoreDir = filepath.Join(xdg.CacheHome, "lode", "store")
	}
	if settings.MetaCacheDir == "" {
		settings.MetaCacheDir = filepath.Join(xdg.CacheHome, "lode", "meta")
	}
	if settings.RegistryURL == "" {
		settings.RegistryURL = defaultRegistry
	}
	if settings.HTTPHeaders == nil {
		settings.HTTPHeaders = map[string]string{}
	}

	if file.HTTP.Timeout != "" {
		d, err := time.ParseDuration(file.HTTP.Timeout)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid http timeout"), "value", file.HTTP.Timeout)
		}
		settings.HTTPTimeout = d
	}
	if file.MetaCacheMaxAge != "" {
		d, err := time.ParseDuration(file.MetaCacheMaxAge)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid metaCacheMaxAge"), "value", file.MetaCacheMaxAge)
		}
		settings.MetaCacheMaxAge = d
	}

	return settings, nil
}
