package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Acoustic backend
	if cfg.Acoustic.Backend != "" && !cfg.Acoustic.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("acoustic.backend %q is invalid; valid values: heuristic, speechace", cfg.Acoustic.Backend))
	}
	if cfg.Acoustic.Backend == BackendSpeechAce && cfg.Acoustic.APIKey == "" {
		errs = append(errs, errors.New("acoustic.api_key is required when acoustic.backend is speechace"))
	}
	if cfg.Acoustic.Timeout < 0 {
		errs = append(errs, fmt.Errorf("acoustic.timeout %s must not be negative", cfg.Acoustic.Timeout))
	}

	// Progress store
	if cfg.Progress.Store != "" && !cfg.Progress.Store.IsValid() {
		errs = append(errs, fmt.Errorf("progress.store %q is invalid; valid values: memory, file, postgres", cfg.Progress.Store))
	}
	switch cfg.Progress.Store {
	case StoreFile:
		if cfg.Progress.FilePath == "" {
			errs = append(errs, errors.New("progress.file_path is required when progress.store is file"))
		}
	case StorePostgres:
		if cfg.Progress.PostgresDSN == "" {
			errs = append(errs, errors.New("progress.postgres_dsn is required when progress.store is postgres"))
		}
	case StoreMemory, "":
		if cfg.Progress.PostgresDSN == "" && cfg.Progress.FilePath == "" {
			slog.Warn("progress store is in-memory; history is lost on restart")
		}
	}

	return errors.Join(errs...)
}
