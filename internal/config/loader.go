package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidASRProviders lists the recognised ASR provider names.
var ValidASRProviders = []string{"whisper", "whisper-native", "mock"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
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

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
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

	// Database
	if cfg.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}

	// ASR
	if cfg.ASR.Provider != "" && !slices.Contains(ValidASRProviders, cfg.ASR.Provider) {
		errs = append(errs, fmt.Errorf("asr.provider %q is unknown; valid values: %v", cfg.ASR.Provider, ValidASRProviders))
	}
	switch cfg.ASR.Provider {
	case "whisper":
		if cfg.ASR.ServerURL == "" {
			errs = append(errs, errors.New(`asr.provider "whisper" requires asr.server_url`))
		}
	case "whisper-native":
		if cfg.ASR.ModelPath == "" {
			errs = append(errs, errors.New(`asr.provider "whisper-native" requires asr.model_path`))
		}
	}
	if cfg.ASR.Timeout < 0 {
		errs = append(errs, fmt.Errorf("asr.timeout %v must not be negative", cfg.ASR.Timeout))
	}
	if cfg.ASR.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("asr.max_concurrent %d must not be negative", cfg.ASR.MaxConcurrent))
	}

	// Scoring
	if cfg.Scoring.Prosody != "" && !cfg.Scoring.Prosody.IsValid() {
		errs = append(errs, fmt.Errorf("scoring.prosody %q is invalid; valid values: baseline, heuristic", cfg.Scoring.Prosody))
	}

	// Storage
	if cfg.Storage.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("storage.retention_days %d must not be negative", cfg.Storage.RetentionDays))
	}

	// Auth
	for token, user := range cfg.Auth.Tokens {
		if token == "" {
			errs = append(errs, fmt.Errorf("auth.tokens contains an empty token for user %q", user))
		}
		if user == "" {
			errs = append(errs, errors.New("auth.tokens contains a token mapped to an empty user ID"))
		}
	}

	return errors.Join(errs...)
}
