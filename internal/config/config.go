// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

// Config is the top-level corpusctl configuration.
type Config struct {
	Project  string       `mapstructure:"project"`
	Location string       `mapstructure:"location"`
	Bucket   string       `mapstructure:"bucket"`
	Prefix   string       `mapstructure:"prefix"`
	Corpus   CorpusConfig `mapstructure:"corpus"`
	Import   ImportConfig `mapstructure:"import"`
}

// CorpusConfig controls corpus provisioning.
type CorpusConfig struct {
	// Name is an existing corpus resource name. When set, creation is
	// skipped and the corpus is reused as-is.
	Name           string `mapstructure:"name"`
	DisplayName    string `mapstructure:"display_name"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// ImportConfig controls the import call parameters. All of these are
// passed through to the remote service, which owns their enforcement.
type ImportConfig struct {
	ChunkSize       int `mapstructure:"chunk_size"`
	ChunkOverlap    int `mapstructure:"chunk_overlap"`
	MaxEmbeddingRPM int `mapstructure:"max_embedding_rpm"`
	TimeoutSeconds  int `mapstructure:"timeout_seconds"`
}

// Timeout returns the import timeout as a duration.
func (c ImportConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SetDefaults installs default values on the given Viper.
func SetDefaults(v *viper.Viper) {
	// project and bucket default to empty so the keys are always known
	// to Viper and env-only values survive Unmarshal.
	v.SetDefault("project", "")
	v.SetDefault("bucket", "")
	v.SetDefault("location", "us-west1")
	v.SetDefault("prefix", "")
	v.SetDefault("corpus.name", "")
	v.SetDefault("corpus.display_name", "farmersmark-best-corpus")
	v.SetDefault("corpus.embedding_model", "publishers/google/models/text-embedding-005")
	v.SetDefault("import.chunk_size", 768)
	v.SetDefault("import.chunk_overlap", 128)
	v.SetDefault("import.max_embedding_rpm", 900)
	v.SetDefault("import.timeout_seconds", 1800)
}

// SetupEnv binds CORPUSCTL_* environment variables.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("CORPUSCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper unmarshals and validates the configuration resolved by the
// given Viper (flags > env > file > defaults).
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, cperr.Errorf(cperr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, cperr.Errorf(cperr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks individual fields for logical errors, collecting all
// issues rather than stopping at the first one. Cross-field rules
// (chunk overlap versus size, model quotas) are owned by the remote
// service and intentionally not checked here.
func (c *Config) Validate() []error {
	var errs []error

	if c.Location == "" {
		errs = append(errs, cperr.Errorf(cperr.CodeConfigValidateInvalidValue, "config: location must not be empty"))
	}

	if c.Corpus.DisplayName == "" {
		errs = append(errs, cperr.Errorf(cperr.CodeConfigValidateInvalidValue, "config: corpus.display_name must not be empty"))
	}

	if c.Corpus.EmbeddingModel == "" {
		errs = append(errs, cperr.Errorf(cperr.CodeConfigValidateInvalidValue, "config: corpus.embedding_model must not be empty"))
	}

	if c.Import.ChunkSize <= 0 {
		errs = append(errs, cperr.Errorf(cperr.CodeConfigValidateInvalidValue,
			"config: import.chunk_size must be greater than 0, got %d", c.Import.ChunkSize))
	}

	if c.Import.ChunkOverlap < 0 {
		errs = append(errs, cperr.Errorf(cperr.CodeConfigValidateInvalidValue,
			"config: import.chunk_overlap must not be negative, got %d", c.Import.ChunkOverlap))
	}

	if c.Import.MaxEmbeddingRPM <= 0 {
		errs = append(errs, cperr.Errorf(cperr.CodeConfigValidateInvalidValue,
			"config: import.max_embedding_rpm must be greater than 0, got %d", c.Import.MaxEmbeddingRPM))
	}

	if c.Import.TimeoutSeconds <= 0 {
		errs = append(errs, cperr.Errorf(cperr.CodeConfigValidateInvalidValue,
			"config: import.timeout_seconds must be greater than 0, got %d", c.Import.TimeoutSeconds))
	}

	return errs
}
