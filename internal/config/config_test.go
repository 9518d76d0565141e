// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package config_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmersmark/corpusctl/internal/config"
	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

func newViperWithDefaults() *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	return v
}

func TestFromViperAppliesDefaults(t *testing.T) {
	cfg, err := config.FromViper(newViperWithDefaults())
	require.NoError(t, err)

	assert.Equal(t, "us-west1", cfg.Location)
	assert.Equal(t, "farmersmark-best-corpus", cfg.Corpus.DisplayName)
	assert.Equal(t, "publishers/google/models/text-embedding-005", cfg.Corpus.EmbeddingModel)
	assert.Equal(t, 768, cfg.Import.ChunkSize)
	assert.Equal(t, 128, cfg.Import.ChunkOverlap)
	assert.Equal(t, 900, cfg.Import.MaxEmbeddingRPM)
	assert.Equal(t, 1800, cfg.Import.TimeoutSeconds)
}

func TestFromViperOverrides(t *testing.T) {
	v := newViperWithDefaults()
	v.Set("project", "farmersmark-agriculture")
	v.Set("bucket", "farmermarkpdfs")
	v.Set("import.chunk_size", 512)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "farmersmark-agriculture", cfg.Project)
	assert.Equal(t, "farmermarkpdfs", cfg.Bucket)
	assert.Equal(t, 512, cfg.Import.ChunkSize)
}

func TestFromViperEnvBinding(t *testing.T) {
	t.Setenv("CORPUSCTL_LOCATION", "europe-west4")

	v := newViperWithDefaults()
	config.SetupEnv(v)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "europe-west4", cfg.Location)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	v := newViperWithDefaults()
	v.Set("location", "")
	v.Set("import.chunk_size", 0)
	v.Set("import.max_embedding_rpm", -1)
	v.Set("import.timeout_seconds", 0)

	_, err := config.FromViper(v)
	require.Error(t, err)
	assert.True(t, cperr.HasCode(err, cperr.CodeConfigValidateInvalidValue))

	msg := err.Error()
	assert.Contains(t, msg, "location")
	assert.Contains(t, msg, "chunk_size")
	assert.Contains(t, msg, "max_embedding_rpm")
	assert.Contains(t, msg, "timeout_seconds")
}

func TestValidateAllowsZeroOverlap(t *testing.T) {
	v := newViperWithDefaults()
	v.Set("import.chunk_overlap", 0)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Import.ChunkOverlap)
}

func TestValidateRejectsNegativeOverlap(t *testing.T) {
	v := newViperWithDefaults()
	v.Set("import.chunk_overlap", -5)

	_, err := config.FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_overlap")
}

func TestImportTimeoutDuration(t *testing.T) {
	cfg := config.ImportConfig{TimeoutSeconds: 1800}
	assert.Equal(t, 30*time.Minute, cfg.Timeout())
}

func TestDefaultConfigYAMLParses(t *testing.T) {
	v := newViperWithDefaults()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(config.DefaultConfigYAML)))

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "us-west1", cfg.Location)
}
