// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farmersmark/corpusctl/internal/gcs"
)

// Params holds everything one ingest invocation needs.
type Params struct {
	Bucket          string
	Prefix          string
	DisplayName     string
	CorpusName      string
	EmbeddingModel  string
	ChunkSize       int
	ChunkOverlap    int
	MaxEmbeddingRPM int
	Timeout         time.Duration
}

// Result is the outcome of one ingest invocation.
type Result struct {
	CorpusName    string
	CorpusCreated bool
	SourcePath    string
	Sinks         gcs.ImportSinks
	Stats         ImportStats
}

// Ingestor orchestrates corpus provisioning and the import call. It is
// single-shot: one corpus target, one import, no local retries.
type Ingestor struct {
	svc    Service
	now    func() time.Time
	log    *slog.Logger
	notify func(corpusName string, created bool)
}

// IngestorOption customizes an Ingestor.
type IngestorOption func(*Ingestor)

// WithClock overrides the wall clock, used to pin sink timestamps in tests.
func WithClock(now func() time.Time) IngestorOption {
	return func(i *Ingestor) { i.now = now }
}

// WithLogger overrides the default slog logger.
func WithLogger(log *slog.Logger) IngestorOption {
	return func(i *Ingestor) { i.log = log }
}

// WithCorpusNotice registers a callback fired once the target corpus is
// resolved, before the import starts. A freshly created corpus costs
// money, so its resource name must reach the caller even when the
// import afterwards fails.
func WithCorpusNotice(fn func(corpusName string, created bool)) IngestorOption {
	return func(i *Ingestor) { i.notify = fn }
}

// NewIngestor wraps a Service.
func NewIngestor(svc Service, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		svc: svc,
		now: time.Now,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run ensures a corpus exists and triggers one import into it, blocking
// until the remote operation returns or the timeout elapses.
func (i *Ingestor) Run(ctx context.Context, p Params) (*Result, error) {
	runID := uuid.NewString()
	log := i.log.With("run_id", runID)

	result := &Result{
		SourcePath: gcs.NormalizePath(p.Bucket, p.Prefix),
		Sinks:      gcs.SinksFor(p.Bucket, i.now()),
	}

	corpusName := strings.TrimSpace(p.CorpusName)
	if corpusName != "" {
		log.Debug("reusing existing corpus", "corpus", corpusName)
		result.CorpusName = corpusName
	} else {
		spec := CorpusSpec{
			DisplayName:    p.DisplayName,
			Description:    describeCorpus(p),
			EmbeddingModel: p.EmbeddingModel,
		}
		log.Debug("creating corpus", "display_name", spec.DisplayName, "embedding_model", spec.EmbeddingModel)
		corpus, err := i.svc.CreateCorpus(ctx, spec)
		if err != nil {
			return nil, err
		}
		result.CorpusName = corpus.Name
		result.CorpusCreated = true
		log.Info("created corpus", "corpus", corpus.Name)
	}

	if i.notify != nil {
		i.notify(result.CorpusName, result.CorpusCreated)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	log.Info("starting import",
		"corpus", result.CorpusName,
		"source", result.SourcePath,
		"chunk_size", p.ChunkSize,
		"chunk_overlap", p.ChunkOverlap,
		"max_embedding_rpm", p.MaxEmbeddingRPM,
	)

	stats, err := i.svc.ImportFiles(ctx, ImportSpec{
		CorpusName:      result.CorpusName,
		Paths:           []string{result.SourcePath},
		ChunkSize:       p.ChunkSize,
		ChunkOverlap:    p.ChunkOverlap,
		MaxEmbeddingRPM: p.MaxEmbeddingRPM,
		ResultsSink:     result.Sinks.Results,
		FailuresSink:    result.Sinks.Failures,
	})
	if err != nil {
		return nil, err
	}

	result.Stats = stats
	log.Info("import finished", "imported", stats.Imported, "skipped", stats.Skipped, "failed", stats.Failed)

	return result, nil
}

// describeCorpus embeds the chunking parameters in the corpus
// description so they are visible in the console.
func describeCorpus(p Params) string {
	return fmt.Sprintf(
		"FarmersMark production corpus. Chunking %d/%d, embedding %s.",
		p.ChunkSize, p.ChunkOverlap, p.EmbeddingModel,
	)
}
