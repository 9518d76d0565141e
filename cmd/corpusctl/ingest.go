// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/farmersmark/corpusctl/internal/config"
	"github.com/farmersmark/corpusctl/internal/rag"
	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

// newRagService dials the Vertex backend. Exposed as a variable so
// tests can substitute a fake service.
var newRagService = func(ctx context.Context, project, location string) (rag.Service, error) {
	return rag.NewVertexService(ctx, project, location)
}

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Create a corpus (or reuse one) and import documents from GCS",
		Long: `Create a Vertex AI RAG corpus with the configured embedding backend,
or reuse an existing corpus, then trigger one managed import of all
documents under gs://<bucket>/<prefix>. Chunking, embedding, and
throttling run inside the service; corpusctl blocks until the import
operation returns and prints the resulting counters.`,
		RunE: runIngest,
	}

	cmd.Flags().String("bucket", "", "GCS bucket containing the documents")
	cmd.Flags().String("prefix", "", "optional GCS prefix inside the bucket")
	cmd.Flags().String("display-name", "", "corpus display name")
	cmd.Flags().String("corpus-name", "", "existing corpus resource name (skips creation)")
	cmd.Flags().String("embedding-model", "", "embedding model publisher path")
	cmd.Flags().Int("chunk-size", 0, "chunk size in tokens")
	cmd.Flags().Int("chunk-overlap", 0, "chunk overlap in tokens")
	cmd.Flags().Int("max-embedding-rpm", 0, "embedding requests per minute throttle")
	cmd.Flags().Int("timeout-seconds", 0, "import timeout in seconds")

	bindings := map[string]string{
		"bucket":                   "bucket",
		"prefix":                   "prefix",
		"corpus.display_name":      "display-name",
		"corpus.name":              "corpus-name",
		"corpus.embedding_model":   "embedding-model",
		"import.chunk_size":        "chunk-size",
		"import.chunk_overlap":     "chunk-overlap",
		"import.max_embedding_rpm": "max-embedding-rpm",
		"import.timeout_seconds":   "timeout-seconds",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}

	return cmd
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}
	if err := requireCoreSettings(cfg); err != nil {
		return err
	}

	ctx := cmd.Context()

	svc, err := newRagService(ctx, cfg.Project, cfg.Location)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	w := cmd.OutOrStdout()

	// The corpus notice prints before the import so the resource name
	// survives an import failure.
	ing := rag.NewIngestor(svc, rag.WithCorpusNotice(func(name string, created bool) {
		if created {
			fmt.Fprintln(w, "Created corpus:", name)
		} else {
			fmt.Fprintln(w, "Using existing corpus:", name)
		}
	}))

	result, err := ing.Run(ctx, rag.Params{
		Bucket:          cfg.Bucket,
		Prefix:          cfg.Prefix,
		DisplayName:     cfg.Corpus.DisplayName,
		CorpusName:      cfg.Corpus.Name,
		EmbeddingModel:  cfg.Corpus.EmbeddingModel,
		ChunkSize:       cfg.Import.ChunkSize,
		ChunkOverlap:    cfg.Import.ChunkOverlap,
		MaxEmbeddingRPM: cfg.Import.MaxEmbeddingRPM,
		Timeout:         cfg.Import.Timeout(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Source path:", result.SourcePath)
	fmt.Fprintln(w, "Imported files:", result.Stats.Imported)
	fmt.Fprintln(w, "Skipped files:", result.Stats.Skipped)
	fmt.Fprintln(w, "Import log:", result.Sinks.Results)
	fmt.Fprintln(w, "Failures log:", result.Sinks.Failures)

	return nil
}

// requireCoreSettings enforces the two settings every remote call
// needs. They may come from flags, env, or the config file, so this
// runs after resolution instead of cobra's MarkFlagRequired.
func requireCoreSettings(cfg *config.Config) error {
	if cfg.Project == "" {
		return cperr.New(cperr.CodeCLIInputInvalid, "project is required (set --project, CORPUSCTL_PROJECT, or the config file)")
	}
	if cfg.Bucket == "" {
		return cperr.New(cperr.CodeCLIInputInvalid, "bucket is required (set --bucket, CORPUSCTL_BUCKET, or the config file)")
	}
	return nil
}
