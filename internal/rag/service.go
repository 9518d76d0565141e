// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

// Package rag wraps the managed retrieval corpus backend. The Service
// interface is the seam between orchestration and the Vertex AI client;
// chunking, embedding, throttling, and failure bookkeeping all happen
// on the remote side.
package rag

import (
	"context"
	"time"
)

// CorpusSpec describes a corpus to be created.
type CorpusSpec struct {
	DisplayName    string
	Description    string
	EmbeddingModel string
}

// Corpus is a remote corpus resource.
type Corpus struct {
	Name        string
	DisplayName string
	Description string
	CreateTime  time.Time
}

// ImportSpec describes a single file-import call.
type ImportSpec struct {
	CorpusName      string
	Paths           []string
	ChunkSize       int
	ChunkOverlap    int
	MaxEmbeddingRPM int
	ResultsSink     string
	FailuresSink    string
}

// ImportStats are the counters the import operation reports back.
type ImportStats struct {
	Imported int64
	Skipped  int64
	Failed   int64
}

// Service is the remote corpus backend. Implementations block until the
// underlying operation completes or ctx is done.
type Service interface {
	CreateCorpus(ctx context.Context, spec CorpusSpec) (Corpus, error)
	ImportFiles(ctx context.Context, spec ImportSpec) (ImportStats, error)
	ListCorpora(ctx context.Context) ([]Corpus, error)
	GetCorpus(ctx context.Context, name string) (Corpus, error)
	DeleteCorpus(ctx context.Context, name string) error
	Close() error
}
