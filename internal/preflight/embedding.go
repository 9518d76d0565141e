// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

// Package preflight probes the embedding model before an import is
// launched, so a bad model reference fails in seconds instead of
// surfacing from a half-hour import operation.
package preflight

import (
	"context"
	"strings"

	"google.golang.org/genai"

	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

const probeText = "corpusctl embedding probe"

// EmbeddingProbe issues a single test embedding through the Vertex
// backend using application default credentials.
type EmbeddingProbe struct {
	client *genai.Client
}

// NewEmbeddingProbe creates a probe bound to a project and location.
func NewEmbeddingProbe(ctx context.Context, project, location string) (*EmbeddingProbe, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  project,
		Location: location,
	})
	if err != nil {
		return nil, cperr.Wrapf(err, cperr.CodePreflightClientFailure, "creating genai client")
	}
	return &EmbeddingProbe{client: client}, nil
}

// Check embeds a short test string with the given model and returns the
// embedding dimensionality.
func (p *EmbeddingProbe) Check(ctx context.Context, model string) (int, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(probeText, genai.RoleUser),
	}

	resp, err := p.client.Models.EmbedContent(ctx, ModelID(model), contents, nil)
	if err != nil {
		return 0, cperr.Wrap(err, cperr.CodePreflightEmbeddingFailure, "test embedding failed", cperr.Field("model", model))
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return 0, cperr.New(cperr.CodePreflightEmbeddingFailure, "model returned no embedding", cperr.Field("model", model))
	}

	return len(resp.Embeddings[0].Values), nil
}

// ModelID reduces a publisher path like
// "publishers/google/models/text-embedding-005" to the bare model id
// the genai SDK expects. Bare ids pass through unchanged.
func ModelID(model string) string {
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		return model[idx+1:]
	}
	return model
}
