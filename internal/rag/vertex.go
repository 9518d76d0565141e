// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

// VertexService implements Service against the Vertex AI RAG data API.
type VertexService struct {
	client   *aiplatform.VertexRagDataClient
	project  string
	location string
}

// NewVertexService dials the regional Vertex AI endpoint using
// application default credentials.
func NewVertexService(ctx context.Context, project, location string, opts ...option.ClientOption) (*VertexService, error) {
	endpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)
	opts = append([]option.ClientOption{option.WithEndpoint(endpoint)}, opts...)

	client, err := aiplatform.NewVertexRagDataClient(ctx, opts...)
	if err != nil {
		return nil, cperr.Wrapf(err, cperr.CodeCorpusCreateFailure, "creating Vertex RAG client for %s", endpoint)
	}

	return &VertexService{
		client:   client,
		project:  project,
		location: location,
	}, nil
}

func (s *VertexService) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", s.project, s.location)
}

// embeddingModelName expands a bare "publishers/..." path into a full
// resource name. Already-qualified names pass through unchanged.
func (s *VertexService) embeddingModelName(model string) string {
	if strings.HasPrefix(model, "projects/") {
		return model
	}
	return fmt.Sprintf("%s/%s", s.parent(), model)
}

func (s *VertexService) CreateCorpus(ctx context.Context, spec CorpusSpec) (Corpus, error) {
	req := &aiplatformpb.CreateRagCorpusRequest{
		Parent: s.parent(),
		RagCorpus: &aiplatformpb.RagCorpus{
			DisplayName: spec.DisplayName,
			Description: spec.Description,
			BackendConfig: &aiplatformpb.RagCorpus_VectorDbConfig{
				VectorDbConfig: &aiplatformpb.RagVectorDbConfig{
					RagEmbeddingModelConfig: &aiplatformpb.RagEmbeddingModelConfig{
						ModelConfig: &aiplatformpb.RagEmbeddingModelConfig_VertexPredictionEndpoint_{
							VertexPredictionEndpoint: &aiplatformpb.RagEmbeddingModelConfig_VertexPredictionEndpoint{
								Endpoint: s.embeddingModelName(spec.EmbeddingModel),
							},
						},
					},
				},
			},
		},
	}

	op, err := s.client.CreateRagCorpus(ctx, req)
	if err != nil {
		return Corpus{}, s.createError(err, spec.DisplayName)
	}

	created, err := op.Wait(ctx)
	if err != nil {
		return Corpus{}, s.createError(err, spec.DisplayName)
	}

	return corpusFromProto(created), nil
}

func (s *VertexService) createError(err error, displayName string) error {
	switch status.Code(err) {
	case codes.AlreadyExists:
		return cperr.Wrap(err, cperr.CodeCorpusCreateConflict, "corpus already exists", cperr.Field("display_name", displayName))
	case codes.PermissionDenied:
		return cperr.Wrap(err, cperr.CodeCorpusAccessDenied, "creating corpus", cperr.FieldProject(s.project))
	default:
		return cperr.Wrap(err, cperr.CodeCorpusCreateFailure, "creating corpus", cperr.Field("display_name", displayName))
	}
}

func (s *VertexService) ImportFiles(ctx context.Context, spec ImportSpec) (ImportStats, error) {
	req := &aiplatformpb.ImportRagFilesRequest{
		Parent: spec.CorpusName,
		ImportRagFilesConfig: &aiplatformpb.ImportRagFilesConfig{
			ImportSource: &aiplatformpb.ImportRagFilesConfig_GcsSource{
				GcsSource: &aiplatformpb.GcsSource{Uris: spec.Paths},
			},
			RagFileTransformationConfig: &aiplatformpb.RagFileTransformationConfig{
				RagFileChunkingConfig: &aiplatformpb.RagFileChunkingConfig{
					ChunkingConfig: &aiplatformpb.RagFileChunkingConfig_FixedLengthChunking_{
						FixedLengthChunking: &aiplatformpb.RagFileChunkingConfig_FixedLengthChunking{
							ChunkSize:    int32(spec.ChunkSize),
							ChunkOverlap: int32(spec.ChunkOverlap),
						},
					},
				},
			},
			MaxEmbeddingRequestsPerMin: int32(spec.MaxEmbeddingRPM),
			ImportResultSink: &aiplatformpb.ImportRagFilesConfig_ImportResultGcsSink{
				ImportResultGcsSink: &aiplatformpb.GcsDestination{OutputUriPrefix: spec.ResultsSink},
			},
			PartialFailureSink: &aiplatformpb.ImportRagFilesConfig_PartialFailureGcsSink{
				PartialFailureGcsSink: &aiplatformpb.GcsDestination{OutputUriPrefix: spec.FailuresSink},
			},
		},
	}

	op, err := s.client.ImportRagFiles(ctx, req)
	if err != nil {
		return ImportStats{}, s.importError(err, spec.CorpusName)
	}

	resp, err := op.Wait(ctx)
	if err != nil {
		return ImportStats{}, s.importError(err, spec.CorpusName)
	}

	return ImportStats{
		Imported: resp.GetImportedRagFilesCount(),
		Skipped:  resp.GetSkippedRagFilesCount(),
		Failed:   resp.GetFailedRagFilesCount(),
	}, nil
}

func (s *VertexService) importError(err error, corpusName string) error {
	if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
		return cperr.Wrap(err, cperr.CodeImportTimeout, "import did not finish in time", cperr.FieldCorpus(corpusName))
	}
	if status.Code(err) == codes.InvalidArgument {
		return cperr.Wrap(err, cperr.CodeImportRequestInvalid, "import request rejected", cperr.FieldCorpus(corpusName))
	}
	return cperr.Wrap(err, cperr.CodeImportUpstreamFailure, "importing files", cperr.FieldCorpus(corpusName))
}

func (s *VertexService) ListCorpora(ctx context.Context) ([]Corpus, error) {
	it := s.client.ListRagCorpora(ctx, &aiplatformpb.ListRagCorporaRequest{Parent: s.parent()})

	var corpora []Corpus
	for {
		c, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return corpora, nil
		}
		if err != nil {
			return nil, cperr.Wrap(err, cperr.CodeCorpusListFailure, "listing corpora", cperr.FieldProject(s.project))
		}
		corpora = append(corpora, corpusFromProto(c))
	}
}

func (s *VertexService) GetCorpus(ctx context.Context, name string) (Corpus, error) {
	c, err := s.client.GetRagCorpus(ctx, &aiplatformpb.GetRagCorpusRequest{Name: name})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Corpus{}, cperr.Wrap(err, cperr.CodeCorpusGetNotFound, "corpus not found", cperr.FieldCorpus(name))
		}
		return Corpus{}, cperr.Wrap(err, cperr.CodeCorpusListFailure, "fetching corpus", cperr.FieldCorpus(name))
	}
	return corpusFromProto(c), nil
}

func (s *VertexService) DeleteCorpus(ctx context.Context, name string) error {
	op, err := s.client.DeleteRagCorpus(ctx, &aiplatformpb.DeleteRagCorpusRequest{Name: name})
	if err != nil {
		return s.deleteError(err, name)
	}
	if err := op.Wait(ctx); err != nil {
		return s.deleteError(err, name)
	}
	return nil
}

func (s *VertexService) deleteError(err error, name string) error {
	if status.Code(err) == codes.NotFound {
		return cperr.Wrap(err, cperr.CodeCorpusGetNotFound, "corpus not found", cperr.FieldCorpus(name))
	}
	return cperr.Wrap(err, cperr.CodeCorpusDeleteFailure, "deleting corpus", cperr.FieldCorpus(name))
}

func (s *VertexService) Close() error {
	return s.client.Close()
}

func corpusFromProto(c *aiplatformpb.RagCorpus) Corpus {
	out := Corpus{
		Name:        c.GetName(),
		DisplayName: c.GetDisplayName(),
		Description: c.GetDescription(),
	}
	if ts := c.GetCreateTime(); ts != nil {
		out.CreateTime = ts.AsTime()
	}
	return out
}
