// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmersmark/corpusctl/internal/rag"
)

func sampleCorpora() []rag.Corpus {
	return []rag.Corpus{
		{
			Name:        "projects/p/locations/l/ragCorpora/1",
			DisplayName: "farmersmark-best-corpus",
			Description: "FarmersMark production corpus.",
			CreateTime:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			Name:        "projects/p/locations/l/ragCorpora/2",
			DisplayName: "trial-corpus",
		},
	}
}

func TestCorpusListTable(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{corpora: sampleCorpora()}
	stubRagService(t, svc)

	out, err := runCLI(t, "corpus", "list", "--project", "p")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "ragCorpora/1")
	assert.Contains(t, out, "farmersmark-best-corpus")
	assert.Contains(t, out, "2026-01-15 10:00")
	assert.Contains(t, out, "trial-corpus")
}

func TestCorpusListYAML(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{corpora: sampleCorpora()}
	stubRagService(t, svc)

	out, err := runCLI(t, "corpus", "list", "--project", "p", "--output", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "name: projects/p/locations/l/ragCorpora/1")
	assert.Contains(t, out, "display_name: farmersmark-best-corpus")
	assert.Contains(t, out, "create_time: \"2026-01-15T10:00:00Z\"")
}

func TestCorpusListEmpty(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{}
	stubRagService(t, svc)

	out, err := runCLI(t, "corpus", "list", "--project", "p")
	require.NoError(t, err)
	assert.Contains(t, out, "No corpora found.")
}

func TestCorpusListRequiresProject(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{}
	stubRagService(t, svc)

	_, err := runCLI(t, "corpus", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project")
}

func TestCorpusDescribe(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{corpora: sampleCorpora()}
	stubRagService(t, svc)

	out, err := runCLI(t, "corpus", "describe", "projects/p/locations/l/ragCorpora/1", "--project", "p")
	require.NoError(t, err)

	assert.Contains(t, out, "name: projects/p/locations/l/ragCorpora/1")
	assert.Contains(t, out, "description: FarmersMark production corpus.")
}

func TestCorpusDescribeNotFound(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{corpora: sampleCorpora()}
	stubRagService(t, svc)

	_, err := runCLI(t, "corpus", "describe", "projects/p/locations/l/ragCorpora/999", "--project", "p")
	require.Error(t, err)
}

func TestCorpusDeleteForce(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{}
	stubRagService(t, svc)

	out, err := runCLI(t, "corpus", "delete", "projects/p/locations/l/ragCorpora/1", "--project", "p", "--force")
	require.NoError(t, err)

	assert.Equal(t, []string{"projects/p/locations/l/ragCorpora/1"}, svc.deleted)
	assert.Contains(t, out, "Deleted corpus:")
}

func TestCorpusDeleteConfirmYes(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{}
	stubRagService(t, svc)

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader("y\n"))
	root.SetArgs([]string{"corpus", "delete", "projects/p/locations/l/ragCorpora/1", "--project", "p"})

	require.NoError(t, root.Execute())
	assert.Len(t, svc.deleted, 1)
	assert.Contains(t, buf.String(), "Delete corpus")
}

func TestCorpusDeleteConfirmAborted(t *testing.T) {
	setupCLITest(t)
	svc := &recordingService{}
	stubRagService(t, svc)

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader("n\n"))
	root.SetArgs([]string{"corpus", "delete", "projects/p/locations/l/ragCorpora/1", "--project", "p"})

	require.NoError(t, root.Execute())
	assert.Empty(t, svc.deleted)
	assert.Contains(t, buf.String(), "Aborted.")
}

func TestCorpusDeleteRequiresArg(t *testing.T) {
	setupCLITest(t)

	_, err := runCLI(t, "corpus", "delete")
	require.Error(t, err)
}
