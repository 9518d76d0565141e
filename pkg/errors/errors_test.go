// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package errors_test

import (
	stderrors "errors"
	"testing"

	cperr "github.com/farmersmark/corpusctl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncludesCodeAndFields(t *testing.T) {
	err := cperr.New(
		cperr.CodeCorpusCreateFailure,
		"corpus creation rejected",
		cperr.FieldProject("farmersmark-agriculture"),
		cperr.Field("display_name", "farmersmark-best-corpus"),
	)

	require.Error(t, err)
	assert.Equal(t, cperr.CodeCorpusCreateFailure, cperr.CodeOf(err))
	assert.True(t, cperr.HasCode(err, cperr.CodeCorpusCreateFailure))

	fields := cperr.FieldsOf(err)
	assert.Equal(t, "farmersmark-agriculture", fields["project"])
	assert.Equal(t, "farmersmark-best-corpus", fields["display_name"])
}

func TestErrorfFormatsAndWraps(t *testing.T) {
	inner := stderrors.New("deadline exceeded")
	err := cperr.Errorf(cperr.CodeImportUpstreamFailure, "importing into %s: %w", "corpora/123", inner)

	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, cperr.CodeImportUpstreamFailure, cperr.CodeOf(err))
	assert.Contains(t, err.Error(), "importing into corpora/123")
}

func TestWrapPreservesChainAndFields(t *testing.T) {
	root := stderrors.New("bucket missing")
	err := cperr.Wrap(
		root,
		cperr.CodeStorageBucketNotFound,
		"checking bucket",
		cperr.FieldBucket("farmermarkpdfs"),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.True(t, cperr.IsNotFound(err))
	assert.Equal(t, "farmermarkpdfs", cperr.FieldsOf(err)["bucket"])
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, cperr.Wrap(nil, cperr.CodeImportUpstreamFailure, "ignored"))
	assert.NoError(t, cperr.Wrapf(nil, cperr.CodeImportUpstreamFailure, "ignored %s", "arg"))
}

func TestReasonClassifiers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", cperr.New(cperr.CodeCorpusGetNotFound, "x"), cperr.IsNotFound},
		{"conflict", cperr.New(cperr.CodeCorpusCreateConflict, "x"), cperr.IsConflict},
		{"invalid input", cperr.New(cperr.CodeConfigValidateInvalidValue, "x"), cperr.IsInvalidInput},
		{"access denied", cperr.New(cperr.CodeCorpusAccessDenied, "x"), cperr.IsAccessDenied},
		{"timeout", cperr.New(cperr.CodeImportTimeout, "x"), cperr.IsTimeout},
		{"upstream", cperr.New(cperr.CodeImportUpstreamFailure, "x"), cperr.IsUpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestClassifiersRejectPlainErrors(t *testing.T) {
	plain := stderrors.New("plain")
	assert.False(t, cperr.IsNotFound(plain))
	assert.False(t, cperr.IsTimeout(plain))
	assert.Equal(t, cperr.Code(""), cperr.CodeOf(plain))
	assert.Nil(t, cperr.FieldsOf(plain))
}
