// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package gcs

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

// countObjectsCap bounds the preflight listing so doctor stays fast on
// very large buckets.
const countObjectsCap = 10000

// Preflight wraps a storage client for pre-import bucket checks.
type Preflight struct {
	client *storage.Client
}

// NewPreflight creates a Preflight using application default credentials.
func NewPreflight(ctx context.Context) (*Preflight, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, cperr.Wrapf(err, cperr.CodeStorageClientFailure, "creating storage client")
	}
	return &Preflight{client: client}, nil
}

// CheckBucket verifies the bucket exists and is readable with the
// current credentials.
func (p *Preflight) CheckBucket(ctx context.Context, bucket string) error {
	_, err := p.client.Bucket(bucket).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) {
			return cperr.Wrap(err, cperr.CodeStorageBucketNotFound, "bucket does not exist", cperr.FieldBucket(bucket))
		}
		return cperr.Wrap(err, cperr.CodeStorageAccessDenied, "reading bucket attrs", cperr.FieldBucket(bucket))
	}
	return nil
}

// CountObjects returns the number of objects under prefix, capped at
// countObjectsCap. The boolean reports whether the cap was hit.
func (p *Preflight) CountObjects(ctx context.Context, bucket, prefix string) (int, bool, error) {
	it := p.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	count := 0
	for {
		_, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return count, false, nil
		}
		if err != nil {
			return 0, false, cperr.Wrap(err, cperr.CodeStorageListFailure, "listing objects", cperr.FieldBucket(bucket))
		}
		count++
		if count >= countObjectsCap {
			slog.Debug("object count capped", "bucket", bucket, "prefix", prefix, "cap", countObjectsCap)
			return count, true, nil
		}
	}
}

// Close releases the underlying storage client.
func (p *Preflight) Close() error {
	return p.client.Close()
}
