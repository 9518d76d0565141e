// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

// Package gcs holds the Cloud Storage path helpers and the bucket
// preflight used before an import is launched.
package gcs

import (
	"fmt"
	"strings"
	"time"
)

// sink files are grouped under a single well-known prefix so operators
// can set a lifecycle rule on it.
const importLogPrefix = "rag_import_logs"

// NormalizePath builds a fully qualified gs:// URI from a bucket and an
// optional object prefix. The prefix is trimmed of surrounding
// whitespace and slashes; an empty prefix yields "gs://<bucket>/".
func NormalizePath(bucket, prefix string) string {
	cleaned := strings.Trim(strings.TrimSpace(prefix), "/")
	if cleaned == "" {
		return fmt.Sprintf("gs://%s/", bucket)
	}
	return fmt.Sprintf("gs://%s/%s", bucket, cleaned)
}

// ImportSinks is the pair of log destinations an import run writes to.
type ImportSinks struct {
	Results  string
	Failures string
}

// SinksFor returns the result and failure sink URIs for one import run,
// keyed by the given UTC timestamp. Two runs at least one second apart
// get distinct paths.
func SinksFor(bucket string, now time.Time) ImportSinks {
	ts := now.UTC().Format("20060102-150405")
	return ImportSinks{
		Results:  fmt.Sprintf("gs://%s/%s/%s_results.ndjson", bucket, importLogPrefix, ts),
		Failures: fmt.Sprintf("gs://%s/%s/%s_failures.ndjson", bucket, importLogPrefix, ts),
	}
}
