// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/farmersmark/corpusctl/internal/gcs"
	"github.com/farmersmark/corpusctl/internal/preflight"
)

// remote doctor checks get their own budget so a wedged backend cannot
// hang diagnostics.
const doctorCheckTimeout = 30 * time.Second

// Factories swapped in tests.
var (
	newBucketPreflight = func(ctx context.Context) (bucketChecker, error) {
		return gcs.NewPreflight(ctx)
	}
	newEmbeddingProbe = func(ctx context.Context, project, location string) (embeddingChecker, error) {
		return preflight.NewEmbeddingProbe(ctx, project, location)
	}
)

type bucketChecker interface {
	CheckBucket(ctx context.Context, bucket string) error
	CountObjects(ctx context.Context, bucket, prefix string) (int, bool, error)
	Close() error
}

type embeddingChecker interface {
	Check(ctx context.Context, model string) (int, error)
}

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check binary health, configuration, GCS bucket access, and the embedding model before launching an ingest.",
		RunE:  runDoctor,
	}

	cmd.Flags().Bool("skip-remote", false, "skip checks that call GCP APIs")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	skipRemote, _ := cmd.Flags().GetBool("skip-remote")

	v := viper.GetViper()
	project := v.GetString("project")
	location := v.GetString("location")
	bucket := v.GetString("bucket")
	prefix := v.GetString("prefix")
	model := v.GetString("corpus.embedding_model")

	checks := []struct {
		name   string
		remote bool
		fn     func(ctx context.Context) string
	}{
		{"Binary", false, func(context.Context) string { return checkBinary() }},
		{"Platform", false, func(context.Context) string { return checkPlatform() }},
		{"Config", false, func(context.Context) string { return checkConfig(project, bucket) }},
		{"Bucket", true, func(ctx context.Context) string { return checkBucket(ctx, bucket, prefix) }},
		{"Embedding Model", true, func(ctx context.Context) string { return checkEmbedding(ctx, project, location, model) }},
	}

	for _, c := range checks {
		result := ""
		if c.remote && skipRemote {
			result = "skipped (--skip-remote)"
		} else {
			ctx, cancel := context.WithTimeout(cmd.Context(), doctorCheckTimeout)
			result = c.fn(ctx)
			cancel()
		}
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", result); err != nil {
			return err
		}
	}

	return nil
}

func checkBinary() string {
	return fmt.Sprintf("corpusctl %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkConfig(project, bucket string) string {
	cfgFile := viper.ConfigFileUsed()
	source := "using defaults (no config file found)"
	if cfgFile != "" {
		source = fmt.Sprintf("loaded from %s", cfgFile)
	}

	missing := ""
	switch {
	case project == "" && bucket == "":
		missing = "; project and bucket not set"
	case project == "":
		missing = "; project not set"
	case bucket == "":
		missing = "; bucket not set"
	}

	return source + missing
}

func checkBucket(ctx context.Context, bucket, prefix string) string {
	if bucket == "" {
		return "not configured (set --bucket)"
	}

	pf, err := newBucketPreflight(ctx)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	defer func() { _ = pf.Close() }()

	if err := pf.CheckBucket(ctx, bucket); err != nil {
		return fmt.Sprintf("error: %s", err)
	}

	count, capped, err := pf.CountObjects(ctx, bucket, prefix)
	if err != nil {
		return fmt.Sprintf("reachable, listing failed: %s", err)
	}
	suffix := ""
	if capped {
		suffix = "+"
	}
	return fmt.Sprintf("gs://%s reachable, %d%s object(s) under prefix %q", bucket, count, suffix, prefix)
}

func checkEmbedding(ctx context.Context, project, location, model string) string {
	if project == "" {
		return "skipped (project not set)"
	}

	probe, err := newEmbeddingProbe(ctx, project, location)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}

	dims, err := probe.Check(ctx, model)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s ok (%d dimensions)", preflight.ModelID(model), dims)
}
