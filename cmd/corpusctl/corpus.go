// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/farmersmark/corpusctl/internal/rag"
	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage RAG corpora",
	}

	cmd.AddCommand(
		newCorpusListCmd(),
		newCorpusDescribeCmd(),
		newCorpusDeleteCmd(),
	)

	return cmd
}

// corpusView is the YAML-facing shape of a corpus.
type corpusView struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description,omitempty"`
	CreateTime  string `yaml:"create_time,omitempty"`
}

func viewOf(c rag.Corpus) corpusView {
	v := corpusView{
		Name:        c.Name,
		DisplayName: c.DisplayName,
		Description: c.Description,
	}
	if !c.CreateTime.IsZero() {
		v.CreateTime = c.CreateTime.UTC().Format(time.RFC3339)
	}
	return v
}

func newCorpusListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List corpora in the project and location",
		RunE:  runCorpusList,
	}

	cmd.Flags().StringP("output", "o", "table", "output format: table or yaml")

	return cmd
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveProjectConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, err := newRagService(ctx, cfg.project, cfg.location)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	corpora, err := svc.ListCorpora(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	output, _ := cmd.Flags().GetString("output")

	if output == "yaml" {
		views := make([]corpusView, 0, len(corpora))
		for _, c := range corpora {
			views = append(views, viewOf(c))
		}
		out, err := yaml.Marshal(views)
		if err != nil {
			return cperr.Errorf(cperr.CodeCLISetupFailure, "marshalling corpora: %w", err)
		}
		_, err = fmt.Fprint(w, string(out))
		return err
	}

	if len(corpora) == 0 {
		_, err = fmt.Fprintln(w, "No corpora found.")
		return err
	}

	fmt.Fprintf(w, "%-50s %-30s %s\n", "NAME", "DISPLAY NAME", "CREATED")
	for _, c := range corpora {
		created := ""
		if !c.CreateTime.IsZero() {
			created = c.CreateTime.UTC().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-50s %-30s %s\n", c.Name, c.DisplayName, created)
	}

	return nil
}

func newCorpusDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <corpus-name>",
		Short: "Show one corpus as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runCorpusDescribe,
	}
}

func runCorpusDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveProjectConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, err := newRagService(ctx, cfg.project, cfg.location)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	corpus, err := svc.GetCorpus(ctx, args[0])
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(viewOf(corpus))
	if err != nil {
		return cperr.Errorf(cperr.CodeCLISetupFailure, "marshalling corpus: %w", err)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
	return err
}

func newCorpusDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <corpus-name>",
		Short: "Delete a corpus and all its imported files",
		Args:  cobra.ExactArgs(1),
		RunE:  runCorpusDelete,
	}

	cmd.Flags().Bool("force", false, "skip the confirmation prompt")

	return cmd
}

func runCorpusDelete(cmd *cobra.Command, args []string) error {
	cfg, err := resolveProjectConfig()
	if err != nil {
		return err
	}

	name := args[0]
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete corpus %s and all its files? [y/N]: ", name)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	ctx := cmd.Context()
	svc, err := newRagService(ctx, cfg.project, cfg.location)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	if err := svc.DeleteCorpus(ctx, name); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Deleted corpus:", name)
	return nil
}

// projectConfig is the minimal resolution corpus subcommands need.
type projectConfig struct {
	project  string
	location string
}

func resolveProjectConfig() (projectConfig, error) {
	v := viper.GetViper()
	cfg := projectConfig{
		project:  v.GetString("project"),
		location: v.GetString("location"),
	}
	if cfg.project == "" {
		return cfg, cperr.New(cperr.CodeCLIInputInvalid, "project is required (set --project, CORPUSCTL_PROJECT, or the config file)")
	}
	if cfg.location == "" {
		return cfg, cperr.New(cperr.CodeCLIInputInvalid, "location is required (set --location, CORPUSCTL_LOCATION, or the config file)")
	}
	return cfg, nil
}
