// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/farmersmark/corpusctl/internal/config"
	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

// NewRootCmd creates the root corpusctl command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "corpusctl",
		Short:         "corpusctl — Vertex AI RAG corpus provisioning and ingestion",
		Long:          "corpusctl provisions Vertex AI RAG corpora and triggers managed ingestion of documents stored in Cloud Storage.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initViper(cmd); err != nil {
				return err
			}
			setupLogging(viper.GetBool("verbose"))
			return nil
		},
	}

	// Global flags — these map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("project", "", "GCP project id")
	root.PersistentFlags().String("location", "", "Vertex AI location")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newIngestCmd(),
		newCorpusCmd(),
		newDoctorCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return cperr.Errorf(cperr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover corpusctl.yaml from standard locations.
		// SetConfigType is intentionally omitted: when set, Viper falls
		// back to trying the bare config name without extension, which
		// collides with the ./corpusctl binary in the project root.
		v.SetConfigName("corpusctl")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/corpusctl")
		v.AddConfigPath("/etc/corpusctl")
		// No config file is fine — defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return cperr.Errorf(cperr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			// No config found anywhere — bootstrap a default to
			// ~/.config/corpusctl/.
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return cperr.Errorf(cperr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	// Bind persistent flags to viper keys.
	if err := v.BindPFlag("project", cmd.Root().PersistentFlags().Lookup("project")); err != nil {
		return cperr.Errorf(cperr.CodeCLISetupFailure, "binding project flag: %w", err)
	}
	if err := v.BindPFlag("location", cmd.Root().PersistentFlags().Lookup("location")); err != nil {
		return cperr.Errorf(cperr.CodeCLISetupFailure, "binding location flag: %w", err)
	}
	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return cperr.Errorf(cperr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// setupLogging routes slog to stderr so stdout stays reserved for
// command output.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
