// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	cperr "github.com/farmersmark/corpusctl/pkg/errors"
)

// initWizardStep tracks which step of the wizard is active.
type initWizardStep int

const (
	stepProject  initWizardStep = iota // enter GCP project id
	stepLocation                       // enter Vertex location
	stepBucket                         // enter GCS bucket
	stepPrefix                         // optional prefix
	stepDone                           // wizard complete
	stepError                          // terminal error
)

// initResult holds the collected wizard configuration.
type initResult struct {
	Project  string
	Location string
	Bucket   string
	Prefix   string
}

type configWrittenMsg struct{ path string }

// --- lipgloss styles ---

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

// initModel is the bubbletea model for the init wizard.
type initModel struct {
	step           initWizardStep
	input          textinput.Model
	result         initResult
	validationErr  string
	configPath     string
	errFinal       error
	forceOverwrite bool
}

func newInitModel() initModel {
	in := textinput.New()
	in.Placeholder = "my-gcp-project"
	in.Focus()

	return initModel{
		step:  stepProject,
		input: in,
	}
}

func (m initModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case configWrittenMsg:
		m.step = stepDone
		m.configPath = msg.path
		return m, tea.Quit

	case error:
		m.step = stepError
		m.errFinal = msg
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m initModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		return m.advance()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// advance validates the current input and moves to the next step.
func (m initModel) advance() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.step {
	case stepProject:
		if value == "" {
			m.validationErr = "project id must not be empty"
			return m, nil
		}
		m.result.Project = value
		return m.nextInput(stepLocation, "us-west1"), nil

	case stepLocation:
		if value == "" {
			value = "us-west1"
		}
		m.result.Location = value
		return m.nextInput(stepBucket, "my-documents-bucket"), nil

	case stepBucket:
		if value == "" {
			m.validationErr = "bucket must not be empty"
			return m, nil
		}
		m.result.Bucket = value
		return m.nextInput(stepPrefix, "(optional, press enter to skip)"), nil

	case stepPrefix:
		m.result.Prefix = value
		return m, writeConfigCmd(m.result, m.forceOverwrite)
	}

	return m, nil
}

func (m initModel) nextInput(step initWizardStep, placeholder string) initModel {
	m.step = step
	m.validationErr = ""
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	m.input.Focus()
	return m
}

func (m initModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  corpusctl Setup  ") + "\n\n")

	prompts := map[initWizardStep]string{
		stepProject:  "Step 1/4: GCP project id",
		stepLocation: "Step 2/4: Vertex AI location",
		stepBucket:   "Step 3/4: GCS bucket with your documents",
		stepPrefix:   "Step 4/4: object prefix inside the bucket",
	}

	switch m.step {
	case stepProject, stepLocation, stepBucket, stepPrefix:
		b.WriteString(promptStyle.Render(prompts[m.step]) + "\n\n")
		b.WriteString(m.input.View() + "\n")
		if m.validationErr != "" {
			b.WriteString("\n" + errorStyle.Render("  "+m.validationErr) + "\n")
		}
		b.WriteString("\n" + dimStyle.Render("enter to continue  ctrl+c to quit"))

	case stepDone:
		b.WriteString(successStyle.Render("  Setup complete!  ") + "\n\n")
		if m.configPath != "" {
			b.WriteString(dimStyle.Render("Config written to: "+m.configPath) + "\n\n")
		}
		b.WriteString("Run " + promptStyle.Render("corpusctl doctor") + " to verify access.\n")
		b.WriteString("Run " + promptStyle.Render("corpusctl ingest") + " to create and fill your corpus.\n")

	case stepError:
		b.WriteString(errorStyle.Render("Setup failed: "+m.errFinal.Error()) + "\n")
	}

	return boxStyle.Render(b.String())
}

func writeConfigCmd(result initResult, forceOverwrite bool) tea.Cmd {
	return func() tea.Msg {
		path, err := writeWizardConfig(result, forceOverwrite)
		if err != nil {
			return err
		}
		return configWrittenMsg{path: path}
	}
}

// GenerateConfigYAML produces a corpusctl.yaml from the wizard result.
// Import parameters keep their defaults; only the identity fields are
// written out.
func GenerateConfigYAML(result initResult) string {
	var sb strings.Builder
	sb.WriteString("# corpusctl configuration — generated by corpusctl init\n\n")

	sb.WriteString(fmt.Sprintf("project: %s\n", result.Project))
	sb.WriteString(fmt.Sprintf("location: %s\n", result.Location))
	sb.WriteString(fmt.Sprintf("bucket: %s\n", result.Bucket))
	if result.Prefix != "" {
		sb.WriteString(fmt.Sprintf("prefix: %s\n", result.Prefix))
	}
	sb.WriteString("\n")

	sb.WriteString("corpus:\n")
	sb.WriteString("  display_name: farmersmark-best-corpus\n")
	sb.WriteString("  embedding_model: publishers/google/models/text-embedding-005\n\n")

	sb.WriteString("import:\n")
	sb.WriteString("  chunk_size: 768\n")
	sb.WriteString("  chunk_overlap: 128\n")
	sb.WriteString("  max_embedding_rpm: 900\n")
	sb.WriteString("  timeout_seconds: 1800\n")

	return sb.String()
}

// writeWizardConfig writes the generated YAML to the default config
// path. When forceOverwrite is false and the file exists, an error is
// returned asking the user to pass --force.
func writeWizardConfig(result initResult, forceOverwrite bool) (string, error) {
	cfgPath, err := configPathForWrite()
	if err != nil {
		return "", err
	}

	if !forceOverwrite {
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			return "", cperr.Errorf(cperr.CodeCLIInputInvalid,
				"config file already exists at %s; use --force to overwrite", cfgPath)
		}
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", cperr.Errorf(cperr.CodeConfigLoadReadFailure, "creating config directory %s: %w", dir, err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateConfigYAML(result)), 0o600); err != nil {
		return "", cperr.Errorf(cperr.CodeConfigLoadReadFailure, "writing config to %s: %w", cfgPath, err)
	}

	return cfgPath, nil
}

// configPathForWrite returns the target config path. Exported as a
// variable so tests can override it.
var configPathForWrite = defaultConfigPathForWrite

func defaultConfigPathForWrite() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cperr.Errorf(cperr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "corpusctl", "corpusctl.yaml"), nil
}

// --- Cobra command ---

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactive setup wizard for corpusctl",
		Long: `Run an interactive wizard that collects your GCP project, Vertex AI
location, and source bucket, then writes ~/.config/corpusctl/corpusctl.yaml.

After completion, run:
  corpusctl doctor   — verify credentials, bucket, and embedding model
  corpusctl ingest   — create the corpus and import your documents`,
		RunE: runInit,
	}

	cmd.Flags().Bool("force", false, "Overwrite existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	// Refuse to run without a terminal; the wizard is interactive only.
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(f) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(),
			"corpusctl init requires an interactive terminal.\n"+
				"To configure corpusctl non-interactively, edit ~/.config/corpusctl/corpusctl.yaml directly.")
		return cperr.New(cperr.CodeCLISetupFailure, "corpusctl init: not an interactive terminal")
	}

	forceOverwrite, _ := cmd.Flags().GetBool("force")

	m := newInitModel()
	m.forceOverwrite = forceOverwrite

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return cperr.Errorf(cperr.CodeCLISetupFailure, "init wizard error: %w", err)
	}

	fm, ok := finalModel.(initModel)
	if !ok {
		return cperr.New(cperr.CodeCLISetupFailure, "unexpected model type after wizard")
	}

	if fm.errFinal != nil {
		return cperr.Errorf(cperr.CodeCLISetupFailure, "init failed: %w", fm.errFinal)
	}

	// Quitting early (before stepDone) is fine — nothing was written.
	return nil
}

// isTerminal reports whether f is a terminal file descriptor.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
