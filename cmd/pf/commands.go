package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/vanderheijden86/permitflow/pkg/export"
	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/version"
)

var (
	exportFormat string
	exportOut    string
	showPlain    bool
)

// errCheckFailed makes `pf check` exit non-zero after printing diagnostics.
var errCheckFailed = errors.New("data check found problems")

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the data set to markdown, JSON, SQLite or SVG",
	Long: `Export writes the workflow data set to an output directory.

Formats: markdown, json, sqlite, svg, or all. Without --format on an
interactive terminal, a short form asks for the format and directory.`,
	Example: `  pf export --format all --out ./out
  pf export -f sqlite -o /tmp/permits`,
	RunE: runExport,
}

var showCmd = &cobra.Command{
	Use:   "show [workflow-id]",
	Short: "Print one workflow as markdown",
	Long: `Show prints a workflow category with its steps, info panels and tables.
Pass "tests" for the test scenarios. An unknown id falls back to the first
workflow. Output is styled on a terminal and plain markdown otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List the source documents",
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the data set",
	Long: `Check loads the data set and reports sections that were dropped or
degraded, citation keys without a record and tables with ragged rows.
Exits with status 1 when any problem is found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pf %s\n", version.Version)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Export format: markdown, json, sqlite, svg or all")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "permitflow-export", "Output directory")

	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Print raw markdown even on a terminal")
	docsCmd.Flags().BoolVar(&showPlain, "plain", false, "Print raw markdown even on a terminal")
}

// commandDataset loads the data set for a subcommand using --data, the
// environment and the config file in that order.
func commandDataset() (*loader.Dataset, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	ds, err := loadDataset(resolveDataDir(cfg))
	if err != nil {
		return nil, fmt.Errorf("loading data: %w", err)
	}
	return ds, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ds, err := commandDataset()
	if err != nil {
		return err
	}

	choice := export.Choice{Format: export.Format(exportFormat), OutDir: exportOut}
	if exportFormat == "" {
		if !isTTY(cmd.InOrStdin()) {
			choice.Format = export.FormatAll
		} else if choice, err = export.Prompt(choice); err != nil {
			return fmt.Errorf("export form: %w", err)
		}
	}
	format, err := export.ParseFormat(string(choice.Format))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	paths, err := export.Run(ctx, ds, format, choice.OutDir)
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	logger.Info("export complete", zap.String("format", string(format)), zap.Int("files", len(paths)))

	out := cmd.OutOrStdout()
	for _, p := range paths {
		if rel, err := filepath.Rel(".", p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
		fmt.Fprintln(out, p)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ds, err := commandDataset()
	if err != nil {
		return err
	}
	if len(ds.Workflows) == 0 {
		return loader.ErrNoWorkflows
	}

	var md string
	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	if id != "" && (id == ds.Tests.ID || strings.EqualFold(id, loader.TestsCategoryID)) {
		md = export.WorkflowMarkdown(ds.Tests, ds.Citations, true)
	} else {
		c, ok := ds.Find(id)
		if id != "" && !ok {
			logger.Warn("unknown workflow, showing the first one", zap.String("id", id), zap.String("shown", c.ID))
		}
		md = export.WorkflowMarkdown(c, ds.Citations, false)
	}
	return printMarkdown(cmd.OutOrStdout(), md)
}

func runDocs(cmd *cobra.Command, args []string) error {
	ds, err := commandDataset()
	if err != nil {
		return err
	}
	return printMarkdown(cmd.OutOrStdout(), export.DocumentsMarkdown(ds.Citations))
}

func runCheck(cmd *cobra.Command, args []string) error {
	ds, err := commandDataset()
	if err != nil {
		return err
	}
	diags := loader.Check(ds)
	out := cmd.OutOrStdout()
	if len(diags) == 0 {
		fmt.Fprintf(out, "%s: %d workflows, %d citations, no problems\n",
			ds.Source, len(ds.Workflows), ds.Citations.Len())
		return nil
	}
	for _, d := range diags {
		fmt.Fprintln(out, d.String())
	}
	fmt.Fprintf(out, "%d problem(s) in %s\n", len(diags), ds.Source)
	return errCheckFailed
}

// printMarkdown renders md with glamour when w is a terminal and writes it
// unchanged otherwise.
func printMarkdown(w io.Writer, md string) error {
	if showPlain || !isTTY(w) {
		_, err := io.WriteString(w, md)
		return err
	}
	width := 80
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 20 {
			width = cols - 4
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	rendered, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// isTTY reports whether v is a file attached to a terminal.
func isTTY(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
