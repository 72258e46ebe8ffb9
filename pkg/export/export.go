// Package export writes the workflow data set to files: a markdown handbook,
// a JSON document, a SQLite database and one SVG flowchart per steps section.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/permitflow/pkg/debug"
	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/metrics"
)

// Format names one export target.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatSQLite   Format = "sqlite"
	FormatSVG      Format = "svg"
	FormatAll      Format = "all"
)

// ErrUnknownFormat is returned for a format name ParseFormat does not know.
var ErrUnknownFormat = errors.New("unknown export format")

var errEmptyOutDir = errors.New("output directory is required")

// Output file names inside the export directory.
const (
	MarkdownFile = "permitflow.md"
	JSONFile     = "permitflow.json"
	SQLiteFile   = "permitflow.sqlite3"
	SVGDir       = "flowcharts"
)

// Formats lists the concrete formats in the order "all" runs them.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatJSON, FormatSQLite, FormatSVG}
}

// ParseFormat maps a case-insensitive name (or common alias) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	case "svg":
		return FormatSVG, nil
	case "all":
		return FormatAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Run exports ds in the given format into outDir and returns the paths it
// wrote. FormatAll runs every format concurrently; the first failure cancels
// the rest.
func Run(ctx context.Context, ds *loader.Dataset, format Format, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if format != FormatAll {
		return runOne(ctx, ds, format, outDir)
	}

	formats := Formats()
	written := make([][]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			paths, err := runOne(ctx, ds, f, outDir)
			written[i] = paths
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, paths := range written {
		out = append(out, paths...)
	}
	return out, nil
}

func runOne(ctx context.Context, ds *loader.Dataset, format Format, outDir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer debug.LogEnterExit("export " + string(format))()
	defer metrics.Timer(metrics.Export)()

	switch format {
	case FormatMarkdown:
		path := filepath.Join(outDir, MarkdownFile)
		if err := os.WriteFile(path, []byte(GenerateMarkdown(ds)), 0o644); err != nil {
			return nil, fmt.Errorf("write markdown: %w", err)
		}
		return []string{path}, nil

	case FormatJSON:
		path := filepath.Join(outDir, JSONFile)
		if err := WriteJSONFile(ds, path); err != nil {
			return nil, err
		}
		return []string{path}, nil

	case FormatSQLite:
		path := filepath.Join(outDir, SQLiteFile)
		if err := NewSQLiteExporter(ds).Export(path); err != nil {
			return nil, err
		}
		return []string{path}, nil

	case FormatSVG:
		return WriteFlowcharts(ds, filepath.Join(outDir, SVGDir))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
