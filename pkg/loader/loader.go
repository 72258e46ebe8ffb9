// Package loader reads the static workflow data set: workflow categories, the
// tests category and the citation registry. The default data set is embedded in
// the binary; a directory with the same three files can replace it.
package loader

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/permitflow/pkg/citation"
	"github.com/vanderheijden86/permitflow/pkg/metrics"
	"github.com/vanderheijden86/permitflow/pkg/model"

	"gopkg.in/yaml.v3"
)

// DataDirEnvVar is the name of the environment variable for a custom data directory.
const DataDirEnvVar = "PERMITFLOW_DATA_DIR"

// Data file names, identical in the embedded set and in override directories.
const (
	WorkflowsFile = "workflows.yaml"
	TestsFile     = "tests.yaml"
	CitationsFile = "citations.yaml"
)

// TestsCategoryID is the id given to the tests category when the file omits one.
const TestsCategoryID = "tests"

// ErrNoWorkflows is returned when the workflows file declares no categories.
var ErrNoWorkflows = errors.New("data set has no workflow categories")

//go:embed data/*.yaml
var embedded embed.FS

// Dataset is the fully resolved, immutable content of the browser.
type Dataset struct {
	Workflows []model.Category
	Tests     model.Category
	Citations *citation.Registry

	// Source is "embedded" or the directory the data was read from.
	Source string
	// Diagnostics lists sections dropped or degraded while decoding.
	Diagnostics []Diagnostic
}

// Find returns the workflow category with the given id, or the first category
// when none matches. The second result reports whether id matched.
func (d *Dataset) Find(id string) (model.Category, bool) {
	for _, c := range d.Workflows {
		if c.ID == id {
			return c, true
		}
	}
	if len(d.Workflows) == 0 {
		return model.Category{}, false
	}
	return d.Workflows[0], false
}

// GetDataDir returns the override data directory from PERMITFLOW_DATA_DIR,
// or the given fallback when the variable is unset.
func GetDataDir(fallback string) string {
	if envDir := os.Getenv(DataDirEnvVar); envDir != "" {
		return envDir
	}
	return fallback
}

// LoadEmbedded returns the data set compiled into the binary.
func LoadEmbedded() (*Dataset, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded data: %w", err)
	}
	ds, err := LoadFS(sub)
	if err != nil {
		return nil, err
	}
	ds.Source = "embedded"
	return ds, nil
}

// LoadDir reads the three data files from dir.
func LoadDir(dir string) (*Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path %s is not a directory", dir)
	}
	ds, err := LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	ds.Source = dir
	return ds, nil
}

// Load returns the data set from dir, or the embedded set when dir is empty.
func Load(dir string) (*Dataset, error) {
	if dir == "" {
		return LoadEmbedded()
	}
	return LoadDir(dir)
}

// LoadFS reads the three data files from fsys.
func LoadFS(fsys fs.FS) (*Dataset, error) {
	open := func(name string) ([]byte, error) {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return b, nil
	}
	wf, err := open(WorkflowsFile)
	if err != nil {
		return nil, err
	}
	tests, err := open(TestsFile)
	if err != nil {
		return nil, err
	}
	cites, err := open(CitationsFile)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(wf), bytes.NewReader(tests), bytes.NewReader(cites))
}

// Parse decodes a data set from the three YAML streams.
func Parse(workflows, tests, citations io.Reader) (*Dataset, error) {
	defer metrics.Timer(metrics.DataLoad)()
	var rawCats []rawCategory
	if err := decodeYAML(workflows, &rawCats); err != nil {
		return nil, fmt.Errorf("parse %s: %w", WorkflowsFile, err)
	}
	if len(rawCats) == 0 {
		return nil, ErrNoWorkflows
	}

	var rawTests rawCategory
	if err := decodeYAML(tests, &rawTests); err != nil {
		return nil, fmt.Errorf("parse %s: %w", TestsFile, err)
	}
	if rawTests.ID == "" {
		rawTests.ID = TestsCategoryID
	}

	var records []model.CitationRecord
	if err := decodeYAML(citations, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", CitationsFile, err)
	}

	ds := &Dataset{Citations: citation.NewRegistry(records)}
	dec := &decoder{}
	ds.Workflows = make([]model.Category, 0, len(rawCats))
	for _, rc := range rawCats {
		ds.Workflows = append(ds.Workflows, dec.category(rc))
	}
	ds.Tests = dec.category(rawTests)
	ds.Diagnostics = dec.diags
	return ds, nil
}

// DataFiles returns the paths of the three data files inside dir.
func DataFiles(dir string) []string {
	return []string{
		filepath.Join(dir, WorkflowsFile),
		filepath.Join(dir, TestsFile),
		filepath.Join(dir, CitationsFile),
	}
}

func decodeYAML(r io.Reader, out any) error {
	err := yaml.NewDecoder(r).Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
