// Package testutil builds synthetic workflow data sets for tests. All
// generators are deterministic for a given seed.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vanderheijden86/permitflow/pkg/citation"
	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
)

// DanglingSource is the citation key used for references with no record.
const DanglingSource = "Missing_Source"

// GeneratorConfig controls data set generation.
type GeneratorConfig struct {
	Seed         int64   // Random seed (0 = 42)
	Sources      int     // Citation records in the registry (default 4)
	DanglingRate float64 // Share of citations pointing at DanglingSource
	RaggedTables bool    // Drop or add cells on alternate table rows
}

// DefaultConfig returns a config with a clean registry and rectangular tables.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, Sources: 4}
}

// Generator creates categories, sections and whole data sets.
type Generator struct {
	cfg     GeneratorConfig
	rng     *rand.Rand
	records []model.CitationRecord
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.Sources <= 0 {
		cfg.Sources = 4
	}
	g := &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
	for i := 0; i < cfg.Sources; i++ {
		g.records = append(g.records, model.CitationRecord{
			ID:  fmt.Sprintf("Source_%d", i+1),
			APA: fmt.Sprintf("Agency %d. (202%d). Guideline number %d. Publisher.", i+1, i%10, i+1),
			URL: fmt.Sprintf("https://example.org/docs/source-%d.pdf", i+1),
		})
	}
	return g
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Records returns the generated citation records.
func (g *Generator) Records() []model.CitationRecord {
	return append([]model.CitationRecord(nil), g.records...)
}

// Registry returns a registry over Records.
func (g *Generator) Registry() *citation.Registry {
	return citation.NewRegistry(g.records)
}

// Citation returns a reference to a random record, or to DanglingSource at
// the configured rate.
func (g *Generator) Citation() *model.Citation {
	src := g.records[g.rng.Intn(len(g.records))].ID
	if g.cfg.DanglingRate > 0 && g.rng.Float64() < g.cfg.DanglingRate {
		src = DanglingSource
	}
	return &model.Citation{Source: src, Page: fmt.Sprint(1 + g.rng.Intn(120))}
}

var responsibles = []model.Responsible{
	model.ResponsibleApplicant,
	model.ResponsibleAuthority,
	model.ResponsibleShared,
	model.ResponsibleSystem,
}

// Steps returns a steps (or flowchart) section with n numbered steps.
func (g *Generator) Steps(title string, n int, flowchart bool) model.Section {
	steps := make([]model.WorkflowStep, n)
	for i := range steps {
		steps[i] = model.WorkflowStep{
			ID:          i + 1,
			Title:       fmt.Sprintf("Step %d", i+1),
			Responsible: responsibles[g.rng.Intn(len(responsibles))],
			Description: g.sentence(6 + g.rng.Intn(10)),
			Duration:    fmt.Sprintf("%d days", 1+g.rng.Intn(30)),
		}
	}
	return model.Section{
		Title:    title,
		Citation: g.Citation(),
		Content:  model.StepsContent{Flowchart: flowchart, Steps: steps},
	}
}

// Info returns an info section with n items, each with subItems children.
func (g *Generator) Info(title string, n, subItems int) model.Section {
	items := make([]model.InfoItem, n)
	for i := range items {
		items[i] = model.InfoItem{
			Title:    fmt.Sprintf("Item %d", i+1),
			Details:  g.sentence(8 + g.rng.Intn(12)),
			Citation: g.Citation(),
		}
		for j := 0; j < subItems; j++ {
			items[i].SubItems = append(items[i].SubItems, model.InfoItem{
				Title:    fmt.Sprintf("Item %d.%d", i+1, j+1),
				Details:  g.sentence(5),
				Citation: g.Citation(),
			})
		}
	}
	return model.Section{Title: title, Content: model.InfoContent{Items: items}}
}

// Table returns a table section with the given shape.
func (g *Generator) Table(title string, rows, cols int) model.Section {
	t := model.TableData{Citation: g.Citation()}
	for c := 0; c < cols; c++ {
		t.Headers = append(t.Headers, fmt.Sprintf("Col %d", c+1))
	}
	for r := 0; r < rows; r++ {
		n := cols
		if g.cfg.RaggedTables && r%2 == 1 {
			n = cols - 1 + 2*g.rng.Intn(2)
		}
		row := make([]string, n)
		for c := range row {
			row[c] = fmt.Sprintf("r%dc%d", r+1, c+1)
		}
		t.Rows = append(t.Rows, row)
	}
	return model.Section{Title: title, Content: model.TableContent{Table: t}}
}

// Category returns a category holding one section of each kind.
func (g *Generator) Category(id string) model.Category {
	return model.Category{
		ID:          id,
		Title:       strings.ToUpper(id[:1]) + strings.ReplaceAll(id[1:], "-", " "),
		Description: g.sentence(12),
		Sections: []model.Section{
			g.Steps("Approval Flow", 4+g.rng.Intn(6), true),
			g.Steps("Submission Checklist", 3, false),
			g.Info("Requirements", 3, 0),
			g.Table("Fees", 3, 3),
		},
	}
}

// Dataset returns a data set with the given number of workflow categories
// and a tests category of scenarios with sub-items.
func (g *Generator) Dataset(workflows int) *loader.Dataset {
	ds := &loader.Dataset{
		Tests: model.Category{
			ID:       loader.TestsCategoryID,
			Title:    "Test Scenarios",
			Sections: []model.Section{g.Info("Scenarios", 3, 2)},
		},
		Citations: g.Registry(),
		Source:    "generated",
	}
	for i := 0; i < workflows; i++ {
		ds.Workflows = append(ds.Workflows, g.Category(fmt.Sprintf("workflow-%d", i+1)))
	}
	return ds
}

var words = strings.Fields("permit tower site road reserve fibre authority applicant " +
	"plan review fee survey consent notice approval drawing zone height")

func (g *Generator) sentence(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = words[g.rng.Intn(len(words))]
	}
	s := strings.Join(out, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
