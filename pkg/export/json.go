package export

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
	"github.com/vanderheijden86/permitflow/pkg/version"
)

// JSONDocument is the exported shape of a data set. Section content is
// flattened into optional fields keyed by Type.
type JSONDocument struct {
	Version   string                 `json:"version"`
	Source    string                 `json:"source"`
	Workflows []JSONCategory         `json:"workflows"`
	Tests     JSONCategory           `json:"tests"`
	Citations []model.CitationRecord `json:"citations"`
}

type JSONCategory struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Icon        string        `json:"icon,omitempty"`
	Description string        `json:"description,omitempty"`
	Sections    []JSONSection `json:"sections"`
}

type JSONSection struct {
	Title       string               `json:"title"`
	Type        model.SectionKind    `json:"type"`
	Description string               `json:"description,omitempty"`
	Citation    *model.Citation      `json:"citation,omitempty"`
	Steps       []model.WorkflowStep `json:"steps,omitempty"`
	Items       []model.InfoItem     `json:"items,omitempty"`
	Table       *model.TableData     `json:"table,omitempty"`
}

// NewJSONDocument converts ds to its exported shape. Sections without usable
// content are dropped, as they are in every other view of the data.
func NewJSONDocument(ds *loader.Dataset) JSONDocument {
	doc := JSONDocument{
		Version:   version.Version,
		Source:    ds.Source,
		Workflows: make([]JSONCategory, 0, len(ds.Workflows)),
		Tests:     jsonCategory(ds.Tests),
		Citations: ds.Citations.All(),
	}
	for _, c := range ds.Workflows {
		doc.Workflows = append(doc.Workflows, jsonCategory(c))
	}
	return doc
}

func jsonCategory(c model.Category) JSONCategory {
	out := JSONCategory{
		ID:          c.ID,
		Title:       c.Title,
		Icon:        c.Icon,
		Description: c.Description,
		Sections:    make([]JSONSection, 0, len(c.Sections)),
	}
	for _, s := range c.Sections {
		js := JSONSection{
			Title:       s.Title,
			Type:        s.Kind(),
			Description: s.Description,
			Citation:    s.Citation,
		}
		switch content := s.Content.(type) {
		case model.StepsContent:
			js.Steps = content.Steps
		case model.InfoContent:
			js.Items = content.Items
		case model.TableContent:
			t := content.Table
			t.Rows = t.NormalizedRows()
			js.Table = &t
		default:
			continue
		}
		out.Sections = append(out.Sections, js)
	}
	return out
}

// WriteJSON encodes ds as indented JSON.
func WriteJSON(w io.Writer, ds *loader.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewJSONDocument(ds)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteJSONFile writes ds as JSON to path.
func WriteJSONFile(ds *loader.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
