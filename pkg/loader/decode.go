package loader

import (
	"fmt"

	"github.com/vanderheijden86/permitflow/pkg/model"

	"gopkg.in/yaml.v3"
)

// DiagnosticKind classifies a data problem. None of them are fatal: the
// affected fragment is omitted or degraded.
type DiagnosticKind string

const (
	DiagUnknownType     DiagnosticKind = "unknown_type"
	DiagShapeMismatch   DiagnosticKind = "shape_mismatch"
	DiagUnknownVisual   DiagnosticKind = "unknown_visualization"
	DiagMissingCitation DiagnosticKind = "missing_citation"
	DiagRaggedTable     DiagnosticKind = "ragged_table"
	DiagEmptySection    DiagnosticKind = "empty_section"
)

// Diagnostic describes one problem found in the data set.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Category string         `json:"category"`
	Section  string         `json:"section,omitempty"`
	Detail   string         `json:"detail"`
}

func (d Diagnostic) String() string {
	loc := d.Category
	if d.Section != "" {
		loc += " / " + d.Section
	}
	return fmt.Sprintf("%s: %s: %s", d.Kind, loc, d.Detail)
}

type rawCategory struct {
	ID          string       `yaml:"id"`
	Title       string       `yaml:"title"`
	Icon        string       `yaml:"icon"`
	Description string       `yaml:"description"`
	Sections    []rawSection `yaml:"sections"`
}

type rawSection struct {
	Title       string          `yaml:"title"`
	Type        string          `yaml:"type"`
	Description string          `yaml:"description"`
	Citation    *model.Citation `yaml:"citation"`
	Content     yaml.Node       `yaml:"content"`
}

type rawInfoItem struct {
	Title         string          `yaml:"title"`
	Description   string          `yaml:"description"`
	Details       string          `yaml:"details"`
	Citation      *model.Citation `yaml:"citation"`
	Visualization *rawVisual      `yaml:"visualization"`
	SubItems      []rawInfoItem   `yaml:"subItems"`
}

type rawVisual struct {
	Kind string      `yaml:"kind"`
	Bars []model.Bar `yaml:"bars"`
	Text string      `yaml:"text"`
}

type rawTable struct {
	Headers  []string        `yaml:"headers"`
	Rows     [][]string      `yaml:"rows"`
	Citation *model.Citation `yaml:"citation"`
}

// decoder turns raw YAML into model values, collecting diagnostics instead of
// failing on malformed sections.
type decoder struct {
	diags       []Diagnostic
	curCategory string
	curSection  string
}

func (d *decoder) report(kind DiagnosticKind, format string, args ...any) {
	d.diags = append(d.diags, Diagnostic{
		Kind:     kind,
		Category: d.curCategory,
		Section:  d.curSection,
		Detail:   fmt.Sprintf(format, args...),
	})
}

func (d *decoder) category(rc rawCategory) model.Category {
	d.curCategory = rc.ID
	c := model.Category{
		ID:          rc.ID,
		Title:       rc.Title,
		Icon:        rc.Icon,
		Description: rc.Description,
		Sections:    make([]model.Section, 0, len(rc.Sections)),
	}
	for _, rs := range rc.Sections {
		c.Sections = append(c.Sections, d.section(rs))
	}
	d.curSection = ""
	return c
}

func (d *decoder) section(rs rawSection) model.Section {
	d.curSection = rs.Title
	s := model.Section{
		Title:       rs.Title,
		Description: rs.Description,
		Citation:    rs.Citation,
	}
	s.Content = d.content(model.SectionKind(rs.Type), &rs.Content)
	return s
}

// content decodes the payload for kind. A payload whose YAML shape does not fit
// the declared kind yields nil.
func (d *decoder) content(kind model.SectionKind, node *yaml.Node) model.Content {
	switch kind {
	case model.KindFlowchart, model.KindSteps:
		if node.Kind != yaml.SequenceNode {
			d.report(DiagShapeMismatch, "%s content must be a list of steps", kind)
			return nil
		}
		var steps []model.WorkflowStep
		if err := node.Decode(&steps); err != nil {
			d.report(DiagShapeMismatch, "%s content: %v", kind, err)
			return nil
		}
		if len(steps) == 0 {
			d.report(DiagEmptySection, "no steps")
		}
		return model.StepsContent{Flowchart: kind == model.KindFlowchart, Steps: steps}

	case model.KindInfo:
		if node.Kind != yaml.SequenceNode {
			d.report(DiagShapeMismatch, "info content must be a list of items")
			return nil
		}
		var raw []rawInfoItem
		if err := node.Decode(&raw); err != nil {
			d.report(DiagShapeMismatch, "info content: %v", err)
			return nil
		}
		items := make([]model.InfoItem, 0, len(raw))
		for _, ri := range raw {
			items = append(items, d.infoItem(ri))
		}
		return model.InfoContent{Items: items}

	case model.KindTable:
		if node.Kind != yaml.MappingNode || !hasKey(node, "headers") {
			d.report(DiagShapeMismatch, "table content must be a mapping with headers")
			return nil
		}
		var rt rawTable
		if err := node.Decode(&rt); err != nil {
			d.report(DiagShapeMismatch, "table content: %v", err)
			return nil
		}
		return model.TableContent{Table: model.TableData{
			Headers:  rt.Headers,
			Rows:     rt.Rows,
			Citation: rt.Citation,
		}}
	}

	d.report(DiagUnknownType, "unknown section type %q", kind)
	return nil
}

func (d *decoder) infoItem(ri rawInfoItem) model.InfoItem {
	item := model.InfoItem{
		Title:       ri.Title,
		Description: ri.Description,
		Details:     ri.Details,
		Citation:    ri.Citation,
	}
	if ri.Visualization != nil {
		item.Visualization = d.visual(ri.Visualization)
	}
	if len(ri.SubItems) > 0 {
		item.SubItems = make([]model.InfoItem, 0, len(ri.SubItems))
		for _, sub := range ri.SubItems {
			item.SubItems = append(item.SubItems, d.infoItem(sub))
		}
	}
	return item
}

func (d *decoder) visual(rv *rawVisual) model.Visualization {
	switch rv.Kind {
	case "bars":
		return model.BarChart{Bars: rv.Bars}
	case "diagram":
		return model.Diagram{Text: rv.Text}
	}
	d.report(DiagUnknownVisual, "unknown visualization kind %q", rv.Kind)
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
