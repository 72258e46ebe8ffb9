// Package model defines the static content served by permitflow: workflow
// categories, their sections and the citation records they point at.
package model

import "strings"

// CitationRecord is one bibliographic source document.
type CitationRecord struct {
	ID  string `yaml:"id" json:"id"`
	APA string `yaml:"apa" json:"apa"`
	URL string `yaml:"url" json:"url"`
}

// DisplayName returns the record id with underscores shown as spaces.
func (r CitationRecord) DisplayName() string {
	return strings.ReplaceAll(r.ID, "_", " ")
}

// Citation points at a CitationRecord plus a page locator.
// Page may be a number or a free-form string ("12-14", "Annex B"); it is kept
// as its display string.
type Citation struct {
	Source string `yaml:"source" json:"source"`
	Page   string `yaml:"page" json:"page"`
}

// Responsible classifies who performs a workflow step.
type Responsible string

const (
	ResponsibleApplicant Responsible = "Applicant"
	ResponsibleAuthority Responsible = "Authority"
	ResponsibleShared    Responsible = "Shared"
	ResponsibleSystem    Responsible = "System"
)

// IsValid reports whether r is one of the known parties.
func (r Responsible) IsValid() bool {
	switch r {
	case ResponsibleApplicant, ResponsibleAuthority, ResponsibleShared, ResponsibleSystem:
		return true
	}
	return false
}

// WorkflowStep is a single card in a steps/flowchart carousel.
// ID doubles as display numbering; order is slice order.
type WorkflowStep struct {
	ID          int         `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Responsible Responsible `yaml:"responsible" json:"responsible"`
	Description string      `yaml:"description" json:"description"`
	Duration    string      `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// InfoItem is a card in an info list, or a test scenario in the tests view.
type InfoItem struct {
	Title         string        `json:"title,omitempty"`
	Description   string        `json:"description,omitempty"`
	Details       string        `json:"details"`
	Citation      *Citation     `json:"citation,omitempty"`
	Visualization Visualization `json:"-"`
	SubItems      []InfoItem    `json:"sub_items,omitempty"`
}

// TableData is a header row plus body rows. Row lengths are not enforced.
type TableData struct {
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	Citation *Citation  `json:"citation,omitempty"`
}

// NormalizeRow fits a row to n columns: short rows gain empty trailing cells,
// long rows lose the cells past n.
func NormalizeRow(row []string, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// NormalizedRows returns every body row fitted to the header count.
func (t TableData) NormalizedRows() [][]string {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = NormalizeRow(r, len(t.Headers))
	}
	return rows
}

// RaggedRows counts body rows whose cell count differs from the header count.
func (t TableData) RaggedRows() int {
	n := 0
	for _, r := range t.Rows {
		if len(r) != len(t.Headers) {
			n++
		}
	}
	return n
}

// Category is a top-level workflow shown in the sidebar.
type Category struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
}

// View is one of the top-level content modes.
type View int

const (
	ViewWorkflows View = iota
	ViewTests
	ViewDocuments
)

// String returns the canonical upper-case name of the view.
func (v View) String() string {
	switch v {
	case ViewWorkflows:
		return "WORKFLOWS"
	case ViewTests:
		return "TESTS"
	case ViewDocuments:
		return "DOCUMENTS"
	default:
		return "UNKNOWN"
	}
}

// ParseView maps a case-insensitive view name to a View.
func ParseView(s string) (View, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WORKFLOWS", "WORKFLOW":
		return ViewWorkflows, true
	case "TESTS", "TEST":
		return ViewTests, true
	case "DOCUMENTS", "DOCS":
		return ViewDocuments, true
	}
	return ViewWorkflows, false
}
