package ui

import (
	"strings"

	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
	"github.com/vanderheijden86/permitflow/pkg/nav"
)

// sidebarEntryKind distinguishes what selecting a sidebar row does.
type sidebarEntryKind int

const (
	entryWorkflow sidebarEntryKind = iota
	entryTests
	entryDocuments
)

type sidebarEntry struct {
	kind  sidebarEntryKind
	id    string // workflow id for entryWorkflow
	icon  string
	title string
}

// Sidebar lists the workflow categories followed by the tests and documents
// views. It owns only its cursor; the active selection lives in nav.State.
type Sidebar struct {
	entries []sidebarEntry
	cursor  int
}

// NewSidebar builds the sidebar rows for a data set.
func NewSidebar(ds *loader.Dataset) Sidebar {
	var entries []sidebarEntry
	for _, c := range ds.Workflows {
		entries = append(entries, sidebarEntry{kind: entryWorkflow, id: c.ID, icon: c.Icon, title: c.Title})
	}
	testsTitle := ds.Tests.Title
	if testsTitle == "" {
		testsTitle = "Tests"
	}
	testsIcon := ds.Tests.Icon
	if testsIcon == "" {
		testsIcon = "🧪"
	}
	entries = append(entries,
		sidebarEntry{kind: entryTests, icon: testsIcon, title: testsTitle},
		sidebarEntry{kind: entryDocuments, icon: "📄", title: "Source Documents"},
	)
	return Sidebar{entries: entries}
}

// Len returns the number of rows.
func (s Sidebar) Len() int { return len(s.entries) }

// Cursor returns the row under the cursor.
func (s Sidebar) Cursor() int { return s.cursor }

func (s *Sidebar) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

func (s *Sidebar) MoveDown() {
	if s.cursor < len(s.entries)-1 {
		s.cursor++
	}
}

// Apply performs the selection for the row under the cursor.
func (s Sidebar) Apply(state *nav.State) {
	if len(s.entries) == 0 {
		return
	}
	e := s.entries[s.cursor]
	switch e.kind {
	case entryWorkflow:
		state.SelectWorkflow(e.id)
		state.SelectView(model.ViewWorkflows)
	case entryTests:
		state.SelectView(model.ViewTests)
	case entryDocuments:
		state.SelectView(model.ViewDocuments)
	}
}

// SyncTo moves the cursor onto the row that is currently active.
func (s *Sidebar) SyncTo(state nav.State, workflows []model.Category) {
	for i, e := range s.entries {
		if s.isActive(e, state, workflows) {
			s.cursor = i
			return
		}
	}
}

func (s Sidebar) isActive(e sidebarEntry, state nav.State, workflows []model.Category) bool {
	switch e.kind {
	case entryWorkflow:
		if state.ActiveView != model.ViewWorkflows {
			return false
		}
		cat, ok := state.Resolve(workflows)
		return ok && cat.ID == e.id
	case entryTests:
		return state.ActiveView == model.ViewTests
	case entryDocuments:
		return state.ActiveView == model.ViewDocuments
	}
	return false
}

// View renders the sidebar into width x height cells.
func (s Sidebar) View(t Theme, state nav.State, workflows []model.Category, width, height int, focused bool) string {
	inner := width - 2
	if inner < 4 {
		inner = 4
	}
	group := t.MutedText.Bold(true)

	lines := []string{
		t.PrimaryBold.Render(truncate("PERMITFLOW", inner)),
		"",
		group.Render("WORKFLOWS"),
	}
	for i, e := range s.entries {
		if e.kind == entryTests {
			lines = append(lines, "", group.Render("REFERENCE"))
		}

		marker := "  "
		if focused && i == s.cursor {
			marker = t.PrimaryBold.Render("▸ ")
		}
		label := truncate(e.icon+" "+e.title, inner-3)
		if s.isActive(e, state, workflows) {
			lines = append(lines, marker+t.Selected.Render(label))
		} else {
			lines = append(lines, marker+" "+t.Base.Render(label))
		}
	}

	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
