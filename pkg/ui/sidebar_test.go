package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/permitflow/pkg/citation"
	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
	"github.com/vanderheijden86/permitflow/pkg/nav"
)

func sidebarDataset() *loader.Dataset {
	return &loader.Dataset{
		Workflows: []model.Category{
			{ID: "a", Title: "Alpha", Icon: "A"},
			{ID: "b", Title: "Beta", Icon: "B"},
		},
		Citations: citation.NewRegistry(nil),
	}
}

func TestSidebar_Entries(t *testing.T) {
	s := NewSidebar(sidebarDataset())
	if s.Len() != 4 {
		t.Fatalf("expected 2 workflows + tests + documents, got %d rows", s.Len())
	}
	out := ansi.Strip(s.View(TestTheme(), nav.New(sidebarDataset().Workflows), sidebarDataset().Workflows, 30, 0, true))
	for _, want := range []string{"Alpha", "Beta", "Tests", "Source Documents", "REFERENCE", "▸"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in sidebar:\n%s", want, out)
		}
	}
}

func TestSidebar_CursorBounds(t *testing.T) {
	s := NewSidebar(sidebarDataset())
	s.MoveUp()
	if s.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", s.Cursor())
	}
	for i := 0; i < 10; i++ {
		s.MoveDown()
	}
	if s.Cursor() != s.Len()-1 {
		t.Errorf("cursor = %d, want %d", s.Cursor(), s.Len()-1)
	}
}

func TestSidebar_ApplyAndSync(t *testing.T) {
	ds := sidebarDataset()
	s := NewSidebar(ds)
	state := nav.New(ds.Workflows)

	s.MoveDown()
	s.Apply(&state)
	if state.SelectedWorkflowID != "b" || state.ActiveView != model.ViewWorkflows {
		t.Errorf("unexpected state %+v", state)
	}

	s.MoveDown()
	s.Apply(&state)
	if state.ActiveView != model.ViewTests || state.SelectedWorkflowID != "b" {
		t.Errorf("tests row should keep the selection: %+v", state)
	}

	state.SelectView(model.ViewDocuments)
	s.SyncTo(state, ds.Workflows)
	if s.Cursor() != 3 {
		t.Errorf("cursor = %d, want documents row", s.Cursor())
	}

	// A stale id syncs to the first workflow, matching the content fallback.
	state = nav.State{ActiveView: model.ViewWorkflows, SelectedWorkflowID: "gone"}
	s.SyncTo(state, ds.Workflows)
	if s.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0 for a stale selection", s.Cursor())
	}
}

func TestSidebar_TruncatesToHeight(t *testing.T) {
	ds := sidebarDataset()
	s := NewSidebar(ds)
	out := s.View(TestTheme(), nav.New(ds.Workflows), ds.Workflows, 30, 3, false)
	if got := len(strings.Split(out, "\n")); got != 3 {
		t.Errorf("sidebar height = %d, want 3", got)
	}
}
