package nav

import (
	"testing"

	"github.com/vanderheijden86/permitflow/pkg/model"
	"pgregory.net/rapid"
)

var testCategories = []model.Category{
	{ID: "tower-planning", Title: "Towers"},
	{ID: "fibre-road-reserve", Title: "Fibre"},
	{ID: "small-cell", Title: "Small cells"},
}

func TestNew(t *testing.T) {
	s := New(testCategories)
	if s.ActiveView != model.ViewWorkflows {
		t.Errorf("ActiveView = %s, want WORKFLOWS", s.ActiveView)
	}
	if s.SelectedWorkflowID != "tower-planning" {
		t.Errorf("SelectedWorkflowID = %q, want tower-planning", s.SelectedWorkflowID)
	}

	empty := New(nil)
	if empty.SelectedWorkflowID != "" {
		t.Errorf("empty data set should leave selection blank, got %q", empty.SelectedWorkflowID)
	}
}

func TestResolve_FallsBackToFirst(t *testing.T) {
	s := New(testCategories)
	s.SelectWorkflow("does-not-exist")
	cat, ok := s.Resolve(testCategories)
	if !ok {
		t.Fatal("Resolve should succeed when categories exist")
	}
	if cat.ID != "tower-planning" {
		t.Errorf("fallback = %q, want tower-planning", cat.ID)
	}

	if _, ok := s.Resolve(nil); ok {
		t.Error("Resolve on no categories should report !ok")
	}
}

func TestViewRoundTrip_PreservesSelection(t *testing.T) {
	s := New(testCategories)
	s.SelectWorkflow("small-cell")

	for _, v := range []model.View{model.ViewTests, model.ViewDocuments, model.ViewWorkflows} {
		s.SelectView(v)
	}
	if s.ActiveView != model.ViewWorkflows {
		t.Errorf("ActiveView = %s, want WORKFLOWS", s.ActiveView)
	}
	if s.SelectedWorkflowID != "small-cell" {
		t.Errorf("selection reset to %q", s.SelectedWorkflowID)
	}
	cat, _ := s.Resolve(testCategories)
	if cat.ID != "small-cell" {
		t.Errorf("resolved %q, want small-cell", cat.ID)
	}
}

func TestSelectWorkflow_OutsideWorkflowsView(t *testing.T) {
	s := New(testCategories)
	s.SelectView(model.ViewDocuments)
	s.SelectWorkflow("fibre-road-reserve")
	if s.ActiveView != model.ViewDocuments {
		t.Error("SelectWorkflow must not change the active view")
	}
	s.SelectView(model.ViewWorkflows)
	if cat, _ := s.Resolve(testCategories); cat.ID != "fibre-road-reserve" {
		t.Errorf("selection made in DOCUMENTS should apply on return, got %q", cat.ID)
	}
}

func TestSelectView_IgnoresUnknown(t *testing.T) {
	s := New(testCategories)
	s.SelectView(model.View(42))
	if s.ActiveView != model.ViewWorkflows {
		t.Errorf("unknown view changed state to %v", s.ActiveView)
	}
}

// Resolve is total: any selection yields a category from the set.
func TestResolve_Total(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(testCategories)
		s.SelectWorkflow(rapid.String().Draw(t, "id"))
		cat, ok := s.Resolve(testCategories)
		if !ok {
			t.Fatal("Resolve failed")
		}
		found := false
		for _, c := range testCategories {
			if c.ID == cat.ID {
				found = true
			}
		}
		if !found {
			t.Fatalf("Resolve returned %q outside the set", cat.ID)
		}
	})
}
