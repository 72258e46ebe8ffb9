// Package nav holds the navigation state of the browser: which top-level view
// is active and which workflow category is selected.
package nav

import (
	"github.com/vanderheijden86/permitflow/pkg/model"
)

// State is the only mutable application state. The zero value is the
// WORKFLOWS view with no selection, which resolves to the first category.
type State struct {
	ActiveView         model.View
	SelectedWorkflowID string
}

// New returns the initial state: WORKFLOWS view with the first category selected.
func New(workflows []model.Category) State {
	s := State{ActiveView: model.ViewWorkflows}
	if len(workflows) > 0 {
		s.SelectedWorkflowID = workflows[0].ID
	}
	return s
}

// SelectView switches the active view. The selected workflow is kept.
func (s *State) SelectView(v model.View) {
	switch v {
	case model.ViewWorkflows, model.ViewTests, model.ViewDocuments:
		s.ActiveView = v
	}
}

// SelectWorkflow records the selected workflow id. It is accepted in any view
// and takes visible effect once the WORKFLOWS view is active.
func (s *State) SelectWorkflow(id string) {
	s.SelectedWorkflowID = id
}

// Resolve returns the selected category, or the first category when the id
// has no match. ok is false only when there are no categories at all.
func (s State) Resolve(workflows []model.Category) (cat model.Category, ok bool) {
	if len(workflows) == 0 {
		return model.Category{}, false
	}
	for _, c := range workflows {
		if c.ID == s.SelectedWorkflowID {
			return c, true
		}
	}
	return workflows[0], true
}
