package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/permitflow/pkg/model"
)

// GotoModal is a workflow picker built on a huh select.
type GotoModal struct {
	form   *huh.Form
	choice *string
	theme  Theme
}

// NewGotoModal creates a picker over workflows with current preselected.
func NewGotoModal(workflows []model.Category, current string, theme Theme) GotoModal {
	choice := current
	opts := make([]huh.Option[string], 0, len(workflows))
	for _, c := range workflows {
		opts = append(opts, huh.NewOption(c.Icon+" "+c.Title, c.ID))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Go to workflow").
				Options(opts...).
				Value(&choice),
		),
	).WithTheme(huh.ThemeDracula()).
		WithShowHelp(false).
		WithWidth(48)
	// Completing the picker must not end the program.
	form.SubmitCmd = nil
	form.CancelCmd = nil

	return GotoModal{form: form, choice: &choice, theme: theme}
}

func (g GotoModal) Init() tea.Cmd {
	return g.form.Init()
}

func (g GotoModal) Update(msg tea.Msg) (GotoModal, tea.Cmd) {
	f, cmd := g.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		g.form = form
	}
	return g, cmd
}

// Done reports whether a workflow was picked.
func (g GotoModal) Done() bool {
	return g.form.State == huh.StateCompleted
}

// Aborted reports whether the picker was cancelled from inside the form.
func (g GotoModal) Aborted() bool {
	return g.form.State == huh.StateAborted
}

// Choice returns the picked workflow id.
func (g GotoModal) Choice() string {
	return *g.choice
}

// View centers the picker in a width x height area.
func (g GotoModal) View(width, height int) string {
	box := g.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(g.theme.Primary).
		Padding(1, 2).
		Render(g.form.View() + "\n" + g.theme.MutedText.Render("[enter] go   [esc] cancel"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
