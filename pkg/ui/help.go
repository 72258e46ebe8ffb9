package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// popoverKeyMap holds the actions that apply to the top popover.
type popoverKeyMap struct {
	Close    key.Binding
	CloseAll key.Binding
	Copy     key.Binding
}

var popoverKeys = popoverKeyMap{
	Close:    key.NewBinding(key.WithKeys("esc", "c"), key.WithHelp("esc / c", "close top popover")),
	CloseAll: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close all popovers")),
	Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy citation")),
}

type helpGroup struct {
	title    string
	bindings []key.Binding
}

func helpKey(keys, desc string) key.Binding {
	return key.NewBinding(key.WithHelp(keys, desc))
}

var helpGroups = []helpGroup{
	{"Navigation", []key.Binding{
		helpKey("tab", "toggle sidebar / content"),
		helpKey("j/k ↑/↓", "move / scroll"),
		helpKey("enter", "select"),
		helpKey("1 2 3", "workflows / tests / documents"),
		helpKey("g", "go to workflow"),
	}},
	{"Content", []key.Binding{
		helpKey("n / N", "next / previous target"),
		helpKey("h/l ←/→", "scroll focused carousel"),
		helpKey("enter", "open citation"),
		helpKey("pgup/pgdn", "page"),
	}},
	{"Citations", []key.Binding{
		popoverKeys.Close,
		popoverKeys.CloseAll,
		popoverKeys.Copy,
		helpKey("click", "dismiss only: closes popovers it lands outside"),
	}},
	{"General", []key.Binding{
		helpKey("?", "toggle help"),
		helpKey("q", "quit"),
	}},
}

// renderHelpOverlay draws the key reference centered in the frame.
func renderHelpOverlay(t Theme, width, height int) string {
	keyStyle := t.PrimaryBold.Width(12)
	var cols []string
	for _, g := range helpGroups {
		var b strings.Builder
		b.WriteString(t.Title.Render(g.title))
		for _, hb := range g.bindings {
			b.WriteString("\n")
			h := hb.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(t.Base.Render(h.Desc))
		}
		cols = append(cols, t.Renderer.NewStyle().Width(42).Render(b.String()))
	}

	var rows []string
	for i := 0; i < len(cols); i += 2 {
		if i+1 < len(cols) {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols[i], "  ", cols[i+1]))
		} else {
			rows = append(rows, cols[i])
		}
	}
	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Render(strings.Join(rows, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
