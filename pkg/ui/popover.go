package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/permitflow/pkg/citation"
	"github.com/vanderheijden86/permitflow/pkg/model"
)

// popoverWidth is the preferred outer width of a citation popover.
const popoverWidth = 64

// Popovers holds the open/closed state of every citation trigger. A trigger
// absent from the stack is closed. Open popovers are kept in the order they
// were opened; the last one is drawn on top.
type Popovers struct {
	stack []Trigger
}

// Open opens the popover for tr, or raises it to the top if already open.
func (p *Popovers) Open(tr Trigger) {
	p.Close(tr.ID)
	p.stack = append(p.stack, tr)
}

// Close closes the popover for id. Closing a closed popover is a no-op.
func (p *Popovers) Close(id string) {
	for i, tr := range p.stack {
		if tr.ID == id {
			p.stack = append(p.stack[:i:i], p.stack[i+1:]...)
			return
		}
	}
}

// CloseTop closes the most recently opened popover.
func (p *Popovers) CloseTop() bool {
	if len(p.stack) == 0 {
		return false
	}
	p.stack = p.stack[:len(p.stack)-1]
	return true
}

// CloseAll closes every popover.
func (p *Popovers) CloseAll() {
	p.stack = nil
}

// IsOpen reports whether the popover for id is open.
func (p *Popovers) IsOpen(id string) bool {
	for _, tr := range p.stack {
		if tr.ID == id {
			return true
		}
	}
	return false
}

// Top returns the most recently opened popover.
func (p *Popovers) Top() (Trigger, bool) {
	if len(p.stack) == 0 {
		return Trigger{}, false
	}
	return p.stack[len(p.stack)-1], true
}

// Len returns the number of open popovers.
func (p *Popovers) Len() int {
	return len(p.stack)
}

// Stack returns the open triggers, bottom first.
func (p *Popovers) Stack() []Trigger {
	return append([]Trigger(nil), p.stack...)
}

// Prune closes popovers whose triggers are no longer mounted, e.g. after a
// reload dropped a section.
func (p *Popovers) Prune(mounted map[string]bool) {
	kept := p.stack[:0]
	for _, tr := range p.stack {
		if mounted[tr.ID] {
			kept = append(kept, tr)
		}
	}
	p.stack = kept
}

// RenderPopover draws the popover for a citation reference: the resolved APA
// text and the page. A reference that does not resolve renders nothing.
func RenderPopover(t Theme, reg *citation.Registry, c *model.Citation, width int, top bool) string {
	rec, ok := reg.ResolveCitation(c)
	if !ok {
		return ""
	}
	if width > popoverWidth {
		width = popoverWidth
	}
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	label := t.SecondaryText.Bold(true)
	field := t.Renderer.NewStyle().
		Background(ThemeBg("#363949")).
		Padding(0, 1).
		Width(inner)

	var b strings.Builder
	b.WriteString(t.Title.Render("Citation Source"))
	b.WriteString("\n\n")
	b.WriteString(label.Render("Source"))
	b.WriteString("\n")
	b.WriteString(field.Render(rec.APA))
	b.WriteString("\n")
	b.WriteString(label.Render("Page"))
	b.WriteString("\n")
	b.WriteString(field.Render(c.Page))
	b.WriteString("\n")
	b.WriteString(t.LinkText.Render(truncate(rec.URL, inner)))
	b.WriteString("\n\n")
	if top {
		b.WriteString(t.MutedText.Render("[y] copy   [esc/c] close   [x] close all"))
	} else {
		b.WriteString(t.MutedText.Render("[esc/c] close"))
	}

	border := t.Border
	if top {
		border = t.Primary
	}
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(inner + 2).
		Render(b.String())
}
