package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/permitflow/pkg/citation"
	"github.com/vanderheijden86/permitflow/pkg/model"
)

// DefaultCardWidth is the carousel card width when none is configured.
const DefaultCardWidth = 34

// RenderOptions carries everything RenderSection needs besides the section.
type RenderOptions struct {
	// Key identifies the section within the frame; trigger and carousel ids
	// are derived from it.
	Key string
	// TestView renders info sections as test scenarios and drops the rest.
	TestView bool
	Width    int
	// CardWidth is the width of one carousel card.
	CardWidth int
	Registry  *citation.Registry
	Theme     Theme
	// Offset is the carousel scroll offset for steps and flowchart sections.
	Offset int
	// Focus is the id of the focused target (carousel or trigger).
	Focus string
	// Open reports whether the popover for a trigger id is open.
	Open func(id string) bool
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Theme.Renderer == nil {
		o.Theme = DefaultTheme(lipgloss.DefaultRenderer())
	}
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.CardWidth <= 0 {
		o.CardWidth = DefaultCardWidth
	}
	if o.Open == nil {
		o.Open = func(string) bool { return false }
	}
	return o
}

// Trigger is a citation trigger mounted in a rendered section. Only
// references that resolve against the registry become triggers.
type Trigger struct {
	ID       string
	Citation model.Citation
	Record   model.CitationRecord
}

// Trigger id suffixes.
func sectionTriggerID(key string) string     { return key + "/cite" }
func tableTriggerID(key string) string       { return key + "/table" }
func itemTriggerID(key string, i int) string { return fmt.Sprintf("%s/item/%d", key, i) }
func subItemTriggerID(key string, i, j int) string {
	return fmt.Sprintf("%s/item/%d/%d", key, i, j)
}

// SectionTriggers lists the triggers RenderSection mounts for s, in the order
// they appear on screen.
func SectionTriggers(s model.Section, key string, testView bool, reg *citation.Registry) []Trigger {
	var out []Trigger
	add := func(id string, c *model.Citation) {
		if rec, ok := reg.ResolveCitation(c); ok {
			out = append(out, Trigger{ID: id, Citation: *c, Record: rec})
		}
	}

	if testView {
		info, ok := s.Content.(model.InfoContent)
		if !ok {
			return nil
		}
		for i, item := range info.Items {
			add(itemTriggerID(key, i), item.Citation)
			for j, sub := range item.SubItems {
				add(subItemTriggerID(key, i, j), sub.Citation)
			}
		}
		return out
	}

	switch c := s.Content.(type) {
	case model.StepsContent:
		add(sectionTriggerID(key), s.Citation)
	case model.InfoContent:
		add(sectionTriggerID(key), s.Citation)
		for i, item := range c.Items {
			add(itemTriggerID(key, i), item.Citation)
		}
	case model.TableContent:
		add(sectionTriggerID(key), s.Citation)
		add(tableTriggerID(key), c.Table.Citation)
	}
	return out
}

// IsCarousel reports whether s renders as a scrollable step strip.
func IsCarousel(s model.Section, testView bool) bool {
	if testView {
		return false
	}
	_, ok := s.Content.(model.StepsContent)
	return ok
}

// RenderSection renders one section. Nil content, an unknown variant, or a
// non-info section in test view renders as the empty string.
func RenderSection(s model.Section, opts RenderOptions) string {
	opts = opts.withDefaults()

	if opts.TestView {
		info, ok := s.Content.(model.InfoContent)
		if !ok {
			return ""
		}
		return renderTestSection(s, info, opts)
	}

	switch c := s.Content.(type) {
	case model.StepsContent:
		return renderStepsSection(s, c, opts)
	case model.InfoContent:
		return renderInfoSection(s, c, opts)
	case model.TableContent:
		return renderTableSection(s, c, opts)
	default:
		return ""
	}
}

// renderTrigger draws the trigger for c, or "" when it does not resolve.
func renderTrigger(c *model.Citation, id string, opts RenderOptions) string {
	rec, ok := opts.Registry.ResolveCitation(c)
	if !ok {
		return ""
	}
	label := "❝ " + truncate(rec.DisplayName(), 28)
	style := opts.Theme.Trigger
	switch {
	case id == opts.Focus:
		style = opts.Theme.TriggerFocus
	case opts.Open(id):
		style = opts.Theme.TriggerOpen
	}
	return style.Render("[" + label + "]")
}

// headingWithTrigger lays a heading out with its trigger right-aligned.
func headingWithTrigger(heading, trigger string, width int) string {
	if trigger == "" {
		return heading
	}
	tw := lipgloss.Width(trigger)
	hw := lipgloss.Width(heading)
	if hw+1+tw > width {
		return heading + "\n" + trigger
	}
	return heading + strings.Repeat(" ", width-hw-tw) + trigger
}

func sectionHeader(s model.Section, trigger string, opts RenderOptions) string {
	t := opts.Theme
	title := t.SectionTitle.Render(truncate(s.Title, opts.Width))
	out := headingWithTrigger(title, trigger, opts.Width)
	if s.Description != "" {
		out += "\n" + t.MutedText.Width(opts.Width).Render(s.Description)
	}
	return out
}

// preserveWrap wraps only the lines wider than width, so literal spacing and
// blank lines in details text survive.
func preserveWrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[i] = ansi.Wrap(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}

// ══════════════════════════════════════════════════════════════════════════════
// VARIANTS
// ══════════════════════════════════════════════════════════════════════════════

func renderStepsSection(s model.Section, c model.StepsContent, opts RenderOptions) string {
	header := sectionHeader(s, renderTrigger(s.Citation, sectionTriggerID(opts.Key), opts), opts)
	if len(c.Steps) == 0 {
		return header
	}
	focused := opts.Focus != "" && opts.Focus == opts.Key
	strip := renderCarousel(opts.Theme, c.Steps, opts.CardWidth, opts.Width, opts.Offset, focused)
	return header + "\n\n" + strip
}

func renderInfoSection(s model.Section, c model.InfoContent, opts RenderOptions) string {
	t := opts.Theme
	var b strings.Builder
	b.WriteString(sectionHeader(s, renderTrigger(s.Citation, sectionTriggerID(opts.Key), opts), opts))

	cardStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(opts.Width - 2)
	inner := opts.Width - 4

	for i, item := range c.Items {
		var card []string
		trigger := renderTrigger(item.Citation, itemTriggerID(opts.Key, i), opts)
		if item.Title != "" || trigger != "" {
			title := t.Renderer.NewStyle().Bold(true).Render(truncate(item.Title, inner))
			card = append(card, headingWithTrigger(title, trigger, inner))
		}
		if item.Description != "" {
			card = append(card, t.MutedText.Width(inner).Render(item.Description))
		}
		if item.Details != "" {
			card = append(card, preserveWrap(item.Details, inner))
		}
		if item.Visualization != nil {
			if vis := item.Visualization.Render(inner); vis != "" {
				card = append(card, RenderDivider(inner), vis)
			}
		}
		b.WriteString("\n")
		b.WriteString(cardStyle.Render(strings.Join(card, "\n")))
	}
	return b.String()
}

func renderTestSection(s model.Section, c model.InfoContent, opts RenderOptions) string {
	t := opts.Theme
	var b strings.Builder
	b.WriteString(t.SectionTitle.Render(truncate(s.Title, opts.Width)))

	cardStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(opts.Width - 2)
	inner := opts.Width - 4

	for i, item := range c.Items {
		var card []string
		title := t.Title.Render(truncate(item.Title, inner))
		card = append(card, headingWithTrigger(title, renderTrigger(item.Citation, itemTriggerID(opts.Key, i), opts), inner))
		if item.Description != "" {
			card = append(card, t.MutedText.Width(inner).Render(item.Description))
		}
		if len(item.SubItems) > 0 {
			card = append(card, RenderDivider(inner))
			card = append(card, renderSubItemGrid(item.SubItems, i, inner, opts))
		}
		b.WriteString("\n")
		b.WriteString(cardStyle.Render(strings.Join(card, "\n")))
	}
	return b.String()
}

// subItemColumns returns two columns when there is room for them.
func subItemColumns(width int) int {
	if width >= 60 {
		return 2
	}
	return 1
}

func renderSubItemGrid(subs []model.InfoItem, item, width int, opts RenderOptions) string {
	t := opts.Theme
	cols := subItemColumns(width)
	gap := SpaceMD
	colWidth := width
	if cols == 2 {
		colWidth = (width - gap) / 2
	}

	cells := make([]string, len(subs))
	for j, sub := range subs {
		title := t.Renderer.NewStyle().Bold(true).Foreground(ColorSubtext).Render(truncate(sub.Title, colWidth))
		trigger := renderTrigger(sub.Citation, subItemTriggerID(opts.Key, item, j), opts)
		cell := headingWithTrigger(title, trigger, colWidth)
		if sub.Details != "" {
			cell += "\n" + preserveWrap(sub.Details, colWidth)
		}
		cells[j] = t.Renderer.NewStyle().Width(colWidth).Render(cell)
	}

	var rows []string
	for j := 0; j < len(cells); j += cols {
		if cols == 2 && j+1 < len(cells) {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[j], strings.Repeat(" ", gap), cells[j+1]))
		} else {
			rows = append(rows, cells[j])
		}
	}
	return strings.Join(rows, "\n\n")
}

func renderTableSection(s model.Section, c model.TableContent, opts RenderOptions) string {
	t := opts.Theme
	trigger := renderTrigger(s.Citation, sectionTriggerID(opts.Key), opts)
	if tt := renderTrigger(c.Table.Citation, tableTriggerID(opts.Key), opts); tt != "" {
		if trigger != "" {
			trigger += " "
		}
		trigger += tt
	}
	header := sectionHeader(s, trigger, opts)
	return header + "\n" + renderTable(t, c.Table, opts.Width)
}

// ══════════════════════════════════════════════════════════════════════════════
// TABLE
// ══════════════════════════════════════════════════════════════════════════════

// columnWidths sizes each column to its widest cell, then shrinks the widest
// columns until the table fits in width.
func columnWidths(headers []string, rows [][]string, width int) []int {
	n := len(headers)
	widths := make([]int, n)
	for i, h := range headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			for _, l := range cellLines(cell) {
				if w := ansi.StringWidth(l); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	// separators: " │ " between columns plus one space either side
	avail := width - 3*(n-1) - 2
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > avail {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 3 {
			break
		}
		widths[widest]--
		total--
	}
	return widths
}

func renderTable(t Theme, data model.TableData, width int) string {
	n := len(data.Headers)
	if n == 0 {
		return ""
	}
	rows := data.NormalizedRows()
	widths := columnWidths(data.Headers, rows, width)

	sep := t.MutedText.Render(" │ ")
	line := func(cells []string) string {
		parts := make([]string, n)
		for i, cell := range cells {
			parts[i] = padCell(cell, widths[i])
		}
		return " " + strings.Join(parts, sep)
	}
	// A row with multi-line cells spans as many lines as its tallest cell.
	rowLines := func(cells []string) []string {
		split := make([][]string, n)
		height := 1
		for i, cell := range cells {
			split[i] = cellLines(cell)
			height = max(height, len(split[i]))
		}
		out := make([]string, height)
		for h := range out {
			phys := make([]string, n)
			for i := range phys {
				if h < len(split[i]) {
					phys[i] = split[i][h]
				}
			}
			out[h] = line(phys)
		}
		return out
	}

	headerStyle := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
	var b strings.Builder
	b.WriteString(headerStyle.Render(line(upperAll(data.Headers))))
	total := 0
	for _, w := range widths {
		total += w
	}
	b.WriteString("\n")
	b.WriteString(RenderDivider(total + 3*(n-1) + 2))
	for _, r := range rows {
		for _, l := range rowLines(r) {
			b.WriteString("\n")
			b.WriteString(l)
		}
	}
	if ragged := data.RaggedRows(); ragged > 0 {
		note := fmt.Sprintf("⚠ %d row(s) fitted to %d columns", ragged, n)
		b.WriteString("\n")
		b.WriteString(t.Renderer.NewStyle().Foreground(ColorWarning).Render(truncate(" "+note, width)))
	}
	return b.String()
}

// cellLines splits a table cell into its display lines.
func cellLines(cell string) []string {
	return strings.Split(strings.ReplaceAll(cell, "\r\n", "\n"), "\n")
}

func upperAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToUpper(s)
	}
	return out
}
