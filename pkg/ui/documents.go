package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/permitflow/pkg/model"
)

const documentCardWidth = 38

// documentColumns fits up to three cards side by side.
func documentColumns(width int) int {
	cols := width / (documentCardWidth + 1)
	return clampInt(cols, 1, 3)
}

// RenderDocuments renders every citation record as a link card, in registry
// order. The card at cursor is highlighted when focused.
func RenderDocuments(t Theme, records []model.CitationRecord, cursor, width int, focused bool) string {
	var b strings.Builder
	b.WriteString(t.Title.Render("Source Documents"))
	b.WriteString("\n")
	b.WriteString(t.MutedText.Width(width).Render(
		"Official guidelines and technical codes used as the primary sources for these workflows."))
	b.WriteString("\n")

	if len(records) == 0 {
		b.WriteString("\n")
		b.WriteString(t.MutedText.Render("No source documents."))
		return b.String()
	}

	cols := documentColumns(width)
	cardWidth := documentCardWidth
	if cols == 1 && width-2 < cardWidth {
		cardWidth = width - 2
	}
	inner := cardWidth - 4

	cards := make([]string, len(records))
	for i, rec := range records {
		border := t.Border
		if focused && i == cursor {
			border = t.Primary
		}
		body := strings.Join([]string{
			t.Renderer.NewStyle().Bold(true).Render(truncate("📄 "+rec.DisplayName(), inner)),
			t.LinkText.Bold(true).Render("View PDF"),
			t.MutedText.Render(truncate(rec.URL, inner)),
		}, "\n")
		cards[i] = t.Renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Width(cardWidth - 2).
			Render(body)
	}

	for i := 0; i < len(cards); i += cols {
		end := i + cols
		if end > len(cards) {
			end = len(cards)
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, spaced(cards[i:end])...))
	}
	return b.String()
}

func spaced(cards []string) []string {
	out := make([]string, 0, 2*len(cards))
	for i, c := range cards {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, c)
	}
	return out
}
