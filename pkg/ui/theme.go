package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/permitflow/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor

	// Responsible party accents
	Applicant lipgloss.AdaptiveColor
	Authority lipgloss.AdaptiveColor
	Shared    lipgloss.AdaptiveColor
	Neutral   lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Link      lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed text styles, created once instead of per frame
	Title         lipgloss.Style // Workflow title
	SectionTitle  lipgloss.Style // Section headings
	MutedText     lipgloss.Style // Descriptions, durations
	SecondaryText lipgloss.Style // Step numbers
	PrimaryBold   lipgloss.Style // Focus markers
	LinkText      lipgloss.Style // URLs, "View PDF"
	Trigger       lipgloss.Style // Citation trigger, idle
	TriggerFocus  lipgloss.Style // Citation trigger under the cursor
	TriggerOpen   lipgloss.Style // Citation trigger whose popover is open
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray

		Applicant: lipgloss.AdaptiveColor{Light: "#2684FF", Dark: "#4C9AFF"}, // Blue
		Authority: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green
		Shared:    lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Neutral:   lipgloss.AdaptiveColor{Light: "#888888", Dark: "#6272A4"}, // Gray

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Link:      lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.SectionTitle = r.NewStyle().Foreground(ColorText).Bold(true).Underline(true)
	t.MutedText = r.NewStyle().Foreground(ColorMuted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.LinkText = r.NewStyle().Foreground(t.Link)
	t.Trigger = r.NewStyle().Foreground(t.Link)
	t.TriggerFocus = r.NewStyle().Foreground(t.Link).Reverse(true).Bold(true)
	t.TriggerOpen = r.NewStyle().Foreground(ThemeFg("#FFD700")).Bold(true)

	return t
}

// AccentFor maps a step's responsible party to its card accent. Unknown
// parties, including System, use the neutral accent.
func (t Theme) AccentFor(r model.Responsible) lipgloss.AdaptiveColor {
	switch r {
	case model.ResponsibleApplicant:
		return t.Applicant
	case model.ResponsibleAuthority:
		return t.Authority
	case model.ResponsibleShared:
		return t.Shared
	default:
		return t.Neutral
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
