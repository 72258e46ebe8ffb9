package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/permitflow/pkg/model"
)

const (
	// overflowDeadZone keeps the scroll controls from flickering when the
	// offset sits within a few cells of either edge.
	overflowDeadZone = 10
	// scrollFraction is the share of the visible strip one scroll request moves.
	scrollFraction = 0.8
	// connectorGlyph separates consecutive step cards.
	connectorGlyph = "→"
	// arrowGutter is the width reserved on each side for the ‹ › controls.
	arrowGutter = 2

	carouselFPS = 60
)

// Overflow reports which scroll controls a carousel should show.
type Overflow struct {
	CanScrollLeft  bool
	CanScrollRight bool
}

// OverflowState computes the scroll affordances for a strip of content cells
// shown through a viewport of the given width at the given offset.
func OverflowState(offset, content, viewport int) Overflow {
	return Overflow{
		CanScrollLeft:  offset > overflowDeadZone,
		CanScrollRight: offset < content-viewport-overflowDeadZone,
	}
}

// ScrollDirection selects which way a carousel scrolls.
type ScrollDirection int

const (
	ScrollLeft  ScrollDirection = -1
	ScrollRight ScrollDirection = 1
)

// maxOffset is the largest offset that still fills the viewport.
func maxOffset(content, viewport int) int {
	if content <= viewport {
		return 0
	}
	return content - viewport
}

// ScrollTarget returns the offset a scroll request settles on: 80% of the
// viewport in the given direction, clamped to the strip.
func ScrollTarget(offset, content, viewport int, dir ScrollDirection) int {
	step := int(math.Round(float64(viewport) * scrollFraction))
	if step < 1 {
		step = 1
	}
	return clampInt(offset+int(dir)*step, 0, maxOffset(content, viewport))
}

// CarouselViewport is the number of strip cells visible in a section of the
// given width once the control gutters are taken out.
func CarouselViewport(width int) int {
	if v := width - 2*arrowGutter; v > 0 {
		return v
	}
	return 1
}

// carouselFrameMsg advances the scroll animation of one carousel.
type carouselFrameMsg struct {
	Key string
}

// Carousel tracks the horizontal scroll position of one step strip.
// Position is animated toward a target with a critically damped spring.
type Carousel struct {
	Key           string
	ContentWidth  int
	ViewportWidth int

	pos       float64
	vel       float64
	target    float64
	animating bool
	spring    harmonica.Spring
}

// NewCarousel creates a carousel at offset 0.
func NewCarousel(key string) *Carousel {
	return &Carousel{
		Key:    key,
		spring: harmonica.NewSpring(harmonica.FPS(carouselFPS), 12.0, 1.0),
	}
}

// Offset is the current scroll offset in cells.
func (c *Carousel) Offset() int {
	return int(math.Round(c.pos))
}

// Target is the offset the carousel is settling on.
func (c *Carousel) Target() int {
	return int(math.Round(c.target))
}

// Animating reports whether animation frames are still scheduled.
func (c *Carousel) Animating() bool {
	return c.animating
}

// Overflow recomputes the scroll affordances for the current position.
func (c *Carousel) Overflow() Overflow {
	return OverflowState(c.Offset(), c.ContentWidth, c.ViewportWidth)
}

// Resize records new strip and viewport widths, clamping the position so a
// wider viewport never leaves blank space at the end of the strip.
func (c *Carousel) Resize(content, viewport int) {
	c.ContentWidth = content
	c.ViewportWidth = viewport
	limit := float64(maxOffset(content, viewport))
	if c.target > limit {
		c.target = limit
	}
	if c.pos > limit {
		c.pos = limit
		c.vel = 0
	}
}

// Scroll moves the target by 80% of the viewport and starts the animation if
// it is not already running. The returned command is fire-and-forget.
func (c *Carousel) Scroll(dir ScrollDirection) tea.Cmd {
	c.target = float64(ScrollTarget(c.Target(), c.ContentWidth, c.ViewportWidth, dir))
	if c.animating || c.Offset() == c.Target() {
		return nil
	}
	c.animating = true
	return c.tick()
}

// Step advances one animation frame and returns the next frame, or nil once
// the carousel has settled on its target.
func (c *Carousel) Step() tea.Cmd {
	if !c.animating {
		return nil
	}
	c.pos, c.vel = c.spring.Update(c.pos, c.vel, c.target)
	if math.Abs(c.pos-c.target) < 0.5 && math.Abs(c.vel) < 0.5 {
		c.pos = c.target
		c.vel = 0
		c.animating = false
		return nil
	}
	return c.tick()
}

func (c *Carousel) tick() tea.Cmd {
	key := c.Key
	return tea.Tick(time.Second/carouselFPS, func(time.Time) tea.Msg {
		return carouselFrameMsg{Key: key}
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// STRIP RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// renderStepCard draws one step with its responsible party as the accent.
func renderStepCard(t Theme, step model.WorkflowStep, cardWidth, height int) string {
	accent := t.AccentFor(step.Responsible)
	inner := cardWidth - 3 // border + padding

	var b strings.Builder
	b.WriteString(t.Renderer.NewStyle().Bold(true).Width(inner).
		Render(fmt.Sprintf("%d. %s", step.ID, step.Title)))
	if step.Responsible != "" {
		b.WriteString("\n")
		b.WriteString(t.Renderer.NewStyle().Foreground(accent).
			Render("● " + truncate(string(step.Responsible), inner-2)))
	}
	if step.Description != "" {
		b.WriteString("\n")
		b.WriteString(t.MutedText.Width(inner).Render(step.Description))
	}
	if step.Duration != "" {
		b.WriteString("\n")
		b.WriteString(t.LinkText.Bold(true).Width(inner).Render("Duration: " + step.Duration))
	}

	style := t.Renderer.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(accent).
		Padding(0, 1).
		Width(cardWidth - 1)
	if height > 0 {
		style = style.Height(height)
	}
	return style.Render(b.String())
}

// renderStrip joins all step cards left to right with a connector between
// each pair and none after the last card.
func renderStrip(t Theme, steps []model.WorkflowStep, cardWidth int) string {
	if len(steps) == 0 {
		return ""
	}
	height := 0
	for _, s := range steps {
		if h := lipgloss.Height(renderStepCard(t, s, cardWidth, 0)); h > height {
			height = h
		}
	}

	conn := t.MutedText.Render(" " + connectorGlyph + " ")
	connector := lipgloss.PlaceVertical(height, lipgloss.Center, conn)

	parts := make([]string, 0, 2*len(steps)-1)
	for i, s := range steps {
		parts = append(parts, renderStepCard(t, s, cardWidth, height))
		if i < len(steps)-1 {
			parts = append(parts, connector)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// StripWidth measures the full, unwindowed width of a step strip.
func StripWidth(t Theme, steps []model.WorkflowStep, cardWidth int) int {
	return lipgloss.Width(renderStrip(t, steps, cardWidth))
}

// renderCarousel windows the strip at offset and adds the scroll controls
// the overflow state allows.
func renderCarousel(t Theme, steps []model.WorkflowStep, cardWidth, width, offset int, focused bool) string {
	strip := renderStrip(t, steps, cardWidth)
	if strip == "" {
		return ""
	}
	viewport := CarouselViewport(width)
	content := lipgloss.Width(strip)
	offset = clampInt(offset, 0, maxOffset(content, viewport))
	ov := OverflowState(offset, content, viewport)

	lines := strings.Split(strip, "\n")
	mid := len(lines) / 2
	arrowStyle := t.MutedText
	if focused {
		arrowStyle = t.PrimaryBold
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		window := ansi.Cut(line, offset, offset+viewport)
		if w := ansi.StringWidth(window); w < viewport {
			window += strings.Repeat(" ", viewport-w)
		}
		left, right := "  ", "  "
		if i == mid && ov.CanScrollLeft {
			left = arrowStyle.Render("‹") + " "
		}
		if i == mid && ov.CanScrollRight {
			right = " " + arrowStyle.Render("›")
		}
		out[i] = left + window + right
	}
	return strings.Join(out, "\n")
}
