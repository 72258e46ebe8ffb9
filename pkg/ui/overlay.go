package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// rect is a cell-aligned rectangle within the frame.
type rect struct {
	X, Y, W, H int
}

func (r rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// stackOffset shifts each popover above the first one, so stacked popovers
// stay distinguishable.
const (
	stackOffsetX = 3
	stackOffsetY = 1
)

// placeStack centers the first overlay in the frame and offsets each
// following one down and to the right.
func placeStack(overlays []string, width, height int) []rect {
	rects := make([]rect, len(overlays))
	for i, o := range overlays {
		lines := splitLines(o)
		w := maxLineWidth(lines)
		h := len(lines)
		x := (width-w)/2 + i*stackOffsetX
		y := (height-h)/2 + i*stackOffsetY
		rects[i] = rect{
			X: clampInt(x, 0, width-w),
			Y: clampInt(y, 0, height-h),
			W: w,
			H: h,
		}
	}
	return rects
}

// overlayAt composites an overlay string on top of a base string at the given
// cell position (x, y). Both are treated as line-based grids.
func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)
	overlayWidth := maxLineWidth(overlayLines)
	for i, line := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) || row >= height {
			continue
		}
		target := padRight(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if lw := ansi.StringWidth(left); lw < x {
			left += strings.Repeat(" ", x-lw)
		}

		overlayLine := padRight(line, overlayWidth)
		pos := x + ansi.StringWidth(overlayLine)
		right := ""
		if width > 0 {
			right = ansi.TruncateLeft(target, pos, "")
			if gap := width - pos - ansi.StringWidth(right); gap > 0 {
				right = strings.Repeat(" ", gap) + right
			}
		}

		baseLines[row] = left + overlayLine + right
	}
	return strings.Join(baseLines, "\n")
}

// splitLines splits a string on newlines, returning at least one element.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// maxLineWidth returns the visual width of the widest line.
func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > m {
			m = w
		}
	}
	return m
}

// padRight pads s with spaces so its visual width equals width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
