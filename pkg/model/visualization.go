package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Visualization is an opaque renderable attached to an InfoItem.
type Visualization interface {
	// Render draws the visualization into at most width terminal cells per line.
	Render(width int) string
}

// Bar is one labelled value of a BarChart, with Value in [0,1].
type Bar struct {
	Label string  `yaml:"label"`
	Value float64 `yaml:"value"`
	Note  string  `yaml:"note,omitempty"`
}

// BarChart draws labelled horizontal bars.
type BarChart struct {
	Bars []Bar
}

func (b BarChart) Render(width int) string {
	if len(b.Bars) == 0 || width <= 0 {
		return ""
	}
	labelW := 0
	for _, bar := range b.Bars {
		if w := runewidth.StringWidth(bar.Label); w > labelW {
			labelW = w
		}
	}
	if labelW > width/2 {
		labelW = width / 2
	}
	barW := width - labelW - 8
	if barW < 4 {
		barW = 4
	}

	lines := make([]string, 0, len(b.Bars))
	for _, bar := range b.Bars {
		v := bar.Value
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		filled := int(v * float64(barW))
		label := runewidth.FillRight(runewidth.Truncate(bar.Label, labelW, "…"), labelW)
		line := fmt.Sprintf("%s %s%s %3.0f%%", label,
			strings.Repeat("█", filled), strings.Repeat("░", barW-filled), v*100)
		if bar.Note != "" {
			line += " " + bar.Note
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Diagram is preformatted text drawn as-is, clipped to width.
type Diagram struct {
	Text string
}

func (d Diagram) Render(width int) string {
	if width <= 0 {
		return ""
	}
	lines := strings.Split(strings.TrimRight(d.Text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = runewidth.Truncate(line, width, "")
	}
	return strings.Join(lines, "\n")
}
