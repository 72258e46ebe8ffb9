package testutil

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
)

// AssertMaxWidth verifies no line of s is wider than width terminal cells.
func AssertMaxWidth(t *testing.T, s string, width int) {
	t.Helper()
	for i, line := range strings.Split(s, "\n") {
		if w := ansi.StringWidth(line); w > width {
			t.Errorf("line %d is %d cells wide, max %d: %q", i+1, w, width, ansi.Strip(line))
		}
	}
}

// AssertDiagnostics verifies loader.Check reports exactly n diagnostics of kind.
func AssertDiagnostics(t *testing.T, ds *loader.Dataset, kind loader.DiagnosticKind, n int) {
	t.Helper()
	got := 0
	for _, d := range loader.Check(ds) {
		if d.Kind == kind {
			got++
		}
	}
	if got != n {
		t.Errorf("expected %d %s diagnostics, got %d", n, kind, got)
	}
}

// CountSteps returns the number of steps across every steps section in cats.
func CountSteps(cats []model.Category) int {
	n := 0
	for _, c := range cats {
		for _, s := range c.Sections {
			if sc, ok := s.Content.(model.StepsContent); ok {
				n += len(sc.Steps)
			}
		}
	}
	return n
}

// CountCitations returns the number of citation references in cats,
// optionally only those pointing at source.
func CountCitations(cats []model.Category, source string) int {
	n := 0
	for _, c := range cats {
		for _, s := range c.Sections {
			for _, ref := range s.Citations() {
				if source == "" || ref.Source == source {
					n++
				}
			}
		}
	}
	return n
}
