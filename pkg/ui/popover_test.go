package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/permitflow/pkg/model"
)

func trigger(id string) Trigger {
	return Trigger{ID: id, Citation: model.Citation{Source: "Known_Guideline", Page: "1"}}
}

func stackIDs(p *Popovers) string {
	var ids []string
	for _, tr := range p.Stack() {
		ids = append(ids, tr.ID)
	}
	return strings.Join(ids, ",")
}

func TestPopovers_OpenClose(t *testing.T) {
	var p Popovers
	if p.IsOpen("a") || p.Len() != 0 {
		t.Fatal("zero value should have nothing open")
	}
	if _, ok := p.Top(); ok {
		t.Error("expected no top on empty stack")
	}

	p.Open(trigger("a"))
	p.Open(trigger("b"))
	if !p.IsOpen("a") || !p.IsOpen("b") {
		t.Error("expected both popovers open")
	}
	if top, _ := p.Top(); top.ID != "b" {
		t.Errorf("top = %s, want b", top.ID)
	}

	// Reopening raises without duplicating.
	p.Open(trigger("a"))
	if got := stackIDs(&p); got != "b,a" {
		t.Errorf("stack = %s, want b,a", got)
	}

	p.Close("b")
	if p.IsOpen("b") || !p.IsOpen("a") {
		t.Error("closing one popover must leave the other open")
	}
	p.Close("missing")
	if p.Len() != 1 {
		t.Errorf("len = %d, want 1", p.Len())
	}
}

func TestPopovers_CloseTopAndAll(t *testing.T) {
	var p Popovers
	if p.CloseTop() {
		t.Error("CloseTop on empty stack should report false")
	}
	p.Open(trigger("a"))
	p.Open(trigger("b"))
	p.Open(trigger("c"))

	if !p.CloseTop() || stackIDs(&p) != "a,b" {
		t.Errorf("after CloseTop stack = %s, want a,b", stackIDs(&p))
	}
	p.CloseAll()
	if p.Len() != 0 {
		t.Errorf("len after CloseAll = %d", p.Len())
	}
}

func TestPopovers_Prune(t *testing.T) {
	var p Popovers
	p.Open(trigger("a"))
	p.Open(trigger("b"))
	p.Open(trigger("c"))
	p.Prune(map[string]bool{"a": true, "c": true})
	if got := stackIDs(&p); got != "a,c" {
		t.Errorf("stack = %s, want a,c", got)
	}
	p.Prune(nil)
	if p.Len() != 0 {
		t.Error("expected everything pruned")
	}
}

func TestPopovers_StackIsCopy(t *testing.T) {
	var p Popovers
	p.Open(trigger("a"))
	s := p.Stack()
	s[0].ID = "mutated"
	if !p.IsOpen("a") {
		t.Error("Stack must not expose internal state")
	}
}

func TestRenderPopover(t *testing.T) {
	theme := TestTheme()
	reg := testRegistry()

	out := ansi.Strip(RenderPopover(theme, reg, &model.Citation{Source: "Known_Guideline", Page: "12-14"}, 80, true))
	for _, want := range []string{"Citation Source", "Known guideline.", "12-14", "https://example.org/known.pdf", "[y] copy"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in popover:\n%s", want, out)
		}
	}
	if w := maxLineWidth(splitLines(out)); w > popoverWidth {
		t.Errorf("popover width %d exceeds %d", w, popoverWidth)
	}

	lower := ansi.Strip(RenderPopover(theme, reg, &model.Citation{Source: "Known_Guideline", Page: "2"}, 80, false))
	if strings.Contains(lower, "[y] copy") {
		t.Error("only the top popover shows the full key footer")
	}
}

func TestRenderPopover_Miss(t *testing.T) {
	theme := TestTheme()
	reg := testRegistry()
	cases := []*model.Citation{
		nil,
		{Source: "Unknown", Page: "1"},
		{Source: "No_URL", Page: "1"},
	}
	for _, c := range cases {
		if got := RenderPopover(theme, reg, c, 80, true); got != "" {
			t.Errorf("expected empty popover for %+v, got %q", c, got)
		}
	}
	if got := RenderPopover(theme, nil, &model.Citation{Source: "Known_Guideline"}, 80, true); got != "" {
		t.Error("expected empty popover with no registry")
	}
}

func TestPlaceStack(t *testing.T) {
	box := strings.TrimSuffix(strings.Repeat("xxxxxxxxxx\n", 4), "\n")
	rects := placeStack([]string{box, box}, 40, 20)
	if len(rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(rects))
	}
	if rects[0] != (rect{X: 15, Y: 8, W: 10, H: 4}) {
		t.Errorf("first rect = %+v", rects[0])
	}
	if rects[1].X != rects[0].X+stackOffsetX || rects[1].Y != rects[0].Y+stackOffsetY {
		t.Errorf("second rect not offset: %+v", rects[1])
	}

	// An overlay wider than the frame is pinned to the origin.
	wide := placeStack([]string{strings.Repeat("x", 60)}, 40, 20)
	if wide[0].X != 0 {
		t.Errorf("wide overlay X = %d, want 0", wide[0].X)
	}
}

func TestRect_Contains(t *testing.T) {
	r := rect{X: 2, Y: 3, W: 4, H: 2}
	tests := []struct {
		x, y int
		want bool
	}{
		{2, 3, true},
		{5, 4, true},
		{6, 4, false},
		{5, 5, false},
		{1, 3, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestOverlayAt(t *testing.T) {
	base := strings.Join([]string{
		"..........",
		"..........",
		"..........",
	}, "\n")
	got := overlayAt(base, "AB\nCD", 3, 1, 10, 3)
	want := strings.Join([]string{
		"..........",
		"...AB.....",
		"...CD.....",
	}, "\n")
	if got != want {
		t.Errorf("overlayAt:\n%s\nwant:\n%s", got, want)
	}

	// Rows past the frame are dropped.
	got = overlayAt(base, "AB\nCD\nEF", 0, 2, 10, 3)
	if lines := strings.Split(got, "\n"); len(lines) != 3 || lines[2] != "AB........" {
		t.Errorf("unexpected clipped overlay:\n%s", got)
	}
}
