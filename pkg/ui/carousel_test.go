package ui

import (
	"testing"

	"pgregory.net/rapid"
)

func TestOverflowState(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		content  int
		viewport int
		want     Overflow
	}{
		{"content fits exactly", 0, 100, 100, Overflow{false, false}},
		{"content narrower", 0, 60, 100, Overflow{false, false}},
		{"double width at start", 0, 200, 100, Overflow{false, true}},
		{"double width at end", 100, 200, 100, Overflow{true, false}},
		{"left dead zone edge", 10, 200, 100, Overflow{false, true}},
		{"just past left dead zone", 11, 200, 100, Overflow{true, true}},
		{"right dead zone edge", 90, 200, 100, Overflow{true, false}},
		{"just before right dead zone", 89, 200, 100, Overflow{true, true}},
		{"barely overflowing", 0, 105, 100, Overflow{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverflowState(tt.offset, tt.content, tt.viewport); got != tt.want {
				t.Errorf("OverflowState(%d, %d, %d) = %+v, want %+v",
					tt.offset, tt.content, tt.viewport, got, tt.want)
			}
		})
	}
}

func TestOverflowState_Monotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		viewport := rapid.IntRange(1, 300).Draw(t, "viewport")
		content := rapid.IntRange(0, 2000).Draw(t, "content")
		a := rapid.IntRange(0, 2000).Draw(t, "a")
		b := rapid.IntRange(a, 2000).Draw(t, "b")

		oa := OverflowState(a, content, viewport)
		ob := OverflowState(b, content, viewport)
		// Moving right can only reveal the left control and hide the right one.
		if oa.CanScrollLeft && !ob.CanScrollLeft {
			t.Fatalf("left control lost moving right: %d -> %d", a, b)
		}
		if !oa.CanScrollRight && ob.CanScrollRight {
			t.Fatalf("right control appeared moving right: %d -> %d", a, b)
		}
		if content <= viewport && (oa.CanScrollRight || ob.CanScrollRight) {
			t.Fatalf("right control shown for content that fits")
		}
	})
}

func TestScrollTarget(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		content  int
		viewport int
		dir      ScrollDirection
		want     int
	}{
		{"right from start", 0, 500, 100, ScrollRight, 80},
		{"left from middle", 200, 500, 100, ScrollLeft, 120},
		{"clamped at end", 380, 500, 100, ScrollRight, 400},
		{"clamped at start", 30, 500, 100, ScrollLeft, 0},
		{"fits, no scroll", 0, 80, 100, ScrollRight, 0},
		{"rounds fraction", 0, 500, 7, ScrollRight, 6},
		{"tiny viewport still moves", 0, 500, 1, ScrollRight, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScrollTarget(tt.offset, tt.content, tt.viewport, tt.dir); got != tt.want {
				t.Errorf("ScrollTarget = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCarouselViewport(t *testing.T) {
	if got := CarouselViewport(80); got != 76 {
		t.Errorf("CarouselViewport(80) = %d, want 76", got)
	}
	if got := CarouselViewport(2); got != 1 {
		t.Errorf("CarouselViewport(2) = %d, want 1", got)
	}
}

// settle drives the carousel's animation to completion and returns the number
// of frames it took.
func settle(t *testing.T, c *Carousel) int {
	t.Helper()
	frames := 0
	for c.Animating() {
		c.Step()
		frames++
		if frames > 10*carouselFPS {
			t.Fatalf("carousel did not settle: pos=%d target=%d", c.Offset(), c.Target())
		}
	}
	return frames
}

func TestCarousel_ScrollAnimatesToTarget(t *testing.T) {
	c := NewCarousel("cat/0")
	c.Resize(500, 100)

	if cmd := c.Scroll(ScrollRight); cmd == nil {
		t.Fatal("expected a frame command when scrolling")
	}
	if c.Target() != 80 {
		t.Errorf("target = %d, want 80", c.Target())
	}
	if c.Offset() != 0 {
		t.Errorf("offset should not jump before frames run, got %d", c.Offset())
	}

	frames := settle(t, c)
	if frames < 2 {
		t.Errorf("expected an animated scroll, settled in %d frames", frames)
	}
	if c.Offset() != 80 {
		t.Errorf("offset = %d, want 80", c.Offset())
	}
	if !c.Overflow().CanScrollLeft || !c.Overflow().CanScrollRight {
		t.Errorf("expected both controls mid-strip, got %+v", c.Overflow())
	}
}

func TestCarousel_ScrollWhileAnimating(t *testing.T) {
	c := NewCarousel("k")
	c.Resize(500, 100)

	if cmd := c.Scroll(ScrollRight); cmd == nil {
		t.Fatal("expected first scroll to start frames")
	}
	c.Step()
	if cmd := c.Scroll(ScrollRight); cmd != nil {
		t.Error("expected no second frame chain while animating")
	}
	if c.Target() != 160 {
		t.Errorf("target = %d, want 160", c.Target())
	}
	settle(t, c)
	if c.Offset() != 160 {
		t.Errorf("offset = %d, want 160", c.Offset())
	}
}

func TestCarousel_ScrollAtEdgeIsNoop(t *testing.T) {
	c := NewCarousel("k")
	c.Resize(500, 100)
	if cmd := c.Scroll(ScrollLeft); cmd != nil {
		t.Error("expected no frames when already at the left edge")
	}
	if c.Animating() {
		t.Error("carousel should not be animating")
	}

	fits := NewCarousel("fits")
	fits.Resize(50, 100)
	if cmd := fits.Scroll(ScrollRight); cmd != nil {
		t.Error("expected no frames when the strip fits")
	}
}

func TestCarousel_StepWhenIdle(t *testing.T) {
	c := NewCarousel("k")
	if cmd := c.Step(); cmd != nil {
		t.Error("expected nil from an idle carousel")
	}
}

func TestCarousel_ResizeClamps(t *testing.T) {
	c := NewCarousel("k")
	c.Resize(500, 100)
	for i := 0; i < 5; i++ {
		c.Scroll(ScrollRight)
		settle(t, c)
	}
	if c.Offset() != 400 {
		t.Fatalf("offset = %d, want 400", c.Offset())
	}

	c.Resize(500, 300)
	if c.Offset() != 200 || c.Target() != 200 {
		t.Errorf("after widening: offset=%d target=%d, want 200", c.Offset(), c.Target())
	}
	if c.Overflow().CanScrollRight {
		t.Error("right control should be hidden at the end of the strip")
	}

	c.Resize(500, 600)
	if c.Offset() != 0 {
		t.Errorf("offset = %d, want 0 once the strip fits", c.Offset())
	}
	if c.Overflow() != (Overflow{}) {
		t.Errorf("expected no controls, got %+v", c.Overflow())
	}
}
