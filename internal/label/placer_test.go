package label

import (
	"fmt"
	"sync"
	"testing"
)

func TestProject(t *testing.T) {
	cases := []struct {
		x, y   int
		gx, gy int
	}{
		{0, 0, 0, 0},
		{100, 100, 50, 25},
		{1, 3, 0, 0},
		{2, 4, 1, 1},
		{-1, -1, -1, -1},
		{-2, -4, -1, -1},
		{-3, -5, -2, -2},
	}

	for _, c := range cases {
		gx, gy := Project(c.x, c.y)
		if gx != c.gx || gy != c.gy {
			t.Errorf("Project(%d, %d): got (%d, %d), want (%d, %d)",
				c.x, c.y, gx, gy, c.gx, c.gy)
		}
	}
}

func TestOverlapRejected(t *testing.T) {
	p := New(5)

	if !p.WriteIfPossible("Berlin", 100, 100, "feature1") {
		t.Fatal("first placement should be accepted")
	}
	if p.WriteIfPossible("Berlin2", 100, 100, "feature2") {
		t.Error("second placement at the same anchor should be rejected")
	}
	if got := p.Len(); got != 1 {
		t.Errorf("index should hold exactly one rectangle, has %d", got)
	}
}

func TestDisjointPlacementsAccepted(t *testing.T) {
	p := New(5)

	if !p.WriteIfPossible("Berlin", 100, 100, nil) {
		t.Fatal("first placement should be accepted")
	}
	// Far enough away that even the margins cannot touch.
	if !p.WriteIfPossible("Hamburg", 400, 400, nil) {
		t.Error("distant placement should be accepted")
	}
	if got := p.Len(); got != 2 {
		t.Errorf("expected 2 rectangles, got %d", got)
	}
}

func TestTouchingEdgesCollide(t *testing.T) {
	p := &Placer{}

	if !p.WriteIfPossibleMargin("ab", 0, 0, nil, 0) {
		t.Fatal("first placement should be accepted")
	}
	// Display width 2 spans grid x 0..2; an anchor at grid x 2 (pixel 4)
	// shares that edge and must collide.
	if p.WriteIfPossibleMargin("cd", 4, 0, nil, 0) {
		t.Error("edge-touching placement should be rejected")
	}
	// One cell further is free.
	if !p.WriteIfPossibleMargin("cd", 6, 0, nil, 0) {
		t.Error("placement past the shared edge should be accepted")
	}
}

func TestClearResetsIndex(t *testing.T) {
	p := New(5)

	if !p.WriteIfPossible("Berlin", 100, 100, nil) {
		t.Fatal("placement should be accepted")
	}
	p.Clear()
	if got := p.Len(); got != 0 {
		t.Fatalf("index should be empty after Clear, has %d", got)
	}
	if !p.WriteIfPossible("Berlin", 100, 100, nil) {
		t.Error("identical placement should succeed again after Clear")
	}
}

func TestMarginOverride(t *testing.T) {
	p := New(5)

	if !p.WriteIfPossibleMargin("a", 100, 100, nil, 0) {
		t.Fatal("placement should be accepted")
	}
	// With zero margins this anchor is clear of the first label; with the
	// default margin of 5 it would collide.
	if !p.WriteIfPossibleMargin("b", 108, 100, nil, 0) {
		t.Error("zero-margin placement should be accepted")
	}

	p.Clear()
	if !p.WriteIfPossible("a", 100, 100, nil) {
		t.Fatal("placement should be accepted")
	}
	if p.WriteIfPossible("b", 108, 100, nil) {
		t.Error("default margin should reject the close-by placement")
	}
}

func TestWideRunesWidenPlacement(t *testing.T) {
	p := &Placer{}

	// Three CJK runes occupy six cells on screen, not three.
	if !p.WriteIfPossibleMargin("東京都", 0, 0, nil, 0) {
		t.Fatal("placement should be accepted")
	}
	// Grid x 4 lies inside the six-cell span even though the rune count
	// says otherwise.
	if p.WriteIfPossibleMargin("x", 8, 0, nil, 0) {
		t.Error("placement inside the wide label's span should be rejected")
	}
	if !p.WriteIfPossibleMargin("x", 14, 0, nil, 0) {
		t.Error("placement past the wide label should be accepted")
	}
}

func TestFeaturesAt(t *testing.T) {
	p := New(5)

	feature := struct{ name string }{"Berlin"}
	if !p.WriteIfPossible("Berlin", 100, 100, &feature) {
		t.Fatal("placement should be accepted")
	}

	// The anchor projects to grid (50, 25); that point is inside the
	// placed rectangle.
	hits := p.FeaturesAt(50, 25)
	if len(hits) != 1 {
		t.Fatalf("expected one hit at the anchor, got %d", len(hits))
	}
	if hits[0].Feature != &feature {
		t.Error("hit should carry the feature back-reference")
	}

	// Strictly outside every rectangle: empty, not an error.
	if hits := p.FeaturesAt(500, 500); len(hits) != 0 {
		t.Errorf("expected no hits far away, got %d", len(hits))
	}
}

func TestFeaturesAtBoundaryInclusive(t *testing.T) {
	p := &Placer{}
	if !p.WriteIfPossibleMargin("ab", 10, 8, nil, 0) {
		t.Fatal("placement should be accepted")
	}

	// Anchor grid (5, 2), width 2: rectangle spans x 5..7, y 2..2.
	for _, pt := range [][2]int{{5, 2}, {7, 2}, {6, 2}} {
		if len(p.FeaturesAt(pt[0], pt[1])) != 1 {
			t.Errorf("point (%d, %d) should hit the rectangle", pt[0], pt[1])
		}
	}
	for _, pt := range [][2]int{{4, 2}, {8, 2}, {6, 1}, {6, 3}} {
		if len(p.FeaturesAt(pt[0], pt[1])) != 0 {
			t.Errorf("point (%d, %d) should miss the rectangle", pt[0], pt[1])
		}
	}
}

func TestConcurrentPlacementsKeepInvariant(t *testing.T) {
	p := New(5)

	// Many goroutines race for the same spot; exactly one may win.
	const racers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if p.WriteIfPossible(fmt.Sprintf("label%d", i), 200, 200, i) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("exactly one racer should win, got %d", accepted)
	}
	if got := p.Len(); got != 1 {
		t.Errorf("index should hold one rectangle, has %d", got)
	}
}
