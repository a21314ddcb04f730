// Package label decides whether text annotations can be drawn over the map
// without colliding. Placed labels live in an R-tree for the duration of
// one render cycle; the index is cleared before the next cycle begins.
//
// Coordinates are label-grid units: the terminal addresses sub-pixels in
// 2x4 blocks per character cell (braille resolution), so fine pixel
// coordinates are divided by 2 horizontally and 4 vertically before any
// placement or query.
package label

import (
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/tidwall/rtree"

	"github.com/MeKo-Tech/termatlas/internal/config"
)

// Cell dimensions of the terminal's sub-pixel block.
const (
	CellWidth  = 2
	CellHeight = 4
)

// Placement is an accepted label rectangle in grid coordinates, including
// its margin expansion. Feature is a non-owning back-reference to the map
// feature the label belongs to, kept for hit-testing.
type Placement struct {
	MinX    int
	MinY    int
	MaxX    int
	MaxY    int
	Feature any
}

// Contains reports whether a grid point lies inside the rectangle,
// boundaries included.
func (p *Placement) Contains(x, y int) bool {
	return x >= p.MinX && x <= p.MaxX && y >= p.MinY && y <= p.MaxY
}

// Placer guards the no-overlap invariant for one render cycle. The
// check-then-insert in WriteIfPossible is atomic with respect to other
// placement calls.
type Placer struct {
	margin int

	mu   sync.Mutex
	tree rtree.RTreeG[*Placement]
}

// New creates a placer with the given default margin in grid units.
// Non-positive margins fall back to the configured default.
func New(margin int) *Placer {
	if margin <= 0 {
		margin = config.DefaultLabelMargin
	}
	return &Placer{margin: margin}
}

// Project maps fine pixel coordinates onto the label grid, flooring toward
// negative infinity so pixels left of or above the origin still land in a
// consistent cell. The same mapping serves placement and queries.
func Project(x, y int) (int, int) {
	return floorDiv(x, CellWidth), floorDiv(y, CellHeight)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Clear discards every placement. Called once per render cycle before any
// placements for that cycle; there is no partial invalidation.
func (p *Placer) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tree = rtree.RTreeG[*Placement]{}
}

// Len returns the number of placed rectangles.
func (p *Placer) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.Len()
}

// WriteIfPossible places a label at the given fine pixel anchor using the
// default margin. It reports whether the label was accepted; rejection is a
// routine outcome, not an error.
func (p *Placer) WriteIfPossible(text string, x, y int, feature any) bool {
	return p.WriteIfPossibleMargin(text, x, y, feature, p.margin)
}

// WriteIfPossibleMargin is WriteIfPossible with a margin override in grid
// units. The candidate spans the label's display width on one grid row,
// expanded by the full margin horizontally and half vertically to offset
// the grid's 2x4 cell aspect. Any overlap with an existing placement,
// touching edges included, rejects the candidate. The inserted rectangle is
// exactly the tested one.
func (p *Placer) WriteIfPossibleMargin(text string, x, y int, feature any, margin int) bool {
	gx, gy := Project(x, y)
	width := runewidth.StringWidth(text)

	place := &Placement{
		MinX:    gx - margin,
		MinY:    gy - margin/2,
		MaxX:    gx + width + margin,
		MaxY:    gy + margin/2,
		Feature: feature,
	}
	min := [2]float64{float64(place.MinX), float64(place.MinY)}
	max := [2]float64{float64(place.MaxX), float64(place.MaxY)}

	p.mu.Lock()
	defer p.mu.Unlock()

	collides := false
	p.tree.Search(min, max, func(_, _ [2]float64, _ *Placement) bool {
		collides = true
		return false
	})
	if collides {
		return false
	}

	p.tree.Insert(min, max, place)
	return true
}

// FeaturesAt returns the placements containing a grid point, for pointer
// hit-testing. Callers holding pixel coordinates project them first, the
// same way WriteIfPossible does. An empty result is a valid outcome.
func (p *Placer) FeaturesAt(x, y int) []*Placement {
	point := [2]float64{float64(x), float64(y)}

	p.mu.Lock()
	defer p.mu.Unlock()

	var hits []*Placement
	p.tree.Search(point, point, func(_, _ [2]float64, place *Placement) bool {
		if place.Contains(x, y) {
			hits = append(hits, place)
		}
		return true
	})
	return hits
}
