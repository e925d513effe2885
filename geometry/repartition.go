package geometry

import (
	"math"
	"sort"
)

type cellKey struct {
	i, j int64 // x, y grid cell indices
}

// Repartition runs the grid repartitioning algorithm: input
// rectangles are snapped outward to a g-aligned grid, unioned into a set
// of occupied unit cells, then greedily reassembled into maximal
// g-aligned rectangles with disjoint interiors. It is idempotent:
// Repartition(Repartition(rects, g), g) produces the same rectangle set.
func Repartition(rects []Rect, g float64) []Rect {
	if g <= 0 {
		return nil
	}
	occupied := make(map[cellKey]bool)
	for _, r := range rects {
		if r.IsEmpty() {
			continue
		}
		snapped := r.SnapOutward(g)
		iMin := int64(math.Round(snapped.Lo.X / g))
		iMax := int64(math.Round(snapped.Hi.X/g)) - 1
		jMin := int64(math.Round(snapped.Lo.Y / g))
		jMax := int64(math.Round(snapped.Hi.Y/g)) - 1
		for j := jMin; j <= jMax; j++ {
			for i := iMin; i <= iMax; i++ {
				occupied[cellKey{i, j}] = true
			}
		}
	}
	if len(occupied) == 0 {
		return nil
	}

	keys := make([]cellKey, 0, len(occupied))
	for k := range occupied {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].j != keys[b].j {
			return keys[a].j < keys[b].j
		}
		return keys[a].i < keys[b].i
	})

	visited := make(map[cellKey]bool, len(occupied))
	var out []Rect
	for _, start := range keys {
		if visited[start] {
			continue
		}
		// Extend right while cells are present.
		width := int64(1)
		for occupied[cellKey{start.i + width, start.j}] && !visited[cellKey{start.i + width, start.j}] {
			width++
		}
		// Extend downward while the entire row segment is present and unvisited.
		height := int64(1)
	rowScan:
		for {
			for i := start.i; i < start.i+width; i++ {
				k := cellKey{i, start.j + height}
				if !occupied[k] || visited[k] {
					break rowScan
				}
			}
			height++
		}
		for j := start.j; j < start.j+height; j++ {
			for i := start.i; i < start.i+width; i++ {
				visited[cellKey{i, j}] = true
			}
		}
		out = append(out, NewRect(
			float64(start.i)*g,
			float64(start.j)*g,
			float64(start.i+width)*g,
			float64(start.j+height)*g,
		))
	}
	return out
}

// SplitUntilRadius runs the recursive collision split: if
// collides(rect) is false, rect survives whole. Otherwise, if its half
// diagonal is already at or below rTerm, it is dropped entirely (too
// small to usefully refine further). Otherwise it is split along its
// longer axis at the midpoint and both halves are recursed on.
func SplitUntilRadius(rect Rect, collides func(Rect) bool, rTerm float64) []Rect {
	if rect.IsEmpty() {
		return nil
	}
	if !collides(rect) {
		return []Rect{rect}
	}
	if rect.HalfDiagonal() <= rTerm {
		return nil
	}
	var a, b Rect
	if rect.Width() >= rect.Height() {
		mid := (rect.Lo.X + rect.Hi.X) / 2
		a = NewRect(rect.Lo.X, rect.Lo.Y, mid, rect.Hi.Y)
		b = NewRect(mid, rect.Lo.Y, rect.Hi.X, rect.Hi.Y)
	} else {
		mid := (rect.Lo.Y + rect.Hi.Y) / 2
		a = NewRect(rect.Lo.X, rect.Lo.Y, rect.Hi.X, mid)
		b = NewRect(rect.Lo.X, mid, rect.Hi.X, rect.Hi.Y)
	}
	out := SplitUntilRadius(a, collides, rTerm)
	out = append(out, SplitUntilRadius(b, collides, rTerm)...)
	return out
}
