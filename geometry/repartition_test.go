package geometry

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"
)

func canonicalRects(rects []Rect) []Rect {
	out := append([]Rect(nil), rects...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lo.X != out[j].Lo.X {
			return out[i].Lo.X < out[j].Lo.X
		}
		return out[i].Lo.Y < out[j].Lo.Y
	})
	return out
}

func TestRepartitionMergesAdjacentCells(t *testing.T) {
	rects := []Rect{NewRect(0, 0, 1, 1), NewRect(1, 0, 2, 1)}
	out := Repartition(rects, 1)
	test.That(t, len(out), test.ShouldEqual, 1)
	test.That(t, out[0].Lo.X, test.ShouldEqual, 0.0)
	test.That(t, out[0].Hi.X, test.ShouldEqual, 2.0)
}

func TestRepartitionEmptyInput(t *testing.T) {
	test.That(t, Repartition(nil, 1), test.ShouldBeNil)
}

func TestRepartitionIdempotent(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	rects := make([]Rect, 0, 100)
	for i := 0; i < 100; i++ {
		x := rnd.Float64() * 10
		y := rnd.Float64() * 10
		rects = append(rects, NewRect(x, y, x+rnd.Float64()*2+0.1, y+rnd.Float64()*2+0.1))
	}
	const g = 0.5
	once := canonicalRects(Repartition(rects, g))
	twice := canonicalRects(Repartition(once, g))

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("repartition not idempotent (-once +twice):\n%s", diff)
	}
}

func TestRepartitionDisjointOutput(t *testing.T) {
	rects := []Rect{NewRect(0, 0, 3, 1), NewRect(1, 0.9, 2, 2)}
	out := Repartition(rects, 0.5)
	for i := range out {
		for j := range out {
			if i == j {
				continue
			}
			overlap := out[i].Intersection(out[j])
			test.That(t, overlap.Area(), test.ShouldEqual, 0.0)
		}
	}
}

func TestSplitUntilRadiusNoCollision(t *testing.T) {
	rect := NewRect(0, 0, 2, 2)
	out := SplitUntilRadius(rect, func(Rect) bool { return false }, 0.1)
	test.That(t, len(out), test.ShouldEqual, 1)
	test.That(t, out[0], test.ShouldResemble, rect)
}

func TestSplitUntilRadiusAlwaysCollidesDropsAtTerminal(t *testing.T) {
	rect := NewRect(0, 0, 1, 1)
	out := SplitUntilRadius(rect, func(Rect) bool { return true }, 10)
	test.That(t, len(out), test.ShouldEqual, 0)
}

func TestSplitUntilRadiusSplitsAroundObstacle(t *testing.T) {
	// Obstacle occupies the middle third of a wide rect; collision only
	// there, so splitting should isolate and drop only the middle.
	rect := NewRect(0, 0, 9, 1)
	collides := func(r Rect) bool {
		return r.Intersects(NewRect(3, 0, 6, 1))
	}
	out := SplitUntilRadius(rect, collides, 0.05)
	test.That(t, len(out) > 1, test.ShouldBeTrue)
	for _, r := range out {
		test.That(t, r.Intersects(NewRect(3, 0, 6, 1)), test.ShouldBeFalse)
	}
}
