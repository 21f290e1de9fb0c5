package pathfind

import (
	"errors"
	"testing"

	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
)

func mustGrid(t *testing.T, tilesX, tilesY, tileW, tileH int) *Grid {
	t.Helper()
	g, err := NewGrid(tilesX, tilesY, tileW, tileH)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func TestNewGridRejectsBadDimensions(t *testing.T) {
	if _, err := NewGrid(0, 10, 16, 16); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}
	if _, err := NewGrid(10, 10, 16, 0); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}
	if _, err := NewGrid(10, -1, 16, 16); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}
}

func TestRebuildProjection(t *testing.T) {
	g := mustGrid(t, 4, 4, 16, 16)

	// covers pixels 8..23 on both axes: tiles (0..1, 0..1)
	g.Rebuild([]geom.Rect{{X: 8, Y: 8, W: 16, H: 16}})
	for _, tc := range []struct {
		x, y    int
		blocked bool
	}{
		{0, 0, true}, {1, 0, true}, {0, 1, true}, {1, 1, true},
		{2, 0, false}, {2, 2, false}, {3, 3, false},
	} {
		if g.Blocked(tc.x, tc.y) != tc.blocked {
			t.Errorf("tile (%d,%d): blocked=%v, want %v", tc.x, tc.y, g.Blocked(tc.x, tc.y), tc.blocked)
		}
	}

	// a rect exactly filling tile 1 must not bleed into tile 2
	g.Rebuild([]geom.Rect{{X: 16, Y: 0, W: 16, H: 16}})
	if !g.Blocked(1, 0) {
		t.Error("tile (1,0) should be blocked")
	}
	if g.Blocked(2, 0) {
		t.Error("tile (2,0) should stay free")
	}

	// rebuild resets previous state
	g.Rebuild(nil)
	if g.Blocked(1, 0) {
		t.Error("rebuild must clear old blocks")
	}
}

func TestRebuildClampsOutOfRangeRects(t *testing.T) {
	g := mustGrid(t, 4, 4, 16, 16)
	g.Rebuild([]geom.Rect{{X: -100, Y: -100, W: 1000, H: 50}})
	if !g.Blocked(0, 0) || !g.Blocked(3, 0) {
		t.Error("oversized rect should block the clamped tile range")
	}
}

func TestOpenGridShortestPath(t *testing.T) {
	g := mustGrid(t, 10, 10, 16, 16)

	path := g.FindPath(g.TileCenter(0, 0), g.TileCenter(9, 9), 0)
	// Manhattan distance is 18 steps, so 19 waypoints including both ends
	if len(path) != 19 {
		t.Fatalf("expected 19 waypoints, got %d", len(path))
	}
	if path[0] != g.TileCenter(0, 0) {
		t.Errorf("path must start at the start tile center, got %+v", path[0])
	}
	if path[len(path)-1] != g.TileCenter(9, 9) {
		t.Errorf("path must end at the goal tile center, got %+v", path[len(path)-1])
	}
}

func TestPathStepsAreAdjacent(t *testing.T) {
	g := mustGrid(t, 10, 10, 16, 16)
	g.Block(4, 4)
	g.Block(4, 5)

	path := g.FindPath(g.TileCenter(0, 4), g.TileCenter(9, 4), 0)
	if len(path) == 0 {
		t.Fatal("expected a path")
	}
	for i := 1; i < len(path); i++ {
		dx := path[i].X - path[i-1].X
		dy := path[i].Y - path[i-1].Y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		// exactly one axis moves, by exactly one tile
		if !(dx == 16 && dy == 0 || dx == 0 && dy == 16) {
			t.Fatalf("non-adjacent step %d: %+v -> %+v", i, path[i-1], path[i])
		}
	}
}

func TestSealedGoalReturnsEmpty(t *testing.T) {
	g := mustGrid(t, 10, 10, 16, 16)
	g.Block(5, 5)
	g.Block(4, 5)
	g.Block(6, 5)
	g.Block(5, 4)
	g.Block(5, 6)

	if path := g.FindPath(g.TileCenter(0, 0), g.TileCenter(5, 5), 0); len(path) != 0 {
		t.Errorf("sealed goal must yield an empty path, got %d waypoints", len(path))
	}
}

func TestBlockedGoalSubstitutesNeighbor(t *testing.T) {
	g := mustGrid(t, 10, 10, 16, 16)
	g.Block(5, 5)

	path := g.FindPath(g.TileCenter(0, 5), g.TileCenter(5, 5), 0)
	if len(path) == 0 {
		t.Fatal("expected a path to a free neighbor of the goal")
	}
	// west neighbor is checked first
	if last := path[len(path)-1]; last != g.TileCenter(4, 5) {
		t.Errorf("expected path to end at (4,5) center, got %+v", last)
	}
}

func TestBlockedStartSubstitutesNeighbor(t *testing.T) {
	g := mustGrid(t, 10, 10, 16, 16)
	g.Block(5, 5)

	path := g.FindPath(g.TileCenter(5, 5), g.TileCenter(9, 5), 0)
	if len(path) == 0 {
		t.Fatal("expected a path from a free neighbor of the start")
	}
	// west neighbor is checked first
	if path[0] != g.TileCenter(4, 5) {
		t.Errorf("expected path to start at (4,5) center, got %+v", path[0])
	}
}

func TestWallWithGap(t *testing.T) {
	g := mustGrid(t, 10, 10, 16, 16)
	// vertical wall at x=5, single gap at y=7
	for y := 0; y < 10; y++ {
		if y != 7 {
			g.Block(5, y)
		}
	}

	path := g.FindPath(g.TileCenter(0, 0), g.TileCenter(9, 0), 0)
	if len(path) == 0 {
		t.Fatal("expected a path through the gap")
	}
	// shortest detour: 9 horizontal steps plus 7 down and 7 up again
	if len(path) != 24 {
		t.Errorf("expected 24 waypoints, got %d", len(path))
	}
	// the route must pass the gap tile
	gap := g.TileCenter(5, 7)
	found := false
	for _, wp := range path {
		if wp == gap {
			found = true
			break
		}
	}
	if !found {
		t.Error("path does not pass through the gap")
	}
}

func TestDetourAroundSingleBlockedTile(t *testing.T) {
	// 5x5 grid, tile 16, only (2,2) blocked: crossing the middle row
	// costs one extra detour, 7 waypoints total
	g := mustGrid(t, 5, 5, 16, 16)
	g.Block(2, 2)

	path := g.FindPath(geom.Vec2{X: 8, Y: 40}, geom.Vec2{X: 72, Y: 40}, 5000)
	if len(path) != 7 {
		t.Fatalf("expected 7 waypoints, got %d", len(path))
	}
	if path[0] != g.TileCenter(0, 2) || path[len(path)-1] != g.TileCenter(4, 2) {
		t.Errorf("unexpected endpoints: %+v .. %+v", path[0], path[len(path)-1])
	}
}

func TestExpansionCapReturnsEmpty(t *testing.T) {
	g := mustGrid(t, 10, 10, 16, 16)
	if path := g.FindPath(g.TileCenter(0, 0), g.TileCenter(9, 9), 3); len(path) != 0 {
		t.Errorf("capped search must yield an empty path, got %d waypoints", len(path))
	}
}

func TestFindPathIsDeterministic(t *testing.T) {
	g := mustGrid(t, 12, 12, 16, 16)
	g.Rebuild([]geom.Rect{
		{X: 48, Y: 0, W: 16, H: 96},
		{X: 96, Y: 80, W: 16, H: 112},
	})

	first := g.FindPath(g.TileCenter(0, 0), g.TileCenter(11, 11), 0)
	if len(first) == 0 {
		t.Fatal("expected a path")
	}
	for i := 0; i < 10; i++ {
		again := g.FindPath(g.TileCenter(0, 0), g.TileCenter(11, 11), 0)
		if len(again) != len(first) {
			t.Fatalf("run %d: length changed from %d to %d", i, len(first), len(again))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d: waypoint %d differs: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestStartEqualsGoal(t *testing.T) {
	g := mustGrid(t, 5, 5, 16, 16)
	path := g.FindPath(g.TileCenter(2, 2), g.TileCenter(2, 2), 0)
	if len(path) != 1 {
		t.Fatalf("expected a single waypoint, got %d", len(path))
	}
	if path[0] != g.TileCenter(2, 2) {
		t.Errorf("unexpected waypoint %+v", path[0])
	}
}

func TestWaypointsLandInsideTiles(t *testing.T) {
	g := mustGrid(t, 8, 8, 15, 15) // odd tile size, truncating half-offset
	path := g.FindPath(g.TileCenter(0, 0), g.TileCenter(7, 7), 0)
	if len(path) == 0 {
		t.Fatal("expected a path")
	}
	for _, wp := range path {
		tx, ty := g.WorldToTile(wp)
		c := g.TileCenter(tx, ty)
		if wp != c {
			t.Errorf("waypoint %+v is not the center of its tile (%d,%d)", wp, tx, ty)
		}
	}
}
