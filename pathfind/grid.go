package pathfind

import (
	"errors"
	"math"

	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
)

// ErrInvalidGrid is returned for non-positive tile counts or tile sizes.
var ErrInvalidGrid = errors.New("pathfind: grid dimensions must be positive")

// Grid is a blocked/free tile grid over the map, rebuilt wholesale from
// the static collision rectangles on every map load. A tile is blocked
// if any rectangle overlaps any pixel of it; partially covered tiles are
// blocked too (conservative on purpose).
type Grid struct {
	w, h    int // tile counts
	tw, th  int // tile size in pixels
	blocked [][]bool
}

// NewGrid creates an all-free grid of tilesX x tilesY tiles.
func NewGrid(tilesX, tilesY, tileW, tileH int) (*Grid, error) {
	if tilesX <= 0 || tilesY <= 0 || tileW <= 0 || tileH <= 0 {
		return nil, ErrInvalidGrid
	}
	blocked := make([][]bool, tilesY)
	for y := range blocked {
		blocked[y] = make([]bool, tilesX)
	}
	return &Grid{w: tilesX, h: tilesY, tw: tileW, th: tileH, blocked: blocked}, nil
}

// Clear marks every tile free.
func (g *Grid) Clear() {
	for y := range g.blocked {
		row := g.blocked[y]
		for x := range row {
			row[x] = false
		}
	}
}

// Rebuild clears the grid and marks every tile overlapped by any of the
// given rectangles as blocked. Idempotent; called once per map load.
func (g *Grid) Rebuild(rects []geom.Rect) {
	g.Clear()
	for _, r := range rects {
		tx0 := int(math.Floor(r.X / float64(g.tw)))
		ty0 := int(math.Floor(r.Y / float64(g.th)))
		tx1 := int(math.Floor((r.X + r.W - 1) / float64(g.tw)))
		ty1 := int(math.Floor((r.Y + r.H - 1) / float64(g.th)))
		if tx0 < 0 {
			tx0 = 0
		}
		if ty0 < 0 {
			ty0 = 0
		}
		if tx1 >= g.w {
			tx1 = g.w - 1
		}
		if ty1 >= g.h {
			ty1 = g.h - 1
		}
		for ty := ty0; ty <= ty1; ty++ {
			for tx := tx0; tx <= tx1; tx++ {
				g.blocked[ty][tx] = true
			}
		}
	}
}

// Block marks a single tile blocked. Out-of-range coordinates are ignored.
func (g *Grid) Block(x, y int) {
	if g.inBounds(x, y) {
		g.blocked[y][x] = true
	}
}

// Blocked reports whether a tile is blocked. Out-of-range tiles read as
// blocked.
func (g *Grid) Blocked(x, y int) bool {
	return !g.free(x, y)
}

// Size returns the grid's tile counts.
func (g *Grid) Size() (int, int) { return g.w, g.h }

// TileSize returns the tile dimensions in pixels.
func (g *Grid) TileSize() (int, int) { return g.tw, g.th }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.w && y >= 0 && y < g.h
}

func (g *Grid) free(x, y int) bool {
	return g.inBounds(x, y) && !g.blocked[y][x]
}

// WorldToTile converts a pixel position to tile coordinates (floor
// division, matching Rebuild's projection).
func (g *Grid) WorldToTile(p geom.Vec2) (int, int) {
	return int(math.Floor(p.X / float64(g.tw))), int(math.Floor(p.Y / float64(g.th)))
}

// TileCenter converts a tile coordinate to its pixel center.
func (g *Grid) TileCenter(x, y int) geom.Vec2 {
	return geom.Vec2{
		X: float64(x*g.tw + g.tw/2),
		Y: float64(y*g.th + g.th/2),
	}
}

type tile struct {
	x, y int
}

// neighbors4 returns the in-range axis neighbors of a tile in fixed
// order: west, east, north, south. Start/goal substitution and search
// tie-breaking both depend on this order staying put.
func (g *Grid) neighbors4(x, y int) []tile {
	out := make([]tile, 0, 4)
	if x > 0 {
		out = append(out, tile{x - 1, y})
	}
	if x < g.w-1 {
		out = append(out, tile{x + 1, y})
	}
	if y > 0 {
		out = append(out, tile{x, y - 1})
	}
	if y < g.h-1 {
		out = append(out, tile{x, y + 1})
	}
	return out
}
