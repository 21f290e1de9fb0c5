package spatial

import (
	"errors"
	"math"

	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
)

// DefaultCellSize is roughly 2-4x a typical entity extent (32px sprites).
const DefaultCellSize = 128

// ErrInvalidRect is returned when a rect with non-positive width or
// height is handed to the index. Callers are expected to validate at
// the boundary; the index refuses rather than hashing garbage.
var ErrInvalidRect = errors.New("spatial: rect must have positive width and height")

// Collidable is the one capability every registrant exposes: its current
// hitbox rectangle. Registrant identity is Go interface identity, so two
// entities with equal rects are still distinct entries.
type Collidable interface {
	Hitbox() geom.Rect
}

// Cell identifies one bucket of the uniform grid.
type Cell struct {
	X, Y int
}

// Index is a uniform-grid spatial hash. Objects are stored in every cell
// their rect overlaps, and the occupied cell set is tracked per object so
// removal and update cost O(cells touched) instead of O(total objects).
type Index struct {
	cellSize    float64
	cells       map[Cell]map[Collidable]struct{}
	objectCells map[Collidable]map[Cell]struct{}
}

// NewIndex creates an Index. cellSize <= 0 selects DefaultCellSize.
func NewIndex(cellSize int) *Index {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Index{
		cellSize:    float64(cellSize),
		cells:       make(map[Cell]map[Collidable]struct{}),
		objectCells: make(map[Collidable]map[Cell]struct{}),
	}
}

// cellRange returns the inclusive cell coordinate range overlapped by r.
func (ix *Index) cellRange(r geom.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(r.Left() / ix.cellSize))
	x1 = int(math.Floor(r.Right() / ix.cellSize))
	y0 = int(math.Floor(r.Top() / ix.cellSize))
	y1 = int(math.Floor(r.Bottom() / ix.cellSize))
	return
}

// Insert registers obj under every cell its rect overlaps. An object that
// is already registered is moved: stale cell memberships are cleared
// first, so Insert doubles as the update operation and is idempotent.
func (ix *Index) Insert(obj Collidable, r geom.Rect) error {
	if !r.Valid() {
		return ErrInvalidRect
	}
	ix.Remove(obj)

	x0, y0, x1, y1 := ix.cellRange(r)
	occupied := make(map[Cell]struct{}, (x1-x0+1)*(y1-y0+1))
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			c := Cell{X: cx, Y: cy}
			bucket, ok := ix.cells[c]
			if !ok {
				bucket = make(map[Collidable]struct{})
				ix.cells[c] = bucket
			}
			bucket[obj] = struct{}{}
			occupied[c] = struct{}{}
		}
	}
	ix.objectCells[obj] = occupied
	return nil
}

// Remove deletes obj from every cell it occupies and drops cells that
// become empty. Removing an unknown object is a no-op.
func (ix *Index) Remove(obj Collidable) {
	occupied, ok := ix.objectCells[obj]
	if !ok {
		return
	}
	for c := range occupied {
		bucket, ok := ix.cells[c]
		if !ok {
			continue
		}
		delete(bucket, obj)
		if len(bucket) == 0 {
			delete(ix.cells, c)
		}
	}
	delete(ix.objectCells, obj)
}

// Nearby returns every object registered in a cell overlapped by r.
// This is a broad-phase result: returned objects are candidates whose own
// rects may not actually intersect r. Order is unspecified.
func (ix *Index) Nearby(r geom.Rect) []Collidable {
	x0, y0, x1, y1 := ix.cellRange(r)
	seen := make(map[Collidable]struct{})
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			for obj := range ix.cells[Cell{X: cx, Y: cy}] {
				seen[obj] = struct{}{}
			}
		}
	}
	out := make([]Collidable, 0, len(seen))
	for obj := range seen {
		out = append(out, obj)
	}
	return out
}

// NearbyExcluding is Nearby with self-exclusion for "others near me"
// queries. Excluding an unregistered object has no effect.
func (ix *Index) NearbyExcluding(obj Collidable, r geom.Rect) []Collidable {
	nearby := ix.Nearby(r)
	out := nearby[:0]
	for _, other := range nearby {
		if other != obj {
			out = append(out, other)
		}
	}
	return out
}

// Clear empties the index.
func (ix *Index) Clear() {
	ix.cells = make(map[Cell]map[Collidable]struct{})
	ix.objectCells = make(map[Collidable]map[Cell]struct{})
}

// Stats describes index occupancy for diagnostics.
type Stats struct {
	Objects    int
	Cells      int
	AvgPerCell float64
	CellSize   int
}

// Stats returns current occupancy counts.
func (ix *Index) Stats() Stats {
	total := 0
	for _, bucket := range ix.cells {
		total += len(bucket)
	}
	avg := 0.0
	if len(ix.cells) > 0 {
		avg = float64(total) / float64(len(ix.cells))
	}
	return Stats{
		Objects:    len(ix.objectCells),
		Cells:      len(ix.cells),
		AvgPerCell: avg,
		CellSize:   int(ix.cellSize),
	}
}
