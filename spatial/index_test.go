package spatial

import (
	"errors"
	"testing"

	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
)

// box is a minimal registrant for tests.
type box struct {
	rect geom.Rect
}

func (b *box) Hitbox() geom.Rect { return b.rect }

func contains(list []Collidable, obj Collidable) bool {
	for _, c := range list {
		if c == obj {
			return true
		}
	}
	return false
}

func TestNearbyAlwaysIncludesSelf(t *testing.T) {
	ix := NewIndex(64)
	b := &box{rect: geom.NewRect(100, 100, 32, 32)}
	if err := ix.Insert(b, b.rect); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// an object always overlaps its own cells
	if !contains(ix.Nearby(b.rect), b) {
		t.Error("expected Nearby of an object's own rect to include it")
	}
}

func TestInsertRejectsInvalidRect(t *testing.T) {
	ix := NewIndex(64)
	b := &box{}
	if err := ix.Insert(b, geom.NewRect(0, 0, 0, 10)); !errors.Is(err, ErrInvalidRect) {
		t.Errorf("expected ErrInvalidRect, got %v", err)
	}
	if err := ix.Insert(b, geom.NewRect(0, 0, 10, -5)); !errors.Is(err, ErrInvalidRect) {
		t.Errorf("expected ErrInvalidRect, got %v", err)
	}
	if ix.Stats().Objects != 0 {
		t.Error("rejected insert must not register the object")
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	ix := NewIndex(64)
	b := &box{rect: geom.NewRect(10, 10, 20, 20)}
	ix.Insert(b, b.rect)
	ix.Insert(b, b.rect)

	results := ix.Nearby(b.rect)
	count := 0
	for _, c := range results {
		if c == b {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one membership after double insert, got %d", count)
	}
	if st := ix.Stats(); st.Objects != 1 {
		t.Errorf("expected 1 object, got %d", st.Objects)
	}
}

func TestInsertMovesObject(t *testing.T) {
	ix := NewIndex(64)
	b := &box{rect: geom.NewRect(10, 10, 20, 20)}
	ix.Insert(b, b.rect)

	moved := geom.NewRect(1000, 1000, 20, 20)
	b.rect = moved
	ix.Insert(b, moved)

	if contains(ix.Nearby(geom.NewRect(10, 10, 20, 20)), b) {
		t.Error("stale cell membership survived an update")
	}
	if !contains(ix.Nearby(moved), b) {
		t.Error("object missing from its new cells")
	}
}

func TestRemoveCleansCells(t *testing.T) {
	ix := NewIndex(64)
	b := &box{rect: geom.NewRect(100, 100, 32, 32)}
	ix.Insert(b, b.rect)

	if st := ix.Stats(); st.Cells == 0 {
		t.Fatal("expected occupied cells after insert")
	}

	ix.Remove(b)
	st := ix.Stats()
	if st.Objects != 0 {
		t.Errorf("expected 0 objects after remove, got %d", st.Objects)
	}
	if st.Cells != 0 {
		t.Errorf("expected emptied cells to be dropped, got %d", st.Cells)
	}
	if contains(ix.Nearby(b.rect), b) {
		t.Error("removed object still returned by Nearby")
	}

	// removing an unknown object is a no-op
	ix.Remove(&box{rect: geom.NewRect(0, 0, 1, 1)})
}

func TestNearbyExcluding(t *testing.T) {
	ix := NewIndex(64)
	a := &box{rect: geom.NewRect(10, 10, 20, 20)}
	b := &box{rect: geom.NewRect(30, 10, 20, 20)}
	ix.Insert(a, a.rect)
	ix.Insert(b, b.rect)

	results := ix.NearbyExcluding(a, a.rect)
	if contains(results, a) {
		t.Error("self must be excluded")
	}
	if !contains(results, b) {
		t.Error("neighbor missing from results")
	}

	// excluding an unregistered object changes nothing
	stranger := &box{rect: geom.NewRect(10, 10, 5, 5)}
	if len(ix.NearbyExcluding(stranger, a.rect)) != len(ix.Nearby(a.rect)) {
		t.Error("excluding a stranger must not drop results")
	}
}

func TestBroadPhaseMayOverApproximate(t *testing.T) {
	// two rects in the same 128px cell that do not overlap: the broad
	// phase may return both, exactness is the broker's job
	ix := NewIndex(128)
	a := &box{rect: geom.NewRect(10, 10, 20, 20)}
	ix.Insert(a, a.rect)

	probe := geom.NewRect(90, 90, 20, 20)
	if !contains(ix.Nearby(probe), a) {
		t.Error("expected broad phase to return the cell-sharing neighbor")
	}
}

func TestClear(t *testing.T) {
	ix := NewIndex(64)
	for i := 0; i < 5; i++ {
		b := &box{rect: geom.NewRect(float64(i*50), 0, 32, 32)}
		ix.Insert(b, b.rect)
	}
	ix.Clear()
	st := ix.Stats()
	if st.Objects != 0 || st.Cells != 0 {
		t.Errorf("expected empty index after clear, got %+v", st)
	}
}

func TestStatsOccupancy(t *testing.T) {
	ix := NewIndex(100)
	// a 10x10 rect at origin spans cells (0,0)..(1,1): right edge 10/100
	// floors to 0, so exactly one cell
	a := &box{rect: geom.NewRect(1, 1, 10, 10)}
	ix.Insert(a, a.rect)
	st := ix.Stats()
	if st.Objects != 1 || st.Cells != 1 {
		t.Errorf("expected 1 object in 1 cell, got %+v", st)
	}
	if st.AvgPerCell != 1 {
		t.Errorf("expected avg occupancy 1, got %g", st.AvgPerCell)
	}
	if st.CellSize != 100 {
		t.Errorf("expected cell size 100, got %d", st.CellSize)
	}
}
