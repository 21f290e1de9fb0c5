package spatial

import (
	"errors"

	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
)

// ErrAlreadyRegistered is returned when an object is added as both a
// static and a dynamic registrant. The two sets are mutually exclusive.
var ErrAlreadyRegistered = errors.New("spatial: object already registered with the broker")

// Broker layers exact rectangle-intersection semantics and a
// static/dynamic distinction on top of the Index. Static objects are
// registered once per map load; dynamic objects are re-inserted every
// tick through UpdateDynamic.
type Broker struct {
	index   *Index
	static  map[Collidable]struct{}
	dynamic map[Collidable]struct{}

	// performance tracking
	checks uint64
	hits   uint64
}

// NewBroker creates a Broker backed by a fresh Index.
func NewBroker(cellSize int) *Broker {
	return &Broker{
		index:   NewIndex(cellSize),
		static:  make(map[Collidable]struct{}),
		dynamic: make(map[Collidable]struct{}),
	}
}

// AddStatic registers an immovable object (wall, obstacle). Fails if the
// object is already registered as dynamic.
func (b *Broker) AddStatic(obj Collidable, r geom.Rect) error {
	if _, ok := b.dynamic[obj]; ok {
		return ErrAlreadyRegistered
	}
	if err := b.index.Insert(obj, r); err != nil {
		return err
	}
	b.static[obj] = struct{}{}
	return nil
}

// AddDynamic registers a movable object (player, enemy, projectile).
// Fails if the object is already registered as static.
func (b *Broker) AddDynamic(obj Collidable, r geom.Rect) error {
	if _, ok := b.static[obj]; ok {
		return ErrAlreadyRegistered
	}
	if err := b.index.Insert(obj, r); err != nil {
		return err
	}
	b.dynamic[obj] = struct{}{}
	return nil
}

// UpdateDynamic re-inserts a dynamic object at its new rect. Updates for
// objects that are not known dynamics are ignored; static objects are
// never repositioned through this path.
func (b *Broker) UpdateDynamic(obj Collidable, r geom.Rect) error {
	if _, ok := b.dynamic[obj]; !ok {
		return nil
	}
	return b.index.Insert(obj, r)
}

// Remove drops an object from the index and from both bookkeeping sets.
func (b *Broker) Remove(obj Collidable) {
	b.index.Remove(obj)
	delete(b.static, obj)
	delete(b.dynamic, obj)
}

// Clear empties the broker and the underlying index.
func (b *Broker) Clear() {
	b.index.Clear()
	b.static = make(map[Collidable]struct{})
	b.dynamic = make(map[Collidable]struct{})
}

// Collisions returns every other registered object whose current hitbox
// actually intersects r. The broad-phase candidate set comes from the
// index; exact filtering uses strict overlap, so touching edges do not
// collide. Result order is unspecified. Querying with an unregistered
// object is benign.
func (b *Broker) Collisions(obj Collidable, r geom.Rect) []Collidable {
	b.checks++
	var out []Collidable
	for _, other := range b.index.NearbyExcluding(obj, r) {
		if r.Intersects(other.Hitbox()) {
			out = append(out, other)
		}
	}
	if len(out) > 0 {
		b.hits++
	}
	return out
}

// AtPoint returns every registered object whose hitbox contains the
// point. Containment is half-open, so a point on a shared edge reports
// only one of two adjacent rects.
func (b *Broker) AtPoint(x, y float64) []Collidable {
	probe := geom.Rect{X: x, Y: y, W: 1, H: 1}
	var out []Collidable
	for _, obj := range b.index.Nearby(probe) {
		if obj.Hitbox().ContainsPoint(x, y) {
			out = append(out, obj)
		}
	}
	return out
}

// CollisionsMovingX tests a 1-pixel horizontal nudge of obj's hitbox in
// the signed direction. Exists so callers can resolve X and Y movement
// separately without duplicating the nudge math.
func (b *Broker) CollisionsMovingX(obj Collidable, dir float64) []Collidable {
	r := obj.Hitbox()
	if dir > 0 {
		r.X++
	} else if dir < 0 {
		r.X--
	}
	return b.Collisions(obj, r)
}

// CollisionsMovingY is the vertical counterpart of CollisionsMovingX.
func (b *Broker) CollisionsMovingY(obj Collidable, dir float64) []Collidable {
	r := obj.Hitbox()
	if dir > 0 {
		r.Y++
	} else if dir < 0 {
		r.Y--
	}
	return b.Collisions(obj, r)
}

// BrokerStats extends index stats with registration and query counters.
type BrokerStats struct {
	Index   Stats
	Static  int
	Dynamic int
	Checks  uint64
	Hits    uint64
}

// Stats returns current broker counters.
func (b *Broker) Stats() BrokerStats {
	return BrokerStats{
		Index:   b.index.Stats(),
		Static:  len(b.static),
		Dynamic: len(b.dynamic),
		Checks:  b.checks,
		Hits:    b.hits,
	}
}

// ResetCounters zeroes the check/hit counters between measurement runs.
func (b *Broker) ResetCounters() {
	b.checks = 0
	b.hits = 0
}
