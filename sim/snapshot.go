package sim

// Entity snapshots use short msgpack keys; a snapshot is broadcast up to
// 30 times a second per viewer.

// PlayerSnap is the player's state in one snapshot.
type PlayerSnap struct {
	ID    string  `msgpack:"id"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
	HP    int     `msgpack:"hp"`
	MaxHP int     `msgpack:"mhp"`
}

// EnemySnap is one enemy's state in a snapshot.
type EnemySnap struct {
	ID    string  `msgpack:"id"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
	HP    int     `msgpack:"hp"`
	MaxHP int     `msgpack:"mhp"`
	State string  `msgpack:"st"`
	// remaining route waypoints, alternating x,y — lets the viewer draw
	// the planned path
	Path []float64 `msgpack:"pa,omitempty"`
}

// ProjectileSnap is one fireball's state in a snapshot.
type ProjectileSnap struct {
	ID string  `msgpack:"id"`
	X  float64 `msgpack:"x"`
	Y  float64 `msgpack:"y"`
}

// Snapshot is the full per-tick state pushed to debug viewers.
type Snapshot struct {
	Tick        uint64           `msgpack:"tick"`
	Player      PlayerSnap       `msgpack:"p"`
	Enemies     []EnemySnap      `msgpack:"e"`
	Projectiles []ProjectileSnap `msgpack:"pr"`
}

// Snapshot captures the current state under the read lock.
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Snapshot{
		Tick: g.tick,
		Player: PlayerSnap{
			ID:    g.player.ID,
			X:     g.player.rect.X,
			Y:     g.player.rect.Y,
			HP:    g.player.HP,
			MaxHP: g.player.MaxHP,
		},
		Enemies:     make([]EnemySnap, 0, len(g.enemies)),
		Projectiles: make([]ProjectileSnap, 0, len(g.projectiles)),
	}
	for _, e := range g.enemies {
		snap := EnemySnap{
			ID:    e.ID,
			X:     e.rect.X,
			Y:     e.rect.Y,
			HP:    e.HP,
			MaxHP: e.MaxHP,
			State: e.State.String(),
		}
		for _, wp := range e.Path() {
			snap.Path = append(snap.Path, wp.X, wp.Y)
		}
		s.Enemies = append(s.Enemies, snap)
	}
	for _, pr := range g.projectiles {
		s.Projectiles = append(s.Projectiles, ProjectileSnap{ID: pr.ID, X: pr.rect.X, Y: pr.rect.Y})
	}
	return s
}
