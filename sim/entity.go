package sim

import (
	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
)

const (
	PlayerSize  = 32.0
	PlayerSpeed = 220.0
	PlayerMaxHP = 100

	EnemySize           = 32.0
	EnemySpeed          = 140.0
	EnemyMaxHP          = 60
	EnemyDetectRange    = 320.0
	EnemyAttackRange    = 40.0
	EnemyAttackDamage   = 10
	EnemyAttackCooldown = 1.2 // seconds between melee hits
	WaypointReached     = 4.0 // pixels; close enough to advance the path

	FireballSize   = 16.0
	FireballSpeed  = 420.0
	FireballTTL    = 1.5 // seconds before a fireball fizzles
	FireballDamage = 25
)

// Wall is a static obstacle registered once per map load.
type Wall struct {
	rect geom.Rect
}

func (w *Wall) Hitbox() geom.Rect { return w.rect }

// Player is the alchemist. Movement input is a direction vector set by
// the input layer; the game loop turns it into axis-separated
// displacement with collision clamping.
type Player struct {
	ID     string
	rect   geom.Rect
	Speed  float64
	HP     int
	MaxHP  int
	InputX float64
	InputY float64
	FaceX  float64 // last non-zero movement direction, used to aim casts
	FaceY  float64
}

func (p *Player) Hitbox() geom.Rect { return p.rect }

// EnemyState tracks what an enemy is currently doing.
type EnemyState int

const (
	EnemyIdle EnemyState = iota
	EnemyChasing
	EnemyAttacking
)

func (s EnemyState) String() string {
	switch s {
	case EnemyChasing:
		return "chasing"
	case EnemyAttacking:
		return "attacking"
	default:
		return "idle"
	}
}

// Enemy chases the player once it is inside detection range, navigating
// via pathfinder waypoints, and attacks in melee range.
type Enemy struct {
	ID    string
	rect  geom.Rect
	Speed float64
	HP    int
	MaxHP int
	State EnemyState

	// current route and repath throttle: a new path is requested only
	// when the player moves to a different tile
	path     []geom.Vec2
	pathIdx  int
	goalTX   int
	goalTY   int
	hasGoal  bool
	attackCD float64
}

func (e *Enemy) Hitbox() geom.Rect { return e.rect }

// Path returns the enemy's remaining waypoints (for the debug viewer).
func (e *Enemy) Path() []geom.Vec2 {
	if e.pathIdx >= len(e.path) {
		return nil
	}
	return e.path[e.pathIdx:]
}

// Projectile is a cast fireball flying in a straight line.
type Projectile struct {
	ID    string
	rect  geom.Rect
	VX    float64
	VY    float64
	TTL   float64
	Alive bool
}

func (pr *Projectile) Hitbox() geom.Rect { return pr.rect }
